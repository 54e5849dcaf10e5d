package exportsvc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/report"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetName       = "Grades"
)

var headers = []string{"Student Number", "Last Name", "First Name", "Prelim", "Midterm", "Semifinal", "Final", "Result"}

// GradeSheetFilename is the download name of a subject's grade sheet.
func GradeSheetFilename(subjectName string) string {
	if subjectName == "" {
		subjectName = "subject"
	}
	return "Grades_" + subjectName + ".xlsx"
}

// scoreValue writes numeric scores as numbers so spreadsheets can compute on them.
func scoreValue(s null.String) interface{} {
	if !s.Valid {
		return nil
	}
	if v, ok := grade.NumericScore(s); ok {
		return v
	}
	return s.String
}

// WriteGradeSheet writes the subject's grade rows as an XLSX workbook.
// Result is the pass/fail rule applied to the row.
func WriteGradeSheet(w io.Writer, subjectName string, rows []grade.StudentGrade) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: "Grades - " + subjectName}); err != nil {
		return errors.Wrap(err, "setting document properties")
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}

	for i, r := range rows {
		values := []interface{}{
			r.StudentNumber,
			r.LastName,
			r.FirstName,
			scoreValue(r.Prelim),
			scoreValue(r.Midterm),
			scoreValue(r.Semifinal),
			scoreValue(r.Final),
			report.Classify(r.Grade),
		}
		for j, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return errors.Wrapf(err, "writing row %d", i+1)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return errors.Wrap(err, "freezing header")
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}
