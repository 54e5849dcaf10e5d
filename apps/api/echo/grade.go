package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
	exportsvc "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/services/export"
)

type gradeApi struct {
	svc      *grade.Service
	validate *validator.Validate
}

func registerGradeAPI(sg *echo.Group, subjects *subject.Service, svc *grade.Service, validate *validator.Validate) {
	api := gradeApi{svc: svc, validate: validate}

	gg := sg.Group("/grades", subjectMiddleware(subjects))
	gg.GET("", api.query)
	gg.PUT("", api.save)
	gg.GET("/export", api.export)
}

// bindGradeSheet accepts either a bare list of entries or `{"entries": [...]}`.
func bindGradeSheet(ctx echo.Context, sheet *grade.GradeSheet) error {
	var raw json.RawMessage
	if err := ctx.Echo().JSONSerializer.Deserialize(ctx, &raw); err != nil {
		if err == io.EOF {
			return echo.NewHTTPError(http.StatusBadRequest, "Request body can't be empty")
		}
		return err
	}

	var err error
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &sheet.Entries)
	} else {
		err = json.Unmarshal(trimmed, sheet)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid grade sheet: "+err.Error()).SetInternal(err)
	}
	return nil
}

// Handlers

func (api *gradeApi) query(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}

	rows, err := api.svc.ForSubject(ctx.Request().Context(), sub.ID)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	if rows == nil {
		rows = []grade.StudentGrade{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *gradeApi) save(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}

	var data grade.GradeSheet
	if err := bindGradeSheet(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to GradeSheet")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grades, err := api.svc.Save(ctx.Request().Context(), sub.ID, data)
	if err != nil {
		return errors.Wrap(err, "saving grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) export(ctx echo.Context) error {
	sub, err := getContextSubject(ctx)
	if err != nil {
		return err
	}

	rows, err := api.svc.ForSubject(ctx.Request().Context(), sub.ID)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}

	var buf bytes.Buffer
	if err := exportsvc.WriteGradeSheet(&buf, sub.Name, rows); err != nil {
		return errors.Wrap(err, "writing grade sheet")
	}
	setContentDisposition(ctx, "attachment", exportsvc.GradeSheetFilename(sub.Name))
	return ctx.Blob(http.StatusOK, exportsvc.XLSXContentType, buf.Bytes())
}
