package report

import (
	"fmt"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
)

const missingScore = "N/A"

const promptTemplate = `You are an educational analyst. Given these student grade records for a subject, provide:
1) A short analysis summary of class performance.
2) A list "passedStudents" (students whose final >= 75 or average >= 75).
3) A list "failedStudents".
4) Optional recommendations for interventions.

Records:
%s

Return the result as JSON with keys: analysis, passedStudents, failedStudents`

func scoreText(s null.String) string {
	if !s.Valid {
		return missingScore
	}
	return s.String
}

// FormatRow renders one grade record as a prompt line.
func FormatRow(sg grade.StudentGrade) string {
	return fmt.Sprintf("%s | prelim: %s midterm: %s semifinal: %s final: %s",
		sg.FullName(),
		scoreText(sg.Prelim),
		scoreText(sg.Midterm),
		scoreText(sg.Semifinal),
		scoreText(sg.Final),
	)
}

// BuildPrompt embeds the grade records of a subject in the analyst instructions.
func BuildPrompt(rows []grade.StudentGrade) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, FormatRow(r))
	}
	return fmt.Sprintf(promptTemplate, strings.Join(lines, "\n"))
}
