package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
)

func studentGrade(first, last string, scores ...null.String) grade.StudentGrade {
	sg := grade.StudentGrade{FirstName: first, LastName: last}
	for i, s := range scores {
		switch i {
		case 0:
			sg.Prelim = s
		case 1:
			sg.Midterm = s
		case 2:
			sg.Semifinal = s
		case 3:
			sg.Final = s
		}
	}
	return sg
}

func score(s string) null.String { return null.StringFrom(s) }

func TestFormatRow(t *testing.T) {
	tests := []struct {
		name string
		row  grade.StudentGrade
		want string
	}{
		{
			name: "all scores",
			row:  studentGrade("Jane", "Doe", score("90"), score("85"), score("88"), score("92")),
			want: "Jane Doe | prelim: 90 midterm: 85 semifinal: 88 final: 92",
		},
		{
			name: "missing midterm",
			row:  studentGrade("John", "Smith", score("80"), null.String{}, score("70"), score("78")),
			want: "John Smith | prelim: 80 midterm: N/A semifinal: 70 final: 78",
		},
		{
			name: "no scores",
			row:  studentGrade("Ann", "Lee"),
			want: "Ann Lee | prelim: N/A midterm: N/A semifinal: N/A final: N/A",
		},
		{
			name: "non numeric passes through",
			row:  studentGrade("Bo", "Ng", score("INC"), score(""), null.String{}, score("75.5")),
			want: "Bo Ng | prelim: INC midterm:  semifinal: N/A final: 75.5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRow(tt.row))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	rows := []grade.StudentGrade{
		studentGrade("Jane", "Doe", score("90"), score("85"), score("88"), score("92")),
		studentGrade("John", "Smith", score("80"), null.String{}, score("70"), score("78")),
	}
	prompt := BuildPrompt(rows)

	assert.True(t, strings.HasPrefix(prompt, "You are an educational analyst."))
	assert.Contains(t, prompt, "Records:\n"+FormatRow(rows[0])+"\n"+FormatRow(rows[1])+"\n")
	assert.Contains(t, prompt, "final >= 75 or average >= 75")
	assert.True(t, strings.HasSuffix(prompt, "Return the result as JSON with keys: analysis, passedStudents, failedStudents"))
	assert.NotContains(t, prompt, "undefined")

	empty := BuildPrompt(nil)
	assert.Contains(t, empty, "Records:\n\n")
}
