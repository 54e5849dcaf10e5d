package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Analysis
	}{
		{
			name: "fenced json",
			raw:  "```json\n{\"analysis\":\"Good class\",\"passedStudents\":[\"Jane Doe\"],\"failedStudents\":[]}\n```",
			want: Analysis{Analysis: "Good class", PassedStudents: []string{"Jane Doe"}, FailedStudents: []string{}},
		},
		{
			name: "plain text",
			raw:  "The class performed well overall.",
			want: Analysis{Analysis: "The class performed well overall.", PassedStudents: []string{}, FailedStudents: []string{}},
		},
		{
			name: "empty",
			raw:  "   ",
			want: Analysis{Analysis: "", PassedStudents: []string{}, FailedStudents: []string{}},
		},
		{
			name: "prose around object",
			raw:  "Here is the report:\n{\"analysis\":\"Mixed\",\"passedStudents\":[\"A B\",\"C D\"],\"failedStudents\":[\"E F\"]}\nLet me know!",
			want: Analysis{Analysis: "Mixed", PassedStudents: []string{"A B", "C D"}, FailedStudents: []string{"E F"}},
		},
		{
			name: "invalid json falls back to cleaned text",
			raw:  "```\n{\"analysis\": \"cut off\n```",
			want: Analysis{Analysis: "{\"analysis\": \"cut off", PassedStudents: []string{}, FailedStudents: []string{}},
		},
		{
			name: "missing keys",
			raw:  `{"passedStudents":["Jane Doe"]}`,
			want: Analysis{Analysis: "", PassedStudents: []string{"Jane Doe"}, FailedStudents: []string{}},
		},
		{
			name: "null values",
			raw:  `{"analysis":null,"passedStudents":null,"failedStudents":null}`,
			want: Analysis{Analysis: "", PassedStudents: []string{}, FailedStudents: []string{}},
		},
		{
			name: "lists that are not arrays",
			raw:  `{"analysis":"ok","passedStudents":"Jane Doe","failedStudents":{"name":"John"}}`,
			want: Analysis{Analysis: "ok", PassedStudents: []string{}, FailedStudents: []string{}},
		},
		{
			name: "non string elements",
			raw:  `{"analysis":"ok","passedStudents":["Jane Doe", 42, null, {"name": "John"}],"failedStudents":[true]}`,
			want: Analysis{Analysis: "ok", PassedStudents: []string{"Jane Doe", "42", `{"name":"John"}`}, FailedStudents: []string{"true"}},
		},
		{
			name: "non string analysis",
			raw:  `{"analysis":{"summary": "good", "score": 80},"passedStudents":[],"failedStudents":[]}`,
			want: Analysis{Analysis: `{"summary":"good","score":80}`, PassedStudents: []string{}, FailedStudents: []string{}},
		},
		{
			name: "top level array",
			raw:  `["Jane Doe"]`,
			want: Analysis{Analysis: `["Jane Doe"]`, PassedStudents: []string{}, FailedStudents: []string{}},
		},
		{
			name: "extra keys ignored",
			raw:  `{"analysis":"ok","recommendations":["tutoring"],"passedStudents":["Jane Doe"],"failedStudents":["John Smith"]}`,
			want: Analysis{Analysis: "ok", PassedStudents: []string{"Jane Doe"}, FailedStudents: []string{"John Smith"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.NotNil(t, got.PassedStudents)
			assert.NotNil(t, got.FailedStudents)
			// idempotent
			assert.Equal(t, got, Parse(tt.raw))
		})
	}
}

func TestParsePreservesOrder(t *testing.T) {
	raw := `{"analysis":"x","passedStudents":["Zed Z","Amy A","Mia M"],"failedStudents":["Bob B","Al A"]}`
	got := Parse(raw)
	assert.Equal(t, []string{"Zed Z", "Amy A", "Mia M"}, got.PassedStudents)
	assert.Equal(t, []string{"Bob B", "Al A"}, got.FailedStudents)
}
