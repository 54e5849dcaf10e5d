package report

import (
	"fmt"
	"strings"
)

const (
	noAnalysisText = "No analysis text provided."
	noSummaryText  = "No summary provided."
	noSubjectText  = "N/A"
	emptyListText  = "None"
	bullet         = "• "
)

// Section is a count-prefixed list of student names.
type Section struct {
	Label string
	Names []string
}

func (s Section) Header() string {
	return fmt.Sprintf("%s (%d):", s.Label, len(s.Names))
}

// Items returns the bulleted names, or the single "None" entry for an empty list.
func (s Section) Items() []string {
	if len(s.Names) == 0 {
		return []string{emptyListText}
	}
	items := make([]string, len(s.Names))
	for i, n := range s.Names {
		items[i] = bullet + n
	}
	return items
}

// View is an Analysis laid out for display.
type View struct {
	Subject  string
	Analysis string
	Passed   Section
	Failed   Section
}

func NewView(a Analysis, subjectName string) View {
	return View{
		Subject:  subjectName,
		Analysis: a.Analysis,
		Passed:   Section{Label: "Passed Students", Names: a.PassedStudents},
		Failed:   Section{Label: "Failed Students", Names: a.FailedStudents},
	}
}

// SubjectLabel is the subject name, or "N/A" when unknown.
func (v View) SubjectLabel() string {
	if v.Subject == "" {
		return noSubjectText
	}
	return v.Subject
}

func (v View) Title() string {
	return "AI Analysis Report - " + v.SubjectLabel()
}

// Text renders the on-screen version of the report.
func (v View) Text() string {
	summary := v.Analysis
	if summary == "" {
		summary = noAnalysisText
	}

	var b strings.Builder
	b.WriteString(v.Title())
	b.WriteString("\n\nAI Summary:\n")
	b.WriteString(summary)
	for _, s := range []Section{v.Passed, v.Failed} {
		b.WriteString("\n\n")
		b.WriteString(s.Header())
		for _, item := range s.Items() {
			b.WriteString("\n")
			b.WriteString(item)
		}
	}
	return b.String()
}

// Filename is the download name of the PDF report.
func Filename(subjectName string) string {
	if subjectName == "" {
		subjectName = "report"
	}
	return "AI_Report_" + subjectName + ".pdf"
}
