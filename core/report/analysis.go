package report

// Analysis is the structured result of one report generation.
// It is never persisted beyond the report session.
type Analysis struct {
	Analysis       string   `json:"analysis"`
	PassedStudents []string `json:"passedStudents"`
	FailedStudents []string `json:"failedStudents"`
}

func emptyAnalysis(text string) Analysis {
	return Analysis{Analysis: text, PassedStudents: []string{}, FailedStudents: []string{}}
}
