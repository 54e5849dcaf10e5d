package report

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
)

const (
	passingScore = 75.0
	// names at least this similar to a roster name are taken to be that student
	nameMatchRatio = 0.85
)

const (
	ClassPassed      = "passed"
	ClassFailed      = "failed"
	ClassMissing     = "missing"     // in neither list
	ClassConflicting = "conflicting" // in both lists
)

// Disagreement is a student the model classified differently from the grading rule.
type Disagreement struct {
	Student  string `json:"student"`
	Expected string `json:"expected"`
	Reported string `json:"reported"`
}

// Verification compares the model's lists against the grading rule applied locally.
// The model's lists are never rewritten.
type Verification struct {
	Disagreements []Disagreement `json:"disagreements"`
	Unrecognized  []string       `json:"unrecognized"`
}

// Classify applies the grading rule: passed when final >= 75 or the average of the
// numeric scores >= 75. Students without numeric scores fail.
func Classify(g grade.Grade) string {
	if final, ok := grade.NumericScore(g.Final); ok && final >= passingScore {
		return ClassPassed
	}
	var sum float64
	var n int
	for _, p := range grade.Periods {
		if v, ok := grade.NumericScore(g.Score(p)); ok {
			sum += v
			n++
		}
	}
	if n > 0 && sum/float64(n) >= passingScore {
		return ClassPassed
	}
	return ClassFailed
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func nameRatio(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// matchName returns the roster index of the best match for name, or -1.
func matchName(name string, roster []string) int {
	name = normalizeName(name)
	best, bestRatio := -1, 0.0
	for i, r := range roster {
		if r == name {
			return i
		}
		if ratio := nameRatio(name, r); ratio >= nameMatchRatio && ratio > bestRatio {
			best, bestRatio = i, ratio
		}
	}
	return best
}

// Verify checks the analysis lists against the grade rows the prompt was built from.
func Verify(a Analysis, rows []grade.StudentGrade) Verification {
	roster := make([]string, len(rows))
	for i, r := range rows {
		roster[i] = normalizeName(r.FullName())
	}

	inPassed := make([]bool, len(rows))
	inFailed := make([]bool, len(rows))
	v := Verification{Disagreements: []Disagreement{}, Unrecognized: []string{}}

	mark := func(names []string, seen []bool) {
		for _, n := range names {
			if i := matchName(n, roster); i >= 0 {
				seen[i] = true
			} else {
				v.Unrecognized = append(v.Unrecognized, n)
			}
		}
	}
	mark(a.PassedStudents, inPassed)
	mark(a.FailedStudents, inFailed)

	for i, r := range rows {
		reported := ClassMissing
		switch {
		case inPassed[i] && inFailed[i]:
			reported = ClassConflicting
		case inPassed[i]:
			reported = ClassPassed
		case inFailed[i]:
			reported = ClassFailed
		}
		if expected := Classify(r.Grade); expected != reported {
			v.Disagreements = append(v.Disagreements, Disagreement{
				Student:  r.FullName(),
				Expected: expected,
				Reported: reported,
			})
		}
	}
	return v
}
