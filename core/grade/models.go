package grade

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// Grading periods, in order.
const (
	PeriodPrelim    = "prelim"
	PeriodMidterm   = "midterm"
	PeriodSemifinal = "semifinal"
	PeriodFinal     = "final"
)

var Periods = []string{PeriodPrelim, PeriodMidterm, PeriodSemifinal, PeriodFinal}

// Grade holds the period scores of one student for one subject.
// There is at most one Grade per (StudentID, SubjectID) pair.
// Scores are numeric-as-text and optional.
type Grade struct {
	StudentID string      `json:"student_id" db:"student_id"`
	SubjectID string      `json:"subject_id" db:"subject_id"`
	Prelim    null.String `json:"prelim" db:"prelim"`
	Midterm   null.String `json:"midterm" db:"midterm"`
	Semifinal null.String `json:"semifinal" db:"semifinal"`
	Final     null.String `json:"final" db:"final"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

// Score returns the score recorded for the given period.
func (g Grade) Score(period string) null.String {
	switch period {
	case PeriodPrelim:
		return g.Prelim
	case PeriodMidterm:
		return g.Midterm
	case PeriodSemifinal:
		return g.Semifinal
	case PeriodFinal:
		return g.Final
	default:
		return null.String{}
	}
}

// StudentGrade is a Grade joined with its owning student.
type StudentGrade struct {
	Grade
	FirstName     string `json:"first_name" db:"first_name"`
	LastName      string `json:"last_name" db:"last_name"`
	StudentNumber string `json:"student_number" db:"student_number"`
}

func (sg StudentGrade) FullName() string {
	return sg.FirstName + " " + sg.LastName
}

// NumericScore parses a score. ok is false for missing or non-numeric scores.
func NumericScore(s null.String) (val float64, ok bool) {
	if !s.Valid {
		return 0, false
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(s.String), 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GradeEntry is one row of the grade sheet as submitted for a subject.
// All four scores are replaced; a null or blank score clears it.
type GradeEntry struct {
	StudentID string      `json:"student_id" validate:"required,uuid"`
	Prelim    null.String `json:"prelim"`
	Midterm   null.String `json:"midterm"`
	Semifinal null.String `json:"semifinal"`
	Final     null.String `json:"final"`
}

func cleanScore(s null.String) null.String {
	if !s.Valid {
		return s
	}
	val := strings.TrimSpace(s.String)
	return null.NewString(val, val != "")
}

func (ge *GradeEntry) Clean() {
	ge.StudentID = strings.TrimSpace(ge.StudentID)
	ge.Prelim = cleanScore(ge.Prelim)
	ge.Midterm = cleanScore(ge.Midterm)
	ge.Semifinal = cleanScore(ge.Semifinal)
	ge.Final = cleanScore(ge.Final)
}

// GradeSheet is a batch of entries saved together for one subject.
type GradeSheet struct {
	Entries []GradeEntry `json:"entries" validate:"dive"`
}

func (gs *GradeSheet) Validate(validate *validator.Validate) error {
	for i := range gs.Entries {
		gs.Entries[i].Clean()
	}
	return validate.Struct(gs)
}
