package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
)

var (
	// OrderingFields lists the fields students can be ordered by.
	OrderingFields = []string{"created_at", "first_name", "last_name", "student_number"}

	// DefaultOrdering is the newest first, like the student records page.
	DefaultOrdering = core.DBOrdering{Field: "created_at", Ascending: false}
)

type Student struct {
	ID            string    `json:"id" db:"id"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	StudentNumber string    `json:"student_number" db:"student_number"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
}

// FullName is the display name used in grade rows and reports.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName     string `json:"first_name" validate:"required,notblank,max=150"`
	LastName      string `json:"last_name" validate:"required,notblank,max=150"`
	StudentNumber string `json:"student_number" validate:"required,notblank,max=50"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.StudentNumber = core.CleanString(ns.StudentNumber)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty fields keep their current value.
type UpdateStudent struct {
	FirstName     string `json:"first_name" validate:"required,notblank,max=150"`
	LastName      string `json:"last_name" validate:"required,notblank,max=150"`
	StudentNumber string `json:"student_number" validate:"required,notblank,max=50"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	if fn := core.CleanString(us.FirstName); fn != "" {
		us.FirstName = fn
	} else {
		us.FirstName = orig.FirstName
	}
	if ln := core.CleanString(us.LastName); ln != "" {
		us.LastName = ln
	} else {
		us.LastName = orig.LastName
	}
	if num := core.CleanString(us.StudentNumber); num != "" {
		us.StudentNumber = num
	} else {
		us.StudentNumber = orig.StudentNumber
	}
	return validate.Struct(us)
}
