package subject

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
)

var (
	OrderingFields  = []string{"created_at", "name", "code"}
	DefaultOrdering = core.DBOrdering{Field: "created_at", Ascending: false}
)

type Subject struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewSubject contains information needed to create a new Subject. Both fields are required.
type NewSubject struct {
	Name string `json:"name" validate:"required,notblank,max=200"`
	Code string `json:"code" validate:"required,notblank,max=50"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
	return validate.Struct(ns)
}

// UpdateSubject replaces both fields of an existing Subject, like the subject form does.
type UpdateSubject struct {
	Name string `json:"name" validate:"required,notblank,max=200"`
	Code string `json:"code" validate:"required,notblank,max=50"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Code = core.CleanString(us.Code)
	return validate.Struct(us)
}
