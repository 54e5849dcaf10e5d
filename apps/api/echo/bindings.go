package echoapi

import (
	"net/mail"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
)

var orderingParam = "ordering"

// Ordering binds `?ordering=-created_at,name`. A leading "-" sorts descending.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

type SuccessResponse struct {
	Success string `json:"success"`
}

// EmailReportRequest lists the recipients of a report.
type EmailReportRequest struct {
	To []string `json:"to" validate:"required,min=1,dive,email"`
}

func (r *EmailReportRequest) Validate(validate *validator.Validate) ([]mail.Address, error) {
	for i := range r.To {
		r.To[i] = strings.TrimSpace(r.To[i])
	}
	if err := validate.Struct(r); err != nil {
		return nil, err
	}

	addrs := make([]mail.Address, 0, len(r.To))
	for _, to := range r.To {
		addr, err := mail.ParseAddress(to)
		if err != nil {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "to", Error: err.Error()})
		}
		addrs = append(addrs, *addr)
	}
	return addrs, nil
}
