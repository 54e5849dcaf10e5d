package student

import (
	"context"
	"errors"
	"time"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryStudents(ctx context.Context, ordering []core.DBOrdering) ([]Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	return svc.repo.CreateStudent(ctx, Student{
		FirstName:     ns.FirstName,
		LastName:      ns.LastName,
		StudentNumber: ns.StudentNumber,
		CreatedAt:     time.Now().UTC(),
	})
}

// Query lists students. Unknown ordering fields are ignored.
func (svc *Service) Query(ctx context.Context, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, core.CleanOrderings(ordering, OrderingFields, DefaultOrdering))
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	orig.FirstName = us.FirstName
	orig.LastName = us.LastName
	orig.StudentNumber = us.StudentNumber
	return svc.repo.UpdateStudent(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}
