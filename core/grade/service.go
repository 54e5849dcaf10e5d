package grade

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrUnknownReference = errors.New("student or subject does not exist")
)

type (
	Repository interface {
		// QueryStudentGrades returns the grades of a subject joined with their students,
		// in the order the grades were first recorded.
		QueryStudentGrades(ctx context.Context, subjectID string) ([]StudentGrade, error)
		// UpsertGrade inserts the grade or updates the scores of the existing
		// (student_id, subject_id) grade.
		UpsertGrade(ctx context.Context, g Grade) (Grade, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) ForSubject(ctx context.Context, subjectID string) ([]StudentGrade, error) {
	return svc.repo.QueryStudentGrades(ctx, subjectID)
}

// Save upserts every entry of the sheet in order. It stops at the first failure:
// grades saved before it are kept and returned along with the error.
func (svc *Service) Save(ctx context.Context, subjectID string, sheet GradeSheet) ([]Grade, error) {
	saved := make([]Grade, 0, len(sheet.Entries))
	for i, e := range sheet.Entries {
		now := time.Now().UTC()
		g, err := svc.repo.UpsertGrade(ctx, Grade{
			StudentID: e.StudentID,
			SubjectID: subjectID,
			Prelim:    e.Prelim,
			Midterm:   e.Midterm,
			Semifinal: e.Semifinal,
			Final:     e.Final,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return saved, errors.Wrap(err, fmt.Sprintf("saving grade %d of %d", i+1, len(sheet.Entries)))
		}
		saved = append(saved, g)
	}
	return saved, nil
}
