package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
)

const subjectColumns = "id, name, code, created_at"

type subjectRepository struct {
	db *sqlx.DB
}

func NewSubjectRepository(db *sqlx.DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	s.ID = uuid.NewString()
	const q = `INSERT INTO subjects (id, name, code, created_at) VALUES (:id, :name, :code, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, s); err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return s, nil
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, ordering []core.DBOrdering) ([]subject.Subject, error) {
	subjects := make([]subject.Subject, 0)
	q := "SELECT " + subjectColumns + " FROM subjects" + orderBy(ordering)
	if err := repo.db.SelectContext(ctx, &subjects, q); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return subjects, nil
}

func (repo *subjectRepository) GetSubject(ctx context.Context, id string) (subject.Subject, error) {
	var s subject.Subject
	q := "SELECT " + subjectColumns + " FROM subjects WHERE id = $1"
	if err := repo.db.GetContext(ctx, &s, q, id); err != nil {
		if isNoRows(err) {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "selecting subject")
	}
	return s, nil
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	var updated subject.Subject
	q := "UPDATE subjects SET name = $1, code = $2 WHERE id = $3 RETURNING " + subjectColumns
	if err := repo.db.QueryRowxContext(ctx, q, s.Name, s.Code, s.ID).StructScan(&updated); err != nil {
		if isNoRows(err) {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "updating subject")
	}
	return updated, nil
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = $1", id)
	if err != nil {
		if isNoRows(err) {
			return subject.ErrNotFound
		}
		return errors.Wrap(err, "deleting subject")
	}
	return checkAffected(res, subject.ErrNotFound)
}
