package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
)

const gradeColumns = "student_id, subject_id, prelim, midterm, semifinal, final, created_at, updated_at"

const upsertGradeQuery = `INSERT INTO grades (` + gradeColumns + `)
	VALUES (:student_id, :subject_id, :prelim, :midterm, :semifinal, :final, :created_at, :updated_at)
	ON CONFLICT (student_id, subject_id) DO UPDATE SET
		prelim = EXCLUDED.prelim,
		midterm = EXCLUDED.midterm,
		semifinal = EXCLUDED.semifinal,
		final = EXCLUDED.final,
		updated_at = EXCLUDED.updated_at
	RETURNING ` + gradeColumns

const studentGradesQuery = `SELECT
		g.student_id, g.subject_id, g.prelim, g.midterm, g.semifinal, g.final, g.created_at, g.updated_at,
		s.first_name, s.last_name, s.student_number
	FROM grades g
	JOIN students s ON s.id = g.student_id
	WHERE g.subject_id = $1
	ORDER BY g.created_at, s.id`

type gradeRepository struct {
	db *sqlx.DB
}

func NewGradeRepository(db *sqlx.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) UpsertGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	q, args, err := sqlx.Named(upsertGradeQuery, g)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "binding grade")
	}

	var saved grade.Grade
	if err := repo.db.QueryRowxContext(ctx, repo.db.Rebind(q), args...).StructScan(&saved); err != nil {
		switch pqCode(err) {
		case foreignKeyViolation, invalidTextRepresentation:
			return grade.Grade{}, grade.ErrUnknownReference
		}
		return grade.Grade{}, errors.Wrap(err, "upserting grade")
	}
	return saved, nil
}

func (repo *gradeRepository) QueryStudentGrades(ctx context.Context, subjectID string) ([]grade.StudentGrade, error) {
	grades := make([]grade.StudentGrade, 0)
	if err := repo.db.SelectContext(ctx, &grades, studentGradesQuery, subjectID); err != nil {
		if pqCode(err) == invalidTextRepresentation {
			return grades, nil
		}
		return nil, errors.Wrap(err, "selecting grades")
	}
	return grades, nil
}
