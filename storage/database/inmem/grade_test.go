package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/student"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
)

func gradeFor(studentID, subjectID string) grade.Grade {
	now := time.Now().UTC()
	return grade.Grade{StudentID: studentID, SubjectID: subjectID, Final: null.StringFrom("80"), CreatedAt: now, UpdatedAt: now}
}

func TestGradeRepository_UpsertGrade(t *testing.T) {
	ctx := context.Background()
	db := Open()
	students := NewStudentRepository(db)
	repo := NewGradeRepository(db)

	alan, _ := students.CreateStudent(ctx, student.Student{FirstName: "Alan", LastName: "Turing"})
	ada, _ := students.CreateStudent(ctx, student.Student{FirstName: "Ada", LastName: "Lovelace"})
	sub, _ := NewSubjectRepository(db).CreateSubject(ctx, subject.Subject{Name: "Algorithms"})

	_, err := repo.UpsertGrade(ctx, gradeFor("lol", sub.ID))
	assert.Equal(t, grade.ErrUnknownReference, err)
	_, err = repo.UpsertGrade(ctx, gradeFor(ada.ID, "lol"))
	assert.Equal(t, grade.ErrUnknownReference, err)

	first, err := repo.UpsertGrade(ctx, gradeFor(alan.ID, sub.ID))
	require.NoError(t, err)
	_, err = repo.UpsertGrade(ctx, gradeFor(ada.ID, sub.ID))
	require.NoError(t, err)

	// updating keeps the row and its position
	upd := gradeFor(alan.ID, sub.ID)
	upd.Final = null.String{}
	upd.Prelim = null.StringFrom("60")
	got, err := repo.UpsertGrade(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
	assert.False(t, got.Final.Valid)

	rows, err := repo.QueryStudentGrades(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alan Turing", rows[0].FullName())
	assert.Equal(t, "60", rows[0].Prelim.String)
	assert.Equal(t, "Ada Lovelace", rows[1].FullName())

	rows, err = repo.QueryStudentGrades(ctx, "lol")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
