package inmemdb

import (
	"context"
	"sort"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
)

type gradeRepository struct {
	db *DB
}

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) UpsertGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	_, okStudent := repo.db.students[g.StudentID]
	_, okSubject := repo.db.subjects[g.SubjectID]
	if !okStudent || !okSubject {
		return grade.Grade{}, grade.ErrUnknownReference
	}

	key := gradeKey{studentID: g.StudentID, subjectID: g.SubjectID}
	if orig, ok := repo.db.grades[key]; ok {
		orig.Prelim = g.Prelim
		orig.Midterm = g.Midterm
		orig.Semifinal = g.Semifinal
		orig.Final = g.Final
		orig.UpdatedAt = g.UpdatedAt
		return *orig, nil
	}

	repo.db.seq++
	repo.db.grades[key] = &g
	repo.db.gradeSeq[key] = repo.db.seq
	return g, nil
}

func (repo *gradeRepository) QueryStudentGrades(_ context.Context, subjectID string) ([]grade.StudentGrade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	type row struct {
		seq int64
		sg  grade.StudentGrade
	}
	rows := make([]row, 0)
	for key, g := range repo.db.grades {
		if key.subjectID != subjectID {
			continue
		}
		s, ok := repo.db.students[key.studentID]
		if !ok {
			continue
		}
		rows = append(rows, row{
			seq: repo.db.gradeSeq[key],
			sg: grade.StudentGrade{
				Grade:         *g,
				FirstName:     s.FirstName,
				LastName:      s.LastName,
				StudentNumber: s.StudentNumber,
			},
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	grades := make([]grade.StudentGrade, len(rows))
	for i, r := range rows {
		grades[i] = r.sg
	}
	return grades, nil
}
