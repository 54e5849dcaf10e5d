package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/student"
)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func studentField(s student.Student) fieldValue {
	return func(field string) interface{} {
		switch field {
		case "first_name":
			return s.FirstName
		case "last_name":
			return s.LastName
		case "student_number":
			return s.StudentNumber
		case "id":
			return s.ID
		default:
			return s.CreatedAt
		}
	}
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = uuid.NewString()
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, *s)
	}
	sortRows(
		len(students),
		func(i int) fieldValue { return studentField(students[i]) },
		func(i, j int) { students[i], students[j] = students[j], students[i] },
		withTiebreak(ordering),
	)
	return students, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.students[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	orig.FirstName = s.FirstName
	orig.LastName = s.LastName
	orig.StudentNumber = s.StudentNumber
	return *orig, nil
}

// DeleteStudent also deletes the student's grades.
func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.students, id)
	for key := range repo.db.grades {
		if key.studentID == id {
			delete(repo.db.grades, key)
			delete(repo.db.gradeSeq, key)
		}
	}
	return nil
}
