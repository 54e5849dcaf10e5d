package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
)

type subjectRepository struct {
	db *DB
}

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func subjectField(s subject.Subject) fieldValue {
	return func(field string) interface{} {
		switch field {
		case "name":
			return s.Name
		case "code":
			return s.Code
		case "id":
			return s.ID
		default:
			return s.CreatedAt
		}
	}
}

func (repo *subjectRepository) CreateSubject(_ context.Context, s subject.Subject) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = uuid.NewString()
	repo.db.subjects[s.ID] = &s
	return s, nil
}

func (repo *subjectRepository) QuerySubjects(_ context.Context, ordering []core.DBOrdering) ([]subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]subject.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subjects = append(subjects, *s)
	}
	sortRows(
		len(subjects),
		func(i int) fieldValue { return subjectField(subjects[i]) },
		func(i, j int) { subjects[i], subjects[j] = subjects[j], subjects[i] },
		withTiebreak(ordering),
	)
	return subjects, nil
}

func (repo *subjectRepository) GetSubject(_ context.Context, id string) (subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return *s, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, s subject.Subject) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.subjects[s.ID]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	orig.Name = s.Name
	orig.Code = s.Code
	return *orig, nil
}

// DeleteSubject also deletes the subject's grades.
func (repo *subjectRepository) DeleteSubject(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return subject.ErrNotFound
	}
	delete(repo.db.subjects, id)
	for key := range repo.db.grades {
		if key.subjectID == id {
			delete(repo.db.grades, key)
			delete(repo.db.gradeSeq, key)
		}
	}
	return nil
}
