package inmemdb

import (
	"sort"
	"sync"
	"time"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/student"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
)

type (
	gradeKey struct {
		studentID string
		subjectID string
	}

	// DB holds every table behind a single lock, so cascading deletes stay consistent.
	DB struct {
		mutex    sync.RWMutex
		students map[string]*student.Student
		subjects map[string]*subject.Subject
		grades   map[gradeKey]*grade.Grade
		seq      int64 // insertion order of grades
		gradeSeq map[gradeKey]int64
	}
)

func Open() *DB {
	return &DB{
		students: make(map[string]*student.Student),
		subjects: make(map[string]*subject.Subject),
		grades:   make(map[gradeKey]*grade.Grade),
		gradeSeq: make(map[gradeKey]int64),
	}
}

// fieldValue returns a comparable value of a row field.
type fieldValue func(field string) interface{}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case time.Time:
		bv := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
	}
	return 0
}

// withTiebreak appends an ordering on id so results are deterministic.
func withTiebreak(ordering []core.DBOrdering) []core.DBOrdering {
	ords := make([]core.DBOrdering, 0, len(ordering)+1)
	ords = append(ords, ordering...)
	return append(ords, core.DBOrdering{Field: "id", Ascending: true})
}

// sortRows orders rows in place like an SQL ORDER BY on the given orderings.
func sortRows(n int, row func(i int) fieldValue, swap func(i, j int), ordering []core.DBOrdering) {
	sort.Stable(rowSorter{n: n, row: row, swap: swap, ordering: ordering})
}

type rowSorter struct {
	n        int
	row      func(i int) fieldValue
	swap     func(i, j int)
	ordering []core.DBOrdering
}

func (s rowSorter) Len() int      { return s.n }
func (s rowSorter) Swap(i, j int) { s.swap(i, j) }

func (s rowSorter) Less(i, j int) bool {
	ri, rj := s.row(i), s.row(j)
	for _, ord := range s.ordering {
		c := compare(ri(ord.Field), rj(ord.Field))
		if c == 0 {
			continue
		}
		if ord.Ascending {
			return c < 0
		}
		return c > 0
	}
	return false
}
