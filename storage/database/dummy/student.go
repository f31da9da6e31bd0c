package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(_ context.Context, s school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = repo.db.nextID("student")
	s.Courses = nil
	repo.db.students[s.ID] = &s
	return repo.db.hydrateStudent(&s), nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id int) (school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return repo.db.hydrateStudent(s), nil
	}
	return school.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter, ordering []core.DBOrdering) ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]school.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		if filter.Search != "" && !matchSearch(filter.Search, s.FirstName, s.LastName, s.Email) {
			continue
		}
		students = append(students, repo.db.hydrateStudent(s))
	}
	sort.SliceStable(students, func(i, j int) bool {
		return lessStudent(students[i], students[j], ordering)
	})
	return students, nil
}

func lessStudent(a, b school.Student, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var cmp int
		switch ord.Field {
		case "first_name":
			cmp = compareStrings(a.FirstName, b.FirstName)
		case "last_name":
			cmp = compareStrings(a.LastName, b.LastName)
		case "age":
			cmp = compareInts(a.Age, b.Age)
		case "enrolled_at":
			cmp = compareInts(int(a.EnrolledAt.Unix()), int(b.EnrolledAt.Unix()))
		case "id":
			cmp = compareInts(a.ID, b.ID)
		}
		if cmp != 0 {
			return (cmp < 0) == ord.Ascending
		}
	}
	return a.ID < b.ID
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s school.Student) (school.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[s.ID]; !ok {
		return school.Student{}, student.ErrNotFound
	}
	s.Courses = nil
	repo.db.students[s.ID] = &s
	return repo.db.hydrateStudent(&s), nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.students, id)
	for _, rec := range repo.db.courses {
		rec.studentIDs = removeInt(rec.studentIDs, id)
	}
	for pid, p := range repo.db.payments {
		if p.StudentID == id {
			delete(repo.db.payments, pid)
		}
	}
	return nil
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
