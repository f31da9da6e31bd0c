package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, t school.Teacher) (school.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = repo.db.nextID("teacher")
	repo.db.teachers[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) GetTeacher(_ context.Context, id int) (school.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.teachers[id]; ok {
		return *t, nil
	}
	return school.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) QueryTeachers(_ context.Context, filter teacher.QueryFilter) ([]school.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]school.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		if filter.Search != "" && !matchSearch(filter.Search, t.FirstName, t.LastName, t.Email) {
			continue
		}
		if filter.Specialization != "" && !containsSpecialization(t.Specializations, filter.Specialization) {
			continue
		}
		teachers = append(teachers, *t)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, t school.Teacher) (school.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.teachers[t.ID]; !ok {
		return school.Teacher{}, teacher.ErrNotFound
	}
	repo.db.teachers[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) DeleteTeacher(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.teachers[id]; !ok {
		return teacher.ErrNotFound
	}
	delete(repo.db.teachers, id)
	for _, rec := range repo.db.courses {
		if rec.teacherID == id {
			rec.teacherID = 0
		}
	}
	return nil
}

func (repo *teacherRepository) CountActiveCourses(_ context.Context, teacherID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, rec := range repo.db.courses {
		if rec.teacherID == teacherID && rec.course.Active {
			n++
		}
	}
	return n, nil
}

// matchSearch does a case-insensitive match of the lowered search on any of the fields.
func matchSearch(search string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func containsSpecialization(specs []school.Specialization, sp school.Specialization) bool {
	for _, s := range specs {
		if s == sp {
			return true
		}
	}
	return false
}
