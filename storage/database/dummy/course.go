package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/school"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func newCourseRecord(c school.Course) *courseRecord {
	rec := &courseRecord{studentIDs: c.StudentIDs()}
	if c.Teacher != nil {
		rec.teacherID = c.Teacher.ID
	}
	if c.Room != nil {
		rec.roomID = c.Room.ID
	}
	c.Teacher, c.Room, c.Students = nil, nil, nil
	rec.course = c
	return rec
}

func (repo *courseRepository) CreateCourse(_ context.Context, c school.Course) (school.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = repo.db.nextID("course")
	rec := newCourseRecord(c)
	repo.db.courses[c.ID] = rec
	return repo.db.hydrateCourse(rec), nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id int) (school.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.courses[id]; ok {
		return repo.db.hydrateCourse(rec), nil
	}
	return school.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter, ordering []core.DBOrdering) ([]school.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]school.Course, 0, len(repo.db.courses))
	for _, id := range repo.db.courseIDs() {
		rec := repo.db.courses[id]
		c := rec.course
		switch {
		case filter.Active != nil && c.Active != *filter.Active,
			filter.Type != "" && c.Type != filter.Type,
			filter.TeacherID != 0 && rec.teacherID != filter.TeacherID,
			filter.Level != "" && c.Level != filter.Level,
			filter.Search != "" && !strings.Contains(strings.ToLower(c.Name), filter.Search):
			continue
		}
		courses = append(courses, repo.db.hydrateCourse(rec))
	}
	sort.SliceStable(courses, func(i, j int) bool {
		return lessCourse(courses[i], courses[j], ordering)
	})
	return courses, nil
}

func lessCourse(a, b school.Course, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var cmp int
		switch ord.Field {
		case "name":
			cmp = compareStrings(a.Name, b.Name)
		case "level":
			cmp = compareStrings(string(a.Level), string(b.Level))
		case "day":
			cmp = compareInts(a.Day.Index(), b.Day.Index())
		case "created_at":
			cmp = compareInts(int(a.CreatedAt.UnixNano()), int(b.CreatedAt.UnixNano()))
		case "id":
			cmp = compareInts(a.ID, b.ID)
		}
		if cmp != 0 {
			return (cmp < 0) == ord.Ascending
		}
	}
	return a.ID < b.ID
}

func (repo *courseRepository) UpdateCourse(_ context.Context, c school.Course) (school.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return school.Course{}, course.ErrNotFound
	}
	rec := newCourseRecord(c)
	repo.db.courses[c.ID] = rec
	return repo.db.hydrateCourse(rec), nil
}

func (repo *courseRepository) SetCourseActive(_ context.Context, id int, active bool) (school.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.courses[id]
	if !ok {
		return school.Course{}, course.ErrNotFound
	}
	rec.course.Active = active
	rec.course.UpdatedAt = time.Now().UTC()
	return repo.db.hydrateCourse(rec), nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.courses, id)
	return nil
}

func (repo *courseRepository) AddStudent(_ context.Context, courseID, studentID, limit int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.courses[courseID]
	if !ok {
		return course.ErrNotFound
	}
	if containsInt(rec.studentIDs, studentID) {
		return nil
	}
	if limit > 0 && len(rec.studentIDs) >= limit {
		return course.ErrCourseFull
	}
	rec.studentIDs = append(rec.studentIDs, studentID)
	rec.course.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *courseRepository) RemoveStudent(_ context.Context, courseID, studentID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.courses[courseID]
	if !ok {
		return course.ErrNotFound
	}
	if !containsInt(rec.studentIDs, studentID) {
		return course.ErrNotEnrolled
	}
	rec.studentIDs = removeInt(rec.studentIDs, studentID)
	rec.course.UpdatedAt = time.Now().UTC()
	return nil
}
