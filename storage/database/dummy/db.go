package dummydb

import (
	"sort"
	"sync"

	"github.com/trezcool/thinkwise/core/expense"
	"github.com/trezcool/thinkwise/core/payment"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/user"
)

type (
	// DB is an in-memory store. One lock guards all the tables so that
	// relations are always read in a consistent state.
	DB struct {
		sync.RWMutex

		pk       map[string]int
		teachers map[int]*school.Teacher
		students map[int]*school.Student
		rooms    map[int]*school.Room
		courses  map[int]*courseRecord
		payments map[int]*payment.Payment
		expenses map[int]*expense.Expense
		users    map[int]*user.User
	}

	// courseRecord stores the relations of a course by id, like the course_students table does.
	courseRecord struct {
		course     school.Course
		teacherID  int
		roomID     int
		studentIDs []int
	}
)

func Open() (*DB, error) {
	db := &DB{
		pk:       make(map[string]int),
		teachers: make(map[int]*school.Teacher),
		students: make(map[int]*school.Student),
		rooms:    make(map[int]*school.Room),
		courses:  make(map[int]*courseRecord),
		payments: make(map[int]*payment.Payment),
		expenses: make(map[int]*expense.Expense),
		users:    make(map[int]*user.User),
	}
	return db, nil
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.pk[table]++
	return db.pk[table]
}

// courseIDs returns the course ids in insertion order.
func (db *DB) courseIDs() []int {
	ids := make([]int, 0, len(db.courses))
	for id := range db.courses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// hydrateCourse resolves the relations of rec. Must be called with the lock held.
func (db *DB) hydrateCourse(rec *courseRecord) school.Course {
	c := rec.course
	c.Teacher, c.Room = nil, nil
	if t, ok := db.teachers[rec.teacherID]; ok {
		c.Teacher = t.Ref()
	}
	if r, ok := db.rooms[rec.roomID]; ok {
		c.Room = r.Ref()
	}
	c.Students = make([]school.StudentRef, 0, len(rec.studentIDs))
	for _, id := range rec.studentIDs {
		if s, ok := db.students[id]; ok {
			c.Students = append(c.Students, s.Ref())
		}
	}
	return c
}

// hydrateStudent attaches every course the student is enrolled in. Must be called with the lock held.
func (db *DB) hydrateStudent(s *school.Student) school.Student {
	out := *s
	out.Courses = make([]school.CourseRef, 0)
	for _, id := range db.courseIDs() {
		rec := db.courses[id]
		if containsInt(rec.studentIDs, s.ID) {
			out.Courses = append(out.Courses, rec.course.Ref())
		}
	}
	return out
}

func containsInt(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeInt(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
