// Package testutil builds fixtures shared by the package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/expense"
	"github.com/trezcool/thinkwise/core/payment"
	"github.com/trezcool/thinkwise/core/report"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/core/teacher"
	"github.com/trezcool/thinkwise/core/user"
	cachesvc "github.com/trezcool/thinkwise/services/cache"
	emailsvc "github.com/trezcool/thinkwise/services/email"
	dummydb "github.com/trezcool/thinkwise/storage/database/dummy"
)

// Repos holds the repositories of one in-memory database.
type Repos struct {
	Teachers teacher.Repository
	Students student.Repository
	Rooms    room.Repository
	Courses  course.Repository
	Payments payment.Repository
	Expenses expense.Repository
	Users    user.Repository
}

// Services holds the services wired like the API server does, on top of Repos.
type Services struct {
	Repos
	Cache   core.Cache
	Course  *course.Service
	Teacher *teacher.Service
	Student *student.Service
	Room    *room.Service
	Payment *payment.Service
	Expense *expense.Service
	Report  *report.Service
	User    *user.Service
}

func NewRepos(t *testing.T) Repos {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return Repos{
		Teachers: dummydb.NewTeacherRepository(db),
		Students: dummydb.NewStudentRepository(db),
		Rooms:    dummydb.NewRoomRepository(db),
		Courses:  dummydb.NewCourseRepository(db),
		Payments: dummydb.NewPaymentRepository(db),
		Expenses: dummydb.NewExpenseRepository(db),
		Users:    dummydb.NewUserRepository(db),
	}
}

// NewServices returns services over a fresh in-memory database. Emails go to the console mock.
func NewServices(t *testing.T) Services {
	repos := NewRepos(t)
	cache := cachesvc.NewMemoryCache()
	mailSvc := emailsvc.NewConsoleServiceMock(NewLogger(t))

	return Services{
		Repos:   repos,
		Cache:   cache,
		Course:  course.NewService(repos.Courses, repos.Teachers, repos.Students, repos.Rooms, cache),
		Teacher: teacher.NewService(repos.Teachers),
		Student: student.NewService(repos.Students),
		Room:    room.NewService(repos.Rooms),
		Payment: payment.NewService(repos.Payments, repos.Students, mailSvc, cache),
		Expense: expense.NewService(repos.Expenses, cache),
		Report: report.NewService(report.Repositories{
			Courses:  repos.Courses,
			Students: repos.Students,
			Teachers: repos.Teachers,
			Rooms:    repos.Rooms,
			Payments: repos.Payments,
			Expenses: repos.Expenses,
		}, cache, time.Minute),
		User: user.NewService(repos.Users),
	}
}

func CreateUser(t *testing.T, repo user.Repository, name, uname, email, pwd string, isAdmin, isActive bool) user.User {
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		IsAdmin:   isAdmin,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// Availability lists the days and slots a teacher or student can attend.
type Availability struct {
	Days  []school.Day
	Slots []school.TimeSlot
}

func CreateTeacher(
	t *testing.T,
	repo teacher.Repository,
	first, last string,
	specs []school.Specialization,
	avail Availability,
) school.Teacher {
	now := time.Now().UTC()
	tchr, err := repo.CreateTeacher(context.Background(), school.Teacher{
		FirstName:       first,
		LastName:        last,
		Specializations: specs,
		AvailableDays:   avail.Days,
		AvailableSlots:  avail.Slots,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tchr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	first, last, email string,
	prefs []school.Specialization,
	avail Availability,
	enrolledAt ...school.Date,
) school.Student {
	now := time.Now().UTC()
	enrolled := school.DateOf(now)
	if len(enrolledAt) > 0 {
		enrolled = enrolledAt[0]
	}
	s, err := repo.CreateStudent(context.Background(), school.Student{
		FirstName:      first,
		LastName:       last,
		Email:          email,
		Age:            25,
		EnrolledAt:     enrolled,
		Preferences:    prefs,
		PreferredDays:  avail.Days,
		PreferredSlots: avail.Slots,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateRoom(t *testing.T, repo room.Repository, name string, capacity int) school.Room {
	now := time.Now().UTC()
	r, err := repo.CreateRoom(context.Background(), school.Room{Name: name, Capacity: capacity, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateRoom() failed: %v", err)
	}
	return r
}

// CreateCourse stores a course through the service so that every matcher rule applies.
func CreateCourse(t *testing.T, svc *course.Service, data course.Payload) school.Course {
	c, err := svc.Create(context.Background(), data)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

// Logger writes entries to the test log. Errors fail the test.
type Logger struct {
	t testing.TB
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t testing.TB) *Logger { return &Logger{t: t} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	l.t.Logf("%s: %s %v", level, msg, args)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }

func (l *Logger) Error(msg string, args ...interface{}) {
	l.t.Helper()
	l.t.Errorf("ERROR: %s %v", msg, args)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.t.Helper()
	l.t.Fatalf("FATAL: %s %v", msg, args)
}
