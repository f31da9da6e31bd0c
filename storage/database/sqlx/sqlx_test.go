package sqlxrepos_test

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/matcher"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/core/user"
	cachesvc "github.com/trezcool/thinkwise/services/cache"
	"github.com/trezcool/thinkwise/storage/database"
	sqlxrepos "github.com/trezcool/thinkwise/storage/database/sqlx"
	"github.com/trezcool/thinkwise/testutil"
)

// prepareDB migrates a scratch database on the server at TEST_DATABASE_HOST and empties it after the test.
func prepareDB(t *testing.T) *sqlx.DB {
	host := os.Getenv("TEST_DATABASE_HOST")
	if host == "" {
		t.Skip("TEST_DATABASE_HOST is not set")
	}

	conf := *core.Conf
	conf.Database.Host = host
	conf.Database.Name = "thinkwise_test"
	conf.Database.DisableTLS = true

	require.NoError(t, database.CreateIfNotExist(&conf))
	db, err := database.Open(&conf)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db.DB))

	t.Cleanup(func() {
		_, _ = db.Exec(`TRUNCATE course_students, courses, payments, expenses, students, teachers, rooms, users RESTART IDENTITY CASCADE`)
		_ = db.Close()
	})
	return db
}

var mondays = testutil.Availability{
	Days:  []school.Day{school.Monday},
	Slots: []school.TimeSlot{school.Slot1000},
}

func TestCourseRepository(t *testing.T) {
	db := prepareDB(t)
	ctx := context.Background()

	teachers := sqlxrepos.NewTeacherRepository(db)
	students := sqlxrepos.NewStudentRepository(db)
	rooms := sqlxrepos.NewRoomRepository(db)
	courses := sqlxrepos.NewCourseRepository(db)
	svc := course.NewService(courses, teachers, students, rooms, cachesvc.NewMemoryCache())

	backend := []school.Specialization{school.Backend}
	ada := testutil.CreateTeacher(t, teachers, "Ada", "Lovelace", backend, mondays)
	aula := testutil.CreateRoom(t, rooms, "Aula Turing", 1)
	alan := testutil.CreateStudent(t, students, "Alan", "Rossi", "alan@example.com", backend, mondays)
	grace := testutil.CreateStudent(t, students, "Grace", "Bianchi", "grace@example.com", backend, mondays)

	c := testutil.CreateCourse(t, svc, course.Payload{
		Name:           "Go 101",
		TeacherID:      ada.ID,
		RoomID:         aula.ID,
		StudentIDs:     []int{alan.ID},
		Day:            school.Monday,
		Slot:           school.Slot1000,
		Specialization: school.Backend,
		Type:           school.Group,
		Level:          school.Beginner,
		Frequency:      school.OnceAWeek,
	})

	got, err := courses.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Teacher.FirstName)
	assert.Equal(t, 1, got.Room.Capacity)
	require.Len(t, got.Students, 1)
	assert.Equal(t, alan.ID, got.Students[0].ID)

	// the student sees the course with its sessions
	s, err := students.GetStudent(ctx, alan.ID)
	require.NoError(t, err)
	require.Len(t, s.Courses, 1)
	assert.True(t, s.HasActiveCourse())

	_, err = svc.AddStudent(ctx, c.ID, grace.ID)
	assert.True(t, matcher.IsKind(err, matcher.CapacityExceeded), "got %v", err)
	assert.Equal(t, course.ErrCourseFull, courses.AddStudent(ctx, c.ID, grace.ID, 1))

	require.NoError(t, courses.RemoveStudent(ctx, c.ID, alan.ID))
	assert.Equal(t, course.ErrNotEnrolled, courses.RemoveStudent(ctx, c.ID, alan.ID))

	waiting, err := students.QueryStudents(ctx, student.QueryFilter{WithoutCourse: true}, nil)
	require.NoError(t, err)
	assert.Len(t, waiting, 2)

	require.NoError(t, rooms.DeleteRoom(ctx, aula.ID))
	got, err = courses.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Room)

	_, err = courses.GetCourse(ctx, 999)
	assert.Equal(t, course.ErrNotFound, err)
}

func TestRoomRepository_uniqueName(t *testing.T) {
	db := prepareDB(t)
	rooms := sqlxrepos.NewRoomRepository(db)

	testutil.CreateRoom(t, rooms, "Aula Turing", 10)
	_, err := rooms.CreateRoom(context.Background(), school.Room{Name: "aula turing", Capacity: 5})
	assert.Equal(t, room.ErrNameExists, err)
}

func TestUserRepository(t *testing.T) {
	db := prepareDB(t)
	users := sqlxrepos.NewUserRepository(db)
	svc := user.NewService(users)
	ctx := context.Background()

	usr := testutil.CreateUser(t, users, "Segreteria", "segreteria", "segreteria@thinkwise.it", "s3cr3t-pass", true, true)

	got, err := svc.GetByUsernameOrEmail(ctx, "SEGRETERIA@thinkwise.it")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
	assert.True(t, got.IsAdmin)

	_, err = svc.Authenticate(ctx, user.Credentials{Username: "segreteria", Password: "s3cr3t-pass"})
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, user.Credentials{Username: "segreteria", Password: "nope"})
	assert.Equal(t, user.ErrInvalidCredentials, err)
}
