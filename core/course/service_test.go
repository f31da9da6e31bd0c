package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/matcher"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/testutil"
)

var (
	monWed = testutil.Availability{
		Days:  []school.Day{school.Monday, school.Wednesday},
		Slots: []school.TimeSlot{school.Slot1000, school.Slot1400},
	}
	fridays = testutil.Availability{
		Days:  []school.Day{school.Friday},
		Slots: []school.TimeSlot{school.Slot1000},
	}
	backend = []school.Specialization{school.Backend}
)

type fixture struct {
	svcs     testutil.Services
	teacher  school.Teacher
	students []school.Student
	room     school.Room
}

func setup(t *testing.T) fixture {
	svcs := testutil.NewServices(t)
	f := fixture{
		svcs:    svcs,
		teacher: testutil.CreateTeacher(t, svcs.Teachers, "Ada", "Lovelace", backend, monWed),
		room:    testutil.CreateRoom(t, svcs.Rooms, "Aula Turing", 2),
	}
	for _, name := range []string{"Alan", "Grace", "Linus"} {
		f.students = append(f.students, testutil.CreateStudent(t, svcs.Students, name, "Rossi", "", backend, monWed))
	}
	return f
}

func groupPayload(name string, teacherID, roomID int, studentIDs ...int) course.Payload {
	return course.Payload{
		Name:           name,
		TeacherID:      teacherID,
		RoomID:         roomID,
		StudentIDs:     studentIDs,
		Day:            school.Monday,
		Slot:           school.Slot1000,
		Specialization: school.Backend,
		Type:           school.Group,
		Level:          school.Beginner,
		Frequency:      school.OnceAWeek,
	}
}

func assertKind(t *testing.T, err error, kind matcher.Kind) {
	t.Helper()
	aErr, ok := matcher.AsAssignmentError(err)
	if !assert.True(t, ok, "want an AssignmentError, got %v", err) {
		return
	}
	assert.Equal(t, kind, aErr.Kind)
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alan, grace, linus := f.students[0], f.students[1], f.students[2]

	c := testutil.CreateCourse(t, f.svcs.Course, groupPayload("Go 101", f.teacher.ID, f.room.ID, alan.ID, grace.ID))
	assert.True(t, c.Active)
	assert.Equal(t, f.teacher.ID, c.Teacher.ID)
	assert.Equal(t, f.room.ID, c.Room.ID)
	assert.Equal(t, []int{alan.ID, grace.ID}, c.StudentIDs())

	friday := testutil.CreateTeacher(t, f.svcs.Teachers, "Fri", "Day", backend, fridays)
	otherRoom := testutil.CreateRoom(t, f.svcs.Rooms, "Aula Hopper", 10)

	tests := []struct {
		name     string
		data     course.Payload
		wantKind matcher.Kind
		wantFld  string
	}{
		{name: "unavailable teacher", data: groupPayload("A", friday.ID, 0), wantKind: matcher.ScheduleIncompatible},
		{name: "room used at the same time", data: groupPayload("B", 0, f.room.ID), wantKind: matcher.RoomConflict},
		{
			name:     "student already busy",
			data:     groupPayload("C", 0, otherRoom.ID, linus.ID, alan.ID),
			wantKind: matcher.ScheduleIncompatible,
		},
		{name: "unknown teacher", data: groupPayload("D", 999, 0), wantFld: "insegnanteId"},
		{name: "unknown room", data: groupPayload("E", 0, 999), wantFld: "aulaId"},
		{name: "unknown student", data: groupPayload("F", 0, 0, 999), wantFld: "studentiIds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svcs.Course.Create(ctx, tt.data)
			require.Error(t, err)
			if tt.wantFld != "" {
				vErr, ok := err.(*core.ValidationError)
				require.True(t, ok, "want a ValidationError, got %v", err)
				require.Len(t, vErr.Fields, 1)
				assert.Equal(t, tt.wantFld, vErr.Fields[0].Field)
				return
			}
			assertKind(t, err, tt.wantKind)
		})
	}

	t.Run("room capacity counts the students one by one", func(t *testing.T) {
		small := testutil.CreateRoom(t, f.svcs.Rooms, "Aula Piccola", 1)
		data := groupPayload("G", 0, small.ID, linus.ID)
		data.Day = school.Wednesday
		fresh := testutil.CreateStudent(t, f.svcs.Students, "Ken", "Thompson", "", backend, monWed)
		data.StudentIDs = append(data.StudentIDs, fresh.ID)

		_, err := f.svcs.Course.Create(ctx, data)
		assertKind(t, err, matcher.CapacityExceeded)
	})
}

func TestService_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alan := f.students[0]

	c := testutil.CreateCourse(t, f.svcs.Course, groupPayload("Go 101", f.teacher.ID, f.room.ID, alan.ID))

	// the course never conflicts with itself
	data := groupPayload("Go 102", f.teacher.ID, f.room.ID, alan.ID)
	updated, err := f.svcs.Course.Update(ctx, c.ID, data)
	require.NoError(t, err)
	assert.Equal(t, "Go 102", updated.Name)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)
	assert.Equal(t, []int{alan.ID}, updated.StudentIDs())

	_, err = f.svcs.Course.Update(ctx, 999, data)
	assert.Equal(t, course.ErrNotFound, err)
}

func TestService_AddStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alan, grace, linus := f.students[0], f.students[1], f.students[2]

	c := testutil.CreateCourse(t, f.svcs.Course, groupPayload("Go 101", 0, f.room.ID, alan.ID))
	other := groupPayload("Go 201", 0, 0, linus.ID)
	other.Slot = school.Slot1400
	otherCourse := testutil.CreateCourse(t, f.svcs.Course, other)

	got, err := f.svcs.Course.AddStudent(ctx, c.ID, grace.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{alan.ID, grace.ID}, got.StudentIDs())

	t.Run("already enrolled", func(t *testing.T) {
		_, err := f.svcs.Course.AddStudent(ctx, otherCourse.ID, linus.ID)
		assertKind(t, err, matcher.AlreadyEnrolled)
	})
	t.Run("room is full", func(t *testing.T) {
		_, err := f.svcs.Course.AddStudent(ctx, c.ID, linus.ID)
		assertKind(t, err, matcher.CapacityExceeded)
	})
	t.Run("unavailable student", func(t *testing.T) {
		late := testutil.CreateStudent(t, f.svcs.Students, "Late", "Comer", "", backend, fridays)
		_, err := f.svcs.Course.AddStudent(ctx, otherCourse.ID, late.ID)
		assertKind(t, err, matcher.ScheduleIncompatible)
	})
	t.Run("inactive course", func(t *testing.T) {
		_, err := f.svcs.Course.Deactivate(ctx, otherCourse.ID)
		require.NoError(t, err)
		_, err = f.svcs.Course.AddStudent(ctx, otherCourse.ID, alan.ID)
		assert.Equal(t, course.ErrCourseInactive, err)
	})
	t.Run("unknown course", func(t *testing.T) {
		_, err := f.svcs.Course.AddStudent(ctx, 999, alan.ID)
		assert.Equal(t, course.ErrNotFound, err)
	})
}

func TestService_RemoveStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alan, grace := f.students[0], f.students[1]

	c := testutil.CreateCourse(t, f.svcs.Course, groupPayload("Go 101", 0, 0, alan.ID))

	require.NoError(t, f.svcs.Course.RemoveStudent(ctx, alan.ID, c.ID))
	got, err := f.svcs.Course.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Students)

	assert.Equal(t, course.ErrNotEnrolled, f.svcs.Course.RemoveStudent(ctx, grace.ID, c.ID))
	assert.Equal(t, course.ErrNotFound, f.svcs.Course.RemoveStudent(ctx, grace.ID, 999))
}

func TestService_DeactivateReactivate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alan := f.students[0]

	first := testutil.CreateCourse(t, f.svcs.Course, groupPayload("Go 101", 0, f.room.ID, alan.ID))

	c, err := f.svcs.Course.Deactivate(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, c.Active)
	assert.Equal(t, []int{alan.ID}, c.StudentIDs(), "students stay enrolled")

	// the room and the student are free while the course is interrupted
	second := testutil.CreateCourse(t, f.svcs.Course, groupPayload("Rust 101", 0, f.room.ID, alan.ID))

	_, err = f.svcs.Course.Reactivate(ctx, first.ID)
	assertKind(t, err, matcher.RoomConflict)

	require.NoError(t, f.svcs.Course.Delete(ctx, second.ID))
	c, err = f.svcs.Course.Reactivate(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, c.Active)
}

func TestService_Reactivate_studentConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alan := f.students[0]

	first := testutil.CreateCourse(t, f.svcs.Course, groupPayload("Go 101", 0, 0, alan.ID))
	_, err := f.svcs.Course.Deactivate(ctx, first.ID)
	require.NoError(t, err)
	testutil.CreateCourse(t, f.svcs.Course, groupPayload("Rust 101", 0, 0, alan.ID))

	_, err = f.svcs.Course.Reactivate(ctx, first.ID)
	assertKind(t, err, matcher.ScheduleIncompatible)
}

func TestService_Eligible(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alan, grace, linus := f.students[0], f.students[1], f.students[2]
	testutil.CreateTeacher(t, f.svcs.Teachers, "Fri", "Day", backend, fridays)
	frontend := testutil.CreateTeacher(t, f.svcs.Teachers, "Front", "End", []school.Specialization{school.Frontend}, monWed)
	otherRoom := testutil.CreateRoom(t, f.svcs.Rooms, "Aula Hopper", 10)

	c := testutil.CreateCourse(t, f.svcs.Course, groupPayload("Go 101", f.teacher.ID, f.room.ID, alan.ID))
	busy := groupPayload("Go 201", 0, 0, grace.ID)
	busy.Day = school.Wednesday
	testutil.CreateCourse(t, f.svcs.Course, busy)

	cands, err := f.svcs.Course.Eligible(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{f.teacher.ID}, teacherIDs(cands.Teachers))
	assert.NotContains(t, teacherIDs(cands.Teachers), frontend.ID)
	assert.Equal(t, []int{grace.ID, linus.ID}, studentIDs(cands.Students))
	assert.Equal(t, []int{f.room.ID, otherRoom.ID}, roomIDs(cands.Rooms))

	t.Run("draft", func(t *testing.T) {
		data := groupPayload("Draft", 0, 0, linus.ID)
		cands, err := f.svcs.Course.EligibleFor(ctx, 0, data)
		require.NoError(t, err)
		// alan is busy with Go 101, linus is already selected
		assert.Equal(t, []int{grace.ID}, studentIDs(cands.Students))
		assert.Equal(t, []int{otherRoom.ID}, roomIDs(cands.Rooms))
	})
}

func TestService_WaitlistAndCalendar(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alan, grace, linus := f.students[0], f.students[1], f.students[2]

	twice := groupPayload("Zig 101", f.teacher.ID, 0, alan.ID)
	twice.Frequency = school.TwiceAWeek
	twice.SecondDay = school.Wednesday
	twice.SecondSlot = school.Slot1400
	testutil.CreateCourse(t, f.svcs.Course, twice)

	same := groupPayload("C 101", 0, 0, grace.ID)
	testutil.CreateCourse(t, f.svcs.Course, same)

	stopped := groupPayload("Old", 0, 0, linus.ID)
	stopped.Slot = school.Slot1400
	old := testutil.CreateCourse(t, f.svcs.Course, stopped)
	_, err := f.svcs.Course.Deactivate(ctx, old.ID)
	require.NoError(t, err)

	waiting, err := f.svcs.Course.Waitlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{linus.ID}, studentIDs(waiting))

	entries, err := f.svcs.Course.Calendar(ctx, course.CalendarFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "C 101", entries[0].Name)
	assert.Equal(t, "Zig 101", entries[1].Name)
	assert.Equal(t, school.Wednesday, entries[2].Day)
	assert.True(t, entries[2].Secondary)

	entries, err = f.svcs.Course.Calendar(ctx, course.CalendarFilter{TeacherID: f.teacher.ID})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = f.svcs.Course.Calendar(ctx, course.CalendarFilter{Level: "advanced"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func teacherIDs(teachers []school.Teacher) []int {
	ids := make([]int, 0, len(teachers))
	for _, t := range teachers {
		ids = append(ids, t.ID)
	}
	return ids
}

func studentIDs(students []school.Student) []int {
	ids := make([]int, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}

func roomIDs(rooms []school.Room) []int {
	ids := make([]int, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids
}
