package student_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/testutil"
)

var mondays = testutil.Availability{
	Days:  []school.Day{school.Monday},
	Slots: []school.TimeSlot{school.Slot1000},
}

func names(students []school.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.FirstName)
	}
	return out
}

func TestService_Create(t *testing.T) {
	svcs := testutil.NewServices(t)
	ctx := context.Background()

	s, err := svcs.Student.Create(ctx, student.Payload{FirstName: "Alan", LastName: "Rossi", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, school.DateOf(time.Now().UTC()), s.EnrolledAt, "enrollment date defaults to today")

	enrolled := school.NewDate(2025, time.January, 10)
	s, err = svcs.Student.Update(ctx, s.ID, student.Payload{FirstName: "Alan", LastName: "Turing", EnrolledAt: enrolled})
	require.NoError(t, err)
	assert.Equal(t, "Turing", s.LastName)
	assert.Equal(t, enrolled, s.EnrolledAt)

	// an empty date keeps the stored one
	s, err = svcs.Student.Update(ctx, s.ID, student.Payload{FirstName: "Alan", LastName: "Turing"})
	require.NoError(t, err)
	assert.Equal(t, enrolled, s.EnrolledAt)

	_, err = svcs.Student.Update(ctx, 999, student.Payload{FirstName: "X", LastName: "Y"})
	assert.Equal(t, student.ErrNotFound, err)
}

func TestService_Query(t *testing.T) {
	svcs := testutil.NewServices(t)
	ctx := context.Background()
	backend := []school.Specialization{school.Backend}

	alan := testutil.CreateStudent(t, svcs.Students, "Alan", "Rossi", "alan@example.com", backend, mondays)
	testutil.CreateStudent(t, svcs.Students, "Grace", "Bianchi", "grace@example.com", backend, mondays)
	testutil.CreateStudent(t, svcs.Students, "Linus", "Verdi", "linus@example.com", backend, mondays)
	testutil.CreateCourse(t, svcs.Course, course.Payload{
		Name:           "Go 101",
		StudentIDs:     []int{alan.ID},
		Day:            school.Monday,
		Slot:           school.Slot1000,
		Specialization: school.Backend,
		Type:           school.Group,
		Level:          school.Beginner,
		Frequency:      school.OnceAWeek,
	})

	tests := []struct {
		name     string
		filter   student.QueryFilter
		ordering []core.DBOrdering
		want     []string
	}{
		{name: "all", want: []string{"Alan", "Grace", "Linus"}},
		{name: "search", filter: student.QueryFilter{Search: "grace@"}, want: []string{"Grace"}},
		{name: "without course", filter: student.QueryFilter{WithoutCourse: true}, want: []string{"Grace", "Linus"}},
		{name: "active courses only", filter: student.QueryFilter{ActiveCoursesOnly: true}, want: []string{"Alan"}},
		{name: "by last name", ordering: []core.DBOrdering{{Field: "last_name", Ascending: true}}, want: []string{"Grace", "Alan", "Linus"}},
		{name: "by first name desc", ordering: []core.DBOrdering{{Field: "first_name"}}, want: []string{"Linus", "Grace", "Alan"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svcs.Student.Query(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestService_Delete(t *testing.T) {
	svcs := testutil.NewServices(t)
	ctx := context.Background()
	backend := []school.Specialization{school.Backend}

	alan := testutil.CreateStudent(t, svcs.Students, "Alan", "Rossi", "", backend, mondays)
	c := testutil.CreateCourse(t, svcs.Course, course.Payload{
		Name:           "Go 101",
		StudentIDs:     []int{alan.ID},
		Day:            school.Monday,
		Slot:           school.Slot1000,
		Specialization: school.Backend,
		Type:           school.Group,
		Level:          school.Beginner,
		Frequency:      school.OnceAWeek,
	})

	require.NoError(t, svcs.Student.Delete(ctx, alan.ID))
	assert.Equal(t, student.ErrNotFound, svcs.Student.Delete(ctx, alan.ID))

	c, err := svcs.Course.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Students, "the student leaves their courses")
}
