package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/thinkwise/core/school"
)

func Test_countWeekday(t *testing.T) {
	jan, feb := period(2025, 1)
	year, next := period(2025, 0)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), feb)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), next)

	tests := []struct {
		name       string
		start, end time.Time
		wd         time.Weekday
		want       int
	}{
		{name: "mondays of january", start: jan, end: feb, wd: time.Monday, want: 4},
		{name: "wednesdays of january", start: jan, end: feb, wd: time.Wednesday, want: 5},
		{name: "mondays of the year", start: year, end: next, wd: time.Monday, want: 52},
		{name: "wednesdays of the year", start: year, end: next, wd: time.Wednesday, want: 53},
		{name: "empty period", start: jan, end: jan, wd: time.Monday, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countWeekday(tt.start, tt.end, tt.wd))
		})
	}
}

func Test_teacherHours(t *testing.T) {
	ada := &school.TeacherRef{ID: 1, FirstName: "Ada", LastName: "Lovelace"}
	courses := []school.Course{
		{ID: 1, Teacher: ada, Schedule: school.Schedule{
			Day: school.Monday, Slot: school.Slot1000, SecondDay: school.Wednesday, SecondSlot: school.Slot1400,
		}},
		{ID: 2, Teacher: ada, Schedule: school.Schedule{Day: school.Friday, Slot: school.Slot0800}},
		{ID: 3, Schedule: school.Schedule{Day: school.Monday, Slot: school.Slot0800}}, // no teacher
	}

	// january 2025: 4 mondays, 5 wednesdays, 5 fridays
	assert.Equal(t, map[string]int{"Ada Lovelace": 2*4 + 2*5 + 2*5}, teacherHours(courses, 2025, 1))
	assert.Empty(t, teacherHours(nil, 2025, 1))
}
