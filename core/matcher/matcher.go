// Package matcher decides which teachers, students and rooms fit the weekly schedule of a course.
//
// All functions are pure: they never mutate their inputs and keep the input order of the candidates.
package matcher

import (
	"github.com/trezcool/thinkwise/core/school"
)

// Overlaps reports whether two session lists share a (day, slot) pair.
// With primary and secondary sessions on both sides this is the 4 pairwise comparisons.
func Overlaps(a, b []school.Session) bool {
	for _, sa := range a {
		for _, sb := range b {
			if sa.Day == sb.Day && sa.Slot == sb.Slot {
				return true
			}
		}
	}
	return false
}

// covers reports whether every session is contained in the availability. The day and slot are checked independently.
func covers(days []school.Day, slots []school.TimeSlot, sessions []school.Session) bool {
	if len(sessions) == 0 {
		return false
	}
	for _, s := range sessions {
		if !hasDay(days, s.Day) || !hasSlot(slots, s.Slot) {
			return false
		}
	}
	return true
}

func hasDay(days []school.Day, d school.Day) bool {
	for _, day := range days {
		if day == d {
			return true
		}
	}
	return false
}

func hasSlot(slots []school.TimeSlot, ts school.TimeSlot) bool {
	for _, slot := range slots {
		if slot == ts {
			return true
		}
	}
	return false
}

func hasSpecialization(specs []school.Specialization, sp school.Specialization) bool {
	if sp == "" {
		return false
	}
	for _, s := range specs {
		if s == sp {
			return true
		}
	}
	return false
}

// EligibleTeachers returns the teachers who teach the course specialization and are available at every session.
// A course without specialization has no eligible teacher.
func EligibleTeachers(c school.Course, teachers []school.Teacher) []school.Teacher {
	eligible := make([]school.Teacher, 0)
	if c.Specialization == "" {
		return eligible
	}
	sessions := c.Sessions()
	for _, t := range teachers {
		if hasSpecialization(t.Specializations, c.Specialization) && covers(t.AvailableDays, t.AvailableSlots, sessions) {
			eligible = append(eligible, t)
		}
	}
	return eligible
}

// EligibleStudents returns the students who prefer the course specialization, are available at every session,
// are not enrolled yet and have no active course overlapping it.
// enrolledOverride, when non-nil, replaces the course students as the set of enrolled ids.
func EligibleStudents(c school.Course, students []school.Student, enrolledOverride []int) []school.Student {
	eligible := make([]school.Student, 0)
	if c.Specialization == "" {
		return eligible
	}

	enrolled := make(map[int]struct{}, len(c.Students))
	if enrolledOverride != nil {
		for _, id := range enrolledOverride {
			enrolled[id] = struct{}{}
		}
	} else {
		for _, s := range c.Students {
			enrolled[s.ID] = struct{}{}
		}
	}

	sessions := c.Sessions()
	for _, s := range students {
		if _, ok := enrolled[s.ID]; ok {
			continue
		}
		if !hasSpecialization(s.Preferences, c.Specialization) || !covers(s.PreferredDays, s.PreferredSlots, sessions) {
			continue
		}
		if _, busy := FindStudentConflict(c, s); busy {
			continue
		}
		eligible = append(eligible, s)
	}
	return eligible
}

// EligibleRooms returns the rooms not used by another active course at an overlapping session.
// Capacity is checked when students are assigned, not here.
func EligibleRooms(c school.Course, rooms []school.Room, courses []school.Course) []school.Room {
	eligible := make([]school.Room, 0, len(rooms))
	for _, r := range rooms {
		if _, busy := FindRoomConflict(c, r.ID, courses); !busy {
			eligible = append(eligible, r)
		}
	}
	return eligible
}

// FindStudentConflict returns the other active course of the student overlapping c.
func FindStudentConflict(c school.Course, s school.Student) (school.CourseRef, bool) {
	sessions := c.Sessions()
	for _, ref := range s.Courses {
		if !ref.Active || (c.ID != 0 && ref.ID == c.ID) {
			continue
		}
		if Overlaps(sessions, ref.Sessions()) {
			return ref, true
		}
	}
	return school.CourseRef{}, false
}

// FindRoomConflict returns the other active course using the room at a session overlapping c.
func FindRoomConflict(c school.Course, roomID int, courses []school.Course) (school.Course, bool) {
	sessions := c.Sessions()
	for _, other := range courses {
		if !other.Active || other.Room == nil || other.Room.ID != roomID {
			continue
		}
		if c.ID != 0 && other.ID == c.ID {
			continue
		}
		if Overlaps(sessions, other.Sessions()) {
			return other, true
		}
	}
	return school.Course{}, false
}

// ValidateAssignment checks that the student can join the course, in this order:
// capacity, existing enrollment, then schedule (availability and overlapping active courses).
func ValidateAssignment(c school.Course, s school.Student) error {
	if limit := c.Capacity(); limit > 0 && c.StudentCount() >= limit {
		if c.Type == school.Individual {
			return NewError(CapacityExceeded, "individual course %q already has a student", c.Name)
		}
		return NewError(CapacityExceeded, "course %q is full (%d/%d)", c.Name, c.StudentCount(), limit)
	}
	if c.HasStudent(s.ID) {
		return NewError(AlreadyEnrolled, "%s is already enrolled in %q", s.FullName(), c.Name)
	}
	if !covers(s.PreferredDays, s.PreferredSlots, c.Sessions()) {
		return NewError(ScheduleIncompatible, "%s is not available on %s", s.FullName(), sessionsString(c.Sessions()))
	}
	if other, busy := FindStudentConflict(c, s); busy {
		err := NewError(ScheduleIncompatible, "%s is already enrolled in %q at an overlapping time", s.FullName(), other.Name)
		err.CourseID = other.ID
		return err
	}
	return nil
}

// ValidateTeacher checks that the teacher teaches the course specialization and is available at every session.
func ValidateTeacher(c school.Course, t school.Teacher) error {
	if !hasSpecialization(t.Specializations, c.Specialization) {
		return NewError(ScheduleIncompatible, "%s does not teach %s", t.FullName(), c.Specialization.Label())
	}
	if !covers(t.AvailableDays, t.AvailableSlots, c.Sessions()) {
		return NewError(ScheduleIncompatible, "%s is not available on %s", t.FullName(), sessionsString(c.Sessions()))
	}
	return nil
}

// ValidateRoom checks that no other active course uses the room at an overlapping session.
func ValidateRoom(c school.Course, r school.Room, courses []school.Course) error {
	if other, busy := FindRoomConflict(c, r.ID, courses); busy {
		err := NewError(RoomConflict, "room %q is already used by %q at an overlapping time", r.Name, other.Name)
		err.CourseID = other.ID
		return err
	}
	return nil
}

func sessionsString(sessions []school.Session) string {
	var s string
	for i, sess := range sessions {
		if i > 0 {
			s += ", "
		}
		s += sess.String()
	}
	return s
}
