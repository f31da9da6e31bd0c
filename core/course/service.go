package course

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/matcher"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/core/teacher"
)

var (
	// errors
	ErrNotFound       = errors.New("course not found")
	ErrNotEnrolled    = errors.New("student is not enrolled in this course")
	ErrCourseInactive = errors.New("course is not active")
	// ErrCourseFull is returned by Repository.AddStudent when the course reached its limit meanwhile.
	ErrCourseFull = errors.New("course is full")
)

type Repository interface {
	// CreateCourse stores the course together with its students.
	CreateCourse(ctx context.Context, c school.Course) (school.Course, error)
	GetCourse(ctx context.Context, id int) (school.Course, error)
	// QueryCourses applies AND on the available QueryFilter fields.
	// QueryFilter.Search does a case-insensitive match on the course name.
	QueryCourses(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]school.Course, error)
	// UpdateCourse replaces the course fields and its students.
	UpdateCourse(ctx context.Context, c school.Course) (school.Course, error)
	SetCourseActive(ctx context.Context, id int, active bool) (school.Course, error)
	DeleteCourse(ctx context.Context, id int) error
	// AddStudent enrolls the student unless the course already has `limit` students (0 means no limit).
	// The count is checked atomically with the insert.
	AddStudent(ctx context.Context, courseID, studentID, limit int) error
	RemoveStudent(ctx context.Context, courseID, studentID int) error
}

type Service struct {
	repo     Repository
	teachers teacher.Repository
	students student.Repository
	rooms    room.Repository
	cache    core.Cache
}

func NewService(
	repo Repository,
	teachers teacher.Repository,
	students student.Repository,
	rooms room.Repository,
	cache core.Cache,
) *Service {
	return &Service{
		repo:     repo,
		teachers: teachers,
		students: students,
		rooms:    rooms,
		cache:    cache,
	}
}

// invalidate drops the cached dashboards; stale entries expire with their TTL anyway.
func (svc *Service) invalidate(ctx context.Context) {
	if svc.cache != nil {
		_ = svc.cache.DeletePrefix(ctx, core.DashboardCachePrefix)
	}
}

func (svc *Service) activeCourses(ctx context.Context) ([]school.Course, error) {
	active := true
	courses, err := svc.repo.QueryCourses(ctx, QueryFilter{Active: &active}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying active courses")
	}
	return courses, nil
}

// assemble resolves the teacher, room and students of the payload onto c and checks each of them
// against the course schedule. Students are added one by one so that capacity is checked incrementally.
func (svc *Service) assemble(ctx context.Context, c school.Course, data Payload) (school.Course, error) {
	if data.TeacherID != 0 {
		t, err := svc.teachers.GetTeacher(ctx, data.TeacherID)
		if err != nil {
			if errors.Cause(err) == teacher.ErrNotFound {
				return c, core.NewFieldError("insegnanteId", teacher.ErrNotFound.Error())
			}
			return c, errors.Wrap(err, "getting teacher")
		}
		if err := matcher.ValidateTeacher(c, t); err != nil {
			return c, err
		}
		c.Teacher = t.Ref()
	}

	if data.RoomID != 0 {
		r, err := svc.rooms.GetRoom(ctx, data.RoomID)
		if err != nil {
			if errors.Cause(err) == room.ErrNotFound {
				return c, core.NewFieldError("aulaId", room.ErrNotFound.Error())
			}
			return c, errors.Wrap(err, "getting room")
		}
		if c.Active {
			courses, err := svc.activeCourses(ctx)
			if err != nil {
				return c, err
			}
			if err := matcher.ValidateRoom(c, r, courses); err != nil {
				return c, err
			}
		}
		c.Room = r.Ref()
	}

	c.Students = make([]school.StudentRef, 0, len(data.StudentIDs))
	for _, id := range data.StudentIDs {
		s, err := svc.students.GetStudent(ctx, id)
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return c, core.NewFieldError("studentiIds", student.ErrNotFound.Error())
			}
			return c, errors.Wrap(err, "getting student")
		}
		if err := matcher.ValidateAssignment(c, s); err != nil {
			return c, err
		}
		c.Students = append(c.Students, s.Ref())
	}
	return c, nil
}

func (svc *Service) Create(ctx context.Context, data Payload) (school.Course, error) {
	c := data.course()
	c.Active = true
	c, err := svc.assemble(ctx, c, data)
	if err != nil {
		return school.Course{}, err
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c, err = svc.repo.CreateCourse(ctx, c)
	if err != nil {
		return school.Course{}, err
	}
	svc.invalidate(ctx)
	return c, nil
}

func (svc *Service) Get(ctx context.Context, id int) (school.Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]school.Course, error) {
	return svc.repo.QueryCourses(ctx, filter, ordering)
}

// Update replaces the course. Its current students are re-validated like new ones,
// except that they never conflict with the course itself.
func (svc *Service) Update(ctx context.Context, id int, data Payload) (school.Course, error) {
	orig, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return school.Course{}, err
	}

	c := data.course()
	c.ID = orig.ID
	c.Active = orig.Active
	c, err = svc.assemble(ctx, c, data)
	if err != nil {
		return school.Course{}, err
	}

	c.CreatedAt = orig.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	c, err = svc.repo.UpdateCourse(ctx, c)
	if err != nil {
		return school.Course{}, err
	}
	svc.invalidate(ctx)
	return c, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if err := svc.repo.DeleteCourse(ctx, id); err != nil {
		return err
	}
	svc.invalidate(ctx)
	return nil
}

// Deactivate interrupts the course. Its students stay enrolled but are free for other courses.
func (svc *Service) Deactivate(ctx context.Context, id int) (school.Course, error) {
	c, err := svc.repo.SetCourseActive(ctx, id, false)
	if err != nil {
		return school.Course{}, err
	}
	svc.invalidate(ctx)
	return c, nil
}

// Reactivate checks the course against what changed while it was interrupted:
// the room may be taken or smaller, and its students may have joined overlapping courses.
func (svc *Service) Reactivate(ctx context.Context, id int) (school.Course, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return school.Course{}, err
	}
	if c.Active {
		return c, nil
	}
	c.Active = true

	if c.Room != nil {
		r, err := svc.rooms.GetRoom(ctx, c.Room.ID)
		if err != nil {
			return school.Course{}, errors.Wrap(err, "getting room")
		}
		courses, err := svc.activeCourses(ctx)
		if err != nil {
			return school.Course{}, err
		}
		if err := matcher.ValidateRoom(c, r, courses); err != nil {
			return school.Course{}, err
		}
		c.Room = r.Ref()
	}
	if limit := c.Capacity(); limit > 0 && c.StudentCount() > limit {
		return school.Course{}, matcher.NewError(matcher.CapacityExceeded,
			"course %q has %d students but its room only seats %d", c.Name, c.StudentCount(), limit)
	}

	for _, ref := range c.Students {
		s, err := svc.students.GetStudent(ctx, ref.ID)
		if err != nil {
			return school.Course{}, errors.Wrap(err, "getting student")
		}
		if other, busy := matcher.FindStudentConflict(c, s); busy {
			aErr := matcher.NewError(matcher.ScheduleIncompatible,
				"%s is now enrolled in %q at an overlapping time", s.FullName(), other.Name)
			aErr.CourseID = other.ID
			return school.Course{}, aErr
		}
	}

	c, err = svc.repo.SetCourseActive(ctx, id, true)
	if err != nil {
		return school.Course{}, err
	}
	svc.invalidate(ctx)
	return c, nil
}

// AddStudent enrolls the student in the active course and returns the updated course.
func (svc *Service) AddStudent(ctx context.Context, courseID, studentID int) (school.Course, error) {
	c, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return school.Course{}, err
	}
	if !c.Active {
		return school.Course{}, ErrCourseInactive
	}
	s, err := svc.students.GetStudent(ctx, studentID)
	if err != nil {
		return school.Course{}, err
	}
	if err := matcher.ValidateAssignment(c, s); err != nil {
		return school.Course{}, err
	}

	if err := svc.repo.AddStudent(ctx, courseID, studentID, c.Capacity()); err != nil {
		if errors.Cause(err) == ErrCourseFull {
			return school.Course{}, matcher.NewError(matcher.CapacityExceeded, "course %q is full", c.Name)
		}
		return school.Course{}, err
	}
	svc.invalidate(ctx)
	return svc.repo.GetCourse(ctx, courseID)
}

func (svc *Service) RemoveStudent(ctx context.Context, studentID, courseID int) error {
	if err := svc.repo.RemoveStudent(ctx, courseID, studentID); err != nil {
		return err
	}
	svc.invalidate(ctx)
	return nil
}

// Eligible returns the candidates for an existing course.
func (svc *Service) Eligible(ctx context.Context, id int) (Candidates, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Candidates{}, err
	}
	return svc.candidates(ctx, c, nil)
}

// EligibleFor returns the candidates for a course being edited: courseID is 0 for a new course,
// and data.StudentIDs is the current selection of the form.
func (svc *Service) EligibleFor(ctx context.Context, courseID int, data Payload) (Candidates, error) {
	c := data.course()
	c.ID = courseID
	c.Active = true
	if data.RoomID != 0 {
		r, err := svc.rooms.GetRoom(ctx, data.RoomID)
		if err != nil && errors.Cause(err) != room.ErrNotFound {
			return Candidates{}, errors.Wrap(err, "getting room")
		}
		if err == nil {
			c.Room = r.Ref()
		}
	}
	selected := data.StudentIDs
	if selected == nil {
		selected = []int{}
	}
	return svc.candidates(ctx, c, selected)
}

func (svc *Service) candidates(ctx context.Context, c school.Course, enrolledOverride []int) (Candidates, error) {
	teachers, err := svc.teachers.QueryTeachers(ctx, teacher.QueryFilter{})
	if err != nil {
		return Candidates{}, errors.Wrap(err, "querying teachers")
	}
	students, err := svc.students.QueryStudents(ctx, student.QueryFilter{}, nil)
	if err != nil {
		return Candidates{}, errors.Wrap(err, "querying students")
	}
	rooms, err := svc.rooms.QueryRooms(ctx)
	if err != nil {
		return Candidates{}, errors.Wrap(err, "querying rooms")
	}
	courses, err := svc.activeCourses(ctx)
	if err != nil {
		return Candidates{}, err
	}

	return Candidates{
		Teachers: matcher.EligibleTeachers(c, teachers),
		Students: matcher.EligibleStudents(c, students, enrolledOverride),
		Rooms:    matcher.EligibleRooms(c, rooms, courses),
	}, nil
}

// Waitlist returns the students with no active course.
func (svc *Service) Waitlist(ctx context.Context) ([]school.Student, error) {
	students, err := svc.students.QueryStudents(ctx, student.QueryFilter{}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	waiting := make([]school.Student, 0)
	for _, s := range students {
		if !s.HasActiveCourse() {
			waiting = append(waiting, s)
		}
	}
	return waiting, nil
}

// Calendar expands the active courses into their weekly sessions,
// sorted by day, then time slot, then course name.
func (svc *Service) Calendar(ctx context.Context, filter CalendarFilter) ([]CalendarEntry, error) {
	if filter.Level != "" {
		filter.Level, _ = school.ParseLevel(string(filter.Level))
	}
	active := true
	courses, err := svc.repo.QueryCourses(ctx, QueryFilter{
		Active:    &active,
		TeacherID: filter.TeacherID,
		Level:     filter.Level,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	entries := make([]CalendarEntry, 0, len(courses))
	for _, c := range courses {
		for i, sess := range c.Sessions() {
			entries = append(entries, CalendarEntry{
				Day:       sess.Day,
				Slot:      sess.Slot,
				CourseID:  c.ID,
				Name:      c.Name,
				Type:      c.Type,
				Level:     c.Level,
				Teacher:   c.Teacher,
				Room:      c.Room,
				Students:  c.StudentCount(),
				Secondary: i > 0,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Day.Index() != b.Day.Index() {
			return a.Day.Index() < b.Day.Index()
		}
		if a.Slot.Index() != b.Slot.Index() {
			return a.Slot.Index() < b.Slot.Index()
		}
		return a.Name < b.Name
	})
	return entries, nil
}

func (svc *Service) Levels() []school.Level {
	return school.Levels()
}
