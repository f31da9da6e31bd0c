package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type Repository interface {
	CreateStudent(ctx context.Context, s school.Student) (school.Student, error)
	// GetStudent returns the student with all their courses, active or not.
	GetStudent(ctx context.Context, id int) (school.Student, error)
	// QueryStudents only applies QueryFilter.Search, a case-insensitive match on the first name, last name or email.
	QueryStudents(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]school.Student, error)
	UpdateStudent(ctx context.Context, s school.Student) (school.Student, error)
	DeleteStudent(ctx context.Context, id int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, data Payload) (school.Student, error) {
	now := time.Now().UTC()
	s := data.student()
	if s.EnrolledAt.IsZero() {
		s.EnrolledAt = school.DateOf(now)
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) Get(ctx context.Context, id int) (school.Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]school.Student, error) {
	students, err := svc.repo.QueryStudents(ctx, filter, ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	if !filter.WithoutCourse && !filter.ActiveCoursesOnly {
		return students, nil
	}

	filtered := make([]school.Student, 0, len(students))
	for _, s := range students {
		active := s.HasActiveCourse()
		if (filter.WithoutCourse && !active) || (filter.ActiveCoursesOnly && active) {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func (svc *Service) Update(ctx context.Context, id int, data Payload) (school.Student, error) {
	orig, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return school.Student{}, err
	}
	s := data.student()
	s.ID = orig.ID
	if s.EnrolledAt.IsZero() {
		s.EnrolledAt = orig.EnrolledAt
	}
	s.CreatedAt = orig.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteStudent(ctx, id)
}
