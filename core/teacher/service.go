package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
)

var (
	// errors
	ErrNotFound       = errors.New("teacher not found")
	ErrTeachesCourses = errors.New("teacher still teaches active courses")
)

type Repository interface {
	CreateTeacher(ctx context.Context, t school.Teacher) (school.Teacher, error)
	GetTeacher(ctx context.Context, id int) (school.Teacher, error)
	// QueryTeachers applies AND on the available QueryFilter fields.
	// QueryFilter.Search does a case-insensitive match on the first name, last name or email.
	QueryTeachers(ctx context.Context, filter QueryFilter) ([]school.Teacher, error)
	UpdateTeacher(ctx context.Context, t school.Teacher) (school.Teacher, error)
	DeleteTeacher(ctx context.Context, id int) error
	CountActiveCourses(ctx context.Context, teacherID int) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, data Payload) (school.Teacher, error) {
	now := time.Now().UTC()
	t := data.teacher()
	t.CreatedAt = now
	t.UpdatedAt = now
	return svc.repo.CreateTeacher(ctx, t)
}

func (svc *Service) Get(ctx context.Context, id int) (school.Teacher, error) {
	return svc.repo.GetTeacher(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]school.Teacher, error) {
	return svc.repo.QueryTeachers(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int, data Payload) (school.Teacher, error) {
	orig, err := svc.repo.GetTeacher(ctx, id)
	if err != nil {
		return school.Teacher{}, err
	}
	t := data.teacher()
	t.ID = orig.ID
	t.CreatedAt = orig.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTeacher(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	n, err := svc.repo.CountActiveCourses(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting active courses")
	}
	if n > 0 {
		return core.NewValidationError(ErrTeachesCourses)
	}
	return svc.repo.DeleteTeacher(ctx, id)
}
