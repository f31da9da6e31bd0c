package room

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/matcher"
	"github.com/trezcool/thinkwise/core/school"
)

var (
	// errors
	ErrNotFound   = errors.New("room not found")
	ErrNameExists = errors.New("a room with this name already exists")
)

type Repository interface {
	CreateRoom(ctx context.Context, r school.Room) (school.Room, error)
	GetRoom(ctx context.Context, id int) (school.Room, error)
	QueryRooms(ctx context.Context) ([]school.Room, error)
	UpdateRoom(ctx context.Context, r school.Room) (school.Room, error)
	DeleteRoom(ctx context.Context, id int) error
	// MaxGroupEnrollment is the largest student count among the active group courses held in the room.
	MaxGroupEnrollment(ctx context.Context, roomID int) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkName(err error) error {
	if errors.Cause(err) == ErrNameExists {
		return core.NewValidationError(ErrNameExists, core.FieldError{Field: "nome", Error: ErrNameExists.Error()})
	}
	return err
}

func (svc *Service) Create(ctx context.Context, data Payload) (school.Room, error) {
	now := time.Now().UTC()
	r := data.room()
	r.CreatedAt = now
	r.UpdatedAt = now
	r, err := svc.repo.CreateRoom(ctx, r)
	return r, svc.checkName(err)
}

func (svc *Service) Get(ctx context.Context, id int) (school.Room, error) {
	return svc.repo.GetRoom(ctx, id)
}

func (svc *Service) Query(ctx context.Context) ([]school.Room, error) {
	return svc.repo.QueryRooms(ctx)
}

// Update refuses to shrink the room below the enrollment of the active group courses it hosts.
func (svc *Service) Update(ctx context.Context, id int, data Payload) (school.Room, error) {
	orig, err := svc.repo.GetRoom(ctx, id)
	if err != nil {
		return school.Room{}, err
	}
	if data.Capacity < orig.Capacity {
		n, err := svc.repo.MaxGroupEnrollment(ctx, id)
		if err != nil {
			return school.Room{}, errors.Wrap(err, "checking room enrollment")
		}
		if data.Capacity < n {
			return school.Room{}, matcher.NewError(matcher.CapacityExceeded,
				"room %q hosts a course with %d students, capacity cannot be lowered to %d", orig.Name, n, data.Capacity)
		}
	}

	r := data.room()
	r.ID = orig.ID
	r.CreatedAt = orig.CreatedAt
	r.UpdatedAt = time.Now().UTC()
	r, err = svc.repo.UpdateRoom(ctx, r)
	return r, svc.checkName(err)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteRoom(ctx, id)
}
