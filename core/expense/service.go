package expense

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
)

var (
	// errors
	ErrNotFound = errors.New("expense not found")
)

type Repository interface {
	CreateExpense(ctx context.Context, e Expense) (Expense, error)
	GetExpense(ctx context.Context, id int) (Expense, error)
	// QueryExpenses returns the matching expenses, newest first.
	QueryExpenses(ctx context.Context, filter Filter) ([]Expense, error)
	DeleteExpense(ctx context.Context, id int) error
}

type Service struct {
	repo  Repository
	cache core.Cache
}

func NewService(repo Repository, cache core.Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (svc *Service) Create(ctx context.Context, data Payload) (Expense, error) {
	now := time.Now().UTC()
	e := Expense{
		Description: data.Description,
		Amount:      data.Amount,
		Category:    data.Category,
		Date:        data.Date,
		CreatedAt:   now,
	}
	if e.Date.IsZero() {
		e.Date = school.DateOf(now)
	}
	e, err := svc.repo.CreateExpense(ctx, e)
	if err != nil {
		return Expense{}, err
	}
	svc.invalidate(ctx)
	return e, nil
}

func (svc *Service) Get(ctx context.Context, id int) (Expense, error) {
	return svc.repo.GetExpense(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter Filter) ([]Expense, error) {
	filter.Clean()
	return svc.repo.QueryExpenses(ctx, filter)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if err := svc.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	svc.invalidate(ctx)
	return nil
}

func (svc *Service) invalidate(ctx context.Context) {
	if svc.cache != nil {
		_ = svc.cache.DeletePrefix(ctx, core.DashboardCachePrefix)
	}
}
