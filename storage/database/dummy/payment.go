package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/thinkwise/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

// hydrate must be called with the lock held.
func (repo *paymentRepository) hydrate(p payment.Payment) payment.Payment {
	p.Student = nil
	if s, ok := repo.db.students[p.StudentID]; ok {
		ref := s.Ref()
		p.Student = &ref
	}
	return p
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = repo.db.nextID("payment")
	p.Student = nil
	repo.db.payments[p.ID] = &p
	return repo.hydrate(p), nil
}

func (repo *paymentRepository) GetPayment(_ context.Context, id int) (payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.payments[id]; ok {
		return repo.hydrate(*p), nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryPayments(_ context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	payments := make([]payment.Payment, 0, len(repo.db.payments))
	for _, p := range repo.db.payments {
		if filter.StudentID != 0 && p.StudentID != filter.StudentID {
			continue
		}
		if filter.Year != 0 && p.PaidAt.Year() != filter.Year {
			continue
		}
		payments = append(payments, repo.hydrate(*p))
	}
	sort.Slice(payments, func(i, j int) bool {
		a, b := payments[i], payments[j]
		if !a.PaidAt.Equal(b.PaidAt.Time) {
			return a.PaidAt.After(b.PaidAt.Time)
		}
		return a.ID > b.ID
	})
	return payments, nil
}

func (repo *paymentRepository) DeletePayment(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.payments[id]; !ok {
		return payment.ErrNotFound
	}
	delete(repo.db.payments, id)
	return nil
}
