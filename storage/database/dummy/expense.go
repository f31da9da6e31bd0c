package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/thinkwise/core/expense"
)

type expenseRepository struct {
	db *DB
}

var _ expense.Repository = (*expenseRepository)(nil) // interface compliance check

func NewExpenseRepository(db *DB) expense.Repository {
	return &expenseRepository{db: db}
}

func (repo *expenseRepository) CreateExpense(_ context.Context, e expense.Expense) (expense.Expense, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e.ID = repo.db.nextID("expense")
	repo.db.expenses[e.ID] = &e
	return e, nil
}

func (repo *expenseRepository) GetExpense(_ context.Context, id int) (expense.Expense, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.expenses[id]; ok {
		return *e, nil
	}
	return expense.Expense{}, expense.ErrNotFound
}

func (repo *expenseRepository) QueryExpenses(_ context.Context, filter expense.Filter) ([]expense.Expense, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	expenses := make([]expense.Expense, 0, len(repo.db.expenses))
	for _, e := range repo.db.expenses {
		if filter.Match(*e) {
			expenses = append(expenses, *e)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date.Time)
		}
		return a.ID > b.ID
	})
	return expenses, nil
}

func (repo *expenseRepository) DeleteExpense(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.expenses[id]; !ok {
		return expense.ErrNotFound
	}
	delete(repo.db.expenses, id)
	return nil
}
