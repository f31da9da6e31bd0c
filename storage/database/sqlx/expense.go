package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/expense"
	"github.com/trezcool/thinkwise/core/school"
)

const expenseColumns = `id, description, amount, category, date, created_at`

type expenseRow struct {
	ID          int       `db:"id"`
	Description string    `db:"description"`
	Amount      float64   `db:"amount"`
	Category    string    `db:"category"`
	Date        time.Time `db:"date"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row expenseRow) expense() expense.Expense {
	return expense.Expense{
		ID:          row.ID,
		Description: row.Description,
		Amount:      row.Amount,
		Category:    expense.Category(row.Category),
		Date:        school.DateOf(row.Date),
		CreatedAt:   row.CreatedAt,
	}
}

type expenseRepository struct {
	db core.DB
}

var _ expense.Repository = (*expenseRepository)(nil) // interface compliance check

func NewExpenseRepository(db core.DB) expense.Repository {
	return &expenseRepository{db: db}
}

func (repo *expenseRepository) CreateExpense(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	q := `INSERT INTO expenses (description, amount, category, date, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := repo.db.GetContext(ctx, &e.ID, q, e.Description, e.Amount, string(e.Category), e.Date.Time, e.CreatedAt.UTC()); err != nil {
		return expense.Expense{}, errors.Wrap(err, "inserting expense")
	}
	return e, nil
}

func (repo *expenseRepository) GetExpense(ctx context.Context, id int) (expense.Expense, error) {
	var row expenseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id); err != nil {
		return expense.Expense{}, trapNoRowsErr(err, expense.ErrNotFound)
	}
	return row.expense(), nil
}

func (repo *expenseRepository) QueryExpenses(ctx context.Context, filter expense.Filter) ([]expense.Expense, error) {
	var w where
	if filter.Year != 0 {
		w.add(`EXTRACT(YEAR FROM date) = ?`, filter.Year)
	}
	if filter.Month != 0 {
		w.add(`EXTRACT(MONTH FROM date) = ?`, filter.Month)
	}
	if filter.Category != "" {
		w.add(`category = ?`, string(filter.Category))
	}

	var rows []expenseRow
	q := `SELECT ` + expenseColumns + ` FROM expenses` + w.String() + ` ORDER BY date DESC, id DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting expenses")
	}
	expenses := make([]expense.Expense, 0, len(rows))
	for _, row := range rows {
		expenses = append(expenses, row.expense())
	}
	return expenses, nil
}

func (repo *expenseRepository) DeleteExpense(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting expense")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return expense.ErrNotFound
	}
	return nil
}
