package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/payment"
	"github.com/trezcool/thinkwise/core/school"
)

const paymentSelect = `SELECT p.id, p.student_id, p.paid_at, p.amount, p.month, p.month_year, p.method,
		p.receipt_number, p.notes, p.created_at,
		s.first_name AS student_first_name, s.last_name AS student_last_name, s.email AS student_email
	FROM payments p JOIN students s ON s.id = p.student_id`

type paymentRow struct {
	ID               int       `db:"id"`
	StudentID        int       `db:"student_id"`
	PaidAt           time.Time `db:"paid_at"`
	Amount           float64   `db:"amount"`
	Month            int       `db:"month"`
	MonthYear        int       `db:"month_year"`
	Method           string    `db:"method"`
	ReceiptNumber    string    `db:"receipt_number"`
	Notes            string    `db:"notes"`
	CreatedAt        time.Time `db:"created_at"`
	StudentFirstName string    `db:"student_first_name"`
	StudentLastName  string    `db:"student_last_name"`
	StudentEmail     string    `db:"student_email"`
}

func (row paymentRow) payment() payment.Payment {
	return payment.Payment{
		ID:        row.ID,
		StudentID: row.StudentID,
		Student: &school.StudentRef{
			ID:        row.StudentID,
			FirstName: row.StudentFirstName,
			LastName:  row.StudentLastName,
			Email:     row.StudentEmail,
		},
		PaidAt:        school.DateOf(row.PaidAt),
		Amount:        row.Amount,
		Month:         payment.Month{Year: row.MonthYear, Month: time.Month(row.Month)},
		Method:        payment.Method(row.Method),
		ReceiptNumber: row.ReceiptNumber,
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt,
	}
}

type paymentRepository struct {
	db core.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db core.DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := `INSERT INTO payments (student_id, paid_at, amount, month, month_year, method, receipt_number, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := repo.db.GetContext(ctx, &p.ID, q,
		p.StudentID, p.PaidAt.Time, p.Amount, int(p.Month.Month), p.Month.Year,
		string(p.Method), p.ReceiptNumber, p.Notes, p.CreatedAt.UTC(),
	)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return repo.GetPayment(ctx, p.ID)
}

func (repo *paymentRepository) GetPayment(ctx context.Context, id int) (payment.Payment, error) {
	var row paymentRow
	if err := repo.db.GetContext(ctx, &row, paymentSelect+` WHERE p.id = $1`, id); err != nil {
		return payment.Payment{}, trapNoRowsErr(err, payment.ErrNotFound)
	}
	return row.payment(), nil
}

func (repo *paymentRepository) QueryPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	var w where
	if filter.StudentID != 0 {
		w.add(`p.student_id = ?`, filter.StudentID)
	}
	if filter.Year != 0 {
		w.add(`EXTRACT(YEAR FROM p.paid_at) = ?`, filter.Year)
	}

	var rows []paymentRow
	q := paymentSelect + w.String() + ` ORDER BY p.paid_at DESC, p.id DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting payments")
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, row.payment())
	}
	return payments, nil
}

func (repo *paymentRepository) DeletePayment(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.ErrNotFound
	}
	return nil
}
