package payment

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
)

const (
	receiptTemplate = "payment_receipt"
	receiptCategory = "ricevute"
)

var (
	// errors
	ErrNotFound              = errors.New("payment not found")
	ErrMonthBeforeEnrollment = errors.New("Non è possibile pagare un mese precedente alla data di iscrizione")
)

type Repository interface {
	CreatePayment(ctx context.Context, p Payment) (Payment, error)
	GetPayment(ctx context.Context, id int) (Payment, error)
	// QueryPayments returns the newest payments first.
	QueryPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
	DeletePayment(ctx context.Context, id int) error
}

type Service struct {
	repo     Repository
	students student.Repository
	mailer   core.EmailService
	cache    core.Cache
}

func NewService(repo Repository, students student.Repository, mailer core.EmailService, cache core.Cache) *Service {
	return &Service{
		repo:     repo,
		students: students,
		mailer:   mailer,
		cache:    cache,
	}
}

// NewReceiptNumber returns "REC-" followed by 8 random hex chars.
func NewReceiptNumber() string {
	return "REC-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (svc *Service) Create(ctx context.Context, data Payload) (Payment, error) {
	s, err := svc.students.GetStudent(ctx, data.StudentID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return Payment{}, core.NewFieldError("studenteId", student.ErrNotFound.Error())
		}
		return Payment{}, errors.Wrap(err, "getting student")
	}
	if !s.EnrolledAt.IsZero() && data.Month.Before(MonthOf(s.EnrolledAt.Time)) {
		return Payment{}, core.NewValidationError(ErrMonthBeforeEnrollment, core.FieldError{
			Field: "mensilitaSaldata",
			Error: ErrMonthBeforeEnrollment.Error(),
		})
	}

	now := time.Now().UTC()
	p := Payment{
		StudentID:     s.ID,
		Student:       &school.StudentRef{ID: s.ID, FirstName: s.FirstName, LastName: s.LastName, Email: s.Email},
		PaidAt:        data.PaidAt,
		Amount:        data.Amount,
		Month:         data.Month,
		Method:        data.Method,
		ReceiptNumber: data.ReceiptNumber,
		Notes:         data.Notes,
		CreatedAt:     now,
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = school.DateOf(now)
	}
	if p.ReceiptNumber == "" {
		p.ReceiptNumber = NewReceiptNumber()
	}

	p, err = svc.repo.CreatePayment(ctx, p)
	if err != nil {
		return Payment{}, err
	}
	if svc.cache != nil {
		_ = svc.cache.DeletePrefix(ctx, core.DashboardCachePrefix)
	}
	svc.sendReceipt(s, p)
	return p, nil
}

func (svc *Service) sendReceipt(s school.Student, p Payment) {
	if svc.mailer == nil || s.Email == "" {
		return
	}
	svc.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: s.FullName(), Address: s.Email}},
		Subject:      fmt.Sprintf("Ricevuta di pagamento %s", p.ReceiptNumber),
		Categories:   []string{receiptCategory},
		TemplateName: receiptTemplate,
		TemplateData: ReceiptData{
			FirstName:     s.FirstName,
			LastName:      s.LastName,
			ReceiptNumber: p.ReceiptNumber,
			Month:         p.Month,
			Amount:        p.Amount,
			Method:        p.Method.Label(),
			PaidAt:        p.PaidAt,
		},
	})
}

func (svc *Service) Get(ctx context.Context, id int) (Payment, error) {
	return svc.repo.GetPayment(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Payment, error) {
	return svc.repo.QueryPayments(ctx, filter)
}

// ByStudent returns the payments of an existing student.
func (svc *Service) ByStudent(ctx context.Context, studentID int) ([]Payment, error) {
	if _, err := svc.students.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryPayments(ctx, QueryFilter{StudentID: studentID})
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if err := svc.repo.DeletePayment(ctx, id); err != nil {
		return err
	}
	if svc.cache != nil {
		_ = svc.cache.DeletePrefix(ctx, core.DashboardCachePrefix)
	}
	return nil
}
