package payment_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/payment"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/services/email"
	"github.com/trezcool/thinkwise/testutil"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in      string
		want    payment.Month
		wantErr error
	}{
		{in: "Gennaio 2025", want: payment.Month{Year: 2025, Month: time.January}},
		{in: "  dicembre   2024 ", want: payment.Month{Year: 2024, Month: time.December}},
		{in: "Gennaio", wantErr: payment.ErrInvalidMonth},
		{in: "January 2025", wantErr: payment.ErrInvalidMonth},
		{in: "Marzo duemila", wantErr: payment.ErrInvalidMonth},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := payment.ParseMonth(tt.in)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "Marzo 2025", payment.Month{Year: 2025, Month: time.March}.String())
	assert.True(t, payment.Month{Year: 2024, Month: time.December}.Before(payment.Month{Year: 2025, Month: time.January}))
}

func TestPayload_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	payment.InitValidators(validate, translator)

	valid := func() payment.Payload {
		return payment.Payload{
			StudentID: 1,
			Amount:    120,
			Month:     payment.Month{Year: 2025, Month: time.February},
			Method:    "bonifico",
		}
	}

	p := valid()
	require.NoError(t, p.Validate(validate))
	assert.Equal(t, payment.BankTransfer, p.Method)

	tests := []struct {
		name    string
		mutate  func(p *payment.Payload)
		wantFld string
	}{
		{name: "zero amount", mutate: func(p *payment.Payload) { p.Amount = 0 }, wantFld: "importo"},
		{name: "negative amount", mutate: func(p *payment.Payload) { p.Amount = -10 }, wantFld: "importo"},
		{name: "unknown method", mutate: func(p *payment.Payload) { p.Method = "BITCOIN" }, wantFld: "metodoPagamento"},
		{name: "no student", mutate: func(p *payment.Payload) { p.StudentID = 0 }, wantFld: "studenteId"},
		{name: "no month", mutate: func(p *payment.Payload) { p.Month = payment.Month{} }, wantFld: "mensilitaSaldata"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate(validate)
			require.Error(t, err)
			switch vErr := err.(type) {
			case validator.ValidationErrors:
				assert.Equal(t, tt.wantFld, vErr[0].Field())
			case *core.ValidationError:
				assert.Equal(t, tt.wantFld, vErr.Fields[0].Field)
			default:
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestService_Create(t *testing.T) {
	svcs := testutil.NewServices(t)
	ctx := context.Background()
	avail := testutil.Availability{Days: []school.Day{school.Monday}, Slots: []school.TimeSlot{school.Slot1000}}
	enrolled := school.NewDate(2025, time.March, 10)
	mario := testutil.CreateStudent(t, svcs.Students, "Mario", "Bianchi", "mario@test.it", nil, avail, enrolled)
	luigi := testutil.CreateStudent(t, svcs.Students, "Luigi", "Verdi", "", nil, avail, enrolled)

	p, err := svcs.Payment.Create(ctx, payment.Payload{
		StudentID: mario.ID,
		Amount:    150,
		Month:     payment.Month{Year: 2025, Month: time.March},
		Method:    payment.Cash,
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.True(t, strings.HasPrefix(p.ReceiptNumber, "REC-"))
	assert.Len(t, p.ReceiptNumber, 12)
	assert.Equal(t, school.DateOf(time.Now().UTC()), p.PaidAt)
	require.NotNil(t, p.Student)
	assert.Equal(t, "Mario", p.Student.FirstName)

	msgs := emailsvc.SentMessagesTo("mario@test.it")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Subject, p.ReceiptNumber)
	assert.Contains(t, msgs[0].TextContent, "Marzo 2025")
	assert.Contains(t, msgs[0].HTMLContent, p.ReceiptNumber)
	assert.Equal(t, []string{"ricevute"}, msgs[0].Categories)

	// given receipt numbers are kept; students without email get no receipt
	p, err = svcs.Payment.Create(ctx, payment.Payload{
		StudentID:     luigi.ID,
		Amount:        80,
		Month:         payment.Month{Year: 2025, Month: time.April},
		Method:        payment.PayPal,
		ReceiptNumber: "R-1",
		PaidAt:        school.NewDate(2025, time.April, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, "R-1", p.ReceiptNumber)
	assert.Equal(t, school.NewDate(2025, time.April, 2), p.PaidAt)

	t.Run("month before enrollment", func(t *testing.T) {
		_, err := svcs.Payment.Create(ctx, payment.Payload{
			StudentID: mario.ID,
			Amount:    150,
			Month:     payment.Month{Year: 2025, Month: time.February},
			Method:    payment.Cash,
		})
		require.Error(t, err)
		assert.Equal(t, payment.ErrMonthBeforeEnrollment.Error(), err.Error())
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := svcs.Payment.Create(ctx, payment.Payload{StudentID: 999, Amount: 1, Method: payment.Cash})
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok, "want a ValidationError, got %v", err)
		assert.Equal(t, "studenteId", vErr.Fields[0].Field)
	})

	t.Run("query", func(t *testing.T) {
		all, err := svcs.Payment.Query(ctx, payment.QueryFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		byMario, err := svcs.Payment.ByStudent(ctx, mario.ID)
		require.NoError(t, err)
		require.Len(t, byMario, 1)
		assert.Equal(t, mario.ID, byMario[0].StudentID)

		_, err = svcs.Payment.ByStudent(ctx, 999)
		assert.Error(t, err)
	})
}

func TestService_Delete(t *testing.T) {
	svcs := testutil.NewServices(t)
	ctx := context.Background()
	s := testutil.CreateStudent(t, svcs.Students, "Anna", "Neri", "", nil, testutil.Availability{})

	p, err := svcs.Payment.Create(ctx, payment.Payload{
		StudentID: s.ID,
		Amount:    50,
		Month:     payment.MonthOf(time.Now()),
		Method:    payment.Card,
	})
	require.NoError(t, err)

	require.NoError(t, svcs.Payment.Delete(ctx, p.ID))
	_, err = svcs.Payment.Get(ctx, p.ID)
	assert.Equal(t, payment.ErrNotFound, err)
	assert.Equal(t, payment.ErrNotFound, svcs.Payment.Delete(ctx, p.ID))
}

func TestNewReceiptNumber(t *testing.T) {
	a, b := payment.NewReceiptNumber(), payment.NewReceiptNumber()
	assert.NotEqual(t, a, b)
	assert.Equal(t, strings.ToUpper(a), a)
}
