package payment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
)

var (
	// errors
	ErrInvalidMonth  = errors.New(`invalid month: expected an italian month and a year, like "Gennaio 2025"`)
	ErrInvalidMethod = errors.New("invalid payment method")
)

var monthNames = [...]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// MonthName returns the italian name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// Month is the tuition month a payment settles, serialized as "Gennaio 2025".
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func ParseMonth(s string) (Month, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Month{}, ErrInvalidMonth
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil || year < 1900 || year > 9999 {
		return Month{}, ErrInvalidMonth
	}
	for i, name := range monthNames {
		if strings.EqualFold(name, fields[0]) {
			return Month{Year: year, Month: time.Month(i + 1)}, nil
		}
	}
	return Month{}, ErrInvalidMonth
}

func (m Month) IsZero() bool { return m.Year == 0 }

func (m Month) Before(o Month) bool {
	return m.Year < o.Year || (m.Year == o.Year && m.Month < o.Month)
}

func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %d", MonthName(m.Month), m.Year)
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*m = Month{}
		return nil
	}
	v, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

type Method string

const (
	CreditCard   Method = "CARTA_DI_CREDITO"
	Card         Method = "CARTA"
	BankTransfer Method = "BONIFICO"
	Cash         Method = "CONTANTI"
	PayPal       Method = "PAYPAL"
)

var methodLabels = map[Method]string{
	CreditCard:   "Carta di credito",
	Card:         "Carta",
	BankTransfer: "Bonifico",
	Cash:         "Contanti",
	PayPal:       "PayPal",
}

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")))
	if !m.IsValid() {
		return "", ErrInvalidMethod
	}
	return m, nil
}

func (m Method) IsValid() bool {
	_, ok := methodLabels[m]
	return ok
}

func (m Method) Label() string {
	if l, ok := methodLabels[m]; ok {
		return l
	}
	return string(m)
}

type Payment struct {
	ID            int                `json:"id"`
	StudentID     int                `json:"studenteId"`
	Student       *school.StudentRef `json:"studente,omitempty"`
	PaidAt        school.Date        `json:"dataPagamento"`
	Amount        float64            `json:"importo"`
	Month         Month              `json:"mensilitaSaldata"`
	Method        Method             `json:"metodoPagamento"`
	ReceiptNumber string             `json:"numeroRicevuta"`
	Notes         string             `json:"note"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// Payload is the body of POST /pagamenti.
type Payload struct {
	StudentID     int         `json:"studenteId" validate:"required,gt=0"`
	PaidAt        school.Date `json:"dataPagamento"`
	Amount        float64     `json:"importo" validate:"required,gt=0"`
	Month         Month       `json:"mensilitaSaldata"`
	Method        Method      `json:"metodoPagamento" validate:"required,paymentmethod"`
	ReceiptNumber string      `json:"numeroRicevuta" validate:"max=50"`
	Notes         string      `json:"note" validate:"max=500"`
}

func (p *Payload) Validate(validate *validator.Validate) error {
	p.ReceiptNumber = core.CleanString(p.ReceiptNumber)
	p.Notes = core.CleanString(p.Notes)
	if p.Method != "" {
		if m, err := ParseMethod(string(p.Method)); err == nil {
			p.Method = m
		}
	}
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.Month.IsZero() {
		return core.NewFieldError("mensilitaSaldata", "this field is required")
	}
	return nil
}

type QueryFilter struct {
	StudentID int `query:"studente"`
	// Year filters on the payment date.
	Year int `query:"anno"`
}

// ReceiptData feeds the payment_receipt email templates.
type ReceiptData struct {
	FirstName     string
	LastName      string
	ReceiptNumber string
	Month         Month
	Amount        float64
	Method        string
	PaidAt        school.Date
}
