package expense

import (
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
)

var ErrInvalidCategory = errors.New("invalid expense category")

type Category string

const (
	Staff       Category = "PERSONALE"
	Maintenance Category = "MANUTENZIONE"
	Training    Category = "FORMAZIONE"
	Insurance   Category = "ASSICURAZIONE"
	Equipment   Category = "ATTREZZATURE"
	Transport   Category = "TRASPORTO"
	Other       Category = "ALTRO"
)

var categories = []Category{Staff, Maintenance, Training, Insurance, Equipment, Transport, Other}

func Categories() []Category { return append([]Category(nil), categories...) }

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func (c Category) IsValid() bool {
	for _, cat := range categories {
		if c == cat {
			return true
		}
	}
	return false
}

type Expense struct {
	ID          int         `json:"id"`
	Description string      `json:"descrizione"`
	Amount      float64     `json:"importo"`
	Category    Category    `json:"categoria"`
	Date        school.Date `json:"data"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type Payload struct {
	Description string      `json:"descrizione" validate:"required,notblank,max=255"`
	Amount      float64     `json:"importo" validate:"required,gt=0"`
	Category    Category    `json:"categoria" validate:"required,expensecategory"`
	Date        school.Date `json:"data"`
}

func (p *Payload) Validate(validate *validator.Validate) error {
	p.Description = core.CleanString(p.Description)
	if c, err := ParseCategory(string(p.Category)); err == nil {
		p.Category = c
	}
	return validate.Struct(p)
}

// Filter narrows expenses down to a year, a month of that year and a category. Zero values match all.
type Filter struct {
	Year     int      `query:"anno"`
	Month    int      `query:"mese"`
	Category Category `query:"categoria"`
}

func (f *Filter) Clean() {
	if f.Category != "" {
		f.Category, _ = ParseCategory(string(f.Category))
	}
	if f.Month < 0 || f.Month > 12 {
		f.Month = 0
	}
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Expense) bool {
	if f.Year != 0 && e.Date.Year() != f.Year {
		return false
	}
	if f.Month != 0 && int(e.Date.Month()) != f.Month {
		return false
	}
	return f.Category == "" || e.Category == f.Category
}

var (
	categoryTag  = "expensecategory"
	categoryText = "invalid category: expected one of PERSONALE, MANUTENZIONE, FORMAZIONE, ASSICURAZIONE, ATTREZZATURE, TRASPORTO, ALTRO"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).IsValid()
	})
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)
}
