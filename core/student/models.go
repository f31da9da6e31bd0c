package student

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
)

// OrderingFields maps the accepted `ordering` query fields to storage columns.
var OrderingFields = map[string]string{
	"id":             "id",
	"nome":           "first_name",
	"cognome":        "last_name",
	"eta":            "age",
	"dataIscrizione": "enrolled_at",
}

// Payload contains the information needed to create or replace a student.
type Payload struct {
	FirstName      string                  `json:"nome" validate:"required,notblank"`
	LastName       string                  `json:"cognome" validate:"required,notblank"`
	Email          string                  `json:"email" validate:"omitempty,email"`
	Phone          string                  `json:"telefono"`
	Age            int                     `json:"eta" validate:"gte=0,lte=120"`
	EnrolledAt     school.Date             `json:"dataIscrizione"`
	Preferences    []school.Specialization `json:"preferenzaCorso" validate:"unique,dive,specialization"`
	PreferredDays  []school.Day            `json:"giorniPreferiti" validate:"unique,dive,day"`
	PreferredSlots []school.TimeSlot       `json:"fasceOrariePreferite" validate:"unique,dive,timeslot"`
}

func (p *Payload) Validate(validate *validator.Validate) error {
	p.FirstName = core.CleanString(p.FirstName)
	p.LastName = core.CleanString(p.LastName)
	p.Email = core.CleanString(p.Email, true /* lower */)
	p.Phone = core.CleanString(p.Phone)
	return validate.Struct(p)
}

func (p Payload) student() school.Student {
	return school.Student{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Phone:          p.Phone,
		Age:            p.Age,
		EnrolledAt:     p.EnrolledAt,
		Preferences:    p.Preferences,
		PreferredDays:  p.PreferredDays,
		PreferredSlots: p.PreferredSlots,
	}
}

type QueryFilter struct {
	Search string `query:"search"`
	// WithoutCourse keeps the students with no active course.
	WithoutCourse bool `query:"senzaCorso"`
	// ActiveCoursesOnly keeps the students with at least one active course.
	ActiveCoursesOnly bool `query:"activeCoursesOnly"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}
