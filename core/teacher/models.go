package teacher

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
)

// Payload contains the information needed to create or replace a teacher.
type Payload struct {
	FirstName       string                  `json:"nome" validate:"required,notblank"`
	LastName        string                  `json:"cognome" validate:"required,notblank"`
	Email           string                  `json:"email" validate:"omitempty,email"`
	Phone           string                  `json:"telefono"`
	Specializations []school.Specialization `json:"specializzazioni" validate:"required,min=1,unique,dive,specialization"`
	AvailableDays   []school.Day            `json:"giorniDisponibili" validate:"required,min=1,unique,dive,day"`
	AvailableSlots  []school.TimeSlot       `json:"fasceOrarieDisponibili" validate:"required,min=1,unique,dive,timeslot"`
}

func (p *Payload) Validate(validate *validator.Validate) error {
	p.FirstName = core.CleanString(p.FirstName)
	p.LastName = core.CleanString(p.LastName)
	p.Email = core.CleanString(p.Email, true /* lower */)
	p.Phone = core.CleanString(p.Phone)
	return validate.Struct(p)
}

func (p Payload) teacher() school.Teacher {
	return school.Teacher{
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Email:           p.Email,
		Phone:           p.Phone,
		Specializations: p.Specializations,
		AvailableDays:   p.AvailableDays,
		AvailableSlots:  p.AvailableSlots,
	}
}

type QueryFilter struct {
	Search         string                `query:"search"`
	Specialization school.Specialization `query:"specializzazione"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
	if qf.Specialization != "" {
		qf.Specialization, _ = school.ParseSpecialization(string(qf.Specialization))
	}
}
