package room

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
)

type Payload struct {
	Name     string `json:"nome" validate:"required,notblank,max=100"`
	Capacity int    `json:"capienzaMax" validate:"required,gt=0"`
}

func (p *Payload) Validate(validate *validator.Validate) error {
	p.Name = core.CleanString(p.Name)
	return validate.Struct(p)
}

func (p Payload) room() school.Room {
	return school.Room{Name: p.Name, Capacity: p.Capacity}
}
