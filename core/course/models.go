package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
)

// OrderingFields maps the accepted `ordering` query fields to storage columns.
var OrderingFields = map[string]string{
	"id":        "id",
	"nome":      "name",
	"livello":   "level",
	"giorno":    "day",
	"createdAt": "created_at",
}

// Payload is the body of POST /corsi and PUT /corsi/:id.
type Payload struct {
	Name           string                `json:"nome" validate:"required,notblank,max=150"`
	TeacherID      int                   `json:"insegnanteId" validate:"gte=0"`
	RoomID         int                   `json:"aulaId" validate:"gte=0"`
	StudentIDs     []int                 `json:"studentiIds" validate:"unique,dive,gt=0"`
	Day            school.Day            `json:"giorno" validate:"required,day"`
	Slot           school.TimeSlot       `json:"orario" validate:"required,timeslot"`
	SecondDay      school.Day            `json:"secondoGiorno" validate:"omitempty,day"`
	SecondSlot     school.TimeSlot       `json:"secondoOrario" validate:"omitempty,timeslot"`
	Specialization school.Specialization `json:"corsoTipo" validate:"required,specialization"`
	Type           school.CourseType     `json:"tipoCorso" validate:"required,coursetype"`
	Level          school.Level          `json:"livello" validate:"required,level"`
	Frequency      school.Frequency      `json:"frequenza" validate:"required,frequency"`
}

var (
	errSecondSessionRequired  = "required for courses held twice a week"
	errSecondSessionForbidden = "only allowed for courses held twice a week"
	errSameSession            = "must differ from the first session"
	errIndividualStudents     = "an individual course has at most one student"
)

// Validate checks the field tags, then the consistency between the frequency and the second session.
func (p *Payload) Validate(validate *validator.Validate) error {
	p.Name = core.CleanString(p.Name)
	if err := validate.Struct(p); err != nil {
		return err
	}

	var flds []core.FieldError
	switch p.Frequency {
	case school.TwiceAWeek:
		if p.SecondDay == "" {
			flds = append(flds, core.FieldError{Field: "secondoGiorno", Error: errSecondSessionRequired})
		}
		if p.SecondSlot == "" {
			flds = append(flds, core.FieldError{Field: "secondoOrario", Error: errSecondSessionRequired})
		}
		if p.SecondDay == p.Day && p.SecondSlot == p.Slot {
			flds = append(flds, core.FieldError{Field: "secondoGiorno", Error: errSameSession})
		}
	case school.OnceAWeek:
		if p.SecondDay != "" {
			flds = append(flds, core.FieldError{Field: "secondoGiorno", Error: errSecondSessionForbidden})
		}
		if p.SecondSlot != "" {
			flds = append(flds, core.FieldError{Field: "secondoOrario", Error: errSecondSessionForbidden})
		}
	}
	if p.Type == school.Individual && len(p.StudentIDs) > 1 {
		flds = append(flds, core.FieldError{Field: "studentiIds", Error: errIndividualStudents})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// course returns the course described by the payload, without teacher, room and students.
func (p Payload) course() school.Course {
	return school.Course{
		Name:           p.Name,
		Type:           p.Type,
		Specialization: p.Specialization,
		Level:          p.Level,
		Frequency:      p.Frequency,
		Schedule: school.Schedule{
			Day:        p.Day,
			Slot:       p.Slot,
			SecondDay:  p.SecondDay,
			SecondSlot: p.SecondSlot,
		},
	}
}

type QueryFilter struct {
	// Active is nil for all courses.
	Active    *bool             `query:"attivo"`
	Type      school.CourseType `query:"tipo"`
	TeacherID int               `query:"insegnante"`
	Level     school.Level      `query:"livello"`
	Search    string            `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
	if qf.Type != "" {
		qf.Type, _ = school.ParseCourseType(string(qf.Type))
	}
	if qf.Level != "" {
		qf.Level, _ = school.ParseLevel(string(qf.Level))
	}
}

// Candidates are the teachers, students and rooms compatible with a course schedule.
type Candidates struct {
	Teachers []school.Teacher `json:"insegnanti"`
	Students []school.Student `json:"studenti"`
	Rooms    []school.Room    `json:"aule"`
}

type CalendarFilter struct {
	TeacherID int          `query:"insegnante"`
	Level     school.Level `query:"livello"`
}

// CalendarEntry is one weekly session of an active course.
type CalendarEntry struct {
	Day       school.Day         `json:"giorno"`
	Slot      school.TimeSlot    `json:"orario"`
	CourseID  int                `json:"corsoId"`
	Name      string             `json:"nome"`
	Type      school.CourseType  `json:"tipoCorso"`
	Level     school.Level       `json:"livello"`
	Teacher   *school.TeacherRef `json:"insegnante"`
	Room      *school.RoomRef    `json:"aula"`
	Students  int                `json:"numeroStudenti"`
	Secondary bool               `json:"secondaria"`
}
