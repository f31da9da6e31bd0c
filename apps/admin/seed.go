package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/core/teacher"
)

type (
	// roster is the YAML file loaded by `seed`. It uses the field names of the REST API.
	// Courses reference their teacher and students by email and their room by name.
	roster struct {
		Rooms    []rosterRoom    `yaml:"aule"`
		Teachers []rosterTeacher `yaml:"insegnanti"`
		Students []rosterStudent `yaml:"studenti"`
		Courses  []rosterCourse  `yaml:"corsi"`
	}

	rosterRoom struct {
		Name     string `yaml:"nome"`
		Capacity int    `yaml:"capienzaMax"`
	}

	rosterTeacher struct {
		FirstName       string   `yaml:"nome"`
		LastName        string   `yaml:"cognome"`
		Email           string   `yaml:"email"`
		Phone           string   `yaml:"telefono"`
		Specializations []string `yaml:"specializzazioni"`
		Days            []string `yaml:"giorniDisponibili"`
		Slots           []string `yaml:"fasceOrarieDisponibili"`
	}

	rosterStudent struct {
		FirstName   string   `yaml:"nome"`
		LastName    string   `yaml:"cognome"`
		Email       string   `yaml:"email"`
		Phone       string   `yaml:"telefono"`
		Age         int      `yaml:"eta"`
		EnrolledAt  string   `yaml:"dataIscrizione"`
		Preferences []string `yaml:"preferenzaCorso"`
		Days        []string `yaml:"giorniPreferiti"`
		Slots       []string `yaml:"fasceOrariePreferite"`
	}

	rosterCourse struct {
		Name           string   `yaml:"nome"`
		Teacher        string   `yaml:"insegnante"`
		Room           string   `yaml:"aula"`
		Students       []string `yaml:"studenti"`
		Day            string   `yaml:"giorno"`
		Slot           string   `yaml:"orario"`
		SecondDay      string   `yaml:"secondoGiorno"`
		SecondSlot     string   `yaml:"secondoOrario"`
		Specialization string   `yaml:"corsoTipo"`
		Type           string   `yaml:"tipoCorso"`
		Level          string   `yaml:"livello"`
		Frequency      string   `yaml:"frequenza"`
	}
)

func loadRoster(path string) (roster, error) {
	var r roster
	data, err := os.ReadFile(path)
	if err != nil {
		return r, errors.Wrap(err, "reading roster")
	}
	if err = yaml.Unmarshal(data, &r); err != nil {
		return r, errors.Wrap(err, "parsing roster")
	}
	return r, nil
}

func parseList[T ~string](vals []string, parse func(string) (T, error)) ([]T, error) {
	parsed := make([]T, 0, len(vals))
	for _, v := range vals {
		p, err := parse(v)
		if err != nil {
			return nil, errors.Wrapf(err, "%q", v)
		}
		parsed = append(parsed, p)
	}
	return parsed, nil
}

// parseOptional parses v unless it is empty, the zero value of every enum.
func parseOptional[T ~string](v string, parse func(string) (T, error)) (T, error) {
	if strings.TrimSpace(v) == "" {
		return "", nil
	}
	return parse(v)
}

func key(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// seed loads the roster through the services, so that a course breaking a scheduling rule is rejected
// the same way the API rejects it. It stops at the first invalid entry.
func (cli *commandLine) seed(path string) error {
	r, err := loadRoster(path)
	if err != nil {
		return err
	}
	ctx := context.Background()

	rooms := make(map[string]int, len(r.Rooms))
	for i, rr := range r.Rooms {
		data := room.Payload{Name: rr.Name, Capacity: rr.Capacity}
		if err = data.Validate(cli.validate); err != nil {
			return errors.Wrapf(err, "aule[%d]", i)
		}
		created, err := cli.roomSvc.Create(ctx, data)
		if err != nil {
			return errors.Wrapf(err, "aule[%d]", i)
		}
		rooms[key(created.Name)] = created.ID
	}

	teachers := make(map[string]int, len(r.Teachers))
	for i, rt := range r.Teachers {
		data, err := rt.payload()
		if err == nil {
			err = data.Validate(cli.validate)
		}
		if err != nil {
			return errors.Wrapf(err, "insegnanti[%d]", i)
		}
		created, err := cli.teacherSvc.Create(ctx, data)
		if err != nil {
			return errors.Wrapf(err, "insegnanti[%d]", i)
		}
		if created.Email != "" {
			teachers[key(created.Email)] = created.ID
		}
	}

	students := make(map[string]int, len(r.Students))
	for i, rs := range r.Students {
		data, err := rs.payload()
		if err == nil {
			err = data.Validate(cli.validate)
		}
		if err != nil {
			return errors.Wrapf(err, "studenti[%d]", i)
		}
		created, err := cli.studentSvc.Create(ctx, data)
		if err != nil {
			return errors.Wrapf(err, "studenti[%d]", i)
		}
		if created.Email != "" {
			students[key(created.Email)] = created.ID
		}
	}

	for i, rc := range r.Courses {
		data, err := rc.payload(teachers, rooms, students)
		if err == nil {
			err = data.Validate(cli.validate)
		}
		if err != nil {
			return errors.Wrapf(err, "corsi[%d] (%s)", i, rc.Name)
		}
		if _, err = cli.courseSvc.Create(ctx, data); err != nil {
			return errors.Wrapf(err, "corsi[%d] (%s)", i, rc.Name)
		}
	}

	fmt.Fprintf(
		cli.out, "seeded %d rooms, %d teachers, %d students, %d courses\n",
		len(r.Rooms), len(r.Teachers), len(r.Students), len(r.Courses),
	)
	return nil
}

func (rt rosterTeacher) payload() (teacher.Payload, error) {
	specs, err := parseList(rt.Specializations, school.ParseSpecialization)
	if err != nil {
		return teacher.Payload{}, err
	}
	days, err := parseList(rt.Days, school.ParseDay)
	if err != nil {
		return teacher.Payload{}, err
	}
	slots, err := parseList(rt.Slots, school.ParseTimeSlot)
	if err != nil {
		return teacher.Payload{}, err
	}
	return teacher.Payload{
		FirstName:       rt.FirstName,
		LastName:        rt.LastName,
		Email:           rt.Email,
		Phone:           rt.Phone,
		Specializations: specs,
		AvailableDays:   days,
		AvailableSlots:  slots,
	}, nil
}

func (rs rosterStudent) payload() (student.Payload, error) {
	prefs, err := parseList(rs.Preferences, school.ParseSpecialization)
	if err != nil {
		return student.Payload{}, err
	}
	days, err := parseList(rs.Days, school.ParseDay)
	if err != nil {
		return student.Payload{}, err
	}
	slots, err := parseList(rs.Slots, school.ParseTimeSlot)
	if err != nil {
		return student.Payload{}, err
	}
	var enrolledAt school.Date
	if rs.EnrolledAt != "" {
		t, err := time.Parse("2006-01-02", rs.EnrolledAt)
		if err != nil {
			return student.Payload{}, errors.Wrap(err, "dataIscrizione")
		}
		enrolledAt = school.DateOf(t)
	}
	return student.Payload{
		FirstName:      rs.FirstName,
		LastName:       rs.LastName,
		Email:          rs.Email,
		Phone:          rs.Phone,
		Age:            rs.Age,
		EnrolledAt:     enrolledAt,
		Preferences:    prefs,
		PreferredDays:  days,
		PreferredSlots: slots,
	}, nil
}

func (rc rosterCourse) payload(teachers, rooms, students map[string]int) (course.Payload, error) {
	data := course.Payload{Name: rc.Name}

	var ok bool
	if rc.Teacher != "" {
		if data.TeacherID, ok = teachers[key(rc.Teacher)]; !ok {
			return data, errors.Errorf("unknown teacher %q", rc.Teacher)
		}
	}
	if rc.Room != "" {
		if data.RoomID, ok = rooms[key(rc.Room)]; !ok {
			return data, errors.Errorf("unknown room %q", rc.Room)
		}
	}
	for _, email := range rc.Students {
		id, ok := students[key(email)]
		if !ok {
			return data, errors.Errorf("unknown student %q", email)
		}
		data.StudentIDs = append(data.StudentIDs, id)
	}

	var err error
	if data.Day, err = parseOptional(rc.Day, school.ParseDay); err != nil {
		return data, err
	}
	if data.Slot, err = parseOptional(rc.Slot, school.ParseTimeSlot); err != nil {
		return data, err
	}
	if data.SecondDay, err = parseOptional(rc.SecondDay, school.ParseDay); err != nil {
		return data, err
	}
	if data.SecondSlot, err = parseOptional(rc.SecondSlot, school.ParseTimeSlot); err != nil {
		return data, err
	}
	if data.Specialization, err = parseOptional(rc.Specialization, school.ParseSpecialization); err != nil {
		return data, err
	}
	if data.Type, err = parseOptional(rc.Type, school.ParseCourseType); err != nil {
		return data, err
	}
	if data.Level, err = parseOptional(rc.Level, school.ParseLevel); err != nil {
		return data, err
	}
	if data.Frequency, err = parseOptional(rc.Frequency, school.ParseFrequency); err != nil {
		return data, err
	}
	return data, nil
}
