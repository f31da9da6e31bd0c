package school

import (
	"encoding/json"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as "2006-01-02". RFC 3339 timestamps are accepted on input.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return err
		}
	}
	*d = DateOf(t)
	return nil
}

// Session is one weekly occurrence of a course.
type Session struct {
	Day  Day      `json:"giorno"`
	Slot TimeSlot `json:"orario"`
}

func (s Session) String() string { return string(s.Day) + " " + string(s.Slot) }

// Schedule is the primary session of a course plus the secondary one of twice-a-week courses.
type Schedule struct {
	Day        Day      `json:"giorno"`
	Slot       TimeSlot `json:"orario"`
	SecondDay  Day      `json:"secondoGiorno,omitempty"`
	SecondSlot TimeSlot `json:"secondoOrario,omitempty"`
}

// HasSecondSession reports whether both parts of the secondary session are set.
func (s Schedule) HasSecondSession() bool {
	return s.SecondDay != "" && s.SecondSlot != ""
}

// Sessions returns the primary session followed by the secondary one, when set.
func (s Schedule) Sessions() []Session {
	sessions := make([]Session, 0, 2)
	if s.Day != "" || s.Slot != "" {
		sessions = append(sessions, Session{Day: s.Day, Slot: s.Slot})
	}
	if s.HasSecondSession() {
		sessions = append(sessions, Session{Day: s.SecondDay, Slot: s.SecondSlot})
	}
	return sessions
}

type (
	TeacherRef struct {
		ID        int    `json:"id"`
		FirstName string `json:"nome"`
		LastName  string `json:"cognome"`
	}

	RoomRef struct {
		ID       int    `json:"id"`
		Name     string `json:"nome"`
		Capacity int    `json:"capienzaMax"`
	}

	StudentRef struct {
		ID        int    `json:"id"`
		FirstName string `json:"nome"`
		LastName  string `json:"cognome"`
		Email     string `json:"email,omitempty"`
	}

	// CourseRef is a course as seen from one of its students.
	CourseRef struct {
		ID             int            `json:"id"`
		Name           string         `json:"nome"`
		Specialization Specialization `json:"corsoTipo"`
		Level          Level          `json:"livello"`
		Active         bool           `json:"attivo"`
		Schedule
	}
)

type Course struct {
	ID             int            `json:"id"`
	Name           string         `json:"nome"`
	Type           CourseType     `json:"tipoCorso"`
	Specialization Specialization `json:"corsoTipo"`
	Level          Level          `json:"livello"`
	Frequency      Frequency      `json:"frequenza"`
	Schedule
	Teacher   *TeacherRef  `json:"insegnante"`
	Room      *RoomRef     `json:"aula"`
	Students  []StudentRef `json:"studenti"`
	Active    bool         `json:"attivo"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (c Course) HasStudent(id int) bool {
	for _, s := range c.Students {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (c Course) StudentCount() int { return len(c.Students) }

func (c Course) StudentIDs() []int {
	ids := make([]int, 0, len(c.Students))
	for _, s := range c.Students {
		ids = append(ids, s.ID)
	}
	return ids
}

// Capacity is the max number of students; 0 means unbounded (group course without a room).
func (c Course) Capacity() int {
	if c.Type == Individual {
		return 1
	}
	if c.Room != nil {
		return c.Room.Capacity
	}
	return 0
}

func (c Course) Ref() CourseRef {
	return CourseRef{
		ID:             c.ID,
		Name:           c.Name,
		Specialization: c.Specialization,
		Level:          c.Level,
		Active:         c.Active,
		Schedule:       c.Schedule,
	}
}

type Teacher struct {
	ID              int              `json:"id"`
	FirstName       string           `json:"nome"`
	LastName        string           `json:"cognome"`
	Email           string           `json:"email"`
	Phone           string           `json:"telefono"`
	Specializations []Specialization `json:"specializzazioni"`
	AvailableDays   []Day            `json:"giorniDisponibili"`
	AvailableSlots  []TimeSlot       `json:"fasceOrarieDisponibili"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func (t Teacher) FullName() string { return strings.TrimSpace(t.FirstName + " " + t.LastName) }

func (t Teacher) Ref() *TeacherRef {
	return &TeacherRef{ID: t.ID, FirstName: t.FirstName, LastName: t.LastName}
}

type Student struct {
	ID             int              `json:"id"`
	FirstName      string           `json:"nome"`
	LastName       string           `json:"cognome"`
	Email          string           `json:"email"`
	Phone          string           `json:"telefono"`
	Age            int              `json:"eta"`
	EnrolledAt     Date             `json:"dataIscrizione"`
	Preferences    []Specialization `json:"preferenzaCorso"`
	PreferredDays  []Day            `json:"giorniPreferiti"`
	PreferredSlots []TimeSlot       `json:"fasceOrariePreferite"`
	Courses        []CourseRef      `json:"corsi"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func (s Student) FullName() string { return strings.TrimSpace(s.FirstName + " " + s.LastName) }

func (s Student) Ref() StudentRef {
	return StudentRef{ID: s.ID, FirstName: s.FirstName, LastName: s.LastName, Email: s.Email}
}

func (s Student) ActiveCourses() []CourseRef {
	var active []CourseRef
	for _, c := range s.Courses {
		if c.Active {
			active = append(active, c)
		}
	}
	return active
}

func (s Student) HasActiveCourse() bool { return len(s.ActiveCourses()) > 0 }

type Room struct {
	ID        int       `json:"id"`
	Name      string    `json:"nome"`
	Capacity  int       `json:"capienzaMax"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r Room) Ref() *RoomRef {
	return &RoomRef{ID: r.ID, Name: r.Name, Capacity: r.Capacity}
}
