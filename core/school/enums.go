package school

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	ErrInvalidDay            = errors.New("invalid day")
	ErrInvalidTimeSlot       = errors.New("invalid time slot")
	ErrInvalidSpecialization = errors.New("invalid specialization")
	ErrInvalidCourseType     = errors.New("invalid course type")
	ErrInvalidLevel          = errors.New("invalid level")
	ErrInvalidFrequency      = errors.New("invalid frequency")
)

// Day of the week, in its Italian wire form.
type Day string

const (
	Monday    Day = "Lunedì"
	Tuesday   Day = "Martedì"
	Wednesday Day = "Mercoledì"
	Thursday  Day = "Giovedì"
	Friday    Day = "Venerdì"
	Saturday  Day = "Sabato"
	Sunday    Day = "Domenica"
)

var days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Days returns all days in calendar order.
func Days() []Day { return append([]Day(nil), days...) }

var accentReplacer = strings.NewReplacer(
	"à", "a", "è", "e", "é", "e", "ì", "i", "í", "i", "ò", "o", "ó", "o", "ù", "u", "ú", "u", "'", "", "`", "",
)

func normalizeDay(s string) string {
	return accentReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// ParseDay accepts the canonical form as well as lower-case and accent-less spellings ("lunedi", "LUNEDI'").
func ParseDay(s string) (Day, error) {
	key := normalizeDay(s)
	for _, d := range days {
		if normalizeDay(string(d)) == key {
			return d, nil
		}
	}
	return "", ErrInvalidDay
}

func (d Day) IsValid() bool { return d.Index() >= 0 }

// Index is the position of the day in the week, starting on Monday. It is -1 for unknown days.
func (d Day) Index() int {
	for i, day := range days {
		if day == d {
			return i
		}
	}
	return -1
}

func (d Day) Weekday() time.Weekday {
	if idx := d.Index(); idx >= 0 {
		return time.Weekday((idx + 1) % 7)
	}
	return -1
}

func (d *Day) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(d), func(s string) (string, error) {
		v, err := ParseDay(s)
		return string(v), err
	})
}

// TimeSlot is a two-hour teaching slot such as "10:00-12:00". Slots are opaque tokens.
type TimeSlot string

const (
	Slot0800 TimeSlot = "08:00-10:00"
	Slot1000 TimeSlot = "10:00-12:00"
	Slot1200 TimeSlot = "12:00-14:00"
	Slot1400 TimeSlot = "14:00-16:00"
	Slot1600 TimeSlot = "16:00-18:00"
	Slot1800 TimeSlot = "18:00-20:00"
)

// SlotHours is the length of every slot.
const SlotHours = 2

var timeSlots = []TimeSlot{Slot0800, Slot1000, Slot1200, Slot1400, Slot1600, Slot1800}

func TimeSlots() []TimeSlot { return append([]TimeSlot(nil), timeSlots...) }

func normalizeTimeSlot(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.NewReplacer("–", "-", "—", "-", ".", ":").Replace(s)
	// "8:00-10:00" -> "08:00-10:00"
	if parts := strings.SplitN(s, "-", 2); len(parts) == 2 {
		for i, p := range parts {
			if len(p) == 4 && p[1] == ':' {
				parts[i] = "0" + p
			}
		}
		s = parts[0] + "-" + parts[1]
	}
	return s
}

func ParseTimeSlot(s string) (TimeSlot, error) {
	key := normalizeTimeSlot(s)
	for _, ts := range timeSlots {
		if string(ts) == key {
			return ts, nil
		}
	}
	return "", ErrInvalidTimeSlot
}

func (ts TimeSlot) IsValid() bool { return ts.Index() >= 0 }

func (ts TimeSlot) Index() int {
	for i, slot := range timeSlots {
		if slot == ts {
			return i
		}
	}
	return -1
}

func (ts *TimeSlot) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(ts), func(s string) (string, error) {
		v, err := ParseTimeSlot(s)
		return string(v), err
	})
}

// Specialization is the subject of a course, taught by teachers and preferred by students.
type Specialization string

const (
	Frontend       Specialization = "Frontend"
	Backend        Specialization = "Backend"
	UXUIDesign     Specialization = "UX_UI_Design"
	Cybersecurity  Specialization = "Cybersecurity"
	CloudComputing Specialization = "Cloud_Computing"
	DataScience    Specialization = "Data_Science"
)

var (
	specializations = []Specialization{Frontend, Backend, UXUIDesign, Cybersecurity, CloudComputing, DataScience}

	specializationLabels = map[Specialization]string{
		Frontend:       "Frontend",
		Backend:        "Backend",
		UXUIDesign:     "UX/UI Design",
		Cybersecurity:  "Cybersecurity",
		CloudComputing: "Cloud Computing",
		DataScience:    "Data Science",
	}
)

func Specializations() []Specialization { return append([]Specialization(nil), specializations...) }

// normalizeAlnum lowers s and drops everything but letters and digits: "UX/UI Design" == "UX_UI_Design".
func normalizeAlnum(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

// ParseSpecialization accepts the canonical key as well as its label and separator variants.
func ParseSpecialization(s string) (Specialization, error) {
	key := normalizeAlnum(s)
	if key == "" {
		return "", ErrInvalidSpecialization
	}
	for _, sp := range specializations {
		if normalizeAlnum(string(sp)) == key {
			return sp, nil
		}
	}
	return "", ErrInvalidSpecialization
}

func (sp Specialization) IsValid() bool {
	_, ok := specializationLabels[sp]
	return ok
}

// Label is the human readable form, e.g. "UX/UI Design".
func (sp Specialization) Label() string {
	if l, ok := specializationLabels[sp]; ok {
		return l
	}
	return string(sp)
}

func (sp *Specialization) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(sp), func(s string) (string, error) {
		v, err := ParseSpecialization(s)
		return string(v), err
	})
}

type CourseType string

const (
	Individual CourseType = "INDIVIDUALE"
	Group      CourseType = "DI_GRUPPO"
)

var courseTypes = []CourseType{Individual, Group}

func CourseTypes() []CourseType { return append([]CourseType(nil), courseTypes...) }

func ParseCourseType(s string) (CourseType, error) {
	key := normalizeAlnum(s)
	for _, ct := range courseTypes {
		if normalizeAlnum(string(ct)) == key {
			return ct, nil
		}
	}
	return "", ErrInvalidCourseType
}

func (ct CourseType) IsValid() bool { return ct == Individual || ct == Group }

func (ct *CourseType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(ct), func(s string) (string, error) {
		v, err := ParseCourseType(s)
		return string(v), err
	})
}

type Level string

const (
	Beginner Level = "Beginner"
	Junior   Level = "Junior"
	Advanced Level = "Advanced"
)

var levels = []Level{Beginner, Junior, Advanced}

func Levels() []Level { return append([]Level(nil), levels...) }

func ParseLevel(s string) (Level, error) {
	key := normalizeAlnum(s)
	for _, l := range levels {
		if normalizeAlnum(string(l)) == key {
			return l, nil
		}
	}
	return "", ErrInvalidLevel
}

func (l Level) IsValid() bool { return l == Beginner || l == Junior || l == Advanced }

func (l *Level) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(l), func(s string) (string, error) {
		v, err := ParseLevel(s)
		return string(v), err
	})
}

// Frequency is the number of weekly sessions of a course.
type Frequency string

const (
	OnceAWeek  Frequency = "1 volta a settimana"
	TwiceAWeek Frequency = "2 volte a settimana"
)

func ParseFrequency(s string) (Frequency, error) {
	switch key := normalizeAlnum(s); key {
	case normalizeAlnum(string(OnceAWeek)), "1":
		return OnceAWeek, nil
	case normalizeAlnum(string(TwiceAWeek)), "2":
		return TwiceAWeek, nil
	}
	return "", ErrInvalidFrequency
}

func (f Frequency) IsValid() bool { return f == OnceAWeek || f == TwiceAWeek }

// Sessions is the number of weekly sessions; an unset frequency counts as one.
func (f Frequency) Sessions() int {
	if f == TwiceAWeek {
		return 2
	}
	return 1
}

func (f *Frequency) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(f), func(s string) (string, error) {
		v, err := ParseFrequency(s)
		return string(v), err
	})
}

// unmarshalEnum stores the canonical form of a JSON string when it parses.
// Unknown values are kept verbatim so that validation can report them per field.
func unmarshalEnum(b []byte, dst *string, parse func(string) (string, error)) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*dst = ""
		return nil
	}
	if v, err := parse(s); err == nil {
		*dst = v
		return nil
	}
	*dst = s
	return nil
}
