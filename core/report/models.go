package report

import (
	"github.com/trezcool/thinkwise/core/expense"
	"github.com/trezcool/thinkwise/core/payment"
	"github.com/trezcool/thinkwise/core/school"
)

type Stats struct {
	Students        int `json:"totaleStudenti"`
	ActiveStudents  int `json:"studentiAttivi"`
	Teachers        int `json:"totaleInsegnanti"`
	ActiveCourses   int `json:"corsiAttivi"`
	InactiveCourses int `json:"corsiDisattivati"`
	Rooms           int `json:"totaleAule"`
}

// Alert flags a student attending an active course who has not paid the current month yet.
type Alert struct {
	Student school.StudentRef `json:"studente"`
	Month   payment.Month     `json:"mese"`
	Courses []string          `json:"corsi"`
	Message string            `json:"messaggio"`
}

type MonthlyTotal struct {
	Month  int     `json:"mese"`
	Name   string  `json:"nomeMese"`
	Amount float64 `json:"totale"`
}

type IncomeExpenses struct {
	Month    string  `json:"mese"`
	Income   float64 `json:"entrate"`
	Expenses float64 `json:"uscite"`
}

// Report sums up a month, or a whole year when Month is 0.
type Report struct {
	Year               int                          `json:"anno"`
	Month              int                          `json:"mese,omitempty"`
	Income             float64                      `json:"entrate"`
	Expenses           float64                      `json:"uscite"`
	Balance            float64                      `json:"saldo"`
	Payments           int                          `json:"numeroPagamenti"`
	ExpensesByCategory map[expense.Category]float64 `json:"spesePerCategoria"`
	TeacherHours       map[string]int               `json:"oreInsegnate"`
	Months             []IncomeExpenses             `json:"mesi,omitempty"`
}

type TeacherCourse struct {
	ID       int              `json:"id"`
	Name     string           `json:"nome"`
	Sessions []school.Session `json:"sessioni"`
	Students int              `json:"numeroStudenti"`
	Hours    int              `json:"ore"`
}

type TeacherReport struct {
	Teacher school.TeacherRef `json:"insegnante"`
	Year    int               `json:"anno"`
	Month   int               `json:"mese,omitempty"`
	Courses []TeacherCourse   `json:"corsi"`
	Hours   int               `json:"oreTotali"`
}
