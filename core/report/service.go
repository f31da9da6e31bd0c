package report

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/expense"
	"github.com/trezcool/thinkwise/core/payment"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
	"github.com/trezcool/thinkwise/core/teacher"
)

// ErrInvalidPeriod is returned for a month outside 0..12 or a non positive year.
var ErrInvalidPeriod = errors.New("invalid period")

type Repositories struct {
	Courses  course.Repository
	Students student.Repository
	Teachers teacher.Repository
	Rooms    room.Repository
	Payments payment.Repository
	Expenses expense.Repository
}

type Service struct {
	repos Repositories
	cache core.Cache
	ttl   time.Duration
}

// NewService returns a report service caching its results for ttl. A nil cache disables caching.
func NewService(repos Repositories, cache core.Cache, ttl time.Duration) *Service {
	return &Service{repos: repos, cache: cache, ttl: ttl}
}

// cached decodes the value at key into dst, or fills dst with load and stores it.
// Cache failures only cost a recomputation.
func (svc *Service) cached(ctx context.Context, key string, dst interface{}, load func() error) error {
	key = core.DashboardCachePrefix + key
	if svc.cache != nil {
		if ok, err := svc.cache.Get(ctx, key, dst); err == nil && ok {
			return nil
		}
	}
	if err := load(); err != nil {
		return err
	}
	if svc.cache != nil {
		_ = svc.cache.Set(ctx, key, dst, svc.ttl)
	}
	return nil
}

func checkPeriod(year, month int) error {
	if year <= 0 || month < 0 || month > 12 {
		return core.NewValidationError(ErrInvalidPeriod)
	}
	return nil
}

func (svc *Service) activeCourses(ctx context.Context, teacherID int) ([]school.Course, error) {
	active := true
	courses, err := svc.repos.Courses.QueryCourses(ctx, course.QueryFilter{Active: &active, TeacherID: teacherID}, nil)
	return courses, errors.Wrap(err, "querying active courses")
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := svc.cached(ctx, "stats", &stats, func() error {
		students, err := svc.repos.Students.QueryStudents(ctx, student.QueryFilter{}, nil)
		if err != nil {
			return errors.Wrap(err, "querying students")
		}
		teachers, err := svc.repos.Teachers.QueryTeachers(ctx, teacher.QueryFilter{})
		if err != nil {
			return errors.Wrap(err, "querying teachers")
		}
		courses, err := svc.repos.Courses.QueryCourses(ctx, course.QueryFilter{}, nil)
		if err != nil {
			return errors.Wrap(err, "querying courses")
		}
		rooms, err := svc.repos.Rooms.QueryRooms(ctx)
		if err != nil {
			return errors.Wrap(err, "querying rooms")
		}

		stats = Stats{Students: len(students), Teachers: len(teachers), Rooms: len(rooms)}
		for _, s := range students {
			if s.HasActiveCourse() {
				stats.ActiveStudents++
			}
		}
		for _, c := range courses {
			if c.Active {
				stats.ActiveCourses++
			} else {
				stats.InactiveCourses++
			}
		}
		return nil
	})
	return stats, err
}

// Alerts lists the students attending an active course without a payment for the month of now.
func (svc *Service) Alerts(ctx context.Context, now time.Time) ([]Alert, error) {
	month := payment.MonthOf(now)
	alerts := make([]Alert, 0)
	err := svc.cached(ctx, fmt.Sprintf("alerts:%d-%02d", month.Year, month.Month), &alerts, func() error {
		students, err := svc.repos.Students.QueryStudents(ctx, student.QueryFilter{}, nil)
		if err != nil {
			return errors.Wrap(err, "querying students")
		}
		payments, err := svc.repos.Payments.QueryPayments(ctx, payment.QueryFilter{})
		if err != nil {
			return errors.Wrap(err, "querying payments")
		}

		paid := make(map[int]struct{})
		for _, p := range payments {
			if p.Month == month {
				paid[p.StudentID] = struct{}{}
			}
		}
		for _, s := range students {
			active := s.ActiveCourses()
			if len(active) == 0 {
				continue
			}
			if _, ok := paid[s.ID]; ok {
				continue
			}
			names := make([]string, 0, len(active))
			for _, c := range active {
				names = append(names, c.Name)
			}
			alerts = append(alerts, Alert{
				Student: s.Ref(),
				Month:   month,
				Courses: names,
				Message: fmt.Sprintf("%s non ha ancora pagato la mensilità di %s", s.FullName(), month),
			})
		}
		return nil
	})
	return alerts, err
}

// MonthlyPayments returns the income of each month of the year, by payment date.
func (svc *Service) MonthlyPayments(ctx context.Context, year int) ([]MonthlyTotal, error) {
	if err := checkPeriod(year, 0); err != nil {
		return nil, err
	}
	var totals []MonthlyTotal
	err := svc.cached(ctx, fmt.Sprintf("monthly-payments:%d", year), &totals, func() error {
		payments, err := svc.repos.Payments.QueryPayments(ctx, payment.QueryFilter{Year: year})
		if err != nil {
			return errors.Wrap(err, "querying payments")
		}
		totals = make([]MonthlyTotal, 12)
		for i := range totals {
			totals[i] = MonthlyTotal{Month: i + 1, Name: payment.MonthName(time.Month(i + 1))}
		}
		for _, p := range payments {
			totals[p.PaidAt.Month()-1].Amount += p.Amount
		}
		return nil
	})
	return totals, err
}

func (svc *Service) IncomeExpenses(ctx context.Context, year int) ([]IncomeExpenses, error) {
	if err := checkPeriod(year, 0); err != nil {
		return nil, err
	}
	var rows []IncomeExpenses
	err := svc.cached(ctx, fmt.Sprintf("income-expenses:%d", year), &rows, func() error {
		var err error
		rows, err = svc.incomeExpenses(ctx, year)
		return err
	})
	return rows, err
}

func (svc *Service) incomeExpenses(ctx context.Context, year int) ([]IncomeExpenses, error) {
	payments, err := svc.repos.Payments.QueryPayments(ctx, payment.QueryFilter{Year: year})
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	expenses, err := svc.repos.Expenses.QueryExpenses(ctx, expense.Filter{Year: year})
	if err != nil {
		return nil, errors.Wrap(err, "querying expenses")
	}

	rows := make([]IncomeExpenses, 12)
	for i := range rows {
		rows[i].Month = payment.MonthName(time.Month(i + 1))
	}
	for _, p := range payments {
		rows[p.PaidAt.Month()-1].Income += p.Amount
	}
	for _, e := range expenses {
		rows[e.Date.Month()-1].Expenses += e.Amount
	}
	return rows, nil
}

func (svc *Service) ExpensesByCategory(ctx context.Context, year int) (map[expense.Category]float64, error) {
	if err := checkPeriod(year, 0); err != nil {
		return nil, err
	}
	var totals map[expense.Category]float64
	err := svc.cached(ctx, fmt.Sprintf("expenses-by-category:%d", year), &totals, func() error {
		expenses, err := svc.repos.Expenses.QueryExpenses(ctx, expense.Filter{Year: year})
		if err != nil {
			return errors.Wrap(err, "querying expenses")
		}
		totals = sumByCategory(expenses)
		return nil
	})
	return totals, err
}

func sumByCategory(expenses []expense.Expense) map[expense.Category]float64 {
	totals := make(map[expense.Category]float64)
	for _, cat := range expense.Categories() {
		totals[cat] = 0
	}
	for _, e := range expenses {
		totals[e.Category] += e.Amount
	}
	return totals
}

// TeacherHours returns the hours taught by each teacher of an active course in the month,
// or in the whole year when month is 0. Teachers are keyed by full name.
func (svc *Service) TeacherHours(ctx context.Context, year, month int) (map[string]int, error) {
	if err := checkPeriod(year, month); err != nil {
		return nil, err
	}
	var hours map[string]int
	err := svc.cached(ctx, fmt.Sprintf("teacher-hours:%d-%02d", year, month), &hours, func() error {
		courses, err := svc.activeCourses(ctx, 0)
		if err != nil {
			return err
		}
		hours = teacherHours(courses, year, month)
		return nil
	})
	return hours, err
}

func teacherHours(courses []school.Course, year, month int) map[string]int {
	start, end := period(year, month)
	hours := make(map[string]int)
	for _, c := range courses {
		if c.Teacher == nil {
			continue
		}
		name := school.Teacher{FirstName: c.Teacher.FirstName, LastName: c.Teacher.LastName}.FullName()
		hours[name] += courseHours(c, start, end)
	}
	return hours
}

func courseHours(c school.Course, start, end time.Time) int {
	var h int
	for _, sess := range c.Sessions() {
		h += school.SlotHours * countWeekday(start, end, sess.Day.Weekday())
	}
	return h
}

// period returns the [start, end) range of the month, or of the year when month is 0.
func period(year, month int) (time.Time, time.Time) {
	if month == 0 {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// countWeekday counts the days falling on wd in [start, end).
func countWeekday(start, end time.Time, wd time.Weekday) int {
	offset := (int(wd) - int(start.Weekday()) + 7) % 7
	first := start.AddDate(0, 0, offset)
	if !first.Before(end) {
		return 0
	}
	days := int(end.Sub(first).Hours() / 24)
	return (days-1)/7 + 1
}

// Report sums up the income, expenses and teaching hours of a month, or of the year when month is 0.
func (svc *Service) Report(ctx context.Context, year, month int) (Report, error) {
	if err := checkPeriod(year, month); err != nil {
		return Report{}, err
	}
	var rep Report
	err := svc.cached(ctx, fmt.Sprintf("report:%d-%02d", year, month), &rep, func() error {
		payments, err := svc.repos.Payments.QueryPayments(ctx, payment.QueryFilter{Year: year})
		if err != nil {
			return errors.Wrap(err, "querying payments")
		}
		expenses, err := svc.repos.Expenses.QueryExpenses(ctx, expense.Filter{Year: year, Month: month})
		if err != nil {
			return errors.Wrap(err, "querying expenses")
		}
		courses, err := svc.activeCourses(ctx, 0)
		if err != nil {
			return err
		}

		rep = Report{Year: year, Month: month}
		for _, p := range payments {
			if month != 0 && int(p.PaidAt.Month()) != month {
				continue
			}
			rep.Income += p.Amount
			rep.Payments++
		}
		for _, e := range expenses {
			rep.Expenses += e.Amount
		}
		rep.Balance = rep.Income - rep.Expenses
		rep.ExpensesByCategory = sumByCategory(expenses)
		rep.TeacherHours = teacherHours(courses, year, month)
		if month == 0 {
			if rep.Months, err = svc.incomeExpenses(ctx, year); err != nil {
				return err
			}
		}
		return nil
	})
	return rep, err
}

// TeacherReport details the hours taught by one teacher in the month, or in the year when month is 0.
func (svc *Service) TeacherReport(ctx context.Context, year, month, teacherID int) (TeacherReport, error) {
	if err := checkPeriod(year, month); err != nil {
		return TeacherReport{}, err
	}
	t, err := svc.repos.Teachers.GetTeacher(ctx, teacherID)
	if err != nil {
		return TeacherReport{}, err
	}

	var rep TeacherReport
	err = svc.cached(ctx, fmt.Sprintf("teacher-report:%d:%d-%02d", teacherID, year, month), &rep, func() error {
		courses, err := svc.activeCourses(ctx, teacherID)
		if err != nil {
			return err
		}
		start, end := period(year, month)
		rep = TeacherReport{Teacher: *t.Ref(), Year: year, Month: month, Courses: make([]TeacherCourse, 0, len(courses))}
		for _, c := range courses {
			h := courseHours(c, start, end)
			rep.Courses = append(rep.Courses, TeacherCourse{
				ID:       c.ID,
				Name:     c.Name,
				Sessions: c.Sessions(),
				Students: c.StudentCount(),
				Hours:    h,
			})
			rep.Hours += h
		}
		return nil
	})
	return rep, err
}
