package sqlxrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/student"
)

const studentColumns = `id, first_name, last_name, email, phone, age, enrolled_at, preferences, preferred_days, preferred_slots, created_at, updated_at`

type studentRow struct {
	ID             int            `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	Phone          string         `db:"phone"`
	Age            int            `db:"age"`
	EnrolledAt     time.Time      `db:"enrolled_at"`
	Preferences    pq.StringArray `db:"preferences"`
	PreferredDays  pq.StringArray `db:"preferred_days"`
	PreferredSlots pq.StringArray `db:"preferred_slots"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (row studentRow) student() school.Student {
	return school.Student{
		ID:             row.ID,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Email:          row.Email,
		Phone:          row.Phone,
		Age:            row.Age,
		EnrolledAt:     school.DateOf(row.EnrolledAt),
		Preferences:    fromStrings[school.Specialization](row.Preferences),
		PreferredDays:  fromStrings[school.Day](row.PreferredDays),
		PreferredSlots: fromStrings[school.TimeSlot](row.PreferredSlots),
		Courses:        make([]school.CourseRef, 0),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

// studentCourseRow is a course seen from one of its students.
type studentCourseRow struct {
	StudentID      int         `db:"student_id"`
	ID             int         `db:"id"`
	Name           string      `db:"name"`
	Specialization string      `db:"specialization"`
	Level          string      `db:"level"`
	Active         bool        `db:"active"`
	Day            string      `db:"day"`
	Slot           string      `db:"slot"`
	SecondDay      null.String `db:"second_day"`
	SecondSlot     null.String `db:"second_slot"`
}

func (row studentCourseRow) ref() school.CourseRef {
	return school.CourseRef{
		ID:             row.ID,
		Name:           row.Name,
		Specialization: school.Specialization(row.Specialization),
		Level:          school.Level(row.Level),
		Active:         row.Active,
		Schedule: school.Schedule{
			Day:        school.Day(row.Day),
			Slot:       school.TimeSlot(row.Slot),
			SecondDay:  school.Day(row.SecondDay.String),
			SecondSlot: school.TimeSlot(row.SecondSlot.String),
		},
	}
}

type studentRepository struct {
	db core.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DB) student.Repository {
	return &studentRepository{db: db}
}

// attachCourses loads the courses of the students in a single query.
func (repo *studentRepository) attachCourses(ctx context.Context, students []school.Student) error {
	if len(students) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(students))
	idx := make(map[int]int, len(students))
	for i, s := range students {
		ids = append(ids, int64(s.ID))
		idx[s.ID] = i
	}

	q := `SELECT cs.student_id, c.id, c.name, c.specialization, c.level, c.active, c.day, c.slot, c.second_day, c.second_slot
		FROM course_students cs JOIN courses c ON c.id = cs.course_id
		WHERE cs.student_id = ANY($1) ORDER BY c.id`
	var rows []studentCourseRow
	if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "selecting student courses")
	}
	for _, row := range rows {
		i := idx[row.StudentID]
		students[i].Courses = append(students[i].Courses, row.ref())
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s school.Student) (school.Student, error) {
	q := `INSERT INTO students (first_name, last_name, email, phone, age, enrolled_at, preferences, preferred_days, preferred_slots, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := repo.db.GetContext(ctx, &s.ID, q,
		s.FirstName, s.LastName, s.Email, s.Phone, s.Age, s.EnrolledAt.Time,
		toStrings(s.Preferences), toStrings(s.PreferredDays), toStrings(s.PreferredSlots),
		s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "inserting student")
	}
	s.Courses = make([]school.CourseRef, 0)
	return s, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id int) (school.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id); err != nil {
		return school.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	students := []school.Student{row.student()}
	if err := repo.attachCourses(ctx, students); err != nil {
		return school.Student{}, err
	}
	return students[0], nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, ordering []core.DBOrdering) ([]school.Student, error) {
	var w where
	if filter.Search != "" {
		w.add(`(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?)`, likePattern(filter.Search))
	}

	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM students` + w.String() + orderBy(ordering, "")
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]school.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	if err := repo.attachCourses(ctx, students); err != nil {
		return nil, err
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s school.Student) (school.Student, error) {
	q := `UPDATE students SET first_name = $2, last_name = $3, email = $4, phone = $5, age = $6, enrolled_at = $7,
		preferences = $8, preferred_days = $9, preferred_slots = $10, updated_at = $11
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		s.ID, s.FirstName, s.LastName, s.Email, s.Phone, s.Age, s.EnrolledAt.Time,
		toStrings(s.Preferences), toStrings(s.PreferredDays), toStrings(s.PreferredSlots),
		s.UpdatedAt.UTC(),
	)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Student{}, student.ErrNotFound
	}
	return repo.GetStudent(ctx, s.ID)
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}
