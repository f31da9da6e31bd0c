package sqlxrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/school"
	"github.com/trezcool/thinkwise/core/teacher"
)

const teacherColumns = `id, first_name, last_name, email, phone, specializations, available_days, available_slots, created_at, updated_at`

type teacherRow struct {
	ID              int            `db:"id"`
	FirstName       string         `db:"first_name"`
	LastName        string         `db:"last_name"`
	Email           string         `db:"email"`
	Phone           string         `db:"phone"`
	Specializations pq.StringArray `db:"specializations"`
	AvailableDays   pq.StringArray `db:"available_days"`
	AvailableSlots  pq.StringArray `db:"available_slots"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (row teacherRow) teacher() school.Teacher {
	return school.Teacher{
		ID:              row.ID,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		Email:           row.Email,
		Phone:           row.Phone,
		Specializations: fromStrings[school.Specialization](row.Specializations),
		AvailableDays:   fromStrings[school.Day](row.AvailableDays),
		AvailableSlots:  fromStrings[school.TimeSlot](row.AvailableSlots),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

type teacherRepository struct {
	db core.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db core.DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t school.Teacher) (school.Teacher, error) {
	q := `INSERT INTO teachers (first_name, last_name, email, phone, specializations, available_days, available_slots, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := repo.db.GetContext(ctx, &t.ID, q,
		t.FirstName, t.LastName, t.Email, t.Phone,
		toStrings(t.Specializations), toStrings(t.AvailableDays), toStrings(t.AvailableSlots),
		t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return school.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo *teacherRepository) GetTeacher(ctx context.Context, id int) (school.Teacher, error) {
	var row teacherRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+teacherColumns+` FROM teachers WHERE id = $1`, id); err != nil {
		return school.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound)
	}
	return row.teacher(), nil
}

func (repo *teacherRepository) QueryTeachers(ctx context.Context, filter teacher.QueryFilter) ([]school.Teacher, error) {
	var w where
	if filter.Search != "" {
		w.add(`(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?)`, likePattern(filter.Search))
	}
	if filter.Specialization != "" {
		w.add(`? = ANY(specializations)`, string(filter.Specialization))
	}

	var rows []teacherRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+teacherColumns+` FROM teachers`+w.String()+orderBy(nil, ""), w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting teachers")
	}
	teachers := make([]school.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.teacher())
	}
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t school.Teacher) (school.Teacher, error) {
	q := `UPDATE teachers SET first_name = $2, last_name = $3, email = $4, phone = $5,
		specializations = $6, available_days = $7, available_slots = $8, updated_at = $9
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		t.ID, t.FirstName, t.LastName, t.Email, t.Phone,
		toStrings(t.Specializations), toStrings(t.AvailableDays), toStrings(t.AvailableSlots),
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		return school.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Teacher{}, teacher.ErrNotFound
	}
	return t, nil
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return teacher.ErrNotFound
	}
	return nil
}

func (repo *teacherRepository) CountActiveCourses(ctx context.Context, teacherID int) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM courses WHERE teacher_id = $1 AND active`, teacherID)
	return n, errors.Wrap(err, "counting courses")
}
