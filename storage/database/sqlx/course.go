package sqlxrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/course"
	"github.com/trezcool/thinkwise/core/school"
)

const courseSelect = `SELECT c.id, c.name, c.type, c.specialization, c.level, c.frequency,
		c.day, c.slot, c.second_day, c.second_slot, c.teacher_id, c.room_id, c.active, c.created_at, c.updated_at,
		t.first_name AS teacher_first_name, t.last_name AS teacher_last_name,
		r.name AS room_name, r.capacity AS room_capacity
	FROM courses c
	LEFT JOIN teachers t ON t.id = c.teacher_id
	LEFT JOIN rooms r ON r.id = c.room_id`

type courseRow struct {
	ID               int         `db:"id"`
	Name             string      `db:"name"`
	Type             string      `db:"type"`
	Specialization   string      `db:"specialization"`
	Level            string      `db:"level"`
	Frequency        string      `db:"frequency"`
	Day              string      `db:"day"`
	Slot             string      `db:"slot"`
	SecondDay        null.String `db:"second_day"`
	SecondSlot       null.String `db:"second_slot"`
	TeacherID        null.Int    `db:"teacher_id"`
	RoomID           null.Int    `db:"room_id"`
	Active           bool        `db:"active"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
	TeacherFirstName null.String `db:"teacher_first_name"`
	TeacherLastName  null.String `db:"teacher_last_name"`
	RoomName         null.String `db:"room_name"`
	RoomCapacity     null.Int    `db:"room_capacity"`
}

func (row courseRow) course() school.Course {
	c := school.Course{
		ID:             row.ID,
		Name:           row.Name,
		Type:           school.CourseType(row.Type),
		Specialization: school.Specialization(row.Specialization),
		Level:          school.Level(row.Level),
		Frequency:      school.Frequency(row.Frequency),
		Schedule: school.Schedule{
			Day:        school.Day(row.Day),
			Slot:       school.TimeSlot(row.Slot),
			SecondDay:  school.Day(row.SecondDay.String),
			SecondSlot: school.TimeSlot(row.SecondSlot.String),
		},
		Students:  make([]school.StudentRef, 0),
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.TeacherID.Valid {
		c.Teacher = &school.TeacherRef{
			ID:        row.TeacherID.Int,
			FirstName: row.TeacherFirstName.String,
			LastName:  row.TeacherLastName.String,
		}
	}
	if row.RoomID.Valid {
		c.Room = &school.RoomRef{ID: row.RoomID.Int, Name: row.RoomName.String, Capacity: row.RoomCapacity.Int}
	}
	return c
}

type courseStudentRow struct {
	CourseID  int    `db:"course_id"`
	ID        int    `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
}

// nullable converts the optional relations and second session of a course to column values.
func nullable(c school.Course) (secondDay, secondSlot null.String, teacherID, roomID null.Int) {
	secondDay = null.NewString(string(c.SecondDay), c.SecondDay != "")
	secondSlot = null.NewString(string(c.SecondSlot), c.SecondSlot != "")
	if c.Teacher != nil {
		teacherID = null.IntFrom(c.Teacher.ID)
	}
	if c.Room != nil {
		roomID = null.IntFrom(c.Room.ID)
	}
	return
}

type courseRepository struct {
	db core.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db core.DB) course.Repository {
	return &courseRepository{db: db}
}

// attachStudents loads the students of the courses in a single query.
func attachStudents(ctx context.Context, exec core.DBExecutor, courses []school.Course) error {
	if len(courses) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(courses))
	idx := make(map[int]int, len(courses))
	for i, c := range courses {
		ids = append(ids, int64(c.ID))
		idx[c.ID] = i
	}

	q := `SELECT cs.course_id, s.id, s.first_name, s.last_name, s.email
		FROM course_students cs JOIN students s ON s.id = cs.student_id
		WHERE cs.course_id = ANY($1) ORDER BY cs.created_at, s.id`
	var rows []courseStudentRow
	if err := exec.SelectContext(ctx, &rows, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "selecting course students")
	}
	for _, row := range rows {
		i := idx[row.CourseID]
		courses[i].Students = append(courses[i].Students, school.StudentRef{
			ID:        row.ID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     row.Email,
		})
	}
	return nil
}

func getCourse(ctx context.Context, exec core.DBExecutor, id int) (school.Course, error) {
	var row courseRow
	if err := exec.GetContext(ctx, &row, courseSelect+` WHERE c.id = $1`, id); err != nil {
		return school.Course{}, trapNoRowsErr(err, course.ErrNotFound)
	}
	courses := []school.Course{row.course()}
	if err := attachStudents(ctx, exec, courses); err != nil {
		return school.Course{}, err
	}
	return courses[0], nil
}

func setStudents(ctx context.Context, exec core.DBExecutor, courseID int, studentIDs []int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM course_students WHERE course_id = $1`, courseID); err != nil {
		return errors.Wrap(err, "clearing course students")
	}
	// one insert per student keeps created_at increasing with the enrollment order
	for _, id := range studentIDs {
		q := `INSERT INTO course_students (course_id, student_id, created_at) VALUES ($1, $2, $3)`
		if _, err := exec.ExecContext(ctx, q, courseID, id, time.Now().UTC()); err != nil {
			return errors.Wrap(err, "inserting course student")
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c school.Course) (school.Course, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return school.Course{}, errors.Wrap(err, "beginning transaction")
	}
	defer rollback(tx)

	secondDay, secondSlot, teacherID, roomID := nullable(c)
	q := `INSERT INTO courses (name, type, specialization, level, frequency, day, slot, second_day, second_slot,
			teacher_id, room_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	err = tx.GetContext(ctx, &c.ID, q,
		c.Name, string(c.Type), string(c.Specialization), string(c.Level), string(c.Frequency),
		string(c.Day), string(c.Slot), secondDay, secondSlot, teacherID, roomID,
		c.Active, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	if err != nil {
		return school.Course{}, errors.Wrap(err, "inserting course")
	}
	if err = setStudents(ctx, tx, c.ID, c.StudentIDs()); err != nil {
		return school.Course{}, err
	}
	if err = tx.Commit(); err != nil {
		return school.Course{}, errors.Wrap(err, "committing transaction")
	}
	return getCourse(ctx, repo.db, c.ID)
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int) (school.Course, error) {
	return getCourse(ctx, repo.db, id)
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter, ordering []core.DBOrdering) ([]school.Course, error) {
	var w where
	if filter.Active != nil {
		w.add(`c.active = ?`, *filter.Active)
	}
	if filter.Type != "" {
		w.add(`c.type = ?`, string(filter.Type))
	}
	if filter.TeacherID != 0 {
		w.add(`c.teacher_id = ?`, filter.TeacherID)
	}
	if filter.Level != "" {
		w.add(`c.level = ?`, string(filter.Level))
	}
	if filter.Search != "" {
		w.add(`LOWER(c.name) LIKE ?`, likePattern(filter.Search))
	}

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, courseSelect+w.String()+orderBy(ordering, "c."), w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	courses := make([]school.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.course())
	}
	if err := attachStudents(ctx, repo.db, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c school.Course) (school.Course, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return school.Course{}, errors.Wrap(err, "beginning transaction")
	}
	defer rollback(tx)

	secondDay, secondSlot, teacherID, roomID := nullable(c)
	q := `UPDATE courses SET name = $2, type = $3, specialization = $4, level = $5, frequency = $6,
			day = $7, slot = $8, second_day = $9, second_slot = $10, teacher_id = $11, room_id = $12, updated_at = $13
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, q,
		c.ID, c.Name, string(c.Type), string(c.Specialization), string(c.Level), string(c.Frequency),
		string(c.Day), string(c.Slot), secondDay, secondSlot, teacherID, roomID, c.UpdatedAt.UTC(),
	)
	if err != nil {
		return school.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Course{}, course.ErrNotFound
	}
	if err = setStudents(ctx, tx, c.ID, c.StudentIDs()); err != nil {
		return school.Course{}, err
	}
	if err = tx.Commit(); err != nil {
		return school.Course{}, errors.Wrap(err, "committing transaction")
	}
	return getCourse(ctx, repo.db, c.ID)
}

func (repo *courseRepository) SetCourseActive(ctx context.Context, id int, active bool) (school.Course, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE courses SET active = $2, updated_at = $3 WHERE id = $1`,
		id, active, time.Now().UTC())
	if err != nil {
		return school.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Course{}, course.ErrNotFound
	}
	return getCourse(ctx, repo.db, id)
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrNotFound
	}
	return nil
}

// AddStudent locks the course row so that concurrent enrollments see each other's count.
func (repo *courseRepository) AddStudent(ctx context.Context, courseID, studentID, limit int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer rollback(tx)

	var id int
	if err = tx.GetContext(ctx, &id, `SELECT id FROM courses WHERE id = $1 FOR UPDATE`, courseID); err != nil {
		return trapNoRowsErr(err, course.ErrNotFound)
	}

	var enrolled bool
	q := `SELECT EXISTS (SELECT 1 FROM course_students WHERE course_id = $1 AND student_id = $2)`
	if err = tx.GetContext(ctx, &enrolled, q, courseID, studentID); err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	if enrolled {
		return nil
	}

	if limit > 0 {
		var n int
		if err = tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM course_students WHERE course_id = $1`, courseID); err != nil {
			return errors.Wrap(err, "counting course students")
		}
		if n >= limit {
			return course.ErrCourseFull
		}
	}

	now := time.Now().UTC()
	q = `INSERT INTO course_students (course_id, student_id, created_at) VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, q, courseID, studentID, now); err != nil {
		return errors.Wrap(err, "inserting course student")
	}
	if _, err = tx.ExecContext(ctx, `UPDATE courses SET updated_at = $2 WHERE id = $1`, courseID, now); err != nil {
		return errors.Wrap(err, "updating course")
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *courseRepository) RemoveStudent(ctx context.Context, courseID, studentID int) error {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, courseID); err != nil {
		return errors.Wrap(err, "checking course")
	}
	if !exists {
		return course.ErrNotFound
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM course_students WHERE course_id = $1 AND student_id = $2`, courseID, studentID)
	if err != nil {
		return errors.Wrap(err, "deleting course student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrNotEnrolled
	}
	return nil
}
