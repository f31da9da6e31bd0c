package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/school"
)

const roomColumns = `id, name, capacity, created_at, updated_at`

type roomRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Capacity  int       `db:"capacity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row roomRow) room() school.Room {
	return school.Room{
		ID:        row.ID,
		Name:      row.Name,
		Capacity:  row.Capacity,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type roomRepository struct {
	db core.DB
}

var _ room.Repository = (*roomRepository)(nil) // interface compliance check

func NewRoomRepository(db core.DB) room.Repository {
	return &roomRepository{db: db}
}

func (repo *roomRepository) CreateRoom(ctx context.Context, r school.Room) (school.Room, error) {
	q := `INSERT INTO rooms (name, capacity, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.GetContext(ctx, &r.ID, q, r.Name, r.Capacity, r.CreatedAt.UTC(), r.UpdatedAt.UTC()); err != nil {
		if isUniqueViolation(err) {
			return school.Room{}, room.ErrNameExists
		}
		return school.Room{}, errors.Wrap(err, "inserting room")
	}
	return r, nil
}

func (repo *roomRepository) GetRoom(ctx context.Context, id int) (school.Room, error) {
	var row roomRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id); err != nil {
		return school.Room{}, trapNoRowsErr(err, room.ErrNotFound)
	}
	return row.room(), nil
}

func (repo *roomRepository) QueryRooms(ctx context.Context) ([]school.Room, error) {
	var rows []roomRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+roomColumns+` FROM rooms ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "selecting rooms")
	}
	rooms := make([]school.Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, row.room())
	}
	return rooms, nil
}

func (repo *roomRepository) UpdateRoom(ctx context.Context, r school.Room) (school.Room, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE rooms SET name = $2, capacity = $3, updated_at = $4 WHERE id = $1`,
		r.ID, r.Name, r.Capacity, r.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return school.Room{}, room.ErrNameExists
		}
		return school.Room{}, errors.Wrap(err, "updating room")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Room{}, room.ErrNotFound
	}
	return r, nil
}

func (repo *roomRepository) DeleteRoom(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting room")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return room.ErrNotFound
	}
	return nil
}

func (repo *roomRepository) MaxGroupEnrollment(ctx context.Context, roomID int) (int, error) {
	q := `SELECT COALESCE(MAX(n), 0) FROM (
			SELECT COUNT(cs.student_id) AS n
			FROM courses c LEFT JOIN course_students cs ON cs.course_id = c.id
			WHERE c.room_id = $1 AND c.active AND c.type = $2
			GROUP BY c.id
		) counts`
	var n int
	err := repo.db.GetContext(ctx, &n, q, roomID, string(school.Group))
	return n, errors.Wrap(err, "counting room enrollment")
}
