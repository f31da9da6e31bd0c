package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/thinkwise/core/room"
	"github.com/trezcool/thinkwise/core/school"
)

type roomRepository struct {
	db *DB
}

var _ room.Repository = (*roomRepository)(nil) // interface compliance check

func NewRoomRepository(db *DB) room.Repository {
	return &roomRepository{db: db}
}

// nameTaken must be called with the lock held.
func (repo *roomRepository) nameTaken(name string, excludedID int) bool {
	for _, r := range repo.db.rooms {
		if r.ID != excludedID && strings.EqualFold(r.Name, name) {
			return true
		}
	}
	return false
}

func (repo *roomRepository) CreateRoom(_ context.Context, r school.Room) (school.Room, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.nameTaken(r.Name, 0) {
		return school.Room{}, room.ErrNameExists
	}
	r.ID = repo.db.nextID("room")
	repo.db.rooms[r.ID] = &r
	return r, nil
}

func (repo *roomRepository) GetRoom(_ context.Context, id int) (school.Room, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.rooms[id]; ok {
		return *r, nil
	}
	return school.Room{}, room.ErrNotFound
}

func (repo *roomRepository) QueryRooms(_ context.Context) ([]school.Room, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rooms := make([]school.Room, 0, len(repo.db.rooms))
	for _, r := range repo.db.rooms {
		rooms = append(rooms, *r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (repo *roomRepository) UpdateRoom(_ context.Context, r school.Room) (school.Room, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rooms[r.ID]; !ok {
		return school.Room{}, room.ErrNotFound
	}
	if repo.nameTaken(r.Name, r.ID) {
		return school.Room{}, room.ErrNameExists
	}
	repo.db.rooms[r.ID] = &r
	return r, nil
}

func (repo *roomRepository) DeleteRoom(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rooms[id]; !ok {
		return room.ErrNotFound
	}
	delete(repo.db.rooms, id)
	for _, rec := range repo.db.courses {
		if rec.roomID == id {
			rec.roomID = 0
		}
	}
	return nil
}

func (repo *roomRepository) MaxGroupEnrollment(_ context.Context, roomID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var max int
	for _, rec := range repo.db.courses {
		if rec.roomID != roomID || !rec.course.Active || rec.course.Type != school.Group {
			continue
		}
		if n := len(rec.studentIDs); n > max {
			max = n
		}
	}
	return max, nil
}
