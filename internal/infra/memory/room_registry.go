package memory

import (
	"context"
	"sync"

	"quiz-kingdom/internal/app"
	"quiz-kingdom/internal/domain"
)

// RoomRegistry is an in-memory implementation of app.RoomRegistry.
type RoomRegistry struct {
	mu        sync.RWMutex
	rooms     map[string]*app.Room
	snapshots map[string]domain.RoomSnapshot
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:     make(map[string]*app.Room),
		snapshots: make(map[string]domain.RoomSnapshot),
	}
}

func (r *RoomRegistry) Exists(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[code]
	return ok, nil
}

func (r *RoomRegistry) Register(_ context.Context, room *app.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.Code()]; ok {
		return domain.ErrRoomExists
	}
	r.rooms[room.Code()] = room
	return nil
}

func (r *RoomRegistry) Get(code string) (*app.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

func (r *RoomRegistry) Remove(_ context.Context, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
	delete(r.snapshots, code)
}

func (r *RoomRegistry) Rooms() []*app.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*app.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (r *RoomRegistry) Touch(_ context.Context, snap domain.RoomSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[snap.Code]; !ok {
		return
	}
	r.snapshots[snap.Code] = snap
}

// LastSnapshot returns the most recent snapshot a room published.
func (r *RoomRegistry) LastSnapshot(code string) (domain.RoomSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snapshots[code]
	return snap, ok
}
