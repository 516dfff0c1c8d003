package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-kingdom/internal/app"
	"quiz-kingdom/internal/domain"
)

// RoomRegistry is a Redis-aware implementation of app.RoomRegistry.
// Notes:
//   - Room actors live in this process; the local map is what routes commands.
//   - Redis holds one key per live code so collision checks see rooms of
//     other instances too. The value is the room's latest snapshot document.
//   - Keys carry a TTL that is refreshed on every snapshot, so codes of
//     crashed instances free themselves.
type RoomRegistry struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	rooms  map[string]*app.Room
}

func NewRoomRegistry(client *redis.Client, ttl time.Duration) *RoomRegistry {
	return &RoomRegistry{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
	}
}

func (r *RoomRegistry) Exists(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	_, ok := r.rooms[code]
	r.mu.RUnlock()
	if ok {
		return true, nil
	}
	n, err := r.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Register claims the code with SETNX so two instances cannot take the same one.
func (r *RoomRegistry) Register(ctx context.Context, room *app.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.Code()]; ok {
		return domain.ErrRoomExists
	}
	claimed, err := r.client.SetNX(ctx, roomKey(room.Code()), "{}", r.ttl).Result()
	if err != nil {
		return err
	}
	if !claimed {
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

func (r *RoomRegistry) Remove(ctx context.Context, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
	// best-effort; the TTL cleans up if this fails
	_ = r.client.Del(ctx, roomKey(code)).Err()
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

// Touch stores the snapshot document and refreshes the key's TTL.
func (r *RoomRegistry) Touch(ctx context.Context, snap domain.RoomSnapshot) {
	r.mu.RLock()
	_, ok := r.rooms[snap.Code]
	r.mu.RUnlock()
	if !ok {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, roomKey(snap.Code), raw, r.ttl).Err()
}

// Snapshot reads a room's stored document, whichever instance owns it.
func (r *RoomRegistry) Snapshot(ctx context.Context, code string) (domain.RoomSnapshot, error) {
	raw, err := r.client.Get(ctx, roomKey(code)).Bytes()
	if err == redis.Nil {
		return domain.RoomSnapshot{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	var snap domain.RoomSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.RoomSnapshot{}, err
	}
	return snap, nil
}

func roomKey(code string) string {
	return "quizkingdom:room:" + code
}
