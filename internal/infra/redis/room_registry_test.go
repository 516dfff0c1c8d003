package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"quiz-kingdom/internal/app"
	"quiz-kingdom/internal/domain"
)

func TestRoomRegistrySetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	registry := NewRoomRegistry(newClient(mr), time.Hour)
	service := app.NewRoomService(registry, nil, app.WithCodeGenerator(func() string { return "DRAG0N" }))

	snap, err := service.CreateRoom(ctx, "host", domain.RoomConfig{})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if !mr.Exists("quizkingdom:room:DRAG0N") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("quizkingdom:room:DRAG0N"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	if _, err := service.Join(ctx, snap.Code, "u1", "Alice", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	stored, err := registry.Snapshot(ctx, snap.Code)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if stored.Code != "DRAG0N" || len(stored.Players) != 1 || stored.Players[0].Name != "Alice" {
		t.Fatalf("unexpected stored snapshot: %+v", stored)
	}

	if err := service.DeleteRoom(ctx, snap.Code, "host", true); err != nil {
		t.Fatalf("delete room: %v", err)
	}
	if mr.Exists("quizkingdom:room:DRAG0N") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := registry.Snapshot(ctx, snap.Code); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected missing snapshot, got %v", err)
	}
}

func TestRoomRegistrySeesCodesOfOtherInstances(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	// another instance already owns AAAAAA
	if err := mr.Set("quizkingdom:room:AAAAAA", "{}"); err != nil {
		t.Fatalf("seed key: %v", err)
	}

	codes := []string{"AAAAAA", "BBBBBB"}
	next := 0
	registry := NewRoomRegistry(newClient(mr), time.Hour)
	service := app.NewRoomService(registry, nil, app.WithCodeGenerator(func() string {
		code := codes[next]
		next++
		return code
	}))

	snap, err := service.CreateRoom(context.Background(), "host", domain.RoomConfig{})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if snap.Code != "BBBBBB" {
		t.Fatalf("expected collision to be skipped, got %s", snap.Code)
	}
}
