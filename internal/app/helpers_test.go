package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"quiz-kingdom/internal/app"
	"quiz-kingdom/internal/domain"
	"quiz-kingdom/internal/infra/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// manualTimer hands out countdowns that only fire when the test says so.
type manualTimer struct {
	mu      sync.Mutex
	armed   []time.Duration
	current chan time.Time
}

func (m *manualTimer) Start(d time.Duration) (<-chan time.Time, func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan time.Time, 1)
	m.armed = append(m.armed, d)
	m.current = ch
	return ch, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.current == ch {
			m.current = nil
		}
		return true
	}
}

func (m *manualTimer) Fire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return false
	}
	m.current <- time.Now()
	m.current = nil
	return true
}

func (m *manualTimer) Armed() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.armed...)
}

type harness struct {
	service  *app.RoomService
	registry *memory.RoomRegistry
	clock    *fakeClock
	timer    *manualTimer
}

func newHarness(t *testing.T, opts ...app.Option) *harness {
	t.Helper()
	h := &harness{
		registry: memory.NewRoomRegistry(),
		clock:    newFakeClock(),
		timer:    &manualTimer{},
	}
	bank := memory.NewQuestionBank(memory.NewStaticBankLoader(memory.SampleBank()), time.Minute)
	base := []app.Option{app.WithClock(h.clock.Now), app.WithTimer(h.timer.Start)}
	h.service = app.NewRoomService(h.registry, bank, append(base, opts...)...)
	return h
}

// newRoomWithQuestions creates a host-only room with n two-choice questions
// whose correct answer is always choice 1.
func (h *harness) newRoomWithQuestions(t *testing.T, n int) string {
	t.Helper()
	ctx := context.Background()
	snap, err := h.service.CreateRoom(ctx, "host", domain.RoomConfig{})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	for i := 0; i < n; i++ {
		_, err := h.service.AddQuestion(ctx, snap.Code, "host", domain.Question{
			Text:          "Which is right?",
			Choices:       []string{"wrong", "right"},
			CorrectAnswer: 1,
			Points:        domain.DefaultPoints,
		})
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
	}
	return snap.Code
}

func (h *harness) join(t *testing.T, code string, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, err := h.service.Join(context.Background(), code, id, "Player "+id, ""); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
}

// waitFor reads snapshots until one matches or the deadline passes.
func waitFor(t *testing.T, ch <-chan domain.RoomSnapshot, match func(domain.RoomSnapshot) bool) domain.RoomSnapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				t.Fatalf("subscription closed before expected snapshot")
			}
			if match(snap) {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot")
		}
	}
}
