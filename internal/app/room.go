package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"quiz-kingdom/internal/domain"
)

// TimerFunc starts a countdown and returns its channel plus a stop function.
// It exists so tests can fire question expiry by hand.
type TimerFunc func(d time.Duration) (<-chan time.Time, func() bool)

func realTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

type roomCommand struct {
	apply func() (bool, error)
	done  chan error
}

// Room is the single authority over one quiz room. All state below the
// channel fields is owned by the run goroutine and only touched from
// commands it executes.
type Room struct {
	code     string
	now      func() time.Time
	timer    TimerFunc
	logger   *slog.Logger
	onChange func(domain.RoomSnapshot)

	cmds       chan roomCommand
	quit       chan struct{}
	quitOnce   sync.Once
	stopped    chan struct{}
	lastActive atomic.Int64

	state       domain.Room
	questions   []domain.Question
	players     map[string]*domain.Player
	subscribers map[chan domain.RoomSnapshot]struct{}
	expiry      <-chan time.Time
	stopExpiry  func() bool
}

type roomOptions struct {
	now      func() time.Time
	timer    TimerFunc
	logger   *slog.Logger
	onChange func(domain.RoomSnapshot)
}

func newRoom(state domain.Room, opts roomOptions) *Room {
	r := &Room{
		code:        state.Code,
		now:         opts.now,
		timer:       opts.timer,
		logger:      opts.logger.With("room", state.Code),
		onChange:    opts.onChange,
		cmds:        make(chan roomCommand),
		quit:        make(chan struct{}),
		stopped:     make(chan struct{}),
		state:       state,
		players:     make(map[string]*domain.Player),
		subscribers: make(map[chan domain.RoomSnapshot]struct{}),
	}
	r.touch()
	go r.run()
	return r
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// LastActive reports when the room last executed a command.
func (r *Room) LastActive() time.Time {
	return time.Unix(0, r.lastActive.Load())
}

func (r *Room) touch() {
	r.lastActive.Store(r.now().UnixNano())
}

func (r *Room) run() {
	defer close(r.stopped)
	for {
		select {
		case cmd := <-r.cmds:
			r.touch()
			changed, err := cmd.apply()
			if err == nil && changed {
				r.publish()
			}
			cmd.done <- err
		case <-r.expiry:
			r.expiry = nil
			r.stopExpiry = nil
			if r.closeQuestion() {
				r.logger.Info("question timed out", "index", r.state.CurrentQuestionIndex)
				r.publish()
			}
		case <-r.quit:
			r.shutdown()
			return
		}
	}
}

// do runs fn on the room goroutine and waits for its result.
func (r *Room) do(ctx context.Context, fn func() (bool, error)) error {
	cmd := roomCommand{apply: fn, done: make(chan error, 1)}
	select {
	case r.cmds <- cmd:
	case <-r.stopped:
		return domain.ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) stop() {
	r.quitOnce.Do(func() { close(r.quit) })
	<-r.stopped
}

func (r *Room) shutdown() {
	r.disarm()
	final := r.snapshot()
	final.Deleted = true
	for ch := range r.subscribers {
		deliver(ch, final)
		close(ch)
		delete(r.subscribers, ch)
	}
}

func (r *Room) arm(limitSeconds int) {
	r.disarm()
	r.expiry, r.stopExpiry = r.timer(time.Duration(limitSeconds) * time.Second)
}

func (r *Room) disarm() {
	if r.stopExpiry != nil {
		r.stopExpiry()
	}
	r.expiry = nil
	r.stopExpiry = nil
}

func (r *Room) isHost(userID string) error {
	if userID == "" || userID != r.state.HostID {
		return domain.ErrNotHost
	}
	return nil
}

func (r *Room) currentQuestion() (domain.Question, bool) {
	idx := r.state.CurrentQuestionIndex
	if idx < 0 || idx >= len(r.questions) {
		return domain.Question{}, false
	}
	return r.questions[idx], true
}

// beginQuestion moves to question idx and starts its countdown.
func (r *Room) beginQuestion(idx int) {
	r.state.Status = domain.StatusPlaying
	r.state.Phase = domain.PhaseQuestion
	r.state.CurrentQuestionIndex = idx
	r.state.StartTime = r.now()
	r.arm(r.questions[idx].TimeLimit)
}

// closeQuestion performs question -> result. It reports false when the room
// was not in the question phase, which makes repeated closes harmless.
func (r *Room) closeQuestion() bool {
	if r.state.Phase != domain.PhaseQuestion {
		return false
	}
	r.disarm()
	r.state.Phase = domain.PhaseResult
	return true
}

func (r *Room) advance() error {
	switch r.state.Phase {
	case domain.PhaseQuestion:
		r.closeQuestion()
		return nil
	case domain.PhaseResult:
		next := r.state.CurrentQuestionIndex + 1
		if next < len(r.questions) {
			r.beginQuestion(next)
			return nil
		}
		r.disarm()
		r.state.Status = domain.StatusFinished
		r.state.Phase = domain.PhaseFinished
		return nil
	default:
		return domain.ErrInvalidTransition
	}
}

func (r *Room) resetProgress() {
	r.disarm()
	r.state.Status = domain.StatusWaiting
	r.state.Phase = domain.PhaseWaiting
	r.state.CurrentQuestionIndex = -1
	r.state.StartTime = time.Time{}
	for _, p := range r.players {
		p.Reset()
	}
}

func (r *Room) playerList() []*domain.Player {
	list := make([]*domain.Player, 0, len(r.players))
	for _, p := range r.players {
		list = append(list, p)
	}
	return list
}

func (r *Room) snapshot() domain.RoomSnapshot {
	snap := domain.RoomSnapshot{
		Room:          r.state,
		QuestionCount: len(r.questions),
		Players:       domain.Rank(r.playerList()),
		UpdatedAt:     r.now(),
	}
	snap.HostID = ""

	q, ok := r.currentQuestion()
	if ok && r.state.Status != domain.StatusWaiting {
		view := &domain.QuestionView{
			ID:        q.ID,
			Text:      q.Text,
			Choices:   append([]string(nil), q.Choices...),
			TimeLimit: q.TimeLimit,
			Points:    q.Points,
			ImageURL:  q.ImageURL,
		}
		if r.state.Phase != domain.PhaseQuestion {
			correct := q.CorrectAnswer
			view.CorrectAnswer = &correct
		} else {
			deadline := r.state.StartTime.Add(time.Duration(q.TimeLimit) * time.Second)
			snap.Deadline = &deadline
		}
		snap.CurrentQuestion = view
		answered := make(map[string]bool, len(r.players))
		for _, p := range r.players {
			answered[p.PublicID] = p.Answered(q.ID)
		}
		for i := range snap.Players {
			snap.Players[i].Answered = answered[snap.Players[i].ID]
		}
	}
	return snap
}

func (r *Room) publish() {
	snap := r.snapshot()
	for ch := range r.subscribers {
		deliver(ch, snap)
	}
	if r.onChange != nil {
		r.onChange(snap)
	}
}

// deliver never blocks: when a subscriber is behind, its oldest pending
// snapshot is replaced by the newest one.
func deliver(ch chan domain.RoomSnapshot, snap domain.RoomSnapshot) {
	select {
	case ch <- snap:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (r *Room) subscribe(ctx context.Context) (<-chan domain.RoomSnapshot, func(), error) {
	ch := make(chan domain.RoomSnapshot, 8)
	err := r.do(ctx, func() (bool, error) {
		r.subscribers[ch] = struct{}{}
		ch <- r.snapshot()
		return false, nil
	})
	if err != nil {
		return nil, nil, err
	}
	cancel := func() {
		_ = r.do(context.Background(), func() (bool, error) {
			if _, ok := r.subscribers[ch]; ok {
				delete(r.subscribers, ch)
				close(ch)
			}
			return false, nil
		})
	}
	return ch, cancel, nil
}
