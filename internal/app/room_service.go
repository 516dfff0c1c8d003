package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"quiz-kingdom/internal/csvimport"
	"quiz-kingdom/internal/domain"
)

// RoomRegistry abstracts how live rooms are tracked (in-memory, Redis, etc).
type RoomRegistry interface {
	// Exists is the point read used for room-code collision checks.
	Exists(ctx context.Context, code string) (bool, error)
	// Register fails with domain.ErrRoomExists if the code was taken meanwhile.
	Register(ctx context.Context, room *Room) error
	Get(code string) (*Room, bool)
	Remove(ctx context.Context, code string)
	Rooms() []*Room
	// Touch records the latest snapshot of a room.
	Touch(ctx context.Context, snap domain.RoomSnapshot)
}

// QuestionBank loads categorized questions (from cache/backing store).
type QuestionBank interface {
	Category(ctx context.Context, category string) ([]domain.Question, error)
}

// RoomService contains the room lifecycle, question set and answer use cases.
type RoomService struct {
	rooms       RoomRegistry
	bank        QuestionBank
	logger      *slog.Logger
	now         func() time.Time
	timer       TimerFunc
	newCode     func() string
	idleTimeout time.Duration
}

// Option configures a RoomService.
type Option func(*RoomService)

// WithClock replaces time.Now, mostly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *RoomService) { s.now = now }
}

// WithTimer replaces the question countdown timer.
func WithTimer(timer TimerFunc) Option {
	return func(s *RoomService) { s.timer = timer }
}

// WithCodeGenerator replaces the random room code generator.
func WithCodeGenerator(gen func() string) Option {
	return func(s *RoomService) { s.newCode = gen }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *RoomService) { s.logger = logger }
}

// WithIdleTimeout sets how long a room may sit idle before ReapIdle removes it.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *RoomService) { s.idleTimeout = d }
}

func NewRoomService(rooms RoomRegistry, bank QuestionBank, opts ...Option) *RoomService {
	s := &RoomService{
		rooms:       rooms,
		bank:        bank,
		logger:      slog.Default(),
		now:         time.Now,
		timer:       realTimer,
		newCode:     GenerateCode,
		idleTimeout: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeCode makes user-typed room codes comparable.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom registers a new room under a fresh code owned by hostID.
func (s *RoomService) CreateRoom(ctx context.Context, hostID string, cfg domain.RoomConfig) (domain.RoomSnapshot, error) {
	if hostID == "" {
		return domain.RoomSnapshot{}, domain.ErrMissingIdentity
	}
	cfg.HostName = strings.TrimSpace(cfg.HostName)
	if cfg.HostParticipates {
		if err := domain.ValidateName(cfg.HostName); err != nil {
			return domain.RoomSnapshot{}, err
		}
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.ModeCustom
	}

	var seed []domain.Question
	switch cfg.Mode {
	case domain.ModeCustom:
	case domain.ModeStandard:
		var err error
		if seed, err = s.bankQuestions(ctx, cfg.Category, cfg.QuestionCount); err != nil {
			return domain.RoomSnapshot{}, err
		}
	default:
		return domain.RoomSnapshot{}, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidRoomConfig, cfg.Mode)
	}

	room, err := s.registerRoom(ctx, hostID, cfg)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	snap, err := s.setupRoom(ctx, room, hostID, cfg, seed)
	if err != nil {
		// the room never reached its host; do not leave it registered
		s.remove(context.WithoutCancel(ctx), room)
		return domain.RoomSnapshot{}, err
	}
	s.logger.Info("room created", "room", room.Code(), "host", hostID, "mode", cfg.Mode)
	return snap, nil
}

func (s *RoomService) setupRoom(ctx context.Context, room *Room, hostID string, cfg domain.RoomConfig, seed []domain.Question) (domain.RoomSnapshot, error) {
	if cfg.HostParticipates {
		if _, err := room.join(ctx, hostID, cfg.HostName, cfg.HostIconURL); err != nil {
			return domain.RoomSnapshot{}, err
		}
	}
	if len(seed) > 0 {
		if _, err := room.addQuestions(ctx, hostID, seed); err != nil {
			return domain.RoomSnapshot{}, fmt.Errorf("seed %q questions: %w", cfg.Category, err)
		}
	}
	return room.viewFor(ctx, hostID)
}

// registerRoom keeps drawing codes until one is free. Collisions are retried
// without an attempt cap; the code space is far larger than the live room count.
func (s *RoomService) registerRoom(ctx context.Context, hostID string, cfg domain.RoomConfig) (*Room, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		code := NormalizeCode(s.newCode())
		exists, err := s.rooms.Exists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check room code: %w", err)
		}
		if exists {
			s.logger.Debug("room code collision", "room", code)
			continue
		}

		room := newRoom(domain.Room{
			Code:                 code,
			HostID:               hostID,
			Status:               domain.StatusWaiting,
			Phase:                domain.PhaseWaiting,
			CurrentQuestionIndex: -1,
			HostParticipates:     cfg.HostParticipates,
			Mode:                 cfg.Mode,
			Category:             cfg.Category,
			CreatedAt:            s.now(),
		}, roomOptions{
			now:      s.now,
			timer:    s.timer,
			logger:   s.logger,
			onChange: s.touch,
		})
		if err := s.rooms.Register(ctx, room); err != nil {
			room.stop()
			if errors.Is(err, domain.ErrRoomExists) {
				continue
			}
			return nil, fmt.Errorf("register room: %w", err)
		}
		return room, nil
	}
}

func (s *RoomService) touch(snap domain.RoomSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.rooms.Touch(ctx, snap)
}

func (s *RoomService) bankQuestions(ctx context.Context, category string, count int) ([]domain.Question, error) {
	if s.bank == nil || strings.TrimSpace(category) == "" {
		return nil, domain.ErrCategoryNotFound
	}
	questions, err := s.bank.Category(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrCategoryNotFound
	}
	if count > 0 && count < len(questions) {
		questions = questions[:count]
	}
	return questions, nil
}

func (s *RoomService) room(code string) (*Room, error) {
	room, ok := s.rooms.Get(NormalizeCode(code))
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// Room returns the current snapshot of a room.
func (s *RoomService) Room(ctx context.Context, code string) (domain.RoomSnapshot, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return room.Snapshot(ctx)
}

// RoomFor returns the room snapshot as seen by userID: the caller's public
// player id and whether they host the room are filled in.
func (s *RoomService) RoomFor(ctx context.Context, code, userID string) (domain.RoomSnapshot, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return room.viewFor(ctx, userID)
}

// Join registers a new player in a waiting room or refreshes a returning one.
func (s *RoomService) Join(ctx context.Context, code, playerID, name, iconURL string) (domain.RoomSnapshot, error) {
	if playerID == "" {
		return domain.RoomSnapshot{}, domain.ErrMissingIdentity
	}
	name = strings.TrimSpace(name)
	if err := domain.ValidateName(name); err != nil {
		return domain.RoomSnapshot{}, err
	}
	room, err := s.room(code)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return room.join(ctx, playerID, name, strings.TrimSpace(iconURL))
}

// StartGame moves a waiting room to its first question.
func (s *RoomService) StartGame(ctx context.Context, code, hostID string) (domain.RoomSnapshot, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return room.start(ctx, hostID)
}

// AdvancePhase steps the room state machine: question -> result -> next question or finished.
func (s *RoomService) AdvancePhase(ctx context.Context, code, hostID string) (domain.RoomSnapshot, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return room.advancePhase(ctx, hostID)
}

// CloseQuestion ends the current question before its timer runs out.
// Closing an already closed question is a no-op.
func (s *RoomService) CloseQuestion(ctx context.Context, code, hostID string) (domain.RoomSnapshot, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return room.forceClose(ctx, hostID)
}

// ResetGame zeroes every player and returns the room to waiting.
func (s *RoomService) ResetGame(ctx context.Context, code, hostID string) (domain.RoomSnapshot, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return room.reset(ctx, hostID)
}

// DeleteRoom stops the room for good. Subscribers get a final snapshot marked deleted.
func (s *RoomService) DeleteRoom(ctx context.Context, code, hostID string, confirm bool) error {
	if !confirm {
		return domain.ErrConfirmationRequired
	}
	room, err := s.room(code)
	if err != nil {
		return err
	}
	if err := room.do(ctx, func() (bool, error) { return false, room.isHost(hostID) }); err != nil {
		return err
	}
	s.remove(ctx, room)
	s.logger.Info("room deleted", "room", room.Code())
	return nil
}

func (s *RoomService) remove(ctx context.Context, room *Room) {
	room.stop()
	s.rooms.Remove(ctx, room.Code())
}

// SubmitAnswer scores a player's choice for the active question.
func (s *RoomService) SubmitAnswer(ctx context.Context, code, playerID, questionID string, choice int) (domain.AnswerResult, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return room.submitAnswer(ctx, playerID, questionID, choice)
}

// Results returns the final ranking of a finished room.
func (s *RoomService) Results(ctx context.Context, code string) ([]domain.RankedPlayer, error) {
	room, err := s.room(code)
	if err != nil {
		return nil, err
	}
	return room.results(ctx)
}

// Subscribe returns a channel that receives room snapshots.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *RoomService) Subscribe(ctx context.Context, code string) (<-chan domain.RoomSnapshot, func(), error) {
	room, err := s.room(code)
	if err != nil {
		return nil, nil, err
	}
	return room.subscribe(ctx)
}

// ListQuestions returns the room's question set in creation order, answers included.
func (s *RoomService) ListQuestions(ctx context.Context, code, hostID string) ([]domain.Question, error) {
	room, err := s.room(code)
	if err != nil {
		return nil, err
	}
	return room.listQuestions(ctx, hostID)
}

// AddQuestion appends a validated question to a waiting room.
func (s *RoomService) AddQuestion(ctx context.Context, code, hostID string, q domain.Question) (domain.Question, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.Question{}, err
	}
	added, err := room.addQuestions(ctx, hostID, []domain.Question{q})
	if err != nil {
		return domain.Question{}, err
	}
	return added[0], nil
}

// ImportQuestions appends every question of a CSV sheet, or none of them.
func (s *RoomService) ImportQuestions(ctx context.Context, code, hostID string, sheet io.Reader) ([]domain.Question, error) {
	room, err := s.room(code)
	if err != nil {
		return nil, err
	}
	questions, err := csvimport.Parse(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuestion, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: sheet has no questions", domain.ErrInvalidQuestion)
	}
	return room.addQuestions(ctx, hostID, questions)
}

// UpdateQuestion patches a question of a waiting room.
func (s *RoomService) UpdateQuestion(ctx context.Context, code, hostID, questionID string, patch domain.QuestionPatch) (domain.Question, error) {
	room, err := s.room(code)
	if err != nil {
		return domain.Question{}, err
	}
	return room.updateQuestion(ctx, hostID, questionID, patch)
}

// DeleteQuestion removes a question from a waiting room.
func (s *RoomService) DeleteQuestion(ctx context.Context, code, hostID, questionID string) error {
	room, err := s.room(code)
	if err != nil {
		return err
	}
	return room.deleteQuestion(ctx, hostID, questionID)
}

// ReapIdle removes rooms that have not executed a command within the idle timeout.
func (s *RoomService) ReapIdle(ctx context.Context, now time.Time) int {
	if s.idleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-s.idleTimeout)
	reaped := 0
	for _, room := range s.rooms.Rooms() {
		if room.LastActive().Before(cutoff) {
			s.remove(ctx, room)
			s.logger.Info("idle room reaped", "room", room.Code())
			reaped++
		}
	}
	return reaped
}

// RunReaper calls ReapIdle every half idle timeout until ctx is done.
func (s *RoomService) RunReaper(ctx context.Context) {
	if s.idleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(s.idleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ReapIdle(ctx, s.now())
		}
	}
}
