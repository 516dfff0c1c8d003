package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"quiz-kingdom/internal/domain"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// LeaderboardRepository persists solo-play results.
type LeaderboardRepository interface {
	Append(ctx context.Context, entry domain.LeaderboardEntry) error
	// Top returns at most limit entries, best first.
	Top(ctx context.Context, category string, limit int) ([]domain.LeaderboardEntry, error)
}

// LeaderboardService records and ranks solo-play scores.
type LeaderboardService struct {
	entries LeaderboardRepository
	now     func() time.Time
	logger  *slog.Logger
}

func NewLeaderboardService(entries LeaderboardRepository, now func() time.Time, logger *slog.Logger) *LeaderboardService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardService{entries: entries, now: now, logger: logger}
}

// Submit stores a finished solo run and returns it with its id and timestamp set.
func (s *LeaderboardService) Submit(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	entry.Nickname = strings.TrimSpace(entry.Nickname)
	entry.Category = strings.TrimSpace(entry.Category)
	if err := entry.Validate(); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	entry.ID = uuid.NewString()
	entry.Timestamp = s.now()
	if err := s.entries.Append(ctx, entry); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	s.logger.Info("leaderboard entry recorded", "nickname", entry.Nickname, "score", entry.Score, "category", entry.Category)
	return entry, nil
}

// Top returns the best entries, optionally filtered by category.
// A non-positive limit means the default; larger ones are capped.
func (s *LeaderboardService) Top(ctx context.Context, category string, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	return s.entries.Top(ctx, strings.TrimSpace(category), limit)
}
