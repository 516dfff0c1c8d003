package memory

import (
	"context"
	"sync"

	"quiz-kingdom/internal/domain"
)

// LeaderboardRepository keeps solo-play entries in process memory.
type LeaderboardRepository struct {
	mu      sync.RWMutex
	entries []domain.LeaderboardEntry
}

func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{}
}

func (r *LeaderboardRepository) Append(_ context.Context, entry domain.LeaderboardEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *LeaderboardRepository) Top(_ context.Context, category string, limit int) ([]domain.LeaderboardEntry, error) {
	r.mu.RLock()
	matched := make([]domain.LeaderboardEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if category == "" || e.Category == category {
			matched = append(matched, e)
		}
	}
	r.mu.RUnlock()

	domain.SortLeaderboard(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
