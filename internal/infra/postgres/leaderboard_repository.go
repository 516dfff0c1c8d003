package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-kingdom/internal/domain"
)

// LeaderboardRepository stores solo-play results in the leaderboard_entries table.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

func (r *LeaderboardRepository) Append(ctx context.Context, e domain.LeaderboardEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO leaderboard_entries (id, nickname, score, total_time, category, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Nickname, e.Score, e.TotalTime, e.Category, e.Timestamp)
	if err != nil {
		return fmt.Errorf("append leaderboard entry: %w", err)
	}
	return nil
}

func (r *LeaderboardRepository) Top(ctx context.Context, category string, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, nickname, score, total_time, category, created_at
		 FROM leaderboard_entries
		 WHERE $1 = '' OR category = $1
		 ORDER BY score DESC, total_time ASC, created_at ASC
		 LIMIT $2`, category, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Nickname, &e.Score, &e.TotalTime, &e.Category, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return entries, nil
}
