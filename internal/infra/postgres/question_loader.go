package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-kingdom/internal/domain"
)

// QuestionLoader loads bank questions stored as JSONB from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadCategory(ctx context.Context, category string) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, data, created_at FROM question_bank WHERE category=$1 ORDER BY created_at, id`, category)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &raw, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		id, createdAt := q.ID, q.CreatedAt
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question %s: %w", id, err)
		}
		q.ID, q.CreatedAt, q.Category = id, createdAt, category
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrCategoryNotFound
	}
	return questions, nil
}

// SaveQuestion upserts one bank question.
func (l *QuestionLoader) SaveQuestion(ctx context.Context, q domain.Question) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO question_bank (id, category, data, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET category = EXCLUDED.category, data = EXCLUDED.data`,
		q.ID, q.Category, raw, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}
