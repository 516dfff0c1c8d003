package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-kingdom/internal/domain"
)

// BankLoader fetches one category of bank questions from a backing store.
type BankLoader interface {
	LoadCategory(ctx context.Context, category string) ([]domain.Question, error)
}

// QuestionBank caches bank categories in Redis (hash per category) and falls back to a loader on cache miss.
// Questions are stored as: HSET quizkingdom:bank:{category} {questionID} {question JSON}
type QuestionBank struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewQuestionBank(client *redis.Client, loader BankLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) Category(ctx context.Context, category string) ([]domain.Question, error) {
	key := bankKey(category)

	if questions, ok := b.cached(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := b.sf.Do(category, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := b.cached(ctx, key); ok {
			return questions, nil
		}

		questions, err := b.loader.LoadCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return nil, domain.ErrCategoryNotFound
		}

		ttl := b.ttlWithJitter()
		pipe := b.client.Pipeline()
		for _, q := range questions {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			pipe.HSet(ctx, key, q.ID, raw)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *QuestionBank) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	fields, err := b.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	questions := make([]domain.Question, 0, len(fields))
	for _, raw := range fields {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, false
		}
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool {
		if !questions[i].CreatedAt.Equal(questions[j].CreatedAt) {
			return questions[i].CreatedAt.Before(questions[j].CreatedAt)
		}
		return questions[i].ID < questions[j].ID
	})
	return questions, true
}

func bankKey(category string) string {
	return "quizkingdom:bank:" + category
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
