package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-kingdom/internal/domain"
)

// BankLoader fetches one category of bank questions from a backing store.
type BankLoader interface {
	LoadCategory(ctx context.Context, category string) ([]domain.Question, error)
}

// QuestionBank caches bank categories with TTL to avoid repeated DB hits.
type QuestionBank struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCategory
}

type cachedCategory struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionBank(loader BankLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCategory),
	}
}

// Category returns a copy of the cached questions, loading them on a miss.
func (b *QuestionBank) Category(ctx context.Context, category string) ([]domain.Question, error) {
	if questions, ok := b.cached(category, b.clock()); ok {
		return questions, nil
	}

	result, err, _ := b.sf.Do(category, func() (interface{}, error) {
		now := b.clock()
		if questions, ok := b.cached(category, now); ok {
			return questions, nil
		}

		questions, err := b.loader.LoadCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return nil, domain.ErrCategoryNotFound
		}

		b.mu.Lock()
		b.cache[category] = cachedCategory{
			questions: questions,
			expiresAt: now.Add(b.ttlWithJitter()),
		}
		b.mu.Unlock()
		return cloneQuestions(questions), nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *QuestionBank) cached(category string, now time.Time) ([]domain.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.cache[category]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return cloneQuestions(entry.questions), true
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

func cloneQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Choices = append([]string(nil), q.Choices...)
		out[i] = q
	}
	return out
}

// StaticBankLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticBankLoader struct {
	categories map[string][]domain.Question
}

func NewStaticBankLoader(categories map[string][]domain.Question) *StaticBankLoader {
	return &StaticBankLoader{categories: categories}
}

func (l *StaticBankLoader) LoadCategory(_ context.Context, category string) ([]domain.Question, error) {
	if questions, ok := l.categories[category]; ok && len(questions) > 0 {
		return questions, nil
	}
	return nil, domain.ErrCategoryNotFound
}
