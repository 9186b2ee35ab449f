package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quizzio/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches question sets from a backing store (Postgres, a
// static bank for tests/demos).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, subject, difficulty string) ([]domain.Question, error)
}

// QuestionCache caches question sets per subject/difficulty with TTL to
// avoid repeated store hits while a quiz is being assembled.
type QuestionCache struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.Mutex
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestions),
	}
}

// Find returns up to filter.Limit questions matching the filter, sampled
// randomly from the cached set so repeated quizzes vary.
func (c *QuestionCache) Find(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	key := filter.Subject + "|" + filter.Difficulty
	now := c.clock()

	c.mu.Lock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		questions := entry.questions
		c.mu.Unlock()
		return c.sample(questions, filter.Limit), nil
	}
	c.mu.Unlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.Lock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.Unlock()
			return entry.questions, nil
		}
		c.mu.Unlock()

		questions, err := c.loader.LoadQuestions(ctx, filter.Subject, filter.Difficulty)
		if err != nil {
			return nil, err
		}

		expiresAt := now.Add(c.ttlWithJitter())
		c.mu.Lock()
		c.cache[key] = cachedQuestions{
			questions: questions,
			expiresAt: expiresAt,
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return c.sample(result.([]domain.Question), filter.Limit), nil
}

func (c *QuestionCache) sample(questions []domain.Question, limit int) []domain.Question {
	out := append([]domain.Question(nil), questions...)
	if limit <= 0 || limit >= len(out) {
		return out
	}
	c.rndMu.Lock()
	c.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	c.rndMu.Unlock()
	return out[:limit]
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticQuestionBank is a loader backed by an in-memory slice (useful for
// tests and for running without Postgres).
type StaticQuestionBank struct {
	questions []domain.Question
}

func NewStaticQuestionBank(questions []domain.Question) *StaticQuestionBank {
	return &StaticQuestionBank{questions: questions}
}

func (b *StaticQuestionBank) LoadQuestions(_ context.Context, subject, difficulty string) ([]domain.Question, error) {
	var out []domain.Question
	for _, question := range b.questions {
		if subject != "" && question.Subject != subject {
			continue
		}
		if difficulty != "" && question.Difficulty != difficulty {
			continue
		}
		out = append(out, question)
	}
	if len(out) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return out, nil
}
