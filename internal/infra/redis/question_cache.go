package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"quizzio/internal/domain"
	"quizzio/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionCache caches question sets in Redis (one JSON blob per
// subject/difficulty pair) and falls back to a loader on cache miss:
//
//	SET quiz:questions:{subject}:{difficulty} {json} EX ttl
type QuestionCache struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Find(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	key := c.key(filter.Subject, filter.Difficulty)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var questions []domain.Question
		if err := json.Unmarshal(raw, &questions); err == nil && len(questions) > 0 {
			return c.sample(questions, filter.Limit), nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var questions []domain.Question
			if err := json.Unmarshal(raw, &questions); err == nil && len(questions) > 0 {
				return questions, nil
			}
		}

		questions, err := c.loader.LoadQuestions(ctx, filter.Subject, filter.Difficulty)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(questions); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
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

func (c *QuestionCache) key(subject, difficulty string) string {
	return "quiz:questions:" + subject + ":" + difficulty
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
