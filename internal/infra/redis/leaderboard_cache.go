package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"quizzio/internal/app"
	"quizzio/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	scoresKey     = "leaderboard:scores"
	entryKeyStem  = "leaderboard:user:"
	timeFieldFmt  = time.RFC3339Nano
)

// LeaderboardCache is a Redis-backed implementation of
// app.LeaderboardRepository. Scores live in a sorted set for cheap top-N
// reads; the full denormalized row sits in a hash per user:
//
//	ZADD leaderboard:scores {total_score} {userID}
//	HSET leaderboard:user:{userID} username ... accuracy ... last_updated ...
type LeaderboardCache struct {
	client *redis.Client
}

func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

func (c *LeaderboardCache) Upsert(ctx context.Context, entry domain.LeaderboardEntry) error {
	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, scoresKey, redis.Z{Score: float64(entry.TotalScore), Member: formatID(entry.UserID)})
	pipe.HSet(ctx, entryKey(entry.UserID), map[string]interface{}{
		"username":          entry.Username,
		"total_score":       entry.TotalScore,
		"quizzes_completed": entry.QuizzesCompleted,
		"correct_answers":   entry.CorrectAnswers,
		"total_answers":     entry.TotalAnswers,
		"accuracy":          entry.Accuracy,
		"last_updated":      entry.LastUpdated.Format(timeFieldFmt),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write leaderboard row: %w", err)
	}
	return nil
}

func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	// The sorted set alone cannot express the accuracy tie-break, so fetch
	// the ranked members and re-sort the hydrated rows in Go.
	ids, err := c.client.ZRevRange(ctx, scoresKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard scores: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(ids))
	for _, rawID := range ids {
		userID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}
		fields, err := c.client.HGetAll(ctx, entryKey(userID)).Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		entry := entryFromFields(userID, fields)
		if entry.TotalScore <= 0 {
			continue
		}
		entries = append(entries, entry)
	}
	app.SortEntries(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func entryFromFields(userID int64, fields map[string]string) domain.LeaderboardEntry {
	entry := domain.LeaderboardEntry{
		UserID:           userID,
		Username:         fields["username"],
		TotalScore:       atoi(fields["total_score"]),
		QuizzesCompleted: atoi(fields["quizzes_completed"]),
		CorrectAnswers:   atoi(fields["correct_answers"]),
		TotalAnswers:     atoi(fields["total_answers"]),
		Accuracy:         atoi(fields["accuracy"]),
	}
	if ts, err := time.Parse(timeFieldFmt, fields["last_updated"]); err == nil {
		entry.LastUpdated = ts
	}
	return entry
}

func atoi(raw string) int {
	n, _ := strconv.Atoi(raw)
	return n
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func entryKey(userID int64) string {
	return entryKeyStem + formatID(userID)
}
