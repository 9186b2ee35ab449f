package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizzio/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// UserStore is the Postgres implementation of app.UserRepository, backed by bun.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	row := &userRow{
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		Role:         user.Role,
		Achievements: user.Achievements,
	}
	if row.Role == "" {
		row.Role = "user"
	}
	if row.Achievements == nil {
		row.Achievements = []string{}
	}
	if _, err := s.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *UserStore) Get(ctx context.Context, id int64) (domain.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().Model(row).Where("u.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

func (s *UserStore) UpdateStats(ctx context.Context, id int64, totalPoints, correct, total, completed, accuracy int) error {
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("total_points = ?", totalPoints).
		Set("correct_answers = ?", correct).
		Set("total_answers = ?", total).
		Set("quizzes_completed = ?", completed).
		Set("accuracy = ?", accuracy).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user stats: %w", err)
	}
	return requireAffected(res)
}

func (s *UserStore) UpdateStreak(ctx context.Context, id int64, current, best int, lastActivity time.Time) error {
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("current_streak = ?", current).
		Set("best_streak = ?", best).
		Set("last_activity = ?", lastActivity).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user streak: %w", err)
	}
	return requireAffected(res)
}

// AddAchievements appends only the ids not already present, in one atomic
// update, so concurrent evaluators cannot duplicate an unlock.
func (s *UserStore) AddAchievements(ctx context.Context, id int64, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("achievements = achievements || (SELECT coalesce(array_agg(a), '{}') FROM unnest(?::text[]) AS a WHERE NOT (a = ANY(achievements)))", pgdialect.Array(ids)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("append achievements: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
