package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0001_create_users.sql
var createUsersSQL string

//go:embed 0002_create_quiz_sessions.sql
var createQuizSessionsSQL string

//go:embed 0003_create_leaderboard.sql
var createLeaderboardSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, stmt := range []string{createUsersSQL, createQuizSessionsSQL, createLeaderboardSQL} {
				if _, err := db.Exec(stmt); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS leaderboard, quiz_sessions, users`)
			return err
		},
	)
}
