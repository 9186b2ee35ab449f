package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizzio/internal/app"
	"quizzio/internal/config"
	"quizzio/internal/domain"
	"quizzio/internal/infra/memory"
	pgstore "quizzio/internal/infra/postgres"
	redisstore "quizzio/internal/infra/redis"
	transport "quizzio/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz progress server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var users app.UserRepository
	var sessions app.SessionRepository
	var boardRepo app.LeaderboardRepository
	var questionLoader memory.QuestionLoader

	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		users = pgstore.NewUserStore(db)
		sessions = pgstore.NewSessionStore(db)
		boardRepo = pgstore.NewLeaderboardStore(db)
		questionLoader = pgstore.NewQuestionStore(pool)
	} else {
		users = memory.NewUserStore()
		sessions = memory.NewSessionStore()
		boardRepo = memory.NewLeaderboardStore()
		questionLoader = memory.NewStaticQuestionBank(sampleQuestions())
	}

	if redisClient != nil {
		boardRepo = redisstore.NewLeaderboardCache(redisClient)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questions app.QuestionRepository
	if redisClient != nil {
		questions = redisstore.NewQuestionCache(redisClient, questionLoader, questionTTL)
	} else {
		questions = memory.NewQuestionCache(questionLoader, questionTTL)
	}

	boardTTL := config.TTLDuration(cfg.Leaderboard.TTL, time.Hour)
	board := app.NewLeaderboardService(users, boardRepo, boardTTL)
	progress := app.NewProgressService(users, sessions).WithLeaderboard(board)

	handler := transport.NewHandler(progress, board, questions)
	wsHandler := transport.NewWSHandler(board)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(wsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizzio on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions provides a minimal bank for running without Postgres.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            1,
			Subject:       "Math",
			Question:      "What is 2 + 2?",
			Options:       []string{"3", "4", "5", "6"},
			CorrectAnswer: "4",
			Difficulty:    "easy",
			Explanation:   "2 + 2 = 4",
			Points:        10,
		},
		{
			ID:            2,
			Subject:       "Science",
			Question:      "What planet is known as the Red Planet?",
			Options:       []string{"Venus", "Mars", "Jupiter", "Saturn"},
			CorrectAnswer: "Mars",
			Difficulty:    "easy",
			Explanation:   "Iron oxide on its surface gives Mars its color.",
			Points:        10,
		},
		{
			ID:            3,
			Subject:       "History",
			Question:      "In which year did World War II end?",
			Options:       []string{"1943", "1944", "1945", "1946"},
			CorrectAnswer: "1945",
			Difficulty:    "medium",
			Explanation:   "The war ended in 1945.",
			Points:        10,
		},
	}
}
