package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quiz-kingdom/internal/app"
	"quiz-kingdom/internal/config"
	"quiz-kingdom/internal/infra/memory"
	"quiz-kingdom/internal/infra/postgres"
	redisinfra "quiz-kingdom/internal/infra/redis"
	transport "quiz-kingdom/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	logger := newLogger(os.Stderr, cfg.Log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := RunMigrations(ctx, cfg, logger); err != nil {
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

	checks := map[string]transport.HealthCheck{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		checks["postgres"] = pool.Ping
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(memory.SampleBank())
	if pool != nil {
		loader = postgres.NewQuestionLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var bank app.QuestionBank
	if redisClient != nil {
		bank = redisinfra.NewQuestionBank(redisClient, loader, bankTTL)
	} else {
		bank = memory.NewQuestionBank(loader, bankTTL)
	}

	var registry app.RoomRegistry
	if redisClient != nil {
		registry = redisinfra.NewRoomRegistry(redisClient, redisTTL)
	} else {
		registry = memory.NewRoomRegistry()
	}

	var entries app.LeaderboardRepository
	if pool != nil {
		entries = postgres.NewLeaderboardRepository(pool)
	} else {
		entries = memory.NewLeaderboardRepository()
	}

	rooms := app.NewRoomService(registry, bank,
		app.WithLogger(logger),
		app.WithIdleTimeout(config.TTLDuration(cfg.Room.IdleTimeout, time.Hour)),
	)
	leaderboard := app.NewLeaderboardService(entries, time.Now, logger)

	server := transport.New(":"+finalPort, transport.Deps{
		Rooms:       rooms,
		Leaderboard: leaderboard,
		Bank:        bank,
		Logger:      logger,
		BaseURL:     cfg.Server.BaseURL,
		Checks:      checks,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		rooms.RunReaper(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		return server.Shutdown(context.Background())
	})
	return g.Wait()
}
