// Package main - точка входа движка HeroForge.
//
// engined поднимает хранилище и собирает обработчики операций движка:
// одобрение наград, применение сил, ежедневная тренировка. Сами транспортные
// обработчики запросов (HTTP, боты) живут во внешних сервисах и подключают
// собранные здесь хендлеры.
package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/heroforge-edu/heroforge-engine/config"
	"github.com/heroforge-edu/heroforge-engine/internal/application/command"
	"github.com/heroforge-edu/heroforge-engine/internal/domain/power"
	"github.com/heroforge-edu/heroforge-engine/internal/infrastructure/audit"
	"github.com/heroforge-edu/heroforge-engine/internal/infrastructure/persistence/postgres"
	"github.com/heroforge-edu/heroforge-engine/pkg/timeutil"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.App.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("engine terminated", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	var (
		conn *postgres.Connection
		err  error
	)
	if cfg.Database.URL != "" {
		conn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	} else {
		pgCfg := postgres.DefaultConfig()
		pgCfg.Host = cfg.Database.Host
		pgCfg.Port = cfg.Database.Port
		pgCfg.Database = cfg.Database.Name
		pgCfg.User = cfg.Database.User
		pgCfg.Password = cfg.Database.Password
		pgCfg.SSLMode = cfg.Database.SSLMode
		pgCfg.MaxConns = cfg.Database.MaxConns
		pgCfg.MinConns = cfg.Database.MinConns
		pgCfg.TxMaxAttempts = cfg.Database.TxMaxAttempts
		conn, err = postgres.NewConnection(ctx, pgCfg)
	}
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Info("connected to postgres")

	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return err
	}
	logger.Info("schema up to date")

	// Redis (optional, live game-log stream)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, continuing without live stream", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	sink := audit.NewAsyncSink(
		postgres.NewGameLogRepository(conn),
		redisClient,
		logger,
		audit.Config{
			BufferSize:   cfg.Engine.GameLogBuffer,
			WriteTimeout: cfg.Engine.GameLogWriteTimeout,
		},
	)
	defer sink.Close()

	store := postgres.NewStore(conn)
	clock := timeutil.SystemClock{}
	roller := power.NewRandRoller(rand.New(rand.NewSource(time.Now().UnixNano())))
	catalog := power.DefaultCatalog()

	engine := &Engine{
		ApproveBoon:   command.NewApproveBoonHandler(store, sink, logger),
		DenyBoon:      command.NewDenyBoonHandler(store, logger),
		UsePower:      command.NewUsePowerHandler(store, catalog, roller, clock, sink, logger),
		DailyTraining: command.NewCompleteDailyTrainingHandler(store, clock, sink, logger),
	}
	_ = engine // handed to the transport layer, which lives outside this repo

	logger.Info("engine ready", "env", cfg.App.Environment)

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// Engine bundles the wired operation handlers for the transport layer.
type Engine struct {
	ApproveBoon   *command.ApproveBoonHandler
	DenyBoon      *command.DenyBoonHandler
	UsePower      *command.UsePowerHandler
	DailyTraining *command.CompleteDailyTrainingHandler
}
