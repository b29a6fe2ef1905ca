package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/janavani/api/internal/auth"
	"github.com/janavani/api/internal/config"
	"github.com/janavani/api/internal/db"
	"github.com/janavani/api/internal/dept"
	"github.com/janavani/api/internal/engage"
	internalhttp "github.com/janavani/api/internal/http"
	"github.com/janavani/api/internal/http/middleware"
	"github.com/janavani/api/internal/http/router"
	"github.com/janavani/api/internal/identity"
	"github.com/janavani/api/internal/insights"
	"github.com/janavani/api/internal/issue"
	"github.com/janavani/api/internal/mdb"
	"github.com/janavani/api/internal/save"
	"github.com/janavani/api/internal/user"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api stopped with error")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	mongoClient, err := mdb.Connect(ctx, cfg.MongoURL)
	if err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	defer func() { _ = mongoClient.Disconnect(ctx) }()

	mongoDB := mongoClient.Database(cfg.MongoDB)
	if err := mdb.EnsureIndexes(ctx, mongoDB); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	broker, err := identity.NewHTTPBroker(cfg.BrokerURL)
	if err != nil {
		return fmt.Errorf("broker: %w", err)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTTL, cfg.RefreshTTL)

	users := user.NewRepository(pool)
	issues := issue.NewRepository(pool)
	depts := dept.NewRepository(pool)
	saves := save.NewRepository(pool)
	counters := engage.NewStore(mongoDB)

	issueService := issue.NewService(issues)
	feed := issue.NewFeed(issues, counters, saves)
	batch := issue.NewBatch(issues, &nameSource{users: users, depts: depts}, counters, saves)
	insightsService := insights.NewService(issues, depts, counters, redisClient)

	middleware.MetricsInit()

	handlers := router.Handlers{
		Session:  internalhttp.NewSessionHandler(broker, users, tokens),
		Profile:  internalhttp.NewProfileHandler(users),
		Issues:   issue.NewHandler(issueService, feed, batch, users, saves, counters),
		Engage:   engage.NewHandler(counters),
		Insights: insights.NewHandler(insightsService),
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router.New(cfg, tokens, handlers),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API listening on :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
