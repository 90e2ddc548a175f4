package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/workouttracker/internal/api"
	"example.com/workouttracker/internal/auth"
	"example.com/workouttracker/internal/config"
	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/outbox"
	"example.com/workouttracker/internal/persistence/memory"
	"example.com/workouttracker/internal/persistence/postgres"
	"example.com/workouttracker/internal/platform/logger"
	"example.com/workouttracker/internal/stream"
	httptransport "example.com/workouttracker/internal/transport/http"
)

type repositories struct {
	exercises domain.ExerciseRepository
	templates domain.TemplateRepository
	sessions  domain.SessionRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier := stream.NewNotifier()
	var (
		repos      repositories
		background sync.WaitGroup
	)

	switch cfg.StoreDriver {
	case config.DriverMemory:
		store := memory.NewStore(notifier, log)
		repos = repositories{
			exercises: memory.NewExerciseRepository(store),
			templates: memory.NewTemplateRepository(store),
			sessions:  memory.NewSessionRepository(store),
		}
		log.Warn("using in-memory store; data is lost on restart and no events are published")

	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal("failed to connect to postgres", "error", err)
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal("failed to migrate schema", "error", err)
		}

		store := postgres.NewStore(pool, notifier, log)
		repos = repositories{
			exercises: postgres.NewExerciseRepository(store),
			templates: postgres.NewTemplateRepository(store),
			sessions:  postgres.NewSessionRepository(store),
		}

		listener := postgres.NewListener(pool, notifier, log.With("component", "listener"))
		background.Add(1)
		go func() {
			defer background.Done()
			_ = listener.Run(ctx)
		}()

		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()

		dispatcher := outbox.NewDispatcher(
			outbox.NewPostgresStore(pool, cfg.OutboxMaxAttempts),
			producer,
			log.With("component", "outbox"),
			cfg.OutboxPollInterval,
			cfg.OutboxBatchSize,
		)
		go dispatcher.Start(ctx)
		defer dispatcher.Wait()
	}

	handler := api.NewHandler(
		domain.NewExerciseService(repos.exercises),
		domain.NewTemplateService(repos.templates),
		domain.NewSessionService(repos.sessions),
		log,
	)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, auth.SkipOperational)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, httptransport.Chain(mux,
		httptransport.RequestLogger(log),
		httptransport.CORS(cfg.CORSOrigin),
		authMiddleware.Wrap,
	))

	go func() {
		log.Info("workout tracker listening", "address", cfg.HTTPAddress, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	background.Wait()
}
