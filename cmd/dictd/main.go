package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AniruddhAgrahari/open-read/internal/cache"
	"github.com/AniruddhAgrahari/open-read/internal/dictionary"
	"github.com/AniruddhAgrahari/open-read/internal/events"
	"github.com/AniruddhAgrahari/open-read/internal/loader"
	"github.com/AniruddhAgrahari/open-read/internal/refresh"
	"github.com/AniruddhAgrahari/open-read/internal/server"
	"github.com/AniruddhAgrahari/open-read/pkg/config"
	apperrors "github.com/AniruddhAgrahari/open-read/pkg/errors"
	"github.com/AniruddhAgrahari/open-read/pkg/health"
	"github.com/AniruddhAgrahari/open-read/pkg/kafka"
	"github.com/AniruddhAgrahari/open-read/pkg/logger"
	"github.com/AniruddhAgrahari/open-read/pkg/metrics"
	"github.com/AniruddhAgrahari/open-read/pkg/middleware"
	"github.com/AniruddhAgrahari/open-read/pkg/postgres"
	pkgredis "github.com/AniruddhAgrahari/open-read/pkg/redis"
	"github.com/AniruddhAgrahari/open-read/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting dictionary service",
		"port", cfg.Server.Port,
		"source", cfg.Dictionary.Source,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	var pgClient *postgres.Client
	if cfg.Dictionary.Source == "postgres" {
		err := resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
			var connErr error
			pgClient, connErr = postgres.New(cfg.Postgres)
			return connErr
		})
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pgClient.Close()
	}

	engine := dictionary.NewEngine(cfg.Dictionary)
	if m != nil {
		engine.InstrumentGate(
			func(mode string, wait time.Duration) {
				m.GateWaitSeconds.WithLabelValues(mode).Observe(wait.Seconds())
			},
			func(mode string) {
				m.LockTimeoutsTotal.WithLabelValues(mode).Inc()
			},
		)
	}
	source, err := loader.New(cfg.Dictionary, cfg.Postgres, pgClient)
	if err != nil {
		slog.Error("failed to create dataset loader", "error", err)
		os.Exit(1)
	}

	// The service is useless without a corpus; a failed initial build is the
	// unrecoverable StoreInitFailed condition.
	entries, err := source.Load(ctx)
	if err != nil {
		slog.Error("failed to load initial dataset",
			"error", fmt.Errorf("%w: %v", apperrors.ErrStoreInitFailed, err),
			"source", source.Name(),
		)
		os.Exit(1)
	}
	report, err := engine.Build(ctx, entries)
	if err != nil {
		slog.Error("failed to build initial corpus",
			"error", fmt.Errorf("%w: %v", apperrors.ErrStoreInitFailed, err),
		)
		os.Exit(1)
	}
	slog.Info("initial corpus built",
		"source", source.Name(),
		"indexed", report.Indexed,
		"skipped", len(report.Skipped),
	)
	if m != nil {
		if stats, err := engine.Stats(ctx); err == nil {
			m.EntriesIndexed.Set(float64(stats.Entries))
			m.TermsIndexed.Set(float64(stats.Terms))
		}
	}

	var defCache *cache.DefinitionCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, definition caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		defCache = cache.New(redisClient, cfg.Redis)
		slog.Info("definition cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	eventProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DictionaryEvents)
	collector := events.NewCollector(eventProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("event collector started", "topic", cfg.Kafka.Topics.DictionaryEvents)

	onRebuilt := func(ctx context.Context) {
		if defCache != nil {
			if err := defCache.Invalidate(ctx); err != nil {
				slog.Error("cache invalidation after refresh failed", "error", err)
			}
		}
		if m != nil {
			if stats, err := engine.Stats(ctx); err == nil {
				m.EntriesIndexed.Set(float64(stats.Entries))
				m.TermsIndexed.Set(float64(stats.Terms))
			}
		}
	}
	refreshConsumer := refresh.New(kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.DictionaryRefresh,
		refresh.HandleMessage(engine, source, onRebuilt),
	))
	go func() {
		if err := refreshConsumer.Start(ctx); err != nil {
			slog.Error("refresh consumer error", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("dictionary", func(ctx context.Context) health.ComponentHealth {
		stats, err := engine.Stats(ctx)
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d entries, %d terms", stats.Entries, stats.Terms),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if pgClient != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	// A nil *cache.DefinitionCache must stay a nil interface, or the handler
	// would see the cache as enabled.
	var handlerCache server.DefinitionCache
	if defCache != nil {
		handlerCache = defCache
	}
	h := server.New(engine, handlerCache, collector, source, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/definitions", h.Search)
	mux.HandleFunc("GET /api/v1/dictionary", h.Entries)
	mux.HandleFunc("POST /api/v1/dictionary", h.Build)
	mux.HandleFunc("POST /api/v1/dictionary/reload", h.Reload)
	mux.HandleFunc("POST /api/v1/dictionary/entries", h.Insert)
	mux.HandleFunc("DELETE /api/v1/dictionary/entries/{id}", h.Remove)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("dictionary service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("dictionary service stopped")
}
