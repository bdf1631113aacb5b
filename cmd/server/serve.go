package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"claimsight/internal/activity"
	analysismetrics "claimsight/internal/analysis/metrics"
	"claimsight/internal/claims/explain"
	"claimsight/internal/claims/handler"
	claimsmetrics "claimsight/internal/claims/metrics"
	"claimsight/internal/claims/service"
	"claimsight/internal/claims/store"
	"claimsight/internal/documents"
	"claimsight/internal/identity"
	"claimsight/internal/platform/config"
	"claimsight/internal/platform/httpserver"
	"claimsight/internal/platform/kafka"
	"claimsight/internal/platform/metrics"
	"claimsight/internal/platform/postgres"
	platformredis "claimsight/internal/platform/redis"
	"claimsight/internal/ratelimit"
	"claimsight/internal/realtime"
	httptransport "claimsight/internal/transport/http"
	"claimsight/pkg/platform/middleware/metadata"
)

const (
	shutdownTimeout    = 15 * time.Second
	activityBufferSize = 256
	explainRetryDelay  = 500 * time.Millisecond
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

// closers run in reverse order on shutdown.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	var cleanup closers
	defer cleanup.run()

	checks := map[string]httptransport.HealthCheck{}

	claimStore, err := newClaimStore(ctx, cfg, log, &cleanup, checks)
	if err != nil {
		return err
	}
	journalStore, err := newJournalStore(ctx, cfg, log, &cleanup)
	if err != nil {
		return err
	}

	hub := realtime.NewHub(realtime.WithLogger(log))
	sinks := []activity.Sink{hub}
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := kafka.NewClient(ctx, cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		cleanup.add(client.Close)
		if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, 3); err != nil {
			return err
		}
		sinks = append(sinks, activity.NewKafkaSink(client, cfg.Kafka.Topic))
		log.InfoContext(ctx, "activity events published to kafka", "topic", cfg.Kafka.Topic)
	}
	journal := activity.NewPublisher(journalStore,
		activity.WithLogger(log),
		activity.WithSinks(sinks...),
		activity.WithAsyncBuffer(activityBufferSize),
	)
	// Registered after the sinks' clients so buffered events drain first.
	cleanup.add(journal.Close)

	claimMetrics := claimsmetrics.New()
	gateway, err := newGateway(ctx, cfg, log, analysismetrics.New())
	if err != nil {
		return err
	}

	redisClient, err := newRedis(ctx, cfg, log, &cleanup, checks)
	if err != nil {
		return err
	}
	cache := newExplanationCache(ctx, cfg, log, redisClient)
	explainer := explain.New(cache,
		explain.WithLogger(log),
		explain.WithMetrics(claimMetrics),
		explain.WithRetry(cfg.Explanation.RetryAttempts, explainRetryDelay),
	)

	docStore, handlerOpts, err := newDocumentStore(cfg)
	if err != nil {
		return err
	}
	limits := ratelimit.NewMiddleware(newRateLimitStore(redisClient), log)
	handlerOpts = append(handlerOpts, handler.WithModelRateLimits(
		limits.Limit("submit", ratelimit.Rule{Limit: cfg.RateLimit.Submissions, Window: cfg.RateLimit.Window}),
		limits.Limit("explain", ratelimit.Rule{Limit: cfg.RateLimit.Explanations, Window: cfg.RateLimit.Window}),
	))

	svc := service.New(claimStore, gateway,
		service.WithLogger(log),
		service.WithMetrics(claimMetrics),
		service.WithDocumentStore(docStore),
		service.WithIdentity(identity.FromContext{Fallback: identity.NewStatic(identity.DefaultPerson)}),
		service.WithActivityJournal(journal),
		service.WithExplanationCache(explainer),
		service.WithMaxConcurrentChecks(cfg.Workflow.MaxConcurrentChecks),
	)
	if cfg.Server.SeedDemo {
		if _, err := svc.SeedDemo(ctx, time.Now()); err != nil {
			return fmt.Errorf("seed demo claims: %w", err)
		}
	}

	proxies, err := metadata.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	routerCfg := httptransport.Config{
		Logger:         log,
		Metrics:        metrics.New(),
		AuthRequired:   cfg.Auth.Required,
		AdminToken:     cfg.Auth.AdminToken,
		Seeder:         svc,
		TrustedProxies: proxies,
		Checks:         checks,
		Routes: []httptransport.Registrar{
			handler.New(svc, log, handlerOpts...),
			hub,
		},
	}
	if cfg.Auth.JWTSecret != "" {
		routerCfg.Tokens = identity.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}

	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(routerCfg))
	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "claimsight listening", "addr", cfg.Server.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func newClaimStore(ctx context.Context, cfg *config.Config, log *slog.Logger, cleanup *closers, checks map[string]httptransport.HealthCheck) (service.ClaimStore, error) {
	if cfg.Database.URL == "" {
		log.InfoContext(ctx, "using in-memory claim store")
		return store.NewInMemory(), nil
	}
	pool, err := postgres.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}
	cleanup.add(pool.Close)
	checks["postgres"] = pool.Ping

	pg := store.NewPostgres(pool)
	if err := pg.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate claim store: %w", err)
	}
	log.InfoContext(ctx, "using postgres claim store")
	return pg, nil
}

func newJournalStore(ctx context.Context, cfg *config.Config, log *slog.Logger, cleanup *closers) (activity.Store, error) {
	if cfg.Database.URL == "" {
		return activity.NewInMemoryStore(), nil
	}
	db, err := postgres.OpenDB(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	cleanup.add(func() {
		if err := db.Close(); err != nil {
			log.Warn("closing activity database", "error", err)
		}
	})

	pg := activity.NewPostgresStore(db)
	if err := pg.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate activity store: %w", err)
	}
	return pg, nil
}

// newRedis returns nil when no Redis URL is configured.
func newRedis(ctx context.Context, cfg *config.Config, log *slog.Logger, cleanup *closers, checks map[string]httptransport.HealthCheck) (*platformredis.Client, error) {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil || client == nil {
		return nil, err
	}
	cleanup.add(func() {
		if err := client.Close(); err != nil {
			log.Warn("closing redis client", "error", err)
		}
	})
	checks["redis"] = client.Health
	return client, nil
}

func newExplanationCache(ctx context.Context, cfg *config.Config, log *slog.Logger, client *platformredis.Client) explain.Cache {
	if client == nil {
		log.InfoContext(ctx, "using in-process explanation cache", "size", cfg.Explanation.CacheSize)
		return explain.NewLRU(cfg.Explanation.CacheSize, cfg.Explanation.CacheTTL)
	}
	log.InfoContext(ctx, "using redis explanation cache")
	return explain.NewRedis(client.Client, cfg.Explanation.CacheTTL)
}

func newRateLimitStore(client *platformredis.Client) ratelimit.Store {
	if client == nil {
		return ratelimit.NewInMemory()
	}
	return ratelimit.NewRedis(client.Client)
}

func newDocumentStore(cfg *config.Config) (service.DocumentStore, []handler.Option, error) {
	switch cfg.Documents.Backend {
	case config.DocumentsMemory:
		mem := documents.NewInMemory()
		return mem, []handler.Option{handler.WithDocumentReader(mem)}, nil
	case config.DocumentsS3:
		s3, err := documents.NewS3Store(documents.S3Config{
			Endpoint:  cfg.Documents.Endpoint,
			Region:    cfg.Documents.Region,
			AccessKey: cfg.Documents.AccessKey,
			SecretKey: cfg.Documents.SecretKey,
			Bucket:    cfg.Documents.Bucket,
			UseSSL:    cfg.Documents.UseSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create s3 document store: %w", err)
		}
		return s3, []handler.Option{handler.WithDocumentReader(s3), handler.WithDocumentLinker(s3)}, nil
	default:
		return documents.Placeholder{}, nil, nil
	}
}
