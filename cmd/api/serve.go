// AngelaMos | 2026
// serve.go

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/blog-api/internal/auth"
	"github.com/carterperez-dev/templates/blog-api/internal/config"
	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/health"
	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
	"github.com/carterperez-dev/templates/blog-api/internal/post"
	"github.com/carterperez-dev/templates/blog-api/internal/server"
	"github.com/carterperez-dev/templates/blog-api/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

//nolint:funlen // bootstrap code is inherently verbose
func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)
	core.ExposeInternalErrors(cfg.IsDevelopment())

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	} else if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"query_timeout", db.QueryTimeout,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close() //nolint:errcheck // startup failure cleanup
		return err
	}
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		_ = redis.Close() //nolint:errcheck // startup failure cleanup
		_ = db.Close()    //nolint:errcheck // startup failure cleanup
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	userRepo := user.NewRepository(db.DB, db.QueryTimeout)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	postRepo := post.NewRepository(db.DB, db.QueryTimeout)
	postSvc := post.NewService(postRepo, userSvc)
	postHandler := post.NewHandler(postSvc)

	authSvc := auth.NewService(jwtManager, userSvc, redis)
	authHandler := auth.NewHandler(authSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	var metrics *core.Metrics
	if cfg.Metrics.Enabled {
		metrics = core.NewMetrics(db.DB.DB)
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	if metrics != nil {
		router.Use(middleware.Metrics(metrics))
	}
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Policy: "global",
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: cfg.RateLimit.FailOpen,
			Skip: middleware.SkipPaths(
				"/healthz", "/livez", "/readyz", cfg.Metrics.Path,
			),
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)
	if metrics != nil {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	optionalAuth := middleware.OptionalAuth(authSvc)
	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Policy: "auth",
		Limit: middleware.PerMinute(
			cfg.RateLimit.AuthRequests,
			cfg.RateLimit.AuthBurst,
		),
		Key:      middleware.KeyByUserAndEndpoint,
		FailOpen: cfg.RateLimit.FailOpen,
	})

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			authHandler.RegisterRoutes(r, authenticator, authLimiter.Handler)
			userHandler.RegisterProfileRoutes(r, authenticator)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticator)
			userHandler.RegisterRoutes(r)
			r.Get("/{userID}/posts", postHandler.ListByAuthor)
		})

		r.Route("/posts", func(r chi.Router) {
			postHandler.RegisterRoutes(r, authenticator, optionalAuth)
		})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err = <-errChan:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx, drainDelay); shutdownErr != nil {
		logger.Error("server shutdown error", "error", shutdownErr)
	}

	if telemetry != nil {
		if telErr := telemetry.Shutdown(shutdownCtx); telErr != nil {
			logger.Error("telemetry shutdown error", "error", telErr)
		}
	}

	if closeErr := redis.Close(); closeErr != nil {
		logger.Error("redis close error", "error", closeErr)
	}

	if closeErr := db.Close(); closeErr != nil {
		logger.Error("database close error", "error", closeErr)
	}

	logger.Info("application stopped")
	return err
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
