package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"Connector/internal/api/middleware"
	"Connector/internal/api/routes"
	"Connector/internal/auth"
	"Connector/internal/config"
	"Connector/internal/core/feed"
	"Connector/internal/core/posts"
	"Connector/internal/core/users"
	"Connector/internal/db/store"
	"Connector/internal/events"
)

func main() {
	configPath := pflag.String("config", "", "path to the YAML config file (default $"+config.ConfigPathEnv+")")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	// Events are optional; a nil publisher disables them
	var publisher posts.EventPublisher
	if cfg.Events.RedisAddr != "" {
		redisPublisher, err := events.NewRedisPublisher(ctx, cfg.Events.RedisAddr, cfg.Events.Channel, logger)
		if err != nil {
			return fmt.Errorf("connect event publisher: %w", err)
		}
		defer func() { _ = redisPublisher.Close() }()
		publisher = redisPublisher
		logger.Info("publishing post events", "channel", redisPublisher.Channel())
	}

	// Token verification: HS256 secret, plus JWKS for tokens carrying a kid
	var keys auth.KeyFetcher
	if cfg.Auth.JWKSURL != "" {
		fetcher, err := auth.NewJWKSFetcher(ctx, cfg.Auth.JWKSURL, cfg.Auth.JWKSRefresh)
		if err != nil {
			return fmt.Errorf("init JWKS: %w", err)
		}
		keys = fetcher
	}
	authMiddleware := middleware.NewAuthMiddleware(auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, keys))

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		defer rateLimiter.Stop()
	}

	// Initialize services
	userService := users.NewUserService(st.Users)
	postService := posts.NewService(st.Posts, userService, publisher, logger)
	feedService := feed.NewService(st.Posts, postService, cfg.Feed.MaxLimit, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	routes.RegisterPostRoutes(r, postService, feedService, authMiddleware, rateLimiter)
	r.Mount("/api/users", routes.UserRoutes(userService))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Connector starting", "port", cfg.Server.Port, "store", cfg.Store.Driver, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newLogger builds a JSON logger in production and a text logger otherwise
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
