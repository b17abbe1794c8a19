// Command oauth2-playground runs the authorization-code walkthrough service:
// a guided simulation of the OAuth2/OIDC code flow with PKCE against a real
// identity provider, one step per request, for developers learning the flow.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/auric-id/oauth2-playground/internal/correlation"
	"github.com/auric-id/oauth2-playground/internal/logger"
	"github.com/auric-id/oauth2-playground/internal/metrics"
	"github.com/auric-id/oauth2-playground/internal/playground"
	"github.com/auric-id/oauth2-playground/internal/provider"
)

// Version is set by the build process.
var Version = "dev"

func main() {
	// A .env file is a development convenience; absence is fine.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := logger.Init(cfg.LogEnv, cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()
	zlog := logger.L()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		zlog.Fatal("registering metrics", zap.Error(err))
	}

	var (
		store     playground.Store
		corrStore correlation.Store
		redisConn *redis.Client
	)
	switch cfg.StoreBackend {
	case "redis":
		if cfg.RedisURL == "" {
			zlog.Fatal("REDIS_URL is required with the redis store backend")
		}
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zlog.Fatal("parsing Redis URL", zap.Error(err))
		}
		redisConn = redis.NewClient(redisOpts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisConn.Ping(ctx).Err(); err != nil {
			zlog.Fatal("connecting to Redis", zap.Error(err))
		}

		store = playground.NewRedisStore(redisConn, cfg.SessionTTL)
		corrStore = correlation.NewRedisStore(redisConn, cfg.SessionTTL)

	case "memory":
		store = playground.NewMemStore(cfg.SessionTTL)
		corrStore = correlation.NewMemStore(cfg.SessionTTL)

	default:
		zlog.Fatal("unknown store backend", zap.String("backend", cfg.StoreBackend))
	}

	providerOpts := []provider.Option{provider.WithTimeout(cfg.ProviderTimeout)}
	if cfg.IncludeSysClaims {
		providerOpts = append(providerOpts, provider.WithSystemClaims())
	}
	client, err := provider.New(cfg.IssuerURL, providerOpts...)
	if err != nil {
		zlog.Fatal("creating provider client", zap.Error(err))
	}

	flow := playground.NewFlow(
		store,
		correlation.NewManager(corrStore),
		client,
		cfg.IssuerURL,
		playground.WithLogger(logger.Named("flow")),
	)

	srv := newServer(cfg, flow, logger.Named("http"))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		zlog.Info("server listening",
			zap.Int("port", cfg.Port),
			zap.String("issuer", cfg.IssuerURL),
			zap.String("store", cfg.StoreBackend))
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		zlog.Fatal("server error", zap.Error(err))

	case sig := <-shutdown:
		zlog.Info("starting shutdown", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			zlog.Error("shutting down server", zap.Error(err))
			if err := httpServer.Close(); err != nil {
				zlog.Error("closing server", zap.Error(err))
			}
		}

		if redisConn != nil {
			if err := redisConn.Close(); err != nil {
				zlog.Error("closing Redis connection", zap.Error(err))
			}
		}
	}
}
