package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bookly/booking-platform/internal/api"
	"github.com/bookly/booking-platform/internal/api/handler"
	"github.com/bookly/booking-platform/internal/core/service"
	"github.com/bookly/booking-platform/internal/infrastructure/config"
	mongodb "github.com/bookly/booking-platform/internal/infrastructure/db/mongo"
	redisdb "github.com/bookly/booking-platform/internal/infrastructure/db/redis"
	"github.com/bookly/booking-platform/internal/infrastructure/idgen"
	"github.com/bookly/booking-platform/internal/infrastructure/password"
	"github.com/bookly/booking-platform/internal/infrastructure/queue"
	"github.com/bookly/booking-platform/internal/infrastructure/token"
	"github.com/bookly/booking-platform/pkg/logger"
)

const serviceName = "booking-api"

func main() {
	// best-effort: a missing .env just means the real environment is used
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: serviceName})
		boot.Fatal().Err(err).Msg("configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	// Signing keys are checked before anything else is started.
	accessKey, refreshKey, err := cfg.Auth.Keys()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token keys")
	}
	tokens, err := token.NewManager(accessKey, refreshKey,
		token.WithAccessTTL(cfg.Auth.AccessTTL),
		token.WithRefreshTTL(cfg.Auth.RefreshTTL),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token keys")
	}

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect")
	}
	defer rdb.Close()

	identities := mongodb.NewIdentityRepository(db)
	activities := mongodb.NewActivityRepository(db)
	if err := identities.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("identity indexes")
	}
	if err := activities.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("activity indexes")
	}

	ids, err := idgen.NewSnowflake(cfg.Activity.SnowflakeNode)
	if err != nil {
		log.Fatal().Err(err).Msg("snowflake node")
	}

	// Activity workers are drained after the HTTP server stops, so records
	// from in-flight requests still land.
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, service.NewActivityService(activities, log), log)
	dispatcher.Start()

	authOpts := []service.AuthOption{service.WithActivityRecorder(dispatcher)}
	if cfg.Auth.RefreshTracking {
		authOpts = append(authOpts, service.WithRefreshStore(redisdb.NewRefreshStore(rdb), tokens.RefreshTTL()))
	} else {
		log.Info().Msg("refresh tokens are not tracked server-side")
	}
	authService := service.NewAuthService(identities, password.NewBcryptHasher(), tokens, ids, log, authOpts...)
	userService := service.NewUserService(identities, log)

	e := api.NewRouter(api.Deps{
		Log:    log,
		Tokens: tokens,
		Auth:   authService,
		Users:  userService,
		Cookie: handler.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
			MaxAge: tokens.AccessTTL(),
		},
		Checks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error {
				return mongodb.Ping(ctx, db)
			},
			"redis": func(ctx context.Context) error {
				return redisdb.Ping(ctx, rdb, 2*time.Second)
			},
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown failed")
	}

	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("activity queue not fully drained")
	}
	log.Info().Msg("goodbye")
}
