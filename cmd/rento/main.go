package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"rento/internal/app/clock"
	listingapp "rento/internal/app/handlers/listings"
	"rento/internal/app/middleware"
	"rento/internal/app/outbox"
	"rento/internal/app/services/auth"
	"rento/internal/app/uow"
	"rento/internal/app/wiring"
	domainauth "rento/internal/domain/auth"
	"rento/internal/infra/broker/kafka"
	"rento/internal/infra/config"
	"rento/internal/infra/db/mongo"
	"rento/internal/infra/db/postgres"
	ginserver "rento/internal/infra/http/gin"
	"rento/internal/infra/obs"
	infraoutbox "rento/internal/infra/outbox"
	"rento/internal/infra/security"
	"rento/internal/infra/storage/memory"
	"rento/internal/infra/storage/s3"
	"rento/internal/infra/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotenv(); err != nil {
		slog.Default().Warn("cannot read .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	if err := loadListingFixtures(ctx, app.uowFactory, cfg.ListingsFixtures, logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", cfg.ListingsFixtures)
	}

	go func() {
		if err := app.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox relay stopped", "error", err)
		}
	}()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.checks}, app.handlers)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// eventQueue is both the durable outbox sink and the relay's work queue.
type eventQueue interface {
	outbox.Sink
	infraoutbox.Queue
}

type application struct {
	handlers   ginserver.Handlers
	uowFactory uow.UoWFactory
	relay      *infraoutbox.Worker
	checks     map[string]obs.Check
	closers    []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{checks: map[string]obs.Check{}}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			return nil, err
		}
		app.uowFactory = postgres.Factory{Pool: pool}
		app.checks["postgres"] = pool.Ping
	default:
		app.uowFactory = memory.NewFactory(memory.NewStore())
		logger.Warn("using in-memory storage; data is lost on restart")
	}

	var (
		idempotency middleware.IdempotencyStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		queue       eventQueue                  = memory.NewOutbox()
	)
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Warn("mongo unavailable, falling back to memory side stores", "error", err)
		} else {
			app.closers = append(app.closers, func() { _ = client.Close(context.Background()) })
			app.checks["mongo"] = client.Ping
			if store, err := mongo.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL); err == nil {
				idempotency = store
			} else {
				logger.Warn("mongo idempotency store init failed", "error", err)
			}
			if store, err := infraoutbox.NewMongoStore(ctx, client.DB); err == nil {
				queue = store
			} else {
				logger.Warn("mongo outbox init failed", "error", err)
			}
		}
	}

	var revocations domainauth.RevocationStore = memory.NewRevocationStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, revocations kept in memory", "error", err)
			_ = rdb.Close()
		} else {
			app.closers = append(app.closers, func() { _ = rdb.Close() })
			app.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
			revocations = security.NewRedisRevocationStore(rdb)
		}
	}

	var producer infraoutbox.Producer = infraoutbox.LogProducer{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := kafka.NewProducer(cfg.KafkaBrokers, "rento-api", nil)
		if err != nil {
			logger.Warn("kafka unavailable, events are logged only", "error", err)
		} else {
			app.closers = append(app.closers, func() { _ = kp.Close() })
			producer = kafka.NewBreakerProducer("kafka-outbox", kp, logger)
		}
	}
	app.relay = &infraoutbox.Worker{
		Queue:       queue,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      "rento-api",
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}

	var images listingapp.ImageStore = s3.Unconfigured{}
	if cfg.S3Endpoint != "" {
		store, err := s3.NewImageStore(s3.Options{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			logger.Warn("s3 image store disabled", "error", err)
		} else {
			images = store
			app.checks["s3"] = store.Ping
		}
	}

	validator, err := validation.New()
	if err != nil {
		return nil, err
	}
	codec, err := security.NewJWTCodec(cfg.JWTSecret, "rento")
	if err != nil {
		return nil, err
	}
	clk := clock.New(cfg.Timezone)
	buses := wiring.Build(wiring.Deps{
		UoWFactory:  app.uowFactory,
		Outbox:      outbox.NewBuffered(queue),
		Encoder:     outbox.JSONEventEncoder{},
		Clock:       clk,
		Images:      images,
		Idempotency: idempotency,
		Validator:   validator,
		Logger:      logger,
	})
	authService := &auth.Service{
		UoWFactory:  app.uowFactory,
		Passwords:   security.BcryptHasher{},
		Tokens:      codec,
		Revocations: revocations,
		TokenTTL:    cfg.JWTTTL,
		Clock:       clk,
		Logger:      logger,
	}

	app.handlers = ginserver.Handlers{
		Booking:      ginserver.BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Listing:      ginserver.ListingHandler{Queries: buses.Queries, Logger: logger},
		HostListing:  ginserver.HostListingHandler{Commands: buses.Commands, Queries: buses.Queries, MaxImageBytes: cfg.MaxUploadBytes, Logger: logger},
		Availability: ginserver.AvailabilityHandler{Queries: buses.Queries, Logger: logger},
		Reviews:      ginserver.ReviewsHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Auth:         ginserver.AuthHandler{Service: authService, Logger: logger},
		Me:           ginserver.MeHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Middleware:   ginserver.AuthMiddleware{Service: authService, Logger: logger},
		RateLimiter:  ginserver.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger),
	}
	return app, nil
}
