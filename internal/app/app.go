// Package app wires configuration, stores, services and the HTTP server
// into a runnable process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"dropzone/internal/config"
	"dropzone/internal/database"
	"dropzone/internal/handlers"
	"dropzone/internal/repositories"
	"dropzone/internal/services"
	"dropzone/internal/workers"
	"dropzone/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 10 * time.Second

// App is a fully wired instance of the store backend.
type App struct {
	Config   *config.Config
	Products *services.ProductService
	Carts    *services.CartService
	Auth     *services.AuthService
	Server   *fiber.App

	log     *slog.Logger
	mq      *rabbitmq.Client
	closers []func(context.Context) error
}

// stores is the set of repositories selected by configuration.
type stores struct {
	products repositories.ProductRepository
	carts    repositories.CartRepository
	otps     repositories.OTPRepository
	sessions repositories.SessionRepository
	pings    []handlers.Pinger
}

// New opens the configured stores and the optional event broker, and builds
// the services and HTTP server on top of them. Call Close to release what
// New opened.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{Config: cfg, log: log}

	st, err := a.openStores(ctx)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	// A nil *rabbitmq.Client must not be stored in the interface.
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(
			rabbitmq.Config{URL: cfg.RabbitMQURL},
			log,
			rabbitmq.Binding{Queue: workers.OTPDeliveryQueue, RoutingKey: services.EventOTPRequested},
		)
		if err != nil {
			log.Warn("rabbitmq unavailable, events disabled", "error", err)
		} else {
			a.mq = mq
			events = mq
			a.closers = append(a.closers, func(context.Context) error { return mq.Close() })
		}
	}

	a.Products = services.NewProductService(st.products, cfg.ProductListLimit)
	a.Carts = services.NewCartService(st.carts, st.products, events, cfg.CartMaxAttempts)
	a.Auth = services.NewAuthService(st.otps, st.sessions, events, services.AuthConfig{
		DemoCode:  cfg.OTPDemoCode,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.SessionTTL,
	})

	a.Server = NewServer(ServerOptions{
		Log:         log,
		Products:    a.Products,
		Carts:       a.Carts,
		Auth:        a.Auth,
		Driver:      cfg.DBDriver,
		Ping:        pingAll(st.pings),
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   os.Stdout,
	})

	if cfg.SeedOnStart {
		res, err := a.Products.Seed(ctx)
		if err != nil {
			_ = a.Close(context.Background())
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		log.Info("catalog seed on start", "seeded", res.Seeded, "count", res.Count)
	}

	return a, nil
}

func (a *App) openStores(ctx context.Context) (*stores, error) {
	cfg := a.Config
	st := &stores{}

	switch cfg.DBDriver {
	case "mongo":
		client, db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)
		if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
			return nil, err
		}
		st.products = repositories.NewMongoProductRepository(db)
		st.carts = repositories.NewMongoCartRepository(db)
		st.otps = repositories.NewMongoOTPRepository(db)
		st.sessions = repositories.NewMongoSessionRepository(db)
		st.pings = append(st.pings, func(ctx context.Context) error { return client.Ping(ctx, nil) })
	default:
		db, err := database.OpenGORM(cfg.DBDriver, cfg.DSN())
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })
		st.products = repositories.NewGORMProductRepository(db)
		st.carts = repositories.NewGORMCartRepository(db)
		st.otps = repositories.NewGORMOTPRepository(db)
		st.sessions = repositories.NewGORMSessionRepository(db)
		st.pings = append(st.pings, sqlDB.PingContext)
	}

	if cfg.OTPStore == "redis" {
		rdb, err := database.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		st.otps = repositories.NewRedisOTPRepository(rdb)
		st.pings = append(st.pings, func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	a.log.Info("stores opened", "driver", cfg.DBDriver, "otp_store", cfg.OTPStore)
	return st, nil
}

func pingAll(pings []handlers.Pinger) handlers.Pinger {
	return func(ctx context.Context) error {
		var errs []error
		for _, p := range pings {
			if err := p(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// Run starts the event consumers and serves HTTP until ctx is cancelled,
// then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.mq != nil {
		delivery := workers.NewOTPDelivery(workers.LogSender{Log: a.log}, a.log)
		if err := a.mq.Consume(workers.OTPDeliveryQueue, delivery.Handle); err != nil {
			a.log.Warn("otp delivery consumer not started", "error", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", "addr", a.Config.AppPort)
		errCh <- a.Server.Listen(a.Config.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.log.Info("server gracefully stopped")
	return nil
}

// Close releases stores and the broker connection in reverse order of
// opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
