// Command server runs the Gold360 back-office HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/gold360/backoffice/internal/app"
	"github.com/gold360/backoffice/internal/app/auth"
	"github.com/gold360/backoffice/internal/app/httpapi"
	"github.com/gold360/backoffice/internal/app/storage/postgres"
	"github.com/gold360/backoffice/internal/config"
	"github.com/gold360/backoffice/internal/platform/cache"
	"github.com/gold360/backoffice/internal/platform/database"
	"github.com/gold360/backoffice/internal/platform/migrations"
	"github.com/gold360/backoffice/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML config file overriding environment values")
	flag.Parse()

	log := logger.NewDefault("server")

	if err := run(*configPath, log); err != nil {
		log.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run(configPath string, log *logger.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores := app.Stores{}
	opts := httpapi.Options{
		Tokens:        cfg.Auth.Tokens,
		AuditMax:      cfg.Audit.Max,
		AuditFilePath: cfg.Audit.FilePath,
		RateRPS:       cfg.Rate.RPS,
		RateBurst:     cfg.Rate.Burst,
	}

	if cfg.Database.DSN != "" {
		db, err := database.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrations.Apply(ctx, db); err != nil {
			return err
		}

		store := postgres.New(db)
		stores = app.Stores{
			Products:   store,
			Warehouses: store,
			Inventory:  store,
			Customers:  store,
			Orders:     store,
			Transfers:  store,
			Shipments:  store,
			Loyalty:    store,
		}
		opts.AuditDB = db
		log.Info("using postgres storage")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	if cfg.Auth.Secret != "" {
		users, err := cfg.AuthUsers()
		if err != nil {
			return err
		}
		manager, err := auth.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL, users)
		if err != nil {
			return err
		}
		opts.Auth = manager
	} else {
		log.Warn("AUTH_SECRET not set, login disabled")
	}

	application, err := app.New(stores, log, app.WithLoyaltySchedule(cfg.Loyalty.ExpirySchedule))
	if err != nil {
		return err
	}

	if cfg.Redis.Addr != "" {
		productCache, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.TTL, log)
		if err != nil {
			return err
		}
		defer productCache.Close()
		application.Catalog.WithCache(productCache)
		log.WithField("addr", cfg.Redis.Addr).Info("product cache enabled")
	}

	handler, err := httpapi.NewRootHandler(application, opts)
	if err != nil {
		return err
	}

	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := application.Stop(stopCtx); err != nil {
			log.WithError(err).Warn("stopping services")
		}
	}()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
