package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devregistry/config"
	"devregistry/db"
	handler "devregistry/http"
	"devregistry/metrics"
	"devregistry/mirror"
	"devregistry/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}

	logger := log.StandardLogger()
	logger.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("opening store")
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	developers := service.NewDeveloperService(store, mirror.New(cfg.MirrorPath),
		service.WithRecorder(m), service.WithLogger(logger))

	router := handler.NewRouter(handler.New(developers, logger), handler.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        m,
		Gatherer:       registry,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("shutting down server")
		}
	}()

	logger.WithFields(log.Fields{"addr": cfg.Addr, "store": cfg.StoreDriver, "mirror": cfg.MirrorPath}).
		Info("starting server")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("server stopped")
	}
}

func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	if cfg.StoreDriver == config.DriverSQLite {
		return db.OpenSQLite(cfg.SQLitePath)
	}

	// the database container may still be starting
	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		conn, err := db.GetConnection(ctx, cfg.DatabaseURL, cfg.MaxConnections)
		if err == nil {
			store := db.NewPgStore(conn)
			if err := store.EnsureSchema(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return store, nil
		}
		lastErr = err
		log.WithError(err).WithField("attempt", attempt).Warn("database not ready")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, lastErr
}
