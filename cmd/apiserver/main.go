// apiserver hosts the report API over the normalized model.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ipfolio/patmaint/internal/config"
	cache "github.com/ipfolio/patmaint/internal/infrastructure/cache/redis"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres"
	"github.com/ipfolio/patmaint/internal/infrastructure/database/postgres/repositories"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/ipfolio/patmaint/internal/interfaces/http"
	"github.com/ipfolio/patmaint/internal/interfaces/http/handlers"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	log.Info("starting patmaint api server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)

	conn, err := postgres.NewConnection(cfg.Database, log)
	if err != nil {
		log.Fatal("database connection failed", logging.Err(err))
	}
	defer conn.Close()

	checkers := []handlers.HealthChecker{
		handlers.CheckFunc("database", conn.HealthCheck),
	}

	var reportCache handlers.ReportCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewReportCache(cfg.Redis, log)
		if err != nil {
			// The cache is an optimization; reports still work without it.
			log.Warn("report cache unavailable, continuing without it", logging.Err(err))
		} else {
			defer rc.Close()
			reportCache = rc
			checkers = append(checkers, handlers.CheckFunc("cache", rc.Ping))
		}
	}

	metrics := prometheus.New(nil) // nil registers on the default registry
	reporter := repositories.NewReporter(conn, cfg.Pipeline.ExpiryTermYears, log)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Mode:          cfg.Server.Mode,
		ReportHandler: handlers.NewReportHandler(reporter, reportCache, metrics, log),
		HealthHandler: handlers.NewHealthHandler(version, checkers...),
		Logger:        log,
	})
	srv := httpserver.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal("http server failed", logging.Err(err))
	case sig := <-stop:
		log.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("shutdown failed", logging.Err(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}
