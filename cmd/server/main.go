/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the bill tracker server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config file (optional) and apply flag overrides
  2. Initialize logger
  3. Open SQLite store
  4. Create billing service, API handler and router
  5. Start reminder scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config     INI config file (optional)
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: bills.db)
              Use ":memory:" for an in-memory database
  -driver     sqlite3 (cgo) or sqlite (pure Go)
  -soon-days  Default due-soon window for the dashboard
  -static     Directory with the built web app
  -log-level  debug, info, warn, error

Flags set on the command line override the config file.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the reminder scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/bill-tracker/api"
	"github.com/warp/bill-tracker/billing"
	"github.com/warp/bill-tracker/config"
	"github.com/warp/bill-tracker/logger"
	"github.com/warp/bill-tracker/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "INI config file")
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	driver := flag.String("driver", "", "SQLite driver: sqlite3 or sqlite")
	soonDays := flag.Int("soon-days", -1, "Default due-soon window in days")
	staticDir := flag.String("static", "", "Directory with the built web app")
	logLevel := flag.String("log-level", "", "Log level")
	flag.Parse()

	cfg, err := config.Read(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "db":
			cfg.Storage.Path = *dbPath
		case "driver":
			cfg.Storage.Driver = *driver
		case "soon-days":
			cfg.Dashboard.SoonDays = *soonDays
		case "static":
			cfg.Server.StaticDir = *staticDir
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	// Initialize store
	store, err := sqlite.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	svc := billing.NewService(store, billing.WithLogger(log))
	handler := api.NewHandler(svc, cfg.Dashboard.SoonDays, log)
	router := api.NewRouter(handler, cfg.Server.StaticDir)

	scheduler := api.NewReminderScheduler(svc, log)
	scheduler.Enabled = cfg.Reminders.Enabled
	if interval, err := cfg.ReminderInterval(); err == nil {
		scheduler.CheckInterval = interval
	}
	scheduler.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("db", cfg.Storage.Path).
			Str("driver", cfg.Storage.Driver).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
