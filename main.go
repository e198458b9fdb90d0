package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/danielhkuo/goose-tap/auth"
	"github.com/danielhkuo/goose-tap/cliparse"
	"github.com/danielhkuo/goose-tap/db"
	"github.com/danielhkuo/goose-tap/game"
	"github.com/danielhkuo/goose-tap/metrics"
	"github.com/danielhkuo/goose-tap/middleware"
	"github.com/danielhkuo/goose-tap/ratelimit"
	"github.com/danielhkuo/goose-tap/router"
	"github.com/danielhkuo/goose-tap/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	slog.SetDefault(newLogger())

	// .env is optional; real environment variables win
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire components
	st := store.New(dbConn)
	m := metrics.New()
	rules := cfg.Rules()
	limiter := ratelimit.New(cfg.TapsPerSecond)
	go limiter.Run(ctx)

	mux := router.NewRouter(router.Deps{
		DB:      dbConn,
		Auth:    auth.NewService(st, cfg.Auth()),
		Rounds:  game.NewService(st, rules, game.WithRecorder(m)),
		Engine:  game.NewEngine(st, rules, game.WithRecorder(m)),
		Limiter: limiter,
		Metrics: m,
	})

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(cfg.FrontendURL, mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port,
		"round_duration", rules.RoundDuration,
		"bonus_divisor", rules.BonusDivisor,
		"taps_per_second", cfg.TapsPerSecond,
	)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

// newLogger builds the process logger from LOG_FORMAT (json or text) and
// LOG_LEVEL (debug, info, warn, error).
func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
