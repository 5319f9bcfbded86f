package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark-c-hall/movie-trivia/internal/catalog"
	"github.com/mark-c-hall/movie-trivia/internal/config"
	"github.com/mark-c-hall/movie-trivia/internal/handler"
	"github.com/mark-c-hall/movie-trivia/internal/moviedb"
	"github.com/mark-c-hall/movie-trivia/internal/source"
	"github.com/mark-c-hall/movie-trivia/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Telemetry.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}

	db, err := moviedb.Load(ctx, source.NewClient(*cfg), cfg.Data.CastLocation, cfg.Data.RatingsLocation)
	if err != nil {
		log.Fatalf("failed to load movie data: %v", err)
	}
	logger.Info("movie data loaded",
		"actors", len(db.Actors),
		"movies", len(db.Movies),
		"cast_file", cfg.Data.CastLocation,
		"ratings_file", cfg.Data.RatingsLocation,
	)

	c, err := catalog.New(db, tel.Tracer(), tel.Meter())
	if err != nil {
		log.Fatalf("failed to initialize catalog: %v", err)
	}

	h, err := handler.NewHandler(ctx, c, tel.MetricsHandler(), cfg.Server, logger)
	if err != nil {
		log.Fatalf("failed to initialize handler: %v", err)
	}

	srv := http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(timeoutCtx); err != nil {
		logger.Error("shutdown did not complete cleanly", "error", err)
	}
	if err := tel.Shutdown(timeoutCtx); err != nil {
		logger.Error("telemetry shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
