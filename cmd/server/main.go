package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/mailtrace/internal/config"
	"github.com/ignite/mailtrace/internal/dashboard"
	"github.com/ignite/mailtrace/internal/mailer"
	"github.com/ignite/mailtrace/internal/pkg/logger"
	"github.com/ignite/mailtrace/internal/tracking"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactEnabled())

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	defer db.Close()

	ctx := context.Background()

	store := tracking.NewStore(db)
	if err := store.Init(ctx); err != nil {
		logger.Error("schema init failed", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, live counters disabled", "addr", cfg.Redis.Addr, "error", err)
			redisClient = nil
		}
	}
	live := tracking.NewLiveCounters(redisClient)

	composer, err := mailer.NewComposer(
		cfg.Tracking.BaseURL,
		cfg.Tracking.DestinationURL,
		cfg.SMTP.FromName,
		cfg.Campaign.Subject,
	)
	if err != nil {
		logger.Error("template parse failed", "error", err)
		os.Exit(1)
	}

	// The batch goes out once, at startup. The server then stays up to
	// collect opens, clicks, and engagement pings.
	if len(cfg.Campaign.Recipients) > 0 {
		dispatcher := mailer.NewDispatcher(cfg.SMTP, composer, store)
		res, err := dispatcher.SendBatch(ctx, cfg.Campaign.Recipients)
		if err != nil {
			logger.Error("batch send failed", "error", err)
			os.Exit(1)
		}
		logger.Info("batch complete", "sent", res.Sent, "failed", res.Failed)
		logBatchRecords(ctx, store)
	} else {
		logger.Info("no recipients configured, skipping batch send")
	}

	trackHandler := tracking.NewHandler(store, live)
	dashHandler := dashboard.NewHandler(store)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Mount("/dashboard", dashHandler.Routes())
	r.Mount("/", trackHandler.Routes())

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("tracking server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// logBatchRecords logs one line per stored tracking row so the batch
// state is inspectable straight from the logs.
func logBatchRecords(ctx context.Context, store *tracking.Store) {
	records, err := store.ListRecords(ctx)
	if err != nil {
		logger.Error("record listing failed", "error", err)
		return
	}
	for _, rec := range records {
		logger.Info("tracking record",
			"id", rec.ID,
			"email", rec.Email,
			"token", rec.TrackingToken,
			"sent_at", rec.SentAt.Format(time.RFC3339),
		)
	}
}
