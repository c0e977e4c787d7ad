package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/actions"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/config"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/logger"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/metrics"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/mail"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/scheduler"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/storage"
)

// persistence is what the server needs from its storage backend
type persistence interface {
	actions.Persistence
	scheduler.StaleOrderLister
	Pinger
}

// app holds the wired components and the resources to release on shutdown
type app struct {
	server    *Server
	scheduler *scheduler.Scheduler
	closers   []io.Closer
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Warn("failed to release resource", "error", err)
		}
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (persistence, io.Closer, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		return storage.NewMemoryStore(), nil, nil
	}

	db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewPostgresStore(db), db, nil
}

func openMailer(ctx context.Context, cfg *config.Config) (mail.Mailer, io.Closer, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, emails are logged only")
		return mail.LogMailer{}, nil, nil
	}

	client, err := mail.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return mail.NewRedisOutbox(client, cfg.MailQueue), client, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	store, closer, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	mailer, closer, err := openMailer(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open mail outbox: %w", err)
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	dispatcher, err := actions.NewDispatcher(store, mailer)
	if err != nil {
		a.Close()
		return nil, err
	}

	collector := metrics.NewCollector()
	engine, err := rules.NewEngine(rules.NewInMemoryRuleStore(), dispatcher,
		rules.WithDefaultRules(),
		rules.WithRecorder(collector),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.RulesFile != "" {
		if err := seedRules(engine, cfg.RulesFile); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.scheduler, err = scheduler.New(engine, cfg.ScheduleSpec,
		scheduler.NewStaleOrderSource(store, cfg.StalePendingAfter),
		scheduler.WithTickTimeout(5*time.Minute),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.server = NewServer(engine, store, collector)
	return a, nil
}

// seedRules adds the rules of a YAML file after the defaults
func seedRules(engine *rules.Engine, path string) error {
	loaded, err := rules.LoadFile(path)
	if err != nil {
		return err
	}
	for _, rule := range loaded {
		if _, err := engine.AddRule(rule); err != nil {
			return fmt.Errorf("rules file %s: rule %q: %w", path, rule.Name, err)
		}
	}
	logger.Info("rules seeded from file", "path", path, "count", len(loaded))
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	if err := logger.Configure(cfg.LogLevel); err != nil {
		logger.Warn("invalid LOG_LEVEL, keeping default", "error", err)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := newApp(startCtx, cfg)
	cancelStart()
	if err != nil {
		logger.Fatal("failed to start", "error", err)
	}
	defer a.Close()

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()
	a.scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := a.scheduler.Stop(ctx); err != nil {
		logger.Error("scheduler shutdown error", "error", err)
	}
	if err := logger.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", err)
	}
}
