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

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/logging"
	"github.com/spacesedan/reviewlens/internal/pipeline"
	"github.com/spacesedan/reviewlens/internal/sentiment"
	"github.com/spacesedan/reviewlens/internal/session"
	"github.com/spacesedan/reviewlens/internal/web"
)

func main() {
	config.LoadEnv(config.Env())
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, closeSessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		slog.Error("[Main] Failed to initialize session store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeSessions()

	p := pipeline.New(pipeline.Options{
		Username:     cfg.Username,
		Password:     cfg.Password,
		ReviewColumn: cfg.ReviewField,
		ReportTitle:  cfg.ReportTitle,
		MaxWords:     cfg.MaxWords,
		Scorer:       sentiment.NewVaderScorer(),
	})

	srv, err := web.NewServer(p, sessions, web.ServerOptions{SecureCookie: cfg.SessionCookieSecure})
	if err != nil {
		slog.Error("[Main] Failed to build server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("[Main] Listening",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("env", cfg.Env),
			slog.String("session_backend", cfg.SessionBackend))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
			stopChan <- syscall.SIGTERM
		}
	}()

	<-stopChan
	slog.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Shutdown failed", slog.String("error", err.Error()))
	}
}

func newSessionStore(ctx context.Context, cfg config.Config) (session.Store[pipeline.Session], func(), error) {
	if cfg.SessionBackend != config.SESSION_BACKEND_VALKEY {
		return session.NewMemoryStore[pipeline.Session](cfg.SessionTTL), func() {}, nil
	}

	var (
		client valkey.Client
		err    error
	)
	for i := 0; i < 3; i++ {
		client, err = session.NewValkeyClient(ctx, session.ValkeyOptions{
			Address:  cfg.ValkeyAddr,
			Password: cfg.ValkeyPassword,
			TLS:      cfg.ValkeyTLS,
		})
		if err == nil {
			break
		}
		slog.Warn("Valkey init failed, retrying...", slog.String("error", err.Error()))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, err
	}

	return session.NewValkeyStore[pipeline.Session](client, cfg.SessionTTL), client.Close, nil
}
