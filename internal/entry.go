// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/chefknight/internal/api"
	"github.com/starford/chefknight/internal/mcpserver"
	"github.com/starford/chefknight/internal/sse"
	"github.com/starford/chefknight/internal/storage"
	"github.com/starford/chefknight/internal/watch"
	"github.com/starford/chefknight/internal/wikiservice"
)

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// Run starts the HTTP server, the content watcher and the event broker, and
// blocks until ctx is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_root", cfg.Content.Root),
		slog.String("git_remote", cfg.Git.Remote),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	st, err := buildStack(cfg, logger, broker)
	if err != nil {
		return err
	}
	defer st.Close()

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: newHTTPHandler(cfg, st.svc, st.store, broker),
	}

	g, gCtx := errgroup.WithContext(ctx)

	// File watcher feeding the SSE broker.
	g.Go(func() error {
		err := watch.Watch(gCtx, cfg.Content.Root, logger, func(kind, category, stem string) {
			broker.PublishContentEvent(kind, category, stem)
		})
		if err != nil {
			logger.Warn("watcher unavailable", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// newHTTPHandler builds the root router: health checks, /api, static files.
func newHTTPHandler(cfg *Config, svc *wikiservice.Service, store storage.Provider, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.CORS(cfg.CORS.AllowedOrigins))

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := store.ListDirs(); err != nil {
			writeHealth(w, http.StatusServiceUnavailable, "content root unavailable")
			return
		}
		writeHealth(w, http.StatusOK, "ok")
	})

	var events http.Handler
	if broker != nil {
		events = broker
	}
	r.Mount("/api", api.NewRouter(svc, events))

	static := api.NewStaticHandler(cfg.Static.Dir)
	if static.Available() {
		static.Mount(r)
	}
	return r
}

func writeHealth(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config, os.Stderr)
	slog.SetDefault(logger)

	st, err := buildStack(app.config, logger, nil)
	if err != nil {
		return err
	}
	defer st.Close()

	return mcpserver.New(st.svc, app.config.App.Version).ServeStdio()
}

// Operation is a one-shot command over the wiki service. It returns the
// value to print.
type Operation func(ctx context.Context, svc *wikiservice.Service) any

// StatusOperation reports the status snapshot.
func StatusOperation() Operation {
	return func(ctx context.Context, svc *wikiservice.Service) any { return svc.Status(ctx) }
}

// PullOperation pulls from the remote.
func PullOperation() Operation {
	return func(ctx context.Context, svc *wikiservice.Service) any { return svc.Pull(ctx) }
}

// PushOperation commits and pushes with message.
func PushOperation(message string) Operation {
	return func(ctx context.Context, svc *wikiservice.Service) any { return svc.Push(ctx, message) }
}

// Exec runs op once and prints its result as indented JSON. Logs go to
// stderr so the output stays machine readable.
func Exec(ctx context.Context, op Operation, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config, os.Stderr)

	st, err := buildStack(app.config, logger, nil)
	if err != nil {
		return err
	}
	defer st.Close()

	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(op(ctx, st.svc))
}
