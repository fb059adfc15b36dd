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

	"golang.org/x/sync/errgroup"

	"visitorreg/internal/platform/config"
	"visitorreg/internal/platform/httpserver"
	"visitorreg/internal/platform/logger"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("visitorreg stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close(log)

	log.Info("starting http server",
		"addr", cfg.Server.Addr,
		"postgres", app.persistent,
		"redis_cache", app.cached,
		"audit_stream", app.worker != nil,
	)
	if err := serve(ctx, httpserver.New(cfg.Server.Addr, app.router), app, cfg.Server.ShutdownTimeout, log); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// serve runs srv and the audit stream worker until ctx is cancelled or the
// server fails. The outbox is closed once Shutdown returns, after which the
// worker publishes what is left and exits. When Shutdown fails, handlers may
// still be sending, so the worker is cancelled instead and drains the buffer.
func serve(ctx context.Context, srv server, app *application, shutdownTimeout time.Duration, log *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	workerCtx, stopWorker := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorker()

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if err == nil && app.outbox != nil {
			close(app.outbox)
		} else {
			stopWorker()
		}
		return err
	})

	if app.worker != nil {
		g.Go(func() error {
			return app.worker.Run(workerCtx)
		})
	}

	return g.Wait()
}
