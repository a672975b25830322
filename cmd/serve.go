package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/satseg/internal/metrics"
	"github.com/desertthunder/satseg/internal/server"
	"github.com/desertthunder/satseg/internal/shared"
	"github.com/desertthunder/satseg/internal/tasks"
	"github.com/desertthunder/satseg/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web front end until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = port
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d", shared.ErrInvalidFlag, cfg.Port)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := r.newRouter(ctx, cfg)
	addr := cfg.Addr()
	url := fmt.Sprintf("http://%s/", addr)

	r.writePlain("→ Serving on %s (segmentation service: %s)\n", url, r.config.Segmentation.ServerURL)

	if cmd.Bool("open") {
		go func() {
			time.Sleep(100 * time.Millisecond)
			if err := shared.OpenBrowser(url); err != nil {
				r.logger.Warnf("failed to open browser automatically %v", err)
				r.writePlain("⚠ Could not open browser automatically. Please open %s\n", url)
			}
		}()
	}

	return server.Serve(ctx, addr, router, r.logger)
}

// newRouter wires the page handler, health and metrics endpoints behind the middleware stack.
//
// All visitors share one controller, so the page is single-user: a new upload from any
// browser replaces the panels for everyone.
func (r *Runner) newRouter(ctx context.Context, cfg shared.ServerConfig) http.Handler {
	controller := tasks.NewController(tasks.ControllerOpts{
		Segmenter: r.segmenter,
		Logger:    shared.WithLogger(r.logger, "component", "controller"),
	})
	handler := web.NewHandler(web.HandlerOpts{
		Context:        ctx,
		Controller:     controller,
		Logger:         r.logger,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	router := server.NewBasicRouter()
	router.Use(server.RequestID, server.Logging(r.logger), server.Recover(r.logger), metrics.Middleware)
	router.Handler(handler)
	router.HandleFunc(http.MethodGet, "/healthz", server.Health)
	router.Handle(http.MethodGet, "/metrics", metrics.Handler())
	return router
}
