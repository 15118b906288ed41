package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/sift/internal/server"
	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
	"github.com/urfave/cli/v3"
)

// Serve runs the local read-only stats API over the latest stored scan.
//
// The snapshot is re-read per request, so a scan finishing in another
// terminal shows up without a restart.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	if _, err := r.database(); err != nil {
		return err
	}

	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}

	source := func() (*stats.Snapshot, error) {
		scan, err := r.scans.GetLatest()
		if err != nil {
			return nil, err
		}
		if scan == nil {
			return nil, shared.ErrNoSnapshot
		}
		return stats.ParseSnapshot([]byte(scan.Snapshot()))
	}

	handler := server.NewStatsHandler(source, r.logger)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("serving stats API at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	r.writePlain("Serving library stats at http://%s\n", serverAddr)
	for _, route := range handler.Routes() {
		r.writePlain("  %s\n", route)
	}
	r.writePlain("Press Ctrl+C to stop\n")

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	r.writePlain("\n✓ Server stopped\n")
	return nil
}

// serveCommand handles the local stats API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the latest snapshot over a local read-only API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: r.Serve,
	}
}
