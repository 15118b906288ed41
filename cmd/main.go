package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/sift/internal/services"
	"github.com/desertthunder/sift/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func main() {
	logger := shared.NewLogger(nil)

	configPath := shared.ResolveConfigPath("")
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("failed to parse %s, using defaults: %v", configPath, err)
		}
	}
	config.ApplyEnv()

	var service services.Service
	if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
		svc.SetPageSizes(config.Scan.PlaylistPageSize, config.Scan.TrackPageSize)
		service = svc
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Service:    service,
		Logger:     logger,
		Output:     os.Stdout,
	})

	app := &cli.Command{
		Name:     "sift",
		Usage:    "Scan your Spotify library and rank the artists behind it",
		Version:  version,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}

		logger.Fatalf("application error: %v", err)
	}
}
