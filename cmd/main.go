package main

import (
	"context"
	"os"

	"github.com/desertthunder/satseg/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// app builds the root command with the global flags shared by every subcommand.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "satseg",
		Usage:   "Upload satellite images to a segmentation service and view the returned masks",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file providing SERVER_URL",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "server-url",
				Usage: "Base URL of the segmentation service (overrides config and SERVER_URL)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}
