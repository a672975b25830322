package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/satseg/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if r.configPath == "" {
		return fmt.Errorf("%w: --config path", shared.ErrMissingArgument)
	}

	r.logger.Info("creating config file from template", "path", r.configPath)
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.writePlain("✓ Config written to %s\n", r.configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set segmentation.server_url in %s, or SERVER_URL in .env\n", r.configPath)
	r.writePlain("2. Run 'satseg health' to check the service is reachable\n")
	return nil
}

// SetupEnv writes a .env file holding the current segmentation base URL.
func (r *Runner) SetupEnv(ctx context.Context, cmd *cli.Command) error {
	path := r.envFile
	if path == "" {
		return fmt.Errorf("%w: --env-file path", shared.ErrMissingArgument)
	}

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, path)
	}

	env := map[string]string{shared.ServerURLEnv: r.config.Segmentation.ServerURL}
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}

	r.logger.Info("env file written", "path", path)
	return r.writePlain("✓ %s=%s written to %s\n", shared.ServerURLEnv, r.config.Segmentation.ServerURL, path)
}
