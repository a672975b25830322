// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// segmentCommand runs one image through the segmentation service
func segmentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "segment",
		Usage: "Upload an image and save or print the returned mask",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "file",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (raw exports default to <image>_mask<ext>)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: raw, json, markdown or txt",
				Value:   "raw",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing output file",
			},
		},
		Action: r.Segment,
	}
}

// serveCommand starts the web front end
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the upload page and result panels over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (defaults to server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the page in the default browser",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the terminal interface
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory the file picker starts in",
				Value: ".",
			},
		},
		Action: r.TUI,
	}
}

// setupCommand writes starter configuration files
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create configuration files",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the example config to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:  "env",
				Usage: "Write a .env file with SERVER_URL to the --env-file path",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupEnv,
			},
		},
	}
}

// healthCommand checks that the segmentation service answers
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check that the segmentation service is reachable",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Health,
	}
}
