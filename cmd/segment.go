package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/satseg/internal/formatter"
	"github.com/desertthunder/satseg/internal/shared"
	"github.com/desertthunder/satseg/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Segment reads one image, sends it to the segmentation service and exports the mask.
//
// Without --output, text formats go to stdout and raw masks are saved as <image>_mask<ext>.
// Existing files are only replaced with --force.
func (r *Runner) Segment(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: image file path", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	state, err := r.runPipeline(ctx, tasks.LocalFile{Path: path})
	if err != nil {
		return err
	}

	result := formatter.Result{Satellite: state.Satellite, Mask: state.Mask}
	output := cmd.String("output")
	pretty := cmd.Bool("pretty")

	if output == "" && format != formatter.FormatRaw {
		data, err := formatter.Export(result, format, pretty)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if format == formatter.FormatJSON {
			return r.writePlain("\n")
		}
		return nil
	}

	written, err := formatter.WriteExport(result, format, output, formatter.WriteOptions{
		Pretty:    pretty,
		Overwrite: cmd.Bool("force"),
	})
	if err != nil {
		return err
	}

	r.logger.Info("mask exported", "path", written, "format", format)
	return r.writePlain("✓ Mask written to %s (%s)\n", written, shared.FormatBytes(state.Mask.Size()))
}

// runPipeline drives a controller through one selection and returns its final state.
//
// Phase changes are logged as they happen; a failed run becomes an error carrying the display message.
func (r *Runner) runPipeline(ctx context.Context, file tasks.FileHandle) (tasks.State, error) {
	progress := make(chan tasks.ProgressUpdate, 8)
	controller := tasks.NewController(tasks.ControllerOpts{
		Segmenter: r.segmenter,
		Logger:    shared.WithLogger(r.logger, "run_id", shared.GenerateID()),
		Progress:  progress,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "seq", update.Seq)
		}
	}()

	controller.Run(ctx, controller.Select(file))
	close(progress)
	wg.Wait()

	state := controller.State()
	if state.Phase != tasks.HasMask {
		return state, fmt.Errorf("segmentation of %s failed: %s", file.Name(), state.Err)
	}
	return state, nil
}
