package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/satseg/internal/shared"
	"github.com/desertthunder/satseg/internal/tasks"
	"github.com/desertthunder/satseg/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.segmenter == nil {
		return fmt.Errorf("%w: segmentation service not initialized", shared.ErrServiceUnavailable)
	}

	dir := cmd.String("dir")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: --dir %q is not a directory", shared.ErrInvalidFlag, dir)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	controller := tasks.NewController(tasks.ControllerOpts{Segmenter: r.segmenter, Logger: fileLogger})
	model := ui.NewModel(ctx, controller, dir)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
