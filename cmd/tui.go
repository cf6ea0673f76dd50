package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/desertthunder/moodtune/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal client.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	closeJournal := r.openJournal()
	defer closeJournal()

	bridge := ui.NewBridge()
	ctrl := r.newController(bridge, true)
	ctrl.Start(ctx)
	defer ctrl.Stop()
	defer r.saveSession()

	if err := ui.Run(ctx, ctrl, bridge); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
