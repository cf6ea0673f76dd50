package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/desertthunder/moodtune/internal/web"
	"github.com/urfave/cli/v3"
)

// Render writes an HTML snapshot of the signed-in view.
func (r *Runner) Render(ctx context.Context, cmd *cli.Command) error {
	section := controller.Section(cmd.String("section"))
	if !slices.Contains(controller.Sections(), section) {
		return fmt.Errorf("%w: unknown section %q", shared.ErrInvalidArgument, section)
	}

	ctrl, _, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	if emotion := cmd.String("emotion"); emotion != "" {
		if _, err := r.step(ctx, ctrl, controller.Recommend{Emotion: emotion}); err != nil {
			return err
		}
	}

	s, err := r.step(ctx, ctrl, controller.Navigate{To: section})
	if err != nil {
		return err
	}

	output := cmd.String("output")
	snapshot := web.NewSnapshot(output, r.logger)
	if err := snapshot.Write(s); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	r.writePlain("✓ Wrote %s view to %s\n", section, output)

	if cmd.Bool("open") {
		abs, err := filepath.Abs(output)
		if err != nil {
			return err
		}
		return r.browser.Open("file://" + filepath.ToSlash(abs))
	}
	return nil
}
