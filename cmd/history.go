package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/formatter"
	"github.com/desertthunder/moodtune/internal/tasks"
	"github.com/urfave/cli/v3"
)

// dashboard restores the session and returns the loaded dashboard. The session check loads it on sign-in.
func (r *Runner) dashboard(ctx context.Context, cmd *cli.Command) (controller.DashboardState, error) {
	if cmd.IsSet("limit") {
		switch cmd.Name {
		case "most-played":
			r.config.Dashboard.MostPlayedLimit = cmd.Int("limit")
		default:
			r.config.Dashboard.HistoryLimit = cmd.Int("limit")
		}
	}

	ctrl, s, err := r.session(ctx, nil)
	if err != nil {
		return controller.DashboardState{}, err
	}
	defer ctrl.Stop()

	if err := raised(controller.State{}, s); err != nil {
		return s.Dashboard, err
	}
	return s.Dashboard, nil
}

// HistoryEmotions prints recent emotion captures.
func (r *Runner) HistoryEmotions(ctx context.Context, cmd *cli.Command) error {
	d, err := r.dashboard(ctx, cmd)
	if err != nil {
		return err
	}
	if len(d.EmotionHistory) == 0 && cmd.String("format") != formatter.FormatJSON {
		return r.writePlain("No emotion history yet.\n")
	}
	return r.writeTable(formatter.EmotionHistoryTable(d.EmotionHistory), cmd.String("format"))
}

// HistoryListening prints recently played songs.
func (r *Runner) HistoryListening(ctx context.Context, cmd *cli.Command) error {
	d, err := r.dashboard(ctx, cmd)
	if err != nil {
		return err
	}
	if len(d.ListeningHistory) == 0 && cmd.String("format") != formatter.FormatJSON {
		return r.writePlain("No listening history yet.\n")
	}
	return r.writeTable(formatter.ListeningHistoryTable(d.ListeningHistory), cmd.String("format"))
}

// MostPlayed prints the songs with the most plays.
func (r *Runner) MostPlayed(ctx context.Context, cmd *cli.Command) error {
	d, err := r.dashboard(ctx, cmd)
	if err != nil {
		return err
	}
	if len(d.MostPlayed) == 0 && cmd.String("format") != formatter.FormatJSON {
		return r.writePlain("No songs played yet.\n")
	}
	return r.writeTable(formatter.MostPlayedTable(d.MostPlayed), cmd.String("format"))
}

// Stats prints the emotion distribution.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	d, err := r.dashboard(ctx, cmd)
	if err != nil {
		return err
	}
	if d.Stats.TotalCaptures == 0 && cmd.String("format") != formatter.FormatJSON {
		return r.writePlain("No captures yet.\n")
	}
	return r.writeTable(formatter.StatsTable(d.Stats), cmd.String("format"))
}

// Export writes favorites, histories and stats to an output directory.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	ctrl, _, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	ctrl.Stop()

	opts := tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		Limit:      cmd.Int("limit"),
		Sections:   cmd.StringSlice("section"),
	}

	r.logger.Info("starting export", "format", opts.Format, "sections", opts.Sections)

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Debug("export progress", "phase", update.Phase, "step", update.Step, "total", update.Total)
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := tasks.NewExporter(r.backend).Export(ctx, progress, opts)
	close(progress)
	wg.Wait()

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainHeader("Export complete")
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	r.writePlain("Sections:   %d succeeded, %d failed\n", result.Successful, result.Failed)
	if result.ManifestPath != "" {
		r.writePlain("Manifest:   %s\n", result.ManifestPath)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d sections failed", result.Failed, result.TotalSections)
	}
	return nil
}
