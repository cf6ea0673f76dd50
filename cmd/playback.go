package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/media"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play starts a song and, unless --detach is set, waits for playback to finish.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	id := models.SongID(strings.TrimSpace(cmd.StringArg("id")))
	if id == "" {
		return fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}

	ctrl, s, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	song, list, err := r.findSong(ctx, ctrl, s, id, cmd.String("emotion"))
	if err != nil {
		return err
	}
	if song.FilePath == "" {
		return fmt.Errorf("%w: song %s has no file", shared.ErrPlaybackFailed, id)
	}

	s, err = r.step(ctx, ctrl, controller.Play{Song: song, List: list})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPlaybackFailed, err)
	}
	r.writePlain("♪ %s: %s\n", controller.TitleNowPlaying, s.NowPlaying.Label)

	if cmd.Bool("detach") {
		return nil
	}

	player, ok := r.player.(*media.CommandPlayer)
	if !ok {
		return nil
	}
	if err := player.Wait(ctx); err != nil {
		player.Stop()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("%w: %v", shared.ErrPlaybackFailed, err)
	}
	return nil
}

// Upload submits an audio file with its metadata to the server catalog.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: audio file is required", shared.ErrMissingArgument)
	}

	audio, err := os.ReadFile(shared.ExpandHome(path))
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}

	ctrl, _, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	upload := models.Upload{
		Title:      strings.TrimSpace(cmd.String("title")),
		Artist:     strings.TrimSpace(cmd.String("artist")),
		EmotionTag: strings.TrimSpace(cmd.String("emotion")),
		Valence:    strconv.FormatFloat(cmd.Float("valence"), 'f', -1, 64),
		Energy:     strconv.FormatFloat(cmd.Float("energy"), 'f', -1, 64),
		FileName:   filepath.Base(path),
		Audio:      audio,
	}

	r.logger.Info("uploading song", "title", upload.Title, "file", upload.FileName, "bytes", len(audio))
	s, err := r.step(ctx, ctrl, controller.UploadSong{Upload: upload})
	if err != nil {
		return err
	}
	if s.Upload.Failed {
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, s.Upload.Status)
	}
	return r.writePlain("✓ %s\n", s.Upload.Status)
}

// Admin opens the server's admin panel for admin users.
func (r *Runner) Admin(ctx context.Context, cmd *cli.Command) error {
	ctrl, _, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	if _, err := r.step(ctx, ctrl, controller.OpenAdminPanel{}); err != nil {
		if err.Error() == controller.MsgAdminRequired {
			return shared.ErrNotAdmin
		}
		return err
	}
	return r.writePlain("✓ Opened %s\n", r.backend.ResolveURL("/admin/panel"))
}
