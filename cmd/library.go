package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/formatter"
	"github.com/desertthunder/moodtune/internal/media"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// Capture starts the camera, analyzes one frame and prints the recommendations for the detected emotion.
func (r *Runner) Capture(ctx context.Context, cmd *cli.Command) error {
	if frame := cmd.String("frame"); frame != "" {
		r.camera = media.NewFrameCamera(frame)
	}

	closeJournal := r.openJournal()
	defer closeJournal()

	ctrl, _, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	s, err := r.step(ctx, ctrl, controller.StartCamera{})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCameraUnavailable, err)
	}
	if !s.Camera.Active {
		return shared.ErrCameraInactive
	}
	defer ctrl.Do(ctx, controller.StopCamera{})

	r.logger.Info("analyzing frame")
	s, err = r.step(ctx, ctrl, controller.Capture{})
	if err != nil {
		return err
	}
	if s.Capture == nil {
		return fmt.Errorf("%w: no emotion detected", shared.ErrApplication)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"capture":         s.Capture,
			"recommendations": s.Recommendations.Songs,
		}, true)
	}

	emotion, confidence := s.CaptureLabel()
	r.writePlain("Detected emotion: %s (%s)\n", emotion, confidence)
	return r.writeRecommendations(s.Recommendations, formatter.FormatText)
}

// Recommend prints the songs the server recommends for an emotion.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	emotion := strings.TrimSpace(cmd.StringArg("emotion"))
	if emotion == "" {
		return fmt.Errorf("%w: emotion is required", shared.ErrMissingArgument)
	}

	closeJournal := r.openJournal()
	defer closeJournal()

	ctrl, _, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	s, err := r.step(ctx, ctrl, controller.Recommend{Emotion: emotion})
	if err != nil {
		return err
	}
	return r.writeRecommendations(s.Recommendations, cmd.String("format"))
}

func (r *Runner) writeRecommendations(recs controller.RecommendationsState, format string) error {
	if recs.Empty() && format != formatter.FormatJSON {
		return r.writePlain("%s\n", controller.MsgNoRecommendation)
	}
	title := "Recommendations"
	if recs.Emotion != "" {
		title = fmt.Sprintf("Recommendations for %s", recs.Emotion)
	}
	return r.writeTable(formatter.SongsTable(title, recs.Songs), format)
}

// FavoritesList prints the user's favorite songs.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	closeJournal := r.openJournal()
	defer closeJournal()

	ctrl, _, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	s, err := r.step(ctx, ctrl, controller.Navigate{To: controller.SectionFavorites})
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if len(s.Favorites.Songs) == 0 && format != formatter.FormatJSON {
		return r.writePlain("%s\n", controller.MsgNoFavorites)
	}
	return r.writeTable(formatter.SongsTable("Favorites", s.Favorites.Songs), format)
}

// FavoritesAdd adds a song to favorites.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	id := models.SongID(strings.TrimSpace(cmd.StringArg("id")))
	if id == "" {
		return fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}

	ctrl, s, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	song, _, err := r.findSong(ctx, ctrl, s, id, cmd.String("emotion"))
	if err != nil {
		r.logger.Debug("song not found locally, adding by id", "id", id)
		song = models.Song{ID: id}
	}

	s, err = r.step(ctx, ctrl, controller.AddFavorite{Song: song})
	if err != nil {
		return err
	}
	if !s.Favorited[id] {
		return fmt.Errorf("%w: favorite was not recorded", shared.ErrApplication)
	}
	if song.Title != "" {
		return r.writePlain("✓ Added %s to favorites\n", song.Label())
	}
	return r.writePlain("✓ Added song %s to favorites\n", id)
}

// FavoritesRemove removes a song from favorites.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	id := models.SongID(strings.TrimSpace(cmd.StringArg("id")))
	if id == "" {
		return fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}

	ctrl, _, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	if _, err := r.step(ctx, ctrl, controller.RemoveFavorite{SongID: id}); err != nil {
		return err
	}
	return r.writePlain("✓ Removed song %s from favorites\n", id)
}

// PrefsGet prints the stored preferences.
func (r *Runner) PrefsGet(ctx context.Context, cmd *cli.Command) error {
	ctrl, s, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	if err := raised(controller.State{}, s); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(s.Preferences, true)
	}
	r.writePlain("Preferred genre:  %s\n", orNone(s.Preferences.PreferredGenre))
	r.writePlain("Preferred artist: %s\n", orNone(s.Preferences.PreferredArtist))
	return nil
}

// PrefsSet saves preferences. Flags that are not given keep their stored value.
func (r *Runner) PrefsSet(ctx context.Context, cmd *cli.Command) error {
	if !cmd.IsSet("genre") && !cmd.IsSet("artist") {
		return fmt.Errorf("%w: pass --genre and/or --artist", shared.ErrMissingArgument)
	}

	ctrl, s, err := r.session(ctx, nil)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	prefs := s.Preferences
	if cmd.IsSet("genre") {
		prefs.PreferredGenre = strings.TrimSpace(cmd.String("genre"))
	}
	if cmd.IsSet("artist") {
		prefs.PreferredArtist = strings.TrimSpace(cmd.String("artist"))
	}

	if _, err := r.step(ctx, ctrl, controller.SavePreferences{Preferences: prefs}); err != nil {
		return err
	}
	return r.writePlain("✓ %s\n", controller.MsgPreferencesSaved)
}

// findSong looks id up in the lists the controller can load, then in the local cache.
func (r *Runner) findSong(
	ctx context.Context, ctrl *controller.Controller, s controller.State, id models.SongID, emotion string,
) (models.Song, controller.ListKind, error) {
	if emotion != "" {
		next, err := r.step(ctx, ctrl, controller.Recommend{Emotion: emotion})
		if err != nil {
			return models.Song{}, "", err
		}
		if song, ok := songByID(next.Recommendations.Songs, id); ok {
			return song, controller.ListRecommendations, nil
		}
		s = next
	}

	for _, rec := range s.Dashboard.ListeningHistory {
		if rec.ID == id {
			return rec.Song, controller.ListHistory, nil
		}
	}
	for _, p := range s.Dashboard.MostPlayed {
		if p.ID == id {
			return p.Song, controller.ListMostPlayed, nil
		}
	}

	next, err := r.step(ctx, ctrl, controller.Navigate{To: controller.SectionFavorites})
	if err == nil {
		if song, ok := songByID(next.Favorites.Songs, id); ok {
			return song, controller.ListFavorites, nil
		}
	}

	if song, ok := r.cachedSong(id); ok {
		return song, controller.ListRecommendations, nil
	}
	return models.Song{}, "", fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
}

func songByID(songs []models.Song, id models.SongID) (models.Song, bool) {
	for _, song := range songs {
		if song.ID == id {
			return song, true
		}
	}
	return models.Song{}, false
}

func orNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
