package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/moodtune/internal/models"
)

// Journal records what the client displayed into the local cache.
//
// Songs are deduplicated by server id via [SongRepository.Upsert].
type Journal struct {
	songs    *SongRepository
	captures *CaptureRepository
}

// NewJournal creates a new Journal writing to the given repositories
func NewJournal(songs *SongRepository, captures *CaptureRepository) *Journal {
	return &Journal{songs: songs, captures: captures}
}

// RecordCapture journals a capture result for username.
func (j *Journal) RecordCapture(ctx context.Context, username string, result models.CaptureResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := j.captures.Create(models.NewCaptureRecord(username, result)); err != nil {
		return fmt.Errorf("failed to journal capture: %w", err)
	}
	return nil
}

// RecordSongs upserts every song seen in source. Invalid songs are skipped; other failures are joined.
func (j *Journal) RecordSongs(ctx context.Context, songs []models.Song, source string) error {
	var errs []error
	for _, song := range songs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := models.NewCachedSong(song, source).Validate(); err != nil {
			continue
		}
		if err := j.songs.Upsert(song, source); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
