package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/moodtune/internal/formatter"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/repositories"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// openJournal points the runner's journal at the local cache. The cache is optional: when it cannot be opened the
// commands run without journaling.
func (r *Runner) openJournal() func() {
	if r.journal != nil {
		return func() {}
	}

	db, err := shared.OpenCache(r.config.Database)
	if err != nil {
		r.logger.Warn("local cache unavailable, not journaling", "path", r.config.Database.Path, "error", err)
		return func() {}
	}

	r.journal = repositories.NewJournal(repositories.NewSongRepository(db), repositories.NewCaptureRepository(db))
	return func() {
		r.journal = nil
		if err := db.Close(); err != nil {
			r.logger.Warn("failed to close cache", "error", err)
		}
	}
}

// cachedSong looks a song up in the local cache.
func (r *Runner) cachedSong(id models.SongID) (models.Song, bool) {
	db, err := shared.OpenCache(r.config.Database)
	if err != nil {
		return models.Song{}, false
	}
	defer db.Close()

	cached, err := repositories.NewSongRepository(db).GetBySongID(id)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			r.logger.Debug("cache lookup failed", "id", id, "error", err)
		}
		return models.Song{}, false
	}
	return cached.Song(), true
}

func (r *Runner) withCache(fn func(db *sql.DB) error) error {
	db, err := shared.OpenCache(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer db.Close()
	return fn(db)
}

// CacheSongs lists songs journaled from recommendations and favorites.
func (r *Runner) CacheSongs(ctx context.Context, cmd *cli.Command) error {
	return r.withCache(func(db *sql.DB) error {
		songs, err := repositories.NewSongRepository(db).List(map[string]any{
			"emotion_tag": cmd.String("emotion"),
			"source":      cmd.String("source"),
			"limit":       cmd.Int("limit"),
		})
		if err != nil {
			return err
		}
		if len(songs) == 0 && cmd.String("format") != formatter.FormatJSON {
			return r.writePlain("Cache is empty.\n")
		}
		return r.writeTable(cachedSongsTable(songs), cmd.String("format"))
	})
}

// CacheCaptures lists journaled captures or, with --stats, their distribution.
func (r *Runner) CacheCaptures(ctx context.Context, cmd *cli.Command) error {
	return r.withCache(func(db *sql.DB) error {
		repo := repositories.NewCaptureRepository(db)

		if cmd.Bool("stats") {
			stats, err := repo.Stats(cmd.String("user"))
			if err != nil {
				return err
			}
			return r.writeTable(formatter.StatsTable(stats), cmd.String("format"))
		}

		records, err := repo.List(map[string]any{
			"username": cmd.String("user"),
			"emotion":  cmd.String("emotion"),
			"limit":    cmd.Int("limit"),
		})
		if err != nil {
			return err
		}
		if len(records) == 0 && cmd.String("format") != formatter.FormatJSON {
			return r.writePlain("No captures journaled.\n")
		}
		return r.writeTable(captureRecordsTable(records), cmd.String("format"))
	})
}

type cachedSongRow struct {
	models.Song
	Source    string `json:"source"`
	SeenCount int    `json:"seen_count"`
	UpdatedAt string `json:"updated_at"`
}

func cachedSongsTable(songs []*models.CachedSong) formatter.Table {
	rows := make([][]string, 0, len(songs))
	data := make([]cachedSongRow, 0, len(songs))
	for _, c := range songs {
		song := c.Song()
		updated := c.UpdatedAt().Format("2006-01-02 15:04")
		rows = append(rows, []string{
			song.ID.String(), song.Title, song.Artist, song.EmotionTag, c.Source(), strconv.Itoa(c.SeenCount()), updated,
		})
		data = append(data, cachedSongRow{Song: song, Source: c.Source(), SeenCount: c.SeenCount(), UpdatedAt: updated})
	}
	return formatter.Table{
		Title:   "Cached Songs",
		Headers: []string{"ID", "Title", "Artist", "Emotion", "Source", "Seen", "Updated"},
		Rows:    rows,
		Data:    data,
	}
}

type captureRow struct {
	Username   string  `json:"username"`
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	CapturedAt string  `json:"captured_at"`
}

func captureRecordsTable(records []*models.CaptureRecord) formatter.Table {
	rows := make([][]string, 0, len(records))
	data := make([]captureRow, 0, len(records))
	for _, c := range records {
		result := c.Result()
		at := c.CreatedAt().Format("2006-01-02 15:04:05")
		rows = append(rows, []string{c.Username(), result.Emotion, result.Percent(), at})
		data = append(data, captureRow{Username: c.Username(), Emotion: result.Emotion, Confidence: result.Confidence, CapturedAt: at})
	}
	return formatter.Table{
		Title:   "Journaled Captures",
		Headers: []string{"User", "Emotion", "Confidence", "Captured"},
		Rows:    rows,
		Data:    data,
	}
}
