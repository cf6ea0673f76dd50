package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

var _ controller.Journal = (*Journal)(nil)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// every pooled connection would otherwise get its own empty in-memory database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

var (
	happySong = models.Song{ID: "1", Title: "Good Day", Artist: "Sun", FilePath: "/static/music/a.mp3", EmotionTag: "happy"}
	sadSong   = models.Song{ID: "2", Title: "Rain", Artist: "Cloud", FilePath: "/static/music/b.mp3", EmotionTag: "sad"}
)

func TestSongRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		song := models.NewCachedSong(happySong, "recommendation")

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		if song.ID() == "" {
			t.Error("song ID should be set after creation")
		}

		got, err := repo.Get(song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if got.Song() != happySong || got.Source() != "recommendation" || got.SeenCount() != 1 {
			t.Errorf("unexpected song %+v", got.Song())
		}
	})

	t.Run("Create Duplicate", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		if err := repo.Create(models.NewCachedSong(happySong, "favorite")); err != nil {
			t.Fatal(err)
		}
		if err := repo.Create(models.NewCachedSong(happySong, "favorite")); err == nil {
			t.Error("expected duplicate song id to fail")
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		tests := []models.Song{
			{Title: "x", Artist: "y"},
			{ID: "1", Artist: "y"},
			{ID: "1", Title: "x"},
		}
		for _, song := range tests {
			if err := repo.Create(models.NewCachedSong(song, "")); err == nil {
				t.Errorf("expected validation error for %+v", song)
			}
			if err := repo.Upsert(song, ""); err == nil {
				t.Errorf("expected upsert validation error for %+v", song)
			}
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		if err := repo.Upsert(happySong, "recommendation"); err != nil {
			t.Fatalf("first upsert failed: %v", err)
		}

		renamed := happySong
		renamed.Title = "Good Day (Remastered)"
		renamed.EmotionTag = ""
		if err := repo.Upsert(renamed, "favorite"); err != nil {
			t.Fatalf("second upsert failed: %v", err)
		}

		got, err := repo.GetBySongID(happySong.ID)
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if got.SeenCount() != 2 || got.Source() != "favorite" {
			t.Errorf("expected seen twice from favorite, got %d from %s", got.SeenCount(), got.Source())
		}
		if got.Song().Title != renamed.Title || got.Song().EmotionTag != "happy" {
			t.Errorf("unexpected merged song %+v", got.Song())
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		for _, s := range []models.Song{happySong, sadSong, happySong} {
			if err := repo.Upsert(s, "recommendation"); err != nil {
				t.Fatal(err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 2 || all[0].Song().ID != happySong.ID {
			t.Errorf("expected most seen first, got %d songs", len(all))
		}

		tests := []struct {
			name     string
			criteria map[string]any
			want     int
		}{
			{"Emotion", map[string]any{"emotion_tag": "sad"}, 1},
			{"Source", map[string]any{"source": "favorite"}, 0},
			{"Limit", map[string]any{"limit": 1}, 1},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatal(err)
				}
				if len(got) != tt.want {
					t.Errorf("expected %d songs, got %d", tt.want, len(got))
				}
			})
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		song := models.NewCachedSong(sadSong, "")
		if err := repo.Create(song); err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete(song.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get(song.ID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.Delete(song.ID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSongRepository(db)
		db.Close()
		if err := repo.Upsert(happySong, ""); err == nil {
			t.Error("expected error on closed database")
		}
		if _, err := repo.List(nil); err == nil {
			t.Error("expected error on closed database")
		}
	})
}

func TestCaptureRepository(t *testing.T) {
	t.Run("Create And List", func(t *testing.T) {
		repo := NewCaptureRepository(setupTestDB(t))
		base := time.Now().Add(-time.Hour)
		for i, emotion := range []string{"happy", "sad", "happy"} {
			record := models.NewCaptureRecord("ada", models.CaptureResult{Emotion: emotion, Confidence: 0.5})
			record.SetCreatedAt(base.Add(time.Duration(i) * time.Minute))
			if err := repo.Create(record); err != nil {
				t.Fatalf("failed to create capture: %v", err)
			}
		}
		other := models.NewCaptureRecord("grace", models.CaptureResult{Emotion: "angry", Confidence: 0.9})
		if err := repo.Create(other); err != nil {
			t.Fatal(err)
		}

		records, err := repo.List(map[string]any{"username": "ada"})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(records) != 3 || records[0].Result().Emotion != "happy" || !records[0].CreatedAt().After(records[1].CreatedAt()) {
			t.Errorf("expected newest first, got %d records", len(records))
		}

		got, err := repo.Get(other.ID())
		if err != nil || got.Username() != "grace" || got.Result().Confidence != 0.9 {
			t.Errorf("unexpected capture %+v: %v", got, err)
		}

		filtered, _ := repo.List(map[string]any{"emotion": "sad", "limit": 5})
		if len(filtered) != 1 {
			t.Errorf("expected 1 sad capture, got %d", len(filtered))
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewCaptureRepository(setupTestDB(t))
		for _, result := range []models.CaptureResult{{Confidence: 0.5}, {Emotion: "happy", Confidence: 1.5}} {
			if err := repo.Create(models.NewCaptureRecord("ada", result)); err == nil {
				t.Errorf("expected validation error for %+v", result)
			}
		}
	})

	t.Run("Stats", func(t *testing.T) {
		repo := NewCaptureRepository(setupTestDB(t))
		for _, emotion := range []string{"sad", "happy", "happy"} {
			if err := repo.Create(models.NewCaptureRecord("ada", models.CaptureResult{Emotion: emotion, Confidence: 0.7})); err != nil {
				t.Fatal(err)
			}
		}

		stats, err := repo.Stats("ada")
		if err != nil {
			t.Fatalf("failed to get stats: %v", err)
		}
		if stats.TotalCaptures != 3 || stats.Distribution[0] != (models.EmotionCount{Emotion: "happy", Count: 2}) {
			t.Errorf("unexpected stats %+v", stats)
		}
		if share := stats.Share(stats.Distribution[0]); share != "66.7" {
			t.Errorf("unexpected share %s", share)
		}

		empty, err := repo.Stats("nobody")
		if err != nil || empty.TotalCaptures != 0 || len(empty.Distribution) != 0 {
			t.Errorf("unexpected empty stats %+v: %v", empty, err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewCaptureRepository(setupTestDB(t))
		record := models.NewCaptureRecord("ada", models.CaptureResult{Emotion: "fear", Confidence: 0.2})
		if err := repo.Create(record); err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete(record.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get(record.ID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestJournal(t *testing.T) {
	t.Run("Records", func(t *testing.T) {
		db := setupTestDB(t)
		songs, captures := NewSongRepository(db), NewCaptureRepository(db)
		j := NewJournal(songs, captures)
		ctx := context.Background()

		if err := j.RecordCapture(ctx, "ada", models.CaptureResult{Emotion: "happy", Confidence: 0.8}); err != nil {
			t.Fatalf("failed to record capture: %v", err)
		}
		invalid := models.Song{ID: "9"}
		if err := j.RecordSongs(ctx, []models.Song{happySong, sadSong, invalid}, "recommendation"); err != nil {
			t.Fatalf("failed to record songs: %v", err)
		}
		if err := j.RecordSongs(ctx, []models.Song{happySong}, "favorite"); err != nil {
			t.Fatal(err)
		}

		all, _ := songs.List(nil)
		if len(all) != 2 || all[0].SeenCount() != 2 {
			t.Errorf("expected 2 songs with the first seen twice, got %d", len(all))
		}
		records, _ := captures.List(nil)
		if len(records) != 1 {
			t.Errorf("expected 1 capture, got %d", len(records))
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		db := setupTestDB(t)
		j := NewJournal(NewSongRepository(db), NewCaptureRepository(db))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := j.RecordCapture(ctx, "ada", models.CaptureResult{Emotion: "happy"}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if err := j.RecordSongs(ctx, []models.Song{happySong}, ""); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
