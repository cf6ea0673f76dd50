package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/moodtune/internal/formatter"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	th "github.com/desertthunder/moodtune/internal/testing"
)

func seededBackend() *th.FakeBackend {
	fb := th.NewFakeBackend()
	fb.SignIn("ada")
	fb.SetFavorites(
		models.Song{ID: "1", Title: "One", Artist: "A"},
		models.Song{ID: "2", Title: "Two", Artist: "B"},
	)
	fb.Listening = []models.ListeningRecord{{Song: models.Song{ID: "1", Title: "One"}, Timestamp: "2024-01-01 10:00:00"}}
	fb.Played = []models.PlayedSong{{Song: models.Song{ID: "1", Title: "One"}, PlayCount: 4}}
	fb.Emotions = []models.EmotionRecord{{Emotion: "happy", Confidence: 0.8, Timestamp: "2024-01-01 10:00:00"}}
	fb.Stats = models.EmotionStats{TotalCaptures: 1, Distribution: []models.EmotionCount{{Emotion: "happy", Count: 1}}}
	return fb
}

func drain(prog chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-prog:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestExport(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		sections  []string
		wantFiles []string
	}{
		{
			name:      "all sections json",
			format:    formatter.FormatJSON,
			wantFiles: []string{"favorites.json", "listening_history.json", "most_played.json", "emotion_history.json", "emotion_stats.json"},
		},
		{
			name:      "selected sections csv",
			format:    formatter.FormatCSV,
			sections:  []string{"favorites", "most_played"},
			wantFiles: []string{"favorites.csv", "most_played.csv"},
		},
		{
			name:      "markdown",
			format:    formatter.FormatMarkdown,
			sections:  []string{"emotion_stats"},
			wantFiles: []string{"emotion_stats.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			prog := make(chan ProgressUpdate, 32)

			result, err := NewExporter(seededBackend()).Export(context.Background(), prog, ExportOpts{
				Format:    tt.format,
				OutputDir: dir,
				Sections:  tt.sections,
				RateLimit: 100,
			})
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}

			if result.Successful != len(tt.wantFiles) || result.Failed != 0 {
				t.Errorf("expected %d successes, got %d (failed %d)", len(tt.wantFiles), result.Successful, result.Failed)
			}
			for _, f := range tt.wantFiles {
				th.AssertFileExists(t, filepath.Join(dir, f))
			}
			th.AssertFileExists(t, result.ManifestPath)
			if result.RunID == "" {
				t.Error("expected a run id")
			}

			updates := drain(prog)
			if len(updates) == 0 || updates[len(updates)-1].Phase != WriteManifest {
				t.Errorf("expected manifest update last, got %+v", updates)
			}
		})
	}
}

func TestExportFailures(t *testing.T) {
	t.Run("Partial Failure", func(t *testing.T) {
		fb := seededBackend()
		fb.Fail("most_played", th.Reject("most_played", "database locked"))
		dir := t.TempDir()

		result, err := NewExporter(fb).Export(context.Background(), nil, ExportOpts{OutputDir: dir, RateLimit: 100})
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if result.Failed != 1 || result.Successful != 4 {
			t.Errorf("expected 1 failure and 4 successes, got %d/%d", result.Failed, result.Successful)
		}

		data, err := os.ReadFile(result.ManifestPath)
		if err != nil {
			t.Fatalf("missing manifest: %v", err)
		}
		var manifest ExportResult
		if err := json.Unmarshal(data, &manifest); err != nil {
			t.Fatalf("bad manifest: %v", err)
		}
		found := false
		for _, r := range manifest.Results {
			if r.Section == "most_played" {
				found = true
				if r.Success || !strings.Contains(r.ErrorMsg, "database locked") {
					t.Errorf("unexpected most_played result %+v", r)
				}
			}
		}
		if !found {
			t.Error("manifest missing most_played")
		}
	})

	t.Run("Unknown Section", func(t *testing.T) {
		_, err := NewExporter(seededBackend()).Export(context.Background(), nil, ExportOpts{
			OutputDir: t.TempDir(),
			Sections:  []string{"playlists"},
		})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		_, err := NewExporter(seededBackend()).Export(context.Background(), nil, ExportOpts{OutputDir: t.TempDir(), Format: "xml"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Nil Source", func(t *testing.T) {
		_, err := NewExporter(nil).Export(context.Background(), nil, ExportOpts{})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result, err := NewExporter(seededBackend()).Export(ctx, nil, ExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.Successful != 0 {
			t.Errorf("expected no successful sections, got %+v", result)
		}
	})
}

func TestSectionNames(t *testing.T) {
	names := SectionNames()
	if len(names) != 5 || names[0] != "favorites" || names[4] != "emotion_stats" {
		t.Errorf("unexpected sections %v", names)
	}
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{FetchSection: "fetch_section", WriteSection: "write_section", WriteManifest: "write_manifest", Phase(99): ""}
	for p, want := range tests {
		if p.String() != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, p.String(), want)
		}
	}
}
