package formatter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	th "github.com/desertthunder/moodtune/internal/testing"
)

func sampleSongs() []models.Song {
	return []models.Song{
		{ID: "1", Title: "Song One", Artist: "Artist One", FilePath: "/static/music/one.mp3", EmotionTag: "happy"},
		{ID: "2", Title: "Pipe | Song", Artist: "Artist, Two", FilePath: "/static/music/two.mp3", EmotionTag: "sad"},
	}
}

func TestExporters(t *testing.T) {
	table := SongsTable("Favorites", sampleSongs())

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(table)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "#,ID,Title,Artist,Emotion,File\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `"Artist, Two"`) {
			t.Errorf("CSV should quote fields containing commas, got: %s", output)
		}
		if lines := strings.Count(output, "\n"); lines != 3 {
			t.Errorf("expected 3 lines, got %d", lines)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(table)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "# Favorites\n\n") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "| --- | --- |") {
			t.Errorf("Markdown missing separator row")
		}
		if !strings.Contains(output, `Pipe \| Song`) {
			t.Errorf("Markdown should escape pipes, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown Empty", func(t *testing.T) {
		data, _ := ExportToMarkdown(SongsTable("Favorites", nil))
		if !strings.Contains(string(data), "_No entries._") {
			t.Errorf("expected empty marker, got %s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(table)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected title, header and 2 rows, got %d lines: %q", len(lines), lines)
		}
		if lines[0] != "Favorites" {
			t.Errorf("unexpected title line %q", lines[0])
		}
		if strings.Index(lines[2], "Song One") != strings.Index(lines[1], "Title") {
			t.Errorf("columns are not aligned:\n%s", data)
		}
	})

	t.Run("ExportToText Empty", func(t *testing.T) {
		data, _ := ExportToText(SongsTable("Recommendations", []models.Song{}))
		if string(data) != "Recommendations\n(none)\n" {
			t.Errorf("unexpected output %q", data)
		}
	})
}

func TestTables(t *testing.T) {
	t.Run("EmotionHistory", func(t *testing.T) {
		tbl := EmotionHistoryTable([]models.EmotionRecord{{Emotion: "happy", Confidence: 0.9234, Timestamp: "2024-03-05 14:07:00"}})
		want := []string{"happy", "92.3%", "Mar 5, 2024 14:07"}
		for i, cell := range want {
			if tbl.Rows[0][i] != cell {
				t.Errorf("cell %d = %q, want %q", i, tbl.Rows[0][i], cell)
			}
		}
	})

	t.Run("MostPlayed Ranks", func(t *testing.T) {
		tbl := MostPlayedTable([]models.PlayedSong{
			{Song: models.Song{ID: "9", Title: "A"}, PlayCount: 5},
			{Song: models.Song{ID: "3", Title: "B"}, PlayCount: 2},
		})
		if tbl.Rows[0][0] != "1" || tbl.Rows[1][0] != "2" || tbl.Rows[0][4] != "5" {
			t.Errorf("unexpected rows %v", tbl.Rows)
		}
	})

	t.Run("Stats Shares", func(t *testing.T) {
		tbl := StatsTable(models.EmotionStats{
			TotalCaptures: 3,
			Distribution:  []models.EmotionCount{{Emotion: "happy", Count: 2}, {Emotion: "sad", Count: 1}},
		})
		if tbl.Rows[0][2] != "66.7%" || tbl.Rows[1][2] != "33.3%" {
			t.Errorf("unexpected shares %v", tbl.Rows)
		}
		if tbl.Title != "Emotion Stats (3 captures)" {
			t.Errorf("unexpected title %q", tbl.Title)
		}
	})

	t.Run("ListeningHistory Raw Timestamp", func(t *testing.T) {
		tbl := ListeningHistoryTable([]models.ListeningRecord{{Song: models.Song{ID: "1", Title: "A"}, Timestamp: "yesterday"}})
		if tbl.Rows[0][3] != "yesterday" {
			t.Errorf("unparseable timestamps should pass through, got %q", tbl.Rows[0][3])
		}
	})
}

func TestRender(t *testing.T) {
	table := SongsTable("Favorites", sampleSongs())

	t.Run("JSON Uses Source Data", func(t *testing.T) {
		data, err := Render(table, FormatJSON)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		var songs []models.Song
		if err := json.Unmarshal(data, &songs); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(songs) != 2 || songs[1].Title != "Pipe | Song" {
			t.Errorf("unexpected songs %+v", songs)
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		if _, err := Render(table, "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Extensions", func(t *testing.T) {
		tests := map[string]string{FormatCSV: ".csv", FormatMarkdown: ".md", FormatText: ".txt", FormatJSON: ".json", "": ".json"}
		for format, want := range tests {
			if got := Extension(format); got != want {
				t.Errorf("Extension(%q) = %q, want %q", format, got, want)
			}
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("Creates Directories", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "nested", "favorites")
		path, err := WriteExport(SongsTable("Favorites", sampleSongs()), FormatCSV, base)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != base+".csv" {
			t.Errorf("unexpected path %s", path)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "Song One") {
			t.Errorf("unexpected content %s", content)
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		os.WriteFile(blocker, []byte("x"), 0644)
		if _, err := WriteExport(SongsTable("x", nil), FormatText, filepath.Join(blocker, "out")); err == nil {
			t.Error("expected error when parent is a file")
		}
	})

	t.Run("Manifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.json")
		if err := WriteManifest(map[string]int{"files": 2}, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, `"files": 2`) {
			t.Errorf("unexpected manifest %s", content)
		}
	})
}
