package web

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/models"
	th "github.com/desertthunder/moodtune/internal/testing"
)

var (
	songA = models.Song{ID: "1", Title: "Good Day", Artist: "Sun", FilePath: "/static/music/a.mp3"}
	songB = models.Song{ID: "2", Title: "Bright", Artist: "Sky", FilePath: "/static/music/b.mp3"}
)

func signedIn(section controller.Section) controller.State {
	s := controller.NewState(controller.DefaultSettings())
	s.Session = &models.User{Username: "ada", Email: "ada@example.com"}
	s.Section = section
	return s
}

func isVisible(t *testing.T, page Node, id string) bool {
	t.Helper()
	n, ok := page.ByID(id)
	if !ok {
		t.Fatalf("element #%s not found", id)
	}
	return !n.HasClass("d-none")
}

func highlighted(page Node) []Node {
	return page.Find(func(n Node) bool { return n.HasClass("play-btn") && n.HasClass("btn-primary") })
}

func TestRender(t *testing.T) {
	t.Run("Escapes Text And Attributes", func(t *testing.T) {
		n := El("div", A("title", `"quoted" & <tag>`), Text("<script>alert(1)</script>"))
		got := n.String()
		want := `<div title="&#34;quoted&#34; &amp; &lt;tag&gt;">&lt;script&gt;alert(1)&lt;/script&gt;</div>`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("Void Elements", func(t *testing.T) {
		got := El("p", nil, Text("a"), El("br", nil), El("input", A("name", "x"))).String()
		if got != `<p>a<br><input name="x"></p>` {
			t.Errorf("unexpected markup %s", got)
		}
	})

	t.Run("Writer Error", func(t *testing.T) {
		err := Render(&th.FWriter{}, El("p", nil, Text("x")))
		if err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("Class", func(t *testing.T) {
		if got := Class("a", "", "b"); got != "a b" {
			t.Errorf("got %q", got)
		}
	})
}

func TestPageSections(t *testing.T) {
	tests := []struct {
		name  string
		state controller.State
		want  string
	}{
		{"Unauthenticated", controller.NewState(controller.DefaultSettings()), "auth-section"},
		{"Dashboard", signedIn(controller.SectionDashboard), "dashboard-section"},
		{"Detection", signedIn(controller.SectionDetection), "app-section"},
		{"Favorites", signedIn(controller.SectionFavorites), "favorites-section"},
	}

	sections := []string{"auth-section", "dashboard-section", "app-section", "favorites-section"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Page(tt.state)
			for _, id := range sections {
				if got := isVisible(t, page, id); got != (id == tt.want) {
					t.Errorf("#%s visible=%v", id, got)
				}
			}
			if isVisible(t, page, "user-section") == (tt.want == "auth-section") {
				t.Error("user section visibility must be the inverse of auth")
			}
		})
	}
}

func TestRecommendations(t *testing.T) {
	t.Run("Empty Shows Placeholder", func(t *testing.T) {
		s := signedIn(controller.SectionDetection)
		s.Recommendations = controller.RecommendationsState{Emotion: "fear", Songs: []models.Song{}, Loaded: true}
		page := Page(s)

		list, _ := page.ByID("song-list")
		if len(list.Children) != 0 {
			t.Errorf("expected empty list container, got %d children", len(list.Children))
		}
		if !isVisible(t, page, "no-recommendations") {
			t.Error("expected placeholder to be shown")
		}
		placeholder, _ := page.ByID("no-recommendations")
		if placeholder.TextContent() != controller.MsgNoRecommendation {
			t.Errorf("unexpected placeholder %q", placeholder.TextContent())
		}
	})

	t.Run("Not Loaded Hides Placeholder", func(t *testing.T) {
		page := Page(signedIn(controller.SectionDetection))
		if isVisible(t, page, "no-recommendations") {
			t.Error("placeholder must stay hidden before the first fetch")
		}
	})

	t.Run("Favorited Button", func(t *testing.T) {
		s := signedIn(controller.SectionDetection)
		s.Recommendations = controller.RecommendationsState{Emotion: "happy", Songs: []models.Song{songA, songB}, Loaded: true}
		s.Favorited = map[models.SongID]bool{songA.ID: true}

		buttons := Page(s).Find(func(n Node) bool { return n.HasClass("favorite-btn") })
		if len(buttons) != 2 {
			t.Fatalf("expected 2 favorite buttons, got %d", len(buttons))
		}
		if !buttons[0].HasClass("btn-success") || buttons[0].TextContent() != "✓" {
			t.Error("expected first button in added state")
		}
		if _, disabled := buttons[1].Get("disabled"); disabled {
			t.Error("second button should be enabled")
		}
	})
}

func TestHighlight(t *testing.T) {
	s := signedIn(controller.SectionFavorites)
	s.Recommendations = controller.RecommendationsState{Songs: []models.Song{songA, songB}, Loaded: true}
	s.Favorites = controller.FavoritesState{Songs: []models.Song{songA, songB}, Loaded: true}
	s.Dashboard.ListeningHistory = []models.ListeningRecord{{Song: songB}, {Song: songB}}
	s.Highlight = &controller.PlayControl{List: controller.ListFavorites, SongID: songB.ID}

	lit := highlighted(Page(s))
	if len(lit) != 1 {
		t.Fatalf("expected one highlighted control, got %d", len(lit))
	}
	if list, _ := lit[0].Get("data-list"); list != string(controller.ListFavorites) {
		t.Errorf("highlight in wrong list %s", list)
	}
	if id, _ := lit[0].Get("data-id"); id != "2" {
		t.Errorf("highlight on wrong song %s", id)
	}
}

func TestDashboard(t *testing.T) {
	t.Run("Placeholders", func(t *testing.T) {
		page := Page(signedIn(controller.SectionDashboard))
		for id, text := range map[string]string{
			"emotion-history":   EmptyEmotionHistory,
			"listening-history": EmptyListeningHistory,
			"most-played":       EmptyMostPlayed,
			"emotion-stats":     EmptyStats,
		} {
			n, _ := page.ByID(id)
			if n.TextContent() != text {
				t.Errorf("#%s: got %q", id, n.TextContent())
			}
		}
	})

	t.Run("Rank Badges And Stats", func(t *testing.T) {
		s := signedIn(controller.SectionDashboard)
		for i := range 4 {
			s.Dashboard.MostPlayed = append(s.Dashboard.MostPlayed, models.PlayedSong{Song: songA, PlayCount: 10 - i})
		}
		s.Dashboard.Stats = models.EmotionStats{TotalCaptures: 3, Distribution: []models.EmotionCount{{Emotion: "happy", Count: 2}}}
		s.Dashboard.EmotionHistory = []models.EmotionRecord{{Emotion: "Happy", Confidence: 0.5, Timestamp: "2025-01-02 03:04:05"}}
		page := Page(s)

		most, _ := page.ByID("most-played")
		ranks := most.Find(func(n Node) bool { return strings.HasPrefix(n.TextContent(), "#") && n.Tag == "span" })
		if len(ranks) != 4 || !ranks[2].HasClass("bg-primary") || !ranks[3].HasClass("bg-secondary") {
			t.Errorf("unexpected rank badges %v", ranks)
		}

		stats, _ := page.ByID("emotion-stats")
		if !strings.Contains(stats.TextContent(), "2 (66.7%)") {
			t.Errorf("unexpected stats %q", stats.TextContent())
		}

		history, _ := page.ByID("emotion-history")
		badges := history.Find(func(n Node) bool { return n.HasClass("badge") })
		if len(badges) != 1 || !badges[0].HasClass("bg-success") || badges[0].TextContent() != "HAPPY" {
			t.Errorf("unexpected emotion badge %v", badges)
		}
		if !strings.Contains(history.TextContent(), "50.0% confidence") {
			t.Errorf("unexpected history %q", history.TextContent())
		}
	})
}

func TestDetection(t *testing.T) {
	s := signedIn(controller.SectionDetection)
	page := Page(s)
	label, _ := page.ByID("emotion-label")
	confidence, _ := page.ByID("confidence")
	if label.TextContent() != "None" || confidence.TextContent() != "0%" {
		t.Errorf("unexpected empty capture %q %q", label.TextContent(), confidence.TextContent())
	}

	s.Camera.Active = true
	s.Capture = &models.CaptureResult{Emotion: "angry", Confidence: 0.9}
	page = Page(s)
	label, _ = page.ByID("emotion-label")
	if !label.HasClass("bg-danger") || label.TextContent() != "angry" {
		t.Errorf("unexpected label %v", label)
	}
	start, _ := page.ByID("start-camera")
	if _, disabled := start.Get("disabled"); !disabled {
		t.Error("start should be disabled while camera is active")
	}
}

func TestToastsAndAdmin(t *testing.T) {
	s := signedIn(controller.SectionDashboard)
	s.Session.IsAdmin = true
	s.Notifications = []controller.Notification{
		{ID: 1, Level: controller.LevelError, Message: "Login failed: <bad>"},
		{ID: 2, Level: controller.LevelInfo, Title: controller.TitleNowPlaying, Message: "Bright by Sky"},
	}
	page := Page(s)

	if !isVisible(t, page, "admin-panel-btn") {
		t.Error("admin button should be shown for admins")
	}
	toast, ok := page.ByID("toast-1")
	if !ok || !toast.HasClass("bg-danger") {
		t.Errorf("unexpected toast %v", toast)
	}
	if !strings.Contains(page.String(), "Login failed: &lt;bad&gt;") {
		t.Error("expected escaped notification text")
	}
}

func TestSnapshot(t *testing.T) {
	t.Run("Writes Document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "page.html")
		snap := NewSnapshot(path, nil)
		snap.Render(signedIn(controller.SectionDashboard))

		data := th.MustReadFile(t, path)
		if !strings.HasPrefix(string(data), "<!DOCTYPE html>") {
			t.Error("expected doctype")
		}
		if snap.Writes() != 1 {
			t.Errorf("expected 1 write, got %d", snap.Writes())
		}
		if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
			t.Error("temporary file left behind")
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, nil, 0644); err != nil {
			t.Fatal(err)
		}
		snap := NewSnapshot(filepath.Join(blocker, "page.html"), nil)
		if err := snap.Write(controller.NewState(controller.DefaultSettings())); err == nil {
			t.Error("expected error writing below a regular file")
		}
	})
}
