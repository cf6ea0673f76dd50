package models

import (
	"encoding/json"
	"testing"
)

func TestSongID(t *testing.T) {
	t.Run("Unmarshal", func(t *testing.T) {
		tc := []struct {
			name  string
			input string
			want  SongID
		}{
			{name: "number", input: `{"id": 42}`, want: "42"},
			{name: "string", input: `{"id": "42"}`, want: "42"},
			{name: "non numeric string", input: `{"id": "sample-7"}`, want: "sample-7"},
			{name: "null", input: `{"id": null}`, want: ""},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				var song Song
				if err := json.Unmarshal([]byte(tt.input), &song); err != nil {
					t.Fatalf("Unmarshal() error = %v", err)
				}
				if song.ID != tt.want {
					t.Errorf("ID = %q, want %q", song.ID, tt.want)
				}
			})
		}
	})

	t.Run("Unmarshal Rejects Bool", func(t *testing.T) {
		var song Song
		if err := json.Unmarshal([]byte(`{"id": true}`), &song); err == nil {
			t.Error("expected error for boolean id")
		}
	})

	t.Run("Marshal", func(t *testing.T) {
		tc := []struct {
			id   SongID
			want string
		}{
			{id: "42", want: `{"song_id":42}`},
			{id: "007", want: `{"song_id":"007"}`},
			{id: "sample-7", want: `{"song_id":"sample-7"}`},
		}

		for _, tt := range tc {
			data, err := json.Marshal(struct {
				SongID SongID `json:"song_id"`
			}{tt.id})
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal(%q) = %s, want %s", tt.id, data, tt.want)
			}
		}
	})
}

func TestEmotionColor(t *testing.T) {
	tc := []struct {
		emotion string
		want    Color
	}{
		{"happy", ColorSuccess},
		{"HAPPY", ColorSuccess},
		{" Happy ", ColorSuccess},
		{"sad", ColorInfo},
		{"Angry", ColorDanger},
		{"surprise", ColorWarning},
		{"neutral", ColorSecondary},
		{"fear", ColorDark},
		{"disgust", ColorDark},
		{"contempt", ColorPrimary},
		{"", ColorPrimary},
	}

	for _, tt := range tc {
		t.Run(tt.emotion, func(t *testing.T) {
			if got := EmotionColor(tt.emotion); got != tt.want {
				t.Errorf("EmotionColor(%q) = %s, want %s", tt.emotion, got, tt.want)
			}
		})
	}

	t.Run("Stable Across Calls", func(t *testing.T) {
		for range 3 {
			if EmotionColor("HAPPY") != EmotionColor("happy") {
				t.Fatal("color category must not depend on case")
			}
		}
	})
}

func TestFormatting(t *testing.T) {
	t.Run("Capture Percent", func(t *testing.T) {
		if got := (CaptureResult{Emotion: "happy", Confidence: 0.875}).Percent(); got != "87.50%" {
			t.Errorf("Percent() = %s, want 87.50%%", got)
		}
	})

	t.Run("Song Label", func(t *testing.T) {
		if got := (Song{Title: "Sunrise", Artist: "Nova"}).Label(); got != "Sunrise by Nova" {
			t.Errorf("Label() = %s", got)
		}
	})

	t.Run("Stats Share", func(t *testing.T) {
		stats := EmotionStats{TotalCaptures: 3, Distribution: []EmotionCount{{Emotion: "happy", Count: 2}}}
		if got := stats.Share(stats.Distribution[0]); got != "66.7" {
			t.Errorf("Share() = %s, want 66.7", got)
		}
		if got := (EmotionStats{}).Share(EmotionCount{Count: 1}); got != "0" {
			t.Errorf("Share() with no captures = %s, want 0", got)
		}
	})

	t.Run("DisplayTime", func(t *testing.T) {
		if got := DisplayTime("2024-03-05 14:07:00"); got != "Mar 5, 2024 14:07" {
			t.Errorf("DisplayTime() = %s", got)
		}
		if got := DisplayTime("yesterday"); got != "yesterday" {
			t.Errorf("DisplayTime() should fall back to raw value, got %s", got)
		}
	})
}

func TestUploadMissing(t *testing.T) {
	complete := Upload{Title: "t", Artist: "a", EmotionTag: "happy", FileName: "a.mp3", Audio: []byte{1}}
	if complete.Missing() {
		t.Error("complete upload should not report missing fields")
	}

	noFile := complete
	noFile.FileName = ""
	noFile.Audio = nil
	if !noFile.Missing() {
		t.Error("upload without a selected file should report missing fields")
	}

	emptyFile := complete
	emptyFile.Audio = nil
	if emptyFile.Missing() {
		t.Error("a selected zero-byte file should be left to the server")
	}

	blankTitle := complete
	blankTitle.Title = "  "
	if !blankTitle.Missing() {
		t.Error("upload with blank title should report missing fields")
	}
}

func TestCachedEntities(t *testing.T) {
	if err := NewCachedSong(Song{ID: "1", Title: "t", Artist: "a"}, "recommend").Validate(); err != nil {
		t.Errorf("valid song: %v", err)
	}
	if err := NewCachedSong(Song{Title: "t", Artist: "a"}, "recommend").Validate(); err == nil {
		t.Error("expected error for missing song id")
	}
	if err := NewCaptureRecord("ana", CaptureResult{Emotion: "sad", Confidence: 1.2}).Validate(); err == nil {
		t.Error("expected error for out of range confidence")
	}
}
