// package models defines the data model for the moodtune client
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SongID identifies a song on the server.
//
// The server emits numeric IDs while list controls carry them as strings, so both JSON forms decode.
type SongID string

// UnmarshalJSON accepts a JSON number or string.
func (id *SongID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SongID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("song id must be a number or string: %w", err)
	}
	*id = SongID(n.String())
	return nil
}

// MarshalJSON emits numeric IDs as JSON numbers and anything else as a string.
func (id SongID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id SongID) String() string { return string(id) }

// User is the server-attested identity of the current session.
type User struct {
	ID       int    `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// Song is a catalog entry.
type Song struct {
	ID         SongID `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	FilePath   string `json:"file_path"`
	EmotionTag string `json:"emotion_tag,omitempty"`
}

// Label is the "Title by Artist" text shown while the song plays.
func (s Song) Label() string {
	return fmt.Sprintf("%s by %s", s.Title, s.Artist)
}

// CaptureResult is one emotion inference.
type CaptureResult struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Percent formats the confidence with two decimals, e.g. "87.50%".
func (c CaptureResult) Percent() string {
	return FormatPercent(c.Confidence, 2)
}

// NowPlaying is the song currently bound to the audio output.
type NowPlaying struct {
	SongID SongID `json:"song_id,omitempty"`
	Path   string `json:"path"`
	Label  string `json:"label"`
}

// Preferences are the user's stated listening preferences.
type Preferences struct {
	PreferredGenre  string `json:"preferred_genre"`
	PreferredArtist string `json:"preferred_artist"`
}

// EmotionRecord is one entry of the server's emotion history, newest first.
type EmotionRecord struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

// ListeningRecord is one play in the server's listening history, newest first.
type ListeningRecord struct {
	Song
	Timestamp string `json:"timestamp"`
}

// PlayedSong is a most-played entry, server-ordered by descending play count.
type PlayedSong struct {
	Song
	PlayCount int `json:"play_count"`
}

// EmotionCount is one bucket of the emotion distribution.
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// EmotionStats summarizes a user's captures.
type EmotionStats struct {
	TotalCaptures int            `json:"total_captures"`
	Distribution  []EmotionCount `json:"distribution"`
}

// Share returns the percentage of captures that bucket c represents, formatted with one decimal.
//
// Returns "0" when there are no captures.
func (s EmotionStats) Share(c EmotionCount) string {
	if s.TotalCaptures <= 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(c.Count)/float64(s.TotalCaptures)*100, 'f', 1, 64)
}

// Upload describes a song submitted through /upload_song.
type Upload struct {
	Title      string
	Artist     string
	EmotionTag string
	Valence    string
	Energy     string
	FileName   string
	Audio      []byte
}

// Missing reports whether any required upload field is empty. A selected zero-byte file counts as present.
func (u Upload) Missing() bool {
	return strings.TrimSpace(u.Title) == "" ||
		strings.TrimSpace(u.Artist) == "" ||
		strings.TrimSpace(u.EmotionTag) == "" ||
		u.FileName == ""
}

// FormatPercent renders a 0..1 ratio as a percentage with the given number of decimals.
func FormatPercent(ratio float64, decimals int) string {
	return strconv.FormatFloat(ratio*100, 'f', decimals, 64) + "%"
}

// timestampLayouts are the formats the server uses for history timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses a server history timestamp.
func ParseTimestamp(ts string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", ts)
}

// DisplayTime formats a server timestamp for display, falling back to the raw value.
func DisplayTime(ts string) string {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.Format("Jan 2, 2006 15:04")
}
