// package services defines interface Backend for talking to the recommendation server
package services

import (
	"context"

	"github.com/desertthunder/moodtune/internal/models"
)

// Backend defines the recommendation server's endpoint contract.
type Backend interface {
	// UserInfo returns the session user (GET /user_info).
	UserInfo(ctx context.Context) (*models.User, error)

	// Login starts a session (POST /login).
	Login(ctx context.Context, username, password string) error

	// Register creates an account (POST /register). It does not start a session.
	Register(ctx context.Context, username, email, password string) error

	// Logout ends the session (GET /logout).
	Logout(ctx context.Context) error

	// Favorites lists the user's favorite songs (GET /get_favorites).
	Favorites(ctx context.Context) ([]models.Song, error)

	// AddFavorite adds a song to favorites (POST /add_favorite).
	AddFavorite(ctx context.Context, id models.SongID) error

	// RemoveFavorite removes a song from favorites (POST /remove_favorite).
	RemoveFavorite(ctx context.Context, id models.SongID) error

	// Preferences returns the stored preferences (GET /get_preferences).
	Preferences(ctx context.Context) (models.Preferences, error)

	// SavePreferences stores preferences (POST /save_preferences).
	SavePreferences(ctx context.Context, prefs models.Preferences) error

	// Analyze runs emotion inference on a data URL encoded frame (POST /analyze).
	Analyze(ctx context.Context, image string) (models.CaptureResult, error)

	// Recommend returns songs ranked for an emotion label (POST /recommend).
	Recommend(ctx context.Context, emotion string) ([]models.Song, error)

	// TrackPlay records a play (POST /track_play).
	TrackPlay(ctx context.Context, id models.SongID) error

	// EmotionHistory returns recent captures, newest first (GET /emotion_history).
	EmotionHistory(ctx context.Context, limit int) ([]models.EmotionRecord, error)

	// ListeningHistory returns recent plays, newest first (GET /listening_history).
	ListeningHistory(ctx context.Context, limit int) ([]models.ListeningRecord, error)

	// MostPlayed returns songs by descending play count (GET /most_played).
	MostPlayed(ctx context.Context, limit int) ([]models.PlayedSong, error)

	// EmotionStats returns the capture distribution (GET /emotion_stats).
	EmotionStats(ctx context.Context) (models.EmotionStats, error)

	// UploadSong submits a new song (POST /upload_song, multipart) and returns the server message.
	UploadSong(ctx context.Context, upload models.Upload) (string, error)

	// ResolveURL turns a server-relative path such as a song file path into an absolute URL.
	ResolveURL(path string) string
}
