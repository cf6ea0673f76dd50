package controller

import (
	"context"
	"time"

	"github.com/desertthunder/moodtune/internal/media"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/services"
)

// Intent is the logical purpose of a request. At most one request per tracked intent is live.
type Intent string

const (
	IntentSession          Intent = "session"
	IntentLogin            Intent = "login"
	IntentRegister         Intent = "register"
	IntentLogout           Intent = "logout"
	IntentCamera           Intent = "camera"
	IntentCapture          Intent = "capture"
	IntentRecommend        Intent = "recommend"
	IntentFavorites        Intent = "favorites"
	IntentPreferences      Intent = "preferences"
	IntentSavePreferences  Intent = "save-preferences"
	IntentEmotionHistory   Intent = "emotion-history"
	IntentListeningHistory Intent = "listening-history"
	IntentMostPlayed       Intent = "most-played"
	IntentEmotionStats     Intent = "emotion-stats"
	IntentUpload           Intent = "upload"
)

// Browser opens URLs outside the client.
type Browser interface {
	Open(url string) error
}

// Journal records what the user saw locally. Writes are best effort.
type Journal interface {
	RecordCapture(ctx context.Context, username string, result models.CaptureResult) error
	RecordSongs(ctx context.Context, songs []models.Song, source string) error
}

// Deps are the capabilities effects run against.
type Deps struct {
	Backend     services.Backend
	Camera      media.Camera
	Player      media.Player
	Browser     Browser
	Journal     Journal
	JPEGQuality int
}

// EffectKind selects what the runtime does with an [Effect].
type EffectKind int

const (
	// EffectRun runs Run on its own goroutine.
	EffectRun EffectKind = iota
	// EffectCancel cancels the live request for Intent.
	EffectCancel
	// EffectCancelAll cancels every live request.
	EffectCancelAll
)

// Effect is work requested by [Update].
//
// A tracked effect has a non-empty Intent and the Seq recorded in [State.Inflight]. Run may return nil when there
// is nothing to report.
type Effect struct {
	Kind   EffectKind
	Intent Intent
	Seq    uint64
	Run    func(ctx context.Context, deps Deps) Event
}

// Tracked reports whether the effect belongs to a tracked intent.
func (e Effect) Tracked() bool {
	return e.Kind == EffectRun && e.Intent != ""
}

// issue records a new request for intent in s and returns its effect.
func issue(s *State, intent Intent, run func(ctx context.Context, deps Deps, seq uint64) Event) Effect {
	s.Seq++
	seq := s.Seq
	s.Inflight[intent] = seq
	return Effect{
		Kind:   EffectRun,
		Intent: intent,
		Seq:    seq,
		Run: func(ctx context.Context, deps Deps) Event {
			return run(ctx, deps, seq)
		},
	}
}

// fire returns an untracked effect.
func fire(run func(ctx context.Context, deps Deps) Event) Effect {
	return Effect{Kind: EffectRun, Run: run}
}

func cancel(s *State, intent Intent) Effect {
	delete(s.Inflight, intent)
	return Effect{Kind: EffectCancel, Intent: intent}
}

func cancelAll() Effect {
	return Effect{Kind: EffectCancelAll}
}

func checkSessionEffect(s *State) Effect {
	return issue(s, IntentSession, func(ctx context.Context, d Deps, seq uint64) Event {
		user, err := d.Backend.UserInfo(ctx)
		return SessionChecked{Seq: seq, User: user, Err: err}
	})
}

func loginEffect(s *State, username, password string) Effect {
	return issue(s, IntentLogin, func(ctx context.Context, d Deps, seq uint64) Event {
		return LoginCompleted{Seq: seq, Err: d.Backend.Login(ctx, username, password)}
	})
}

func registerEffect(s *State, username, email, password string) Effect {
	return issue(s, IntentRegister, func(ctx context.Context, d Deps, seq uint64) Event {
		if err := d.Backend.Register(ctx, username, email, password); err != nil {
			return RegisterCompleted{Seq: seq, Err: err}
		}
		return RegisterCompleted{Seq: seq, LoginErr: d.Backend.Login(ctx, username, password)}
	})
}

func logoutEffect(s *State) Effect {
	return issue(s, IntentLogout, func(ctx context.Context, d Deps, seq uint64) Event {
		return LogoutCompleted{Seq: seq, Err: d.Backend.Logout(ctx)}
	})
}

func startCameraEffect(s *State) Effect {
	return issue(s, IntentCamera, func(ctx context.Context, d Deps, seq uint64) Event {
		err := d.Camera.Start(ctx, media.DefaultResolution)
		if err == nil && ctx.Err() != nil {
			_ = d.Camera.Stop()
			err = ctx.Err()
		}
		return CameraStarted{Seq: seq, Err: err}
	})
}

func stopCameraEffect() Effect {
	return fire(func(ctx context.Context, d Deps) Event {
		_ = d.Camera.Stop()
		return nil
	})
}

func captureEffect(s *State) Effect {
	return issue(s, IntentCapture, func(ctx context.Context, d Deps, seq uint64) Event {
		frame, err := d.Camera.Snapshot()
		if err != nil {
			return CaptureCompleted{Seq: seq, Err: err}
		}
		image, err := media.EncodeDataURL(frame, d.JPEGQuality)
		if err != nil {
			return CaptureCompleted{Seq: seq, Err: err}
		}
		result, err := d.Backend.Analyze(ctx, image)
		return CaptureCompleted{Seq: seq, Result: result, Err: err}
	})
}

func recommendEffect(s *State, emotion string) Effect {
	return issue(s, IntentRecommend, func(ctx context.Context, d Deps, seq uint64) Event {
		songs, err := d.Backend.Recommend(ctx, emotion)
		return RecommendationsLoaded{Seq: seq, Emotion: emotion, Songs: songs, Err: err}
	})
}

func favoritesEffect(s *State) Effect {
	return issue(s, IntentFavorites, func(ctx context.Context, d Deps, seq uint64) Event {
		songs, err := d.Backend.Favorites(ctx)
		return FavoritesLoaded{Seq: seq, Songs: songs, Err: err}
	})
}

func addFavoriteEffect(song models.Song) Effect {
	return fire(func(ctx context.Context, d Deps) Event {
		return FavoriteAdded{Song: song, Err: d.Backend.AddFavorite(ctx, song.ID)}
	})
}

func removeFavoriteEffect(id models.SongID) Effect {
	return fire(func(ctx context.Context, d Deps) Event {
		return FavoriteRemoved{SongID: id, Err: d.Backend.RemoveFavorite(ctx, id)}
	})
}

func playbackEffect(song models.Song) Effect {
	return fire(func(ctx context.Context, d Deps) Event {
		return PlaybackStarted{SongID: song.ID, Err: d.Player.Play(ctx, d.Backend.ResolveURL(song.FilePath))}
	})
}

func trackPlayEffect(id models.SongID) Effect {
	return fire(func(ctx context.Context, d Deps) Event {
		return PlayTracked{SongID: id, Err: d.Backend.TrackPlay(ctx, id)}
	})
}

func preferencesEffect(s *State) Effect {
	return issue(s, IntentPreferences, func(ctx context.Context, d Deps, seq uint64) Event {
		prefs, err := d.Backend.Preferences(ctx)
		return PreferencesLoaded{Seq: seq, Preferences: prefs, Err: err}
	})
}

func savePreferencesEffect(s *State, prefs models.Preferences) Effect {
	return issue(s, IntentSavePreferences, func(ctx context.Context, d Deps, seq uint64) Event {
		return PreferencesSaved{Seq: seq, Preferences: prefs, Err: d.Backend.SavePreferences(ctx, prefs)}
	})
}

// dashboardEffects loads every dashboard panel.
func dashboardEffects(s *State) []Effect {
	historyLimit, mostPlayedLimit := s.Settings.HistoryLimit, s.Settings.MostPlayedLimit
	return []Effect{
		issue(s, IntentEmotionHistory, func(ctx context.Context, d Deps, seq uint64) Event {
			records, err := d.Backend.EmotionHistory(ctx, historyLimit)
			return EmotionHistoryLoaded{Seq: seq, Records: records, Err: err}
		}),
		issue(s, IntentListeningHistory, func(ctx context.Context, d Deps, seq uint64) Event {
			records, err := d.Backend.ListeningHistory(ctx, historyLimit)
			return ListeningHistoryLoaded{Seq: seq, Records: records, Err: err}
		}),
		issue(s, IntentMostPlayed, func(ctx context.Context, d Deps, seq uint64) Event {
			songs, err := d.Backend.MostPlayed(ctx, mostPlayedLimit)
			return MostPlayedLoaded{Seq: seq, Songs: songs, Err: err}
		}),
		issue(s, IntentEmotionStats, func(ctx context.Context, d Deps, seq uint64) Event {
			stats, err := d.Backend.EmotionStats(ctx)
			return EmotionStatsLoaded{Seq: seq, Stats: stats, Err: err}
		}),
	}
}

func uploadEffect(s *State, upload models.Upload) Effect {
	return issue(s, IntentUpload, func(ctx context.Context, d Deps, seq uint64) Event {
		msg, err := d.Backend.UploadSong(ctx, upload)
		return UploadCompleted{Seq: seq, Message: msg, Err: err}
	})
}

func adminPanelEffect() Effect {
	return fire(func(ctx context.Context, d Deps) Event {
		return AdminPanelOpened{Err: d.Browser.Open(d.Backend.ResolveURL("/admin/panel"))}
	})
}

func journalCaptureEffect(username string, result models.CaptureResult) Effect {
	return fire(func(ctx context.Context, d Deps) Event {
		if d.Journal == nil {
			return nil
		}
		if err := d.Journal.RecordCapture(ctx, username, result); err != nil {
			return JournalWritten{Entry: "capture", Err: err}
		}
		return nil
	})
}

func journalSongsEffect(songs []models.Song, source string) Effect {
	return fire(func(ctx context.Context, d Deps) Event {
		if d.Journal == nil || len(songs) == 0 {
			return nil
		}
		if err := d.Journal.RecordSongs(ctx, songs, source); err != nil {
			return JournalWritten{Entry: "songs", Err: err}
		}
		return nil
	})
}

func expireEffect(id int, ttl time.Duration) Effect {
	return fire(func(ctx context.Context, d Deps) Event {
		timer := time.NewTimer(ttl)
		defer timer.Stop()
		select {
		case <-timer.C:
			return DismissNotification{ID: id}
		case <-ctx.Done():
			return nil
		}
	})
}
