package controller

import (
	"github.com/desertthunder/moodtune/internal/models"
)

// Event is an input to [Update]: a user intent or the completion of an effect.
type Event interface {
	event()
}

// Completion is an event produced by a finished effect. Failure returns the request error, if any.
type Completion interface {
	Event
	Failure() error
}

// tracked is a completion belonging to a tracked intent.
type tracked interface {
	Completion
	intent() Intent
	seq() uint64
}

// User intents.
type (
	CheckSession struct{}

	Login struct {
		Username string
		Password string
	}

	Register struct {
		Username string
		Email    string
		Password string
	}

	Logout struct{}

	Navigate struct{ To Section }

	StartCamera struct{}
	StopCamera  struct{}

	Capture struct{}

	// Refresh re-requests recommendations for the current capture.
	Refresh struct{}

	Recommend struct{ Emotion string }

	AddFavorite    struct{ Song models.Song }
	RemoveFavorite struct{ SongID models.SongID }

	Play struct {
		Song models.Song
		List ListKind
	}

	LoadPreferences struct{}
	SavePreferences struct{ Preferences models.Preferences }

	LoadDashboard struct{}

	UploadSong struct{ Upload models.Upload }

	OpenAdminPanel struct{}

	DismissNotification struct{ ID int }
)

func (CheckSession) event()        {}
func (Login) event()               {}
func (Register) event()            {}
func (Logout) event()              {}
func (Navigate) event()            {}
func (StartCamera) event()         {}
func (StopCamera) event()          {}
func (Capture) event()             {}
func (Refresh) event()             {}
func (Recommend) event()           {}
func (AddFavorite) event()         {}
func (RemoveFavorite) event()      {}
func (Play) event()                {}
func (LoadPreferences) event()     {}
func (SavePreferences) event()     {}
func (LoadDashboard) event()       {}
func (UploadSong) event()          {}
func (OpenAdminPanel) event()      {}
func (DismissNotification) event() {}

// Tracked completions.
type (
	SessionChecked struct {
		Seq  uint64
		User *models.User
		Err  error
	}

	LoginCompleted struct {
		Seq uint64
		Err error
	}

	// RegisterCompleted reports the register-then-login sequence. LoginErr is set when registration succeeded
	// but the follow-up login did not.
	RegisterCompleted struct {
		Seq      uint64
		Err      error
		LoginErr error
	}

	LogoutCompleted struct {
		Seq uint64
		Err error
	}

	CameraStarted struct {
		Seq uint64
		Err error
	}

	CaptureCompleted struct {
		Seq    uint64
		Result models.CaptureResult
		Err    error
	}

	RecommendationsLoaded struct {
		Seq     uint64
		Emotion string
		Songs   []models.Song
		Err     error
	}

	FavoritesLoaded struct {
		Seq   uint64
		Songs []models.Song
		Err   error
	}

	PreferencesLoaded struct {
		Seq         uint64
		Preferences models.Preferences
		Err         error
	}

	PreferencesSaved struct {
		Seq         uint64
		Preferences models.Preferences
		Err         error
	}

	EmotionHistoryLoaded struct {
		Seq     uint64
		Records []models.EmotionRecord
		Err     error
	}

	ListeningHistoryLoaded struct {
		Seq     uint64
		Records []models.ListeningRecord
		Err     error
	}

	MostPlayedLoaded struct {
		Seq   uint64
		Songs []models.PlayedSong
		Err   error
	}

	EmotionStatsLoaded struct {
		Seq   uint64
		Stats models.EmotionStats
		Err   error
	}

	UploadCompleted struct {
		Seq     uint64
		Message string
		Err     error
	}
)

// Untracked completions.
type (
	FavoriteAdded struct {
		Song models.Song
		Err  error
	}

	FavoriteRemoved struct {
		SongID models.SongID
		Err    error
	}

	PlaybackStarted struct {
		SongID models.SongID
		Err    error
	}

	PlayTracked struct {
		SongID models.SongID
		Err    error
	}

	AdminPanelOpened struct {
		Err error
	}

	// JournalWritten reports a failed write to the local cache. Entry is "capture" or "songs".
	JournalWritten struct {
		Entry string
		Err   error
	}
)

func (e SessionChecked) event()         {}
func (e LoginCompleted) event()         {}
func (e RegisterCompleted) event()      {}
func (e LogoutCompleted) event()        {}
func (e CameraStarted) event()          {}
func (e CaptureCompleted) event()       {}
func (e RecommendationsLoaded) event()  {}
func (e FavoritesLoaded) event()        {}
func (e PreferencesLoaded) event()      {}
func (e PreferencesSaved) event()       {}
func (e EmotionHistoryLoaded) event()   {}
func (e ListeningHistoryLoaded) event() {}
func (e MostPlayedLoaded) event()       {}
func (e EmotionStatsLoaded) event()     {}
func (e UploadCompleted) event()        {}
func (e FavoriteAdded) event()          {}
func (e FavoriteRemoved) event()        {}
func (e PlaybackStarted) event()        {}
func (e PlayTracked) event()            {}
func (e AdminPanelOpened) event()       {}
func (e JournalWritten) event()         {}

func (e SessionChecked) Failure() error         { return e.Err }
func (e LoginCompleted) Failure() error         { return e.Err }
func (e LogoutCompleted) Failure() error        { return e.Err }
func (e CameraStarted) Failure() error          { return e.Err }
func (e CaptureCompleted) Failure() error       { return e.Err }
func (e RecommendationsLoaded) Failure() error  { return e.Err }
func (e FavoritesLoaded) Failure() error        { return e.Err }
func (e PreferencesLoaded) Failure() error      { return e.Err }
func (e PreferencesSaved) Failure() error       { return e.Err }
func (e EmotionHistoryLoaded) Failure() error   { return e.Err }
func (e ListeningHistoryLoaded) Failure() error { return e.Err }
func (e MostPlayedLoaded) Failure() error       { return e.Err }
func (e EmotionStatsLoaded) Failure() error     { return e.Err }
func (e UploadCompleted) Failure() error        { return e.Err }
func (e FavoriteAdded) Failure() error          { return e.Err }
func (e FavoriteRemoved) Failure() error        { return e.Err }
func (e PlaybackStarted) Failure() error        { return e.Err }
func (e PlayTracked) Failure() error            { return e.Err }
func (e AdminPanelOpened) Failure() error       { return e.Err }
func (e JournalWritten) Failure() error         { return e.Err }

func (e RegisterCompleted) Failure() error {
	if e.Err != nil {
		return e.Err
	}
	return e.LoginErr
}

func (e SessionChecked) intent() Intent         { return IntentSession }
func (e LoginCompleted) intent() Intent         { return IntentLogin }
func (e RegisterCompleted) intent() Intent      { return IntentRegister }
func (e LogoutCompleted) intent() Intent        { return IntentLogout }
func (e CameraStarted) intent() Intent          { return IntentCamera }
func (e CaptureCompleted) intent() Intent       { return IntentCapture }
func (e RecommendationsLoaded) intent() Intent  { return IntentRecommend }
func (e FavoritesLoaded) intent() Intent        { return IntentFavorites }
func (e PreferencesLoaded) intent() Intent      { return IntentPreferences }
func (e PreferencesSaved) intent() Intent       { return IntentSavePreferences }
func (e EmotionHistoryLoaded) intent() Intent   { return IntentEmotionHistory }
func (e ListeningHistoryLoaded) intent() Intent { return IntentListeningHistory }
func (e MostPlayedLoaded) intent() Intent       { return IntentMostPlayed }
func (e EmotionStatsLoaded) intent() Intent     { return IntentEmotionStats }
func (e UploadCompleted) intent() Intent        { return IntentUpload }

func (e SessionChecked) seq() uint64         { return e.Seq }
func (e LoginCompleted) seq() uint64         { return e.Seq }
func (e RegisterCompleted) seq() uint64      { return e.Seq }
func (e LogoutCompleted) seq() uint64        { return e.Seq }
func (e CameraStarted) seq() uint64          { return e.Seq }
func (e CaptureCompleted) seq() uint64       { return e.Seq }
func (e RecommendationsLoaded) seq() uint64  { return e.Seq }
func (e FavoritesLoaded) seq() uint64        { return e.Seq }
func (e PreferencesLoaded) seq() uint64      { return e.Seq }
func (e PreferencesSaved) seq() uint64       { return e.Seq }
func (e EmotionHistoryLoaded) seq() uint64   { return e.Seq }
func (e ListeningHistoryLoaded) seq() uint64 { return e.Seq }
func (e MostPlayedLoaded) seq() uint64       { return e.Seq }
func (e EmotionStatsLoaded) seq() uint64     { return e.Seq }
func (e UploadCompleted) seq() uint64        { return e.Seq }

// Stale reports whether ev is a tracked completion that has been superseded or canceled.
func Stale(s State, ev Event) bool {
	t, ok := ev.(tracked)
	if !ok {
		return false
	}
	return s.Inflight[t.intent()] != t.seq()
}
