package controller

import (
	"errors"
	"slices"
	"strings"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/services"
	"github.com/desertthunder/moodtune/internal/shared"
)

// User-facing messages.
const (
	MsgStartCamera      = "Please start the camera first."
	MsgCameraDenied     = "Could not access camera. Please check permissions."
	MsgMissingFields    = "Please fill in all required fields"
	MsgUploading        = "Uploading..."
	MsgUploadFailed     = "Error uploading song. Please try again."
	MsgPreferencesSaved = "Preferences saved successfully!"
	MsgAdminRequired    = "Admin access required"
	MsgNoRecommendation = "No recommendations found for this emotion."
	MsgNoFavorites      = "You have no favorite songs yet."
	TitleNowPlaying     = "Now Playing"
)

// Update applies ev to s and returns the next state with the effects to run. It performs no I/O.
func Update(s State, ev Event) (State, []Effect) {
	if Stale(s, ev) {
		return s, nil
	}

	s = s.clone()
	if t, ok := ev.(tracked); ok {
		delete(s.Inflight, t.intent())
	}

	switch ev := ev.(type) {
	case CheckSession:
		return s, []Effect{checkSessionEffect(&s)}

	case SessionChecked:
		if ev.Err != nil || ev.User == nil {
			if !s.Authenticated() {
				return s, nil
			}
			next := s.signedOut()
			return next, append([]Effect{cancelAll()}, stopCameraIf(s)...)
		}
		return signIn(s, ev.User)

	case Login:
		return s, []Effect{loginEffect(&s, ev.Username, ev.Password)}

	case LoginCompleted:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Login"))
		}
		return s, []Effect{checkSessionEffect(&s)}

	case Register:
		return s, []Effect{registerEffect(&s, ev.Username, ev.Email, ev.Password)}

	case RegisterCompleted:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Registration"))
		}
		if ev.LoginErr != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.LoginErr, "Login"))
		}
		return s, []Effect{checkSessionEffect(&s)}

	case Logout:
		return s, []Effect{logoutEffect(&s)}

	case LogoutCompleted:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Logout"))
		}
		next := s.signedOut()
		return next, append([]Effect{cancelAll()}, stopCameraIf(s)...)

	case Navigate:
		return navigate(s, ev.To)

	case StartCamera:
		if !s.Authenticated() || s.Camera.Active || s.Camera.Starting {
			return s, nil
		}
		s.Camera.Starting = true
		return s, []Effect{startCameraEffect(&s)}

	case CameraStarted:
		s.Camera.Starting = false
		if ev.Err != nil {
			return notify(s, LevelError, "", MsgCameraDenied)
		}
		s.Camera.Active = true
		return s, nil

	case StopCamera:
		if !s.Camera.Active && !s.Camera.Starting {
			return s, nil
		}
		effects := stopCameraIf(s)
		s.Camera = CameraState{}
		s.Capture = nil
		effects = append(effects, cancel(&s, IntentCamera), cancel(&s, IntentCapture))
		return s, effects

	case Capture:
		if !s.Camera.Active {
			return notify(s, LevelWarning, "", MsgStartCamera)
		}
		return s, []Effect{captureEffect(&s)}

	case CaptureCompleted:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Emotion analysis"))
		}
		result := ev.Result
		s.Capture = &result
		effects := []Effect{recommendEffect(&s, result.Emotion)}
		s.Recommendations.Loading = true
		if s.Session != nil {
			effects = append(effects, journalCaptureEffect(s.Session.Username, result))
		}
		return s, effects

	case Refresh:
		if s.Capture == nil {
			return s, nil
		}
		s.Recommendations.Loading = true
		return s, []Effect{recommendEffect(&s, s.Capture.Emotion)}

	case Recommend:
		emotion := strings.TrimSpace(ev.Emotion)
		if emotion == "" || !s.Authenticated() {
			return s, nil
		}
		s.Recommendations.Loading = true
		return s, []Effect{recommendEffect(&s, emotion)}

	case RecommendationsLoaded:
		s.Recommendations.Loading = false
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Recommendation"))
		}
		songs := ev.Songs
		if songs == nil {
			songs = []models.Song{}
		}
		s.Recommendations = RecommendationsState{Emotion: ev.Emotion, Songs: songs, Loaded: true}
		s.Favorited = map[models.SongID]bool{}
		s.Highlight = keepHighlight(s, ListRecommendations)
		return s, []Effect{journalSongsEffect(songs, "recommendation")}

	case AddFavorite:
		if !s.Authenticated() {
			return s, nil
		}
		return s, []Effect{addFavoriteEffect(ev.Song)}

	case FavoriteAdded:
		if !s.Authenticated() {
			return s, nil
		}
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Adding to favorites"))
		}
		s.Favorited[ev.Song.ID] = true
		if s.Favorites.Loaded && !s.Favorites.Contains(ev.Song.ID) {
			s.Favorites.Songs = append(slices.Clone(s.Favorites.Songs), ev.Song)
		}
		return s, nil

	case RemoveFavorite:
		if !s.Authenticated() {
			return s, nil
		}
		return s, []Effect{removeFavoriteEffect(ev.SongID)}

	case FavoriteRemoved:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Removing favorite"))
		}
		s.Favorites.Songs = slices.DeleteFunc(slices.Clone(s.Favorites.Songs), func(song models.Song) bool {
			return song.ID == ev.SongID
		})
		delete(s.Favorited, ev.SongID)
		s.Highlight = keepHighlight(s, "")
		return s, nil

	case Play:
		if !s.Authenticated() {
			return s, nil
		}
		song := ev.Song
		s.NowPlaying = &models.NowPlaying{SongID: song.ID, Path: song.FilePath, Label: song.Label()}
		s.Highlight = &PlayControl{List: ev.List, SongID: song.ID}
		var effects []Effect
		s, effects = notify(s, LevelInfo, TitleNowPlaying, song.Label())
		return s, append(effects, playbackEffect(song), trackPlayEffect(song.ID))

	case PlaybackStarted:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Playback"))
		}
		return s, nil

	case PlayTracked:
		return s, nil

	case JournalWritten:
		return s, nil

	case LoadPreferences:
		if !s.Authenticated() {
			return s, nil
		}
		return s, []Effect{preferencesEffect(&s)}

	case PreferencesLoaded:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Loading preferences"))
		}
		s.Preferences = ev.Preferences
		return s, nil

	case SavePreferences:
		if !s.Authenticated() {
			return s, nil
		}
		return s, []Effect{savePreferencesEffect(&s, ev.Preferences)}

	case PreferencesSaved:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Saving preferences"))
		}
		s.Preferences = ev.Preferences
		return notify(s, LevelSuccess, "", MsgPreferencesSaved)

	case LoadDashboard:
		if !s.Authenticated() {
			return s, nil
		}
		return s, dashboardEffects(&s)

	case EmotionHistoryLoaded:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Loading emotion history"))
		}
		s.Dashboard.EmotionHistory = ev.Records
		s.Dashboard.Loaded.EmotionHistory = true
		return s, nil

	case ListeningHistoryLoaded:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Loading listening history"))
		}
		s.Dashboard.ListeningHistory = ev.Records
		s.Dashboard.Loaded.ListeningHistory = true
		s.Highlight = keepHighlight(s, ListHistory)
		return s, nil

	case MostPlayedLoaded:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Loading most played"))
		}
		s.Dashboard.MostPlayed = ev.Songs
		s.Dashboard.Loaded.MostPlayed = true
		s.Highlight = keepHighlight(s, ListMostPlayed)
		return s, nil

	case EmotionStatsLoaded:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Loading emotion stats"))
		}
		s.Dashboard.Stats = ev.Stats
		s.Dashboard.Loaded.Stats = true
		return s, nil

	case FavoritesLoaded:
		s.Favorites.Loading = false
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Loading favorites"))
		}
		songs := ev.Songs
		if songs == nil {
			songs = []models.Song{}
		}
		s.Favorites = FavoritesState{Songs: songs, Loaded: true}
		s.Highlight = keepHighlight(s, ListFavorites)
		return s, []Effect{journalSongsEffect(songs, "favorite")}

	case UploadSong:
		if !s.Authenticated() {
			return s, nil
		}
		if ev.Upload.Missing() {
			s.Upload = UploadState{Status: MsgMissingFields, Failed: true}
			return notify(s, LevelWarning, "", MsgMissingFields)
		}
		s.Upload = UploadState{InProgress: true, Status: MsgUploading}
		return s, []Effect{uploadEffect(&s, ev.Upload)}

	case UploadCompleted:
		if ev.Err != nil {
			status := MsgUploadFailed
			if msg, ok := services.ServerMessage(ev.Err); ok && msg != "" {
				status = msg
			}
			s.Upload = UploadState{Status: status, Failed: true}
			return notify(s, LevelError, "", status)
		}
		s.Upload = UploadState{Status: ev.Message}
		return notify(s, LevelSuccess, "", ev.Message)

	case OpenAdminPanel:
		if s.Session == nil || !s.Session.IsAdmin {
			return notify(s, LevelError, "", MsgAdminRequired)
		}
		return s, []Effect{adminPanelEffect()}

	case AdminPanelOpened:
		if ev.Err != nil {
			return notify(s, LevelError, "", services.UserMessage(ev.Err, "Opening admin panel"))
		}
		return s, nil

	case DismissNotification:
		s.Notifications = slices.DeleteFunc(s.Notifications, func(n Notification) bool { return n.ID == ev.ID })
		return s, nil
	}

	return s, nil
}

// signIn establishes the session, shows the dashboard and loads the user's data. A different user replaces the
// previous user's state before anything is loaded.
func signIn(s State, user *models.User) (State, []Effect) {
	var effects []Effect
	if s.Session != nil && s.Session.Username != user.Username {
		effects = append([]Effect{cancelAll()}, stopCameraIf(s)...)
		s = s.signedOut()
	}

	u := *user
	s.Session = &u
	s.Section = SectionDashboard
	effects = append(effects, preferencesEffect(&s))
	effects = append(effects, dashboardEffects(&s)...)
	return s, effects
}

func navigate(s State, to Section) (State, []Effect) {
	if !s.Authenticated() || !slices.Contains(Sections(), to) {
		return s, nil
	}
	s.Section = to

	switch to {
	case SectionFavorites:
		s.Favorites.Loading = true
		return s, []Effect{favoritesEffect(&s)}
	case SectionDashboard:
		return s, dashboardEffects(&s)
	}
	return s, nil
}

// stopCameraIf releases the camera device when the state says it is held or being acquired.
func stopCameraIf(s State) []Effect {
	if s.Camera.Active || s.Camera.Starting {
		return []Effect{stopCameraEffect()}
	}
	return nil
}

// keepHighlight returns the highlight if its control still exists after list was replaced. An empty list kind
// checks the highlight's own list.
func keepHighlight(s State, list ListKind) *PlayControl {
	h := s.Highlight
	if h == nil {
		return nil
	}
	if list != "" && h.List != list {
		return h
	}
	if !slices.Contains(s.ListIDs(h.List), h.SongID) {
		return nil
	}
	return h
}

// notify appends a notification and, when notifications expire, schedules its dismissal.
func notify(s State, level Level, title, message string) (State, []Effect) {
	s.NextNotice++
	n := Notification{ID: s.NextNotice, Level: level, Title: title, Message: message}
	s.Notifications = append(s.Notifications, n)

	if s.Settings.NoticeTTL > 0 {
		return s, []Effect{expireEffect(n.ID, s.Settings.NoticeTTL)}
	}
	return s, nil
}

// ErrorKind classifies a completion error for logging: "transport", "application" or "other".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, shared.ErrApplication):
		return "application"
	case errors.Is(err, shared.ErrTransport):
		return "transport"
	default:
		return "other"
	}
}
