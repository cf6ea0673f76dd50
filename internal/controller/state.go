package controller

import (
	"maps"
	"slices"
	"time"

	"github.com/desertthunder/moodtune/internal/models"
)

// Section is a top-level view.
type Section string

const (
	SectionAuth      Section = "auth"
	SectionDashboard Section = "dashboard"
	SectionDetection Section = "detection"
	SectionFavorites Section = "favorites"
)

// Sections returns the authenticated sections in navigation order.
func Sections() []Section {
	return []Section{SectionDashboard, SectionDetection, SectionFavorites}
}

// ListKind names a list that carries play controls.
type ListKind string

const (
	ListRecommendations ListKind = "recommendations"
	ListFavorites       ListKind = "favorites"
	ListHistory         ListKind = "history"
	ListMostPlayed      ListKind = "most_played"
)

// PlayControl identifies one play button: the first entry for SongID in List.
type PlayControl struct {
	List   ListKind      `json:"list"`
	SongID models.SongID `json:"song_id"`
}

// Level is a notification severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	ID      int    `json:"id"`
	Level   Level  `json:"level"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

type CameraState struct {
	Active   bool `json:"active"`
	Starting bool `json:"starting"`
}

type RecommendationsState struct {
	Emotion string        `json:"emotion"`
	Songs   []models.Song `json:"songs"`
	Loaded  bool          `json:"loaded"`
	Loading bool          `json:"loading"`
}

// Empty reports the "no recommendations" state: a completed fetch that returned nothing.
func (r RecommendationsState) Empty() bool {
	return r.Loaded && len(r.Songs) == 0
}

type FavoritesState struct {
	Songs   []models.Song `json:"songs"`
	Loaded  bool          `json:"loaded"`
	Loading bool          `json:"loading"`
}

// Contains reports whether id is in the favorites list.
func (f FavoritesState) Contains(id models.SongID) bool {
	return slices.ContainsFunc(f.Songs, func(s models.Song) bool { return s.ID == id })
}

type DashboardLoaded struct {
	EmotionHistory   bool `json:"emotion_history"`
	ListeningHistory bool `json:"listening_history"`
	MostPlayed       bool `json:"most_played"`
	Stats            bool `json:"stats"`
}

type DashboardState struct {
	EmotionHistory   []models.EmotionRecord   `json:"emotion_history"`
	ListeningHistory []models.ListeningRecord `json:"listening_history"`
	MostPlayed       []models.PlayedSong      `json:"most_played"`
	Stats            models.EmotionStats      `json:"stats"`
	Loaded           DashboardLoaded          `json:"loaded"`
}

type UploadState struct {
	InProgress bool   `json:"in_progress"`
	Status     string `json:"status,omitempty"`
	Failed     bool   `json:"failed"`
}

// Settings are the tunables the controller reads from configuration.
type Settings struct {
	HistoryLimit    int           `json:"history_limit"`
	MostPlayedLimit int           `json:"most_played_limit"`
	NoticeTTL       time.Duration `json:"notice_ttl"`
}

// DefaultSettings matches the limits the web client requests.
func DefaultSettings() Settings {
	return Settings{HistoryLimit: 20, MostPlayedLimit: 10}
}

// State is the complete client state.
//
// Values are treated as immutable: [Update] copies any map or slice before changing it, so a State handed to a
// surface stays valid after later transitions.
type State struct {
	Session         *models.User           `json:"session,omitempty"`
	Section         Section                `json:"section"`
	Camera          CameraState            `json:"camera"`
	Capture         *models.CaptureResult  `json:"capture,omitempty"`
	Recommendations RecommendationsState   `json:"recommendations"`
	Favorited       map[models.SongID]bool `json:"favorited,omitempty"`
	Favorites       FavoritesState         `json:"favorites"`
	NowPlaying      *models.NowPlaying     `json:"now_playing,omitempty"`
	Highlight       *PlayControl           `json:"highlight,omitempty"`
	Preferences     models.Preferences     `json:"preferences"`
	Dashboard       DashboardState         `json:"dashboard"`
	Upload          UploadState            `json:"upload"`
	Notifications   []Notification         `json:"notifications,omitempty"`
	NextNotice      int                    `json:"next_notice"`
	Inflight        map[Intent]uint64      `json:"inflight,omitempty"`
	Seq             uint64                 `json:"seq"`
	Settings        Settings               `json:"settings"`
}

// NewState returns the initial, unauthenticated state.
func NewState(settings Settings) State {
	return State{
		Section:   SectionAuth,
		Favorited: map[models.SongID]bool{},
		Inflight:  map[Intent]uint64{},
		Settings:  settings,
	}
}

// Authenticated reports whether a session user is present.
func (s State) Authenticated() bool {
	return s.Session != nil
}

// Visible returns the one section currently shown. The auth section is shown exactly when there is no session.
func (s State) Visible() Section {
	if s.Session == nil {
		return SectionAuth
	}
	switch s.Section {
	case SectionDetection, SectionFavorites:
		return s.Section
	default:
		return SectionDashboard
	}
}

// CaptureLabel returns the displayed emotion and confidence, "None" and "0%" when there is no capture.
func (s State) CaptureLabel() (string, string) {
	if s.Capture == nil {
		return "None", "0%"
	}
	return s.Capture.Emotion, s.Capture.Percent()
}

// IsHighlighted reports whether the play control at index i of list is the highlighted one.
//
// Only the first entry for the highlighted song in its list is lit, so at most one control is highlighted.
func (s State) IsHighlighted(list ListKind, ids []models.SongID, i int) bool {
	if s.Highlight == nil || s.Highlight.List != list || i < 0 || i >= len(ids) {
		return false
	}
	return slices.Index(ids, s.Highlight.SongID) == i
}

// ListIDs returns the song ids of a play-control list in display order.
func (s State) ListIDs(list ListKind) []models.SongID {
	var ids []models.SongID
	switch list {
	case ListRecommendations:
		for _, song := range s.Recommendations.Songs {
			ids = append(ids, song.ID)
		}
	case ListFavorites:
		for _, song := range s.Favorites.Songs {
			ids = append(ids, song.ID)
		}
	case ListHistory:
		for _, r := range s.Dashboard.ListeningHistory {
			ids = append(ids, r.ID)
		}
	case ListMostPlayed:
		for _, p := range s.Dashboard.MostPlayed {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// HighlightCount counts highlighted play controls across every list.
func (s State) HighlightCount() int {
	n := 0
	for _, list := range []ListKind{ListRecommendations, ListFavorites, ListHistory, ListMostPlayed} {
		ids := s.ListIDs(list)
		for i := range ids {
			if s.IsHighlighted(list, ids, i) {
				n++
			}
		}
	}
	return n
}

// clone copies the maps and the notification slice so the receiver can be changed without touching s.
func (s State) clone() State {
	s.Favorited = maps.Clone(s.Favorited)
	if s.Favorited == nil {
		s.Favorited = map[models.SongID]bool{}
	}
	s.Inflight = maps.Clone(s.Inflight)
	if s.Inflight == nil {
		s.Inflight = map[Intent]uint64{}
	}
	s.Notifications = slices.Clone(s.Notifications)
	return s
}

// signedOut returns the unauthenticated state that follows a logout or failed session check.
//
// Settings, sequence counters and pending notifications survive.
func (s State) signedOut() State {
	next := NewState(s.Settings)
	next.Seq = s.Seq
	next.NextNotice = s.NextNotice
	next.Notifications = s.Notifications
	return next
}
