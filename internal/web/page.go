package web

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/models"
)

// Placeholder texts for empty lists.
const (
	EmptyEmotionHistory   = "No emotion history yet. Capture your first emotion!"
	EmptyListeningHistory = "No listening history yet. Play your first song!"
	EmptyMostPlayed       = "No songs played yet!"
	EmptyStats            = "No emotion data yet"
)

// Document wraps [Page] in a complete HTML document.
func Document(s controller.State) Node {
	return El("html", A("lang", "en"),
		El("head", nil,
			El("meta", A("charset", "utf-8")),
			El("title", nil, Text("Emotion Music")),
		),
		El("body", nil, Page(s)),
	)
}

// Page renders the client view of s.
func Page(s controller.State) Node {
	visible := s.Visible()
	return El("div", A("id", "app"),
		authSection(visible == controller.SectionAuth),
		userSection(s, visible),
		nowPlaying(s),
		toasts(s.Notifications),
	)
}

func hiddenUnless(show bool, classes ...string) string {
	if !show {
		classes = append(classes, "d-none")
	}
	return Class(classes...)
}

func authSection(show bool) Node {
	field := func(name, kind string) Node {
		return El("input", A("class", "form-control mb-2", "type", kind, "name", name, "placeholder", name))
	}
	return El("section", A("id", "auth-section", "class", hiddenUnless(show, "container")),
		El("form", A("id", "login-form", "data-action", "login"),
			El("h2", nil, Text("Login")),
			field("username", "text"),
			field("password", "password"),
			El("button", A("class", "btn btn-primary", "type", "submit"), Text("Login")),
		),
		El("form", A("id", "register-form", "data-action", "register"),
			El("h2", nil, Text("Register")),
			field("username", "text"),
			field("email", "email"),
			field("password", "password"),
			El("button", A("class", "btn btn-secondary", "type", "submit"), Text("Register")),
		),
	)
}

func userSection(s controller.State, visible controller.Section) Node {
	authenticated := visible != controller.SectionAuth
	return El("div", A("id", "user-section", "class", hiddenUnless(authenticated)),
		navbar(s, visible),
		dashboardSection(s, visible == controller.SectionDashboard),
		detectionSection(s, visible == controller.SectionDetection),
		favoritesSection(s, visible == controller.SectionFavorites),
	)
}

func navbar(s controller.State, visible controller.Section) Node {
	username, admin := "", false
	if s.Session != nil {
		username, admin = s.Session.Username, s.Session.IsAdmin
	}

	items := []Node{El("span", A("id", "username-display", "class", "navbar-text me-3"), Text(username))}
	for _, section := range controller.Sections() {
		class := "btn btn-sm btn-outline-light me-2"
		if section == visible {
			class = "btn btn-sm btn-light me-2 active"
		}
		items = append(items, El("button", A("class", class, "data-section", string(section)), Text(sectionTitle(section))))
	}
	items = append(items,
		El("button", A("id", "admin-panel-btn", "class", hiddenUnless(admin, "btn", "btn-sm", "btn-warning", "me-2")), Text("Admin Panel")),
		El("button", A("id", "logout-btn", "class", "btn btn-sm btn-danger"), Text("Logout")),
	)
	return El("nav", A("class", "navbar navbar-dark bg-dark"), items...)
}

func sectionTitle(section controller.Section) string {
	switch section {
	case controller.SectionDetection:
		return "Detect Emotion"
	case controller.SectionFavorites:
		return "Favorites"
	default:
		return "Dashboard"
	}
}

func dashboardSection(s controller.State, show bool) Node {
	d := s.Dashboard
	return El("section", A("id", "dashboard-section", "class", hiddenUnless(show, "container")),
		preferencesForm(s.Preferences),
		El("div", A("id", "emotion-history"), emotionHistory(d.EmotionHistory)),
		El("div", A("id", "listening-history"), listeningHistory(s, d.ListeningHistory)),
		El("div", A("id", "most-played"), mostPlayed(s, d.MostPlayed)),
		El("div", A("id", "emotion-stats"), emotionStats(d.Stats)),
	)
}

func preferencesForm(p models.Preferences) Node {
	return El("form", A("id", "preferences-form", "data-action", "save-preferences"),
		El("input", A("class", "form-control mb-2", "name", "preferred_genre", "value", p.PreferredGenre)),
		El("input", A("class", "form-control mb-2", "name", "preferred_artist", "value", p.PreferredArtist)),
		El("button", A("class", "btn btn-primary", "type", "submit"), Text("Save Preferences")),
	)
}

func emptyState(text string) Node {
	return El("div", A("class", "empty-state"), El("div", A("class", "empty-state-text"), Text(text)))
}

func emotionBadge(emotion string) Node {
	return El("span", A("class", "badge bg-"+string(models.EmotionColor(emotion))), Text(strings.ToUpper(emotion)))
}

func emotionHistory(records []models.EmotionRecord) Node {
	if len(records) == 0 {
		return emptyState(EmptyEmotionHistory)
	}
	items := make([]Node, 0, len(records))
	for _, r := range records {
		items = append(items, El("div", A("class", "timeline-item"),
			emotionBadge(r.Emotion),
			El("small", A("class", "text-muted ms-2"), Text(models.FormatPercent(r.Confidence, 1)+" confidence")),
			El("small", A("class", "text-muted"), Text(models.DisplayTime(r.Timestamp))),
		))
	}
	return El("div", A("class", "timeline"), items...)
}

// playButton renders the play control for entry i of list.
func playButton(s controller.State, list controller.ListKind, ids []models.SongID, i int, song models.Song) Node {
	class := "btn btn-sm btn-outline-primary play-btn me-2"
	if s.IsHighlighted(list, ids, i) {
		class = "btn btn-sm btn-primary play-btn me-2"
	}
	return El("button", A(
		"class", class,
		"data-list", string(list),
		"data-id", song.ID.String(),
		"data-path", song.FilePath,
		"data-title", song.Title,
		"data-artist", song.Artist,
	), Text("▶ Play"))
}

func songSummary(song models.Song, extra ...Node) Node {
	children := []Node{
		El("strong", nil, Text(song.Title)),
		El("br", nil),
		El("small", A("class", "text-muted"), Text(song.Artist)),
	}
	return El("div", nil, append(children, extra...)...)
}

func listItem(children ...Node) Node {
	return El("li", A("class", "list-group-item d-flex justify-content-between align-items-center"), children...)
}

func listeningHistory(s controller.State, records []models.ListeningRecord) Node {
	if len(records) == 0 {
		return emptyState(EmptyListeningHistory)
	}
	ids := s.ListIDs(controller.ListHistory)
	items := make([]Node, 0, len(records))
	for i, r := range records {
		items = append(items, listItem(
			songSummary(r.Song, El("br", nil), El("small", A("class", "text-muted"), Text(models.DisplayTime(r.Timestamp)))),
			playButton(s, controller.ListHistory, ids, i, r.Song),
		))
	}
	return El("ul", A("class", "list-group"), items...)
}

func mostPlayed(s controller.State, songs []models.PlayedSong) Node {
	if len(songs) == 0 {
		return emptyState(EmptyMostPlayed)
	}
	ids := s.ListIDs(controller.ListMostPlayed)
	items := make([]Node, 0, len(songs))
	for i, p := range songs {
		rank := "secondary"
		if i < 3 {
			rank = "primary"
		}
		items = append(items, listItem(
			El("div", A("class", "flex-grow-1"),
				El("span", A("class", "badge bg-"+rank+" me-2"), Text("#"+strconv.Itoa(i+1))),
				songSummary(p.Song),
			),
			El("div", A("class", "text-end"),
				El("span", A("class", "badge bg-info"), Text(fmt.Sprintf("%d plays", p.PlayCount))),
				playButton(s, controller.ListMostPlayed, ids, i, p.Song),
			),
		))
	}
	return El("ul", A("class", "list-group"), items...)
}

func emotionStats(stats models.EmotionStats) Node {
	if stats.TotalCaptures == 0 || len(stats.Distribution) == 0 {
		return emptyState(EmptyStats)
	}
	rows := []Node{El("p", nil, Text(fmt.Sprintf("Total captures: %d", stats.TotalCaptures)))}
	for _, c := range stats.Distribution {
		share := stats.Share(c)
		rows = append(rows, El("div", A("class", "mb-3"),
			emotionBadge(c.Emotion),
			El("span", A("class", "text-muted"), Text(fmt.Sprintf("%d (%s%%)", c.Count, share))),
			El("div", A("class", "progress"),
				El("div", A("class", "progress-bar", "style", "width: "+share+"%")),
			),
		))
	}
	return El("div", nil, rows...)
}

func detectionSection(s controller.State, show bool) Node {
	emotion, confidence := s.CaptureLabel()
	badge := "badge bg-secondary"
	if s.Capture != nil {
		badge = "badge bg-" + string(models.EmotionColor(s.Capture.Emotion))
	}

	camera := A("id", "camera", "class", hiddenUnless(s.Camera.Active, "camera-feed"))
	start := A("id", "start-camera", "class", "btn btn-success me-2")
	if s.Camera.Active || s.Camera.Starting {
		start = append(start, Attr{Key: "disabled", Value: "disabled"})
	}
	stop := A("id", "stop-camera", "class", "btn btn-danger me-2")
	if !s.Camera.Active {
		stop = append(stop, Attr{Key: "disabled", Value: "disabled"})
	}

	return El("section", A("id", "app-section", "class", hiddenUnless(show, "container")),
		El("div", camera),
		El("div", A("class", "mb-3"),
			El("button", start, Text("Start Camera")),
			El("button", stop, Text("Stop Camera")),
			El("button", A("id", "capture-btn", "class", "btn btn-primary me-2"), Text("Capture Emotion")),
			El("button", A("id", "refresh-btn", "class", "btn btn-outline-secondary"), Text("Refresh")),
		),
		El("div", A("id", "emotion-result"),
			El("span", A("id", "emotion-label", "class", badge), Text(emotion)),
			El("span", A("id", "confidence", "class", "ms-2"), Text(confidence)),
		),
		recommendations(s),
		uploadForm(s.Upload),
	)
}

func recommendations(s controller.State) Node {
	r := s.Recommendations
	ids := s.ListIDs(controller.ListRecommendations)
	items := make([]Node, 0, len(r.Songs))
	for i, song := range r.Songs {
		fav := A("class", "btn btn-sm btn-outline-success favorite-btn", "data-id", song.ID.String())
		label := "♥"
		if s.Favorited[song.ID] {
			fav = A("class", "btn btn-sm btn-success favorite-btn", "data-id", song.ID.String(), "disabled", "disabled")
			label = "✓"
		}
		items = append(items, listItem(
			songSummary(song),
			El("div", nil, playButton(s, controller.ListRecommendations, ids, i, song), El("button", fav, Text(label))),
		))
	}

	return El("div", A("id", "recommendations"),
		El("ul", A("id", "song-list", "class", "list-group"), items...),
		El("div", A("id", "no-recommendations", "class", hiddenUnless(r.Empty(), "alert", "alert-info")),
			Text(controller.MsgNoRecommendation)),
	)
}

func uploadForm(u controller.UploadState) Node {
	var status []Node
	switch {
	case u.InProgress:
		status = append(status, El("div", A("class", "alert alert-info"), Text(u.Status)))
	case u.Status != "" && u.Failed:
		status = append(status, El("div", A("class", "alert alert-danger"), Text(u.Status)))
	case u.Status != "":
		status = append(status, El("div", A("class", "alert alert-success"), Text(u.Status)))
	}

	field := func(name string) Node {
		return El("input", A("class", "form-control mb-2", "name", name, "placeholder", name))
	}
	return El("form", A("id", "upload-form", "data-action", "upload", "enctype", "multipart/form-data"),
		field("title"),
		field("artist"),
		field("emotion_tag"),
		field("valence"),
		field("energy"),
		El("input", A("class", "form-control mb-2", "type", "file", "name", "audio_file")),
		El("button", A("class", "btn btn-primary", "type", "submit"), Text("Upload")),
		El("div", A("id", "upload-status"), status...),
	)
}

func favoritesSection(s controller.State, show bool) Node {
	f := s.Favorites
	ids := s.ListIDs(controller.ListFavorites)
	items := make([]Node, 0, len(f.Songs))
	for i, song := range f.Songs {
		items = append(items, listItem(
			songSummary(song),
			El("div", nil,
				playButton(s, controller.ListFavorites, ids, i, song),
				El("button", A("class", "btn btn-sm btn-outline-danger remove-favorite-btn", "data-id", song.ID.String()), Text("Remove")),
			),
		))
	}
	empty := f.Loaded && len(f.Songs) == 0

	return El("section", A("id", "favorites-section", "class", hiddenUnless(show, "container")),
		El("ul", A("id", "favorites-list", "class", "list-group"), items...),
		El("div", A("id", "no-favorites", "class", hiddenUnless(empty, "alert", "alert-info")), Text(controller.MsgNoFavorites)),
	)
}

func nowPlaying(s controller.State) Node {
	if s.NowPlaying == nil {
		return El("div", A("id", "now-playing", "class", "d-none"))
	}
	return El("div", A("id", "now-playing", "class", "now-playing"),
		El("span", A("id", "now-playing-label"), Text(s.NowPlaying.Label)),
		El("audio", A("id", "audio-player", "controls", "controls", "src", s.NowPlaying.Path)),
	)
}

func toastClass(level controller.Level) string {
	switch level {
	case controller.LevelSuccess:
		return "bg-success"
	case controller.LevelError:
		return "bg-danger"
	case controller.LevelWarning:
		return "bg-warning"
	default:
		return "bg-info"
	}
}

func toasts(notices []controller.Notification) Node {
	items := make([]Node, 0, len(notices))
	for _, n := range notices {
		body := []Node{}
		if n.Title != "" {
			body = append(body, El("strong", nil, Text(n.Title)), El("br", nil))
		}
		body = append(body, Text(n.Message))
		items = append(items, El("div", A(
			"id", "toast-"+strconv.Itoa(n.ID),
			"class", "toast align-items-center text-white "+toastClass(n.Level)+" border-0 fade show",
			"role", "alert",
		), El("div", A("class", "toast-body"), body...)))
	}
	return El("div", A("class", "toast-container"), items...)
}
