package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodtune/internal/controller"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/web"
)

// Controller is the part of [controller.Controller] the TUI drives.
type Controller interface {
	Dispatch(controller.Event)
	State() controller.State
}

// Bridge is the [controller.Surface] handed to the controller. Renders are coalesced into a single pending
// signal that the model waits on.
type Bridge struct {
	signal chan struct{}
}

func NewBridge() *Bridge {
	return &Bridge{signal: make(chan struct{}, 1)}
}

// Render records that the state changed. It never blocks the controller loop.
func (b *Bridge) Render(controller.State) {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	ctrl     Controller
	bridge   *Bridge
	state    controller.State
	width    int
	height   int
	auth     *form
	form     *form
	lists    map[controller.ListKind]*list.Model
	focus    controller.ListKind
	status   string
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	readFile func(string) ([]byte, error)
}

// NewModel creates a TUI model mirroring ctrl.
func NewModel(ctx context.Context, ctrl Controller, bridge *Bridge) *Model {
	lists := map[controller.ListKind]*list.Model{}
	for kind, title := range map[controller.ListKind]string{
		controller.ListRecommendations: "Recommendations",
		controller.ListFavorites:       "Favorites",
		controller.ListHistory:         "Listening History",
		controller.ListMostPlayed:      "Most Played",
	} {
		l := newSongList(title)
		lists[kind] = &l
	}

	m := &Model{
		ctx:      ctx,
		ctrl:     ctrl,
		bridge:   bridge,
		auth:     loginForm(),
		lists:    lists,
		focus:    controller.ListHistory,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		keys:     newKeyMap(),
		readFile: os.ReadFile,
	}
	m.sync(ctrl.State())
	return m
}

// Run starts the TUI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, ctrl Controller, bridge *Bridge) error {
	p := tea.NewProgram(NewModel(ctx, ctrl, bridge), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init checks for an existing session and starts listening for state changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.dispatch(controller.CheckSession{}), m.waitForState(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range m.lists {
			l.SetSize(msg.Width-4, max((msg.Height-16)/2, 4))
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgStateChanged:
			m.sync(m.ctrl.State())
			return m, m.waitForState()
		case MsgUploadReady:
			ready := msg.data.(uploadReady)
			if ready.err != nil {
				m.status = fmt.Sprintf("Could not read audio file: %v", ready.err)
				return m, nil
			}
			m.status = ""
			m.ctrl.Dispatch(controller.UploadSong{Upload: ready.upload})
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case !m.state.Authenticated():
			return m.handleAuthKeys(msg)
		case m.form != nil:
			return m.handleFormKeys(msg)
		default:
			return m.handleSectionKeys(msg)
		}
	}

	return m, nil
}

// View renders the UI based on the current section.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("moodtune"))
	b.WriteString("\n")

	if !m.state.Authenticated() {
		b.WriteString(m.auth.view())
		b.WriteString(styles.help.Render("ctrl+r: switch between login and register"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTabs())
		b.WriteString("\n\n")
		if m.form != nil {
			b.WriteString(m.form.view())
		} else {
			switch m.state.Visible() {
			case controller.SectionDetection:
				b.WriteString(m.renderDetection())
			case controller.SectionFavorites:
				b.WriteString(m.renderFavorites())
			default:
				b.WriteString(m.renderDashboard())
			}
		}
	}

	if np := m.state.NowPlaying; np != nil {
		b.WriteString("\n♪ " + np.Label + "\n")
	}
	b.WriteString(m.renderNotifications())
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) dispatch(ev controller.Event) tea.Cmd {
	return func() tea.Msg {
		m.ctrl.Dispatch(ev)
		return nil
	}
}

func (m *Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.bridge.signal:
			return stateChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

// sync mirrors s into the model's lists and forms.
func (m *Model) sync(s controller.State) {
	wasAuthenticated := m.state.Authenticated()
	m.state = s
	for kind, l := range m.lists {
		l.SetItems(songItems(s, kind))
	}
	if !s.Authenticated() {
		m.form = nil
		if wasAuthenticated {
			m.auth = loginForm()
		}
	}
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.toggle):
		if m.auth.kind == formLogin {
			m.auth = registerForm()
		} else {
			m.auth = loginForm()
		}
		return m, nil
	case key.Matches(msg, m.keys.next):
		m.auth.next()
		return m, nil
	case msg.Type == tea.KeyEnter:
		if !m.auth.last() {
			m.auth.next()
			return m, nil
		}
		return m, m.submit(m.auth)
	}
	return m, m.auth.update(msg)
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.form = nil
		return m, nil
	case key.Matches(msg, m.keys.next):
		m.form.next()
		return m, nil
	case msg.Type == tea.KeyEnter:
		if !m.form.last() {
			m.form.next()
			return m, nil
		}
		f := m.form
		m.form = nil
		return m, m.submit(f)
	}
	return m, m.form.update(msg)
}

// submit turns a completed form into a controller event.
func (m *Model) submit(f *form) tea.Cmd {
	switch f.kind {
	case formLogin:
		m.ctrl.Dispatch(controller.Login{Username: f.Value("username"), Password: f.Value("password")})
	case formRegister:
		m.ctrl.Dispatch(controller.Register{
			Username: f.Value("username"),
			Email:    f.Value("email"),
			Password: f.Value("password"),
		})
	case formEmotion:
		m.ctrl.Dispatch(controller.Recommend{Emotion: f.Value("emotion")})
	case formPreferences:
		m.ctrl.Dispatch(controller.SavePreferences{Preferences: models.Preferences{
			PreferredGenre:  f.Value("preferred_genre"),
			PreferredArtist: f.Value("preferred_artist"),
		}})
	case formUpload:
		return m.readUpload(f)
	}
	return nil
}

// readUpload loads the audio file off the update loop and reports back with [MsgUploadReady].
func (m *Model) readUpload(f *form) tea.Cmd {
	upload := models.Upload{
		Title:      f.Value("title"),
		Artist:     f.Value("artist"),
		EmotionTag: f.Value("emotion_tag"),
		Valence:    f.Value("valence"),
		Energy:     f.Value("energy"),
	}
	path := strings.TrimSpace(f.Value("file"))
	read := m.readFile

	return func() tea.Msg {
		if path == "" {
			return uploadReadyMsg(upload, nil)
		}
		data, err := read(path)
		if err != nil {
			return uploadReadyMsg(upload, err)
		}
		upload.FileName = filepath.Base(path)
		upload.Audio = data
		return uploadReadyMsg(upload, nil)
	}
}

func (m *Model) handleSectionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	section := m.state.Visible()

	switch {
	case key.Matches(msg, k.quit):
		return m, tea.Quit
	case key.Matches(msg, k.dashboard):
		return m, m.dispatch(controller.Navigate{To: controller.SectionDashboard})
	case key.Matches(msg, k.detection):
		return m, m.dispatch(controller.Navigate{To: controller.SectionDetection})
	case key.Matches(msg, k.favorites):
		return m, m.dispatch(controller.Navigate{To: controller.SectionFavorites})
	case key.Matches(msg, k.logout):
		return m, m.dispatch(controller.Logout{})
	case key.Matches(msg, k.admin):
		return m, m.dispatch(controller.OpenAdminPanel{})
	case key.Matches(msg, k.enter):
		kind := m.activeList()
		if song, ok := m.selected(kind); ok {
			return m, m.dispatch(controller.Play{Song: song, List: kind})
		}
		return m, nil
	}

	switch section {
	case controller.SectionDashboard:
		switch {
		case key.Matches(msg, k.next):
			if m.focus == controller.ListHistory {
				m.focus = controller.ListMostPlayed
			} else {
				m.focus = controller.ListHistory
			}
			return m, nil
		case key.Matches(msg, k.prefs):
			m.form = preferencesForm(m.state.Preferences)
			return m, nil
		case key.Matches(msg, k.refresh):
			return m, m.dispatch(controller.LoadDashboard{})
		}

	case controller.SectionDetection:
		switch {
		case key.Matches(msg, k.start):
			return m, m.dispatch(controller.StartCamera{})
		case key.Matches(msg, k.stop):
			return m, m.dispatch(controller.StopCamera{})
		case key.Matches(msg, k.capture):
			return m, m.dispatch(controller.Capture{})
		case key.Matches(msg, k.refresh):
			return m, m.dispatch(controller.Refresh{})
		case key.Matches(msg, k.emotion):
			m.form = emotionForm()
			return m, nil
		case key.Matches(msg, k.upload):
			m.form = uploadForm()
			return m, nil
		case key.Matches(msg, k.favorite):
			if song, ok := m.selected(controller.ListRecommendations); ok && !m.state.Favorited[song.ID] {
				return m, m.dispatch(controller.AddFavorite{Song: song})
			}
			return m, nil
		}

	case controller.SectionFavorites:
		switch {
		case key.Matches(msg, k.remove):
			if song, ok := m.selected(controller.ListFavorites); ok {
				return m, m.dispatch(controller.RemoveFavorite{SongID: song.ID})
			}
			return m, nil
		case key.Matches(msg, k.refresh):
			return m, m.dispatch(controller.Navigate{To: controller.SectionFavorites})
		}
	}

	l := m.lists[m.activeList()]
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

// activeList is the list that receives cursor movement in the visible section.
func (m *Model) activeList() controller.ListKind {
	switch m.state.Visible() {
	case controller.SectionDetection:
		return controller.ListRecommendations
	case controller.SectionFavorites:
		return controller.ListFavorites
	default:
		return m.focus
	}
}

func (m *Model) selected(kind controller.ListKind) (models.Song, bool) {
	item, ok := m.lists[kind].SelectedItem().(songItem)
	if !ok {
		return models.Song{}, false
	}
	return item.song, true
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, len(controller.Sections())+1)
	visible := m.state.Visible()
	for i, section := range controller.Sections() {
		label := fmt.Sprintf("%d %s", i+1, section)
		if section == visible {
			tabs = append(tabs, styles.active.Render(label))
		} else {
			tabs = append(tabs, styles.tab.Render(label))
		}
	}
	user := m.state.Session.Username
	if m.state.Session.IsAdmin {
		user += " (admin)"
	}
	return strings.Join(tabs, " ") + "  " + styles.help.Render(user)
}

func (m *Model) renderDashboard() string {
	var b strings.Builder
	s := m.state

	prefs := s.Preferences
	fmt.Fprintf(&b, "Preferences: genre %q, artist %q\n\n", prefs.PreferredGenre, prefs.PreferredArtist)

	b.WriteString(styles.ok.Render("Emotion History"))
	b.WriteString("\n")
	if len(s.Dashboard.EmotionHistory) == 0 {
		b.WriteString(styles.help.Render(web.EmptyEmotionHistory) + "\n")
	}
	for i, r := range s.Dashboard.EmotionHistory {
		if i == 5 {
			fmt.Fprintf(&b, "  … %d more\n", len(s.Dashboard.EmotionHistory)-i)
			break
		}
		fmt.Fprintf(&b, "  %s %s confidence • %s\n",
			EmotionStyle(r.Emotion).Render(strings.ToUpper(r.Emotion)),
			models.FormatPercent(r.Confidence, 1),
			models.DisplayTime(r.Timestamp))
	}

	b.WriteString("\n")
	b.WriteString(styles.ok.Render("Emotion Stats"))
	b.WriteString("\n")
	stats := s.Dashboard.Stats
	if stats.TotalCaptures == 0 {
		b.WriteString(styles.help.Render(web.EmptyStats) + "\n")
	} else {
		fmt.Fprintf(&b, "  Total captures: %d\n", stats.TotalCaptures)
		for _, c := range stats.Distribution {
			fmt.Fprintf(&b, "  %s %d (%s%%)\n", EmotionStyle(c.Emotion).Render(strings.ToUpper(c.Emotion)), c.Count, stats.Share(c))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderList(controller.ListHistory, web.EmptyListeningHistory, m.focus == controller.ListHistory))
	b.WriteString("\n")
	b.WriteString(m.renderList(controller.ListMostPlayed, web.EmptyMostPlayed, m.focus == controller.ListMostPlayed))
	return b.String()
}

func (m *Model) renderList(kind controller.ListKind, empty string, focused bool) string {
	l := m.lists[kind]
	if len(l.Items()) == 0 {
		title := styles.tab.Render(l.Title)
		return title + "\n" + styles.help.Render(empty) + "\n"
	}
	if focused {
		l.Styles.Title = styles.active
	} else {
		l.Styles.Title = styles.tab
	}
	return l.View() + "\n"
}

func (m *Model) renderDetection() string {
	var b strings.Builder
	s := m.state

	camera := styles.warn.Render("off")
	switch {
	case s.Camera.Active:
		camera = styles.ok.Render("on")
	case s.Camera.Starting:
		camera = m.spinner.View() + " starting"
	}
	fmt.Fprintf(&b, "Camera: %s\n", camera)

	emotion, confidence := s.CaptureLabel()
	label := styles.help.Render(emotion)
	if s.Capture != nil {
		label = EmotionStyle(emotion).Render(emotion)
	}
	fmt.Fprintf(&b, "Emotion: %s  Confidence: %s\n\n", label, confidence)

	switch {
	case s.Recommendations.Loading:
		b.WriteString(m.spinner.View() + " Loading recommendations...\n")
	case s.Recommendations.Empty():
		b.WriteString(styles.warn.Render(controller.MsgNoRecommendation) + "\n")
	case s.Recommendations.Loaded:
		b.WriteString(m.lists[controller.ListRecommendations].View() + "\n")
	}

	switch u := s.Upload; {
	case u.InProgress:
		b.WriteString(m.spinner.View() + " " + u.Status + "\n")
	case u.Failed:
		b.WriteString(styles.err.Render(u.Status) + "\n")
	case u.Status != "":
		b.WriteString(styles.ok.Render(u.Status) + "\n")
	}
	if m.status != "" {
		b.WriteString(styles.err.Render(m.status) + "\n")
	}
	return b.String()
}

func (m *Model) renderFavorites() string {
	f := m.state.Favorites
	switch {
	case f.Loading && !f.Loaded:
		return m.spinner.View() + " Loading favorites...\n"
	case f.Loaded && len(f.Songs) == 0:
		return styles.help.Render(controller.MsgNoFavorites) + "\n"
	}
	return m.lists[controller.ListFavorites].View() + "\n"
}

func (m *Model) renderNotifications() string {
	notices := m.state.Notifications
	if len(notices) > 3 {
		notices = notices[len(notices)-3:]
	}
	var b strings.Builder
	for _, n := range notices {
		text := n.Message
		if n.Title != "" {
			text = n.Title + ": " + text
		}
		b.WriteString(levelStyle(n.Level).Render(text))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) helpKeys() []key.Binding {
	k := m.keys
	if !m.state.Authenticated() {
		return []key.Binding{k.next, k.toggle, key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))}
	}
	if m.form != nil {
		return []key.Binding{k.next, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")), k.back}
	}

	switch m.state.Visible() {
	case controller.SectionDetection:
		return []key.Binding{k.start, k.stop, k.capture, k.refresh, k.emotion, k.favorite, k.enter, k.upload, k.quit}
	case controller.SectionFavorites:
		return []key.Binding{k.enter, k.remove, k.refresh, k.dashboard, k.detection, k.quit}
	default:
		keys := []key.Binding{k.next, k.enter, k.prefs, k.refresh, k.detection, k.favorites, k.logout}
		if m.state.Session.IsAdmin {
			keys = append(keys, k.admin)
		}
		return append(keys, k.quit)
	}
}
