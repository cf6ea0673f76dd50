package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionName = "moodtune_session"
	tokenKey    = "token"

	defaultHistoryLimit    = 50
	defaultMostPlayedLimit = 10
	maxRecommendations     = 10
	maxUploadBytes         = 32 << 20

	timestampLayout = "2006-01-02 15:04:05"
)

// StubOpts configures a [StubBackend].
type StubOpts struct {
	// Secret signs the session cookie. A random key is generated when empty.
	Secret []byte
	// AdminUsername and AdminPassword seed an admin account when both are set.
	AdminUsername string
	AdminPassword string
	// Catalog seeds the song catalog. [DefaultCatalog] is used when nil.
	Catalog []models.Song
	// BcryptCost defaults to [bcrypt.DefaultCost].
	BcryptCost int
	Logger     *log.Logger
	Now        func() time.Time
}

type stubUser struct {
	ID        int
	Username  string
	Email     string
	Hash      []byte
	IsAdmin   bool
	CreatedAt time.Time
}

func (u *stubUser) model() *models.User {
	return &models.User{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin}
}

type stubSong struct {
	models.Song
	Valence    float64
	Energy     float64
	UploadedBy int
	PlayCount  int
	CreatedAt  time.Time
}

type stubPlay struct {
	SongID models.SongID
	At     time.Time
}

// StubBackend is an in-memory implementation of the recommendation server's endpoints.
//
// Sessions are signed cookies carrying a random token; the token maps to a user server-side so
// logging out revokes it. Protected endpoints answer 401 with success=false when no session is
// present and admin endpoints answer 403.
type StubBackend struct {
	mu     sync.Mutex
	store  *sessions.CookieStore
	router *mux.Router
	logger *log.Logger
	now    func() time.Time
	cost   int

	users      map[int]*stubUser
	nextUserID int
	tokens     map[string]int

	songs      []*stubSong
	nextSongID int
	uploads    map[string][]byte

	favorites map[int][]models.SongID
	prefs     map[int]models.Preferences
	captures  map[int][]models.EmotionRecord
	plays     map[int][]stubPlay

	routes []string
}

// DefaultCatalog is the catalog served when no other is configured.
func DefaultCatalog() []models.Song {
	return []models.Song{
		{Title: "Walking on Sunshine", Artist: "Katrina and the Waves", FilePath: "/static/music/walking_on_sunshine.mp3", EmotionTag: "happy"},
		{Title: "Happy", Artist: "Pharrell Williams", FilePath: "/static/music/happy.mp3", EmotionTag: "happy"},
		{Title: "Good Vibrations", Artist: "The Beach Boys", FilePath: "/static/music/good_vibrations.mp3", EmotionTag: "happy"},
		{Title: "Someone Like You", Artist: "Adele", FilePath: "/static/music/someone_like_you.mp3", EmotionTag: "sad"},
		{Title: "Hurt", Artist: "Johnny Cash", FilePath: "/static/music/hurt.mp3", EmotionTag: "sad"},
		{Title: "Killing in the Name", Artist: "Rage Against the Machine", FilePath: "/static/music/killing_in_the_name.mp3", EmotionTag: "angry"},
		{Title: "Break Stuff", Artist: "Limp Bizkit", FilePath: "/static/music/break_stuff.mp3", EmotionTag: "angry"},
		{Title: "Bohemian Rhapsody", Artist: "Queen", FilePath: "/static/music/bohemian_rhapsody.mp3", EmotionTag: "surprise"},
		{Title: "Weightless", Artist: "Marconi Union", FilePath: "/static/music/weightless.mp3", EmotionTag: "neutral"},
		{Title: "Clair de Lune", Artist: "Claude Debussy", FilePath: "/static/music/clair_de_lune.mp3", EmotionTag: "neutral"},
		{Title: "Thriller", Artist: "Michael Jackson", FilePath: "/static/music/thriller.mp3", EmotionTag: "fear"},
	}
}

// NewStubBackend creates a stub server seeded from opts.
func NewStubBackend(opts StubOpts) (*StubBackend, error) {
	secret := opts.Secret
	if len(secret) == 0 {
		key := uuid.New()
		secret = key[:]
	}

	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &StubBackend{
		store:      store,
		logger:     shared.WithLogger(logger, "component", "stub"),
		now:        now,
		cost:       cost,
		users:      map[int]*stubUser{},
		nextUserID: 1,
		tokens:     map[string]int{},
		nextSongID: 1,
		uploads:    map[string][]byte{},
		favorites:  map[int][]models.SongID{},
		prefs:      map[int]models.Preferences{},
		captures:   map[int][]models.EmotionRecord{},
		plays:      map[int][]stubPlay{},
	}

	if opts.AdminUsername != "" && opts.AdminPassword != "" {
		if _, err := s.addUser(opts.AdminUsername, opts.AdminUsername+"@localhost", opts.AdminPassword, true); err != nil {
			return nil, err
		}
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	for _, song := range catalog {
		s.addSong(song, 0.5, 0.5, 0)
	}

	s.buildRoutes()
	return s, nil
}

func (s *StubBackend) buildRoutes() {
	r := mux.NewRouter()
	add := func(method, path string, h http.HandlerFunc) {
		r.HandleFunc(path, h).Methods(method)
		s.routes = append(s.routes, path)
	}

	add(http.MethodPost, "/login", s.handleLogin)
	add(http.MethodPost, "/register", s.handleRegister)
	add(http.MethodGet, "/logout", s.authenticated(s.handleLogout))
	add(http.MethodGet, "/user_info", s.authenticated(s.handleUserInfo))

	add(http.MethodGet, "/get_favorites", s.authenticated(s.handleFavorites))
	add(http.MethodPost, "/add_favorite", s.authenticated(s.handleAddFavorite))
	add(http.MethodPost, "/remove_favorite", s.authenticated(s.handleRemoveFavorite))
	add(http.MethodGet, "/get_preferences", s.authenticated(s.handlePreferences))
	add(http.MethodPost, "/save_preferences", s.authenticated(s.handleSavePreferences))

	add(http.MethodPost, "/analyze", s.authenticated(s.handleAnalyze))
	add(http.MethodPost, "/recommend", s.authenticated(s.handleRecommend))
	add(http.MethodPost, "/track_play", s.authenticated(s.handleTrackPlay))
	add(http.MethodGet, "/emotion_history", s.authenticated(s.handleEmotionHistory))
	add(http.MethodGet, "/emotion_stats", s.authenticated(s.handleEmotionStats))
	add(http.MethodGet, "/listening_history", s.authenticated(s.handleListeningHistory))
	add(http.MethodGet, "/most_played", s.authenticated(s.handleMostPlayed))
	add(http.MethodPost, "/upload_song", s.authenticated(s.handleUpload))
	add(http.MethodGet, "/static/uploads/{name}", s.handleStatic)

	add(http.MethodGet, "/admin/panel", s.admin(s.handleAdminPanel))
	add(http.MethodGet, "/admin/stats", s.admin(s.handleAdminStats))
	add(http.MethodGet, "/admin/users", s.admin(s.handleAdminUsers))
	add(http.MethodGet, "/admin/songs", s.admin(s.handleAdminSongs))
	add(http.MethodDelete, "/admin/delete_song/{id}", s.admin(s.handleAdminDeleteSong))
	add(http.MethodPut, "/admin/update_user/{id}", s.admin(s.handleAdminUpdateUser))
	add(http.MethodDelete, "/admin/delete_user/{id}", s.admin(s.handleAdminDeleteUser))

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusMethodNotAllowed, "Invalid request method")
	})
	s.router = r
}

// Routes returns the paths served by the stub.
func (s *StubBackend) Routes() []string {
	return s.routes
}

// ServeHTTP dispatches to the endpoint matching the request's method and path.
func (s *StubBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// userHandler is an endpoint that requires a session user.
type userHandler func(w http.ResponseWriter, r *http.Request, user *stubUser)

func (s *StubBackend) authenticated(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil {
			writeFailure(w, http.StatusUnauthorized, "Login required")
			return
		}
		next(w, r, user)
	}
}

func (s *StubBackend) admin(next userHandler) http.HandlerFunc {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, user *stubUser) {
		if !user.IsAdmin {
			writeFailure(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r, user)
	})
}

// currentUser resolves the session cookie to a live user.
func (s *StubBackend) currentUser(r *http.Request) *stubUser {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil
	}
	token, _ := sess.Values[tokenKey].(string)
	if token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	if !ok {
		return nil
	}
	return s.users[id]
}

func (s *StubBackend) startSession(w http.ResponseWriter, r *http.Request, user *stubUser) error {
	sess, _ := s.store.Get(r, sessionName)
	token := uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = user.ID
	s.mu.Unlock()

	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

func (s *StubBackend) endSession(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, sessionName)
	if token, ok := sess.Values[tokenKey].(string); ok {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
	}
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// addUser registers a user. Callers must not hold s.mu.
func (s *StubBackend) addUser(username, email, password string, isAdmin bool) (*stubUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) || strings.EqualFold(u.Email, email) {
			return nil, errDuplicateUser
		}
	}

	u := &stubUser{
		ID:        s.nextUserID,
		Username:  username,
		Email:     email,
		Hash:      hash,
		IsAdmin:   isAdmin,
		CreatedAt: s.now(),
	}
	s.users[u.ID] = u
	s.nextUserID++
	return u, nil
}

// addSong appends a catalog entry. Callers must hold s.mu or own s exclusively.
func (s *StubBackend) addSong(song models.Song, valence, energy float64, uploadedBy int) *stubSong {
	song.ID = models.SongID(strconv.Itoa(s.nextSongID))
	song.EmotionTag = strings.ToLower(song.EmotionTag)
	entry := &stubSong{
		Song:       song,
		Valence:    valence,
		Energy:     energy,
		UploadedBy: uploadedBy,
		CreatedAt:  s.now(),
	}
	s.songs = append(s.songs, entry)
	s.nextSongID++
	return entry
}

func (s *StubBackend) findSong(id models.SongID) *stubSong {
	for _, song := range s.songs {
		if song.ID == id {
			return song
		}
	}
	return nil
}

func (s *StubBackend) userByName(username string) *stubUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

// sortedUsers returns users ordered by id. Callers must hold s.mu.
func (s *StubBackend) sortedUsers() []*stubUser {
	users := make([]*stubUser, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *StubBackend) timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeOK writes a success envelope merged with payload.
func writeOK(w http.ResponseWriter, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["success"] = true
	writeJSON(w, http.StatusOK, payload)
}

func writeMessage(w http.ResponseWriter, message string) {
	writeOK(w, map[string]any{"message": message})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}
