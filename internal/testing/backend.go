package testing

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

// FakeAccount is a user known to [FakeBackend].
type FakeAccount struct {
	Email    string
	Password string
	Admin    bool
}

// FakeBackend is an in-memory test double for services.Backend.
//
// Endpoints are named after their server paths without the leading slash ("login", "recommend", ...).
// Fail makes an endpoint return an error; Hold makes calls to an endpoint (optionally a specific argument,
// "recommend:happy") block until released or canceled.
type FakeBackend struct {
	mu sync.Mutex

	Accounts  map[string]FakeAccount
	Catalog   map[string][]models.Song
	Result    models.CaptureResult
	Prefs     models.Preferences
	Emotions  []models.EmotionRecord
	Listening []models.ListeningRecord
	Played    []models.PlayedSong
	Stats     models.EmotionStats

	session   *models.User
	favorites []models.Song
	uploads   []models.Upload
	failures  map[string]error
	gates     map[string]chan struct{}
	calls     []string
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Accounts: map[string]FakeAccount{},
		Catalog:  map[string][]models.Song{},
		failures: map[string]error{},
		gates:    map[string]chan struct{}{},
	}
}

// Reject builds the error a real server would produce for success=false.
func Reject(endpoint, message string) error {
	return &shared.AppError{Endpoint: "/" + endpoint, Status: 200, Message: message}
}

// TransportFailure builds a network-level error for endpoint.
func TransportFailure(endpoint string) error {
	return fmt.Errorf("%w: /%s: connection refused", shared.ErrTransport, endpoint)
}

// Fail makes every call to endpoint return err. A nil err clears the failure.
func (f *FakeBackend) Fail(endpoint string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, endpoint)
		return
	}
	f.failures[endpoint] = err
}

// Hold blocks calls matching key until the returned release func is called.
func (f *FakeBackend) Hold(key string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[key] = ch
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.gates[key] == ch {
				delete(f.gates, key)
			}
			f.mu.Unlock()
			close(ch)
		})
	}
}

// SignIn starts a session directly, bypassing Login.
func (f *FakeBackend) SignIn(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct := f.Accounts[username]
	f.session = &models.User{ID: 1, Username: username, Email: acct.Email, IsAdmin: acct.Admin}
}

// SetFavorites replaces the server-side favorites list.
func (f *FakeBackend) SetFavorites(songs ...models.Song) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favorites = slices.Clone(songs)
}

// Calls returns every endpoint invoked so far, in call order.
func (f *FakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Count returns how many times endpoint was invoked.
func (f *FakeBackend) Count(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == endpoint {
			n++
		}
	}
	return n
}

// Uploads returns the accepted uploads.
func (f *FakeBackend) Uploads() []models.Upload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.uploads)
}

// enter records the call, waits on any matching gate and returns the configured failure.
func (f *FakeBackend) enter(ctx context.Context, endpoint string, arg string) error {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	gates := []chan struct{}{f.gates[endpoint]}
	if arg != "" {
		gates = append(gates, f.gates[endpoint+":"+arg])
	}
	f.mu.Unlock()

	for _, gate := range gates {
		if gate == nil {
			continue
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return fmt.Errorf("%w: /%s: %v", shared.ErrTransport, endpoint, ctx.Err())
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[endpoint]
}

func (f *FakeBackend) authed(endpoint string) error {
	if f.session == nil {
		return fmt.Errorf("%w: /%s: redirected to login page", shared.ErrTransport, endpoint)
	}
	return nil
}

func (f *FakeBackend) UserInfo(ctx context.Context) (*models.User, error) {
	if err := f.enter(ctx, "user_info", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed("user_info"); err != nil {
		return nil, err
	}
	u := *f.session
	return &u, nil
}

func (f *FakeBackend) Login(ctx context.Context, username, password string) error {
	if err := f.enter(ctx, "login", username); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.Accounts[username]
	if !ok || acct.Password != password {
		return Reject("login", "Invalid username or password")
	}
	f.session = &models.User{ID: 1, Username: username, Email: acct.Email, IsAdmin: acct.Admin}
	return nil
}

func (f *FakeBackend) Register(ctx context.Context, username, email, password string) error {
	if err := f.enter(ctx, "register", username); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if username == "" || email == "" || password == "" {
		return Reject("register", "All fields are required")
	}
	if _, exists := f.Accounts[username]; exists {
		return Reject("register", "Username or email already exists")
	}
	f.Accounts[username] = FakeAccount{Email: email, Password: password}
	return nil
}

func (f *FakeBackend) Logout(ctx context.Context) error {
	if err := f.enter(ctx, "logout", ""); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = nil
	return nil
}

func (f *FakeBackend) Favorites(ctx context.Context) ([]models.Song, error) {
	if err := f.enter(ctx, "get_favorites", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed("get_favorites"); err != nil {
		return nil, err
	}
	return slices.Clone(f.favorites), nil
}

func (f *FakeBackend) AddFavorite(ctx context.Context, id models.SongID) error {
	if err := f.enter(ctx, "add_favorite", string(id)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.favorites {
		if s.ID == id {
			return Reject("add_favorite", "Song already in favorites")
		}
	}
	song, ok := f.lookup(id)
	if !ok {
		return Reject("add_favorite", "Song not found")
	}
	f.favorites = append(f.favorites, song)
	return nil
}

func (f *FakeBackend) RemoveFavorite(ctx context.Context, id models.SongID) error {
	if err := f.enter(ctx, "remove_favorite", string(id)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favorites = slices.DeleteFunc(f.favorites, func(s models.Song) bool { return s.ID == id })
	return nil
}

func (f *FakeBackend) lookup(id models.SongID) (models.Song, bool) {
	for _, songs := range f.Catalog {
		for _, s := range songs {
			if s.ID == id {
				return s, true
			}
		}
	}
	return models.Song{}, false
}

func (f *FakeBackend) Preferences(ctx context.Context) (models.Preferences, error) {
	if err := f.enter(ctx, "get_preferences", ""); err != nil {
		return models.Preferences{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Prefs, nil
}

func (f *FakeBackend) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	if err := f.enter(ctx, "save_preferences", ""); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prefs = prefs
	return nil
}

func (f *FakeBackend) Analyze(ctx context.Context, image string) (models.CaptureResult, error) {
	if err := f.enter(ctx, "analyze", ""); err != nil {
		return models.CaptureResult{}, err
	}
	if !strings.HasPrefix(image, "data:image/") {
		return models.CaptureResult{}, Reject("analyze", "invalid image")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Emotions = append([]models.EmotionRecord{{Emotion: f.Result.Emotion, Confidence: f.Result.Confidence}}, f.Emotions...)
	return f.Result, nil
}

func (f *FakeBackend) Recommend(ctx context.Context, emotion string) ([]models.Song, error) {
	emotion = strings.ToLower(emotion)
	if err := f.enter(ctx, "recommend", emotion); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	songs := slices.Clone(f.Catalog[emotion])
	if songs == nil {
		songs = []models.Song{}
	}
	return songs, nil
}

func (f *FakeBackend) TrackPlay(ctx context.Context, id models.SongID) error {
	return f.enter(ctx, "track_play", string(id))
}

func (f *FakeBackend) EmotionHistory(ctx context.Context, limit int) ([]models.EmotionRecord, error) {
	if err := f.enter(ctx, "emotion_history", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return clip(f.Emotions, limit), nil
}

func (f *FakeBackend) ListeningHistory(ctx context.Context, limit int) ([]models.ListeningRecord, error) {
	if err := f.enter(ctx, "listening_history", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return clip(f.Listening, limit), nil
}

func (f *FakeBackend) MostPlayed(ctx context.Context, limit int) ([]models.PlayedSong, error) {
	if err := f.enter(ctx, "most_played", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return clip(f.Played, limit), nil
}

func (f *FakeBackend) EmotionStats(ctx context.Context) (models.EmotionStats, error) {
	if err := f.enter(ctx, "emotion_stats", ""); err != nil {
		return models.EmotionStats{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Stats, nil
}

func (f *FakeBackend) UploadSong(ctx context.Context, upload models.Upload) (string, error) {
	if err := f.enter(ctx, "upload_song", upload.Title); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, upload)
	return "Song uploaded successfully", nil
}

func (f *FakeBackend) ResolveURL(path string) string {
	return "http://fake.local" + path
}

func clip[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return slices.Clone(items)
}
