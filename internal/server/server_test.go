package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/moodtune/internal/media"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/services"
	"github.com/desertthunder/moodtune/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

var testCatalog = []models.Song{
	{Title: "Sunny", Artist: "Bobby Hebb", FilePath: "/static/music/sunny.mp3", EmotionTag: "happy"},
	{Title: "Lovely Day", Artist: "Bill Withers", FilePath: "/static/music/lovely_day.mp3", EmotionTag: "Happy"},
	{Title: "Hurt", Artist: "Johnny Cash", FilePath: "/static/music/hurt.mp3", EmotionTag: "sad"},
}

func newStub(t *testing.T) *StubBackend {
	t.Helper()
	stub, err := NewStubBackend(StubOpts{
		Secret:        []byte("0123456789abcdef0123456789abcdef"),
		AdminUsername: "root",
		AdminPassword: "toor",
		Catalog:       testCatalog,
		BcryptCost:    bcrypt.MinCost,
		Logger:        shared.NewLogger(io.Discard),
		Now:           func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewStubBackend() error = %v", err)
	}
	return stub
}

// newStubServer serves a stub through a [BasicRouter] with the standard middleware.
func newStubServer(t *testing.T) (*StubBackend, *httptest.Server) {
	t.Helper()
	stub := newStub(t)
	logger := shared.NewLogger(io.Discard)

	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))
	router.Handler(stub)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return stub, ts
}

func newClient(t *testing.T, baseURL string) *services.Client {
	t.Helper()
	return services.NewClient(services.ClientOpts{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Logger:  shared.NewLogger(io.Discard),
	})
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", raw, err)
	}
	return u
}

func whiteFrame(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.White)
		}
	}
	dataURL, err := media.EncodeDataURL(img, 95)
	if err != nil {
		t.Fatalf("EncodeDataURL() error = %v", err)
	}
	return dataURL
}

func TestBasicRouter(t *testing.T) {
	t.Run("Method Filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("pong"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("GET /ping = %d %q, want 200 pong", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST /ping = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		want := "first,second,handler"
		if got := strings.Join(order, ","); got != want {
			t.Errorf("order = %s, want %s", got, want)
		}
	})

	t.Run("Path Variables", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodDelete, "/items/{id}", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/items/42", nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("DELETE /items/42 = %d, want 204", rec.Code)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(Recover(shared.NewLogger(io.Discard)))
		router.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})

	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		router := NewBasicRouter()
		router.Use(Logging(shared.NewLogger(&buf)))
		router.Handle(http.MethodGet, "/teapot", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

		out := buf.String()
		if !strings.Contains(out, "/teapot") || !strings.Contains(out, "418") {
			t.Errorf("log output %q missing path or status", out)
		}
	})
}

func TestStubBackendWithClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Session Lifecycle", func(t *testing.T) {
		_, ts := newStubServer(t)
		client := newClient(t, ts.URL)

		if _, err := client.UserInfo(ctx); !errors.Is(err, shared.ErrApplication) {
			t.Fatalf("UserInfo() without session error = %v, want application error", err)
		}

		if err := client.Login(ctx, "root", "wrong"); err == nil {
			t.Fatal("Login() with bad password should fail")
		} else if msg, _ := services.ServerMessage(err); msg != "Invalid username or password" {
			t.Errorf("message = %q", msg)
		}

		if err := client.Register(ctx, "ada", "ada@example.com", "secret"); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if _, err := client.UserInfo(ctx); err == nil {
			t.Error("Register() should not start a session")
		}

		if err := client.Login(ctx, "ada", "secret"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		user, err := client.UserInfo(ctx)
		if err != nil {
			t.Fatalf("UserInfo() error = %v", err)
		}
		if user.Username != "ada" || user.IsAdmin {
			t.Errorf("user = %+v", user)
		}

		if err := client.Logout(ctx); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if _, err := client.UserInfo(ctx); err == nil {
			t.Error("UserInfo() after logout should fail")
		}
	})

	t.Run("Register Failures", func(t *testing.T) {
		_, ts := newStubServer(t)
		client := newClient(t, ts.URL)

		tests := []struct {
			name                      string
			username, email, password string
			want                      string
		}{
			{"missing email", "bob", "", "pw", "All fields are required"},
			{"duplicate username", "root", "other@example.com", "pw", "Username or email already exists"},
			{"duplicate email", "other", "root@localhost", "pw", "Username or email already exists"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := client.Register(ctx, tt.username, tt.email, tt.password)
				if msg, ok := services.ServerMessage(err); !ok || msg != tt.want {
					t.Errorf("Register() error = %v, want message %q", err, tt.want)
				}
			})
		}
	})

	t.Run("Revoked Cookie", func(t *testing.T) {
		_, ts := newStubServer(t)
		jar, _ := cookiejar.New(nil)
		client := services.NewClient(services.ClientOpts{BaseURL: ts.URL, Jar: jar, Logger: shared.NewLogger(io.Discard)})

		if err := client.Login(ctx, "root", "toor"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		cookies := jar.Cookies(mustParseURL(t, ts.URL))
		if len(cookies) == 0 {
			t.Fatal("expected a session cookie")
		}
		if err := client.Logout(ctx); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}

		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/user_info", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("replayed cookie status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("Detection Favorites And Plays", func(t *testing.T) {
		_, ts := newStubServer(t)
		client := newClient(t, ts.URL)
		if err := client.Login(ctx, "root", "toor"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		result, err := client.Analyze(ctx, whiteFrame(t))
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if result.Emotion != "happy" {
			t.Errorf("emotion = %q, want happy", result.Emotion)
		}

		songs, err := client.Recommend(ctx, "HAPPY")
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(songs) != 2 || songs[0].Title != "Sunny" || songs[1].EmotionTag != "happy" {
			t.Fatalf("songs = %+v", songs)
		}

		if err := client.AddFavorite(ctx, songs[0].ID); err != nil {
			t.Fatalf("AddFavorite() error = %v", err)
		}
		err = client.AddFavorite(ctx, songs[0].ID)
		if msg, _ := services.ServerMessage(err); msg != "Song already in favorites" {
			t.Errorf("duplicate AddFavorite() error = %v", err)
		}
		favs, err := client.Favorites(ctx)
		if err != nil || len(favs) != 1 || favs[0].ID != songs[0].ID {
			t.Fatalf("Favorites() = %+v, %v", favs, err)
		}
		if err := client.RemoveFavorite(ctx, songs[0].ID); err != nil {
			t.Fatalf("RemoveFavorite() error = %v", err)
		}
		if favs, _ := client.Favorites(ctx); len(favs) != 0 {
			t.Errorf("Favorites() after remove = %+v", favs)
		}

		for _, s := range []models.Song{songs[1], songs[0], songs[1]} {
			if err := client.TrackPlay(ctx, s.ID); err != nil {
				t.Fatalf("TrackPlay(%s) error = %v", s.ID, err)
			}
		}

		played, err := client.MostPlayed(ctx, 10)
		if err != nil {
			t.Fatalf("MostPlayed() error = %v", err)
		}
		if len(played) != 2 || played[0].ID != songs[1].ID || played[0].PlayCount != 2 {
			t.Errorf("MostPlayed() = %+v", played)
		}

		history, err := client.ListeningHistory(ctx, 2)
		if err != nil {
			t.Fatalf("ListeningHistory() error = %v", err)
		}
		if len(history) != 2 || history[0].ID != songs[1].ID || history[1].ID != songs[0].ID {
			t.Errorf("ListeningHistory() = %+v", history)
		}
		if history[0].Timestamp != "2025-03-14 09:26:53" {
			t.Errorf("timestamp = %q", history[0].Timestamp)
		}

		emotions, err := client.EmotionHistory(ctx, 20)
		if err != nil || len(emotions) != 1 || emotions[0].Emotion != "happy" {
			t.Errorf("EmotionHistory() = %+v, %v", emotions, err)
		}

		stats, err := client.EmotionStats(ctx)
		if err != nil {
			t.Fatalf("EmotionStats() error = %v", err)
		}
		if stats.TotalCaptures != 1 || len(stats.Distribution) != 1 || stats.Distribution[0].Count != 1 {
			t.Errorf("EmotionStats() = %+v", stats)
		}
	})

	t.Run("Track Play Requires Song", func(t *testing.T) {
		_, ts := newStubServer(t)
		client := newClient(t, ts.URL)
		_ = client.Login(ctx, "root", "toor")

		err := client.TrackPlay(ctx, "")
		if msg, _ := services.ServerMessage(err); msg != "Song ID required" {
			t.Errorf("TrackPlay(\"\") error = %v", err)
		}
	})

	t.Run("Preferences Reorder Recommendations", func(t *testing.T) {
		_, ts := newStubServer(t)
		client := newClient(t, ts.URL)
		_ = client.Login(ctx, "root", "toor")

		prefs := models.Preferences{PreferredGenre: "soul", PreferredArtist: "bill withers"}
		if err := client.SavePreferences(ctx, prefs); err != nil {
			t.Fatalf("SavePreferences() error = %v", err)
		}
		got, err := client.Preferences(ctx)
		if err != nil || got != prefs {
			t.Fatalf("Preferences() = %+v, %v", got, err)
		}

		songs, err := client.Recommend(ctx, "happy")
		if err != nil || len(songs) == 0 || songs[0].Artist != "Bill Withers" {
			t.Errorf("Recommend() = %+v, %v", songs, err)
		}
	})

	t.Run("Unknown Emotion Is Empty", func(t *testing.T) {
		_, ts := newStubServer(t)
		client := newClient(t, ts.URL)
		_ = client.Login(ctx, "root", "toor")

		songs, err := client.Recommend(ctx, "bored")
		if err != nil || songs == nil || len(songs) != 0 {
			t.Errorf("Recommend() = %#v, %v", songs, err)
		}
	})

	t.Run("Upload", func(t *testing.T) {
		_, ts := newStubServer(t)
		client := newClient(t, ts.URL)
		_ = client.Login(ctx, "root", "toor")

		upload := models.Upload{
			Title:      "Demo",
			Artist:     "Ada",
			EmotionTag: "Sad",
			Valence:    "0.2",
			Energy:     "0.3",
			FileName:   "my demo.mp3",
			Audio:      []byte("ID3fake"),
		}
		msg, err := client.UploadSong(ctx, upload)
		if err != nil || msg != "Song uploaded successfully" {
			t.Fatalf("UploadSong() = %q, %v", msg, err)
		}

		songs, err := client.Recommend(ctx, "sad")
		if err != nil || len(songs) != 2 {
			t.Fatalf("Recommend(sad) = %+v, %v", songs, err)
		}
		uploaded := songs[1]
		if uploaded.FilePath != "/static/uploads/20250314092653_my_demo.mp3" {
			t.Errorf("file path = %q", uploaded.FilePath)
		}

		resp, err := http.Get(client.ResolveURL(uploaded.FilePath))
		if err != nil {
			t.Fatalf("GET upload error = %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || string(body) != "ID3fake" {
			t.Errorf("GET upload = %d %q", resp.StatusCode, body)
		}

		upload.FileName = "notes.txt"
		_, err = client.UploadSong(ctx, upload)
		if msg, _ := services.ServerMessage(err); msg != "Invalid file type. Allowed: mp3, wav, ogg, flac, m4a" {
			t.Errorf("UploadSong(txt) error = %v", err)
		}
	})
}

func TestStubBackendHandlers(t *testing.T) {
	login := func(t *testing.T, ts *httptest.Server, username, password string) *http.Client {
		t.Helper()
		jar, _ := cookiejar.New(nil)
		hc := &http.Client{Jar: jar}
		body, _ := json.Marshal(map[string]string{"username": username, "password": password})
		resp, err := hc.Post(ts.URL+"/login", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("login error = %v", err)
		}
		resp.Body.Close()
		return hc
	}

	decode := func(t *testing.T, resp *http.Response) map[string]any {
		t.Helper()
		defer resp.Body.Close()
		var out map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		return out
	}

	t.Run("Unauthenticated", func(t *testing.T) {
		_, ts := newStubServer(t)
		for _, path := range []string{"/get_favorites", "/emotion_stats", "/admin/stats"} {
			resp, err := http.Get(ts.URL + path)
			if err != nil {
				t.Fatalf("GET %s error = %v", path, err)
			}
			out := decode(t, resp)
			if resp.StatusCode != http.StatusUnauthorized || out["success"] != false {
				t.Errorf("GET %s = %d %v", path, resp.StatusCode, out)
			}
		}
	})

	t.Run("Wrong Method", func(t *testing.T) {
		_, ts := newStubServer(t)
		resp, err := http.Get(ts.URL + "/login")
		if err != nil {
			t.Fatalf("GET /login error = %v", err)
		}
		out := decode(t, resp)
		if out["message"] != "Invalid request method" {
			t.Errorf("GET /login = %v", out)
		}
	})

	t.Run("Admin Required", func(t *testing.T) {
		stub, ts := newStubServer(t)
		if _, err := stub.addUser("ada", "ada@example.com", "secret", false); err != nil {
			t.Fatalf("addUser() error = %v", err)
		}
		hc := login(t, ts, "ada", "secret")

		resp, err := hc.Get(ts.URL + "/admin/panel")
		if err != nil {
			t.Fatalf("GET /admin/panel error = %v", err)
		}
		out := decode(t, resp)
		if resp.StatusCode != http.StatusForbidden || out["message"] != "Admin access required" {
			t.Errorf("GET /admin/panel = %d %v", resp.StatusCode, out)
		}
	})

	t.Run("Admin Panel", func(t *testing.T) {
		_, ts := newStubServer(t)
		hc := login(t, ts, "root", "toor")

		resp, err := hc.Get(ts.URL + "/admin/panel")
		if err != nil {
			t.Fatalf("GET /admin/panel error = %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Songs: <strong>3</strong>") {
			t.Errorf("GET /admin/panel = %d %s", resp.StatusCode, body)
		}
	})

	t.Run("Admin Stats And Songs", func(t *testing.T) {
		_, ts := newStubServer(t)
		hc := login(t, ts, "root", "toor")

		resp, _ := hc.Get(ts.URL + "/admin/stats")
		stats := decode(t, resp)["stats"].(map[string]any)
		if stats["total_users"] != float64(1) || stats["total_songs"] != float64(3) {
			t.Errorf("stats = %v", stats)
		}
		dist := stats["song_emotion_distribution"].([]any)
		if top := dist[0].(map[string]any); top["emotion"] != "happy" || top["count"] != float64(2) {
			t.Errorf("song_emotion_distribution = %v", dist)
		}

		resp, _ = hc.Get(ts.URL + "/admin/songs")
		songs := decode(t, resp)["songs"].([]any)
		if first := songs[0].(map[string]any); first["uploaded_by"] != "System" {
			t.Errorf("songs[0] = %v", first)
		}
	})

	t.Run("Admin Delete Song", func(t *testing.T) {
		stub, ts := newStubServer(t)
		hc := login(t, ts, "root", "toor")
		stub.mu.Lock()
		stub.favorites[1] = []models.SongID{"1", "2"}
		stub.mu.Unlock()

		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/admin/delete_song/1", nil)
		resp, err := hc.Do(req)
		if err != nil {
			t.Fatalf("DELETE error = %v", err)
		}
		if out := decode(t, resp); out["message"] != "Song deleted successfully" {
			t.Errorf("DELETE = %v", out)
		}
		stub.mu.Lock()
		songs, favs := len(stub.songs), len(stub.favorites[1])
		stub.mu.Unlock()
		if songs != 2 || favs != 1 {
			t.Errorf("songs = %d favorites = %d", songs, favs)
		}

		req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/admin/delete_song/1", nil)
		resp, _ = hc.Do(req)
		if out := decode(t, resp); out["message"] != "Song not found" {
			t.Errorf("second DELETE = %v", out)
		}
	})

	t.Run("Admin Users", func(t *testing.T) {
		stub, ts := newStubServer(t)
		if _, err := stub.addUser("ada", "ada@example.com", "secret", false); err != nil {
			t.Fatalf("addUser() error = %v", err)
		}
		hc := login(t, ts, "root", "toor")

		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/admin/update_user/2", strings.NewReader(`{"is_admin":true}`))
		resp, _ := hc.Do(req)
		out := decode(t, resp)
		stub.mu.Lock()
		promoted := stub.users[2].IsAdmin
		stub.mu.Unlock()
		if out["success"] != true || !promoted {
			t.Errorf("PUT update_user = %v, promoted = %v", out, promoted)
		}

		req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/admin/delete_user/1", nil)
		resp, _ = hc.Do(req)
		if out := decode(t, resp); out["message"] != "Cannot delete your own account" {
			t.Errorf("DELETE self = %v", out)
		}

		req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/admin/delete_user/2", nil)
		resp, _ = hc.Do(req)
		if out := decode(t, resp); out["message"] != "User deleted successfully" {
			t.Errorf("DELETE user = %v", out)
		}

		resp, _ = hc.Get(ts.URL + "/admin/users")
		if users := decode(t, resp)["users"].([]any); len(users) != 1 {
			t.Errorf("users = %v", users)
		}
	})

	t.Run("Analyze Rejects Bad Image", func(t *testing.T) {
		_, ts := newStubServer(t)
		hc := login(t, ts, "root", "toor")

		resp, err := hc.Post(ts.URL+"/analyze", "application/json", strings.NewReader(`{"image":"data:image/jpeg;base64,!!!"}`))
		if err != nil {
			t.Fatalf("POST /analyze error = %v", err)
		}
		out := decode(t, resp)
		if out["success"] != false || out["error"] == "" {
			t.Errorf("POST /analyze = %v", out)
		}
	})
}

func TestDetectEmotion(t *testing.T) {
	uniform := func(c color.Color) image.Image {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				img.Set(x, y, c)
			}
		}
		return img
	}

	tests := []struct {
		name       string
		img        image.Image
		emotion    string
		confidence float64
	}{
		{"black", uniform(color.Black), "angry", 0.70},
		{"white", uniform(color.White), "happy", 0.95},
		{"mid gray", uniform(color.Gray{Y: 128}), "neutral", 0.83},
		{"empty", image.NewRGBA(image.Rectangle{}), "angry", 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectEmotion(tt.img)
			if got.Emotion != tt.emotion || got.Confidence != tt.confidence {
				t.Errorf("DetectEmotion() = %+v, want %s %.2f", got, tt.emotion, tt.confidence)
			}
		})
	}

	t.Run("Deterministic", func(t *testing.T) {
		img := uniform(color.RGBA{R: 200, G: 40, B: 90, A: 255})
		if DetectEmotion(img) != DetectEmotion(img) {
			t.Error("DetectEmotion() should be deterministic")
		}
	})
}

func TestHelpers(t *testing.T) {
	t.Run("secureFilename", func(t *testing.T) {
		tests := map[string]string{
			"song.mp3":              "song.mp3",
			"my song (live).mp3":    "my_song__live_.mp3",
			"../../etc/passwd.mp3":  "passwd.mp3",
			`C:\music\track 1.flac`: "track_1.flac",
		}
		for in, want := range tests {
			if got := secureFilename(in); got != want {
				t.Errorf("secureFilename(%q) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("allowedFile", func(t *testing.T) {
		for name, want := range map[string]bool{"a.MP3": true, "a.m4a": true, "a.txt": false, "mp3": false} {
			if got := allowedFile(name); got != want {
				t.Errorf("allowedFile(%q) = %v, want %v", name, got, want)
			}
		}
	})

	t.Run("countEmotions", func(t *testing.T) {
		recs := []models.EmotionRecord{{Emotion: "sad"}, {Emotion: "happy"}, {Emotion: "happy"}, {Emotion: "angry"}}
		got := countEmotions(recs)
		if len(got) != 3 || got[0].Emotion != "happy" || got[1].Emotion != "sad" || got[2].Emotion != "angry" {
			t.Errorf("countEmotions() = %+v", got)
		}
	})
}

func TestListenAndServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", NewBasicRouter(), shared.NewLogger(io.Discard))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}
