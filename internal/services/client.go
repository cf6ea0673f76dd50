// HTTP client for the recommendation server's JSON contract
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "http://127.0.0.1:5000"

// ClientOpts configures a [Client].
type ClientOpts struct {
	BaseURL           string
	HTTPClient        *http.Client
	Jar               http.CookieJar
	Timeout           time.Duration
	RequestsPerSecond float64
	Logger            *log.Logger
}

// Client implements [Backend] over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// envelope is the shape shared by every server response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e envelope) reason() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// NewClient creates a client for the server at opts.BaseURL.
//
// When no HTTP client is supplied, one is built around opts.Jar (or a fresh in-memory jar) so the session cookie
// survives across calls. A zero timeout means requests run until their context ends.
func NewClient(opts ClientOpts) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		jar := opts.Jar
		if jar == nil {
			jar, _ = cookiejar.New(nil)
		}
		httpClient = &http.Client{Jar: jar, Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     shared.WithLogger(logger, "component", "client"),
	}
}

// SetLogger replaces the client's logger. Call it before issuing requests.
func (c *Client) SetLogger(logger *log.Logger) {
	c.logger = shared.WithLogger(logger, "component", "client")
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL joins a server-relative path onto the base URL. Absolute URLs are returned unchanged.
func (c *Client) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// newRequest builds a request against the base URL. A non-nil body is sent as JSON.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.ResolveURL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and decodes the envelope, then the payload into result when result is non-nil.
func (c *Client) do(req *http.Request, result any) error {
	method, path := req.Method, req.URL.Path

	if err := c.limiter.Wait(req.Context()); err != nil {
		return transportError(method, path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return transportError(method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("failed to read response", "method", method, "path", path, "error", err)
		return transportError(method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.Warn("non-JSON response", "method", method, "path", path, "status", resp.StatusCode)
		return transportError(method, path, fmt.Errorf("status %d: response is not JSON", resp.StatusCode))
	}

	if !env.Success {
		c.logger.Info("request rejected", "method", method, "path", path, "status", resp.StatusCode, "message", env.reason())
		return &AppError{Endpoint: path, Status: resp.StatusCode, Message: env.reason()}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return transportError(method, path, fmt.Errorf("failed to decode payload: %w", err))
		}
	}

	c.logger.Debug("request ok", "method", method, "path", path, "status", resp.StatusCode)
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, body, result any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

func withLimit(path string, limit int) string {
	if limit <= 0 {
		return path
	}
	return path + "?limit=" + strconv.Itoa(limit)
}

// UserInfo returns the session user.
func (c *Client) UserInfo(ctx context.Context) (*models.User, error) {
	var payload struct {
		User *models.User `json:"user"`
	}
	if err := c.call(ctx, http.MethodGet, "/user_info", nil, &payload); err != nil {
		return nil, err
	}
	if payload.User == nil {
		return nil, transportError(http.MethodGet, "/user_info", shared.ErrNotAuthenticated)
	}
	return payload.User, nil
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.call(ctx, http.MethodPost, "/login", body, nil)
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.call(ctx, http.MethodPost, "/register", body, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/logout", nil, nil)
}

func (c *Client) Favorites(ctx context.Context) ([]models.Song, error) {
	var payload struct {
		Favorites []models.Song `json:"favorites"`
	}
	if err := c.call(ctx, http.MethodGet, "/get_favorites", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Favorites, nil
}

func (c *Client) AddFavorite(ctx context.Context, id models.SongID) error {
	return c.call(ctx, http.MethodPost, "/add_favorite", map[string]models.SongID{"song_id": id}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, id models.SongID) error {
	return c.call(ctx, http.MethodPost, "/remove_favorite", map[string]models.SongID{"song_id": id}, nil)
}

func (c *Client) Preferences(ctx context.Context) (models.Preferences, error) {
	var payload struct {
		Preferences models.Preferences `json:"preferences"`
	}
	err := c.call(ctx, http.MethodGet, "/get_preferences", nil, &payload)
	return payload.Preferences, err
}

func (c *Client) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	return c.call(ctx, http.MethodPost, "/save_preferences", prefs, nil)
}

// Analyze sends a data URL encoded frame for emotion inference.
func (c *Client) Analyze(ctx context.Context, image string) (models.CaptureResult, error) {
	var result models.CaptureResult
	err := c.call(ctx, http.MethodPost, "/analyze", map[string]string{"image": image}, &result)
	return result, err
}

// Recommend returns the ranked songs for emotion. An empty list is not an error.
func (c *Client) Recommend(ctx context.Context, emotion string) ([]models.Song, error) {
	var payload struct {
		Songs []models.Song `json:"songs"`
	}
	if err := c.call(ctx, http.MethodPost, "/recommend", map[string]string{"emotion": emotion}, &payload); err != nil {
		return nil, err
	}
	if payload.Songs == nil {
		payload.Songs = []models.Song{}
	}
	return payload.Songs, nil
}

func (c *Client) TrackPlay(ctx context.Context, id models.SongID) error {
	return c.call(ctx, http.MethodPost, "/track_play", map[string]models.SongID{"song_id": id}, nil)
}

func (c *Client) EmotionHistory(ctx context.Context, limit int) ([]models.EmotionRecord, error) {
	var payload struct {
		History []models.EmotionRecord `json:"history"`
	}
	if err := c.call(ctx, http.MethodGet, withLimit("/emotion_history", limit), nil, &payload); err != nil {
		return nil, err
	}
	return payload.History, nil
}

func (c *Client) ListeningHistory(ctx context.Context, limit int) ([]models.ListeningRecord, error) {
	var payload struct {
		History []models.ListeningRecord `json:"history"`
	}
	if err := c.call(ctx, http.MethodGet, withLimit("/listening_history", limit), nil, &payload); err != nil {
		return nil, err
	}
	return payload.History, nil
}

func (c *Client) MostPlayed(ctx context.Context, limit int) ([]models.PlayedSong, error) {
	var payload struct {
		Songs []models.PlayedSong `json:"songs"`
	}
	if err := c.call(ctx, http.MethodGet, withLimit("/most_played", limit), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Songs, nil
}

func (c *Client) EmotionStats(ctx context.Context) (models.EmotionStats, error) {
	var payload struct {
		Stats models.EmotionStats `json:"stats"`
	}
	err := c.call(ctx, http.MethodGet, "/emotion_stats", nil, &payload)
	return payload.Stats, err
}
