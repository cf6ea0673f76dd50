package server

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/moodtune/internal/media"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

var errDuplicateUser = errors.New("username or email already exists")

// allowedAudio lists the upload extensions the server accepts.
var allowedAudio = []string{"mp3", "wav", "ogg", "flac", "m4a"}

func (s *StubBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := s.userByName(body.Username)
	if user == nil || bcrypt.CompareHashAndPassword(user.Hash, []byte(body.Password)) != nil {
		s.logger.Info("login rejected", "username", body.Username)
		writeFailure(w, http.StatusOK, "Invalid username or password")
		return
	}

	if err := s.startSession(w, r, user); err != nil {
		s.logger.Error("failed to save session", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to start session")
		return
	}
	writeMessage(w, "Login successful")
}

func (s *StubBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Username == "" || body.Email == "" || body.Password == "" {
		writeFailure(w, http.StatusOK, "All fields are required")
		return
	}

	if _, err := s.addUser(body.Username, body.Email, body.Password, false); err != nil {
		if errors.Is(err, errDuplicateUser) {
			writeFailure(w, http.StatusOK, "Username or email already exists")
			return
		}
		writeFailure(w, http.StatusOK, err.Error())
		return
	}
	s.logger.Info("registered user", "username", body.Username)
	writeMessage(w, "Registration successful")
}

func (s *StubBackend) handleLogout(w http.ResponseWriter, r *http.Request, _ *stubUser) {
	if err := s.endSession(w, r); err != nil {
		s.logger.Error("failed to clear session", "error", err)
	}
	writeMessage(w, "Logout successful")
}

func (s *StubBackend) handleUserInfo(w http.ResponseWriter, _ *http.Request, user *stubUser) {
	writeOK(w, map[string]any{"user": user.model()})
}

func (s *StubBackend) handleFavorites(w http.ResponseWriter, _ *http.Request, user *stubUser) {
	s.mu.Lock()
	songs := []models.Song{}
	for _, id := range s.favorites[user.ID] {
		if song := s.findSong(id); song != nil {
			fav := song.Song
			fav.EmotionTag = ""
			songs = append(songs, fav)
		}
	}
	s.mu.Unlock()

	writeOK(w, map[string]any{"favorites": songs})
}

type songRequest struct {
	SongID models.SongID `json:"song_id"`
}

func (s *StubBackend) handleAddFavorite(w http.ResponseWriter, r *http.Request, user *stubUser) {
	var body songRequest
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findSong(body.SongID) == nil {
		writeFailure(w, http.StatusOK, "Song not found")
		return
	}
	if slices.Contains(s.favorites[user.ID], body.SongID) {
		writeFailure(w, http.StatusOK, "Song already in favorites")
		return
	}
	s.favorites[user.ID] = append(s.favorites[user.ID], body.SongID)
	writeMessage(w, "Song added to favorites")
}

func (s *StubBackend) handleRemoveFavorite(w http.ResponseWriter, r *http.Request, user *stubUser) {
	var body songRequest
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites[user.ID] = slices.DeleteFunc(s.favorites[user.ID], func(id models.SongID) bool {
		return id == body.SongID
	})
	writeMessage(w, "Song removed from favorites")
}

func (s *StubBackend) handlePreferences(w http.ResponseWriter, _ *http.Request, user *stubUser) {
	s.mu.Lock()
	prefs := s.prefs[user.ID]
	s.mu.Unlock()

	writeOK(w, map[string]any{"preferences": prefs})
}

func (s *StubBackend) handleSavePreferences(w http.ResponseWriter, r *http.Request, user *stubUser) {
	var prefs models.Preferences
	if err := decodeBody(r, &prefs); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	s.prefs[user.ID] = prefs
	s.mu.Unlock()

	writeMessage(w, "Preferences saved successfully")
}

func (s *StubBackend) handleAnalyze(w http.ResponseWriter, r *http.Request, user *stubUser) {
	var body struct {
		Image string `json:"image"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
		return
	}

	img, err := media.DecodeDataURL(body.Image)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
		return
	}

	result := DetectEmotion(img)

	s.mu.Lock()
	s.captures[user.ID] = append(s.captures[user.ID], models.EmotionRecord{
		Emotion:    result.Emotion,
		Confidence: result.Confidence,
		Timestamp:  s.timestamp(s.now()),
	})
	s.mu.Unlock()

	writeOK(w, map[string]any{"emotion": result.Emotion, "confidence": result.Confidence})
}

// handleRecommend returns up to ten songs tagged with the emotion. Songs by the user's
// preferred artist come first.
func (s *StubBackend) handleRecommend(w http.ResponseWriter, r *http.Request, user *stubUser) {
	var body struct {
		Emotion string `json:"emotion"`
	}
	if err := decodeBody(r, &body); err != nil || body.Emotion == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "emotion is required"})
		return
	}
	emotion := strings.ToLower(body.Emotion)

	s.mu.Lock()
	artist := strings.ToLower(s.prefs[user.ID].PreferredArtist)
	var preferred, rest []models.Song
	for _, song := range s.songs {
		if song.EmotionTag != emotion {
			continue
		}
		if artist != "" && strings.ToLower(song.Artist) == artist {
			preferred = append(preferred, song.Song)
		} else {
			rest = append(rest, song.Song)
		}
	}
	s.mu.Unlock()

	songs := append(preferred, rest...)
	if len(songs) > maxRecommendations {
		songs = songs[:maxRecommendations]
	}
	if songs == nil {
		songs = []models.Song{}
	}
	writeOK(w, map[string]any{"songs": songs, "algorithm": "stub"})
}

func (s *StubBackend) handleTrackPlay(w http.ResponseWriter, r *http.Request, user *stubUser) {
	var body songRequest
	if err := decodeBody(r, &body); err != nil || body.SongID == "" {
		writeFailure(w, http.StatusOK, "Song ID required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	song := s.findSong(body.SongID)
	if song == nil {
		writeFailure(w, http.StatusOK, "Song not found")
		return
	}
	song.PlayCount++
	s.plays[user.ID] = append(s.plays[user.ID], stubPlay{SongID: body.SongID, At: s.now()})
	writeMessage(w, "Play tracked")
}

func queryLimit(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func (s *StubBackend) handleEmotionHistory(w http.ResponseWriter, r *http.Request, user *stubUser) {
	limit := queryLimit(r, defaultHistoryLimit)

	s.mu.Lock()
	records := s.captures[user.ID]
	history := make([]models.EmotionRecord, 0, min(limit, len(records)))
	for i := len(records) - 1; i >= 0 && len(history) < limit; i-- {
		history = append(history, records[i])
	}
	s.mu.Unlock()

	writeOK(w, map[string]any{"history": history})
}

func (s *StubBackend) handleEmotionStats(w http.ResponseWriter, _ *http.Request, user *stubUser) {
	s.mu.Lock()
	records := s.captures[user.ID]
	stats := models.EmotionStats{TotalCaptures: len(records), Distribution: countEmotions(records)}
	s.mu.Unlock()

	writeOK(w, map[string]any{"stats": stats})
}

// countEmotions buckets records by emotion, largest bucket first with ties in first-seen order.
func countEmotions(records []models.EmotionRecord) []models.EmotionCount {
	counts := []models.EmotionCount{}
	index := map[string]int{}
	for _, rec := range records {
		i, ok := index[rec.Emotion]
		if !ok {
			i = len(counts)
			index[rec.Emotion] = i
			counts = append(counts, models.EmotionCount{Emotion: rec.Emotion})
		}
		counts[i].Count++
	}
	slices.SortStableFunc(counts, func(a, b models.EmotionCount) int { return b.Count - a.Count })
	return counts
}

func (s *StubBackend) handleListeningHistory(w http.ResponseWriter, r *http.Request, user *stubUser) {
	limit := queryLimit(r, defaultHistoryLimit)

	s.mu.Lock()
	plays := s.plays[user.ID]
	history := make([]models.ListeningRecord, 0, min(limit, len(plays)))
	for i := len(plays) - 1; i >= 0 && len(history) < limit; i-- {
		song := s.findSong(plays[i].SongID)
		if song == nil {
			continue
		}
		history = append(history, models.ListeningRecord{Song: song.Song, Timestamp: s.timestamp(plays[i].At)})
	}
	s.mu.Unlock()

	writeOK(w, map[string]any{"history": history})
}

func (s *StubBackend) handleMostPlayed(w http.ResponseWriter, r *http.Request, user *stubUser) {
	limit := queryLimit(r, defaultMostPlayedLimit)

	s.mu.Lock()
	played := []models.PlayedSong{}
	index := map[models.SongID]int{}
	for _, p := range s.plays[user.ID] {
		song := s.findSong(p.SongID)
		if song == nil {
			continue
		}
		i, ok := index[p.SongID]
		if !ok {
			i = len(played)
			index[p.SongID] = i
			entry := song.Song
			entry.EmotionTag = ""
			played = append(played, models.PlayedSong{Song: entry})
		}
		played[i].PlayCount++
	}
	s.mu.Unlock()

	slices.SortStableFunc(played, func(a, b models.PlayedSong) int { return b.PlayCount - a.PlayCount })
	if len(played) > limit {
		played = played[:limit]
	}
	writeOK(w, map[string]any{"songs": played})
}

func (s *StubBackend) handleUpload(w http.ResponseWriter, r *http.Request, user *stubUser) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeFailure(w, http.StatusOK, "No file uploaded")
		return
	}

	file, header, err := r.FormFile("audio_file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeFailure(w, http.StatusOK, "No file uploaded")
			return
		}
		writeFailure(w, http.StatusOK, err.Error())
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	artist := r.FormValue("artist")
	emotionTag := r.FormValue("emotion_tag")

	if title == "" || artist == "" || emotionTag == "" {
		writeFailure(w, http.StatusOK, "All fields are required")
		return
	}

	valence, err := formFloat(r, "valence")
	if err != nil {
		writeFailure(w, http.StatusOK, err.Error())
		return
	}
	energy, err := formFloat(r, "energy")
	if err != nil {
		writeFailure(w, http.StatusOK, err.Error())
		return
	}

	if !allowedFile(header.Filename) {
		writeFailure(w, http.StatusOK, "Invalid file type. Allowed: "+strings.Join(allowedAudio, ", "))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeFailure(w, http.StatusOK, err.Error())
		return
	}

	name := fmt.Sprintf("%s_%s", s.now().Format("20060102150405"), secureFilename(header.Filename))
	path := "/static/uploads/" + name

	s.mu.Lock()
	s.uploads[name] = data
	s.addSong(models.Song{Title: title, Artist: artist, FilePath: path, EmotionTag: emotionTag}, valence, energy, user.ID)
	s.mu.Unlock()

	s.logger.Info("song uploaded", "title", title, "artist", artist, "path", path, "bytes", len(data))
	writeMessage(w, "Song uploaded successfully")
}

func (s *StubBackend) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.mu.Lock()
	data, ok := s.uploads[name]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	_, _ = w.Write(data)
}

func formFloat(r *http.Request, key string) (float64, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0.5, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("could not convert %s to float: %q", key, v)
	}
	return math.Max(0, math.Min(1, f)), nil
}

func allowedFile(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return ext != "" && slices.Contains(allowedAudio, ext)
}

// secureFilename strips directories and replaces anything outside [A-Za-z0-9._-] with underscores.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.TrimLeft(b.String(), "._")
}
