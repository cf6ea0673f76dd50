package server

import (
	"html"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/gorilla/mux"
)

type adminStats struct {
	TotalUsers           int                   `json:"total_users"`
	TotalSongs           int                   `json:"total_songs"`
	TotalFavorites       int                   `json:"total_favorites"`
	TotalEmotionCaptures int                   `json:"total_emotion_captures"`
	TotalPlays           int                   `json:"total_plays"`
	SongEmotions         []models.EmotionCount `json:"song_emotion_distribution"`
	CaptureEmotions      []models.EmotionCount `json:"emotion_captures_distribution"`
	MostPlayed           []adminPlayCount      `json:"most_played_songs"`
}

type adminPlayCount struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Plays  int    `json:"plays"`
}

type adminUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

type adminSong struct {
	models.Song
	Valence    float64 `json:"valence"`
	Energy     float64 `json:"energy"`
	UploadedBy string  `json:"uploaded_by"`
	CreatedAt  string  `json:"created_at"`
}

// stats aggregates totals across all users. Callers must hold s.mu.
func (s *StubBackend) stats() adminStats {
	st := adminStats{
		TotalUsers: len(s.users),
		TotalSongs: len(s.songs),
	}

	var tags, captured []models.EmotionRecord
	for _, song := range s.songs {
		tags = append(tags, models.EmotionRecord{Emotion: song.EmotionTag})
	}
	for _, ids := range s.favorites {
		st.TotalFavorites += len(ids)
	}
	for _, recs := range s.captures {
		st.TotalEmotionCaptures += len(recs)
		captured = append(captured, recs...)
	}
	for _, plays := range s.plays {
		st.TotalPlays += len(plays)
	}
	st.SongEmotions = countEmotions(tags)
	st.CaptureEmotions = countEmotions(captured)

	for _, song := range s.songs {
		if song.PlayCount > 0 {
			st.MostPlayed = append(st.MostPlayed, adminPlayCount{Title: song.Title, Artist: song.Artist, Plays: song.PlayCount})
		}
	}
	slices.SortStableFunc(st.MostPlayed, func(a, b adminPlayCount) int { return b.Plays - a.Plays })
	if len(st.MostPlayed) > defaultMostPlayedLimit {
		st.MostPlayed = st.MostPlayed[:defaultMostPlayedLimit]
	}
	return st
}

func (s *StubBackend) handleAdminStats(w http.ResponseWriter, _ *http.Request, _ *stubUser) {
	s.mu.Lock()
	st := s.stats()
	s.mu.Unlock()

	writeOK(w, map[string]any{"stats": st})
}

// handleAdminPanel serves a minimal HTML overview for administrators.
func (s *StubBackend) handleAdminPanel(w http.ResponseWriter, _ *http.Request, user *stubUser) {
	s.mu.Lock()
	st := s.stats()
	s.mu.Unlock()

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><title>moodtune admin</title></head><body>\n")
	b.WriteString("<h1>Admin Panel</h1>\n<p>Signed in as " + html.EscapeString(user.Username) + "</p>\n<ul>\n")
	rows := [][2]string{
		{"Users", strconv.Itoa(st.TotalUsers)},
		{"Songs", strconv.Itoa(st.TotalSongs)},
		{"Favorites", strconv.Itoa(st.TotalFavorites)},
		{"Emotion captures", strconv.Itoa(st.TotalEmotionCaptures)},
		{"Plays", strconv.Itoa(st.TotalPlays)},
	}
	for _, row := range rows {
		b.WriteString("<li>" + row[0] + ": <strong>" + row[1] + "</strong></li>\n")
	}
	b.WriteString("</ul>\n</body></html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (s *StubBackend) handleAdminUsers(w http.ResponseWriter, _ *http.Request, _ *stubUser) {
	s.mu.Lock()
	users := []adminUser{}
	for _, u := range s.sortedUsers() {
		users = append(users, adminUser{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			IsAdmin:   u.IsAdmin,
			CreatedAt: s.timestamp(u.CreatedAt),
		})
	}
	s.mu.Unlock()

	writeOK(w, map[string]any{"users": users})
}

func (s *StubBackend) handleAdminSongs(w http.ResponseWriter, _ *http.Request, _ *stubUser) {
	s.mu.Lock()
	songs := []adminSong{}
	for _, song := range s.songs {
		uploader := "System"
		if u, ok := s.users[song.UploadedBy]; ok {
			uploader = u.Username
		}
		songs = append(songs, adminSong{
			Song:       song.Song,
			Valence:    song.Valence,
			Energy:     song.Energy,
			UploadedBy: uploader,
			CreatedAt:  s.timestamp(song.CreatedAt),
		})
	}
	s.mu.Unlock()

	writeOK(w, map[string]any{"songs": songs})
}

func (s *StubBackend) handleAdminDeleteSong(w http.ResponseWriter, r *http.Request, _ *stubUser) {
	id := models.SongID(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()
	song := s.findSong(id)
	if song == nil {
		writeFailure(w, http.StatusOK, "Song not found")
		return
	}

	if name, ok := strings.CutPrefix(song.FilePath, "/static/uploads/"); ok {
		delete(s.uploads, name)
	}
	s.songs = slices.DeleteFunc(s.songs, func(e *stubSong) bool { return e.ID == id })
	for user, ids := range s.favorites {
		s.favorites[user] = slices.DeleteFunc(ids, func(fav models.SongID) bool { return fav == id })
	}
	writeMessage(w, "Song deleted successfully")
}

func (s *StubBackend) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request, _ *stubUser) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, http.StatusOK, "Invalid user id")
		return
	}
	var body struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsAdmin = body.IsAdmin
	}
	writeMessage(w, "User updated successfully")
}

func (s *StubBackend) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request, admin *stubUser) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, http.StatusOK, "Invalid user id")
		return
	}
	if id == admin.ID {
		writeFailure(w, http.StatusOK, "Cannot delete your own account")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	delete(s.favorites, id)
	delete(s.prefs, id)
	for token, owner := range s.tokens {
		if owner == id {
			delete(s.tokens, token)
		}
	}
	writeMessage(w, "User deleted successfully")
}
