package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

var _ models.Repository[*models.CachedSong] = (*SongRepository)(nil)

// SongRepository implements models.Repository[*models.CachedSong] for the song cache.
//
// Songs are keyed by their server id; seeing a song again bumps its seen count and records the latest source.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

const songColumns = "id, song_id, title, artist, file_path, emotion_tag, source, seen_count, created_at, updated_at"

// Create inserts a new [models.CachedSong] with a generated ID
func (r *SongRepository) Create(song *models.CachedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	s := song.Song()

	query := `INSERT INTO songs (` + songColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query,
		id, s.ID.String(), s.Title, s.Artist, s.FilePath, s.EmotionTag,
		song.Source(), song.SeenCount(), song.CreatedAt(), song.UpdatedAt(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("song %s already cached: %w", s.ID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	song.SetID(id)
	return nil
}

// Upsert records that song was shown in source, inserting it or bumping its seen count.
func (r *SongRepository) Upsert(song models.Song, source string) error {
	cached := models.NewCachedSong(song, source)
	if err := cached.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO songs (` + songColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(song_id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			file_path = excluded.file_path,
			emotion_tag = CASE WHEN excluded.emotion_tag != '' THEN excluded.emotion_tag ELSE songs.emotion_tag END,
			source = excluded.source,
			seen_count = songs.seen_count + 1,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	_, err := r.db.Exec(query,
		shared.GenerateID(), song.ID.String(), song.Title, song.Artist, song.FilePath, song.EmotionTag, source, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert song %s: %w", song.ID, err)
	}
	return nil
}

// Get retrieves a cached song by its local ID
func (r *SongRepository) Get(id string) (*models.CachedSong, error) {
	return r.scan(r.db.QueryRow(`SELECT `+songColumns+` FROM songs WHERE id = ?`, id))
}

// GetBySongID retrieves a cached song by its server id
func (r *SongRepository) GetBySongID(id models.SongID) (*models.CachedSong, error) {
	return r.scan(r.db.QueryRow(`SELECT `+songColumns+` FROM songs WHERE song_id = ?`, id.String()))
}

// Delete removes a cached song by local ID
func (r *SongRepository) Delete(id string) error {
	return deleteByID(r.db, "songs", id)
}

// List retrieves cached songs, most seen first.
//
// Criteria: "emotion_tag" and "source" filter by exact match, "limit" caps the result.
func (r *SongRepository) List(criteria map[string]any) ([]*models.CachedSong, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE 1 = 1`
	args := []any{}

	if tag, ok := criteria["emotion_tag"].(string); ok && tag != "" {
		query += " AND emotion_tag = ?"
		args = append(args, tag)
	}
	if source, ok := criteria["source"].(string); ok && source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}

	query += " ORDER BY seen_count DESC, updated_at DESC"
	query, args = limitClause(query, args, criteria)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.CachedSong
	for rows.Next() {
		song, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// scan reads one row of songColumns into a [models.CachedSong]
func (r *SongRepository) scan(row scanner) (*models.CachedSong, error) {
	var (
		id        string
		song      models.Song
		songID    string
		source    string
		seenCount int
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &songID, &song.Title, &song.Artist, &song.FilePath, &song.EmotionTag, &source, &seenCount, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: song", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song.ID = models.SongID(songID)
	cached := models.NewCachedSong(song, source)
	cached.SetID(id)
	cached.SetSeenCount(seenCount)
	cached.SetCreatedAt(createdAt)
	cached.SetUpdatedAt(updatedAt)
	return cached, nil
}
