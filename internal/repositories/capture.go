package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

var _ models.Repository[*models.CaptureRecord] = (*CaptureRepository)(nil)

// CaptureRepository implements models.Repository[*models.CaptureRecord] for the capture journal.
type CaptureRepository struct {
	db *sql.DB
}

func NewCaptureRepository(db *sql.DB) *CaptureRepository {
	return &CaptureRepository{db: db}
}

const captureColumns = "id, username, emotion, confidence, created_at"

// Create journals a capture with a generated ID
func (r *CaptureRepository) Create(record *models.CaptureRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	result := record.Result()
	_, err := r.db.Exec(`INSERT INTO captures (`+captureColumns+`) VALUES (?, ?, ?, ?, ?)`,
		id, record.Username(), result.Emotion, result.Confidence, record.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert capture: %w", err)
	}

	record.SetID(id)
	return nil
}

func (r *CaptureRepository) Get(id string) (*models.CaptureRecord, error) {
	return r.scan(r.db.QueryRow(`SELECT `+captureColumns+` FROM captures WHERE id = ?`, id))
}

func (r *CaptureRepository) Delete(id string) error {
	return deleteByID(r.db, "captures", id)
}

// List retrieves journaled captures, newest first.
//
// Criteria: "username" and "emotion" filter by exact match, "limit" caps the result.
func (r *CaptureRepository) List(criteria map[string]any) ([]*models.CaptureRecord, error) {
	query := `SELECT ` + captureColumns + ` FROM captures WHERE 1 = 1`
	args := []any{}

	if username, ok := criteria["username"].(string); ok && username != "" {
		query += " AND username = ?"
		args = append(args, username)
	}
	if emotion, ok := criteria["emotion"].(string); ok && emotion != "" {
		query += " AND emotion = ?"
		args = append(args, emotion)
	}

	query += " ORDER BY created_at DESC"
	query, args = limitClause(query, args, criteria)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query captures: %w", err)
	}
	defer rows.Close()

	var records []*models.CaptureRecord
	for rows.Next() {
		record, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Stats summarizes the journal in the same shape the server reports, most frequent emotion first.
func (r *CaptureRepository) Stats(username string) (models.EmotionStats, error) {
	query := `SELECT emotion, COUNT(*) FROM captures`
	args := []any{}
	if username != "" {
		query += " WHERE username = ?"
		args = append(args, username)
	}
	query += " GROUP BY emotion ORDER BY COUNT(*) DESC, emotion ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return models.EmotionStats{}, fmt.Errorf("failed to query capture stats: %w", err)
	}
	defer rows.Close()

	stats := models.EmotionStats{Distribution: []models.EmotionCount{}}
	for rows.Next() {
		var c models.EmotionCount
		if err := rows.Scan(&c.Emotion, &c.Count); err != nil {
			return models.EmotionStats{}, fmt.Errorf("failed to scan capture stats: %w", err)
		}
		stats.TotalCaptures += c.Count
		stats.Distribution = append(stats.Distribution, c)
	}

	if err := rows.Err(); err != nil {
		return models.EmotionStats{}, fmt.Errorf("row iteration error: %w", err)
	}
	return stats, nil
}

func (r *CaptureRepository) scan(row scanner) (*models.CaptureRecord, error) {
	var (
		id        string
		username  string
		result    models.CaptureResult
		createdAt time.Time
	)

	err := row.Scan(&id, &username, &result.Emotion, &result.Confidence, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: capture", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan capture: %w", err)
	}

	record := models.NewCaptureRecord(username, result)
	record.SetID(id)
	record.SetCreatedAt(createdAt)
	return record, nil
}
