package models

import (
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for entities stored in the local cache.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the data access operations for cached entities.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// CachedSong is a server song remembered locally, with where it was last seen.
type CachedSong struct {
	id        string
	song      Song
	source    string
	seenCount int
	createdAt time.Time
	updatedAt time.Time
}

// NewCachedSong creates a [CachedSong] for song as seen in the named list.
func NewCachedSong(song Song, source string) *CachedSong {
	now := time.Now()
	return &CachedSong{song: song, source: source, seenCount: 1, createdAt: now, updatedAt: now}
}

func (c *CachedSong) ID() string           { return c.id }
func (c *CachedSong) Song() Song           { return c.song }
func (c *CachedSong) Source() string       { return c.source }
func (c *CachedSong) SeenCount() int       { return c.seenCount }
func (c *CachedSong) CreatedAt() time.Time { return c.createdAt }
func (c *CachedSong) UpdatedAt() time.Time { return c.updatedAt }

func (c *CachedSong) SetID(id string)          { c.id = id }
func (c *CachedSong) SetSeenCount(n int)       { c.seenCount = n }
func (c *CachedSong) SetCreatedAt(t time.Time) { c.createdAt = t }
func (c *CachedSong) SetUpdatedAt(t time.Time) { c.updatedAt = t }

// Validate requires a server ID, title and artist.
func (c *CachedSong) Validate() error {
	switch {
	case c.song.ID == "":
		return fmt.Errorf("song id is required")
	case strings.TrimSpace(c.song.Title) == "":
		return fmt.Errorf("song title is required")
	case strings.TrimSpace(c.song.Artist) == "":
		return fmt.Errorf("song artist is required")
	}
	return nil
}

// CaptureRecord is a journaled capture result.
type CaptureRecord struct {
	id        string
	username  string
	result    CaptureResult
	createdAt time.Time
}

// NewCaptureRecord creates a [CaptureRecord] for the user's capture.
func NewCaptureRecord(username string, result CaptureResult) *CaptureRecord {
	return &CaptureRecord{username: username, result: result, createdAt: time.Now()}
}

func (c *CaptureRecord) ID() string               { return c.id }
func (c *CaptureRecord) Username() string         { return c.username }
func (c *CaptureRecord) Result() CaptureResult    { return c.result }
func (c *CaptureRecord) CreatedAt() time.Time     { return c.createdAt }
func (c *CaptureRecord) SetID(id string)          { c.id = id }
func (c *CaptureRecord) SetCreatedAt(t time.Time) { c.createdAt = t }

// Validate requires an emotion label and a confidence within 0..1.
func (c *CaptureRecord) Validate() error {
	if strings.TrimSpace(c.result.Emotion) == "" {
		return fmt.Errorf("emotion is required")
	}
	if c.result.Confidence < 0 || c.result.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", c.result.Confidence)
	}
	return nil
}
