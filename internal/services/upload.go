package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

// UploadSong submits upload as a multipart form and returns the server's message.
func (c *Client) UploadSong(ctx context.Context, upload models.Upload) (string, error) {
	if upload.Missing() {
		return "", fmt.Errorf("%w: title, artist, emotion tag and audio file are required", shared.ErrInvalidInput)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"title", upload.Title},
		{"artist", upload.Artist},
		{"emotion_tag", upload.EmotionTag},
		{"valence", upload.Valence},
		{"energy", upload.Energy},
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return "", fmt.Errorf("failed to write form field %s: %w", f[0], err)
		}
	}

	part, err := form.CreateFormFile("audio_file", upload.FileName)
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(upload.Audio); err != nil {
		return "", fmt.Errorf("failed to write file part: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ResolveURL("/upload_song"), &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", form.FormDataContentType())

	var payload struct {
		Message string `json:"message"`
	}
	if err := c.do(req, &payload); err != nil {
		return "", err
	}
	return payload.Message, nil
}
