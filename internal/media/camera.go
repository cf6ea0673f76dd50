package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/desertthunder/moodtune/internal/shared"
)

const DefaultJPEGQuality = 90

// Resolution is the requested stream size. Devices may deliver a different size.
type Resolution struct {
	Width  int
	Height int
}

// DefaultResolution is the capture hint used for emotion detection.
var DefaultResolution = Resolution{Width: 640, Height: 480}

// Camera is a video source that can be started, sampled and released.
type Camera interface {
	Start(ctx context.Context, hint Resolution) error
	Stop() error
	Active() bool
	Snapshot() (image.Image, error)
}

// FrameCamera reads frames from an image file on disk.
type FrameCamera struct {
	mu     sync.Mutex
	path   string
	hint   Resolution
	active bool
}

func NewFrameCamera(path string) *FrameCamera {
	return &FrameCamera{path: shared.ExpandHome(path)}
}

// Start opens the stream. It fails when the frame file is missing or not a decodable image.
func (c *FrameCamera) Start(ctx context.Context, hint Resolution) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.path == "" {
		return fmt.Errorf("%w: no frame path configured", shared.ErrCameraUnavailable)
	}
	if _, err := c.read(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hint = hint
	c.active = true
	return nil
}

// Stop releases the stream. Stopping an inactive camera is a no-op.
func (c *FrameCamera) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	return nil
}

func (c *FrameCamera) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Hint returns the resolution requested by the last Start.
func (c *FrameCamera) Hint() Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hint
}

// Snapshot decodes the current contents of the frame file.
func (c *FrameCamera) Snapshot() (image.Image, error) {
	if !c.Active() {
		return nil, shared.ErrCameraInactive
	}
	return c.read()
}

func (c *FrameCamera) read() (image.Image, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCameraUnavailable, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode frame %s: %v", shared.ErrCameraUnavailable, c.path, err)
	}
	return img, nil
}

// EncodeDataURL JPEG-encodes img and embeds it as a base64 data URL.
//
// Quality outside 1..100 falls back to [DefaultJPEGQuality].
func EncodeDataURL(img image.Image, quality int) (string, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL reverses [EncodeDataURL], accepting any base64 image data URL.
func DecodeDataURL(dataURL string) (image.Image, error) {
	_, payload, ok := bytes.Cut([]byte(dataURL), []byte(","))
	if !ok {
		return nil, fmt.Errorf("%w: not a data URL", shared.ErrInvalidInput)
	}

	raw := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
	n, err := base64.StdEncoding.Decode(raw, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64 payload: %v", shared.ErrInvalidInput, err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw[:n]))
	if err != nil {
		return nil, fmt.Errorf("%w: bad image: %v", shared.ErrInvalidInput, err)
	}
	return img, nil
}
