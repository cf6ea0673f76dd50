package testing

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/desertthunder/moodtune/internal/media"
	"github.com/desertthunder/moodtune/internal/shared"
)

// FakeCamera is an in-memory [media.Camera] producing a solid gray frame.
type FakeCamera struct {
	mu       sync.Mutex
	active   bool
	hint     media.Resolution
	StartErr error
	Snaps    int
}

func (c *FakeCamera) Start(ctx context.Context, hint media.Resolution) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.StartErr != nil {
		return c.StartErr
	}
	c.active, c.hint = true, hint
	return nil
}

func (c *FakeCamera) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	return nil
}

func (c *FakeCamera) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *FakeCamera) Hint() media.Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hint
}

func (c *FakeCamera) Snapshot() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil, shared.ErrCameraInactive
	}
	c.Snaps++
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	for i := range img.Pix {
		img.Pix[i] = color.Gray{Y: 128}.Y
	}
	return img, nil
}

// FakePlayer records the URLs it was asked to play.
type FakePlayer struct {
	mu      sync.Mutex
	played  []string
	PlayErr error
}

func (p *FakePlayer) Play(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.PlayErr != nil {
		return p.PlayErr
	}
	p.played = append(p.played, url)
	return nil
}

func (p *FakePlayer) Stop() error { return nil }

func (p *FakePlayer) Played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.played...)
}

// FakeBrowser records opened URLs.
type FakeBrowser struct {
	mu     sync.Mutex
	opened []string
}

func (b *FakeBrowser) Open(url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = append(b.opened, url)
	return nil
}

func (b *FakeBrowser) Opened() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.opened...)
}
