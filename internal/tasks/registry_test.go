package tasks

import (
	"context"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("Begin Cancels Predecessor", func(t *testing.T) {
		r := NewRegistry()
		first := r.Begin(context.Background(), "recommend", 1)
		second := r.Begin(context.Background(), "recommend", 2)

		if first.Err() == nil {
			t.Error("expected first task to be canceled")
		}
		if second.Err() != nil {
			t.Error("expected second task to be live")
		}
		if r.Live("recommend", 1) || !r.Live("recommend", 2) {
			t.Error("expected only seq 2 to be live")
		}
	})

	t.Run("Intents Are Independent", func(t *testing.T) {
		r := NewRegistry()
		a := r.Begin(context.Background(), "favorites", 1)
		r.Begin(context.Background(), "recommend", 2)

		if a.Err() != nil {
			t.Error("a different intent must not cancel favorites")
		}
		if r.Len() != 2 {
			t.Errorf("expected 2 live tasks, got %d", r.Len())
		}
	})

	t.Run("Done Ignores Superseded", func(t *testing.T) {
		r := NewRegistry()
		r.Begin(context.Background(), "capture", 1)
		ctx := r.Begin(context.Background(), "capture", 2)

		r.Done("capture", 1)
		if ctx.Err() != nil || !r.Live("capture", 2) {
			t.Error("stale Done must not release the live task")
		}

		r.Done("capture", 2)
		if ctx.Err() == nil || r.Len() != 0 {
			t.Error("expected live task to be released")
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		r := NewRegistry()
		ctx := r.Begin(context.Background(), "upload", 1)
		r.Cancel("upload")
		r.Cancel("missing")
		if ctx.Err() == nil || r.Len() != 0 {
			t.Error("expected upload to be canceled")
		}
	})

	t.Run("CancelAll", func(t *testing.T) {
		r := NewRegistry()
		ctxs := []context.Context{
			r.Begin(context.Background(), "session", 1),
			r.Begin(context.Background(), "favorites", 2),
			r.Begin(context.Background(), "recommend", 3),
		}
		r.CancelAll()

		for i, ctx := range ctxs {
			if ctx.Err() == nil {
				t.Errorf("task %d still live", i)
			}
		}
		if r.Len() != 0 {
			t.Errorf("expected empty registry, got %d", r.Len())
		}
	})

	t.Run("Parent Cancellation", func(t *testing.T) {
		r := NewRegistry()
		parent, cancel := context.WithCancel(context.Background())
		ctx := r.Begin(parent, "session", 1)
		cancel()
		if ctx.Err() == nil {
			t.Error("expected child to follow parent")
		}
	})
}
