package web

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/controller"
)

const doctype = "<!DOCTYPE html>\n"

// Snapshot is a [controller.Surface] that keeps an HTML rendering of the latest state on disk.
type Snapshot struct {
	path   string
	logger *log.Logger

	mu     sync.Mutex
	writes int
}

func NewSnapshot(path string, logger *log.Logger) *Snapshot {
	return &Snapshot{path: path, logger: logger}
}

// Render writes s to the snapshot path, replacing the previous file.
func (w *Snapshot) Render(s controller.State) {
	if err := w.Write(s); err != nil && w.logger != nil {
		w.logger.Error("failed to write snapshot", "path", w.path, "error", err)
	}
}

// Write renders s and atomically replaces the snapshot file.
func (w *Snapshot) Write(s controller.State) error {
	var buf bytes.Buffer
	buf.WriteString(doctype)
	if err := Render(&buf, Document(s)); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return err
	}
	w.writes++
	return nil
}

// Writes returns how many snapshots have been written.
func (w *Snapshot) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
