// Session cookie persistence between CLI invocations
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/moodtune/internal/shared"
)

// savedCookie is the on-disk form of a session cookie.
type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FileJar is an [http.CookieJar] scoped to one server whose cookies can be saved to and restored from a JSON file.
type FileJar struct {
	mu   sync.Mutex
	jar  *cookiejar.Jar
	base *url.URL
	path string
}

// NewFileJar creates a jar for baseURL backed by the file at path. Cookies already in the file are loaded;
// a missing file yields an empty jar.
func NewFileJar(path, baseURL string) (*FileJar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url %q: %v", shared.ErrInvalidConfig, baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	fj := &FileJar{jar: jar, base: base, path: shared.ExpandHome(path)}
	if err := fj.load(); err != nil {
		return nil, err
	}
	return fj, nil
}

func (f *FileJar) load() error {
	if f.path == "" {
		return nil
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to read cookie file: %w", err)
	}

	var saved []savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("failed to parse cookie file %s: %w", f.path, err)
	}

	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	f.jar.SetCookies(f.base, cookies)
	return nil
}

// SetCookies implements [http.CookieJar].
func (f *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jar.SetCookies(u, cookies)
}

// Cookies implements [http.CookieJar].
func (f *FileJar) Cookies(u *url.URL) []*http.Cookie {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jar.Cookies(u)
}

// Import stores cookies copied from a browser session for the jar's server.
func (f *FileJar) Import(cookies []*http.Cookie) {
	for _, c := range cookies {
		if c.Path == "" {
			c.Path = "/"
		}
	}
	f.SetCookies(f.base, cookies)
}

// Save writes the server's current cookies to the jar file.
func (f *FileJar) Save() error {
	if f.path == "" {
		return nil
	}

	cookies := f.Cookies(f.base)
	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	return nil
}

// Clear drops every cookie and removes the jar file.
func (f *FileJar) Clear() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}

	f.mu.Lock()
	f.jar = jar
	f.mu.Unlock()

	if f.path == "" {
		return nil
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cookie file: %w", err)
	}
	return nil
}

// Len reports how many cookies the jar holds for its server.
func (f *FileJar) Len() int {
	return len(f.Cookies(f.base))
}
