// Utilities for importing a browser session from a "Copy as cURL" command.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRegex = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
	curlURLRegex    = regexp.MustCompile(`curl\s+'([^']+)'|curl\s+"([^"]+)"|curl\s+(https?://\S+)`)
)

// CurlSession is the cookie state and target URL recovered from a cURL command.
type CurlSession struct {
	URL     string
	Cookies []*http.Cookie
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts its session.
func ParseCurlFile(path string) (*CurlSession, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand extracts the request URL and cookies from a cURL command.
//
// A -b/--cookie flag takes precedence over a Cookie header.
func ParseCurlCommand(curlCmd string) (*CurlSession, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	session := &CurlSession{URL: firstGroup(curlURLRegex.FindStringSubmatch(curlCmd))}

	raw := firstGroup(curlCookieRegex.FindStringSubmatch(curlCmd))
	if raw == "" {
		for _, match := range curlHeaderRegex.FindAllStringSubmatch(curlCmd, -1) {
			key, value, ok := strings.Cut(firstGroup(match), ":")
			if ok && strings.EqualFold(strings.TrimSpace(key), "cookie") {
				raw = strings.TrimSpace(value)
				break
			}
		}
	}

	if raw == "" {
		return nil, fmt.Errorf("%w: no cookies found in curl command", ErrInvalidInput)
	}

	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cookie header: %v", ErrInvalidInput, err)
	}
	session.Cookies = cookies

	return session, nil
}

// firstGroup returns the first non-empty capture group of a regexp match.
func firstGroup(match []string) string {
	for _, group := range match[min(1, len(match)):] {
		if group != "" {
			return group
		}
	}
	return ""
}
