package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantURL     string
		wantCookies map[string]string
		wantErr     bool
	}{
		{
			name:        "cookie in -b flag with single quotes",
			curlCmd:     `curl 'http://127.0.0.1:5000/user_info' -b 'session=abc123'`,
			wantURL:     "http://127.0.0.1:5000/user_info",
			wantCookies: map[string]string{"session": "abc123"},
		},
		{
			name:        "cookie in --cookie flag with double quotes",
			curlCmd:     `curl "http://127.0.0.1:5000/" --cookie "session=abc123"`,
			wantURL:     "http://127.0.0.1:5000/",
			wantCookies: map[string]string{"session": "abc123"},
		},
		{
			name:        "cookie header with several cookies",
			curlCmd:     `curl http://localhost:5000/get_favorites -H 'Accept: */*' -H 'Cookie: session=abc; remember_token=xyz'`,
			wantURL:     "http://localhost:5000/get_favorites",
			wantCookies: map[string]string{"session": "abc", "remember_token": "xyz"},
		},
		{
			name:        "-b cookie takes precedence over header",
			curlCmd:     `curl 'http://localhost:5000/' -H 'Cookie: session=old' -b 'session=new'`,
			wantURL:     "http://localhost:5000/",
			wantCookies: map[string]string{"session": "new"},
		},
		{
			name: "multiline command from devtools",
			curlCmd: `curl 'http://localhost:5000/recommend' \
  -H 'content-type: application/json' \
  -H 'cookie: session=multi' \
  --data-raw '{"emotion":"happy"}'`,
			wantURL:     "http://localhost:5000/recommend",
			wantCookies: map[string]string{"session": "multi"},
		},
		{
			name:    "no cookies",
			curlCmd: `curl -H 'Accept: */*' http://localhost:5000/`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand(tc.curlCmd)

			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}

			if result.URL != tc.wantURL {
				t.Errorf("ParseCurlCommand() url = %q, want %q", result.URL, tc.wantURL)
			}

			got := map[string]string{}
			for _, c := range result.Cookies {
				got[c.Name] = c.Value
			}
			if len(got) != len(tc.wantCookies) {
				t.Errorf("ParseCurlCommand() cookies = %v, want %v", got, tc.wantCookies)
			}
			for name, want := range tc.wantCookies {
				if got[name] != want {
					t.Errorf("cookie %s = %q, want %q", name, got[name], want)
				}
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		curlFile := filepath.Join(t.TempDir(), "curl.sh")
		curlCmd := `curl 'http://localhost:5000/user_info' -b 'session=file123'`
		if err := os.WriteFile(curlFile, []byte(curlCmd), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}
		if len(result.Cookies) != 1 || result.Cookies[0].Value != "file123" {
			t.Errorf("ParseCurlFile() cookies = %v", result.Cookies)
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		if _, err := ParseCurlFile("/nonexistent/file.sh"); err == nil {
			t.Error("ParseCurlFile() expected error for nonexistent file")
		}
	})
}
