package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Session       SessionConfig       `toml:"session"`
	Media         MediaConfig         `toml:"media"`
	Database      DatabaseConfig      `toml:"database"`
	Log           LogConfig           `toml:"log"`
	Dashboard     DashboardConfig     `toml:"dashboard"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// ServerConfig points the client at the recommendation server.
type ServerConfig struct {
	BaseURL           string  `toml:"base_url"`
	Timeout           int     `toml:"timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// SessionConfig controls where the session cookie is kept between CLI invocations.
type SessionConfig struct {
	CookieFile string `toml:"cookie_file"`
}

// MediaConfig contains camera and player settings.
type MediaConfig struct {
	FramePath   string `toml:"frame_path"`
	Player      string `toml:"player"`
	JPEGQuality int    `toml:"jpeg_quality"`
}

// DatabaseConfig contains local cache settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DashboardConfig contains the list sizes requested when the dashboard loads.
type DashboardConfig struct {
	HistoryLimit    int `toml:"history_limit"`
	MostPlayedLimit int `toml:"most_played_limit"`
}

// NotificationsConfig controls notification expiry.
type NotificationsConfig struct {
	TTL int `toml:"ttl"`
}

// TimeoutDuration returns the client timeout; zero means no timeout.
func (s ServerConfig) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// TTLDuration returns how long a notification stays visible.
func (n NotificationsConfig) TTLDuration() time.Duration {
	return time.Duration(n.TTL) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their embedded defaults. Environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads an optional .env file and applies MOODTUNE_* overrides to config.
func ApplyEnv(config *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: failed to load .env: %v", ErrInvalidConfig, err)
	}

	if v := os.Getenv("MOODTUNE_BASE_URL"); v != "" {
		config.Server.BaseURL = v
	}
	if v := os.Getenv("MOODTUNE_COOKIE_FILE"); v != "" {
		config.Session.CookieFile = v
	}
	if v := os.Getenv("MOODTUNE_FRAME_PATH"); v != "" {
		config.Media.FramePath = v
	}
	if v := os.Getenv("MOODTUNE_PLAYER"); v != "" {
		config.Media.Player = v
	}
	if v := os.Getenv("MOODTUNE_DB_PATH"); v != "" {
		config.Database.Path = v
	}
	if v := os.Getenv("MOODTUNE_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("MOODTUNE_TIMEOUT"); v != "" {
		timeout, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MOODTUNE_TIMEOUT=%q", ErrInvalidConfig, v)
		}
		config.Server.Timeout = timeout
	}

	return nil
}
