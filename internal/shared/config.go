package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// ServerURLEnv names the environment variable holding the segmentation service base URL.
const ServerURLEnv = "SERVER_URL"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Segmentation SegmentationConfig `toml:"segmentation"`
	Server       ServerConfig       `toml:"server"`
	Log          LogConfig          `toml:"log"`
}

// SegmentationConfig contains settings for the remote segmentation service.
type SegmentationConfig struct {
	ServerURL string   `toml:"server_url"`
	Timeout   Duration `toml:"timeout"`
	RateLimit float64  `toml:"rate_limit"`
}

// ServerConfig contains HTTP server settings for the web front end.
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MaxUploadMB int64  `toml:"max_upload_mb"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // TUI log destination
}

// Duration wraps [time.Duration] so it can be written as "60s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Addr returns the listen address for the web front end.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultMaxUploadBytes applies when max_upload_mb is unset.
const DefaultMaxUploadBytes int64 = 32 << 20

// MaxUploadBytes returns the upload limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return DefaultMaxUploadBytes
	}
	return s.MaxUploadMB << 20
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults of the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
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

// ApplyEnv loads envFile (when it exists) into the process environment and applies
// [ServerURLEnv] on top of the file configuration.
//
// Variables already set in the environment win over the file, matching godotenv.Load.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, envFile, err)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv(ServerURLEnv)); v != "" {
		c.Segmentation.ServerURL = v
	}
	return c.Validate()
}

// Validate checks the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	url := strings.TrimSpace(c.Segmentation.ServerURL)
	if url == "" {
		return fmt.Errorf("%w: segmentation.server_url is empty", ErrMissingConfig)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%w: segmentation.server_url must be an http(s) URL, got %q", ErrInvalidConfig, url)
	}
	if c.Segmentation.RateLimit < 0 {
		return fmt.Errorf("%w: segmentation.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
