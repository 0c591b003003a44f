package config

import (
	"path/filepath"
	"time"

	"promptforge/internal/backend"
	"promptforge/internal/configsync"
)

// Settings keys, as stored in settings.json
const (
	KeyBackendURL      = "backend_url"
	KeyGenerateTimeout = "generate_timeout"
	KeyRequestTimeout  = "request_timeout"
	KeyLogFile         = "log_file"
	KeyLogLevel        = "log_level"
)

// EnvPrefix prefixes environment overrides, e.g. PROMPTFORGE_BACKEND_URL
const EnvPrefix = "PROMPTFORGE"

// Keys lists every settings key in display order
var Keys = []string{KeyBackendURL, KeyGenerateTimeout, KeyRequestTimeout, KeyLogFile, KeyLogLevel}

// Settings are the client's local preferences. Saved prompts and model
// configurations live in the backend, not here.
type Settings struct {
	BackendURL      string        `mapstructure:"backend_url"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	LogFile         string        `mapstructure:"log_file"`
	LogLevel        string        `mapstructure:"log_level"`
}

// defaults returns the default value of every key for a config directory
func defaults(dir string) map[string]any {
	return map[string]any{
		KeyBackendURL:      backend.DefaultBaseURL,
		KeyGenerateTimeout: configsync.DefaultGenerateTimeout,
		KeyRequestTimeout:  configsync.DefaultRequestTimeout,
		KeyLogFile:         filepath.Join(dir, "promptforge.log"),
		KeyLogLevel:        "info",
	}
}

// Value returns the display form of a key's value
func (s *Settings) Value(key string) string {
	switch key {
	case KeyBackendURL:
		return s.BackendURL
	case KeyGenerateTimeout:
		return s.GenerateTimeout.String()
	case KeyRequestTimeout:
		return s.RequestTimeout.String()
	case KeyLogFile:
		return s.LogFile
	case KeyLogLevel:
		return s.LogLevel
	}
	return ""
}
