package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"promptforge/internal/utils"

	"github.com/rs/zerolog"
)

// validators maps each settings key to its validator. A validator returns the
// normalized value to store.
var validators = map[string]func(string) (string, error){
	"backend_url":      validateBackendURL,
	"generate_timeout": validateTimeout,
	"request_timeout":  validateTimeout,
	"log_file":         validateLogFile,
	"log_level":        validateLogLevel,
}

// IsKnownSetting reports whether key is a settings key
func IsKnownSetting(key string) bool {
	_, ok := validators[key]
	return ok
}

// ValidateSetting checks value for key and returns its normalized form.
func ValidateSetting(key, value string) (string, error) {
	fn, ok := validators[key]
	if !ok {
		return "", fmt.Errorf("unknown setting %q", key)
	}
	normalized, err := fn(strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return normalized, nil
}

func validateBackendURL(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if !utils.ValidateURL(value) {
		return "", fmt.Errorf("invalid URL format: %s", value)
	}
	return strings.TrimRight(value, "/"), nil
}

func validateTimeout(value string) (string, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return "", fmt.Errorf("invalid duration %q (use e.g. 30s, 5m)", value)
	}
	if d <= 0 {
		return "", fmt.Errorf("duration must be positive")
	}
	return d.String(), nil
}

func validateLogFile(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("log file cannot be empty")
	}
	if strings.ContainsRune(value, 0) {
		return "", fmt.Errorf("log file contains invalid characters")
	}
	return filepath.Clean(value), nil
}

func validateLogLevel(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("log level cannot be empty")
	}
	level, err := zerolog.ParseLevel(strings.ToLower(value))
	if err != nil || level == zerolog.NoLevel {
		return "", fmt.Errorf("unknown log level %q", value)
	}
	return level.String(), nil
}
