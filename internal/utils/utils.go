package utils

import "strings"

// MaskAPIKey masks the API key for display and logging
func MaskAPIKey(key string) string {
	if key == "" {
		return "none"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// Truncate shortens s to at most max runes, marking the cut with "..."
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// FirstLine returns the first non-empty line of s
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
