package utils

import (
	"net/url"
	"strings"
)

// ValidateURL validates that a URL has a valid scheme and host
func ValidateURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false
	}

	// 确保协议是http或https
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	return parsed.Host != ""
}

// JoinURL appends an endpoint path to a base URL without doubling slashes
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ExtractHost extracts the host from a URL
func ExtractHost(rawURL string) string {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
