package backend

import "strings"

// Status is the structured outcome of a backend message.
type Status int

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusFailure
)

// String returns the string representation of a status
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

var (
	failureMarkers = []string{"fail", "error", "invalid", "missing", "required", "timed out"}
	successMarkers = []string{"success", "saved"}
)

// Classify maps a free-text backend message to a Status. The backend reports
// outcomes only through prose, so this is the one place that inspects it.
// Failure markers win over success markers.
func Classify(message string) Status {
	lower := strings.ToLower(message)
	for _, marker := range failureMarkers {
		if strings.Contains(lower, marker) {
			return StatusFailure
		}
	}
	for _, marker := range successMarkers {
		if strings.Contains(lower, marker) {
			return StatusSuccess
		}
	}
	return StatusUnknown
}
