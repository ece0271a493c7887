package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrBackendNotReady  = errors.New("backend not ready")
	ErrPlaybackRejected = errors.New("playback rejected")
	ErrOutOfRange       = errors.New("index out of range")
	ErrQueueEmpty       = errors.New("queue is empty")
	ErrEngineClosed     = errors.New("engine closed")
	ErrInvalidSong      = errors.New("invalid song")
	ErrNoSong           = errors.New("no song loaded")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// DriftError wraps an error with a user-friendly suggestion.
type DriftError struct {
	Err        error
	Suggestion string
}

func (e *DriftError) Error() string {
	return e.Err.Error()
}

func (e *DriftError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &DriftError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	// Check if it's already a DriftError with suggestion
	var driftErr *DriftError
	if errors.As(err, &driftErr) && driftErr.Suggestion != "" {
		return driftErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrPlaybackRejected) || strings.Contains(errStr, "playback rejected") {
		return "The audio device refused to start. Press play again once the terminal has focus"
	}

	if errors.Is(err, ErrBackendNotReady) || strings.Contains(errStr, "not ready") {
		return "The player is still loading. Wait a moment and try again"
	}

	if errors.Is(err, ErrQueueEmpty) || strings.Contains(errStr, "queue is empty") {
		return "Add songs with 'drift songs add' first"
	}

	if errors.Is(err, ErrInvalidSong) {
		return "A song needs both a name and a URL"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) ||
		strings.Contains(errStr, "config") {
		return "Run 'drift config show' to inspect the active configuration"
	}

	if strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
