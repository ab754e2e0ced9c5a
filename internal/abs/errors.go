package abs

import (
	"errors"
	"fmt"
)

// ErrInvalidAPIKey indicates the Audiobookshelf API key was rejected
var ErrInvalidAPIKey = errors.New("invalid or expired Audiobookshelf API key")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("audiobookshelf API rate limit exceeded")

// ErrNotFound indicates the requested item does not exist upstream
var ErrNotFound = errors.New("audiobookshelf item not found")

// ServerError represents a 5xx error from the Audiobookshelf API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Audiobookshelf server error: HTTP %d", e.StatusCode)
}
