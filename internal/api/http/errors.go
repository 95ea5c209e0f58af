package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/download"
)

// Error bodies of the download-only variant
const (
	msgMinimalMissingURL = "Please provide a YouTube video URL."
	msgMinimalFailed     = "Failed to download the video."
)

// Error details of the full variant
const (
	msgMissingVideoURL   = "YouTube video URL is required"
	msgMissingInfoURL    = "YouTube URL is required"
	msgMissingPlaylist   = "Playlist URL is required"
	msgNoFormats         = "No formats found for this video"
	msgDownloadFailed    = "Failed to download the video"
	msgInvalidQuality    = "Invalid quality preset"
	msgPlaylistsDisabled = "Playlist lookups are not available"
)

// LegacyErrorResponse is the error body of the download-only variant
type LegacyErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DetailErrorResponse is the error body of the full variant and the tasks API
type DetailErrorResponse struct {
	Detail string `json:"detail"`
}

// abortError writes an error in the body shape of the configured variant.
// The minimal variant keeps message and cause apart; the full variant joins
// them into one detail string.
func (s *Server) abortError(c *gin.Context, status int, message string, cause error) {
	if s.variant == config.VariantMinimal {
		body := LegacyErrorResponse{Error: message}
		if cause != nil {
			body.Message = cause.Error()
		}
		c.AbortWithStatusJSON(status, body)
		return
	}

	detail := message
	if cause != nil {
		if detail == "" {
			detail = cause.Error()
		} else {
			detail += ": " + cause.Error()
		}
	}
	c.AbortWithStatusJSON(status, DetailErrorResponse{Detail: detail})
}

// abortDetail writes a {"detail"} error regardless of variant
func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, DetailErrorResponse{Detail: detail})
}

// taskErrorStatus maps download service errors to HTTP statuses
func taskErrorStatus(err error) int {
	switch {
	case errors.Is(err, download.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, download.ErrTaskExists),
		errors.Is(err, download.ErrTaskNotActive),
		errors.Is(err, download.ErrTaskActive):
		return http.StatusConflict
	case errors.Is(err, download.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
