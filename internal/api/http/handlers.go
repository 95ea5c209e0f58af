package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ytget/yt-server/internal/cache"
	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/extract"
	"github.com/ytget/yt-server/internal/metrics"
	"github.com/ytget/yt-server/internal/platform"
	"github.com/ytget/yt-server/internal/ui"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"variant":   s.variant,
		"timestamp": time.Now().UTC(),
	})
}

// handleIndex renders the browser page
func (s *Server) handleIndex(c *gin.Context) {
	lang := s.localization.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
	c.HTML(http.StatusOK, ui.IndexTemplate, ui.NewPage(s.localization, lang, s.defaultQuality))
}

// handleDownload fetches the video and streams it back as an attachment
func (s *Server) handleDownload(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		if s.variant == config.VariantMinimal {
			s.abortError(c, http.StatusBadRequest, msgMinimalMissingURL, nil)
		} else {
			s.abortError(c, http.StatusBadRequest, msgMissingVideoURL, nil)
		}
		return
	}

	quality, ok := config.ParseQualityPreset(c.Query("quality"), s.defaultQuality)
	if !ok {
		s.abortError(c, http.StatusBadRequest, msgInvalidQuality+": "+c.Query("quality"), nil)
		return
	}

	result, err := s.downloads.Fetch(c.Request.Context(), url, quality, parseFlag(c.Query("compress")))
	if err != nil {
		if s.variant == config.VariantMinimal {
			s.abortError(c, http.StatusInternalServerError, msgMinimalFailed, err)
		} else {
			s.abortError(c, http.StatusInternalServerError, msgDownloadFailed, err)
		}
		return
	}
	defer s.downloads.Release(result)

	c.FileAttachment(result.Path, platform.DownloadName(result.Title, result.Path))
}

// handleVideoInfo returns formats, resolutions and details without downloading
func (s *Server) handleVideoInfo(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		s.abortError(c, http.StatusBadRequest, msgMissingInfoURL, nil)
		return
	}

	ctx := c.Request.Context()
	_, cacheDisabled := s.cache.(cache.None)
	if resp, ok := s.cache.Get(ctx, url); ok {
		s.metrics.RecordCacheLookup(true)
		c.JSON(http.StatusOK, resp)
		return
	}
	if !cacheDisabled {
		s.metrics.RecordCacheLookup(false)
	}

	if s.infoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.infoTimeout)
		defer cancel()
	}

	info, err := s.inspector.Inspect(ctx, url)
	if err != nil {
		s.metrics.RecordInfoLookup(s.inspectorName, extract.Classify(err))
		s.logger.Error("failed to get video info",
			zap.String("url", url),
			zap.String("class", extract.Classify(err)),
			zap.Error(err))
		s.abortError(c, http.StatusInternalServerError, "", err)
		return
	}

	resp, err := extract.BuildInfo(info)
	if err != nil {
		s.metrics.RecordInfoLookup(s.inspectorName, extract.Classify(err))
		if errors.Is(err, extract.ErrNoFormats) {
			s.abortError(c, http.StatusNotFound, msgNoFormats, nil)
			return
		}
		s.abortError(c, http.StatusInternalServerError, "", err)
		return
	}

	s.metrics.RecordInfoLookup(s.inspectorName, metrics.ResultSuccess)
	s.cache.Set(ctx, url, resp)
	c.JSON(http.StatusOK, resp)
}

// handlePlaylistInfo lists the videos of a playlist
func (s *Server) handlePlaylistInfo(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		s.abortError(c, http.StatusBadRequest, msgMissingPlaylist, nil)
		return
	}
	if s.playlists == nil {
		s.abortError(c, http.StatusNotImplemented, msgPlaylistsDisabled, nil)
		return
	}

	playlist, err := s.playlists.ParsePlaylist(c.Request.Context(), url)
	if err != nil {
		s.logger.Error("failed to parse playlist", zap.String("url", url), zap.Error(err))
		s.abortError(c, http.StatusInternalServerError, "", err)
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// parseFlag accepts 1/true/yes/on as true
func parseFlag(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value == "yes" || value == "on"
}
