package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/ytdlp/types"

	"github.com/ytget/yt-server/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// Default values
const (
	DefaultPlaylistName  = "Unknown Playlist"
	DefaultPlaylistLimit = 500
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title constants
const (
	MinPrefixLength = 10
	PlaylistSuffix  = " Playlist"
)

// PlaylistSource lists playlist entries; *ytdlp.Downloader satisfies it
type PlaylistSource interface {
	GetPlaylistItemsAll(ctx context.Context, playlistID string, limit int) ([]types.PlaylistItem, error)
}

// PlaylistParser resolves playlist URLs into their videos
type PlaylistParser struct {
	source  PlaylistSource
	timeout time.Duration
	limit   int
}

// NewPlaylistParser creates a new parser over the given source
func NewPlaylistParser(source PlaylistSource) *PlaylistParser {
	return &PlaylistParser{
		source:  source,
		timeout: DefaultParseTimeout,
		limit:   DefaultPlaylistLimit,
	}
}

// SetTimeout sets the timeout for parsing operations
func (p *PlaylistParser) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// SetLimit caps the number of fetched entries, 0 meaning no cap
func (p *PlaylistParser) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	p.limit = limit
}

// ParsePlaylist parses a YouTube playlist and returns video information
func (p *PlaylistParser) ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	playlistID, err := ExtractPlaylistID(rawURL)
	if err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	items, err := p.source.GetPlaylistItemsAll(ctx, playlistID, p.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	playlist := model.NewPlaylist(playlistID, rawURL)
	for i, it := range items {
		if it.VideoID == "" {
			continue
		}
		index := it.Index
		if index == 0 {
			index = i + 1
		}
		playlist.AddVideo(&model.PlaylistVideo{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
			Index: index,
		})
	}
	playlist.Title = playlistTitle(playlist.Videos)

	return playlist, nil
}

// ExtractPlaylistID extracts the playlist ID from the list parameter of a URL
func ExtractPlaylistID(rawURL string) (string, error) {
	if u, err := url.Parse(rawURL); err == nil {
		if id := u.Query().Get("list"); id != "" {
			return id, nil
		}
	}
	// tolerate unescaped input that url.Parse rejects
	if strings.Contains(rawURL, PlaylistParam) {
		parts := strings.SplitN(rawURL, PlaylistParam, 2)
		id := strings.SplitN(parts[1], ParamSeparator, 2)[0]
		if id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("invalid playlist URL: %s", rawURL)
}

// playlistTitle generates a title for the playlist based on its videos
func playlistTitle(videos []*model.PlaylistVideo) string {
	if len(videos) == 0 {
		return DefaultPlaylistName
	}
	if len(videos) > 1 {
		commonPrefix := findCommonPrefix(videos[0].Title, videos[1].Title)
		if len(commonPrefix) > MinPrefixLength {
			return strings.TrimSpace(commonPrefix) + PlaylistSuffix
		}
	}
	return videos[0].Title + PlaylistSuffix
}

// findCommonPrefix finds the common prefix between two strings
func findCommonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}
