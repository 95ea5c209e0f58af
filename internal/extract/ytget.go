package extract

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ytget/ytdlp/types"
	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/model"
	"github.com/ytget/yt-server/internal/platform"
)

// YTGet is the backend built on github.com/ytget/ytdlp/v2
type YTGet struct {
	client       *http.Client
	rateLimitBps int64
}

// NewYTGet creates a ytget backend. A nil client uses the library default.
func NewYTGet(client *http.Client, rateLimitBps int64) *YTGet {
	return &YTGet{client: client, rateLimitBps: rateLimitBps}
}

// Name returns the backend name
func (y *YTGet) Name() string {
	return config.BackendYTGet
}

func (y *YTGet) downloader() *ytdlp.Downloader {
	d := ytdlp.New()
	if y.client != nil {
		d = d.WithHTTPClient(y.client)
	}
	if y.rateLimitBps > 0 {
		d = d.WithRateLimit(y.rateLimitBps)
	}
	return d
}

// Inspect resolves metadata and formats without downloading
func (y *YTGet) Inspect(ctx context.Context, url string) (*model.VideoInfo, error) {
	_, info, err := y.downloader().ResolveURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video: %w", err)
	}
	return ytgetVideoInfo(info), nil
}

// Fetch downloads the video into req.Dir
func (y *YTGet) Fetch(ctx context.Context, url string, req Request) (*Result, error) {
	selector, ext := ytgetSelector(req.Quality)
	d := y.downloader().
		WithFormat(selector, ext).
		WithOutputPath(req.Dir)
	if req.Progress != nil {
		d = d.WithProgress(func(p ytdlp.Progress) {
			req.report(Progress{Downloaded: p.DownloadedSize, Total: p.TotalSize, Percent: p.Percent})
		})
	}

	info, err := d.Download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	path, err := platform.FindDownloadedFile(req.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFile, err)
	}
	if path == "" {
		return nil, ErrNoFile
	}

	return &Result{Path: path, Title: info.Title, Size: platform.FileSize(path)}, nil
}

// ytgetSelector maps a preset to the library's format selector and extension
func ytgetSelector(q config.QualityPreset) (string, string) {
	switch q {
	case config.QualityMedium:
		return "height<=" + strconv.Itoa(config.MediumMaxHeight), "mp4"
	case config.QualityAudio:
		return "itag=140", "m4a"
	default:
		return "best", "mp4"
	}
}

func ytgetVideoInfo(info *ytdlp.VideoInfo) *model.VideoInfo {
	out := &model.VideoInfo{
		ID:          info.ID,
		Title:       info.Title,
		Description: info.Description,
		Duration:    float64(info.Duration),
		Formats:     make([]model.MediaFormat, 0, len(info.Formats)),
	}
	for _, f := range info.Formats {
		out.Formats = append(out.Formats, ytgetFormat(f))
		if f.Size > out.FilesizeApprox {
			out.FilesizeApprox = f.Size
		}
	}
	if info.ID != "" {
		out.Thumbnail = "https://i.ytimg.com/vi/" + info.ID + "/hqdefault.jpg"
	}
	return out
}

func ytgetFormat(f types.Format) model.MediaFormat {
	height := 0
	if !strings.HasPrefix(f.MimeType, "audio/") {
		height = heightFromLabel(f.Quality)
	}
	return model.MediaFormat{
		ID:       strconv.Itoa(f.Itag),
		Note:     f.Quality,
		Height:   height,
		URL:      f.URL,
		MimeType: f.MimeType,
		Bitrate:  f.Bitrate,
		Size:     f.Size,
	}
}
