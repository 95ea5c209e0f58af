package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	goytdlp "github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/platform"
)

// progressInterval is how often yt-dlp progress is sampled
const progressInterval = 500 * time.Millisecond

// YTDLP runs the yt-dlp binary through github.com/lrstanley/go-ytdlp.
// It only downloads; metadata comes from the other backends.
type YTDLP struct {
	binary string
	proxy  string
}

// NewYTDLP creates a yt-dlp backend. An empty binary resolves yt-dlp from PATH.
func NewYTDLP(binary, proxy string) *YTDLP {
	return &YTDLP{binary: binary, proxy: proxy}
}

// Name returns the backend name
func (y *YTDLP) Name() string {
	return config.BackendYTDLP
}

// Fetch downloads the video into req.Dir
func (y *YTDLP) Fetch(ctx context.Context, url string, req Request) (*Result, error) {
	dl := goytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		NoPlaylist().
		Format(ytdlpSelector(req.Quality)).
		Output(filepath.Join(req.Dir, "%(title)s.%(ext)s"))
	if y.binary != "" {
		dl = dl.SetExecutable(y.binary)
	}
	if y.proxy != "" {
		dl = dl.Proxy(y.proxy)
	}

	// the callback runs on the reader goroutine of the yt-dlp process
	var title firstTitle
	dl.ProgressFunc(progressInterval, func(update goytdlp.ProgressUpdate) {
		if update.Info != nil && update.Info.Title != nil {
			title.set(*update.Info.Title)
		}
		percent := 0.0
		if update.TotalBytes > 0 {
			percent = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
		}
		req.report(Progress{
			Downloaded: int64(update.DownloadedBytes),
			Total:      int64(update.TotalBytes),
			Percent:    percent,
		})
	})

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}

	var path string
	if result != nil {
		info, err := result.GetExtractedInfo()
		if err == nil && len(info) > 0 {
			if info[0].Filename != nil {
				path = *info[0].Filename
			}
			if info[0].Title != nil {
				title.set(*info[0].Title)
			}
		}
	}
	if path == "" || platform.FileSize(path) == 0 {
		found, err := platform.FindDownloadedFile(req.Dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoFile, err)
		}
		path = found
	}
	if path == "" {
		return nil, ErrNoFile
	}

	return &Result{Path: path, Title: title.get(), Size: platform.FileSize(path)}, nil
}

// firstTitle keeps the first non-empty title reported for a download
type firstTitle struct {
	mu    sync.Mutex
	value string
}

func (f *firstTitle) set(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.value == "" {
		f.value = title
	}
}

func (f *firstTitle) get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// ytdlpSelector maps a preset to a yt-dlp format expression
func ytdlpSelector(q config.QualityPreset) string {
	switch q {
	case config.QualityMedium:
		return fmt.Sprintf("best[height<=%d]/best", config.MediumMaxHeight)
	case config.QualityAudio:
		return "bestaudio/best"
	default:
		return "bestvideo+bestaudio/best"
	}
}
