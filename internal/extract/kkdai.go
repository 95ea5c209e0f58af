package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/model"
	"github.com/ytget/yt-server/internal/platform"
)

// KKDai is the backend built on github.com/kkdai/youtube/v2. It reports
// width, height and mime type for every format, which makes it the default
// inspector.
type KKDai struct {
	client youtube.Client
}

// NewKKDai creates a kkdai backend. A nil client uses http.DefaultClient.
func NewKKDai(httpClient *http.Client) *KKDai {
	return &KKDai{client: youtube.Client{HTTPClient: httpClient}}
}

// Name returns the backend name
func (k *KKDai) Name() string {
	return config.BackendKKDai
}

// Inspect resolves metadata and formats without downloading
func (k *KKDai) Inspect(ctx context.Context, url string) (*model.VideoInfo, error) {
	video, err := k.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}
	return kkdaiVideoInfo(video), nil
}

// Fetch streams the selected format into req.Dir
func (k *KKDai) Fetch(ctx context.Context, url string, req Request) (*Result, error) {
	video, err := k.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	format := kkdaiSelectFormat(video.Formats, req.Quality)
	if format == nil {
		return nil, ErrNoFormats
	}

	stream, size, err := k.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("failed to get video stream: %w", err)
	}
	defer stream.Close()

	path := filepath.Join(req.Dir, platform.SafeFileName(video.Title, platform.ExtFromMime(format.MimeType)))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	written, err := io.Copy(file, &progressReader{reader: stream, total: size, report: req.report})
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write video: %w", err)
	}

	return &Result{Path: path, Title: video.Title, Size: written}, nil
}

// kkdaiSelectFormat picks the stream for a preset. Audio takes the highest
// bitrate audio-only stream; video presets take the tallest progressive
// stream under the preset's height cap.
func kkdaiSelectFormat(formats youtube.FormatList, q config.QualityPreset) *youtube.Format {
	var best *youtube.Format
	if q.IsAudio() {
		for i := range formats {
			f := &formats[i]
			if f.AudioChannels == 0 || f.Width != 0 {
				continue
			}
			if best == nil || f.Bitrate > best.Bitrate {
				best = f
			}
		}
		if best != nil {
			return best
		}
	}

	maxHeight := q.MaxHeight()
	progressive := formats.WithAudioChannels()
	for i := range progressive {
		f := &progressive[i]
		if f.Width == 0 {
			continue
		}
		if maxHeight > 0 && f.Height > maxHeight {
			continue
		}
		if best == nil || f.Height > best.Height ||
			(f.Height == best.Height && f.Bitrate > best.Bitrate) {
			best = f
		}
	}
	if best == nil && len(progressive) > 0 {
		best = &progressive[0]
	}
	return best
}

func kkdaiVideoInfo(video *youtube.Video) *model.VideoInfo {
	out := &model.VideoInfo{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration.Seconds(),
		Formats:     make([]model.MediaFormat, 0, len(video.Formats)),
	}
	if n := len(video.Thumbnails); n > 0 {
		out.Thumbnail = video.Thumbnails[n-1].URL
	}
	for _, f := range video.Formats {
		out.Formats = append(out.Formats, kkdaiFormat(f))
		if f.ContentLength > out.FilesizeApprox {
			out.FilesizeApprox = f.ContentLength
		}
	}
	return out
}

func kkdaiFormat(f youtube.Format) model.MediaFormat {
	note := f.QualityLabel
	if note == "" {
		note = f.Quality
	}
	return model.MediaFormat{
		ID:       strconv.Itoa(f.ItagNo),
		Note:     note,
		Width:    f.Width,
		Height:   f.Height,
		URL:      f.URL,
		MimeType: strings.TrimSpace(f.MimeType),
		Bitrate:  f.Bitrate,
		Size:     f.ContentLength,
	}
}

// progressReader reports bytes read from a stream of known total size
type progressReader struct {
	reader io.Reader
	total  int64
	read   int64
	report func(Progress)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		p.read += int64(n)
		percent := 0.0
		if p.total > 0 {
			percent = float64(p.read) / float64(p.total) * 100
		}
		p.report(Progress{Downloaded: p.read, Total: p.total, Percent: percent})
	}
	return n, err
}
