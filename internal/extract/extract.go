package extract

import (
	"context"
	"errors"

	"github.com/kkdai/youtube/v2"
	"github.com/ytget/ytdlp/errs"

	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/model"
)

// ErrNoFormats is returned when a backend reports a video without usable formats
var ErrNoFormats = errors.New("no formats found")

// ErrNoFile is returned when a backend finished without leaving a media file
var ErrNoFile = errors.New("downloaded file not found")

// Error classes reported by Classify
const (
	ClassNone          = ""
	ClassPrivate       = "private"
	ClassAgeRestricted = "age_restricted"
	ClassGeoBlocked    = "geo_blocked"
	ClassRateLimited   = "rate_limited"
	ClassUnavailable   = "unavailable"
	ClassCipher        = "cipher"
	ClassInvalidURL    = "invalid_url"
	ClassNoFormats     = "no_formats"
	ClassCanceled      = "canceled"
	ClassTimeout       = "timeout"
	ClassUnknown       = "unknown"
)

// Inspector retrieves metadata without downloading media
type Inspector interface {
	Inspect(ctx context.Context, url string) (*model.VideoInfo, error)
}

// Fetcher downloads a single video into Request.Dir
type Fetcher interface {
	Fetch(ctx context.Context, url string, req Request) (*Result, error)
}

// Progress is a backend-neutral progress update
type Progress struct {
	Downloaded int64
	Total      int64
	Percent    float64
}

// Request describes one fetch
type Request struct {
	// Dir must exist; the backend writes exactly one media file into it
	Dir      string
	Quality  config.QualityPreset
	Progress func(Progress)
}

// report forwards p to the request callback if one is set
func (r Request) report(p Progress) {
	if r.Progress != nil {
		r.Progress(p)
	}
}

// Result is the outcome of a successful fetch
type Result struct {
	Path  string
	Title string
	Size  int64
}

// Classify maps library errors to a short class used in logs and metric labels
func Classify(err error) string {
	if err == nil {
		return ClassNone
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	switch {
	case errors.Is(err, context.Canceled):
		return ClassCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case errors.Is(err, ErrNoFormats):
		return ClassNoFormats
	case errors.Is(err, errs.ErrPrivate), errors.Is(err, youtube.ErrVideoPrivate):
		return ClassPrivate
	case errors.Is(err, errs.ErrAgeRestricted), errors.Is(err, youtube.ErrLoginRequired):
		return ClassAgeRestricted
	case errors.Is(err, errs.ErrGeoBlocked):
		return ClassGeoBlocked
	case errors.Is(err, errs.ErrRateLimited):
		return ClassRateLimited
	case errors.Is(err, errs.ErrCipherFailed), errors.Is(err, youtube.ErrCipherNotFound):
		return ClassCipher
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return ClassInvalidURL
	case errors.Is(err, errs.ErrVideoUnavailable),
		errors.Is(err, youtube.ErrNotPlayableInEmbed),
		errors.As(err, &statusErr):
		return ClassUnavailable
	}
	return ClassUnknown
}
