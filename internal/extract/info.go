package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ytget/yt-server/internal/model"
)

// Defaults used when a backend leaves a details field empty
const (
	DefaultTitle       = "Unknown Title"
	DefaultDescription = "No description available"
)

const bytesPerMB = 1024 * 1024

// BuildInfo turns normalized metadata into the info endpoint body. Only formats
// with a note and a resolution are listed. Returns ErrNoFormats when the
// backend reported none at all.
func BuildInfo(info *model.VideoInfo) (*model.VideoInfoResponse, error) {
	if info == nil || len(info.Formats) == 0 {
		return nil, ErrNoFormats
	}

	resp := &model.VideoInfoResponse{
		Formats:     make([]model.VideoFormat, 0, len(info.Formats)),
		Resolutions: make([]string, 0),
	}

	seen := make(map[string]model.MediaFormat)
	for _, f := range info.Formats {
		resolution := f.Resolution()
		if f.Note == "" || resolution == "" {
			continue
		}

		var mime *string
		if f.MimeType != "" {
			m := f.MimeType
			mime = &m
		}
		resp.Formats = append(resp.Formats, model.VideoFormat{
			Format:     f.Note,
			Resolution: resolution,
			URL:        f.URL,
			MimeType:   mime,
		})

		if _, ok := seen[resolution]; !ok {
			seen[resolution] = f
			resp.Resolutions = append(resp.Resolutions, resolution)
		}
	}

	sort.SliceStable(resp.Resolutions, func(i, j int) bool {
		a, b := seen[resp.Resolutions[i]], seen[resp.Resolutions[j]]
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		return a.Width > b.Width
	})

	resp.Details = model.VideoDetails{
		Title:       orDefault(info.Title, DefaultTitle),
		Description: orDefault(info.Description, DefaultDescription),
		Duration:    info.Duration,
		Size:        float64(info.FilesizeApprox) / bytesPerMB,
		Thumbnail:   info.Thumbnail,
	}
	return resp, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

var heightLabel = regexp.MustCompile(`(\d{3,4})p`)

// heightFromLabel extracts 720 from labels such as "720p", "hd720" or "720p60"
func heightFromLabel(label string) int {
	label = strings.ToLower(label)
	if m := heightLabel.FindStringSubmatch(label); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h
	}
	if strings.HasPrefix(label, "hd") {
		if h, err := strconv.Atoi(strings.TrimPrefix(label, "hd")); err == nil {
			return h
		}
	}
	switch label {
	case "tiny":
		return 144
	case "small":
		return 240
	case "medium":
		return 360
	case "large":
		return 480
	}
	return 0
}
