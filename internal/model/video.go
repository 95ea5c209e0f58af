package model

import "fmt"

// MediaFormat is one downloadable stream as reported by an extraction backend.
// Width and Height are zero when the backend does not know them.
type MediaFormat struct {
	ID       string
	Note     string // format note or quality label, e.g. "720p"
	Width    int
	Height   int
	URL      string
	MimeType string
	Bitrate  int
	Size     int64
}

// HasDimensions reports whether both width and height are known
func (f MediaFormat) HasDimensions() bool {
	return f.Width > 0 && f.Height > 0
}

// Resolution returns "WxH", "<height>p" when only the height is known, or ""
// for streams without a picture.
func (f MediaFormat) Resolution() string {
	if f.HasDimensions() {
		return fmt.Sprintf("%dx%d", f.Width, f.Height)
	}
	if f.Height > 0 {
		return fmt.Sprintf("%dp", f.Height)
	}
	return ""
}

// VideoInfo is the backend-neutral result of an extraction without download
type VideoInfo struct {
	ID             string
	Title          string
	Description    string
	Thumbnail      string
	Duration       float64 // seconds
	FilesizeApprox int64   // bytes, 0 if unknown
	Formats        []MediaFormat
}

// VideoFormat is a single entry of the formats list in the info response
type VideoFormat struct {
	Format     string  `json:"format"`
	Resolution string  `json:"resolution"`
	URL        string  `json:"url"`
	MimeType   *string `json:"mime_type"`
}

// VideoDetails holds the basic metadata block of the info response
type VideoDetails struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Size        float64 `json:"size"` // megabytes
	Thumbnail   string  `json:"thumbnail"`
}

// VideoInfoResponse is the body of GET /get_video_info
type VideoInfoResponse struct {
	Formats     []VideoFormat `json:"formats"`
	Resolutions []string      `json:"resolutions"`
	Details     VideoDetails  `json:"details"`
}
