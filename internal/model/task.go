package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DownloadTask represents a single asynchronous download submitted through the tasks API
type DownloadTask struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Quality    string     `json:"quality"`
	Compress   bool       `json:"compress"`
	Status     TaskStatus `json:"status"`
	Progress   float64    `json:"progress"`             // 0.0 to 1.0
	Percent    int        `json:"percent"`              // 0 to 100
	Speed      string     `json:"speed,omitempty"`      // human readable speed (e.g., "1.2MB/s")
	ETASec     int        `json:"eta_sec"`              // ETA in seconds, -1 if unknown
	ETA        string     `json:"eta,omitempty"`        // ETASec as hh:mm:ss
	LastError  string     `json:"last_error,omitempty"` // last error message if any
	OutputPath string     `json:"-"`                    // never exposed, served through /file
	FileName   string     `json:"file_name,omitempty"`  // attachment name
	Title      string     `json:"title,omitempty"`
	FileSize   int64      `json:"file_size,omitempty"` // bytes
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Snapshot returns a copy safe to hand out while the service keeps mutating the task
func (dt *DownloadTask) Snapshot() DownloadTask {
	return *dt
}

// MarkStarted records the start time
func (dt *DownloadTask) MarkStarted(t time.Time) {
	dt.StartedAt = &t
}

// MarkFinished records the finish time
func (dt *DownloadTask) MarkFinished(t time.Time) {
	dt.FinishedAt = &t
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (dt *DownloadTask) GetETAString() string {
	if dt.ETASec <= 0 {
		return "—"
	}

	hours := dt.ETASec / 3600
	minutes := (dt.ETASec % 3600) / 60
	seconds := dt.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns title, file name, or URL in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.Title != "" && !strings.HasPrefix(dt.Title, "http") {
		return dt.Title
	}

	if dt.OutputPath != "" {
		name := filepath.Base(dt.OutputPath)
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
		return name
	}

	return dt.URL
}
