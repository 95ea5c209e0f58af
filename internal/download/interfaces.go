package download

import (
	"context"
	"time"

	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/extract"
	"github.com/ytget/yt-server/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	Fetch(ctx context.Context, url string, quality config.QualityPreset, compress bool) (*extract.Result, error)
	Release(result *extract.Result)

	AddTask(url string, quality config.QualityPreset, compress bool) (model.DownloadTask, error)
	GetTask(id string) (model.DownloadTask, bool)
	GetAllTasks() []model.DownloadTask
	StopTask(id string) error
	RemoveTask(id string) error

	// Subscribe streams snapshots of a task until it finishes
	Subscribe(id string) (<-chan model.DownloadTask, func(), error)
}

// Compressor re-encodes a downloaded file
type Compressor interface {
	Compress(ctx context.Context, inputPath string, progress func(float64)) (string, error)
}

// Recorder receives download metrics
type Recorder interface {
	RecordDownload(backend, result string, duration time.Duration)
	SetActiveTasks(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordDownload(string, string, time.Duration) {}
func (nopRecorder) SetActiveTasks(int)                            {}
