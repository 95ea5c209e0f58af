package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/extract"
	"github.com/ytget/yt-server/internal/metrics"
	"github.com/ytget/yt-server/internal/model"
	"github.com/ytget/yt-server/internal/platform"
)

const (
	// TaskIDPrefix prefixes every asynchronous task id
	TaskIDPrefix = "task-"

	maxRetries        = 1
	defaultRetryDelay = 2 * time.Second
	subscriberBuffer  = 16
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskExists             = errors.New("task already exists for URL")
	ErrTaskNotActive          = errors.New("task is not active")
	ErrTaskActive             = errors.New("task is still active")
	ErrClosed                 = errors.New("download service is closed")
	ErrCompressionUnavailable = errors.New("compression is not configured")
)

// Options configures a Service
type Options struct {
	// Dir is the root download folder; every fetch gets its own subfolder
	Dir            string
	MaxParallel    int
	DefaultQuality config.QualityPreset
	// KeepFiles leaves files on disk after they were served or their task removed
	KeepFiles bool
	// Timeout bounds a single fetch including retries, 0 means unbounded
	Timeout time.Duration
	// Backend names the fetcher in metrics
	Backend string
}

// Service handles download operations
type Service struct {
	fetcher    extract.Fetcher
	compressor Compressor
	metrics    Recorder
	logger     *zap.Logger
	opts       Options
	retryDelay time.Duration

	tasks       map[string]*model.DownloadTask
	order       []string
	cancels     map[string]context.CancelFunc
	subscribers map[string]map[chan model.DownloadTask]struct{}
	tasksMutex  sync.RWMutex
	activeCount int
	closed      bool
	wg          sync.WaitGroup
}

// NewService creates a new download service
func NewService(fetcher extract.Fetcher, opts Options, logger *zap.Logger) *Service {
	if opts.MaxParallel < config.MinParallel {
		opts.MaxParallel = config.MinParallel
	}
	if opts.DefaultQuality == "" {
		opts.DefaultQuality = config.DefaultQualityPreset
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		fetcher:     fetcher,
		metrics:     nopRecorder{},
		logger:      logger,
		opts:        opts,
		retryDelay:  defaultRetryDelay,
		tasks:       make(map[string]*model.DownloadTask),
		cancels:     make(map[string]context.CancelFunc),
		subscribers: make(map[string]map[chan model.DownloadTask]struct{}),
	}
}

// SetCompressor enables the compress option
func (s *Service) SetCompressor(c Compressor) {
	s.compressor = c
}

// SetMetrics sets the metrics recorder
func (s *Service) SetMetrics(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	s.metrics = r
}

// Fetch downloads url into a fresh per-request folder and returns the file.
// The folder is removed when the fetch fails.
func (s *Service) Fetch(ctx context.Context, url string, quality config.QualityPreset, compress bool) (*extract.Result, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	dir := filepath.Join(s.opts.Dir, uuid.NewString())
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	quality = s.resolveQuality(quality)
	s.logger.Info("Starting download",
		zap.String("url", url),
		zap.String("quality", string(quality)),
		zap.Bool("compress", compress))

	start := time.Now()
	result, err := s.fetch(ctx, url, dir, quality, compress, nil, nil)
	s.record(start, err)
	if err != nil {
		os.RemoveAll(dir)
		s.logger.Error("Download failed",
			zap.String("url", url),
			zap.String("class", extract.Classify(err)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Download completed",
		zap.String("url", url),
		zap.String("path", result.Path),
		zap.Int64("size", result.Size),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// Release removes the per-request folder of a served result unless files are kept
func (s *Service) Release(result *extract.Result) {
	if s.opts.KeepFiles || result == nil || result.Path == "" {
		return
	}
	s.removeFolder(filepath.Dir(result.Path))
}

// removeFolder deletes dir if it is a direct child of the download root
func (s *Service) removeFolder(dir string) {
	if filepath.Clean(filepath.Dir(dir)) != filepath.Clean(s.opts.Dir) {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("Failed to remove download folder", zap.String("dir", dir), zap.Error(err))
	}
}

// fetch runs the backend and the optional compression step
func (s *Service) fetch(ctx context.Context, url, dir string, quality config.QualityPreset, compress bool,
	onProgress func(extract.Progress), onCompress func(float64)) (*extract.Result, error) {
	result, err := s.fetcher.Fetch(ctx, url, extract.Request{Dir: dir, Quality: quality, Progress: onProgress})
	if err != nil {
		return nil, err
	}

	if compress {
		if s.compressor == nil {
			return nil, ErrCompressionUnavailable
		}
		output, err := s.compressor.Compress(ctx, result.Path, onCompress)
		if err != nil {
			return nil, fmt.Errorf("compression failed: %w", err)
		}
		result.Path = output
		result.Size = platform.FileSize(output)
	}

	return result, nil
}

// AddTask adds a new download task
func (s *Service) AddTask(url string, quality config.QualityPreset, compress bool) (model.DownloadTask, error) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	if s.closed {
		return model.DownloadTask{}, ErrClosed
	}

	// Check for duplicate URLs
	for _, task := range s.tasks {
		if task.URL == url && !task.Status.IsFinished() {
			return model.DownloadTask{}, fmt.Errorf("%w: %s", ErrTaskExists, url)
		}
	}

	task := &model.DownloadTask{
		ID:        generateTaskID(),
		URL:       url,
		Quality:   string(s.resolveQuality(quality)),
		Compress:  compress,
		Status:    model.TaskStatusPending,
		ETASec:    -1,
		CreatedAt: time.Now(),
	}

	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)

	// Try to start task if we have capacity
	if s.activeCount < s.opts.MaxParallel {
		s.startTaskLocked(task)
	}

	s.logger.Info("Task added",
		zap.String("task_id", task.ID),
		zap.String("url", url),
		zap.String("status", task.Status.String()))

	return task.Snapshot(), nil
}

// GetTask returns a task by ID
func (s *Service) GetTask(id string) (model.DownloadTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	if !exists {
		return model.DownloadTask{}, false
	}
	return task.Snapshot(), true
}

// GetAllTasks returns all tasks in submission order
func (s *Service) GetAllTasks() []model.DownloadTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]model.DownloadTask, 0, len(s.order))
	for _, id := range s.order {
		tasks = append(tasks, s.tasks[id].Snapshot())
	}
	return tasks
}

// StopTask stops a pending or running task
func (s *Service) StopTask(id string) error {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	switch {
	case task.Status == model.TaskStatusPending:
		task.Status = model.TaskStatusStopped
		task.MarkFinished(time.Now())
	case task.Status.IsActive():
		task.Status = model.TaskStatusStopping
		if cancel, ok := s.cancels[id]; ok {
			cancel()
		}
	default:
		return fmt.Errorf("%w: %s", ErrTaskNotActive, task.Status)
	}

	s.logger.Info("Task stop requested", zap.String("task_id", id))
	s.publishLocked(task)
	return nil
}

// RemoveTask forgets a finished or pending task
func (s *Service) RemoveTask(id string) error {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if task.Status.IsActive() {
		return fmt.Errorf("%w: %s", ErrTaskActive, task.Status)
	}

	delete(s.tasks, id)
	for i, taskID := range s.order {
		if taskID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.closeSubscribersLocked(id)

	if !s.opts.KeepFiles {
		s.removeFolder(filepath.Join(s.opts.Dir, id))
	}

	s.logger.Info("Task removed", zap.String("task_id", id))
	return nil
}

// Subscribe returns a channel receiving task snapshots, starting with the
// current one. The channel is closed once the task finishes or is removed.
// The returned function cancels the subscription.
func (s *Service) Subscribe(id string) (<-chan model.DownloadTask, func(), error) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	ch := make(chan model.DownloadTask, subscriberBuffer)
	ch <- task.Snapshot()
	if task.Status.IsFinished() {
		close(ch)
		return ch, func() {}, nil
	}

	if s.subscribers[id] == nil {
		s.subscribers[id] = make(map[chan model.DownloadTask]struct{})
	}
	s.subscribers[id][ch] = struct{}{}

	unsubscribe := func() {
		s.tasksMutex.Lock()
		defer s.tasksMutex.Unlock()
		if subs, ok := s.subscribers[id]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
		}
	}
	return ch, unsubscribe, nil
}

// Close stops accepting tasks, cancels running ones and waits for them
func (s *Service) Close(ctx context.Context) error {
	s.tasksMutex.Lock()
	s.closed = true
	for _, cancel := range s.cancels {
		cancel()
	}
	s.tasksMutex.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startTaskLocked takes a worker slot and runs task. Caller holds tasksMutex.
func (s *Service) startTaskLocked(task *model.DownloadTask) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancels[task.ID] = cancel
	s.activeCount++
	s.metrics.SetActiveTasks(s.activeCount)

	task.Status = model.TaskStatusStarting
	s.publishLocked(task)

	s.wg.Add(1)
	go s.runTask(ctx, task)
}

// runTask downloads a task and records its final state
func (s *Service) runTask(ctx context.Context, task *model.DownloadTask) {
	defer s.wg.Done()
	defer s.releaseSlot(task.ID)

	s.tasksMutex.Lock()
	if task.Status == model.TaskStatusStarting {
		task.Status = model.TaskStatusDownloading
		task.MarkStarted(time.Now())
		s.publishLocked(task)
	}
	s.tasksMutex.Unlock()

	fetchCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	dir := filepath.Join(s.opts.Dir, task.ID)
	start := time.Now()
	result, err := s.downloadWithRetry(fetchCtx, task, dir)
	s.record(start, err)

	s.tasksMutex.Lock()
	if err != nil {
		if ctx.Err() == context.Canceled {
			task.Status = model.TaskStatusStopped
			os.RemoveAll(dir)
		} else {
			task.Status = model.TaskStatusError
			task.LastError = err.Error()
		}
	} else {
		task.Status = model.TaskStatusCompleted
		task.Progress = 1.0
		task.Percent = 100
		task.ETASec = 0
		task.ETA = ""
		task.OutputPath = result.Path
		task.FileSize = result.Size
		if task.Title == "" {
			task.Title = result.Title
		}
		task.FileName = platform.DownloadName(task.GetDisplayTitle(), result.Path)
	}
	task.MarkFinished(time.Now())
	s.publishLocked(task)
	s.tasksMutex.Unlock()

	if err != nil {
		s.logger.Warn("Task finished with error",
			zap.String("task_id", task.ID),
			zap.String("class", extract.Classify(err)),
			zap.Error(err))
		return
	}
	s.logger.Info("Task completed",
		zap.String("task_id", task.ID),
		zap.String("path", result.Path),
		zap.Duration("duration", time.Since(start)))
}

// downloadWithRetry attempts download with retry logic
func (s *Service) downloadWithRetry(ctx context.Context, task *model.DownloadTask, dir string) (*extract.Result, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// Backoff delay
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			s.logger.Info("Retrying download",
				zap.String("task_id", task.ID),
				zap.Int("attempt", attempt+1))
		}

		// Every attempt starts from an empty folder
		os.RemoveAll(dir)
		if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
			return nil, fmt.Errorf("failed to create download directory: %w", err)
		}

		started := time.Now()
		result, err := s.fetch(ctx, task.URL, dir, config.QualityPreset(task.Quality), task.Compress,
			func(p extract.Progress) { s.updateTaskProgress(task, started, p) },
			func(p float64) { s.updateCompressProgress(task, p) })
		if err == nil {
			return result, nil
		}

		lastErr = err
		s.logger.Warn("Download attempt failed",
			zap.String("task_id", task.ID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		// Check if we should retry
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// updateTaskProgress updates task progress from a backend update
func (s *Service) updateTaskProgress(task *model.DownloadTask, started time.Time, p extract.Progress) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	if task.Status.IsFinished() {
		return
	}

	// Update percentage
	percent := p.Percent
	if p.Total > 0 {
		percent = float64(p.Downloaded) / float64(p.Total) * 100
	}
	if percent > 100 {
		percent = 100
	}
	task.Percent = int(percent)
	task.Progress = percent / 100.0

	// Calculate speed and ETA
	elapsed := time.Since(started).Seconds()
	if elapsed > 0 && p.Downloaded > 0 {
		bytesPerSecond := float64(p.Downloaded) / elapsed
		task.Speed = fmt.Sprintf("%.1fMB/s", bytesPerSecond/1024/1024)
		if p.Total > p.Downloaded {
			task.ETASec = int(float64(p.Total-p.Downloaded) / bytesPerSecond)
		}
	}
	task.ETA = task.GetETAString()

	s.publishLocked(task)
}

// updateCompressProgress reports the compression phase as a fresh 0..100 run
func (s *Service) updateCompressProgress(task *model.DownloadTask, p float64) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	if task.Status.IsFinished() {
		return
	}
	task.Progress = p
	task.Percent = int(p * 100)
	task.Speed = ""
	task.ETASec = -1
	task.ETA = task.GetETAString()
	s.publishLocked(task)
}

// releaseSlot frees the worker slot of a finished task and starts the next pending one
func (s *Service) releaseSlot(id string) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
	s.activeCount--
	s.metrics.SetActiveTasks(s.activeCount)

	if !s.closed {
		s.startNextPendingTaskLocked()
	}
}

// startNextPendingTaskLocked starts the oldest pending task if we have capacity
func (s *Service) startNextPendingTaskLocked() {
	if s.activeCount >= s.opts.MaxParallel {
		return
	}

	for _, id := range s.order {
		if task := s.tasks[id]; task.Status == model.TaskStatusPending {
			s.startTaskLocked(task)
			return
		}
	}
}

// publishLocked sends a snapshot to every subscriber of task. A slow
// subscriber loses intermediate snapshots, never the latest one.
func (s *Service) publishLocked(task *model.DownloadTask) {
	subs := s.subscribers[task.ID]
	if len(subs) == 0 {
		return
	}

	snapshot := task.Snapshot()
	for ch := range subs {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}

	if snapshot.Status.IsFinished() {
		s.closeSubscribersLocked(task.ID)
	}
}

func (s *Service) closeSubscribersLocked(id string) {
	for ch := range s.subscribers[id] {
		close(ch)
	}
	delete(s.subscribers, id)
}

func (s *Service) resolveQuality(q config.QualityPreset) config.QualityPreset {
	if q == "" {
		return s.opts.DefaultQuality
	}
	return q
}

func (s *Service) record(start time.Time, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = extract.Classify(err)
	}
	s.metrics.RecordDownload(s.opts.Backend, result, time.Since(start))
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return TaskIDPrefix + uuid.NewString()
}
