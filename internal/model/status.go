package model

// TaskStatus represents the status of an asynchronous download task
type TaskStatus string

const (
	// TaskStatusPending means the task is queued but not started
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusStarting means a worker slot was taken for the task
	TaskStatusStarting TaskStatus = "starting"

	// TaskStatusDownloading means the backend is fetching media
	TaskStatusDownloading TaskStatus = "downloading"

	// TaskStatusStopping means a stop was requested and the fetch is being cancelled
	TaskStatusStopping TaskStatus = "stopping"

	// TaskStatusStopped means the task was stopped by the caller
	TaskStatusStopped TaskStatus = "stopped"

	// TaskStatusCompleted means the file is ready to be served
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusError means the task failed with an error
	TaskStatusError TaskStatus = "error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task holds a worker slot
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusStarting || ts == TaskStatusDownloading || ts == TaskStatusStopping
}

// IsFinished returns true if the task is in a terminal state (completed, stopped, or error)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusStopped || ts == TaskStatusError
}
