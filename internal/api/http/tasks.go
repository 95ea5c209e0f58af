package http

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/model"
)

// CreateTaskRequest represents a task submission request
type CreateTaskRequest struct {
	URL      string `json:"url" binding:"required"`
	Quality  string `json:"quality"`
	Compress bool   `json:"compress"`
}

// TaskListResponse represents the task list
type TaskListResponse struct {
	Tasks []model.DownloadTask `json:"tasks"`
	Total int                  `json:"total"`
}

// handleCreateTask queues an asynchronous download
func (s *Server) handleCreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	quality, ok := config.ParseQualityPreset(req.Quality, s.defaultQuality)
	if !ok {
		abortDetail(c, http.StatusBadRequest, msgInvalidQuality+": "+req.Quality)
		return
	}

	task, err := s.downloads.AddTask(req.URL, quality, req.Compress)
	if err != nil {
		s.logger.Warn("failed to add task", zap.String("url", req.URL), zap.Error(err))
		abortDetail(c, taskErrorStatus(err), err.Error())
		return
	}

	c.JSON(http.StatusCreated, task)
}

// handleListTasks lists all tasks
func (s *Server) handleListTasks(c *gin.Context) {
	tasks := s.downloads.GetAllTasks()
	c.JSON(http.StatusOK, TaskListResponse{Tasks: tasks, Total: len(tasks)})
}

// handleGetTask returns one task
func (s *Server) handleGetTask(c *gin.Context) {
	task, ok := s.downloads.GetTask(c.Param("id"))
	if !ok {
		abortDetail(c, http.StatusNotFound, "task not found: "+c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleStopTask stops a pending or running task
func (s *Server) handleStopTask(c *gin.Context) {
	id := c.Param("id")
	if err := s.downloads.StopTask(id); err != nil {
		abortDetail(c, taskErrorStatus(err), err.Error())
		return
	}

	task, _ := s.downloads.GetTask(id)
	c.JSON(http.StatusOK, task)
}

// handleRemoveTask forgets a task
func (s *Server) handleRemoveTask(c *gin.Context) {
	id := c.Param("id")
	if err := s.downloads.RemoveTask(id); err != nil {
		abortDetail(c, taskErrorStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "removed"})
}

// handleTaskFile serves the file of a completed task
func (s *Server) handleTaskFile(c *gin.Context) {
	task, ok := s.downloads.GetTask(c.Param("id"))
	if !ok {
		abortDetail(c, http.StatusNotFound, "task not found: "+c.Param("id"))
		return
	}
	if task.Status != model.TaskStatusCompleted {
		abortDetail(c, http.StatusConflict, "task is not completed: "+task.Status.String())
		return
	}
	if _, err := os.Stat(task.OutputPath); err != nil {
		abortDetail(c, http.StatusGone, "file is no longer available")
		return
	}

	c.FileAttachment(task.OutputPath, task.FileName)
}
