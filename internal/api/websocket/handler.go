// Package websocket streams asynchronous task progress to browsers.
package websocket

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ytget/yt-server/internal/download"
	"github.com/ytget/yt-server/internal/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// TaskSource is the part of the download service the handler needs
type TaskSource interface {
	Subscribe(id string) (<-chan model.DownloadTask, func(), error)
}

// Handler handles WebSocket connections
type Handler struct {
	tasks  TaskSource
	logger *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(tasks TaskSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		tasks:  tasks,
		logger: logger,
	}
}

// HandleTaskStream streams JSON snapshots of one task until it finishes or
// the client goes away
func (h *Handler) HandleTaskStream(c *gin.Context) {
	taskID := c.Param("id")

	updates, unsubscribe, err := h.tasks.Subscribe(taskID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, download.ErrTaskNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"detail": err.Error()})
		return
	}
	defer unsubscribe()

	// Upgrade connection
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	h.logger.Info("WebSocket connection established",
		zap.String("task_id", taskID),
		zap.String("client", c.ClientIP()))

	// Drain client frames so close and pong messages are processed
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case task, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "task finished"))
				return
			}
			if err := conn.WriteJSON(task); err != nil {
				h.logger.Error("failed to write message", zap.Error(err))
				return
			}
		}
	}
}
