package compress

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// FFmpeg constants for compression settings
const (
	// Video codec settings
	VideoCodec  = "libx264"
	VideoPreset = "medium"
	VideoCRF    = "23"

	// Audio codec settings
	AudioCodec   = "aac"
	AudioBitrate = "128k"

	// Container flags
	FastStartFlag = "+faststart"

	// Output suffix
	CompressedSuffix = "-compressed"

	// Executable and I/O constants
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:1"
	ProgressTimePrefix  = "out_time_us="
	OutputExtensionMP4  = ".mp4"
)

// ErrFFmpegNotFound is returned when the ffmpeg executable cannot be resolved
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// maxStderrTail bounds how much ffmpeg stderr ends up in an error message
const maxStderrTail = 512

// Service runs ffmpeg re-encodes
type Service struct {
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

// NewService creates a compression service. An empty ffmpegPath resolves
// ffmpeg from PATH; ffprobe is looked up next to it.
func NewService(ffmpegPath string, logger *zap.Logger) *Service {
	if ffmpegPath == "" {
		ffmpegPath = FFmpegCommand
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ffprobePath := FFprobeCommand
	if dir := filepath.Dir(ffmpegPath); dir != "." {
		ffprobePath = filepath.Join(dir, FFprobeCommand)
	}

	return &Service{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger,
	}
}

// Compress re-encodes inputPath and returns the path of the compressed file.
// progress, if set, receives values from 0 to 1. A failed or cancelled run
// leaves no output file behind.
func (s *Service) Compress(ctx context.Context, inputPath string, progress func(float64)) (string, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return "", fmt.Errorf("input file does not exist: %s", inputPath)
	}

	ffmpeg, err := exec.LookPath(s.ffmpegPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrFFmpegNotFound, s.ffmpegPath)
	}

	outputPath := generateOutputPath(inputPath)

	duration := 0.0
	if progress != nil {
		// Progress is best effort; a missing ffprobe only disables it
		if duration, err = s.getVideoDuration(ctx, inputPath); err != nil {
			s.logger.Debug("Failed to get video duration",
				zap.String("input", inputPath),
				zap.Error(err))
		}
	}

	cmd := exec.CommandContext(ctx, ffmpeg, s.BuildFFmpegArgs(inputPath, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	s.logger.Info("Starting compression",
		zap.String("input", inputPath),
		zap.String("output", outputPath))

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	monitorProgress(stdout, duration, progress)

	if err := cmd.Wait(); err != nil {
		os.Remove(outputPath)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %w: %s", err, tail(stderr.String(), maxStderrTail))
	}

	if progress != nil {
		progress(1.0)
	}
	return outputPath, nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func (s *Service) BuildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", inputPath, // Input file
		"-c:v", VideoCodec, // Video codec
		"-preset", VideoPreset, // Encoding preset
		"-crf", VideoCRF, // Constant rate factor
		"-c:a", AudioCodec, // Audio codec
		"-b:a", AudioBitrate, // Audio bitrate
		"-movflags", FastStartFlag, // MP4 optimization
		"-progress", ProgressPipeTarget, // Progress to stdout
		"-nostats", // No stats output
		outputPath, // Output file
	}
}

// getVideoDuration gets the duration of a video file using ffprobe
func (s *Service) getVideoDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffprobePath, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return duration, nil
}

// monitorProgress reads ffmpeg -progress output until EOF
func monitorProgress(r io.Reader, totalDuration float64, progress func(float64)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if progress == nil || totalDuration <= 0 {
			continue
		}
		if p, ok := parseProgressLine(scanner.Text(), totalDuration); ok {
			progress(p)
		}
	}
}

// parseProgressLine parses "out_time_us=123456" into a 0..1 fraction
func parseProgressLine(line string, totalDuration float64) (float64, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ProgressTimePrefix) {
		return 0, false
	}

	timeMicroseconds, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
	if err != nil || totalDuration <= 0 {
		return 0, false
	}

	progress := float64(timeMicroseconds) / 1000000.0 / totalDuration
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0 {
		progress = 0
	}
	return progress, true
}

// generateOutputPath generates the output path for compressed file
func generateOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	baseName := strings.TrimSuffix(inputPath, ext)
	return baseName + CompressedSuffix + OutputExtensionMP4
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
