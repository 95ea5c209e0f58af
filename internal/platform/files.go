package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// File naming
const (
	DefaultExt        = "mp4"
	DefaultName       = "video"
	MaxFileNameLength = 120
)

// File extensions left behind by backends while a download is in flight
var (
	SkippedExtensions = []string{".part", ".ytdl", ".tmp"}
)

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// ResolveDownloadsDir returns the absolute form of dir, resolving relative
// paths against the working directory
func ResolveDownloadsDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("directory path is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}
	return abs, nil
}

// FindDownloadedFile returns the media file a backend wrote into dir.
// Temporary and partial files are ignored; when several candidates remain the
// most recently modified one wins.
func FindDownloadedFile(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("directory path is empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var found string
	var newest time.Time
	for _, entry := range entries {
		if entry.IsDir() || isTemporaryFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if found == "" || info.ModTime().After(newest) {
			found = filepath.Join(dir, entry.Name())
			newest = info.ModTime()
		}
	}

	if found == "" {
		return "", fmt.Errorf("no downloaded file found in %s", dir)
	}
	return found, nil
}

// isTemporaryFile checks whether a file name belongs to an unfinished download
func isTemporaryFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// SafeFileName builds a cross-platform safe file name from a title and an
// extension given without the dot
func SafeFileName(title, ext string) string {
	name := strings.TrimSpace(title)
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if name == "" {
		name = DefaultName
	}
	if len(name) > MaxFileNameLength {
		name = strings.TrimSpace(truncateUTF8(name, MaxFileNameLength))
	}
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = DefaultExt
	}
	return name + "." + ext
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// DownloadName returns the attachment name for a served file: the title when
// known, otherwise the file's own base name, keeping the file's extension.
func DownloadName(title, path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if strings.TrimSpace(title) == "" {
		base := filepath.Base(path)
		return SafeFileName(strings.TrimSuffix(base, filepath.Ext(base)), ext)
	}
	return SafeFileName(title, ext)
}

// ExtFromMime returns a file extension (without dot) for a mime type such as
// `video/mp4; codecs="avc1.42001E"`. Falls back to the subtype or mp4.
func ExtFromMime(mime string) string {
	base := strings.TrimSpace(mime)
	if i := strings.Index(base, ";"); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	switch strings.ToLower(base) {
	case "":
		return DefaultExt
	case "video/mp4":
		return "mp4"
	case "audio/mp4":
		return "m4a"
	case "video/webm", "audio/webm":
		return "webm"
	case "audio/mpeg":
		return "mp3"
	}
	parts := strings.Split(base, "/")
	if len(parts) == 2 && parts[1] != "" {
		return strings.ToLower(parts[1])
	}
	return DefaultExt
}

// FileSize returns the size of path in bytes, or 0 if it cannot be read
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
