// Package compress re-encodes downloaded files with ffmpeg into a smaller
// H.264/AAC MP4 suitable for progressive playback.
package compress
