package extract

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/ytget/ytdlp/types"
	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/yt-server/internal/config"
)

func TestYTGetSelector(t *testing.T) {
	tests := []struct {
		preset   config.QualityPreset
		selector string
		ext      string
	}{
		{config.QualityBest, "best", "mp4"},
		{config.QualityMedium, "height<=480", "mp4"},
		{config.QualityAudio, "itag=140", "m4a"},
		{"", "best", "mp4"},
	}

	for _, tt := range tests {
		selector, ext := ytgetSelector(tt.preset)
		if selector != tt.selector || ext != tt.ext {
			t.Errorf("ytgetSelector(%q) = (%q, %q), expected (%q, %q)", tt.preset, selector, ext, tt.selector, tt.ext)
		}
	}
}

func TestYTDLPSelector(t *testing.T) {
	tests := []struct {
		preset   config.QualityPreset
		expected string
	}{
		{config.QualityBest, "bestvideo+bestaudio/best"},
		{config.QualityMedium, "best[height<=480]/best"},
		{config.QualityAudio, "bestaudio/best"},
	}

	for _, tt := range tests {
		if got := ytdlpSelector(tt.preset); got != tt.expected {
			t.Errorf("ytdlpSelector(%q) = %q, expected %q", tt.preset, got, tt.expected)
		}
	}
}

func TestYTGetVideoInfo(t *testing.T) {
	info := ytgetVideoInfo(&ytdlp.VideoInfo{
		ID:       "abc123def45",
		Title:    "Title",
		Duration: 90,
		Formats: []types.Format{
			{Itag: 22, Quality: "hd720", MimeType: "video/mp4", Size: 1000},
			{Itag: 140, Quality: "tiny", MimeType: "audio/mp4", Size: 200},
		},
	})

	if info.Duration != 90 {
		t.Errorf("Expected duration 90, got %v", info.Duration)
	}
	if info.FilesizeApprox != 1000 {
		t.Errorf("Expected approximate size 1000, got %d", info.FilesizeApprox)
	}
	if !strings.Contains(info.Thumbnail, "abc123def45") {
		t.Errorf("Expected thumbnail for video id, got %q", info.Thumbnail)
	}
	if len(info.Formats) != 2 {
		t.Fatalf("Expected 2 formats, got %d", len(info.Formats))
	}
	if info.Formats[0].ID != "22" || info.Formats[0].Height != 720 {
		t.Errorf("Expected itag 22 at 720, got %s at %d", info.Formats[0].ID, info.Formats[0].Height)
	}
	if info.Formats[1].Height != 0 {
		t.Errorf("Expected audio format without height, got %d", info.Formats[1].Height)
	}
}

func TestKKDaiVideoInfo(t *testing.T) {
	video := &youtube.Video{
		ID:          "abc123def45",
		Title:       "Title",
		Description: "Desc",
		Duration:    2 * time.Minute,
		Thumbnails: youtube.Thumbnails{
			{URL: "small.jpg", Width: 120, Height: 90},
			{URL: "large.jpg", Width: 1280, Height: 720},
		},
		Formats: youtube.FormatList{
			{ItagNo: 18, Quality: "medium", QualityLabel: "360p", Width: 640, Height: 360, MimeType: "video/mp4", ContentLength: 300},
			{ItagNo: 140, Quality: "tiny", MimeType: "audio/mp4", AudioChannels: 2, ContentLength: 100},
		},
	}

	info := kkdaiVideoInfo(video)

	if info.Duration != 120 {
		t.Errorf("Expected duration 120, got %v", info.Duration)
	}
	if info.Thumbnail != "large.jpg" {
		t.Errorf("Expected last thumbnail, got %q", info.Thumbnail)
	}
	if info.FilesizeApprox != 300 {
		t.Errorf("Expected approximate size 300, got %d", info.FilesizeApprox)
	}
	if info.Formats[0].Note != "360p" || info.Formats[0].Resolution() != "640x360" {
		t.Errorf("Expected 360p/640x360, got %s/%s", info.Formats[0].Note, info.Formats[0].Resolution())
	}
	if info.Formats[1].Note != "tiny" {
		t.Errorf("Expected quality fallback 'tiny', got %q", info.Formats[1].Note)
	}
}

func TestKKDaiSelectFormat(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 18, Width: 640, Height: 360, AudioChannels: 2, Bitrate: 500},
		{ItagNo: 22, Width: 1280, Height: 720, AudioChannels: 2, Bitrate: 1500},
		{ItagNo: 137, Width: 1920, Height: 1080, Bitrate: 4000},
		{ItagNo: 139, AudioChannels: 2, Bitrate: 48},
		{ItagNo: 140, AudioChannels: 2, Bitrate: 128},
	}

	tests := []struct {
		preset   config.QualityPreset
		expected int
	}{
		{config.QualityBest, 22},
		{config.QualityMedium, 18},
		{config.QualityAudio, 140},
	}

	for _, tt := range tests {
		f := kkdaiSelectFormat(formats, tt.preset)
		if f == nil {
			t.Fatalf("Expected a format for %s, got nil", tt.preset)
		}
		if f.ItagNo != tt.expected {
			t.Errorf("Preset %s: expected itag %d, got %d", tt.preset, tt.expected, f.ItagNo)
		}
	}

	if f := kkdaiSelectFormat(nil, config.QualityBest); f != nil {
		t.Errorf("Expected nil for empty list, got itag %d", f.ItagNo)
	}
}

func TestProgressReader(t *testing.T) {
	var last Progress
	calls := 0
	r := &progressReader{
		reader: bytes.NewReader(make([]byte, 100)),
		total:  100,
		report: func(p Progress) {
			calls++
			last = p
		},
	}

	n, err := io.Copy(io.Discard, r)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n != 100 {
		t.Errorf("Expected 100 bytes, got %d", n)
	}
	if calls == 0 {
		t.Fatal("Expected progress callbacks")
	}
	if last.Downloaded != 100 || last.Percent != 100 {
		t.Errorf("Expected final progress 100/100%%, got %+v", last)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.ExtractConfig
		wantErr  bool
		inspect  string
		download string
	}{
		{"defaults", config.ExtractConfig{InfoBackend: "kkdai", DownloadBackend: "ytget"}, false, "kkdai", "ytget"},
		{"ytdlp fetcher", config.ExtractConfig{InfoBackend: "ytget", DownloadBackend: "ytdlp"}, false, "ytget", "ytdlp"},
		{"bad info", config.ExtractConfig{InfoBackend: "ytdlp", DownloadBackend: "ytget"}, true, "", ""},
		{"bad download", config.ExtractConfig{InfoBackend: "kkdai", DownloadBackend: "curl"}, true, "", ""},
		{"bad proxy", config.ExtractConfig{InfoBackend: "kkdai", DownloadBackend: "ytget", ProxyURL: "://bad"}, true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if b.InspectorName != tt.inspect || b.FetcherName != tt.download {
				t.Errorf("Expected %s/%s, got %s/%s", tt.inspect, tt.download, b.InspectorName, b.FetcherName)
			}
			if b.Inspector == nil || b.Fetcher == nil {
				t.Error("Expected both backends to be set")
			}
		})
	}
}

func TestNewHTTPClient_Proxy(t *testing.T) {
	client, err := NewHTTPClient(config.ExtractConfig{ProxyURL: "http://proxy.local:3128", HTTPTimeout: time.Second})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Expected *http.Transport, got %T", client.Transport)
	}
	if transport.ResponseHeaderTimeout != time.Second {
		t.Errorf("Expected header timeout 1s, got %v", transport.ResponseHeaderTimeout)
	}

	req, _ := http.NewRequest(http.MethodGet, "https://www.youtube.com", nil)
	proxy, err := transport.Proxy(req)
	if err != nil || proxy == nil || proxy.Host != "proxy.local:3128" {
		t.Errorf("Expected proxy.local:3128, got %v (%v)", proxy, err)
	}
}

func TestFirstTitle(t *testing.T) {
	var title firstTitle
	title.set("")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			title.set("From progress")
		}()
	}
	wg.Wait()
	title.set("From extracted info")

	if got := title.get(); got != "From progress" {
		t.Errorf("Expected first reported title, got %q", got)
	}
}
