package extract

import (
	"errors"
	"testing"

	"github.com/ytget/yt-server/internal/model"
)

func TestBuildInfo(t *testing.T) {
	info := &model.VideoInfo{
		Title:          "Test Video",
		Description:    "About testing",
		Duration:       125,
		FilesizeApprox: 5 * 1024 * 1024,
		Thumbnail:      "https://example.com/thumb.jpg",
		Formats: []model.MediaFormat{
			{Note: "360p", Width: 640, Height: 360, URL: "u1", MimeType: "video/mp4"},
			{Note: "1080p", Width: 1920, Height: 1080, URL: "u2"},
			{Note: "720p", Width: 1280, Height: 720, URL: "u3", MimeType: "video/webm"},
			{Note: "720p", Width: 1280, Height: 720, URL: "u4", MimeType: "video/mp4"},
			{Note: "", Width: 854, Height: 480, URL: "u5"},
			{Note: "medium", URL: "u6", MimeType: "audio/mp4"},
		},
	}

	resp, err := BuildInfo(info)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(resp.Formats) != 4 {
		t.Fatalf("Expected 4 formats, got %d", len(resp.Formats))
	}
	if resp.Formats[0].Format != "360p" || resp.Formats[0].Resolution != "640x360" {
		t.Errorf("Expected first format 360p/640x360, got %s/%s", resp.Formats[0].Format, resp.Formats[0].Resolution)
	}
	if resp.Formats[0].MimeType == nil || *resp.Formats[0].MimeType != "video/mp4" {
		t.Errorf("Expected mime type video/mp4, got %v", resp.Formats[0].MimeType)
	}
	if resp.Formats[1].MimeType != nil {
		t.Errorf("Expected nil mime type, got %q", *resp.Formats[1].MimeType)
	}

	expected := []string{"1920x1080", "1280x720", "640x360"}
	if len(resp.Resolutions) != len(expected) {
		t.Fatalf("Expected %d resolutions, got %v", len(expected), resp.Resolutions)
	}
	for i, r := range expected {
		if resp.Resolutions[i] != r {
			t.Errorf("Resolution %d: expected %s, got %s", i, r, resp.Resolutions[i])
		}
	}

	if resp.Details.Title != "Test Video" {
		t.Errorf("Expected title 'Test Video', got %q", resp.Details.Title)
	}
	if resp.Details.Duration != 125 {
		t.Errorf("Expected duration 125, got %v", resp.Details.Duration)
	}
	if resp.Details.Size != 5 {
		t.Errorf("Expected size 5, got %v", resp.Details.Size)
	}
	if resp.Details.Thumbnail != "https://example.com/thumb.jpg" {
		t.Errorf("Expected thumbnail to be kept, got %q", resp.Details.Thumbnail)
	}
}

func TestBuildInfo_Defaults(t *testing.T) {
	resp, err := BuildInfo(&model.VideoInfo{
		Formats: []model.MediaFormat{{Note: "480p", Height: 480}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.Details.Title != DefaultTitle {
		t.Errorf("Expected default title, got %q", resp.Details.Title)
	}
	if resp.Details.Description != DefaultDescription {
		t.Errorf("Expected default description, got %q", resp.Details.Description)
	}
	if resp.Details.Duration != 0 || resp.Details.Size != 0 {
		t.Errorf("Expected zero duration and size, got %v and %v", resp.Details.Duration, resp.Details.Size)
	}
	if len(resp.Resolutions) != 1 || resp.Resolutions[0] != "480p" {
		t.Errorf("Expected [480p], got %v", resp.Resolutions)
	}
}

func TestBuildInfo_NoFormats(t *testing.T) {
	tests := []struct {
		name string
		info *model.VideoInfo
	}{
		{"nil info", nil},
		{"empty formats", &model.VideoInfo{Title: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildInfo(tt.info)
			if !errors.Is(err, ErrNoFormats) {
				t.Errorf("Expected ErrNoFormats, got %v", err)
			}
		})
	}
}

func TestBuildInfo_OnlyAudioFormats(t *testing.T) {
	resp, err := BuildInfo(&model.VideoInfo{
		Formats: []model.MediaFormat{{Note: "tiny", MimeType: "audio/mp4"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(resp.Formats) != 0 || len(resp.Resolutions) != 0 {
		t.Errorf("Expected empty lists, got %d formats and %d resolutions", len(resp.Formats), len(resp.Resolutions))
	}
}

func TestHeightFromLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected int
	}{
		{"720p", 720},
		{"1080p60", 1080},
		{"hd720", 720},
		{"hd1080", 1080},
		{"medium", 360},
		{"small", 240},
		{"tiny", 144},
		{"large", 480},
		{"", 0},
		{"audio", 0},
	}

	for _, tt := range tests {
		if got := heightFromLabel(tt.label); got != tt.expected {
			t.Errorf("heightFromLabel(%q) = %d, expected %d", tt.label, got, tt.expected)
		}
	}
}
