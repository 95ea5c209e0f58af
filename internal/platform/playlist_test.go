package platform

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ytget/ytdlp/types"

	"github.com/ytget/yt-server/internal/model"
)

type fakePlaylistSource struct {
	items       []types.PlaylistItem
	err         error
	gotID       string
	gotLimit    int
	hasDeadline bool
}

func (f *fakePlaylistSource) GetPlaylistItemsAll(ctx context.Context, playlistID string, limit int) ([]types.PlaylistItem, error) {
	f.gotID = playlistID
	f.gotLimit = limit
	_, f.hasDeadline = ctx.Deadline()
	return f.items, f.err
}

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{"playlist page", "https://www.youtube.com/playlist?list=PL123", "PL123", false},
		{"watch with list", "https://www.youtube.com/watch?v=abc&list=PL456&index=2", "PL456", false},
		{"raw fragment", "list=PL789&start_radio=1", "PL789", false},
		{"no list", "https://www.youtube.com/watch?v=abc", "", true},
		{"empty list", "https://www.youtube.com/playlist?list=", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExtractPlaylistID(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %s, got id %q", tt.url, id)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.expected {
				t.Errorf("expected id %q, got %q", tt.expected, id)
			}
		})
	}
}

func TestParsePlaylist(t *testing.T) {
	source := &fakePlaylistSource{
		items: []types.PlaylistItem{
			{VideoID: "v1", Title: "Go Conference 2024 - Keynote", Index: 1},
			{VideoID: "", Title: "deleted video"},
			{VideoID: "v3", Title: "Go Conference 2024 - Generics"},
		},
	}
	parser := NewPlaylistParser(source)

	playlist, err := parser.ParsePlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLgo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if source.gotID != "PLgo" {
		t.Errorf("expected playlist id PLgo, got %s", source.gotID)
	}
	if source.gotLimit != DefaultPlaylistLimit {
		t.Errorf("expected limit %d, got %d", DefaultPlaylistLimit, source.gotLimit)
	}
	if !source.hasDeadline {
		t.Error("expected parse context to carry a deadline")
	}
	if playlist.TotalVideos != 2 {
		t.Fatalf("expected 2 videos, got %d", playlist.TotalVideos)
	}
	if playlist.Videos[1].URL != "https://www.youtube.com/watch?v=v3" {
		t.Errorf("unexpected video url %s", playlist.Videos[1].URL)
	}
	if playlist.Videos[1].Index != 3 {
		t.Errorf("expected fallback index 3, got %d", playlist.Videos[1].Index)
	}
	if playlist.Title != "Go Conference 2024 -"+PlaylistSuffix {
		t.Errorf("unexpected playlist title %q", playlist.Title)
	}
}

func TestParsePlaylist_Limit(t *testing.T) {
	source := &fakePlaylistSource{items: []types.PlaylistItem{{VideoID: "v1", Title: "One"}}}
	parser := NewPlaylistParser(source)
	parser.SetLimit(25)

	if _, err := parser.ParsePlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLgo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.gotLimit != 25 {
		t.Errorf("expected limit 25, got %d", source.gotLimit)
	}

	parser.SetLimit(-3)
	if _, err := parser.ParsePlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLgo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.gotLimit != 0 {
		t.Errorf("expected negative limit to mean no cap, got %d", source.gotLimit)
	}
}

func TestParsePlaylist_SourceError(t *testing.T) {
	source := &fakePlaylistSource{err: errors.New("boom")}
	parser := NewPlaylistParser(source)
	parser.SetTimeout(time.Second)

	_, err := parser.ParsePlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLx")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to get playlist items") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParsePlaylist_InvalidURL(t *testing.T) {
	parser := NewPlaylistParser(&fakePlaylistSource{})
	if _, err := parser.ParsePlaylist(context.Background(), "https://youtu.be/abc"); err == nil {
		t.Error("expected error for URL without list parameter")
	}
}

func TestPlaylistTitle(t *testing.T) {
	tests := []struct {
		name     string
		titles   []string
		expected string
	}{
		{"empty", nil, DefaultPlaylistName},
		{"single", []string{"Only One"}, "Only One" + PlaylistSuffix},
		{"short prefix", []string{"Abc 1", "Abc 2"}, "Abc 1" + PlaylistSuffix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos := make([]*model.PlaylistVideo, 0, len(tt.titles))
			for _, title := range tt.titles {
				videos = append(videos, &model.PlaylistVideo{Title: title})
			}
			result := playlistTitle(videos)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}
