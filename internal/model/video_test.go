package model

import "testing"

func TestMediaFormat_Resolution(t *testing.T) {
	tests := []struct {
		format   MediaFormat
		expected string
	}{
		{MediaFormat{Width: 1280, Height: 720, Note: "720p"}, "1280x720"},
		{MediaFormat{Width: 0, Height: 720, Note: "720p"}, "720p"},
		{MediaFormat{Note: "hd1080"}, ""},
		{MediaFormat{}, ""},
	}

	for _, test := range tests {
		result := test.format.Resolution()
		if result != test.expected {
			t.Errorf("Resolution() for %+v = %s, expected %s", test.format, result, test.expected)
		}
	}
}

func TestMediaFormat_HasDimensions(t *testing.T) {
	if !(MediaFormat{Width: 640, Height: 360}).HasDimensions() {
		t.Error("Expected 640x360 to have dimensions")
	}
	if (MediaFormat{Width: 640}).HasDimensions() {
		t.Error("Expected missing height to report no dimensions")
	}
}
