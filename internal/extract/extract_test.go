package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/ytget/ytdlp/errs"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ClassNone},
		{"canceled", fmt.Errorf("download failed: %w", context.Canceled), ClassCanceled},
		{"deadline", context.DeadlineExceeded, ClassTimeout},
		{"no formats", ErrNoFormats, ClassNoFormats},
		{"ytget private", fmt.Errorf("failed to resolve video: %w", errs.ErrPrivate), ClassPrivate},
		{"kkdai private", youtube.ErrVideoPrivate, ClassPrivate},
		{"ytget age", errs.ErrAgeRestricted, ClassAgeRestricted},
		{"kkdai login", youtube.ErrLoginRequired, ClassAgeRestricted},
		{"geo", errs.ErrGeoBlocked, ClassGeoBlocked},
		{"rate limited", errs.ErrRateLimited, ClassRateLimited},
		{"cipher", errs.ErrCipherFailed, ClassCipher},
		{"invalid id", youtube.ErrInvalidCharactersInVideoID, ClassInvalidURL},
		{"unavailable", errs.ErrVideoUnavailable, ClassUnavailable},
		{"not embeddable", youtube.ErrNotPlayableInEmbed, ClassUnavailable},
		{"playability", fmt.Errorf("wrapped: %w", &youtube.ErrPlayabiltyStatus{Status: "ERROR", Reason: "gone"}), ClassUnavailable},
		{"other", errors.New("boom"), ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRequestReport(t *testing.T) {
	// no callback must not panic
	Request{}.report(Progress{Downloaded: 1})

	var got Progress
	req := Request{Progress: func(p Progress) { got = p }}
	req.report(Progress{Downloaded: 10, Total: 20, Percent: 50})

	if got.Downloaded != 10 || got.Total != 20 || got.Percent != 50 {
		t.Errorf("Expected forwarded progress, got %+v", got)
	}
}
