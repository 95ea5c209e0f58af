package config

import "strings"

// QualityPreset selects which stream a fetch asks the backend for
type QualityPreset string

const (
	QualityBest   QualityPreset = "best"
	QualityMedium QualityPreset = "medium"
	QualityAudio  QualityPreset = "audio"
)

// DefaultQualityPreset is used when neither the request nor the environment names one
const DefaultQualityPreset = QualityBest

// MediumMaxHeight is the height cap of the medium preset
const MediumMaxHeight = 480

// QualityPresetOptions returns available quality preset options
func QualityPresetOptions() []QualityPreset {
	return []QualityPreset{QualityBest, QualityMedium, QualityAudio}
}

// ParseQualityPreset maps a user supplied value to a preset. Empty input yields
// the fallback; unknown input reports false.
func ParseQualityPreset(value string, fallback QualityPreset) (QualityPreset, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return fallback, true
	}
	for _, p := range QualityPresetOptions() {
		if string(p) == v {
			return p, true
		}
	}
	return fallback, false
}

// IsAudio reports whether the preset asks for an audio-only stream
func (q QualityPreset) IsAudio() bool {
	return q == QualityAudio
}

// MaxHeight returns the height cap of the preset, 0 meaning unlimited
func (q QualityPreset) MaxHeight() int {
	if q == QualityMedium {
		return MediumMaxHeight
	}
	return 0
}
