package engine

import (
	"time"

	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint"
)

// InputKind tells how an input was loaded
type InputKind string

const (
	InputFile   InputKind = "file"
	InputStream InputKind = "stream"
)

// Measurement is the outcome of fingerprinting one input
type Measurement struct {
	ID        string    `json:"id" yaml:"id"`
	Input     string    `json:"input" yaml:"input"`
	Kind      InputKind `json:"kind" yaml:"kind"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Timing
	TimeToFirstByte     time.Duration `json:"time_to_first_byte" yaml:"time_to_first_byte"`
	LoadTime            time.Duration `json:"load_time" yaml:"load_time"`
	FingerprintTime     time.Duration `json:"fingerprint_time" yaml:"fingerprint_time"`
	TotalProcessingTime time.Duration `json:"total_processing_time" yaml:"total_processing_time"`

	// Decoded audio details
	AudioDuration time.Duration `json:"audio_duration" yaml:"audio_duration"`
	SampleRate    int           `json:"sample_rate" yaml:"sample_rate"`
	Channels      int           `json:"channels" yaml:"channels"`
	Truncated     bool          `json:"truncated,omitempty" yaml:"truncated,omitempty"`

	Validation  *AudioValidation              `json:"validation,omitempty" yaml:"validation,omitempty"`
	Fingerprint *fingerprint.AudioFingerprint `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Error       error                         `json:"-" yaml:"-"`
}

// Succeeded reports whether a fingerprint was produced
func (m *Measurement) Succeeded() bool {
	return m != nil && m.Error == nil && m.Fingerprint != nil
}

// AudioValidation records sanity checks on decoded audio
type AudioValidation struct {
	IsValid          bool     `json:"is_valid" yaml:"is_valid"`
	ValidationErrors []string `json:"validation_errors,omitempty" yaml:"validation_errors,omitempty"`
	Clipped          int      `json:"clipped_samples" yaml:"clipped_samples"`
}

// Comparison is the outcome of matching two measurements
type Comparison struct {
	Reference *Measurement             `json:"-" yaml:"-"`
	Candidate *Measurement             `json:"-" yaml:"-"`
	Result    *fingerprint.MatchResult `json:"result,omitempty" yaml:"result,omitempty"`
	Timestamp time.Time                `json:"timestamp" yaml:"timestamp"`
	Error     error                    `json:"-" yaml:"-"`
}
