package batch

import (
	"fmt"
	"time"

	"github.com/RyanBlaney/chromaprint/internal/engine"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint"
)

// Job describes one batch run
type Job struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Algorithm   string        `json:"algorithm,omitempty" yaml:"algorithm,omitempty"` // overrides the configured algorithm
	Timeout     time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Reference is fingerprinted alongside Inputs and compared against each of them
	Reference string   `json:"reference,omitempty" yaml:"reference,omitempty"`
	Inputs    []string `json:"inputs" yaml:"inputs"`

	// Pairwise compares every pair of inputs when no reference is given
	Pairwise bool `json:"pairwise,omitempty" yaml:"pairwise,omitempty"`
}

// Validate validates the job definition
func (j *Job) Validate() error {
	if len(j.Inputs) == 0 {
		return fmt.Errorf("at least one input is required")
	}

	seen := make(map[string]bool, len(j.Inputs))
	for i, input := range j.Inputs {
		if input == "" {
			return fmt.Errorf("input %d is empty", i)
		}
		if seen[input] {
			return fmt.Errorf("duplicate input %q", input)
		}
		seen[input] = true
	}

	if j.Reference != "" && seen[j.Reference] {
		return fmt.Errorf("reference %q is also listed as an input", j.Reference)
	}

	if j.Algorithm != "" {
		if _, err := fingerprint.ParseAlgorithm(j.Algorithm); err != nil {
			return err
		}
	}

	if j.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	return nil
}

// Summary holds every result of one job
type Summary struct {
	Job           string                `json:"job" yaml:"job"`
	Algorithm     string                `json:"algorithm" yaml:"algorithm"`
	StartTime     time.Time             `json:"start_time" yaml:"start_time"`
	EndTime       time.Time             `json:"end_time" yaml:"end_time"`
	TotalDuration time.Duration         `json:"total_duration" yaml:"total_duration"`
	Reference     *engine.Measurement   `json:"reference,omitempty" yaml:"reference,omitempty"`
	Measurements  []*engine.Measurement `json:"measurements" yaml:"measurements"`
	Comparisons   []*engine.Comparison  `json:"comparisons,omitempty" yaml:"comparisons,omitempty"`
	Successful    int                   `json:"successful" yaml:"successful"`
	Failed        int                   `json:"failed" yaml:"failed"`
	Stats         *Stats                `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// AllMeasurements returns the reference followed by the inputs
func (s *Summary) AllMeasurements() []*engine.Measurement {
	if s.Reference == nil {
		return s.Measurements
	}
	return append([]*engine.Measurement{s.Reference}, s.Measurements...)
}
