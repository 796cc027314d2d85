// Package fingerprint computes Chromaprint compatible acoustic fingerprints:
// a trained classifier bank slid over a chroma image yields one 32-bit
// subfingerprint per analysis step.
package fingerprint

import "time"

// AudioFingerprint is a finished fingerprint with the session details
// needed to interpret it.
type AudioFingerprint struct {
	ID              string         `json:"id,omitempty" msgpack:"id,omitempty"`
	Source          string         `json:"source,omitempty" msgpack:"source,omitempty"`
	Timestamp       time.Time      `json:"timestamp" msgpack:"timestamp"`
	Algorithm       string         `json:"algorithm" msgpack:"algorithm"`
	AlgorithmID     int            `json:"algorithm_id" msgpack:"algorithm_id"`
	Version         string         `json:"version" msgpack:"version"`
	Fingerprint     string         `json:"fingerprint" msgpack:"fingerprint"`
	Raw             []uint32       `json:"raw,omitempty" msgpack:"raw,omitempty"`
	Hash            uint32         `json:"hash" msgpack:"hash"`
	Subfingerprints int            `json:"subfingerprints" msgpack:"subfingerprints"`
	Duration        time.Duration  `json:"duration" msgpack:"duration"`
	SampleRate      int            `json:"sample_rate" msgpack:"sample_rate"`
	Channels        int            `json:"channels" msgpack:"channels"`
	Metadata        map[string]any `json:"metadata,omitempty" msgpack:"metadata,omitempty"`
}
