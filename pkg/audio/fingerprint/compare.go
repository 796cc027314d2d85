package fingerprint

import (
	"fmt"
	"math/bits"
	"time"
)

// Comparison defaults.
const (
	DefaultMatchThreshold = 0.15
	DefaultMaxOffset      = 80
)

// CompareOptions bounds the alignment search and sets the match cut-off.
type CompareOptions struct {
	// MaxOffset is the largest shift tried in either direction, in subfingerprints.
	MaxOffset int
	// MatchThreshold is the highest bit error rate still reported as a match.
	MatchThreshold float64
}

func DefaultCompareOptions() CompareOptions {
	return CompareOptions{
		MaxOffset:      DefaultMaxOffset,
		MatchThreshold: DefaultMatchThreshold,
	}
}

// MatchResult holds the result of a fingerprint comparison
type MatchResult struct {
	BitErrorRate   float64       `json:"bit_error_rate" msgpack:"bit_error_rate"`
	Similarity     float64       `json:"similarity" msgpack:"similarity"` // 1 - bit error rate
	Offset         int           `json:"offset" msgpack:"offset"`         // b relative to a, in subfingerprints
	OffsetSeconds  float64       `json:"offset_seconds" msgpack:"offset_seconds"`
	Overlap        int           `json:"overlap" msgpack:"overlap"`
	HashDistance   int           `json:"hash_distance" msgpack:"hash_distance"`
	Match          bool          `json:"match" msgpack:"match"`
	ProcessingTime time.Duration `json:"processing_time" msgpack:"processing_time"`
}

// BitErrorRate compares the overlapping prefix of a and b and returns the
// fraction of differing bits and the number of subfingerprints compared.
func BitErrorRate(a, b []uint32) (float64, int) {
	n := min(len(a), len(b))
	if n == 0 {
		return 1, 0
	}

	distance := 0
	for i := 0; i < n; i++ {
		distance += bits.OnesCount32(a[i] ^ b[i])
	}
	return float64(distance) / float64(32*n), n
}

// HashDistance is the number of differing bits between two SimHash values.
func HashDistance(a, b uint32) int {
	return bits.OnesCount32(a ^ b)
}

// Align finds the shift of b against a, within maxOffset, with the lowest
// bit error rate. A positive offset means b starts offset subfingerprints
// into a. Shifts that leave less than half of the shorter input overlapping
// are skipped.
func Align(a, b []uint32, maxOffset int) (offset int, ber float64, overlap int) {
	shorter := min(len(a), len(b))
	if shorter == 0 {
		return 0, 1, 0
	}
	minOverlap := max(1, shorter/2)

	ber = 2
	for shift := -maxOffset; shift <= maxOffset; shift++ {
		x, y := a, b
		if shift >= 0 {
			if shift >= len(a) {
				continue
			}
			x = a[shift:]
		} else {
			if -shift >= len(b) {
				continue
			}
			y = b[-shift:]
		}

		rate, n := BitErrorRate(x, y)
		if n < minOverlap {
			continue
		}
		// prefer the smallest shift on ties
		if rate < ber || (rate == ber && abs(shift) < abs(offset)) {
			offset, ber, overlap = shift, rate, n
		}
	}
	return offset, ber, overlap
}

// OffsetSeconds converts a subfingerprint offset to stream time.
func OffsetSeconds(offset int) float64 {
	return float64(offset*ItemDurationSamples) / SampleRate
}

// Compare aligns b against a and reports how closely they match.
func Compare(a, b []uint32, opts CompareOptions) (*MatchResult, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("%w: lengths %d and %d", ErrEmptyFingerprint, len(a), len(b))
	}
	start := time.Now()

	offset, ber, overlap := Align(a, b, max(0, opts.MaxOffset))
	return &MatchResult{
		BitErrorRate:   ber,
		Similarity:     1 - ber,
		Offset:         offset,
		OffsetSeconds:  OffsetSeconds(offset),
		Overlap:        overlap,
		HashDistance:   HashDistance(SimHash(a), SimHash(b)),
		Match:          ber < opts.MatchThreshold,
		ProcessingTime: time.Since(start),
	}, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
