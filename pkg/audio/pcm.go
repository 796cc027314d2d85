package audio

import "math"

// FloatToPCM16 converts normalized float samples in [-1, 1] to signed 16-bit
// PCM. Out of range samples are clipped.
func FloatToPCM16(samples []float64) []int16 {
	pcm := make([]int16, len(samples))
	for i, sample := range samples {
		if math.IsNaN(sample) {
			continue
		}
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		pcm[i] = int16(sample * math.MaxInt16)
	}
	return pcm
}

// PCM16ToFloat is the inverse of FloatToPCM16.
func PCM16ToFloat(pcm []int16) []float64 {
	samples := make([]float64, len(pcm))
	for i, s := range pcm {
		samples[i] = float64(s) / math.MaxInt16
	}
	return samples
}
