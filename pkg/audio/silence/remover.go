// Package silence drops the near-silent lead-in of a stream so fingerprints
// of the same recording line up regardless of leading padding.
package silence

import "github.com/RyanBlaney/chromaprint/pkg/audio"

// DefaultWindow is about 5ms at 11025 Hz.
const DefaultWindow = 55

// Remover is an audio.Consumer that discards leading samples until the moving
// average of their magnitude exceeds Threshold, then passes everything through.
type Remover struct {
	threshold int
	start     bool
	average   *MovingAverage
	consumer  audio.Consumer
}

func NewRemover(consumer audio.Consumer, threshold int) *Remover {
	return NewRemoverWithWindow(consumer, threshold, DefaultWindow)
}

func NewRemoverWithWindow(consumer audio.Consumer, threshold, window int) *Remover {
	return &Remover{
		threshold: threshold,
		start:     true,
		average:   NewMovingAverage(window),
		consumer:  consumer,
	}
}

func (r *Remover) Threshold() int {
	return r.threshold
}

func (r *Remover) SetThreshold(threshold int) {
	r.threshold = threshold
}

// Silent reports whether the remover is still discarding input.
func (r *Remover) Silent() bool {
	return r.start
}

// Reset re-arms silence detection for a new session.
func (r *Remover) Reset() {
	r.start = true
	r.average.Reset()
}

// Consume shifts discarded samples out of input in place, zero-fills the
// tail and forwards what is left.
func (r *Remover) Consume(input []int16, length int) error {
	if err := audio.CheckLength(input, length); err != nil {
		return err
	}

	offset := 0
	n := length

	if r.start {
		for length > 0 {
			r.average.Add(abs(input[offset]))
			if r.average.Average() > r.threshold {
				r.start = false
				break
			}
			offset++
			length--
		}
	}

	if offset > 0 {
		copy(input, input[offset:n])
		clear(input[n-offset : n])
	}

	if length > 0 {
		return r.consumer.Consume(input, length)
	}
	return nil
}

func abs(x int16) int {
	if x < 0 {
		return -int(x)
	}
	return int(x)
}
