// Package chroma folds power spectra into 12-band pitch class vectors and
// smooths and normalizes them over time.
package chroma

import (
	"fmt"
	"math"
)

// NumBands is the number of pitch classes per octave.
const NumBands = 12

// baseNote is A0 (27.5 Hz); octave boundaries fall on A.
const baseNote = 440.0 / 16.0

// FeatureConsumer receives one feature vector per frame. Implementations must
// not retain the slice past the call unless documented otherwise.
type FeatureConsumer interface {
	Consume(features []float64)
}

// Extractor maps the spectral bins between minFreq and maxFreq onto pitch
// classes.
type Extractor struct {
	interpolate bool
	notes       []int
	notesFrac   []float64
	minIndex    int
	maxIndex    int
	consumer    FeatureConsumer
}

func NewExtractor(minFreq, maxFreq, frameSize, sampleRate int, consumer FeatureConsumer) (*Extractor, error) {
	if frameSize <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("chroma: invalid frame size %d or sample rate %d", frameSize, sampleRate)
	}
	if minFreq <= 0 || maxFreq <= minFreq {
		return nil, fmt.Errorf("chroma: invalid frequency range [%d, %d)", minFreq, maxFreq)
	}

	e := &Extractor{
		notes:     make([]int, frameSize),
		notesFrac: make([]float64, frameSize),
		consumer:  consumer,
	}
	e.prepareNotes(minFreq, maxFreq, frameSize, sampleRate)
	return e, nil
}

func (e *Extractor) prepareNotes(minFreq, maxFreq, frameSize, sampleRate int) {
	e.minIndex = max(1, FreqToIndex(float64(minFreq), frameSize, sampleRate))
	e.maxIndex = min(frameSize/2, FreqToIndex(float64(maxFreq), frameSize, sampleRate))

	for i := e.minIndex; i < e.maxIndex; i++ {
		octave := FreqToOctave(IndexToFreq(i, frameSize, sampleRate))
		note := NumBands * (octave - math.Floor(octave))
		e.notes[i] = int(note)
		e.notesFrac[i] = note - float64(e.notes[i])
	}
}

// SetInterpolate enables splitting each bin's energy between its band and
// the nearest neighbouring band.
func (e *Extractor) SetInterpolate(interpolate bool) {
	e.interpolate = interpolate
}

func (e *Extractor) Interpolate() bool {
	return e.interpolate
}

// Range returns the half-open bin range folded into chroma.
func (e *Extractor) Range() (minIndex, maxIndex int) {
	return e.minIndex, e.maxIndex
}

// Note returns the pitch class and fractional position of bin i.
func (e *Extractor) Note(i int) (int, float64) {
	return e.notes[i], e.notesFrac[i]
}

func (e *Extractor) Reset() {}

// Consume builds a fresh vector per frame so downstream filters may keep it.
func (e *Extractor) Consume(frame []float64) {
	features := make([]float64, NumBands)

	for i := e.minIndex; i < e.maxIndex; i++ {
		note := e.notes[i]
		energy := frame[i]

		if !e.interpolate {
			features[note] += energy
			continue
		}

		frac := e.notesFrac[i]
		near := note
		k := 1.0
		switch {
		case frac < 0.5:
			near = (note + NumBands - 1) % NumBands
			k = 0.5 + frac
		case frac > 0.5:
			near = (note + 1) % NumBands
			k = 1.5 - frac
		}

		features[note] += energy * k
		features[near] += energy * (1.0 - k)
	}

	e.consumer.Consume(features)
}

func FreqToIndex(freq float64, frameSize, sampleRate int) int {
	return int(math.Round(float64(frameSize) * freq / float64(sampleRate)))
}

func IndexToFreq(i, frameSize, sampleRate int) float64 {
	return float64(i) * float64(sampleRate) / float64(frameSize)
}

// FreqToOctave returns the number of octaves above A0.
func FreqToOctave(freq float64) float64 {
	return math.Log2(freq / baseNote)
}
