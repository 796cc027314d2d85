// Package processor prepares raw PCM for fingerprinting: it mixes any number
// of interleaved channels down to mono and resamples to the target rate
// before handing fixed size blocks to the next consumer.
package processor

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/chromaprint/pkg/audio"
	"github.com/RyanBlaney/chromaprint/pkg/audio/resampler"
)

const (
	// MinSampleRate is exclusive: input must be faster than this.
	MinSampleRate = 1000
	MaxBufferSize = 1024 * 16

	resampleFilterLength = 16
	resamplePhaseShift   = 10
	resampleLinear       = false
	resampleCutoff       = 0.8
)

var (
	ErrInvalidChannels   = errors.New("processor: channel count must be positive")
	ErrSampleRateTooLow  = errors.New("processor: sample rate too low")
	ErrChannelMisaligned = errors.New("processor: sample count is not a multiple of the channel count")
	ErrNotReset          = errors.New("processor: Reset must be called before Consume")
	ErrNoProgress        = errors.New("processor: resampler made no progress on a full buffer")
)

// Processor is an audio.Consumer accepting interleaved PCM at any rate.
type Processor struct {
	targetRate     int
	consumer       audio.Consumer
	buffer         []int16
	resampleBuffer []int16
	bufferOffset   int
	channels       int
	resampler      *resampler.Resampler
}

// New creates a processor delivering mono PCM at targetRate to consumer.
func New(targetRate int, consumer audio.Consumer) *Processor {
	return &Processor{
		targetRate:     targetRate,
		consumer:       consumer,
		buffer:         make([]int16, MaxBufferSize),
		resampleBuffer: make([]int16, MaxBufferSize),
	}
}

// TargetSampleRate is the rate of the PCM delivered downstream.
func (p *Processor) TargetSampleRate() int {
	return p.targetRate
}

// Reset prepares the processor for a new stream. A resampler is only built
// when the input rate differs from the target rate.
func (p *Processor) Reset(sampleRate, channels int) error {
	if channels <= 0 {
		return ErrInvalidChannels
	}
	if sampleRate <= MinSampleRate {
		return fmt.Errorf("%w: %d Hz (must exceed %d Hz)", ErrSampleRateTooLow, sampleRate, MinSampleRate)
	}

	p.bufferOffset = 0
	p.resampler = nil

	if sampleRate != p.targetRate {
		r, err := resampler.New(p.targetRate, sampleRate,
			resampleFilterLength, resamplePhaseShift, resampleLinear, resampleCutoff)
		if err != nil {
			return fmt.Errorf("processor: %w", err)
		}
		p.resampler = r
	}

	p.channels = channels
	return nil
}

// Consume accepts length interleaved samples (length counts every channel).
func (p *Processor) Consume(input []int16, length int) error {
	if err := audio.CheckLength(input, length); err != nil {
		return err
	}
	if p.channels == 0 {
		return ErrNotReset
	}
	if length%p.channels != 0 {
		return ErrChannelMisaligned
	}

	offset := 0
	frames := length / p.channels

	for frames > 0 {
		consumed := p.load(input[offset:], frames)
		offset += consumed * p.channels
		frames -= consumed

		if p.bufferOffset == len(p.buffer) {
			if err := p.resample(); err != nil {
				return err
			}
			if p.bufferOffset == len(p.buffer) {
				return ErrNoProgress
			}
		}
	}

	return nil
}

// Flush pushes whatever is still buffered through the resampler.
func (p *Processor) Flush() error {
	if p.bufferOffset > 0 {
		return p.resample()
	}
	return nil
}

func (p *Processor) load(input []int16, frames int) int {
	frames = min(frames, len(p.buffer)-p.bufferOffset)
	out := p.buffer[p.bufferOffset : p.bufferOffset+frames]

	switch p.channels {
	case 1:
		copy(out, input[:frames])
	case 2:
		for i := range out {
			out[i] = int16((int(input[2*i]) + int(input[2*i+1])) / 2)
		}
	default:
		for i := range out {
			sum := 0
			for c := 0; c < p.channels; c++ {
				sum += int(input[i*p.channels+c])
			}
			out[i] = int16(sum / p.channels)
		}
	}

	p.bufferOffset += frames
	return frames
}

func (p *Processor) resample() error {
	if p.resampler == nil {
		err := p.consumer.Consume(p.buffer, p.bufferOffset)
		p.bufferOffset = 0
		return err
	}

	written, consumed := p.resampler.Resample(p.resampleBuffer, p.buffer,
		p.bufferOffset, len(p.resampleBuffer), true)
	written = min(written, len(p.resampleBuffer))

	if err := p.consumer.Consume(p.resampleBuffer, written); err != nil {
		return err
	}

	remaining := p.bufferOffset - consumed
	if remaining > 0 {
		copy(p.buffer, p.buffer[consumed:p.bufferOffset])
	} else {
		remaining = 0
	}
	p.bufferOffset = remaining

	return nil
}
