// Package fft cuts the mono PCM stream into overlapping frames and runs each
// one through a pluggable spectral analysis Service.
package fft

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/chromaprint/pkg/audio"
)

// FrameConsumer receives one spectrum per analysis frame. The slice is reused
// for the next frame.
type FrameConsumer interface {
	Consume(frame []float64)
}

// Framer implements audio.Consumer. It buffers samples until a full frame is
// available, then advances by frameSize-overlap samples per frame.
type Framer struct {
	window       []float64
	frameSize    int
	increment    int
	buffer       []int16
	bufferOffset int
	frame        []float64
	input        []int16
	service      Service
	consumer     FrameConsumer
}

func NewFramer(frameSize, overlap int, service Service, consumer FrameConsumer) (*Framer, error) {
	if frameSize <= 1 {
		return nil, fmt.Errorf("fft: frame size must be greater than 1, got %d", frameSize)
	}
	if overlap < 0 || overlap >= frameSize {
		return nil, fmt.Errorf("fft: overlap %d out of range for frame size %d", overlap, frameSize)
	}

	window := HammingWindow(frameSize)
	for i := range window {
		window[i] /= math.MaxInt16
	}

	if err := service.Initialize(frameSize, window); err != nil {
		return nil, fmt.Errorf("fft: initialize service: %w", err)
	}

	return &Framer{
		window:    window,
		frameSize: frameSize,
		increment: frameSize - overlap,
		buffer:    make([]int16, frameSize),
		frame:     make([]float64, frameSize),
		input:     make([]int16, frameSize),
		service:   service,
		consumer:  consumer,
	}, nil
}

func (f *Framer) FrameSize() int {
	return f.frameSize
}

func (f *Framer) Increment() int {
	return f.increment
}

// Buffered is the number of carried-over samples waiting for the next frame.
func (f *Framer) Buffered() int {
	return f.bufferOffset
}

// Reset drops carried-over samples.
func (f *Framer) Reset() {
	f.bufferOffset = 0
}

func (f *Framer) Consume(input []int16, length int) error {
	if err := audio.CheckLength(input, length); err != nil {
		return err
	}

	if f.bufferOffset+length < f.frameSize {
		copy(f.buffer[f.bufferOffset:], input[:length])
		f.bufferOffset += length
		return nil
	}

	combined := NewCombinedBuffer(f.buffer[:f.bufferOffset], input[:length])
	for combined.Size() >= f.frameSize {
		combined.Read(f.input, 0, f.frameSize)
		f.service.ComputeFrame(f.input, f.frame)
		f.consumer.Consume(f.frame)
		combined.Shift(f.increment)
	}

	f.bufferOffset = combined.Flush(f.buffer)
	return nil
}

// HammingWindow returns an n-point symmetric Hamming window.
func HammingWindow(n int) []float64 {
	window := make([]float64, n)
	if n == 1 {
		window[0] = 1
		return window
	}
	scale := 2.0 * math.Pi / float64(n-1)
	for i := range window {
		window[i] = 0.54 - 0.46*math.Cos(scale*float64(i))
	}
	return window
}
