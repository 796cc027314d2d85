package fft

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/chromaprint/pkg/audio"
)

func TestCombinedBuffer(t *testing.T) {
	c := NewCombinedBuffer([]int16{1, 2, 3}, []int16{4, 5, 6, 7})
	assert.Equal(t, 7, c.Size())
	assert.Equal(t, int16(1), c.At(0))
	assert.Equal(t, int16(4), c.At(3))

	dst := make([]int16, 5)
	assert.Equal(t, 5, c.Read(dst, 0, 5))
	assert.Equal(t, []int16{1, 2, 3, 4, 5}, dst)

	c.Shift(2)
	assert.Equal(t, 5, c.Size())
	assert.Equal(t, int16(3), c.At(0))

	n := c.Read(dst, 2, 5)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int16{5, 6, 7}, dst[:n])

	c.Shift(100)
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, 0, c.Flush(dst))
}

func TestCombinedBufferFlushIntoFirstSlice(t *testing.T) {
	backing := []int16{1, 2, 3, 4, 0, 0, 0, 0}
	c := NewCombinedBuffer(backing[:4], []int16{5, 6})
	c.Shift(3)

	n := c.Flush(backing)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int16{4, 5, 6}, backing[:n])
}

type recordingService struct {
	frameSize int
	window    []float64
	frames    [][]int16
}

func (s *recordingService) Initialize(frameSize int, window []float64) error {
	s.frameSize = frameSize
	s.window = window
	return nil
}

func (s *recordingService) ComputeFrame(input []int16, output []float64) {
	s.frames = append(s.frames, append([]int16(nil), input...))
	for i := range output {
		output[i] = float64(input[i])
	}
}

type frameCounter struct {
	frames int
	first  []float64
}

func (c *frameCounter) Consume(frame []float64) {
	if c.frames == 0 {
		c.first = append([]float64(nil), frame...)
	}
	c.frames++
}

func ramp(from, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(from + i)
	}
	return out
}

func TestFramerValidation(t *testing.T) {
	_, err := NewFramer(1, 0, &recordingService{}, &frameCounter{})
	assert.Error(t, err)
	_, err = NewFramer(8, 8, &recordingService{}, &frameCounter{})
	assert.Error(t, err)
	_, err = NewFramer(8, -1, &recordingService{}, &frameCounter{})
	assert.Error(t, err)
}

func TestFramerOverlappingFrames(t *testing.T) {
	svc := &recordingService{}
	counter := &frameCounter{}
	f, err := NewFramer(8, 6, svc, counter)
	require.NoError(t, err)

	assert.Equal(t, 8, svc.frameSize)
	assert.Len(t, svc.window, 8)
	assert.Equal(t, 2, f.Increment())

	require.NoError(t, f.Consume(ramp(0, 7), 7))
	assert.Equal(t, 0, counter.frames)
	assert.Equal(t, 7, f.Buffered())

	require.NoError(t, f.Consume(ramp(7, 3), 3))
	require.Len(t, svc.frames, 2)
	assert.Equal(t, ramp(0, 8), svc.frames[0])
	assert.Equal(t, ramp(2, 8), svc.frames[1])
	assert.Equal(t, 6, f.Buffered())

	require.NoError(t, f.Consume(ramp(10, 2), 2))
	require.Len(t, svc.frames, 3)
	assert.Equal(t, ramp(4, 8), svc.frames[2])

	f.Reset()
	assert.Equal(t, 0, f.Buffered())
	assert.ErrorIs(t, f.Consume(nil, -1), audio.ErrNegativeLength)
}

func TestFramerChunkingDoesNotChangeFrames(t *testing.T) {
	input := ramp(-500, 1000)

	whole := &recordingService{}
	f1, err := NewFramer(64, 48, whole, &frameCounter{})
	require.NoError(t, err)
	require.NoError(t, f1.Consume(input, len(input)))

	chunked := &recordingService{}
	f2, err := NewFramer(64, 48, chunked, &frameCounter{})
	require.NoError(t, err)
	for offset := 0; offset < len(input); offset += 37 {
		end := min(offset+37, len(input))
		require.NoError(t, f2.Consume(input[offset:end], end-offset))
	}

	assert.Equal(t, whole.frames, chunked.frames)
	assert.Len(t, whole.frames, (1000-64)/16+1)
}

func TestHammingWindow(t *testing.T) {
	w := HammingWindow(5)
	assert.InDelta(t, 0.08, w[0], 1e-12)
	assert.InDelta(t, 1.0, w[2], 1e-12)
	assert.InDelta(t, 0.08, w[4], 1e-12)
	assert.InDelta(t, w[1], w[3], 1e-12)
}

func TestFramerScalesWindow(t *testing.T) {
	svc := &recordingService{}
	_, err := NewFramer(16, 8, svc, &frameCounter{})
	require.NoError(t, err)

	hamming := HammingWindow(16)
	for i := range hamming {
		assert.InDelta(t, hamming[i]/math.MaxInt16, svc.window[i], 1e-15)
	}
}

func TestNewService(t *testing.T) {
	s, err := NewService("")
	require.NoError(t, err)
	assert.IsType(t, &DSPService{}, s)

	s, err = NewService("GONUM")
	require.NoError(t, err)
	assert.IsType(t, &GonumService{}, s)

	_, err = NewService("fftw")
	assert.Error(t, err)
}

func TestServiceInitializeValidation(t *testing.T) {
	for _, s := range []Service{&DSPService{}, &GonumService{}} {
		assert.Error(t, s.Initialize(8, make([]float64, 4)))
		assert.Error(t, s.Initialize(0, nil))
	}
}

func TestServicesFindSinePeak(t *testing.T) {
	const n = 1024
	window := HammingWindow(n)
	input := make([]int16, n)
	for i := range input {
		// exactly bin 64
		input[i] = int16(10000 * math.Sin(2*math.Pi*64*float64(i)/n))
	}

	for _, s := range []Service{&DSPService{}, &GonumService{}} {
		require.NoError(t, s.Initialize(n, window))
		out := make([]float64, n)
		s.ComputeFrame(input, out)

		peak := 0
		for i := 1; i <= n/2; i++ {
			if out[i] > out[peak] {
				peak = i
			}
		}
		assert.Equal(t, 64, peak, "%T", s)
		assert.InDelta(t, out[64], out[n-64], out[64]*1e-9, "%T", s)
	}
}

func TestServicesAgree(t *testing.T) {
	const n = 4096
	rng := rand.New(rand.NewSource(7))
	input := make([]int16, n)
	for i := range input {
		input[i] = int16(rng.Intn(20000) - 10000)
	}
	window := HammingWindow(n)
	for i := range window {
		window[i] /= math.MaxInt16
	}

	dsp, gonum := &DSPService{}, &GonumService{}
	require.NoError(t, dsp.Initialize(n, window))
	require.NoError(t, gonum.Initialize(n, window))

	a := make([]float64, n)
	b := make([]float64, n)
	dsp.ComputeFrame(input, a)
	gonum.ComputeFrame(input, b)

	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-6*(1+a[i]), "bin %d", i)
	}
}
