package fft

import (
	"fmt"
	"strings"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Service turns one frame of samples into a power spectrum of the same
// length. Implementations apply the window handed to Initialize.
type Service interface {
	Initialize(frameSize int, window []float64) error
	ComputeFrame(input []int16, output []float64)
}

const (
	BackendDSP   = "dsp"
	BackendGonum = "gonum"
)

// NewService returns the Service registered under backend.
func NewService(backend string) (Service, error) {
	switch strings.ToLower(backend) {
	case "", BackendDSP:
		return &DSPService{}, nil
	case BackendGonum:
		return &GonumService{}, nil
	default:
		return nil, fmt.Errorf("fft: unknown backend %q", backend)
	}
}

type windowed struct {
	frameSize int
	window    []float64
	buf       []float64
}

func (w *windowed) init(frameSize int, window []float64) error {
	if frameSize <= 0 {
		return fmt.Errorf("fft: invalid frame size %d", frameSize)
	}
	if len(window) != frameSize {
		return fmt.Errorf("fft: window length %d does not match frame size %d", len(window), frameSize)
	}
	w.frameSize = frameSize
	w.window = window
	w.buf = make([]float64, frameSize)
	return nil
}

func (w *windowed) apply(input []int16) []float64 {
	for i := range w.buf {
		w.buf[i] = float64(input[i]) * w.window[i]
	}
	return w.buf
}

// DSPService computes spectra with github.com/mjibson/go-dsp.
type DSPService struct {
	windowed
}

func (s *DSPService) Initialize(frameSize int, window []float64) error {
	return s.init(frameSize, window)
}

func (s *DSPService) ComputeFrame(input []int16, output []float64) {
	coeffs := dspfft.FFTReal(s.apply(input))
	for i := range output[:s.frameSize] {
		re, im := real(coeffs[i]), imag(coeffs[i])
		output[i] = re*re + im*im
	}
}

// GonumService computes spectra with gonum's real FFT. Only the lower half is
// computed; the upper half mirrors it.
type GonumService struct {
	windowed
	fft    *fourier.FFT
	coeffs []complex128
}

func (s *GonumService) Initialize(frameSize int, window []float64) error {
	if err := s.init(frameSize, window); err != nil {
		return err
	}
	s.fft = fourier.NewFFT(frameSize)
	s.coeffs = make([]complex128, frameSize/2+1)
	return nil
}

func (s *GonumService) ComputeFrame(input []int16, output []float64) {
	s.coeffs = s.fft.Coefficients(s.coeffs, s.apply(input))
	for i, c := range s.coeffs {
		re, im := real(c), imag(c)
		output[i] = re*re + im*im
	}
	for i := len(s.coeffs); i < s.frameSize; i++ {
		output[i] = output[s.frameSize-i]
	}
}
