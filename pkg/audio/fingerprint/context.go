package fingerprint

import (
	"context"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/chromaprint/pkg/audio"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fft"
)

// Version of the fingerprint format produced by this package.
const Version = "1.5.1"

// ItemDurationSamples is the hop between subfingerprints at SampleRate.
const ItemDurationSamples = FrameSize - Overlap

// ItemDuration is the stream time covered by one subfingerprint step.
const ItemDuration = time.Duration(ItemDurationSamples) * time.Second / SampleRate

type contextOptions struct {
	service fft.Service
	backend string
	logger  logging.Logger
}

// Option configures a Context.
type Option func(*contextOptions)

// WithFFTBackend selects a built-in transform by name.
func WithFFTBackend(backend string) Option {
	return func(o *contextOptions) { o.backend = backend }
}

// WithFFTService injects a transform implementation; it wins over WithFFTBackend.
func WithFFTService(service fft.Service) Option {
	return func(o *contextOptions) { o.service = service }
}

func WithLogger(logger logging.Logger) Option {
	return func(o *contextOptions) { o.logger = logger }
}

// Context is the high level entry point: start a session, feed PCM, finish,
// then read the fingerprint in any representation.
type Context struct {
	algorithm     Algorithm
	fingerprinter *Fingerprinter
	fingerprint   []uint32
	finished      bool
	sampleRate    int
	channels      int
	samplesFed    int
	logger        logging.Logger
}

func NewContext(algorithm Algorithm, opts ...Option) (*Context, error) {
	o := contextOptions{backend: fft.BackendDSP}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewDefaultLogger()
	}

	preset, err := PresetFor(algorithm)
	if err != nil {
		return nil, NewError(StageSetup, ErrCodeConfig, "failed to load preset", err)
	}

	service := o.service
	if service == nil {
		service, err = fft.NewService(o.backend)
		if err != nil {
			return nil, NewError(StageSetup, ErrCodeConfig, "failed to create FFT service", err)
		}
	}

	fp, err := NewFingerprinter(preset, service, o.logger)
	if err != nil {
		return nil, NewError(StageSetup, ErrCodeConfig, "failed to build pipeline", err)
	}

	return &Context{
		algorithm:     algorithm,
		fingerprinter: fp,
		logger:        o.logger,
	}, nil
}

func (c *Context) Algorithm() Algorithm { return c.algorithm }

func (c *Context) Version() string { return Version }

func (c *Context) SetOption(name string, value int) error {
	return c.fingerprinter.SetOption(name, value)
}

// Start discards any previous result and begins a new session.
func (c *Context) Start(sampleRate, channels int) error {
	c.fingerprint = nil
	c.finished = false
	c.samplesFed = 0
	if err := c.fingerprinter.Start(sampleRate, channels); err != nil {
		return NewError(StageSetup, ErrCodeAudio, "failed to start session", err)
	}
	c.sampleRate = sampleRate
	c.channels = channels
	return nil
}

// Feed pushes size interleaved samples from data.
func (c *Context) Feed(data []int16, size int) error {
	if err := c.fingerprinter.Consume(data, size); err != nil {
		return NewError(StageConsume, ErrCodeAudio, "failed to consume audio", err)
	}
	c.samplesFed += size
	return nil
}

// Consume makes Context an audio.Consumer.
func (c *Context) Consume(input []int16, length int) error {
	return c.Feed(input, length)
}

func (c *Context) Finish() error {
	fp, err := c.fingerprinter.Finish()
	if err != nil {
		return NewError(StageFinish, ErrCodeCalculation, "failed to calculate fingerprint", err)
	}
	c.fingerprint = fp
	c.finished = true
	return nil
}

// FingerprintPCM runs a complete session over pcm, pushing it in chunks of
// bufferSize frames.
func (c *Context) FingerprintPCM(ctx context.Context, pcm []int16, sampleRate, channels, bufferSize int) error {
	if err := c.Start(sampleRate, channels); err != nil {
		return err
	}
	if err := audio.Feed(ctx, pcm, channels, bufferSize, c); err != nil {
		return err
	}
	return c.Finish()
}

// ReadySize is the number of subfingerprints the current session could
// produce without more input.
func (c *Context) ReadySize() int {
	return c.fingerprinter.ReadySize()
}

// Fingerprint returns the compressed base64 fingerprint.
func (c *Context) Fingerprint() (string, error) {
	if !c.finished {
		return "", ErrNoFingerprintYet
	}
	encoded, err := EncodeFingerprint(c.fingerprint, int(c.algorithm), true)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// RawFingerprint returns a copy of the subfingerprints.
func (c *Context) RawFingerprint() []uint32 {
	return append([]uint32(nil), c.fingerprint...)
}

func (c *Context) Hash() uint32 {
	return SimHash(c.fingerprint)
}

// Duration is the length of audio fed in the current session.
func (c *Context) Duration() time.Duration {
	if c.sampleRate <= 0 || c.channels <= 0 {
		return 0
	}
	frames := c.samplesFed / c.channels
	return time.Duration(frames) * time.Second / time.Duration(c.sampleRate)
}

// Result snapshots the finished session.
func (c *Context) Result() (*AudioFingerprint, error) {
	encoded, err := c.Fingerprint()
	if err != nil {
		return nil, err
	}

	return &AudioFingerprint{
		Algorithm:       c.algorithm.String(),
		AlgorithmID:     int(c.algorithm),
		Version:         Version,
		Fingerprint:     encoded,
		Raw:             c.RawFingerprint(),
		Hash:            c.Hash(),
		Subfingerprints: len(c.fingerprint),
		Duration:        c.Duration(),
		SampleRate:      c.sampleRate,
		Channels:        c.channels,
	}, nil
}
