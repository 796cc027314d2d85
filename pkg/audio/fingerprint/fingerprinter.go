package fingerprint

import (
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/chromaprint/pkg/audio"
	"github.com/RyanBlaney/chromaprint/pkg/audio/chroma"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fft"
	"github.com/RyanBlaney/chromaprint/pkg/audio/image"
	"github.com/RyanBlaney/chromaprint/pkg/audio/processor"
	"github.com/RyanBlaney/chromaprint/pkg/audio/silence"
)

// Pipeline constants shared by every algorithm.
const (
	SampleRate = 11025
	FrameSize  = 4096
	Overlap    = FrameSize - FrameSize/3
	MinFreq    = 28
	MaxFreq    = 3520
)

// OptionSilenceThreshold is the only option a session accepts.
const OptionSilenceThreshold = "silence_threshold"

// Fingerprinter turns interleaved PCM into a raw fingerprint. One instance
// serves one stream at a time; Start begins a new session.
type Fingerprinter struct {
	preset     Preset
	image      *image.Image
	builder    *image.Builder
	normalizer *chroma.Normalizer
	filter     *chroma.Filter
	chroma     *chroma.Extractor
	framer     *fft.Framer
	silence    *silence.Remover
	processor  *processor.Processor
	calculator *Calculator
	started    bool
	logger     logging.Logger
}

// NewFingerprinter wires the full pipeline for preset on top of service.
func NewFingerprinter(preset Preset, service fft.Service, logger logging.Logger) (*Fingerprinter, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	f := &Fingerprinter{
		preset: preset,
		image:  image.New(chroma.NumBands),
		logger: logger.WithFields(logging.Fields{
			"component": "fingerprinter",
			"algorithm": preset.Algorithm.String(),
		}),
	}

	calculator, err := NewCalculator(preset.Classifiers)
	if err != nil {
		return nil, err
	}
	f.calculator = calculator

	f.builder = image.NewBuilder(f.image)
	f.normalizer = chroma.NewNormalizer(f.builder)

	f.filter, err = chroma.NewFilter(preset.FilterCoefficients, f.normalizer)
	if err != nil {
		return nil, err
	}

	f.chroma, err = chroma.NewExtractor(MinFreq, MaxFreq, FrameSize, SampleRate, f.filter)
	if err != nil {
		return nil, err
	}
	f.chroma.SetInterpolate(preset.Interpolate)

	f.framer, err = fft.NewFramer(FrameSize, Overlap, service, f.chroma)
	if err != nil {
		return nil, fmt.Errorf("failed to create framer: %w", err)
	}

	var head audio.Consumer = f.framer
	if preset.RemoveSilence {
		f.silence = silence.NewRemover(f.framer, preset.SilenceThreshold)
		head = f.silence
	}
	f.processor = processor.New(SampleRate, head)

	return f, nil
}

func (f *Fingerprinter) Preset() Preset {
	return f.preset
}

// SetOption changes a tunable of the pipeline.
func (f *Fingerprinter) SetOption(name string, value int) error {
	if name == OptionSilenceThreshold && f.silence != nil {
		f.silence.SetThreshold(value)
		return nil
	}
	return fmt.Errorf("%w: %q for %s", ErrUnknownOption, name, f.preset.Algorithm)
}

// Start resets every stage and begins a session for PCM at sampleRate with
// the given number of interleaved channels. A failed Start leaves no session
// running.
func (f *Fingerprinter) Start(sampleRate, channels int) error {
	f.started = false
	if err := f.processor.Reset(sampleRate, channels); err != nil {
		return err
	}

	f.framer.Reset()
	f.chroma.Reset()
	f.filter.Reset()
	f.normalizer.Reset()
	if f.silence != nil {
		f.silence.Reset()
	}
	f.image = image.New(chroma.NumBands)
	f.builder.Reset(f.image)
	f.started = true

	f.logger.Debug("Fingerprint session started", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
	})
	return nil
}

// Consume pushes length interleaved samples from input through the pipeline.
func (f *Fingerprinter) Consume(input []int16, length int) error {
	if !f.started {
		return ErrNotStarted
	}
	return f.processor.Consume(input, length)
}

// ReadySize is the number of subfingerprints available from the rows
// accumulated so far.
func (f *Fingerprinter) ReadySize() int {
	return f.calculator.Length(f.image.Rows())
}

// Finish flushes buffered audio and calculates the raw fingerprint.
func (f *Fingerprinter) Finish() ([]uint32, error) {
	if !f.started {
		return nil, ErrNotStarted
	}
	f.started = false

	if err := f.processor.Flush(); err != nil {
		return nil, err
	}

	fp, err := f.calculator.Calculate(f.image)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Fingerprint session finished", logging.Fields{
		"rows":            f.image.Rows(),
		"subfingerprints": len(fp),
	})
	return fp, nil
}
