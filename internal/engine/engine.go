package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/latency-benchmark-common/stream/common"
	"github.com/google/uuid"

	"github.com/RyanBlaney/chromaprint/configs"
	"github.com/RyanBlaney/chromaprint/pkg/audio"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint"
)

// Engine fingerprints inputs and compares the results
type Engine struct {
	logger           logging.Logger
	loader           Loader
	algorithm        fingerprint.Algorithm
	silenceThreshold int
	fftBackend       string
	bufferSize       int
	maxDuration      time.Duration
	compare          fingerprint.CompareOptions
}

// EngineConfig contains configuration for the engine
type EngineConfig struct {
	Algorithm        fingerprint.Algorithm
	SilenceThreshold int // 0 keeps the preset value
	FFTBackend       string
	BufferSize       int
	MaxDuration      time.Duration
	ContentType      string
	StreamTimeout    time.Duration
	OverallTimeout   time.Duration
	SegmentDuration  time.Duration
	Compare          fingerprint.CompareOptions
	Logger           logging.Logger
	Loader           Loader // nil selects file or stream loading by input
}

// NewEngineConfig derives engine settings from the application config
func NewEngineConfig(cfg *configs.Config) (*EngineConfig, error) {
	algorithm, err := fingerprint.ParseAlgorithm(cfg.Fingerprint.Algorithm)
	if err != nil {
		return nil, err
	}

	return &EngineConfig{
		Algorithm:        algorithm,
		SilenceThreshold: cfg.Fingerprint.SilenceThreshold,
		FFTBackend:       cfg.Fingerprint.FFTBackend,
		BufferSize:       cfg.Fingerprint.BufferSize,
		MaxDuration:      cfg.Fingerprint.MaxDuration,
		ContentType:      audio.ParseContentType(cfg.Fingerprint.ContentType).String(),
		StreamTimeout:    cfg.Stream.Timeout,
		OverallTimeout:   cfg.Stream.OverallTimeout,
		SegmentDuration:  cfg.Stream.SegmentDuration,
		Compare:          cfg.Compare.CompareOptions(),
	}, nil
}

// NewEngine creates a new engine
func NewEngine(config *EngineConfig) (*Engine, error) {
	if _, err := fingerprint.PresetFor(config.Algorithm); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	loader := config.Loader
	if loader == nil {
		loader = &SourceLoader{
			ContentType:     config.ContentType,
			StreamTimeout:   config.StreamTimeout,
			OverallTimeout:  config.OverallTimeout,
			SegmentDuration: config.SegmentDuration,
		}
	}

	bufferSize := config.BufferSize
	if bufferSize <= 0 {
		bufferSize = audio.DefaultBufferSize
	}

	return &Engine{
		logger:           logger.WithFields(logging.Fields{"component": "engine"}),
		loader:           loader,
		algorithm:        config.Algorithm,
		silenceThreshold: config.SilenceThreshold,
		fftBackend:       config.FFTBackend,
		bufferSize:       bufferSize,
		maxDuration:      config.MaxDuration,
		compare:          config.Compare,
	}, nil
}

// Algorithm returns the configured algorithm
func (e *Engine) Algorithm() fingerprint.Algorithm {
	return e.algorithm
}

// Measure loads and fingerprints a single input. Failures are reported on
// the returned measurement.
func (e *Engine) Measure(ctx context.Context, input string) *Measurement {
	measurement := &Measurement{
		ID:        uuid.NewString(),
		Input:     input,
		Kind:      InputStream,
		Timestamp: time.Now(),
	}
	if IsLocalFile(input) {
		measurement.Kind = InputFile
	}

	e.logger.Debug("Starting measurement", logging.Fields{
		"id":        measurement.ID,
		"input":     input,
		"kind":      measurement.Kind,
		"algorithm": e.algorithm.String(),
	})

	totalStart := time.Now()

	// Step 1: Load audio and measure TTFB
	loadStart := time.Now()
	audioData, ttfb, err := e.loader.Load(ctx, input)
	if err != nil {
		measurement.Error = fmt.Errorf("failed to load audio: %w", err)
		return measurement
	}
	measurement.LoadTime = time.Since(loadStart)
	measurement.TimeToFirstByte = ttfb

	measurement.Truncated = e.truncate(audioData)
	measurement.SampleRate = audioData.SampleRate
	measurement.Channels = audioData.Channels
	measurement.AudioDuration = audioData.Duration

	// Step 2: Validate
	measurement.Validation = validateAudio(audioData)
	if !measurement.Validation.IsValid {
		measurement.Error = fmt.Errorf("invalid audio: %s", strings.Join(measurement.Validation.ValidationErrors, "; "))
		return measurement
	}

	// Step 3: Fingerprint
	fingerprintStart := time.Now()
	fp, err := e.FingerprintAudio(ctx, audioData)
	if err != nil {
		measurement.Error = fmt.Errorf("failed to generate fingerprint: %w", err)
		return measurement
	}
	measurement.FingerprintTime = time.Since(fingerprintStart)

	fp.ID = measurement.ID
	fp.Source = input
	fp.Timestamp = measurement.Timestamp
	measurement.Fingerprint = fp
	measurement.TotalProcessingTime = time.Since(totalStart)

	e.logger.Debug("Measurement completed", logging.Fields{
		"id":                  measurement.ID,
		"subfingerprints":     fp.Subfingerprints,
		"ttfb_ms":             measurement.TimeToFirstByte.Milliseconds(),
		"fingerprint_time_ms": measurement.FingerprintTime.Milliseconds(),
		"total_processing_ms": measurement.TotalProcessingTime.Milliseconds(),
		"audio_duration_s":    measurement.AudioDuration.Seconds(),
	})

	return measurement
}

// FingerprintAudio runs one fingerprint session over decoded audio
func (e *Engine) FingerprintAudio(ctx context.Context, audioData *common.AudioData) (*fingerprint.AudioFingerprint, error) {
	fpCtx, err := fingerprint.NewContext(e.algorithm,
		fingerprint.WithFFTBackend(e.fftBackend),
		fingerprint.WithLogger(e.logger),
	)
	if err != nil {
		return nil, err
	}

	if e.silenceThreshold > 0 {
		if err := fpCtx.SetOption(fingerprint.OptionSilenceThreshold, e.silenceThreshold); err != nil {
			return nil, err
		}
	}

	pcm := audio.FloatToPCM16(audioData.PCM)
	if err := fpCtx.FingerprintPCM(ctx, pcm, audioData.SampleRate, audioData.Channels, e.bufferSize); err != nil {
		return nil, err
	}

	return fpCtx.Result()
}

// Compare matches two successful measurements
func (e *Engine) Compare(reference, candidate *Measurement) *Comparison {
	comparison := &Comparison{
		Reference: reference,
		Candidate: candidate,
		Timestamp: time.Now(),
	}

	if !reference.Succeeded() || !candidate.Succeeded() {
		comparison.Error = fmt.Errorf("cannot compare: one or both measurements failed")
		return comparison
	}

	if reference.Fingerprint.AlgorithmID != candidate.Fingerprint.AlgorithmID {
		comparison.Error = fmt.Errorf("cannot compare %s with %s fingerprints",
			reference.Fingerprint.Algorithm, candidate.Fingerprint.Algorithm)
		return comparison
	}

	result, err := fingerprint.Compare(reference.Fingerprint.Raw, candidate.Fingerprint.Raw, e.compare)
	if err != nil {
		comparison.Error = err
		return comparison
	}
	comparison.Result = result

	e.logger.Debug("Comparison completed", logging.Fields{
		"reference":      reference.Input,
		"candidate":      candidate.Input,
		"bit_error_rate": result.BitErrorRate,
		"offset":         result.Offset,
		"match":          result.Match,
	})

	return comparison
}

// truncate caps decoded audio at the configured duration
func (e *Engine) truncate(audioData *common.AudioData) bool {
	if e.maxDuration <= 0 || audioData.SampleRate <= 0 || audioData.Channels <= 0 {
		return false
	}

	maxSamples := int(e.maxDuration.Seconds()*float64(audioData.SampleRate)) * audioData.Channels
	if len(audioData.PCM) <= maxSamples {
		return false
	}

	audioData.PCM = audioData.PCM[:maxSamples]
	audioData.Duration = e.maxDuration
	return true
}

// validateAudio checks that decoded audio can be fingerprinted
func validateAudio(audioData *common.AudioData) *AudioValidation {
	validation := &AudioValidation{
		IsValid:          true,
		ValidationErrors: []string{},
	}

	if audioData.SampleRate <= 0 {
		validation.IsValid = false
		validation.ValidationErrors = append(validation.ValidationErrors, "invalid sample rate")
	}

	if audioData.Channels <= 0 {
		validation.IsValid = false
		validation.ValidationErrors = append(validation.ValidationErrors, "invalid channel count")
	}

	if len(audioData.PCM) == 0 {
		validation.IsValid = false
		validation.ValidationErrors = append(validation.ValidationErrors, "no audio data")
	}

	if audioData.Channels > 0 && len(audioData.PCM)%audioData.Channels != 0 {
		validation.IsValid = false
		validation.ValidationErrors = append(validation.ValidationErrors, "sample count is not a multiple of the channel count")
	}

	for _, s := range audioData.PCM {
		if math.IsNaN(s) {
			validation.IsValid = false
			validation.ValidationErrors = append(validation.ValidationErrors, "audio contains NaN samples")
			break
		}
		if s > 1 || s < -1 {
			validation.Clipped++
		}
	}

	return validation
}
