package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/stream/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/chromaprint/configs"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint"
)

var tones = []float64{262, 330, 392, 523, 440, 349}

func toneAudio(sampleRate, channels int, seconds float64) *common.AudioData {
	frames := int(seconds * float64(sampleRate))
	pcm := make([]float64, frames*channels)
	noteLen := sampleRate / 2

	for i := 0; i < frames; i++ {
		freq := tones[(i/noteLen)%len(tones)]
		ts := float64(i) / float64(sampleRate)
		v := 0.2*math.Sin(2*math.Pi*freq*ts) + 0.05*math.Sin(2*math.Pi*2*freq*ts)
		for c := 0; c < channels; c++ {
			pcm[i*channels+c] = v
		}
	}

	return &common.AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   time.Duration(seconds * float64(time.Second)),
	}
}

func staticLoader(audio map[string]*common.AudioData) Loader {
	return LoaderFunc(func(ctx context.Context, input string) (*common.AudioData, time.Duration, error) {
		data, ok := audio[input]
		if !ok {
			return nil, 0, errors.New("not found")
		}
		copied := *data
		copied.PCM = append([]float64(nil), data.PCM...)
		return &copied, 5 * time.Millisecond, nil
	})
}

func newTestEngine(t *testing.T, loader Loader, mutate func(*EngineConfig)) *Engine {
	t.Helper()

	cfg, err := NewEngineConfig(configs.GetDefaultConfig())
	require.NoError(t, err)
	cfg.Loader = loader
	if mutate != nil {
		mutate(cfg)
	}

	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

func TestNewEngineConfig(t *testing.T) {
	cfg := configs.GetDefaultConfig()
	cfg.Fingerprint.Algorithm = "fp4"
	cfg.Compare.MaxOffset = 12
	cfg.Fingerprint.ContentType = " Spoken "

	ec, err := NewEngineConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, fingerprint.FP4, ec.Algorithm)
	assert.Equal(t, 12, ec.Compare.MaxOffset)
	assert.Equal(t, "news", ec.ContentType)
	assert.Equal(t, cfg.Stream.SegmentDuration, ec.SegmentDuration)

	cfg.Fingerprint.Algorithm = "fp7"
	_, err = NewEngineConfig(cfg)
	assert.ErrorIs(t, err, fingerprint.ErrUnknownAlgorithm)
}

func TestNewEngineRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewEngine(&EngineConfig{Algorithm: fingerprint.Algorithm(9)})
	assert.ErrorIs(t, err, fingerprint.ErrUnknownAlgorithm)
}

func TestMeasure(t *testing.T) {
	e := newTestEngine(t, staticLoader(map[string]*common.AudioData{
		"song.wav": toneAudio(11025, 1, 10),
	}), nil)

	m := e.Measure(context.Background(), "song.wav")
	require.NoError(t, m.Error)
	require.True(t, m.Succeeded())

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, InputFile, m.Kind)
	assert.Equal(t, 5*time.Millisecond, m.TimeToFirstByte)
	assert.Equal(t, 11025, m.SampleRate)
	assert.Equal(t, 1, m.Channels)
	assert.False(t, m.Truncated)
	assert.True(t, m.Validation.IsValid)

	fp := m.Fingerprint
	assert.Equal(t, m.ID, fp.ID)
	assert.Equal(t, "song.wav", fp.Source)
	assert.Equal(t, "fp2", fp.Algorithm)
	assert.Equal(t, 59, fp.Subfingerprints)
	assert.Len(t, fp.Raw, 59)
	assert.NotEmpty(t, fp.Fingerprint)

	raw, alg, err := fingerprint.DecodeFingerprint([]byte(fp.Fingerprint), true)
	require.NoError(t, err)
	assert.Equal(t, 1, alg)
	assert.Equal(t, fp.Raw, raw)
}

func TestMeasureStreamKind(t *testing.T) {
	e := newTestEngine(t, staticLoader(map[string]*common.AudioData{
		"https://example.com/live.m3u8": toneAudio(11025, 2, 4),
	}), nil)

	m := e.Measure(context.Background(), "https://example.com/live.m3u8")
	require.NoError(t, m.Error)
	assert.Equal(t, InputStream, m.Kind)
	assert.Equal(t, 2, m.Channels)
}

func TestMeasureTruncates(t *testing.T) {
	e := newTestEngine(t, staticLoader(map[string]*common.AudioData{
		"long.mp3": toneAudio(11025, 2, 10),
	}), func(c *EngineConfig) { c.MaxDuration = 4 * time.Second })

	m := e.Measure(context.Background(), "long.mp3")
	require.NoError(t, m.Error)
	assert.True(t, m.Truncated)
	assert.Equal(t, 4*time.Second, m.AudioDuration)
	assert.Less(t, m.Fingerprint.Subfingerprints, 59)
}

func TestMeasureLoadFailure(t *testing.T) {
	e := newTestEngine(t, staticLoader(nil), nil)

	m := e.Measure(context.Background(), "missing.wav")
	require.Error(t, m.Error)
	assert.Contains(t, m.Error.Error(), "failed to load audio")
	assert.False(t, m.Succeeded())
}

func TestMeasureInvalidAudio(t *testing.T) {
	e := newTestEngine(t, staticLoader(map[string]*common.AudioData{
		"empty.wav": {SampleRate: 44100, Channels: 2},
	}), nil)

	m := e.Measure(context.Background(), "empty.wav")
	require.Error(t, m.Error)
	assert.False(t, m.Validation.IsValid)
	assert.Contains(t, m.Validation.ValidationErrors, "no audio data")
}

func TestMeasureCancelled(t *testing.T) {
	e := newTestEngine(t, staticLoader(map[string]*common.AudioData{
		"song.wav": toneAudio(11025, 1, 10),
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := e.Measure(ctx, "song.wav")
	assert.ErrorIs(t, m.Error, context.Canceled)
}

func TestCompare(t *testing.T) {
	e := newTestEngine(t, staticLoader(map[string]*common.AudioData{
		"a.wav": toneAudio(11025, 1, 10),
		"b.wav": toneAudio(11025, 2, 10),
	}), nil)

	a := e.Measure(context.Background(), "a.wav")
	b := e.Measure(context.Background(), "b.wav")
	require.True(t, a.Succeeded())
	require.True(t, b.Succeeded())

	c := e.Compare(a, b)
	require.NoError(t, c.Error)
	assert.Equal(t, 0.0, c.Result.BitErrorRate)
	assert.Equal(t, 0, c.Result.Offset)
	assert.Equal(t, 0, c.Result.HashDistance)
	assert.True(t, c.Result.Match)
}

func TestCompareFailures(t *testing.T) {
	e := newTestEngine(t, staticLoader(map[string]*common.AudioData{
		"a.wav": toneAudio(11025, 1, 10),
	}), nil)

	ok := e.Measure(context.Background(), "a.wav")
	failed := e.Measure(context.Background(), "nope.wav")

	assert.Error(t, e.Compare(ok, failed).Error)

	other := *ok
	otherFP := *ok.Fingerprint
	otherFP.AlgorithmID = 0
	otherFP.Algorithm = "fp1"
	other.Fingerprint = &otherFP
	assert.Error(t, e.Compare(ok, &other).Error)
}

func TestIsLocalFile(t *testing.T) {
	assert.True(t, IsLocalFile("/tmp/a.wav"))
	assert.True(t, IsLocalFile("./a.mp3"))
	assert.True(t, IsLocalFile("file:///tmp/a.wav"))
	assert.True(t, IsLocalFile("song.flac"))
	assert.False(t, IsLocalFile("http://example.com/stream"))
	assert.False(t, IsLocalFile("https://example.com/live.m3u8"))
}

func TestValidateAudio(t *testing.T) {
	v := validateAudio(&common.AudioData{PCM: []float64{0.5, 1.5, -2, 0}, SampleRate: 8000, Channels: 2})
	assert.True(t, v.IsValid)
	assert.Equal(t, 2, v.Clipped)

	v = validateAudio(&common.AudioData{PCM: []float64{0, 0, 0}, SampleRate: 8000, Channels: 2})
	assert.False(t, v.IsValid)

	v = validateAudio(&common.AudioData{PCM: []float64{math.NaN()}, SampleRate: 8000, Channels: 1})
	assert.False(t, v.IsValid)
}
