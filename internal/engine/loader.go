package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/stream"
	"github.com/RyanBlaney/latency-benchmark-common/stream/common"
	"github.com/RyanBlaney/sonido-sonar/transcode"
)

// Loader fetches decoded audio for an input and reports the time to first byte
type Loader interface {
	Load(ctx context.Context, input string) (*common.AudioData, time.Duration, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context, input string) (*common.AudioData, time.Duration, error)

func (f LoaderFunc) Load(ctx context.Context, input string) (*common.AudioData, time.Duration, error) {
	return f(ctx, input)
}

// SourceLoader decodes local files and captures HTTP(S) streams
type SourceLoader struct {
	ContentType     string
	StreamTimeout   time.Duration
	OverallTimeout  time.Duration
	SegmentDuration time.Duration
}

// Load dispatches on the input form
func (l *SourceLoader) Load(ctx context.Context, input string) (*common.AudioData, time.Duration, error) {
	if IsLocalFile(input) {
		return l.loadLocalFile(input)
	}
	return l.loadStreamURL(ctx, input)
}

// IsLocalFile reports whether input names a file rather than a stream URL
func IsLocalFile(input string) bool {
	return strings.HasPrefix(input, "file://") ||
		(!strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://"))
}

// loadLocalFile decodes a local file to float PCM
func (l *SourceLoader) loadLocalFile(filePath string) (*common.AudioData, time.Duration, error) {
	cleanPath := strings.TrimPrefix(filePath, "file://")

	decoder := transcode.NewNormalizingDecoder(l.ContentType)
	anyData, err := decoder.DecodeFile(cleanPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode audio file: %w", err)
	}

	audioData := common.ConvertToAudioData(anyData)
	if audioData == nil {
		return nil, 0, fmt.Errorf("decoder returned unexpected type: %T", anyData)
	}

	return audioData, 0, nil
}

// loadStreamURL captures one segment of a live stream
func (l *SourceLoader) loadStreamURL(ctx context.Context, url string) (*common.AudioData, time.Duration, error) {
	managerConfig := &stream.ManagerConfig{
		StreamTimeout:        l.StreamTimeout,
		OverallTimeout:       l.OverallTimeout,
		MaxConcurrentStreams: 1,
		ResultBufferSize:     1,
	}
	manager := stream.NewManagerWithConfig(managerConfig)

	results, err := manager.ExtractAudioSequential(ctx, []string{url}, l.SegmentDuration)
	if err != nil {
		return nil, 0, err
	}

	if len(results.Results) == 0 {
		return nil, 0, fmt.Errorf("no results from stream extraction")
	}
	if results.Results[0].Error != nil {
		return nil, 0, results.Results[0].Error
	}
	if results.Results[0].AudioData == nil {
		return nil, 0, fmt.Errorf("stream extraction returned no audio")
	}

	return results.Results[0].AudioData, results.Results[0].TimeToFirstByte, nil
}
