package configs

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/chromaprint/pkg/audio/fft"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint"
)

// OutputFormats lists the accepted values of output_format.
var OutputFormats = []string{"table", "json", "yaml", "csv", "msgpack"}

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	ConfigDir    string `mapstructure:"config_dir" yaml:"config_dir"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`

	// Fingerprint pipeline configuration
	Fingerprint FingerprintConfig `mapstructure:"fingerprint" yaml:"fingerprint"`

	// Stream capture configuration
	Stream StreamConfig `mapstructure:"stream" yaml:"stream"`

	// Fingerprint comparison thresholds
	Compare CompareConfig `mapstructure:"compare" yaml:"compare"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Metrics emission
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// FingerprintConfig selects the algorithm and tunes the pipeline
type FingerprintConfig struct {
	Algorithm        string        `mapstructure:"algorithm" yaml:"algorithm"`
	SilenceThreshold int           `mapstructure:"silence_threshold" yaml:"silence_threshold"` // 0 keeps the preset value
	FFTBackend       string        `mapstructure:"fft_backend" yaml:"fft_backend"`
	BufferSize       int           `mapstructure:"buffer_size" yaml:"buffer_size"`   // frames per Feed call
	MaxDuration      time.Duration `mapstructure:"max_duration" yaml:"max_duration"` // 0 fingerprints everything
	ContentType      string        `mapstructure:"content_type" yaml:"content_type"` // decoder normalization hint
}

// StreamConfig contains live stream capture settings
type StreamConfig struct {
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	OverallTimeout  time.Duration `mapstructure:"overall_timeout" yaml:"overall_timeout"`
	SegmentDuration time.Duration `mapstructure:"segment_duration" yaml:"segment_duration"`
	MaxConcurrent   int           `mapstructure:"max_concurrent" yaml:"max_concurrent"` // batch fan-out
}

// CompareConfig contains fingerprint matching settings
type CompareConfig struct {
	MatchThreshold float64 `mapstructure:"match_threshold" yaml:"match_threshold"` // max bit error rate
	MaxOffset      int     `mapstructure:"max_offset" yaml:"max_offset"`           // subfingerprints
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Precision       int  `mapstructure:"precision" yaml:"precision"`
	IncludeMetadata bool `mapstructure:"include_metadata" yaml:"include_metadata"`
	Timestamps      bool `mapstructure:"timestamps" yaml:"timestamps"`
	Raw             bool `mapstructure:"raw" yaml:"raw"`
	Base64          bool `mapstructure:"base64" yaml:"base64"`
}

// MetricsConfig controls process level metric emission
type MetricsConfig struct {
	Enabled bool              `mapstructure:"enabled" yaml:"enabled"`
	LogFile string            `mapstructure:"log_file" yaml:"log_file"`
	Tags    map[string]string `mapstructure:"tags" yaml:"tags"`
}

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom decodes v on top of the defaults
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	var errs []error

	if _, err := fingerprint.ParseAlgorithm(config.Fingerprint.Algorithm); err != nil {
		errs = append(errs, err)
	}

	if _, err := fft.NewService(config.Fingerprint.FFTBackend); err != nil {
		errs = append(errs, err)
	}

	if config.Fingerprint.SilenceThreshold < 0 {
		errs = append(errs, fmt.Errorf("silence threshold cannot be negative"))
	}

	if config.Fingerprint.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("buffer size must be positive"))
	}

	if config.Fingerprint.MaxDuration < 0 {
		errs = append(errs, fmt.Errorf("max duration cannot be negative"))
	}

	if config.Stream.Timeout <= 0 || config.Stream.OverallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stream timeouts must be positive"))
	}

	if config.Stream.SegmentDuration <= 0 {
		errs = append(errs, fmt.Errorf("stream segment duration must be positive"))
	}

	if config.Stream.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf("max concurrent streams must be positive"))
	}

	if config.Compare.MatchThreshold <= 0 || config.Compare.MatchThreshold > 1 {
		errs = append(errs, fmt.Errorf("match threshold must be in (0, 1]"))
	}

	if config.Compare.MaxOffset < 0 {
		errs = append(errs, fmt.Errorf("max offset cannot be negative"))
	}

	if config.OutputFormat != "" && !slices.Contains(OutputFormats, config.OutputFormat) {
		errs = append(errs, fmt.Errorf("unknown output format %q", config.OutputFormat))
	}

	return errors.Join(errs...)
}

// CompareOptions converts the comparison settings for the fingerprint package
func (c CompareConfig) CompareOptions() fingerprint.CompareOptions {
	return fingerprint.CompareOptions{
		MaxOffset:      c.MaxOffset,
		MatchThreshold: c.MatchThreshold,
	}
}
