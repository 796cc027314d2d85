package configs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/chromaprint/pkg/audio"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fft"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint"
)

// AppName names the config file, directories and environment prefix.
const AppName = "chromaprint"

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "table")
	}
	if !v.IsSet("config_dir") {
		v.Set("config_dir", filepath.Join(home, ".config", AppName))
	}
	if !v.IsSet("data_dir") {
		v.Set("data_dir", filepath.Join(home, ".local", "share", AppName))
	}

	setFingerprintDefaults(v)
	setStreamDefaults(v)

	// Comparison defaults
	if !v.IsSet("compare.match_threshold") {
		v.Set("compare.match_threshold", fingerprint.DefaultMatchThreshold)
	}
	if !v.IsSet("compare.max_offset") {
		v.Set("compare.max_offset", fingerprint.DefaultMaxOffset)
	}

	// Output defaults
	if !v.IsSet("output.precision") {
		v.Set("output.precision", 3)
	}
	if !v.IsSet("output.include_metadata") {
		v.Set("output.include_metadata", true)
	}
	if !v.IsSet("output.timestamps") {
		v.Set("output.timestamps", true)
	}
	if !v.IsSet("output.raw") {
		v.Set("output.raw", false)
	}
	if !v.IsSet("output.base64") {
		v.Set("output.base64", true)
	}

	// Metrics defaults
	if !v.IsSet("metrics.enabled") {
		v.Set("metrics.enabled", false)
	}
	if !v.IsSet("metrics.log_file") {
		v.Set("metrics.log_file", "")
	}
}

// setFingerprintDefaults sets pipeline defaults
func setFingerprintDefaults(v *viper.Viper) {
	if !v.IsSet("fingerprint.algorithm") {
		v.Set("fingerprint.algorithm", fingerprint.DefaultAlgorithm.String())
	}
	if !v.IsSet("fingerprint.silence_threshold") {
		v.Set("fingerprint.silence_threshold", 0)
	}
	if !v.IsSet("fingerprint.fft_backend") {
		v.Set("fingerprint.fft_backend", fft.BackendDSP)
	}
	if !v.IsSet("fingerprint.buffer_size") {
		v.Set("fingerprint.buffer_size", audio.DefaultBufferSize)
	}
	if !v.IsSet("fingerprint.max_duration") {
		v.Set("fingerprint.max_duration", 120*time.Second)
	}
	if !v.IsSet("fingerprint.content_type") {
		v.Set("fingerprint.content_type", string(audio.ContentMusic))
	}
}

// setStreamDefaults sets live capture defaults
func setStreamDefaults(v *viper.Viper) {
	if !v.IsSet("stream.timeout") {
		v.Set("stream.timeout", 30*time.Second)
	}
	if !v.IsSet("stream.overall_timeout") {
		v.Set("stream.overall_timeout", 45*time.Second)
	}
	if !v.IsSet("stream.segment_duration") {
		v.Set("stream.segment_duration", 30*time.Second)
	}
	if !v.IsSet("stream.max_concurrent") {
		v.Set("stream.max_concurrent", 4)
	}
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "table",
		ConfigDir:    filepath.Join(home, ".config", AppName),
		DataDir:      filepath.Join(home, ".local", "share", AppName),

		Fingerprint: GetDefaultFingerprintConfig(),
		Stream:      GetDefaultStreamConfig(),
		Compare:     GetDefaultCompareConfig(),
		Output:      GetDefaultOutputConfig(),
		Metrics:     MetricsConfig{Tags: map[string]string{}},
	}
}

// GetDefaultFingerprintConfig returns default pipeline settings
func GetDefaultFingerprintConfig() FingerprintConfig {
	return FingerprintConfig{
		Algorithm:        fingerprint.DefaultAlgorithm.String(),
		SilenceThreshold: 0,
		FFTBackend:       fft.BackendDSP,
		BufferSize:       audio.DefaultBufferSize,
		MaxDuration:      120 * time.Second,
		ContentType:      string(audio.ContentMusic),
	}
}

// GetDefaultStreamConfig returns default stream capture settings
func GetDefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Timeout:         30 * time.Second,
		OverallTimeout:  45 * time.Second,
		SegmentDuration: 30 * time.Second,
		MaxConcurrent:   4,
	}
}

// GetDefaultCompareConfig returns default matching thresholds
func GetDefaultCompareConfig() CompareConfig {
	return CompareConfig{
		MatchThreshold: fingerprint.DefaultMatchThreshold,
		MaxOffset:      fingerprint.DefaultMaxOffset,
	}
}

// StrictCompareConfig tolerates fewer bit errors and a narrower search
func StrictCompareConfig() CompareConfig {
	return CompareConfig{
		MatchThreshold: 0.08,
		MaxOffset:      16,
	}
}

// GetDefaultOutputConfig returns default output formatting settings
func GetDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Precision:       3,
		IncludeMetadata: true,
		Timestamps:      true,
		Raw:             false,
		Base64:          true,
	}
}

// GetDefaultOutputConfigForFormat returns output config optimized for specific format
func GetDefaultOutputConfigForFormat(format string) OutputConfig {
	base := GetDefaultOutputConfig()

	switch format {
	case "json", "yaml", "msgpack":
		base.Precision = 6
		base.Raw = true
	case "csv":
		base.IncludeMetadata = false
		base.Timestamps = false
	case "table":
		base.Precision = 2
	default:
		// Keep defaults
	}

	return base
}
