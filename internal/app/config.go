package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/chromaprint/configs"
	"github.com/RyanBlaney/chromaprint/internal/batch"
)

// loadJobFromFile loads a batch job from a YAML or JSON file
func loadJobFromFile(filePath string) (*batch.Job, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("job file does not exist: %s", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	switch filepath.Ext(filePath) {
	case ".yaml", ".yml":
		return parseJobYAML(data)
	case ".json":
		return parseJobJSON(data)
	default:
		// Try YAML first, then JSON
		if job, err := parseJobYAML(data); err == nil {
			return job, nil
		}
		return parseJobJSON(data)
	}
}

func parseJobYAML(data []byte) (*batch.Job, error) {
	var job batch.Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse YAML job: %w", err)
	}
	return &job, nil
}

func parseJobJSON(data []byte) (*batch.Job, error) {
	var job batch.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse JSON job: %w", err)
	}
	return &job, nil
}

// GenerateExampleConfig writes the default application configuration as YAML
func GenerateExampleConfig(outputFile string, w io.Writer) error {
	data, err := yaml.Marshal(configs.GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if err := writeFile(outputFile, data); err != nil {
		return err
	}

	fmt.Fprintf(w, "Example application configuration written to: %s\n", outputFile)
	return nil
}

// GenerateExampleJob writes an example batch job as YAML
func GenerateExampleJob(outputFile string, w io.Writer) error {
	job := &batch.Job{
		Name:        "example",
		Description: "Compare a local master against its stream copies",
		Algorithm:   "fp2",
		Timeout:     10 * time.Minute,
		Reference:   "./masters/track01.wav",
		Inputs: []string{
			"./encodes/track01_128k.mp3",
			"https://cdn.example.com/live/playlist.m3u8",
			"https://icecast.example.com/live.mp3",
		},
	}

	data, err := yaml.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal example job: %w", err)
	}

	if err := writeFile(outputFile, data); err != nil {
		return err
	}

	fmt.Fprintf(w, "Example batch job written to: %s\n", outputFile)
	return nil
}

// ValidateConfigFile loads and validates an application configuration file
func ValidateConfigFile(configFile string, w io.Writer) error {
	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	config, err := configs.LoadConfigFrom(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := configs.ValidateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Fprintf(w, "Application configuration is valid: %s\n", configFile)
	fmt.Fprintf(w, "   - Algorithm: %s\n", config.Fingerprint.Algorithm)
	fmt.Fprintf(w, "   - FFT backend: %s\n", config.Fingerprint.FFTBackend)
	fmt.Fprintf(w, "   - Match threshold: %.3f\n", config.Compare.MatchThreshold)

	return nil
}

// ValidateJobFile loads and validates a batch job file
func ValidateJobFile(jobFile string, w io.Writer) error {
	job, err := loadJobFromFile(jobFile)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}

	if err := job.Validate(); err != nil {
		return fmt.Errorf("job validation failed: %w", err)
	}

	fmt.Fprintf(w, "Batch job is valid: %s\n", jobFile)
	fmt.Fprintf(w, "   - %d inputs\n", len(job.Inputs))
	if job.Reference != "" {
		fmt.Fprintf(w, "   - Reference: %s\n", job.Reference)
	}

	return nil
}

// writeFile writes data, creating parent directories
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
