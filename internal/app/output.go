package app

import (
	"fmt"
	"math"
	"strconv"

	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RyanBlaney/chromaprint/configs"
	"github.com/RyanBlaney/chromaprint/internal/batch"
	"github.com/RyanBlaney/chromaprint/internal/engine"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint"
)

var (
	titleCaser = cases.Title(language.English)
	upperCaser = cases.Upper(language.English)
)

// MsgpackFormatter encodes results with msgpack
type MsgpackFormatter struct{}

func (f *MsgpackFormatter) Format(data any, pretty bool) ([]byte, error) {
	return msgpack.Marshal(data)
}

// newFormatter returns the formatter registered for format
func newFormatter(format string) (output.Formatter, error) {
	switch format {
	case "json", "":
		return &output.JSONFormatter{}, nil
	case "yaml":
		return &output.YAMLFormatter{}, nil
	case "csv":
		return &output.CSVFormatter{}, nil
	case "table":
		return &output.TableFormatter{}, nil
	case "msgpack":
		return &MsgpackFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// presenter turns results into formatter friendly maps
type presenter struct {
	format string
	config configs.OutputConfig
}

func (p *presenter) round(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	pow := math.Pow(10, float64(p.config.Precision))
	return math.Round(f*pow) / pow
}

// algorithmName is upper-cased for human readable formats
func (p *presenter) algorithmName(name string) string {
	if p.format == "table" || p.format == "csv" {
		return upperCaser.String(name)
	}
	return name
}

func (p *presenter) measurement(m *engine.Measurement) map[string]any {
	clean := map[string]any{
		"input": m.Input,
		"kind":  titleCaser.String(string(m.Kind)),
	}

	if p.config.Timestamps {
		clean["timestamp"] = m.Timestamp
	}

	if m.Error != nil {
		clean["error"] = m.Error.Error()
		return clean
	}

	fp := m.Fingerprint
	clean["id"] = m.ID
	clean["algorithm"] = p.algorithmName(fp.Algorithm)
	clean["subfingerprints"] = fp.Subfingerprints
	clean["hash"] = fmt.Sprintf("%08x", fp.Hash)
	clean["duration_seconds"] = p.round(fp.Duration.Seconds())

	if p.config.Base64 {
		clean["fingerprint"] = fp.Fingerprint
	}
	if p.config.Raw {
		clean["raw"] = fp.Raw
	}

	if p.config.IncludeMetadata {
		clean["sample_rate"] = m.SampleRate
		clean["channels"] = m.Channels
		clean["audio_duration_seconds"] = p.round(m.AudioDuration.Seconds())
		clean["truncated"] = m.Truncated
		clean["time_to_first_byte_ms"] = m.TimeToFirstByte.Milliseconds()
		clean["load_time_ms"] = m.LoadTime.Milliseconds()
		clean["fingerprint_time_ms"] = m.FingerprintTime.Milliseconds()
		clean["total_processing_time_ms"] = m.TotalProcessingTime.Milliseconds()
	}

	return clean
}

func (p *presenter) comparison(c *engine.Comparison) map[string]any {
	clean := map[string]any{
		"reference": c.Reference.Input,
		"candidate": c.Candidate.Input,
	}

	if p.config.Timestamps {
		clean["timestamp"] = c.Timestamp
	}

	if c.Error != nil {
		clean["error"] = c.Error.Error()
		return clean
	}

	clean["match"] = c.Result.Match
	clean["bit_error_rate"] = p.round(c.Result.BitErrorRate)
	clean["similarity"] = p.round(c.Result.Similarity)
	clean["offset"] = c.Result.Offset
	clean["offset_seconds"] = p.round(c.Result.OffsetSeconds)
	clean["overlap"] = c.Result.Overlap
	clean["hash_distance"] = c.Result.HashDistance

	return clean
}

func (p *presenter) summary(s *batch.Summary) map[string]any {
	measurements := make([]map[string]any, 0, len(s.Measurements))
	for _, m := range s.Measurements {
		measurements = append(measurements, p.measurement(m))
	}

	comparisons := make([]map[string]any, 0, len(s.Comparisons))
	for _, c := range s.Comparisons {
		comparisons = append(comparisons, p.comparison(c))
	}

	clean := map[string]any{
		"job":                    s.Job,
		"algorithm":              p.algorithmName(s.Algorithm),
		"total_duration_seconds": p.round(s.TotalDuration.Seconds()),
		"successful":             s.Successful,
		"failed":                 s.Failed,
		"measurements":           measurements,
	}
	if s.Reference != nil {
		clean["reference"] = p.measurement(s.Reference)
	}
	if len(comparisons) > 0 {
		clean["comparisons"] = comparisons
	}
	if p.config.IncludeMetadata && s.Stats != nil {
		clean["stats"] = s.Stats
	}
	if p.config.Timestamps {
		clean["start_time"] = s.StartTime
		clean["end_time"] = s.EndTime
	}

	return clean
}

// decoded describes a decoded fingerprint
func (p *presenter) decoded(raw []uint32, algorithm int) map[string]any {
	name := strconv.Itoa(algorithm)
	if preset, err := fingerprint.PresetFor(fingerprint.Algorithm(algorithm)); err == nil {
		name = p.algorithmName(preset.Algorithm.String())
	}

	return map[string]any{
		"algorithm":       name,
		"algorithm_id":    algorithm,
		"subfingerprints": len(raw),
		"hash":            fmt.Sprintf("%08x", fingerprint.SimHash(raw)),
		"raw":             raw,
	}
}

// encoded describes a freshly compressed fingerprint
func (p *presenter) encoded(encoded string, raw []uint32, algorithm fingerprint.Algorithm) map[string]any {
	return map[string]any{
		"algorithm":       p.algorithmName(algorithm.String()),
		"algorithm_id":    int(algorithm),
		"subfingerprints": len(raw),
		"hash":            fmt.Sprintf("%08x", fingerprint.SimHash(raw)),
		"fingerprint":     encoded,
	}
}
