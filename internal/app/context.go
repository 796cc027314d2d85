package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/chromaprint/configs"
	"github.com/RyanBlaney/chromaprint/internal/batch"
	"github.com/RyanBlaney/chromaprint/internal/engine"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	JobFile      string
	OutputFile   string
	OutputFormat string // overrides output_format when set
	Algorithm    string // overrides fingerprint.algorithm when set
	Verbose      bool
	Quiet        bool

	// Stdout receives results when OutputFile is empty
	Stdout io.Writer
	// Loader replaces file and stream loading when set
	Loader engine.Loader

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// App handles the application lifecycle
type App struct {
	ctx          *Context
	config       *configs.Config
	engineConfig *engine.EngineConfig
	presenter    *presenter
	logger       logging.Logger
	out          io.Writer
}

// NewApp creates a new application from the global configuration
func NewApp(ctx *Context) (*App, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewAppWithConfig(ctx, config)
}

// NewAppWithConfig creates a new application from config
func NewAppWithConfig(ctx *Context, config *configs.Config) (*App, error) {
	if ctx.OutputFormat != "" && ctx.OutputFormat != config.OutputFormat {
		// format tuned output defaults unless the output section was customized
		if config.Output == configs.GetDefaultOutputConfig() {
			config.Output = configs.GetDefaultOutputConfigForFormat(ctx.OutputFormat)
		}
		config.OutputFormat = ctx.OutputFormat
	}
	if ctx.Algorithm != "" {
		config.Fingerprint.Algorithm = ctx.Algorithm
	}
	if ctx.Verbose {
		config.Verbose = true
	}

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := setupLogging(ctx, config)
	ctx.Logger = logger
	ctx.Config = config

	engineConfig, err := engine.NewEngineConfig(config)
	if err != nil {
		return nil, err
	}
	engineConfig.Logger = logger
	engineConfig.Loader = ctx.Loader

	out := ctx.Stdout
	if out == nil {
		out = os.Stdout
	}

	app := &App{
		ctx:          ctx,
		config:       config,
		engineConfig: engineConfig,
		presenter:    &presenter{format: config.OutputFormat, config: config.Output},
		logger:       logger,
		out:          out,
	}
	app.configureMetrics()

	logger.Debug("Application initialized", logging.Fields{
		"output_format": config.OutputFormat,
		"algorithm":     config.Fingerprint.Algorithm,
		"fft_backend":   config.Fingerprint.FFTBackend,
	})

	return app, nil
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context, config *configs.Config) logging.Logger {
	switch {
	case ctx.Quiet:
		logging.SetLevel(logging.ErrorLevel)
	case config.Verbose || strings.EqualFold(config.LogLevel, "debug"):
		logging.SetLevel(logging.DebugLevel)
	case strings.EqualFold(config.LogLevel, "error"):
		logging.SetLevel(logging.ErrorLevel)
	default:
		logging.SetLevel(logging.InfoLevel)
	}

	if ctx.Logger != nil {
		return ctx.Logger
	}
	return logging.NewDefaultLogger()
}

func (app *App) orchestrator() (*batch.Orchestrator, error) {
	return batch.NewOrchestrator(app.engineConfig, app.config.Stream.MaxConcurrent, app.logger)
}

// Fingerprint fingerprints each input and writes the results
func (app *App) Fingerprint(ctx context.Context, inputs []string) error {
	orchestrator, err := app.orchestrator()
	if err != nil {
		return err
	}

	summary, err := orchestrator.Run(ctx, &batch.Job{Name: "fingerprint", Inputs: inputs})
	if err != nil {
		return err
	}
	app.emitMeasurementMetrics(summary.Measurements)

	var data any
	if len(summary.Measurements) == 1 {
		data = app.presenter.measurement(summary.Measurements[0])
	} else {
		records := make([]map[string]any, 0, len(summary.Measurements))
		for _, m := range summary.Measurements {
			records = append(records, app.presenter.measurement(m))
		}
		data = map[string]any{"fingerprints": records}
	}

	if err := app.write(data); err != nil {
		return err
	}

	if summary.Successful == 0 {
		return fmt.Errorf("all %d inputs failed", summary.Failed)
	}
	return nil
}

// Compare fingerprints two inputs and reports how well they match
func (app *App) Compare(ctx context.Context, reference, candidate string) error {
	orchestrator, err := app.orchestrator()
	if err != nil {
		return err
	}

	summary, err := orchestrator.Run(ctx, &batch.Job{
		Name:      "compare",
		Reference: reference,
		Inputs:    []string{candidate},
	})
	if err != nil {
		return err
	}
	app.emitComparisonMetrics(summary.Comparisons)

	comparison := summary.Comparisons[0]
	data := app.presenter.comparison(comparison)
	if app.config.Output.IncludeMetadata {
		data["reference_fingerprint"] = app.presenter.measurement(summary.Reference)
		data["candidate_fingerprint"] = app.presenter.measurement(summary.Measurements[0])
	}

	if err := app.write(data); err != nil {
		return err
	}
	return comparison.Error
}

// CompareEncoded compares two base64 fingerprints without touching audio
func (app *App) CompareEncoded(reference, candidate string) error {
	a, algA, err := fingerprint.DecodeFingerprint([]byte(reference), true)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	b, algB, err := fingerprint.DecodeFingerprint([]byte(candidate), true)
	if err != nil {
		return fmt.Errorf("candidate: %w", err)
	}
	if algA != algB {
		return fmt.Errorf("cannot compare algorithm %d with algorithm %d", algA, algB)
	}

	result, err := fingerprint.Compare(a, b, app.engineConfig.Compare)
	if err != nil {
		return err
	}
	app.emitComparisonMetrics([]*engine.Comparison{{Result: result}})

	p := app.presenter
	return app.write(map[string]any{
		"match":          result.Match,
		"bit_error_rate": p.round(result.BitErrorRate),
		"similarity":     p.round(result.Similarity),
		"offset":         result.Offset,
		"offset_seconds": p.round(result.OffsetSeconds),
		"overlap":        result.Overlap,
		"hash_distance":  result.HashDistance,
	})
}

// RunBatch executes the job file named in the context
func (app *App) RunBatch(ctx context.Context) error {
	if app.ctx.JobFile == "" {
		return fmt.Errorf("job file is required")
	}

	job, err := loadJobFromFile(app.ctx.JobFile)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}

	orchestrator, err := app.orchestrator()
	if err != nil {
		return err
	}

	summary, err := orchestrator.Run(ctx, job)
	if err != nil {
		return fmt.Errorf("batch execution failed: %w", err)
	}
	app.emitBatchMetrics(summary)

	if err := app.write(app.presenter.summary(summary)); err != nil {
		return err
	}

	if summary.Successful == 0 {
		return fmt.Errorf("all batch measurements failed")
	}
	return nil
}

// Decode decompresses a base64 fingerprint and writes its raw values
func (app *App) Decode(encoded string) error {
	raw, algorithm, err := fingerprint.DecodeFingerprint([]byte(strings.TrimSpace(encoded)), true)
	if err != nil {
		return err
	}
	return app.write(app.presenter.decoded(raw, algorithm))
}

// Encode compresses raw subfingerprints given as decimal or 0x-prefixed hex
func (app *App) Encode(values []string) error {
	raw := make([]uint32, 0, len(values))
	for _, v := range values {
		n, err := strconv.ParseUint(v, 0, 32)
		if err != nil {
			return fmt.Errorf("invalid subfingerprint %q: %w", v, err)
		}
		raw = append(raw, uint32(n))
	}

	algorithm := app.engineConfig.Algorithm
	encoded, err := fingerprint.EncodeFingerprint(raw, int(algorithm), true)
	if err != nil {
		return err
	}
	return app.write(app.presenter.encoded(string(encoded), raw, algorithm))
}

// write formats data and sends it to the output file or stdout
func (app *App) write(data any) error {
	formatter, err := newFormatter(app.config.OutputFormat)
	if err != nil {
		return err
	}

	formatted, err := formatter.Format(data, true)
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}

	if app.ctx.OutputFile != "" {
		if err := writeFile(app.ctx.OutputFile, formatted); err != nil {
			return err
		}
		app.logger.Debug("Results written to file", logging.Fields{
			"output_file": app.ctx.OutputFile,
			"size_bytes":  len(formatted),
		})
		return nil
	}

	_, err = app.out.Write(formatted)
	return err
}
