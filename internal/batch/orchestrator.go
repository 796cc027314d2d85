package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/chromaprint/internal/engine"
	"github.com/RyanBlaney/chromaprint/pkg/audio/fingerprint"
)

// Orchestrator runs batch jobs with bounded concurrency
type Orchestrator struct {
	engineConfig  engine.EngineConfig
	maxConcurrent int
	logger        logging.Logger
	stats         *StatsCalculator
}

// NewOrchestrator creates a new batch orchestrator
func NewOrchestrator(engineConfig *engine.EngineConfig, maxConcurrent int, logger logging.Logger) (*Orchestrator, error) {
	if engineConfig == nil {
		return nil, fmt.Errorf("engine configuration is required")
	}
	if maxConcurrent <= 0 {
		return nil, fmt.Errorf("max concurrent must be positive")
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	cfg := *engineConfig
	cfg.Logger = logger

	return &Orchestrator{
		engineConfig:  cfg,
		maxConcurrent: maxConcurrent,
		logger:        logger,
		stats:         NewStatsCalculator(logger),
	}, nil
}

// Run fingerprints every input of job and performs the requested comparisons
func (o *Orchestrator) Run(ctx context.Context, job *Job) (*Summary, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job %q: %w", job.Name, err)
	}

	eng, err := o.engineFor(job)
	if err != nil {
		return nil, err
	}

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	o.logger.Debug("Starting batch job", logging.Fields{
		"job":            job.Name,
		"inputs":         len(job.Inputs),
		"reference":      job.Reference,
		"algorithm":      eng.Algorithm().String(),
		"max_concurrent": o.maxConcurrent,
	})

	inputs := job.Inputs
	if job.Reference != "" {
		inputs = append([]string{job.Reference}, job.Inputs...)
	}

	measurements := o.measureAll(ctx, eng, inputs)

	summary := &Summary{
		Job:          job.Name,
		Algorithm:    eng.Algorithm().String(),
		StartTime:    startTime,
		Measurements: measurements,
	}
	if job.Reference != "" {
		summary.Reference = measurements[0]
		summary.Measurements = measurements[1:]
	}

	switch {
	case summary.Reference != nil:
		for _, m := range summary.Measurements {
			summary.Comparisons = append(summary.Comparisons, eng.Compare(summary.Reference, m))
		}
	case job.Pairwise:
		for i := 0; i < len(measurements); i++ {
			for j := i + 1; j < len(measurements); j++ {
				summary.Comparisons = append(summary.Comparisons, eng.Compare(measurements[i], measurements[j]))
			}
		}
	}

	for _, m := range summary.AllMeasurements() {
		if m.Succeeded() {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	summary.EndTime = time.Now()
	summary.TotalDuration = summary.EndTime.Sub(startTime)
	summary.Stats = o.stats.Calculate(summary)

	o.logger.Debug("Batch job completed", logging.Fields{
		"job":              job.Name,
		"total_duration_s": summary.TotalDuration.Seconds(),
		"successful":       summary.Successful,
		"failed":           summary.Failed,
		"comparisons":      len(summary.Comparisons),
	})

	return summary, nil
}

// engineFor builds the engine used by job
func (o *Orchestrator) engineFor(job *Job) (*engine.Engine, error) {
	cfg := o.engineConfig
	if job.Algorithm != "" {
		algorithm, err := fingerprint.ParseAlgorithm(job.Algorithm)
		if err != nil {
			return nil, err
		}
		cfg.Algorithm = algorithm
	}
	return engine.NewEngine(&cfg)
}

// measureAll measures inputs concurrently, in input order. Failures stay on
// the individual measurements.
func (o *Orchestrator) measureAll(ctx context.Context, eng *engine.Engine, inputs []string) []*engine.Measurement {
	results := make([]*engine.Measurement, len(inputs))

	var g errgroup.Group
	g.SetLimit(o.maxConcurrent)

	for i, input := range inputs {
		g.Go(func() error {
			results[i] = eng.Measure(ctx, input)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
