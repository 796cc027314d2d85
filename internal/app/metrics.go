package app

import (
	"slices"
	"syscall"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/tunein/go-logging/v7/pkg/logger"
	"github.com/tunein/go-logging/v7/pkg/logger/logtypes"
	"github.com/tunein/go-logging/v7/pkg/rootcollector"
	"github.com/tunein/go-logging/v7/pkg/rootlogger"

	"github.com/RyanBlaney/chromaprint/internal/batch"
	"github.com/RyanBlaney/chromaprint/internal/engine"
)

const metricPrefix = "chromaprint."

// configureMetrics points the process log sink at the configured file
func (app *App) configureMetrics() {
	if !app.config.Metrics.Enabled || app.config.Metrics.LogFile == "" {
		return
	}

	err := rootlogger.Configure(logger.LogOptions{
		Out:          app.config.Metrics.LogFile,
		ReopenSignal: syscall.SIGHUP,
		Level:        logtypes.InfoLevel,
	})
	if err != nil {
		logging.Error(err, "Failed configuring metrics log writer")
	}
}

// baseTags returns the configured static tags in a stable order
func (app *App) baseTags() []string {
	tags := make([]string, 0, len(app.config.Metrics.Tags)+1)
	for k, v := range app.config.Metrics.Tags {
		tags = append(tags, k+":"+v)
	}
	slices.Sort(tags)
	return tags
}

// emitMeasurementMetrics sends timing metrics for each measurement
func (app *App) emitMeasurementMetrics(measurements []*engine.Measurement) {
	if !app.config.Metrics.Enabled {
		return
	}

	for _, m := range measurements {
		status := "ok"
		if !m.Succeeded() {
			status = "failed"
		}
		tags := append(app.baseTags(), "kind:"+string(m.Kind), "status:"+status)

		if m.Succeeded() {
			tags = append(tags, "algorithm:"+m.Fingerprint.Algorithm)
			rootcollector.Metric(metricPrefix+"fingerprint.duration.milliseconds", m.FingerprintTime.Milliseconds(), tags)
			rootcollector.Metric(metricPrefix+"fingerprint.subfingerprints", int64(m.Fingerprint.Subfingerprints), tags)
		}
		if m.Kind == engine.InputStream && m.TimeToFirstByte > 0 {
			rootcollector.Metric(metricPrefix+"stream.ttfb.milliseconds", m.TimeToFirstByte.Milliseconds(), tags)
		}
		rootcollector.Metric(metricPrefix+"measurement.count", 1, tags)
	}
}

// emitComparisonMetrics sends bit error rates in parts per thousand
func (app *App) emitComparisonMetrics(comparisons []*engine.Comparison) {
	if !app.config.Metrics.Enabled {
		return
	}

	for _, c := range comparisons {
		if c.Error != nil {
			continue
		}
		match := "false"
		if c.Result.Match {
			match = "true"
		}
		tags := append(app.baseTags(), "match:"+match)
		rootcollector.Metric(metricPrefix+"compare.bit_error_rate.permille", int64(c.Result.BitErrorRate*1000), tags)
		rootcollector.Metric(metricPrefix+"compare.offset.milliseconds", int64(c.Result.OffsetSeconds*1000), tags)
	}
}

// emitBatchMetrics sends the whole-job duration along with the per-item metrics
func (app *App) emitBatchMetrics(summary *batch.Summary) {
	if !app.config.Metrics.Enabled {
		return
	}

	app.emitMeasurementMetrics(summary.AllMeasurements())
	app.emitComparisonMetrics(summary.Comparisons)

	tags := append(app.baseTags(), "job:"+summary.Job)
	rootcollector.Metric(metricPrefix+"batch.duration.milliseconds", summary.TotalDuration.Milliseconds(), tags)
	rootcollector.Metric(metricPrefix+"batch.failed", int64(summary.Failed), tags)
}
