package batch

import (
	"math"
	"slices"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// StatsCalculator summarizes batch results
type StatsCalculator struct {
	logger logging.Logger
}

// NewStatsCalculator creates a new stats calculator
func NewStatsCalculator(logger logging.Logger) *StatsCalculator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &StatsCalculator{logger: logger}
}

// DistributionStats describes one measured quantity across a batch
type DistributionStats struct {
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	P95    float64 `json:"p95" yaml:"p95"`
	P99    float64 `json:"p99" yaml:"p99"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
}

// Stats aggregates a batch summary
type Stats struct {
	SuccessRate       float64            `json:"success_rate" yaml:"success_rate"`
	MatchRate         float64            `json:"match_rate" yaml:"match_rate"`
	LoadTimeMs        *DistributionStats `json:"load_time_ms" yaml:"load_time_ms"`
	TTFBMs            *DistributionStats `json:"ttfb_ms" yaml:"ttfb_ms"`
	FingerprintTimeMs *DistributionStats `json:"fingerprint_time_ms" yaml:"fingerprint_time_ms"`
	RealtimeFactor    *DistributionStats `json:"realtime_factor" yaml:"realtime_factor"` // audio seconds per processing second
	BitErrorRate      *DistributionStats `json:"bit_error_rate" yaml:"bit_error_rate"`
	ErrorCategories   map[string]int     `json:"error_categories,omitempty" yaml:"error_categories,omitempty"`
}

// Calculate computes stats for summary
func (sc *StatsCalculator) Calculate(summary *Summary) *Stats {
	stats := &Stats{ErrorCategories: make(map[string]int)}

	var loadTimes, ttfbs, fingerprintTimes, realtime, bers []float64

	all := summary.AllMeasurements()
	for _, m := range all {
		if !m.Succeeded() {
			stats.ErrorCategories[sc.categorizeError(m.Error)]++
			continue
		}

		loadTimes = append(loadTimes, float64(m.LoadTime.Microseconds())/1000)
		fingerprintTimes = append(fingerprintTimes, float64(m.FingerprintTime.Microseconds())/1000)
		if m.TimeToFirstByte > 0 {
			ttfbs = append(ttfbs, float64(m.TimeToFirstByte.Microseconds())/1000)
		}
		if m.FingerprintTime > 0 {
			realtime = append(realtime, m.AudioDuration.Seconds()/m.FingerprintTime.Seconds())
		}
	}

	matches, compared := 0, 0
	for _, c := range summary.Comparisons {
		if c.Error != nil {
			stats.ErrorCategories[sc.categorizeError(c.Error)]++
			continue
		}
		compared++
		bers = append(bers, c.Result.BitErrorRate)
		if c.Result.Match {
			matches++
		}
	}

	if len(all) > 0 {
		stats.SuccessRate = float64(summary.Successful) / float64(len(all))
	}
	if compared > 0 {
		stats.MatchRate = float64(matches) / float64(compared)
	}

	stats.LoadTimeMs = sc.calculateStats(loadTimes)
	stats.TTFBMs = sc.calculateStats(ttfbs)
	stats.FingerprintTimeMs = sc.calculateStats(fingerprintTimes)
	stats.RealtimeFactor = sc.calculateStats(realtime)
	stats.BitErrorRate = sc.calculateStats(bers)

	sc.logger.Debug("Batch stats calculated", logging.Fields{
		"success_rate": stats.SuccessRate,
		"match_rate":   stats.MatchRate,
		"errors":       len(stats.ErrorCategories),
	})

	return stats
}

// calculateStats calculates statistical measures for a dataset
func (sc *StatsCalculator) calculateStats(data []float64) *DistributionStats {
	if len(data) == 0 {
		return &DistributionStats{Count: 0}
	}

	sortedData := slices.Clone(data)
	slices.Sort(sortedData)

	stats := &DistributionStats{
		Count:  len(data),
		Min:    sortedData[0],
		Max:    sortedData[len(sortedData)-1],
		Median: percentile(sortedData, 50),
		P95:    percentile(sortedData, 95),
		P99:    percentile(sortedData, 99),
	}

	sum := 0.0
	for _, value := range data {
		sum += value
	}
	stats.Mean = sum / float64(len(data))

	sumSquaredDiffs := 0.0
	for _, value := range data {
		diff := value - stats.Mean
		sumSquaredDiffs += diff * diff
	}
	stats.StdDev = math.Sqrt(sumSquaredDiffs / float64(len(data)))

	return sanitizeStats(stats)
}

// sanitizeStats replaces infinite and NaN values so the stats serialize
func sanitizeStats(stats *DistributionStats) *DistributionStats {
	for _, v := range []*float64{&stats.Min, &stats.Max, &stats.Mean, &stats.Median, &stats.P95, &stats.P99, &stats.StdDev} {
		if math.IsInf(*v, 0) || math.IsNaN(*v) {
			*v = 0
		}
	}
	return stats
}

// percentile interpolates the p-th percentile of sorted data
func percentile(sortedData []float64, p float64) float64 {
	if len(sortedData) == 0 {
		return 0
	}
	if len(sortedData) == 1 {
		return sortedData[0]
	}

	index := (p / 100.0) * float64(len(sortedData)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if upper >= len(sortedData) {
		return sortedData[len(sortedData)-1]
	}

	weight := index - float64(lower)
	return sortedData[lower]*(1-weight) + sortedData[upper]*weight
}

// categorizeError categorizes errors into meaningful categories
func (sc *StatsCalculator) categorizeError(err error) string {
	if err == nil {
		return "none"
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case containsAny(errStr, "context canceled", "deadline exceeded"):
		return "cancelled"
	case containsAny(errStr, "timeout", "connection", "network", "dns"):
		return "network"
	case containsAny(errStr, "404", "403", "500", "http"):
		return "http"
	case containsAny(errStr, "decode", "format", "codec", "invalid audio", "load audio"):
		return "format"
	case containsAny(errStr, "fingerprint", "compare", "processing"):
		return "processing"
	case containsAny(errStr, "config", "validation", "invalid"):
		return "configuration"
	}

	return "other"
}

func containsAny(str string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(str, substr) {
			return true
		}
	}
	return false
}
