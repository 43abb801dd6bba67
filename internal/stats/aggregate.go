// Package stats turns a window of daily sleep values into the per-metric
// summary blocks of the insight report: formatted daily series, trailing
// monthly average, and a trend classification.
package stats

import "time"

// Kind selects the formatting and trend vocabulary for a metric.
type Kind int

const (
	// KindScore is a bare number, e.g. the sleep score.
	KindScore Kind = iota
	// KindPercent is a 0..1 ratio rendered as "NN%".
	KindPercent
	// KindDuration is a length in seconds rendered as "N hrs M mins".
	KindDuration
	// KindClock is a time of day in seconds since midnight, rendered as
	// HH:MM:SS, with the getting_earlier/getting_later trend vocabulary.
	KindClock
)

// Sample is one day's raw value for a metric. A nil Value means no session
// was recorded that day. For KindClock the value is normalized seconds since
// midnight (see ClockValue).
type Sample struct {
	Date  time.Time
	Value *float64
}

// Summary is the aggregate for one metric over one window.
type Summary struct {
	// Daily holds one formatted entry per sample, in input order. Missing
	// values render as "N/A" (KindScore: JSON null).
	Daily []any
	// MonthAvg is the formatted mean over non-nil samples in the trailing
	// 30 days, or nil when there are none.
	MonthAvg any
	// Trend is the classification over the whole window.
	Trend Trend
}

// monthWindow is the lookback for the monthly average.
const monthWindow = 30 * 24 * time.Hour

// minMonthSamples is the sample floor below which no monthly average is
// reported; a single night is a data point, not an average.
const minMonthSamples = 2

// Aggregate computes the Summary for one metric. now anchors the trailing
// monthly window. Identical inputs always produce identical output; the only
// floating point involved is a single left-to-right summation.
func Aggregate(kind Kind, samples []Sample, now time.Time) Summary {
	daily := make([]any, len(samples))
	for i, s := range samples {
		daily[i] = formatValue(kind, s.Value)
	}

	var values []float64
	for _, s := range samples {
		if s.Value != nil {
			values = append(values, *s.Value)
		}
	}

	return Summary{
		Daily:    daily,
		MonthAvg: monthAverage(kind, samples, now),
		Trend:    classifyTrend(kind, values),
	}
}

// monthAverage returns the formatted arithmetic mean over non-nil samples
// dated within the trailing 30 days, or nil when fewer than minMonthSamples
// qualify.
func monthAverage(kind Kind, samples []Sample, now time.Time) any {
	cutoff := now.Add(-monthWindow)

	var sum float64
	var n int
	for _, s := range samples {
		if s.Value == nil || s.Date.Before(cutoff) {
			continue
		}
		sum += *s.Value
		n++
	}
	if n < minMonthSamples {
		return nil
	}

	mean := sum / float64(n)
	return formatValue(kind, &mean)
}
