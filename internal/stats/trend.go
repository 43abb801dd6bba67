package stats

import "math"

// Trend is the direction classification for one metric over one window.
type Trend string

const (
	TrendIncreasing     Trend = "increasing"
	TrendDecreasing     Trend = "decreasing"
	TrendGettingEarlier Trend = "getting_earlier"
	TrendGettingLater   Trend = "getting_later"
	TrendNone           Trend = "no_trend"
)

const (
	// minHalfSamples is the minimum number of values each half must hold
	// to declare anything other than no_trend.
	minHalfSamples = 2

	// numericNoise is the relative change (against the earlier-half mean)
	// below which a numeric shift is treated as noise.
	numericNoise = 0.03

	// clockNoise is the absolute shift in seconds below which a time-of-day
	// change is treated as noise (5 minutes).
	clockNoise = 5 * 60.0
)

// classifyTrend splits the non-nil values into an earlier and a later half
// and compares their means against a per-kind noise threshold. Too few
// values always yields TrendNone rather than a guess.
func classifyTrend(kind Kind, values []float64) Trend {
	if len(values) < 2*minHalfSamples {
		return TrendNone
	}

	mid := len(values) / 2
	earlier := mean(values[:mid])
	later := mean(values[mid:])
	diff := later - earlier

	if kind == KindClock {
		switch {
		case diff > clockNoise:
			return TrendGettingLater
		case diff < -clockNoise:
			return TrendGettingEarlier
		default:
			return TrendNone
		}
	}

	threshold := numericNoise * math.Abs(earlier)
	switch {
	case diff > threshold:
		return TrendIncreasing
	case diff < -threshold:
		return TrendDecreasing
	default:
		return TrendNone
	}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
