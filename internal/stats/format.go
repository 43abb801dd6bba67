package stats

import (
	"fmt"
	"math"
	"time"
)

const daySeconds = 24 * 60 * 60

// ClockValue converts a wall-clock timestamp into the normalized
// seconds-since-midnight value used for clock-kind samples. Times before
// noon are shifted forward by 24h so a night's bedtimes straddling midnight
// (e.g. 23:30 and 00:30) sit on one linear scale; the shift is applied
// uniformly per metric, so means and trend comparisons stay consistent.
func ClockValue(t time.Time) float64 {
	sec := float64(t.Hour()*3600 + t.Minute()*60 + t.Second())
	if sec < daySeconds/2 {
		sec += daySeconds
	}
	return sec
}

// formatValue renders a raw metric value per kind. A nil value renders as
// "N/A", except scores, which stay numeric (JSON null) for the agent parser.
func formatValue(kind Kind, v *float64) any {
	if v == nil {
		if kind == KindScore {
			return nil
		}
		return "N/A"
	}

	switch kind {
	case KindClock:
		return formatClock(*v)
	case KindDuration:
		return formatDuration(*v)
	case KindPercent:
		return fmt.Sprintf("%d%%", int(math.Round(*v*100)))
	default:
		return int(math.Round(*v))
	}
}

// formatClock renders normalized seconds-since-midnight as HH:MM:SS.
func formatClock(sec float64) string {
	s := int(math.Round(sec)) % daySeconds
	if s < 0 {
		s += daySeconds
	}
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

// formatDuration renders a length in seconds as "N hrs M mins", dropping the
// hours part when zero.
func formatDuration(sec float64) string {
	minutes := int(sec) / 60
	hours, minutes := minutes/60, minutes%60
	if hours > 0 {
		return fmt.Sprintf("%d hrs %d mins", hours, minutes)
	}
	return fmt.Sprintf("%d mins", minutes)
}
