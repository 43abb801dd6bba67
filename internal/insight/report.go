package insight

import (
	"sort"
	"time"

	"github.com/asleep-ai/skills/internal/sleephub"
	"github.com/asleep-ai/skills/internal/stats"
)

// MetricBlock is one metric's summary in the report. month_avg is omitted
// when no sample qualifies (and always for sleep_score).
type MetricBlock struct {
	Daily    []any       `json:"daily"`
	MonthAvg any         `json:"month_avg,omitempty"`
	Trend    stats.Trend `json:"trend"`
}

// Report is the composite insight document printed to stdout. Field names
// and ordering are a compatibility contract with the downstream agent
// parser; do not rename or reorder.
type Report struct {
	WakeDates         []string    `json:"wake_dates"`
	SleepOnsetTime    MetricBlock `json:"sleep_onset_time"`
	WakeUpTime        MetricBlock `json:"wake_up_time"`
	SleepOnsetLatency MetricBlock `json:"sleep_onset_latency"`
	TotalSleepTime    MetricBlock `json:"total_sleep_time"`
	DeepSleepTime     MetricBlock `json:"deep_sleep_time"`
	SnoringTime       MetricBlock `json:"snoring_time"`
	SleepEfficiency   MetricBlock `json:"sleep_efficiency"`
	REMRatio          MetricBlock `json:"rem_ratio"`
	SleepScore        MetricBlock `json:"sleep_score"`
}

// BuildReport converts a window of sessions into the report document.
// Sessions are ordered by start time; clock values are rendered in loc; now
// anchors the trailing monthly average.
func BuildReport(sessions []sleephub.Session, loc *time.Location, now time.Time) *Report {
	ordered := make([]sleephub.Session, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime < ordered[j].StartTime
	})

	wakeDates := make([]string, 0, len(ordered))
	for i := range ordered {
		wakeDates = append(wakeDates, wakeDateLabel(&ordered[i], loc))
	}

	b := blockBuilder{sessions: ordered, loc: loc, now: now}

	rep := &Report{
		WakeDates: wakeDates,
		SleepOnsetTime: b.build(stats.KindClock, func(s *sleephub.Session) *float64 {
			return clockOf(s.SleepTime, loc)
		}),
		WakeUpTime: b.build(stats.KindClock, func(s *sleephub.Session) *float64 {
			return clockOf(s.WakeTime, loc)
		}),
		SleepOnsetLatency: b.build(stats.KindDuration, func(s *sleephub.Session) *float64 { return s.SleepLatency }),
		TotalSleepTime:    b.build(stats.KindDuration, func(s *sleephub.Session) *float64 { return s.TimeInSleep }),
		DeepSleepTime:     b.build(stats.KindDuration, func(s *sleephub.Session) *float64 { return s.TimeInDeep }),
		SnoringTime:       b.build(stats.KindDuration, func(s *sleephub.Session) *float64 { return s.TimeInSnoring }),
		SleepEfficiency:   b.build(stats.KindPercent, func(s *sleephub.Session) *float64 { return s.SleepEfficiency }),
		REMRatio:          b.build(stats.KindPercent, func(s *sleephub.Session) *float64 { return s.REMRatio }),
		SleepScore:        b.build(stats.KindScore, func(s *sleephub.Session) *float64 { return s.SleepIndex }),
	}

	// The score has no monthly average in the agent contract.
	rep.SleepScore.MonthAvg = nil

	return rep
}

// blockBuilder aggregates one metric over the ordered session window.
type blockBuilder struct {
	sessions []sleephub.Session
	loc      *time.Location
	now      time.Time
}

func (b *blockBuilder) build(kind stats.Kind, value func(*sleephub.Session) *float64) MetricBlock {
	samples := make([]stats.Sample, 0, len(b.sessions))
	for i := range b.sessions {
		samples = append(samples, stats.Sample{
			Date:  wakeDate(&b.sessions[i], b.loc, b.now),
			Value: value(&b.sessions[i]),
		})
	}

	sum := stats.Aggregate(kind, samples, b.now)
	return MetricBlock{Daily: sum.Daily, MonthAvg: sum.MonthAvg, Trend: sum.Trend}
}

// clockOf converts a service timestamp into a normalized clock sample value.
func clockOf(raw string, loc *time.Location) *float64 {
	t, ok := parseTime(raw, loc)
	if !ok {
		return nil
	}
	v := stats.ClockValue(t)
	return &v
}

// wakeDateLabel renders the session's wake date as "2006-01-02 (Mon)",
// falling back to the raw prefix when the timestamp does not parse.
func wakeDateLabel(s *sleephub.Session, loc *time.Location) string {
	if t, ok := parseTime(s.WakeTime, loc); ok {
		return t.Format("2006-01-02 (Mon)")
	}
	if len(s.WakeTime) >= 10 {
		return s.WakeTime[:10]
	}
	return s.WakeTime
}

// wakeDate returns the session's wake timestamp for month-window bucketing,
// defaulting to now so an unparseable session is not silently aged out of
// the average.
func wakeDate(s *sleephub.Session, loc *time.Location, now time.Time) time.Time {
	if t, ok := parseTime(s.WakeTime, loc); ok {
		return t
	}
	return now
}

// parseTime parses a service timestamp (RFC3339, "Z" or offset) into loc.
func parseTime(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(loc), true
}
