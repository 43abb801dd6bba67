package stats

import (
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func day(offset int) time.Time {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

var aggNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestAggregateScore(t *testing.T) {
	samples := []Sample{
		{Date: day(-3), Value: fp(80)},
		{Date: day(-2), Value: nil},
		{Date: day(-1), Value: fp(90)},
	}

	sum := Aggregate(KindScore, samples, aggNow)

	if len(sum.Daily) != 3 {
		t.Fatalf("daily length: got %d, want 3", len(sum.Daily))
	}
	if sum.Daily[0] != 80 || sum.Daily[2] != 90 {
		t.Errorf("daily values: got %v", sum.Daily)
	}
	if sum.Daily[1] != nil {
		t.Errorf("missing score day: got %v, want nil", sum.Daily[1])
	}
	if sum.MonthAvg != 85 {
		t.Errorf("month avg: got %v, want 85", sum.MonthAvg)
	}
	if sum.Trend != TrendNone {
		t.Errorf("trend with 2 values: got %s, want no_trend", sum.Trend)
	}
}

func TestAggregateDurationFormatting(t *testing.T) {
	samples := []Sample{
		{Date: day(-2), Value: fp(7*3600 + 32*60)},
		{Date: day(-1), Value: fp(45 * 60)},
		{Date: day(0), Value: nil},
	}

	sum := Aggregate(KindDuration, samples, aggNow)

	if sum.Daily[0] != "7 hrs 32 mins" {
		t.Errorf("daily[0]: got %v, want 7 hrs 32 mins", sum.Daily[0])
	}
	if sum.Daily[1] != "45 mins" {
		t.Errorf("daily[1]: got %v, want 45 mins", sum.Daily[1])
	}
	if sum.Daily[2] != "N/A" {
		t.Errorf("daily[2]: got %v, want N/A", sum.Daily[2])
	}
}

func TestAggregatePercentFormatting(t *testing.T) {
	samples := []Sample{
		{Date: day(-1), Value: fp(0.874)},
		{Date: day(0), Value: nil},
	}

	sum := Aggregate(KindPercent, samples, aggNow)

	if sum.Daily[0] != "87%" {
		t.Errorf("daily[0]: got %v, want 87%%", sum.Daily[0])
	}
	if sum.Daily[1] != "N/A" {
		t.Errorf("daily[1]: got %v, want N/A", sum.Daily[1])
	}
}

func TestAggregateClockFormatting(t *testing.T) {
	// 23:30 and 00:30 straddle midnight; the normalized mean is midnight.
	late := ClockValue(time.Date(2026, 3, 8, 23, 30, 0, 0, time.UTC))
	early := ClockValue(time.Date(2026, 3, 9, 0, 30, 0, 0, time.UTC))

	samples := []Sample{
		{Date: day(-2), Value: &late},
		{Date: day(-1), Value: &early},
	}

	sum := Aggregate(KindClock, samples, aggNow)

	if sum.Daily[0] != "23:30:00" {
		t.Errorf("daily[0]: got %v, want 23:30:00", sum.Daily[0])
	}
	if sum.Daily[1] != "00:30:00" {
		t.Errorf("daily[1]: got %v, want 00:30:00", sum.Daily[1])
	}
	if sum.MonthAvg != "00:00:00" {
		t.Errorf("month avg: got %v, want 00:00:00", sum.MonthAvg)
	}
}

func TestAggregateMonthAvgAbsentWithoutSamples(t *testing.T) {
	sum := Aggregate(KindScore, []Sample{{Date: day(0), Value: nil}}, aggNow)
	if sum.MonthAvg != nil {
		t.Errorf("month avg with no samples: got %v, want nil", sum.MonthAvg)
	}
	if sum.Trend != TrendNone {
		t.Errorf("trend with no samples: got %s, want no_trend", sum.Trend)
	}
}

func TestAggregateMonthAvgAbsentWithSingleSample(t *testing.T) {
	sum := Aggregate(KindScore, []Sample{{Date: day(-1), Value: fp(90)}}, aggNow)
	if sum.MonthAvg != nil {
		t.Errorf("month avg with one sample: got %v, want nil", sum.MonthAvg)
	}
	if sum.Trend != TrendNone {
		t.Errorf("trend with one sample: got %s, want no_trend", sum.Trend)
	}
}

func TestAggregateMonthAvgIgnoresSamplesOlderThan30Days(t *testing.T) {
	samples := []Sample{
		{Date: day(-45), Value: fp(10)},
		{Date: day(-2), Value: fp(88)},
		{Date: day(-1), Value: fp(92)},
	}

	sum := Aggregate(KindScore, samples, aggNow)
	if sum.MonthAvg != 90 {
		t.Errorf("month avg: got %v, want 90 (45-day-old sample excluded)", sum.MonthAvg)
	}
}

func TestClockValueNormalization(t *testing.T) {
	evening := ClockValue(time.Date(2026, 3, 8, 22, 0, 0, 0, time.UTC))
	pastMidnight := ClockValue(time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC))

	if pastMidnight <= evening {
		t.Errorf("01:00 (%v) should normalize later than 22:00 (%v)", pastMidnight, evening)
	}

	morning := ClockValue(time.Date(2026, 3, 9, 7, 15, 0, 0, time.UTC))
	if got := formatClock(morning); got != "07:15:00" {
		t.Errorf("formatClock round trip: got %s, want 07:15:00", got)
	}
}
