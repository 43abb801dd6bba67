package stats

import "testing"

func TestClassifyTrendNumeric(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Trend
	}{
		{"clearly increasing", []float64{60, 62, 80, 85}, TrendIncreasing},
		{"clearly decreasing", []float64{85, 80, 62, 60}, TrendDecreasing},
		{"below noise threshold", []float64{89, 92, 85, 95}, TrendNone},
		{"flat", []float64{80, 80, 80, 80}, TrendNone},
		{"three values insufficient", []float64{10, 50, 90}, TrendNone},
		{"single value", []float64{42}, TrendNone},
		{"empty", nil, TrendNone},
		{"odd length later half larger", []float64{50, 50, 70, 70, 70}, TrendIncreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyTrend(KindScore, tt.values); got != tt.want {
				t.Errorf("classifyTrend(%v): got %s, want %s", tt.values, got, tt.want)
			}
		})
	}
}

func TestClassifyTrendSpecExample(t *testing.T) {
	// daily sleep_score [89, 92, 85, 95]: earlier mean 90.5, later mean 90;
	// the 0.5 difference is inside the 3% noise band, so no trend even
	// though the last value is the highest.
	if got := classifyTrend(KindScore, []float64{89, 92, 85, 95}); got != TrendNone {
		t.Errorf("got %s, want no_trend", got)
	}
}

func TestClassifyTrendClock(t *testing.T) {
	const hour = 3600.0

	tests := []struct {
		name   string
		values []float64
		want   Trend
	}{
		{"getting later", []float64{23 * hour, 23 * hour, 24.5 * hour, 25 * hour}, TrendGettingLater},
		{"getting earlier", []float64{25 * hour, 24.5 * hour, 23 * hour, 23 * hour}, TrendGettingEarlier},
		{"shift under five minutes", []float64{23 * hour, 23 * hour, 23*hour + 120, 23*hour + 120}, TrendNone},
		{"insufficient data", []float64{23 * hour, 24 * hour}, TrendNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyTrend(KindClock, tt.values); got != tt.want {
				t.Errorf("classifyTrend(%v): got %s, want %s", tt.values, got, tt.want)
			}
		})
	}
}

func TestClassifyTrendMonotoneSeparation(t *testing.T) {
	// Every later-half value exceeding every earlier-half value by more
	// than the threshold must classify as increasing.
	values := []float64{10, 11, 12, 20, 21, 22}
	if got := classifyTrend(KindScore, values); got != TrendIncreasing {
		t.Errorf("got %s, want increasing", got)
	}

	clock := []float64{23 * 3600, 23 * 3600, 23 * 3600, 24 * 3600, 24 * 3600, 24 * 3600}
	if got := classifyTrend(KindClock, clock); got != TrendGettingLater {
		t.Errorf("got %s, want getting_later", got)
	}
}

func TestClassifyTrendDeterministic(t *testing.T) {
	values := []float64{71.3, 68.9, 80.1, 83.7, 79.9, 85.2}
	first := classifyTrend(KindPercent, values)
	for i := 0; i < 10; i++ {
		if got := classifyTrend(KindPercent, values); got != first {
			t.Fatalf("classification unstable: %s then %s", first, got)
		}
	}
}
