package sleephub

import "time"

// Session is one recorded sleep event as returned by the SleepHub data API.
// Identity is the server-assigned ID; metric fields are nil when the service
// has not (yet) derived them for this session.
type Session struct {
	ID              string   `json:"id"`
	State           string   `json:"state,omitempty"`
	StartTime       string   `json:"start_time,omitempty"`
	SleepTime       string   `json:"sleep_time,omitempty"`
	WakeTime        string   `json:"wake_time,omitempty"`
	SleepLatency    *float64 `json:"sleep_latency,omitempty"`
	TimeInSleep     *float64 `json:"time_in_sleep,omitempty"`
	TimeInDeep      *float64 `json:"time_in_deep,omitempty"`
	TimeInREM       *float64 `json:"time_in_rem,omitempty"`
	TimeInSnoring   *float64 `json:"time_in_snoring,omitempty"`
	SleepEfficiency *float64 `json:"sleep_efficiency,omitempty"`
	REMRatio        *float64 `json:"rem_ratio,omitempty"`
	DeepRatio       *float64 `json:"deep_ratio,omitempty"`
	SleepIndex      *float64 `json:"sleep_index,omitempty"`
}

// HasMetrics reports whether the service has attached any derived metrics.
// A freshly uploaded session can appear in the listing before analysis
// completes, with only its timestamps populated.
func (s *Session) HasMetrics() bool {
	return s.SleepLatency != nil || s.TimeInSleep != nil || s.SleepIndex != nil ||
		s.SleepEfficiency != nil || s.REMRatio != nil
}

// AverageStats is the service-computed 30-day average block. Parsed for
// completeness; the aggregator computes monthly averages locally.
type AverageStats struct {
	SleepTime       string   `json:"sleep_time,omitempty"`
	WakeTime        string   `json:"wake_time,omitempty"`
	SleepLatency    *float64 `json:"sleep_latency,omitempty"`
	TimeInSleep     *float64 `json:"time_in_sleep,omitempty"`
	TimeInDeep      *float64 `json:"time_in_deep,omitempty"`
	TimeInSnoring   *float64 `json:"time_in_snoring,omitempty"`
	SleepEfficiency *float64 `json:"sleep_efficiency,omitempty"`
	REMRatio        *float64 `json:"rem_ratio,omitempty"`
}

// SessionList is the result of a windowed session listing.
type SessionList struct {
	Sessions []Session
	Averages *AverageStats
}

// TokenPair is the result of a successful token refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
