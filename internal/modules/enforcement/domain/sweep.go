package domain

// SweepResult summarises one batch of enforcement calls.
// Completed is false when at least one channel was evicted for missing moderator rights.
type SweepResult struct {
	Completed  bool     `json:"completed"`
	Evicted    []string `json:"evicted,omitempty"`
	TargetGone bool     `json:"target_gone,omitempty"`
	Attempted  int      `json:"attempted"`
	Succeeded  int      `json:"succeeded"`
}

// EvictedChannel returns the first evicted channel, or "" when none was.
func (r SweepResult) EvictedChannel() string {
	if len(r.Evicted) == 0 {
		return ""
	}
	return r.Evicted[0]
}
