package utils

import "time"

// Timer measures time-to-first-byte: created when the request is sent,
// stopped when the response headers arrive.
type Timer struct {
	startTime time.Time
	duration  time.Duration
}

// NewTimer creates a Timer that is already running.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Stop records the time elapsed since NewTimer. Later calls overwrite the
// measurement.
func (t *Timer) Stop() {
	t.duration = time.Since(t.startTime)
}

// GetDuration returns the duration captured by the most recent Stop, or zero.
func (t *Timer) GetDuration() time.Duration {
	return t.duration
}
