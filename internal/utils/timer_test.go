package utils

import (
	"testing"
	"time"
)

// TestNewTimer_StartsImmediately verifies that Stop on a fresh timer captures
// a positive duration.
func TestNewTimer_StartsImmediately(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	timer.Stop()

	if timer.GetDuration() <= 0 {
		t.Errorf("NewTimer + Stop: expected positive duration, got %v", timer.GetDuration())
	}
}

// TestTimer_GetDuration_BeforeStop verifies the zero value before Stop.
func TestTimer_GetDuration_BeforeStop(t *testing.T) {
	if got := NewTimer().GetDuration(); got != 0 {
		t.Errorf("expected zero before Stop, got %v", got)
	}
}
