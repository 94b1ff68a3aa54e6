package jobs

import (
	"testing"
	"time"
)

// TestEstimateMinutes verifies speed factors shorten or lengthen estimates.
func TestEstimateMinutes(t *testing.T) {
	cases := []struct {
		seconds float64
		speed   float64
		want    int
	}{
		{seconds: 600, speed: 2.0, want: 5},
		{seconds: 600, speed: 0.6, want: 16},
		{seconds: 600, speed: 0, want: 10},
		{seconds: 59, speed: 1, want: 0},
		{seconds: -5, speed: 1, want: 0},
	}
	for _, tc := range cases {
		if got := EstimateMinutes(tc.seconds, tc.speed); got != tc.want {
			t.Fatalf("EstimateMinutes(%v, %v) = %d, want %d", tc.seconds, tc.speed, got, tc.want)
		}
	}
}

// TestRemaining checks projection from average task time.
func TestRemaining(t *testing.T) {
	if got := Remaining(time.Minute, Progress{Total: 4}); got != 0 {
		t.Fatalf("remaining without progress = %v", got)
	}
	if got := Remaining(2*time.Minute, Progress{Total: 4, Completed: 2}); got != 2*time.Minute {
		t.Fatalf("remaining = %v, want 2m", got)
	}
	if got := Remaining(time.Minute, Progress{Total: 2, Completed: 2}); got != 0 {
		t.Fatalf("remaining when done = %v", got)
	}
}

// TestFormatElapsed verifies zero padding and unbounded hours.
func TestFormatElapsed(t *testing.T) {
	if got := FormatElapsed(0); got != "00:00:00" {
		t.Fatalf("got %q", got)
	}
	if got := FormatElapsed(3661 * time.Second); got != "01:01:01" {
		t.Fatalf("got %q", got)
	}
	if got := FormatElapsed(100 * time.Hour); got != "100:00:00" {
		t.Fatalf("got %q", got)
	}
}
