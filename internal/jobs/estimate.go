package jobs

import (
	"fmt"
	"math"
	"time"
)

// EstimateMinutes converts an audio length into an expected processing time
// for a model with the given speed factor. Factors above 1 run faster than
// real time.
func EstimateMinutes(audioSeconds, speedFactor float64) int {
	if audioSeconds <= 0 || math.IsNaN(audioSeconds) {
		return 0
	}
	if speedFactor <= 0 || math.IsNaN(speedFactor) {
		speedFactor = 1
	}
	return int((audioSeconds / 60) / speedFactor)
}

// Remaining projects the time left in a run from the average time per
// finished task. It returns 0 until at least one task finished.
func Remaining(elapsed time.Duration, progress Progress) time.Duration {
	if progress.Completed <= 0 || progress.Completed >= progress.Total {
		return 0
	}
	perTask := elapsed / time.Duration(progress.Completed)
	return perTask * time.Duration(progress.Total-progress.Completed)
}

// FormatElapsed renders a duration as zero-padded HH:MM:SS with unbounded hours.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
