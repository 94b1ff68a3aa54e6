package transcribe

import (
	"fmt"
	"math"
	"strings"
)

// FormatTimestamp converts seconds to HH:MM:SS. Fractions are truncated and
// hours are not wrapped at 24.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// RenderPlain joins trimmed segment texts with single spaces.
func RenderPlain(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		parts = append(parts, strings.TrimSpace(segment.Text))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// RenderTimestamped writes one "[start --> end] text" line per segment.
func RenderTimestamped(segments []Segment) string {
	lines := make([]string, 0, len(segments))
	for _, segment := range segments {
		lines = append(lines, fmt.Sprintf("[%s --> %s] %s",
			FormatTimestamp(segment.Start),
			FormatTimestamp(segment.End),
			strings.TrimSpace(segment.Text),
		))
	}
	return strings.Join(lines, "\n")
}

// Render picks the timestamped or plain form.
func Render(segments []Segment, includeTimestamps bool) string {
	if includeTimestamps {
		return RenderTimestamped(segments)
	}
	return RenderPlain(segments)
}
