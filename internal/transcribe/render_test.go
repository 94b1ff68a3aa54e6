package transcribe

import "testing"

// TestFormatTimestamp checks padding, truncation and unbounded hours.
func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:       "00:00:00",
		3661:    "01:01:01",
		59.999:  "00:00:59",
		90061.2: "25:01:01",
		-4:      "00:00:00",
	}
	for in, want := range cases {
		if got := FormatTimestamp(in); got != want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", in, got, want)
		}
	}
}

// TestRenderEmpty checks empty inputs render to empty strings.
func TestRenderEmpty(t *testing.T) {
	if got := RenderPlain(nil); got != "" {
		t.Fatalf("RenderPlain(nil) = %q", got)
	}
	if got := RenderTimestamped([]Segment{}); got != "" {
		t.Fatalf("RenderTimestamped(empty) = %q", got)
	}
}

// TestRenderPlain checks trimming and single-space joins.
func TestRenderPlain(t *testing.T) {
	got := RenderPlain([]Segment{
		{Start: 0, End: 1, Text: "  Hello there. "},
		{Start: 1, End: 2, Text: "\tGeneral Kenobi!\n"},
	})
	if got != "Hello there. General Kenobi!" {
		t.Fatalf("RenderPlain() = %q", got)
	}
}

// TestRenderTimestamped checks the per-line format and order.
func TestRenderTimestamped(t *testing.T) {
	got := RenderTimestamped([]Segment{
		{Start: 0.4, End: 3.9, Text: " first "},
		{Start: 3661.7, End: 3670, Text: "second"},
	})
	want := "[00:00:00 --> 00:00:03] first\n[01:01:01 --> 01:01:10] second"
	if got != want {
		t.Fatalf("RenderTimestamped() = %q, want %q", got, want)
	}
}

// TestRenderSelectsForm checks the flag dispatch.
func TestRenderSelectsForm(t *testing.T) {
	segments := []Segment{{Start: 0, End: 1, Text: "a"}}
	if got := Render(segments, false); got != "a" {
		t.Fatalf("plain = %q", got)
	}
	if got := Render(segments, true); got != "[00:00:00 --> 00:00:01] a" {
		t.Fatalf("timestamped = %q", got)
	}
}
