package call

import "testing"

func TestRoomName(t *testing.T) {
	tests := []struct {
		name    string
		eventID string
		want    string
	}{
		{name: "plain id", eventID: "abc123", want: "eventbeta-abc123"},
		{name: "uppercase lowered", eventID: "AbC123", want: "eventbeta-abc123"},
		{name: "punctuation collapsed", eventID: "ev!!42", want: "eventbeta-ev-42"},
		{name: "run of separators collapsed", eventID: "ev -_.42", want: "eventbeta-ev-42"},
		{name: "leading separators dropped", eventID: "--ev42", want: "eventbeta-ev42"},
		{name: "trailing separators dropped", eventID: "ev42--", want: "eventbeta-ev42"},
		{name: "empty id falls back", eventID: "", want: "eventbeta-default"},
		{name: "only separators falls back", eventID: "---", want: "eventbeta-default"},
		{name: "unicode stripped", eventID: "évent42", want: "eventbeta-vent42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoomName("eventbeta", tt.eventID); got != tt.want {
				t.Fatalf("RoomName(%q) = %q, want %q", tt.eventID, got, tt.want)
			}
		})
	}
}

func TestRoomNameDeterministic(t *testing.T) {
	a := RoomName("eventbeta", "Ev 42!")
	b := RoomName("eventbeta", "Ev 42!")
	if a != b {
		t.Fatalf("RoomName not deterministic: %q vs %q", a, b)
	}
}

func TestCounterFloor(t *testing.T) {
	c := NewCounter()
	if c.Count() != 1 {
		t.Fatalf("initial Count() = %d, want 1", c.Count())
	}

	// Leave events before any join must not push the count below 1.
	c.Left()
	c.Left()
	if c.Count() != 1 {
		t.Fatalf("Count() after spurious leaves = %d, want 1", c.Count())
	}

	c.Joined()
	c.Joined()
	if c.Count() != 3 {
		t.Fatalf("Count() after two joins = %d, want 3", c.Count())
	}

	c.Left()
	c.Left()
	c.Left()
	if c.Count() != 1 {
		t.Fatalf("Count() after draining = %d, want 1", c.Count())
	}
}
