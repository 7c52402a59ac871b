package globaltime

import (
	"testing"
	"time"
)

func TestMockTime(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	SetMockTime(fixed)
	defer ResetTime()

	if got := UTC(); !got.Equal(fixed) || got.Location() != time.UTC {
		t.Fatalf("unexpected UTC time: %v", got)
	}
	if got := Since(fixed.Add(-90 * time.Second)); got != 90*time.Second {
		t.Fatalf("unexpected elapsed time: %v", got)
	}
}
