package stamp

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNextVersionFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStamper(fixedClock(at))

	if got, want := s.NextVersion(), "20240101-120000"; got != want {
		t.Fatalf("NextVersion returned %q, want %q", got, want)
	}
}

func TestNextVersionUsesUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	at := time.Date(2024, 6, 15, 3, 30, 45, 0, loc) // 00:30:45 UTC
	s := NewStamper(fixedClock(at))

	if got, want := s.NextVersion(), "20240615-003045"; got != want {
		t.Fatalf("NextVersion returned %q, want %q", got, want)
	}
}

func TestVersionsSortLexicallyByTime(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
	steps := []time.Duration{
		time.Second,
		time.Minute,
		time.Hour,
		24 * time.Hour, // rolls the year over
		365 * 24 * time.Hour,
	}

	prev := NewStamper(fixedClock(base)).NextVersion()
	at := base
	for _, step := range steps {
		at = at.Add(step)
		next := NewStamper(fixedClock(at)).NextVersion()
		if !(prev < next) {
			t.Fatalf("version %q does not sort before %q (step %v)", prev, next, step)
		}
		prev = next
	}
}

func TestZeroPaddingKeepsOrdering(t *testing.T) {
	t.Parallel()

	// 09:05:05 must not sort after 10:00:00 of the same day.
	early := NewStamper(fixedClock(time.Date(2024, 3, 3, 9, 5, 5, 0, time.UTC))).NextVersion()
	late := NewStamper(fixedClock(time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC))).NextVersion()
	if !(early < late) {
		t.Fatalf("%q does not sort before %q", early, late)
	}
}

func TestTokenIsTagSafe(t *testing.T) {
	t.Parallel()

	v := NewStamper(fixedClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))).NextVersion()
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			t.Fatalf("version %q contains character %q outside the tag alphabet", v, r)
		}
	}
}
