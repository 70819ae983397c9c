// Package stamp derives release version tokens from the wall clock.
//
// A token looks like "20240101-120000": zero-padded UTC fields ordered
// from most to least significant, so tokens sort lexicographically in
// generation order. Two releases within the same second collide; the
// pipeline accepts that rather than depending on an external counter.
package stamp

import (
	"time"
)

// Layout is the version token time layout. Every character it produces
// is valid in a Docker tag and in a file name.
const Layout = "20060102-150405"

// Stamper mints one version token per call.
type Stamper interface {
	NextVersion() string
}

type clockStamper struct {
	now func() time.Time
}

// NewStamper returns a Stamper reading the given clock. A nil clock
// falls back to time.Now, but callers are expected to inject it so
// tests can run against a fixed time.
func NewStamper(now func() time.Time) Stamper {
	if now == nil {
		now = time.Now
	}
	return &clockStamper{now: now}
}

func (s *clockStamper) NextVersion() string {
	return s.now().UTC().Format(Layout)
}
