// Package reveal implements the one-way Hidden → Revealed signal that drives
// the fade-in of page regions as they scroll into view.
//
// A Tracker watches a single region through an Observer, the capability that
// reports how much of the region is inside the viewport. The signal starts
// false, flips to true on the first report at or above the threshold, and
// never flips back. When no observer is available the tracker fails open and
// reports visible straight away so content is never stuck hidden.
package reveal

import (
	"errors"

	"github.com/google/uuid"
)

// ErrUnsupported is returned by observers that cannot report intersection.
var ErrUnsupported = errors.New("reveal: intersection observation unsupported")

// Entry is one intersection report for a region.
type Entry struct {
	Region       string
	Ratio        float64
	Intersecting bool
}

// Handle identifies a live observation.
type Handle string

// NewHandle returns a fresh observation handle.
func NewHandle() Handle {
	return Handle(uuid.NewString())
}

// Observer reports viewport intersection for regions.
//
// Observe starts watching region and returns the stream of reports. Release
// ends the observation: the stream is closed and no entry is delivered after
// Release returns. Release must be idempotent and safe for concurrent use.
type Observer interface {
	Observe(region string, threshold float64) (Handle, <-chan Entry, error)
	Release(h Handle)
}

// Unsupported is an Observer for environments that cannot report
// intersection, such as static export. Trackers built on it are visible.
type Unsupported struct{}

func (Unsupported) Observe(string, float64) (Handle, <-chan Entry, error) {
	return "", nil, ErrUnsupported
}

func (Unsupported) Release(Handle) {}
