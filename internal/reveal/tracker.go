package reveal

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultThreshold is the fraction of a region that must be inside the
// viewport before it reveals.
const DefaultThreshold = 0.1

// State of a tracker. Revealed is terminal.
type State int

const (
	Hidden State = iota
	Revealed
)

func (s State) String() string {
	if s == Revealed {
		return "revealed"
	}
	return "hidden"
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithThreshold sets the intersection ratio needed to reveal. Values outside
// (0, 1] fall back to DefaultThreshold.
func WithThreshold(v float64) Option {
	return func(t *Tracker) {
		if math.IsNaN(v) || v <= 0 || v > 1 {
			v = DefaultThreshold
		}
		t.threshold = v
	}
}

// WithDelay sets the caller delay before the reveal transition starts.
func WithDelay(d time.Duration) Option {
	return func(t *Tracker) {
		if d < 0 {
			d = 0
		}
		t.transition.Delay = d
	}
}

// ReleaseOnReveal tears the observation down on the first positive hit
// instead of keeping it until Close.
func ReleaseOnReveal() Option {
	return func(t *Tracker) {
		t.releaseOnReveal = true
	}
}

// OnReveal registers fn to run once when the region reveals. It runs on the
// tracker goroutine, or inside Track when failing open.
func OnReveal(fn func(region string)) Option {
	return func(t *Tracker) {
		t.onReveal = append(t.onReveal, fn)
	}
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// Tracker holds the reveal state of one region.
type Tracker struct {
	region          string
	threshold       float64
	transition      Transition
	releaseOnReveal bool
	onReveal        []func(string)
	log             *zap.Logger

	visible atomic.Bool

	obs      Observer
	handle   Handle
	mu       sync.Mutex
	released bool
	done     chan struct{}
}

// Track starts observing region. A nil observer, or one that fails to
// observe, yields a tracker that is already visible.
func Track(obs Observer, region string, opts ...Option) *Tracker {
	t := &Tracker{
		region:     region,
		threshold:  DefaultThreshold,
		transition: Transition{Duration: DefaultDuration},
		log:        zap.NewNop(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	if obs == nil {
		t.log.Debug("no observer, revealing", zap.String("region", region))
		t.failOpen()
		return t
	}
	h, entries, err := obs.Observe(region, t.threshold)
	if err != nil {
		t.log.Debug("observe failed, revealing", zap.String("region", region), zap.Error(err))
		t.failOpen()
		return t
	}

	t.obs = obs
	t.handle = h
	go t.run(entries)
	return t
}

func (t *Tracker) failOpen() {
	t.released = true
	close(t.done)
	t.reveal()
}

func (t *Tracker) run(entries <-chan Entry) {
	defer close(t.done)
	for e := range entries {
		if t.visible.Load() {
			continue
		}
		if !e.Intersecting || e.Ratio < t.threshold {
			continue
		}
		t.reveal()
		if t.releaseOnReveal {
			t.release()
		}
	}
}

func (t *Tracker) reveal() {
	if !t.visible.CompareAndSwap(false, true) {
		return
	}
	t.log.Debug("region revealed", zap.String("region", t.region))
	for _, fn := range t.onReveal {
		fn(t.region)
	}
}

func (t *Tracker) release() {
	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		return
	}
	t.released = true
	t.mu.Unlock()
	t.obs.Release(t.handle)
}

// Close releases the observation and waits until no further report can be
// processed. It is idempotent; the reveal state is kept.
func (t *Tracker) Close() {
	t.release()
	<-t.done
}

// Region is the observed region id.
func (t *Tracker) Region() string { return t.region }

// Threshold is the effective reveal threshold.
func (t *Tracker) Threshold() float64 { return t.threshold }

// Visible reports whether the region has revealed.
func (t *Tracker) Visible() bool { return t.visible.Load() }

// State is Hidden or Revealed.
func (t *Tracker) State() State {
	if t.visible.Load() {
		return Revealed
	}
	return Hidden
}

// Transition returns the presentation of this region's reveal.
func (t *Tracker) Transition() Transition { return t.transition }
