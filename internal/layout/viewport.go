// Package layout mirrors the browser viewport on the server: where each
// region sits on the page, how tall the viewport is and how far it is
// scrolled. From that it answers the two questions the page needs, how much
// of a region is visible and where to scroll to bring a section to the top.
package layout

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/mailbox"
	"github.com/Zachkp/portfolio/internal/navigator"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/section"
)

// DefaultSteps is the number of interpolated positions of a smooth scroll.
const DefaultSteps = 12

// Region is the rendered box of one region, in document coordinates.
type Region struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// RemoteScroll hands a scroll target to the real host instead of animating
// locally. The host is expected to report the resulting positions back
// through ScrollTo.
type RemoteScroll func(ctx context.Context, y float64) error

type observation struct {
	region    string
	threshold float64
	feed      *mailbox.Mailbox[reveal.Entry]

	reported     bool
	intersecting bool
	qualifying   bool
}

// Option configures a Viewport.
type Option func(*Viewport)

// WithStepInterval sets the pause between smooth-scroll positions. Zero
// scrolls through every position without pausing.
func WithStepInterval(d time.Duration) Option {
	return func(v *Viewport) { v.interval = d }
}

// WithSteps sets the number of smooth-scroll positions.
func WithSteps(n int) Option {
	return func(v *Viewport) {
		if n > 0 {
			v.steps = n
		}
	}
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(v *Viewport) {
		if l != nil {
			v.log = l
		}
	}
}

// Viewport is safe for concurrent use. It implements reveal.Observer and
// navigator.Scroller.
type Viewport struct {
	mu        sync.Mutex
	height    float64
	docHeight float64
	scrollY   float64
	regions   map[string]Region
	observers map[reveal.Handle]*observation
	listeners []func(y float64)
	remote    RemoteScroll

	interval time.Duration
	steps    int
	log      *zap.Logger
}

var (
	_ reveal.Observer    = (*Viewport)(nil)
	_ navigator.Scroller = (*Viewport)(nil)
)

// New returns an empty viewport. Nothing intersects until a layout arrives.
func New(opts ...Option) *Viewport {
	v := &Viewport{
		regions:   make(map[string]Region),
		observers: make(map[reveal.Handle]*observation),
		steps:     DefaultSteps,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SetRemote routes ScrollIntoView to the host. Pass nil to animate locally.
func (v *Viewport) SetRemote(fn RemoteScroll) {
	v.mu.Lock()
	v.remote = fn
	v.mu.Unlock()
}

// OnScroll registers fn to be called with every new scroll offset.
func (v *Viewport) OnScroll(fn func(y float64)) {
	v.mu.Lock()
	v.listeners = append(v.listeners, fn)
	v.mu.Unlock()
}

// SetLayout replaces the viewport height and region boxes. docHeight may be
// zero, in which case the bottom of the lowest region is used.
func (v *Viewport) SetLayout(height, docHeight float64, regions []Region) {
	v.mu.Lock()
	v.height = math.Max(0, height)
	v.regions = make(map[string]Region, len(regions))
	bottom := 0.0
	for _, r := range regions {
		if r.ID == "" {
			continue
		}
		r.Height = math.Max(0, r.Height)
		v.regions[r.ID] = r
		bottom = math.Max(bottom, r.Top+r.Height)
	}
	v.docHeight = math.Max(docHeight, bottom)
	v.scrollY = v.clamp(v.scrollY)
	v.publishLocked()
	y := v.scrollY
	listeners := v.listeners
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(y)
	}
}

// ScrollTo moves the viewport to y, clamped to the document.
func (v *Viewport) ScrollTo(y float64) {
	v.mu.Lock()
	v.scrollY = v.clamp(y)
	v.publishLocked()
	y = v.scrollY
	listeners := v.listeners
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(y)
	}
}

// ScrollY is the current scroll offset.
func (v *Viewport) ScrollY() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollY
}

// AtBottom reports whether the viewport cannot scroll any further down.
func (v *Viewport) AtBottom() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	limit := v.docHeight - v.height
	return limit > 0 && v.scrollY >= limit-1
}

// Height is the viewport height.
func (v *Viewport) Height() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// Region returns the box of id.
func (v *Viewport) Region(id string) (Region, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	r, ok := v.regions[id]
	return r, ok
}

// SectionTops returns the top of every laid-out section, in page order.
func (v *Viewport) SectionTops() []navigator.Top {
	v.mu.Lock()
	defer v.mu.Unlock()
	var tops []navigator.Top
	for _, id := range section.All() {
		if r, ok := v.regions[string(id)]; ok {
			tops = append(tops, navigator.Top{Section: id, Y: r.Top})
		}
	}
	sort.SliceStable(tops, func(i, j int) bool { return tops[i].Y < tops[j].Y })
	return tops
}

// ScrollIntoView brings the top of section id to the top of the viewport,
// as far as the document allows.
func (v *Viewport) ScrollIntoView(ctx context.Context, id section.ID) error {
	v.mu.Lock()
	r, ok := v.regions[string(id)]
	if !ok {
		v.mu.Unlock()
		return navigator.ErrNoRegion
	}
	start := v.scrollY
	target := v.clamp(r.Top)
	remote := v.remote
	v.mu.Unlock()

	if remote != nil {
		return remote(ctx, target)
	}

	v.log.Debug("smooth scroll", zap.String("section", id.String()),
		zap.Float64("from", start), zap.Float64("to", target))
	for i := 1; i <= v.steps; i++ {
		y := target
		if i < v.steps {
			y = start + (target-start)*easeInOut(float64(i)/float64(v.steps))
		}
		v.ScrollTo(y)
		if i == v.steps || v.interval <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(v.interval):
		}
	}
	return nil
}

// Observe implements reveal.Observer. The stream receives one entry as soon
// as the region is laid out and then one whenever the region crosses the
// threshold or the viewport edge.
func (v *Viewport) Observe(region string, threshold float64) (reveal.Handle, <-chan reveal.Entry, error) {
	o := &observation{
		region:    region,
		threshold: threshold,
		feed:      mailbox.New[reveal.Entry](),
	}
	h := reveal.NewHandle()

	v.mu.Lock()
	v.observers[h] = o
	v.publishOneLocked(o)
	v.mu.Unlock()
	return h, o.feed.C(), nil
}

// Release implements reveal.Observer.
func (v *Viewport) Release(h reveal.Handle) {
	v.mu.Lock()
	o, ok := v.observers[h]
	delete(v.observers, h)
	v.mu.Unlock()
	if ok {
		o.feed.Stop()
	}
}

// Observations is the number of live observations.
func (v *Viewport) Observations() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.observers)
}

// Close releases every observation.
func (v *Viewport) Close() {
	v.mu.Lock()
	obs := v.observers
	v.observers = make(map[reveal.Handle]*observation)
	v.mu.Unlock()
	for _, o := range obs {
		o.feed.Stop()
	}
}

func (v *Viewport) clamp(y float64) float64 {
	limit := math.Max(0, v.docHeight-v.height)
	return math.Min(math.Max(0, y), limit)
}

func (v *Viewport) publishLocked() {
	for _, o := range v.observers {
		v.publishOneLocked(o)
	}
}

func (v *Viewport) publishOneLocked(o *observation) {
	r, ok := v.regions[o.region]
	if !ok || v.height <= 0 {
		return
	}
	ratio, intersecting := Intersection(r, v.scrollY, v.height)
	qualifying := intersecting && ratio >= o.threshold
	if o.reported && o.intersecting == intersecting && o.qualifying == qualifying {
		return
	}
	o.reported = true
	o.intersecting = intersecting
	o.qualifying = qualifying
	o.feed.Push(reveal.Entry{Region: o.region, Ratio: ratio, Intersecting: intersecting})
}

// Intersection returns the visible fraction of r for a viewport of the given
// height scrolled to y. Touching edges intersect with ratio zero; an empty
// region inside the viewport counts as fully visible.
func Intersection(r Region, y, height float64) (ratio float64, intersecting bool) {
	top := math.Max(r.Top, y)
	bottom := math.Min(r.Top+r.Height, y+height)
	if bottom < top {
		return 0, false
	}
	if r.Height <= 0 {
		return 1, true
	}
	return (bottom - top) / r.Height, true
}

func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}
