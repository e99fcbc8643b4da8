// Package page owns the UI state of one visitor's page: the theme, the
// active section and the reveal state of every region. Children never hold
// that state themselves; they receive a read-only View and call the page's
// commands.
package page

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/layout"
	"github.com/Zachkp/portfolio/internal/navigator"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/section"
	"github.com/Zachkp/portfolio/internal/theme"
)

// EventKind classifies page events.
type EventKind string

const (
	EventReveal EventKind = "reveal"
	EventActive EventKind = "active"
	EventTheme  EventKind = "theme"
)

// Event is a state change pushed to subscribers.
type Event struct {
	Kind    EventKind
	Region  string
	Delay   time.Duration
	Section section.ID
	Theme   theme.Mode
}

// Options configures a Page.
type Options struct {
	// Threshold is the reveal threshold; zero means reveal.DefaultThreshold.
	Threshold float64
	// Observer replaces the page's viewport as the source of intersection
	// reports. reveal.Unsupported makes every region visible.
	Observer reveal.Observer
	Viewport []layout.Option
	Logger   *zap.Logger
}

// Page is safe for concurrent use.
type Page struct {
	content  *content.Portfolio
	viewport *layout.Viewport
	nav      *navigator.Navigator
	regions  []RegionDef
	log      *zap.Logger

	mu       sync.RWMutex
	theme    theme.Mode
	trackers map[string]*reveal.Tracker
	closed   bool

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	hostMu sync.Mutex
	hosts  []*host
}

type host struct {
	scroll layout.RemoteScroll
}

// New builds the page for p and starts observing every region.
func New(p *content.Portfolio, opts Options) *Page {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	pg := &Page{
		content:  p,
		regions:  Regions(p),
		log:      log,
		trackers: make(map[string]*reveal.Tracker),
		subs:     make(map[int]func(Event)),
	}
	pg.viewport = layout.New(append([]layout.Option{layout.WithLogger(log)}, opts.Viewport...)...)
	pg.nav = navigator.New(pg.viewport,
		navigator.WithLogger(log),
		navigator.OnChange(func(id section.ID) {
			pg.emit(Event{Kind: EventActive, Section: id})
		}),
	)
	pg.viewport.OnScroll(func(y float64) {
		pg.nav.Spy(pg.viewport.SectionTops(), y, pg.viewport.AtBottom())
	})

	var obs reveal.Observer = pg.viewport
	if opts.Observer != nil {
		obs = opts.Observer
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = reveal.DefaultThreshold
	}
	for _, r := range pg.regions {
		delay := r.Delay
		pg.trackers[r.ID] = reveal.Track(obs, r.ID,
			reveal.WithThreshold(threshold),
			reveal.WithDelay(delay),
			reveal.ReleaseOnReveal(),
			reveal.WithLogger(log),
			reveal.OnReveal(func(region string) {
				pg.emit(Event{Kind: EventReveal, Region: region, Delay: delay})
			}),
		)
	}
	return pg
}

// Subscribe registers fn for every future event. Events arrive from several
// goroutines; fn must not block. The returned func unsubscribes.
func (p *Page) Subscribe(fn func(Event)) func() {
	p.subMu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.subMu.Unlock()

	return func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}
}

func (p *Page) emit(e Event) {
	p.subMu.Lock()
	fns := make([]func(Event), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Theme is the current theme.
func (p *Page) Theme() theme.Mode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

// ToggleTheme flips the theme and returns the new mode.
func (p *Page) ToggleTheme() theme.Mode {
	p.mu.Lock()
	p.theme = p.theme.Toggle()
	mode := p.theme
	p.mu.Unlock()

	p.emit(Event{Kind: EventTheme, Theme: mode})
	return mode
}

// SetTheme forces the theme, e.g. from a visitor preference.
func (p *Page) SetTheme(m theme.Mode) {
	p.mu.Lock()
	changed := p.theme != m
	p.theme = m
	p.mu.Unlock()
	if changed {
		p.emit(Event{Kind: EventTheme, Theme: m})
	}
}

// Active is the current section.
func (p *Page) Active() section.ID {
	return p.nav.Active()
}

// NavigateTo scrolls to the named section. Unknown names are ignored.
func (p *Page) NavigateTo(ctx context.Context, raw string) bool {
	return p.nav.NavigateTo(ctx, raw)
}

// ApplyLayout records where the host rendered each region.
func (p *Page) ApplyLayout(height, docHeight float64, regions []layout.Region) {
	p.viewport.SetLayout(height, docHeight, regions)
}

// ApplyScroll records the host's scroll offset.
func (p *Page) ApplyScroll(y float64) {
	p.viewport.ScrollTo(y)
}

// ClaimRemoteScroll hands navigation scrolls to a host. The most recent
// claim wins; releasing it hands scrolling back to the newest remaining
// claim, or to the local viewport when none is left. Release is idempotent.
func (p *Page) ClaimRemoteScroll(fn layout.RemoteScroll) (release func()) {
	h := &host{scroll: fn}
	p.hostMu.Lock()
	p.hosts = append(p.hosts, h)
	p.viewport.SetRemote(fn)
	p.hostMu.Unlock()

	return func() {
		p.hostMu.Lock()
		defer p.hostMu.Unlock()
		for i, other := range p.hosts {
			if other == h {
				p.hosts = append(p.hosts[:i], p.hosts[i+1:]...)
				break
			}
		}
		var next layout.RemoteScroll
		if n := len(p.hosts); n > 0 {
			next = p.hosts[n-1].scroll
		}
		p.viewport.SetRemote(next)
	}
}

// Visible reports whether region has revealed. Unknown regions are visible.
func (p *Page) Visible(region string) bool {
	p.mu.RLock()
	tr, ok := p.trackers[region]
	p.mu.RUnlock()
	return !ok || tr.Visible()
}

// View returns a snapshot for rendering.
func (p *Page) View() View {
	p.mu.RLock()
	defer p.mu.RUnlock()

	regions := make(map[string]RegionView, len(p.trackers))
	for id, tr := range p.trackers {
		regions[id] = RegionView{
			ID:         id,
			Visible:    tr.Visible(),
			Transition: tr.Transition(),
		}
	}
	return View{
		Theme:   p.theme,
		Active:  p.nav.Active(),
		Content: p.content,
		Nav:     p.content.NavItems(),
		regions: regions,
	}
}

// Close stops every observation. The page keeps answering reads.
func (p *Page) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	trackers := make([]*reveal.Tracker, 0, len(p.trackers))
	for _, tr := range p.trackers {
		trackers = append(trackers, tr)
	}
	p.mu.Unlock()

	for _, tr := range trackers {
		tr.Close()
	}
	p.viewport.Close()
}
