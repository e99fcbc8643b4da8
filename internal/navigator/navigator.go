// Package navigator tracks which section of the page is current and moves the
// viewport to a section on request.
//
// Navigation only issues the scroll. The active section follows the scroll
// position through Spy, so it settles once the host reports where the
// viewport ended up.
package navigator

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/section"
)

// DefaultMargin is how far below the viewport top a section may start and
// still count as current; it matches the fixed navigation bar.
const DefaultMargin = 80

// ErrNoRegion is returned by a Scroller when the section is not rendered.
var ErrNoRegion = errors.New("navigator: section not rendered")

// Scroller moves the viewport so the section's top meets the viewport top.
type Scroller interface {
	ScrollIntoView(ctx context.Context, id section.ID) error
}

// Top is the document offset of a rendered section.
type Top struct {
	Section section.ID
	Y       float64
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithMargin overrides DefaultMargin.
func WithMargin(px float64) Option {
	return func(n *Navigator) {
		if px >= 0 {
			n.margin = px
		}
	}
}

// OnChange registers fn to run whenever the active section changes.
func OnChange(fn func(section.ID)) Option {
	return func(n *Navigator) {
		n.onChange = append(n.onChange, fn)
	}
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.log = l
		}
	}
}

// Navigator is safe for concurrent use.
type Navigator struct {
	mu       sync.Mutex
	active   section.ID
	scroller Scroller
	margin   float64
	onChange []func(section.ID)
	log      *zap.Logger
}

// New returns a navigator whose active section is the hero.
func New(s Scroller, opts ...Option) *Navigator {
	n := &Navigator{
		active:   section.Hero,
		scroller: s,
		margin:   DefaultMargin,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Active is the current section.
func (n *Navigator) Active() section.ID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// NavigateTo scrolls to the section named raw and reports whether a scroll
// was issued. Unknown names and sections that are not rendered are ignored.
func (n *Navigator) NavigateTo(ctx context.Context, raw string) bool {
	id, ok := section.Parse(raw)
	if !ok {
		n.log.Debug("ignoring unknown section", zap.String("section", raw))
		return false
	}
	if n.scroller == nil {
		return false
	}
	if err := n.scroller.ScrollIntoView(ctx, id); err != nil {
		if errors.Is(err, ErrNoRegion) {
			n.log.Debug("section not rendered", zap.String("section", id.String()))
		} else {
			n.log.Warn("scroll failed", zap.String("section", id.String()), zap.Error(err))
		}
		return false
	}
	return true
}

// SetActive makes id current and reports whether it changed.
func (n *Navigator) SetActive(id section.ID) bool {
	if !id.Valid() {
		return false
	}
	n.mu.Lock()
	if n.active == id {
		n.mu.Unlock()
		return false
	}
	n.active = id
	fns := n.onChange
	n.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
	return true
}

// Spy infers the active section from a scroll offset and updates it.
func (n *Navigator) Spy(tops []Top, y float64, atBottom bool) section.ID {
	if id, ok := Infer(tops, y, n.margin, atBottom); ok {
		n.SetActive(id)
	}
	return n.Active()
}

// Infer picks the last section whose top is at or above y+margin. At the
// bottom of the document the last section wins even if it never reaches the
// top. tops must be sorted by Y. It reports false when tops is empty.
func Infer(tops []Top, y, margin float64, atBottom bool) (section.ID, bool) {
	if len(tops) == 0 {
		return "", false
	}
	if atBottom {
		return tops[len(tops)-1].Section, true
	}
	current := tops[0].Section
	for _, t := range tops {
		if t.Y > y+margin {
			break
		}
		current = t.Section
	}
	return current, true
}
