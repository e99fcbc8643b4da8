package page

import (
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/section"
	"github.com/Zachkp/portfolio/internal/theme"
)

// View is an immutable snapshot of a Page for templates.
type View struct {
	Theme   theme.Mode
	Active  section.ID
	Content *content.Portfolio
	Nav     []content.NavItem

	regions map[string]RegionView
}

// RegionView is the render state of one revealed block.
type RegionView struct {
	ID         string
	Visible    bool
	Transition reveal.Transition
}

func (r RegionView) Classes() string {
	return r.Transition.Classes(r.Visible)
}

func (r RegionView) DelayMillis() int64 {
	return r.Transition.DelayMillis()
}

// Region looks up a block. Unknown ids render visible.
func (v View) Region(id string) RegionView {
	if r, ok := v.regions[id]; ok {
		return r
	}
	return RegionView{ID: id, Visible: true, Transition: reveal.Transition{Duration: reveal.DefaultDuration}}
}

// Item is Region for the i-th repeated block of a section.
func (v View) Item(s section.ID, i int) RegionView {
	return v.Region(ItemID(s, i))
}

// IsActive is a template helper for highlighting the current nav link.
func (v View) IsActive(id section.ID) bool {
	return v.Active == id
}
