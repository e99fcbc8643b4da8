package page

import (
	"fmt"
	"time"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/section"
)

const (
	stagger      = 200 * time.Millisecond
	skillStagger = 150 * time.Millisecond
)

// RegionDef is one independently revealed block of the page.
type RegionDef struct {
	ID      string
	Section section.ID
	Delay   time.Duration
}

// ItemID names the i-th repeated block of a section, e.g. "projects-2".
func ItemID(s section.ID, i int) string {
	return fmt.Sprintf("%s-%d", s, i)
}

// Regions lists every revealed block for p in page order.
func Regions(p *content.Portfolio) []RegionDef {
	var out []RegionDef
	add := func(id string, s section.ID, delay time.Duration) {
		out = append(out, RegionDef{ID: id, Section: s, Delay: delay})
	}

	for i, id := range []string{"hero-name", "hero-headline", "hero-summary", "hero-cta"} {
		add(id, section.Hero, time.Duration(i)*stagger)
	}

	add("about-title", section.About, 0)
	add("about-body", section.About, stagger)

	add("experience-title", section.Experience, 0)
	for i := range p.Experience {
		add(ItemID(section.Experience, i), section.Experience, time.Duration(i)*stagger)
	}

	add("projects-title", section.Projects, 0)
	for i := range p.Projects {
		add(ItemID(section.Projects, i), section.Projects, time.Duration(i)*stagger)
	}

	add("skills-title", section.Skills, 0)
	for i := range p.Skills {
		add(ItemID(section.Skills, i), section.Skills, time.Duration(i)*skillStagger)
	}

	add("education-title", section.Education, 0)
	add("education-body", section.Education, stagger)

	add("contact-title", section.Contact, 0)
	add("contact-links", section.Contact, stagger)
	add("contact-form", section.Contact, 2*stagger)
	return out
}
