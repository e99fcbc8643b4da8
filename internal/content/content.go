// Package content holds the biographical data shown on the page. It is read
// once at startup and never changes afterwards.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio/internal/section"
)

//go:embed portfolio.yaml
var defaultDocument []byte

// ErrInvalid is wrapped by Validate failures.
var ErrInvalid = errors.New("invalid portfolio")

type Profile struct {
	Name     string `yaml:"name"`
	Initials string `yaml:"initials"`
	Headline string `yaml:"headline"`
	Summary  string `yaml:"summary"`
	About    string `yaml:"about"`
	Connect  string `yaml:"connect"`
	Footer   string `yaml:"footer"`
}

type Experience struct {
	Company      string   `yaml:"company"`
	Role         string   `yaml:"role"`
	Period       string   `yaml:"period"`
	Achievements []string `yaml:"achievements"`
}

type Project struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tech        []string `yaml:"tech"`
	Image       string   `yaml:"image"`
	Code        string   `yaml:"code"`
	Demo        string   `yaml:"demo"`
}

// SkillCategory groups skills under a titled card. Icon is a Lucide icon
// name.
type SkillCategory struct {
	Title  string   `yaml:"title"`
	Icon   string   `yaml:"icon"`
	Skills []string `yaml:"skills"`
}

type Education struct {
	Degree      string `yaml:"degree"`
	Institution string `yaml:"institution"`
	Period      string `yaml:"period"`
	Grade       string `yaml:"grade"`
}

// ContactLink is one way to get in touch. Kind selects the icon.
type ContactLink struct {
	Kind    string `yaml:"kind"`
	Label   string `yaml:"label"`
	Href    string `yaml:"href"`
	Display string `yaml:"display"`
}

// External reports whether the link leaves the site in a new tab.
func (c ContactLink) External() bool {
	return strings.HasPrefix(c.Href, "http://") || strings.HasPrefix(c.Href, "https://")
}

// NavItem is one link of the navigation bar.
type NavItem struct {
	ID    section.ID
	Label string
}

// Portfolio is the whole page's data.
type Portfolio struct {
	Profile    Profile         `yaml:"profile"`
	Experience []Experience    `yaml:"experience"`
	Projects   []Project       `yaml:"projects"`
	Skills     []SkillCategory `yaml:"skills"`
	Education  Education       `yaml:"education"`
	Contact    []ContactLink   `yaml:"contact"`
}

// NavItems lists every section in page order.
func (p *Portfolio) NavItems() []NavItem {
	ids := section.All()
	items := make([]NavItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, NavItem{ID: id, Label: id.Label()})
	}
	return items
}

// Default returns the embedded portfolio.
func Default() (*Portfolio, error) {
	return Parse(defaultDocument)
}

// Load reads the portfolio at path, or the embedded one when path is empty.
func Load(path string) (*Portfolio, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML portfolio document. Unknown fields are
// rejected.
func Parse(data []byte) (*Portfolio, error) {
	var p Portfolio
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the fields the page cannot render without.
func (p *Portfolio) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Profile.Name) == "" {
		problems = append(problems, "profile.name is required")
	}
	for i, e := range p.Experience {
		if e.Company == "" || e.Role == "" {
			problems = append(problems, fmt.Sprintf("experience[%d] needs company and role", i))
		}
	}
	for i, pr := range p.Projects {
		if pr.Title == "" {
			problems = append(problems, fmt.Sprintf("projects[%d].title is required", i))
		}
	}
	for i, s := range p.Skills {
		if s.Title == "" {
			problems = append(problems, fmt.Sprintf("skills[%d].title is required", i))
		}
	}
	for i, c := range p.Contact {
		if c.Href == "" {
			problems = append(problems, fmt.Sprintf("contact[%d].href is required", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
