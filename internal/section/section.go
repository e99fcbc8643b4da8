// Package section names the fixed set of page regions used for navigation
// and highlighting.
package section

import "strings"

// ID identifies one content region of the page.
type ID string

const (
	Hero       ID = "hero"
	About      ID = "about"
	Experience ID = "experience"
	Projects   ID = "projects"
	Skills     ID = "skills"
	Education  ID = "education"
	Contact    ID = "contact"
)

// order is the top-to-bottom order of the regions on the page.
var order = []ID{Hero, About, Experience, Projects, Skills, Education, Contact}

var labels = map[ID]string{
	Hero:       "Home",
	About:      "About",
	Experience: "Experience",
	Projects:   "Projects",
	Skills:     "Skills",
	Education:  "Education",
	Contact:    "Contact",
}

// All returns every section in page order.
func All() []ID {
	out := make([]ID, len(order))
	copy(out, order)
	return out
}

// Parse returns the section named by s. Surrounding whitespace and a leading
// '#' are ignored; matching is case-insensitive.
func Parse(s string) (ID, bool) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	id := ID(s)
	if _, ok := labels[id]; !ok {
		return "", false
	}
	return id, true
}

// Valid reports whether id is a known section.
func (id ID) Valid() bool {
	_, ok := labels[id]
	return ok
}

// Label is the navigation link text.
func (id ID) Label() string {
	return labels[id]
}

// Index is the position of id in page order, or -1.
func (id ID) Index() int {
	for i, s := range order {
		if s == id {
			return i
		}
	}
	return -1
}

func (id ID) String() string {
	return string(id)
}
