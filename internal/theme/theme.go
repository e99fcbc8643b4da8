package theme

import "strings"

// Mode is the page colour scheme.
type Mode bool

const (
	Light Mode = false
	Dark  Mode = true
)

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	return !m
}

func (m Mode) String() string {
	if m == Dark {
		return "dark"
	}
	return "light"
}

// IsDark is a template helper.
func (m Mode) IsDark() bool {
	return m == Dark
}

// Classes returns the root element classes for the mode.
func (m Mode) Classes() string {
	if m == Dark {
		return "dark bg-gray-900 text-white"
	}
	return "bg-white text-gray-900"
}

// ParseMode accepts "light" or "dark". Anything else is Light.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "dark") {
		return Dark
	}
	return Light
}
