package reveal

import (
	"fmt"
	"time"
)

const (
	// DefaultDuration of the fade-in.
	DefaultDuration = time.Second

	HiddenClasses  = "opacity-0 translate-y-8"
	RestingClasses = "opacity-100 translate-y-0"
)

// Transition describes how a region moves from its hidden to its resting
// visual state.
type Transition struct {
	Delay    time.Duration
	Duration time.Duration
}

// Classes returns the element classes for the given visibility.
func (tr Transition) Classes(visible bool) string {
	state := HiddenClasses
	if visible {
		state = RestingClasses
	}
	return fmt.Sprintf("transition-all duration-%d ease-out %s", tr.Duration.Milliseconds(), state)
}

// Style is the inline style carrying the caller delay.
func (tr Transition) Style() string {
	return fmt.Sprintf("transition-delay: %dms", tr.Delay.Milliseconds())
}

// DelayMillis is the delay in whole milliseconds.
func (tr Transition) DelayMillis() int64 {
	return tr.Delay.Milliseconds()
}
