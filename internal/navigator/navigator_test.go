package navigator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/section"
)

type fakeScroller struct {
	calls []section.ID
	err   error
}

func (f *fakeScroller) ScrollIntoView(_ context.Context, id section.ID) error {
	f.calls = append(f.calls, id)
	return f.err
}

func TestNavigateToKnownSection(t *testing.T) {
	s := &fakeScroller{}
	n := New(s)

	ok := n.NavigateTo(context.Background(), "projects")

	assert.True(t, ok)
	assert.Equal(t, []section.ID{section.Projects}, s.calls)
	// Navigation alone does not move the active section.
	assert.Equal(t, section.Hero, n.Active())
}

func TestNavigateToUnknownSectionIsNoop(t *testing.T) {
	s := &fakeScroller{}
	var changes []section.ID
	n := New(s, OnChange(func(id section.ID) { changes = append(changes, id) }))

	for _, raw := range []string{"blog", "", "projects-0", "../contact"} {
		assert.NotPanics(t, func() {
			assert.False(t, n.NavigateTo(context.Background(), raw))
		})
	}
	assert.Empty(t, s.calls)
	assert.Empty(t, changes)
	assert.Equal(t, section.Hero, n.Active())
}

func TestNavigateToMissingRegion(t *testing.T) {
	s := &fakeScroller{err: ErrNoRegion}
	n := New(s)
	assert.False(t, n.NavigateTo(context.Background(), "skills"))
	assert.Equal(t, section.Hero, n.Active())

	s.err = errors.New("socket closed")
	assert.False(t, n.NavigateTo(context.Background(), "skills"))
}

func TestNavigateWithoutScroller(t *testing.T) {
	n := New(nil)
	assert.False(t, n.NavigateTo(context.Background(), "about"))
}

func TestSetActive(t *testing.T) {
	var changes []section.ID
	n := New(nil, OnChange(func(id section.ID) { changes = append(changes, id) }))

	assert.True(t, n.SetActive(section.About))
	assert.False(t, n.SetActive(section.About))
	assert.False(t, n.SetActive("nope"))
	assert.Equal(t, []section.ID{section.About}, changes)
}

func TestInfer(t *testing.T) {
	tops := []Top{
		{section.Hero, 0},
		{section.About, 900},
		{section.Experience, 1600},
		{section.Projects, 2800},
	}

	tests := []struct {
		name     string
		y        float64
		atBottom bool
		want     section.ID
	}{
		{"top of page", 0, false, section.Hero},
		{"just before about", 800, false, section.Hero},
		{"about within margin", 830, false, section.About},
		{"mid experience", 2000, false, section.Experience},
		{"bottom wins", 2500, true, section.Projects},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Infer(tops, tt.y, DefaultMargin, tt.atBottom)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Infer(nil, 100, DefaultMargin, false)
	assert.False(t, ok)
}

func TestSpyUpdatesActive(t *testing.T) {
	n := New(nil, WithMargin(0))
	tops := []Top{{section.Hero, 0}, {section.About, 500}}

	assert.Equal(t, section.Hero, n.Spy(tops, 499, false))
	assert.Equal(t, section.About, n.Spy(tops, 500, false))
	assert.Equal(t, section.About, n.Spy(nil, 0, false))
}
