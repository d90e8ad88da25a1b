package source

import "github.com/joeblew999/plat-legend/internal/legend"

// Static declares its legend entries up front. It is the plain composition
// for layers whose legend is authored by hand rather than derived from
// data: a title, a fixed entry list, and an optional collapse veto.
type Static struct {
	title       string
	entries     []legend.Entry
	collapsible bool
}

// NewStatic builds a source with fixed entries in the given order.
// A single entry is just the one-element case; title may be empty.
func NewStatic(title string, entries ...legend.Entry) *Static {
	return &Static{
		title:       title,
		entries:     entries,
		collapsible: true,
	}
}

// Pinned returns a copy of s that vetoes the panel's collapse affordance,
// for displays that must keep the legend permanently open.
func (s *Static) Pinned() *Static {
	return &Static{title: s.title, entries: s.entries, collapsible: false}
}

// HasLegends reports whether any entries were declared.
func (s *Static) HasLegends() bool { return len(s.entries) > 0 }

// Legends returns the declared entries. Callers must not mutate them.
func (s *Static) Legends() []legend.Entry { return s.entries }

// Title returns the display title, empty for none.
func (s *Static) Title() string { return s.title }

// LegendsCollapsible reports the source's collapse preference.
func (s *Static) LegendsCollapsible() bool { return s.collapsible }
