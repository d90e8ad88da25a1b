// Package legend derives a self-updating legend panel from viewport frames.
//
// Three pieces cooperate: Collector walks a frame's visible layers and asks
// each data source for its legend entries, Panel owns the collapse/expand
// state machine and rebuilds its view only when collected content actually
// changed, and a PreviewRenderer (implemented in internal/preview) turns
// each entry's style into a small raster icon. Data sources participate by
// implementing the optional Provider, Titler and CollapsePreference
// capabilities; absence of a capability is never an error.
package legend

import (
	"image"
	"reflect"
)

// GeometryKind selects the probe geometry a legend entry's preview draws.
// Values match GeoJSON geometry type names.
type GeometryKind string

const (
	KindPoint      GeometryKind = "Point"
	KindLineString GeometryKind = "LineString"
	KindPolygon    GeometryKind = "Polygon"
)

// Valid reports whether the kind is one a preview can be drawn for.
func (k GeometryKind) Valid() bool {
	switch k {
	case KindPoint, KindLineString, KindPolygon:
		return true
	}
	return false
}

// Entry is one legend row: a label, an opaque visual style interpreted by
// the drawing surface, and the probe geometry kind. Immutable once
// produced by a source.
type Entry struct {
	Label string       `json:"label"`
	Style any          `json:"style,omitempty"`
	Kind  GeometryKind `json:"kind,omitempty"`
}

// Normalized fills in the default geometry kind for entries that leave it
// unspecified.
func (e Entry) Normalized() Entry {
	if e.Kind == "" {
		e.Kind = KindPoint
	}
	return e
}

// Equal compares entries by value. Styles are compared structurally, not
// by identity, so re-collected content with identical styles diffs equal.
func (e Entry) Equal(other Entry) bool {
	return e.Label == other.Label &&
		e.Kind == other.Kind &&
		reflect.DeepEqual(e.Style, other.Style)
}

// Block is the legend contribution of one data source: an optional display
// title and the source's entries in declared order.
type Block struct {
	Title   string  `json:"title,omitempty"`
	Entries []Entry `json:"entries"`
}

// Equal compares blocks by value, order-sensitive.
func (b Block) Equal(other Block) bool {
	if b.Title != other.Title || len(b.Entries) != len(other.Entries) {
		return false
	}
	for i := range b.Entries {
		if !b.Entries[i].Equal(other.Entries[i]) {
			return false
		}
	}
	return true
}

// Content is one frame's collected legend: blocks in layer draw order plus
// the sources' aggregate collapse preference (false as soon as any
// contributing source opts out).
type Content struct {
	Blocks      []Block `json:"blocks"`
	Collapsible bool    `json:"collapsible"`
}

// Empty reports whether the content would produce a blank panel.
func (c Content) Empty() bool { return len(c.Blocks) == 0 }

// Equal reports whether two contents produce the same panel body: same
// blocks, same entries, same order. The collapse preference is affordance
// state, applied independently of body rebuilds, and does not participate.
func (c Content) Equal(other Content) bool {
	if len(c.Blocks) != len(other.Blocks) {
		return false
	}
	for i := range c.Blocks {
		if !c.Blocks[i].Equal(other.Blocks[i]) {
			return false
		}
	}
	return true
}

// RenderedEntry pairs an entry with its rasterized preview icon.
type RenderedEntry struct {
	Label   string
	Kind    GeometryKind
	Style   any
	Preview image.Image
}

// RenderedBlock is a block whose entries carry rendered previews.
type RenderedBlock struct {
	Title   string
	Entries []RenderedEntry
}

// CollapseState tracks the toggle affordance, independent of content.
// Collapsed is never true while Collapsible is false.
type CollapseState struct {
	Collapsible bool `json:"collapsible"`
	Collapsed   bool `json:"collapsed"`
}
