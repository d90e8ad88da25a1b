// Package source provides data sources that can describe their own legend.
//
// Each source type composes the underlying data with its legend declaration
// up front, at construction time, and then answers the optional capabilities
// the collector probes for (legend entries, display title, collapse
// preference). Sources are immutable after construction unless noted.
package source

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-legend/internal/legend"
)

// Pin wraps a source with a collapse veto, forwarding its legend and
// title capabilities unchanged. Useful for sources that do not carry a
// preference of their own.
func Pin(src any) any {
	return pinned{src: src}
}

type pinned struct{ src any }

func (p pinned) HasLegends() bool {
	if s, ok := p.src.(legend.Provider); ok {
		return s.HasLegends()
	}
	return false
}

func (p pinned) Legends() []legend.Entry {
	if s, ok := p.src.(legend.Provider); ok {
		return s.Legends()
	}
	return nil
}

func (p pinned) Title() string {
	if t, ok := p.src.(legend.Titler); ok {
		return t.Title()
	}
	return ""
}

func (p pinned) LegendsCollapsible() bool { return false }

// KindOf maps a geometry to the probe kind its legend preview should use.
// Multi-part geometries share their element kind; anything else falls back
// to a point marker.
func KindOf(g orb.Geometry) legend.GeometryKind {
	switch g.(type) {
	case orb.Point, orb.MultiPoint:
		return legend.KindPoint
	case orb.LineString, orb.MultiLineString:
		return legend.KindLineString
	case orb.Polygon, orb.MultiPolygon, orb.Ring, orb.Bound:
		return legend.KindPolygon
	default:
		return legend.KindPoint
	}
}
