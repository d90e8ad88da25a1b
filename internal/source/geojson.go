package source

import (
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/style"
)

// GeoJSON derives its legend from a feature collection. With a label
// property configured it contributes one entry per distinct property value
// in first-seen order; otherwise one entry per geometry kind present,
// labeled with the source title.
type GeoJSON struct {
	title   string
	st      style.Style
	labelBy string
	entries []legend.Entry
	bound   orb.Bound
	count   int
}

// GeoJSONOption configures a GeoJSON source.
type GeoJSONOption func(*GeoJSON)

// WithStyle sets the style stamped onto every derived entry.
func WithStyle(st style.Style) GeoJSONOption {
	return func(g *GeoJSON) { g.st = st }
}

// WithLabelProperty derives one entry per distinct value of the named
// feature property instead of one per geometry kind.
func WithLabelProperty(prop string) GeoJSONOption {
	return func(g *GeoJSON) { g.labelBy = prop }
}

// NewGeoJSON builds a source from an already-parsed collection.
// Derivation happens once, here; the source is immutable afterwards.
func NewGeoJSON(title string, fc *geojson.FeatureCollection, opts ...GeoJSONOption) *GeoJSON {
	g := &GeoJSON{title: title, st: style.Style{}.Normalized()}
	for _, opt := range opts {
		opt(g)
	}
	if fc == nil {
		return g
	}
	g.count = len(fc.Features)
	g.derive(fc)
	return g
}

// LoadGeoJSON reads and parses a GeoJSON file into a source.
func LoadGeoJSON(path, title string, opts ...GeoJSONOption) (*GeoJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, "geojson %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read %s", path)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse %s", path)
	}
	return NewGeoJSON(title, fc, opts...), nil
}

func (g *GeoJSON) derive(fc *geojson.FeatureCollection) {
	seen := make(map[string]bool)
	first := true
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if first {
			g.bound = f.Geometry.Bound()
			first = false
		} else {
			g.bound = g.bound.Union(f.Geometry.Bound())
		}

		kind := KindOf(f.Geometry)
		label := g.title
		if g.labelBy != "" {
			label = f.Properties.MustString(g.labelBy, "")
			if label == "" {
				continue
			}
		}
		key := label + "\x00" + string(kind)
		if seen[key] {
			continue
		}
		seen[key] = true
		g.entries = append(g.entries, legend.Entry{Label: label, Style: g.st, Kind: kind})
	}
}

// HasLegends reports whether any entries were derived.
func (g *GeoJSON) HasLegends() bool { return len(g.entries) > 0 }

// Legends returns the derived entries. Callers must not mutate them.
func (g *GeoJSON) Legends() []legend.Entry { return g.entries }

// Title returns the display title, empty for none.
func (g *GeoJSON) Title() string { return g.title }

// Bound returns the union of all feature bounds.
func (g *GeoJSON) Bound() orb.Bound { return g.bound }

// Count returns the number of features in the collection.
func (g *GeoJSON) Count() int { return g.count }
