// Package preview rasterizes legend entries into small icon images.
//
// Each geometry kind maps to a fixed probe shape (a center point, a
// zig-zag polyline, an irregular heptagon) chosen to exercise fills,
// stroke joins and caps visibly at icon size. Rendering is pure: the same
// style and kind always produce the same pixels.
package preview

import (
	"image"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/legend"
)

// DefaultSize is the icon edge length in pixels.
const DefaultSize = 30

// probeBase is the coordinate space the probe literals are authored in;
// they are scaled to the configured canvas size at render time.
const probeBase = 30

var (
	probeLine = orb.LineString{
		{3, 18}, {9, 10}, {15, 20}, {21, 10}, {27, 16},
	}
	probeRing = orb.Ring{
		{4, 14}, {9, 5}, {20, 4}, {26, 10}, {26, 19}, {18, 26}, {7, 24}, {4, 14},
	}
)

// Surface is one transient fixed-size drawing target. Begin applies the
// entry's style and rejects styles the surface cannot interpret; exactly
// one Draw call follows, then Image.
type Surface interface {
	Begin(style any) error
	DrawPoint(p orb.Point)
	DrawLineString(ls orb.LineString)
	DrawPolygon(poly orb.Polygon)
	Image() image.Image
}

// SurfaceFactory allocates a surface for one render call. Surfaces are
// not pooled; the workload is small and infrequent.
type SurfaceFactory func(width, height int) Surface

// Renderer draws legend preview icons. Implements legend.PreviewRenderer.
type Renderer struct {
	width      int
	height     int
	newSurface SurfaceFactory
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize overrides the icon dimensions. Non-positive values are ignored.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithSurfaceFactory swaps the drawing backend, mainly for tests.
func WithSurfaceFactory(f SurfaceFactory) Option {
	return func(r *Renderer) {
		if f != nil {
			r.newSurface = f
		}
	}
}

// NewRenderer returns a renderer drawing DefaultSize icons on the
// gg-backed canvas unless configured otherwise.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{width: DefaultSize, height: DefaultSize, newSurface: NewCanvas}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Size returns the configured icon dimensions.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// Render draws the probe geometry for kind in the given style onto a
// fresh surface and returns the raster. An empty kind falls back to the
// point probe. Styles the surface rejects come back as render failures;
// the caller decides how to isolate them.
func (r *Renderer) Render(style any, kind legend.GeometryKind) (image.Image, error) {
	s := r.newSurface(r.width, r.height)
	if err := s.Begin(style); err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderFailure, err, "%s preview", kindName(kind))
	}
	switch kind {
	case legend.KindLineString:
		s.DrawLineString(r.scaleLine(probeLine))
	case legend.KindPolygon:
		s.DrawPolygon(orb.Polygon{r.scaleRing(probeRing)})
	default:
		s.DrawPoint(orb.Point{float64(r.width) / 2, float64(r.height) / 2})
	}
	return s.Image(), nil
}

func (r *Renderer) scale(p orb.Point) orb.Point {
	return orb.Point{
		p[0] * float64(r.width) / probeBase,
		p[1] * float64(r.height) / probeBase,
	}
}

func (r *Renderer) scaleLine(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = r.scale(p)
	}
	return out
}

func (r *Renderer) scaleRing(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = r.scale(p)
	}
	return out
}

func kindName(kind legend.GeometryKind) string {
	if kind == "" {
		return string(legend.KindPoint)
	}
	return string(kind)
}
