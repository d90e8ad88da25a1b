package preview

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/style"
)

// Canvas is the production Surface, drawing on a transparent gg context.
// It interprets style.Style descriptors; anything else is rejected in
// Begin so one bad entry cannot poison its siblings.
type Canvas struct {
	dc *gg.Context
	st style.Style
}

// NewCanvas allocates a transparent canvas of the given size.
func NewCanvas(width, height int) Surface {
	return &Canvas{dc: gg.NewContext(width, height)}
}

func (c *Canvas) Begin(st any) error {
	switch v := st.(type) {
	case style.Style:
		c.st = v
	case *style.Style:
		if v == nil {
			return errs.New(errs.ErrCodeInvalidStyle, "nil style")
		}
		c.st = *v
	case nil:
		c.st = style.Style{}.Normalized()
		return nil
	default:
		return errs.New(errs.ErrCodeInvalidStyle, "unsupported style type %T", st)
	}
	if err := c.st.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidStyle, err, "invalid style")
	}
	c.st = c.st.Normalized()
	return nil
}

func (c *Canvas) DrawPoint(p orb.Point) {
	c.dc.DrawCircle(p[0], p[1], c.st.PointRadius)
	c.paint(true)
}

func (c *Canvas) DrawLineString(ls orb.LineString) {
	for i, p := range ls {
		if i == 0 {
			c.dc.MoveTo(p[0], p[1])
		} else {
			c.dc.LineTo(p[0], p[1])
		}
	}
	c.paint(false)
}

func (c *Canvas) DrawPolygon(poly orb.Polygon) {
	for _, ring := range poly {
		for i, p := range ring {
			if i == 0 {
				c.dc.MoveTo(p[0], p[1])
			} else {
				c.dc.LineTo(p[0], p[1])
			}
		}
		c.dc.ClosePath()
	}
	c.paint(true)
}

// paint fills then strokes the current path per the style. Lines never
// fill; round caps and joins keep the probe shapes legible at icon size.
func (c *Canvas) paint(fillable bool) {
	fill, hasFill := c.st.FillColor()
	stroke, hasStroke := c.st.StrokeColor()

	if fillable && hasFill {
		c.dc.SetColor(fill)
		if hasStroke {
			c.dc.FillPreserve()
		} else {
			c.dc.Fill()
		}
	}
	if hasStroke {
		c.dc.SetColor(stroke)
		c.dc.SetLineWidth(c.st.StrokeWidth)
		c.dc.SetLineCap(gg.LineCapRound)
		c.dc.SetLineJoin(gg.LineJoinRound)
		if len(c.st.Dash) > 0 {
			c.dc.SetDash(c.st.Dash...)
		}
		c.dc.Stroke()
	}
}

func (c *Canvas) Image() image.Image { return c.dc.Image() }
