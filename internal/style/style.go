// Package style defines the visual style descriptor shared by layer
// definitions and the preview renderer.
//
// The legend engine itself treats styles as opaque values; only the drawing
// surface interprets them. Colors are CSS hex strings ("#3388ff" or "#38f"),
// matching what the layer store persists and what the editor UI round-trips.
package style

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Defaults applied by Normalized when a field is unset.
const (
	DefaultFill        = "#3388ff"
	DefaultStroke      = "#2266cc"
	DefaultStrokeWidth = 2
	DefaultPointRadius = 5
)

// Style describes how a geometry (and its legend preview) is drawn.
// Single source of truth: Huma reads the tags for OpenAPI + validation when
// the style travels inside a layer definition.
type Style struct {
	Fill        string    `json:"fill,omitempty" doc:"Fill color (CSS hex)" example:"#3388ff"`
	Stroke      string    `json:"stroke,omitempty" doc:"Stroke color (CSS hex)" example:"#2266cc"`
	StrokeWidth float64   `json:"strokeWidth,omitempty" minimum:"0" doc:"Stroke width in pixels" example:"2"`
	PointRadius float64   `json:"pointRadius,omitempty" minimum:"0" doc:"Point marker radius in pixels" example:"5"`
	Opacity     float64   `json:"opacity,omitempty" minimum:"0" maximum:"1" doc:"Opacity (0-1, 0 means opaque)" example:"0.7"`
	Dash        []float64 `json:"dash,omitempty" doc:"Dash pattern for strokes" example:"[4,2]"`
}

// IsZero reports whether no field is set at all, distinguishing "no style
// configured" from a malformed one.
func (s Style) IsZero() bool {
	return s.Fill == "" && s.Stroke == "" && s.StrokeWidth == 0 &&
		s.PointRadius == 0 && s.Opacity == 0 && s.Dash == nil
}

// Validate reports whether the style can be drawn at all.
// A style with neither fill nor stroke draws nothing and is rejected, as are
// unparseable colors and negative dimensions.
func (s Style) Validate() error {
	if s.Fill == "" && s.Stroke == "" {
		return fmt.Errorf("style has neither fill nor stroke")
	}
	if s.Fill != "" {
		if _, err := colorful.Hex(s.Fill); err != nil {
			return fmt.Errorf("fill color %q: %w", s.Fill, err)
		}
	}
	if s.Stroke != "" {
		if _, err := colorful.Hex(s.Stroke); err != nil {
			return fmt.Errorf("stroke color %q: %w", s.Stroke, err)
		}
	}
	if s.StrokeWidth < 0 {
		return fmt.Errorf("negative stroke width %v", s.StrokeWidth)
	}
	if s.PointRadius < 0 {
		return fmt.Errorf("negative point radius %v", s.PointRadius)
	}
	if s.Opacity < 0 || s.Opacity > 1 {
		return fmt.Errorf("opacity %v outside [0,1]", s.Opacity)
	}
	for _, d := range s.Dash {
		if d < 0 {
			return fmt.Errorf("negative dash segment %v", d)
		}
	}
	return nil
}

// Normalized returns a copy with defaults filled in for unset fields.
// Opacity 0 is treated as unset (fully opaque); an invisible style is
// expressed by omitting both colors, which Validate rejects.
func (s Style) Normalized() Style {
	if s.Fill == "" && s.Stroke == "" {
		s.Fill = DefaultFill
		s.Stroke = DefaultStroke
	}
	if s.StrokeWidth == 0 {
		s.StrokeWidth = DefaultStrokeWidth
	}
	if s.PointRadius == 0 {
		s.PointRadius = DefaultPointRadius
	}
	if s.Opacity == 0 {
		s.Opacity = 1
	}
	return s
}

// FillColor returns the parsed fill color with opacity applied.
// The second return is false when no fill is set.
func (s Style) FillColor() (color.Color, bool) {
	return s.parse(s.Fill)
}

// StrokeColor returns the parsed stroke color with opacity applied.
// The second return is false when no stroke is set.
func (s Style) StrokeColor() (color.Color, bool) {
	return s.parse(s.Stroke)
}

func (s Style) parse(hex string) (color.Color, bool) {
	if hex == "" {
		return nil, false
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, false
	}
	alpha := s.Opacity
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}, true
}
