package style

import (
	"image/color"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		style   Style
		wantErr bool
	}{
		{"fill only", Style{Fill: "#3388ff"}, false},
		{"stroke only", Style{Stroke: "#2266cc", StrokeWidth: 2}, false},
		{"short hex", Style{Fill: "#38f"}, false},
		{"full style", Style{Fill: "#3388ff", Stroke: "#2266cc", StrokeWidth: 1.5, PointRadius: 4, Opacity: 0.7, Dash: []float64{4, 2}}, false},
		{"empty", Style{}, true},
		{"bad fill", Style{Fill: "blue"}, true},
		{"bad stroke", Style{Fill: "#3388ff", Stroke: "#zzzzzz"}, true},
		{"negative width", Style{Stroke: "#2266cc", StrokeWidth: -1}, true},
		{"negative radius", Style{Fill: "#3388ff", PointRadius: -2}, true},
		{"opacity too high", Style{Fill: "#3388ff", Opacity: 1.5}, true},
		{"negative dash", Style{Stroke: "#2266cc", Dash: []float64{4, -2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.style.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	if !(Style{}).IsZero() {
		t.Error("IsZero() = false for empty style")
	}
	if (Style{Fill: "#3388ff"}).IsZero() {
		t.Error("IsZero() = true for styled descriptor")
	}
	if (Style{Dash: []float64{}}).IsZero() {
		t.Error("IsZero() = true with non-nil dash")
	}
}

func TestNormalized(t *testing.T) {
	got := Style{}.Normalized()
	if got.Fill != DefaultFill || got.Stroke != DefaultStroke {
		t.Errorf("colors = %q/%q, want defaults", got.Fill, got.Stroke)
	}
	if got.StrokeWidth != DefaultStrokeWidth {
		t.Errorf("StrokeWidth = %v, want %v", got.StrokeWidth, DefaultStrokeWidth)
	}
	if got.PointRadius != DefaultPointRadius {
		t.Errorf("PointRadius = %v, want %v", got.PointRadius, DefaultPointRadius)
	}
	if got.Opacity != 1 {
		t.Errorf("Opacity = %v, want 1", got.Opacity)
	}

	// Explicit values survive.
	custom := Style{Fill: "#ff0000", StrokeWidth: 3, Opacity: 0.5}.Normalized()
	if custom.Fill != "#ff0000" || custom.StrokeWidth != 3 || custom.Opacity != 0.5 {
		t.Errorf("Normalized() clobbered explicit fields: %+v", custom)
	}
	if custom.Stroke != "" {
		t.Errorf("Stroke = %q, want empty when fill is set", custom.Stroke)
	}
}

func TestFillColorOpacity(t *testing.T) {
	c, ok := Style{Fill: "#ff0000", Opacity: 0.5}.FillColor()
	if !ok {
		t.Fatal("FillColor() not ok")
	}
	nrgba, ok := c.(color.NRGBA)
	if !ok {
		t.Fatalf("FillColor() = %T, want color.NRGBA", c)
	}
	if nrgba.R != 255 || nrgba.G != 0 || nrgba.B != 0 {
		t.Errorf("rgb = %d/%d/%d, want 255/0/0", nrgba.R, nrgba.G, nrgba.B)
	}
	if nrgba.A != 128 {
		t.Errorf("alpha = %d, want 128", nrgba.A)
	}
}

func TestColorAccessorsUnset(t *testing.T) {
	s := Style{Fill: "#3388ff"}
	if _, ok := s.StrokeColor(); ok {
		t.Error("StrokeColor() ok for unset stroke")
	}
	if _, ok := s.FillColor(); !ok {
		t.Error("FillColor() not ok for set fill")
	}
}
