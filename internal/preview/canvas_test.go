package preview

import (
	"bytes"
	"image"
	"testing"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/style"
)

func opaquePixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				n++
			}
		}
	}
	return n
}

func TestCanvasDrawsEachKind(t *testing.T) {
	st := style.Style{Fill: "#3388ff", Stroke: "#2266cc", StrokeWidth: 2, PointRadius: 5}
	r := NewRenderer()

	for _, kind := range []legend.GeometryKind{legend.KindPoint, legend.KindLineString, legend.KindPolygon} {
		t.Run(string(kind), func(t *testing.T) {
			img, err := r.Render(st, kind)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got := img.Bounds(); got.Dx() != DefaultSize || got.Dy() != DefaultSize {
				t.Errorf("bounds = %v, want %dx%d", got, DefaultSize, DefaultSize)
			}
			if opaquePixels(img) == 0 {
				t.Error("icon is fully transparent")
			}
		})
	}
}

func TestCanvasStrokeOnlyLine(t *testing.T) {
	st := style.Style{Stroke: "#b22222", StrokeWidth: 1.5, Dash: []float64{4, 2}}
	img, err := NewRenderer().Render(st, legend.KindLineString)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if opaquePixels(img) == 0 {
		t.Error("dashed line icon is fully transparent")
	}
}

func TestCanvasDeterministic(t *testing.T) {
	st := style.Style{Fill: "#94c11f", Stroke: "#4a670a", StrokeWidth: 2}
	r := NewRenderer()

	a, err := r.Render(st, legend.KindPolygon)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := r.Render(st, legend.KindPolygon)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	ra, ok := a.(*image.RGBA)
	if !ok {
		t.Fatalf("image type = %T, want *image.RGBA", a)
	}
	rb := b.(*image.RGBA)
	if !bytes.Equal(ra.Pix, rb.Pix) {
		t.Error("identical inputs produced different pixels")
	}
}

func TestCanvasRejectsBadStyles(t *testing.T) {
	r := NewRenderer()
	tests := []struct {
		name  string
		style any
	}{
		{"wrong type", 42},
		{"nil pointer", (*style.Style)(nil)},
		{"unparseable color", style.Style{Fill: "chartreuse"}},
		{"empty descriptor", style.Style{Opacity: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Render(tt.style, legend.KindPoint); !errs.Is(err, errs.ErrCodeRenderFailure) {
				t.Errorf("Render() error = %v, want %s", err, errs.ErrCodeRenderFailure)
			}
		})
	}
}

func TestCanvasNilStyleUsesDefaults(t *testing.T) {
	img, err := NewRenderer().Render(nil, legend.KindPoint)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if opaquePixels(img) == 0 {
		t.Error("default-styled icon is fully transparent")
	}
}
