package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/style"
)

func sitesCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, site := range []struct {
		kind string
		pt   orb.Point
	}{
		{"castle", orb.Point{4.35, 50.85}},
		{"church", orb.Point{4.40, 50.88}},
		{"castle", orb.Point{4.30, 50.80}},
		{"battlefield", orb.Point{4.50, 50.70}},
	} {
		f := geojson.NewFeature(site.pt)
		f.Properties["type"] = site.kind
		fc.Append(f)
	}
	return fc
}

func TestGeoJSONByLabelProperty(t *testing.T) {
	g := NewGeoJSON("Historic sites", sitesCollection(),
		WithLabelProperty("type"),
		WithStyle(style.Style{Fill: "#b22222", PointRadius: 4}),
	)

	if !g.HasLegends() {
		t.Fatal("HasLegends() = false")
	}
	got := g.Legends()
	want := []string{"castle", "church", "battlefield"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d (distinct, first-seen order)", len(got), len(want))
	}
	for i, label := range want {
		if got[i].Label != label {
			t.Errorf("entry[%d].Label = %q, want %q", i, got[i].Label, label)
		}
		if got[i].Kind != legend.KindPoint {
			t.Errorf("entry[%d].Kind = %q, want %q", i, got[i].Kind, legend.KindPoint)
		}
	}
	if g.Count() != 4 {
		t.Errorf("Count() = %d, want 4", g.Count())
	}
}

func TestGeoJSONByGeometryKind(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.LineString{{4.3, 50.8}, {4.4, 50.9}}))
	fc.Append(geojson.NewFeature(orb.LineString{{4.5, 50.7}, {4.6, 50.8}}))
	fc.Append(geojson.NewFeature(orb.Polygon{{{4, 50}, {5, 50}, {5, 51}, {4, 50}}}))

	g := NewGeoJSON("Hydrology", fc)
	got := g.Legends()
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2 (one per geometry kind)", len(got))
	}
	if got[0].Kind != legend.KindLineString || got[1].Kind != legend.KindPolygon {
		t.Errorf("kinds = %q, %q", got[0].Kind, got[1].Kind)
	}
	if got[0].Label != "Hydrology" {
		t.Errorf("label = %q, want source title", got[0].Label)
	}

	b := g.Bound()
	if b.Min != (orb.Point{4, 50}) || b.Max != (orb.Point{5, 51}) {
		t.Errorf("Bound() = %v", b)
	}
}

func TestGeoJSONSkipsBlankLabels(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	labeled := geojson.NewFeature(orb.Point{1, 1})
	labeled.Properties["type"] = "castle"
	fc.Append(labeled)
	fc.Append(geojson.NewFeature(orb.Point{2, 2})) // no property

	g := NewGeoJSON("sites", fc, WithLabelProperty("type"))
	if got := len(g.Legends()); got != 1 {
		t.Errorf("got %d entries, want 1 (unlabeled feature skipped)", got)
	}
}

func TestGeoJSONNilCollection(t *testing.T) {
	g := NewGeoJSON("empty", nil)
	if g.HasLegends() {
		t.Error("HasLegends() = true for nil collection")
	}
}

func TestLoadGeoJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rivers.geojson")
	raw := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"LineString","coordinates":[[4.3,50.8],[4.4,50.9]]},"properties":{"name":"Senne"}}
	]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := LoadGeoJSON(path, "Rivers")
	if err != nil {
		t.Fatalf("LoadGeoJSON: %v", err)
	}
	if g.Count() != 1 || !g.HasLegends() {
		t.Errorf("count=%d hasLegends=%v", g.Count(), g.HasLegends())
	}
	if g.Legends()[0].Kind != legend.KindLineString {
		t.Errorf("kind = %q", g.Legends()[0].Kind)
	}
}

func TestLoadGeoJSONErrors(t *testing.T) {
	if _, err := LoadGeoJSON(filepath.Join(t.TempDir(), "missing.geojson"), "x"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("missing file error = %v, want %s", err, errs.ErrCodeNotFound)
	}

	bad := filepath.Join(t.TempDir(), "bad.geojson")
	os.WriteFile(bad, []byte("{not json"), 0o644)
	if _, err := LoadGeoJSON(bad, "x"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("malformed file error = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
}
