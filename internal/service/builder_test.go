package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/style"
)

func testBuilder(t *testing.T) (*SourceBuilder, string) {
	t.Helper()
	dataDir := t.TempDir()
	sources := NewSourceService(dataDir)
	if err := os.MkdirAll(sources.SourcesDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	return NewSourceBuilder(sources, nil), dataDir
}

func TestBuildFromRows(t *testing.T) {
	b, _ := testBuilder(t)
	cfg := LayerConfig{
		ID:       "hydro",
		Name:     "Hydrology",
		GeomType: GeomLine,
		File:     "ignored.geojson", // rows win over file derivation
		Style:    style.Style{Stroke: "#2266cc", StrokeWidth: 2},
		Legend: []LegendRow{
			{Label: "river"},
			{Label: "lake", Kind: GeomPolygon, Style: &style.Style{Fill: "#3388ff"}},
		},
	}

	src, err := b.Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p, ok := src.(legend.Provider)
	if !ok {
		t.Fatalf("source type %T lacks the provider capability", src)
	}
	entries := p.Legends()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	// Row 0 inherits the layer's kind and style.
	if entries[0].Kind != legend.KindLineString {
		t.Errorf("entry[0].Kind = %q", entries[0].Kind)
	}
	if st := entries[0].Style.(style.Style); st.Stroke != "#2266cc" {
		t.Errorf("entry[0] style = %+v", st)
	}
	// Row 1 overrides both.
	if entries[1].Kind != legend.KindPolygon {
		t.Errorf("entry[1].Kind = %q", entries[1].Kind)
	}
	if st := entries[1].Style.(style.Style); st.Fill != "#3388ff" {
		t.Errorf("entry[1] style = %+v", st)
	}
	if titler, ok := src.(legend.Titler); !ok || titler.Title() != "Hydrology" {
		t.Error("block title lost")
	}
}

func TestBuildFromGeoJSONFile(t *testing.T) {
	b, dataDir := testBuilder(t)
	raw := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[4.3,50.8]},"properties":{"type":"castle"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[4.4,50.9]},"properties":{"type":"church"}}
	]}`
	if err := os.WriteFile(filepath.Join(dataDir, "sources", "sites.geojson"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := LayerConfig{
		ID:            "sites",
		Name:          "Historic sites",
		File:          "sites.geojson",
		LabelProperty: "type",
		Style:         style.Style{Fill: "#b22222", PointRadius: 4},
	}
	src, err := b.Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	entries := src.(legend.Provider).Legends()
	if len(entries) != 2 || entries[0].Label != "castle" || entries[1].Label != "church" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestBuildNoCollapseWrapsSource(t *testing.T) {
	b, _ := testBuilder(t)
	cfg := LayerConfig{
		ID:         "mask",
		Name:       "Region mask",
		NoCollapse: true,
		Legend:     []LegendRow{{Label: "outside", Kind: GeomPolygon, Style: &style.Style{Fill: "#ccc"}}},
	}

	src, err := b.Build(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	pref, ok := src.(legend.CollapsePreference)
	if !ok || pref.LegendsCollapsible() {
		t.Error("NoCollapse layer did not veto collapsing")
	}
	if !src.(legend.Provider).HasLegends() {
		t.Error("veto wrapper lost the entries")
	}
}

func TestBuildNothingToDeriveFrom(t *testing.T) {
	b, _ := testBuilder(t)

	src, err := b.Build(context.Background(), LayerConfig{ID: "plain", Name: "Plain"})
	if err != nil || src != nil {
		t.Errorf("Build = %v, %v; want nil, nil", src, err)
	}

	// A table-derived layer without a database falls back the same way.
	src, err = b.Build(context.Background(), LayerConfig{ID: "t", Name: "T", Table: "sites", Category: "kind"})
	if err != nil || src != nil {
		t.Errorf("Build with nil db = %v, %v; want nil, nil", src, err)
	}
}

func TestViewportLayer(t *testing.T) {
	cfg := LayerConfig{
		ID:            "sites",
		Name:          "Historic sites",
		Visible:       true,
		Opacity:       0.8,
		MinResolution: 10,
		MaxResolution: 100,
	}
	src := struct{}{}
	vl := ViewportLayer(cfg, src)
	if vl.ID != "sites" || vl.Title != "Historic sites" || !vl.Visible {
		t.Errorf("ViewportLayer = %+v", vl)
	}
	if vl.Opacity != 0.8 || vl.MinResolution != 10 || vl.MaxResolution != 100 {
		t.Errorf("view params = %+v", vl)
	}
	if vl.Source != src {
		t.Error("source not carried through")
	}
}
