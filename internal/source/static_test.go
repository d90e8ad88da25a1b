package source

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-legend/internal/legend"
)

func TestStatic(t *testing.T) {
	s := NewStatic("Historic sites",
		legend.Entry{Label: "castle"},
		legend.Entry{Label: "church"},
	)
	if !s.HasLegends() {
		t.Fatal("HasLegends() = false")
	}
	if s.Title() != "Historic sites" {
		t.Errorf("Title() = %q", s.Title())
	}
	got := s.Legends()
	if len(got) != 2 || got[0].Label != "castle" || got[1].Label != "church" {
		t.Errorf("Legends() = %+v, order not preserved", got)
	}
	if !s.LegendsCollapsible() {
		t.Error("LegendsCollapsible() = false by default")
	}
}

func TestStaticEmpty(t *testing.T) {
	s := NewStatic("empty")
	if s.HasLegends() {
		t.Error("HasLegends() = true with no entries")
	}
}

func TestStaticPinned(t *testing.T) {
	s := NewStatic("mask", legend.Entry{Label: "clip", Kind: legend.KindPolygon})
	p := s.Pinned()
	if p.LegendsCollapsible() {
		t.Error("Pinned().LegendsCollapsible() = true")
	}
	if s.LegendsCollapsible() != true {
		t.Error("Pinned mutated the original")
	}
	if len(p.Legends()) != 1 || p.Title() != "mask" {
		t.Error("Pinned dropped entries or title")
	}
}

func TestPin(t *testing.T) {
	src := NewStatic("Hydrology", legend.Entry{Label: "river", Kind: legend.KindLineString})
	p := Pin(src)

	prov, ok := p.(legend.Provider)
	if !ok || !prov.HasLegends() {
		t.Fatal("Pin lost the provider capability")
	}
	if got := prov.Legends(); len(got) != 1 || got[0].Label != "river" {
		t.Errorf("Legends() = %+v", got)
	}
	if titler, ok := p.(legend.Titler); !ok || titler.Title() != "Hydrology" {
		t.Error("Pin lost the title capability")
	}
	pref, ok := p.(legend.CollapsePreference)
	if !ok || pref.LegendsCollapsible() {
		t.Error("Pin did not veto collapsing")
	}

	// Pinning something legend-less stays legend-less.
	if Pin(struct{}{}).(legend.Provider).HasLegends() {
		t.Error("pinned bare value claims legends")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		geom orb.Geometry
		want legend.GeometryKind
	}{
		{orb.Point{1, 2}, legend.KindPoint},
		{orb.MultiPoint{{1, 2}}, legend.KindPoint},
		{orb.LineString{{0, 0}, {1, 1}}, legend.KindLineString},
		{orb.MultiLineString{{{0, 0}, {1, 1}}}, legend.KindLineString},
		{orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, legend.KindPolygon},
		{orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}}, legend.KindPolygon},
		{orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, legend.KindPolygon},
		{nil, legend.KindPoint},
	}
	for _, tt := range tests {
		if got := KindOf(tt.geom); got != tt.want {
			t.Errorf("KindOf(%T) = %q, want %q", tt.geom, got, tt.want)
		}
	}
}
