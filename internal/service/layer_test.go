package service

import (
	"testing"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/style"
)

func TestLayerCRUDAndOrder(t *testing.T) {
	dir := t.TempDir()
	s := NewLayerService(dir)

	for _, name := range []string{"Base", "Hydrology", "Historic sites"} {
		if _, err := s.Create(LayerConfig{Name: name}); err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
	}

	layers := s.List()
	if len(layers) != 3 {
		t.Fatalf("got %d layers", len(layers))
	}
	wantOrder := []string{"base", "hydrology", "historic_sites"}
	for i, id := range wantOrder {
		if layers[i].ID != id {
			t.Errorf("layer[%d].ID = %q, want %q", i, layers[i].ID, id)
		}
	}

	if _, err := s.Create(LayerConfig{ID: "base", Name: "Base again"}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("duplicate create error = %v", err)
	}

	got, err := s.Get("hydrology")
	if err != nil || got.Name != "Hydrology" {
		t.Errorf("Get = %+v, %v", got, err)
	}
	if _, err := s.Get("nope"); !errs.Is(err, errs.ErrCodeLayerNotFound) {
		t.Errorf("missing layer error = %v", err)
	}

	// Update keeps draw position.
	updated, err := s.Update("hydrology", LayerConfig{Name: "Waterways", GeomType: GeomLine})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != "hydrology" {
		t.Errorf("Update changed ID to %q", updated.ID)
	}
	if s.List()[1].Name != "Waterways" {
		t.Error("update moved the layer out of position")
	}

	if err := s.Delete("base"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("base"); !errs.Is(err, errs.ErrCodeLayerNotFound) {
		t.Errorf("double delete error = %v", err)
	}

	// Persistence round-trip preserves order.
	reloaded := NewLayerService(dir)
	layers = reloaded.List()
	if len(layers) != 2 || layers[0].ID != "hydrology" || layers[1].ID != "historic_sites" {
		t.Errorf("reloaded layers = %+v", layers)
	}
}

func TestLayerMove(t *testing.T) {
	s := NewLayerService(t.TempDir())
	for _, name := range []string{"a", "b", "c"} {
		s.Create(LayerConfig{Name: name})
	}

	if err := s.Move("c", 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got := s.List(); got[0].ID != "c" || got[1].ID != "a" || got[2].ID != "b" {
		t.Errorf("order after move = %v, %v, %v", got[0].ID, got[1].ID, got[2].ID)
	}

	// Positions clamp to the stack.
	if err := s.Move("c", 99); err != nil {
		t.Fatalf("Move clamp: %v", err)
	}
	if got := s.List(); got[2].ID != "c" {
		t.Errorf("clamped move put c at %v", got)
	}
	if err := s.Move("ghost", 0); !errs.Is(err, errs.ErrCodeLayerNotFound) {
		t.Errorf("moving unknown layer error = %v", err)
	}
}

func TestLayerConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  LayerConfig
		code errs.Code
	}{
		{"no name", LayerConfig{}, errs.ErrCodeInvalidInput},
		{"bad geom type", LayerConfig{Name: "x", GeomType: "blob"}, errs.ErrCodeInvalidInput},
		{"opacity out of range", LayerConfig{Name: "x", Opacity: 2}, errs.ErrCodeInvalidInput},
		{"negative resolution", LayerConfig{Name: "x", MinResolution: -1}, errs.ErrCodeInvalidInput},
		{"inverted range", LayerConfig{Name: "x", MinResolution: 100, MaxResolution: 10}, errs.ErrCodeInvalidInput},
		{"bad style", LayerConfig{Name: "x", Style: style.Style{Fill: "red"}}, errs.ErrCodeInvalidStyle},
		{"row without label", LayerConfig{Name: "x", Legend: []LegendRow{{}}}, errs.ErrCodeInvalidInput},
		{"row with bad kind", LayerConfig{Name: "x", Legend: []LegendRow{{Label: "r", Kind: "blob"}}}, errs.ErrCodeInvalidInput},
		{"table without category", LayerConfig{Name: "x", Table: "sites"}, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errs.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}

	// Defaults are normalized in place.
	cfg := LayerConfig{Name: "Rivers"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.GeomType != GeomPoint || cfg.Opacity != 0.7 {
		t.Errorf("normalized cfg = %+v", cfg)
	}
}

func TestSeedDemo(t *testing.T) {
	s := NewLayerService(t.TempDir())
	if err := s.SeedDemo(); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	if got := len(s.List()); got != 4 {
		t.Fatalf("seeded %d layers, want 4", got)
	}

	// Seeding a non-empty catalog is a no-op.
	if err := s.SeedDemo(); err != nil {
		t.Fatal(err)
	}
	if got := len(s.List()); got != 4 {
		t.Errorf("second seed grew the catalog to %d", got)
	}

	mask, err := s.Get("region_mask")
	if err != nil {
		t.Fatal(err)
	}
	if !mask.NoCollapse || mask.MaxResolution != 500 {
		t.Errorf("mask = %+v", mask)
	}

	landUse, err := s.Get("land_use")
	if err != nil {
		t.Fatal(err)
	}
	if landUse.Table != "land_use" || landUse.Category != "category" {
		t.Errorf("land use = %+v", landUse)
	}
}
