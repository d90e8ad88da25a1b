package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/style"
)

// LayerService manages layer definitions. Draw order is part of the data:
// layers are kept and persisted as an ordered list, and every listing
// preserves it, because the panel's block order follows it.
type LayerService struct {
	dataDir string
	mu      sync.RWMutex
	layers  []LayerConfig
}

// NewLayerService loads the catalog from dataDir, starting empty when no
// file exists yet.
func NewLayerService(dataDir string) *LayerService {
	s := &LayerService{dataDir: dataDir}
	s.loadFromDisk()
	return s
}

// List returns all layers in draw order.
func (s *LayerService) List() []LayerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LayerConfig, len(s.layers))
	copy(out, s.layers)
	return out
}

// Get returns a layer by ID.
func (s *LayerService) Get(id string) (LayerConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.layers[i], nil
	}
	return LayerConfig{}, errs.New(errs.ErrCodeLayerNotFound, "layer %q not found", id)
}

// Create validates and appends a layer to the top of the draw order.
// A missing ID is generated from the name.
func (s *LayerService) Create(layer LayerConfig) (LayerConfig, error) {
	if err := layer.Validate(); err != nil {
		return LayerConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if layer.ID == "" {
		layer.ID = generateID(layer.Name)
	}
	if layer.ID == "" {
		return LayerConfig{}, errs.New(errs.ErrCodeInvalidInput, "cannot derive an ID from name %q", layer.Name)
	}
	if s.index(layer.ID) >= 0 {
		return LayerConfig{}, errs.New(errs.ErrCodeInvalidInput, "layer %q already exists", layer.ID)
	}

	s.layers = append(s.layers, layer)
	if err := s.saveToDisk(); err != nil {
		s.layers = s.layers[:len(s.layers)-1]
		return LayerConfig{}, err
	}
	return layer, nil
}

// Update replaces a layer definition in place, keeping its draw position.
func (s *LayerService) Update(id string, layer LayerConfig) (LayerConfig, error) {
	if err := layer.Validate(); err != nil {
		return LayerConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return LayerConfig{}, errs.New(errs.ErrCodeLayerNotFound, "layer %q not found", id)
	}
	layer.ID = id
	previous := s.layers[i]
	s.layers[i] = layer
	if err := s.saveToDisk(); err != nil {
		s.layers[i] = previous
		return LayerConfig{}, err
	}
	return layer, nil
}

// Delete removes a layer by ID.
func (s *LayerService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return errs.New(errs.ErrCodeLayerNotFound, "layer %q not found", id)
	}
	removed := s.layers[i]
	s.layers = append(s.layers[:i:i], s.layers[i+1:]...)
	if err := s.saveToDisk(); err != nil {
		s.layers = append(s.layers[:i:i], append([]LayerConfig{removed}, s.layers[i:]...)...)
		return err
	}
	return nil
}

// Move shifts a layer to a new draw position, clamped to the stack.
func (s *LayerService) Move(id string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return errs.New(errs.ErrCodeLayerNotFound, "layer %q not found", id)
	}
	if position < 0 {
		position = 0
	}
	if position >= len(s.layers) {
		position = len(s.layers) - 1
	}
	if position == i {
		return nil
	}
	layer := s.layers[i]
	rest := append(s.layers[:i:i], s.layers[i+1:]...)
	s.layers = append(rest[:position:position], append([]LayerConfig{layer}, rest[position:]...)...)
	return s.saveToDisk()
}

// Empty reports whether the catalog has no layers.
func (s *LayerService) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers) == 0
}

// index returns the draw position of id, -1 if absent. Callers hold mu.
func (s *LayerService) index(id string) int {
	for i, l := range s.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *LayerService) configFile() string {
	return filepath.Join(s.dataDir, "layers.json")
}

func (s *LayerService) loadFromDisk() {
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return // no catalog yet, start empty
	}
	var layers []LayerConfig
	if err := json.Unmarshal(data, &layers); err != nil {
		return // invalid JSON, start empty
	}
	s.layers = layers
}

func (s *LayerService) saveToDisk() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.layers, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configFile(), data, 0644)
}

// generateID creates a URL-safe ID from a name.
func generateID(name string) string {
	id := strings.ToLower(name)
	id = strings.ReplaceAll(id, " ", "_")
	var result strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// SeedDemo fills an empty catalog with the demo layers: categorized point
// markers, hand-authored hydrology rows, an uncollapsible clipping mask
// spanning a limited resolution range, and a DuckDB-derived land use layer.
func (s *LayerService) SeedDemo() error {
	if !s.Empty() {
		return nil
	}
	demo := []LayerConfig{
		{
			ID:            "historic_sites",
			Name:          "Historic sites",
			File:          "historic_sites.geojson",
			LabelProperty: "type",
			GeomType:      GeomPoint,
			Visible:       true,
			Opacity:       1,
			Style:         style.Style{Fill: "#b22222", Stroke: "#5c1010", StrokeWidth: 1, PointRadius: 4},
		},
		{
			ID:       "hydrology",
			Name:     "Hydrology",
			GeomType: GeomLine,
			Visible:  true,
			Opacity:  0.9,
			Legend: []LegendRow{
				{Label: "river", Kind: GeomLine, Style: &style.Style{Stroke: "#2266cc", StrokeWidth: 2}},
				{Label: "canal", Kind: GeomLine, Style: &style.Style{Stroke: "#2266cc", StrokeWidth: 2, Dash: []float64{4, 2}}},
				{Label: "lake", Kind: GeomPolygon, Style: &style.Style{Fill: "#3388ff", Stroke: "#2266cc", StrokeWidth: 1}},
			},
		},
		{
			ID:            "region_mask",
			Name:          "Region mask",
			GeomType:      GeomPolygon,
			Visible:       true,
			Opacity:       0.5,
			MaxResolution: 500,
			NoCollapse:    true,
			Legend: []LegendRow{
				{Label: "outside region", Kind: GeomPolygon, Style: &style.Style{Fill: "#cccccc", Opacity: 0.6}},
			},
		},
		{
			ID:       "land_use",
			Name:     "Land use",
			Table:    "land_use",
			Category: "category",
			GeomType: GeomPolygon,
			Visible:  true,
			Opacity:  0.8,
		},
	}
	for _, layer := range demo {
		if _, err := s.Create(layer); err != nil {
			return err
		}
	}
	return nil
}
