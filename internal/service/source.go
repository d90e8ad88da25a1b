package service

import (
	"os"
	"path/filepath"
	"strings"
)

// SourceService lists the data files layers can draw their legends from.
type SourceService struct {
	sourcesDir string
}

// NewSourceService creates a source service rooted at dataDir/sources.
func NewSourceService(dataDir string) *SourceService {
	return &SourceService{
		sourcesDir: filepath.Join(dataDir, "sources"),
	}
}

// List returns all usable source files.
func (s *SourceService) List() ([]SourceFile, error) {
	entries, err := os.ReadDir(s.sourcesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SourceFile{}, nil
		}
		return nil, err
	}

	extToType := map[string]string{
		".geojson": "GeoJSON",
		".json":    "GeoJSON",
		".duckdb":  "DuckDB",
	}

	var files []SourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		fileType, ok := extToType[ext]
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, SourceFile{
			Name:     entry.Name(),
			Size:     formatSize(info.Size()),
			FileType: fileType,
		})
	}
	return files, nil
}

// Resolve returns the absolute path of a named source file.
func (s *SourceService) Resolve(name string) string {
	return filepath.Join(s.sourcesDir, filepath.Base(name))
}

// SourcesDir returns the path to the sources directory.
func (s *SourceService) SourcesDir() string {
	return s.sourcesDir
}

// demoSites backs the seeded historic_sites layer: categorized point
// features whose "type" property drives the derived legend entries.
const demoSites = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Veste Oberhaus", "type": "castle"}, "geometry": {"type": "Point", "coordinates": [13.47, 48.58]}},
    {"type": "Feature", "properties": {"name": "St. Stephan", "type": "church"}, "geometry": {"type": "Point", "coordinates": [13.465, 48.574]}},
    {"type": "Feature", "properties": {"name": "Batavis", "type": "battlefield"}, "geometry": {"type": "Point", "coordinates": [13.46, 48.57]}},
    {"type": "Feature", "properties": {"name": "Niedernburg", "type": "church"}, "geometry": {"type": "Point", "coordinates": [13.472, 48.576]}}
  ]
}
`

// SeedDemo writes the demo GeoJSON source if no file of that name exists,
// so a freshly seeded catalog has data behind its file-backed layer.
func (s *SourceService) SeedDemo() error {
	if err := os.MkdirAll(s.sourcesDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(s.sourcesDir, "historic_sites.geojson")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(demoSites), 0644)
}
