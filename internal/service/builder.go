package service

import (
	"context"
	"database/sql"

	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/source"
	"github.com/joeblew999/plat-legend/internal/style"
	"github.com/joeblew999/plat-legend/internal/viewport"
)

// SourceBuilder turns layer definitions into legend-bearing sources.
// Hand-authored rows win over table derivation, which wins over file
// derivation; a layer with none yields a nil source.
type SourceBuilder struct {
	sources *SourceService
	db      *sql.DB // nil when DuckDB is not configured
}

// NewSourceBuilder creates a builder. db may be nil.
func NewSourceBuilder(sources *SourceService, db *sql.DB) *SourceBuilder {
	return &SourceBuilder{sources: sources, db: db}
}

// Build constructs the source for one layer definition.
func (b *SourceBuilder) Build(ctx context.Context, cfg LayerConfig) (any, error) {
	src, err := b.build(ctx, cfg)
	if err != nil || src == nil {
		return nil, err
	}
	if cfg.NoCollapse {
		src = source.Pin(src)
	}
	return src, nil
}

func (b *SourceBuilder) build(ctx context.Context, cfg LayerConfig) (any, error) {
	switch {
	case len(cfg.Legend) > 0:
		return source.NewStatic(cfg.Name, rowsToEntries(cfg)...), nil
	case cfg.Table != "" && b.db != nil:
		return source.NewDuckDB(ctx, b.db, source.DuckDBConfig{
			Title:    cfg.Name,
			Table:    cfg.Table,
			Category: cfg.Category,
			Kind:     KindOfGeomType(cfg.GeomType),
			Style:    layerStyle(cfg),
		})
	case cfg.File != "":
		opts := []source.GeoJSONOption{}
		if st := layerStyle(cfg); st != nil {
			opts = append(opts, source.WithStyle(*st))
		}
		if cfg.LabelProperty != "" {
			opts = append(opts, source.WithLabelProperty(cfg.LabelProperty))
		}
		return source.LoadGeoJSON(b.sources.Resolve(cfg.File), cfg.Name, opts...)
	default:
		return nil, nil
	}
}

// ViewportLayer translates a definition plus its built source into the
// engine's layer shape.
func ViewportLayer(cfg LayerConfig, src any) viewport.Layer {
	return viewport.Layer{
		ID:            cfg.ID,
		Title:         cfg.Name,
		Visible:       cfg.Visible,
		Opacity:       cfg.Opacity,
		MinResolution: cfg.MinResolution,
		MaxResolution: cfg.MaxResolution,
		Source:        src,
	}
}

// rowsToEntries maps hand-authored rows onto entries, inheriting the
// layer's geometry kind and style where a row leaves them out.
func rowsToEntries(cfg LayerConfig) []legend.Entry {
	entries := make([]legend.Entry, len(cfg.Legend))
	for i, row := range cfg.Legend {
		kind := KindOfGeomType(cfg.GeomType)
		if row.Kind != "" {
			kind = KindOfGeomType(row.Kind)
		}
		var st style.Style
		if row.Style != nil {
			st = *row.Style
		} else if ls := layerStyle(cfg); ls != nil {
			st = *ls
		} else {
			st = style.Style{}.Normalized()
		}
		entries[i] = legend.Entry{Label: row.Label, Style: st, Kind: kind}
	}
	return entries
}

// layerStyle returns the layer's style or nil when none is configured.
func layerStyle(cfg LayerConfig) *style.Style {
	if cfg.Style.IsZero() {
		return nil
	}
	st := cfg.Style
	return &st
}
