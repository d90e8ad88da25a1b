// Package service contains the business logic for the plat-legend platform:
// the persisted layer catalog, legend source construction, per-client
// viewport sessions, preview export, and the change-event bus that keeps
// live panels in sync with catalog edits.
package service

import (
	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/style"
)

// LayerConfig is a persisted map layer definition.
// Single source of truth: Huma reads the tags for OpenAPI + validation.
// Exactly one legend origin applies per layer, checked in this order:
// hand-authored rows, a DuckDB category table, a GeoJSON file. A layer with
// none of them contributes nothing to the panel.
type LayerConfig struct {
	ID            string      `json:"id,omitempty" doc:"Unique layer identifier" example:"rivers"`
	Name          string      `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name, shown as the legend block title" example:"Hydrology"`
	File          string      `json:"file,omitempty" doc:"GeoJSON file under the sources directory" example:"rivers.geojson"`
	Table         string      `json:"table,omitempty" doc:"DuckDB table to derive categories from" example:"sites"`
	Category      string      `json:"category,omitempty" doc:"Category column for table-derived legends" example:"site_type"`
	LabelProperty string      `json:"labelProperty,omitempty" doc:"Feature property labelling file-derived entries" example:"type"`
	GeomType      string      `json:"geomType,omitempty" enum:"point,line,polygon" default:"point" doc:"Geometry type" example:"line"`
	Visible       bool        `json:"visible" default:"true" doc:"Whether the layer starts visible"`
	Opacity       float64     `json:"opacity,omitempty" minimum:"0" maximum:"1" default:"0.7" doc:"Layer opacity (0-1)" example:"0.7"`
	MinResolution float64     `json:"minResolution,omitempty" minimum:"0" doc:"Lowest view resolution the layer shows at"`
	MaxResolution float64     `json:"maxResolution,omitempty" minimum:"0" doc:"View resolution the layer hides at (0 = unbounded)"`
	Style         style.Style `json:"style,omitempty" doc:"Default style for this layer's entries"`
	Legend        []LegendRow `json:"legend,omitempty" doc:"Hand-authored legend rows"`
	NoCollapse    bool        `json:"noCollapse,omitempty" doc:"Veto the panel's collapse affordance while this layer is visible"`
}

// LegendRow is one hand-authored legend entry on a layer.
type LegendRow struct {
	Label string       `json:"label" required:"true" minLength:"1" doc:"Row label" example:"river"`
	Kind  string       `json:"kind,omitempty" enum:"point,line,polygon" doc:"Geometry kind, inherits the layer geomType when omitted"`
	Style *style.Style `json:"style,omitempty" doc:"Row style, inherits the layer style when omitted"`
}

// Geometry type enum values shared by LayerConfig.GeomType and
// LegendRow.Kind.
const (
	GeomPoint   = "point"
	GeomLine    = "line"
	GeomPolygon = "polygon"
)

// KindOfGeomType maps the config enum onto the legend core's kinds.
func KindOfGeomType(geomType string) legend.GeometryKind {
	switch geomType {
	case GeomLine:
		return legend.KindLineString
	case GeomPolygon:
		return legend.KindPolygon
	default:
		return legend.KindPoint
	}
}

// Validate normalizes defaults and rejects definitions the builder could
// not turn into a working source.
func (c *LayerConfig) Validate() error {
	if c.Name == "" {
		return errs.New(errs.ErrCodeInvalidInput, "layer name is required")
	}
	if c.GeomType == "" {
		c.GeomType = GeomPoint
	}
	if !validGeomType(c.GeomType) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid geomType %q", c.GeomType)
	}
	if c.Opacity == 0 {
		c.Opacity = 0.7
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		return errs.New(errs.ErrCodeInvalidInput, "opacity %v outside [0,1]", c.Opacity)
	}
	if c.MinResolution < 0 || c.MaxResolution < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "resolution bounds must not be negative")
	}
	if c.MaxResolution > 0 && c.MinResolution >= c.MaxResolution {
		return errs.New(errs.ErrCodeInvalidInput, "minResolution %v not below maxResolution %v", c.MinResolution, c.MaxResolution)
	}
	if !c.Style.IsZero() {
		if err := c.Style.Validate(); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidStyle, err, "layer style")
		}
	}
	for i := range c.Legend {
		row := &c.Legend[i]
		if row.Label == "" {
			return errs.New(errs.ErrCodeInvalidInput, "legend row %d: label is required", i)
		}
		if row.Kind != "" && !validGeomType(row.Kind) {
			return errs.New(errs.ErrCodeInvalidInput, "legend row %q: invalid kind %q", row.Label, row.Kind)
		}
		if row.Style != nil {
			if err := row.Style.Validate(); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidStyle, err, "legend row %q", row.Label)
			}
		}
	}
	if c.Table != "" && c.Category == "" {
		return errs.New(errs.ErrCodeInvalidInput, "table-derived legend needs a category column")
	}
	return nil
}

func validGeomType(s string) bool {
	return s == GeomPoint || s == GeomLine || s == GeomPolygon
}

// SourceFile is a data file available to layers.
type SourceFile struct {
	Name     string `json:"name" doc:"File name" example:"rivers.geojson"`
	Size     string `json:"size" doc:"Human-readable file size" example:"1.2 MB"`
	FileType string `json:"fileType" doc:"File type" example:"GeoJSON"`
}

// PreviewFile is an exported legend icon on disk.
type PreviewFile struct {
	Name string `json:"name" doc:"PNG file name" example:"rivers_0_river.png"`
	Size string `json:"size" doc:"Human-readable file size" example:"1.1 KB"`
}
