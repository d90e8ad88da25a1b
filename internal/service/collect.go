package service

import (
	"context"

	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/viewport"
)

// CollectLegend derives the legend content of the whole catalog at the given
// resolution, without going through a session. It drives a throwaway engine
// so draw order, visibility and resolution gating match exactly what a live
// panel would show. Build failures and provider defects come back as errors
// alongside whatever content could still be collected.
func CollectLegend(ctx context.Context, store *LayerService, builder *SourceBuilder, resolution float64) (legend.Content, []error) {
	configs := store.List()
	layers := make([]viewport.Layer, 0, len(configs))
	var defects []error
	for _, cfg := range configs {
		src, err := builder.Build(ctx, cfg)
		if err != nil {
			defects = append(defects, err)
			src = nil
		}
		layers = append(layers, ViewportLayer(cfg, src))
	}

	engine := viewport.NewEngine(resolution)
	if err := engine.SetLayers(layers); err != nil {
		return legend.Content{}, append(defects, err)
	}

	var collector legend.Collector
	content, collectErrs := collector.Collect(engine.Render())
	return content, append(defects, collectErrs...)
}
