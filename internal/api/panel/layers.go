package panel

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-legend/internal/humastar"
	"github.com/joeblew999/plat-legend/internal/service"
	"github.com/joeblew999/plat-legend/internal/templates"
)

// LayerHandler patches the layer sidebar the panel viewer toggles
// visibility from.
type LayerHandler struct {
	humastar.Handler
	layers *service.LayerService
}

// NewLayerHandler creates a sidebar handler.
func NewLayerHandler(layers *service.LayerService, renderer *templates.Renderer) *LayerHandler {
	return &LayerHandler{
		Handler: humastar.Handler{Renderer: renderer},
		layers:  layers,
	}
}

func (h *LayerHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/panel/layers", h.ListLayers, huma.OperationTags("panel"))
}

func (h *LayerHandler) ListLayers(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(renderLayerList(h.Renderer, h.layers.List()), "#layer-list")
	}), nil
}

// LayerCardData feeds the layer-card fragment.
type LayerCardData struct {
	ID       string
	Name     string
	GeomType string
	Visible  bool
}

// renderLayerList renders the sidebar cards in draw order.
func renderLayerList(r *templates.Renderer, layers []service.LayerConfig) string {
	items := make([]any, len(layers))
	for i, l := range layers {
		items[i] = LayerCardData{ID: l.ID, Name: l.Name, GeomType: l.GeomType, Visible: l.Visible}
	}
	return humastar.RenderList(r, "layer-card", items, "No layers configured", "Create a layer to populate the legend")
}
