package panel

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-legend/internal/humastar"
	"github.com/joeblew999/plat-legend/internal/service"
	"github.com/joeblew999/plat-legend/internal/templates"
)

// EventHandler streams catalog change events to the viewer page.
// Panel bodies resync through each session's own stream; this feed keeps
// the shared sidebar current and surfaces what changed as a signal.
type EventHandler struct {
	humastar.Handler
	layers *service.LayerService
	bus    *service.EventBus
}

// NewEventHandler creates an event stream handler.
func NewEventHandler(layers *service.LayerService, bus *service.EventBus, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{
		Handler: humastar.Handler{Renderer: renderer},
		layers:  layers,
		bus:     bus,
	}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/panel/events", h.Events, huma.OperationTags("panel"))
}

func (h *EventHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		ch := h.bus.Subscribe()
		defer h.bus.Unsubscribe(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				if ev.Resource == "layers" {
					sse.Patch(renderLayerList(h.Renderer, h.layers.List()), "#layer-list")
				}
				sse.Signals(map[string]any{
					"catalog": map[string]any{
						"resource": ev.Resource,
						"action":   ev.Action,
						"id":       ev.ID,
					},
				})
			}
		}
	}), nil
}
