// Package api defines the Huma API routes and handlers.
package api

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/danielgtaylor/huma/v2"
	"github.com/disintegration/imaging"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/humastar"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/logx"
	"github.com/joeblew999/plat-legend/internal/preview"
	"github.com/joeblew999/plat-legend/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Layers   *service.LayerService
	Sources  *service.SourceService
	Previews *service.PreviewService
	Builder  *service.SourceBuilder
	Renderer *preview.Renderer
	Bus      *service.EventBus
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Layer ID" example:"hydrology"`
}

// LayerBody is a layer definition plus its state-dependent hypermedia
// actions, emitted as Link headers by the link transformer.
type LayerBody struct {
	service.LayerConfig
}

var layerActions = []humastar.ActionDef{
	{Rel: "edit", Pattern: "/api/v1/layers/%s", Method: "PUT", Title: "Update layer"},
	{Rel: "delete", Pattern: "/api/v1/layers/%s", Method: "DELETE", Title: "Delete layer"},
	{Rel: "move", Pattern: "/api/v1/layers/%s/move", Method: "POST", Title: "Reposition layer"},
	{Rel: "preview", Pattern: "/api/v1/layers/%s/preview", Method: "GET", Title: "Render legend icon"},
}

// Actions implements humastar.Actor.
func (b LayerBody) Actions() []humastar.Action {
	return humastar.ActionsFor(b.ID, layerActions)
}

type LayerOutput struct {
	Body LayerBody
}

type LayersOutput struct {
	Body []service.LayerConfig
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type CreatedLayerBody struct {
	ID      string              `json:"id" doc:"Generated layer ID"`
	Layer   service.LayerConfig `json:"layer" doc:"Created layer configuration"`
	Message string              `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type MoveInput struct {
	IDInput
	Body struct {
		Position int `json:"position" minimum:"0" doc:"Target draw position (0 = bottom of the stack)"`
	}
}

type PreviewInput struct {
	ID    string `path:"id" doc:"Layer ID"`
	Entry int    `query:"entry" default:"0" minimum:"0" doc:"Legend entry index within the layer's block"`
	Scale int    `query:"scale" default:"1" minimum:"1" maximum:"4" doc:"Integer upscale factor (2 = retina)"`
}

type PNGOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type LegendInput struct {
	Resolution float64 `query:"resolution" default:"100" minimum:"0" doc:"View resolution to gate layers by"`
}

// LegendBody is the catalog's collected legend at one resolution.
type LegendBody struct {
	Resolution  float64        `json:"resolution" doc:"Resolution the legend was collected at"`
	Blocks      []legend.Block `json:"blocks" doc:"Legend blocks in layer draw order"`
	Collapsible bool           `json:"collapsible" doc:"False when any contributing source vetoes collapsing"`
	Defects     []string       `json:"defects,omitempty" doc:"Per-layer faults that did not abort the build"`
}

type PageInput struct {
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Pagination offset"`
	Limit  int `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterLayers registers layer CRUD routes.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Get(api, "/api/v1/layers", h.GetLayers, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/layers", h.CreateLayer, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/layers/{id}", h.GetLayer, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/layers/{id}", h.PutLayer, huma.OperationTags("layers"))
	huma.Delete(api, "/api/v1/layers/{id}", h.DeleteLayer, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/layers/{id}/move", h.MoveLayer, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/layers/{id}/preview", h.GetLayerPreview, huma.OperationTags("layers"))
}

// RegisterLegend registers the catalog-wide legend route.
func (h *APIHandler) RegisterLegend(api huma.API) {
	huma.Get(api, "/api/v1/legend", h.GetLegend, huma.OperationTags("legend"))
}

// RegisterSources registers source listing routes.
func (h *APIHandler) RegisterSources(api huma.API) {
	huma.Get(api, "/api/v1/sources", h.GetSources, huma.OperationTags("sources"))
}

// RegisterPreviews registers exported preview listing routes.
func (h *APIHandler) RegisterPreviews(api huma.API) {
	huma.Get(api, "/api/v1/previews", h.GetPreviews, huma.OperationTags("previews"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetLayers(ctx context.Context, input *struct{}) (*LayersOutput, error) {
	if h.svc == nil || h.svc.Layers == nil {
		return &LayersOutput{Body: []service.LayerConfig{}}, nil
	}
	return &LayersOutput{Body: h.svc.Layers.List()}, nil
}

func (h *APIHandler) CreateLayer(ctx context.Context, input *struct{ Body service.LayerConfig }) (*struct{ Body CreatedLayerBody }, error) {
	if h.svc == nil || h.svc.Layers == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	created, err := h.svc.Layers.Create(input.Body)
	if err != nil {
		return nil, apiError(err)
	}
	h.publish("layers", "created", created.ID)
	return &struct{ Body CreatedLayerBody }{Body: CreatedLayerBody{
		ID: created.ID, Layer: created, Message: "Layer created",
	}}, nil
}

func (h *APIHandler) GetLayer(ctx context.Context, input *IDInput) (*LayerOutput, error) {
	if h.svc == nil || h.svc.Layers == nil {
		return nil, huma.Error404NotFound("service not available")
	}
	layer, err := h.svc.Layers.Get(input.ID)
	if err != nil {
		return nil, apiError(err)
	}
	return &LayerOutput{Body: LayerBody{layer}}, nil
}

func (h *APIHandler) PutLayer(ctx context.Context, input *struct {
	IDInput
	Body service.LayerConfig
}) (*LayerOutput, error) {
	if h.svc == nil || h.svc.Layers == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	updated, err := h.svc.Layers.Update(input.ID, input.Body)
	if err != nil {
		return nil, apiError(err)
	}
	h.publish("layers", "updated", updated.ID)
	return &LayerOutput{Body: LayerBody{updated}}, nil
}

func (h *APIHandler) DeleteLayer(ctx context.Context, input *IDInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Layers == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	if err := h.svc.Layers.Delete(input.ID); err != nil {
		return nil, apiError(err)
	}
	h.publish("layers", "deleted", input.ID)
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Layer deleted"}}, nil
}

func (h *APIHandler) MoveLayer(ctx context.Context, input *MoveInput) (*struct{ Body MessageBody }, error) {
	if h.svc == nil || h.svc.Layers == nil {
		return nil, huma.Error400BadRequest("service not available")
	}
	if err := h.svc.Layers.Move(input.ID, input.Body.Position); err != nil {
		return nil, apiError(err)
	}
	h.publish("layers", "moved", input.ID)
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Layer moved"}}, nil
}

// GetLayerPreview renders one legend entry of a layer as a PNG icon.
func (h *APIHandler) GetLayerPreview(ctx context.Context, input *PreviewInput) (*PNGOutput, error) {
	if h.svc == nil || h.svc.Layers == nil || h.svc.Builder == nil {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	cfg, err := h.svc.Layers.Get(input.ID)
	if err != nil {
		return nil, apiError(err)
	}
	src, err := h.svc.Builder.Build(ctx, cfg)
	if err != nil {
		return nil, apiError(err)
	}
	provider, ok := src.(legend.Provider)
	if !ok || !provider.HasLegends() {
		return nil, huma.Error404NotFound(fmt.Sprintf("layer %q has no legend", input.ID))
	}
	entries := provider.Legends()
	if input.Entry >= len(entries) {
		return nil, huma.Error404NotFound(fmt.Sprintf("layer %q has %d legend entries", input.ID, len(entries)))
	}

	renderer := h.svc.Renderer
	if renderer == nil {
		renderer = preview.NewRenderer()
	}
	entry := entries[input.Entry].Normalized()
	img, err := renderer.Render(entry.Style, entry.Kind)
	if err != nil {
		return nil, huma.Error500InternalServerError("preview render failed", err)
	}
	if input.Scale > 1 {
		width, height := renderer.Size()
		img = imaging.Resize(img, width*input.Scale, height*input.Scale, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, huma.Error500InternalServerError("PNG encoding failed", err)
	}
	return &PNGOutput{ContentType: "image/png", Body: buf.Bytes()}, nil
}

// GetLegend collects the whole catalog's legend at a given resolution,
// the same derivation a live panel session performs per frame.
func (h *APIHandler) GetLegend(ctx context.Context, input *LegendInput) (*struct{ Body LegendBody }, error) {
	if h.svc == nil || h.svc.Layers == nil || h.svc.Builder == nil {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	content, collectErrs := service.CollectLegend(ctx, h.svc.Layers, h.svc.Builder, input.Resolution)
	body := LegendBody{
		Resolution:  input.Resolution,
		Blocks:      content.Blocks,
		Collapsible: content.Collapsible,
	}
	if body.Blocks == nil {
		body.Blocks = []legend.Block{}
	}
	for _, err := range collectErrs {
		logx.FromContext(ctx).Warn("legend defect", "err", err)
		body.Defects = append(body.Defects, err.Error())
	}
	return &struct{ Body LegendBody }{Body: body}, nil
}

func (h *APIHandler) GetSources(ctx context.Context, input *struct{}) (*struct{ Body []service.SourceFile }, error) {
	if h.svc == nil || h.svc.Sources == nil {
		return &struct{ Body []service.SourceFile }{Body: []service.SourceFile{}}, nil
	}
	sources, err := h.svc.Sources.List()
	if err != nil {
		return &struct{ Body []service.SourceFile }{Body: []service.SourceFile{}}, nil
	}
	return &struct{ Body []service.SourceFile }{Body: sources}, nil
}

func (h *APIHandler) GetPreviews(ctx context.Context, input *PageInput) (*struct {
	Body humastar.PageBody[service.PreviewFile]
}, error) {
	page := humastar.PageBody[service.PreviewFile]{
		Offset: input.Offset,
		Limit:  input.Limit,
		Data:   []service.PreviewFile{},
	}
	if h.svc == nil || h.svc.Previews == nil {
		return &struct {
			Body humastar.PageBody[service.PreviewFile]
		}{Body: page}, nil
	}
	files, err := h.svc.Previews.List()
	if err != nil {
		return nil, huma.Error500InternalServerError("listing previews failed", err)
	}
	page.Total = len(files)
	if input.Offset < len(files) {
		end := input.Offset + input.Limit
		if end > len(files) {
			end = len(files)
		}
		page.Data = files[input.Offset:end]
	}
	return &struct {
		Body humastar.PageBody[service.PreviewFile]
	}{Body: page}, nil
}

// publish emits a catalog change event if a bus is wired.
func (h *APIHandler) publish(resource, action, id string) {
	if h.svc != nil && h.svc.Bus != nil {
		h.svc.Bus.Publish(service.Event{Resource: resource, Action: action, ID: id})
	}
}

// apiError maps service error codes onto Huma status errors.
func apiError(err error) error {
	switch errs.GetCode(err) {
	case errs.ErrCodeLayerNotFound, errs.ErrCodeSessionNotFound, errs.ErrCodeNotFound:
		return huma.Error404NotFound(errs.UserMessage(err))
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidStyle, errs.ErrCodeInvalidConfig:
		return huma.Error400BadRequest(errs.UserMessage(err))
	case errs.ErrCodeUnavailable:
		return huma.Error503ServiceUnavailable(errs.UserMessage(err))
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
