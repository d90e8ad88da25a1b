// Package panel contains the Datastar SSE handlers for live legend panel
// sessions.
//
// Every session binds one browser tab to its own viewport engine and
// panel. Mutating endpoints (view, toggle) answer with SSE patches of
// their own, so a test can drive a session without holding the stream
// open; the stream endpoint delivers the same patches for changes that
// originate elsewhere (catalog edits, other inputs).
package panel

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/humastar"
	"github.com/joeblew999/plat-legend/internal/service"
	"github.com/joeblew999/plat-legend/internal/templates"
	"github.com/joeblew999/plat-legend/internal/web"
)

// PanelSignals documents the Datastar signals a panel session exchanges.
// It is never sent as a JSON body; it exists so the OpenAPI spec carries
// the signal contract via x-datastar extensions.
type PanelSignals struct {
	SessionID  string          `json:"sessionid" signal:"sessionid" doc:"Session identifier, set once at session creation"`
	Resolution float64         `json:"resolution" signal:"resolution" doc:"Current view resolution"`
	Layers     map[string]bool `json:"layers" signal:"layers" doc:"Per-layer visibility, keyed by layer ID"`
	Error      string          `json:"error" signal:"error" doc:"Last error message"`
	Success    string          `json:"success" signal:"success" doc:"Last success message"`
}

// SessionIDInput addresses one live session.
type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// SessionSignalsInput addresses one live session and captures its signals.
type SessionSignalsInput struct {
	ID      string `path:"id" doc:"Session ID"`
	RawBody []byte
}

// SessionHandler drives panel sessions over Datastar SSE.
type SessionHandler struct {
	humastar.Handler
	registry *service.Registry
	layers   *service.LayerService
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(registry *service.Registry, layers *service.LayerService, renderer *templates.Renderer) *SessionHandler {
	return &SessionHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		registry: registry,
		layers:   layers,
	}
}

func (h *SessionHandler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/panel/sessions", h.CreateSession, huma.OperationTags("panel"))
	huma.Get(api, "/api/v1/panel/sessions/{id}/stream", h.StreamSession, huma.OperationTags("panel"))
	huma.Post(api, "/api/v1/panel/sessions/{id}/view", h.ApplyView, huma.OperationTags("panel"))
	huma.Post(api, "/api/v1/panel/sessions/{id}/toggle", h.Toggle, huma.OperationTags("panel"))
	huma.Delete(api, "/api/v1/panel/sessions/{id}", h.CloseSession, huma.OperationTags("panel"))
}

// CreateSession opens a session and seeds the page: session signals,
// the initial panel, and the layer sidebar.
func (h *SessionHandler) CreateSession(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	sess, err := h.registry.Create(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("session create failed", err)
	}

	layers := h.layers.List()
	visible := make(map[string]any, len(layers))
	for _, l := range layers {
		visible[l.ID] = l.Visible
	}

	return h.Stream(func(sse humastar.SSE) {
		sse.Signals(map[string]any{
			"sessionid":  sess.ID,
			"resolution": sess.Engine.Resolution(),
			"layers":     visible,
			"error":      "",
			"success":    "",
		})
		h.patchPanel(sse, sess)
		sse.Patch(renderLayerList(h.Renderer, layers), "#layer-list")
	}), nil
}

// StreamSession is the session's long-lived update feed: one snapshot up
// front, then a patch per panel change until the client goes away.
func (h *SessionHandler) StreamSession(ctx context.Context, input *SessionIDInput) (*huma.StreamResponse, error) {
	sess, err := h.registry.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(errs.UserMessage(err))
	}
	view, ok := sess.View.(*web.HTMLView)
	if !ok {
		return nil, huma.Error500InternalServerError("session has no HTML view")
	}

	return h.Stream(func(sse humastar.SSE) {
		h.patchPanel(sse, sess)
		for {
			select {
			case <-ctx.Done():
				return
			case <-view.Updates():
				h.patchPanel(sse, sess)
			}
		}
	}), nil
}

// ApplyView updates the session's resolution and per-layer visibility
// from the page's signals and answers with the resulting panel.
func (h *SessionHandler) ApplyView(ctx context.Context, input *SessionSignalsInput) (*huma.StreamResponse, error) {
	sess, err := h.registry.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(errs.UserMessage(err))
	}
	signals, err := humastar.ParseSignals(input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid request data: " + err.Error())
	}
	resolution := signals.Float("resolution")
	visible := signals.BoolMap("layers")

	return h.Stream(func(sse humastar.SSE) {
		sess.ApplyView(resolution, visible)
		h.patchPanel(sse, sess)
	}), nil
}

// Toggle flips the session panel's collapse state.
func (h *SessionHandler) Toggle(ctx context.Context, input *SessionIDInput) (*huma.StreamResponse, error) {
	sess, err := h.registry.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(errs.UserMessage(err))
	}
	return h.Stream(func(sse humastar.SSE) {
		sess.Toggle()
		h.patchPanel(sse, sess)
	}), nil
}

// CloseSession drops a session. Closing an unknown session succeeds.
func (h *SessionHandler) CloseSession(ctx context.Context, input *SessionIDInput) (*huma.StreamResponse, error) {
	h.registry.Close(input.ID)
	return h.Stream(func(sse humastar.SSE) {
		sse.Signals(map[string]any{"sessionid": "", "success": "Session closed"})
	}), nil
}

// patchPanel replaces the mounted panel element with the session view's
// current snapshot. Sessions bound to a non-HTML view are left alone.
func (h *SessionHandler) patchPanel(sse humastar.SSE, sess *service.Session) {
	view, ok := sess.View.(*web.HTMLView)
	if !ok {
		return
	}
	html, err := view.Snapshot()
	if err != nil {
		sse.Error("panel render failed: " + err.Error())
		return
	}
	sse.Replace(html, "#"+view.Target())
}
