// Package viewport models the host map engine's view of the world: an
// ordered layer stack, a current view resolution, and a per-frame snapshot
// delivered to registered observers.
//
// The engine here is deliberately small. It does not load tiles or project
// coordinates; it owns the one contract the legend machinery needs: layer
// draw order, a resolved per-layer visibility predicate, and serialized
// frame dispatch (at most one frame in flight).
package viewport

import (
	"sync"

	"github.com/joeblew999/plat-legend/internal/errs"
)

// Layer describes one map layer registered with the engine.
// Source is the layer's data source, opaque at this level; consumers probe
// it for optional capabilities.
type Layer struct {
	ID            string
	Title         string
	Visible       bool
	Opacity       float64
	MinResolution float64
	MaxResolution float64 // 0 means unbounded
	Source        any
}

// InView folds explicit visibility, opacity and the layer's resolution
// range into the single predicate frames carry.
func (l Layer) InView(resolution float64) bool {
	if !l.Visible || l.Opacity <= 0 {
		return false
	}
	if resolution < l.MinResolution {
		return false
	}
	if l.MaxResolution > 0 && resolution >= l.MaxResolution {
		return false
	}
	return true
}

// LayerState is one layer's resolved state inside a frame.
type LayerState struct {
	ID     string
	Title  string
	InView bool
	Source any
}

// Frame is an immutable snapshot of engine state at one render tick.
// Layers appear in draw order.
type Frame struct {
	Resolution float64
	Layers     []LayerState
}

// FrameObserver receives one callback per rendered frame. Callbacks run
// synchronously inside Render, so implementations must not block.
type FrameObserver interface {
	OnFrame(Frame)
}

// Engine holds the layer stack and view state and fans frames out to
// observers. All mutators are safe for concurrent use; Render serializes
// dispatch so observer callbacks never overlap.
type Engine struct {
	mu         sync.Mutex
	resolution float64
	layers     []Layer

	renderMu  sync.Mutex
	observers []FrameObserver
}

// NewEngine returns an engine with no layers at the given view resolution.
// A non-positive resolution falls back to 1.
func NewEngine(resolution float64) *Engine {
	if resolution <= 0 {
		resolution = 1
	}
	return &Engine{resolution: resolution}
}

// AddLayer appends a layer to the top of the draw order.
// Opacity 0 is treated as unset and normalized to fully opaque; an
// invisible layer is expressed via Visible=false.
func (e *Engine) AddLayer(l Layer) error {
	if l.ID == "" {
		return errs.New(errs.ErrCodeInvalidInput, "layer ID is required")
	}
	if l.Opacity == 0 {
		l.Opacity = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.layers {
		if existing.ID == l.ID {
			return errs.New(errs.ErrCodeInvalidInput, "layer %q already registered", l.ID)
		}
	}
	e.layers = append(e.layers, l)
	return nil
}

// SetLayers replaces the whole stack in one step, preserving the given
// draw order. Used when the layer catalog changes out from under a live
// view. The same ID and opacity rules as AddLayer apply.
func (e *Engine) SetLayers(layers []Layer) error {
	next := make([]Layer, 0, len(layers))
	ids := make(map[string]bool, len(layers))
	for _, l := range layers {
		if l.ID == "" {
			return errs.New(errs.ErrCodeInvalidInput, "layer ID is required")
		}
		if ids[l.ID] {
			return errs.New(errs.ErrCodeInvalidInput, "layer %q appears twice", l.ID)
		}
		ids[l.ID] = true
		if l.Opacity == 0 {
			l.Opacity = 1
		}
		next = append(next, l)
	}
	e.mu.Lock()
	e.layers = next
	e.mu.Unlock()
	return nil
}

// RemoveLayer drops a layer from the stack. Returns false if unknown.
func (e *Engine) RemoveLayer(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, l := range e.layers {
		if l.ID == id {
			e.layers = append(e.layers[:i], e.layers[i+1:]...)
			return true
		}
	}
	return false
}

// SetLayerVisible flips a layer's explicit visibility. Returns false if
// the layer is unknown.
func (e *Engine) SetLayerVisible(id string, visible bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.layers {
		if e.layers[i].ID == id {
			e.layers[i].Visible = visible
			return true
		}
	}
	return false
}

// SetLayerOpacity sets a layer's opacity. Returns false if unknown.
func (e *Engine) SetLayerOpacity(id string, opacity float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.layers {
		if e.layers[i].ID == id {
			e.layers[i].Opacity = opacity
			return true
		}
	}
	return false
}

// SetResolution updates the current view resolution.
func (e *Engine) SetResolution(resolution float64) {
	if resolution <= 0 {
		return
	}
	e.mu.Lock()
	e.resolution = resolution
	e.mu.Unlock()
}

// Resolution returns the current view resolution.
func (e *Engine) Resolution() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolution
}

// Register subscribes an observer to future frames.
func (e *Engine) Register(o FrameObserver) {
	if o == nil {
		return
	}
	e.renderMu.Lock()
	e.observers = append(e.observers, o)
	e.renderMu.Unlock()
}

// Unregister detaches an observer; it receives no further frames.
func (e *Engine) Unregister(o FrameObserver) {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	for i, reg := range e.observers {
		if reg == o {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// Snapshot builds a frame from current state without dispatching it.
func (e *Engine) Snapshot() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	frame := Frame{
		Resolution: e.resolution,
		Layers:     make([]LayerState, 0, len(e.layers)),
	}
	for _, l := range e.layers {
		frame.Layers = append(frame.Layers, LayerState{
			ID:     l.ID,
			Title:  l.Title,
			InView: l.InView(e.resolution),
			Source: l.Source,
		})
	}
	return frame
}

// Render produces one frame and delivers it to every observer in
// registration order. Frames never overlap: a Render call completes all
// observer callbacks before the next one starts.
func (e *Engine) Render() Frame {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	frame := e.Snapshot()
	for _, o := range e.observers {
		o.OnFrame(frame)
	}
	return frame
}
