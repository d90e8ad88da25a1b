package service

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/viewport"
)

// Session binds one client's viewport engine to its legend panel.
// The panel's single-threaded contract is preserved by funnelling every
// panel access through the session mutex: frames arrive via OnFrame,
// input events via the wrapper methods below.
type Session struct {
	ID     string
	Engine *viewport.Engine
	Panel  *legend.Panel
	// View is the legend.View the panel was bound to; hosts that need the
	// concrete implementation (the SSE stream wants its snapshots) get it
	// back by type assertion.
	View legend.View

	mu       sync.Mutex
	lastSeen time.Time
}

// OnFrame delivers an engine frame to the panel under the session lock.
// Implements viewport.FrameObserver.
func (s *Session) OnFrame(f viewport.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Panel.OnFrame(f)
}

// Toggle flips the panel's collapse state.
func (s *Session) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.Panel.ToggleCollapsed()
}

// SetCollapsed collapses or expands the panel.
func (s *Session) SetCollapsed(collapsed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.Panel.SetCollapsed(collapsed)
}

// SetCollapsible pins the collapse affordance.
func (s *Session) SetCollapsible(collapsible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.Panel.SetCollapsible(collapsible)
}

// ApplyView updates the session's view parameters and renders one frame.
// visible entries override per-layer visibility; absent layers keep theirs.
func (s *Session) ApplyView(resolution float64, visible map[string]bool) {
	s.touch()
	if resolution > 0 {
		s.Engine.SetResolution(resolution)
	}
	for id, v := range visible {
		s.Engine.SetLayerVisible(id, v)
	}
	s.Engine.Render()
}

// State returns the panel's presentation state.
func (s *Session) State() legend.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Panel.State()
}

// CollapseState returns the panel's collapse affordance state.
func (s *Session) CollapseState() legend.CollapseState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return legend.CollapseState{
		Collapsible: s.Panel.Collapsible(),
		Collapsed:   s.Panel.Collapsed(),
	}
}

// Content returns the panel's last collected content.
func (s *Session) Content() legend.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Panel.Content()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// ViewFactory builds the UI boundary for a new session.
type ViewFactory func(sessionID string) legend.View

// RegistryConfig wires a session registry.
type RegistryConfig struct {
	Store    *LayerService
	Builder  *SourceBuilder
	Bus      *EventBus
	Renderer legend.PreviewRenderer
	NewView  ViewFactory
	// PanelOptions apply to every session's panel (collapse defaults,
	// labels, logger).
	PanelOptions []legend.Option
	// InitialResolution seeds each session's view (default 100).
	InitialResolution float64
	// TTL evicts sessions idle longer than this (default 30m).
	TTL    time.Duration
	Logger *log.Logger
}

// Registry owns the live sessions and keeps their layer stacks in sync
// with the catalog.
type Registry struct {
	cfg RegistryConfig

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry validates the wiring and returns an empty registry.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Store == nil || cfg.Builder == nil || cfg.NewView == nil {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "registry needs a store, a builder and a view factory")
	}
	if cfg.InitialResolution <= 0 {
		cfg.InitialResolution = 100
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Registry{cfg: cfg, sessions: make(map[string]*Session)}, nil
}

// Create builds a session: fresh engine, fresh panel bound to a new view,
// layer stack synced from the catalog, and one initial frame rendered.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	view := r.cfg.NewView(id)
	panel, err := legend.New(view, r.cfg.Renderer, r.cfg.PanelOptions...)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:       id,
		Engine:   viewport.NewEngine(r.cfg.InitialResolution),
		Panel:    panel,
		View:     view,
		lastSeen: time.Now(),
	}
	r.syncLayers(ctx, sess)
	sess.Engine.Register(sess)

	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()

	sess.Engine.Render()
	return sess, nil
}

// Get returns a live session and marks it as seen.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id)
	}
	sess.touch()
	return sess, nil
}

// Close drops a session. Unknown IDs are a no-op.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		sess.Engine.Unregister(sess)
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Start runs the registry's background work until ctx is done: resyncing
// sessions on catalog events and evicting idle ones.
func (r *Registry) Start(ctx context.Context) {
	var events chan Event
	if r.cfg.Bus != nil {
		events = r.cfg.Bus.Subscribe()
		defer r.cfg.Bus.Unsubscribe(events)
	}
	ticker := time.NewTicker(r.cfg.TTL / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			r.cfg.Logger.Debug("resyncing sessions", "resource", ev.Resource, "action", ev.Action, "id", ev.ID)
			r.resyncAll(ctx)
		case now := <-ticker.C:
			r.sweep(now)
		}
	}
}

// resyncAll rebuilds every session's layer stack from the catalog and
// renders a frame so panels pick up the change.
func (r *Registry) resyncAll(ctx context.Context) {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, sess := range sessions {
		r.syncLayers(ctx, sess)
		sess.Engine.Render()
	}
}

// syncLayers mirrors the catalog into the session's engine. A layer whose
// source fails to build stays in the stack without one: it still lists
// and toggles, it just contributes no legend block.
func (r *Registry) syncLayers(ctx context.Context, sess *Session) {
	configs := r.cfg.Store.List()
	layers := make([]viewport.Layer, 0, len(configs))
	for _, cfg := range configs {
		src, err := r.cfg.Builder.Build(ctx, cfg)
		if err != nil {
			r.cfg.Logger.Warn("legend source unavailable", "layer", cfg.ID, "err", err)
			src = nil
		}
		layers = append(layers, ViewportLayer(cfg, src))
	}
	if err := sess.Engine.SetLayers(layers); err != nil {
		r.cfg.Logger.Error("layer stack rejected", "session", sess.ID, "err", err)
	}
}

// sweep drops sessions idle beyond the TTL.
func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, sess := range r.sessions {
		if now.Sub(sess.idleSince()) > r.cfg.TTL {
			r.cfg.Logger.Info("evicting idle session", "session", id)
			sess.Engine.Unregister(sess)
			delete(r.sessions, id)
		}
	}
}
