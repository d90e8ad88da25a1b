// Package web materializes a legend panel as patchable HTML.
//
// HTMLView is the browser-side legend.View: the panel pushes state changes
// in through the View interface, the SSE session stream pulls rendered
// snapshots out whenever the dirty channel fires, and Datastar morphs the
// snapshot over the mounted element. The view never talks to the network
// itself; it only renders.
package web

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/templates"
)

// DefaultTarget is the DOM id the panel fragment mounts at.
const DefaultTarget = "legend-panel"

// State classes toggled on the panel element, following the map-control
// convention the default "ol-legend" class comes from.
const (
	collapsedClass = "ol-collapsed"
	hiddenClass    = "ol-hidden"
)

// Config carries the presentation options an HTML rendition needs. They
// mirror the panel options the session was built with; the server wires
// both from the same place.
type Config struct {
	Target        string // mount element id (default "legend-panel")
	ClassName     string // base CSS class (default legend.DefaultClassName)
	TipLabel      string // hover tooltip (default legend.DefaultTipLabel)
	Label         string // expand affordance glyph (default legend.DefaultLabel)
	CollapseLabel string // collapse affordance glyph (default legend.DefaultCollapseLabel)
}

func (c Config) withDefaults() Config {
	if c.Target == "" {
		c.Target = DefaultTarget
	}
	if c.ClassName == "" {
		c.ClassName = legend.DefaultClassName
	}
	if c.TipLabel == "" {
		c.TipLabel = legend.DefaultTipLabel
	}
	if c.Label == "" {
		c.Label = legend.DefaultLabel
	}
	if c.CollapseLabel == "" {
		c.CollapseLabel = legend.DefaultCollapseLabel
	}
	return c
}

// panelData feeds the legend-panel fragment.
type panelData struct {
	Target      string
	Classes     string
	TipLabel    string
	Collapsible bool
	Button      string
	Body        template.HTML
}

// HTMLView implements legend.View for the Datastar UI.
type HTMLView struct {
	renderer *templates.Renderer
	cfg      Config

	mu          sync.Mutex
	blocks      []legend.RenderedBlock
	hidden      bool
	collapsed   bool
	collapsible bool

	dirty chan struct{}
}

// NewView creates an HTML view rendering through the given fragment
// renderer.
func NewView(renderer *templates.Renderer, cfg Config) *HTMLView {
	return &HTMLView{
		renderer: renderer,
		cfg:      cfg.withDefaults(),
		dirty:    make(chan struct{}, 1),
	}
}

// Replace swaps the rendered block list. Implements legend.View.
func (v *HTMLView) Replace(blocks []legend.RenderedBlock) {
	v.mu.Lock()
	v.blocks = blocks
	v.mu.Unlock()
	v.notify()
}

// SetHidden implements legend.View.
func (v *HTMLView) SetHidden(hidden bool) {
	v.mu.Lock()
	v.hidden = hidden
	v.mu.Unlock()
	v.notify()
}

// SetCollapsed implements legend.View.
func (v *HTMLView) SetCollapsed(collapsed bool) {
	v.mu.Lock()
	v.collapsed = collapsed
	v.mu.Unlock()
	v.notify()
}

// SetCollapsible implements legend.View.
func (v *HTMLView) SetCollapsible(collapsible bool) {
	v.mu.Lock()
	v.collapsible = collapsible
	v.mu.Unlock()
	v.notify()
}

// Updates returns a channel that fires after state changes. It is
// buffered and latest-wins: a burst of changes collapses into one tick,
// and the next Snapshot picks up everything.
func (v *HTMLView) Updates() <-chan struct{} {
	return v.dirty
}

// Target returns the mount element id.
func (v *HTMLView) Target() string {
	return v.cfg.Target
}

func (v *HTMLView) notify() {
	select {
	case v.dirty <- struct{}{}:
	default:
	}
}

// Snapshot renders the panel's current HTML, ready to patch over the
// mount element.
func (v *HTMLView) Snapshot() (string, error) {
	v.mu.Lock()
	data := panelData{
		Target:      v.cfg.Target,
		Classes:     v.classes(),
		TipLabel:    v.cfg.TipLabel,
		Collapsible: v.collapsible,
		Button:      v.button(),
	}
	blocks := v.blocks
	v.mu.Unlock()

	var body bytes.Buffer
	for _, b := range blocks {
		if err := v.renderer.RenderToBuffer(&body, "legend-block", b); err != nil {
			return "", err
		}
	}
	data.Body = template.HTML(body.String())
	return v.renderer.Render("legend-panel", data)
}

// classes returns the panel element's class list. Callers hold mu.
func (v *HTMLView) classes() string {
	classes := []string{v.cfg.ClassName}
	if v.collapsed {
		classes = append(classes, collapsedClass)
	}
	if v.hidden {
		classes = append(classes, hiddenClass)
	}
	return strings.Join(classes, " ")
}

// button returns the toggle affordance glyph: the expand label while
// collapsed, the collapse glyph while open. Callers hold mu.
func (v *HTMLView) button() string {
	if v.collapsed {
		return v.cfg.Label
	}
	return v.cfg.CollapseLabel
}
