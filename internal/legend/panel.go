package legend

import (
	"image"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/viewport"
)

// State is the panel's presentation state. Hidden applies whenever the
// latest frame collected zero blocks, regardless of collapse preference.
type State string

const (
	StateHidden    State = "hidden"
	StateCollapsed State = "collapsed"
	StateExpanded  State = "expanded"
)

// Construction defaults.
const (
	DefaultClassName     = "ol-legend"
	DefaultTipLabel      = "Legends"
	DefaultLabel         = "L"
	DefaultCollapseLabel = "»"
)

// View is the UI boundary the panel drives. Implementations translate
// these calls into their toolkit (DOM patches, terminal repaints); the
// panel itself never touches a concrete UI.
type View interface {
	// Replace swaps the panel body for the rendered blocks. nil means an
	// empty body.
	Replace(blocks []RenderedBlock)
	// SetHidden toggles the panel's hidden presentation class.
	SetHidden(hidden bool)
	// SetCollapsed toggles the collapsed presentation class and swaps the
	// toggle button's affordance glyph.
	SetCollapsed(collapsed bool)
	// SetCollapsible shows or hides the toggle affordance entirely.
	SetCollapsible(collapsible bool)
}

// PreviewRenderer rasterizes one entry's style onto a probe geometry.
// Implemented by internal/preview; faked in tests.
type PreviewRenderer interface {
	Render(style any, kind GeometryKind) (image.Image, error)
}

// Panel is the stateful legend control. It owns the collapse affordance,
// caches the last collected content for diffing, and rebuilds its view
// only when a frame actually changes legend-relevant inputs.
//
// Panel is not safe for concurrent use: the host serializes frames and
// input events (viewport.Engine.Render dispatches frames one at a time,
// and session owners lock around toggles).
type Panel struct {
	view      View
	renderer  PreviewRenderer
	collector Collector
	log       *log.Logger

	className     string
	tipLabel      string
	label         string
	collapseLabel string
	target        string

	// autoCollapsible is set until collapsibility is pinned explicitly,
	// letting source opt-outs steer the affordance per frame.
	autoCollapsible bool
	collapse        CollapseState
	state           State
	content         Content
}

// Option configures a Panel at construction.
type Option func(*Panel)

// WithClassName overrides the panel's root presentation class.
func WithClassName(name string) Option {
	return func(p *Panel) { p.className = name }
}

// WithCollapsible pins the collapse affordance on or off, disabling the
// per-frame source opt-out.
func WithCollapsible(collapsible bool) Option {
	return func(p *Panel) {
		p.collapse.Collapsible = collapsible
		p.autoCollapsible = false
	}
}

// WithCollapsed sets the initial collapse state. Ignored when the panel
// ends up uncollapsible.
func WithCollapsed(collapsed bool) Option {
	return func(p *Panel) { p.collapse.Collapsed = collapsed }
}

// WithTipLabel overrides the toggle button's tooltip text.
func WithTipLabel(tip string) Option {
	return func(p *Panel) { p.tipLabel = tip }
}

// WithLabel overrides the glyph shown while collapsed.
func WithLabel(label string) Option {
	return func(p *Panel) { p.label = label }
}

// WithCollapseLabel overrides the glyph shown while expanded.
func WithCollapseLabel(label string) Option {
	return func(p *Panel) { p.collapseLabel = label }
}

// WithTarget names the mount point the view should attach to, when the
// view supports external mounts. Empty means the view's default.
func WithTarget(target string) Option {
	return func(p *Panel) { p.target = target }
}

// WithLogger routes defect and render-failure reports to l.
func WithLogger(l *log.Logger) Option {
	return func(p *Panel) {
		if l != nil {
			p.log = l
		}
	}
}

// New builds a panel wired to a view and a preview renderer.
// Invalid options fail here, not on first frame. The panel starts Hidden
// until a frame with non-empty content arrives; its collapse state follows
// WithCollapsed (default collapsed).
func New(view View, renderer PreviewRenderer, opts ...Option) (*Panel, error) {
	if view == nil {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "view is required")
	}
	if renderer == nil {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "preview renderer is required")
	}
	p := &Panel{
		view:            view,
		renderer:        renderer,
		log:             log.Default(),
		className:       DefaultClassName,
		tipLabel:        DefaultTipLabel,
		label:           DefaultLabel,
		collapseLabel:   DefaultCollapseLabel,
		autoCollapsible: true,
		collapse:        CollapseState{Collapsible: true, Collapsed: true},
		state:           StateHidden,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if !p.collapse.Collapsible {
		p.collapse.Collapsed = false
	}

	p.view.SetHidden(true)
	p.view.SetCollapsible(p.collapse.Collapsible)
	p.view.SetCollapsed(p.collapse.Collapsed)
	return p, nil
}

func (p *Panel) validate() error {
	if p.className == "" || strings.ContainsAny(p.className, " \t\n") {
		return errs.New(errs.ErrCodeInvalidConfig, "class name %q is not a valid token", p.className)
	}
	if p.label == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "label must not be empty")
	}
	if p.collapseLabel == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "collapse label must not be empty")
	}
	if p.tipLabel == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "tip label must not be empty")
	}
	return nil
}

// OnFrame ingests one viewport frame: collect, diff, and rebuild the view
// body only when content changed. Implements viewport.FrameObserver.
// Provider defects and per-entry render failures are logged and isolated;
// they never abort the rest of the legend.
func (p *Panel) OnFrame(frame viewport.Frame) {
	content, defects := p.collector.Collect(frame)
	for _, defect := range defects {
		p.log.Error("legend source defect", "err", defect)
	}

	if p.autoCollapsible {
		p.applyCollapsible(content.Collapsible)
	}

	if content.Equal(p.content) {
		return
	}
	p.content = content

	if content.Empty() {
		p.state = StateHidden
		p.view.Replace(nil)
		p.view.SetHidden(true)
		return
	}
	p.view.Replace(p.renderBlocks(content.Blocks))
	p.view.SetHidden(false)
	p.state = p.presentation()
}

// renderBlocks rasterizes previews for collected blocks. A failing entry
// is dropped from its block and reported; a block whose every preview
// failed is dropped entirely so no empty block becomes visible.
func (p *Panel) renderBlocks(blocks []Block) []RenderedBlock {
	out := make([]RenderedBlock, 0, len(blocks))
	for _, b := range blocks {
		rb := RenderedBlock{Title: b.Title, Entries: make([]RenderedEntry, 0, len(b.Entries))}
		for _, e := range b.Entries {
			img, err := p.renderer.Render(e.Style, e.Kind)
			if err != nil {
				p.log.Error("legend preview failed", "label", e.Label, "err", err)
				continue
			}
			rb.Entries = append(rb.Entries, RenderedEntry{
				Label:   e.Label,
				Kind:    e.Kind,
				Style:   e.Style,
				Preview: img,
			})
		}
		if len(rb.Entries) == 0 {
			continue
		}
		out = append(out, rb)
	}
	return out
}

// ToggleCollapsed flips the collapse state. No-op while uncollapsible.
func (p *Panel) ToggleCollapsed() {
	if !p.collapse.Collapsible {
		return
	}
	p.collapse.Collapsed = !p.collapse.Collapsed
	p.view.SetCollapsed(p.collapse.Collapsed)
	if p.state != StateHidden {
		p.state = p.presentation()
	}
}

// SetCollapsed collapses or expands the panel. No-op unless collapsible
// and the requested state differs from the current one.
func (p *Panel) SetCollapsed(collapsed bool) {
	if !p.collapse.Collapsible || p.collapse.Collapsed == collapsed {
		return
	}
	p.ToggleCollapsed()
}

// SetCollapsible pins the collapse affordance. Turning it off while
// collapsed forces an expand first, so the panel can never be left
// permanently hidden behind a collapse it cannot undo.
func (p *Panel) SetCollapsible(collapsible bool) {
	p.autoCollapsible = false
	p.applyCollapsible(collapsible)
}

func (p *Panel) applyCollapsible(collapsible bool) {
	if p.collapse.Collapsible == collapsible {
		return
	}
	if !collapsible && p.collapse.Collapsed {
		p.collapse.Collapsed = false
		p.view.SetCollapsed(false)
	}
	p.collapse.Collapsible = collapsible
	p.view.SetCollapsible(collapsible)
	if p.state != StateHidden {
		p.state = p.presentation()
	}
}

func (p *Panel) presentation() State {
	if p.collapse.Collapsible && p.collapse.Collapsed {
		return StateCollapsed
	}
	return StateExpanded
}

// Collapsible reports whether the toggle affordance is active.
func (p *Panel) Collapsible() bool { return p.collapse.Collapsible }

// Collapsed reports the current collapse state.
func (p *Panel) Collapsed() bool { return p.collapse.Collapsed }

// State returns the current presentation state.
func (p *Panel) State() State { return p.state }

// Content returns the last collected content. Callers must treat it as
// read-only.
func (p *Panel) Content() Content { return p.content }

// ClassName returns the panel's root presentation class.
func (p *Panel) ClassName() string { return p.className }

// TipLabel returns the toggle button's tooltip text.
func (p *Panel) TipLabel() string { return p.tipLabel }

// Target returns the configured mount point, empty for the view default.
func (p *Panel) Target() string { return p.target }

// AffordanceLabel returns the toggle button's current glyph: the expand
// label while collapsed, the collapse glyph while expanded.
func (p *Panel) AffordanceLabel() string {
	if p.collapse.Collapsed {
		return p.label
	}
	return p.collapseLabel
}
