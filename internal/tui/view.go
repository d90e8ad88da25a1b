package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/style"
)

// Panel styles
var (
	panelBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	panelTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	blockTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	entryLabelStyle  = lipgloss.NewStyle().Foreground(colorGray)
	hiddenStyle      = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
)

// Kind glyphs, the terminal stand-ins for raster preview icons.
const (
	glyphPoint   = "●"
	glyphLine    = "─"
	glyphPolygon = "■"
)

// TermView implements legend.View for the terminal. Where the browser
// view patches DOM, this one only keeps state; the bubbletea model calls
// Render on every paint.
type TermView struct {
	tipLabel      string
	label         string
	collapseLabel string

	blocks      []legend.RenderedBlock
	hidden      bool
	collapsed   bool
	collapsible bool
}

// NewTermView creates a terminal view with the default panel labels.
func NewTermView() *TermView {
	return &TermView{
		tipLabel:      legend.DefaultTipLabel,
		label:         legend.DefaultLabel,
		collapseLabel: legend.DefaultCollapseLabel,
	}
}

// Replace implements legend.View.
func (v *TermView) Replace(blocks []legend.RenderedBlock) { v.blocks = blocks }

// SetHidden implements legend.View.
func (v *TermView) SetHidden(hidden bool) { v.hidden = hidden }

// SetCollapsed implements legend.View.
func (v *TermView) SetCollapsed(collapsed bool) { v.collapsed = collapsed }

// SetCollapsible implements legend.View.
func (v *TermView) SetCollapsible(collapsible bool) { v.collapsible = collapsible }

// Render paints the panel's current state.
func (v *TermView) Render() string {
	if v.hidden {
		return hiddenStyle.Render("legend hidden: nothing in view")
	}
	if v.collapsed {
		return panelBorderStyle.Render(panelTitleStyle.Render("[" + v.label + "] " + v.tipLabel))
	}

	var b strings.Builder
	title := v.tipLabel
	if v.collapsible {
		title += "  " + v.collapseLabel
	}
	b.WriteString(panelTitleStyle.Render(title))
	b.WriteString("\n")
	for _, block := range v.blocks {
		if block.Title != "" {
			b.WriteString(blockTitleStyle.Render(block.Title))
			b.WriteString("\n")
		}
		for _, e := range block.Entries {
			b.WriteString("  ")
			b.WriteString(entryGlyph(e))
			b.WriteString(" ")
			b.WriteString(entryLabelStyle.Render(e.Label))
			b.WriteString("\n")
		}
	}
	return panelBorderStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// entryGlyph picks the kind glyph, tinted with the entry's style color
// when it carries one.
func entryGlyph(e legend.RenderedEntry) string {
	glyph := glyphPoint
	switch e.Kind {
	case legend.KindLineString:
		glyph = glyphLine
	case legend.KindPolygon:
		glyph = glyphPolygon
	}
	if st, ok := e.Style.(style.Style); ok {
		if hex := glyphColor(st); hex != "" {
			return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(glyph)
		}
	}
	return glyph
}

func glyphColor(st style.Style) string {
	if st.Fill != "" {
		return st.Fill
	}
	return st.Stroke
}
