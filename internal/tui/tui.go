// Package tui drives a legend panel interactively in the terminal: a
// catalog-backed viewport simulator where keys stand in for panning,
// zooming and layer toggles.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/joeblew999/plat-legend/internal/db"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/preview"
	"github.com/joeblew999/plat-legend/internal/service"
	"github.com/joeblew999/plat-legend/internal/viewport"
)

// Palette
var (
	colorCyan  = lipgloss.Color("36")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	helpStyle         = lipgloss.NewStyle().Foreground(colorDim)
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// Model holds the engine, the panel observing it, and the catalog the
// layer list is drawn from. The panel renders synchronously inside
// Update, so no locking is needed beyond what the engine does itself.
type Model struct {
	engine *viewport.Engine
	panel  *legend.Panel
	view   *TermView
	layers []service.LayerConfig
	cursor int
}

// NewModel wires an engine and panel over the catalog and renders the
// first frame. Sources that fail to build stay in the list; their
// entries simply contribute nothing to the legend.
func NewModel(ctx context.Context, store *service.LayerService, builder *service.SourceBuilder) (Model, error) {
	view := NewTermView()
	panel, err := legend.New(view, preview.NewRenderer(),
		legend.WithCollapsed(false),
		legend.WithLogger(log.New(io.Discard)),
	)
	if err != nil {
		return Model{}, err
	}

	configs := store.List()
	layers := make([]viewport.Layer, 0, len(configs))
	for _, cfg := range configs {
		src, err := builder.Build(ctx, cfg)
		if err != nil {
			src = nil
		}
		layers = append(layers, service.ViewportLayer(cfg, src))
	}

	engine := viewport.NewEngine(100)
	if err := engine.SetLayers(layers); err != nil {
		return Model{}, err
	}
	engine.Register(panel)
	engine.Render()

	return Model{engine: engine, panel: panel, view: view, layers: configs}, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.layers)-1 {
				m.cursor++
			}
		case " ", "enter":
			if len(m.layers) > 0 {
				l := &m.layers[m.cursor]
				l.Visible = !l.Visible
				m.engine.SetLayerVisible(l.ID, l.Visible)
				m.engine.Render()
			}
		case "+", "=":
			m.engine.SetResolution(m.engine.Resolution() / 2)
			m.engine.Render()
		case "-", "_":
			m.engine.SetResolution(m.engine.Resolution() * 2)
			m.engine.Render()
		case "c":
			m.panel.ToggleCollapsed()
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("plat-legend viewport simulator"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"resolution %.0f   up/down move  space toggle layer  +/- zoom  c collapse  q quit",
		m.engine.Resolution())))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderLayerList(), "  ", m.view.Render()))
	b.WriteString("\n")
	return b.String()
}

// renderLayerList paints the catalog with cursor and visibility marks.
// Layers outside the current resolution window render dimmed.
func (m Model) renderLayerList() string {
	if len(m.layers) == 0 {
		return listDimStyle.Render("catalog is empty")
	}
	resolution := m.engine.Resolution()
	var b strings.Builder
	for i, l := range m.layers {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		check := "[ ]"
		if l.Visible {
			check = "[x]"
		}
		st := listNormalStyle
		if i == m.cursor {
			st = listSelectedStyle
		}
		if !service.ViewportLayer(l, nil).InView(resolution) {
			st = listDimStyle
		}
		b.WriteString(st.Render(fmt.Sprintf("%s%s %s", cursor, check, l.Name)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Run loads the catalog from dataDir, seeding the demo set when it is
// empty, and starts the simulator.
func Run(dataDir string) error {
	ctx := context.Background()
	sources := service.NewSourceService(dataDir)
	store := service.NewLayerService(dataDir)

	conn, err := db.Open(db.Config{DataDir: dataDir, DBName: "legend"})
	if err != nil {
		conn = nil
	}
	if conn != nil {
		defer conn.Close()
		_ = db.EnsureDemo(conn)
	}

	if store.Empty() {
		if err := sources.SeedDemo(); err != nil {
			return err
		}
		if err := store.SeedDemo(); err != nil {
			return err
		}
	}

	m, err := NewModel(ctx, store, service.NewSourceBuilder(sources, conn))
	if err != nil {
		return err
	}
	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}
