package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/preview"
)

type nopView struct{}

func (nopView) Replace([]legend.RenderedBlock) {}
func (nopView) SetHidden(bool)                 {}
func (nopView) SetCollapsed(bool)              {}
func (nopView) SetCollapsible(bool)            {}

func testRegistry(t *testing.T) (*Registry, *LayerService) {
	t.Helper()
	dir := t.TempDir()
	store := NewLayerService(dir)
	if err := store.SeedDemo(); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	reg, err := NewRegistry(RegistryConfig{
		Store:    store,
		Builder:  NewSourceBuilder(NewSourceService(dir), nil),
		Renderer: preview.NewRenderer(),
		NewView:  func(string) legend.View { return nopView{} },
		Logger:   log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg, store
}

func TestNewRegistryValidation(t *testing.T) {
	_, err := NewRegistry(RegistryConfig{})
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("NewRegistry({}) error = %v, want invalid config", err)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	reg, _ := testRegistry(t)

	sess, err := reg.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session has no ID")
	}
	if reg.Count() != 1 {
		t.Errorf("Count = %d, want 1", reg.Count())
	}

	got, err := reg.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != sess {
		t.Error("Get returned a different session")
	}
	if _, err := reg.Get("nope"); !errs.Is(err, errs.ErrCodeSessionNotFound) {
		t.Errorf("Get(nope) error = %v, want session not found", err)
	}

	reg.Close(sess.ID)
	if reg.Count() != 0 {
		t.Errorf("Count after Close = %d, want 0", reg.Count())
	}
	if _, err := reg.Get(sess.ID); err == nil {
		t.Error("Get succeeded after Close")
	}
	reg.Close(sess.ID) // unknown ID is a no-op
}

// The demo catalog at the default resolution yields two blocks: the
// hydrology rows and the region mask. The mask's collapse veto pins the
// panel open, and the missing historic_sites file leaves that layer in
// the stack without a block.
func TestRegistryCreateInitialFrame(t *testing.T) {
	reg, _ := testRegistry(t)

	sess, err := reg.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := sess.State(); got != legend.StateExpanded {
		t.Errorf("State = %v, want %v", got, legend.StateExpanded)
	}
	cs := sess.CollapseState()
	if cs.Collapsible || cs.Collapsed {
		t.Errorf("CollapseState = %+v, want pinned open", cs)
	}

	content := sess.Content()
	if len(content.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %+v", len(content.Blocks), content.Blocks)
	}
	if content.Blocks[0].Title != "Hydrology" || content.Blocks[1].Title != "Region mask" {
		t.Errorf("block titles = %q, %q", content.Blocks[0].Title, content.Blocks[1].Title)
	}
	if len(content.Blocks[0].Entries) != 3 {
		t.Errorf("hydrology entries = %d, want 3", len(content.Blocks[0].Entries))
	}
}

func TestSessionViewTransitions(t *testing.T) {
	reg, _ := testRegistry(t)
	sess, err := reg.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Zooming past the mask's resolution ceiling drops its block and
	// releases the collapse veto; the panel stays expanded.
	sess.ApplyView(600, nil)
	if got := len(sess.Content().Blocks); got != 1 {
		t.Fatalf("blocks at resolution 600 = %d, want 1", got)
	}
	cs := sess.CollapseState()
	if !cs.Collapsible || cs.Collapsed {
		t.Errorf("CollapseState = %+v, want collapsible and expanded", cs)
	}
	if got := sess.State(); got != legend.StateExpanded {
		t.Errorf("State = %v, want %v", got, legend.StateExpanded)
	}

	sess.Toggle()
	if got := sess.State(); got != legend.StateCollapsed {
		t.Errorf("State after Toggle = %v, want %v", got, legend.StateCollapsed)
	}

	// Hiding the last contributing layer empties the legend.
	sess.ApplyView(0, map[string]bool{"hydrology": false})
	if got := sess.State(); got != legend.StateHidden {
		t.Errorf("State with nothing in view = %v, want %v", got, legend.StateHidden)
	}
	if !sess.Content().Empty() {
		t.Error("content not empty while hidden")
	}

	// The collapse choice survives the hidden interlude.
	sess.ApplyView(0, map[string]bool{"hydrology": true})
	if got := sess.State(); got != legend.StateCollapsed {
		t.Errorf("State after layer returns = %v, want %v", got, legend.StateCollapsed)
	}
}

func TestRegistryResync(t *testing.T) {
	reg, store := testRegistry(t)
	sess, err := reg.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := len(sess.Content().Blocks); got != 2 {
		t.Fatalf("initial blocks = %d, want 2", got)
	}

	if _, err := store.Create(LayerConfig{
		Name:     "Cadastre",
		GeomType: GeomPolygon,
		Visible:  true,
		Legend:   []LegendRow{{Label: "parcel"}},
	}); err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	reg.resyncAll(context.Background())

	content := sess.Content()
	if got := len(content.Blocks); got != 3 {
		t.Fatalf("blocks after resync = %d, want 3", got)
	}
	if content.Blocks[2].Title != "Cadastre" {
		t.Errorf("new block title = %q", content.Blocks[2].Title)
	}
}

func TestRegistrySweep(t *testing.T) {
	reg, _ := testRegistry(t)
	sess, err := reg.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sess.mu.Lock()
	sess.lastSeen = time.Now().Add(-time.Hour)
	sess.mu.Unlock()

	reg.sweep(time.Now())
	if reg.Count() != 0 {
		t.Errorf("Count after sweep = %d, want 0", reg.Count())
	}
}
