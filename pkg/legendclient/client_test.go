package legendclient_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/joeblew999/plat-legend/internal/server"
	"github.com/joeblew999/plat-legend/pkg/legendclient"
)

// newClient boots a full server on a throwaway data directory and points
// a client at it. The web directory is absent, so only the REST surface
// is registered; that is all the client speaks.
func newClient(t *testing.T) *legendclient.Client {
	t.Helper()
	dir := t.TempDir()
	srv := server.New(server.Config{
		Host:    "127.0.0.1",
		Port:    "0",
		DataDir: dir,
		WebDir:  filepath.Join(dir, "web"),
		Logger:  log.New(io.Discard),
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return legendclient.New(ts.URL)
}

func TestHealth(t *testing.T) {
	c := newClient(t)
	resp, body, err := c.Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Fatalf("status=%q, want ok", body.Status)
	}
	if resp.Header.Get("Link") == "" {
		t.Error("health response should carry Link relations")
	}
}

func TestGetInfo(t *testing.T) {
	c := newClient(t)
	_, body, err := c.GetInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Name != "plat-legend" {
		t.Fatalf("name=%q, want plat-legend", body.Name)
	}
	if len(body.Features) == 0 {
		t.Error("feature list should not be empty")
	}
}

func TestListSeededLayers(t *testing.T) {
	c := newClient(t)
	_, layers, err := c.ListLayers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(layers) == 0 {
		t.Fatal("fresh server should seed demo layers")
	}
}

func TestLayerCRUD(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, created, err := c.CreateLayer(ctx, legendclient.LayerConfig{
		Name:     "Cycle routes",
		GeomType: "line",
		Visible:  true,
		Opacity:  0.8,
		Legend: []legendclient.LegendRow{
			{Label: "national", Style: &legendclient.Style{Stroke: "#dd2222", StrokeWidth: 3}},
			{Label: "regional", Style: &legendclient.Style{Stroke: "#dd8822", StrokeWidth: 2}},
		},
	})
	if err != nil {
		t.Fatal("create:", err)
	}
	if created.ID == "" {
		t.Fatal("create should assign an ID")
	}

	_, layer, err := c.GetLayer(ctx, created.ID)
	if err != nil {
		t.Fatal("get:", err)
	}
	if layer.Name != "Cycle routes" {
		t.Fatalf("name=%q, want Cycle routes", layer.Name)
	}
	if len(layer.Legend) != 2 {
		t.Fatalf("legend rows=%d, want 2", len(layer.Legend))
	}

	layer.Name = "Cycling network"
	_, updated, err := c.UpdateLayer(ctx, created.ID, *layer)
	if err != nil {
		t.Fatal("update:", err)
	}
	if updated.Name != "Cycling network" {
		t.Fatalf("updated name=%q", updated.Name)
	}

	if _, _, err := c.MoveLayer(ctx, created.ID, 0); err != nil {
		t.Fatal("move:", err)
	}
	_, layers, err := c.ListLayers(ctx)
	if err != nil {
		t.Fatal("list:", err)
	}
	if layers[0].ID != created.ID {
		t.Fatalf("layer should be at the bottom of the stack, got %q", layers[0].ID)
	}

	if _, _, err := c.DeleteLayer(ctx, created.ID); err != nil {
		t.Fatal("delete:", err)
	}
	_, _, err = c.GetLayer(ctx, created.ID)
	var apiErr *legendclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("get after delete: err=%v, want APIError", err)
	}
	if apiErr.Status != 404 {
		t.Fatalf("status=%d, want 404", apiErr.Status)
	}
}

func TestGetLegend(t *testing.T) {
	c := newClient(t)
	_, body, err := c.GetLegend(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if body.Resolution != 100 {
		t.Fatalf("resolution=%v, want 100", body.Resolution)
	}
	var titles []string
	for _, b := range body.Blocks {
		titles = append(titles, b.Title)
	}
	found := false
	for _, title := range titles {
		if title == "Hydrology" {
			found = true
		}
	}
	if !found {
		t.Fatalf("seeded legend should contain Hydrology, got %v", titles)
	}
}

func TestLayerPreviewPNG(t *testing.T) {
	c := newClient(t)
	resp, data, err := c.LayerPreview(context.Background(), "hydrology", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/png" {
		t.Fatalf("content type=%q, want image/png", got)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("body is not a PNG, starts with %q", data[:min(8, len(data))])
	}
}

func TestListPreviewsPagination(t *testing.T) {
	c := newClient(t)
	_, page, err := c.ListPreviews(context.Background(), 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if page.Limit != 5 {
		t.Fatalf("limit=%d, want 5", page.Limit)
	}
	if page.Total != 0 || len(page.Data) != 0 {
		t.Fatalf("fresh server should have no exported previews, got total=%d", page.Total)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	c := newClient(t)
	_, _, err := c.GetLayer(context.Background(), "no-such-layer")
	if err == nil {
		t.Fatal("expected an error")
	}
	var apiErr *legendclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err=%T, want *APIError", err)
	}
	if apiErr.Error() == "" {
		t.Error("APIError should render a message")
	}
}
