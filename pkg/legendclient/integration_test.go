//go:build integration

// Integration test against a running server: task run
//
// Run: go test -tags=integration ./pkg/legendclient/
package legendclient_test

import (
	"context"
	"os"
	"testing"

	"github.com/joeblew999/plat-legend/pkg/legendclient"
)

func baseURL() string {
	if u := os.Getenv("LEGEND_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8087"
}

func liveClient() *legendclient.Client {
	return legendclient.New(baseURL())
}

func TestLiveHealth(t *testing.T) {
	_, body, err := liveClient().Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Fatalf("status=%q, want ok", body.Status)
	}
}

func TestLiveInfo(t *testing.T) {
	_, body, err := liveClient().GetInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Name != "plat-legend" {
		t.Fatalf("name=%q, want plat-legend", body.Name)
	}
}

func TestLiveLegend(t *testing.T) {
	_, body, err := liveClient().GetLegend(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if body.Resolution != 100 {
		t.Fatalf("resolution=%v, want 100", body.Resolution)
	}
}

func TestLiveTables(t *testing.T) {
	c := liveClient()
	ctx := context.Background()

	_, info, err := c.GetInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !info.DB {
		t.Skip("server has no database")
	}
	_, body, err := c.ListTables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(body.Tables) == 0 {
		t.Fatal("seeded database should expose tables")
	}
}
