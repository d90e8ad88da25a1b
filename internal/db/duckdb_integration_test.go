//go:build integration

package db

import (
	"os"
	"path/filepath"
	"testing"
)

// Run with: go test -tags=integration ./internal/db/
func TestOpenCreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	conn, err := Open(Config{DataDir: dir, DBName: "legend"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	if _, err := os.Stat(filepath.Join(dir, "duckdb", "legend.duckdb")); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestEnsureDemoIsIdempotent(t *testing.T) {
	conn, err := Open(Config{DataDir: t.TempDir(), DBName: "legend"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		if err := EnsureDemo(conn); err != nil {
			t.Fatalf("EnsureDemo pass %d: %v", i+1, err)
		}
	}

	var rows int
	if err := conn.QueryRow("SELECT COUNT(*) FROM land_use").Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 6 {
		t.Errorf("rows=%d, want 6 (seeding should not duplicate)", rows)
	}

	var categories int
	if err := conn.QueryRow("SELECT COUNT(DISTINCT category) FROM land_use").Scan(&categories); err != nil {
		t.Fatal(err)
	}
	if categories != 5 {
		t.Errorf("distinct categories=%d, want 5", categories)
	}
}
