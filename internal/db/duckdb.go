// Package db opens the DuckDB catalog that table-derived legend sources
// query. Each caller owns its handle; tests open throwaway databases in
// temp directories.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// Open creates (if needed) and opens the DuckDB file under
// DataDir/duckdb/<DBName>.duckdb.
func Open(cfg Config) (*sql.DB, error) {
	duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
	if err := os.MkdirAll(duckdbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
	}

	dbPath := filepath.Join(duckdbDir, cfg.DBName+".duckdb")
	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// EnsureDemo creates and fills the demo land_use table the seeded catalog
// derives its categorized legend from. Idempotent: an already populated
// table is left alone.
func EnsureDemo(conn *sql.DB) error {
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS land_use (
		id INTEGER,
		name VARCHAR,
		category VARCHAR
	)`); err != nil {
		return err
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM land_use").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err := conn.Exec(`INSERT INTO land_use (id, name, category) VALUES
		(1, 'Neuburg Forest', 'forest'),
		(2, 'Ilzstadt fields', 'farmland'),
		(3, 'Old town', 'urban'),
		(4, 'Inn backwater', 'water'),
		(5, 'Donau meadows', 'wetland'),
		(6, 'Hacklberg', 'urban')`)
	return err
}
