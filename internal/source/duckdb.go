package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/joeblew999/plat-legend/internal/errs"
	"github.com/joeblew999/plat-legend/internal/legend"
	"github.com/joeblew999/plat-legend/internal/style"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DuckDBConfig describes how to derive a legend from a table.
type DuckDBConfig struct {
	Title    string
	Table    string
	Category string
	// Kind applies to every derived entry; empty means point markers.
	Kind legend.GeometryKind
	// Style, when non-nil, is stamped onto every entry. When nil each
	// category gets a deterministic hue from an HSV ramp, so distinct
	// categories stay tellable apart without hand-authored colors.
	Style *style.Style
	// Limit caps the number of distinct categories (default 32).
	Limit int
}

func (c *DuckDBConfig) validate() error {
	if !identRe.MatchString(c.Table) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid table name %q", c.Table)
	}
	if !identRe.MatchString(c.Category) {
		return errs.New(errs.ErrCodeInvalidInput, "invalid category column %q", c.Category)
	}
	if c.Kind == "" {
		c.Kind = legend.KindPoint
	}
	if !c.Kind.Valid() {
		return errs.New(errs.ErrCodeInvalidInput, "invalid geometry kind %q", c.Kind)
	}
	if c.Style != nil {
		if err := c.Style.Validate(); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidStyle, err, "source style")
		}
	}
	if c.Limit <= 0 {
		c.Limit = 32
	}
	return nil
}

// DuckDB derives one legend entry per distinct value of a category column.
// Entries are cached at construction and refreshed on demand, never inside
// the frame loop.
type DuckDB struct {
	db  *sql.DB
	cfg DuckDBConfig

	mu      sync.RWMutex
	entries []legend.Entry
}

// NewDuckDB validates the config and runs the initial category query.
func NewDuckDB(ctx context.Context, db *sql.DB, cfg DuckDBConfig) (*DuckDB, error) {
	if db == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "database handle is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	d := &DuckDB{db: db, cfg: cfg}
	if err := d.Refresh(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Refresh re-queries the distinct categories and rebuilds the entries.
func (d *DuckDB) Refresh(ctx context.Context) error {
	// Identifiers are validated against identRe, so interpolation is safe;
	// database/sql placeholders cannot name tables or columns.
	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY 1 LIMIT %d",
		d.cfg.Category, d.cfg.Table, d.cfg.Category, d.cfg.Limit,
	)
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return errs.Wrap(errs.ErrCodeUnavailable, err, "query categories of %s", d.cfg.Table)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return errs.Wrap(errs.ErrCodeInternal, err, "scan category")
		}
		values = append(values, fmt.Sprint(v))
	}
	if err := rows.Err(); err != nil {
		return errs.Wrap(errs.ErrCodeUnavailable, err, "read categories of %s", d.cfg.Table)
	}

	entries := buildCategoryEntries(values, d.cfg)
	d.mu.Lock()
	d.entries = entries
	d.mu.Unlock()
	return nil
}

// buildCategoryEntries maps distinct values to entries, ramping hues when
// no fixed style is configured.
func buildCategoryEntries(values []string, cfg DuckDBConfig) []legend.Entry {
	if len(values) == 0 {
		return nil
	}
	entries := make([]legend.Entry, len(values))
	for i, v := range values {
		var st style.Style
		if cfg.Style != nil {
			st = *cfg.Style
		} else {
			st = rampStyle(i, len(values))
		}
		entries[i] = legend.Entry{Label: v, Style: st, Kind: cfg.Kind}
	}
	return entries
}

// rampStyle spreads category hues evenly around the color wheel. Same
// index and count always yield the same color, keeping collected content
// stable across refreshes.
func rampStyle(i, n int) style.Style {
	c := colorful.Hsv(float64(i)*360/float64(n), 0.55, 0.85)
	return style.Style{
		Fill:        c.Hex(),
		Stroke:      "#333333",
		StrokeWidth: 1.5,
	}
}

// HasLegends reports whether the last refresh found any categories.
func (d *DuckDB) HasLegends() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries) > 0
}

// Legends returns the cached entries. Callers must not mutate them.
func (d *DuckDB) Legends() []legend.Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.entries
}

// Title returns the display title, empty for none.
func (d *DuckDB) Title() string { return d.cfg.Title }
