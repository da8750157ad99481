// Package catalog mirrors the loaded features into an in-memory DuckDB
// database for ad-hoc SQL inspection. Nothing is written to disk; the table
// is rebuilt on every reload.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/joeblew999/plat-describe/internal/feature"
)

const schema = `CREATE OR REPLACE TABLE features (
	id          VARCHAR,
	category    VARCHAR,
	subcategory VARCHAR,
	name        VARCHAR,
	geom_type   VARCHAR,
	lat         DOUBLE,
	lon         DOUBLE,
	wheelchair  VARCHAR,
	tactile     BOOLEAN,
	audio       BOOLEAN,
	tile        VARCHAR,
	geojson     VARCHAR
)`

// Catalog is an in-memory DuckDB holding one features table.
type Catalog struct {
	db *sql.DB
	mu sync.Mutex // serialises reloads
}

// dsn opens an in-memory database that cannot touch the file system
// (no COPY TO, read_csv, ATTACH or extension loading) and whose settings
// cannot be changed back by a query.
const dsn = "?enable_external_access=false&lock_configuration=true"

// Open creates an empty in-memory catalog.
func Open() (*Catalog, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create features table: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Load replaces the features table with features.
func (c *Catalog) Load(ctx context.Context, features []*feature.Feature) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create features table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO features VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		lat, lon, _ := f.Center()
		geo, err := json.Marshal(f.GeoJSON().Geometry)
		if err != nil {
			return fmt.Errorf("feature %s: %w", f.ID, err)
		}
		wheelchair := string(f.Access.Wheelchair)
		if wheelchair == "" {
			wheelchair = string(feature.WheelchairUnknown)
		}
		if _, err := stmt.ExecContext(ctx,
			f.ID, f.Tag.Category, f.Tag.Subcategory, f.Name, f.Geometry.GeoJSONType(),
			lat, lon, wheelchair, f.Access.TactilePaving, f.Access.AudioSignals,
			f.Tile.String(), string(geo),
		); err != nil {
			return fmt.Errorf("insert %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Tables returns the table names.
func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			tables = append(tables, name)
		}
	}
	return tables, rows.Err()
}

// Result is the outcome of a SQL query.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Query runs a SQL query and collects every row.
func (c *Catalog) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	res := &Result{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			continue
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		res.Rows = append(res.Rows, row)
	}
	return res, rows.Err()
}
