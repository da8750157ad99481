package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-describe/internal/feature"
	"github.com/joeblew999/plat-describe/internal/geometry"
)

func TestCatalogLoadAndQuery(t *testing.T) {
	c, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	features := []*feature.Feature{
		{ID: "s1", Tag: feature.ParseTag("railway:station"), Name: "Union Station", Geometry: geometry.Project(43.645, -79.38)},
		{ID: "r1", Tag: feature.ParseTag("highway:primary"), Name: "Front Street", Geometry: orb.LineString{{0, 0}, {1, 1}}},
		{ID: "none"},
	}
	if err := c.Load(ctx, features); err != nil {
		t.Fatal(err)
	}

	tables, err := c.Tables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 1 || tables[0] != "features" {
		t.Fatalf("tables=%v, want [features]", tables)
	}

	res, err := c.Query(ctx, "SELECT name, geom_type FROM features WHERE category = ?", "railway")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 1 || res.Rows[0]["name"] != "Union Station" || res.Rows[0]["geom_type"] != "Point" {
		t.Fatalf("rows=%v", res.Rows)
	}

	// reload replaces the table
	if err := c.Load(ctx, features[:1]); err != nil {
		t.Fatal(err)
	}
	res, err = c.Query(ctx, "SELECT count(*) AS n FROM features")
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := res.Rows[0]["n"].(int64); !ok || n != 1 {
		t.Fatalf("count=%v (%T), want 1", res.Rows[0]["n"], res.Rows[0]["n"])
	}

	if _, err := c.Query(ctx, "SELECT * FROM missing"); err == nil {
		t.Fatal("query on a missing table succeeded")
	}
}

func TestCatalogNoFileAccess(t *testing.T) {
	c, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	out := filepath.Join(t.TempDir(), "features.csv")
	if _, err := c.Query(ctx, "COPY (SELECT 42 AS x) TO '"+out+"'"); err == nil {
		t.Fatal("COPY TO succeeded")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("stat %s: err=%v, want not exist", out, err)
	}

	in := filepath.Join(t.TempDir(), "host.csv")
	if err := os.WriteFile(in, []byte("a\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Query(ctx, "SELECT * FROM read_csv('"+in+"')"); err == nil {
		t.Fatal("read_csv on a host file succeeded")
	}

	if _, err := c.Query(ctx, "SET enable_external_access = true"); err == nil {
		t.Fatal("external access re-enabled")
	}
}
