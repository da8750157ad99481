//go:build integration

// Integration test against a running server: go run ./cmd/describe
//
// Run: go test -tags=integration ./pkg/describeclient/
package describeclient_test

import (
	"context"
	"os"
	"testing"

	"github.com/joeblew999/plat-describe/pkg/describeclient"
)

func baseURL() string {
	if u := os.Getenv("DESCRIBE_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8086"
}

func TestLiveHealth(t *testing.T) {
	body, err := describeclient.New(baseURL()).Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Fatalf("status=%q, want ok", body.Status)
	}
}

func TestLiveInfo(t *testing.T) {
	body, err := describeclient.New(baseURL()).Info(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Name != "plat-describe" {
		t.Fatalf("name=%q, want plat-describe", body.Name)
	}
}

func TestLiveTiles(t *testing.T) {
	if _, err := describeclient.New(baseURL()).Tiles(context.Background()); err != nil {
		t.Fatal(err)
	}
}
