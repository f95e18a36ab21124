package packagist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/depshift/pkg/cache"
	"github.com/matzehuels/depshift/pkg/registry"
)

const viewMetadata = `{
  "packages": {
    "laminas/laminas-view": [
      {"name": "laminas/laminas-view", "version": "2.12.0", "description": "view layer", "license": ["BSD-3-Clause"]},
      {"name": "laminas/laminas-view", "version": "2.11.4", "description": "view layer", "license": ["BSD-3-Clause"]},
      {"name": "laminas/laminas-view", "version": "v2.11.3", "description": "view layer", "license": "BSD-3-Clause"}
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(cache.NewNullCache(), 0, srv.URL)
}

func metadataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/p2/laminas/laminas-view.json":
			fmt.Fprint(w, viewMetadata)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestFindPackage(t *testing.T) {
	c := newTestClient(t, metadataHandler())

	info, err := c.FindPackage(context.Background(), "laminas/laminas-view", "2.11.4", false)
	if err != nil {
		t.Fatalf("FindPackage failed: %v", err)
	}
	if info.Name != "laminas/laminas-view" {
		t.Errorf("Name = %q", info.Name)
	}
	if info.Version != "2.11.4" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.License != "BSD-3-Clause" {
		t.Errorf("License = %q", info.License)
	}
}

func TestFindPackageVersionPrefixTolerance(t *testing.T) {
	c := newTestClient(t, metadataHandler())
	ctx := context.Background()

	// Request has "v" prefix, registry does not.
	if _, err := c.FindPackage(ctx, "laminas/laminas-view", "v2.11.4", false); err != nil {
		t.Errorf("v-prefixed request failed: %v", err)
	}

	// Registry has "v" prefix, request does not.
	info, err := c.FindPackage(ctx, "laminas/laminas-view", "2.11.3", false)
	if err != nil {
		t.Fatalf("plain request against v-prefixed version failed: %v", err)
	}
	if info.Version != "2.11.3" {
		t.Errorf("Version = %q, want normalized %q", info.Version, "2.11.3")
	}
}

func TestFindPackageVersionMissing(t *testing.T) {
	c := newTestClient(t, metadataHandler())

	_, err := c.FindPackage(context.Background(), "laminas/laminas-view", "9.9.9", false)
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindPackageUnknownPackage(t *testing.T) {
	c := newTestClient(t, metadataHandler())

	_, err := c.FindPackage(context.Background(), "laminas/laminas-nope", "1.0.0", false)
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindPackageNormalizesName(t *testing.T) {
	c := newTestClient(t, metadataHandler())

	if _, err := c.FindPackage(context.Background(), "  Laminas/Laminas-View ", "2.12.0", false); err != nil {
		t.Errorf("name normalization failed: %v", err)
	}
}

func TestHasPackage(t *testing.T) {
	c := newTestClient(t, metadataHandler())
	ctx := context.Background()

	ok, err := c.HasPackage(ctx, "laminas/laminas-view", false)
	if err != nil || !ok {
		t.Errorf("HasPackage = %v, %v; want true, nil", ok, err)
	}

	ok, err = c.HasPackage(ctx, "laminas/laminas-nope", false)
	if err != nil || ok {
		t.Errorf("HasPackage = %v, %v; want false, nil", ok, err)
	}
}

func TestFindPackageUsesCache(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, viewMetadata)
	}))
	defer srv.Close()

	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	c := NewClient(fileCache, time.Hour, srv.URL)
	ctx := context.Background()

	for _, version := range []string{"2.12.0", "2.11.4"} {
		if _, err := c.FindPackage(ctx, "laminas/laminas-view", version, false); err != nil {
			t.Fatalf("FindPackage(%s) failed: %v", version, err)
		}
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (second lookup should hit cache)", requests)
	}
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct{ in, want string }{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{" v1.2.3 ", "1.2.3"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeVersion(tt.in); got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
