// Package packagist implements the registry lookup against the Packagist
// p2 metadata API.
//
// The lookup the migration core needs is narrow: does a package exist at an
// exact version. Version metadata for a package is fetched once per run
// (cached across runs via the configured cache backend) and matched locally.
package packagist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/depshift/pkg/cache"
	"github.com/matzehuels/depshift/pkg/registry"
)

// DefaultBaseURL is the public Packagist metadata endpoint.
const DefaultBaseURL = "https://repo.packagist.org"

// PackageInfo describes one published version of a Composer package.
//
// Names follow Composer conventions (vendor/package, lowercase). Version is
// the registry's normalized tag without a leading "v".
type PackageInfo struct {
	Name        string // package name (e.g., "laminas/laminas-view")
	Version     string // version without "v" prefix (e.g., "2.11.4")
	Description string // package description (may be empty)
	License     string // first license identifier (may be empty)
	Homepage    string // homepage URL (may be empty)
}

// Client provides access to the Packagist package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*registry.Client
	baseURL string
}

// NewClient creates a Packagist client backed by the given metadata cache.
// Responses are cached for ttl; pass a [cache.NullCache] to disable caching.
// baseURL overrides the public endpoint (used for mirrors and tests); an
// empty string selects [DefaultBaseURL].
func NewClient(c cache.Cache, ttl time.Duration, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  registry.NewClient(c, ttl, nil),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FindPackage looks up pkg at the exact given version.
//
// The pkg parameter must be in "vendor/package" format; it is normalized to
// lowercase. Version matching tolerates a leading "v" on either side, so
// "v2.11.4" finds "2.11.4" and vice versa.
//
// Returns:
//   - PackageInfo for the matching version on success
//   - [registry.ErrNotFound] if the package or the exact version doesn't exist
//   - [registry.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
func (c *Client) FindPackage(ctx context.Context, pkg, version string, refresh bool) (*PackageInfo, error) {
	versions, err := c.fetchVersions(ctx, pkg, refresh)
	if err != nil {
		return nil, err
	}

	want := normalizeVersion(version)
	for _, v := range versions {
		if normalizeVersion(v.Version) == want {
			info := v.toInfo()
			return &info, nil
		}
	}
	return nil, fmt.Errorf("%w: %s version %s", registry.ErrNotFound, pkg, version)
}

// HasPackage reports whether pkg exists in the registry at any version.
func (c *Client) HasPackage(ctx context.Context, pkg string, refresh bool) (bool, error) {
	_, err := c.fetchVersions(ctx, pkg, refresh)
	if errors.Is(err, registry.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) fetchVersions(ctx context.Context, pkg string, refresh bool) ([]p2Version, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))

	var versions []p2Version
	err := c.Cached(ctx, "packagist:"+pkg, refresh, &versions, func() error {
		var data p2Response
		if err := c.Get(ctx, fmt.Sprintf("%s/p2/%s.json", c.baseURL, pkg), &data); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				return fmt.Errorf("%w: packagist package %s", err, pkg)
			}
			return err
		}
		list, ok := data.Packages[pkg]
		if !ok || len(list) == 0 {
			return fmt.Errorf("%w: packagist package %s", registry.ErrNotFound, pkg)
		}
		versions = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// normalizeVersion strips a leading "v" so tag-style and plain versions compare equal.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

type p2Response struct {
	Packages map[string][]p2Version `json:"packages"`
}

type p2Version struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Homepage    string   `json:"homepage"`
	License     []string `json:"license"`
}

func (v p2Version) toInfo() PackageInfo {
	var license string
	if len(v.License) > 0 {
		license = v.License[0]
	}
	return PackageInfo{
		Name:        v.Name,
		Version:     normalizeVersion(v.Version),
		Description: v.Description,
		Homepage:    v.Homepage,
		License:     license,
	}
}

// UnmarshalJSON tolerates registries that publish license as a bare string
// instead of a list.
func (v *p2Version) UnmarshalJSON(b []byte) error {
	type raw struct {
		Name        string          `json:"name"`
		Version     string          `json:"version"`
		Description string          `json:"description"`
		Homepage    string          `json:"homepage"`
		License     json.RawMessage `json:"license"`
	}

	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}

	v.Name = r.Name
	v.Version = r.Version
	v.Description = r.Description
	v.Homepage = r.Homepage

	if len(r.License) > 0 && string(r.License) != "null" {
		if err := json.Unmarshal(r.License, &v.License); err != nil {
			var single string
			if json.Unmarshal(r.License, &single) == nil && single != "" {
				v.License = []string{single}
			}
		}
	}
	return nil
}
