package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/matzehuels/depshift/pkg/cache"
	"github.com/matzehuels/depshift/pkg/composer"
	"github.com/matzehuels/depshift/pkg/config"
	"github.com/matzehuels/depshift/pkg/migrate"
	"github.com/matzehuels/depshift/pkg/namespace"
	"github.com/matzehuels/depshift/pkg/registry"
	"github.com/matzehuels/depshift/pkg/registry/packagist"
)

// workspace bundles the per-run collaborators built from flags and config:
// the replacement rules, the manifest and installed record of the working
// directory, and the registry client with its metadata cache.
type workspace struct {
	dir       string
	cfg       config.Config
	rules     *namespace.Rules
	manifest  *composer.Manifest
	installed *composer.InstalledSet
	cache     cache.Cache
	registry  *packagist.Client
}

// openWorkspace loads configuration and the working directory's Composer
// state. configPath may be empty to use dir/depshift.toml when present.
func openWorkspace(ctx context.Context, dir, configPath string) (*workspace, error) {
	cfg, err := config.Load(dir, configPath)
	if err != nil {
		return nil, err
	}

	rules := namespace.Default()
	if len(cfg.Rules) > 0 {
		extra := make([]namespace.Rule, len(cfg.Rules))
		for i, r := range cfg.Rules {
			extra[i] = namespace.Rule{Match: r.Match, Replace: r.Replace, Exact: r.Exact}
		}
		rules = rules.WithRules(extra...)
	}

	c, err := openCache(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	manifest, err := composer.LoadManifest(filepath.Join(dir, "composer.json"))
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	vendorDir := cfg.Composer.VendorDir
	if !filepath.IsAbs(vendorDir) {
		vendorDir = filepath.Join(dir, vendorDir)
	}
	installed, err := composer.LoadInstalled(vendorDir)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return &workspace{
		dir:       dir,
		cfg:       cfg,
		rules:     rules,
		manifest:  manifest,
		installed: installed,
		cache:     c,
		registry:  packagist.NewClient(c, cfg.Cache.TTL.Std(), cfg.Registry.URL),
	}, nil
}

func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	case config.BackendNone:
		return cache.NewNullCache(), nil
	default:
		return cache.NewFileCache(cfg.Cache.Dir)
	}
}

// Close releases the cache backend.
func (w *workspace) Close() error {
	return w.cache.Close()
}

// installedPackages converts the installed record into resolver references.
func (w *workspace) installedPackages() []*migrate.Package {
	records := w.installed.Packages()
	out := make([]*migrate.Package, len(records))
	for i, r := range records {
		out[i] = &migrate.Package{Name: r.Name, Version: r.Version}
	}
	return out
}

// repository adapts the Packagist client to the resolver lookup contract:
// a missing package or version is (nil, nil), not an error.
type repository struct {
	client  *packagist.Client
	refresh bool
}

func (r repository) FindPackage(ctx context.Context, name, version string) (*migrate.Package, error) {
	info, err := r.client.FindPackage(ctx, name, version, r.refresh)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &migrate.Package{Name: info.Name, Version: info.Version}, nil
}

// finding is one installed deprecated package and its resolution status.
type finding struct {
	Package     *migrate.Package
	Replacement string // replacement name; equal to Package.Name when none exists
	Resolved    bool   // replacement exists at the installed version
}

// audit scans the installed set for deprecated packages and checks whether
// each replacement exists at the installed version.
func (w *workspace) audit(ctx context.Context, refresh bool) ([]finding, error) {
	repo := repository{client: w.registry, refresh: refresh}

	var findings []finding
	for _, pkg := range w.installedPackages() {
		if !w.rules.IsDeprecated(pkg.Name) {
			continue
		}
		f := finding{Package: pkg, Replacement: w.rules.Replace(pkg.Name)}
		if f.Replacement != pkg.Name {
			sub, err := repo.FindPackage(ctx, f.Replacement, pkg.Version)
			if err != nil {
				return nil, err
			}
			f.Resolved = sub != nil
		}
		findings = append(findings, f)
	}
	return findings, nil
}
