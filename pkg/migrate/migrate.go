package migrate

import (
	"context"
	"fmt"
)

// Package is a resolver-visible package reference. Identity is the name;
// Version carries whatever the host resolver supplied (a concrete version
// for candidates, a constraint for declared requirements). References are
// treated as immutable once observed.
type Package struct {
	Name    string
	Version string
}

func (p *Package) String() string {
	return fmt.Sprintf("%s:%s", p.Name, p.Version)
}

// Pool is the host resolver's mutable candidate pool, exposed to the plugin
// before the pool is frozen for a resolution pass.
type Pool interface {
	// Packages returns the current candidate list.
	Packages() []*Package
	// SetPackages replaces the candidate list.
	SetPackages([]*Package)
	// MarkUnacceptable excludes a candidate from selection without removing
	// it from the pool.
	MarkUnacceptable(*Package)
}

// Repository looks up concrete packages by exact name and version.
type Repository interface {
	// FindPackage returns the package with the given name at exactly the
	// given version, or (nil, nil) when no such package exists. A non-nil
	// error means the lookup itself failed.
	FindPackage(ctx context.Context, name, version string) (*Package, error)
}

// Manifest is the root manifest collaborator the reconciler rewrites.
// Implemented by composer.Manifest.
type Manifest interface {
	// Rename replaces oldName with newName keeping the constraint; false
	// when the manifest does not declare oldName.
	Rename(oldName, newName string) bool
	// Changed reports whether any rename took effect since load.
	Changed() bool
	// Save persists the manifest. Called at most once per run.
	Save() error
}

// InstalledRepository is the on-disk record of installed packages.
// Implemented by composer.InstalledSet.
type InstalledRepository interface {
	// Remove uninstalls the named package from the record and from disk.
	Remove(name string) error
	// Changed reports whether any Remove took effect since load.
	Changed() bool
	// Save persists the record. Called at most once per run.
	Save() error
}

// LockUpdater triggers the host's lock-only resolution pass against a
// working directory. Implemented by composer.Updater.
type LockUpdater interface {
	UpdateLock(ctx context.Context, dir string) error
}

type nopUpdater struct{}

func (nopUpdater) UpdateLock(context.Context, string) error { return nil }
