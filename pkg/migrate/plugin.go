package migrate

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depshift/pkg/namespace"
)

// Plugin is the dependency-substitution plugin for one resolution/install
// run. Construct one per run with NewPlugin and wire its lifecycle callbacks
// to the host's events.
//
// The host invokes the callbacks synchronously, so Plugin does no locking.
type Plugin struct {
	rules   *namespace.Rules
	repo    Repository
	updater LockUpdater
	state   *RunState
	logger  *log.Logger

	// guarded suppresses handler re-entry while the nested lock-only
	// update runs, so that run cannot loop back into this plugin.
	guarded bool
}

// NewPlugin creates a plugin for a single run.
// If rules is nil, namespace.Default() is used. If updater is nil, the lock
// update pass is skipped. If logger is nil, log.Default() is used.
func NewPlugin(rules *namespace.Rules, repo Repository, updater LockUpdater, logger *log.Logger) *Plugin {
	if rules == nil {
		rules = namespace.Default()
	}
	if updater == nil {
		updater = nopUpdater{}
	}
	if logger == nil {
		logger = log.Default()
	}
	state := NewRunState()
	return &Plugin{
		rules:   rules,
		repo:    repo,
		updater: updater,
		state:   state,
		logger:  logger.With("run", state.ID()),
	}
}

// State exposes the per-run record of deprecated installs.
func (p *Plugin) State() *RunState { return p.state }

// PoolEvent carries the resolver state for a pre-pool-creation callback.
type PoolEvent struct {
	Pool      Pool
	Installed []*Package
}

// OperationEvent carries one install/update/uninstall operation.
type OperationEvent struct {
	Operation Operation
}

// PostInstallEvent carries the on-disk state a reconciliation pass needs.
// Dir is the working directory containing the manifest and lock file.
// Manifest and Installed may be nil when the corresponding file is absent.
type PostInstallEvent struct {
	Dir       string
	Manifest  Manifest
	Installed InstalledRepository
}

// OnPrePoolCreate substitutes replacement candidates into the pool before
// the resolver freezes it. Lookup failures fail open: the original
// candidate stays selectable.
func (p *Plugin) OnPrePoolCreate(ctx context.Context, ev PoolEvent) {
	if p.guarded {
		return
	}
	p.interceptPool(ctx, ev.Pool, ev.Installed)
}

// OnPackageOperation records deprecated packages that are still being
// installed or updated after pool interception. It never blocks the
// operation itself.
func (p *Plugin) OnPackageOperation(ctx context.Context, ev OperationEvent) {
	if p.guarded {
		return
	}
	p.handleOperation(ctx, ev.Operation)
}

// OnPostInstall reconciles manifest, vendor, and lock state once all
// operations of the run completed. A no-op when nothing was recorded.
func (p *Plugin) OnPostInstall(ctx context.Context, ev PostInstallEvent) error {
	if p.guarded {
		return nil
	}
	return p.reconcile(ctx, ev)
}
