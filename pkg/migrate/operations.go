package migrate

import (
	"context"

	"github.com/matzehuels/depshift/pkg/observability"
)

// Operation is one package-level action of the installation phase. The
// plugin only reacts to installs and updates; every other kind is skipped.
type Operation interface {
	operation()
}

// InstallOperation installs a new package.
type InstallOperation struct {
	Package *Package
}

// UpdateOperation replaces an installed package version with another.
type UpdateOperation struct {
	Initial *Package
	Target  *Package
}

// UninstallOperation removes an installed package.
type UninstallOperation struct {
	Package *Package
}

func (InstallOperation) operation()   {}
func (UpdateOperation) operation()    {}
func (UninstallOperation) operation() {}

// operationTarget extracts the package an operation is about to put on
// disk. Operations that do not install anything return nil.
func operationTarget(op Operation) *Package {
	switch o := op.(type) {
	case InstallOperation:
		return o.Package
	case UpdateOperation:
		return o.Target
	default:
		return nil
	}
}

// handleOperation is the install-phase safety net behind pool interception.
// The installation phase runs after pool creation, so a deprecated package
// can still arrive here when its substitution was missed or impossible at
// pool time. The original reference is recorded for post-install cleanup;
// the install itself proceeds.
func (p *Plugin) handleOperation(ctx context.Context, op Operation) {
	target := operationTarget(op)
	if target == nil {
		p.logger.Debug("ignoring operation", "operation", op)
		return
	}

	if !p.rules.IsDeprecated(target.Name) {
		return
	}

	replacement := p.rules.Replace(target.Name)
	if replacement == target.Name {
		p.logger.Debug("no replacement name for deprecated package", "package", target.Name)
		return
	}

	substitute, err := p.repo.FindPackage(ctx, replacement, target.Version)
	if err != nil {
		p.logger.Warn("replacement lookup failed, not recording",
			"package", target.Name, "replacement", replacement, "error", err)
		return
	}
	if substitute == nil {
		p.logger.Debug("replacement not available at installed version",
			"package", target.Name, "replacement", replacement, "version", target.Version)
		return
	}

	p.state.Record(target)
	p.logger.Info("deprecated package installed, scheduled for cleanup",
		"package", target.Name, "version", target.Version, "replacement", replacement)
	observability.Migration().OnInstallRecorded(ctx, target.Name, target.Version)
}
