package migrate

import (
	"context"
	"time"

	"github.com/matzehuels/depshift/pkg/observability"
)

// reconcile cleans up after a run in which deprecated packages were still
// installed: root requirements are renamed to their replacements (same
// constraint), the deprecated packages are uninstalled from the vendor dir,
// and a lock-only update pass re-resolves the lock file.
//
// The whole pass is skipped when nothing was recorded. When anything was
// recorded the lock update runs even if no manifest entry changed, because
// the pool substitutions of this run are not reflected in the lock file
// either. Uninstalls are best-effort; manifest persistence and the lock
// update propagate their errors.
func (p *Plugin) reconcile(ctx context.Context, ev PostInstallEvent) error {
	if p.state.Empty() {
		p.logger.Debug("no deprecated installs recorded, skipping reconciliation")
		return nil
	}

	for _, rec := range p.state.Recorded() {
		replacement := p.rules.Replace(rec.Name)
		if replacement == rec.Name {
			continue
		}

		if ev.Manifest != nil && ev.Manifest.Rename(rec.Name, replacement) {
			p.logger.Info("rewrote root requirement", "package", rec.Name, "replacement", replacement)
			observability.Migration().OnManifestRewrite(ctx, rec.Name, replacement)
		}

		if ev.Installed != nil {
			err := ev.Installed.Remove(rec.Name)
			if err != nil {
				p.logger.Warn("failed to uninstall deprecated package", "package", rec.Name, "error", err)
			} else {
				p.logger.Info("uninstalled deprecated package", "package", rec.Name, "version", rec.Version)
			}
			observability.Migration().OnUninstall(ctx, rec.Name, err)
		}
	}

	if ev.Manifest != nil && ev.Manifest.Changed() {
		if err := ev.Manifest.Save(); err != nil {
			return err
		}
	}
	if ev.Installed != nil && ev.Installed.Changed() {
		if err := ev.Installed.Save(); err != nil {
			return err
		}
	}

	p.guarded = true
	defer func() { p.guarded = false }()

	p.logger.Info("updating lock file", "dir", ev.Dir)
	start := time.Now()
	err := p.updater.UpdateLock(ctx, ev.Dir)
	observability.Migration().OnLockUpdate(ctx, ev.Dir, time.Since(start), err)
	if err != nil {
		return err
	}

	p.state.Reset()
	return nil
}
