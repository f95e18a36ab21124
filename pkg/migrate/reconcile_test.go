package migrate

import (
	"context"
	"errors"
	"testing"

	dserrors "github.com/matzehuels/depshift/pkg/errors"
)

func TestReconcileEmptyStateIsFullNoop(t *testing.T) {
	updater := &fakeUpdater{}
	manifest := manifestWith(map[string]string{"zendframework/zend-view": "^2.11"})
	installed := installedWith("zendframework/zend-view")
	p := testPlugin(repoWith(), updater)

	err := p.OnPostInstall(context.Background(), PostInstallEvent{
		Dir:       "/work",
		Manifest:  manifest,
		Installed: installed,
	})
	if err != nil {
		t.Fatalf("OnPostInstall failed: %v", err)
	}

	if manifest.saves != 0 {
		t.Errorf("manifest saved %d times, want 0", manifest.saves)
	}
	if len(installed.removed) != 0 {
		t.Errorf("uninstalled %v, want nothing", installed.removed)
	}
	if len(updater.dirs) != 0 {
		t.Errorf("lock update ran %d times, want 0", len(updater.dirs))
	}
}

func TestReconcileFullPass(t *testing.T) {
	updater := &fakeUpdater{}
	manifest := manifestWith(map[string]string{"zendframework/zend-view": "^2.11"})
	installed := installedWith("zendframework/zend-view")
	p := testPlugin(repoWith(), updater)
	p.State().Record(&Package{Name: "zendframework/zend-view", Version: "2.11.4"})

	err := p.OnPostInstall(context.Background(), PostInstallEvent{
		Dir:       "/work",
		Manifest:  manifest,
		Installed: installed,
	})
	if err != nil {
		t.Fatalf("OnPostInstall failed: %v", err)
	}

	if c, ok := manifest.entries["laminas/laminas-view"]; !ok || c != "^2.11" {
		t.Errorf("manifest entries = %v, want laminas/laminas-view with the old constraint", manifest.entries)
	}
	if manifest.saves != 1 {
		t.Errorf("manifest saved %d times, want 1", manifest.saves)
	}
	if len(installed.removed) != 1 || installed.removed[0] != "zendframework/zend-view" {
		t.Errorf("removed = %v", installed.removed)
	}
	if installed.saves != 1 {
		t.Errorf("installed record saved %d times, want 1", installed.saves)
	}
	if len(updater.dirs) != 1 || updater.dirs[0] != "/work" {
		t.Errorf("lock update dirs = %v, want one pass in /work", updater.dirs)
	}
	if !p.State().Empty() {
		t.Error("state not cleared after successful reconciliation")
	}
}

func TestReconcileLockUpdateRunsWithoutManifestChange(t *testing.T) {
	// A transitive deprecated package: installed, but not a root requirement.
	updater := &fakeUpdater{}
	manifest := manifestWith(map[string]string{"acme/app-lib": "^1.0"})
	installed := installedWith("zendframework/zend-view")
	p := testPlugin(repoWith(), updater)
	p.State().Record(&Package{Name: "zendframework/zend-view", Version: "2.11.4"})

	err := p.OnPostInstall(context.Background(), PostInstallEvent{
		Dir:       "/work",
		Manifest:  manifest,
		Installed: installed,
	})
	if err != nil {
		t.Fatalf("OnPostInstall failed: %v", err)
	}

	if manifest.saves != 0 {
		t.Errorf("manifest saved %d times, want 0", manifest.saves)
	}
	if len(updater.dirs) != 1 {
		t.Errorf("lock update ran %d times, want 1", len(updater.dirs))
	}
}

func TestReconcileUninstallIsBestEffort(t *testing.T) {
	updater := &fakeUpdater{}
	manifest := manifestWith(map[string]string{
		"zendframework/zend-view": "^2.11",
		"zfcampus/zf-console":     "^1.4",
	})
	installed := installedWith("zendframework/zend-view", "zfcampus/zf-console")
	installed.failOn["zendframework/zend-view"] = dserrors.New(dserrors.ErrCodeUninstallFailed, "permission denied")

	p := testPlugin(repoWith(), updater)
	p.State().Record(&Package{Name: "zendframework/zend-view", Version: "2.11.4"})
	p.State().Record(&Package{Name: "zfcampus/zf-console", Version: "1.4.0"})

	err := p.OnPostInstall(context.Background(), PostInstallEvent{
		Dir:       "/work",
		Manifest:  manifest,
		Installed: installed,
	})
	if err != nil {
		t.Fatalf("OnPostInstall failed: %v", err)
	}

	if len(installed.removed) != 1 || installed.removed[0] != "zfcampus/zf-console" {
		t.Errorf("removed = %v, want the second record still attempted", installed.removed)
	}
	if manifest.saves != 1 {
		t.Errorf("manifest saved %d times, want 1 despite uninstall failure", manifest.saves)
	}
	if len(updater.dirs) != 1 {
		t.Errorf("lock update ran %d times, want 1", len(updater.dirs))
	}
}

func TestReconcileManifestSaveErrorIsFatal(t *testing.T) {
	updater := &fakeUpdater{}
	manifest := manifestWith(map[string]string{"zendframework/zend-view": "^2.11"})
	manifest.saveErr = dserrors.New(dserrors.ErrCodeManifestWrite, "disk full")
	p := testPlugin(repoWith(), updater)
	p.State().Record(&Package{Name: "zendframework/zend-view", Version: "2.11.4"})

	err := p.OnPostInstall(context.Background(), PostInstallEvent{
		Dir:      "/work",
		Manifest: manifest,
	})
	if !dserrors.Is(err, dserrors.ErrCodeManifestWrite) {
		t.Fatalf("expected MANIFEST_WRITE_FAILED, got %v", err)
	}
	if len(updater.dirs) != 0 {
		t.Error("lock update ran despite manifest write failure")
	}
}

func TestReconcileLockUpdateErrorPropagates(t *testing.T) {
	updater := &fakeUpdater{err: errors.New("composer exited 1")}
	p := testPlugin(repoWith(), updater)
	p.State().Record(&Package{Name: "zendframework/zend-view", Version: "2.11.4"})

	err := p.OnPostInstall(context.Background(), PostInstallEvent{Dir: "/work"})
	if err == nil {
		t.Fatal("expected lock update error")
	}
	if p.State().Empty() {
		t.Error("state cleared despite failed lock update")
	}
}

func TestReconcileGuardSuppressesReentry(t *testing.T) {
	replacement := &Package{Name: "laminas/laminas-view", Version: "2.12.0"}
	var p *Plugin
	updater := &fakeUpdater{}
	updater.reenter = func(ctx context.Context) {
		// A nested resolution run firing back into the plugin's hooks must
		// be ignored while the lock update is in flight.
		p.OnPackageOperation(ctx, OperationEvent{
			Operation: InstallOperation{Package: &Package{Name: "zendframework/zend-view", Version: "2.12.0"}},
		})
		p.OnPrePoolCreate(ctx, PoolEvent{Pool: NewCandidatePool()})
		if err := p.OnPostInstall(ctx, PostInstallEvent{Dir: "/nested"}); err != nil {
			t.Errorf("guarded OnPostInstall failed: %v", err)
		}
	}

	p = testPlugin(repoWith(replacement), updater)
	p.State().Record(&Package{Name: "zendframework/zend-view", Version: "2.11.4"})

	if err := p.OnPostInstall(context.Background(), PostInstallEvent{Dir: "/work"}); err != nil {
		t.Fatalf("OnPostInstall failed: %v", err)
	}

	if len(updater.dirs) != 1 {
		t.Errorf("lock update ran %d times, want 1 (nested pass suppressed)", len(updater.dirs))
	}
	if !p.State().Empty() {
		t.Error("nested operation was recorded during the lock update")
	}
}
