package migrate

import (
	"context"
	"testing"
)

func TestOperationRecordsInstall(t *testing.T) {
	target := &Package{Name: "zendframework/zend-view", Version: "2.11.4"}
	replacement := &Package{Name: "laminas/laminas-view", Version: "2.11.4"}
	p := testPlugin(repoWith(replacement), nil)

	p.OnPackageOperation(context.Background(), OperationEvent{
		Operation: InstallOperation{Package: target},
	})

	recorded := p.State().Recorded()
	if len(recorded) != 1 {
		t.Fatalf("recorded %d packages, want 1", len(recorded))
	}
	if recorded[0] != target {
		t.Errorf("recorded %v, want the original reference", recorded[0])
	}
}

func TestOperationRecordsUpdateTarget(t *testing.T) {
	initial := &Package{Name: "zendframework/zend-view", Version: "2.10.0"}
	target := &Package{Name: "zendframework/zend-view", Version: "2.11.4"}
	replacement := &Package{Name: "laminas/laminas-view", Version: "2.11.4"}
	p := testPlugin(repoWith(replacement), nil)

	p.OnPackageOperation(context.Background(), OperationEvent{
		Operation: UpdateOperation{Initial: initial, Target: target},
	})

	recorded := p.State().Recorded()
	if len(recorded) != 1 || recorded[0] != target {
		t.Fatalf("recorded = %v, want the update target", recorded)
	}
}

func TestOperationIgnoresUninstall(t *testing.T) {
	pkg := &Package{Name: "zendframework/zend-view", Version: "2.11.4"}
	replacement := &Package{Name: "laminas/laminas-view", Version: "2.11.4"}
	repo := repoWith(replacement)
	p := testPlugin(repo, nil)

	p.OnPackageOperation(context.Background(), OperationEvent{
		Operation: UninstallOperation{Package: pkg},
	})

	if !p.State().Empty() {
		t.Error("uninstall operation was recorded")
	}
	if repo.calls != 0 {
		t.Errorf("repository queried %d times for an uninstall", repo.calls)
	}
}

func TestOperationSkipsNonDeprecated(t *testing.T) {
	pkg := &Package{Name: "laminas/laminas-view", Version: "2.11.4"}
	repo := repoWith()
	p := testPlugin(repo, nil)

	p.OnPackageOperation(context.Background(), OperationEvent{
		Operation: InstallOperation{Package: pkg},
	})

	if !p.State().Empty() {
		t.Error("replacement-namespace install was recorded")
	}
	if repo.calls != 0 {
		t.Errorf("repository queried %d times for a non-deprecated package", repo.calls)
	}
}

func TestOperationNoReplacementAtVersion(t *testing.T) {
	target := &Package{Name: "zendframework/zend-view", Version: "9.9.9"}
	p := testPlugin(repoWith(), nil)

	p.OnPackageOperation(context.Background(), OperationEvent{
		Operation: InstallOperation{Package: target},
	})

	if !p.State().Empty() {
		t.Error("install recorded despite missing replacement version")
	}
}

func TestOperationsKeepArrivalOrderWithoutDedup(t *testing.T) {
	first := &Package{Name: "zfcampus/zf-console", Version: "1.4.0"}
	second := &Package{Name: "zendframework/zend-view", Version: "2.11.4"}
	third := &Package{Name: "zfcampus/zf-console", Version: "1.4.0"}
	p := testPlugin(repoWith(
		&Package{Name: "laminas-api-tools/api-tools-console", Version: "1.4.0"},
		&Package{Name: "laminas/laminas-view", Version: "2.11.4"},
	), nil)

	ctx := context.Background()
	for _, pkg := range []*Package{first, second, third} {
		p.OnPackageOperation(ctx, OperationEvent{Operation: InstallOperation{Package: pkg}})
	}

	recorded := p.State().Recorded()
	if len(recorded) != 3 {
		t.Fatalf("recorded %d packages, want 3 (no de-duplication)", len(recorded))
	}
	if recorded[0] != first || recorded[1] != second || recorded[2] != third {
		t.Errorf("arrival order not preserved: %v", recorded)
	}
}
