package composer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/depshift/pkg/errors"
)

const modernInstalled = `{
  "packages": [
    {"name": "zendframework/zend-view", "version": "2.11.4", "type": "library", "extra": {"keep": true}},
    {"name": "laminas/laminas-stdlib", "version": "3.2.1", "type": "library"}
  ],
  "dev": true,
  "dev-package-names": ["zendframework/zend-view"]
}
`

const legacyInstalled = `[
  {"name": "zendframework/zend-view", "version": "2.11.4"},
  {"name": "laminas/laminas-stdlib", "version": "3.2.1"}
]
`

func writeInstalled(t *testing.T, content string) string {
	t.Helper()
	vendorDir := t.TempDir()
	composerDir := filepath.Join(vendorDir, "composer")
	if err := os.MkdirAll(composerDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(composerDir, "installed.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return vendorDir
}

func TestLoadInstalledModern(t *testing.T) {
	set, err := LoadInstalled(writeInstalled(t, modernInstalled))
	if err != nil {
		t.Fatalf("LoadInstalled failed: %v", err)
	}

	pkgs := set.Packages()
	if len(pkgs) != 2 {
		t.Fatalf("len(Packages) = %d, want 2", len(pkgs))
	}
	if pkgs[0].Name != "zendframework/zend-view" || pkgs[0].Version != "2.11.4" {
		t.Errorf("Packages[0] = %s %s", pkgs[0].Name, pkgs[0].Version)
	}
	if !set.Has("laminas/laminas-stdlib") {
		t.Error("Has = false for an installed package")
	}
	if set.Has("vendor/missing") {
		t.Error("Has = true for a missing package")
	}
}

func TestLoadInstalledLegacy(t *testing.T) {
	set, err := LoadInstalled(writeInstalled(t, legacyInstalled))
	if err != nil {
		t.Fatalf("LoadInstalled failed: %v", err)
	}
	if len(set.Packages()) != 2 {
		t.Fatalf("len(Packages) = %d, want 2", len(set.Packages()))
	}
}

func TestLoadInstalledMissing(t *testing.T) {
	_, err := LoadInstalled(t.TempDir())
	if !errors.Is(err, errors.ErrCodeInstalledNotFound) {
		t.Errorf("expected INSTALLED_NOT_FOUND, got %v", err)
	}
}

func TestRemoveDeletesRecordAndVendorDir(t *testing.T) {
	vendorDir := writeInstalled(t, modernInstalled)
	pkgDir := filepath.Join(vendorDir, "zendframework", "zend-view")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "composer.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	set, err := LoadInstalled(vendorDir)
	if err != nil {
		t.Fatalf("LoadInstalled failed: %v", err)
	}
	if err := set.Remove("zendframework/zend-view"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if set.Has("zendframework/zend-view") {
		t.Error("package still recorded after Remove")
	}
	if _, err := os.Stat(pkgDir); !os.IsNotExist(err) {
		t.Error("vendor directory still exists after Remove")
	}
	if !set.Changed() {
		t.Error("Changed = false after Remove")
	}
}

func TestRemoveUnknownPackage(t *testing.T) {
	set, err := LoadInstalled(writeInstalled(t, modernInstalled))
	if err != nil {
		t.Fatalf("LoadInstalled failed: %v", err)
	}
	err = set.Remove("vendor/missing")
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("expected PACKAGE_NOT_FOUND, got %v", err)
	}
}

func TestRemoveRejectsUnsafeNames(t *testing.T) {
	set, err := LoadInstalled(writeInstalled(t, `{"packages": [{"name": "../../etc", "version": "1.0.0"}]}`))
	if err != nil {
		t.Fatalf("LoadInstalled failed: %v", err)
	}
	if err := set.Remove("../../etc"); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("expected INVALID_PATH, got %v", err)
	}
}

func TestSaveModernRoundTrip(t *testing.T) {
	vendorDir := writeInstalled(t, modernInstalled)
	set, err := LoadInstalled(vendorDir)
	if err != nil {
		t.Fatalf("LoadInstalled failed: %v", err)
	}

	if err := set.Remove("zendframework/zend-view"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := set.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(set.Path())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var out struct {
		Packages []struct {
			Name  string         `json:"name"`
			Extra map[string]any `json:"extra"`
		} `json:"packages"`
		Dev             *bool    `json:"dev"`
		DevPackageNames []string `json:"dev-package-names"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}

	if len(out.Packages) != 1 || out.Packages[0].Name != "laminas/laminas-stdlib" {
		t.Errorf("saved packages = %+v", out.Packages)
	}
	if out.Dev == nil || !*out.Dev {
		t.Error("unrelated \"dev\" key lost on save")
	}
	if len(out.DevPackageNames) != 0 {
		t.Errorf("dev-package-names = %v, want removed entry filtered", out.DevPackageNames)
	}
}

func TestSaveLegacyRoundTrip(t *testing.T) {
	vendorDir := writeInstalled(t, legacyInstalled)
	set, err := LoadInstalled(vendorDir)
	if err != nil {
		t.Fatalf("LoadInstalled failed: %v", err)
	}
	if err := set.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(set.Path())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var out []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("saved legacy file is not a bare array: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}
}
