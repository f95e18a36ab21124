package composer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/depshift/pkg/errors"
)

// InstalledPackage is one record from installed.json. The full record is kept
// as raw bytes so fields this tool never reads survive a rewrite.
type InstalledPackage struct {
	Name    string
	Version string

	raw json.RawMessage
}

// InstalledSet is the vendor-dir record of installed packages, backed by
// <vendor-dir>/composer/installed.json. Both the modern object layout
// ({"packages": [...], ...}) and the legacy bare-array layout are supported
// and written back in the layout they were read in.
type InstalledSet struct {
	path      string
	vendorDir string

	doc      *document // nil for the legacy bare-array layout
	packages []*InstalledPackage
	devNames []string
	changed  bool
}

// LoadInstalled reads installed.json from under vendorDir.
func LoadInstalled(vendorDir string) (*InstalledSet, error) {
	path := filepath.Join(vendorDir, "composer", "installed.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeInstalledNotFound, err, "installed packages file %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to read %s", path)
	}

	set := &InstalledSet{path: path, vendorDir: vendorDir}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		// Legacy layout: a bare array of package records.
		if err := set.decodePackages(trimmed); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to parse %s", path)
		}
		return set, nil
	}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to parse %s", path)
	}
	set.doc = doc

	if raw, ok := doc.get("packages"); ok {
		if err := set.decodePackages(raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to parse packages in %s", path)
		}
	}
	if raw, ok := doc.get("dev-package-names"); ok {
		if err := json.Unmarshal(raw, &set.devNames); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to parse dev-package-names in %s", path)
		}
	}
	return set, nil
}

func (s *InstalledSet) decodePackages(raw json.RawMessage) error {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return err
	}
	for _, rec := range records {
		var header struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		}
		if err := json.Unmarshal(rec, &header); err != nil {
			return err
		}
		s.packages = append(s.packages, &InstalledPackage{
			Name:    header.Name,
			Version: header.Version,
			raw:     rec,
		})
	}
	return nil
}

// Path returns the installed.json file location.
func (s *InstalledSet) Path() string { return s.path }

// Packages returns the installed package records in file order.
func (s *InstalledSet) Packages() []*InstalledPackage {
	out := make([]*InstalledPackage, len(s.packages))
	copy(out, s.packages)
	return out
}

// Names returns the installed package names in file order.
func (s *InstalledSet) Names() []string {
	names := make([]string, len(s.packages))
	for i, p := range s.packages {
		names[i] = p.Name
	}
	return names
}

// Has reports whether a package with the given name is installed.
func (s *InstalledSet) Has(name string) bool {
	for _, p := range s.packages {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Remove uninstalls name: the record is dropped from the set and the package
// directory under the vendor dir is deleted. Call Save afterwards to persist
// the updated record file.
func (s *InstalledSet) Remove(name string) error {
	idx := -1
	for i, p := range s.packages {
		if p.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.New(errors.ErrCodePackageNotFound, "package %s is not installed", name)
	}

	dir, err := s.packageDir(name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrap(errors.ErrCodeUninstallFailed, err, "failed to remove %s", dir)
	}

	s.packages = append(s.packages[:idx], s.packages[idx+1:]...)
	for i, n := range s.devNames {
		if n == name {
			s.devNames = append(s.devNames[:i], s.devNames[i+1:]...)
			break
		}
	}
	s.changed = true
	return nil
}

// packageDir resolves the on-disk directory for a vendor/package name and
// rejects names that would escape the vendor dir.
func (s *InstalledSet) packageDir(name string) (string, error) {
	if strings.Contains(name, "..") || strings.HasPrefix(name, "/") || !strings.Contains(name, "/") {
		return "", errors.New(errors.ErrCodeInvalidPath, "unsafe package name %q", name)
	}
	dir := filepath.Join(s.vendorDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.vendorDir, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.New(errors.ErrCodeInvalidPath, "package name %q escapes vendor dir", name)
	}
	return dir, nil
}

// Changed reports whether any Remove has modified the set since load.
func (s *InstalledSet) Changed() bool { return s.changed }

// Save writes installed.json back in the layout it was read in.
func (s *InstalledSet) Save() error {
	records := make([]json.RawMessage, len(s.packages))
	for i, p := range s.packages {
		records[i] = p.raw
	}
	packagesRaw, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(errors.ErrCodeManifestWrite, err, "failed to encode %s", s.path)
	}

	var data []byte
	if s.doc == nil {
		var out bytes.Buffer
		if err := json.Indent(&out, packagesRaw, "", "  "); err != nil {
			return errors.Wrap(errors.ErrCodeManifestWrite, err, "failed to encode %s", s.path)
		}
		out.WriteByte('\n')
		data = out.Bytes()
	} else {
		s.doc.set("packages", packagesRaw)
		if _, ok := s.doc.get("dev-package-names"); ok {
			namesRaw, err := json.Marshal(s.devNames)
			if err != nil {
				return errors.Wrap(errors.ErrCodeManifestWrite, err, "failed to encode %s", s.path)
			}
			s.doc.set("dev-package-names", namesRaw)
		}
		if data, err = s.doc.marshal(); err != nil {
			return errors.Wrap(errors.ErrCodeManifestWrite, err, "failed to encode %s", s.path)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeManifestWrite, err, "failed to write %s", s.path)
	}
	s.changed = false
	return nil
}
