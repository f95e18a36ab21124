// Package composer wraps the host package manager's on-disk state: the root
// composer.json manifest, the installed.json vendor record, and the nested
// lock-only update invocation.
//
// The manifest handling is deliberately order-preserving. Composer users diff
// their composer.json, so a rewrite must only touch the entries it renames
// and leave every unrelated key, and the key order, intact.
package composer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/matzehuels/depshift/pkg/errors"
)

// Manifest is a parsed composer.json with order-preserving require sections.
// Load it, rename entries, then persist with Save. Unrelated top-level keys
// round-trip unchanged.
type Manifest struct {
	path string
	doc  *document

	// Require and RequireDev are the root requirement sections. Either may
	// be empty when the manifest lacks the corresponding key.
	Require    *Section
	RequireDev *Section

	sortPackages bool
	changed      bool
}

// LoadManifest reads and parses the composer.json at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeManifestNotFound, err, "manifest %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to read manifest %s", path)
	}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to parse manifest %s", path)
	}

	m := &Manifest{path: path, doc: doc}

	if m.Require, err = sectionFromDoc(doc, "require"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid require section in %s", path)
	}
	if m.RequireDev, err = sectionFromDoc(doc, "require-dev"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid require-dev section in %s", path)
	}

	if raw, ok := doc.get("config"); ok {
		var cfg struct {
			SortPackages bool `json:"sort-packages"`
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid config section in %s", path)
		}
		m.sortPackages = cfg.SortPackages
	}
	return m, nil
}

// Path returns the file the manifest was loaded from.
func (m *Manifest) Path() string { return m.path }

// SortPackages reports whether config.sort-packages is set.
func (m *Manifest) SortPackages() bool { return m.sortPackages }

// Changed reports whether any rename has modified the manifest since load.
func (m *Manifest) Changed() bool { return m.changed }

// Requirement looks up name in both requirement sections. dev is true when
// the entry lives in require-dev.
func (m *Manifest) Requirement(name string) (constraint string, dev, ok bool) {
	if c, ok := m.Require.Get(name); ok {
		return c, false, true
	}
	if c, ok := m.RequireDev.Get(name); ok {
		return c, true, true
	}
	return "", false, false
}

// Rename replaces oldName with newName in whichever requirement section
// declares it, keeping the version constraint. The entry stays at its
// original position unless config.sort-packages asks for a sorted section.
// Returns false when neither section names the package.
func (m *Manifest) Rename(oldName, newName string) bool {
	for _, s := range []*Section{m.Require, m.RequireDev} {
		if !s.rename(oldName, newName) {
			continue
		}
		if m.sortPackages {
			s.sort()
		}
		m.changed = true
		return true
	}
	return false
}

// Save writes the manifest back to its file with Composer's conventional
// formatting (2-space indent, trailing newline).
func (m *Manifest) Save() error {
	if m.Require.present {
		m.doc.set("require", m.Require.marshal())
	}
	if m.RequireDev.present {
		m.doc.set("require-dev", m.RequireDev.marshal())
	}

	data, err := m.doc.marshal()
	if err != nil {
		return errors.Wrap(errors.ErrCodeManifestWrite, err, "failed to encode manifest %s", m.path)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeManifestWrite, err, "failed to write manifest %s", m.path)
	}
	m.changed = false
	return nil
}

// Section is an ordered name→constraint requirement mapping.
type Section struct {
	present bool
	names   []string
	entries map[string]string
}

func sectionFromDoc(doc *document, key string) (*Section, error) {
	s := &Section{entries: map[string]string{}}
	raw, ok := doc.get(key)
	if !ok {
		return s, nil
	}
	s.present = true

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("%s is not an object: %w", key, err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name := tok.(string)
		var constraint string
		if err := dec.Decode(&constraint); err != nil {
			return nil, fmt.Errorf("constraint for %s: %w", name, err)
		}
		if _, dup := s.entries[name]; !dup {
			s.names = append(s.names, name)
		}
		s.entries[name] = constraint
	}
	return s, nil
}

// Get returns the constraint declared for name.
func (s *Section) Get(name string) (string, bool) {
	c, ok := s.entries[name]
	return c, ok
}

// Names returns the package names in declaration order.
func (s *Section) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of entries.
func (s *Section) Len() int { return len(s.names) }

// rename swaps oldName for newName in place, keeping the constraint and the
// slot. When newName already exists the old entry is dropped instead of
// overwriting the existing constraint.
func (s *Section) rename(oldName, newName string) bool {
	constraint, ok := s.entries[oldName]
	if !ok {
		return false
	}
	delete(s.entries, oldName)

	if _, exists := s.entries[newName]; exists {
		for i, n := range s.names {
			if n == oldName {
				s.names = append(s.names[:i], s.names[i+1:]...)
				break
			}
		}
		return true
	}

	for i, n := range s.names {
		if n == oldName {
			s.names[i] = newName
			break
		}
	}
	s.entries[newName] = constraint
	return true
}

func (s *Section) sort() {
	sort.Strings(s.names)
}

func (s *Section) marshal() json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(name)
		v, _ := json.Marshal(s.entries[name])
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// document is an order-preserving JSON object. Values are kept as raw bytes
// so keys this tool never touches survive a load→save round trip.
type document struct {
	keys   []string
	values map[string]json.RawMessage
}

func parseDocument(data []byte) (*document, error) {
	doc := &document{values: map[string]json.RawMessage{}}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}
		if _, dup := doc.values[key]; !dup {
			doc.keys = append(doc.keys, key)
		}
		doc.values[key] = raw
	}
	return doc, nil
}

func (d *document) get(key string) (json.RawMessage, bool) {
	raw, ok := d.values[key]
	return raw, ok
}

func (d *document) set(key string, raw json.RawMessage) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = raw
}

func (d *document) marshal() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			compact.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		compact.Write(k)
		compact.WriteByte(':')
		compact.Write(d.values[key])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
