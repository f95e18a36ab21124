// Package namespace maps retired Composer package namespaces to their
// maintained successors.
//
// The mapping is a pure string transformation: a fixed table of exact names
// and name prefixes rewrites `zendframework/*` and `zfcampus/*` packages to
// their `laminas/*`, `laminas-api-tools/*`, or `mezzio/*` equivalents. Names
// outside the retired namespaces (including names already in a successor
// namespace) pass through unchanged, which makes the transformation
// idempotent.
//
// # Usage
//
//	rules := namespace.Default()
//	rules.Replace("zendframework/zend-view") // "laminas/laminas-view"
//	rules.Replace("laminas/laminas-view")    // unchanged
//	rules.IsDeprecated("zfcampus/zf-hal")    // true
package namespace

import (
	"sort"
	"strings"
)

// Rule rewrites one name pattern. When Exact is true, Match must equal the
// whole package name; otherwise Match is a prefix and the remainder of the
// name is preserved.
type Rule struct {
	Match   string // exact name or name prefix to rewrite
	Replace string // successor name or prefix
	Exact   bool   // whole-name match instead of prefix match
}

// Rules holds the replacement table and the set of deprecated namespaces.
// The zero value matches nothing; use [Default] for the built-in table.
// Matching is case-sensitive and prefix-exact, so names in successor
// namespaces can never match.
type Rules struct {
	exact      map[string]string
	prefixes   []Rule   // sorted longest match first
	deprecated []string // vendor prefixes eligible for substitution
}

// Default returns the built-in replacement table for the retired
// zendframework and zfcampus namespaces.
//
// Component packages map by prefix (zendframework/zend-view becomes
// laminas/laminas-view, zfcampus/zf-hal becomes laminas-api-tools/
// api-tools-hal, zendframework/zend-expressive-router becomes
// mezzio/mezzio-router). A handful of packages whose names predate the
// zend- prefix convention map by exact name. Organization-level
// meta-packages such as zendframework/zendframework are classified as
// deprecated but have no single successor, so Replace returns them
// unchanged.
func Default() *Rules {
	r := &Rules{
		exact: map[string]string{
			"zendframework/zenddiagnostics":       "laminas/laminas-diagnostics",
			"zendframework/zendoauth":             "laminas/laminas-oauth",
			"zendframework/zendxml":               "laminas/laminas-xml",
			"zendframework/zendservice-recaptcha": "laminas/laminas-recaptcha",
			"zendframework/zendservice-twitter":   "laminas/laminas-twitter",
			"zendframework/zend-problem-details":  "mezzio/mezzio-problem-details",
		},
		deprecated: []string{"zendframework/", "zfcampus/"},
	}
	r.addPrefixes(
		Rule{Match: "zendframework/zend-expressive", Replace: "mezzio/mezzio"},
		Rule{Match: "zfcampus/zf-apigility", Replace: "laminas-api-tools/api-tools"},
		Rule{Match: "zfcampus/zf-", Replace: "laminas-api-tools/api-tools-"},
		Rule{Match: "zendframework/zend-", Replace: "laminas/laminas-"},
	)
	return r
}

// WithRules returns a copy of r extended with additional rules. Exact rules
// shadow built-in exact entries for the same name; prefix rules are merged
// into the longest-first order so more specific patterns keep winning.
func (r *Rules) WithRules(extra ...Rule) *Rules {
	out := &Rules{
		exact:      make(map[string]string, len(r.exact)+len(extra)),
		prefixes:   append([]Rule(nil), r.prefixes...),
		deprecated: append([]string(nil), r.deprecated...),
	}
	for k, v := range r.exact {
		out.exact[k] = v
	}
	for _, rule := range extra {
		if rule.Match == "" || rule.Match == rule.Replace {
			continue
		}
		if rule.Exact {
			out.exact[rule.Match] = rule.Replace
		} else {
			out.addPrefixes(rule)
		}
		if vendor, ok := vendorPrefix(rule.Match); ok && !out.isDeprecatedVendor(vendor) {
			out.deprecated = append(out.deprecated, vendor)
		}
	}
	return out
}

// Replace returns the successor name for a retired package name, or name
// unchanged when no replacement applies. Applying Replace to its own output
// always returns the output unchanged.
func (r *Rules) Replace(name string) string {
	if repl, ok := r.exact[name]; ok {
		return repl
	}
	for _, rule := range r.prefixes {
		if strings.HasPrefix(name, rule.Match) {
			return rule.Replace + name[len(rule.Match):]
		}
	}
	return name
}

// IsDeprecated reports whether name belongs to one of the retired
// namespaces. Names in successor namespaces and unrelated names return
// false. Matching is case-sensitive.
func (r *Rules) IsDeprecated(name string) bool {
	if _, ok := r.exact[name]; ok {
		return true
	}
	for _, prefix := range r.deprecated {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (r *Rules) addPrefixes(rules ...Rule) {
	r.prefixes = append(r.prefixes, rules...)
	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].Match) > len(r.prefixes[j].Match)
	})
}

func (r *Rules) isDeprecatedVendor(vendor string) bool {
	for _, prefix := range r.deprecated {
		if prefix == vendor {
			return true
		}
	}
	return false
}

// vendorPrefix extracts the "vendor/" portion of a name or prefix pattern.
func vendorPrefix(pattern string) (string, bool) {
	idx := strings.IndexByte(pattern, '/')
	if idx <= 0 {
		return "", false
	}
	return pattern[:idx+1], true
}
