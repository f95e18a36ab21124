// Package pkg provides the core libraries for depshift namespace migration.
//
// # Overview
//
// Depshift rewrites references to retired Composer package namespaces
// (zendframework, zfcampus) into their maintained successors (laminas,
// laminas-api-tools, mezzio). The pkg directory is organized into:
//
//  1. [namespace] - The replacement rule table and eligibility classifier
//  2. [migrate] - The substitution core (pool interception, operation
//     recording, post-install reconciliation)
//  3. [composer] - Host package manager collaborators (composer.json,
//     installed.json, lock-only update invocation)
//  4. [registry] - Registry lookup clients (Packagist p2 metadata)
//  5. [cache] - Metadata cache backends (file, redis, null)
//  6. [report] - Substitution map rendering (DOT/SVG)
//
// # Data flow
//
// A run walks the installed package set through the migrate lifecycle:
//
//	installed.json → pool interception → operation recording
//	         ↓
//	composer.json rewrite → vendor cleanup → lock-only update
//
// Supporting packages: [errors] for structured error codes, [config] for
// depshift.toml, [observability] for pluggable hooks, [buildinfo] for
// version stamping.
package pkg
