// Package migrate implements the dependency-substitution core: it hooks the
// host package manager's resolution and installation lifecycle, swaps
// deprecated package candidates for their maintained successors, and
// reconciles manifest, vendor, and lock state after an install in which a
// deprecated package still slipped through.
//
// The lifecycle surface is three explicit callbacks on [Plugin]:
//
//   - OnPrePoolCreate fires once per resolution pass, before the candidate
//     pool is frozen, and substitutes replacement candidates in place.
//   - OnPackageOperation fires per install/update operation and records
//     deprecated packages that are still being installed.
//   - OnPostInstall fires once after all operations complete and cleans up:
//     root requirement renames, vendor uninstalls, and a lock-only update.
//
// An adapter (the CLI, or a host event bridge) wires these callbacks to a
// concrete run loop. The plugin itself never blocks resolution: when a
// replacement cannot be resolved it fails open and leaves the original
// candidate untouched.
package migrate
