package migrate

import (
	"context"

	"github.com/matzehuels/depshift/pkg/observability"
)

// CandidatePool is a simple in-memory Pool for hosts that do not expose
// their own pool structure, such as the CLI run loop.
type CandidatePool struct {
	packages     []*Package
	unacceptable map[*Package]bool
}

// NewCandidatePool creates a pool holding the given candidates.
func NewCandidatePool(packages ...*Package) *CandidatePool {
	return &CandidatePool{
		packages:     packages,
		unacceptable: make(map[*Package]bool),
	}
}

// Packages returns the current candidate list.
func (p *CandidatePool) Packages() []*Package {
	out := make([]*Package, len(p.packages))
	copy(out, p.packages)
	return out
}

// SetPackages replaces the candidate list.
func (p *CandidatePool) SetPackages(packages []*Package) {
	p.packages = packages
}

// MarkUnacceptable excludes a candidate from selection.
func (p *CandidatePool) MarkUnacceptable(pkg *Package) {
	p.unacceptable[pkg] = true
}

// IsUnacceptable reports whether a candidate has been excluded.
func (p *CandidatePool) IsUnacceptable(pkg *Package) bool {
	return p.unacceptable[pkg]
}

// Selectable returns the candidates that have not been excluded.
func (p *CandidatePool) Selectable() []*Package {
	var out []*Package
	for _, pkg := range p.packages {
		if !p.unacceptable[pkg] {
			out = append(out, pkg)
		}
	}
	return out
}

// interceptPool rewrites the candidate pool for one resolution pass.
//
// Only packages that are both currently installed and deprecated are
// considered; a deprecated package that is not installed yet resolves
// through the normal requirement path. Each candidate version is evaluated
// independently: the replacement must exist at exactly the candidate's
// version, otherwise that candidate is left untouched.
func (p *Plugin) interceptPool(ctx context.Context, pool Pool, installed []*Package) {
	if pool == nil {
		return
	}

	eligible := make(map[string]bool)
	for _, pkg := range installed {
		if p.rules.IsDeprecated(pkg.Name) {
			eligible[pkg.Name] = true
		}
	}
	if len(eligible) == 0 {
		return
	}

	candidates := pool.Packages()
	changed := false

	for i, candidate := range candidates {
		if !eligible[candidate.Name] {
			continue
		}

		replacement := p.rules.Replace(candidate.Name)
		if replacement == candidate.Name {
			p.logger.Debug("no replacement name for deprecated package", "package", candidate.Name)
			continue
		}

		substitute, err := p.repo.FindPackage(ctx, replacement, candidate.Version)
		if err != nil {
			p.logger.Warn("replacement lookup failed, keeping original candidate",
				"package", candidate.Name, "replacement", replacement, "error", err)
			continue
		}
		if substitute == nil {
			p.logger.Debug("replacement not available at candidate version",
				"package", candidate.Name, "replacement", replacement, "version", candidate.Version)
			continue
		}

		pool.MarkUnacceptable(candidate)
		candidates[i] = substitute
		changed = true

		p.logger.Info("substituting candidate",
			"package", candidate.Name, "replacement", substitute.Name, "version", substitute.Version)
		observability.Migration().OnSubstitute(ctx, candidate.Name, substitute.Name, substitute.Version)
	}

	if changed {
		pool.SetPackages(candidates)
	}
}
