package migrate

import "github.com/google/uuid"

// RunState holds the per-run record of deprecated packages that were
// observed being installed or updated despite the pool interception.
//
// The state is scoped to one resolution/install run: the operation handler
// appends, the reconciler reads and clears. It is passed by reference into
// the plugin rather than held as process-global state, so two runs never
// share records. Entries keep arrival order and are not de-duplicated; the
// same name may appear once per operation that touched it.
//
// The host invokes all handlers synchronously within one run, so RunState
// does no locking.
type RunState struct {
	id       string
	recorded []*Package
}

// NewRunState creates an empty run state with a fresh run ID.
func NewRunState() *RunState {
	return &RunState{id: uuid.NewString()}
}

// ID returns the run identifier, used to correlate log lines of one run.
func (s *RunState) ID() string { return s.id }

// Record appends a deprecated package reference.
func (s *RunState) Record(p *Package) {
	s.recorded = append(s.recorded, p)
}

// Recorded returns the recorded references in arrival order.
func (s *RunState) Recorded() []*Package {
	out := make([]*Package, len(s.recorded))
	copy(out, s.recorded)
	return out
}

// Empty reports whether nothing has been recorded.
func (s *RunState) Empty() bool { return len(s.recorded) == 0 }

// Len returns the number of recorded references.
func (s *RunState) Len() int { return len(s.recorded) }

// Reset clears the recorded references, keeping the run ID.
func (s *RunState) Reset() { s.recorded = nil }
