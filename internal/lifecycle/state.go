package lifecycle

import (
	"sort"

	"github.com/kingrea/companions/internal/bestiary"
	"github.com/kingrea/companions/internal/intercept"
	"github.com/kingrea/companions/internal/refcount"
	"github.com/kingrea/companions/internal/synth"
)

const helperResource = "condition catalog"

// State is the process-wide bookkeeping the coordinator owns: which tenants
// have been augmented, each tenant's hold on the interception, and the shared
// condition catalog with its holder count. Tests build a fresh State per case.
type State struct {
	tenants map[string]*intercept.Handle
	reports map[string]synth.Report
	helper  *refcount.Counter
	catalog *bestiary.Catalog
}

// NewState returns empty bookkeeping.
func NewState() *State {
	return &State{
		tenants: map[string]*intercept.Handle{},
		reports: map[string]synth.Report{},
		helper:  refcount.New(helperResource),
	}
}

// Augmented reports whether tenant's discovery pass has run.
func (s *State) Augmented(tenant string) bool {
	_, ok := s.tenants[tenant]
	return ok
}

// Tenants lists augmented tenants, sorted.
func (s *State) Tenants() []string {
	out := make([]string, 0, len(s.tenants))
	for tenant := range s.tenants {
		out = append(out, tenant)
	}
	sort.Strings(out)
	return out
}

// Report returns the result of tenant's discovery pass.
func (s *State) Report(tenant string) (synth.Report, bool) {
	r, ok := s.reports[tenant]
	return r, ok
}

// HelperRefs is the number of condition catalog holders.
func (s *State) HelperRefs() int {
	return s.helper.Count()
}
