package discovery

import (
	"sort"

	"warmtest/internal/domain"
	"warmtest/internal/registry"
)

// Predicate decides whether a discovered suite may be scheduled
type Predicate func(*registry.Entity) bool

// PlannedSuite is a suite with the cases selected to run
type PlannedSuite struct {
	Suite *registry.Entity
	Cases []domain.TestCase
}

// Plan is the ordered list of suites one run executes
type Plan struct {
	Suites []PlannedSuite
}

// Size returns the number of cases in the plan
func (p Plan) Size() int {
	n := 0
	for _, s := range p.Suites {
		n += len(s.Cases)
	}
	return n
}

// Collector turns registered suites into a run plan
type Collector struct {
	registry *registry.Registry
	accept   Predicate
	filter   *Filter
}

// NewCollector creates a Collector; accept may be nil to schedule every suite
func NewCollector(reg *registry.Registry, accept Predicate) *Collector {
	return &Collector{registry: reg, accept: accept, filter: NewFilter()}
}

// Collect gathers the subtypes of the named bases with cases. testcases
// restricts suites and names restricts cases, both by Filter.Match patterns.
func (c *Collector) Collect(bases, testcases, names []string) Plan {
	seen := make(map[*registry.Entity]bool)
	var plan Plan

	for _, baseName := range bases {
		base, ok := c.registry.Resolve(baseName)
		if !ok {
			continue
		}
		for _, e := range c.registry.FindSubtypes(base, false) {
			if seen[e] || len(e.Cases) == 0 {
				continue
			}
			seen[e] = true

			if c.accept != nil && !c.accept(e) {
				continue
			}
			if !c.filter.MatchAny(e.Name, testcases) {
				continue
			}

			var cases []domain.TestCase
			for _, tc := range e.Cases {
				if c.filter.MatchAny(tc.Name, names) {
					cases = append(cases, tc)
				}
			}
			if len(cases) > 0 {
				plan.Suites = append(plan.Suites, PlannedSuite{Suite: e, Cases: cases})
			}
		}
	}

	sort.SliceStable(plan.Suites, func(i, j int) bool {
		return plan.Suites[i].Suite.Name < plan.Suites[j].Suite.Name
	})
	return plan
}
