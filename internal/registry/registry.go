// Package registry curates the harness's test case catalog: static
// (fn, name) pairs grouped by concern, filtered by run mode and skip-list
// before the runner executes them. The registry never executes a test
// itself; it is consulted at run-assembly time only.
package registry

import (
	"context"

	"mcpconform/internal/protocol"
	"mcpconform/internal/report"
)

// TestFunc is the fixed calling convention every test case body honors:
// given a READY-or-about-to-be-READY adapter, run the dialogue and report
// pass/fail plus a human-readable message.
type TestFunc func(ctx context.Context, adapter protocol.Adapter) (passed bool, message string)

// Case is one registry entry.
type Case struct {
	Name    string
	Fn      TestFunc
	Tags    []report.RequirementTag
	Section report.Section

	// MinVersion restricts this case to protocol revisions >= MinVersion,
	// compared lexicographically since all three revisions are
	// YYYY-MM-DD strings. Empty means no restriction.
	MinVersion string

	// ExactVersion restricts this case to exactly one revision, used by
	// the 2025-06-18-only conformance checks. Empty means no restriction.
	ExactVersion string
}

// IsToolTest reports whether name falls under the tools_timeout budget
// rather than test_timeout, per the test_tool_*/test_tools_* naming
// convention.
func (c Case) IsToolTest() bool {
	return hasPrefix(c.Name, "test_tool_") || hasPrefix(c.Name, "test_tools_")
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// AppliesToVersion reports whether c should run for the given claimed
// protocol version.
func (c Case) AppliesToVersion(version string) bool {
	if c.ExactVersion != "" && c.ExactVersion != version {
		return false
	}
	if c.MinVersion != "" && version < c.MinVersion {
		return false
	}
	return true
}

// Mode selects which catalogs All aggregates.
type Mode string

const (
	ModeAll              Mode = "all"
	ModeCore             Mode = "core"
	ModeTools            Mode = "tools"
	ModeAsync            Mode = "async"
	ModeSpec             Mode = "spec"
	ModeDynamicOnly      Mode = "dynamic-only"
	ModeSpecCoverageOnly Mode = "spec-coverage-only"
)

// All returns every registered case applicable to mode, in stable
// registration order (catalog order, then within-catalog order).
func All(mode Mode) []Case {
	var cases []Case
	switch mode {
	case ModeDynamicOnly:
		cases = append(cases, DynamicToolCases()...)
	case ModeSpecCoverageOnly:
		cases = append(cases, SpecCoverageCases()...)
	case ModeCore:
		cases = append(cases, LifecycleCases()...)
		cases = append(cases, ToolCases()...)
	case ModeTools:
		cases = append(cases, ToolCases()...)
		cases = append(cases, DynamicToolCases()...)
		cases = append(cases, AsyncToolCases()...)
	case ModeAsync:
		cases = append(cases, AsyncToolCases()...)
	case ModeSpec:
		cases = append(cases, SpecCoverageCases()...)
		cases = append(cases, TransportCases()...)
	case ModeAll, "":
		cases = append(cases, LifecycleCases()...)
		cases = append(cases, ToolCases()...)
		cases = append(cases, AsyncToolCases()...)
		cases = append(cases, DynamicToolCases()...)
		cases = append(cases, Revision20250618Cases()...)
		cases = append(cases, TransportCases()...)
		cases = append(cases, SpecCoverageCases()...)
	}
	return cases
}

// BuildIndex captures each case's registration-time tags and section,
// keyed by name, for the report package to score and sort by without
// importing registry itself (which would cycle back through report).
func BuildIndex(cases []Case) report.CaseIndex {
	index := make(report.CaseIndex, len(cases))
	for _, c := range cases {
		index[c.Name] = report.CaseMeta{Tags: c.Tags, Section: c.Section}
	}
	return index
}

// FilterForRun narrows cases to those applicable to version and not named
// in skip.
func FilterForRun(cases []Case, version string, skip map[string]bool) []Case {
	out := make([]Case, 0, len(cases))
	for _, c := range cases {
		if !c.AppliesToVersion(version) {
			continue
		}
		if skip[c.Name] {
			continue
		}
		out = append(out, c)
	}
	return out
}
