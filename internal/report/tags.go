// Package report aggregates a run's results into a weighted compliance
// score and renders Markdown and JSON documents describing it.
package report

// Severity is a requirement tag's weight class, assigned at test
// registration time rather than inferred from the test body.
type Severity string

const (
	Must   Severity = "MUST"
	Should Severity = "SHOULD"
	May    Severity = "MAY"
)

// Weight returns the scoring weight for s.
func (s Severity) Weight() int {
	switch s {
	case Must:
		return 10
	case Should:
		return 3
	case May:
		return 1
	default:
		return 0
	}
}

// RequirementTag labels a test case with a severity and a short name
// describing the requirement it exercises (e.g. "tool-validation"). A
// test may carry more than one tag; the scorer counts each independently.
type RequirementTag struct {
	Severity Severity
	Name     string
}

// Section is one of the functional groupings the Markdown report breaks
// results down by.
type Section string

const (
	SectionBaseProtocol Section = "Base Protocol"
	SectionLifecycle    Section = "Lifecycle"
	SectionFeatures     Section = "Features"
	SectionResources    Section = "Resources"
	SectionTools        Section = "Tools"
	SectionUtilities    Section = "Utilities"
)
