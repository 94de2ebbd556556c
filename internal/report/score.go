package report

import "mcpconform/internal/runner"

// ComplianceLevel is the qualitative bucket a weighted score falls into.
type ComplianceLevel string

const (
	FullyCompliant         ComplianceLevel = "Fully Compliant"
	SubstantiallyCompliant ComplianceLevel = "Substantially Compliant"
	PartiallyCompliant     ComplianceLevel = "Partially Compliant"
	MinimallyCompliant     ComplianceLevel = "Minimally Compliant"
	NonCompliant           ComplianceLevel = "Non-Compliant"
)

// Emoji returns the glyph the Markdown header and CLI summary line use for
// level, toggled off by the emoji-disable supplement (see Synthesizer).
func (l ComplianceLevel) Emoji() string {
	switch l {
	case FullyCompliant:
		return "✅"
	case SubstantiallyCompliant:
		return "🟢"
	case PartiallyCompliant:
		return "🟡"
	case MinimallyCompliant:
		return "🟠"
	default:
		return "🔴"
	}
}

// LevelForScore classifies score (0-100) and mustFailures per §4.6's
// table: 100 with zero MUST failures is Fully Compliant even though a
// plain ≥90 threshold would also match 100.
func LevelForScore(score float64, mustFailures int) ComplianceLevel {
	switch {
	case score == 100 && mustFailures == 0:
		return FullyCompliant
	case score >= 90:
		return SubstantiallyCompliant
	case score >= 75:
		return PartiallyCompliant
	case score >= 50:
		return MinimallyCompliant
	default:
		return NonCompliant
	}
}

// Score is the computed weighted result for one run.
type Score struct {
	Percentage   float64
	Level        ComplianceLevel
	MustFailures int
	BySeverity   map[Severity]SeverityBreakdown
	BySection    map[Section]SectionBreakdown
}

// SeverityBreakdown tallies attempted/passed weight for one severity.
type SeverityBreakdown struct {
	Attempted, Passed             int
	WeightAttempted, WeightPassed int
}

// SectionBreakdown tallies raw test counts for one functional section.
type SectionBreakdown struct {
	Total, Passed, Failed, Skipped int
}

// CaseIndex maps a test name to the tags and section it was registered
// with, since runner.Result carries only the name.
type CaseIndex map[string]CaseMeta

// CaseMeta is the registration-time metadata the scorer needs per test.
type CaseMeta struct {
	Tags    []RequirementTag
	Section Section
}

// Compute derives a Score from agg using index to recover each result's
// tags and section. Results with no matching index entry are treated as
// untagged and contribute to no severity breakdown (but still count in
// their section as "Utilities" by default).
func Compute(agg *runner.Aggregate, index CaseIndex) Score {
	bySeverity := map[Severity]SeverityBreakdown{Must: {}, Should: {}, May: {}}
	bySection := map[Section]SectionBreakdown{}

	var weightAttempted, weightPassed int
	mustFailures := 0

	for _, res := range agg.Results {
		meta := index[res.Name]
		section := meta.Section
		if section == "" {
			section = SectionUtilities
		}
		sb := bySection[section]
		sb.Total++
		switch {
		case res.Skipped:
			sb.Skipped++
		case res.Passed:
			sb.Passed++
		default:
			sb.Failed++
		}
		bySection[section] = sb

		if res.Skipped {
			continue
		}
		for _, tag := range meta.Tags {
			w := tag.Severity.Weight()
			breakdown := bySeverity[tag.Severity]
			breakdown.Attempted++
			breakdown.WeightAttempted += w
			weightAttempted += w
			if res.Passed {
				breakdown.Passed++
				breakdown.WeightPassed += w
				weightPassed += w
			} else if tag.Severity == Must {
				mustFailures++
			}
			bySeverity[tag.Severity] = breakdown
		}
	}

	var pct float64
	if weightAttempted > 0 {
		pct = 100 * float64(weightPassed) / float64(weightAttempted)
	}

	return Score{
		Percentage:   pct,
		Level:        LevelForScore(pct, mustFailures),
		MustFailures: mustFailures,
		BySeverity:   bySeverity,
		BySection:    bySection,
	}
}
