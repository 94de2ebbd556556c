package report

import (
	"fmt"
	"strings"
	"time"

	"mcpconform/internal/runner"
)

// Input bundles everything Render needs: the run aggregate, the
// registration-time metadata for scoring, and identifying context about
// the server under test.
type Input struct {
	ServerName      string
	ServerURL       string // set only for HTTP runs
	ProtocolVersion string
	Timestamp       time.Time
	Aggregate       *runner.Aggregate
	Index           CaseIndex
	NoEmoji         bool
}

// RenderMarkdown builds the compliance report document. Output is
// byte-identical for identical inputs modulo the timestamp: sections are
// emitted in registration order, not sorted or shuffled, via
// strings.Builder and hand-built GFM tables rather than a templating
// library.
func RenderMarkdown(in Input) string {
	score := Compute(in.Aggregate, in.Index)

	var b strings.Builder

	fmt.Fprintf(&b, "# MCP Compliance Report\n\n")
	fmt.Fprintf(&b, "- **Server**: %s\n", in.ServerName)
	if in.ServerURL != "" {
		fmt.Fprintf(&b, "- **URL**: %s\n", in.ServerURL)
	}
	fmt.Fprintf(&b, "- **Protocol Version**: %s\n", in.ProtocolVersion)
	fmt.Fprintf(&b, "- **Generated**: %s\n\n", in.Timestamp.Format(time.RFC3339))

	levelLabel := string(score.Level)
	if !in.NoEmoji {
		levelLabel = score.Level.Emoji() + " " + levelLabel
	}
	fmt.Fprintf(&b, "**Compliance Status: %s (%.1f%%)**\n\n", levelLabel, score.Percentage)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Total | Passed | Failed | Skipped | Timeouts |\n")
	b.WriteString("|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n\n", in.Aggregate.Total, in.Aggregate.Passed, in.Aggregate.Failed, in.Aggregate.Skipped, in.Aggregate.Timeouts)

	b.WriteString("## Requirement Severity Breakdown\n\n")
	b.WriteString("| Severity | Attempted | Passed | Weighted Pass Rate |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, sev := range []Severity{Must, Should, May} {
		bd := score.BySeverity[sev]
		rate := "—"
		if bd.WeightAttempted > 0 {
			rate = fmt.Sprintf("%.1f%%", 100*float64(bd.WeightPassed)/float64(bd.WeightAttempted))
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %s |\n", sev, bd.Attempted, bd.Passed, rate)
	}
	b.WriteString("\n")

	b.WriteString("## Functional Section Breakdown\n\n")
	b.WriteString("| Section | Total | Passed | Failed | Skipped |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, sec := range []Section{SectionBaseProtocol, SectionLifecycle, SectionFeatures, SectionResources, SectionTools, SectionUtilities} {
		sb := score.BySection[sec]
		if sb.Total == 0 {
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d |\n", sec, sb.Total, sb.Passed, sb.Failed, sb.Skipped)
	}
	b.WriteString("\n")

	b.WriteString("## Passed Tests\n\n")
	b.WriteString("| Test | Duration (s) | Message |\n")
	b.WriteString("|---|---|---|\n")
	for _, res := range in.Aggregate.Results {
		if !res.Passed || res.Skipped {
			continue
		}
		fmt.Fprintf(&b, "| %s | %.3f | %s |\n", res.Name, res.Duration.Seconds(), escapeTableCell(res.Message))
	}
	b.WriteString("\n")

	failed := failedInSeverityOrder(in.Aggregate, in.Index)

	b.WriteString("## Failed Tests\n\n")
	b.WriteString("| Test | Duration (s) | Message |\n")
	b.WriteString("|---|---|---|\n")
	for _, res := range failed {
		fmt.Fprintf(&b, "| %s | %.3f | %s |\n", res.Name, res.Duration.Seconds(), escapeTableCell(res.Message))
	}
	b.WriteString("\n")

	b.WriteString("## Remediation Plan\n\n")
	if len(failed) == 0 {
		b.WriteString("No failing tests.\n")
	} else {
		for i, res := range failed {
			fmt.Fprintf(&b, "%d. **%s** — %s\n", i+1, res.Name, escapeTableCell(res.Message))
		}
	}

	return b.String()
}

// failedInSeverityOrder returns failed, non-skipped results ordered by
// their highest registered severity (MUST first), falling back to
// registration order within a severity band.
func failedInSeverityOrder(agg *runner.Aggregate, index CaseIndex) []runner.Result {
	rank := func(name string) int {
		best := 99
		for _, tag := range index[name].Tags {
			var r int
			switch tag.Severity {
			case Must:
				r = 0
			case Should:
				r = 1
			case May:
				r = 2
			default:
				r = 3
			}
			if r < best {
				best = r
			}
		}
		return best
	}

	var failed []runner.Result
	for _, res := range agg.Results {
		if !res.Skipped && !res.Passed {
			failed = append(failed, res)
		}
	}

	// Stable insertion sort by rank: the input list is already in
	// registration order, and failure counts are small per run.
	for i := 1; i < len(failed); i++ {
		j := i
		for j > 0 && rank(failed[j].Name) < rank(failed[j-1].Name) {
			failed[j], failed[j-1] = failed[j-1], failed[j]
			j--
		}
	}
	return failed
}

func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
