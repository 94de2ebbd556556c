package report

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PrintTerminalSummary renders a richer, aligned terminal table via
// go-pretty — distinct from the Markdown report file, matching the split
// between "data" output (Markdown/JSON, byte-deterministic) and "display"
// output (terminal, free to use color and box-drawing) the teacher's CLI
// rendering keeps.
func PrintTerminalSummary(in Input) {
	score := Compute(in.Aggregate, in.Index)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Section", "Total", "Passed", "Failed", "Skipped"})
	for _, sec := range []Section{SectionBaseProtocol, SectionLifecycle, SectionFeatures, SectionResources, SectionTools, SectionUtilities} {
		sb := score.BySection[sec]
		if sb.Total == 0 {
			continue
		}
		t.AppendRow(table.Row{sec, sb.Total, sb.Passed, sb.Failed, sb.Skipped})
	}
	t.SetStyle(table.StyleLight)
	t.Render()

	levelLabel := string(score.Level)
	if !in.NoEmoji {
		levelLabel = score.Level.Emoji() + " " + levelLabel
	}
	styled := text.Colors{text.Bold}.Sprintf("Compliance Status: %s (%.1f%%)", levelLabel, score.Percentage)
	fmt.Println(styled)
}
