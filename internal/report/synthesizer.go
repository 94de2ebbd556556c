package report

// Synthesizer turns a run's Input into rendered report documents. It
// holds no state beyond the emoji preference threaded through every
// render call; Compute/RenderMarkdown/RenderJSON are pure functions of
// their Input and are exported directly for callers that don't need the
// grouping.
type Synthesizer struct {
	NoEmoji bool
}

// NewSynthesizer returns a Synthesizer honoring the NO_EMOJI/
// MCP_CONFORM_NO_EMOJI supplement.
func NewSynthesizer(noEmoji bool) *Synthesizer {
	return &Synthesizer{NoEmoji: noEmoji}
}

// Markdown renders in's Markdown report, applying s.NoEmoji.
func (s *Synthesizer) Markdown(in Input) string {
	in.NoEmoji = s.NoEmoji
	return RenderMarkdown(in)
}

// JSON renders in's JSON report.
func (s *Synthesizer) JSON(in Input) ([]byte, error) {
	return RenderJSON(in)
}

// PrintSummary writes the terminal summary for in, applying s.NoEmoji.
func (s *Synthesizer) PrintSummary(in Input) {
	in.NoEmoji = s.NoEmoji
	PrintTerminalSummary(in)
}
