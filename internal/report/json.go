package report

import (
	"encoding/json"
	"time"

	"mcpconform/internal/runner"
)

// jsonResult mirrors runner.Result's wire shape for the JSON report.
type jsonResult struct {
	Name        string  `json:"name"`
	Passed      bool    `json:"passed"`
	DurationSec float64 `json:"duration_seconds"`
	Message     string  `json:"message"`
	Skipped     bool    `json:"skipped,omitempty"`
	Timeout     bool    `json:"timeout,omitempty"`
	NonCritical bool    `json:"non_critical,omitempty"`
}

// jsonDocument is the exact schema §6 names.
type jsonDocument struct {
	Server               string       `json:"server"`
	ServerURL            string       `json:"server_url,omitempty"`
	ProtocolVersion      string       `json:"protocol_version"`
	Timestamp            string       `json:"timestamp"`
	TotalTests           int          `json:"total_tests"`
	PassedTests          int          `json:"passed_tests"`
	FailedTests          int          `json:"failed_tests"`
	SkippedTests         int          `json:"skipped_tests,omitempty"`
	CompliancePercentage float64      `json:"compliance_percentage"`
	ComplianceStatus     string       `json:"compliance_status"`
	Results              []jsonResult `json:"results"`
}

// RenderJSON marshals in into the §6 JSON schema, results given in
// registration (run) order verbatim.
func RenderJSON(in Input) ([]byte, error) {
	score := Compute(in.Aggregate, in.Index)

	results := make([]jsonResult, 0, len(in.Aggregate.Results))
	for _, r := range in.Aggregate.Results {
		results = append(results, jsonResult{
			Name:        r.Name,
			Passed:      r.Passed,
			DurationSec: roundToMillis(r.Duration),
			Message:     r.Message,
			Skipped:     r.Skipped,
			Timeout:     r.Timeout,
			NonCritical: r.NonCritical,
		})
	}

	doc := jsonDocument{
		Server:               in.ServerName,
		ServerURL:            in.ServerURL,
		ProtocolVersion:      in.ProtocolVersion,
		Timestamp:            in.Timestamp.Format(time.RFC3339),
		TotalTests:           in.Aggregate.Total,
		PassedTests:          in.Aggregate.Passed,
		FailedTests:          in.Aggregate.Failed,
		SkippedTests:         in.Aggregate.Skipped,
		CompliancePercentage: score.Percentage,
		ComplianceStatus:     string(score.Level),
		Results:              results,
	}

	return json.MarshalIndent(doc, "", "  ")
}

func roundToMillis(d time.Duration) float64 {
	return float64(d.Round(time.Millisecond)) / float64(time.Second)
}
