// Package mockserver implements a small, deliberately-controllable MCP
// server for exercising the harness without a real third-party server: it
// speaks each of the three protocol revisions on request (including a
// "broken" variant per revision for negative testing). Its tests live in
// this package and cover the engine, the tool handler and the stdio and
// HTTP front ends; no test elsewhere in the repository drives the harness
// against it.
package mockserver

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

// ToolResponse is one conditional response a mock tool may return,
// selected by matching Condition against the call's merged arguments.
type ToolResponse struct {
	Condition map[string]interface{} `yaml:"condition,omitempty"`
	Response  interface{}            `yaml:"response,omitempty"`
	Error     string                 `yaml:"error,omitempty"`
	DelayMS   int                    `yaml:"delay_ms,omitempty"`
}

// ToolConfig is one fixture tool definition.
type ToolConfig struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	InputSchema map[string]interface{} `yaml:"input_schema"`
	Responses   []ToolResponse         `yaml:"responses"`
}

type fixtureFile struct {
	Tools []ToolConfig `yaml:"tools"`
}

//go:embed fixtures_default.yaml
var defaultFixturesYAML []byte

// DefaultFixtures returns the bundled tool catalog the mock server
// exercises by default: "echo", which fails on request when its message
// is "fail", and "lookup", which answers after a short delay for the id
// "slow". Both schemas declare a required argument, letting the
// registry's negative tests (invalid params, missing required arguments)
// have something real to probe.
func DefaultFixtures() []ToolConfig {
	var f fixtureFile
	if err := yaml.Unmarshal(defaultFixturesYAML, &f); err != nil {
		return nil
	}
	return f.Tools
}

// LoadFixtures parses a caller-supplied fixture document in the same
// shape as fixtures_default.yaml.
func LoadFixtures(data []byte) ([]ToolConfig, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Tools, nil
}
