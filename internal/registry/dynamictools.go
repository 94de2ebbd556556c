package registry

import (
	"context"
	"fmt"

	"mcpconform/internal/protocol"
	"mcpconform/internal/report"
)

// DynamicToolCases treats the server's advertised tool list as the source
// of truth rather than assuming any specific tool exists: discover, then
// exercise each one with schema-synthesized arguments, and probe its
// rejection of bad names/arguments. Unlike ToolCases (which targets the
// first listed tool as a representative sample), these cases iterate the
// full catalog.
func DynamicToolCases() []Case {
	return []Case{
		{
			Name:    "test_tool_dynamic_discovery",
			Section: report.SectionTools,
			Tags:    []report.RequirementTag{{Severity: report.Should, Name: "dynamic-discovery"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				tools, err := a.ListTools(ctx)
				if err != nil {
					return false, fmt.Sprintf("tools/list failed: %v", err)
				}
				return true, fmt.Sprintf("discovered %d tool(s) for dynamic exercise", len(tools))
			},
		},
		{
			Name:    "test_tool_dynamic_exercise_all",
			Section: report.SectionTools,
			Tags:    []report.RequirementTag{{Severity: report.Should, Name: "dynamic-tool-exercise"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				tools, err := a.ListTools(ctx)
				if err != nil {
					return false, fmt.Sprintf("tools/list failed: %v", err)
				}
				failures := 0
				for _, t := range tools {
					args := synthesizeArgs(t.InputSchema)
					if _, err := a.CallTool(ctx, t.Name, args); err != nil {
						if _, ok := protocol.AsProtocolError(err); !ok {
							failures++
						}
					}
				}
				if failures > 0 {
					return false, fmt.Sprintf("%d of %d tools failed with a non-protocol error during exercise", failures, len(tools))
				}
				return true, fmt.Sprintf("exercised %d tool(s) with synthesized arguments", len(tools))
			},
		},
		{
			Name:    "test_tool_dynamic_invalid_name_rejection",
			Section: report.SectionTools,
			Tags:    []report.RequirementTag{{Severity: report.Must, Name: "tool-name-validation"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				_, err := a.CallTool(ctx, "__mcpconform_does_not_exist__", nil)
				if err == nil {
					return false, "server accepted a call to an undiscovered tool name"
				}
				return true, "server rejected an undiscovered tool name"
			},
		},
		{
			Name:    "test_tool_dynamic_invalid_arguments_rejection",
			Section: report.SectionTools,
			Tags:    []report.RequirementTag{{Severity: report.Must, Name: "tool-param-validation"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				tools, err := a.ListTools(ctx)
				if err != nil || len(tools) == 0 {
					return true, "no tools advertised; invalid-arguments test skipped in substance"
				}
				for _, t := range tools {
					if t.InputSchema == nil {
						continue
					}
					required, _ := t.InputSchema["required"].([]interface{})
					if len(required) == 0 {
						continue
					}
					// Omit every required argument and expect rejection.
					result, err := a.CallTool(ctx, t.Name, map[string]interface{}{})
					if err == nil && (result == nil || !result.IsError) {
						return false, fmt.Sprintf("tool %q accepted a call missing all required arguments", t.Name)
					}
					return true, fmt.Sprintf("tool %q rejected missing required arguments", t.Name)
				}
				return true, "no tool declares required arguments; invalid-arguments test skipped in substance"
			},
		},
	}
}
