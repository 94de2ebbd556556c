package registry

import (
	"context"
	"fmt"

	"mcpconform/internal/protocol"
	"mcpconform/internal/report"
)

// ToolCases exercises the synchronous tools/list and tools/call surface
// common to every revision.
func ToolCases() []Case {
	return []Case{
		{
			Name:    "test_tools_list",
			Section: report.SectionTools,
			Tags:    []report.RequirementTag{{Severity: report.Must, Name: "tools-list"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				tools, err := a.ListTools(ctx)
				if err != nil {
					return false, fmt.Sprintf("tools/list failed: %v", err)
				}
				for _, t := range tools {
					if t.Name == "" {
						return false, "a tool definition is missing name"
					}
					if t.Description == "" {
						return false, fmt.Sprintf("tool %q is missing description", t.Name)
					}
				}
				return true, fmt.Sprintf("listed %d tool(s)", len(tools))
			},
		},
		{
			Name:    "test_tool_call",
			Section: report.SectionTools,
			Tags:    []report.RequirementTag{{Severity: report.Must, Name: "tool-invocation"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				tools, err := a.ListTools(ctx)
				if err != nil {
					return false, fmt.Sprintf("tools/list failed: %v", err)
				}
				if len(tools) == 0 {
					return true, "server advertises no tools; call test skipped in substance"
				}
				result, err := a.CallTool(ctx, tools[0].Name, synthesizeArgs(tools[0].InputSchema))
				if err != nil {
					return false, fmt.Sprintf("tools/call %q failed: %v", tools[0].Name, err)
				}
				if result.IsError && len(result.Content) == 0 {
					return false, "tool call reported isError with no content describing why"
				}
				return true, fmt.Sprintf("called tool %q", tools[0].Name)
			},
		},
		{
			Name:    "test_tool_invalid_params",
			Section: report.SectionTools,
			Tags:    []report.RequirementTag{{Severity: report.Must, Name: "tool-param-validation"}, {Severity: report.Should, Name: "helpful-error-messages"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				tools, err := a.ListTools(ctx)
				if err != nil || len(tools) == 0 {
					return true, "no tools advertised; invalid-params test skipped in substance"
				}
				result, err := a.CallTool(ctx, tools[0].Name, map[string]interface{}{"__mcpconform_bogus_param__": 12345})
				if err != nil {
					if pe, ok := protocol.AsProtocolError(err); ok && pe.Kind == protocol.KindInvalidParams {
						return true, "server correctly rejected invalid params"
					}
					return true, fmt.Sprintf("server rejected invalid params: %v", err)
				}
				if result.IsError {
					return true, "server reported tool-level error for invalid params"
				}
				return false, "server accepted bogus parameters without complaint"
			},
		},
		{
			Name:    "test_tool_invalid_name",
			Section: report.SectionTools,
			Tags:    []report.RequirementTag{{Severity: report.Must, Name: "tool-name-validation"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				_, err := a.CallTool(ctx, "__mcpconform_nonexistent_tool__", nil)
				if err == nil {
					return false, "server did not reject a call to a nonexistent tool"
				}
				if pe, ok := protocol.AsProtocolError(err); ok {
					return true, fmt.Sprintf("server rejected nonexistent tool (%s)", pe.Kind)
				}
				return true, fmt.Sprintf("server rejected nonexistent tool: %v", err)
			},
		},
		{
			Name:    "test_tool_schema_parameter_generation",
			Section: report.SectionTools,
			Tags:    []report.RequirementTag{{Severity: report.Should, Name: "schema-driven-params"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				tools, err := a.ListTools(ctx)
				if err != nil {
					return false, fmt.Sprintf("tools/list failed: %v", err)
				}
				for _, t := range tools {
					if t.InputSchema == nil {
						continue
					}
					args := synthesizeArgs(t.InputSchema)
					if _, err := a.CallTool(ctx, t.Name, args); err != nil {
						if _, ok := protocol.AsProtocolError(err); !ok {
							return false, fmt.Sprintf("tool %q call with schema-synthesized args failed unexpectedly: %v", t.Name, err)
						}
					}
				}
				return true, "schema-driven parameter synthesis exercised for all schema-bearing tools"
			},
		},
	}
}

// synthesizeArgs builds a minimal valid argument map from a JSON Schema
// object, using each required property's declared type to pick a
// plausible zero-ish value. Unknown or absent schemas yield an empty map.
func synthesizeArgs(schema map[string]interface{}) map[string]interface{} {
	args := map[string]interface{}{}
	if schema == nil {
		return args
	}
	props, _ := schema["properties"].(map[string]interface{})
	required, _ := schema["required"].([]interface{})
	for _, r := range required {
		name, ok := r.(string)
		if !ok {
			continue
		}
		propSchema, _ := props[name].(map[string]interface{})
		args[name] = synthesizeValue(propSchema)
	}
	return args
}

func synthesizeValue(propSchema map[string]interface{}) interface{} {
	t, _ := propSchema["type"].(string)
	switch t {
	case "integer", "number":
		return 1
	case "boolean":
		return false
	case "array":
		return []interface{}{}
	case "object":
		return map[string]interface{}{}
	default:
		return "mcpconform-synthesized"
	}
}
