package registry

import (
	"context"
	"fmt"
	"time"

	"mcpconform/internal/protocol"
	"mcpconform/internal/report"
)

// AsyncToolCases exercises 2025-03-26+'s tools/call-async, tools/result,
// and tools/cancel surface. Cases are gated to MinVersion 2025-03-26;
// FilterForRun drops them outright on 2024-11-05.
func AsyncToolCases() []Case {
	return []Case{
		{
			Name:       "test_tools_async_advertised",
			Section:    report.SectionTools,
			MinVersion: protocol.Version20250326,
			Tags:       []report.RequirementTag{{Severity: report.Should, Name: "async-capability-advertisement"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				caps := a.ServerCapabilities()
				if caps.Tools == nil || !caps.Tools.AsyncSupported {
					return true, "server does not advertise asyncSupported; async tests tolerate this"
				}
				return true, "server advertises tools.asyncSupported"
			},
		},
		{
			Name:       "test_tool_async_call_and_result",
			Section:    report.SectionTools,
			MinVersion: protocol.Version20250326,
			Tags:       []report.RequirementTag{{Severity: report.Must, Name: "async-tool-invocation"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				async, ok := a.(protocol.AsyncAdapter)
				if !ok {
					return false, "adapter does not implement AsyncAdapter despite claiming 2025-03-26+"
				}
				tools, err := a.ListTools(ctx)
				if err != nil || len(tools) == 0 {
					return true, "no tools advertised; async call/result test skipped in substance"
				}
				handle, err := async.CallToolAsync(ctx, tools[0].Name, synthesizeArgs(tools[0].InputSchema))
				if err != nil {
					return false, fmt.Sprintf("tools/call-async failed: %v", err)
				}
				if handle.ID == "" {
					return false, "tools/call-async returned an empty id"
				}
				result, err := async.WaitForToolCompletion(ctx, handle.ID, 30*time.Second, 0)
				if err != nil {
					return false, fmt.Sprintf("waiting for async completion: %v", err)
				}
				if !result.Status.IsTerminal() {
					return false, fmt.Sprintf("async result reached non-terminal status %q after wait returned", result.Status)
				}
				return true, fmt.Sprintf("async tool call reached terminal status %q", result.Status)
			},
		},
		{
			Name:       "test_tool_async_cancellation",
			Section:    report.SectionTools,
			MinVersion: protocol.Version20250326,
			Tags:       []report.RequirementTag{{Severity: report.Should, Name: "async-cancellation"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				async, ok := a.(protocol.AsyncAdapter)
				if !ok {
					return false, "adapter does not implement AsyncAdapter despite claiming 2025-03-26+"
				}
				tools, err := a.ListTools(ctx)
				if err != nil || len(tools) == 0 {
					return true, "no tools advertised; cancellation test skipped in substance"
				}
				handle, err := async.CallToolAsync(ctx, tools[0].Name, synthesizeArgs(tools[0].InputSchema))
				if err != nil {
					return true, fmt.Sprintf("server rejected async call outright: %v", err)
				}

				select {
				case <-ctx.Done():
					return false, "context cancelled before cancellation could be attempted"
				case <-time.After(500 * time.Millisecond):
				}

				if err := async.CancelToolCall(ctx, handle.ID); err != nil {
					return false, fmt.Sprintf("tools/cancel failed: %v", err)
				}

				result, err := async.GetToolResult(ctx, handle.ID)
				if err != nil {
					return false, fmt.Sprintf("tools/result after cancel failed: %v", err)
				}
				if result.Status != protocol.AsyncCancelled && result.Status != protocol.AsyncError {
					return false, fmt.Sprintf("expected cancelled or error status after cancel, got %q", result.Status)
				}
				return true, fmt.Sprintf("async call reached %q after cancellation", result.Status)
			},
		},
	}
}
