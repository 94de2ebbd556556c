package registry

import (
	"context"
	"fmt"

	"mcpconform/internal/protocol"
	"mcpconform/internal/report"
	"mcpconform/internal/transport"
)

// TransportCases probe framing and session mechanics below the protocol
// layer, reaching the bound transport through protocol.TransportAccessor.
func TransportCases() []Case {
	return []Case{
		{
			Name:    "test_transport_stdio_framing",
			Section: report.SectionBaseProtocol,
			Tags:    []report.RequirementTag{{Severity: report.Must, Name: "stdio-framing"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				acc, ok := a.(protocol.TransportAccessor)
				if !ok {
					return false, "adapter does not expose its underlying transport"
				}
				stdio, ok := acc.Underlying().(*transport.Stdio)
				if !ok {
					return true, "server is not driven over stdio; framing test skipped in substance"
				}
				// A successful Initialize (already performed by the runner
				// before this test runs) already round-tripped a
				// newline-framed JSON line in both directions; a second
				// request/response pair (ping) confirms the framing holds
				// up for more than the first exchange.
				if err := a.Ping(ctx); err != nil {
					return false, fmt.Sprintf("second stdio exchange failed, framing may have desynced: %v (stderr: %s)", err, stdio.Diagnostics())
				}
				return true, "stdio framing held across multiple exchanges"
			},
		},
		{
			Name:    "test_transport_http_session_preservation",
			Section: report.SectionBaseProtocol,
			Tags:    []report.RequirementTag{{Severity: report.Must, Name: "http-session-preservation"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				acc, ok := a.(protocol.TransportAccessor)
				if !ok {
					return false, "adapter does not expose its underlying transport"
				}
				h, ok := acc.Underlying().(*transport.HTTP)
				if !ok {
					return true, "server is not driven over HTTP; session test skipped in substance"
				}
				if h.SessionID() == "" {
					return true, "server did not assign a session id; stateless server tolerated"
				}
				if err := a.Ping(ctx); err != nil {
					return false, fmt.Sprintf("request after session id observed failed: %v", err)
				}
				return true, "session id echoed across subsequent requests"
			},
		},
		{
			Name:    "test_transport_http_cors",
			Section: report.SectionBaseProtocol,
			Tags:    []report.RequirementTag{{Severity: report.May, Name: "cors"}},
			Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
				acc, ok := a.(protocol.TransportAccessor)
				if !ok {
					return false, "adapter does not expose its underlying transport"
				}
				if _, ok := acc.Underlying().(*transport.HTTP); !ok {
					return true, "server is not driven over HTTP; CORS test skipped in substance"
				}
				// CORS is a browser-enforced concern the harness cannot
				// observe from a server-to-server POST; presence is
				// recorded informationally rather than failed on.
				return true, "CORS headers are browser-enforced and not independently verifiable by this harness"
			},
		},
	}
}
