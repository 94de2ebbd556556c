package protocol

import (
	"context"

	"mcpconform/internal/transport"
)

// adapter20250618 adds structured tool results, elicitation, mandatory
// uri-keyed resource reads, strict ping validation, and synchronous batch
// rejection on top of the 2025-03-26 async base.
type adapter20250618 struct {
	*adapter20250326
}

func (a *adapter20250618) Initialize(ctx context.Context, clientName, clientVersion string) (*InitializeResult, error) {
	return a.core.initialize(ctx, clientName, clientVersion, normalizeCapabilities20241105)
}

// CallTool requires both content and isError to be present on the wire;
// 2025-06-18 servers that omit either are rejected before decoding, so a
// missing field is never mistaken for a zero-valued default.
func (a *adapter20250618) CallTool(ctx context.Context, name string, args map[string]interface{}) (*CallToolResult, error) {
	resp, err := a.core.callTool(ctx, name, args)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, FromMessageError(resp.Error.Code, resp.Error.Message)
	}

	raw := resultAsMap(resp)
	if raw != nil {
		if _, ok := raw["content"]; !ok {
			return nil, &Error{Kind: KindServerError, Message: "2025-06-18 tool result missing required 'content' field"}
		}
		if _, ok := raw["isError"]; !ok {
			return nil, &Error{Kind: KindServerError, Message: "2025-06-18 tool result missing required 'isError' field"}
		}
	}

	var result CallToolResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReadResource uses the 2025-06-18 `resources/read` method, keyed by uri;
// each returned content item must carry a uri and either text or blob.
func (a *adapter20250618) ReadResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	resp, err := a.transport.SendRequest(ctx, newRequest("resources/read", map[string]interface{}{"uri": uri}))
	if err != nil {
		return nil, &Error{Kind: KindTransportError, Message: err.Error()}
	}
	if resp.Error != nil {
		return nil, FromMessageError(resp.Error.Code, resp.Error.Message)
	}
	var wire struct {
		Contents []ResourceContent `json:"contents"`
	}
	if err := decodeResult(resp, &wire); err != nil {
		return nil, err
	}
	for _, c := range wire.Contents {
		if c.URI == "" {
			return nil, &Error{Kind: KindServerError, Message: "resources/read content item missing uri"}
		}
		if c.Text == "" && c.Blob == "" {
			return nil, &Error{Kind: KindServerError, Message: "resources/read content item has neither text nor blob"}
		}
	}
	return wire.Contents, nil
}

// Ping requires the response result to be exactly the empty object.
func (a *adapter20250618) Ping(ctx context.Context) error {
	resp, err := a.core.ping(ctx)
	if err != nil {
		return err
	}
	if m := resultAsMap(resp); m == nil || len(m) != 0 {
		return &Error{Kind: KindServerError, Message: "ping result on 2025-06-18 must be exactly {}"}
	}
	return nil
}

// SendBatch fails synchronously: 2025-06-18 does not support JSON-RPC
// batching, and the harness must never touch the transport to prove it.
func (a *adapter20250618) SendBatch(ctx context.Context, requests []BatchRequest) ([]*transport.Message, error) {
	return nil, ErrBatchingUnsupported
}

// Elicit sends elicitation/create and normalizes the action/content result.
func (a *adapter20250618) Elicit(ctx context.Context, params map[string]interface{}) (*ElicitationResult, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	resp, err := a.transport.SendRequest(ctx, newRequest("elicitation/create", params))
	if err != nil {
		return nil, &Error{Kind: KindTransportError, Message: err.Error()}
	}
	if resp.Error != nil {
		return nil, FromMessageError(resp.Error.Code, resp.Error.Message)
	}
	var result ElicitationResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
