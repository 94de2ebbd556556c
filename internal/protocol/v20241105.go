package protocol

import (
	"context"
	"encoding/json"

	"mcpconform/internal/transport"
)

// adapter20241105 implements the 2024-11-05 revision: boolean-shorthand
// capability normalization, inputSchema-only tool definitions, and
// id-keyed resource reads via resources/get.
type adapter20241105 struct {
	*core
}

func normalizeCapabilities20241105(raw rawCapabilities) Capabilities {
	var caps Capabilities
	if len(raw.Tools) > 0 {
		caps.Tools = &ToolsCapability{}
		var asBool bool
		if err := json.Unmarshal(raw.Tools, &asBool); err == nil {
			// "tools: true" shorthand is recorded as a non-nil, empty
			// ToolsCapability. The harness only cares that the capability
			// is present; the shorthand carries no further information.
		} else {
			var obj ToolsCapability
			_ = json.Unmarshal(raw.Tools, &obj)
			caps.Tools = &obj
		}
	}
	if len(raw.Resources) > 0 {
		var obj ResourcesCapability
		if err := json.Unmarshal(raw.Resources, &obj); err == nil {
			caps.Resources = &obj
		} else {
			caps.Resources = &ResourcesCapability{}
		}
	}
	if len(raw.Prompts) > 0 {
		var obj PromptsCapability
		if err := json.Unmarshal(raw.Prompts, &obj); err == nil {
			caps.Prompts = &obj
		} else {
			caps.Prompts = &PromptsCapability{}
		}
	}
	if len(raw.Logging) > 0 {
		caps.Logging = &LoggingCapability{}
	}
	if len(raw.Elicitation) > 0 {
		caps.Elicitation = &ElicitationCapability{}
	}
	return caps
}

func (a *adapter20241105) Initialize(ctx context.Context, clientName, clientVersion string) (*InitializeResult, error) {
	return a.core.initialize(ctx, clientName, clientVersion, normalizeCapabilities20241105)
}

func (a *adapter20241105) SendInitialized(ctx context.Context) error {
	return a.core.sendInitialized(ctx)
}

func (a *adapter20241105) ListTools(ctx context.Context) ([]Tool, error) {
	return a.core.listTools(ctx)
}

func (a *adapter20241105) CallTool(ctx context.Context, name string, args map[string]interface{}) (*CallToolResult, error) {
	resp, err := a.core.callTool(ctx, name, args)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, FromMessageError(resp.Error.Code, resp.Error.Message)
	}
	var result CallToolResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *adapter20241105) ListResources(ctx context.Context) ([]Resource, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	resp, err := a.transport.SendRequest(ctx, newRequest("resources/list", struct{}{}))
	if err != nil {
		return nil, &Error{Kind: KindTransportError, Message: err.Error()}
	}
	var wire struct {
		Resources []Resource `json:"resources"`
	}
	if err := decodeResult(resp, &wire); err != nil {
		return nil, err
	}
	return wire.Resources, nil
}

// ReadResource uses the 2024-11-05 `resources/get` method, keyed by id.
func (a *adapter20241105) ReadResource(ctx context.Context, id string) ([]ResourceContent, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	resp, err := a.transport.SendRequest(ctx, newRequest("resources/get", map[string]interface{}{"id": id}))
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
	return wire.Contents, nil
}

func (a *adapter20241105) Ping(ctx context.Context) error {
	_, err := a.core.ping(ctx)
	return err
}

func (a *adapter20241105) SendBatch(ctx context.Context, requests []BatchRequest) ([]*transport.Message, error) {
	return a.core.sendBatch(ctx, requests)
}

func (a *adapter20241105) Shutdown(ctx context.Context) error { return a.core.shutdown(ctx) }
func (a *adapter20241105) Exit(ctx context.Context) error     { return a.core.exit(ctx) }
