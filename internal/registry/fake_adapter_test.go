package registry

import (
	"context"
	"time"

	"mcpconform/internal/protocol"
	"mcpconform/internal/transport"
)

// fakeAdapter implements protocol.Adapter with pre-scripted responses, so
// catalog cases can be exercised without a real transport or server.
type fakeAdapter struct {
	version string
	state   protocol.State
	caps    protocol.Capabilities

	tools        []protocol.Tool
	listToolsErr error

	callToolResult *protocol.CallToolResult
	callToolErr    error
	callToolFn     func(name string, args map[string]interface{}) (*protocol.CallToolResult, error)

	resources        []protocol.Resource
	listResourcesErr error

	readResourceResult []protocol.ResourceContent
	readResourceErr    error

	pingErr error

	sendBatchResult []*transport.Message
	sendBatchErr    error

	shutdownErr error
	exitErr     error

	underlying transport.Transport
}

func (f *fakeAdapter) Version() string { return f.version }

func (f *fakeAdapter) Initialize(ctx context.Context, clientName, clientVersion string) (*protocol.InitializeResult, error) {
	return &protocol.InitializeResult{ProtocolVersion: f.version, Capabilities: f.caps}, nil
}

func (f *fakeAdapter) SendInitialized(ctx context.Context) error { return nil }

func (f *fakeAdapter) State() protocol.State { return f.state }

func (f *fakeAdapter) ServerCapabilities() protocol.Capabilities { return f.caps }

func (f *fakeAdapter) ListTools(ctx context.Context) ([]protocol.Tool, error) {
	return f.tools, f.listToolsErr
}

func (f *fakeAdapter) CallTool(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error) {
	if f.callToolFn != nil {
		return f.callToolFn(name, args)
	}
	return f.callToolResult, f.callToolErr
}

func (f *fakeAdapter) ListResources(ctx context.Context) ([]protocol.Resource, error) {
	return f.resources, f.listResourcesErr
}

func (f *fakeAdapter) ReadResource(ctx context.Context, idOrURI string) ([]protocol.ResourceContent, error) {
	return f.readResourceResult, f.readResourceErr
}

func (f *fakeAdapter) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeAdapter) SendBatch(ctx context.Context, requests []protocol.BatchRequest) ([]*transport.Message, error) {
	return f.sendBatchResult, f.sendBatchErr
}

func (f *fakeAdapter) Shutdown(ctx context.Context) error { return f.shutdownErr }

func (f *fakeAdapter) Exit(ctx context.Context) error { return f.exitErr }

func (f *fakeAdapter) Underlying() transport.Transport { return f.underlying }

// fakeAsyncAdapter layers AsyncAdapter on top of a fakeAdapter.
type fakeAsyncAdapter struct {
	*fakeAdapter

	callAsyncHandle *protocol.AsyncCallHandle
	callAsyncErr    error

	getToolResult    *protocol.AsyncResult
	getToolResultErr error

	cancelErr error

	waitResult *protocol.AsyncResult
	waitErr    error
}

func (f *fakeAsyncAdapter) CallToolAsync(ctx context.Context, name string, args map[string]interface{}) (*protocol.AsyncCallHandle, error) {
	return f.callAsyncHandle, f.callAsyncErr
}

func (f *fakeAsyncAdapter) GetToolResult(ctx context.Context, id string) (*protocol.AsyncResult, error) {
	return f.getToolResult, f.getToolResultErr
}

func (f *fakeAsyncAdapter) CancelToolCall(ctx context.Context, id string) error { return f.cancelErr }

func (f *fakeAsyncAdapter) WaitForToolCompletion(ctx context.Context, id string, timeout, pollInterval time.Duration) (*protocol.AsyncResult, error) {
	return f.waitResult, f.waitErr
}

// fakeElicitAdapter layers ElicitAdapter on top of a fakeAdapter.
type fakeElicitAdapter struct {
	*fakeAdapter

	elicitResult *protocol.ElicitationResult
	elicitErr    error
}

func (f *fakeElicitAdapter) Elicit(ctx context.Context, params map[string]interface{}) (*protocol.ElicitationResult, error) {
	return f.elicitResult, f.elicitErr
}

// fakeStatusTransport implements just enough of transport.Transport (plus
// LastStatusCode, mirroring *transport.HTTP) for the authorization case.
type fakeStatusTransport struct {
	status int
}

func (f *fakeStatusTransport) Start(ctx context.Context) bool { return true }
func (f *fakeStatusTransport) Stop()                          {}
func (f *fakeStatusTransport) SendRequest(ctx context.Context, req *transport.Message) (*transport.Message, error) {
	return &transport.Message{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}, nil
}
func (f *fakeStatusTransport) SendNotification(ctx context.Context, notif *transport.Message) error {
	return nil
}
func (f *fakeStatusTransport) SendBatch(ctx context.Context, batch []*transport.Message) ([]*transport.Message, error) {
	return nil, transport.ErrBatchingUnsupported
}
func (f *fakeStatusTransport) LastStatusCode() int { return f.status }

func readyTool() protocol.Tool {
	return protocol.Tool{
		Name:        "echo",
		Description: "echoes a message",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"message": map[string]interface{}{"type": "string"}},
			"required":   []interface{}{"message"},
		},
	}
}
