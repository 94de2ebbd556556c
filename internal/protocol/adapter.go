package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"mcpconform/internal/transport"
)

// Versions supported by this harness.
const (
	Version20241105 = "2024-11-05"
	Version20250326 = "2025-03-26"
	Version20250618 = "2025-06-18"
)

// Adapter maps high-level protocol operations onto JSON-RPC messages for a
// specific protocol revision and enforces the revision's lifecycle and
// response-validation rules. Version-specific capabilities (async tools,
// elicitation, batch rejection) are exposed via the narrower AsyncAdapter
// and ElicitAdapter interfaces — callers type-assert to reach them, per
// the "additive mixins" design in spec §9.
type Adapter interface {
	// Version returns the protocol revision this adapter claims.
	Version() string

	// Initialize performs the initialize handshake. Calling it again once
	// READY is a no-op that returns the cached result (idempotent).
	Initialize(ctx context.Context, clientName, clientVersion string) (*InitializeResult, error)

	// SendInitialized sends the initialized notification, completing the
	// INITIALIZING -> READY transition.
	SendInitialized(ctx context.Context) error

	// State returns the adapter's current lifecycle state.
	State() State

	// ServerCapabilities returns the capabilities captured at Initialize time.
	ServerCapabilities() Capabilities

	ListTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*CallToolResult, error)
	ListResources(ctx context.Context) ([]Resource, error)
	ReadResource(ctx context.Context, idOrURI string) ([]ResourceContent, error)
	Ping(ctx context.Context) error

	// SendBatch probes a 2-or-more message batch. On 2025-06-18 this must
	// fail synchronously with ErrBatchingUnsupported, without touching
	// the transport.
	SendBatch(ctx context.Context, requests []BatchRequest) ([]*transport.Message, error)

	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error
}

// BatchRequest is one element of a batch probe.
type BatchRequest struct {
	Method string
	Params interface{}
}

// AsyncAdapter is implemented by 2025-03-26+ adapters.
type AsyncAdapter interface {
	Adapter
	CallToolAsync(ctx context.Context, name string, args map[string]interface{}) (*AsyncCallHandle, error)
	GetToolResult(ctx context.Context, id string) (*AsyncResult, error)
	CancelToolCall(ctx context.Context, id string) error
	WaitForToolCompletion(ctx context.Context, id string, timeout, pollInterval time.Duration) (*AsyncResult, error)
}

// ElicitAdapter is implemented by 2025-06-18 adapters.
type ElicitAdapter interface {
	Adapter
	Elicit(ctx context.Context, params map[string]interface{}) (*ElicitationResult, error)
}

// TransportAccessor is implemented by every adapter (via the embedded
// core) and lets transport-specific test cases reach past the protocol
// layer when a requirement is about framing or session mechanics rather
// than JSON-RPC semantics.
type TransportAccessor interface {
	Underlying() transport.Transport
}

// NewAdapter builds the adapter matching version, bound to t.
func NewAdapter(version string, t transport.Transport) (Adapter, error) {
	base := &core{transport: t, claimedVersion: version, state: StateFresh}
	switch version {
	case Version20241105:
		return &adapter20241105{core: base}, nil
	case Version20250326:
		return &adapter20250326{
			adapter20241105: &adapter20241105{core: base},
			pending:         make(map[string]struct{}),
		}, nil
	case Version20250618:
		return &adapter20250618{
			adapter20250326: &adapter20250326{
				adapter20241105: &adapter20241105{core: base},
				pending:         make(map[string]struct{}),
			},
		}, nil
	default:
		return nil, fmt.Errorf("protocol: unsupported version %q", version)
	}
}

// core holds the fields and the revision-agnostic operations (initialize,
// tools/list, tools/call, shutdown, exit) common to every adapter. Each
// version wraps core and overrides exactly the operations spec.md §4.2
// calls out as revision-specific.
type core struct {
	transport      transport.Transport
	claimedVersion string

	mu           sync.Mutex
	state        State
	capabilities Capabilities
	serverInfo   ServerInfo
	initResult   *InitializeResult
}

func (c *core) Version() string { return c.claimedVersion }

func (c *core) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *core) ServerCapabilities() Capabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capabilities
}

// Underlying exposes the bound transport for tests that must inspect
// transport-specific behavior (HTTP session headers, stdio diagnostics)
// rather than protocol-level state. Satisfies TransportAccessor.
func (c *core) Underlying() transport.Transport { return c.transport }

func (c *core) requireReady() error {
	if c.State() != StateReady {
		return ErrNotInitialized
	}
	return nil
}

type clientCapabilities struct{}

type initializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    clientCapabilities `json:"capabilities"`
	ClientInfo      map[string]string  `json:"clientInfo"`
}

// rawCapabilities is the wire shape that tolerates 2024-11-05's boolean
// shorthand (`"tools": true`) as well as the structured object shape used
// by every revision including 2024-11-05 itself in practice.
type rawCapabilities struct {
	Tools       json.RawMessage `json:"tools,omitempty"`
	Resources   json.RawMessage `json:"resources,omitempty"`
	Prompts     json.RawMessage `json:"prompts,omitempty"`
	Logging     json.RawMessage `json:"logging,omitempty"`
	Elicitation json.RawMessage `json:"elicitation,omitempty"`
}

type initializeWireResult struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    rawCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo      `json:"serverInfo"`
}

func (c *core) initialize(ctx context.Context, clientName, clientVersion string, normalize func(rawCapabilities) Capabilities) (*InitializeResult, error) {
	c.mu.Lock()
	if c.state == StateReady {
		cached := c.initResult
		c.mu.Unlock()
		return cached, nil
	}
	c.state = StateInitializing
	c.mu.Unlock()

	req := newRequest("initialize", initializeParams{
		ProtocolVersion: c.claimedVersion,
		ClientInfo:      map[string]string{"name": clientName, "version": clientVersion},
	})

	resp, err := c.transport.SendRequest(ctx, req)
	if err != nil {
		return nil, &Error{Kind: KindInitializationFail, Message: err.Error()}
	}
	if resp.Error != nil {
		return nil, FromMessageError(resp.Error.Code, resp.Error.Message)
	}
	if resp.Result == nil {
		return nil, &Error{Kind: KindInitializationFail, Message: "initialize response missing result"}
	}

	var wire initializeWireResult
	if err := decodeResult(resp, &wire); err != nil {
		return nil, &Error{Kind: KindInitializationFail, Message: err.Error()}
	}

	if wire.ProtocolVersion != "" && wire.ProtocolVersion != c.claimedVersion {
		return nil, &Error{
			Kind:    KindInitializationFail,
			Message: fmt.Sprintf("server negotiated protocolVersion %q but client claimed %q", wire.ProtocolVersion, c.claimedVersion),
		}
	}

	caps := normalize(wire.Capabilities)

	result := &InitializeResult{
		ProtocolVersion: wire.ProtocolVersion,
		Capabilities:    caps,
		ServerInfo:      wire.ServerInfo,
	}

	c.mu.Lock()
	c.capabilities = caps
	c.serverInfo = wire.ServerInfo
	c.initResult = result
	c.mu.Unlock()

	return result, nil
}

func (c *core) sendInitialized(ctx context.Context) error {
	if c.State() != StateInitializing {
		// Tolerate being called when already READY; nothing to do.
		if c.State() == StateReady {
			return nil
		}
		return &Error{Kind: KindInitializationFail, Message: "initialized sent before initialize completed"}
	}
	if err := c.transport.SendNotification(ctx, newNotification("initialized", struct{}{})); err != nil {
		return &Error{Kind: KindInitializationFail, Message: err.Error()}
	}
	c.mu.Lock()
	c.state = StateReady
	c.mu.Unlock()
	return nil
}

func (c *core) listTools(ctx context.Context) ([]Tool, error) {
	if err := c.requireReady(); err != nil {
		return nil, err
	}
	resp, err := c.transport.SendRequest(ctx, newRequest("tools/list", struct{}{}))
	if err != nil {
		return nil, &Error{Kind: KindTransportError, Message: err.Error()}
	}
	var wire struct {
		Tools []Tool `json:"tools"`
	}
	if err := decodeResult(resp, &wire); err != nil {
		return nil, err
	}
	return wire.Tools, nil
}

func (c *core) callTool(ctx context.Context, name string, args map[string]interface{}) (*transport.Message, error) {
	if err := c.requireReady(); err != nil {
		return nil, err
	}
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	resp, err := c.transport.SendRequest(ctx, newRequest("tools/call", params))
	if err != nil {
		return nil, &Error{Kind: KindTransportError, Message: err.Error()}
	}
	return resp, nil
}

func (c *core) ping(ctx context.Context) (*transport.Message, error) {
	if err := c.requireReady(); err != nil {
		return nil, err
	}
	resp, err := c.transport.SendRequest(ctx, newRequest("ping", struct{}{}))
	if err != nil {
		return nil, &Error{Kind: KindTransportError, Message: err.Error()}
	}
	if resp.Error != nil {
		return nil, FromMessageError(resp.Error.Code, resp.Error.Message)
	}
	return resp, nil
}

func (c *core) shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateShuttingDown
	c.mu.Unlock()

	resp, err := c.transport.SendRequest(ctx, newRequest("shutdown", struct{}{}))
	if err != nil {
		return &Error{Kind: KindShutdownError, Message: err.Error()}
	}
	if resp.Error != nil {
		return &Error{Kind: KindShutdownError, Message: resp.Error.Message}
	}
	return nil
}

func (c *core) exit(ctx context.Context) error {
	// Tolerant of send errors: the peer may already be gone.
	_ = c.transport.SendNotification(ctx, newNotification("exit", struct{}{}))
	c.mu.Lock()
	c.state = StateExited
	c.mu.Unlock()
	return nil
}

func (c *core) sendBatch(ctx context.Context, requests []BatchRequest) ([]*transport.Message, error) {
	msgs := make([]*transport.Message, 0, len(requests))
	for _, r := range requests {
		msgs = append(msgs, newRequest(r.Method, r.Params))
	}
	return c.transport.SendBatch(ctx, msgs)
}
