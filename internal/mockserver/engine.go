package mockserver

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"mcpconform/internal/protocol"
	"mcpconform/internal/transport"
)

// Variant selects a deliberately non-compliant wire behavior, so the
// harness's own registry cases can be pointed at a server that is known
// to fail a specific requirement and checked for a failing result.
type Variant string

const (
	VariantCompliant             Variant = ""
	VariantOmitCapabilities      Variant = "omit-capabilities"
	VariantWrongProtocolVersion  Variant = "wrong-protocol-version"
	VariantMissingContentField   Variant = "missing-content-field"
	VariantAllowsBatchOn20250618 Variant = "allows-batch"
	VariantPingReturnsExtra      Variant = "ping-returns-extra"
)

// Engine holds one session's worth of protocol state and dispatches a
// decoded JSON-RPC message to a response, independent of how the bytes
// were framed (stdio or HTTP).
type Engine struct {
	Revision string
	Variant  Variant
	Tools    []ToolConfig

	mu          sync.Mutex
	initialized bool

	asyncMu sync.Mutex
	async   map[string]*asyncCall
}

type asyncCall struct {
	status protocol.AsyncStatus
	result *protocol.CallToolResult
	errMsg string
}

// NewEngine constructs an Engine serving revision with the given tool
// catalog, optionally misbehaving per variant.
func NewEngine(revision string, variant Variant, tools []ToolConfig) *Engine {
	return &Engine{
		Revision: revision,
		Variant:  variant,
		Tools:    tools,
		async:    make(map[string]*asyncCall),
	}
}

// Handle dispatches one request or notification and returns the response
// message, or nil for a notification (no response is ever sent).
func (e *Engine) Handle(msg *transport.Message) *transport.Message {
	if msg.IsNotification() {
		return nil
	}
	switch msg.Method {
	case "initialize":
		return e.handleInitialize(msg)
	case "ping":
		return e.handlePing(msg)
	case "tools/list":
		return e.handleToolsList(msg)
	case "tools/call":
		return e.handleToolsCall(msg)
	case "tools/call-async":
		return e.handleToolsCallAsync(msg)
	case "tools/result":
		return e.handleToolsResult(msg)
	case "tools/cancel":
		return e.handleToolsCancel(msg)
	case "resources/list":
		return e.handleResourcesList(msg)
	case "resources/get", "resources/read":
		return e.handleResourcesRead(msg)
	case "elicitation/create":
		return e.handleElicit(msg)
	case "shutdown":
		return e.reply(msg, map[string]interface{}{}, nil)
	default:
		return e.reply(msg, nil, &transport.MessageError{Code: -32601, Message: fmt.Sprintf("method not found: %s", msg.Method)})
	}
}

func (e *Engine) reply(req *transport.Message, result interface{}, rpcErr *transport.MessageError) *transport.Message {
	return &transport.Message{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
}

func (e *Engine) handleInitialize(req *transport.Message) *transport.Message {
	e.mu.Lock()
	e.initialized = true
	e.mu.Unlock()

	protocolVersion := e.Revision
	if e.Variant == VariantWrongProtocolVersion {
		protocolVersion = "1999-01-01"
	}

	result := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"serverInfo":      map[string]interface{}{"name": "mcpconform-mockserver", "version": "0.1.0"},
	}
	if e.Variant != VariantOmitCapabilities {
		caps := map[string]interface{}{
			"tools": map[string]interface{}{},
		}
		if e.Revision >= protocol.Version20250326 {
			caps["tools"].(map[string]interface{})["asyncSupported"] = true
		}
		if e.Revision == protocol.Version20250618 {
			caps["elicitation"] = map[string]interface{}{}
		}
		caps["resources"] = map[string]interface{}{}
		caps["logging"] = map[string]interface{}{}
		result["capabilities"] = caps
	}
	return e.reply(req, result, nil)
}

func (e *Engine) handlePing(req *transport.Message) *transport.Message {
	if e.Variant == VariantPingReturnsExtra {
		return e.reply(req, map[string]interface{}{"unexpected": true}, nil)
	}
	return e.reply(req, map[string]interface{}{}, nil)
}

func (e *Engine) handleToolsList(req *transport.Message) *transport.Message {
	tools := make([]map[string]interface{}, 0, len(e.Tools))
	for _, t := range e.Tools {
		tools = append(tools, map[string]interface{}{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": t.InputSchema,
		})
	}
	return e.reply(req, map[string]interface{}{"tools": tools}, nil)
}

func (e *Engine) findTool(name string) (ToolConfig, bool) {
	for _, t := range e.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolConfig{}, false
}

func callParams(req *transport.Message) (name string, args map[string]interface{}, ok bool) {
	m, isMap := req.Params.(map[string]interface{})
	if !isMap {
		return "", nil, false
	}
	name, _ = m["name"].(string)
	args, _ = m["arguments"].(map[string]interface{})
	return name, args, name != ""
}

// runTool invokes the fixture handler and converts its outcome into a
// *mcp.CallToolResult using the same content-construction helpers the
// teacher's own mock tool handler builds its responses with, then
// re-marshals that result into the revision's wire shape.
func (e *Engine) runTool(cfg ToolConfig, args map[string]interface{}) map[string]interface{} {
	value, errMsg := NewToolHandler(cfg).HandleCall(args)

	var mcpResult *mcp.CallToolResult
	if errMsg != "" {
		mcpResult = mcp.NewToolResultError(errMsg)
	} else {
		text := fmt.Sprintf("%v", value)
		mcpResult = mcp.NewToolResultText(text)
	}

	out := map[string]interface{}{
		"content": mcpResult.Content,
		"isError": mcpResult.IsError,
	}
	if e.Variant == VariantMissingContentField {
		delete(out, "content")
	}
	return out
}

func (e *Engine) handleToolsCall(req *transport.Message) *transport.Message {
	name, args, ok := callParams(req)
	if !ok {
		return e.reply(req, nil, &transport.MessageError{Code: -32602, Message: "missing required field 'name'"})
	}
	cfg, found := e.findTool(name)
	if !found {
		return e.reply(req, nil, &transport.MessageError{Code: -32602, Message: fmt.Sprintf("unknown tool %q", name)})
	}
	if missing := missingRequired(cfg.InputSchema, args); missing != "" {
		return e.reply(req, nil, &transport.MessageError{Code: -32602, Message: fmt.Sprintf("missing required argument %q for tool %q", missing, name)})
	}
	return e.reply(req, e.runTool(cfg, args), nil)
}

func missingRequired(schema map[string]interface{}, args map[string]interface{}) string {
	required, _ := schema["required"].([]interface{})
	for _, r := range required {
		key, _ := r.(string)
		if key == "" {
			continue
		}
		if _, present := args[key]; !present {
			return key
		}
	}
	return ""
}

func (e *Engine) handleToolsCallAsync(req *transport.Message) *transport.Message {
	name, args, ok := callParams(req)
	if !ok {
		return e.reply(req, nil, &transport.MessageError{Code: -32602, Message: "missing required field 'name'"})
	}
	cfg, found := e.findTool(name)
	if !found {
		return e.reply(req, nil, &transport.MessageError{Code: -32602, Message: fmt.Sprintf("unknown tool %q", name)})
	}

	id := uuid.NewString()
	call := &asyncCall{status: protocol.AsyncRunning}
	e.asyncMu.Lock()
	e.async[id] = call
	e.asyncMu.Unlock()

	go func() {
		value, errMsg := NewToolHandler(cfg).HandleCall(args)
		result := &protocol.CallToolResult{IsError: errMsg != ""}
		if errMsg != "" {
			result.Content = []protocol.Content{{Type: "text", Text: errMsg}}
		} else {
			result.Content = []protocol.Content{{Type: "text", Text: fmt.Sprintf("%v", value)}}
		}

		e.asyncMu.Lock()
		defer e.asyncMu.Unlock()
		if call.status == protocol.AsyncCancelled {
			return
		}
		call.status = protocol.AsyncCompleted
		call.result = result
	}()

	return e.reply(req, map[string]interface{}{"id": id}, nil)
}

func (e *Engine) handleToolsResult(req *transport.Message) *transport.Message {
	m, _ := req.Params.(map[string]interface{})
	id, _ := m["id"].(string)
	e.asyncMu.Lock()
	call, ok := e.async[id]
	e.asyncMu.Unlock()
	if !ok {
		return e.reply(req, nil, &transport.MessageError{Code: -32602, Message: fmt.Sprintf("unknown async call %q", id)})
	}
	e.asyncMu.Lock()
	defer e.asyncMu.Unlock()
	return e.reply(req, map[string]interface{}{
		"status": string(call.status),
		"result": call.result,
		"error":  call.errMsg,
	}, nil)
}

func (e *Engine) handleToolsCancel(req *transport.Message) *transport.Message {
	m, _ := req.Params.(map[string]interface{})
	id, _ := m["id"].(string)
	e.asyncMu.Lock()
	defer e.asyncMu.Unlock()
	call, ok := e.async[id]
	if !ok {
		return e.reply(req, nil, &transport.MessageError{Code: -32602, Message: fmt.Sprintf("unknown async call %q", id)})
	}
	if !call.status.IsTerminal() {
		call.status = protocol.AsyncCancelled
	}
	return e.reply(req, map[string]interface{}{}, nil)
}

func (e *Engine) handleResourcesList(req *transport.Message) *transport.Message {
	return e.reply(req, map[string]interface{}{
		"resources": []map[string]interface{}{
			{"uri": "mock://fixtures/readme", "id": "readme", "name": "readme"},
		},
	}, nil)
}

func (e *Engine) handleResourcesRead(req *transport.Message) *transport.Message {
	return e.reply(req, map[string]interface{}{
		"contents": []map[string]interface{}{
			{"uri": "mock://fixtures/readme", "text": "mock resource content"},
		},
	}, nil)
}

func (e *Engine) handleElicit(req *transport.Message) *transport.Message {
	return e.reply(req, map[string]interface{}{
		"action":  string(protocol.ElicitAccept),
		"content": map[string]interface{}{"confirmed": true},
	}, nil)
}

// RejectsBatches reports whether this revision+variant combination must
// fail a batch request synchronously at the transport layer, mirroring
// the protocol adapter's SendBatch contract for 2025-06-18.
func (e *Engine) RejectsBatches() bool {
	if e.Variant == VariantAllowsBatchOn20250618 {
		return false
	}
	return e.Revision == protocol.Version20250618
}
