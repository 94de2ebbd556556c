package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"mcpconform/internal/transport"
)

// nextID generates a fresh, session-unique JSON-RPC request id. UUIDs are
// used rather than a simple counter so batched or replayed test fixtures
// never accidentally collide across the harness's own test cases.
func nextID() string {
	return uuid.NewString()
}

func newRequest(method string, params interface{}) *transport.Message {
	return &transport.Message{
		JSONRPC: "2.0",
		ID:      nextID(),
		Method:  method,
		Params:  params,
	}
}

func newNotification(method string, params interface{}) *transport.Message {
	return &transport.Message{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	}
}

// decodeResult unmarshals msg.Result into out, first round-tripping
// through JSON since Result arrives as a generically-decoded
// interface{} (map[string]interface{}, []interface{}, or a scalar).
func decodeResult(msg *transport.Message, out interface{}) error {
	if msg.Error != nil {
		return FromMessageError(msg.Error.Code, msg.Error.Message)
	}
	if msg.Result == nil {
		return &Error{Kind: KindServerError, Message: "response carries neither result nor error"}
	}
	data, err := json.Marshal(msg.Result)
	if err != nil {
		return fmt.Errorf("re-encoding result: %w", err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}

// resultAsMap returns msg.Result as a map, or nil if it isn't one.
func resultAsMap(msg *transport.Message) map[string]interface{} {
	m, _ := msg.Result.(map[string]interface{})
	return m
}
