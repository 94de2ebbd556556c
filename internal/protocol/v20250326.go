package protocol

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is the poll-interval WaitForToolCompletion falls
// back to when the caller passes zero, per spec §9's "bounded linear
// backoff, constant poll_interval, default 0.5s" design note.
const DefaultPollInterval = 500 * time.Millisecond

// adapter20250326 adds asynchronous tool calls on top of the 2024-11-05
// base: CallToolAsync, GetToolResult, CancelToolCall, and the
// poll-until-terminal convenience WaitForToolCompletion. The pending-async
// map lives here, mutated only by the owning test's goroutine.
type adapter20250326 struct {
	*adapter20241105

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

// CallToolAsync starts an asynchronous tool invocation via tools/call-async.
func (a *adapter20250326) CallToolAsync(ctx context.Context, name string, args map[string]interface{}) (*AsyncCallHandle, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	resp, err := a.transport.SendRequest(ctx, newRequest("tools/call-async", params))
	if err != nil {
		return nil, &Error{Kind: KindTransportError, Message: err.Error()}
	}
	if resp.Error != nil {
		return nil, FromMessageError(resp.Error.Code, resp.Error.Message)
	}
	var handle AsyncCallHandle
	if err := decodeResult(resp, &handle); err != nil {
		return nil, err
	}

	a.pendingMu.Lock()
	a.pending[handle.ID] = struct{}{}
	a.pendingMu.Unlock()

	return &handle, nil
}

// GetToolResult polls tools/result for id's current status.
func (a *adapter20250326) GetToolResult(ctx context.Context, id string) (*AsyncResult, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	resp, err := a.transport.SendRequest(ctx, newRequest("tools/result", map[string]interface{}{"id": id}))
	if err != nil {
		return nil, &Error{Kind: KindTransportError, Message: err.Error()}
	}
	if resp.Error != nil {
		return nil, FromMessageError(resp.Error.Code, resp.Error.Message)
	}
	var result AsyncResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	if result.Status.IsTerminal() {
		a.pendingMu.Lock()
		delete(a.pending, id)
		a.pendingMu.Unlock()
	}
	return &result, nil
}

// CancelToolCall requests server-side cancellation via tools/cancel.
func (a *adapter20250326) CancelToolCall(ctx context.Context, id string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	resp, err := a.transport.SendRequest(ctx, newRequest("tools/cancel", map[string]interface{}{"id": id}))
	if err != nil {
		return &Error{Kind: KindTransportError, Message: err.Error()}
	}
	if resp.Error != nil {
		return FromMessageError(resp.Error.Code, resp.Error.Message)
	}
	return nil
}

// WaitForToolCompletion polls GetToolResult every pollInterval (defaulting
// to DefaultPollInterval) until id reaches a terminal status or timeout
// elapses, whichever comes first.
func (a *adapter20250326) WaitForToolCompletion(ctx context.Context, id string, timeout, pollInterval time.Duration) (*AsyncResult, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		result, err := a.GetToolResult(ctx, id)
		if err == nil && result.Status.IsTerminal() {
			return result, nil
		}
		if err != nil {
			if pe, ok := AsProtocolError(err); ok && pe.Kind != KindTransportError {
				return nil, err
			}
		}

		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// HasPendingAsyncCalls reports whether any async call has not yet reached
// a terminal status, used by tests and by cleanup paths.
func (a *adapter20250326) HasPendingAsyncCalls() bool {
	a.pendingMu.Lock()
	defer a.pendingMu.Unlock()
	return len(a.pending) > 0
}
