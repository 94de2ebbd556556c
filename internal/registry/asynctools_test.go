package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"mcpconform/internal/protocol"
)

func TestAsyncTools_Advertised_TolerantEitherWay(t *testing.T) {
	c := findCase(t, AsyncToolCases(), "test_tools_async_advertised")

	ok, msg := c.Fn(context.Background(), &fakeAdapter{})
	assert.True(t, ok, msg)

	ok, msg = c.Fn(context.Background(), &fakeAdapter{caps: protocol.Capabilities{Tools: &protocol.ToolsCapability{AsyncSupported: true}}})
	assert.True(t, ok, msg)
}

func TestAsyncTools_CallAndResult_RequiresAsyncAdapter(t *testing.T) {
	c := findCase(t, AsyncToolCases(), "test_tool_async_call_and_result")

	ok, msg := c.Fn(context.Background(), &fakeAdapter{tools: []protocol.Tool{readyTool()}})
	assert.False(t, ok, msg)
}

func TestAsyncTools_CallAndResult_ReachesTerminalStatus(t *testing.T) {
	c := findCase(t, AsyncToolCases(), "test_tool_async_call_and_result")

	base := &fakeAdapter{tools: []protocol.Tool{readyTool()}}
	a := &fakeAsyncAdapter{
		fakeAdapter:     base,
		callAsyncHandle: &protocol.AsyncCallHandle{ID: "call-1"},
		waitResult:      &protocol.AsyncResult{Status: protocol.AsyncCompleted},
	}
	ok, msg := c.Fn(context.Background(), a)
	assert.True(t, ok, msg)
}

func TestAsyncTools_CallAndResult_EmptyHandleIDFails(t *testing.T) {
	c := findCase(t, AsyncToolCases(), "test_tool_async_call_and_result")

	a := &fakeAsyncAdapter{
		fakeAdapter:     &fakeAdapter{tools: []protocol.Tool{readyTool()}},
		callAsyncHandle: &protocol.AsyncCallHandle{},
	}
	ok, msg := c.Fn(context.Background(), a)
	assert.False(t, ok, msg)
}

func TestAsyncTools_CallAndResult_NoToolsSkipsInSubstance(t *testing.T) {
	c := findCase(t, AsyncToolCases(), "test_tool_async_call_and_result")

	a := &fakeAsyncAdapter{fakeAdapter: &fakeAdapter{}}
	ok, msg := c.Fn(context.Background(), a)
	assert.True(t, ok, msg)
}

func TestAsyncTools_Cancellation_ReachesCancelledOrError(t *testing.T) {
	c := findCase(t, AsyncToolCases(), "test_tool_async_cancellation")

	a := &fakeAsyncAdapter{
		fakeAdapter:     &fakeAdapter{tools: []protocol.Tool{readyTool()}},
		callAsyncHandle: &protocol.AsyncCallHandle{ID: "call-2"},
		getToolResult:   &protocol.AsyncResult{Status: protocol.AsyncCancelled},
	}
	ok, msg := c.Fn(context.Background(), a)
	assert.True(t, ok, msg)
}

func TestAsyncTools_Cancellation_UnexpectedStatusFails(t *testing.T) {
	c := findCase(t, AsyncToolCases(), "test_tool_async_cancellation")

	a := &fakeAsyncAdapter{
		fakeAdapter:     &fakeAdapter{tools: []protocol.Tool{readyTool()}},
		callAsyncHandle: &protocol.AsyncCallHandle{ID: "call-3"},
		getToolResult:   &protocol.AsyncResult{Status: protocol.AsyncRunning},
	}
	ok, msg := c.Fn(context.Background(), a)
	assert.False(t, ok, msg)
}
