package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpconform/internal/protocol"
)

func findCase(t *testing.T, cases []Case, name string) Case {
	t.Helper()
	for _, c := range cases {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "case not found", "%s", name)
	return Case{}
}

func TestLifecycle_InitializationSucceeded(t *testing.T) {
	c := findCase(t, LifecycleCases(), "test_initialization_succeeded")

	ok, msg := c.Fn(context.Background(), &fakeAdapter{state: protocol.StateReady})
	assert.True(t, ok, msg)

	ok, _ = c.Fn(context.Background(), &fakeAdapter{state: protocol.StateInitializing})
	assert.False(t, ok)
}

func TestLifecycle_CapabilitiesDeclared(t *testing.T) {
	c := findCase(t, LifecycleCases(), "test_capabilities_declared")

	ok, msg := c.Fn(context.Background(), &fakeAdapter{caps: protocol.Capabilities{Tools: &protocol.ToolsCapability{}}})
	assert.True(t, ok, msg)

	ok, msg = c.Fn(context.Background(), &fakeAdapter{})
	assert.False(t, ok, msg)
}

func TestLifecycle_VersionNegotiated(t *testing.T) {
	c := findCase(t, LifecycleCases(), "test_version_negotiated")

	ok, msg := c.Fn(context.Background(), &fakeAdapter{state: protocol.StateReady, version: protocol.Version20250618})
	assert.True(t, ok)
	assert.Contains(t, msg, protocol.Version20250618)
}

func TestLifecycle_InitializationOrderDiscipline_Idempotent(t *testing.T) {
	c := findCase(t, LifecycleCases(), "test_initialization_order_discipline")

	a := &fakeAdapter{state: protocol.StateReady, caps: protocol.Capabilities{Tools: &protocol.ToolsCapability{}}}
	ok, msg := c.Fn(context.Background(), a)
	assert.True(t, ok, msg)
}

func TestLifecycle_ShutdownSequence(t *testing.T) {
	c := findCase(t, LifecycleCases(), "test_shutdown_sequence")

	ok, msg := c.Fn(context.Background(), &fakeAdapter{})
	assert.True(t, ok, msg)

	ok, msg = c.Fn(context.Background(), &fakeAdapter{shutdownErr: assert.AnError})
	assert.False(t, ok, msg)
}
