package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"mcpconform/internal/protocol"
)

func TestSpecCoverage_JSONRPCFormat(t *testing.T) {
	c := findCase(t, SpecCoverageCases(), "test_spec_jsonrpc_format")

	ok, _ := c.Fn(context.Background(), &fakeAdapter{})
	assert.True(t, ok)

	ok, _ = c.Fn(context.Background(), &fakeAdapter{pingErr: assert.AnError})
	assert.False(t, ok)
}

func TestSpecCoverage_ErrorHandling_RequiresMappedProtocolError(t *testing.T) {
	c := findCase(t, SpecCoverageCases(), "test_spec_error_handling")

	ok, msg := c.Fn(context.Background(), &fakeAdapter{callToolErr: &protocol.Error{Kind: protocol.KindMethodNotFound}})
	assert.True(t, ok, msg)

	ok, msg = c.Fn(context.Background(), &fakeAdapter{})
	assert.False(t, ok, msg)

	ok, msg = c.Fn(context.Background(), &fakeAdapter{callToolErr: assert.AnError})
	assert.False(t, ok, msg)
}

func TestSpecCoverage_BatchSupport_SkipsOn20250618(t *testing.T) {
	c := findCase(t, SpecCoverageCases(), "test_spec_batch_support")

	ok, msg := c.Fn(context.Background(), &fakeAdapter{version: protocol.Version20250618})
	assert.True(t, ok, msg)

	ok, msg = c.Fn(context.Background(), &fakeAdapter{version: protocol.Version20241105, sendBatchErr: protocol.ErrBatchingUnsupported})
	assert.True(t, ok, msg)

	ok, msg = c.Fn(context.Background(), &fakeAdapter{version: protocol.Version20241105})
	assert.True(t, ok, msg)
}

func TestSpecCoverage_Authorization_SkipsWithoutTransportAccessor(t *testing.T) {
	c := findCase(t, SpecCoverageCases(), "test_spec_authorization")

	ok, msg := c.Fn(context.Background(), &minimalAdapter{})
	assert.True(t, ok, msg)
}

func TestSpecCoverage_Authorization_ObservesChallengeStatus(t *testing.T) {
	c := findCase(t, SpecCoverageCases(), "test_spec_authorization")

	ok, msg := c.Fn(context.Background(), &fakeAdapter{underlying: &fakeStatusTransport{status: 401}})
	assert.True(t, ok, msg)
	assert.Contains(t, msg, "401")

	ok, msg = c.Fn(context.Background(), &fakeAdapter{underlying: &fakeStatusTransport{status: 200}})
	assert.True(t, ok, msg)
}

func TestSpecCoverage_LoggingCapability(t *testing.T) {
	c := findCase(t, SpecCoverageCases(), "test_spec_logging_capability")

	ok, msg := c.Fn(context.Background(), &fakeAdapter{})
	assert.True(t, ok, msg)

	ok, msg = c.Fn(context.Background(), &fakeAdapter{caps: protocol.Capabilities{Logging: &protocol.LoggingCapability{}}})
	assert.True(t, ok, msg)
}
