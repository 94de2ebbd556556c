package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpconform/internal/protocol"
	"mcpconform/internal/registry"
)

// initOnlyServer is a stdio server script that answers the first request
// (initialize) with an empty result under that request's id and then goes
// quiet, so the runner reaches the test function before any timeout.
const initOnlyServer = `read -r line; id=$(printf '%s' "$line" | sed 's/.*"id":"\([^"]*\)".*/\1/'); printf '{"jsonrpc":"2.0","id":"%s","result":{}}\n' "$id"; sleep 5`

func TestAggregate_Add_ClassifiesExactlyOneBucket(t *testing.T) {
	agg := &Aggregate{}
	agg.Add(Result{Name: "a", Passed: true})
	agg.Add(Result{Name: "b", Passed: false})
	agg.Add(Result{Name: "c", Skipped: true})
	agg.Add(Result{Name: "d", Timeout: true, Passed: false})

	assert.Equal(t, 4, agg.Total)
	assert.Equal(t, 1, agg.Passed)
	assert.Equal(t, 2, agg.Failed)
	assert.Equal(t, 1, agg.Skipped)
	assert.Equal(t, 1, agg.Timeouts)
}

func TestAggregate_CompliancePercentage_ExcludesSkipped(t *testing.T) {
	agg := &Aggregate{}
	agg.Add(Result{Name: "a", Passed: true})
	agg.Add(Result{Name: "b", Passed: false})
	agg.Add(Result{Name: "c", Skipped: true})

	assert.InDelta(t, 50.0, agg.CompliancePercentage(), 0.001)
}

func TestAggregate_CompliancePercentage_ZeroWhenAllSkipped(t *testing.T) {
	agg := &Aggregate{}
	agg.Add(Result{Name: "a", Skipped: true})
	assert.Equal(t, 0.0, agg.CompliancePercentage())
}

func TestGenerateTestPrefix_StableAcrossCalls(t *testing.T) {
	p1 := GenerateTestPrefix("test_tool_echo")
	p2 := GenerateTestPrefix("test_tool_echo")
	assert.Equal(t, p1, p2)
	assert.NotEqual(t, p1, GenerateTestPrefix("test_tool_lookup"))
}

func TestNew_FillsTimeoutDefaults(t *testing.T) {
	r := New(Config{})
	assert.Equal(t, defaultTestTimeout, r.cfg.TestTimeout)
	assert.Equal(t, defaultToolsTimeout, r.cfg.ToolsTimeout)
	assert.NotNil(t, r.cfg.SkipTests)
	assert.NotNil(t, r.cfg.Logger)
}

func TestRun_ShutdownDisabledCasesAreSyntheticallySkipped(t *testing.T) {
	cfg := Config{
		TransportKind:   TransportStdio,
		ServerCommand:   "cat",
		ProtocolVersion: protocol.Version20241105,
		SkipShutdown:    true,
		TestTimeout:     2 * time.Second,
	}
	r := New(cfg)

	cases := []registry.Case{
		{Name: "test_lifecycle_shutdown_sequence", Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
			t.Fatal("shutdown-named case must be skipped before Fn ever runs")
			return false, ""
		}},
	}

	agg, err := r.Run(context.Background(), cases)
	require.NoError(t, err)
	require.Len(t, agg.Results, 1)
	assert.True(t, agg.Results[0].Skipped)
	assert.True(t, agg.Results[0].Passed)
}

func TestRun_ToolTestTimeoutIsNonCriticalPass(t *testing.T) {
	cfg := Config{
		TransportKind:   TransportStdio,
		ServerCommand:   "sh",
		ServerArgs:      []string{"-c", initOnlyServer},
		ProtocolVersion: protocol.Version20241105,
		TestTimeout:     3 * time.Second,
		ToolsTimeout:    200 * time.Millisecond,
		SkipShutdown:    true,
	}
	r := New(cfg)

	cases := []registry.Case{
		{Name: "test_tool_slow", Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
			<-ctx.Done()
			return false, "never reached"
		}},
	}

	agg, err := r.Run(context.Background(), cases)
	require.NoError(t, err)
	require.Len(t, agg.Results, 1)
	res := agg.Results[0]
	assert.True(t, res.Timeout)
	assert.True(t, res.NonCritical)
	assert.True(t, res.Passed, "tool-test timeouts are reclassified as a non-critical pass")
}

func TestRun_NonToolTestTimeoutIsFailure(t *testing.T) {
	cfg := Config{
		TransportKind:   TransportStdio,
		ServerCommand:   "sh",
		ServerArgs:      []string{"-c", initOnlyServer},
		ProtocolVersion: protocol.Version20241105,
		TestTimeout:     200 * time.Millisecond,
		SkipShutdown:    true,
	}
	r := New(cfg)

	cases := []registry.Case{
		{Name: "test_lifecycle_something", Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
			<-ctx.Done()
			return false, "never reached"
		}},
	}

	agg, err := r.Run(context.Background(), cases)
	require.NoError(t, err)
	require.Len(t, agg.Results, 1)
	res := agg.Results[0]
	assert.True(t, res.Timeout)
	assert.False(t, res.Passed)
	assert.False(t, res.NonCritical)
}

func TestRun_RunsNonToolCasesBeforeToolCases(t *testing.T) {
	cfg := Config{
		TransportKind:   TransportStdio,
		ServerCommand:   "sh",
		ServerArgs:      []string{"-c", initOnlyServer},
		ProtocolVersion: protocol.Version20241105,
		SkipShutdown:    true,
		TestTimeout:     2 * time.Second,
		ToolsTimeout:    2 * time.Second,
	}
	r := New(cfg)

	var order []string
	cases := []registry.Case{
		{Name: "test_tool_b", Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
			order = append(order, "test_tool_b")
			return true, "ok"
		}},
		{Name: "test_lifecycle_a", Fn: func(ctx context.Context, a protocol.Adapter) (bool, string) {
			order = append(order, "test_lifecycle_a")
			return true, "ok"
		}},
	}

	_, err := r.Run(context.Background(), cases)
	require.NoError(t, err)
	assert.Equal(t, []string{"test_lifecycle_a", "test_tool_b"}, order)
}
