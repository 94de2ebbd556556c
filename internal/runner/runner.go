// Package runner orchestrates one test case at a time: fresh transport,
// fresh adapter, initialization handshake, bounded test invocation,
// conditional shutdown, and unconditional cleanup, aggregating results as
// it goes. No two test cases ever share a transport or server process.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mcpconform/internal/protocol"
	"mcpconform/internal/registry"
	"mcpconform/internal/transport"
)

const (
	defaultTestTimeout  = 30 * time.Second
	defaultToolsTimeout = 30 * time.Second
)

// Runner executes a filtered list of registry.Case against one server
// under test, per Config.
type Runner struct {
	cfg Config
}

// New returns a Runner bound to cfg, filling in documented defaults for
// zero-valued fields.
func New(cfg Config) *Runner {
	if cfg.TestTimeout <= 0 {
		cfg.TestTimeout = defaultTestTimeout
	}
	if cfg.ToolsTimeout <= 0 {
		cfg.ToolsTimeout = defaultToolsTimeout
	}
	if cfg.SkipTests == nil {
		cfg.SkipTests = map[string]bool{}
	}
	if cfg.Logger == (Logger{}) {
		cfg.Logger = NewLogger("runner")
	}
	return &Runner{cfg: cfg}
}

// isShutdownDisabledCase reports whether name belongs to the shutdown-
// disabled set: tests whose own subject is the shutdown sequence, which
// must be synthetically skipped (not merely have shutdown suppressed)
// when shutdown is disabled for the run.
func isShutdownDisabledCase(name string) bool {
	return strings.Contains(name, "shutdown")
}

// Run executes cases sequentially in two phases — non-tool tests at
// TestTimeout, then tool tests at ToolsTimeout — and returns the
// aggregate. ctx cancellation (operator interrupt) stops the in-flight
// test's transport and returns the partial aggregate together with
// ctx.Err().
func (r *Runner) Run(ctx context.Context, cases []registry.Case) (*Aggregate, error) {
	agg := &Aggregate{}

	nonTool := make([]registry.Case, 0, len(cases))
	tool := make([]registry.Case, 0, len(cases))
	for _, c := range cases {
		if c.IsToolTest() {
			tool = append(tool, c)
		} else {
			nonTool = append(nonTool, c)
		}
	}

	for _, c := range nonTool {
		if err := ctx.Err(); err != nil {
			return agg, err
		}
		agg.Add(r.runOne(ctx, c, r.cfg.TestTimeout))
	}
	for _, c := range tool {
		if err := ctx.Err(); err != nil {
			return agg, err
		}
		agg.Add(r.runOne(ctx, c, r.cfg.ToolsTimeout))
	}

	return agg, ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, c registry.Case, timeout time.Duration) Result {
	log := r.cfg.Logger.WithPrefix(GenerateTestPrefix(c.Name))

	if r.cfg.SkipTests[c.Name] {
		log.Info("skipped (listed in SkipTests)\n")
		return Result{Name: c.Name, Passed: true, Skipped: true}
	}

	if r.cfg.SkipShutdown && isShutdownDisabledCase(c.Name) {
		log.Info("skipped (shutdown disabled)\n")
		return Result{Name: c.Name, Passed: true, Skipped: true}
	}

	start := time.Now()

	t := r.newTransport()
	defer t.Stop()

	testCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if !t.Start(testCtx) {
		log.Error("transport failed to start\n")
		return Result{Name: c.Name, Passed: false, Duration: time.Since(start), Message: "transport start failure"}
	}

	adapter, err := protocol.NewAdapter(r.cfg.ProtocolVersion, t)
	if err != nil {
		return Result{Name: c.Name, Passed: false, Duration: time.Since(start), Message: fmt.Sprintf("building adapter: %v", err)}
	}

	if _, err := adapter.Initialize(testCtx, "mcpconform", "1.0"); err != nil {
		log.Error("initialize failed: %v\n", err)
		return Result{Name: c.Name, Passed: false, Duration: time.Since(start), Message: fmt.Sprintf("initialize failed: %v", err)}
	}
	if err := adapter.SendInitialized(testCtx); err != nil {
		log.Error("initialized notification failed: %v\n", err)
		return Result{Name: c.Name, Passed: false, Duration: time.Since(start), Message: fmt.Sprintf("initialized failed: %v", err)}
	}

	log.Debug("invoking test function\n")
	passed, message, timedOut := r.invoke(testCtx, c, adapter)
	elapsed := time.Since(start)

	result := Result{Name: c.Name, Passed: passed, Duration: elapsed, Message: message}

	if timedOut {
		result.Timeout = true
		if c.IsToolTest() {
			result.Passed = true
			result.NonCritical = true
			log.Info("tool test timed out, marked non-critical\n")
			// Shutdown is skipped: server state after a timed-out tool
			// call is unknown.
			return result
		}
		result.Passed = false
		return result
	}

	if r.cfg.SkipShutdown {
		return result
	}
	if err := adapter.Shutdown(testCtx); err != nil {
		log.Debug("shutdown failed (not held against test): %v\n", err)
	} else if err := adapter.Exit(testCtx); err != nil {
		log.Debug("exit failed (not held against test): %v\n", err)
	}

	return result
}

// invoke runs c.Fn bounded by testCtx's deadline, abandoning it (not
// waiting for it) on timeout. The test function is not required to
// cooperate with cancellation.
func (r *Runner) invoke(testCtx context.Context, c registry.Case, adapter protocol.Adapter) (passed bool, message string, timedOut bool) {
	type outcome struct {
		passed  bool
		message string
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{passed: false, message: fmt.Sprintf("test panicked: %v", rec)}
			}
		}()
		p, m := c.Fn(testCtx, adapter)
		done <- outcome{passed: p, message: m}
	}()

	select {
	case o := <-done:
		return o.passed, o.message, false
	case <-testCtx.Done():
		return false, "test exceeded its timeout", true
	}
}

func (r *Runner) newTransport() transport.Transport {
	switch r.cfg.TransportKind {
	case TransportHTTP:
		pv := ""
		if r.cfg.ProtocolVersion == protocol.Version20250618 {
			pv = r.cfg.ProtocolVersion
		}
		return transport.NewHTTP(r.cfg.ServerCommand, pv)
	default:
		return transport.NewStdio(r.cfg.ServerCommand, r.cfg.ServerArgs, r.cfg.Env)
	}
}
