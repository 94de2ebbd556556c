package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"mcpconform/internal/compat"
	"mcpconform/internal/obslog"
	"mcpconform/internal/protocol"
	"mcpconform/internal/registry"
	"mcpconform/internal/report"
	"mcpconform/internal/runner"
)

type runFlags struct {
	serverCommand   string
	protocolVersion string
	args            string
	outputDir       string
	reportPrefix    string
	emitJSON        bool
	debug           bool
	skipAsync       bool
	skipShutdown    bool
	requiredTools   string
	skipTests       string
	dynamicOnly     bool
	specCoverage    bool
	testMode        string
	autoDetect      bool
	testTimeout     int
	toolsTimeout    int
	verbose         bool
	serverConfig    string
	configFile      string
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	c := &cobra.Command{
		Use:   "run",
		Short: "Run the compliance test suite against an MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(cmd, f)
		},
	}

	c.Flags().StringVar(&f.serverCommand, "server-command", "", "server process command or http(s):// URL (required)")
	c.Flags().StringVar(&f.protocolVersion, "protocol-version", "", "2024-11-05|2025-03-26|2025-06-18")
	c.Flags().StringVar(&f.args, "args", "", "additional arguments appended to the server command")
	c.Flags().StringVar(&f.outputDir, "output-dir", "reports", "directory reports are written under")
	c.Flags().StringVar(&f.reportPrefix, "report-prefix", "cr", "report filename prefix")
	c.Flags().BoolVar(&f.emitJSON, "json", false, "also emit a JSON report alongside Markdown")
	c.Flags().BoolVar(&f.debug, "debug", false, "verbose diagnostics")
	c.Flags().BoolVar(&f.skipAsync, "skip-async", false, "exclude async-tool tests even on 2025-03-26")
	c.Flags().BoolVar(&f.skipShutdown, "skip-shutdown", false, "force-disable shutdown for this run")
	c.Flags().StringVar(&f.requiredTools, "required-tools", "", "comma-separated required tool names, overrides profile")
	c.Flags().StringVar(&f.skipTests, "skip-tests", "", "comma-separated additional test names to skip")
	c.Flags().BoolVar(&f.dynamicOnly, "dynamic-only", false, "run only dynamic tool discovery/exercise tests")
	c.Flags().BoolVar(&f.specCoverage, "spec-coverage-only", false, "run only the specification-coverage tests")
	c.Flags().StringVar(&f.testMode, "test-mode", "all", "all|core|tools|async|spec")
	c.Flags().BoolVar(&f.autoDetect, "auto-detect", false, "infer protocol version and profile via the compatibility resolver")
	c.Flags().IntVar(&f.testTimeout, "test-timeout", 30, "per-test timeout in seconds")
	c.Flags().IntVar(&f.toolsTimeout, "tools-timeout", 30, "per-tool-test timeout in seconds")
	c.Flags().BoolVar(&f.verbose, "verbose", false, "progress logging per test")
	c.Flags().StringVar(&f.serverConfig, "server-config", "", "path to a JSON profile overriding skip_tests/required_tools/environment/recommended_protocol")
	c.Flags().StringVar(&f.configFile, "config", "", "path to a TOML file of flag defaults")

	return c
}

func runHarness(cmd *cobra.Command, f *runFlags) error {
	defaults, err := loadFileDefaults(f.configFile)
	if err != nil {
		return &exitError{code: ExitFailure, err: fmt.Errorf("reading --config: %w", err)}
	}
	applyFileDefaults(cmd, f, defaults)

	switch {
	case f.debug:
		obslog.Init(obslog.LevelDebug, os.Stderr)
	case f.verbose:
		obslog.Init(obslog.LevelInfo, os.Stderr)
	default:
		obslog.Init(obslog.LevelWarn, os.Stderr)
	}

	if f.serverCommand == "" {
		return &exitError{code: ExitFailure, err: fmt.Errorf("--server-command is required")}
	}

	resolver := compat.NewResolver(compat.DefaultProfiles())
	env, warnings := resolver.PrepareEnvironment(f.serverCommand)
	profileCfg := resolver.GetTestConfig(f.serverCommand)

	serverCfg, err := loadServerConfig(f.serverConfig)
	if err != nil {
		return &exitError{code: ExitFailure, err: fmt.Errorf("reading --server-config: %w", err)}
	}
	for k, v := range serverCfg.Environment {
		env[k] = v
	}

	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	version := f.protocolVersion
	if version == "" && f.autoDetect {
		version = resolver.GetRecommendedProtocolVersion(f.serverCommand)
	}
	if version == "" {
		if env["MCP_PROTOCOL_VERSION"] != "" {
			version = env["MCP_PROTOCOL_VERSION"]
		} else if serverCfg.RecommendedProtocol != "" {
			version = serverCfg.RecommendedProtocol
		}
	}
	if version == "" {
		version = protocol.Version20241105
	}

	skip := map[string]bool{}
	for _, name := range profileCfg.SkipTests {
		skip[name] = true
	}
	for _, name := range serverCfg.SkipTests {
		skip[name] = true
	}
	for _, name := range splitCSV(f.skipTests) {
		skip[name] = true
	}
	if f.skipAsync {
		for _, c := range registry.AsyncToolCases() {
			skip[c.Name] = true
		}
	}

	requiredTools := splitCSV(f.requiredTools)
	if len(requiredTools) == 0 && env["MCP_REQUIRED_TOOLS"] != "" {
		requiredTools = splitCSV(env["MCP_REQUIRED_TOOLS"])
	}
	if len(requiredTools) == 0 {
		requiredTools = serverCfg.RequiredTools
	}
	if len(requiredTools) == 0 {
		requiredTools = profileCfg.RequiredTools
	}
	if f.verbose && len(requiredTools) > 0 {
		fmt.Fprintf(os.Stderr, "required tools for this server: %s\n", strings.Join(requiredTools, ", "))
	}

	skipShutdown := f.skipShutdown || envBool(env["MCP_SKIP_SHUTDOWN"])

	mode := registry.Mode(f.testMode)
	if f.dynamicOnly {
		mode = registry.ModeDynamicOnly
	} else if f.specCoverage {
		mode = registry.ModeSpecCoverageOnly
	}

	cases := registry.FilterForRun(registry.All(mode), version, skip)
	index := registry.BuildIndex(cases)

	transportKind := runner.TransportStdio
	serverCommand := f.serverCommand
	var serverArgs []string
	if strings.HasPrefix(f.serverCommand, "http://") || strings.HasPrefix(f.serverCommand, "https://") {
		transportKind = runner.TransportHTTP
	} else {
		parts := strings.Fields(f.serverCommand)
		serverCommand = parts[0]
		if len(parts) > 1 {
			serverArgs = parts[1:]
		}
		serverArgs = append(serverArgs, splitCSV(f.args)...)
	}

	logger := runner.NewLogger("runner")
	cfg := runner.Config{
		TransportKind:   transportKind,
		ServerCommand:   serverCommand,
		ServerArgs:      serverArgs,
		Env:             env,
		ProtocolVersion: version,
		TestTimeout:     time.Duration(f.testTimeout) * time.Second,
		ToolsTimeout:    time.Duration(f.toolsTimeout) * time.Second,
		SkipShutdown:    skipShutdown,
		SkipTests:       skip,
		Logger:          logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !f.debug && !f.verbose {
		s.Suffix = " running compliance suite..."
		s.Start()
	}
	agg, runErr := runner.New(cfg).Run(ctx, cases)
	s.Stop()

	serverName := beautifyServerName(f.serverCommand)
	in := report.Input{
		ServerName:      serverName,
		ProtocolVersion: version,
		Timestamp:       time.Now(),
		Aggregate:       agg,
		Index:           index,
	}
	if transportKind == runner.TransportHTTP {
		in.ServerURL = f.serverCommand
	}

	if writeErr := writeReports(f, in); writeErr != nil {
		return &exitError{code: ExitFailure, err: writeErr}
	}

	synth := report.NewSynthesizer(envBool(os.Getenv("NO_EMOJI")) || envBool(os.Getenv("MCP_CONFORM_NO_EMOJI")))
	synth.PrintSummary(in)

	if runErr != nil {
		if ctx.Err() != nil {
			return &exitError{code: ExitInterrupt, err: runErr}
		}
		return &exitError{code: ExitFailure, err: runErr}
	}
	if agg.Failed > 0 {
		return &exitError{code: ExitFailure, err: fmt.Errorf("%d test(s) failed", agg.Failed)}
	}
	return nil
}

func writeReports(f *runFlags, in report.Input) error {
	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return err
	}
	stamp := in.Timestamp.Format("20060102_150405")
	base := fmt.Sprintf("%s_%s_%s_%s", f.reportPrefix, in.ServerName, in.ProtocolVersion, stamp)

	md := report.RenderMarkdown(in)
	if err := os.WriteFile(filepath.Join(f.outputDir, base+".md"), []byte(md), 0o644); err != nil {
		return err
	}

	if f.emitJSON {
		data, err := report.RenderJSON(in)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(f.outputDir, base+".json"), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func applyFileDefaults(cmd *cobra.Command, f *runFlags, d *fileDefaults) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }

	if !set("output-dir") && d.OutputDir != "" {
		f.outputDir = d.OutputDir
	}
	if !set("report-prefix") && d.ReportPrefix != "" {
		f.reportPrefix = d.ReportPrefix
	}
	if !set("test-mode") && d.TestMode != "" {
		f.testMode = d.TestMode
	}
	if !set("test-timeout") && d.TestTimeout > 0 {
		f.testTimeout = d.TestTimeout
	}
	if !set("tools-timeout") && d.ToolsTimeout > 0 {
		f.toolsTimeout = d.ToolsTimeout
	}
	if !set("json") && d.JSON {
		f.emitJSON = d.JSON
	}
	if !set("verbose") && d.Verbose {
		f.verbose = d.Verbose
	}
	if !set("skip-tests") && len(d.SkipTests) > 0 {
		f.skipTests = strings.Join(d.SkipTests, ",")
	}
	if !set("required-tools") && len(d.RequiredTools) > 0 {
		f.requiredTools = strings.Join(d.RequiredTools, ",")
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	b, _ := strconv.ParseBool(v)
	return b || v == "yes"
}
