// Package cmd wires the mcpconform CLI surface: cobra command tree,
// flag-to-Config translation, and process exit codes.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Exit codes, per the external interface contract: 0 on a fully passing
// run, 1 on any failure or unrecoverable internal error, 130 on operator
// interrupt (SIGINT).
const (
	ExitSuccess   = 0
	ExitFailure   = 1
	ExitInterrupt = 130
)

var rootCmd = &cobra.Command{
	Use:          "mcpconform",
	Short:        "Compliance test harness for MCP servers",
	Long:         `mcpconform drives an MCP server through its wire protocol across all three published revisions and reports a weighted compliance score.`,
	SilenceUsage: true,
}

// SetVersion injects the build-time version string, called from main.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the command tree and terminates the process with the
// exit code the run determined.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpconform version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		if code, ok := err.(exitCoder); ok {
			os.Exit(code.ExitCode())
		}
		os.Exit(ExitFailure)
	}
}

// exitCoder lets a command return an error that also carries its own
// exit code, rather than the blanket ExitFailure every other error gets.
type exitCoder interface {
	error
	ExitCode() int
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) ExitCode() int { return e.code }

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd())
}
