package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Equal(t, []string{"a", "b"}, splitCSV("a,b"))
	assert.Equal(t, []string{"a", "b"}, splitCSV(" a , b ,"))
}

func TestEnvBool(t *testing.T) {
	assert.True(t, envBool("true"))
	assert.True(t, envBool("1"))
	assert.True(t, envBool("yes"))
	assert.True(t, envBool("YES"))
	assert.False(t, envBool(""))
	assert.False(t, envBool("false"))
	assert.False(t, envBool("nah"))
}

func TestNewRunCmd_RegistersDocumentedFlags(t *testing.T) {
	c := newRunCmd()
	for _, name := range []string{
		"server-command", "protocol-version", "args", "output-dir", "report-prefix",
		"json", "debug", "skip-async", "skip-shutdown", "required-tools", "skip-tests",
		"dynamic-only", "spec-coverage-only", "test-mode", "auto-detect",
		"test-timeout", "tools-timeout", "verbose", "server-config", "config",
	} {
		assert.NotNil(t, c.Flags().Lookup(name), "missing flag --%s", name)
	}
}

func TestNewRunCmd_Defaults(t *testing.T) {
	c := newRunCmd()
	assert.Equal(t, "reports", c.Flags().Lookup("output-dir").DefValue)
	assert.Equal(t, "cr", c.Flags().Lookup("report-prefix").DefValue)
	assert.Equal(t, "all", c.Flags().Lookup("test-mode").DefValue)
	assert.Equal(t, "30", c.Flags().Lookup("test-timeout").DefValue)
}

func TestRunHarness_RequiresServerCommand(t *testing.T) {
	c := newRunCmd()
	f := &runFlags{testMode: "all"}
	err := runHarness(c, f)
	assert.Error(t, err)
	ec, ok := err.(*exitError)
	if assert.True(t, ok) {
		assert.Equal(t, ExitFailure, ec.ExitCode())
	}
}
