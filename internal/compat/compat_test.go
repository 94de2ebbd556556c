package compat

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfiles() []Profile {
	return []Profile{
		{
			Name:                "server-brave-search",
			Identifiers:         []string{"brave-search"},
			RecommendedProtocol: "2024-11-05",
			ForceSkipShutdown:   true,
			SkipTests:           []string{"test_shutdown_sequence"},
			RequiredTools:       []string{"brave_web_search"},
			Environment:         map[string]string{"BRAVE_API_KEY": "Brave Search API key"},
		},
	}
}

func TestResolver_GetTestConfig_MatchesByIdentifierSubstring(t *testing.T) {
	r := NewResolver(testProfiles())
	cfg := r.GetTestConfig("npx server-brave-search")
	assert.Equal(t, []string{"test_shutdown_sequence"}, cfg.SkipTests)
	assert.Equal(t, []string{"brave_web_search"}, cfg.RequiredTools)
}

func TestResolver_GetTestConfig_ZeroValueOnNoMatch(t *testing.T) {
	r := NewResolver(testProfiles())
	cfg := r.GetTestConfig("node unrelated-server.js")
	assert.Empty(t, cfg.SkipTests)
	assert.Empty(t, cfg.RequiredTools)
}

func TestResolver_GetRecommendedProtocolVersion(t *testing.T) {
	r := NewResolver(testProfiles())
	assert.Equal(t, "2024-11-05", r.GetRecommendedProtocolVersion("brave-search"))
	assert.Equal(t, "", r.GetRecommendedProtocolVersion("no-match-here"))
}

func TestResolver_PrepareEnvironment_WarnsOnMissingRequiredVarWithNoDefault(t *testing.T) {
	os.Unsetenv("BRAVE_API_KEY")
	os.Unsetenv("MCP_DEFAULT_BRAVE_API_KEY")

	r := NewResolver(testProfiles())
	env, warnings := r.PrepareEnvironment("brave-search")

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "BRAVE_API_KEY")
	assert.Equal(t, "true", env["MCP_SKIP_SHUTDOWN"])
}

func TestResolver_PrepareEnvironment_FillsFromMCPDefault(t *testing.T) {
	os.Unsetenv("BRAVE_API_KEY")
	require.NoError(t, os.Setenv("MCP_DEFAULT_BRAVE_API_KEY", "fallback-key"))
	defer os.Unsetenv("MCP_DEFAULT_BRAVE_API_KEY")

	r := NewResolver(testProfiles())
	env, warnings := r.PrepareEnvironment("brave-search")

	assert.Empty(t, warnings)
	assert.Equal(t, "fallback-key", env["BRAVE_API_KEY"])
}

func TestResolver_PrepareEnvironment_NoMatchReturnsProcessEnvOnly(t *testing.T) {
	r := NewResolver(testProfiles())
	env, warnings := r.PrepareEnvironment("node unrelated.js")
	assert.Empty(t, warnings)
	assert.NotEqual(t, "true", env["MCP_SKIP_SHUTDOWN"])
}

func TestDefaultProfiles_IncludesBraveSearchFallback(t *testing.T) {
	profiles := DefaultProfiles()
	require.NotEmpty(t, profiles)
	found := false
	for _, p := range profiles {
		if p.Name == "server-brave-search" {
			found = true
			assert.Contains(t, p.RequiredTools, "brave_web_search")
		}
	}
	assert.True(t, found)
}
