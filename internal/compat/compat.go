// Package compat resolves per-server profiles: required environment,
// tests to skip, required tools, and a recommended protocol version,
// keyed by matching the server launch command or URL against each
// profile's identifier substrings.
package compat

import (
	"os"
	"strings"
)

// Profile describes one known server's quirks.
type Profile struct {
	Name                string
	Identifiers         []string
	Environment         map[string]string
	SkipTests           []string
	RequiredTools       []string
	RecommendedProtocol string
	ForceSkipShutdown   bool
}

// Resolver answers read-only profile queries against an in-memory set of
// profiles, supplied by the caller (config-file parsing is out of scope
// for this package).
type Resolver struct {
	profiles []Profile
}

// NewResolver builds a Resolver over profiles, in priority order: the
// first profile whose identifier matches the command wins.
func NewResolver(profiles []Profile) *Resolver {
	return &Resolver{profiles: profiles}
}

func (r *Resolver) match(command string) (Profile, bool) {
	for _, p := range r.profiles {
		for _, id := range p.Identifiers {
			if strings.Contains(command, id) {
				return p, true
			}
		}
	}
	return Profile{}, false
}

// PrepareEnvironment returns an environment map for launching command:
// the current process environment, overlaid with the matching profile's
// declared defaults (filled from MCP_DEFAULT_<NAME> when the process
// environment doesn't already set the variable), forcing
// MCP_SKIP_SHUTDOWN=true when the profile requires it. Missing required
// variables without any default are noted as warnings, not hard errors.
func (r *Resolver) PrepareEnvironment(command string) (env map[string]string, warnings []string) {
	env = map[string]string{}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}

	profile, ok := r.match(command)
	if !ok {
		return env, nil
	}

	for name := range profile.Environment {
		if _, set := env[name]; set {
			continue
		}
		if def, ok := os.LookupEnv("MCP_DEFAULT_" + name); ok {
			env[name] = def
			continue
		}
		warnings = append(warnings, "missing required environment variable "+name+" ("+profile.Environment[name]+") with no default")
	}

	if profile.ForceSkipShutdown {
		env["MCP_SKIP_SHUTDOWN"] = "true"
	}

	return env, warnings
}

// TestConfig is the subset of a profile the runner needs to shape a run.
type TestConfig struct {
	SkipTests     []string
	RequiredTools []string
}

// GetTestConfig returns the matching profile's skip list and required
// tools, or a zero TestConfig if no profile matches command.
func (r *Resolver) GetTestConfig(command string) TestConfig {
	profile, ok := r.match(command)
	if !ok {
		return TestConfig{}
	}
	return TestConfig{SkipTests: profile.SkipTests, RequiredTools: profile.RequiredTools}
}

// GetRecommendedProtocolVersion returns the matching profile's
// recommended protocol version, or "" if no profile matches or the
// matching profile doesn't recommend one.
func (r *Resolver) GetRecommendedProtocolVersion(command string) string {
	profile, ok := r.match(command)
	if !ok {
		return ""
	}
	return profile.RecommendedProtocol
}
