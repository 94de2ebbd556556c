package compat

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed profiles_default.yaml
var defaultProfilesYAML []byte

type wireProfile struct {
	Name                string            `yaml:"name"`
	Identifiers         []string          `yaml:"identifiers"`
	RecommendedProtocol string            `yaml:"recommended_protocol"`
	ForceSkipShutdown   bool              `yaml:"force_skip_shutdown"`
	SkipTests           []string          `yaml:"skip_tests"`
	RequiredTools       []string          `yaml:"required_tools"`
	Environment         map[string]string `yaml:"environment"`
}

type wireProfiles struct {
	Profiles []wireProfile `yaml:"profiles"`
}

// DefaultProfiles parses the bundled profiles_default.yaml (the one
// well-known server-brave-search fallback; all others require an
// explicit --server-config) into the in-memory Profile shape. Parsing
// the embedded asset can only fail if the bundled file itself is
// malformed, which would be a build-time defect, not a runtime one; in
// that case DefaultProfiles falls back to the empty set rather than
// panicking at import time.
func DefaultProfiles() []Profile {
	var wire wireProfiles
	if err := yaml.Unmarshal(defaultProfilesYAML, &wire); err != nil {
		return nil
	}
	profiles := make([]Profile, 0, len(wire.Profiles))
	for _, w := range wire.Profiles {
		profiles = append(profiles, Profile{
			Name:                w.Name,
			Identifiers:         w.Identifiers,
			Environment:         w.Environment,
			SkipTests:           w.SkipTests,
			RequiredTools:       w.RequiredTools,
			RecommendedProtocol: w.RecommendedProtocol,
			ForceSkipShutdown:   w.ForceSkipShutdown,
		})
	}
	return profiles
}
