package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileDefaults is the shape of an optional --config TOML document
// supplying flag defaults, so a CI pipeline can pin its harness
// invocation without repeating every flag on the command line.
type fileDefaults struct {
	OutputDir     string   `toml:"output_dir"`
	ReportPrefix  string   `toml:"report_prefix"`
	TestMode      string   `toml:"test_mode"`
	TestTimeout   int      `toml:"test_timeout"`
	ToolsTimeout  int      `toml:"tools_timeout"`
	JSON          bool     `toml:"json"`
	Verbose       bool     `toml:"verbose"`
	SkipTests     []string `toml:"skip_tests"`
	RequiredTools []string `toml:"required_tools"`
}

func loadFileDefaults(path string) (*fileDefaults, error) {
	if path == "" {
		return &fileDefaults{}, nil
	}
	var d fileDefaults
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// serverConfigProfile is the shape of the --server-config JSON document:
// a single inline profile, in the same fields as a compat.Profile minus
// the matching identifiers (the server under test is already known).
type serverConfigProfile struct {
	SkipTests           []string          `json:"skip_tests"`
	RequiredTools       []string          `json:"required_tools"`
	Environment         map[string]string `json:"environment"`
	RecommendedProtocol string            `json:"recommended_protocol"`
}

func loadServerConfig(path string) (*serverConfigProfile, error) {
	if path == "" {
		return &serverConfigProfile{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p serverConfigProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// beautifyServerName turns a server command or URL into the deterministic
// short name used in report filenames: take the first argument after the
// executable that is not a flag (or the executable itself when there is
// none), strip directory components and a trailing ".py" or ".js", then
// title-case each remaining word and join them.
func beautifyServerName(command string) string {
	first := strings.Fields(command)
	base := command
	if len(first) > 0 {
		base = first[0]
		for _, f := range first[1:] {
			if !strings.HasPrefix(f, "-") {
				base = f
				break
			}
		}
	}
	base = filepath.Base(base)
	base = strings.TrimSuffix(base, ".py")
	base = strings.TrimSuffix(base, ".js")

	parts := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	if len(parts) == 0 {
		return "server"
	}
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}
