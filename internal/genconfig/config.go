// Package genconfig holds the generator's configurable paths and defaults,
// loaded from .oapigen.yaml or oapigen.yaml if present.
package genconfig

import (
	"os"
	"strings"

	"github.com/pixie-sh/errors-go"
	"gopkg.in/yaml.v3"
)

// Config holds every setting a generation run can pick up from a project's
// config file, relative to the working directory.
type Config struct {
	// OutputDir is where types.go, client.go and server.go are written.
	OutputDir string `yaml:"output_dir"`

	// PackageName is the package name given to every generated file.
	PackageName string `yaml:"package_name"`

	// TypesFile, ClientFile and ServerFile hold names for the three
	// generated source files. The generate command does not read them: it
	// always writes types.go, client.go and server.go.
	TypesFile  string `yaml:"types_file"`
	ClientFile string `yaml:"client_file"`
	ServerFile string `yaml:"server_file"`

	// BaseURL seeds the generated HTTPClient's DefaultBaseURL. The spec's
	// servers list is not consulted.
	BaseURL string `yaml:"base_url"`

	// HistoryEnabled turns on the run-history ledger under
	// OutputDir/.oapigen/history.db.
	HistoryEnabled bool `yaml:"history_enabled"`

	// ModuleName names the Go module; ResolveModule falls back to detecting
	// it from go.mod when it is empty. The generate command does not read it.
	ModuleName string `yaml:"module_name"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		OutputDir:      "internal/api",
		PackageName:    "api",
		TypesFile:      "types.go",
		ClientFile:     "client.go",
		ServerFile:     "server.go",
		BaseURL:        "",
		HistoryEnabled: true,
		ModuleName:     "",
	}
}

// Load reads .oapigen.yaml or oapigen.yaml from the current directory. If
// neither exists it returns DefaultConfig with no error.
func Load() (Config, error) {
	cfg := DefaultConfig()

	configPaths := []string{".oapigen.yaml", "oapigen.yaml"}

	var data []byte
	var found bool
	for _, path := range configPaths {
		content, err := os.ReadFile(path)
		if err == nil {
			data = content
			found = true
			break
		}
	}

	if !found {
		return cfg, nil
	}

	var wrapper struct {
		Generate Config `yaml:"generate"`
	}
	wrapper.Generate = cfg

	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return cfg, errors.Wrap(err, "failed to parse oapigen config file")
	}

	return wrapper.Generate, nil
}

// DetectModule reads go.mod from the current directory and returns the
// module path.
func DetectModule() (string, error) {
	content, err := os.ReadFile("go.mod")
	if err != nil {
		return "", errors.Wrap(err, "could not read go.mod file")
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module ")), nil
		}
	}

	return "", errors.New("module name not found in go.mod")
}

// ResolveModule returns moduleName if non-empty, otherwise auto-detects it
// from go.mod.
func ResolveModule(moduleName string) (string, error) {
	if moduleName != "" {
		return moduleName, nil
	}
	return DetectModule()
}
