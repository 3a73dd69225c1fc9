// Package vmconfig loads a PluginManifest from YAML, letting an
// embedder subset which plugins a realm registers (and in what
// declared order) without writing Go. Mirrors the teacher's
// internal/ext funxy.yaml loader at a smaller scope: one list of named
// plugins instead of a full Go-binding DSL.
package vmconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PluginManifest is the top-level vm.yaml/vm.yml configuration: which
// named plugins a realm should register. Plugin names must match a
// name registered with the embedder's plugin registry (see pkg/engine).
type PluginManifest struct {
	Plugins []PluginEntry `yaml:"plugins"`
}

// PluginEntry names one plugin and optional per-plugin configuration.
// Options is left as raw YAML nodes since each plugin interprets its
// own option shape; vmconfig itself is agnostic to plugin internals.
type PluginEntry struct {
	Name    string    `yaml:"name"`
	Options yaml.Node `yaml:"options,omitempty"`
}

// LoadManifest reads and parses a plugin manifest file.
func LoadManifest(path string) (*PluginManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest parses manifest content from bytes. path is used only
// for error messages.
func ParseManifest(data []byte, path string) (*PluginManifest, error) {
	var m PluginManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *PluginManifest) validate(path string) error {
	if len(m.Plugins) == 0 {
		return fmt.Errorf("%s: no plugins defined", path)
	}
	seen := make(map[string]bool, len(m.Plugins))
	for i, p := range m.Plugins {
		if p.Name == "" {
			return fmt.Errorf("%s: plugins[%d]: name is required", path, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s: plugins[%d]: duplicate plugin name %q", path, i, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Names returns the manifest's plugin names in declared order.
func (m *PluginManifest) Names() []string {
	names := make([]string, len(m.Plugins))
	for i, p := range m.Plugins {
		names[i] = p.Name
	}
	return names
}

// DefaultManifest is the manifest an embedder gets when it asks for
// "everything" without writing a vm.yaml: every plugin this engine
// ships, in dependency-safe order (RegisterPlugins topologically sorts
// regardless, but a human-legible default order doubles as
// documentation of what a full realm contains).
func DefaultManifest() *PluginManifest {
	return &PluginManifest{Plugins: []PluginEntry{
		{Name: "object"},
		{Name: "function"},
		{Name: "iterator"},
		{Name: "array"},
		{Name: "boolean"},
		{Name: "set"},
		{Name: "console"},
	}}
}
