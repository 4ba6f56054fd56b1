// Package plugin loads extra builtin commands from Go plugin files.
package plugin

import (
	"fmt"
	"plugin"
)

// Plugin is a command provided by a loaded plugin file. The command is
// dispatched by Name before the shell falls through to launching an
// external program.
type Plugin interface {
	Name() string
	Execute(args []string) error
}

// Load opens one plugin file and extracts its exported Plugin symbol.
func Load(path string) (Plugin, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", path, err)
	}

	sym, err := p.Lookup("Plugin")
	if err != nil {
		return nil, fmt.Errorf("plugin %s does not export 'Plugin': %w", path, err)
	}

	plug, ok := sym.(Plugin)
	if !ok {
		return nil, fmt.Errorf("plugin %s does not implement the Plugin interface", path)
	}
	return plug, nil
}

// LoadAll loads every path and returns the plugins keyed by command
// name. The first error stops loading.
func LoadAll(paths []string) (map[string]Plugin, error) {
	plugins := make(map[string]Plugin, len(paths))
	for _, path := range paths {
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		if _, dup := plugins[p.Name()]; dup {
			return nil, fmt.Errorf("duplicate plugin command %q from %s", p.Name(), path)
		}
		plugins[p.Name()] = p
	}
	return plugins, nil
}
