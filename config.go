package xstate

import (
	"encoding/json"
	"os"

	"github.com/joeblynch/xstate/machine"
	"gopkg.in/yaml.v3"
)

// OptionsFile is the JSON/YAML-serializable subset of Options: the parts
// that are plain data rather than capabilities (Clock, Logger, DevTools,
// Parent cannot round-trip through a file and are left at their defaults).
type OptionsFile struct {
	Execute     *bool  `json:"execute,omitempty" yaml:"execute,omitempty"`
	DeferEvents *bool  `json:"deferEvents,omitempty" yaml:"deferEvents,omitempty"`
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
}

// Apply merges the file's fields onto a base Options value, leaving fields
// the file doesn't mention untouched.
func (f OptionsFile) Apply(base Options) Options {
	if f.Execute != nil {
		base.Execute = *f.Execute
	}
	if f.DeferEvents != nil {
		base.DeferEvents = *f.DeferEvents
	}
	if f.ID != "" {
		base.ID = f.ID
	}
	return base
}

// LoadOptions reads path (YAML or JSON, by extension) into an OptionsFile
// and applies it over DefaultOptions.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	var f OptionsFile
	if err := unmarshalByExtension(path, data, &f); err != nil {
		return Options{}, err
	}
	return f.Apply(DefaultOptions()), nil
}

// LoadMachineConfig reads path (YAML or JSON) into a machine.Config.
func LoadMachineConfig(path string) (machine.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return machine.Config{}, err
	}
	var cfg machine.Config
	if err := unmarshalByExtension(path, data, &cfg); err != nil {
		return machine.Config{}, err
	}
	return cfg, nil
}

func unmarshalByExtension(path string, data []byte, out any) error {
	if isJSONPath(path) {
		return json.Unmarshal(data, out)
	}
	return yaml.Unmarshal(data, out)
}

func isJSONPath(path string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return path[i:] == ".json"
		case '/':
			return false
		}
	}
	return false
}
