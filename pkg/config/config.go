// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// LoadOption adjusts Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	optional bool
}

// Optional makes a missing file non-fatal: target keeps the values it
// already holds and is still validated.
func Optional() LoadOption {
	return func(o *loadOptions) { o.optional = true }
}

// Load reads a YAML file into target, expanding ${VAR} references first.
// Fields absent from the file keep their current values, so callers
// pre-populate target with defaults.
func Load[T any](filename string, target *T, opts ...LoadOption) error {
	var o loadOptions
	for _, fn := range opts {
		fn(&o)
	}

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
	case o.optional && errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}
