package config

import (
	_ "embed"
)

//go:embed default.yaml
var defaultConfigYAML string

// LoadDefault loads the default embedded configuration. Environment
// overrides apply to it the same way they do to a file.
func LoadDefault() (*Config, error) {
	return NewLoader("").parse([]byte(defaultConfigYAML))
}
