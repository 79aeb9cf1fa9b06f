// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config reads the global check-enablement configuration file
// (spec.md §6: "a global configuration file listing enabled/disabled
// check-id patterns"). The format is YAML, read with gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the decoded shape of the global configuration file:
//
//	enabled:
//	  - "W-*"
//	disabled:
//	  - "C-001"
type Config struct {
	Enabled  []string `yaml:"enabled"`
	Disabled []string `yaml:"disabled"`
}

// Load reads and parses the configuration file at path. A missing path
// ("" — no -c config flag given) returns an empty Config, not an error:
// the global configuration file is optional.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return c, nil
}
