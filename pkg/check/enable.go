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

package check

import (
	"path"

	"github.com/polint/polint/pkg/policy"
)

// Enablement implements the six-layer check-enablement precedence of
// spec.md §4.6, plus the run's per-check issue counters that feed the
// end-of-run summary.
type Enablement struct {
	// ConfigDisabled/ConfigEnabled are glob patterns from the global
	// configuration file (pkg/config), layers 2 and 3.
	ConfigDisabled []string
	ConfigEnabled  []string

	// CLIDisabled/CLIEnabled are exact check ids from repeatable -d/-e
	// flags, layers 4 and 6.
	CLIDisabled map[string]bool
	CLIEnabled  map[string]bool

	// OnlyEnabled inverts the default to disabled and considers only
	// CLIEnabled (spec.md §4.6's only-enabled mode).
	OnlyEnabled bool

	// MinSeverity is the -l flag: findings below this severity are
	// dropped by the driver/output layer, not by enablement itself.
	MinSeverity Severity

	counts map[string]int
}

// NewEnablement returns an Enablement with empty CLI sets and counters.
func NewEnablement() *Enablement {
	return &Enablement{
		CLIDisabled: map[string]bool{},
		CLIEnabled:  map[string]bool{},
		counts:      map[string]int{},
	}
}

func globMatchAny(patterns []string, id string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, id); err == nil && ok {
			return true
		}
	}
	return false
}

// IsEnabled reports whether check id should run against n, applying the
// six layers in precedence order (lowest to highest): default-enabled,
// configuration-disabled, configuration-enabled, command-line-disabled,
// in-source disable annotation at n, command-line-enabled. OnlyEnabled
// short-circuits all of that to "only the command-line enabled list".
func (e *Enablement) IsEnabled(id string, n *policy.Node) bool {
	if e.OnlyEnabled {
		return e.CLIEnabled[id]
	}
	enabled := true
	if globMatchAny(e.ConfigDisabled, id) {
		enabled = false
	}
	if globMatchAny(e.ConfigEnabled, id) {
		enabled = true
	}
	if e.CLIDisabled[id] {
		enabled = false
	}
	if suppressed(n, id) {
		enabled = false
	}
	if e.CLIEnabled[id] {
		enabled = true
	}
	return enabled
}

// count increments the per-check counter for id.
func (e *Enablement) count(id string) {
	e.counts[id]++
}

// Counts returns a copy of the accumulated per-check issue counts, for the
// end-of-run summary.
func (e *Enablement) Counts() map[string]int {
	out := make(map[string]int, len(e.counts))
	for k, v := range e.counts {
		out[k] = v
	}
	return out
}
