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

package policy

// This file implements phase 2 of the pipeline driver (spec.md §4.7):
// loading modules.conf, the file that records each module's build-time
// enablement (base, module, or off), into mods_map ahead of any policy
// source being parsed.
//
// Each non-blank, non-comment line has the form:
//
//	modname = base;
//	modname = module;
//	modname = off;
//
// A line that isn't a recognized assignment is a PARSE_ERROR, and the
// whole load aborts, leaving mods_map empty: a malformed modules.conf
// gives no reliable enablement information for any module, so reporting
// none is preferable to reporting some.

import (
	"strings"

	"github.com/polint/polint/pkg/policy/errkind"
)

// LoadModulesConf parses data (the contents of modules.conf) and records
// each module's Enablement into ctx's mods_map (via SetMod). Parsing happens against a
// scratch slice first and is only committed to ctx on full success: a
// malformed line aborts with no partial state, per spec.md §4.7.
func LoadModulesConf(ctx *Context, file, data string) error {
	type entry struct {
		name       string
		enablement Enablement
	}
	var entries []entry

	lines := strings.Split(data, "\n")
	for i, raw := range lines {
		line := i + 1
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, value, ok := strings.Cut(text, "=")
		if !ok {
			return errkind.New(errkind.PARSE_ERROR, file, "line %d: malformed modules.conf entry: %q", line, text)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))
		var enablement Enablement
		switch value {
		case "base":
			enablement = ModBase
		case "module":
			enablement = ModModule
		case "off":
			enablement = ModOff
		default:
			return errkind.New(errkind.PARSE_ERROR, file, "line %d: unrecognized enablement %q", line, value)
		}
		if name == "" {
			return errkind.New(errkind.PARSE_ERROR, file, "line %d: missing module name", line)
		}
		entries = append(entries, entry{name: name, enablement: enablement})
	}
	for _, e := range entries {
		ctx.SetMod(e.name, e.enablement)
	}
	return nil
}
