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

import "fmt"

// Severity is one of the five finding severities (spec.md §4.6). The zero
// value is deliberately not a valid severity: Convention starts at 1, so a
// zero-value Finding{} (a check that left Severity unset, meaning "use the
// check's registered default") is distinguishable from a check that
// explicitly chose Convention.
type Severity int

const (
	unsetSeverity Severity = iota
	Convention
	Style
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Convention:
		return "C"
	case Style:
		return "S"
	case Warning:
		return "W"
	case Error:
		return "E"
	case Fatal:
		return "F"
	default:
		return "?"
	}
}

// Finding is the result record emitted by a Check: one (file, line,
// severity, check id, message) tuple. File and Line are filled in by the
// dispatcher from the node being checked, not by the Check itself.
type Finding struct {
	File     string
	Line     int
	Severity Severity
	ID       string
	Message  string
}

// String renders a Finding in the required stdout line format:
// <file>:<line>: (<severity>): <message> [<check-id>].
func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: (%s): %s [%s]", f.File, f.Line, f.Severity, f.Message, f.ID)
}
