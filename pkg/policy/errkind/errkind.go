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

// Package errkind defines the small error taxonomy shared by the parse
// builder and the pipeline driver.  Every builder and pipeline operation
// returns a Kind (wrapped in an error) rather than an ad-hoc error string,
// so the driver can dispatch on the kind without parsing messages.
package errkind

import "fmt"

// Kind is one of the fixed outcomes a builder or pipeline step can report.
type Kind int

const (
	// SUCCESS indicates no error occurred.
	SUCCESS Kind = iota
	// OUT_OF_MEM indicates an allocation failure. Fatal.
	OUT_OF_MEM
	// PARSE_ERROR indicates malformed source. Recoverable at file granularity.
	PARSE_ERROR
	// NOT_IN_BLOCK indicates end_block was called with no matching open block.
	NOT_IN_BLOCK
	// BAD_ARG indicates a builder call received an invalid argument.
	BAD_ARG
	// NO_MOD_NAME indicates a parse began before module_name was set.
	NO_MOD_NAME
	// IO_ERROR indicates a file could not be read.
	IO_ERROR
	// INTERNAL indicates a bug in the engine itself. Fatal.
	INTERNAL
)

func (k Kind) String() string {
	switch k {
	case SUCCESS:
		return "SUCCESS"
	case OUT_OF_MEM:
		return "OUT_OF_MEM"
	case PARSE_ERROR:
		return "PARSE_ERROR"
	case NOT_IN_BLOCK:
		return "NOT_IN_BLOCK"
	case BAD_ARG:
		return "BAD_ARG"
	case NO_MOD_NAME:
		return "NO_MOD_NAME"
	case IO_ERROR:
		return "IO_ERROR"
	case INTERNAL:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Fatal reports whether k should abort the run rather than merely the
// current file or phase.
func (k Kind) Fatal() bool {
	return k == OUT_OF_MEM || k == INTERNAL
}

// Error is a located error carrying a Kind so callers can both print a
// teacher-style "file:line: message" string and switch on the kind with
// errors.As.
type Error struct {
	Kind Kind
	Loc  string // e.g. "foo.te:12", empty if not applicable
	Msg  string
}

func (e *Error) Error() string {
	if e.Loc == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Loc, e.Kind, e.Msg)
}

// New builds a located Error.
func New(kind Kind, loc, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind carried by err, or SUCCESS if err is nil, or
// INTERNAL if err is a plain error that didn't originate in this package.
func KindOf(err error) Kind {
	if err == nil {
		return SUCCESS
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return INTERNAL
}
