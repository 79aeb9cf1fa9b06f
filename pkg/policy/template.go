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

// This file implements template resolution: expansion of the parameterized
// declarations recorded inside a template's body when a call to that
// template appears outside of any template. See spec.md §4.5.

import (
	"fmt"
	"strings"
)

// Diagnostic is an engine-internal finding that isn't tied to a single
// check: right now the only source is nested template expansion, which
// spec.md §9 leaves as "undefined, flagged by an internal diagnostic"
// rather than guessed at.
type Diagnostic struct {
	File string
	Line int
	Message string
}

// substitute replaces "$N" (1-based positional parameters, the same
// convention the m4-based reference policy uses for interface and
// template arguments) in s with the corresponding element of args. Higher
// numbers are substituted first so that "$1" does not clobber a prefix of
// "$10" before "$10" itself is matched.
func substitute(s string, args StringList) string {
	for i := len(args); i >= 1; i-- {
		s = strings.ReplaceAll(s, fmt.Sprintf("$%d", i), args[i-1])
	}
	return s
}

func substituteList(l StringList, args StringList) StringList {
	if l == nil {
		return nil
	}
	out := make(StringList, len(l))
	for i, s := range l {
		out[i] = substitute(s, args)
	}
	return out
}

// ExpandCall expands a call to name (recorded at file:line in the caller's
// module) if name is a known template: every declaration recorded in the
// template's body is substituted with args and inserted into decl_map
// owned by the calling module (ctx.ModuleName). If the call is not to a
// known template, ExpandCall does nothing — ordinary (non-template)
// interface expansion is outside this engine's contract.
//
// A template body that itself calls another template is a nested template,
// which spec.md explicitly leaves unspecified; rather than recurse (and
// risk infinite expansion on a self-referential vendor policy), ExpandCall
// records an internal Diagnostic and leaves the inner call unexpanded.
func ExpandCall(ctx *Context, file, name string, args StringList, line int) {
	body, ok := ctx.LookupTemplate(name)
	if !ok {
		return
	}
	caller := ctx.ModuleName
	for _, decl := range body.Decls {
		substituted := DeclPayload{
			Kind:  decl.Kind,
			Name:  substitute(decl.Name, args),
			Attrs: substituteList(decl.Attrs, args),
		}
		ctx.SetDecl(substituted.Name, caller, substituted.Kind)
	}
	for _, call := range body.Calls {
		if _, isTemplate := ctx.LookupTemplate(call.Name); isTemplate {
			ctx.Diagnostics = append(ctx.Diagnostics, Diagnostic{
				File:    file,
				Line:    line,
				Message: fmt.Sprintf("nested template expansion of %q via %q is unsupported", call.Name, name),
			})
			continue
		}
		// Plain interface call recorded in the template body: nothing
		// further to materialize into decl_map.
	}
}
