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

import "testing"

func TestExpandCallSubstitutesArgIntoDeclMap(t *testing.T) {
	ctx := NewContext()
	ctx.AddTemplateDecl("mytemplate", DeclPayload{Kind: DeclType, Name: "$1_t"})

	ctx.ModuleName = "caller"
	ExpandCall(ctx, "caller.te", "mytemplate", StringList{"alpha"}, 10)

	entry, ok := ctx.LookupDecl("alpha_t")
	if !ok {
		t.Fatalf("alpha_t not materialized into decl_map")
	}
	if entry.Module != "caller" || entry.Kind != DeclType {
		t.Fatalf("alpha_t entry = %+v", entry)
	}
}

func TestExpandCallOfUnknownNameIsNoop(t *testing.T) {
	ctx := NewContext()
	ctx.ModuleName = "caller"
	ExpandCall(ctx, "caller.te", "not_a_template", StringList{"x"}, 1)
	if len(ctx.Diagnostics) != 0 {
		t.Fatalf("expanding a non-template name should not produce diagnostics")
	}
}

func TestExpandCallNestedTemplateRecordsDiagnostic(t *testing.T) {
	ctx := NewContext()
	ctx.AddTemplateDecl("outer", DeclPayload{Kind: DeclType, Name: "$1_t"})
	ctx.AddTemplateCall("outer", TemplateCall{Name: "inner", Args: StringList{"x"}})
	ctx.AddTemplateDecl("inner", DeclPayload{Kind: DeclType, Name: "$1_inner_t"})

	ctx.ModuleName = "caller"
	ExpandCall(ctx, "caller.te", "outer", StringList{"alpha"}, 5)

	if len(ctx.Diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic for the nested template call, got %d", len(ctx.Diagnostics))
	}
	if _, found := ctx.LookupDecl("alpha_inner_t"); found {
		t.Fatalf("nested template should not be expanded")
	}
}
