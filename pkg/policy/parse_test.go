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

func TestParseTESingleDeclaration(t *testing.T) {
	ctx := NewContext()
	_, err := ParseTE(ctx, "foo.te", "foo", "type foo_t;\n")
	if err != nil {
		t.Fatalf("ParseTE: %v", err)
	}
	entry, ok := ctx.LookupDecl("foo_t")
	if !ok || entry.Module != "foo" || entry.Kind != DeclType {
		t.Fatalf("decl_map entry = %+v, ok=%v", entry, ok)
	}
}

func TestParseTEUselessSemicolon(t *testing.T) {
	ctx := NewContext()
	b, err := ParseTE(ctx, "foo.te", "foo", "type foo_t;\n\n\n;\n")
	if err != nil {
		t.Fatalf("ParseTE: %v", err)
	}
	var semis int
	for n := b.Root; n != nil; n = DFSNext(n) {
		if n.Flavor == Semicolon {
			semis++
			if n.Line != 4 {
				t.Fatalf("stray semicolon at line %d, want 4", n.Line)
			}
		}
	}
	if semis != 1 {
		t.Fatalf("found %d stray semicolons, want 1", semis)
	}
}

func TestParseTEAVRule(t *testing.T) {
	ctx := NewContext()
	b, err := ParseTE(ctx, "foo.te", "foo", "allow foo_t bar_t:file { read write };\n")
	if err != nil {
		t.Fatalf("ParseTE: %v", err)
	}
	var found bool
	for n := b.Root; n != nil; n = DFSNext(n) {
		if n.Flavor != AVRuleNode {
			continue
		}
		found = true
		p := n.Payload.(AVRulePayload)
		if p.Kind != AVAllow || len(p.Sources) != 1 || p.Sources[0] != "foo_t" {
			t.Fatalf("AVRulePayload = %+v", p)
		}
		if !p.Perms.Contains("read") || !p.Perms.Contains("write") {
			t.Fatalf("perms missing: %+v", p.Perms)
		}
	}
	if !found {
		t.Fatalf("no AVRuleNode found in tree")
	}
}

func TestParseIFInterfaceDef(t *testing.T) {
	ctx := NewContext()
	ctx.SetDecl("alpha_t", "caller", DeclType)

	data := "interface(myiface) {\n" +
		"    type foo_t;\n" +
		"}\n"
	b, err := ParseIF(ctx, "foo.if", "foo", data)
	if err != nil {
		t.Fatalf("ParseIF: %v", err)
	}
	if _, ok := ctx.LookupIfs("myiface"); !ok {
		t.Fatalf("myiface not recorded in ifs_map")
	}
	if b.Root.Flavor != FileRootIF {
		t.Fatalf("root flavor = %v", b.Root.Flavor)
	}
}

func TestParseIFGenRequireAsLastStatementClosesInterface(t *testing.T) {
	ctx := NewContext()
	data := "interface(myiface) {\n" +
		"    gen_require {\n" +
		"        type bar_t;\n" +
		"    }\n" +
		"}\n" +
		"\n" +
		"type after_t;\n"
	b, err := ParseIF(ctx, "foo.if", "foo", data)
	if err != nil {
		t.Fatalf("ParseIF: %v", err)
	}
	if _, ok := ctx.LookupIfs("myiface"); !ok {
		t.Fatalf("myiface not recorded in ifs_map")
	}
	// after_t is declared at the file's top level, outside myiface: if
	// closing the interface had instead matched against the gen_require
	// block it ends on, the cursor would be left inside (or above) the
	// wrong block and this declaration would land in the wrong place in
	// the tree.
	entry, ok := ctx.LookupDecl("after_t")
	if !ok || entry.Module != "foo" {
		t.Fatalf("after_t decl_map entry = %+v, ok=%v", entry, ok)
	}
	var ifaceNode *Node
	for n := b.Root; n != nil; n = DFSNext(n) {
		if n.Flavor == InterfaceDefNode {
			ifaceNode = n
		}
	}
	if ifaceNode == nil {
		t.Fatalf("no InterfaceDefNode found in tree")
	}
	var afterDeclSibling bool
	for n := ifaceNode.Next; n != nil; n = n.Next {
		if n.Flavor == DeclNode && n.Payload.(DeclPayload).Name == "after_t" {
			afterDeclSibling = true
		}
	}
	if !afterDeclSibling {
		t.Fatalf("after_t should be a file-level sibling following the interface definition")
	}
}

func TestParseTESyntaxErrorRecoversAtNextStatement(t *testing.T) {
	ctx := NewContext()
	b, err := ParseTE(ctx, "foo.te", "foo", "bogus ===;\ntype foo_t;\n")
	if err != nil {
		t.Fatalf("ParseTE should recover, not fail: %v", err)
	}
	var declared bool
	for n := b.Root; n != nil; n = DFSNext(n) {
		if n.Flavor == DeclNode {
			declared = true
		}
	}
	if !declared {
		t.Fatalf("parser should still record the declaration after a syntax error")
	}
}
