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

// This file implements the Builder: the set of operations the scanner and
// grammar-driven parser invoke to grow the tree and update the symbol
// maps. The Builder is the only code that constructs nodes and writes to
// the Context's symbol maps; the scanner/parser itself is treated as an
// external black box that calls these methods in source order.
//
// The Builder holds a single insertion cursor. Each typed Insert* method
// appends a sibling after the cursor via InsertNext and then advances the
// cursor to the new node, which is what lets a linear stream of builder
// calls grow a tree without the caller tracking node pointers itself.

import (
	"fmt"
	"strings"

	"github.com/polint/polint/pkg/policy/errkind"
)

// TransformSuffixes is the vendor-configurable list of interface name
// suffixes that mark an interface as a "transform" interface by naming
// convention alone (spec.md §6, open question b: the exact set is
// configuration, not a hard-coded constant).
var TransformSuffixes = []string{
	"_domtrans",
	"_run",
	"_auto_trans",
	"_spec_domtrans",
}

// HasTransformSuffix reports whether name ends in one of TransformSuffixes.
func HasTransformSuffix(name string) bool {
	for _, suf := range TransformSuffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}

// disableDirective is the in-source annotation prefix recognized inside a
// comment's text (spec.md §4.4): "...selint-disable:<csv>".
const disableDirective = "selint-disable:"

// Builder grows one file's tree and updates ctx as a side effect.
type Builder struct {
	Ctx    *Context
	File   string
	Root   *Node
	cursor *Node

	// pending holds a disable-directive csv seen in a comment, waiting to
	// be attached to the next real (non-comment) node inserted.
	pending string

	// declNodes maps a declared name to its DeclNode within this file, so
	// a later typealias statement can attach an AliasNode child to it.
	declNodes map[string]*Node
}

// NewBuilder starts a new file's tree with a file-root node of the given
// flavor, and sets ctx.ModuleName to module before returning, since every
// subsequent declaration and interface side effect needs to know its
// owning module. Returns NO_MOD_NAME if module is empty.
func NewBuilder(ctx *Context, file string, rootFlavor Flavor, module string, line int) (*Builder, error) {
	if module == "" {
		return nil, errkind.New(errkind.NO_MOD_NAME, file, "module name must be set before parsing")
	}
	ctx.ModuleName = module
	root := NewNode(rootFlavor, module, line)
	// A file root is itself a block-opening flavor (see blockOpener):
	// every top-level statement in the file is a child of the file root,
	// reached through the mandatory start-of-block sentinel, exactly as
	// for any other block. This is what lets fileRoot (checks.go) walk a
	// node's Parent chain back to the file root from anywhere in the
	// tree, and is what spec.md's "every non-root node has a parent"
	// invariant requires.
	sentinel, err := InsertChild(root, StartOfBlock, nil, line)
	if err != nil {
		return nil, errkind.New(errkind.OUT_OF_MEM, file, "%v", err)
	}
	return &Builder{Ctx: ctx, File: file, Root: root, cursor: sentinel, declNodes: map[string]*Node{}}, nil
}

// Cursor returns the current insertion point, mostly for tests.
func (b *Builder) Cursor() *Node { return b.cursor }

// insert is the shared plumbing for every non-block Insert* method: append
// after the cursor and advance the cursor to the new node.
func (b *Builder) insert(flavor Flavor, payload interface{}, line int) (*Node, error) {
	n, err := InsertNext(b.cursor, flavor, payload, line)
	if err != nil {
		return nil, errkind.New(errkind.OUT_OF_MEM, b.loc(line), "%v", err)
	}
	b.cursor = n
	if flavor != Comment && b.pending != "" {
		n.Exceptions = b.pending
		b.pending = ""
	}
	return n, nil
}

func (b *Builder) loc(line int) string {
	return fmt.Sprintf("%s:%d", b.File, line)
}

// Comment inserts a comment node carrying text, and, if text contains a
// "selint-disable:<csv>" directive, remembers the csv so it can be
// attached to the next real node inserted (spec.md §4.4). A comment never
// itself carries Exceptions: it is the directive's vehicle, not its
// target.
func (b *Builder) Comment(text string, line int) (*Node, error) {
	n, err := b.insert(Comment, text, line)
	if err != nil {
		return nil, err
	}
	if idx := strings.Index(text, disableDirective); idx >= 0 {
		b.pending = strings.TrimSpace(text[idx+len(disableDirective):])
	}
	return n, nil
}

// Semicolon inserts a stray-semicolon node (S-003 material).
func (b *Builder) Semicolon(line int) (*Node, error) {
	return b.insert(Semicolon, nil, line)
}

// ErrorSentinel inserts a node marking a syntax error recovery point.
func (b *Builder) ErrorSentinel(line int) (*Node, error) {
	return b.insert(ErrorSentinel, nil, line)
}

// Alias inserts an alias or type-alias node with string payload name.
func (b *Builder) Alias(typeAlias bool, name string, line int) (*Node, error) {
	flavor := AliasNode
	if typeAlias {
		flavor = TypeAliasNode
	}
	return b.insert(flavor, name, line)
}

// Declare inserts a declaration node and applies the declaration-recording
// side effects of spec.md §4.4.
func (b *Builder) Declare(kind DeclKind, name string, attrs StringList, line int) (*Node, error) {
	payload := DeclPayload{Kind: kind, Name: name, Attrs: attrs}
	n, err := b.insert(DeclNode, payload, line)
	if err != nil {
		return nil, err
	}
	b.declNodes[name] = n
	b.recordDeclaration(n, payload)
	return n, nil
}

// AliasOf attaches aliasName as an AliasNode child of the declaration node
// previously recorded for target, and records aliasName in the symbol maps
// the same way a declaration of target's kind would be. If target was
// never declared in this file it returns BAD_ARG and changes nothing.
func (b *Builder) AliasOf(target, aliasName string, line int) (*Node, error) {
	declNode, ok := b.declNodes[target]
	if !ok {
		return nil, errkind.New(errkind.BAD_ARG, b.loc(line), "alias of undeclared name %q", target)
	}
	n, err := InsertChild(declNode, AliasNode, aliasName, line)
	if err != nil {
		return nil, errkind.New(errkind.OUT_OF_MEM, b.loc(line), "%v", err)
	}
	kind := declNode.Payload.(DeclPayload).Kind
	b.recordDeclaration(n, DeclPayload{Kind: kind, Name: aliasName})
	return n, nil
}

// recordDeclaration implements spec.md §4.4's declaration bullet: template
// body recording, the role/attribute-list-is-an-association exception, and
// interface role-flagging from a leading "$" attribute.
func (b *Builder) recordDeclaration(n *Node, payload DeclPayload) {
	if IsInRequire(n) {
		return
	}
	if tmpl := EnclosingTemplate(n); tmpl != nil {
		name := tmpl.Payload.(string)
		if payload.Kind == DeclRole && len(payload.Attrs) > 0 {
			// A role declaration carrying an attribute list inside a
			// template is an association, not a declaration.
			return
		}
		b.Ctx.AddTemplateDecl(name, payload)
	} else {
		b.Ctx.SetDecl(payload.Name, b.Ctx.ModuleName, payload.Kind)
	}

	if iface := EnclosingInterface(n); iface != nil && payload.Kind == DeclRole {
		for _, a := range payload.Attrs {
			if strings.HasPrefix(a, "$") {
				b.Ctx.FlagRole(iface.Payload.(string), b.Ctx.ModuleName)
				break
			}
		}
	}
}

// AVRule inserts an access-vector rule node and applies the transform-flag
// side effect of spec.md §4.4.
func (b *Builder) AVRule(kind AVRuleKind, sources, targets, classes, perms StringList, line int) (*Node, error) {
	payload := AVRulePayload{Kind: kind, Sources: sources, Targets: targets, Classes: classes, Perms: perms}
	n, err := b.insert(AVRuleNode, payload, line)
	if err != nil {
		return nil, err
	}
	if iface := EnclosingInterface(n); iface != nil {
		name := iface.Payload.(string)
		if HasTransformSuffix(name) && (perms.Contains("associate") || perms.Contains("mounton")) {
			b.Ctx.FlagTransform(name, b.Ctx.ModuleName)
		}
	}
	return n, nil
}

// RoleAllow inserts a role_allow node.
func (b *Builder) RoleAllow(from, to string, line int) (*Node, error) {
	return b.insert(RoleAllowNode, RoleAllowPayload{From: from, To: to}, line)
}

// TypeTransition inserts a type_transition node and applies the filetrans
// flagging side effect of spec.md §4.4.
func (b *Builder) TypeTransition(sources, targets, classes StringList, def, filename string, kind TransitionKind, line int) (*Node, error) {
	payload := TypeTransitionPayload{Sources: sources, Targets: targets, Classes: classes, Default: def, Filename: filename, Kind: kind}
	n, err := b.insert(TypeTransitionNode, payload, line)
	if err != nil {
		return nil, err
	}
	if iface := EnclosingInterface(n); iface != nil && !classes.Contains("process") {
		b.Ctx.FlagFiletrans(iface.Payload.(string), b.Ctx.ModuleName)
	}
	return n, nil
}

// RoleTransition inserts a role_transition node.
func (b *Builder) RoleTransition(sources, targets StringList, def string, line int) (*Node, error) {
	return b.insert(RoleTransitionNode, RoleTransitionPayload{Sources: sources, Targets: targets, Default: def}, line)
}

// Permissive inserts a permissive statement node.
func (b *Builder) Permissive(domain string, line int) (*Node, error) {
	return b.insert(PermissiveNode, domain, line)
}

// TypeAttribute inserts a type-attribute association node and applies the
// transform-flag side effect of spec.md §4.4 (unconditional inside a
// transform-suffixed interface, unlike the AVRule case).
func (b *Builder) TypeAttribute(typ string, attrs StringList, line int) (*Node, error) {
	n, err := b.insert(TypeAttributeNode, TypeAttributePayload{Type: typ, Attrs: attrs}, line)
	if err != nil {
		return nil, err
	}
	if iface := EnclosingInterface(n); iface != nil && HasTransformSuffix(iface.Payload.(string)) {
		b.Ctx.FlagTransform(iface.Payload.(string), b.Ctx.ModuleName)
	}
	return n, nil
}

// FileContextEntry inserts a file-context labelling entry.
func (b *Builder) FileContextEntry(p FileContextPayload, line int) (*Node, error) {
	return b.insert(FileContextEntryNode, p, line)
}

// InterfaceCall inserts an interface-call node and applies the
// template-body-recording-vs-expansion side effect of spec.md §4.4.
func (b *Builder) InterfaceCall(name string, args StringList, line int) (*Node, error) {
	n, err := b.insert(InterfaceCallNode, InterfaceCallPayload{Name: name, Args: args}, line)
	if err != nil {
		return nil, err
	}
	if tmpl := EnclosingTemplate(n); tmpl != nil {
		b.Ctx.AddTemplateCall(tmpl.Payload.(string), TemplateCall{Name: name, Args: args})
	} else {
		ExpandCall(b.Ctx, b.File, name, args, line)
	}
	if name == "filetrans_pattern" {
		if iface := EnclosingInterface(n); iface != nil {
			b.Ctx.FlagFiletrans(iface.Payload.(string), b.Ctx.ModuleName)
		}
	}
	return n, nil
}

// BeginBlock inserts a block-opening node (advancing the cursor to it),
// then inserts the mandatory StartOfBlock sentinel as its first child and
// moves the cursor into the block.
func (b *Builder) BeginBlock(flavor Flavor, payload interface{}, line int) (*Node, error) {
	block, err := b.insert(flavor, payload, line)
	if err != nil {
		return nil, err
	}
	sentinel, err := InsertChild(block, StartOfBlock, nil, line)
	if err != nil {
		return nil, errkind.New(errkind.OUT_OF_MEM, b.loc(line), "%v", err)
	}
	b.cursor = sentinel
	if block.Payload != nil {
		if name, ok := block.Payload.(string); ok && (flavor == InterfaceDefNode || flavor == TemplateDefNode) {
			b.Ctx.SetIfsDefined(name, b.Ctx.ModuleName)
		}
	}
	return block, nil
}

// EndBlock moves the cursor to its parent, i.e. out of the block the
// cursor currently sits in. It fails with NOT_IN_BLOCK if that parent's
// flavor does not match expected. This is a flat, one-level check (mirrors
// the reference end_block, which only ever looks at cur->parent->flavor):
// it must not climb past a block node the cursor itself already sits on,
// since the cursor can legitimately be a nested block (gen_require,
// optional_policy, ...) that was the last statement inserted into the
// block now being closed.
func (b *Builder) EndBlock(expected Flavor) error {
	parent := b.cursor.Parent
	if parent == nil || parent.Flavor != expected {
		return errkind.New(errkind.NOT_IN_BLOCK, b.File, "no open %s block", expected)
	}
	b.cursor = parent
	return nil
}

// EndInterfaceDef closes an interface definition. Because interface
// definitions and template definitions share a closing token in the
// grammar, a NOT_IN_BLOCK here is retried as a template close before it is
// propagated, matching the original runner's behavior.
func (b *Builder) EndInterfaceDef() error {
	if err := b.EndBlock(InterfaceDefNode); err != nil {
		if errkind.KindOf(err) == errkind.NOT_IN_BLOCK {
			return b.EndBlock(TemplateDefNode)
		}
		return err
	}
	return nil
}

