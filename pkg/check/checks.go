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

// This file implements the concrete checks named in spec.md §6's check-id
// table and registers them into DefaultRegistry. Each check function is
// deliberately narrow: one node flavor, one judgment, matching the
// dispatcher's contract of (check metadata, node) -> finding-or-nil.

import (
	"fmt"
	"strings"

	"github.com/polint/polint/pkg/policy"
)

// fileRoot walks up from n to the file-root node (the one with no parent).
func fileRoot(n *policy.Node) *policy.Node {
	cur := n
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// DefaultRegistry returns a Registry with every built-in check registered,
// in the order listed in spec.md §6.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(policy.DeclNode, &Check{ID: "C-001", DefaultSeverity: Convention, Fn: checkDeclOrder})
	r.Register(policy.InterfaceDefNode, &Check{ID: "C-004", DefaultSeverity: Convention, Fn: checkInterfaceComment})

	r.Register(policy.RequireNode, &Check{ID: "S-001", DefaultSeverity: Style, Fn: checkEmptyRequire})
	r.Register(policy.GenRequireNode, &Check{ID: "S-001", DefaultSeverity: Style, Fn: checkEmptyRequire})
	r.Register(policy.FileContextEntryNode, &Check{ID: "S-002", DefaultSeverity: Style, Fn: checkFCTypeOwnModule})
	r.Register(policy.Semicolon, &Check{ID: "S-003", DefaultSeverity: Style, Fn: checkUselessSemicolon})

	r.Register(policy.AVRuleNode, &Check{ID: "W-001", DefaultSeverity: Warning, Fn: checkUndeclaredTypeUse})
	r.Register(policy.InterfaceDefNode, &Check{ID: "W-002", DefaultSeverity: Warning, Fn: checkUsedNotRequired})
	r.Register(policy.InterfaceDefNode, &Check{ID: "W-003", DefaultSeverity: Warning, Fn: checkRequiredNotUsed})
	r.Register(policy.FileContextEntryNode, &Check{ID: "W-004", DefaultSeverity: Warning, Fn: checkFCRegexSanity})
	r.Register(policy.InterfaceCallNode, &Check{ID: "W-005", DefaultSeverity: Warning, Fn: checkOptionalCrossModuleCall})

	r.Register(policy.ErrorSentinel, &Check{ID: "E-002", DefaultSeverity: Error, Fn: checkFCErrorNode})
	r.Register(policy.FileContextEntryNode, &Check{ID: "E-003", DefaultSeverity: Error, Fn: checkFCUser})
	r.Register(policy.FileContextEntryNode, &Check{ID: "E-004", DefaultSeverity: Error, Fn: checkFCRole})
	r.Register(policy.FileContextEntryNode, &Check{ID: "E-005", DefaultSeverity: Error, Fn: checkFCType})

	r.Register(policy.ErrorSentinel, &Check{ID: "F-001", DefaultSeverity: Fatal, Fn: checkSyntaxError})

	return r
}

// checkDeclOrder flags a declaration whose name sorts before the name of
// the nearest preceding sibling declaration, when that declaration is of
// the same kind (a declaration of another kind in between starts a new
// group, and nothing is compared): a loose convention check that
// declarations of one kind stay alphabetically grouped.
func checkDeclOrder(ctx *policy.Context, n *policy.Node) *Finding {
	payload := n.Payload.(policy.DeclPayload)
	for prev := n.Prev; prev != nil; prev = prev.Prev {
		if prev.Flavor != policy.DeclNode {
			continue
		}
		prevPayload := prev.Payload.(policy.DeclPayload)
		if prevPayload.Kind != payload.Kind {
			return nil
		}
		if strings.Compare(payload.Name, prevPayload.Name) < 0 {
			return &Finding{Message: fmt.Sprintf("%s %q declared out of alphabetical order after %q", payload.Kind, payload.Name, prevPayload.Name)}
		}
		return nil
	}
	return nil
}

// checkInterfaceComment flags an interface definition with no comment node
// immediately preceding it.
func checkInterfaceComment(ctx *policy.Context, n *policy.Node) *Finding {
	if n.Prev == nil || n.Prev.Flavor != policy.Comment {
		name, _ := n.Payload.(string)
		return &Finding{Message: fmt.Sprintf("interface %q has no preceding documentation comment", name)}
	}
	return nil
}

// checkEmptyRequire flags a require/gen_require block containing nothing
// but the mandatory start-of-block sentinel.
func checkEmptyRequire(ctx *policy.Context, n *policy.Node) *Finding {
	if n.FirstChild != nil && n.FirstChild.Next == nil {
		return &Finding{Message: "empty require block"}
	}
	return nil
}

// checkFCTypeOwnModule flags a file-context entry whose type was declared
// by a different module than the one that owns this file-context file.
func checkFCTypeOwnModule(ctx *policy.Context, n *policy.Node) *Finding {
	p := n.Payload.(policy.FileContextPayload)
	decl, found := ctx.LookupDecl(p.Type)
	if !found {
		return nil // E-005 covers nonexistence
	}
	module, _ := fileRoot(n).Payload.(string)
	if decl.Module != module {
		return &Finding{Message: fmt.Sprintf("type %q is owned by module %q, not %q", p.Type, decl.Module, module)}
	}
	return nil
}

// checkUselessSemicolon flags a bare stray semicolon statement.
func checkUselessSemicolon(ctx *policy.Context, n *policy.Node) *Finding {
	return &Finding{Message: "useless semicolon"}
}

// checkUndeclaredTypeUse flags an access-vector rule naming a source or
// target that was never declared.
func checkUndeclaredTypeUse(ctx *policy.Context, n *policy.Node) *Finding {
	p := n.Payload.(policy.AVRulePayload)
	for _, name := range append(append(policy.StringList{}, p.Sources...), p.Targets...) {
		if name == "self" {
			continue
		}
		if _, found := ctx.LookupDecl(name); !found {
			return &Finding{Message: fmt.Sprintf("%q used without an explicit declaration", name)}
		}
	}
	return nil
}

// requireNames collects the names of declarations that appear inside a
// require/gen_require descendant of iface.
func requireNames(iface *policy.Node) map[string]bool {
	out := map[string]bool{}
	var walk func(n *policy.Node, inReq bool)
	walk = func(n *policy.Node, inReq bool) {
		for cur := n; cur != nil; cur = cur.Next {
			nowIn := inReq || cur.Flavor == policy.RequireNode || cur.Flavor == policy.GenRequireNode
			if nowIn && cur.Flavor == policy.DeclNode {
				out[cur.Payload.(policy.DeclPayload).Name] = true
			}
			if cur.FirstChild != nil {
				walk(cur.FirstChild, nowIn)
			}
		}
	}
	walk(iface.FirstChild, false)
	return out
}

// usedTypeNames collects type/attribute names referenced by rule bodies
// anywhere in iface's subtree, outside of require blocks.
func usedTypeNames(iface *policy.Node) []string {
	var out []string
	var walk func(n *policy.Node, inReq bool)
	walk = func(n *policy.Node, inReq bool) {
		for cur := n; cur != nil; cur = cur.Next {
			nowIn := inReq || cur.Flavor == policy.RequireNode || cur.Flavor == policy.GenRequireNode
			if !nowIn {
				switch cur.Flavor {
				case policy.AVRuleNode:
					p := cur.Payload.(policy.AVRulePayload)
					out = append(out, p.Sources...)
					out = append(out, p.Targets...)
				case policy.TypeAttributeNode:
					p := cur.Payload.(policy.TypeAttributePayload)
					out = append(out, p.Type)
				}
			}
			if cur.FirstChild != nil {
				walk(cur.FirstChild, nowIn)
			}
		}
	}
	walk(iface.FirstChild, false)
	return out
}

// checkUsedNotRequired flags a type referenced in an interface's body that
// is not covered by one of its require/gen_require blocks.
func checkUsedNotRequired(ctx *policy.Context, n *policy.Node) *Finding {
	required := requireNames(n)
	for _, name := range usedTypeNames(n) {
		if name == "self" {
			continue
		}
		if !required[name] {
			return &Finding{Message: fmt.Sprintf("%q used in interface body but not required", name)}
		}
	}
	return nil
}

// checkRequiredNotUsed flags a name named in a require/gen_require block
// that is never referenced anywhere else in the interface's body.
func checkRequiredNotUsed(ctx *policy.Context, n *policy.Node) *Finding {
	required := requireNames(n)
	if len(required) == 0 {
		return nil
	}
	used := map[string]bool{}
	for _, name := range usedTypeNames(n) {
		used[name] = true
	}
	for name := range required {
		if !used[name] {
			return &Finding{Message: fmt.Sprintf("%q is required but never used", name)}
		}
	}
	return nil
}

// checkFCRegexSanity flags a file-context path pattern that doesn't look
// like an absolute path regex.
func checkFCRegexSanity(ctx *policy.Context, n *policy.Node) *Finding {
	p := n.Payload.(policy.FileContextPayload)
	if !strings.HasPrefix(p.PathRegex, "/") {
		return &Finding{Message: fmt.Sprintf("file-context path %q does not look like an absolute path", p.PathRegex)}
	}
	return nil
}

// checkOptionalCrossModuleCall flags an interface call wrapped in
// optional_policy whose target interface is defined by a module other
// than the caller's: the optional_policy wrapper suggests the author knew
// the dependency might not be present, which is exactly the case a
// require-block declaration should capture instead.
func checkOptionalCrossModuleCall(ctx *policy.Context, n *policy.Node) *Finding {
	if !inOptional(n) {
		return nil
	}
	p := n.Payload.(policy.InterfaceCallPayload)
	entry, found := ctx.LookupIfs(p.Name)
	module, _ := fileRoot(n).Payload.(string)
	if found && entry.Module != "" && entry.Module != module {
		return &Finding{Message: fmt.Sprintf("cross-module call to %q wrapped in optional_policy", p.Name)}
	}
	return nil
}

func inOptional(n *policy.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Flavor == policy.OptionalPolicyNode {
			return true
		}
	}
	return false
}

// checkFCErrorNode flags an error-sentinel node found while parsing a
// file-context file (as opposed to a TE/IF file, which F-001 covers).
func checkFCErrorNode(ctx *policy.Context, n *policy.Node) *Finding {
	if fileRoot(n).Flavor != policy.FileRootFC {
		return nil
	}
	return &Finding{Message: "malformed file-context entry"}
}

// checkFCUser flags a file-context entry whose user was never declared.
func checkFCUser(ctx *policy.Context, n *policy.Node) *Finding {
	p := n.Payload.(policy.FileContextPayload)
	if _, found := ctx.LookupDecl(p.User); !found {
		return &Finding{Message: fmt.Sprintf("file-context user %q does not exist", p.User)}
	}
	return nil
}

// checkFCRole flags a file-context entry whose role was never declared.
func checkFCRole(ctx *policy.Context, n *policy.Node) *Finding {
	p := n.Payload.(policy.FileContextPayload)
	if _, found := ctx.LookupDecl(p.Role); !found {
		return &Finding{Message: fmt.Sprintf("file-context role %q does not exist", p.Role)}
	}
	return nil
}

// checkFCType flags a file-context entry whose type was never declared.
func checkFCType(ctx *policy.Context, n *policy.Node) *Finding {
	p := n.Payload.(policy.FileContextPayload)
	if _, found := ctx.LookupDecl(p.Type); !found {
		return &Finding{Message: fmt.Sprintf("file-context type %q does not exist", p.Type)}
	}
	return nil
}

// checkSyntaxError flags an error-sentinel node found while parsing a
// TE/IF file.
func checkSyntaxError(ctx *policy.Context, n *policy.Node) *Finding {
	if fileRoot(n).Flavor == policy.FileRootFC {
		return nil
	}
	return &Finding{Message: "syntax error"}
}
