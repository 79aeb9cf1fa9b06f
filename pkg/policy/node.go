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

// This file contains the uniform syntax tree used as the shared
// intermediate representation for all three policy file flavors, and the
// tree-shape primitives every check relies on: sibling insertion, child
// insertion, and depth-first traversal.

import "fmt"

// Flavor tags the variant payload carried by a Node. The payload type for
// each flavor is documented on the payload struct itself.
type Flavor int

const (
	FileRootTE Flavor = iota
	FileRootIF
	FileRootFC

	Comment
	Semicolon
	StartOfBlock
	Cleanup
	ErrorSentinel

	DeclNode
	AliasNode
	TypeAliasNode
	AVRuleNode
	RoleAllowNode
	TypeTransitionNode
	RoleTransitionNode
	InterfaceCallNode
	InterfaceDefNode
	TemplateDefNode
	RequireNode
	GenRequireNode
	OptionalPolicyNode
	OptionalElseNode
	TunablePolicyNode
	IfdefNode
	PermissiveNode
	TypeAttributeNode
	FileContextEntryNode
)

func (f Flavor) String() string {
	switch f {
	case FileRootTE:
		return "file-root-te"
	case FileRootIF:
		return "file-root-if"
	case FileRootFC:
		return "file-root-fc"
	case Comment:
		return "comment"
	case Semicolon:
		return "semicolon"
	case StartOfBlock:
		return "start-of-block"
	case Cleanup:
		return "cleanup"
	case ErrorSentinel:
		return "error-sentinel"
	case DeclNode:
		return "declaration"
	case AliasNode:
		return "alias"
	case TypeAliasNode:
		return "type-alias"
	case AVRuleNode:
		return "av-rule"
	case RoleAllowNode:
		return "role-allow"
	case TypeTransitionNode:
		return "type-transition"
	case RoleTransitionNode:
		return "role-transition"
	case InterfaceCallNode:
		return "interface-call"
	case InterfaceDefNode:
		return "interface-definition"
	case TemplateDefNode:
		return "template-definition"
	case RequireNode:
		return "require"
	case GenRequireNode:
		return "gen-require"
	case OptionalPolicyNode:
		return "optional-policy"
	case OptionalElseNode:
		return "optional-else"
	case TunablePolicyNode:
		return "tunable-policy"
	case IfdefNode:
		return "ifdef"
	case PermissiveNode:
		return "permissive"
	case TypeAttributeNode:
		return "type-attribute"
	case FileContextEntryNode:
		return "file-context-entry"
	default:
		return "unknown"
	}
}

// blockOpener reports whether a node of this flavor always has a child
// chain whose first element is a StartOfBlock sentinel.
func (f Flavor) blockOpener() bool {
	switch f {
	case FileRootTE, FileRootIF, FileRootFC, RequireNode, GenRequireNode,
		OptionalPolicyNode, OptionalElseNode, TunablePolicyNode, IfdefNode,
		InterfaceDefNode, TemplateDefNode:
		return true
	default:
		return false
	}
}

// DeclKind enumerates the declaration kinds of spec.md's Declaration payload.
type DeclKind int

const (
	DeclType DeclKind = iota
	DeclAttribute
	DeclRole
	DeclClass
	DeclPermission
	DeclUser
	DeclBool
)

func (k DeclKind) String() string {
	switch k {
	case DeclType:
		return "type"
	case DeclAttribute:
		return "attribute"
	case DeclRole:
		return "role"
	case DeclClass:
		return "class"
	case DeclPermission:
		return "permission"
	case DeclUser:
		return "user"
	case DeclBool:
		return "bool"
	default:
		return "unknown"
	}
}

// DeclPayload is the variant payload of a DeclNode.
type DeclPayload struct {
	Kind  DeclKind
	Name  string
	Attrs StringList
}

// AVRuleKind enumerates the access-vector rule kinds.
type AVRuleKind int

const (
	AVAllow AVRuleKind = iota
	AVAuditAllow
	AVDontAudit
	AVNeverAllow
)

func (k AVRuleKind) String() string {
	switch k {
	case AVAllow:
		return "allow"
	case AVAuditAllow:
		return "auditallow"
	case AVDontAudit:
		return "dontaudit"
	case AVNeverAllow:
		return "neverallow"
	default:
		return "unknown"
	}
}

// AVRulePayload is the variant payload of an AVRuleNode.
type AVRulePayload struct {
	Kind    AVRuleKind
	Sources StringList
	Targets StringList
	Classes StringList
	Perms   StringList
}

// RoleAllowPayload is the variant payload of a RoleAllowNode.
type RoleAllowPayload struct {
	From string
	To   string
}

// TransitionKind enumerates the default-object kind of a type_transition.
type TransitionKind int

const (
	TransType TransitionKind = iota
	TransRole
	TransUser
)

// TypeTransitionPayload is the variant payload of a TypeTransitionNode.
type TypeTransitionPayload struct {
	Sources  StringList
	Targets  StringList
	Classes  StringList
	Default  string
	Filename string // optional, "" if absent
	Kind     TransitionKind
}

// RoleTransitionPayload is the variant payload of a RoleTransitionNode.
type RoleTransitionPayload struct {
	Sources StringList
	Targets StringList
	Default string
}

// InterfaceCallPayload is the variant payload of an InterfaceCallNode.
type InterfaceCallPayload struct {
	Name string
	Args StringList
}

// TypeAttributePayload is the variant payload of a TypeAttributeNode.
type TypeAttributePayload struct {
	Type  string
	Attrs StringList
}

// FileContextPayload is the variant payload of a FileContextEntryNode.
type FileContextPayload struct {
	PathRegex   string
	ObjectClass string
	User        string
	Role        string
	Type        string
	Sensitivity string
}

// Node is a single element of the uniform syntax tree. It sits in a
// doubly-linked sibling list with an optional first child, forming a tree.
type Node struct {
	Flavor  Flavor
	Payload interface{} // type determined by Flavor; see payload structs above
	Line    int         // 1-based source line

	Parent      *Node
	Prev        *Node
	Next        *Node
	FirstChild  *Node

	// Exceptions holds the csv list of check IDs silenced at this node by
	// an in-source "selint-disable:<csv>" annotation. Empty if none.
	Exceptions string

	freed bool
}

// NewNode allocates a node with no links. line is the 1-based source line.
func NewNode(flavor Flavor, payload interface{}, line int) *Node {
	return &Node{Flavor: flavor, Payload: payload, Line: line}
}

// InsertNext appends a new sibling immediately after cursor and returns it.
// cursor itself is unchanged. This is the only way new root-level siblings
// are created.
func InsertNext(cursor *Node, flavor Flavor, payload interface{}, line int) (*Node, error) {
	if cursor == nil {
		return nil, fmt.Errorf("insert_next: nil cursor")
	}
	n := NewNode(flavor, payload, line)
	n.Parent = cursor.Parent
	n.Prev = cursor
	n.Next = cursor.Next
	if cursor.Next != nil {
		cursor.Next.Prev = n
	}
	cursor.Next = n
	return n, nil
}

// InsertChild inserts a new child of cursor. If cursor has no children the
// new node becomes FirstChild; otherwise it is appended to the tail of the
// existing child chain.
func InsertChild(cursor *Node, flavor Flavor, payload interface{}, line int) (*Node, error) {
	if cursor == nil {
		return nil, fmt.Errorf("insert_child: nil cursor")
	}
	n := NewNode(flavor, payload, line)
	n.Parent = cursor
	if cursor.FirstChild == nil {
		cursor.FirstChild = n
		return n, nil
	}
	tail := cursor.FirstChild
	for tail.Next != nil {
		tail = tail.Next
	}
	tail.Next = n
	n.Prev = tail
	return n, nil
}

// DFSNext returns the depth-first successor of n in source order: its
// first child if present, else its next sibling, else the next sibling of
// the nearest ancestor that has one, else nil when the traversal is
// exhausted. This is the traversal every check dispatch walk uses.
func DFSNext(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Next != nil {
			return cur.Next
		}
	}
	return nil
}

// IsInRequire reports whether n has an ancestor whose flavor is RequireNode
// or GenRequireNode.
func IsInRequire(n *Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Flavor == RequireNode || cur.Flavor == GenRequireNode {
			return true
		}
	}
	return false
}

// EnclosingInterface walks up from n and returns the nearest ancestor that
// is an InterfaceDefNode, or nil if n is not inside one.
func EnclosingInterface(n *Node) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Flavor == InterfaceDefNode {
			return cur
		}
	}
	return nil
}

// EnclosingTemplate walks up from n and returns the nearest ancestor that
// is a TemplateDefNode, or nil if n is not inside one.
func EnclosingTemplate(n *Node) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Flavor == TemplateDefNode {
			return cur
		}
	}
	return nil
}

// FreeSubtree releases n, its children, and its sibling chain. It must only
// be called at a chain head (a node with no Prev); calling it elsewhere
// returns an error rather than silently freeing a sibling's predecessors.
// FreeSubtree is idempotent: freeing an already-freed subtree is a no-op.
func FreeSubtree(n *Node) error {
	if n == nil {
		return nil
	}
	if n.Prev != nil {
		return fmt.Errorf("free_subtree: %s is not a chain head", n.Flavor)
	}
	return freeChain(n)
}

func freeChain(n *Node) error {
	for cur := n; cur != nil; {
		next := cur.Next
		if err := freeOne(cur); err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func freeOne(n *Node) error {
	if n.freed {
		return nil
	}
	if n.FirstChild != nil {
		if err := freeChain(n.FirstChild); err != nil {
			return err
		}
	}
	n.freed = true
	n.Payload = nil
	n.FirstChild = nil
	n.Parent = nil
	n.Prev = nil
	n.Next = nil
	return nil
}
