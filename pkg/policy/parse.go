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

// This file implements the grammar-driven parser for the rule-and-
// declaration (TE) and interface-definition (IF) file flavors. Per
// spec.md §1, the exact grammar is an external concern; what matters to
// the engine is that every statement below is translated into exactly the
// builder call spec.md §4.4 documents for it. A statement that begins
// with an unrecognized word or token recovers at statement granularity
// (an ErrorSentinel is inserted and the scanner skips to the next
// statement boundary), so it does not lose the rest of the file. A
// malformed statement of a recognized kind (a declaration, rule, block,
// or interface call) is not recovered: parsing of the file stops there
// with a PARSE_ERROR.

import (
	"github.com/polint/polint/pkg/policy/errkind"
)

type parser struct {
	lex *lexer
	b   *Builder
	cur token
}

func newParser(b *Builder, data string) *parser {
	p := &parser{lex: newLexer(data), b: b}
	p.advance()
	return p
}

func (p *parser) advance() {
	p.cur = p.lex.next()
}

func (p *parser) expect(k tokenKind) (token, error) {
	if p.cur.kind != k {
		return token{}, errkind.New(errkind.PARSE_ERROR, p.b.loc(p.cur.line), "unexpected token %q", p.cur.text)
	}
	t := p.cur
	p.advance()
	return t, nil
}

func (p *parser) word() (string, error) {
	t, err := p.expect(tWord)
	return t.text, err
}

// list parses either a bare word or a brace-delimited, space-separated set
// of words into a StringList.
func (p *parser) list() (StringList, error) {
	if p.cur.kind == tLBrace {
		p.advance()
		var out StringList
		for p.cur.kind != tRBrace {
			w, err := p.word()
			if err != nil {
				return nil, err
			}
			out = append(out, w)
		}
		p.advance() // consume }
		return out, nil
	}
	w, err := p.word()
	if err != nil {
		return nil, err
	}
	return StringList{w}, nil
}

// ParseTE parses data (the contents of a type-enforcement file) into a
// tree rooted at a FileRootTE node, using module as the owning module
// name, and returns the Builder holding that tree.
func ParseTE(ctx *Context, file, module, data string) (*Builder, error) {
	return parseRuleFile(ctx, file, module, data, FileRootTE)
}

// ParseIF parses data (the contents of an interface-definition file) into
// a tree rooted at a FileRootIF node.
func ParseIF(ctx *Context, file, module, data string) (*Builder, error) {
	return parseRuleFile(ctx, file, module, data, FileRootIF)
}

func parseRuleFile(ctx *Context, file, module, data string, root Flavor) (*Builder, error) {
	b, err := NewBuilder(ctx, file, root, module, 0)
	if err != nil {
		return nil, err
	}
	p := newParser(b, data)
	if err := p.parseBody(); err != nil {
		return b, err
	}
	return b, nil
}

// parseBody parses statements until EOF. It is also used, with a nested
// call, to parse the body of a block up to its closing brace: the caller
// that opened the block is responsible for calling EndBlock once
// parseBody returns having stopped at a tRBrace.
func (p *parser) parseBody() error {
	for p.cur.kind != tEOF && p.cur.kind != tRBrace {
		if err := p.statement(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) statement() error {
	line := p.cur.line
	switch p.cur.kind {
	case tComment:
		text := p.cur.text
		p.advance()
		_, err := p.b.Comment(text, line)
		return err
	case tSemi:
		p.advance()
		_, err := p.b.Semicolon(line)
		return err
	case tWord:
		return p.keywordStatement()
	default:
		p.advance()
		_, err := p.b.ErrorSentinel(line)
		return err
	}
}

func (p *parser) keywordStatement() error {
	line := p.cur.line
	kw := p.cur.text
	p.advance()

	switch kw {
	case "type":
		return p.declaration(DeclType, line)
	case "attribute":
		return p.declaration(DeclAttribute, line)
	case "role":
		return p.declaration(DeclRole, line)
	case "class":
		return p.declaration(DeclClass, line)
	case "permission":
		return p.declaration(DeclPermission, line)
	case "user":
		return p.declaration(DeclUser, line)
	case "bool":
		return p.declaration(DeclBool, line)
	case "typealias":
		return p.typealias(line)
	case "allow":
		return p.avRule(AVAllow, line)
	case "auditallow":
		return p.avRule(AVAuditAllow, line)
	case "dontaudit":
		return p.avRule(AVDontAudit, line)
	case "neverallow":
		return p.avRule(AVNeverAllow, line)
	case "role_allow":
		return p.roleAllow(line)
	case "type_transition":
		return p.typeTransition(TransType, line)
	case "type_transition_role":
		return p.typeTransition(TransRole, line)
	case "type_transition_user":
		return p.typeTransition(TransUser, line)
	case "role_transition":
		return p.roleTransition(line)
	case "permissive":
		return p.permissive(line)
	case "typeattribute":
		return p.typeAttribute(line)
	case "require":
		return p.block(RequireNode, nil, line)
	case "gen_require":
		return p.block(GenRequireNode, nil, line)
	case "optional_policy":
		if err := p.block(OptionalPolicyNode, nil, line); err != nil {
			return err
		}
		if p.cur.kind == tWord && p.cur.text == "else" {
			elseLine := p.cur.line
			p.advance()
			return p.block(OptionalElseNode, nil, elseLine)
		}
		return nil
	case "tunable_policy":
		return p.conditionalBlock(TunablePolicyNode, line)
	case "ifdef":
		return p.conditionalBlock(IfdefNode, line)
	case "interface":
		return p.ifaceOrTemplateDef(InterfaceDefNode, line)
	case "template":
		return p.ifaceOrTemplateDef(TemplateDefNode, line)
	default:
		if p.cur.kind == tLParen {
			return p.interfaceCall(kw, line)
		}
		_, err := p.b.ErrorSentinel(line)
		if err != nil {
			return err
		}
		return p.skipToSemi()
	}
}

// skipToSemi recovers from a statement-level parse error by discarding
// tokens until the next statement boundary.
func (p *parser) skipToSemi() error {
	for p.cur.kind != tSemi && p.cur.kind != tEOF && p.cur.kind != tRBrace {
		p.advance()
	}
	if p.cur.kind == tSemi {
		p.advance()
	}
	return nil
}

func (p *parser) declaration(kind DeclKind, line int) error {
	name, err := p.word()
	if err != nil {
		return err
	}
	var attrs StringList
	for p.cur.kind == tComma {
		p.advance()
		w, err := p.word()
		if err != nil {
			return err
		}
		attrs = append(attrs, w)
	}
	if _, err := p.expect(tSemi); err != nil {
		return err
	}
	_, err = p.b.Declare(kind, name, attrs, line)
	return err
}

func (p *parser) typealias(line int) error {
	target, err := p.word()
	if err != nil {
		return err
	}
	if w, _ := p.word(); w != "alias" {
		return errkind.New(errkind.PARSE_ERROR, p.b.loc(line), "typealias missing 'alias' keyword")
	}
	for {
		name, err := p.word()
		if err != nil {
			return err
		}
		if _, err := p.b.AliasOf(target, name, line); err != nil {
			return err
		}
		if p.cur.kind != tComma {
			break
		}
		p.advance()
	}
	_, err = p.expect(tSemi)
	return err
}

func (p *parser) avRule(kind AVRuleKind, line int) error {
	sources, err := p.list()
	if err != nil {
		return err
	}
	targets, err := p.list()
	if err != nil {
		return err
	}
	if _, err := p.expect(tColon); err != nil {
		return err
	}
	classes, err := p.list()
	if err != nil {
		return err
	}
	perms, err := p.list()
	if err != nil {
		return err
	}
	if _, err := p.expect(tSemi); err != nil {
		return err
	}
	_, err = p.b.AVRule(kind, sources, targets, classes, perms, line)
	return err
}

func (p *parser) roleAllow(line int) error {
	from, err := p.word()
	if err != nil {
		return err
	}
	to, err := p.word()
	if err != nil {
		return err
	}
	if _, err := p.expect(tSemi); err != nil {
		return err
	}
	_, err = p.b.RoleAllow(from, to, line)
	return err
}

func (p *parser) typeTransition(kind TransitionKind, line int) error {
	sources, err := p.list()
	if err != nil {
		return err
	}
	targets, err := p.list()
	if err != nil {
		return err
	}
	if _, err := p.expect(tColon); err != nil {
		return err
	}
	classes, err := p.list()
	if err != nil {
		return err
	}
	def, err := p.word()
	if err != nil {
		return err
	}
	var filename string
	if p.cur.kind == tWord {
		filename, err = p.word()
		if err != nil {
			return err
		}
	}
	if _, err := p.expect(tSemi); err != nil {
		return err
	}
	_, err = p.b.TypeTransition(sources, targets, classes, def, filename, kind, line)
	return err
}

func (p *parser) roleTransition(line int) error {
	sources, err := p.list()
	if err != nil {
		return err
	}
	targets, err := p.list()
	if err != nil {
		return err
	}
	def, err := p.word()
	if err != nil {
		return err
	}
	if _, err := p.expect(tSemi); err != nil {
		return err
	}
	_, err = p.b.RoleTransition(sources, targets, def, line)
	return err
}

func (p *parser) permissive(line int) error {
	domain, err := p.word()
	if err != nil {
		return err
	}
	if _, err := p.expect(tSemi); err != nil {
		return err
	}
	_, err = p.b.Permissive(domain, line)
	return err
}

func (p *parser) typeAttribute(line int) error {
	typ, err := p.word()
	if err != nil {
		return err
	}
	var attrs StringList
	for {
		if p.cur.kind == tComma {
			p.advance()
		}
		if p.cur.kind != tWord {
			break
		}
		w, err := p.word()
		if err != nil {
			return err
		}
		attrs = append(attrs, w)
	}
	if _, err := p.expect(tSemi); err != nil {
		return err
	}
	_, err = p.b.TypeAttribute(typ, attrs, line)
	return err
}

func (p *parser) block(flavor Flavor, payload interface{}, line int) error {
	if _, err := p.expect(tLBrace); err != nil {
		return err
	}
	if _, err := p.b.BeginBlock(flavor, payload, line); err != nil {
		return err
	}
	if err := p.parseBody(); err != nil {
		return err
	}
	if _, err := p.expect(tRBrace); err != nil {
		return err
	}
	if flavor == InterfaceDefNode {
		// Interface and template definitions share a closing token in the
		// grammar, so the builder's own retry-as-template-close recovery
		// is exercised here rather than a plain EndBlock.
		return p.b.EndInterfaceDef()
	}
	return p.b.EndBlock(flavor)
}

// conditionalBlock parses "KEYWORD(cond[, cond...]) { ... }" blocks, where
// the condition list is consumed but not retained: spec.md's payload for
// TunablePolicyNode/IfdefNode is empty.
func (p *parser) conditionalBlock(flavor Flavor, line int) error {
	if p.cur.kind == tLParen {
		p.advance()
		for p.cur.kind != tRParen {
			if p.cur.kind == tEOF {
				return errkind.New(errkind.PARSE_ERROR, p.b.loc(line), "unterminated condition")
			}
			p.advance()
		}
		p.advance() // consume )
	}
	return p.block(flavor, nil, line)
}

func (p *parser) ifaceOrTemplateDef(flavor Flavor, line int) error {
	if _, err := p.expect(tLParen); err != nil {
		return err
	}
	name, err := p.word()
	if err != nil {
		return err
	}
	if _, err := p.expect(tRParen); err != nil {
		return err
	}
	return p.block(flavor, name, line)
}

func (p *parser) interfaceCall(name string, line int) error {
	p.advance() // consume (
	var args StringList
	for p.cur.kind != tRParen {
		w, err := p.word()
		if err != nil {
			return err
		}
		args = append(args, w)
		if p.cur.kind == tComma {
			p.advance()
		}
	}
	p.advance() // consume )
	if _, err := p.expect(tSemi); err != nil {
		return err
	}
	_, err := p.b.InterfaceCall(name, args, line)
	return err
}
