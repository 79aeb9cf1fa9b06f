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

// This file implements the process-scope symbol maps: declarations,
// interfaces, template bodies, module enablement, and permission-set
// macros. They are populated as a side effect of parsing (see builder.go)
// and queried by checks. All of them live on a single Context so there is
// no hidden global state; the scanner/parser layer is handed a *Context
// rather than reaching for package-level variables.

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Enablement is a module's state as set in modules.conf.
type Enablement int

const (
	ModOff Enablement = iota
	ModBase
	ModModule
)

func (e Enablement) String() string {
	switch e {
	case ModBase:
		return "base"
	case ModModule:
		return "module"
	default:
		return "off"
	}
}

// DeclEntry is the value half of decl_map: the module that declared an
// identifier and the kind it was declared as.
type DeclEntry struct {
	Module string
	Kind   DeclKind
}

// IfsEntry is the value half of ifs_map: where an interface was defined
// and which heuristic flags the builder (or the consolidation pass in
// pkg/pipeline) has set on it.
type IfsEntry struct {
	Module    string
	Transform bool
	Filetrans bool
	Role      bool
}

// TemplateCall records a call made from inside a template body, so that a
// later expansion of the template can re-issue the call with substituted
// arguments.
type TemplateCall struct {
	Name string
	Args StringList
}

// TemplateBody is the ordered recording of what a template declares and
// calls in its body.
type TemplateBody struct {
	Decls []DeclPayload
	Calls []TemplateCall
}

// Context is the single owned analysis context: the current module-name
// slot plus every symbol map, all process-scope for the duration of one
// run. It is mutated only by the parse builder and the phase-1/2 loaders,
// and is read-only from the point checking begins.
type Context struct {
	ModuleName string // current module being parsed; set before each file

	declMap       *linkedhashmap.Map // string -> DeclEntry
	ifsMap        *linkedhashmap.Map // string -> *IfsEntry
	templateMap   *linkedhashmap.Map // string -> *TemplateBody
	modsMap       *linkedhashmap.Map // string -> Enablement
	permMacrosMap *linkedhashmap.Map // string -> []string

	// Diagnostics accumulates engine-internal findings not tied to a
	// single check, such as unsupported nested template expansion.
	Diagnostics []Diagnostic

	freed bool
}

// NewContext returns an empty Context, ready to be populated by a parse.
func NewContext() *Context {
	return &Context{
		declMap:       linkedhashmap.New(),
		ifsMap:        linkedhashmap.New(),
		templateMap:   linkedhashmap.New(),
		modsMap:       linkedhashmap.New(),
		permMacrosMap: linkedhashmap.New(),
	}
}

// SetDecl records name as declared by module of kind, unless name is
// already present, in which case the first writer wins and false is
// returned.
func (c *Context) SetDecl(name, module string, kind DeclKind) bool {
	if _, found := c.declMap.Get(name); found {
		return false
	}
	c.declMap.Put(name, DeclEntry{Module: module, Kind: kind})
	return true
}

// LookupDecl returns the DeclEntry for name, if any.
func (c *Context) LookupDecl(name string) (DeclEntry, bool) {
	v, found := c.declMap.Get(name)
	if !found {
		return DeclEntry{}, false
	}
	return v.(DeclEntry), true
}

// DeclCount counts how many entries in decl_map were declared with the
// given kind, e.g. for tests asserting the reference access-vector file
// loaded the expected counts.
func (c *Context) DeclCount(kind DeclKind) int {
	n := 0
	for _, v := range c.declMap.Values() {
		if v.(DeclEntry).Kind == kind {
			n++
		}
	}
	return n
}

// ifs returns the IfsEntry for name, creating one owned by module if it
// did not already exist.
func (c *Context) ifs(name, module string) *IfsEntry {
	if v, found := c.ifsMap.Get(name); found {
		return v.(*IfsEntry)
	}
	e := &IfsEntry{Module: module}
	c.ifsMap.Put(name, e)
	return e
}

// SetIfsDefined ensures ifs_map has an entry for name owned by module.
func (c *Context) SetIfsDefined(name, module string) {
	c.ifs(name, module)
}

// FlagTransform marks the interface named name as a transform interface.
func (c *Context) FlagTransform(name, module string) {
	c.ifs(name, module).Transform = true
}

// FlagFiletrans marks the interface named name as a filetrans interface.
func (c *Context) FlagFiletrans(name, module string) {
	c.ifs(name, module).Filetrans = true
}

// FlagRole marks the interface named name as a role interface.
func (c *Context) FlagRole(name, module string) {
	c.ifs(name, module).Role = true
}

// LookupIfs returns the IfsEntry recorded for the named interface.
func (c *Context) LookupIfs(name string) (IfsEntry, bool) {
	v, found := c.ifsMap.Get(name)
	if !found {
		return IfsEntry{}, false
	}
	return *v.(*IfsEntry), true
}

// AddTemplateDecl records a declaration made inside template name's body.
func (c *Context) AddTemplateDecl(name string, decl DeclPayload) {
	body := c.template(name)
	body.Decls = append(body.Decls, decl)
}

// AddTemplateCall records an interface call made inside template name's
// body, so that expanding the template later re-issues the call.
func (c *Context) AddTemplateCall(name string, call TemplateCall) {
	body := c.template(name)
	body.Calls = append(body.Calls, call)
}

func (c *Context) template(name string) *TemplateBody {
	if v, found := c.templateMap.Get(name); found {
		return v.(*TemplateBody)
	}
	body := &TemplateBody{}
	c.templateMap.Put(name, body)
	return body
}

// LookupTemplate returns the recorded body for template name, if any.
func (c *Context) LookupTemplate(name string) (*TemplateBody, bool) {
	v, found := c.templateMap.Get(name)
	if !found {
		return nil, false
	}
	return v.(*TemplateBody), true
}

// SetMod records module's enablement. Unlike decl_map, a later call
// overrides an earlier one: modules.conf is read top to bottom and the
// last line for a module wins.
func (c *Context) SetMod(module string, e Enablement) {
	c.modsMap.Put(module, e)
}

// LookupMod returns module's recorded enablement, defaulting to ModOff if
// the module was never mentioned in modules.conf.
func (c *Context) LookupMod(module string) Enablement {
	v, found := c.modsMap.Get(module)
	if !found {
		return ModOff
	}
	return v.(Enablement)
}

// ModsCount returns how many modules were recorded, for test assertions.
func (c *Context) ModsCount() int {
	return c.modsMap.Size()
}

// SetPermMacro records the expansion of a permission-set macro.
func (c *Context) SetPermMacro(name string, perms StringList) {
	c.permMacrosMap.Put(name, perms)
}

// LookupPermMacro returns the expansion of a permission-set macro.
func (c *Context) LookupPermMacro(name string) (StringList, bool) {
	v, found := c.permMacrosMap.Get(name)
	if !found {
		return nil, false
	}
	return v.(StringList), true
}

// Cleanup releases the symbol maps exactly once. A second call is a
// documented no-op, matching the engine's single end-of-run teardown path.
func (c *Context) Cleanup() {
	if c.freed {
		return
	}
	c.declMap.Clear()
	c.ifsMap.Clear()
	c.templateMap.Clear()
	c.modsMap.Clear()
	c.permMacrosMap.Clear()
	c.Diagnostics = nil
	c.freed = true
}
