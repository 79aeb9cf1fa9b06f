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

// Package check implements the static check registry and the individual
// check functions dispatched by the pipeline driver (spec.md §4.6).
package check

import (
	"strings"

	"github.com/polint/polint/pkg/policy"
)

// Fn is a single check function. It inspects n (and, for cross-file
// questions, ctx's symbol maps) and returns a Finding, or nil if the node
// does not trigger it. The dispatcher fills in File and Line.
type Fn func(ctx *policy.Context, n *policy.Node) *Finding

// Check is one registered check: its identity, default severity, and the
// function that evaluates it.
type Check struct {
	ID              string
	DefaultSeverity Severity
	Fn              Fn
}

// Registry maps a node flavor to the ordered list of checks dispatched
// against nodes of that flavor. Order is registration order, per spec.md
// §4.6 ("registration preserves insertion order").
type Registry struct {
	byFlavor map[policy.Flavor][]*Check
	byID     map[string]*Check
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byFlavor: map[policy.Flavor][]*Check{}, byID: map[string]*Check{}}
}

// Register adds c to the list of checks dispatched for flavor.
func (r *Registry) Register(flavor policy.Flavor, c *Check) {
	r.byFlavor[flavor] = append(r.byFlavor[flavor], c)
	r.byID[c.ID] = c
}

// ChecksFor returns the ordered checks registered for flavor.
func (r *Registry) ChecksFor(flavor policy.Flavor) []*Check {
	return r.byFlavor[flavor]
}

// Lookup returns the check registered under id, if any.
func (r *Registry) Lookup(id string) (*Check, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// suppressed reports whether n's Exceptions field lists id (spec.md §9c:
// suppression strings compare exact, case-sensitive).
func suppressed(n *policy.Node, id string) bool {
	if n.Exceptions == "" {
		return false
	}
	for _, e := range strings.Split(n.Exceptions, ",") {
		if strings.TrimSpace(e) == id {
			return true
		}
	}
	return false
}

// Dispatch runs every check registered for n's flavor, skipping checks the
// current Enablement disables for this node, and appends resulting
// findings (with File/Line filled in) to out. A panic escaping a single
// check is recovered into an F-002 finding so one misbehaving check does
// not abort the run (spec.md §5's propagation policy: a failed check
// function emits an internal-error finding rather than propagating).
func Dispatch(r *Registry, en *Enablement, ctx *policy.Context, file string, n *policy.Node, out *[]Finding) {
	for _, c := range r.ChecksFor(n.Flavor) {
		if !en.IsEnabled(c.ID, n) {
			continue
		}
		runOne(en, ctx, file, n, c, out)
	}
}

func runOne(en *Enablement, ctx *policy.Context, file string, n *policy.Node, c *Check, out *[]Finding) {
	defer func() {
		if r := recover(); r != nil {
			f := Finding{File: file, Line: n.Line, Severity: Fatal, ID: "F-002", Message: internalErrorMessage(c.ID, r)}
			*out = append(*out, f)
			en.count(f.ID)
		}
	}()
	f := c.Fn(ctx, n)
	if f == nil {
		return
	}
	f.File = file
	f.Line = n.Line
	if f.ID == "" {
		f.ID = c.ID
	}
	if f.Severity == unsetSeverity && c.DefaultSeverity != unsetSeverity {
		f.Severity = c.DefaultSeverity
	}
	*out = append(*out, *f)
	en.count(f.ID)
}

func internalErrorMessage(id string, r interface{}) string {
	return "check " + id + " failed internally: " + toText(r)
}

func toText(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "unknown panic"
}
