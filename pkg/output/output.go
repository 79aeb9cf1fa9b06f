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

// Package output formats findings and, in verbose mode, policy trees for
// display, following spec.md §4.8 and §6's required line format.
package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/kylelemons/godebug/pretty"

	"github.com/polint/polint/pkg/check"
	"github.com/polint/polint/pkg/policy"
)

// PrintFindings writes one line per finding whose severity is at or above
// min, in the order given (callers are responsible for the ordering
// guarantees of spec.md §5).
func PrintFindings(w io.Writer, findings []check.Finding, min check.Severity) {
	for _, f := range findings {
		if f.Severity < min {
			continue
		}
		fmt.Fprintln(w, f.String())
	}
}

// PrintSummary writes the end-of-run per-check-id count block, sorted by
// check id for a stable, diffable report.
func PrintSummary(w io.Writer, counts map[string]int) {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "%s: %d\n", id, counts[id])
	}
}

// treeView is the subset of Node fields worth showing in a verbose dump:
// the full struct carries unexported bookkeeping (freed) and back-pointers
// (Parent, Prev) that would make pretty's output unreadable and would
// recurse forever on the sibling/parent cycle.
type treeView struct {
	Flavor     string
	Line       int
	Exceptions string      `pretty:",omitempty"`
	Payload    interface{} `pretty:",omitempty"`
	Children   []*treeView `pretty:",omitempty"`
}

func toTreeView(n *policy.Node) *treeView {
	if n == nil {
		return nil
	}
	v := &treeView{Flavor: n.Flavor.String(), Line: n.Line, Exceptions: n.Exceptions, Payload: n.Payload}
	for c := n.FirstChild; c != nil; c = c.Next {
		v.Children = append(v.Children, toTreeView(c))
	}
	return v
}

// DumpTree pretty-prints root's subtree for --verbose diagnostics.
func DumpTree(w io.Writer, root *policy.Node) {
	fmt.Fprintln(w, pretty.Sprint(toTreeView(root)))
}
