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

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polint/polint/pkg/check"
	"github.com/polint/polint/pkg/policy"
)

// These tests exercise the end-to-end scenarios enumerated in spec.md §8.

func TestRunEmptyInputSucceedsWithZeroCounts(t *testing.T) {
	d := NewDriver(check.NewEnablement())
	res := d.Run(SourceTree{})
	defer res.Ctx.Cleanup()

	require.NoError(t, res.Err)
	require.Empty(t, res.Findings)
	for id, n := range res.Counts {
		require.Zerof(t, n, "check %s reported a non-zero count against empty input", id)
	}
}

func TestRunSingleTEFileDeclaresType(t *testing.T) {
	d := NewDriver(check.NewEnablement())
	res := d.Run(SourceTree{
		TEFiles: []FileSource{{Path: "foo.te", Module: "foo", Data: "\n\ntype foo_t;\n"}},
	})
	defer res.Ctx.Cleanup()

	require.NoError(t, res.Err)
	entry, ok := res.Ctx.LookupDecl("foo_t")
	require.True(t, ok)
	require.Equal(t, "foo", entry.Module)
	require.Equal(t, policy.DeclType, entry.Kind)

	for _, f := range res.Findings {
		require.Lessf(t, f.Severity, check.Warning, "unexpected finding: %s", f.String())
	}
}

func TestRunUselessSemicolonProducesOneFinding(t *testing.T) {
	d := NewDriver(check.NewEnablement())
	res := d.Run(SourceTree{
		TEFiles: []FileSource{{Path: "foo.te", Module: "foo", Data: "\n\n\n\n;\n"}},
	})
	defer res.Ctx.Cleanup()

	require.NoError(t, res.Err)
	var matches []check.Finding
	for _, f := range res.Findings {
		if f.ID == "S-003" {
			matches = append(matches, f)
		}
	}
	require.Len(t, matches, 1)
	require.Equal(t, 5, matches[0].Line)
	require.Equal(t, check.Style, matches[0].Severity)
	require.Equal(t, "foo.te:5: (S): useless semicolon [S-003]", matches[0].String())
}

func TestRunInterfaceWithoutPrecedingComment(t *testing.T) {
	d := NewDriver(check.NewEnablement())
	res := d.Run(SourceTree{
		InterfaceFiles: []FileSource{{Path: "foo.if", Module: "foo", Data: "interface(myiface) {\n}\n"}},
	})
	defer res.Ctx.Cleanup()

	require.NoError(t, res.Err)
	var matches []check.Finding
	for _, f := range res.Findings {
		if f.ID == "C-004" {
			matches = append(matches, f)
		}
	}
	require.Len(t, matches, 1)
	require.Equal(t, 1, matches[0].Line)
}

func TestRunInSourceDisableSuppressesFinding(t *testing.T) {
	d := NewDriver(check.NewEnablement())
	res := d.Run(SourceTree{
		TEFiles: []FileSource{{Path: "foo.te", Module: "foo", Data: "# selint-disable:S-003\n;\n"}},
	})
	defer res.Ctx.Cleanup()

	require.NoError(t, res.Err)
	require.Empty(t, res.Findings)
}

func TestRunMalformedFCLineRecoversAndReachesE002(t *testing.T) {
	d := NewDriver(check.NewEnablement())
	res := d.Run(SourceTree{
		TEFiles: []FileSource{{Path: "foo.te", Module: "foo", Data: "\n\n\n\n;\n"}},
		FCFiles: []FileSource{{Path: "foo.fc", Module: "foo", Data: "/var/www system_u:object_r:httpd_t\n"}},
	})
	defer res.Ctx.Cleanup()

	require.NoError(t, res.Err)

	var sawE002, sawS003 bool
	for _, f := range res.Findings {
		switch f.ID {
		case "E-002":
			sawE002 = true
		case "S-003":
			sawS003 = true
		}
	}
	require.True(t, sawE002, "malformed file-context line should reach checkFCErrorNode through the real pipeline")
	require.True(t, sawS003, "a malformed FC file must not discard findings already produced for other files")
}

func TestRunTemplateExpansionAcrossFiles(t *testing.T) {
	d := NewDriver(check.NewEnablement())
	res := d.Run(SourceTree{
		InterfaceFiles: []FileSource{
			{Path: "mytemplate.if", Module: "mytemplate", Data: "template(mytemplate) {\n    type $1_t;\n}\n"},
		},
		TEFiles: []FileSource{
			{Path: "caller.te", Module: "caller", Data: "mytemplate(alpha);\n"},
		},
	})
	defer res.Ctx.Cleanup()

	require.NoError(t, res.Err)
	entry, ok := res.Ctx.LookupDecl("alpha_t")
	require.True(t, ok)
	require.Equal(t, "caller", entry.Module)
	require.Equal(t, policy.DeclType, entry.Kind)
	require.Empty(t, res.Ctx.Diagnostics)
}
