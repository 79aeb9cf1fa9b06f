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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polint/polint/pkg/policy"
)

func TestCheckUselessSemicolonAlwaysFires(t *testing.T) {
	ctx := policy.NewContext()
	f := checkUselessSemicolon(ctx, policy.NewNode(policy.Semicolon, nil, 5))
	require.NotNil(t, f)
}

func TestCheckInterfaceCommentMissing(t *testing.T) {
	ctx := policy.NewContext()
	root := policy.NewNode(policy.FileRootIF, "foo", 0)
	iface, _ := policy.InsertChild(root, policy.InterfaceDefNode, "myiface", 1)
	require.NotNil(t, checkInterfaceComment(ctx, iface))
}

func TestCheckInterfaceCommentPresent(t *testing.T) {
	ctx := policy.NewContext()
	root := policy.NewNode(policy.FileRootIF, "foo", 0)
	policy.InsertChild(root, policy.Comment, " docs", 1)
	iface, _ := policy.InsertNext(root.FirstChild, policy.InterfaceDefNode, "myiface", 2)
	require.Nil(t, checkInterfaceComment(ctx, iface))
}

func TestCheckEmptyRequireBlock(t *testing.T) {
	ctx := policy.NewContext()
	b, err := policy.NewBuilder(ctx, "foo.if", policy.FileRootIF, "foo", 0)
	require.NoError(t, err)
	block, err := b.BeginBlock(policy.RequireNode, nil, 1)
	require.NoError(t, err)
	require.NoError(t, b.EndBlock(policy.RequireNode))

	require.NotNil(t, checkEmptyRequire(ctx, block))
}

func TestCheckUndeclaredTypeUse(t *testing.T) {
	ctx := policy.NewContext()
	ctx.SetDecl("known_t", "foo", policy.DeclType)
	p := policy.AVRulePayload{Sources: policy.StringList{"known_t"}, Targets: policy.StringList{"unknown_t"}}
	n := policy.NewNode(policy.AVRuleNode, p, 1)
	require.NotNil(t, checkUndeclaredTypeUse(ctx, n))
}

func TestCheckFCTypeExistsAndOwnModule(t *testing.T) {
	ctx := policy.NewContext()
	ctx.SetDecl("httpd_sys_content_t", "apache", policy.DeclType)
	root := policy.NewNode(policy.FileRootFC, "apache", 0)
	entry, _ := policy.InsertChild(root, policy.FileContextEntryNode,
		policy.FileContextPayload{PathRegex: "/var/www(/.*)?", Type: "httpd_sys_content_t"}, 1)

	require.Nil(t, checkFCType(ctx, entry))
	require.Nil(t, checkFCTypeOwnModule(ctx, entry))
}

func TestCheckFCTypeWrongModule(t *testing.T) {
	ctx := policy.NewContext()
	ctx.SetDecl("other_t", "other_module", policy.DeclType)
	root := policy.NewNode(policy.FileRootFC, "apache", 0)
	entry, _ := policy.InsertChild(root, policy.FileContextEntryNode,
		policy.FileContextPayload{PathRegex: "/var/www(/.*)?", Type: "other_t"}, 1)

	require.NotNil(t, checkFCTypeOwnModule(ctx, entry))
}

func TestCheckFCRegexSanity(t *testing.T) {
	ctx := policy.NewContext()
	n := policy.NewNode(policy.FileContextEntryNode, policy.FileContextPayload{PathRegex: "relative/path"}, 1)
	require.NotNil(t, checkFCRegexSanity(ctx, n))

	n2 := policy.NewNode(policy.FileContextEntryNode, policy.FileContextPayload{PathRegex: "/absolute/path"}, 1)
	require.Nil(t, checkFCRegexSanity(ctx, n2))
}

func TestCheckSyntaxErrorOnlyFiresOutsideFC(t *testing.T) {
	ctx := policy.NewContext()
	teRoot := policy.NewNode(policy.FileRootTE, "foo", 0)
	teErr, _ := policy.InsertChild(teRoot, policy.ErrorSentinel, nil, 3)
	require.NotNil(t, checkSyntaxError(ctx, teErr))

	fcRoot := policy.NewNode(policy.FileRootFC, "foo", 0)
	fcErr, _ := policy.InsertChild(fcRoot, policy.ErrorSentinel, nil, 3)
	require.Nil(t, checkSyntaxError(ctx, fcErr))
	require.NotNil(t, checkFCErrorNode(ctx, fcErr))
}
