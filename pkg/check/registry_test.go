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

func TestRegisterPreservesInsertionOrder(t *testing.T) {
	r := NewRegistry()
	var order []string
	mk := func(id string) *Check {
		return &Check{ID: id, Fn: func(*policy.Context, *policy.Node) *Finding {
			order = append(order, id)
			return nil
		}}
	}
	r.Register(policy.Semicolon, mk("first"))
	r.Register(policy.Semicolon, mk("second"))

	en := NewEnablement()
	ctx := policy.NewContext()
	n := policy.NewNode(policy.Semicolon, nil, 1)
	var out []Finding
	Dispatch(r, en, ctx, "f.te", n, &out)

	require.Equal(t, []string{"first", "second"}, order)
}

func TestDispatchSkipsSuppressedCheck(t *testing.T) {
	r := NewRegistry()
	r.Register(policy.Semicolon, &Check{ID: "S-003", Fn: func(*policy.Context, *policy.Node) *Finding {
		return &Finding{Message: "useless semicolon"}
	}})
	en := NewEnablement()
	ctx := policy.NewContext()
	n := policy.NewNode(policy.Semicolon, nil, 1)
	n.Exceptions = "S-003"

	var out []Finding
	Dispatch(r, en, ctx, "f.te", n, &out)
	require.Empty(t, out)
}

func TestDispatchRecoversPanickingCheck(t *testing.T) {
	r := NewRegistry()
	r.Register(policy.Semicolon, &Check{ID: "X-001", Fn: func(*policy.Context, *policy.Node) *Finding {
		panic("boom")
	}})
	en := NewEnablement()
	ctx := policy.NewContext()
	n := policy.NewNode(policy.Semicolon, nil, 1)

	var out []Finding
	Dispatch(r, en, ctx, "f.te", n, &out)
	require.Len(t, out, 1)
	require.Equal(t, "F-002", out[0].ID)
	require.Equal(t, Fatal, out[0].Severity)
}

func TestDispatchFillsInFileAndLine(t *testing.T) {
	r := NewRegistry()
	r.Register(policy.Semicolon, &Check{ID: "S-003", DefaultSeverity: Style, Fn: func(*policy.Context, *policy.Node) *Finding {
		return &Finding{Message: "useless semicolon"}
	}})
	en := NewEnablement()
	ctx := policy.NewContext()
	n := policy.NewNode(policy.Semicolon, nil, 42)

	var out []Finding
	Dispatch(r, en, ctx, "f.te", n, &out)
	require.Len(t, out, 1)
	require.Equal(t, "f.te", out[0].File)
	require.Equal(t, 42, out[0].Line)
	require.Equal(t, Style, out[0].Severity)
}
