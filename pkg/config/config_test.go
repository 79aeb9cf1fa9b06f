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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathIsEmptyConfig(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Empty(t, c.Enabled)
	require.Empty(t, c.Disabled)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polint.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enabled:\n  - \"W-*\"\ndisabled:\n  - \"C-001\"\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"W-*"}, c.Enabled)
	require.Equal(t, []string{"C-001"}, c.Disabled)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
