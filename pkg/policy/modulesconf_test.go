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

import "testing"

const referenceModulesConf = `
# sample modules.conf
sysadm = base;
sudo = module;
games = off;
`

func TestLoadModulesConfReferenceFile(t *testing.T) {
	ctx := NewContext()
	if err := LoadModulesConf(ctx, "modules.conf", referenceModulesConf); err != nil {
		t.Fatalf("LoadModulesConf: %v", err)
	}
	if got := ctx.LookupMod("sysadm"); got != ModBase {
		t.Fatalf("lookup(sysadm) = %v, want base", got)
	}
	if got := ctx.LookupMod("sudo"); got != ModModule {
		t.Fatalf("lookup(sudo) = %v, want module", got)
	}
	if got := ctx.LookupMod("games"); got != ModOff {
		t.Fatalf("lookup(games) = %v, want off", got)
	}
}

func TestLoadModulesConfMalformedLineLeavesMapEmpty(t *testing.T) {
	ctx := NewContext()
	err := LoadModulesConf(ctx, "modules.conf", "sysadm = base;\nnot a valid line\nsudo = module;\n")
	if err == nil {
		t.Fatalf("malformed modules.conf should be a parse error")
	}
	if ctx.ModsCount() != 0 {
		t.Fatalf("ModsCount = %d, want 0: a malformed modules.conf must leave no partial state", ctx.ModsCount())
	}
}
