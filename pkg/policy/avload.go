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

// This file implements phase 1 of the pipeline driver (spec.md §4.7):
// loading the vendor access-vector definition file into decl_map under
// kinds class and permission, before any policy source is parsed.
//
// The reference file has the vendor-familiar shape:
//
//	class NAME
//	{
//	    perm1
//	    perm2
//	}
//
// one block per object class, each naming the permissions valid for that
// class. A permission already recorded for an earlier class keeps its
// first owner, matching decl_map's general first-writer-wins rule.

import (
	"bufio"
	"strings"

	"github.com/polint/polint/pkg/policy/errkind"
)

// AccessVectorModule is the pseudo-module decl_map entries loaded from the
// access-vector file are recorded as owned by: they belong to no policy
// module, but decl_map requires an owner.
const AccessVectorModule = "flask"

// LoadAccessVectors parses data (the contents of the access-vector
// definition file) and records every class and permission name into
// ctx's decl_map (via SetDecl).
func LoadAccessVectors(ctx *Context, file, data string) error {
	scanner := bufio.NewScanner(strings.NewReader(data))
	line := 0
	var class string
	inBlock := false
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch {
		case fields[0] == "class" && len(fields) == 2:
			class = fields[1]
			ctx.SetDecl(class, AccessVectorModule, DeclClass)
		case text == "{":
			if class == "" {
				return errkind.New(errkind.PARSE_ERROR, file, "line %d: permission block with no class", line)
			}
			inBlock = true
		case text == "}":
			inBlock = false
			class = ""
		case inBlock:
			for _, perm := range fields {
				ctx.SetDecl(perm, AccessVectorModule, DeclPermission)
			}
		default:
			return errkind.New(errkind.PARSE_ERROR, file, "line %d: unexpected %q", line, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return errkind.New(errkind.IO_ERROR, file, "%v", err)
	}
	return nil
}
