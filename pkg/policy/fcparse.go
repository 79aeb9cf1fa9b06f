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

// This file implements the dedicated line-oriented parser for
// file-context (FC) files (spec.md §4.7 phase 7), which uses a different
// grammar from the brace-and-semicolon TE/IF flavor: one labelling entry
// per non-blank, non-comment line.
//
// Each entry line has the form:
//
//	<path-regex> [--<class-letter>] <user>:<role>:<type>:<sensitivity>
//
// The object-class indicator is optional; when omitted the entry applies
// to any object class.

import "strings"

// ParseFC parses data (the contents of a file-context file) into a tree
// rooted at a FileRootFC node.
func ParseFC(ctx *Context, file, module, data string) (*Builder, error) {
	b, err := NewBuilder(ctx, file, FileRootFC, module, 0)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(data, "\n")
	for i, raw := range lines {
		line := i + 1
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			if _, err := b.Comment(text[1:], line); err != nil {
				return b, err
			}
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			if _, ierr := b.ErrorSentinel(line); ierr != nil {
				return b, ierr
			}
			continue
		}
		entry := FileContextPayload{PathRegex: fields[0]}
		ctxField := fields[len(fields)-1]
		if len(fields) == 3 && strings.HasPrefix(fields[1], "--") {
			entry.ObjectClass = strings.TrimPrefix(fields[1], "--")
		}
		parts := strings.Split(ctxField, ":")
		if len(parts) != 4 {
			if _, ierr := b.ErrorSentinel(line); ierr != nil {
				return b, ierr
			}
			continue
		}
		entry.User, entry.Role, entry.Type, entry.Sensitivity = parts[0], parts[1], parts[2], parts[3]
		if _, err := b.FileContextEntry(entry, line); err != nil {
			return b, err
		}
	}
	return b, nil
}
