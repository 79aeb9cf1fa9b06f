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

// StringList is an ordered, owned sequence of strings used throughout rule
// payloads (source/target type lists, permission lists, argument lists).
// A StringList passed into a builder call is owned by the resulting node
// from that point on.
type StringList []string

// NewStringList builds a StringList from the given elements, in order.
func NewStringList(elems ...string) StringList {
	if len(elems) == 0 {
		return nil
	}
	out := make(StringList, len(elems))
	copy(out, elems)
	return out
}

// Append returns a StringList with s appended.
func (l StringList) Append(s string) StringList {
	return append(l, s)
}

// Contains reports whether l holds s, via a case-sensitive linear scan.
func (l StringList) Contains(s string) bool {
	for _, e := range l {
		if e == s {
			return true
		}
	}
	return false
}
