/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package apis

import (
	"sort"
	"strings"
)

// Reason codes attached by the engine and the bundled rules.
const (
	ReasonBlank        = "blank"
	ReasonTaken        = "taken"
	ReasonInvalid      = "invalid"
	ReasonUnverifiable = "unverifiable"
)

// Base is the key for errors not tied to a single attribute.
const Base = "base"

// Errors is an ordered attribute -> reasons collection.
// The zero value is ready to use.
type Errors struct {
	order []string
	m     map[string][]string
}

// NewErrors returns an empty collection.
func NewErrors() *Errors {
	return &Errors{}
}

// Add attaches reason to attr. Duplicate pairs are kept once.
func (e *Errors) Add(attr, reason string) {
	if e.m == nil {
		e.m = make(map[string][]string)
	}
	cur, ok := e.m[attr]
	if !ok {
		e.order = append(e.order, attr)
	}
	for _, r := range cur {
		if r == reason {
			return
		}
	}
	e.m[attr] = append(cur, reason)
}

// On returns the reasons attached to attr.
func (e *Errors) On(attr string) []string {
	if e == nil {
		return nil
	}
	return e.m[attr]
}

// Has reports whether reason is attached to attr.
func (e *Errors) Has(attr, reason string) bool {
	for _, r := range e.On(attr) {
		if r == reason {
			return true
		}
	}
	return false
}

// Empty reports whether no error is attached.
func (e *Errors) Empty() bool {
	return e == nil || len(e.order) == 0
}

// Len returns the number of (attribute, reason) entries.
func (e *Errors) Len() int {
	if e == nil {
		return 0
	}
	n := 0
	for _, rs := range e.m {
		n += len(rs)
	}
	return n
}

// Attributes returns the attributes with errors, in insertion order.
func (e *Errors) Attributes() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.order...)
}

// Map returns a copy of the collection.
func (e *Errors) Map() map[string][]string {
	if e == nil {
		return map[string][]string{}
	}
	out := make(map[string][]string, len(e.order))
	for k, v := range e.m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Clear removes every entry.
func (e *Errors) Clear() {
	if e == nil {
		return
	}
	e.order = nil
	e.m = nil
}

// String renders "attr: r1, r2; attr2: r3" with attributes sorted.
func (e *Errors) String() string {
	if e.Empty() {
		return ""
	}
	keys := e.Attributes()
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.m[k], ", "))
	}
	return strings.Join(parts, "; ")
}
