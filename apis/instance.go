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

// Instance is the view of a form that rules, predicates and builders
// receive.
type Instance interface {
	// Schema returns the resolved class of the instance.
	Schema() *Schema
	// Get reads an attribute, building its model slot if needed.
	Get(name string) (any, error)
	// Set writes an attribute, building its model slot if needed.
	Set(name string, value any) error
	// Model returns the record of a slot, building it if needed.
	Model(slot string) (Record, error)
	// ModelFor returns the record a persistent attribute delegates to.
	ModelFor(attr string) (Record, error)
	// Param returns a construction-time value not tied to any model.
	Param(name string) (any, bool)
	// Errors returns the validation error collection.
	Errors() *Errors
	// ID returns the main record's identifier, or nil.
	ID() any
	// Persisted reports whether the main record is stored.
	Persisted() bool
}

// Composite is an Instance that can be assigned, validated and
// processed as a unit. Nested forms are Composites.
type Composite interface {
	Instance
	Assign(params map[string]any) error
	IsValid() bool
	Process() bool
}

// Rule is a single field-level validation, run by IsValid.
type Rule interface {
	// Check attaches zero or more (attribute, reason) entries to
	// inst.Errors().
	Check(inst Instance)
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(inst Instance)

// Check calls f(inst).
func (f RuleFunc) Check(inst Instance) { f(inst) }
