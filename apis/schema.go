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

// Schema is the resolved, ancestor-merged view of a class: the dispatch
// table Get, Set, Assign, IsValid and Persist consult.
// A Schema is built once at registration and must not be mutated after
// it has been published by a Registry.
type Schema struct {
	// Name is the class name.
	Name string
	// Parent is the resolved parent class, or nil for a root class.
	Parent *Schema

	// Attributes, Models, Forms and Collections hold own declarations
	// first, then inherited ones, de-duplicated by name.
	Attributes  []AttributeDescriptor
	Models      []ModelSlotDescriptor
	Forms       []ChildFormSlot
	Collections []ChildCollectionSlot
	// Rules hold inherited rules first, then own rules.
	Rules []Rule
	// Process is the most specific Process override, or nil.
	Process ProcessFunc
	// Main is the resolved main slot name, or "" when none resolves.
	Main string

	attrs  map[string]int
	models map[string]int
	forms  map[string]int
	colls  map[string]int
	owners map[string]bool
}

// NewSchema indexes s and returns it ready for lookups.
func NewSchema(s Schema) *Schema {
	s.attrs = make(map[string]int, len(s.Attributes))
	s.owners = make(map[string]bool)
	for i, a := range s.Attributes {
		s.attrs[a.Name] = i
		if a.Kind == Persistent {
			s.owners[a.On] = true
		}
	}
	s.models = make(map[string]int, len(s.Models))
	for i, m := range s.Models {
		s.models[m.Name] = i
	}
	s.forms = make(map[string]int, len(s.Forms))
	for i, f := range s.Forms {
		s.forms[f.Name] = i
	}
	s.colls = make(map[string]int, len(s.Collections))
	for i, c := range s.Collections {
		s.colls[c.Name] = i
	}
	return &s
}

// Attribute returns the descriptor of name.
func (s *Schema) Attribute(name string) (AttributeDescriptor, bool) {
	i, ok := s.attrs[name]
	if !ok {
		return AttributeDescriptor{}, false
	}
	return s.Attributes[i], true
}

// Model returns the slot descriptor of name.
func (s *Schema) Model(name string) (ModelSlotDescriptor, bool) {
	i, ok := s.models[name]
	if !ok {
		return ModelSlotDescriptor{}, false
	}
	return s.Models[i], true
}

// Form returns the child form slot of name.
func (s *Schema) Form(name string) (ChildFormSlot, bool) {
	i, ok := s.forms[name]
	if !ok {
		return ChildFormSlot{}, false
	}
	return s.Forms[i], true
}

// Collection returns the child collection slot of name.
func (s *Schema) Collection(name string) (ChildCollectionSlot, bool) {
	i, ok := s.colls[name]
	if !ok {
		return ChildCollectionSlot{}, false
	}
	return s.Collections[i], true
}

// OwnsAttributes reports whether any persistent attribute delegates to slot.
func (s *Schema) OwnsAttributes(slot string) bool {
	return s.owners[slot]
}

// AttributesOn returns the persistent attributes delegating to slot.
func (s *Schema) AttributesOn(slot string) []AttributeDescriptor {
	var out []AttributeDescriptor
	for _, a := range s.Attributes {
		if a.Kind == Persistent && a.On == slot {
			out = append(out, a)
		}
	}
	return out
}

// IsA reports whether the class is name or inherits from it.
func (s *Schema) IsA(name string) bool {
	for c := s; c != nil; c = c.Parent {
		if c.Name == name {
			return true
		}
	}
	return false
}
