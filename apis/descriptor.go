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

import "reflect"

// AttributeKind tells where an attribute's value lives.
type AttributeKind int

const (
	// Transient attributes are held by the form itself.
	Transient AttributeKind = iota
	// Persistent attributes are delegated to a model slot's record.
	Persistent
)

func (k AttributeKind) String() string {
	if k == Persistent {
		return "persistent"
	}
	return "transient"
}

// CoercionType names the conversion applied when a transient attribute
// is written.
type CoercionType string

const (
	TypeAny      CoercionType = ""
	TypeString   CoercionType = "string"
	TypeInt      CoercionType = "int"
	TypeInt64    CoercionType = "int64"
	TypeFloat    CoercionType = "float64"
	TypeBool     CoercionType = "bool"
	TypeTime     CoercionType = "time"
	TypeDuration CoercionType = "duration"
	TypeStrings  CoercionType = "[]string"
)

// AttributeDescriptor declares one named value of a form class.
type AttributeDescriptor struct {
	// Name is the attribute name used by Get, Set and Assign.
	Name string
	// Kind is Transient or Persistent.
	Kind AttributeKind
	// On names the model slot a persistent attribute delegates to.
	On string
	// As is the record field the attribute maps to. Defaults to Name.
	As string
	// Type is the coercion applied on write (transient only).
	Type CoercionType
	// Default is returned by Get for a transient attribute never written.
	Default any
}

// Source returns the record field name of a persistent attribute.
func (d AttributeDescriptor) Source() string {
	if d.As != "" {
		return d.As
	}
	return d.Name
}

// Predicate is evaluated against a form instance.
type Predicate func(inst Instance) bool

// ModelSlotDescriptor declares a lazily built backing record.
//
// The builders form a chain consulted in this order: Override, Factory,
// Find (only when an identifier was supplied for the slot), New, and
// finally reflective construction of Type.
type ModelSlotDescriptor struct {
	// Name is the slot name persistent attributes refer to via On.
	Name string
	// Type is the record type; pointers are unwrapped to the nearest
	// named type and a fresh *T is allocated by the reflect strategy.
	// Type also supplies the record type's Finder, if any.
	Type reflect.Type
	// New constructs a fresh, empty record.
	New func() Record
	// Find loads a record by identifier.
	Find func(id any) (Record, error)
	// Factory replaces the default builder entirely. id is nil when no
	// identifier was supplied for the slot.
	Factory func(inst Instance, id any) (Record, error)
	// Override replaces the generated builder and may call def to run
	// the default chain (Factory, Find, New, reflect) first.
	Override func(inst Instance, def func() (Record, error)) (Record, error)
	// Main marks the slot used for identity delegation.
	Main bool
	// Reject excludes the slot from Persist when it returns true.
	// It is evaluated at persistence time only.
	Reject Predicate
}

// ChildBuildFunc builds a nested form for parent. key is the collection
// key for collection entries and "" for child form slots.
type ChildBuildFunc func(parent Instance, key string) (Composite, error)

// ChildFormSlot declares a single, statically named nested form.
type ChildFormSlot struct {
	// Name is the child name; Assign reads "<Name>_attributes".
	Name string
	// Class is the registered class of the child, used when Build is nil.
	Class string
	// Build replaces the default construction.
	Build ChildBuildFunc
}

// ChildCollectionSlot declares an ordered, keyed collection of nested forms.
type ChildCollectionSlot struct {
	// Name is the collection name.
	Name string
	// Class is the registered class of the entries, used when Build is nil.
	Class string
	// Param is the Assign input key. Defaults to the singular of Name.
	Param string
	// Build replaces the default construction.
	Build ChildBuildFunc
}

// ProcessFunc overrides a class's Process. next runs the default
// behaviour (persist plus child cascade).
type ProcessFunc func(inst Instance, next func() bool) bool

// Definition is everything one class declares itself. Ancestor
// declarations are merged in by the Registry.
type Definition struct {
	// Name identifies the class in the registry.
	Name string
	// Parent names an already registered class to inherit from.
	Parent string

	Attributes  []AttributeDescriptor
	Models      []ModelSlotDescriptor
	Forms       []ChildFormSlot
	Collections []ChildCollectionSlot
	Rules       []Rule
	Process     ProcessFunc
}
