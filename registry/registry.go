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

package registry

import (
	"errors"
	"fmt"
	"sync"

	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/config"
)

var (
	// ErrEmptyName is returned when a definition has no name, or declares
	// an attribute, slot or child without one.
	ErrEmptyName = errors.New("formx(registry): empty name provided")
	// ErrUnknownParent is returned when Parent names a class that has not
	// been registered yet.
	ErrUnknownParent = errors.New("formx(registry): unknown parent class")
	// ErrConflictingRegistration indicates an attempt to re-register
	// a class name.
	ErrConflictingRegistration = errors.New("formx(registry): conflicting class registration")
	// ErrUnknownModelSlot is returned when a persistent attribute targets
	// a slot that neither the class nor its ancestors declare.
	ErrUnknownModelSlot = errors.New("formx(registry): attribute targets unknown model slot")
	// ErrMultipleMainModels is returned when more than one resolved slot
	// is marked Main.
	ErrMultipleMainModels = errors.New("formx(registry): more than one main model slot")
	// ErrDuplicateDeclaration is returned when a class declares the same
	// name twice in one list.
	ErrDuplicateDeclaration = errors.New("formx(registry): duplicate declaration")
	// ErrUnknownChildClass is returned when a child slot has no Build and
	// its Class is not registered.
	ErrUnknownChildClass = errors.New("formx(registry): unknown child class")
	// ErrSelfNesting is returned when a child form slot names its own
	// class. Every instance would build its child, and that child its own.
	ErrSelfNesting = errors.New("formx(registry): child form nests its own class")
)

// New constructs a Registry that resolves classes according to cfg.
// Only MainPolicy is used here.
func New(cfg apis.Config) apis.Registry {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	return &registry{cfg: cfg}
}

// registry is a simple Registry implementation backed by sync.Map.
type registry struct {
	// cfg is the configuration used for main model resolution.
	cfg apis.Config
	// mu serializes writers and guards order.
	mu sync.Mutex
	// m maps class name to *entry.
	m sync.Map // map[string]*apis.Entry
	// order keeps names in registration order for Entries.
	order []string
}

// Register resolves def against its ancestors and publishes the result.
// Names are append-only: a second registration of a name always fails.
func (r *registry) Register(def apis.Definition) error {
	if def.Name == "" {
		return ErrEmptyName
	}

	// Fast read path: conflict check without locking.
	if _, ok := r.m.Load(def.Name); ok {
		return fmt.Errorf("%w: %q", ErrConflictingRegistration, def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if _, ok := r.m.Load(def.Name); ok {
		return fmt.Errorf("%w: %q", ErrConflictingRegistration, def.Name)
	}

	var parent *apis.Schema
	if def.Parent != "" {
		v, ok := r.m.Load(def.Parent)
		if !ok {
			return fmt.Errorf("%w: %q (parent of %q)", ErrUnknownParent, def.Parent, def.Name)
		}
		parent = v.(*apis.Entry).Schema
	}

	s, err := r.resolve(def, parent)
	if err != nil {
		return fmt.Errorf("register %q: %w", def.Name, err)
	}

	r.m.Store(def.Name, &apis.Entry{Definition: def, Schema: s})
	r.order = append(r.order, def.Name)
	return nil
}

// resolve merges def with parent into a Schema and checks it.
func (r *registry) resolve(def apis.Definition, parent *apis.Schema) (*apis.Schema, error) {
	if err := checkOwn(def); err != nil {
		return nil, err
	}

	s := apis.Schema{Name: def.Name, Parent: parent, Process: def.Process}
	s.Attributes = append(s.Attributes, def.Attributes...)
	s.Models = append(s.Models, def.Models...)
	s.Forms = append(s.Forms, def.Forms...)
	s.Collections = append(s.Collections, def.Collections...)

	if parent != nil {
		s.Attributes = mergeBy(s.Attributes, parent.Attributes, func(a apis.AttributeDescriptor) string { return a.Name })
		s.Models = mergeBy(s.Models, parent.Models, func(m apis.ModelSlotDescriptor) string { return m.Name })
		s.Forms = mergeBy(s.Forms, parent.Forms, func(f apis.ChildFormSlot) string { return f.Name })
		s.Collections = mergeBy(s.Collections, parent.Collections, func(c apis.ChildCollectionSlot) string { return c.Name })
		s.Rules = append(s.Rules, parent.Rules...)
		if s.Process == nil {
			s.Process = parent.Process
		}
	}
	s.Rules = append(s.Rules, def.Rules...)

	slots := make(map[string]bool, len(s.Models))
	for _, m := range s.Models {
		slots[m.Name] = true
	}
	for _, a := range s.Attributes {
		if a.Kind == apis.Persistent && !slots[a.On] {
			return nil, fmt.Errorf("%w: %q on %q", ErrUnknownModelSlot, a.Name, a.On)
		}
	}

	for _, f := range def.Forms {
		if f.Build == nil && f.Class == def.Name {
			return nil, fmt.Errorf("%w: %q in %q", ErrSelfNesting, f.Name, def.Name)
		}
		if err := r.checkChild(def.Name, f.Name, f.Class, f.Build != nil); err != nil {
			return nil, err
		}
	}
	for _, c := range def.Collections {
		if err := r.checkChild(def.Name, c.Name, c.Class, c.Build != nil); err != nil {
			return nil, err
		}
	}

	main, err := resolveMain(s.Models, r.cfg.MainPolicy)
	if err != nil {
		return nil, err
	}
	s.Main = main

	return apis.NewSchema(s), nil
}

// checkChild verifies that a child slot without Build names a known
// class. Collections may hold entries of their own class since they only
// grow from assigned input.
func (r *registry) checkChild(owner, slot, class string, hasBuild bool) error {
	if hasBuild || class == owner {
		return nil
	}
	if class != "" {
		if _, ok := r.m.Load(class); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %q for child %q", ErrUnknownChildClass, class, slot)
}

// checkOwn rejects empty and duplicate names within a single definition.
func checkOwn(def apis.Definition) error {
	lists := map[string][]string{}
	for _, a := range def.Attributes {
		lists["attribute"] = append(lists["attribute"], a.Name)
	}
	for _, m := range def.Models {
		lists["model"] = append(lists["model"], m.Name)
	}
	// Child forms and collections share the Assign namespace.
	for _, f := range def.Forms {
		lists["child"] = append(lists["child"], f.Name)
	}
	for _, c := range def.Collections {
		lists["child"] = append(lists["child"], c.Name)
	}
	for kind, names := range lists {
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			if n == "" {
				return fmt.Errorf("%w: %s", ErrEmptyName, kind)
			}
			if seen[n] {
				return fmt.Errorf("%w: %s %q", ErrDuplicateDeclaration, kind, n)
			}
			seen[n] = true
		}
	}
	return nil
}

// mergeBy appends inherited items whose key is not already in own.
func mergeBy[T any](own, inherited []T, key func(T) string) []T {
	seen := make(map[string]bool, len(own))
	for _, o := range own {
		seen[key(o)] = true
	}
	for _, i := range inherited {
		if !seen[key(i)] {
			own = append(own, i)
		}
	}
	return own
}

// resolveMain picks the slot consulted for identity delegation.
func resolveMain(models []apis.ModelSlotDescriptor, policy apis.MainPolicy) (string, error) {
	main := ""
	for _, m := range models {
		if !m.Main {
			continue
		}
		if main != "" {
			return "", fmt.Errorf("%w: %q and %q", ErrMultipleMainModels, main, m.Name)
		}
		main = m.Name
	}
	if main == "" && policy == apis.MainImplicitSingle && len(models) == 1 {
		main = models[0].Name
	}
	return main, nil
}

// Lookup returns the resolved class of name if present.
func (r *registry) Lookup(name string) (*apis.Schema, bool) {
	if name == "" {
		return nil, false
	}
	if v, ok := r.m.Load(name); ok {
		return v.(*apis.Entry).Schema, true
	}
	return nil, false
}

// Entries returns a snapshot in registration order.
func (r *registry) Entries() []apis.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]apis.Entry, 0, len(r.order))
	for _, n := range r.order {
		if v, ok := r.m.Load(n); ok {
			entries = append(entries, *v.(*apis.Entry))
		}
	}
	return entries
}

// Count returns the number of registered classes.
func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Reset clears all registered classes.
func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = sync.Map{}
	r.order = nil
}
