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

package form

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
	"github.com/spf13/cast"

	"dirpx.dev/formx/apis"
)

var (
	// ErrUnknownChild is returned for a child or collection the class
	// does not declare.
	ErrUnknownChild = errors.New("formx(form): unknown child")
	// ErrNoChildClass is returned when a child class cannot be resolved.
	ErrNoChildClass = errors.New("formx(form): cannot resolve child class")
)

// AttributesKey returns the Assign key of a child form.
func AttributesKey(child string) string { return child + "_attributes" }

// ParamKey returns the Assign key of a collection.
func ParamKey(c apis.ChildCollectionSlot) string {
	if c.Param != "" {
		return c.Param
	}
	return inflection.Singular(c.Name)
}

// Child returns the nested form of a child form slot, building it on
// first use.
func (f *Form) Child(name string) (apis.Composite, error) {
	if c, ok := f.children[name]; ok {
		return c, nil
	}
	desc, ok := f.schema.Form(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChild, name)
	}
	c, err := f.buildChild(desc.Class, desc.Build, "")
	if err != nil {
		return nil, fmt.Errorf("build child %q: %w", name, err)
	}
	if args, ok := f.childArgs[name]; ok {
		delete(f.childArgs, name)
		if err := c.Assign(args); err != nil {
			return nil, fmt.Errorf("build child %q: %w", name, err)
		}
	}
	f.children[name] = c
	return c, nil
}

// SetChild replaces the nested form of a child form slot.
func (f *Form) SetChild(name string, c apis.Composite) error {
	if _, ok := f.schema.Form(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChild, name)
	}
	delete(f.childArgs, name)
	if c == nil {
		delete(f.children, name)
		return nil
	}
	f.children[name] = c
	return nil
}

// SetChildParams discards the current nested form of a child form slot.
// The next access builds a fresh one and assigns params to it.
func (f *Form) SetChildParams(name string, params map[string]any) error {
	if _, ok := f.schema.Form(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChild, name)
	}
	delete(f.children, name)
	if f.childArgs == nil {
		f.childArgs = make(map[string]map[string]any)
	}
	f.childArgs[name] = params
	return nil
}

// Collection returns a declared collection.
func (f *Form) Collection(name string) (*Collection, error) {
	if c, ok := f.colls[name]; ok {
		return c, nil
	}
	desc, ok := f.schema.Collection(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChild, name)
	}
	c := &Collection{owner: f, slot: desc, items: make(map[string]apis.Composite)}
	f.colls[name] = c
	return c, nil
}

// buildChild builds a nested form with build, or as a form of class
// sharing the parent's configuration, params and collaborators.
func (f *Form) buildChild(class string, build apis.ChildBuildFunc, key string) (apis.Composite, error) {
	if build != nil {
		c, err := build(f, key)
		if err == nil && c == nil {
			err = ErrNoChildClass
		}
		return c, err
	}
	s := f.schema
	if class != s.Name {
		var ok bool
		if f.reg == nil {
			return nil, fmt.Errorf("%w: %q (no registry)", ErrNoChildClass, class)
		}
		if s, ok = f.reg.Lookup(class); !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoChildClass, class)
		}
	}
	return New(s,
		WithConfig(f.cfg),
		WithResolver(f.res),
		WithRegistry(f.reg),
		WithLogger(f.root),
		WithHooks(f.hooks),
		WithParams(f.params),
	)
}

func (f *Form) assignTree(params map[string]any) error {
	var errs []error
	for _, d := range f.schema.Forms {
		raw, ok := params[AttributesKey(d.Name)]
		if !ok {
			continue
		}
		f.clearInvalid(d.Name)
		attrs, err := cast.ToStringMapE(raw)
		if err != nil {
			f.markInvalid(d.Name)
			continue
		}
		c, err := f.Child(d.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.Assign(attrs); err != nil {
			errs = append(errs, fmt.Errorf("assign child %q: %w", d.Name, err))
		}
	}
	for _, d := range f.schema.Collections {
		raw, ok := params[ParamKey(d)]
		if !ok {
			continue
		}
		f.clearInvalid(d.Name)
		c, err := f.Collection(d.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.assign(raw); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// validateTree evaluates every child and every collection entry.
func (f *Form) validateTree() {
	for _, d := range f.schema.Forms {
		c, err := f.Child(d.Name)
		if err != nil {
			f.log.Error("child build failed", "child", d.Name, "error", err)
			f.errs.Add(d.Name, apis.ReasonInvalid)
			continue
		}
		if !c.IsValid() {
			f.errs.Add(d.Name, apis.ReasonInvalid)
		}
	}
	for _, d := range f.schema.Collections {
		c, _ := f.Collection(d.Name)
		for _, e := range c.All() {
			if !e.IsValid() {
				f.errs.Add(d.Name, apis.ReasonInvalid)
			}
		}
	}
}

// processTree processes every child. Collection entries are processed
// only when Config.ProcessCollections is set.
func (f *Form) processTree() bool {
	ok := true
	for _, d := range f.schema.Forms {
		c, err := f.Child(d.Name)
		if err != nil {
			ok = false
			continue
		}
		if !c.Process() {
			ok = false
		}
	}
	for _, d := range f.schema.Collections {
		c, _ := f.Collection(d.Name)
		if !f.cfg.ProcessCollections {
			if c.Len() > 0 {
				f.log.Debug("collection entries not processed", "collection", d.Name, "entries", c.Len())
			}
			continue
		}
		for _, e := range c.All() {
			if !e.Process() {
				ok = false
			}
		}
	}
	return ok
}

// Collection is an ordered, keyed list of nested forms. Keys are unique
// and stable for the lifetime of the owning form.
type Collection struct {
	owner *Form
	slot  apis.ChildCollectionSlot
	keys  []string
	items map[string]apis.Composite
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.slot.Name }

// Len returns the number of entries.
func (c *Collection) Len() int { return len(c.keys) }

// Keys returns the entry keys in insertion order.
func (c *Collection) Keys() []string { return slices.Clone(c.keys) }

// Get returns the entry under key.
func (c *Collection) Get(key string) (apis.Composite, bool) {
	e, ok := c.items[key]
	return e, ok
}

// All iterates entries in insertion order.
func (c *Collection) All() iter.Seq2[string, apis.Composite] {
	return func(yield func(string, apis.Composite) bool) {
		for _, k := range c.keys {
			if !yield(k, c.items[k]) {
				return
			}
		}
	}
}

// Put stores e under key, replacing an existing entry in place.
func (c *Collection) Put(key string, e apis.Composite) {
	if _, ok := c.items[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.items[key] = e
}

// Add builds a new entry under a generated key.
func (c *Collection) Add() (string, apis.Composite, error) {
	key := uuid.NewString()
	e, err := c.Entry(key)
	return key, e, err
}

// Entry returns the entry under key, building and storing a new one
// under exactly that key when absent.
func (c *Collection) Entry(key string) (apis.Composite, error) {
	if e, ok := c.items[key]; ok {
		return e, nil
	}
	e, err := c.owner.buildChild(c.slot.Class, c.slot.Build, key)
	if err != nil {
		return nil, fmt.Errorf("build %s[%s]: %w", c.slot.Name, key, err)
	}
	c.Put(key, e)
	return e, nil
}

// compareKeys orders numeric keys by value ahead of the others, which
// sort lexically: "2" < "10" < "a".
func compareKeys(a, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// assign accepts a key -> attributes mapping, or a list of attributes
// that are appended under generated keys. Malformed input marks the
// collection invalid.
func (c *Collection) assign(raw any) error {
	if list, ok := raw.([]any); ok {
		var errs []error
		for _, item := range list {
			attrs, err := cast.ToStringMapE(item)
			if err != nil {
				c.owner.markInvalid(c.slot.Name)
				continue
			}
			_, e, err := c.Add()
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if err := e.Assign(attrs); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	byKey, err := cast.ToStringMapE(raw)
	if err != nil {
		c.owner.markInvalid(c.slot.Name)
		return nil
	}
	var errs []error
	for _, key := range slices.SortedFunc(maps.Keys(byKey), compareKeys) {
		attrs, err := cast.ToStringMapE(byKey[key])
		if err != nil {
			c.owner.markInvalid(c.slot.Name)
			continue
		}
		e, err := c.Entry(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := e.Assign(attrs); err != nil {
			errs = append(errs, fmt.Errorf("assign %s[%s]: %w", c.slot.Name, key, err))
		}
	}
	return errors.Join(errs...)
}
