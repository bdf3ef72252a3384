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

package registry_test

import (
	"errors"
	"testing"

	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/config"
	"dirpx.dev/formx/registry"
)

func persistent(name, on string) apis.AttributeDescriptor {
	return apis.AttributeDescriptor{Name: name, Kind: apis.Persistent, On: on}
}

func transient(name string) apis.AttributeDescriptor {
	return apis.AttributeDescriptor{Name: name}
}

func signupDef() apis.Definition {
	return apis.Definition{
		Name: "signup",
		Attributes: []apis.AttributeDescriptor{
			persistent("email", "user"),
			{Name: "companyName", Kind: apis.Persistent, On: "company", As: "name"},
			transient("terms"),
		},
		Models: []apis.ModelSlotDescriptor{
			{Name: "user", Main: true},
			{Name: "company"},
		},
	}
}

func TestRegister_AndLookup(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	if err := reg.Register(signupDef()); err != nil {
		t.Fatalf("Register(signup): unexpected error: %v", err)
	}

	s, ok := reg.Lookup("signup")
	if !ok || s == nil {
		t.Fatalf("Lookup(signup): got (%v,%v), want schema", s, ok)
	}
	if s.Main != "user" {
		t.Fatalf("Main = %q, want user", s.Main)
	}
	a, ok := s.Attribute("companyName")
	if !ok || a.Source() != "name" || a.On != "company" {
		t.Fatalf("Attribute(companyName) = (%+v,%v)", a, ok)
	}
	if !s.OwnsAttributes("company") || s.OwnsAttributes("nothing") {
		t.Fatalf("OwnsAttributes mismatch")
	}
	if _, ok := reg.Lookup("missing"); ok {
		t.Fatalf("Lookup(missing): expected miss")
	}
	if reg.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", reg.Count())
	}
}

func TestRegister_Conflict(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	if err := reg.Register(signupDef()); err != nil {
		t.Fatalf("Register: unexpected error: %v", err)
	}
	if err := reg.Register(signupDef()); !errors.Is(err, registry.ErrConflictingRegistration) {
		t.Fatalf("expected ErrConflictingRegistration, got: %v", err)
	}
}

func TestRegister_ConfigurationErrors(t *testing.T) {
	cases := []struct {
		name string
		def  apis.Definition
		want error
	}{
		{"empty name", apis.Definition{}, registry.ErrEmptyName},
		{"empty attribute name", apis.Definition{Name: "x", Attributes: []apis.AttributeDescriptor{{}}}, registry.ErrEmptyName},
		{"unknown parent", apis.Definition{Name: "x", Parent: "nope"}, registry.ErrUnknownParent},
		{"unknown slot", apis.Definition{
			Name:       "x",
			Attributes: []apis.AttributeDescriptor{persistent("email", "user")},
		}, registry.ErrUnknownModelSlot},
		{"two mains", apis.Definition{
			Name:   "x",
			Models: []apis.ModelSlotDescriptor{{Name: "a", Main: true}, {Name: "b", Main: true}},
		}, registry.ErrMultipleMainModels},
		{"duplicate attribute", apis.Definition{
			Name:       "x",
			Attributes: []apis.AttributeDescriptor{transient("a"), transient("a")},
		}, registry.ErrDuplicateDeclaration},
		{"child and collection share name", apis.Definition{
			Name:        "x",
			Forms:       []apis.ChildFormSlot{{Name: "c", Class: "x"}},
			Collections: []apis.ChildCollectionSlot{{Name: "c", Class: "x"}},
		}, registry.ErrDuplicateDeclaration},
		{"unknown child class", apis.Definition{
			Name:  "x",
			Forms: []apis.ChildFormSlot{{Name: "c", Class: "ghost"}},
		}, registry.ErrUnknownChildClass},
		{"child form of its own class", apis.Definition{
			Name:  "node",
			Forms: []apis.ChildFormSlot{{Name: "next", Class: "node"}},
		}, registry.ErrSelfNesting},
		{"unknown collection class", apis.Definition{
			Name:        "x",
			Collections: []apis.ChildCollectionSlot{{Name: "tasks"}},
		}, registry.ErrUnknownChildClass},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := registry.New(config.DefaultConfig())
			if err := reg.Register(tc.def); !errors.Is(err, tc.want) {
				t.Fatalf("Register: want %v, got %v", tc.want, err)
			}
			if reg.Count() != 0 {
				t.Fatalf("failed registration must not publish; Count() = %d", reg.Count())
			}
		})
	}
}

func TestRegister_ChildWithBuildOrSelf(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	build := func(apis.Instance, string) (apis.Composite, error) { return nil, nil }

	err := reg.Register(apis.Definition{
		Name:        "node",
		Forms:       []apis.ChildFormSlot{{Name: "custom", Build: build}},
		Collections: []apis.ChildCollectionSlot{{Name: "children", Class: "node"}},
	})
	if err != nil {
		t.Fatalf("Register(node): unexpected error: %v", err)
	}
}

func TestRegister_Inheritance(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	var order []string
	rule := func(tag string) apis.Rule {
		return apis.RuleFunc(func(apis.Instance) { order = append(order, tag) })
	}

	base := apis.Definition{
		Name:       "base",
		Attributes: []apis.AttributeDescriptor{persistent("email", "user"), {Name: "note", Default: "base"}},
		Models:     []apis.ModelSlotDescriptor{{Name: "user", Main: true}},
		Rules:      []apis.Rule{rule("base")},
		Process:    func(apis.Instance, func() bool) bool { return false },
	}
	child := apis.Definition{
		Name:       "admin",
		Parent:     "base",
		Attributes: []apis.AttributeDescriptor{{Name: "note", Default: "admin"}, persistent("role", "user")},
		Rules:      []apis.Rule{rule("admin")},
	}
	if err := reg.Register(base); err != nil {
		t.Fatalf("Register(base): %v", err)
	}
	if err := reg.Register(child); err != nil {
		t.Fatalf("Register(admin): %v", err)
	}

	s, _ := reg.Lookup("admin")
	names := make([]string, 0, len(s.Attributes))
	for _, a := range s.Attributes {
		names = append(names, a.Name)
	}
	if want := []string{"note", "role", "email"}; !equal(names, want) {
		t.Fatalf("attribute order = %v, want %v", names, want)
	}
	if a, _ := s.Attribute("note"); a.Default != "admin" {
		t.Fatalf("most specific declaration must win; Default = %v", a.Default)
	}
	if s.Main != "user" || s.Parent == nil || !s.IsA("base") || s.IsA("other") {
		t.Fatalf("inherited main/parent mismatch: main=%q parent=%v", s.Main, s.Parent)
	}
	if s.Process == nil {
		t.Fatalf("Process must be inherited")
	}

	for _, r := range s.Rules {
		r.Check(nil)
	}
	if want := []string{"base", "admin"}; !equal(order, want) {
		t.Fatalf("rule order = %v, want %v", order, want)
	}

	// The parent's schema is not affected by the child.
	p, _ := reg.Lookup("base")
	if len(p.Attributes) != 2 || len(p.Rules) != 1 {
		t.Fatalf("parent schema mutated: %d attrs, %d rules", len(p.Attributes), len(p.Rules))
	}
}

func TestRegister_MainPolicy(t *testing.T) {
	single := apis.Definition{Name: "single", Models: []apis.ModelSlotDescriptor{{Name: "user"}}}
	double := apis.Definition{Name: "double", Models: []apis.ModelSlotDescriptor{{Name: "a"}, {Name: "b"}}}

	explicit := registry.New(config.DefaultConfig())
	_ = explicit.Register(single)
	if s, _ := explicit.Lookup("single"); s.Main != "" {
		t.Fatalf("explicit policy: Main = %q, want none", s.Main)
	}

	implicit := registry.New(config.NewConfig(config.WithMainPolicy(apis.MainImplicitSingle)))
	_ = implicit.Register(single)
	_ = implicit.Register(double)
	if s, _ := implicit.Lookup("single"); s.Main != "user" {
		t.Fatalf("implicit policy: Main = %q, want user", s.Main)
	}
	if s, _ := implicit.Lookup("double"); s.Main != "" {
		t.Fatalf("implicit policy with two slots: Main = %q, want none", s.Main)
	}
}

func TestEntriesAndReset(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	_ = reg.Register(apis.Definition{Name: "b"})
	_ = reg.Register(apis.Definition{Name: "a"})

	entries := reg.Entries()
	if len(entries) != 2 || entries[0].Definition.Name != "b" || entries[1].Definition.Name != "a" {
		t.Fatalf("Entries() not in registration order: %+v", entries)
	}
	if entries[0].Schema == nil {
		t.Fatalf("Entries() must carry the resolved schema")
	}

	reg.Reset()
	if reg.Count() != 0 || len(reg.Entries()) != 0 {
		t.Fatalf("Reset() left entries behind")
	}
	if err := reg.Register(apis.Definition{Name: "a"}); err != nil {
		t.Fatalf("Register after Reset: %v", err)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
