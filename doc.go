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

// Package formx composes forms out of named attributes, backing records
// and nested forms.
//
// A form class is declared once with an apis.Definition: the attributes
// it exposes, the model slots whose records hold persistent values, the
// child forms and keyed collections it owns, its validation rules and an
// optional Process override. Defining a class resolves it against its
// ancestors into an apis.Schema; every configuration mistake (an unknown
// parent, an attribute pointing at a slot nobody declares, two main
// models) surfaces at that point and never while a form is in use.
//
// Instances are built from the schema by package form. An instance reads
// and writes attributes, assigns a whole parameter map at once, validates
// itself and its tree, and processes by saving every record it owns
// before cascading to its children.
//
// # Design
//
// The package holds a read-mostly global snapshot (state):
//
//   - Config: main model policy, collection processing and the limit on
//     type unwrapping used when records are constructed reflectively.
//
//   - Registry: the process-wide set of resolved classes, in registration
//     order.
//
//   - Resolver: the chain that builds a slot's record. Strategies are
//     tried in priority order:
//     1. the slot's Override, which may call through to the rest;
//     2. the slot's Factory;
//     3. find by identifier, when one was supplied;
//     4. the slot's constructor;
//     5. reflective allocation of the slot's record type.
//
//   - Builder: constructs Registry and Resolver for a Config. A rebuilt
//     registry re-registers the classes of the previous one, so a policy
//     change re-resolves them.
//
// Readers load the snapshot through an atomic pointer and never take a
// lock:
//
//	formx.MustDefine(signup)
//	f, err := formx.New("signup", form.WithParam(gormstore.ParamDB, tx))
//	ok := f.Submit(params)
//
// Writers (SetConfig, SetBuilder, SetRegistry, SetResolver, SetLogger,
// SetAll) take a short build mutex, assemble a new state and publish it
// with one atomic swap. A form keeps the snapshot it was created with.
//
// # Pinning
//
// SetRegistry and SetResolver pin the layer they install: SetConfig and
// SetBuilder stop rebuilding it until UnpinRegistry or UnpinResolver is
// called. PinRegistry and PinResolver pin the current layer in place.
//
// # Tests
//
// SetAll replaces config, registry, resolver and builder in one shot.
// Tests use it with a nil registry and resolver to get a fresh snapshot
// from a given builder.
package formx
