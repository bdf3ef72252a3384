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

package builder

import (
	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/registry"
	"dirpx.dev/formx/resolver"
	"dirpx.dev/formx/strategy"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds and returns a new apis.Registry based on the provided configuration
// and pre-existing registry. If a pre-existing registry is provided, its definitions are
// re-registered in their original order, so parents precede children.
func (b *builder) BuildRegistry(cfg apis.Config, preg apis.Registry) apis.Registry {
	nreg := registry.New(cfg)
	if preg != nil {
		for _, e := range preg.Entries() {
			_ = nreg.Register(e.Definition)
		}
	}
	return nreg
}

// BuildResolver builds and returns the default slot build chain:
// override, factory, find by identifier, constructor, reflect. An override
// calls through to the chain that follows it.
func (b *builder) BuildResolver(cfg apis.Config, reg apis.Registry, _ apis.Resolver) apis.Resolver {
	rest := []apis.Strategy{
		strategy.NewFactoryStrategy(),
		strategy.NewFinderStrategy(),
		strategy.NewConstructorStrategy(),
		strategy.NewReflectStrategy(),
	}
	return resolver.New(append([]apis.Strategy{strategy.NewOverrideStrategy(resolver.New(rest...))}, rest...)...)
}
