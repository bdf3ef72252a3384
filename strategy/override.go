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

package strategy

import "dirpx.dev/formx/apis"

// NewOverrideStrategy creates an apis.Strategy that runs a slot's
// Override. def is the resolver the override may call through to.
func NewOverrideStrategy(def apis.Resolver) apis.Strategy {
	return &overrideStrategy{def: def}
}

// overrideStrategy hands the request to Slot.Override, passing the rest
// of the chain as the default builder.
type overrideStrategy struct {
	def apis.Resolver
}

// Ensure overrideStrategy implements apis.Strategy.
var _ apis.Strategy = (*overrideStrategy)(nil)

// TryBuild calls Slot.Override when one is declared.
func (s *overrideStrategy) TryBuild(req apis.BuildRequest, cfg apis.Config) (apis.Record, bool, error) {
	if req.Slot.Override == nil {
		return nil, false, nil
	}
	def := func() (apis.Record, error) {
		if s.def == nil {
			return nil, ErrNoDefault
		}
		return s.def.Build(req, cfg)
	}
	rec, err := req.Slot.Override(req.Instance, def)
	return rec, true, err
}
