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

package resolver

import (
	"errors"
	"fmt"

	"dirpx.dev/formx/apis"
)

var (
	// ErrNoBuilder is returned when no strategy handled a build request.
	ErrNoBuilder = errors.New("formx(resolver): no builder for model slot")
	// ErrNilRecord is returned when a strategy handled a request but
	// produced neither a record nor an error.
	ErrNilRecord = errors.New("formx(resolver): builder returned nil record")
)

// New constructs an apis.Resolver that tries the given strategies in order.
// Nil strategies are ignored. The returned resolver is safe for concurrent use
// provided strategies themselves are safe for concurrent TryBuild calls.
func New(strategies ...apis.Strategy) apis.Resolver {
	// Filter out nils to avoid nil-interface panics on call sites.
	out := make([]apis.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return chain{strats: out}
}

// chain is an immutable, order-preserving resolver over a set of strategies.
type chain struct {
	strats []apis.Strategy
}

// Build runs strategies in order until one handles the request.
func (r chain) Build(req apis.BuildRequest, cfg apis.Config) (apis.Record, error) {
	for _, s := range r.strats {
		rec, ok, err := s.TryBuild(req, cfg)
		if !ok {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("build %q: %w", req.Slot.Name, err)
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilRecord, req.Slot.Name)
		}
		return rec, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoBuilder, req.Slot.Name)
}
