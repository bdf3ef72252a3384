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

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/formx/apis"
)

var (
	// ErrNotRecord is returned when a slot's Type does not implement
	// apis.Record, by value or by pointer.
	ErrNotRecord = errors.New("formx(strategy): type does not implement apis.Record")
	// ErrNoDefault is returned by an override's default builder when the
	// strategy was created without a resolver.
	ErrNoDefault = errors.New("formx(strategy): no default builder")
)

// NewReflectStrategy creates an apis.Strategy that allocates a fresh
// record of the slot's Type using utils/reflect.Normalize and memoization.
func NewReflectStrategy() apis.Strategy {
	return reflectStrategy{}
}

// reflectStrategy is the universal fallback: it unwraps Slot.Type to the
// nearest named type T and returns a new *T (or T when only the value
// implements apis.Record).
type reflectStrategy struct{}

// Ensure reflectStrategy implements apis.Strategy.
var _ apis.Strategy = (*reflectStrategy)(nil)

// cacheKey ensures memoization respects the config knobs that affect
// normalization.
type cacheKey struct {
	t         reflect.Type
	maxUnwrap int16
}

// typeCache caches normalized record types by (type, config knobs).
var typeCache sync.Map // key: cacheKey, val: reflect.Type

// TryBuild allocates a zero record of Slot.Type.
func (reflectStrategy) TryBuild(req apis.BuildRequest, cfg apis.Config) (apis.Record, bool, error) {
	if req.Slot.Type == nil {
		return nil, false, nil
	}
	base, err := normalized(req.Slot.Type, cfg)
	if err != nil {
		return nil, true, err
	}
	p := reflect.New(base)
	if rec, ok := p.Interface().(apis.Record); ok {
		return rec, true, nil
	}
	if rec, ok := p.Elem().Interface().(apis.Record); ok {
		return rec, true, nil
	}
	return nil, true, fmt.Errorf("%w: %v", ErrNotRecord, base)
}
