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
	"reflect"

	"dirpx.dev/formx/apis"
	uref "dirpx.dev/formx/utils/reflect"
)

// NewFinderStrategy creates an apis.Strategy that loads a record by the
// identifier supplied for its slot.
func NewFinderStrategy() apis.Strategy {
	return finderStrategy{}
}

// finderStrategy handles only requests carrying an identifier. It prefers
// Slot.Find and falls back to an apis.Finder implemented by the slot's
// record type.
type finderStrategy struct{}

// Ensure finderStrategy implements apis.Strategy.
var _ apis.Strategy = (*finderStrategy)(nil)

// TryBuild finds the record identified by req.ID.
func (finderStrategy) TryBuild(req apis.BuildRequest, cfg apis.Config) (apis.Record, bool, error) {
	if !req.HasID {
		return nil, false, nil
	}
	if req.Slot.Find != nil {
		rec, err := req.Slot.Find(req.ID)
		return rec, true, err
	}
	f := typeFinder(req.Slot.Type, cfg)
	if f == nil {
		return nil, false, nil
	}
	rec, err := f.Find(req.ID)
	return rec, true, err
}

// typeFinder returns the Finder implemented by t's zero value, by value
// or by pointer receiver.
func typeFinder(t reflect.Type, cfg apis.Config) apis.Finder {
	if t == nil {
		return nil
	}
	base, err := normalized(t, cfg)
	if err != nil {
		return nil
	}
	p := reflect.New(base)
	if f, ok := p.Interface().(apis.Finder); ok {
		return f
	}
	if f, ok := p.Elem().Interface().(apis.Finder); ok {
		return f
	}
	return nil
}

// normalized is uref.Normalize memoized per (type, MaxUnwrap).
func normalized(t reflect.Type, cfg apis.Config) (reflect.Type, error) {
	key := cacheKey{t: t, maxUnwrap: int16(cfg.MaxUnwrap)}
	if v, ok := typeCache.Load(key); ok {
		return v.(reflect.Type), nil
	}
	base, err := uref.Normalize(t, cfg)
	if err != nil {
		return nil, err
	}
	typeCache.Store(key, base)
	return base, nil
}
