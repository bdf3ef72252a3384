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

// NewFactoryStrategy creates an apis.Strategy that runs a slot's Factory.
func NewFactoryStrategy() apis.Strategy {
	return factoryStrategy{}
}

// factoryStrategy replaces every later step when Slot.Factory is set.
type factoryStrategy struct{}

// Ensure factoryStrategy implements apis.Strategy.
var _ apis.Strategy = (*factoryStrategy)(nil)

// TryBuild calls Slot.Factory with the supplied identifier, or nil.
func (factoryStrategy) TryBuild(req apis.BuildRequest, _ apis.Config) (apis.Record, bool, error) {
	if req.Slot.Factory == nil {
		return nil, false, nil
	}
	var id any
	if req.HasID {
		id = req.ID
	}
	rec, err := req.Slot.Factory(req.Instance, id)
	return rec, true, err
}
