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

// NewConstructorStrategy creates an apis.Strategy that runs a slot's New.
func NewConstructorStrategy() apis.Strategy {
	return constructorStrategy{}
}

type constructorStrategy struct{}

// Ensure constructorStrategy implements apis.Strategy.
var _ apis.Strategy = (*constructorStrategy)(nil)

// TryBuild returns Slot.New() when set.
func (constructorStrategy) TryBuild(req apis.BuildRequest, _ apis.Config) (apis.Record, bool, error) {
	if req.Slot.New == nil {
		return nil, false, nil
	}
	return req.Slot.New(), true, nil
}
