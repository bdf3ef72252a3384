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

package apis

// BuildRequest describes one lazy model slot build.
type BuildRequest struct {
	// Instance is the form the slot belongs to.
	Instance Instance
	// Slot is the resolved slot descriptor.
	Slot ModelSlotDescriptor
	// ID is the identifier supplied at construction, if HasID.
	ID    any
	HasID bool
}

// Strategy is a pluggable build step. A Resolver chains strategies in
// order (e.g., Override -> Factory -> Finder -> Constructor -> Reflect).
type Strategy interface {
	// TryBuild returns (record, true, err) if it handled the request;
	// otherwise (nil, false, nil) to fall through.
	TryBuild(req BuildRequest, cfg Config) (rec Record, handled bool, err error)
}
