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

// Registry is the process-wide catalogue of form classes.
// Reads must be safe for concurrent use; registration is append-only.
type Registry interface {
	// Register resolves def against its ancestors and publishes the
	// resulting Schema. Configuration errors are returned here, never
	// at runtime.
	Register(def Definition) error
	// Lookup returns the resolved class of name if present.
	Lookup(name string) (*Schema, bool)
	// Entries returns a snapshot in registration order.
	Entries() []Entry
	// Count returns the number of registered classes.
	Count() int
	// Reset clears all registered classes.
	Reset()
}

// Entry is a single registered class in a Registry snapshot.
type Entry struct {
	// Definition is what the class declared itself.
	Definition Definition
	// Schema is the resolved class.
	Schema *Schema
}
