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

// Record is the only capability every backing record must offer.
type Record interface {
	// Save persists the record and reports success.
	Save() bool
}

// Finder loads a record by identifier. A slot's record type may
// implement it on its zero value to serve find-by-id builds.
type Finder interface {
	Find(id any) (Record, error)
}

// FieldAccessor gives reflection-free access to record fields by
// source name. Records that do not implement it are accessed by
// reflection.
type FieldAccessor interface {
	Field(name string) (any, error)
	SetField(name string, value any) error
}

// Identifier extends a record with a per-instance identifier.
//
// EntityID MUST be stable for the lifetime of the record once it has
// been saved, and MAY return nil for records that have none yet.
// Records without it are inspected for an exported ID field.
type Identifier interface {
	EntityID() any
}

// PersistenceReporter reports whether a record is already stored.
type PersistenceReporter interface {
	Persisted() bool
}

// Keyer returns the key attributes of a stored record, or nil.
type Keyer interface {
	StableKey() []any
}

// FieldError is one record-level validation failure.
type FieldError struct {
	// Field is the record field (source name) at fault.
	Field string
	// Reason is a machine-readable reason code.
	Reason string
}

// Checker lets a record contribute its own validation results.
type Checker interface {
	Check() []FieldError
}

// Querier answers uniqueness lookups against the backing store.
type Querier interface {
	// Matching returns the identifiers of at most limit stored records
	// whose fields (by source name) equal conds.
	Matching(conds map[string]any, limit int) ([]any, error)
}
