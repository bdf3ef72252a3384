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

// Package formtest provides in-memory records and hook recorders for
// tests of forms and rules.
package formtest

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/form"
)

// Store is an in-memory table of Records answering uniqueness queries.
type Store struct {
	mu     sync.Mutex
	rows   []*Record
	nextID int
	// Err, when set, is returned by every query.
	Err error
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// New returns an unsaved record bound to s.
func (s *Store) New() *Record {
	return &Record{store: s, Fields: map[string]any{}}
}

// Seed saves a record with fields and returns it.
func (s *Store) Seed(fields map[string]any) *Record {
	r := s.New()
	maps.Copy(r.Fields, fields)
	r.Save()
	return r
}

// Find returns the stored record with id.
func (s *Store) Find(id any) (apis.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("formtest: record %v not found", id)
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *Store) matching(conds map[string]any, limit int) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var ids []any
	for _, r := range s.rows {
		if len(ids) == limit {
			break
		}
		match := true
		for k, v := range conds {
			if r.Fields[k] != v {
				match = false
				break
			}
		}
		if match {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

// Record is a map-backed record. It implements every optional record
// capability of apis.
type Record struct {
	store *Store

	ID     any
	Fields map[string]any
	// Fail makes Save report failure.
	Fail bool
	// Saves counts Save calls.
	Saves int
	// Problems is returned by Check.
	Problems []apis.FieldError
}

var (
	_ apis.Record              = (*Record)(nil)
	_ apis.FieldAccessor       = (*Record)(nil)
	_ apis.Identifier          = (*Record)(nil)
	_ apis.PersistenceReporter = (*Record)(nil)
	_ apis.Checker             = (*Record)(nil)
	_ apis.Querier             = (*Record)(nil)
)

// Save stores the record, assigning an integer ID on first success.
func (r *Record) Save() bool {
	r.Saves++
	if r.Fail {
		return false
	}
	if r.store == nil || r.ID != nil {
		return true
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextID++
	r.ID = r.store.nextID
	r.store.rows = append(r.store.rows, r)
	return true
}

func (r *Record) Field(name string) (any, error) {
	if r.Fields == nil {
		return nil, nil
	}
	return r.Fields[name], nil
}

func (r *Record) SetField(name string, value any) error {
	if r.Fields == nil {
		r.Fields = map[string]any{}
	}
	r.Fields[name] = value
	return nil
}

func (r *Record) EntityID() any { return r.ID }

func (r *Record) Persisted() bool { return r.ID != nil }

func (r *Record) Check() []apis.FieldError { return r.Problems }

// Matching queries the record's store.
func (r *Record) Matching(conds map[string]any, limit int) ([]any, error) {
	if r.store == nil {
		return nil, fmt.Errorf("formtest: record has no store")
	}
	return r.store.matching(conds, limit)
}

// HooksRecorder captures form hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Submits      []SubmitEvent
	SaveFailures []string
}

type SubmitEvent struct {
	Form      string
	Valid     bool
	Processed bool
	Duration  time.Duration
}

var _ form.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveSubmit(name string, valid, processed bool, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Submits = append(h.Submits, SubmitEvent{Form: name, Valid: valid, Processed: processed, Duration: dur})
}

func (h *HooksRecorder) IncSaveFailure(name, slot string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.SaveFailures = append(h.SaveFailures, name+"."+slot)
}
