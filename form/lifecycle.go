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

package form

import (
	"errors"
	"time"

	"dirpx.dev/formx/apis"
)

// Assign writes every declared attribute present in params, then the
// child forms ("<child>_attributes") and collections (the collection's
// param key). Keys not present are left untouched.
//
// Conversion failures are reported as invalid by the next IsValid and
// do not stop the assignment. Other failures are joined and returned.
func (f *Form) Assign(params map[string]any) error {
	f.assignErr = nil
	var errs []error
	for _, a := range f.schema.Attributes {
		v, ok := params[a.Name]
		if !ok {
			continue
		}
		if err := f.Set(a.Name, v); err != nil && !errors.Is(err, ErrInvalidValue) {
			errs = append(errs, err)
		}
	}
	if err := f.assignTree(params); err != nil {
		errs = append(errs, err)
	}
	f.state = Assigned
	f.assignErr = errors.Join(errs...)
	if f.assignErr != nil {
		f.log.Warn("assign failed", "error", f.assignErr)
	}
	return f.assignErr
}

// IsValid repopulates Errors and reports whether it is empty. Every
// rule, every attribute-owning record, every child and every collection
// entry is evaluated; none short-circuits the others.
func (f *Form) IsValid() bool {
	f.errs.Clear()
	if f.assignErr != nil {
		f.errs.Add(apis.Base, apis.ReasonInvalid)
	}
	for _, k := range f.invOrder {
		if f.invalid[k] {
			f.errs.Add(k, apis.ReasonInvalid)
		}
	}
	for _, r := range f.schema.Rules {
		r.Check(f)
	}
	for _, m := range f.schema.Models {
		if f.schema.OwnsAttributes(m.Name) {
			f.checkRecord(m.Name)
		}
	}
	f.validateTree()

	f.state = Validated
	valid := f.errs.Empty()
	if !valid {
		f.log.Debug("validation failed", "errors", f.errs.String())
	}
	return valid
}

// checkRecord merges an apis.Checker record's results, mapping source
// field names back to attribute names.
func (f *Form) checkRecord(slot string) {
	rec, err := f.Model(slot)
	if err != nil {
		f.errs.Add(apis.Base, apis.ReasonInvalid)
		return
	}
	c, ok := rec.(apis.Checker)
	if !ok {
		return
	}
	attrs := f.schema.AttributesOn(slot)
	for _, fe := range c.Check() {
		key := apis.Base
		for _, a := range attrs {
			if a.Source() == fe.Field {
				key = a.Name
				break
			}
		}
		f.errs.Add(key, fe.Reason)
	}
}

// Submit assigns params when non-nil, validates, and processes only a
// valid form. It returns the result of Process, or false.
func (f *Form) Submit(params map[string]any) bool {
	start := time.Now()
	if params != nil {
		_ = f.Assign(params)
	}
	valid := f.IsValid()
	processed := false
	if valid {
		processed = f.Process()
	}
	f.hooks.ObserveSubmit(f.schema.Name, valid, processed, time.Since(start))
	return processed
}

// Process runs the class's Process override, or the default: Persist
// followed by the children's Process.
func (f *Form) Process() bool {
	f.state = Processed
	if f.schema.Process != nil {
		return f.schema.Process(f, f.process)
	}
	return f.process()
}

func (f *Form) process() bool {
	ok := f.Persist()
	if !f.processTree() {
		ok = false
	}
	return ok
}

// Persist saves every slot whose Reject predicate is false. Every slot
// is attempted; the result is true only if all saves succeeded.
func (f *Form) Persist() bool {
	ok := true
	for _, m := range f.schema.Models {
		if m.Reject != nil && m.Reject(f) {
			f.log.Debug("model rejected", "slot", m.Name)
			continue
		}
		rec, err := f.Model(m.Name)
		if err != nil {
			f.hooks.IncSaveFailure(f.schema.Name, m.Name)
			ok = false
			continue
		}
		if !rec.Save() {
			f.log.Warn("save failed", "slot", m.Name)
			f.hooks.IncSaveFailure(f.schema.Name, m.Name)
			ok = false
		}
	}
	return ok
}
