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

package validate

import (
	"github.com/spf13/cast"

	"dirpx.dev/formx/apis"
	uref "dirpx.dev/formx/utils/reflect"
)

// UniquenessOption configures Uniqueness.
type UniquenessOption func(*uniqueness)

// Scope restricts the check to records sharing the values of the named
// sibling attributes.
func Scope(attrs ...string) UniquenessOption {
	return func(u *uniqueness) { u.scope = append(u.scope, attrs...) }
}

// Conditions adds fixed filters, keyed by record field name.
func Conditions(conds map[string]any) UniquenessOption {
	return func(u *uniqueness) {
		for k, v := range conds {
			u.conds[k] = v
		}
	}
}

// Uniqueness reports ReasonTaken for a persistent attribute whose value is
// already stored by another record. Records are queried through
// apis.Querier for the attribute's source field, each scope attribute's
// value and the extra conditions. More than one match, or one match that
// is not the form's own record, is a conflict.
//
// When the record cannot be queried the attribute gets
// ReasonUnverifiable.
func Uniqueness(attr string, opts ...UniquenessOption) apis.Rule {
	u := &uniqueness{attr: attr, conds: map[string]any{}}
	for _, o := range opts {
		o(u)
	}
	return u
}

type uniqueness struct {
	attr  string
	scope []string
	conds map[string]any
}

var _ apis.Rule = (*uniqueness)(nil)

func (u *uniqueness) Check(inst apis.Instance) {
	errs := inst.Errors()
	a, ok := inst.Schema().Attribute(u.attr)
	if !ok || a.Kind != apis.Persistent {
		errs.Add(u.attr, apis.ReasonUnverifiable)
		return
	}
	rec, err := inst.ModelFor(u.attr)
	if err != nil {
		errs.Add(u.attr, apis.ReasonUnverifiable)
		return
	}
	q, ok := rec.(apis.Querier)
	if !ok {
		errs.Add(u.attr, apis.ReasonUnverifiable)
		return
	}
	v, err := inst.Get(u.attr)
	if err != nil {
		errs.Add(u.attr, apis.ReasonUnverifiable)
		return
	}

	conds := map[string]any{a.Source(): v}
	for _, s := range u.scope {
		sv, err := inst.Get(s)
		if err != nil {
			errs.Add(u.attr, apis.ReasonUnverifiable)
			return
		}
		col := s
		if sa, ok := inst.Schema().Attribute(s); ok && sa.Kind == apis.Persistent && sa.On == a.On {
			col = sa.Source()
		}
		conds[col] = sv
	}
	for k, cv := range u.conds {
		conds[k] = cv
	}

	ids, err := q.Matching(conds, 2)
	if err != nil {
		errs.Add(u.attr, apis.ReasonUnverifiable)
		return
	}
	own := uref.EntityID(rec)
	if own == nil {
		own = inst.ID()
	}
	if len(ids) > 1 || (len(ids) == 1 && !sameID(ids[0], own)) {
		errs.Add(u.attr, apis.ReasonTaken)
	}
}

// sameID compares identifiers loaded through different paths, such as
// an int64 column against a uint field.
func sameID(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	as, err1 := cast.ToStringE(a)
	bs, err2 := cast.ToStringE(b)
	return err1 == nil && err2 == nil && as == bs
}
