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

// Package validate holds the field-level rules forms run from IsValid.
package validate

import (
	"reflect"
	"strings"

	"dirpx.dev/formx/apis"
)

// Presence reports ReasonBlank for every attribute whose value is blank:
// nil, false, a whitespace-only string, or an empty slice, map or array.
// An attribute that cannot be read is reported as ReasonInvalid.
func Presence(attrs ...string) apis.Rule {
	return apis.RuleFunc(func(inst apis.Instance) {
		for _, a := range attrs {
			v, err := inst.Get(a)
			if err != nil {
				inst.Errors().Add(a, apis.ReasonInvalid)
				continue
			}
			if Blank(v) {
				inst.Errors().Add(a, apis.ReasonBlank)
			}
		}
	})
}

// Blank reports whether v counts as absent.
func Blank(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return Blank(rv.Elem().Interface())
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.String:
		return strings.TrimSpace(rv.String()) == ""
	}
	return false
}
