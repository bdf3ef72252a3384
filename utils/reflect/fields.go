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

package reflect

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/utils/coerce"
)

var (
	// ErrNotStruct is returned when field access targets something other
	// than a struct or a pointer to one.
	ErrNotStruct = errors.New("formx(reflect): record is not a struct")
	// ErrNoField is returned when no field matches the requested name.
	ErrNoField = errors.New("formx(reflect): no such field")
	// ErrNotSettable is returned when writing through a non-pointer record.
	ErrNotSettable = errors.New("formx(reflect): field is not settable")
)

// fieldKey identifies a memoized field lookup.
type fieldKey struct {
	t    reflect.Type
	name string
}

// fieldCache caches field index paths by (struct type, requested name).
var fieldCache sync.Map // key: fieldKey, val: []int (nil for misses)

// Field reads the field of record matching name.
//
// Matching order: a `form:"name"` tag, the exact Go field name, then a
// case and underscore insensitive comparison ("company_name" matches
// CompanyName).
func Field(record any, name string) (any, error) {
	fv, err := field(record, name)
	if err != nil {
		return nil, err
	}
	return fv.Interface(), nil
}

// SetField writes value into the field of record matching name,
// converting it to the field's type. record must be a pointer.
func SetField(record any, name string, value any) error {
	fv, err := field(record, name)
	if err != nil {
		return err
	}
	if !fv.CanSet() {
		return fmt.Errorf("%w: %s", ErrNotSettable, name)
	}
	return assign(fv, value)
}

// EntityID returns the identifier of record: Identifier.EntityID when
// implemented, otherwise a non-zero exported ID field. Absent or zero
// identifiers yield nil.
func EntityID(record any) any {
	if record == nil {
		return nil
	}
	if id, ok := record.(apis.Identifier); ok {
		return id.EntityID()
	}
	fv, err := field(record, "ID")
	if err != nil || fv.IsZero() {
		return nil
	}
	return fv.Interface()
}

func field(record any, name string) (reflect.Value, error) {
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, ErrNotStruct
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotStruct
	}
	idx := index(rv.Type(), name)
	if idx == nil {
		return reflect.Value{}, fmt.Errorf("%w: %s.%s", ErrNoField, rv.Type().Name(), name)
	}
	fv, err := rv.FieldByIndexErr(idx)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNoField, err)
	}
	return fv, nil
}

func index(t reflect.Type, name string) []int {
	key := fieldKey{t: t, name: name}
	if v, ok := fieldCache.Load(key); ok {
		return v.([]int)
	}
	var byName, byFold []int
	want := fold(name)
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if tag, _, _ := strings.Cut(f.Tag.Get("form"), ","); tag == name {
			fieldCache.Store(key, f.Index)
			return f.Index
		}
		if byName == nil && f.Name == name {
			byName = f.Index
		}
		if byFold == nil && fold(f.Name) == want {
			byFold = f.Index
		}
	}
	found := byName
	if found == nil {
		found = byFold
	}
	fieldCache.Store(key, found)
	return found
}

func fold(s string) string {
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToLower(s)
}

func assign(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dst.Kind() == reflect.Ptr {
		src := reflect.ValueOf(value)
		if src.Type().AssignableTo(dst.Type()) {
			dst.Set(src)
			return nil
		}
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), value); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	rv, err := coerce.ToType(dst.Type(), value)
	if err != nil {
		return err
	}
	dst.Set(rv)
	return nil
}
