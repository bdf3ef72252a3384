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

// Package coerce converts loosely typed input (strings from a request,
// numbers from YAML) into the types attributes and record fields expect.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"dirpx.dev/formx/apis"
)

var (
	// ErrUnsupported is returned for a target type coerce cannot produce.
	ErrUnsupported = errors.New("formx(coerce): unsupported target type")
	// ErrOutOfRange is returned when a number does not fit the target type.
	ErrOutOfRange = errors.New("formx(coerce): value out of range")
	// ErrFractional is returned when a number with a fractional part is
	// written to an integer type.
	ErrFractional = errors.New("formx(coerce): fractional value for integer type")
)

// To converts v according to a transient attribute's coercion type.
// nil stays nil for every type.
func To(t apis.CoercionType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case apis.TypeAny:
		return v, nil
	case apis.TypeString:
		return cast.ToStringE(v)
	case apis.TypeInt:
		return convert(intType, v)
	case apis.TypeInt64:
		return convert(int64Type, v)
	case apis.TypeFloat:
		return cast.ToFloat64E(v)
	case apis.TypeBool:
		return cast.ToBoolE(v)
	case apis.TypeTime:
		return cast.ToTimeE(v)
	case apis.TypeDuration:
		return cast.ToDurationE(v)
	case apis.TypeStrings:
		return cast.ToStringSliceE(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, string(t))
	}
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	intType      = reflect.TypeOf(0)
	int64Type    = reflect.TypeOf(int64(0))
)

func convert(t reflect.Type, v any) (any, error) {
	rv, err := ToType(t, v)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

// ToType converts v into a value assignable to t. Named types over
// basic kinds (type Email string) are supported.
func ToType(t reflect.Type, v any) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(t) {
		return src, nil
	}
	var (
		out any
		err error
	)
	switch {
	case t == timeType:
		out, err = cast.ToTimeE(v)
	case t == durationType:
		out, err = cast.ToDurationE(v)
	default:
		out, err = byKind(t, v)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	rv := reflect.ValueOf(out)
	if rv.Type() != t {
		if !rv.Type().ConvertibleTo(t) {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupported, t)
		}
		rv = rv.Convert(t)
	}
	return rv, nil
}

func byKind(t reflect.Type, v any) (any, error) {
	switch t.Kind() {
	case reflect.String:
		return cast.ToStringE(v)
	case reflect.Bool:
		return cast.ToBoolE(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		out := reflect.New(t).Elem()
		if out.OverflowInt(n) {
			return nil, fmt.Errorf("%w: %v for %s", ErrOutOfRange, v, t)
		}
		out.SetInt(n)
		return out.Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := toUint64(v)
		if err != nil {
			return nil, err
		}
		out := reflect.New(t).Elem()
		if out.OverflowUint(n) {
			return nil, fmt.Errorf("%w: %v for %s", ErrOutOfRange, v, t)
		}
		out.SetUint(n)
		return out.Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		out := reflect.New(t).Elem()
		if out.OverflowFloat(f) {
			return nil, fmt.Errorf("%w: %v for %s", ErrOutOfRange, v, t)
		}
		out.SetFloat(f)
		return out.Interface(), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return cast.ToStringSliceE(v)
		}
	}
	src := reflect.ValueOf(v)
	if src.Kind() == t.Kind() && src.Type().ConvertibleTo(t) {
		return src.Convert(t).Interface(), nil
	}
	return nil, fmt.Errorf("%w: %s from %T", ErrUnsupported, t, v)
}

// toInt64 reads v as a whole number. Strings are parsed in base 10 so
// leading zeros are kept as decimal digits.
func toInt64(v any) (int64, error) {
	src := reflect.ValueOf(v)
	switch src.Kind() {
	case reflect.String:
		s := strings.TrimSpace(src.String())
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", ErrOutOfRange, s)
		}
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("formx(coerce): parse %q as integer: %w", s, err)
		}
		return floatToInt64(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return src.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if src.Uint() > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v", ErrOutOfRange, v)
		}
		return int64(src.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return floatToInt64(src.Float())
	}
	return cast.ToInt64E(v)
}

func toUint64(v any) (uint64, error) {
	src := reflect.ValueOf(v)
	switch src.Kind() {
	case reflect.String:
		s := strings.TrimSpace(src.String())
		n, err := strconv.ParseUint(s, 10, 64)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", ErrOutOfRange, s)
		}
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("formx(coerce): parse %q as unsigned integer: %w", s, err)
		}
		return floatToUint64(f)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return src.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if src.Int() < 0 {
			return 0, fmt.Errorf("%w: %v", ErrOutOfRange, v)
		}
		return uint64(src.Int()), nil
	case reflect.Float32, reflect.Float64:
		return floatToUint64(src.Float())
	}
	return cast.ToUint64E(v)
}

func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v", ErrFractional, f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, f)
	}
	return int64(f), nil
}

func floatToUint64(f float64) (uint64, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v", ErrFractional, f)
	}
	if f < 0 || f >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, f)
	}
	return uint64(f), nil
}
