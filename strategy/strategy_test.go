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

package strategy_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/strategy"
)

type rec struct{ ID any }

func (*rec) Save() bool { return true }

// byID implements apis.Finder on its zero value.
type byID struct{ ID any }

func (*byID) Save() bool { return true }

func (*byID) Find(id any) (apis.Record, error) {
	if id == "missing" {
		return nil, errors.New("not found")
	}
	return &byID{ID: id}, nil
}

type fixed struct{ r apis.Record }

func (f fixed) Build(apis.BuildRequest, apis.Config) (apis.Record, error) { return f.r, nil }

var conf = apis.Config{MaxUnwrap: 8}

func TestFactoryStrategy(t *testing.T) {
	s := strategy.NewFactoryStrategy()

	_, ok, _ := s.TryBuild(apis.BuildRequest{}, conf)
	require.False(t, ok)

	var gotID any = "unset"
	slot := apis.ModelSlotDescriptor{Factory: func(_ apis.Instance, id any) (apis.Record, error) {
		gotID = id
		return &rec{ID: id}, nil
	}}

	r, ok, err := s.TryBuild(apis.BuildRequest{Slot: slot}, conf)
	require.True(t, ok)
	require.NoError(t, err)
	require.Nil(t, gotID)
	require.Nil(t, r.(*rec).ID)

	r, _, _ = s.TryBuild(apis.BuildRequest{Slot: slot, ID: 5, HasID: true}, conf)
	require.Equal(t, 5, r.(*rec).ID)
}

func TestFinderStrategy(t *testing.T) {
	s := strategy.NewFinderStrategy()

	// Without an identifier the step never handles the request.
	slot := apis.ModelSlotDescriptor{Find: func(any) (apis.Record, error) { return &rec{}, nil }}
	_, ok, _ := s.TryBuild(apis.BuildRequest{Slot: slot}, conf)
	require.False(t, ok)

	slot.Find = func(id any) (apis.Record, error) { return &rec{ID: id}, nil }
	r, ok, err := s.TryBuild(apis.BuildRequest{Slot: slot, ID: "u1", HasID: true}, conf)
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, "u1", r.(*rec).ID)

	// Type-level finder.
	typed := apis.ModelSlotDescriptor{Type: reflect.TypeOf(byID{})}
	r, ok, err = s.TryBuild(apis.BuildRequest{Slot: typed, ID: 9, HasID: true}, conf)
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, 9, r.(*byID).ID)

	_, ok, err = s.TryBuild(apis.BuildRequest{Slot: typed, ID: "missing", HasID: true}, conf)
	require.True(t, ok)
	require.Error(t, err)

	// A type without a finder falls through.
	_, ok, _ = s.TryBuild(apis.BuildRequest{Slot: apis.ModelSlotDescriptor{Type: reflect.TypeOf(rec{})}, ID: 1, HasID: true}, conf)
	require.False(t, ok)
}

func TestConstructorStrategy(t *testing.T) {
	s := strategy.NewConstructorStrategy()

	_, ok, _ := s.TryBuild(apis.BuildRequest{}, conf)
	require.False(t, ok)

	want := &rec{ID: "new"}
	r, ok, err := s.TryBuild(apis.BuildRequest{Slot: apis.ModelSlotDescriptor{New: func() apis.Record { return want }}}, conf)
	require.True(t, ok)
	require.NoError(t, err)
	require.Same(t, want, r)
}

func TestOverrideStrategy_CallsThrough(t *testing.T) {
	base := &rec{ID: "default"}
	s := strategy.NewOverrideStrategy(fixed{r: base})

	_, ok, _ := s.TryBuild(apis.BuildRequest{}, conf)
	require.False(t, ok)

	slot := apis.ModelSlotDescriptor{Override: func(_ apis.Instance, def func() (apis.Record, error)) (apis.Record, error) {
		r, err := def()
		if err != nil {
			return nil, err
		}
		r.(*rec).ID = "customized"
		return r, nil
	}}
	r, ok, err := s.TryBuild(apis.BuildRequest{Slot: slot}, conf)
	require.True(t, ok)
	require.NoError(t, err)
	require.Same(t, base, r)
	require.Equal(t, "customized", base.ID)

	_, _, err = strategy.NewOverrideStrategy(nil).TryBuild(apis.BuildRequest{Slot: slot}, conf)
	require.ErrorIs(t, err, strategy.ErrNoDefault)
}
