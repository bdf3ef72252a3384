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

package strategy

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/formx/apis"
)

// Local test types.
type A struct{ Saved bool }

func (a *A) Save() bool { a.Saved = true; return true }

type V struct{}

func (V) Save() bool { return true }

type G[T any] struct{ V T }

func (*G[T]) Save() bool { return true }

type plain struct{}

// cfg returns a convenient baseline Config for tests.
func cfg(opts ...func(*apis.Config)) apis.Config {
	c := apis.Config{MaxUnwrap: 8}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func req(t reflect.Type) apis.BuildRequest {
	return apis.BuildRequest{Slot: apis.ModelSlotDescriptor{Name: "m", Type: t}}
}

func TestReflectStrategy_ByType(t *testing.T) {
	s := NewReflectStrategy()

	cases := []struct {
		name string
		typ  reflect.Type
		want reflect.Type
	}{
		{"type plain", reflect.TypeOf(A{}), reflect.TypeOf(&A{})},
		{"type ptr", reflect.TypeOf(&A{}), reflect.TypeOf(&A{})},
		{"type slice", reflect.TypeOf([]*A{}), reflect.TypeOf(&A{})},
		{"value receiver", reflect.TypeOf(V{}), reflect.TypeOf(&V{})},
		{"generic instantiation", reflect.TypeOf(G[int]{}), reflect.TypeOf(&G[int]{})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, ok, err := s.TryBuild(req(tc.typ), cfg())
			if !ok || err != nil {
				t.Fatalf("TryBuild(%v) = (_, %v, %v), want handled", tc.typ, ok, err)
			}
			if got := reflect.TypeOf(rec); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReflectStrategy_FreshRecords(t *testing.T) {
	s := NewReflectStrategy()
	r1, _, _ := s.TryBuild(req(reflect.TypeOf(A{})), cfg())
	r2, _, _ := s.TryBuild(req(reflect.TypeOf(A{})), cfg())
	r1.Save()
	if r1 == r2 || r2.(*A).Saved {
		t.Fatalf("each build must allocate a new record")
	}
}

func TestReflectStrategy_Misses(t *testing.T) {
	s := NewReflectStrategy()

	if _, ok, _ := s.TryBuild(req(nil), cfg()); ok {
		t.Fatalf("nil type: expected fall through")
	}
	if _, ok, err := s.TryBuild(req(reflect.TypeOf(plain{})), cfg()); !ok || !errors.Is(err, ErrNotRecord) {
		t.Fatalf("non-record: want ErrNotRecord, got (%v,%v)", ok, err)
	}
	type PP = **A
	tPP := reflect.TypeOf((*PP)(nil)).Elem()
	if _, ok, err := s.TryBuild(req(tPP), cfg(func(c *apis.Config) { c.MaxUnwrap = 1 })); !ok || err == nil {
		t.Fatalf("MaxUnwrap=1: expected handled error, got (%v,%v)", ok, err)
	}
}

func TestReflectStrategy_ConcurrentBuild(t *testing.T) {
	s := NewReflectStrategy()
	types := []reflect.Type{reflect.TypeOf(A{}), reflect.TypeOf(&V{}), reflect.TypeOf(G[string]{})}

	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				rec, ok, err := s.TryBuild(req(types[(i+id)%len(types)]), cfg())
				if !ok || err != nil || rec == nil {
					errCh <- errors.New("concurrent build failed")
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errCh)
	for e := range errCh {
		t.Fatal(e)
	}
}

// ---- Benchmarks ----

func BenchmarkReflectStrategy_ByType(b *testing.B) {
	s := NewReflectStrategy()
	reqs := []apis.BuildRequest{req(reflect.TypeOf(A{})), req(reflect.TypeOf(&V{})), req(reflect.TypeOf(G[int]{}))}
	conf := cfg()
	// Warm-up cache
	for _, r := range reqs {
		_, _, _ = s.TryBuild(r, conf)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = s.TryBuild(reqs[i%len(reqs)], conf)
	}
}
