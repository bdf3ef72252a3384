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

package registry_test

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/config"
	"dirpx.dev/formx/registry"
)

// TestConcurrentRegisterAndLookup verifies that Register/Lookup/Entries/Count
// are race-free and consistent under concurrent use.
func TestConcurrentRegisterAndLookup(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("class%d", i)
	}

	// Register once (sequential) to establish baseline.
	for _, n := range names {
		if err := reg.Register(apis.Definition{Name: n}); err != nil {
			t.Fatalf("register %s: %v", n, err)
		}
	}

	wg := sync.WaitGroup{}
	workers := runtime.GOMAXPROCS(0) * 4

	// Readers
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 5000; i++ {
				n := names[i%len(names)]
				if s, ok := reg.Lookup(n); !ok || s.Name != n {
					t.Errorf("lookup failed for %s: ok=%v", n, ok)
					return
				}
				_ = reg.Count()
				_ = reg.Entries()
			}
		}()
	}

	// Writers: re-registrations must all be rejected; derived classes
	// race for unique names, exactly one of each must win.
	var (
		mu   sync.Mutex
		wins = map[string]int{}
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				j := (i + id) % len(names)
				if err := reg.Register(apis.Definition{Name: names[j]}); err == nil {
					t.Errorf("re-register %s: expected conflict", names[j])
					return
				}
				derived := names[j] + "/derived"
				if err := reg.Register(apis.Definition{Name: derived, Parent: names[j]}); err == nil {
					mu.Lock()
					wins[derived]++
					mu.Unlock()
				}
			}
		}(w)
	}

	wg.Wait()

	// Final consistency checks.
	if reg.Count() != 2*len(names) {
		t.Fatalf("count mismatch: got %d want %d", reg.Count(), 2*len(names))
	}
	for d, n := range wins {
		if n != 1 {
			t.Fatalf("%s registered %d times", d, n)
		}
	}
	got := map[string]bool{}
	for _, e := range reg.Entries() {
		got[e.Definition.Name] = true
	}
	for _, n := range names {
		if !got[n] || !got[n+"/derived"] {
			t.Fatalf("entry missing for %s", n)
		}
	}
}

// TestResetSnapshot ensures Reset is safe and Entries returns a stable snapshot.
func TestResetSnapshot(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	_ = reg.Register(apis.Definition{Name: "T0"})
	_ = reg.Register(apis.Definition{Name: "T1"})

	snap := reg.Entries() // snapshot copy expected
	reg.Reset()

	// After Reset, Count() should be 0, but previous snapshot must still be usable.
	if reg.Count() != 0 {
		t.Fatalf("count after reset: got %d want 0", reg.Count())
	}
	if len(snap) != 2 {
		t.Fatalf("snapshot length changed unexpectedly: %d", len(snap))
	}
	if snap[0].Schema == nil || snap[1].Schema.Name != "T1" {
		t.Fatalf("snapshot contents invalid after reset")
	}
}

// This ensures the interface is satisfied; not a test but a compile-time check.
var _ apis.Registry = registry.New(config.DefaultConfig())
