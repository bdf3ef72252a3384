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

package formx

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/builder"
	"dirpx.dev/formx/config"
	"dirpx.dev/formx/form"
	"dirpx.dev/formx/logger"
)

// init publishes the default snapshot.
func init() {
	s := &state{cfg: config.DefaultConfig(), log: logger.Nop()}
	b := builder.New()
	s.reg = b.BuildRegistry(s.cfg, nil)
	s.res = b.BuildResolver(s.cfg, s.reg, nil)
	s.bld = b
	st.Store(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("formx: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("formx: builder returned nil resolver")
	// ErrUnknownClass is returned by New for a name that was never defined.
	ErrUnknownClass = errors.New("formx: unknown form class")
)

// Define registers def in the global registry.
func Define(def apis.Definition) error {
	return st.Load().reg.Register(def)
}

// MustDefine is Define for package-level declarations. It panics on a
// configuration error.
func MustDefine(def apis.Definition) {
	if err := Define(def); err != nil {
		panic(err)
	}
}

// Lookup returns the resolved class registered under name.
func Lookup(name string) (*apis.Schema, bool) {
	return st.Load().reg.Lookup(name)
}

// New instantiates the class registered under name against the current
// snapshot. Options given by the caller are applied after the snapshot's,
// so a caller can still override the resolver or logger for one form.
func New(name string, opts ...form.Option) (*form.Form, error) {
	s := st.Load()
	schema, ok := s.reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	base := []form.Option{
		form.WithConfig(s.cfg),
		form.WithRegistry(s.reg),
		form.WithResolver(s.res),
		form.WithLogger(s.log),
	}
	return form.New(schema, append(base, opts...)...)
}

// SetAll explicitly sets all global state components.
//
// Nil arguments leave the corresponding component unchanged. A nil
// registry or resolver is rebuilt by the (possibly new) builder and left
// unpinned; a non-nil one is pinned.
func SetAll(cfg *apis.Config, reg apis.Registry, res apis.Resolver, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()

	ncfg := old.cfg
	if cfg != nil {
		ncfg = *cfg
	}

	nbld := old.bld
	if bld != nil {
		nbld = bld
	}

	nreg, npreg := reg, true
	if nreg == nil {
		nreg, npreg = nbld.BuildRegistry(ncfg, old.reg), false
	}

	nres, npres := res, true
	if nres == nil {
		nres, npres = nbld.BuildResolver(ncfg, nreg, old.res), false
	}

	if nreg == nil {
		panic(ErrNilRegistry)
	}
	if nres == nil {
		panic(ErrNilResolver)
	}

	next := old.clone()
	next.cfg, next.bld = ncfg, nbld
	next.reg, next.preg = nreg, npreg
	next.res, next.pres = nres, npres
	st.Store(next)
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration and rebuilds every layer that
// is not pinned. Rebuilding the registry migrates the classes defined so
// far, so a policy change re-resolves them.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	b := old.bld

	nreg := old.reg
	if !old.preg {
		nreg = b.BuildRegistry(cfg, old.reg)
	}
	nres := old.res
	if !old.pres {
		nres = b.BuildResolver(cfg, nreg, old.res)
	}

	if nreg == nil {
		panic(ErrNilRegistry)
	}
	if nres == nil {
		panic(ErrNilResolver)
	}

	next := old.clone()
	next.cfg, next.reg, next.res = cfg, nreg, nres
	st.Store(next)
}

// Registry returns the global registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry pins reg as the global registry and rebuilds the resolver
// unless it is pinned.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()

	nres := old.res
	if !old.pres {
		nres = old.bld.BuildResolver(old.cfg, reg, old.res)
	}
	if nres == nil {
		panic(ErrNilResolver)
	}

	next := old.clone()
	next.reg, next.res, next.preg = reg, nres, true
	st.Store(next)
}

// Resolver returns the global resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver pins res as the global resolver.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := st.Load().clone()
	next.res, next.pres = res, true
	st.Store(next)
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder swaps the builder and rebuilds every layer that is not pinned.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()

	nreg := old.reg
	if !old.preg {
		nreg = b.BuildRegistry(old.cfg, old.reg)
	}
	nres := old.res
	if !old.pres {
		nres = b.BuildResolver(old.cfg, nreg, old.res)
	}

	if nreg == nil {
		panic(ErrNilRegistry)
	}
	if nres == nil {
		panic(ErrNilResolver)
	}

	next := old.clone()
	next.reg, next.res, next.bld = nreg, nres, b
	st.Store(next)
}

// Logger returns the logger handed to forms created by New.
func Logger() *logger.Logger {
	return st.Load().log
}

// SetLogger replaces the logger handed to forms created by New.
// A nil logger restores the no-op logger.
func SetLogger(l *logger.Logger) {
	if l == nil {
		l = logger.Nop()
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := st.Load().clone()
	next.log = l
	st.Store(next)
}

// IsRegistryPinned reports whether the global registry is pinned.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry stops SetConfig and SetBuilder from rebuilding the registry.
func PinRegistry() {
	setPins(func(s *state) { s.preg = true })
}

// UnpinRegistry lets the registry be rebuilt again.
func UnpinRegistry() {
	setPins(func(s *state) { s.preg = false })
}

// IsResolverPinned reports whether the global resolver is pinned.
func IsResolverPinned() bool {
	return st.Load().pres
}

// PinResolver stops SetConfig, SetRegistry and SetBuilder from rebuilding
// the resolver.
func PinResolver() {
	setPins(func(s *state) { s.pres = true })
}

// UnpinResolver lets the resolver be rebuilt again.
func UnpinResolver() {
	setPins(func(s *state) { s.pres = false })
}

func setPins(fn func(*state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := st.Load().clone()
	fn(next)
	st.Store(next)
}

// buildMu serializes writers so partially-built snapshots are never
// published.
var buildMu sync.Mutex

// st is the published snapshot.
var st atomic.Pointer[state]

// state is an immutable snapshot published via st.Store. Writers clone
// the current one, change the copy and swap it in.
type state struct {
	cfg apis.Config
	reg apis.Registry
	res apis.Resolver
	bld apis.Builder
	log *logger.Logger
	// preg indicates whether reg is pinned.
	preg bool
	// pres indicates whether res is pinned.
	pres bool
}

func (s *state) clone() *state {
	c := *s
	return &c
}
