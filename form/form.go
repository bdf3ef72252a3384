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
	"fmt"

	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/builder"
	"dirpx.dev/formx/config"
	"dirpx.dev/formx/logger"
	"dirpx.dev/formx/utils/coerce"
	uref "dirpx.dev/formx/utils/reflect"
)

var (
	// ErrNilSchema is returned by New when no schema is given.
	ErrNilSchema = errors.New("formx(form): nil schema")
	// ErrUnknownAttribute is returned for a name the class does not declare.
	ErrUnknownAttribute = errors.New("formx(form): unknown attribute")
	// ErrTransientAttribute is returned by ModelFor for a transient attribute.
	ErrTransientAttribute = errors.New("formx(form): attribute is transient")
	// ErrUnknownModelSlot is returned for a slot the class does not declare.
	ErrUnknownModelSlot = errors.New("formx(form): unknown model slot")
	// ErrInvalidValue is returned when a value cannot be converted for an
	// attribute. The failure is also reported by the next IsValid.
	ErrInvalidValue = errors.New("formx(form): invalid value")
	// ErrNoMainModel is returned when the class resolves no main slot.
	ErrNoMainModel = errors.New("formx(form): no main model")
	// ErrAmbiguousMainModel is returned when several slots could be main
	// and none is flagged.
	ErrAmbiguousMainModel = errors.New("formx(form): ambiguous main model")
)

// State is the lifecycle position of a form.
type State int

const (
	Built State = iota
	Assigned
	Validated
	Processed
)

func (s State) String() string {
	switch s {
	case Assigned:
		return "assigned"
	case Validated:
		return "validated"
	case Processed:
		return "processed"
	default:
		return "built"
	}
}

// Form is a composite instance of a registered class. It is request
// scoped and not safe for concurrent use.
type Form struct {
	schema *apis.Schema
	cfg    apis.Config
	reg    apis.Registry
	res    apis.Resolver
	root   *logger.Logger
	log    *logger.Logger
	hooks  Hooks

	records map[string]apis.Record
	ids     map[string]any
	params  map[string]any
	values  map[string]any

	children   map[string]apis.Composite
	childArgs  map[string]map[string]any
	colls      map[string]*Collection
	seedMain   apis.Record
	seedErrs   []error
	pendingCol []seededEntry

	errs      *apis.Errors
	invalid   map[string]bool
	invOrder  []string
	assignErr error
	state     State
}

var (
	_ apis.Instance  = (*Form)(nil)
	_ apis.Composite = (*Form)(nil)
)

// New constructs a form of schema. Records, identifiers, params and
// children may be seeded through opts; everything else is built lazily.
func New(schema *apis.Schema, opts ...Option) (*Form, error) {
	if schema == nil {
		return nil, ErrNilSchema
	}
	f := &Form{
		schema:   schema,
		cfg:      config.DefaultConfig(),
		records:  make(map[string]apis.Record),
		ids:      make(map[string]any),
		params:   make(map[string]any),
		values:   make(map[string]any),
		children: make(map[string]apis.Composite),
		colls:    make(map[string]*Collection),
		errs:     apis.NewErrors(),
		invalid:  make(map[string]bool),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.res == nil {
		f.res = builder.New().BuildResolver(f.cfg, f.reg, nil)
	}
	if f.root == nil {
		f.root = logger.Nop()
	}
	f.log = f.root.With("form", schema.Name)
	if f.hooks == nil {
		f.hooks = noopHooks{}
	}
	if f.seedMain != nil {
		if schema.Main == "" {
			f.seedErrs = append(f.seedErrs, fmt.Errorf("%w: %q", ErrNoMainModel, schema.Name))
		} else {
			f.records[schema.Main] = f.seedMain
		}
	}
	for slot := range f.records {
		if _, ok := schema.Model(slot); !ok {
			f.seedErrs = append(f.seedErrs, fmt.Errorf("%w: %q", ErrUnknownModelSlot, slot))
		}
	}
	for slot := range f.ids {
		if _, ok := schema.Model(slot); !ok {
			f.seedErrs = append(f.seedErrs, fmt.Errorf("%w: %q", ErrUnknownModelSlot, slot))
		}
	}
	for name := range f.children {
		if _, ok := schema.Form(name); !ok {
			f.seedErrs = append(f.seedErrs, fmt.Errorf("%w: %q", ErrUnknownChild, name))
		}
	}
	for _, e := range f.pendingCol {
		c, err := f.Collection(e.coll)
		if err != nil {
			f.seedErrs = append(f.seedErrs, err)
			continue
		}
		c.Put(e.key, e.child)
	}
	f.pendingCol = nil
	if err := errors.Join(f.seedErrs...); err != nil {
		return nil, err
	}
	return f, nil
}

// Schema returns the resolved class of the form.
func (f *Form) Schema() *apis.Schema { return f.schema }

// Config returns the configuration the form was built with.
func (f *Form) Config() apis.Config { return f.cfg }

// State returns the lifecycle position of the form.
func (f *Form) State() State { return f.state }

// Errors returns the error collection populated by the last IsValid.
func (f *Form) Errors() *apis.Errors { return f.errs }

// Param returns a construction-time value.
func (f *Form) Param(name string) (any, bool) {
	v, ok := f.params[name]
	return v, ok
}

// Get reads an attribute. Transient attributes never written return
// their declared default.
func (f *Form) Get(name string) (any, error) {
	a, ok := f.schema.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	if a.Kind == apis.Transient {
		if v, ok := f.values[name]; ok {
			return v, nil
		}
		return a.Default, nil
	}
	rec, err := f.Model(a.On)
	if err != nil {
		return nil, err
	}
	if fa, ok := rec.(apis.FieldAccessor); ok {
		return fa.Field(a.Source())
	}
	return uref.Field(rec, a.Source())
}

// Set writes an attribute. A value that cannot be converted returns
// ErrInvalidValue and is reported as invalid by the next IsValid;
// transient attributes keep such a value as given.
func (f *Form) Set(name string, value any) error {
	a, ok := f.schema.Attribute(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	if a.Kind == apis.Transient {
		cv, err := coerce.To(a.Type, value)
		if err != nil {
			f.values[name] = value
			f.markInvalid(name)
			return fmt.Errorf("%w: %q: %w", ErrInvalidValue, name, err)
		}
		f.values[name] = cv
		f.clearInvalid(name)
		return nil
	}
	rec, err := f.Model(a.On)
	if err != nil {
		return err
	}
	if fa, ok := rec.(apis.FieldAccessor); ok {
		err = fa.SetField(a.Source(), value)
	} else {
		err = uref.SetField(rec, a.Source(), value)
	}
	switch {
	case err == nil:
		f.clearInvalid(name)
		return nil
	case errors.Is(err, uref.ErrNoField), errors.Is(err, uref.ErrNotStruct), errors.Is(err, uref.ErrNotSettable):
		return fmt.Errorf("set %q: %w", name, err)
	default:
		f.markInvalid(name)
		return fmt.Errorf("%w: %q: %w", ErrInvalidValue, name, err)
	}
}

// Model returns the record of slot, building and memoizing it on first use.
func (f *Form) Model(slot string) (apis.Record, error) {
	if rec, ok := f.records[slot]; ok {
		return rec, nil
	}
	desc, ok := f.schema.Model(slot)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModelSlot, slot)
	}
	req := apis.BuildRequest{Instance: f, Slot: desc}
	req.ID, req.HasID = f.ids[slot]
	rec, err := f.res.Build(req, f.cfg)
	if err != nil {
		f.log.Error("model build failed", "slot", slot, "error", err)
		return nil, err
	}
	f.log.Debug("model built", "slot", slot, "by_id", req.HasID)
	f.records[slot] = rec
	return rec, nil
}

// ModelFor returns the record a persistent attribute delegates to.
func (f *Form) ModelFor(attr string) (apis.Record, error) {
	a, ok := f.schema.Attribute(attr)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	if a.Kind != apis.Persistent {
		return nil, fmt.Errorf("%w: %q", ErrTransientAttribute, attr)
	}
	return f.Model(a.On)
}

// MainModel returns the record identity is delegated to.
func (f *Form) MainModel() (apis.Record, error) {
	if f.schema.Main != "" {
		return f.Model(f.schema.Main)
	}
	if len(f.schema.Models) > 1 {
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousMainModel, f.schema.Name)
	}
	return nil, fmt.Errorf("%w: %q", ErrNoMainModel, f.schema.Name)
}

// ID returns the main record's identifier, or nil.
func (f *Form) ID() any {
	rec, err := f.MainModel()
	if err != nil {
		return nil
	}
	return uref.EntityID(rec)
}

// Persisted reports whether the main record is stored. Records without
// apis.PersistenceReporter count as stored once they carry an identifier.
func (f *Form) Persisted() bool {
	rec, err := f.MainModel()
	if err != nil {
		return false
	}
	if p, ok := rec.(apis.PersistenceReporter); ok {
		return p.Persisted()
	}
	return uref.EntityID(rec) != nil
}

// StableKey returns the main record's key attributes, or nil when the
// record is not stored.
func (f *Form) StableKey() []any {
	rec, err := f.MainModel()
	if err != nil {
		return nil
	}
	if k, ok := rec.(apis.Keyer); ok {
		return k.StableKey()
	}
	if !f.Persisted() {
		return nil
	}
	return []any{uref.EntityID(rec)}
}

func (f *Form) markInvalid(key string) {
	if !f.invalid[key] {
		f.invOrder = append(f.invOrder, key)
	}
	f.invalid[key] = true
}

func (f *Form) clearInvalid(key string) {
	delete(f.invalid, key)
}
