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

// Package gormstore backs model slots with GORM models.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"dirpx.dev/formx/apis"
	uref "dirpx.dev/formx/utils/reflect"
)

var (
	// ErrNilDB is returned when a record has no database handle.
	ErrNilDB = errors.New("formx(gormstore): nil *gorm.DB")
	// ErrUnknownColumn is returned when a query names a field the model
	// does not have.
	ErrUnknownColumn = errors.New("formx(gormstore): unknown column")
	// ErrNoPrimaryKey is returned for models without a primary key.
	ErrNoPrimaryKey = errors.New("formx(gormstore): model has no primary key")
)

// Record adapts a GORM model *T to apis.Record and its optional
// capabilities: find by primary key, field access, identity, uniqueness
// queries and the model's own Check, if any.
type Record[T any] struct {
	db    *gorm.DB
	Value *T
	err   error
}

var (
	_ apis.Record              = (*Record[struct{}])(nil)
	_ apis.Finder              = (*Record[struct{}])(nil)
	_ apis.FieldAccessor       = (*Record[struct{}])(nil)
	_ apis.Identifier          = (*Record[struct{}])(nil)
	_ apis.PersistenceReporter = (*Record[struct{}])(nil)
	_ apis.Querier             = (*Record[struct{}])(nil)
	_ apis.Checker             = (*Record[struct{}])(nil)
)

// Wrap binds v to db. A nil v is replaced by a new zero *T.
func Wrap[T any](db *gorm.DB, v *T) *Record[T] {
	if v == nil {
		v = new(T)
	}
	return &Record[T]{db: db, Value: v}
}

// Err returns the error of the last failed Save.
func (r *Record[T]) Err() error { return r.err }

// Save creates or updates the model.
func (r *Record[T]) Save() bool {
	if r.db == nil {
		r.err = ErrNilDB
		return false
	}
	r.err = r.db.Save(r.Value).Error
	return r.err == nil
}

// Find loads the model with primary key id into a new Record.
func (r *Record[T]) Find(id any) (apis.Record, error) {
	if r.db == nil {
		return nil, ErrNilDB
	}
	pk, err := r.primaryField()
	if err != nil {
		return nil, err
	}
	v := new(T)
	err = r.db.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: pk.DBName}, Value: id}).First(v).Error
	if err != nil {
		return nil, fmt.Errorf("find %v: %w", id, err)
	}
	return &Record[T]{db: r.db, Value: v}, nil
}

func (r *Record[T]) Field(name string) (any, error) {
	return uref.Field(r.Value, name)
}

func (r *Record[T]) SetField(name string, value any) error {
	return uref.SetField(r.Value, name, value)
}

// EntityID returns the primary key, or nil while it is zero.
func (r *Record[T]) EntityID() any {
	pk, err := r.primaryField()
	if err != nil {
		return uref.EntityID(r.Value)
	}
	v, zero := pk.ValueOf(context.Background(), reflect.ValueOf(r.Value))
	if zero {
		return nil
	}
	return v
}

// Persisted reports whether the model carries a primary key.
func (r *Record[T]) Persisted() bool { return r.EntityID() != nil }

// Check delegates to the model when it implements apis.Checker.
func (r *Record[T]) Check() []apis.FieldError {
	if c, ok := any(r.Value).(apis.Checker); ok {
		return c.Check()
	}
	return nil
}

// Matching returns the primary keys, as strings, of at most limit rows
// whose fields equal conds. Keys of conds are field or column names.
func (r *Record[T]) Matching(conds map[string]any, limit int) ([]any, error) {
	if r.db == nil {
		return nil, ErrNilDB
	}
	s, err := r.schema()
	if err != nil {
		return nil, err
	}
	if s.PrioritizedPrimaryField == nil {
		return nil, ErrNoPrimaryKey
	}
	q := r.db.Model(new(T))
	for name, v := range conds {
		f := s.LookUpField(name)
		if f == nil {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.Name, name)
		}
		q = q.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: f.DBName}, Value: v})
	}
	var keys []string
	if err := q.Limit(limit).Pluck(s.PrioritizedPrimaryField.DBName, &keys).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Name, err)
	}
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out, nil
}

func (r *Record[T]) primaryField() (*schema.Field, error) {
	s, err := r.schema()
	if err != nil {
		return nil, err
	}
	if s.PrioritizedPrimaryField == nil {
		return nil, ErrNoPrimaryKey
	}
	return s.PrioritizedPrimaryField, nil
}

// schemaCache is shared by every Record; gorm schemas are immutable once parsed.
var schemaCache sync.Map

func (r *Record[T]) schema() (*schema.Schema, error) {
	var namer schema.Namer = schema.NamingStrategy{}
	if r.db != nil && r.db.Config != nil && r.db.NamingStrategy != nil {
		namer = r.db.NamingStrategy
	}
	s, err := schema.Parse(r.Value, &schemaCache, namer)
	if err != nil {
		return nil, fmt.Errorf("parse %T: %w", r.Value, err)
	}
	return s, nil
}
