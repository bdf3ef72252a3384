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

package gormstore

import (
	"context"
	"errors"
	"reflect"

	"gorm.io/gorm"

	"dirpx.dev/formx/apis"
)

// ParamDB is the form param that overrides the database of every
// gormstore slot, typically with a transaction handle.
const ParamDB = "gormstore.db"

// errRollback aborts a transaction whose body reported failure.
var errRollback = errors.New("formx(gormstore): rollback")

// DB returns the *gorm.DB a slot of inst should use: the ParamDB param
// when set, otherwise fallback.
func DB(inst apis.Instance, fallback *gorm.DB) *gorm.DB {
	if inst != nil {
		if v, ok := inst.Param(ParamDB); ok {
			if db, ok := v.(*gorm.DB); ok && db != nil {
				return db
			}
		}
	}
	return fallback
}

// Slot declares a model slot backed by GORM model T. The record is
// loaded by primary key when an identifier is supplied and is a new
// zero T otherwise.
func Slot[T any](name string, db *gorm.DB) apis.ModelSlotDescriptor {
	return apis.ModelSlotDescriptor{
		Name: name,
		Type: reflect.TypeOf((*T)(nil)).Elem(),
		Factory: func(inst apis.Instance, id any) (apis.Record, error) {
			rec := Wrap[T](DB(inst, db), nil)
			if id == nil {
				return rec, nil
			}
			return rec.Find(id)
		},
	}
}

// Transact runs fn inside one GORM transaction and commits only when fn
// reports success. Forms built inside fn join the transaction by
// passing tx as the ParamDB param.
func Transact(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) bool) (bool, error) {
	if fn == nil {
		return false, nil
	}
	if db == nil {
		return false, ErrNilDB
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !fn(tx) {
			return errRollback
		}
		return nil
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errRollback):
		return false, nil
	default:
		return false, err
	}
}
