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

package gormstore_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/config"
	"dirpx.dev/formx/form"
	"dirpx.dev/formx/gormstore"
	"dirpx.dev/formx/registry"
	"dirpx.dev/formx/validate"
)

type Member struct {
	ID     uint `gorm:"primaryKey"`
	Email  string
	TeamID uint
}

func (m *Member) Check() []apis.FieldError {
	if strings.HasSuffix(m.Email, "@banned.test") {
		return []apis.FieldError{{Field: "email", Reason: "banned"}}
	}
	return nil
}

type Team struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

func openDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(tb, err)
	sqlDB, err := db.DB()
	require.NoError(tb, err)
	// One connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(tb, db.AutoMigrate(&Member{}, &Team{}))
	return db
}

func count[T any](tb testing.TB, db *gorm.DB) int64 {
	tb.Helper()
	var n int64
	require.NoError(tb, db.Model(new(T)).Count(&n).Error)
	return n
}

func TestRecord_SaveFindIdentity(t *testing.T) {
	db := openDB(t)

	rec := gormstore.Wrap(db, &Member{Email: "a@b.com", TeamID: 1})
	require.Nil(t, rec.EntityID())
	require.False(t, rec.Persisted())

	require.True(t, rec.Save())
	require.NoError(t, rec.Err())
	require.Equal(t, uint(1), rec.EntityID())
	require.True(t, rec.Persisted())

	found, err := gormstore.Wrap[Member](db, nil).Find(1)
	require.NoError(t, err)
	v, err := found.(*gormstore.Record[Member]).Field("email")
	require.NoError(t, err)
	require.Equal(t, "a@b.com", v)

	_, err = gormstore.Wrap[Member](db, nil).Find(42)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	orphan := gormstore.Wrap[Member](nil, nil)
	require.False(t, orphan.Save())
	require.ErrorIs(t, orphan.Err(), gormstore.ErrNilDB)
}

func TestRecord_Matching(t *testing.T) {
	db := openDB(t)
	for _, m := range []Member{{Email: "a@b.com", TeamID: 1}, {Email: "a@b.com", TeamID: 2}, {Email: "c@b.com", TeamID: 1}} {
		require.NoError(t, db.Create(&m).Error)
	}
	rec := gormstore.Wrap[Member](db, nil)

	ids, err := rec.Matching(map[string]any{"email": "a@b.com"}, 2)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	ids, err = rec.Matching(map[string]any{"Email": "a@b.com", "team_id": uint(2)}, 2)
	require.NoError(t, err)
	require.Equal(t, []any{"2"}, ids)

	ids, err = rec.Matching(map[string]any{"email": "a@b.com"}, 1)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	_, err = rec.Matching(map[string]any{"nope": 1}, 2)
	require.ErrorIs(t, err, gormstore.ErrUnknownColumn)
}

func membership(db *gorm.DB) apis.Definition {
	team := gormstore.Slot[Team]("team", db)
	member := gormstore.Slot[Member]("member", db)
	member.Main = true
	return apis.Definition{
		Name: "membership",
		Attributes: []apis.AttributeDescriptor{
			{Name: "email", Kind: apis.Persistent, On: "member"},
			{Name: "teamID", Kind: apis.Persistent, On: "member", As: "team_id"},
			{Name: "teamName", Kind: apis.Persistent, On: "team", As: "name"},
		},
		Models: []apis.ModelSlotDescriptor{member, team},
		Rules: []apis.Rule{
			validate.Presence("email", "teamName"),
			validate.Uniqueness("email", validate.Scope("teamID")),
		},
	}
}

func schemaFor(t *testing.T, def apis.Definition) *apis.Schema {
	t.Helper()
	reg := registry.New(config.DefaultConfig())
	require.NoError(t, reg.Register(def))
	s, _ := reg.Lookup(def.Name)
	return s
}

func TestForm_UniquenessAgainstSQLite(t *testing.T) {
	db := openDB(t)
	s := schemaFor(t, membership(db))

	f, err := form.New(s)
	require.NoError(t, err)
	require.True(t, f.Submit(map[string]any{"email": "a@b.com", "teamID": 1, "teamName": "Red"}))
	require.Equal(t, uint(1), f.ID())

	dup, _ := form.New(s)
	require.False(t, dup.Submit(map[string]any{"email": "a@b.com", "teamID": "1", "teamName": "Blue"}))
	require.Equal(t, []string{apis.ReasonTaken}, dup.Errors().On("email"))

	other, _ := form.New(s)
	require.True(t, other.Submit(map[string]any{"email": "a@b.com", "teamID": 2, "teamName": "Green"}))

	// Editing the stored member does not conflict with itself.
	edit, err := form.New(s, form.WithID("member", f.ID()), form.WithID("team", uint(1)))
	require.NoError(t, err)
	require.True(t, edit.IsValid(), edit.Errors().String())

	banned, _ := form.New(s)
	require.False(t, banned.Submit(map[string]any{"email": "x@banned.test", "teamID": 3, "teamName": "Grey"}))
	require.Equal(t, []string{"banned"}, banned.Errors().On("email"))
}

func TestTransact_RollsBackFailedSubmit(t *testing.T) {
	db := openDB(t)
	s := schemaFor(t, membership(nil))
	ctx := context.Background()

	submit := func(params map[string]any) (bool, error) {
		return gormstore.Transact(ctx, db, func(tx *gorm.DB) bool {
			f, err := form.New(s, form.WithParam(gormstore.ParamDB, tx))
			require.NoError(t, err)
			return f.Submit(params)
		})
	}

	ok, err := submit(map[string]any{"email": "a@b.com", "teamID": 1, "teamName": "Red"})
	require.NoError(t, err)
	require.True(t, ok)

	// The team name is unique: the member save succeeds, the team save
	// fails and the whole submission is rolled back.
	ok, err = submit(map[string]any{"email": "b@b.com", "teamID": 1, "teamName": "Red"})
	require.NoError(t, err)
	require.False(t, ok)

	require.Equal(t, int64(1), count[Member](t, db))
	require.Equal(t, int64(1), count[Team](t, db))

	ok, err = gormstore.Transact(ctx, nil, func(*gorm.DB) bool { return true })
	require.ErrorIs(t, err, gormstore.ErrNilDB)
	require.False(t, ok)
}
