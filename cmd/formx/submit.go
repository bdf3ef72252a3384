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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"dirpx.dev/formx"
	"dirpx.dev/formx/form"
	"dirpx.dev/formx/gormstore"
)

// ErrRejected is returned when a submitted form did not process.
var ErrRejected = errors.New("formx: submission rejected")

func newSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Assign, validate and process one form",
		Long: `submit builds the given form class, assigns the parameters read from
--params and --set, and processes it inside one transaction. The
transaction is rolled back unless the whole form tree processed.`,
		Args: cobra.NoArgs,
		RunE: runSubmit,
	}
	cmd.Flags().String("form", "signup", "registered form class to submit")
	cmd.Flags().StringP("params", "p", "", "YAML file with the submitted parameters")
	cmd.Flags().StringToString("set", nil, "extra key=value parameters, applied after --params")
	cmd.Flags().String("dsn", "file::memory:", "SQLite data source name")
	return cmd
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("form")
	path, _ := cmd.Flags().GetString("params")
	sets, _ := cmd.Flags().GetStringToString("set")
	dsn, _ := cmd.Flags().GetString("dsn")
	log := formx.Logger().With("form", name)

	params, err := readParams(path, sets)
	if err != nil {
		return err
	}

	db, closeDB, err := openDB(dsn)
	if err != nil {
		return err
	}
	defer closeDB()

	var f *form.Form
	var buildErr error
	ok, err := gormstore.Transact(cmd.Context(), db, func(tx *gorm.DB) bool {
		f, buildErr = formx.New(name,
			form.WithParam(gormstore.ParamDB, tx),
			form.WithHooks(form.LogHooks(log.Info)),
		)
		if buildErr != nil {
			return false
		}
		return f.Submit(params)
	})
	if buildErr != nil {
		return buildErr
	}
	if err != nil {
		log.Error("transaction failed", "error", err)
		return fmt.Errorf("submit %s: %w", name, err)
	}

	out := cmd.OutOrStdout()
	if !ok {
		log.Info("rejected", "errors", f.Errors().Map())
		printErrors(out, name, f)
		return ErrRejected
	}
	log.Info("processed", "id", f.ID())
	_, _ = fmt.Fprintf(out, "processed %s id=%v\n", name, f.ID())
	return printCounts(out, db)
}

// readParams loads the YAML mapping at path, when given, and overlays
// sets on top of it.
func readParams(path string, sets map[string]string) (map[string]any, error) {
	params := map[string]any{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading params: %w", err)
		}
		if err := yaml.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("parsing params %s: %w", path, err)
		}
		if params == nil {
			params = map[string]any{}
		}
	}
	for k, v := range sets {
		params[k] = v
	}
	return params, nil
}

func openDB(dsn string) (*gorm.DB, func(), error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	// One connection keeps an in-memory database alive for the whole run.
	sqlDB.SetMaxOpenConns(1)
	closeDB := func() { _ = sqlDB.Close() }
	if err := db.AutoMigrate(&Company{}, &Account{}); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrating: %w", err)
	}
	return db, closeDB, nil
}

func printErrors(w io.Writer, name string, f *form.Form) {
	_, _ = fmt.Fprintf(w, "rejected %s\n", name)
	errs := f.Errors()
	for _, attr := range errs.Attributes() {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", attr, strings.Join(errs.On(attr), ", "))
	}
}

func printCounts(w io.Writer, db *gorm.DB) error {
	counts := map[string]any{"accounts": &Account{}, "companies": &Company{}}
	for _, table := range []string{"accounts", "companies"} {
		var n int64
		if err := db.Model(counts[table]).Count(&n).Error; err != nil {
			return fmt.Errorf("counting %s: %w", table, err)
		}
		_, _ = fmt.Fprintf(w, "  %s=%d\n", table, n)
	}
	return nil
}
