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

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"dirpx.dev/formx/apis"
)

// ErrUnknownMainPolicy is returned for an unrecognised policy name.
var ErrUnknownMainPolicy = errors.New("formx(config): unknown main policy")

// envConfig mirrors apis.Config with environment bindings.
type envConfig struct {
	MainPolicy         string `env:"FORMX_MAIN_POLICY" envDefault:"explicit"`
	ProcessCollections bool   `env:"FORMX_PROCESS_COLLECTIONS" envDefault:"false"`
	MaxUnwrap          int    `env:"FORMX_MAX_UNWRAP" envDefault:"8"`
	LogMode            string `env:"FORMX_LOG_MODE" envDefault:"nop"`
}

// FromEnv loads a configuration from FORMX_* environment variables,
// applying opts on top.
func FromEnv(opts ...Option) (apis.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return apis.Config{}, fmt.Errorf("parse env: %w", err)
	}
	policy, err := ParseMainPolicy(raw.MainPolicy)
	if err != nil {
		return apis.Config{}, err
	}
	base := []Option{
		WithMainPolicy(policy),
		WithProcessCollections(raw.ProcessCollections),
		WithMaxUnwrap(raw.MaxUnwrap),
		WithLogMode(raw.LogMode),
	}
	return NewConfig(append(base, opts...)...), nil
}

// ParseMainPolicy maps "explicit" and "implicit-single" to their policy.
func ParseMainPolicy(s string) (apis.MainPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "explicit":
		return apis.MainExplicit, nil
	case "implicit-single", "implicit":
		return apis.MainImplicitSingle, nil
	default:
		return DefaultMainPolicy, fmt.Errorf("%w: %q", ErrUnknownMainPolicy, s)
	}
}
