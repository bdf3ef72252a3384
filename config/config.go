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
	"dirpx.dev/formx/apis"
)

const (
	// DefaultMainPolicy represents the default for MainPolicy.
	// Only explicitly flagged slots become main models.
	DefaultMainPolicy = apis.MainExplicit
	// DefaultProcessCollections represents the default for ProcessCollections.
	// Collection entries are validated with their parent but not processed.
	DefaultProcessCollections = false
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultLogMode represents the default for LogMode.
	DefaultLogMode = "nop"
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxUnwrap is valid.
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		MainPolicy:         DefaultMainPolicy,
		ProcessCollections: DefaultProcessCollections,
		MaxUnwrap:          DefaultMaxUnwrap,
		LogMode:            DefaultLogMode,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithMainPolicy sets the MainPolicy option.
func WithMainPolicy(p apis.MainPolicy) Option {
	return func(c *apis.Config) {
		c.MainPolicy = p
	}
}

// WithProcessCollections sets the ProcessCollections option.
func WithProcessCollections(enabled bool) Option {
	return func(c *apis.Config) {
		c.ProcessCollections = enabled
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A non-positive value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithLogMode sets the LogMode option.
func WithLogMode(mode string) Option {
	return func(c *apis.Config) {
		c.LogMode = mode
	}
}
