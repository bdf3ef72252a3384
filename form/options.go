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
	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/logger"
)

// Option configures a Form at construction.
type Option func(*Form)

type seededEntry struct {
	coll  string
	key   string
	child apis.Composite
}

// WithModel supplies the record of slot. A supplied record is never
// rebuilt.
func WithModel(slot string, rec apis.Record) Option {
	return func(f *Form) {
		if rec != nil {
			f.records[slot] = rec
		}
	}
}

// WithMain supplies the record of the class's main slot.
func WithMain(rec apis.Record) Option {
	return func(f *Form) { f.seedMain = rec }
}

// WithID supplies the identifier slot is found by when first built.
func WithID(slot string, id any) Option {
	return func(f *Form) { f.ids[slot] = id }
}

// WithParam sets a construction-time value.
func WithParam(name string, v any) Option {
	return func(f *Form) { f.params[name] = v }
}

// WithParams sets several construction-time values.
func WithParams(params map[string]any) Option {
	return func(f *Form) {
		for k, v := range params {
			f.params[k] = v
		}
	}
}

// WithChild supplies a nested form for a child form slot.
func WithChild(name string, c apis.Composite) Option {
	return func(f *Form) {
		if c != nil {
			f.children[name] = c
		}
	}
}

// WithCollectionEntry supplies a nested form under key in collection coll.
func WithCollectionEntry(coll, key string, c apis.Composite) Option {
	return func(f *Form) {
		f.pendingCol = append(f.pendingCol, seededEntry{coll: coll, key: key, child: c})
	}
}

// WithConfig sets the configuration. The default resolver is built from it.
func WithConfig(cfg apis.Config) Option {
	return func(f *Form) { f.cfg = cfg }
}

// WithResolver replaces the slot build chain.
func WithResolver(res apis.Resolver) Option {
	return func(f *Form) { f.res = res }
}

// WithRegistry sets the registry child classes are looked up in.
func WithRegistry(reg apis.Registry) Option {
	return func(f *Form) { f.reg = reg }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.root = l
		}
	}
}

// WithHooks sets the observation hooks.
func WithHooks(h Hooks) Option {
	return func(f *Form) { f.hooks = h }
}
