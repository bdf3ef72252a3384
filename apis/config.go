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

package apis

// MainPolicy decides which model slot identity delegation consults when
// no slot carries an explicit main flag.
type MainPolicy int

const (
	// MainExplicit only honours slots declared with Main set.
	// A class without such a slot has no main model.
	MainExplicit MainPolicy = iota
	// MainImplicitSingle additionally treats the only slot of a class
	// with exactly one slot as its main model.
	MainImplicitSingle
)

// String returns the policy name as accepted by config.ParseMainPolicy.
func (p MainPolicy) String() string {
	switch p {
	case MainExplicit:
		return "explicit"
	case MainImplicitSingle:
		return "implicit-single"
	default:
		return "unknown"
	}
}

// Config carries read-only knobs that influence registration, slot
// building and the persistence cascade.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// MainPolicy controls main model resolution at registration time.
	MainPolicy MainPolicy

	// ProcessCollections makes the default Process cascade include
	// collection entries. When false, entries are validated but never
	// processed by their parent.
	ProcessCollections bool

	// MaxUnwrap limits pointer/container unwrapping when a slot's record
	// type is normalized for reflective construction.
	MaxUnwrap int

	// LogMode selects the logger flavour ("dev", "prod" or "nop").
	LogMode string
}
