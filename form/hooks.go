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
	"strings"
	"time"
)

// Hooks captures form-level observability events.
type Hooks interface {
	// ObserveSubmit is called once per Submit.
	ObserveSubmit(form string, valid, processed bool, dur time.Duration)
	// IncSaveFailure is called for each slot Persist could not save.
	IncSaveFailure(form, slot string)
}

type noopHooks struct{}

func (noopHooks) ObserveSubmit(string, bool, bool, time.Duration) {}
func (noopHooks) IncSaveFailure(string, string)                   {}

// NopHooks returns hooks that ignore every event.
func NopHooks() Hooks { return noopHooks{} }

// LogHooks reports events through a key/value logging function, such as
// (*logger.Logger).Info.
func LogHooks(logf func(msg string, keysAndValues ...any)) Hooks {
	if logf == nil {
		return noopHooks{}
	}
	return logHooks{logf: logf}
}

type logHooks struct {
	logf func(msg string, keysAndValues ...any)
}

func (h logHooks) ObserveSubmit(form string, valid, processed bool, dur time.Duration) {
	h.logf("form submitted", "form", strings.TrimSpace(form), "valid", valid, "processed", processed, "duration", dur)
}

func (h logHooks) IncSaveFailure(form, slot string) {
	h.logf("save failed", "form", strings.TrimSpace(form), "slot", strings.TrimSpace(slot))
}
