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

package validate

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	"dirpx.dev/formx/apis"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Tag checks attr against a validator tag expression such as
// "omitempty,email" or "min=3,max=64". Each failing tag is attached as
// the reason, so "email" fails as (attr, "email").
func Tag(attr, tag string) apis.Rule {
	return apis.RuleFunc(func(inst apis.Instance) {
		v, err := inst.Get(attr)
		if err != nil {
			inst.Errors().Add(attr, apis.ReasonInvalid)
			return
		}
		err = engine().Var(v, tag)
		if err == nil {
			return
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				inst.Errors().Add(attr, fe.Tag())
			}
			return
		}
		inst.Errors().Add(attr, apis.ReasonInvalid)
	})
}
