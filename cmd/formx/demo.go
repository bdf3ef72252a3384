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
	"dirpx.dev/formx"
	"dirpx.dev/formx/apis"
	"dirpx.dev/formx/gormstore"
	"dirpx.dev/formx/validate"
)

// Company is the organisation created by a signup.
type Company struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

// Account is a user login, either the signing-up owner or an invitee.
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex"`
	CompanyID uint
}

// ReasonNotAccepted is attached to a checkbox that must be ticked.
const ReasonNotAccepted = "not_accepted"

func init() {
	formx.MustDefine(inviteClass())
	formx.MustDefine(signupClass())
}

// inviteClass is one invited account.
func inviteClass() apis.Definition {
	account := gormstore.Slot[Account]("account", nil)
	account.Main = true
	return apis.Definition{
		Name: "invite",
		Attributes: []apis.AttributeDescriptor{
			{Name: "email", Kind: apis.Persistent, On: "account"},
		},
		Models: []apis.ModelSlotDescriptor{account},
		Rules: []apis.Rule{
			validate.Presence("email"),
			validate.Tag("email", "email"),
			validate.Uniqueness("email"),
		},
	}
}

// signupClass creates a company and its owner account, plus any number
// of invites.
func signupClass() apis.Definition {
	user := gormstore.Slot[Account]("user", nil)
	user.Main = true
	return apis.Definition{
		Name: "signup",
		Attributes: []apis.AttributeDescriptor{
			{Name: "email", Kind: apis.Persistent, On: "user"},
			{Name: "companyID", Kind: apis.Persistent, On: "user", As: "company_id"},
			{Name: "companyName", Kind: apis.Persistent, On: "company", As: "name"},
			{Name: "terms", Type: apis.TypeBool, Default: false},
		},
		Models: []apis.ModelSlotDescriptor{
			user,
			gormstore.Slot[Company]("company", nil),
		},
		Collections: []apis.ChildCollectionSlot{
			{Name: "invites", Class: "invite"},
		},
		Rules: []apis.Rule{
			validate.Presence("email", "companyName"),
			validate.Tag("email", "email"),
			validate.Uniqueness("email"),
			validate.Uniqueness("companyName"),
			accepted("terms"),
		},
		Process: linkCompany,
	}
}

// linkCompany stores the company first so the owner can reference it.
func linkCompany(inst apis.Instance, next func() bool) bool {
	company, err := inst.Model("company")
	if err != nil || !company.Save() {
		return false
	}
	id, ok := company.(apis.Identifier)
	if !ok {
		return false
	}
	if err := inst.Set("companyID", id.EntityID()); err != nil {
		return false
	}
	return next()
}

func accepted(attr string) apis.Rule {
	return apis.RuleFunc(func(inst apis.Instance) {
		if v, _ := inst.Get(attr); v != true {
			inst.Errors().Add(attr, ReasonNotAccepted)
		}
	})
}
