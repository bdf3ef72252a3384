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
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dirpx.dev/formx"
)

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List registered form classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "CLASS\tPARENT\tMAIN\tATTRIBUTES\tMODELS\tCHILDREN")
			for _, e := range formx.Registry().Entries() {
				s := e.Schema
				parent, main := "-", s.Main
				if s.Parent != nil {
					parent = s.Parent.Name
				}
				if main == "" {
					main = "-"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
					s.Name, parent, main,
					len(s.Attributes), len(s.Models), len(s.Forms)+len(s.Collections))
			}
			return tw.Flush()
		},
	}
}
