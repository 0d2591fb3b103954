// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thediveo/storefront/fetch"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that the content server answers at its origin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := fetch.NewStandard(
				fetch.WithTimeout(a.cfg.Fetch.Timeout),
				fetch.WithLogger(a.log))
			if err := client.Probe(cmd.Context(), a.cfg.Origin); err != nil {
				return fmt.Errorf("content server not reachable at %s: %w", a.cfg.Origin, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "content server reachable at %s\n", a.cfg.Origin)
			return nil
		},
	}
}
