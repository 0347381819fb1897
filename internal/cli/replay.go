/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pricerange/internal/script"
)

func newReplayCmd(st *state) *cobra.Command {
	var (
		out   string
		quiet bool
	)
	cmd := &cobra.Command{
		Use:   "replay SCENARIO",
		Short: "replay a scenario's pointer events and print the resulting ranges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, vp, m, err := st.scenario(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			steps, rerr := script.Replay(m, sc.Events)
			if !quiet {
				for _, s := range steps {
					fmt.Fprintln(w, s)
				}
			}
			fmt.Fprint(w, m.Describe())
			if rerr != nil {
				return rerr
			}
			if out != "" {
				if err := st.export(out, sc, vp, m, 1); err != nil {
					return err
				}
				fmt.Fprintln(w, "wrote", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "also render the final state to this file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the final ranges")
	return cmd
}
