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

	"pricerange/internal/annotation"
	"pricerange/internal/script"
	"pricerange/internal/ui"
)

func newUICmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "ui [SCENARIO]",
		Short: "open the desktop chart (build with -tags fyne)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := ui.RunOptions{
				Title:  "pricerange",
				Width:  st.cfg.Export.Width,
				Height: st.cfg.Export.Height,
				Config: st.interaction(),
				Style:  st.style,
			}
			var src script.BarSource
			if len(args) == 1 {
				sc, err := script.ParseFile(args[0])
				if err != nil {
					return err
				}
				src = sc.Bars
				if sc.Name != "" {
					opts.Title = sc.Name
				}
				if sc.Width > 0 && sc.Height > 0 {
					opts.Width, opts.Height = sc.Width, sc.Height
				}
				if sc.Mode != "" {
					mode, ok := annotation.ParseResizeMode(sc.Mode)
					if !ok {
						return fmt.Errorf("unknown resize mode %q", sc.Mode)
					}
					opts.Config.Mode = mode
				}
				if opts.Style, opts.Ranges, err = sc.Annotations(st.style); err != nil {
					return err
				}
			}
			bs, err := st.loadBars(cmd.Context(), src)
			if err != nil {
				return err
			}
			opts.Bars = bs
			return ui.Run(opts)
		},
	}
}
