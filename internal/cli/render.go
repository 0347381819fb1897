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
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pricerange/internal/annotation"
	"pricerange/internal/chart"
	"pricerange/internal/export"
	"pricerange/internal/render"
	"pricerange/internal/script"
)

func newRenderCmd(st *state) *cobra.Command {
	var (
		out    string
		ratio  float64
		replay bool
	)
	cmd := &cobra.Command{
		Use:   "render SCENARIO",
		Short: "render a scenario's chart and ranges to png, svg or pdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, vp, m, err := st.scenario(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if replay {
				if _, err := script.Replay(m, sc.Events); err != nil {
					return err
				}
			}
			path := out
			if path == "" {
				base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				path = base + "." + st.cfg.Export.Format
			}
			if err := st.export(path, sc, vp, m, ratio); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; the extension picks the format")
	cmd.Flags().Float64Var(&ratio, "ratio", 1, "device pixel ratio for png output")
	cmd.Flags().BoolVar(&replay, "replay", false, "replay the scenario events before rendering")
	return cmd
}

func (st *state) export(path string, sc script.Scenario, vp *chart.Viewport, m *annotation.Manager, ratio float64) error {
	w, h := sc.Size()
	root := render.Frame(vp, m.Views(), st.fonts)
	title := sc.Name
	if title == "" {
		title = "pricerange"
	}
	if err := export.ToFile(path, root, export.Options{Width: w, Height: h, Ratio: ratio, Fonts: st.fonts, Title: title}); err != nil {
		return err
	}
	st.log.Info("exported", slog.String("path", path), slog.Int("ranges", len(m.Annotations())))
	return nil
}
