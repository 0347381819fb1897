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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"pricerange/internal/bars"
	"pricerange/internal/chart"
)

func newBarsCmd(st *state) *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "bars",
		Short: "manage the bar store",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "bar store (default: data.bars_dsn)")

	open := func(cmd *cobra.Command) (*bars.Store, error) {
		d := dsn
		if d == "" {
			d = st.cfg.Data.BarsDSN
		}
		if d == "" {
			return nil, fmt.Errorf("no bar store: set --dsn or data.bars_dsn")
		}
		return bars.Open(cmd.Context(), d)
	}
	symbolArg := func(args []string) string {
		if len(args) > 0 {
			return args[0]
		}
		return st.cfg.Data.Symbol
	}

	var (
		count int
		step  int64
		seed  uint64
		start string
	)
	seedCmd := &cobra.Command{
		Use:   "seed [SYMBOL]",
		Short: "store synthetic bars",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
			if start != "" {
				t, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				t0 = t
			}
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			sym := symbolArg(args)
			if err := s.Insert(cmd.Context(), sym, bars.Synthetic(count, chart.FromTime(t0), step, seed)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d bars for %s\n", count, sym)
			return nil
		},
	}
	seedCmd.Flags().IntVar(&count, "count", 120, "number of bars")
	seedCmd.Flags().Int64Var(&step, "step", 60, "seconds between bars")
	seedCmd.Flags().Uint64Var(&seed, "seed", 1, "random walk seed")
	seedCmd.Flags().StringVar(&start, "start", "", "first bar time, RFC 3339")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored symbols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			syms, err := s.Symbols(cmd.Context())
			if err != nil {
				return err
			}
			for _, sym := range syms {
				fmt.Fprintln(cmd.OutOrStdout(), sym)
			}
			return nil
		},
	}

	var limit int
	showCmd := &cobra.Command{
		Use:   "show [SYMBOL]",
		Short: "print the latest bars of a symbol",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			bs, err := s.Load(cmd.Context(), symbolArg(args), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tOPEN\tHIGH\tLOW\tCLOSE\tVOLUME")
			for _, b := range bs {
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.0f\n", b.Time.UTC().Format(time.RFC3339), b.Open, b.High, b.Low, b.Close, b.Volume)
			}
			return tw.Flush()
		},
	}
	showCmd.Flags().IntVar(&limit, "limit", 20, "number of bars, 0 for all")

	cmd.AddCommand(seedCmd, listCmd, showCmd)
	return cmd
}
