/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli holds the cobra commands of the pricerange tool.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"pricerange/internal/annotation"
	"pricerange/internal/bars"
	"pricerange/internal/chart"
	"pricerange/internal/config"
	applog "pricerange/internal/log"
	"pricerange/internal/render"
	"pricerange/internal/script"
	"pricerange/internal/style"
)

// state is shared by the subcommands of one root command.
type state struct {
	configPath string
	logLevel   string
	fontSpecs  []string

	cfg   config.AppConfig
	style style.Options
	fonts *render.GoProvider
	log   *slog.Logger
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:           "pricerange",
		Short:         "Interactive price/time range annotations on a bar chart",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", "", "config file (default: per-user config)")
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "debug|info|warn|error")
	root.PersistentFlags().StringArrayVar(&st.fontSpecs, "font", nil, "register a font as family=path.ttf (repeatable)")

	root.AddCommand(
		newVersionCmd(),
		newRenderCmd(st),
		newReplayCmd(st),
		newUICmd(st),
		newBarsCmd(st),
	)
	return root
}

func (st *state) setup(cmd *cobra.Command) error {
	var err error
	if st.configPath != "" {
		st.cfg, err = config.LoadFile(st.configPath)
	} else {
		st.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if st.logLevel != "" {
		st.cfg.Logging.Level = st.logLevel
	}
	applog.Init(applog.Options{
		Level:     st.cfg.Logging.Level,
		Format:    st.cfg.Logging.Format,
		AddSource: st.cfg.Logging.Source,
		File:      st.cfg.Logging.File,
		Output:    cmd.ErrOrStderr(),
	})
	st.log = applog.WithComponent("cli")

	st.style = style.Defaults()
	if f := st.cfg.Style.File; f != "" {
		if st.style, err = style.LoadFile(f); err != nil {
			return err
		}
	}

	lib := render.NewFontLibrary()
	for _, spec := range st.fontSpecs {
		family, path, ok := strings.Cut(spec, "=")
		if !ok || family == "" || path == "" {
			return fmt.Errorf("--font wants family=path, got %q", spec)
		}
		if err := lib.LoadTTF(family, path); err != nil {
			return err
		}
	}
	st.fonts = &render.GoProvider{Lib: lib}
	for _, key := range []string{"interaction.resize_mode", "data.bars_dsn", "data.symbol"} {
		if env, ok := config.EnvOverrideFor(key); ok {
			st.log.Debug("config overridden by environment", slog.String("key", key), slog.String("env", env))
		}
	}
	st.log.Debug("configured", slog.String("cmd", cmd.Name()), slog.String("mode", st.cfg.Interaction.ResizeMode))
	return nil
}

// interaction converts the interaction section to a coordinator config.
func (st *state) interaction() annotation.Config {
	cfg := annotation.DefaultConfig()
	if m, ok := annotation.ParseResizeMode(st.cfg.Interaction.ResizeMode); ok {
		cfg.Mode = m
	}
	if r := st.cfg.Interaction.CornerRadius; r > 0 {
		cfg.Radii.Corner = r
	}
	if e := st.cfg.Interaction.EdgeHalfWidth; e > 0 {
		cfg.Radii.Edge = e
	}
	return cfg
}

// loadBars resolves a scenario's bar source. A named symbol must come from
// the bar store; otherwise stored bars for the configured symbol are used
// when a store is configured and has them, and synthetic bars otherwise.
func (st *state) loadBars(ctx context.Context, src script.BarSource) ([]chart.Bar, error) {
	dsn := st.cfg.Data.BarsDSN
	if src.Symbol != "" {
		if dsn == "" {
			return nil, fmt.Errorf("bars.symbol %q needs data.bars_dsn", src.Symbol)
		}
		return st.loadStored(ctx, dsn, src.Symbol, src.Limit)
	}
	if dsn != "" && src.Count == 0 {
		out, err := st.loadStored(ctx, dsn, st.cfg.Data.Symbol, src.Limit)
		if err != nil {
			return nil, err
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return src.Synthetic(), nil
}

func (st *state) loadStored(ctx context.Context, dsn, symbol string, limit int) ([]chart.Bar, error) {
	store, err := bars.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	out, err := store.Load(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	st.log.Info("bars loaded", slog.String("symbol", symbol), slog.Int("count", len(out)))
	return out, nil
}

// scenario parses path and builds its chart.
func (st *state) scenario(ctx context.Context, path string) (script.Scenario, *chart.Viewport, *annotation.Manager, error) {
	sc, err := script.ParseFile(path)
	if err != nil {
		return sc, nil, nil, err
	}
	bs, err := st.loadBars(ctx, sc.Bars)
	if err != nil {
		return sc, nil, nil, err
	}
	if sc.Width == 0 && sc.Height == 0 {
		sc.Width, sc.Height = st.cfg.Export.Width, st.cfg.Export.Height
	}
	vp, m, err := sc.Build(bs, st.interaction(), st.style)
	return sc, vp, m, err
}
