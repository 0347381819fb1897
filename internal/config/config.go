/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration for the pricerange tools.
// The YAML file lives in the per-user config directory; environment
// variables act as read-only overrides at runtime.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoConfigDir is returned when no per-user config directory can be resolved.
var ErrNoConfigDir = errors.New("cannot resolve config directory")

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// InteractionConfig tunes pointer handling.
// ResizeMode is "sticky" (click a handle, move, click again) or "press-hold".
type InteractionConfig struct {
	ResizeMode    string  `yaml:"resize_mode"`
	CornerRadius  float64 `yaml:"corner_radius"`
	EdgeHalfWidth float64 `yaml:"edge_half_width"`
}

type StyleConfig struct {
	File string `yaml:"file"` // optional YAML/JSON style override
}

type DataConfig struct {
	BarsDSN string `yaml:"bars_dsn"` // sqlite path or postgres:// URL
	Symbol  string `yaml:"symbol"`
}

type ExportConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Format string `yaml:"format"` // png | svg | pdf
}

type AppConfig struct {
	ConfigVersion int               `yaml:"config_version"`
	Logging       LoggingConfig     `yaml:"logging"`
	Interaction   InteractionConfig `yaml:"interaction"`
	Style         StyleConfig       `yaml:"style"`
	Data          DataConfig        `yaml:"data"`
	Export        ExportConfig      `yaml:"export"`
}

// Resize modes accepted in interaction.resize_mode.
const (
	ResizeSticky    = "sticky"
	ResizePressHold = "press-hold"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Interaction:   InteractionConfig{ResizeMode: ResizeSticky, CornerRadius: 10, EdgeHalfWidth: 5},
		Data:          DataConfig{Symbol: "DEMO"},
		Export:        ExportConfig{Width: 1200, Height: 700, Format: "png"},
	}
}

// Env var names used as overrides.
const (
	EnvLogLevel      = "PR_LOG_LEVEL"
	EnvLogFormat     = "PR_LOG_FORMAT"
	EnvLogSource     = "PR_LOG_SOURCE"
	EnvLogFile       = "PR_LOG_FILE"
	EnvResizeMode    = "PR_RESIZE_MODE"
	EnvCornerRadius  = "PR_CORNER_RADIUS"
	EnvEdgeHalfWidth = "PR_EDGE_HALF_WIDTH"
	EnvStyleFile     = "PR_STYLE_FILE"
	EnvBarsDSN       = "PR_BARS_DSN"
	EnvSymbol        = "PR_SYMBOL"
	EnvConfigFile    = "PR_CONFIG"
)

// envKeys maps dotted config keys to their override variable.
var envKeys = map[string]string{
	"logging.level":               EnvLogLevel,
	"logging.format":              EnvLogFormat,
	"logging.source":              EnvLogSource,
	"logging.file":                EnvLogFile,
	"interaction.resize_mode":     EnvResizeMode,
	"interaction.corner_radius":   EnvCornerRadius,
	"interaction.edge_half_width": EnvEdgeHalfWidth,
	"style.file":                  EnvStyleFile,
	"data.bars_dsn":               EnvBarsDSN,
	"data.symbol":                 EnvSymbol,
}

// ConfigPath returns the per-user config file path. PR_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PriceRange")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PriceRange")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "pricerange")
		} else if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config", "pricerange")
		}
	}
	if base == "" {
		return "", ErrNoConfigDir
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges
// environment overrides. A missing file is not an error.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// Save writes the config YAML to path, creating parent directories.
func Save(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate reports values the engine cannot use.
func (c AppConfig) Validate() error {
	switch c.Interaction.ResizeMode {
	case ResizeSticky, ResizePressHold:
	default:
		return fmt.Errorf("interaction.resize_mode: unknown mode %q", c.Interaction.ResizeMode)
	}
	if c.Interaction.CornerRadius <= 0 || c.Interaction.EdgeHalfWidth <= 0 {
		return fmt.Errorf("interaction: hit radii must be positive (corner=%v edge=%v)",
			c.Interaction.CornerRadius, c.Interaction.EdgeHalfWidth)
	}
	switch c.Export.Format {
	case "png", "svg", "pdf":
	default:
		return fmt.Errorf("export.format: unsupported %q", c.Export.Format)
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		return fmt.Errorf("export: size must be positive (%dx%d)", c.Export.Width, c.Export.Height)
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	// booleans are copied so the file can switch them off again
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
	if v := strings.TrimSpace(src.Interaction.ResizeMode); v != "" {
		dst.Interaction.ResizeMode = strings.ToLower(v)
	}
	if src.Interaction.CornerRadius != 0 {
		dst.Interaction.CornerRadius = src.Interaction.CornerRadius
	}
	if src.Interaction.EdgeHalfWidth != 0 {
		dst.Interaction.EdgeHalfWidth = src.Interaction.EdgeHalfWidth
	}
	if v := strings.TrimSpace(src.Style.File); v != "" {
		dst.Style.File = v
	}
	if v := strings.TrimSpace(src.Data.BarsDSN); v != "" {
		dst.Data.BarsDSN = v
	}
	if v := strings.TrimSpace(src.Data.Symbol); v != "" {
		dst.Data.Symbol = v
	}
	if src.Export.Width != 0 {
		dst.Export.Width = src.Export.Width
	}
	if src.Export.Height != 0 {
		dst.Export.Height = src.Export.Height
	}
	if v := strings.TrimSpace(src.Export.Format); v != "" {
		dst.Export.Format = strings.ToLower(v)
	}
}

func envBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvResizeMode)); v != "" {
		cfg.Interaction.ResizeMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvCornerRadius)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Interaction.CornerRadius = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvEdgeHalfWidth)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Interaction.EdgeHalfWidth = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvStyleFile)); v != "" {
		cfg.Style.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBarsDSN)); v != "" {
		cfg.Data.BarsDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSymbol)); v != "" {
		cfg.Data.Symbol = v
	}
}

// EnvOverrideFor returns the env var name if the dotted key is currently
// overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
