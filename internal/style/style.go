/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package style holds the visual options of a range annotation. Options are
// plain values; partial overrides arrive as a Patch (decoded from YAML or
// JSON) and are validated against an embedded JSON schema before merging.
package style

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"pricerange/internal/chart"
	"pricerange/internal/vector"
)

//go:embed schema.json
var schemaJSON []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid style options")

// Options are the per-annotation visual settings. Colours use CSS notation.
type Options struct {
	FillColor           string  `yaml:"fillColor" json:"fillColor"`
	HoverFillColor      string  `yaml:"hoverFillColor" json:"hoverFillColor"`
	SelectedFillColor   string  `yaml:"selectedFillColor" json:"selectedFillColor"`
	DragHandleColor     string  `yaml:"dragHandleColor" json:"dragHandleColor"`
	BorderColor         string  `yaml:"borderColor" json:"borderColor"`
	BorderWidth         float64 `yaml:"borderWidth" json:"borderWidth"`
	HoverBorderWidth    float64 `yaml:"hoverBorderWidth" json:"hoverBorderWidth"`
	SelectedBorderWidth float64 `yaml:"selectedBorderWidth" json:"selectedBorderWidth"`

	ShowInfoLabel        bool    `yaml:"showInfoLabel" json:"showInfoLabel"`
	ShowHandles          bool    `yaml:"showHandles" json:"showHandles"`
	ArrowColor           string  `yaml:"arrowColor" json:"arrowColor"`
	ArrowWidth           float64 `yaml:"arrowWidth" json:"arrowWidth"`
	LabelBackgroundColor string  `yaml:"labelBackgroundColor" json:"labelBackgroundColor"`
	LabelTextColor       string  `yaml:"labelTextColor" json:"labelTextColor"`
	LabelBorderColor     string  `yaml:"labelBorderColor" json:"labelBorderColor"`
	LabelBorderWidth     float64 `yaml:"labelBorderWidth" json:"labelBorderWidth"`
	LabelFont            string  `yaml:"labelFont" json:"labelFont"`

	PriceDecimals int    `yaml:"priceDecimals" json:"priceDecimals"`
	TimeFormat    string `yaml:"timeFormat" json:"timeFormat"` // Go layout
}

// Defaults returns the stock look: translucent blue body, white-on-grey label.
func Defaults() Options {
	return Options{
		FillColor:           "rgba(0, 122, 255, 0.25)",
		HoverFillColor:      "rgba(0, 122, 255, 0.4)",
		SelectedFillColor:   "rgba(0, 122, 255, 0.55)",
		DragHandleColor:     "rgba(0, 122, 255, 1)",
		BorderColor:         "rgba(0, 122, 255, 1)",
		BorderWidth:         1,
		HoverBorderWidth:    2,
		SelectedBorderWidth: 3,

		ShowInfoLabel:        true,
		ShowHandles:          true,
		ArrowColor:           "rgba(0, 122, 255, 1)",
		ArrowWidth:           1,
		LabelBackgroundColor: "rgba(40, 40, 40, 1)",
		LabelTextColor:       "white",
		LabelBorderColor:     "rgba(150, 150, 150, 1)",
		LabelBorderWidth:     1,
		LabelFont:            "12px sans-serif",

		PriceDecimals: 2,
		TimeFormat:    "2006-01-02",
	}
}

// Palette is Options with every colour parsed.
type Palette struct {
	Fill, HoverFill, SelectedFill vector.Color
	Handle, Border, Arrow         vector.Color
	LabelBackground, LabelText    vector.Color
	LabelBorder                   vector.Color
}

// Palette parses all colours.
func (o Options) Palette() (Palette, error) {
	var p Palette
	fields := []struct {
		name string
		src  string
		dst  *vector.Color
	}{
		{"fillColor", o.FillColor, &p.Fill},
		{"hoverFillColor", o.HoverFillColor, &p.HoverFill},
		{"selectedFillColor", o.SelectedFillColor, &p.SelectedFill},
		{"dragHandleColor", o.DragHandleColor, &p.Handle},
		{"borderColor", o.BorderColor, &p.Border},
		{"arrowColor", o.ArrowColor, &p.Arrow},
		{"labelBackgroundColor", o.LabelBackgroundColor, &p.LabelBackground},
		{"labelTextColor", o.LabelTextColor, &p.LabelText},
		{"labelBorderColor", o.LabelBorderColor, &p.LabelBorder},
	}
	for _, f := range fields {
		c, err := vector.ParseColor(f.src)
		if err != nil {
			return Palette{}, fmt.Errorf("%w: %s: %w", ErrInvalid, f.name, err)
		}
		*f.dst = c
	}
	return p, nil
}

// Validate checks colours and numeric ranges.
func (o Options) Validate() error {
	if _, err := o.Palette(); err != nil {
		return err
	}
	for name, w := range map[string]float64{
		"borderWidth":         o.BorderWidth,
		"hoverBorderWidth":    o.HoverBorderWidth,
		"selectedBorderWidth": o.SelectedBorderWidth,
		"arrowWidth":          o.ArrowWidth,
		"labelBorderWidth":    o.LabelBorderWidth,
	} {
		if w < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalid, name)
		}
	}
	if o.PriceDecimals < 0 || o.PriceDecimals > 10 {
		return fmt.Errorf("%w: priceDecimals %d out of range", ErrInvalid, o.PriceDecimals)
	}
	if strings.TrimSpace(o.LabelFont) == "" || strings.TrimSpace(o.TimeFormat) == "" {
		return fmt.Errorf("%w: labelFont and timeFormat are required", ErrInvalid)
	}
	return nil
}

// FillFor picks the body colour for a visual state; selection beats hover.
func (o Options) FillFor(selected, hovered bool) string {
	switch {
	case selected:
		return o.SelectedFillColor
	case hovered:
		return o.HoverFillColor
	}
	return o.FillColor
}

// BorderWidthFor picks the border width for a visual state.
func (o Options) BorderWidthFor(selected, hovered bool) float64 {
	switch {
	case selected:
		return o.SelectedBorderWidth
	case hovered:
		return o.HoverBorderWidth
	}
	return o.BorderWidth
}

// FormatPrice renders a price with PriceDecimals digits.
func (o Options) FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', o.PriceDecimals, 64)
}

// FormatTime renders a chart time in UTC with TimeFormat.
func (o Options) FormatTime(t chart.Time) string { return t.UTC().Format(o.TimeFormat) }

// Patch is a partial set of options keyed by their YAML/JSON names.
type Patch map[string]any

// Keys returns the patch keys in sorted order.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CheckSchema validates p against the embedded schema.
func (p Patch) CheckSchema() error {
	doc := map[string]any(p)
	if doc == nil {
		doc = map[string]any{}
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	return nil
}

// Apply returns o with p merged on top. Keys absent from p keep their value.
// o is returned unchanged alongside any error.
func (o Options) Apply(p Patch) (Options, error) {
	if len(p) == 0 {
		return o, nil
	}
	if err := p.CheckSchema(); err != nil {
		return o, err
	}
	base, err := yaml.Marshal(o)
	if err != nil {
		return o, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(base, &m); err != nil {
		return o, err
	}
	for k, v := range p {
		m[k] = v
	}
	merged, err := yaml.Marshal(m)
	if err != nil {
		return o, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(merged))
	dec.KnownFields(true)
	var out Options
	if err := dec.Decode(&out); err != nil {
		return o, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := out.Validate(); err != nil {
		return o, err
	}
	return out, nil
}

// ParsePatch decodes a YAML or JSON document into a patch.
func ParsePatch(data []byte) (Patch, error) {
	var p Patch
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if p == nil {
		p = Patch{}
	}
	return p, p.CheckSchema()
}

// LoadFile reads a style override file and applies it to Defaults().
func LoadFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), fmt.Errorf("read style %s: %w", path, err)
	}
	p, err := ParsePatch(data)
	if err != nil {
		return Defaults(), fmt.Errorf("style %s: %w", path, err)
	}
	return Defaults().Apply(p)
}
