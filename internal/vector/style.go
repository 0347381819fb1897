/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color is a non-premultiplied 8-bit RGBA colour. It satisfies color.Color.
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// ErrBadColor is wrapped by ParseColor failures.
var ErrBadColor = errors.New("invalid colour")

func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Alpha returns the alpha channel in [0,1].
func (c Color) Alpha() float64 { return float64(c.A) / 255 }

// Hex is #rrggbb without alpha.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// CSS renders the colour as rgba(r, g, b, a).
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(FloatRound(c.Alpha(), 3), 'f', -1, 64))
}

var named = map[string]Color{
	"black":       Black,
	"white":       White,
	"transparent": Transparent,
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
}

// ParseColor accepts the CSS forms used by chart style options:
// #rgb, #rrggbb, #rrggbbaa, rgb(r,g,b), rgba(r,g,b,a) and a few names.
func ParseColor(s string) (Color, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[in]; ok {
		return c, nil
	}
	switch {
	case strings.HasPrefix(in, "#"):
		return parseHex(in[1:], s)
	case strings.HasPrefix(in, "rgba(") && strings.HasSuffix(in, ")"):
		return parseFunc(in[5:len(in)-1], 4, s)
	case strings.HasPrefix(in, "rgb(") && strings.HasSuffix(in, ")"):
		return parseFunc(in[4:len(in)-1], 3, s)
	}
	return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
}

// MustParseColor panics on malformed input; for package-level defaults only.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(h, orig string) (Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

func parseFunc(body string, n int, orig string) (Color, error) {
	parts := strings.Split(body, ",")
	if len(parts) != n {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
		}
		ch[i] = uint8(math.Round(v))
	}
	a := 1.0
	if n == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || v < 0 || v > 1 {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
		}
		a = v
	}
	return Color{ch[0], ch[1], ch[2], uint8(math.Round(a * 255))}, nil
}

type Fill struct {
	Color   Color
	Enabled bool
}

type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

type Stroke struct {
	Color   Color
	Width   float64
	Cap     LineCap
	Enabled bool
}

// SolidFill and SolidStroke are shorthands for enabled paints.
func SolidFill(c Color) Fill { return Fill{Color: c, Enabled: true} }

func SolidStroke(c Color, w float64) Stroke {
	return Stroke{Color: c, Width: w, Enabled: w > 0}
}
