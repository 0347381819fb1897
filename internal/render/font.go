/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSpec is a parsed CSS font shorthand.
type FontSpec struct {
	Family string
	SizePx float64
	Weight int // 100..900
	Italic bool
}

// ErrBadFont is wrapped by ParseFont failures.
var ErrBadFont = errors.New("invalid font")

// ParseFont reads the subset of the CSS font shorthand used by label
// options: [style] [weight] <size>px|pt <family>[, fallback...].
func ParseFont(css string) (FontSpec, error) {
	spec := FontSpec{Weight: 400}
	fields := strings.Fields(css)
	for i, f := range fields {
		lf := strings.ToLower(f)
		switch {
		case lf == "normal":
		case lf == "italic" || lf == "oblique":
			spec.Italic = true
		case lf == "bold":
			spec.Weight = 700
		case lf == "lighter":
			spec.Weight = 300
		case lf == "bolder":
			spec.Weight = 800
		case isWeight(lf):
			spec.Weight, _ = strconv.Atoi(lf)
		case strings.HasSuffix(lf, "px") || strings.HasSuffix(lf, "pt"):
			v, err := strconv.ParseFloat(lf[:len(lf)-2], 64)
			if err != nil || v <= 0 {
				return FontSpec{}, fmt.Errorf("%w: size %q", ErrBadFont, f)
			}
			if strings.HasSuffix(lf, "pt") {
				v = v * 4 / 3
			}
			spec.SizePx = v
			family := strings.Join(fields[i+1:], " ")
			if j := strings.IndexByte(family, ','); j >= 0 {
				family = family[:j]
			}
			spec.Family = strings.Trim(strings.TrimSpace(family), `"'`)
			if spec.Family == "" {
				return FontSpec{}, fmt.Errorf("%w: missing family in %q", ErrBadFont, css)
			}
			return spec, nil
		default:
			return FontSpec{}, fmt.Errorf("%w: unexpected %q in %q", ErrBadFont, f, css)
		}
	}
	return FontSpec{}, fmt.Errorf("%w: missing size in %q", ErrBadFont, css)
}

func isWeight(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 100 && n <= 900 && n%100 == 0
}

// Provider maps a FontSpec to a concrete face.
type Provider interface {
	Face(FontSpec) font.Face
}

// BasicProvider always answers with basicfont 7x13. Tests use it for
// deterministic metrics.
type BasicProvider struct{}

func (BasicProvider) Face(FontSpec) font.Face { return basicfont.Face7x13 }

// FontLibrary holds user supplied OpenType fonts keyed by family.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[string]*opentype.Font
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[string]*opentype.Font)} }

// LoadTTF parses a TTF/OTF file and registers it under family.
func (fl *FontLibrary) LoadTTF(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	fl.mu.Lock()
	fl.fonts[strings.ToLower(family)] = f
	fl.mu.Unlock()
	return nil
}

func (fl *FontLibrary) find(family string) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	return fl.fonts[strings.ToLower(family)]
}

type faceKey struct {
	family string
	size   float64
	weight int
	italic bool
}

// GoProvider renders with the Go font family. Monospace families map to Go
// Mono; everything else to Go Regular/Bold/Italic. Families registered in
// Lib win over the built-ins. Faces are cached.
type GoProvider struct {
	Lib *FontLibrary

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

var (
	goFontsOnce sync.Once
	goFonts     map[string]*opentype.Font
	goFontsErr  error
)

func loadGoFonts() {
	goFonts = make(map[string]*opentype.Font)
	for name, data := range map[string][]byte{
		"regular":    goregular.TTF,
		"bold":       gobold.TTF,
		"italic":     goitalic.TTF,
		"bolditalic": gobolditalic.TTF,
		"mono":       gomono.TTF,
	} {
		f, err := opentype.Parse(data)
		if err != nil {
			goFontsErr = fmt.Errorf("parse go font %s: %w", name, err)
			return
		}
		goFonts[name] = f
	}
}

func builtin(spec FontSpec) *opentype.Font {
	goFontsOnce.Do(loadGoFonts)
	if goFontsErr != nil {
		return nil
	}
	fam := strings.ToLower(spec.Family)
	if fam == "monospace" || strings.Contains(fam, "mono") || strings.Contains(fam, "courier") {
		return goFonts["mono"]
	}
	bold := spec.Weight >= 600
	switch {
	case bold && spec.Italic:
		return goFonts["bolditalic"]
	case bold:
		return goFonts["bold"]
	case spec.Italic:
		return goFonts["italic"]
	}
	return goFonts["regular"]
}

func (p *GoProvider) Face(spec FontSpec) font.Face {
	if spec.SizePx <= 0 {
		spec.SizePx = 12
	}
	key := faceKey{strings.ToLower(spec.Family), spec.SizePx, spec.Weight, spec.Italic}
	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := p.faces[key]; ok {
		return f
	}
	otf := p.Lib.find(spec.Family)
	if otf == nil {
		otf = builtin(spec)
	}
	if otf == nil {
		return basicfont.Face7x13
	}
	// 72 DPI makes the opentype size equal to pixels.
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: key.size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	if p.faces == nil {
		p.faces = make(map[faceKey]font.Face)
	}
	p.faces[key] = face
	return face
}

// Measure returns the advance width and line height of text in pixels.
func Measure(face font.Face, text string) (w, h float64) {
	d := font.Drawer{Face: face}
	adv := d.MeasureString(text)
	m := face.Metrics()
	return float64(adv) / 64, math.Ceil(float64(m.Ascent+m.Descent) / 64)
}
