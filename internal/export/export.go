/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pricerange/internal/render"
	"pricerange/internal/vector"
)

// Format selects an output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts png, svg or pdf in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Options controls every exporter. Width and Height are media pixels; one
// media pixel is one SVG user unit and one PDF point.
type Options struct {
	Width, Height int
	// Ratio scales PNG output for HiDPI; 0 means 1.
	Ratio float64
	// Fonts resolves label faces for PNG; nil uses the Go fonts.
	Fonts render.Provider
	Title string
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("export size %dx%d must be positive", o.Width, o.Height)
	}
	return nil
}

// Write encodes root in format f.
func Write(w io.Writer, f Format, root vector.Node, opt Options) error {
	switch f {
	case FormatPNG:
		return WritePNG(w, root, opt)
	case FormatSVG:
		return WriteSVG(w, root, opt)
	case FormatPDF:
		return WritePDF(w, root, opt)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// ToFile writes root to path, creating parent directories. The format
// comes from the extension.
func ToFile(path string, root vector.Node, opt Options) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return Write(out, f, root, opt)
}
