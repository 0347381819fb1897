/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricerange/internal/annotation"
	"pricerange/internal/render"
	"pricerange/internal/style"
	"pricerange/internal/vector"
)

func sampleScene() vector.Node {
	r := vector.R(40, 60, 80, 50)
	v := annotation.View{
		ID:          "a",
		Rect:        r,
		Visible:     true,
		Selected:    true,
		ShowHandles: true,
		Handles:     annotation.HandleGeometry(r, annotation.DefaultHitRadii),
		Style:       style.Defaults(),
		Label:       &annotation.InfoLabel{PriceDiff: "2.50", PercentDiff: "12.50%", BarDiff: 4},
	}
	g := vector.NewGroup(vector.NewRect(vector.R(0, 0, 200, 150), vector.SolidFill(vector.White), vector.Stroke{}))
	g.Children = append(g.Children, render.Annotations([]annotation.View{v}, render.BasicProvider{})...)
	return g
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" SVG ")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)

	f, err = FormatFromPath("out/chart.pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = FormatFromPath("chart.gif")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	err := WritePNG(&buf, sampleScene(), Options{Width: 200, Height: 150, Ratio: 2, Fonts: render.BasicProvider{}})
	require.NoError(t, err)
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, sampleScene(), Options{Width: 200, Height: 150, Title: "R&D"}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `viewBox="0 0 200 150"`)
	assert.Contains(t, out, "<title>R&amp;D</title>")
	assert.Contains(t, out, `<rect x="40" y="60" width="80" height="50" fill="#007aff" fill-opacity="0.549" stroke="#007aff" stroke-width="3"/>`)
	assert.Contains(t, out, "<path d=\"M80 110 L80 60 L75 65 M80 60 L85 65\" fill=\"none\"")
	assert.Contains(t, out, ">2.50 (12.50%) 4</text>")
	assert.Equal(t, 4, strings.Count(out, "<circle"))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestWriteSVGScalesGroups(t *testing.T) {
	g := vector.NewGroup(vector.NewCircle(vector.Circle{C: vector.Pt{X: 5, Y: 5}, R: 2}, vector.SolidFill(vector.Black), vector.SolidStroke(vector.White, 1)))
	g.SetTransform(vector.Scale(2, 2))
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, g, Options{Width: 20, Height: 20}))
	assert.Contains(t, buf.String(), `<circle cx="10" cy="10" r="4" fill="#000000" stroke="#ffffff" stroke-width="2"/>`)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleScene(), Options{Width: 200, Height: 150, Title: "range"}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestInvalidSize(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, FormatSVG, sampleScene(), Options{}))
	assert.ErrorIs(t, Write(&buf, Format("gif"), sampleScene(), Options{Width: 1, Height: 1}), ErrUnknownFormat)
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a/chart.png", "b/chart.svg", "c/chart.pdf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, ToFile(path, sampleScene(), Options{Width: 200, Height: 150}), name)
		st, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, st.Size())
	}
	assert.ErrorIs(t, ToFile(filepath.Join(dir, "x.bmp"), sampleScene(), Options{Width: 1, Height: 1}), ErrUnknownFormat)
}
