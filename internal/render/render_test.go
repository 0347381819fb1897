/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricerange/internal/annotation"
	"pricerange/internal/chart"
	"pricerange/internal/style"
	"pricerange/internal/vector"
)

func TestParseFont(t *testing.T) {
	f, err := ParseFont("12px sans-serif")
	require.NoError(t, err)
	assert.Equal(t, FontSpec{Family: "sans-serif", SizePx: 12, Weight: 400}, f)

	f, err = ParseFont(`italic bold 9pt "Go Mono", monospace`)
	require.NoError(t, err)
	assert.Equal(t, "Go Mono", f.Family)
	assert.InDelta(t, 12, f.SizePx, 1e-9)
	assert.Equal(t, 700, f.Weight)
	assert.True(t, f.Italic)

	for _, bad := range []string{"", "sans-serif", "12px", "huge 12px serif", "0px serif"} {
		_, err := ParseFont(bad)
		assert.ErrorIs(t, err, ErrBadFont, bad)
	}
}

func TestMeasureBasicFace(t *testing.T) {
	w, h := Measure(BasicProvider{}.Face(FontSpec{}), "abc")
	assert.Equal(t, 21.0, w)
	assert.Equal(t, 13.0, h)
}

func TestGoProviderCachesFaces(t *testing.T) {
	p := &GoProvider{}
	a := p.Face(FontSpec{Family: "sans-serif", SizePx: 12, Weight: 400})
	b := p.Face(FontSpec{Family: "sans-serif", SizePx: 12, Weight: 400})
	assert.Same(t, a, b)
	w, _ := Measure(a, "10.00 (5.00%) 3")
	assert.Greater(t, w, 0.0)
	mono := p.Face(FontSpec{Family: "monospace", SizePx: 12, Weight: 400})
	mw1, _ := Measure(mono, "iii")
	mw2, _ := Measure(mono, "WWW")
	assert.Equal(t, mw1, mw2)
}

func TestLabelBoxSitsAboveRect(t *testing.T) {
	got := LabelBox(vector.R(100, 100, 50, 40), 40)
	assert.Equal(t, vector.R(100, 75, 50, 20), got)
}

func testView(selected, hovered bool) annotation.View {
	r := vector.R(10, 40, 40, 40)
	return annotation.View{
		ID:          "a",
		Rect:        r,
		Visible:     true,
		Selected:    selected,
		Hovered:     hovered,
		ShowHandles: selected || hovered,
		Handles:     annotation.HandleGeometry(r, annotation.DefaultHitRadii),
		Style:       style.Defaults(),
		Label:       &annotation.InfoLabel{PriceDiff: "1.00", PercentDiff: "10.00%", BarDiff: 2},
	}
}

func TestAnnotationNodes(t *testing.T) {
	v := testView(true, false)
	nodes := Annotations([]annotation.View{v}, BasicProvider{})
	// body, arrow, label, four edges, four corners
	require.Len(t, nodes, 11)

	body := nodes[0].(*vector.RectNode)
	pal, err := style.Defaults().Palette()
	require.NoError(t, err)
	assert.Equal(t, pal.SelectedFill, body.Fill().Color)
	assert.Equal(t, 3.0, body.Stroke().Width)

	arrow := nodes[1].(*vector.PathNode)
	assert.Equal(t, vector.Pt{X: 30, Y: 80}, arrow.Path.Cmds[0].P)
	assert.Equal(t, vector.Pt{X: 30, Y: 40}, arrow.Path.Cmds[1].P)

	label := nodes[2].(*vector.TextNode)
	assert.Equal(t, "1.00 (10.00%) 2", label.Text)
	w := float64(7*len(label.Text)) + 10
	assert.Equal(t, vector.R(30-w/2, 15, w, 20), label.Box)

	_, isCircle := nodes[10].(*vector.CircleNode)
	assert.True(t, isCircle)
}

func TestAnnotationNodesByState(t *testing.T) {
	pal, _ := style.Defaults().Palette()

	plain := testView(false, false)
	plain.Label = nil
	nodes := Annotations([]annotation.View{plain}, BasicProvider{})
	require.Len(t, nodes, 1)
	assert.Equal(t, pal.Fill, nodes[0].Fill().Color)
	assert.Equal(t, 1.0, nodes[0].Stroke().Width)

	hover := testView(false, true)
	hover.Label = nil
	nodes = Annotations([]annotation.View{hover}, BasicProvider{})
	require.Len(t, nodes, 9)
	assert.Equal(t, pal.HoverFill, nodes[0].Fill().Color)

	hidden := testView(true, true)
	hidden.Visible = false
	assert.Empty(t, Annotations([]annotation.View{hidden}, BasicProvider{}))
}

func testBars() []chart.Bar {
	bars := make([]chart.Bar, 10)
	for i := range bars {
		f := float64(i)
		bars[i] = chart.Bar{Time: chart.Time(600 + 60*i), Open: 15 + f, High: 20 + f, Low: 10 + f, Close: 16 + f}
	}
	bars[3].Close = 5
	return bars
}

func TestCandles(t *testing.T) {
	vp := chart.NewViewport(testBars(), 1000, 100)
	vp.SetPriceRange(0, 100)
	nodes := Candles(vp)
	require.Len(t, nodes, 20)
	body := nodes[1].(*vector.RectNode)
	assert.Equal(t, vector.R(20, 84, 60, 1), body.Rect)
	assert.Equal(t, UpColor, body.Fill().Color)
	assert.Equal(t, DownColor, nodes[7].Fill().Color)
}

func TestRasterizeFrame(t *testing.T) {
	vp := chart.NewViewport(testBars(), 200, 120)
	v := testView(true, false)
	img := Rasterize(Frame(vp, []annotation.View{v}, BasicProvider{}), 200, 120, 2, BasicProvider{})
	require.Equal(t, 400, img.Bounds().Dx())
	require.Equal(t, 240, img.Bounds().Dy())

	// top-left corner is background
	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})

	// inside the selected body the blue tint shows
	c := color.NRGBAModel.Convert(img.At(2*20, 2*60)).(color.NRGBA)
	assert.Less(t, c.R, uint8(200))
	assert.Greater(t, c.B, uint8(200))

	// the label background is dark
	dark := color.NRGBAModel.Convert(img.At(2*12, 2*16)).(color.NRGBA)
	assert.Less(t, dark.R, uint8(100))
}
