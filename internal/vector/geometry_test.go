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
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	if r.Contains(Pt{110.01, 70}) {
		t.Fatalf("point beyond right edge contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestFromCornersNormalizes(t *testing.T) {
	r := FromCorners(Pt{200, 80}, Pt{100, 120})
	if r != R(100, 80, 100, 40) {
		t.Fatalf("unexpected rect: %+v", r)
	}
	c := r.Corners()
	if c[0] != (Pt{100, 80}) || c[1] != (Pt{200, 80}) || c[2] != (Pt{100, 120}) || c[3] != (Pt{200, 120}) {
		t.Fatalf("unexpected corners: %+v", c)
	}
	if r.Center() != (Pt{150, 100}) {
		t.Fatalf("unexpected center: %+v", r.Center())
	}
}

func TestCircleContainsStrict(t *testing.T) {
	c := Circle{C: Pt{0, 0}, R: 10}
	if !c.ContainsStrict(Pt{6, 7.9}) {
		t.Fatalf("expected inside")
	}
	if c.ContainsStrict(Pt{10, 0}) {
		t.Fatalf("boundary must not count")
	}
}

func TestAffineScaleTranslate(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 {
		t.Fatalf("unexpected transform result: %+v", p)
	}
	if got := Scale(2, 2).ApplyRect(R(1, 1, 2, 3)); got != R(2, 2, 4, 6) {
		t.Fatalf("unexpected rect: %+v", got)
	}
}

func TestGroupBoundsAndWalk(t *testing.T) {
	a := NewRect(R(0, 0, 10, 10), SolidFill(White), Stroke{})
	b := NewCircle(Circle{C: Pt{30, 30}, R: 5}, SolidFill(Black), Stroke{})
	g := NewGroup(a, b)
	g.SetTransform(Scale(2, 2))
	if got := g.Bounds(); got != R(0, 0, 70, 70) {
		t.Fatalf("unexpected bounds: %+v", got)
	}
	var seen []Node
	Walk(g, Identity, func(n Node, xf Affine2D) {
		seen = append(seen, n)
		if xf.A != 2 {
			t.Fatalf("transform not accumulated: %+v", xf)
		}
	})
	if len(seen) != 2 || seen[0] != a || seen[1] != b {
		t.Fatalf("unexpected walk order: %v", seen)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"rgba(0, 122, 255, 0.25)": {0, 122, 255, 64},
		"rgb(40,40,40)":           {40, 40, 40, 255},
		"#fff":                    White,
		"#007AFF":                 {0, 122, 255, 255},
		"#00000080":               {0, 0, 0, 128},
		"  White ":                White,
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q) = %+v, %v; want %+v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "rgba(1,2,3)", "rgb(300,0,0)", "#12345", "rgba(0,0,0,2)", "chartreuse"} {
		if _, err := ParseColor(bad); !errors.Is(err, ErrBadColor) {
			t.Errorf("ParseColor(%q) err = %v, want ErrBadColor", bad, err)
		}
	}
}

func TestColorCSS(t *testing.T) {
	if got := (Color{0, 122, 255, 64}).CSS(); got != "rgba(0, 122, 255, 0.251)" {
		t.Fatalf("CSS() = %q", got)
	}
	if got := (Color{0, 122, 255, 255}).Hex(); got != "#007aff" {
		t.Fatalf("Hex() = %q", got)
	}
}
