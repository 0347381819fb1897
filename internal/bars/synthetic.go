/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bars

import (
	"math"
	"math/rand/v2"

	"pricerange/internal/chart"
)

// Synthetic generates n bars as a seeded random walk starting at 100, one
// every step seconds from start. The same seed always yields the same bars.
func Synthetic(n int, start chart.Time, step int64, seed uint64) []chart.Bar {
	if n <= 0 {
		return nil
	}
	if step <= 0 {
		step = 60
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]chart.Bar, n)
	price := 100.0
	for i := range out {
		open := price
		closeP := math.Max(1, open*(1+rng.NormFloat64()*0.01))
		hi := math.Max(open, closeP) * (1 + rng.Float64()*0.005)
		lo := math.Min(open, closeP) * (1 - rng.Float64()*0.005)
		out[i] = chart.Bar{
			Time:   start + chart.Time(int64(i)*step),
			Open:   round2(open),
			High:   round2(hi),
			Low:    round2(lo),
			Close:  round2(closeP),
			Volume: math.Round(1000 + rng.Float64()*9000),
		}
		price = closeP
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
