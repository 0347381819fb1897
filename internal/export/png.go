/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/png"
	"io"

	"pricerange/internal/render"
	"pricerange/internal/vector"
)

// WritePNG rasterizes root at opt.Width x opt.Height times opt.Ratio.
func WritePNG(w io.Writer, root vector.Node, opt Options) error {
	if err := opt.validate(); err != nil {
		return err
	}
	fonts := opt.Fonts
	if fonts == nil {
		fonts = &render.GoProvider{}
	}
	img := render.Rasterize(root, opt.Width, opt.Height, opt.Ratio, fonts)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
