// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pixel

import "github.com/nightframe/align/internal/vec"

// RowRed returns the row of Gray-shaped pixels representing the red
// channel for row y, valid only for formats carrying an addressable red
// plane (Gray, SeparateRGB). Returns nil for formats without one (RGB
// packs channels per-pixel, not as separate rows).
func (img *Image) RowRed(y int) []vec.Vec2 { return img.rowChannel(0, y) }

// RowGreen is the RowRed analogue for the green channel.
func (img *Image) RowGreen(y int) []vec.Vec2 { return img.rowChannel(1, y) }

// RowBlue is the RowRed analogue for the blue channel.
func (img *Image) RowBlue(y int) []vec.Vec2 { return img.rowChannel(2, y) }

func (img *Image) rowChannel(ch, y int) []vec.Vec2 {
	if y < 0 || y >= img.Height {
		return nil
	}
	switch img.Format {
	case Gray:
		row := make([]vec.Vec2, img.Width)
		for x := 0; x < img.Width; x++ {
			row[x] = img.PixelGray(x, y)
		}
		return row
	case SeparateRGB:
		row := make([]vec.Vec2, img.Width)
		for x := 0; x < img.Width; x++ {
			row[x] = img.planeAt(ch, x, y)
		}
		return row
	default:
		return nil
	}
}
