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

// ToFormat returns a new image holding img converted to dst. Converting
// from Invalid yields Invalid. Unlike the original C (whose
// SImage_toFormat leaves the destination in the source's format when the
// source is valid -- see SPEC_FULL.md's notes on this), the destination
// here always ends up in the requested dst format.
func (img *Image) ToFormat(dst Format) *Image {
	if img.Format == Invalid || dst == Invalid {
		return New(0, 0, Invalid)
	}
	if img.Format == dst {
		out := New(img.Width, img.Height, dst)
		copy(out.Data, img.Data)
		return out
	}

	out := New(img.Width, img.Height, dst)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			switch dst {
			case Gray:
				out.SetPixelGray(x, y, img.PixelGray(x, y))
			case RGB:
				out.SetPixelRGB(x, y, img.PixelRGB(x, y))
			case SeparateRGB:
				out.setPlaneAt(0, x, y, toGrayChannel(img, x, y, 0))
				out.setPlaneAt(1, x, y, toGrayChannel(img, x, y, 1))
				out.setPlaneAt(2, x, y, toGrayChannel(img, x, y, 2))
			}
		}
	}
	return out
}

// toGrayChannel computes the Gray-shaped pixel for SeparateRGB plane ch
// given a source image of any (non-SeparateRGB) format:
//   - Gray source: copy the single plane into all three.
//   - RGB source: split into three Gray planes keyed by channel, each
//     inheriting the shared RGB weight.
func toGrayChannel(img *Image, x, y, ch int) vec.Vec2 {
	switch img.Format {
	case Gray:
		return img.PixelGray(x, y)
	case RGB:
		rgb := img.PixelRGB(x, y)
		switch ch {
		case 0:
			return vec.Vec2{X: rgb.X, Y: rgb.W}
		case 1:
			return vec.Vec2{X: rgb.Y, Y: rgb.W}
		default:
			return vec.Vec2{X: rgb.Z, Y: rgb.W}
		}
	case SeparateRGB:
		return img.planeAt(ch, x, y)
	default:
		return vec.Vec2{}
	}
}
