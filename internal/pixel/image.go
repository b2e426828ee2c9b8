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

// MaxDim is the largest width or height an Image may have. Exceeding it
// forces the image to Invalid, matching SImage_init's width/height guard.
const MaxDim = 65535

// Image is a raw weighted-pixel raster: width x height pixel records of
// the format's shape (x3 planes for SeparateRGB). Data is zero-filled at
// creation (the same state Clear produces); callers that want another
// starting state use ClearBlack/ClearWhite.
type Image struct {
	Width, Height int
	Format        Format
	Data          []float32
}

// floatsPerPixel returns how many float32 slots one pixel occupies in Data
// for the given format. Gray is (value, weight); RGB is (r,g,b,weight);
// SeparateRGB stores three independent Gray planes back to back, so its
// single-plane stride is the same as Gray's, tripled at the image level.
func floatsPerPixel(f Format) int {
	switch f {
	case Gray:
		return 2
	case RGB:
		return 4
	case SeparateRGB:
		return 2
	default:
		return 0
	}
}

// New allocates an image of the given size and format. If w or h exceed
// MaxDim, the image is forced to Invalid and Data is left nil.
func New(w, h int, format Format) *Image {
	img := &Image{Width: w, Height: h, Format: format}
	if w <= 0 || h <= 0 || w > MaxDim || h > MaxDim || format == Invalid {
		img.Format = Invalid
		img.Width, img.Height = 0, 0
		return img
	}
	planes := 1
	if format == SeparateRGB {
		planes = 3
	}
	img.Data = make([]float32, w*h*floatsPerPixel(format)*planes)
	return img
}

// Deinit releases the backing array. Present for symmetry with the
// original's explicit alloc/free discipline; in Go this just drops the
// reference so the GC can reclaim it.
func (img *Image) Deinit() {
	img.Data = nil
	img.Width, img.Height = 0, 0
	img.Format = Invalid
}

// planeSize returns the number of float32s in a single Gray-shaped plane.
func (img *Image) planeSize() int {
	return img.Width * img.Height * 2
}

// Clear zeroes all bytes, i.e. every pixel becomes (0,...,weight=0): "no
// data."
func (img *Image) Clear() {
	for i := range img.Data {
		img.Data[i] = 0
	}
}

// ClearBlack sets value channels to 0 and weight to 1.
func (img *Image) ClearBlack() {
	switch img.Format {
	case Gray:
		for i := 0; i < len(img.Data); i += 2 {
			img.Data[i] = 0
			img.Data[i+1] = 1
		}
	case RGB:
		for i := 0; i < len(img.Data); i += 4 {
			img.Data[i] = 0
			img.Data[i+1] = 0
			img.Data[i+2] = 0
			img.Data[i+3] = 1
		}
	case SeparateRGB:
		for i := 0; i < len(img.Data); i += 2 {
			img.Data[i] = 0
			img.Data[i+1] = 1
		}
	}
}

// ClearWhite sets every component, including weight, to 1.
func (img *Image) ClearWhite() {
	for i := range img.Data {
		img.Data[i] = 1
	}
}

// InBounds reports whether (x,y) addresses a real pixel.
func (img *Image) InBounds(x, y int) bool {
	return x >= 0 && x < img.Width && y >= 0 && y < img.Height
}

// --- Gray-shaped pixel access -------------------------------------------

// PixelGray returns the Gray-equivalent pixel at (x,y), converting on the
// fly if the image isn't Gray. Out-of-bounds queries return the zero
// pixel.
func (img *Image) PixelGray(x, y int) vec.Vec2 {
	if !img.InBounds(x, y) {
		return vec.Vec2{}
	}
	switch img.Format {
	case Gray:
		i := (y*img.Width + x) * 2
		return vec.Vec2{X: img.Data[i], Y: img.Data[i+1]}
	case RGB:
		i := (y*img.Width + x) * 4
		r, g, b, w := img.Data[i], img.Data[i+1], img.Data[i+2], img.Data[i+3]
		return vec.Vec2{X: (r + g + b) / 3, Y: w}
	case SeparateRGB:
		red := img.planeAt(0, x, y)
		green := img.planeAt(1, x, y)
		blue := img.planeAt(2, x, y)
		return averageGray(red, green, blue)
	default:
		return vec.Vec2{}
	}
}

// averageGray is the elementwise mean of the three planar pixels, used for
// SeparateRGB -> Gray conversion (both the on-the-fly pixel getter and the
// whole-image converter).
func averageGray(r, g, b vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: (r.X + g.X + b.X) / 3,
		Y: (r.Y + g.Y + b.Y) / 3,
	}
}

// SetPixelGray writes a Gray pixel. Only valid when img.Format == Gray.
func (img *Image) SetPixelGray(x, y int, p vec.Vec2) {
	i := (y*img.Width + x) * 2
	img.Data[i], img.Data[i+1] = p.X, p.Y
}

// planeAt returns the Gray pixel from SeparateRGB plane k (0=R,1=G,2=B).
func (img *Image) planeAt(k, x, y int) vec.Vec2 {
	base := k * img.planeSize()
	i := base + (y*img.Width+x)*2
	return vec.Vec2{X: img.Data[i], Y: img.Data[i+1]}
}

func (img *Image) setPlaneAt(k, x, y int, p vec.Vec2) {
	base := k * img.planeSize()
	i := base + (y*img.Width+x)*2
	img.Data[i], img.Data[i+1] = p.X, p.Y
}

// PixelRed/Green/Blue return the per-channel Gray pixel. On a Gray image
// they all return the single channel; on RGB they return (channel,
// weight).
func (img *Image) PixelRed(x, y int) vec.Vec2   { return img.pixelChannel(0, x, y) }
func (img *Image) PixelGreen(x, y int) vec.Vec2 { return img.pixelChannel(1, x, y) }
func (img *Image) PixelBlue(x, y int) vec.Vec2  { return img.pixelChannel(2, x, y) }

func (img *Image) pixelChannel(ch, x, y int) vec.Vec2 {
	if !img.InBounds(x, y) {
		return vec.Vec2{}
	}
	switch img.Format {
	case Gray:
		i := (y*img.Width + x) * 2
		return vec.Vec2{X: img.Data[i], Y: img.Data[i+1]}
	case RGB:
		i := (y*img.Width+x)*4 + ch
		w := img.Data[(y*img.Width+x)*4+3]
		return vec.Vec2{X: img.Data[i], Y: w}
	case SeparateRGB:
		return img.planeAt(ch, x, y)
	default:
		return vec.Vec2{}
	}
}

// normalized returns p.X/p.Y, or 0 if p.Y <= 0.
func normalized(p vec.Vec2) float32 {
	if p.Y <= 0 {
		return 0
	}
	return p.X / p.Y
}

// --- RGB-shaped pixel access ---------------------------------------------

// PixelRGB returns the RGB-equivalent pixel at (x,y), converting on the
// fly for Gray and SeparateRGB sources.
func (img *Image) PixelRGB(x, y int) vec.Vec4 {
	if !img.InBounds(x, y) {
		return vec.Vec4{}
	}
	switch img.Format {
	case RGB:
		i := (y*img.Width + x) * 4
		return vec.Vec4{X: img.Data[i], Y: img.Data[i+1], Z: img.Data[i+2], W: img.Data[i+3]}
	case Gray:
		g := img.PixelGray(x, y)
		return vec.Vec4{X: g.X, Y: g.X, Z: g.X, W: g.Y}
	case SeparateRGB:
		red := img.planeAt(0, x, y)
		green := img.planeAt(1, x, y)
		blue := img.planeAt(2, x, y)
		meanW := (red.Y + green.Y + blue.Y) / 3
		return vec.Vec4{
			X: normalized(red) * meanW,
			Y: normalized(green) * meanW,
			Z: normalized(blue) * meanW,
			W: meanW,
		}
	default:
		return vec.Vec4{}
	}
}

// SetPixelRGB writes an RGB pixel. Only valid when img.Format == RGB.
func (img *Image) SetPixelRGB(x, y int, p vec.Vec4) {
	i := (y*img.Width + x) * 4
	img.Data[i], img.Data[i+1], img.Data[i+2], img.Data[i+3] = p.X, p.Y, p.Z, p.W
}
