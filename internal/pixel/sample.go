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

import (
	"math"

	"github.com/nightframe/align/internal/vec"
	"github.com/nightframe/align/internal/xform"
)

// SubpixelGray bilinearly samples the Gray-equivalent pixel at fractional
// coordinates (x,y). Coordinates are offset by +1 internally so that
// floor-based indexing picks the four corners of the unit cell containing
// (x,y).
func (img *Image) SubpixelGray(x, y float32) vec.Vec2 {
	return subpixel(x, y, img.PixelGray)
}

// SubpixelRed/Green/Blue are the SubpixelGray analogues for a single
// channel.
func (img *Image) SubpixelRed(x, y float32) vec.Vec2   { return subpixel(x, y, img.PixelRed) }
func (img *Image) SubpixelGreen(x, y float32) vec.Vec2 { return subpixel(x, y, img.PixelGreen) }
func (img *Image) SubpixelBlue(x, y float32) vec.Vec2  { return subpixel(x, y, img.PixelBlue) }

func subpixel(x, y float32, at func(int, int) vec.Vec2) vec.Vec2 {
	fx, fy := x+1, y+1
	xl, yl := int(math.Floor(float64(fx))), int(math.Floor(float64(fy)))
	xr, yr := fx-float32(xl), fy-float32(yl)
	xl, yl = xl-1, yl-1

	p00 := at(xl, yl)
	p10 := at(xl+1, yl)
	p01 := at(xl, yl+1)
	p11 := at(xl+1, yl+1)

	top := p00.Scale(1 - xr).Add(p10.Scale(xr))
	bot := p01.Scale(1 - xr).Add(p11.Scale(xr))
	return top.Scale(1 - yr).Add(bot.Scale(yr))
}

// SubpixelRGB bilinearly samples the RGB-equivalent pixel.
func (img *Image) SubpixelRGB(x, y float32) vec.Vec4 {
	fx, fy := x+1, y+1
	xl, yl := int(math.Floor(float64(fx))), int(math.Floor(float64(fy)))
	xr, yr := fx-float32(xl), fy-float32(yl)
	xl, yl = xl-1, yl-1

	p00 := img.PixelRGB(xl, yl)
	p10 := img.PixelRGB(xl+1, yl)
	p01 := img.PixelRGB(xl, yl+1)
	p11 := img.PixelRGB(xl+1, yl+1)

	top := p00.Scale(1 - xr).Add(p10.Scale(xr))
	bot := p01.Scale(1 - xr).Add(p11.Scale(xr))
	return top.Scale(1 - yr).Add(bot.Scale(yr))
}

// ScaleDown partitions the domain into factor x factor tiles and
// stack-accumulates each tile into one output pixel. Edge tiles may be
// smaller than factor x factor; weights grow by up to factor^2.
func (img *Image) ScaleDown(factor int) *Image {
	if factor <= 0 {
		factor = 1
	}
	dstW := (img.Width + factor - 1) / factor
	dstH := (img.Height + factor - 1) / factor
	dst := New(dstW, dstH, img.Format)
	if dst.Format == Invalid {
		return dst
	}
	dst.Clear()

	switch img.Format {
	case Gray:
		scaleDownGray(dst, img, 0, factor)
	case RGB:
		for y := 0; y < dstH; y++ {
			for x := 0; x < dstW; x++ {
				sum := vec.Vec4{}
				mx := min(img.Width, factor*(x+1))
				my := min(img.Height, factor*(y+1))
				for sy := factor * y; sy < my; sy++ {
					for sx := factor * x; sx < mx; sx++ {
						sum = sum.Add(img.PixelRGB(sx, sy))
					}
				}
				dst.SetPixelRGB(x, y, sum)
			}
		}
	case SeparateRGB:
		for k := 0; k < 3; k++ {
			scaleDownGray(dst, img, k, factor)
		}
	}
	return dst
}

func scaleDownGray(dst, src *Image, plane, factor int) {
	get := func(x, y int) vec.Vec2 {
		if src.Format == SeparateRGB {
			return src.planeAt(plane, x, y)
		}
		return src.PixelGray(x, y)
	}
	set := func(x, y int, v vec.Vec2) {
		if dst.Format == SeparateRGB {
			dst.setPlaneAt(plane, x, y, v)
		} else {
			dst.SetPixelGray(x, y, v)
		}
	}
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			sum := vec.Vec2{}
			mx := min(src.Width, factor*(x+1))
			my := min(src.Height, factor*(y+1))
			for sy := factor * y; sy < my; sy++ {
				for sx := factor * x; sx < mx; sx++ {
					sum = sum.Add(get(sx, sy))
				}
			}
			set(x, y, sum)
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// StackTr samples src at the inverse of tr for every integer coordinate in
// the clipped bounding box of tr(src's bounds) inside tgt, and
// vector-adds the bilinearly interpolated sample into tgt. A Drop
// transform is a no-op.
func (tgt *Image) StackTr(tr xform.Transform, src *Image) {
	stackTrMain(tgt, tr, tr.Inverse(), src)
}

// StackTrInv is StackTr with the forward/inverse roles of tr swapped.
func (tgt *Image) StackTrInv(tr xform.Transform, src *Image) {
	stackTrMain(tgt, tr.Inverse(), tr, src)
}

func stackTrMain(tgt *Image, tr, trInv xform.Transform, src *Image) {
	if tgt.Format == Invalid || src.Format == Invalid || tr.Tag == xform.Drop {
		return
	}
	corners := [4]vec.Vec2{
		{X: 0, Y: 0},
		{X: float32(src.Width), Y: 0},
		{X: 0, Y: float32(src.Height)},
		{X: float32(src.Width), Y: float32(src.Height)},
	}
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := -float32(math.MaxFloat32), -float32(math.MaxFloat32)
	for _, c := range corners {
		p := tr.Apply(c)
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	x0, y0 := int(math.Floor(float64(minX))), int(math.Floor(float64(minY)))
	x1, y1 := int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY)))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > tgt.Width {
		x1 = tgt.Width
	}
	if y1 > tgt.Height {
		y1 = tgt.Height
	}

	switch tgt.Format {
	case Gray:
		s, owned := asFormat(src, Gray)
		if owned {
			defer s.Deinit()
		}
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				p := trInv.Apply(vec.Vec2{X: float32(x), Y: float32(y)})
				tgt.SetPixelGray(x, y, tgt.PixelGray(x, y).Add(s.SubpixelGray(p.X, p.Y)))
			}
		}
	case RGB:
		s, owned := asFormat(src, RGB)
		if owned {
			defer s.Deinit()
		}
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				p := trInv.Apply(vec.Vec2{X: float32(x), Y: float32(y)})
				tgt.SetPixelRGB(x, y, tgt.PixelRGB(x, y).Add(s.SubpixelRGB(p.X, p.Y)))
			}
		}
	case SeparateRGB:
		s, owned := asFormat(src, SeparateRGB)
		if owned {
			defer s.Deinit()
		}
		subpixels := [3]func(float32, float32) vec.Vec2{s.SubpixelRed, s.SubpixelGreen, s.SubpixelBlue}
		for k := 0; k < 3; k++ {
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					p := trInv.Apply(vec.Vec2{X: float32(x), Y: float32(y)})
					tgt.setPlaneAt(k, x, y, tgt.planeAt(k, x, y).Add(subpixels[k](p.X, p.Y)))
				}
			}
		}
	}
}
