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

// clip returns the intersection, in tgt coordinates, of tgt's own bounds
// and src's bounds offset by (dx,dy).
func clip(tgt *Image, dx, dy, srcW, srcH int) (x0, y0, x1, y1 int) {
	x0, y0 = dx, dy
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	x1, y1 = dx+srcW, dy+srcH
	if x1 > tgt.Width {
		x1 = tgt.Width
	}
	if y1 > tgt.Height {
		y1 = tgt.Height
	}
	return
}

// asFormat returns src re-expressed in format f, converting (and
// allocating a temporary) only if necessary. The returned bool reports
// whether the caller owns a temporary that should be released.
func asFormat(src *Image, f Format) (*Image, bool) {
	if src.Format == f {
		return src, false
	}
	return src.ToFormat(f), true
}

// Stack performs the weighted-mean accumulator: tgt[x,y] += src[x-dx,y-dy]
// as a full pixel vector (all channels and weight). Unlike Add/Sub/Mul/Div,
// which leave weight unchanged, it adds the weights too, which is what
// makes stacking a single vector add.
func (tgt *Image) Stack(dx, dy int, src *Image) {
	if tgt.Format == Invalid || src.Format == Invalid {
		return
	}
	s, owned := asFormat(src, tgt.Format)
	if owned {
		defer s.Deinit()
	}
	x0, y0, x1, y1 := clip(tgt, dx, dy, s.Width, s.Height)
	switch tgt.Format {
	case Gray:
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				sx, sy := x-dx, y-dy
				tgt.SetPixelGray(x, y, tgt.PixelGray(x, y).Add(s.PixelGray(sx, sy)))
			}
		}
	case RGB:
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				sx, sy := x-dx, y-dy
				tgt.SetPixelRGB(x, y, tgt.PixelRGB(x, y).Add(s.PixelRGB(sx, sy)))
			}
		}
	case SeparateRGB:
		for k := 0; k < 3; k++ {
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					sx, sy := x-dx, y-dy
					tgt.setPlaneAt(k, x, y, tgt.planeAt(k, x, y).Add(s.planeAt(k, sx, sy)))
				}
			}
		}
	}
}

// Add performs an arithmetic add on normalized values, leaving tgt's
// weights unchanged: tgt[i].value += src[i].value * tgt[i].weight /
// src[i].weight. Pixels where src.weight == 0 are skipped.
func (tgt *Image) Add(dx, dy int, src *Image) {
	tgt.combineNormalized(dx, dy, src, func(t, s vec.Vec2) vec.Vec2 {
		if s.Y == 0 {
			return t
		}
		return vec.Vec2{X: t.X + s.X*t.Y/s.Y, Y: t.Y}
	})
}

// Sub is the Add analogue for subtraction.
func (tgt *Image) Sub(dx, dy int, src *Image) {
	tgt.combineNormalized(dx, dy, src, func(t, s vec.Vec2) vec.Vec2 {
		if s.Y == 0 {
			return t
		}
		return vec.Vec2{X: t.X - s.X*t.Y/s.Y, Y: t.Y}
	})
}

// Mul multiplies tgt's value by src's normalized value, leaving weight
// unchanged.
func (tgt *Image) Mul(dx, dy int, src *Image) {
	tgt.combineNormalized(dx, dy, src, func(t, s vec.Vec2) vec.Vec2 {
		if s.Y == 0 {
			return t
		}
		return vec.Vec2{X: t.X * normalized(s), Y: t.Y}
	})
}

// Div divides tgt's value by src's normalized value, leaving weight
// unchanged. Skips pixels where src.value == 0 or src.weight == 0.
func (tgt *Image) Div(dx, dy int, src *Image) {
	tgt.combineNormalized(dx, dy, src, func(t, s vec.Vec2) vec.Vec2 {
		if s.Y == 0 || s.X == 0 {
			return t
		}
		return vec.Vec2{X: t.X / normalized(s), Y: t.Y}
	})
}

// combineNormalized runs a per-channel combiner across the overlap of tgt
// and src (materializing a converted temporary for cross-format pairs,
// released on every exit path), dispatching per plane by format.
func (tgt *Image) combineNormalized(dx, dy int, src *Image, f func(t, s vec.Vec2) vec.Vec2) {
	if tgt.Format == Invalid || src.Format == Invalid {
		return
	}
	s, owned := asFormat(src, tgt.Format)
	if owned {
		defer s.Deinit()
	}
	x0, y0, x1, y1 := clip(tgt, dx, dy, s.Width, s.Height)
	switch tgt.Format {
	case Gray:
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				tgt.SetPixelGray(x, y, f(tgt.PixelGray(x, y), s.PixelGray(x-dx, y-dy)))
			}
		}
	case RGB:
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				t := tgt.PixelRGB(x, y)
				sp := s.PixelRGB(x-dx, y-dy)
				rv := f(vec.Vec2{X: t.X, Y: t.W}, vec.Vec2{X: sp.X, Y: sp.W})
				gv := f(vec.Vec2{X: t.Y, Y: t.W}, vec.Vec2{X: sp.Y, Y: sp.W})
				bv := f(vec.Vec2{X: t.Z, Y: t.W}, vec.Vec2{X: sp.Z, Y: sp.W})
				tgt.SetPixelRGB(x, y, vec.Vec4{X: rv.X, Y: gv.X, Z: bv.X, W: t.W})
			}
		}
	case SeparateRGB:
		for k := 0; k < 3; k++ {
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					tgt.setPlaneAt(k, x, y, f(tgt.planeAt(k, x, y), s.planeAt(k, x-dx, y-dy)))
				}
			}
		}
	}
}

// Mask multiplies the full pixel vector (value and weight) by src's
// normalized value. A zero-weight mask pixel is skipped entirely, leaving
// tgt's pixel at that coordinate untouched (SImage_mask.c's "if
// (pix[...]==0) continue" guard in every branch), rather than zeroing it
// out. Ported from SImage_mask.c's dispatch: a Gray mask (or any
// non-Gray mask first reduced to Gray) is broadcast uniformly across a
// Gray or RGB target; a SeparateRGB target masks each plane
// independently against the matching mask plane (or the single Gray
// plane, broadcast, for a Gray mask), except an RGB mask against a
// SeparateRGB target, which applies channelwise using the mask's single
// shared weight.
func (tgt *Image) Mask(dx, dy int, src *Image) {
	if tgt.Format == Invalid || src.Format == Invalid {
		return
	}
	x0, y0, x1, y1 := clip(tgt, dx, dy, src.Width, src.Height)
	switch tgt.Format {
	case Gray, RGB:
		maskWithGray(tgt, dx, dy, src, x0, y0, x1, y1)
	case SeparateRGB:
		if src.Format == RGB {
			maskSeparateRGBWithRGB(tgt, dx, dy, src, x0, y0, x1, y1)
			return
		}
		// Gray or SeparateRGB mask: mask each plane against its own channel
		// (a Gray mask's single plane stands in for all three).
		for k := 0; k < 3; k++ {
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					s := maskChannelPlane(src, k, x-dx, y-dy)
					if s.Y == 0 {
						continue
					}
					tgt.setPlaneAt(k, x, y, tgt.planeAt(k, x, y).Scale(s.X/s.Y))
				}
			}
		}
	}
}

// maskWithGray reduces src to Gray (no-op if it already is) and scales
// tgt's full pixel vector by the mask's normalized value, skipping
// zero-weight mask pixels entirely. Valid for Gray and RGB targets.
func maskWithGray(tgt *Image, dx, dy int, src *Image, x0, y0, x1, y1 int) {
	s, owned := asFormat(src, Gray)
	if owned {
		defer s.Deinit()
	}
	switch tgt.Format {
	case Gray:
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				m := s.PixelGray(x-dx, y-dy)
				if m.Y == 0 {
					continue
				}
				tgt.SetPixelGray(x, y, tgt.PixelGray(x, y).Scale(m.X/m.Y))
			}
		}
	case RGB:
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				m := s.PixelGray(x-dx, y-dy)
				if m.Y == 0 {
					continue
				}
				tgt.SetPixelRGB(x, y, tgt.PixelRGB(x, y).Scale(m.X/m.Y))
			}
		}
	}
}

// maskChannelPlane returns the Gray-shaped pixel of src's plane k (0=R,
// 1=G, 2=B): the matching plane for a SeparateRGB mask, or the single
// shared plane for a Gray mask.
func maskChannelPlane(src *Image, k, x, y int) vec.Vec2 {
	if src.Format == SeparateRGB {
		return src.planeAt(k, x, y)
	}
	return src.PixelGray(x, y)
}

// maskSeparateRGBWithRGB applies an RGB mask to a SeparateRGB target
// channelwise, using the mask's single shared weight for the skip guard
// and the division, per SImage_mask.c's maskSeparateRGB_with_RGB.
func maskSeparateRGBWithRGB(tgt *Image, dx, dy int, src *Image, x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sp := src.PixelRGB(x-dx, y-dy)
			if sp.W == 0 {
				continue
			}
			r, g, b := sp.X/sp.W, sp.Y/sp.W, sp.Z/sp.W
			tgt.setPlaneAt(0, x, y, tgt.planeAt(0, x, y).Scale(r))
			tgt.setPlaneAt(1, x, y, tgt.planeAt(1, x, y).Scale(g))
			tgt.setPlaneAt(2, x, y, tgt.planeAt(2, x, y).Scale(b))
		}
	}
}

// AddConst/SubConst add or subtract a constant from the value channel(s),
// preserving weight.
func (img *Image) AddConst(c float32)  { img.scalarOp(func(v float32) float32 { return v + c }, false) }
func (img *Image) SubConst(c float32)  { img.scalarOp(func(v float32) float32 { return v - c }, false) }
func (img *Image) MulConst(c float32)  { img.scalarOp(func(v float32) float32 { return v * c }, true) }
func (img *Image) DivConst(c float32)  { img.scalarOp(func(v float32) float32 { return v / c }, true) }
func (img *Image) MulWeight(c float32) { img.weightOp(func(w float32) float32 { return w * c }) }

// AddConstRGB/etc. are aliases of AddConst/etc.: scalarOp/weightOp already
// dispatch on format, so on an RGB image they act on the three color
// channels, and on the weight exactly as the plain forms do.
func (img *Image) AddConstRGB(c float32)  { img.AddConst(c) }
func (img *Image) SubConstRGB(c float32)  { img.SubConst(c) }
func (img *Image) MulConstRGB(c float32)  { img.MulConst(c) }
func (img *Image) DivConstRGB(c float32)  { img.DivConst(c) }
func (img *Image) MulWeightRGB(c float32) { img.MulWeight(c) }

func (img *Image) scalarOp(f func(float32) float32, touchesWeight bool) {
	switch img.Format {
	case Gray, SeparateRGB:
		for i := 0; i < len(img.Data); i += 2 {
			img.Data[i] = f(img.Data[i])
			if touchesWeight {
				img.Data[i+1] = f(img.Data[i+1])
			}
		}
	case RGB:
		for i := 0; i < len(img.Data); i += 4 {
			img.Data[i] = f(img.Data[i])
			img.Data[i+1] = f(img.Data[i+1])
			img.Data[i+2] = f(img.Data[i+2])
			if touchesWeight {
				img.Data[i+3] = f(img.Data[i+3])
			}
		}
	}
}

func (img *Image) weightOp(f func(float32) float32) {
	switch img.Format {
	case Gray, SeparateRGB:
		for i := 1; i < len(img.Data); i += 2 {
			img.Data[i] = f(img.Data[i])
		}
	case RGB:
		for i := 3; i < len(img.Data); i += 4 {
			img.Data[i] = f(img.Data[i])
		}
	}
}

// Invert replaces each channel's value with weight^2/value (guarding
// value==0). This is not a color negative; it is the weighted-pixel
// algebra's notion of channel inversion.
func (img *Image) Invert() {
	switch img.Format {
	case Gray, SeparateRGB:
		for i := 0; i < len(img.Data); i += 2 {
			v, w := img.Data[i], img.Data[i+1]
			if v != 0 {
				img.Data[i] = w * w / v
			}
		}
	case RGB:
		for i := 0; i < len(img.Data); i += 4 {
			w := img.Data[i+3]
			for c := 0; c < 3; c++ {
				v := img.Data[i+c]
				if v != 0 {
					img.Data[i+c] = w * w / v
				}
			}
		}
	}
}
