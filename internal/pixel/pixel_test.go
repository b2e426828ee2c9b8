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
	"testing"

	"github.com/nightframe/align/internal/vec"
	"github.com/nightframe/align/internal/xform"
)

func approxEq(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

// TestScenarioAIdentityStacking reproduces the literal numeric example:
// stacking the same 2x2 Gray frame onto itself twice into a cleared
// target doubles both value and weight at every pixel.
func TestScenarioAIdentityStacking(t *testing.T) {
	frame := New(2, 2, Gray)
	vals := []float32{0.1, 0.2, 0.3, 0.4}
	i := 0
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			frame.SetPixelGray(x, y, vec.Vec2{X: vals[i], Y: 1})
			i++
		}
	}

	out := New(2, 2, Gray)
	out.Clear()
	out.Stack(0, 0, frame)
	out.Stack(0, 0, frame)

	i = 0
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			got := out.PixelGray(x, y)
			want := vec.Vec2{X: 2 * vals[i], Y: 2}
			if !approxEq(got.X, want.X, 1e-6) || !approxEq(got.Y, want.Y, 1e-6) {
				t.Fatalf("pixel(%d,%d) = %v, want %v", x, y, got, want)
			}
			i++
		}
	}
}

func TestGrayRGBRoundTrip(t *testing.T) {
	gray := New(2, 2, Gray)
	gray.SetPixelGray(0, 0, vec.Vec2{X: 0.25, Y: 1})
	gray.SetPixelGray(1, 0, vec.Vec2{X: 0.5, Y: 1})
	gray.SetPixelGray(0, 1, vec.Vec2{X: 0.75, Y: 1})
	gray.SetPixelGray(1, 1, vec.Vec2{X: 1.0, Y: 1})

	rgb := gray.ToFormat(RGB)
	back := rgb.ToFormat(Gray)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			want := gray.PixelGray(x, y)
			got := back.PixelGray(x, y)
			if !approxEq(got.X, want.X, 1e-5) || !approxEq(got.Y, want.Y, 1e-5) {
				t.Fatalf("pixel(%d,%d) round trip = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestGraySeparateRGBRoundTrip(t *testing.T) {
	gray := New(2, 2, Gray)
	gray.SetPixelGray(0, 0, vec.Vec2{X: 0.1, Y: 1})
	gray.SetPixelGray(1, 0, vec.Vec2{X: 0.2, Y: 1})
	gray.SetPixelGray(0, 1, vec.Vec2{X: 0.3, Y: 1})
	gray.SetPixelGray(1, 1, vec.Vec2{X: 0.4, Y: 1})

	sep := gray.ToFormat(SeparateRGB)
	back := sep.ToFormat(Gray)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			want := gray.PixelGray(x, y)
			got := back.PixelGray(x, y)
			if !approxEq(got.X, want.X, 1e-5) || !approxEq(got.Y, want.Y, 1e-5) {
				t.Fatalf("pixel(%d,%d) round trip = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestPixelGrayOutOfBounds(t *testing.T) {
	img := New(4, 4, Gray)
	img.Clear()
	if got := img.PixelGray(-1, 0); got != (vec.Vec2{}) {
		t.Fatalf("PixelGray(-1,0) = %v, want zero pixel", got)
	}
	if got := img.PixelGray(4, 0); got != (vec.Vec2{}) {
		t.Fatalf("PixelGray(4,0) = %v, want zero pixel", got)
	}
}

func TestSubpixelGrayAtGridAlignedCoords(t *testing.T) {
	img := New(3, 3, Gray)
	v := float32(0.1)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetPixelGray(x, y, vec.Vec2{X: v, Y: 1})
			v += 0.1
		}
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want := img.PixelGray(x, y)
			got := img.SubpixelGray(float32(x), float32(y))
			if !approxEq(got.X, want.X, 1e-4) || !approxEq(got.Y, want.Y, 1e-4) {
				t.Fatalf("SubpixelGray(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestNewWidthExceedingMaxDimIsInvalid(t *testing.T) {
	img := New(MaxDim+1, 10, Gray)
	if img.Format != Invalid {
		t.Fatalf("New(MaxDim+1,...) format = %v, want Invalid", img.Format)
	}
}

func TestClearBlackIdempotent(t *testing.T) {
	img := New(2, 2, Gray)
	img.ClearBlack()
	first := append([]float32(nil), img.Data...)
	img.ClearBlack()
	for i := range first {
		if img.Data[i] != first[i] {
			t.Fatalf("ClearBlack not idempotent at %d: %f != %f", i, img.Data[i], first[i])
		}
	}
	if got := img.PixelGray(0, 0); got.X != 0 || got.Y != 1 {
		t.Fatalf("ClearBlack pixel = %v, want (0,1)", got)
	}
}

func TestClearWhiteIdempotent(t *testing.T) {
	img := New(2, 2, Gray)
	img.ClearWhite()
	first := append([]float32(nil), img.Data...)
	img.ClearWhite()
	for i := range first {
		if img.Data[i] != first[i] {
			t.Fatalf("ClearWhite not idempotent at %d: %f != %f", i, img.Data[i], first[i])
		}
	}
	if got := img.PixelGray(0, 0); got.X != 1 || got.Y != 1 {
		t.Fatalf("ClearWhite pixel = %v, want (1,1)", got)
	}
}

// TestScaleDownPreservesMass checks testable property #8: summing value
// and weight over the whole image is invariant under ScaleDown, since
// every source pixel lands in exactly one destination tile.
func TestScaleDownPreservesMass(t *testing.T) {
	img := New(5, 5, Gray)
	v := float32(0)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.SetPixelGray(x, y, vec.Vec2{X: v, Y: 1})
			v += 0.01
		}
	}

	var wantSumV, wantSumW float64
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			p := img.PixelGray(x, y)
			wantSumV += float64(p.X)
			wantSumW += float64(p.Y)
		}
	}

	down := img.ScaleDown(2)
	var gotSumV, gotSumW float64
	for y := 0; y < down.Height; y++ {
		for x := 0; x < down.Width; x++ {
			p := down.PixelGray(x, y)
			gotSumV += float64(p.X)
			gotSumW += float64(p.Y)
		}
	}

	if math.Abs(gotSumV-wantSumV) > 1e-3 {
		t.Fatalf("ScaleDown value mass = %f, want %f", gotSumV, wantSumV)
	}
	if math.Abs(gotSumW-wantSumW) > 1e-3 {
		t.Fatalf("ScaleDown weight mass = %f, want %f", gotSumW, wantSumW)
	}
}

func grayImage(vals [][2]float32, w, h int) *Image {
	img := New(w, h, Gray)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetPixelGray(x, y, vec.Vec2{X: vals[i][0], Y: vals[i][1]})
			i++
		}
	}
	return img
}

func TestAddScalesBySourceNormalizedValue(t *testing.T) {
	tgt := grayImage([][2]float32{{1, 2}}, 1, 1)
	src := grayImage([][2]float32{{3, 4}}, 1, 1) // normalized 0.75
	tgt.Add(0, 0, src)
	got := tgt.PixelGray(0, 0)
	// tgt.value += src.value * tgt.weight / src.weight = 1 + 3*2/4 = 2.5, weight unchanged
	if !approxEq(got.X, 2.5, 1e-5) || got.Y != 2 {
		t.Fatalf("Add result = %v, want (2.5, 2)", got)
	}
}

func TestAddSkipsZeroWeightSource(t *testing.T) {
	tgt := grayImage([][2]float32{{1, 2}}, 1, 1)
	src := grayImage([][2]float32{{3, 0}}, 1, 1)
	tgt.Add(0, 0, src)
	got := tgt.PixelGray(0, 0)
	if got.X != 1 || got.Y != 2 {
		t.Fatalf("Add with zero-weight src = %v, want tgt untouched (1, 2)", got)
	}
}

func TestSubIsAddInverse(t *testing.T) {
	tgt := grayImage([][2]float32{{1, 2}}, 1, 1)
	src := grayImage([][2]float32{{3, 4}}, 1, 1)
	tgt.Add(0, 0, src)
	tgt.Sub(0, 0, src)
	got := tgt.PixelGray(0, 0)
	if !approxEq(got.X, 1, 1e-5) || got.Y != 2 {
		t.Fatalf("Add then Sub = %v, want back to (1, 2)", got)
	}
}

func TestMulByNormalizedValue(t *testing.T) {
	tgt := grayImage([][2]float32{{2, 5}}, 1, 1)
	src := grayImage([][2]float32{{3, 2}}, 1, 1) // normalized 1.5
	tgt.Mul(0, 0, src)
	got := tgt.PixelGray(0, 0)
	if !approxEq(got.X, 3, 1e-5) || got.Y != 5 {
		t.Fatalf("Mul result = %v, want (3, 5)", got)
	}
}

func TestDivSkipsZeroValueOrWeightSource(t *testing.T) {
	tgt := grayImage([][2]float32{{6, 5}}, 1, 1)
	srcZeroVal := grayImage([][2]float32{{0, 2}}, 1, 1)
	tgt.Div(0, 0, srcZeroVal)
	if got := tgt.PixelGray(0, 0); got.X != 6 || got.Y != 5 {
		t.Fatalf("Div with zero src value = %v, want tgt untouched (6, 5)", got)
	}

	src := grayImage([][2]float32{{3, 2}}, 1, 1) // normalized 1.5
	tgt.Div(0, 0, src)
	got := tgt.PixelGray(0, 0)
	if !approxEq(got.X, 4, 1e-5) || got.Y != 5 {
		t.Fatalf("Div result = %v, want (4, 5)", got)
	}
}

// TestMaskSkipsZeroWeightMaskPixel guards against the bug where a
// zero-weight mask pixel zeroed out tgt instead of leaving it alone, per
// SImage_mask.c's "if (pix[...]==0) continue" guard in every branch.
func TestMaskSkipsZeroWeightMaskPixel(t *testing.T) {
	tgt := grayImage([][2]float32{{5, 7}, {5, 7}}, 2, 1)
	mask := grayImage([][2]float32{{0.5, 1}, {9, 0}}, 2, 1)
	tgt.Mask(0, 0, mask)

	if got := tgt.PixelGray(0, 0); !approxEq(got.X, 2.5, 1e-5) || !approxEq(got.Y, 3.5, 1e-5) {
		t.Fatalf("masked pixel = %v, want (2.5, 3.5)", got)
	}
	if got := tgt.PixelGray(1, 0); got.X != 5 || got.Y != 7 {
		t.Fatalf("zero-weight-masked pixel = %v, want untouched (5, 7)", got)
	}
}

func TestMaskGrayOnRGBBroadcasts(t *testing.T) {
	tgt := New(1, 1, RGB)
	tgt.SetPixelRGB(0, 0, vec.Vec4{X: 2, Y: 4, Z: 6, W: 2})
	mask := New(1, 1, Gray)
	mask.SetPixelGray(0, 0, vec.Vec2{X: 1, Y: 2}) // normalized 0.5

	tgt.Mask(0, 0, mask)
	got := tgt.PixelRGB(0, 0)
	want := vec.Vec4{X: 1, Y: 2, Z: 3, W: 1}
	if got != want {
		t.Fatalf("Mask(Gray on RGB) = %v, want %v", got, want)
	}
}

// TestMaskRGBOnRGBBroadcastsUniformly confirms the maintainer-required fix:
// an RGB mask applied to an RGB target is reduced to Gray first and
// applied as a single uniform scalar across all four components
// (SImage_mask.c's SFmt_RGB branch routes any non-Gray mask through
// maskWithGray after SImage_toFormat_at(&mask2, mask, SFmt_Gray)), not
// scaled channelwise with an invented mean-weight formula.
func TestMaskRGBOnRGBBroadcastsUniformly(t *testing.T) {
	tgt := New(1, 1, RGB)
	tgt.SetPixelRGB(0, 0, vec.Vec4{X: 2, Y: 4, Z: 6, W: 2})
	mask := New(1, 1, RGB)
	mask.SetPixelRGB(0, 0, vec.Vec4{X: 2, Y: 6, Z: 10, W: 4}) // Gray-equiv normalized (2+6+10)/3/4 = 1.5

	tgt.Mask(0, 0, mask)
	got := tgt.PixelRGB(0, 0)
	want := vec.Vec4{X: 3, Y: 6, Z: 9, W: 3}
	if !approxEq(got.X, want.X, 1e-4) || !approxEq(got.Y, want.Y, 1e-4) ||
		!approxEq(got.Z, want.Z, 1e-4) || !approxEq(got.W, want.W, 1e-4) {
		t.Fatalf("Mask(RGB on RGB) = %v, want uniform scale %v", got, want)
	}
}

func TestMaskRGBOnSeparateRGBAppliesChannelwise(t *testing.T) {
	tgt := New(1, 1, SeparateRGB)
	tgt.setPlaneAt(0, 0, 0, vec.Vec2{X: 2, Y: 1})
	tgt.setPlaneAt(1, 0, 0, vec.Vec2{X: 4, Y: 1})
	tgt.setPlaneAt(2, 0, 0, vec.Vec2{X: 6, Y: 1})
	mask := New(1, 1, RGB)
	mask.SetPixelRGB(0, 0, vec.Vec4{X: 2, Y: 3, Z: 4, W: 2}) // channelwise 1, 1.5, 2

	tgt.Mask(0, 0, mask)
	if got := tgt.planeAt(0, 0, 0); !approxEq(got.X, 2, 1e-5) {
		t.Fatalf("R plane = %v, want value 2", got)
	}
	if got := tgt.planeAt(1, 0, 0); !approxEq(got.X, 6, 1e-5) {
		t.Fatalf("G plane = %v, want value 6", got)
	}
	if got := tgt.planeAt(2, 0, 0); !approxEq(got.X, 12, 1e-5) {
		t.Fatalf("B plane = %v, want value 12", got)
	}
}

// TestMaskSeparateRGBOnSeparateRGBUsesPerChannelWeight ensures each plane
// is masked against its own independent mask weight rather than a shared
// mean weight.
func TestMaskSeparateRGBOnSeparateRGBUsesPerChannelWeight(t *testing.T) {
	tgt := New(1, 1, SeparateRGB)
	tgt.setPlaneAt(0, 0, 0, vec.Vec2{X: 10, Y: 1})
	tgt.setPlaneAt(1, 0, 0, vec.Vec2{X: 10, Y: 1})
	tgt.setPlaneAt(2, 0, 0, vec.Vec2{X: 10, Y: 1})

	mask := New(1, 1, SeparateRGB)
	mask.setPlaneAt(0, 0, 0, vec.Vec2{X: 4, Y: 2}) // normalized 2
	mask.setPlaneAt(1, 0, 0, vec.Vec2{X: 0, Y: 0}) // zero weight: skip
	mask.setPlaneAt(2, 0, 0, vec.Vec2{X: 1, Y: 2}) // normalized 0.5

	tgt.Mask(0, 0, mask)
	if got := tgt.planeAt(0, 0, 0); !approxEq(got.X, 20, 1e-5) {
		t.Fatalf("R plane = %v, want value 20", got)
	}
	if got := tgt.planeAt(1, 0, 0); got.X != 10 {
		t.Fatalf("G plane = %v, want untouched value 10", got)
	}
	if got := tgt.planeAt(2, 0, 0); !approxEq(got.X, 5, 1e-5) {
		t.Fatalf("B plane = %v, want value 5", got)
	}
}

func TestInvertGuardsZeroValue(t *testing.T) {
	img := grayImage([][2]float32{{2, 4}, {0, 3}}, 2, 1)
	img.Invert()
	if got := img.PixelGray(0, 0); !approxEq(got.X, 8, 1e-5) || got.Y != 4 {
		t.Fatalf("Invert(2,4) = %v, want value=16/2=8", got)
	}
	if got := img.PixelGray(1, 0); got.X != 0 || got.Y != 3 {
		t.Fatalf("Invert with zero value = %v, want value untouched at 0", got)
	}
}

func TestConstOpsPreserveOrTouchWeight(t *testing.T) {
	add := grayImage([][2]float32{{1, 2}}, 1, 1)
	add.AddConst(3)
	if got := add.PixelGray(0, 0); got.X != 4 || got.Y != 2 {
		t.Fatalf("AddConst = %v, want (4, 2) (weight preserved)", got)
	}

	sub := grayImage([][2]float32{{5, 2}}, 1, 1)
	sub.SubConst(2)
	if got := sub.PixelGray(0, 0); got.X != 3 || got.Y != 2 {
		t.Fatalf("SubConst = %v, want (3, 2) (weight preserved)", got)
	}

	mul := grayImage([][2]float32{{2, 2}}, 1, 1)
	mul.MulConst(3)
	if got := mul.PixelGray(0, 0); got.X != 6 || got.Y != 6 {
		t.Fatalf("MulConst = %v, want (6, 6) (weight also scaled)", got)
	}

	div := grayImage([][2]float32{{8, 4}}, 1, 1)
	div.DivConst(2)
	if got := div.PixelGray(0, 0); got.X != 4 || got.Y != 2 {
		t.Fatalf("DivConst = %v, want (4, 2) (weight also scaled)", got)
	}

	mw := grayImage([][2]float32{{1, 2}}, 1, 1)
	mw.MulWeight(3)
	if got := mw.PixelGray(0, 0); got.X != 1 || got.Y != 6 {
		t.Fatalf("MulWeight = %v, want (1, 6) (value untouched)", got)
	}
}

// TestStackTrIdentityMatchesStack checks that StackTr under an identity
// transform degenerates to a plain Stack at zero offset.
func TestStackTrIdentityMatchesStack(t *testing.T) {
	src := grayImage([][2]float32{{0.1, 1}, {0.2, 1}, {0.3, 1}, {0.4, 1}}, 2, 2)

	tgtA := New(2, 2, Gray)
	tgtA.Clear()
	tgtA.Stack(0, 0, src)

	tgtB := New(2, 2, Gray)
	tgtB.Clear()
	tgtB.StackTr(xform.NewIdentity(), src)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			a, b := tgtA.PixelGray(x, y), tgtB.PixelGray(x, y)
			if !approxEq(a.X, b.X, 1e-4) || !approxEq(a.Y, b.Y, 1e-4) {
				t.Fatalf("pixel(%d,%d): Stack = %v, StackTr(Identity) = %v", x, y, a, b)
			}
		}
	}
}

func TestStackTrDropIsNoOp(t *testing.T) {
	src := grayImage([][2]float32{{0.5, 1}}, 1, 1)
	tgt := New(1, 1, Gray)
	tgt.Clear()
	tgt.StackTr(xform.NewDrop(), src)
	if got := tgt.PixelGray(0, 0); got.X != 0 || got.Y != 0 {
		t.Fatalf("StackTr(Drop) = %v, want no-op (0,0)", got)
	}
}

func TestStackTrInvShiftRoundTrip(t *testing.T) {
	src := grayImage([][2]float32{
		{0.1, 1}, {0.2, 1}, {0.3, 1},
		{0.4, 1}, {0.5, 1}, {0.6, 1},
		{0.7, 1}, {0.8, 1}, {0.9, 1},
	}, 3, 3)

	shift := xform.NewShift(vec.Vec2{X: 1, Y: 0})
	tgtA := New(3, 3, Gray)
	tgtA.Clear()
	tgtA.StackTr(shift, src)

	tgtB := New(3, 3, Gray)
	tgtB.Clear()
	tgtB.StackTrInv(shift.Inverse(), src)

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			a, b := tgtA.PixelGray(x, y), tgtB.PixelGray(x, y)
			if !approxEq(a.X, b.X, 1e-4) || !approxEq(a.Y, b.Y, 1e-4) {
				t.Fatalf("pixel(%d,%d): StackTr(shift) = %v, StackTrInv(shift.Inverse()) = %v", x, y, a, b)
			}
		}
	}
}
