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

package xform

import (
	"math"
	"testing"

	"github.com/nightframe/align/internal/bbox"
	"github.com/nightframe/align/internal/vec"
)

func approxVec(a, b vec.Vec2, eps float32) bool {
	return math.Abs(float64(a.X-b.X)) <= float64(eps) && math.Abs(float64(a.Y-b.Y)) <= float64(eps)
}

func TestShiftCompositionScenarioB(t *testing.T) {
	tr := Compose(NewShift(vec.Vec2{X: 3, Y: 4}), NewShift(vec.Vec2{X: -1, Y: 2}))
	if tr.Tag != Shift || tr.Shift != (vec.Vec2{X: 2, Y: 6}) {
		t.Fatalf("compose(Shift(3,4),Shift(-1,2)) = %v, want Shift(2,6)", tr)
	}
	got := tr.Apply(vec.Vec2{X: 1, Y: 1})
	want := vec.Vec2{X: 3, Y: 7}
	if got != want {
		t.Fatalf("apply = %v, want %v", got, want)
	}
}

func TestApplyInverseRoundTrip(t *testing.T) {
	trs := []Transform{
		NewIdentity(),
		NewShift(vec.Vec2{X: 5, Y: -3}),
		NewLinear(vec.Vec2{X: 0.5, Y: 0.2}, vec.Vec2{X: 1, Y: -2}),
	}
	v := vec.Vec2{X: 7, Y: -4}
	for _, tr := range trs {
		got := tr.Inverse().Apply(tr.Apply(v))
		if !approxVec(got, v, 1e-3) {
			t.Errorf("tr=%v: apply(inverse(tr),apply(tr,v)) = %v, want %v", tr, got, v)
		}
	}
}

func TestComposeMatchesSequentialApply(t *testing.T) {
	tr1 := NewLinear(vec.Vec2{X: 0, Y: 1}, vec.Vec2{X: 2, Y: 0})
	tr2 := NewLinear(vec.Vec2{X: 0.5, Y: 0}, vec.Vec2{X: 0, Y: 3})
	v := vec.Vec2{X: 1, Y: 1}

	composed := Compose(tr2, tr1).Apply(v)
	sequential := tr2.Apply(tr1.Apply(v))
	if !approxVec(composed, sequential, 1e-4) {
		t.Fatalf("compose(tr2,tr1)(v) = %v, want tr2(tr1(v)) = %v", composed, sequential)
	}
}

func TestDropAbsorbing(t *testing.T) {
	drop := NewDrop()
	id := NewIdentity()
	if Compose(drop, id).Tag != Drop {
		t.Fatal("compose(Drop, Identity) should be Drop")
	}
	if Compose(id, drop).Tag != Drop {
		t.Fatal("compose(Identity, Drop) should be Drop")
	}
}

func TestBoundingBoxEmptyAndDrop(t *testing.T) {
	bb := bbox.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	if got := BoundingBox(NewDrop(), bb); !got.IsEmpty() {
		t.Fatalf("BoundingBox(Drop, bb) = %v, want empty", got)
	}
	if got := BoundingBox(NewIdentity(), bbox.Empty()); !got.IsEmpty() {
		t.Fatalf("BoundingBox(tr, empty) = %v, want empty", got)
	}
}

func TestBoundingBoxLinear(t *testing.T) {
	bb := bbox.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 0}
	tr := NewLinear(vec.Vec2{X: 0, Y: 1}, vec.Vec2{X: 0, Y: 0}) // 90 degree rotation
	got := BoundingBox(tr, bb)
	want := bbox.Box{MinX: 0, MinY: 0, MaxX: 0, MaxY: 10}
	if !approxBox(got, want, 1e-3) {
		t.Fatalf("BoundingBox(rot90, %v) = %v, want %v", bb, got, want)
	}
}

func approxBox(a, b bbox.Box, eps float32) bool {
	return math.Abs(float64(a.MinX-b.MinX)) <= float64(eps) &&
		math.Abs(float64(a.MinY-b.MinY)) <= float64(eps) &&
		math.Abs(float64(a.MaxX-b.MaxX)) <= float64(eps) &&
		math.Abs(float64(a.MaxY-b.MaxY)) <= float64(eps)
}
