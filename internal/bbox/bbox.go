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

// Package bbox provides the minimal axis-aligned bounding box arithmetic
// the transform package needs to accumulate an output canvas size. Full
// BoundingBox/Vec helper arithmetic is out of scope per the spec; this is
// the thin sliver Transform.BoundingBox depends on.
package bbox

// Box is an axis-aligned float bounding box. MinX > MaxX marks it empty;
// emptiness checking ignores the Y coordinates, matching SBoundingBox.h.
type Box struct {
	MinX, MinY, MaxX, MaxY float32
}

// Empty returns the canonical empty box.
func Empty() Box {
	return Box{MinX: 1, MaxX: 0}
}

// IsEmpty reports whether b is the empty box.
func (b Box) IsEmpty() bool { return b.MinX > b.MaxX }

// Union returns the smallest box containing both a and b. An empty operand
// is the identity element.
func Union(a, b Box) Box {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	return Box{
		MinX: minf(a.MinX, b.MinX),
		MinY: minf(a.MinY, b.MinY),
		MaxX: maxf(a.MaxX, b.MaxX),
		MaxY: maxf(a.MaxY, b.MaxY),
	}
}

// Intersection returns the overlap of a and b. An empty operand makes the
// result empty (absorbing).
func Intersection(a, b Box) Box {
	r := Box{
		MinX: maxf(a.MinX, b.MinX),
		MinY: maxf(a.MinY, b.MinY),
		MaxX: minf(a.MaxX, b.MaxX),
		MaxY: minf(a.MaxY, b.MaxY),
	}
	if r.MinY > r.MaxY {
		return Empty()
	}
	return r
}

func minf(x, y float32) float32 {
	if x < y {
		return x
	}
	return y
}

func maxf(x, y float32) float32 {
	if x < y {
		return y
	}
	return x
}
