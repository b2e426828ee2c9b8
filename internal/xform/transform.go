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

// Package xform implements the tagged coordinate transform used throughout
// the alignment core: Drop, Identity, Shift and Linear (rotation+uniform
// scale via complex multiplication). Ported from original_source's
// STransform_t / STransform.c, generalized from the teacher's 6-float
// affine matrix (internal/coord.go's Transform2D) to the spec's complex
// rot/shift payload.
package xform

import (
	"github.com/nightframe/align/internal/bbox"
	"github.com/nightframe/align/internal/vec"
)

// Tag identifies which variant of Transform is populated.
type Tag int

const (
	Drop Tag = iota
	Identity
	Shift
	Linear
)

// Transform is a tagged union: {Drop, Identity, Shift, Linear}. Rot and
// Shift are only meaningful for the Linear and Shift tags respectively,
// but are always present so the zero value composes safely.
type Transform struct {
	Tag   Tag
	Rot   vec.Vec2 // complex rotation+scale, meaningful for Linear
	Shift vec.Vec2 // translation, meaningful for Shift and Linear
}

// NewIdentity returns the identity transform.
func NewIdentity() Transform { return Transform{Tag: Identity} }

// NewDrop returns the distinguished "reject this frame" transform.
func NewDrop() Transform { return Transform{Tag: Drop} }

// NewShift returns a pure translation transform.
func NewShift(shift vec.Vec2) Transform { return Transform{Tag: Shift, Shift: shift} }

// NewLinear returns a rotation+scale+translation transform.
func NewLinear(rot, shift vec.Vec2) Transform { return Transform{Tag: Linear, Rot: rot, Shift: shift} }

// Apply maps v through the transform. A Drop transform is treated as
// identity here for safety, per spec.md 4.2; callers are responsible for
// skipping Drop frames before ever calling Apply on them.
func (t Transform) Apply(v vec.Vec2) vec.Vec2 {
	switch t.Tag {
	case Linear:
		return v.ComplexMul(t.Rot).Add(t.Shift)
	case Shift:
		return v.Add(t.Shift)
	default: // Drop, Identity
		return v
	}
}

// Inverse returns the inverse transform. Identity and Drop are self-inverse.
func (t Transform) Inverse() Transform {
	switch t.Tag {
	case Shift:
		return Transform{Tag: Shift, Shift: vec.Vec2{X: -t.Shift.X, Y: -t.Shift.Y}}
	case Linear:
		rotInv := t.Rot.ComplexInv()
		d := t.Shift.ComplexDiv(t.Rot)
		return Transform{
			Tag:   Linear,
			Rot:   rotInv,
			Shift: vec.Vec2{X: -d.X, Y: -d.Y},
		}
	default: // Drop, Identity
		return t
	}
}

// Compose returns the transform equivalent to applying tr1 then tr2, i.e.
// (tr2 o tr1)(v) == tr2(tr1(v)). Drop is absorbing in both positions;
// Identity is a unit on both sides.
func Compose(tr2, tr1 Transform) Transform {
	if tr2.Tag == Drop || tr1.Tag == Drop {
		return Transform{Tag: Drop}
	}
	if tr2.Tag == Identity {
		return tr1
	}
	switch tr2.Tag {
	case Shift:
		return composeWithShift(tr2.Shift, tr1)
	case Linear:
		return composeWithLinear(tr2.Rot, tr2.Shift, tr1)
	default:
		return tr1
	}
}

func composeWithShift(shift vec.Vec2, tr Transform) Transform {
	switch tr.Tag {
	case Identity:
		return Transform{Tag: Shift, Shift: shift}
	case Shift:
		return Transform{Tag: Shift, Shift: shift.Add(tr.Shift)}
	case Linear:
		return Transform{Tag: Linear, Rot: tr.Rot, Shift: tr.Shift.Add(shift)}
	default:
		return tr
	}
}

func composeWithLinear(rot, shift vec.Vec2, tr Transform) Transform {
	switch tr.Tag {
	case Identity:
		return Transform{Tag: Linear, Rot: rot, Shift: shift}
	case Shift:
		return Transform{Tag: Linear, Rot: rot, Shift: rot.ComplexMul(tr.Shift).Add(shift)}
	case Linear:
		return Transform{
			Tag:   Linear,
			Rot:   rot.ComplexMul(tr.Rot),
			Shift: rot.ComplexMul(tr.Shift).Add(shift),
		}
	default:
		return tr
	}
}

// BoundingBox maps bb's four corners through t and returns their
// axis-aligned envelope. An empty bb or a Drop transform yields an empty
// box.
func BoundingBox(t Transform, bb bbox.Box) bbox.Box {
	if t.Tag == Drop || bb.IsEmpty() {
		return bbox.Empty()
	}
	corners := [4]vec.Vec2{
		{X: bb.MinX, Y: bb.MinY},
		{X: bb.MaxX, Y: bb.MinY},
		{X: bb.MinX, Y: bb.MaxY},
		{X: bb.MaxX, Y: bb.MaxY},
	}
	out := bbox.Empty()
	for _, c := range corners {
		p := t.Apply(c)
		out = bbox.Union(out, bbox.Box{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y})
	}
	return out
}
