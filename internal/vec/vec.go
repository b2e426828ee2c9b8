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

// Package vec holds the 2D/4D floating point vector algebra shared by the
// pixel, transform, and star packages. Vec2 additionally carries complex
// number semantics, backed directly by Go's complex128 so that rotation,
// scale, inverse and composition fall out of native complex arithmetic
// instead of a hand-rolled (re, im) pair -- see STransform.c and SVec.h
// in the original source for the component-order pitfalls that approach
// invites.
package vec

import "math/cmplx"

// Vec2 is a 2-component float vector. Its real and imaginary interpretation
// (X=real, Y=imag) is used by the complex-valued operations below.
type Vec2 struct {
	X, Y float32
}

// Vec4 is a 4-component float vector, used for RGB+weight pixels.
type Vec4 struct {
	X, Y, Z, W float32
}

// NewVec2 builds a Vec2 from components.
func NewVec2(x, y float32) Vec2 { return Vec2{x, y} }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

// Mul is elementwise multiplication, not complex multiplication.
func (a Vec2) Mul(b Vec2) Vec2 { return Vec2{a.X * b.X, a.Y * b.Y} }

// Div is elementwise division, not complex division.
func (a Vec2) Div(b Vec2) Vec2 { return Vec2{a.X / b.X, a.Y / b.Y} }

func (a Vec2) Scale(s float32) Vec2 { return Vec2{a.X * s, a.Y * s} }

// LengthSq returns the squared Euclidean length |a|^2.
func (a Vec2) LengthSq() float32 { return a.X*a.X + a.Y*a.Y }

// DistSq returns the squared Euclidean distance between a and b.
func (a Vec2) DistSq(b Vec2) float32 { return a.Sub(b).LengthSq() }

// complex128 <-> Vec2, component order is always (real, imag).
func (a Vec2) c() complex128    { return complex(float64(a.X), float64(a.Y)) }
func fromC(c complex128) Vec2   { return Vec2{float32(real(c)), float32(imag(c))} }

// Conj returns the complex conjugate (X, -Y).
func (a Vec2) Conj() Vec2 { return Vec2{a.X, -a.Y} }

// ComplexMul returns the complex product a*b.
func (a Vec2) ComplexMul(b Vec2) Vec2 { return fromC(a.c() * b.c()) }

// ComplexDiv returns the complex quotient a/b.
func (a Vec2) ComplexDiv(b Vec2) Vec2 { return fromC(a.c() / b.c()) }

// ComplexInv returns the complex inverse 1/a.
func (a Vec2) ComplexInv() Vec2 { return fromC(1 / a.c()) }

// ComplexAbsSq returns |a|^2 interpreting a as a complex number. Identical
// to LengthSq, provided for readability at call sites doing complex math.
func (a Vec2) ComplexAbsSq() float64 { return cmplx.Abs(a.c()) * cmplx.Abs(a.c()) }

func (a Vec4) Add(b Vec4) Vec4 {
	return Vec4{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W}
}
func (a Vec4) Sub(b Vec4) Vec4 {
	return Vec4{a.X - b.X, a.Y - b.Y, a.Z - b.Z, a.W - b.W}
}
func (a Vec4) Mul(b Vec4) Vec4 {
	return Vec4{a.X * b.X, a.Y * b.Y, a.Z * b.Z, a.W * b.W}
}
func (a Vec4) Scale(s float32) Vec4 {
	return Vec4{a.X * s, a.Y * s, a.Z * s, a.W * s}
}
