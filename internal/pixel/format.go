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

// Package pixel implements the weighted-pixel image model: a raw raster
// whose every pixel is a vector of (channel values..., weight), so that
// stacking frames is a single elementwise vector add that accumulates a
// running weighted mean. Ported from original_source's SImage_t and
// SImage.c/SImage_*.c, generalized from the teacher's single-plane
// []float32 FITSImage (internal/fits/fits.go) to the spec's three pixel
// formats.
package pixel

// Format identifies the shape and channel layout of an Image's pixels.
type Format int

const (
	Invalid Format = iota
	Gray
	RGB
	SeparateRGB
)

// String renders the format name, for logging.
func (f Format) String() string {
	switch f {
	case Gray:
		return "Gray"
	case RGB:
		return "RGB"
	case SeparateRGB:
		return "SeparateRGB"
	default:
		return "Invalid"
	}
}

// Promote returns the richer of a and b, in the monotone order
// Invalid < Gray < RGB < SeparateRGB, matching the enum ordinal order the
// SIWW header and the orchestrator's running output-format promotion both
// rely on.
func Promote(a, b Format) Format {
	if b > a {
		return b
	}
	return a
}
