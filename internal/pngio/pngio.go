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

// Package pngio reads and writes 8/16-bit gray and RGB PNG frames into and
// out of the weighted-pixel image model, applying the normalization
// formulas of spec.md section 6. Grounded in the teacher's
// internal/fits/writetiff16.go, which builds a stdlib image.Image via
// image/color and hands it to a codec (x/image/tiff there, image/png
// here).
package pngio

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/nightframe/align/internal/pixel"
	"github.com/nightframe/align/internal/vec"
)

// Load decodes a PNG from r into a Gray or RGB weighted-pixel image with
// weight 1 everywhere. 8-bit byte b maps to (b+0.5)/256; 16-bit word w
// maps to (w+0.5)/65536.
func Load(r io.Reader) (*pixel.Image, error) {
	src, err := png.Decode(r)
	if err != nil {
		return pixel.New(0, 0, pixel.Invalid), err
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src.(type) {
	case *image.Gray, *image.Gray16:
		img := pixel.New(w, h, pixel.Gray)
		if img.Format == pixel.Invalid {
			return img, nil
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := grayLevel(src, bounds.Min.X+x, bounds.Min.Y+y)
				img.SetPixelGray(x, y, vec.Vec2{X: v, Y: 1})
			}
		}
		return img, nil
	default:
		img := pixel.New(w, h, pixel.RGB)
		if img.Format == pixel.Invalid {
			return img, nil
		}
		deep := false
		switch src.(type) {
		case *image.RGBA64, *image.NRGBA64:
			deep = true
		}
		level := func(c uint32) float32 {
			if deep {
				return (float32(c) + 0.5) / 65536
			}
			return (float32(c>>8) + 0.5) / 256
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r16, g16, b16, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				img.SetPixelRGB(x, y, vec.Vec4{
					X: level(r16),
					Y: level(g16),
					Z: level(b16),
					W: 1,
				})
			}
		}
		return img, nil
	}
}

func grayLevel(src image.Image, x, y int) float32 {
	if g16, ok := src.(*image.Gray16); ok {
		return (float32(g16.Gray16At(x, y).Y) + 0.5) / 65536
	}
	g := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
	return (float32(g.Y) + 0.5) / 256
}

// Save8 writes img as an 8-bit PNG, normalizing each channel by
// clamp(round(v*256), 0, 255) with weight applied as divisor.
func Save8(w io.Writer, img *pixel.Image) error {
	return save(w, img, 8)
}

// Save16 writes img as a 16-bit PNG, normalizing each channel by
// clamp(round(v*65536), 0, 65535) with weight applied as divisor.
func Save16(w io.Writer, img *pixel.Image) error {
	return save(w, img, 16)
}

func save(w io.Writer, img *pixel.Image, bits int) error {
	dst := buildImage(img, bits)
	return png.Encode(w, dst)
}

func buildImage(img *pixel.Image, bits int) image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)
	scale := float64(uint32(1) << uint(bits))

	clampRound := func(v float32) uint32 {
		s := math.Round(float64(v) * scale)
		if s < 0 {
			s = 0
		}
		if s > scale-1 {
			s = scale - 1
		}
		return uint32(s)
	}

	switch img.Format {
	case pixel.RGB, pixel.SeparateRGB:
		if bits == 16 {
			dst := image.NewRGBA64(rect)
			for y := 0; y < img.Height; y++ {
				for x := 0; x < img.Width; x++ {
					p := img.PixelRGB(x, y)
					r := clampRound(normalized(p.X, p.W))
					g := clampRound(normalized(p.Y, p.W))
					b := clampRound(normalized(p.Z, p.W))
					dst.SetRGBA64(x, y, color.RGBA64{uint16(r), uint16(g), uint16(b), 0xffff})
				}
			}
			return dst
		}
		dst := image.NewRGBA(rect)
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				p := img.PixelRGB(x, y)
				r := clampRound(normalized(p.X, p.W))
				g := clampRound(normalized(p.Y, p.W))
				b := clampRound(normalized(p.Z, p.W))
				dst.SetRGBA(x, y, color.RGBA{uint8(r), uint8(g), uint8(b), 0xff})
			}
		}
		return dst
	default:
		if bits == 16 {
			dst := image.NewGray16(rect)
			for y := 0; y < img.Height; y++ {
				for x := 0; x < img.Width; x++ {
					p := img.PixelGray(x, y)
					v := clampRound(normalized(p.X, p.Y))
					dst.SetGray16(x, y, color.Gray16{uint16(v)})
				}
			}
			return dst
		}
		dst := image.NewGray(rect)
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				p := img.PixelGray(x, y)
				v := clampRound(normalized(p.X, p.Y))
				dst.SetGray(x, y, color.Gray{uint8(v)})
			}
		}
		return dst
	}
}

func normalized(value, weight float32) float32 {
	if weight == 0 {
		return 0
	}
	return value / weight
}
