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

// Package siww reads and writes the fixed-layout SIWW binary dark-frame
// format: an 8-byte magic, a little-endian header, followed by raw
// little-endian float32 pixel data. Ported from
// original_source/src/SImage/SImage_SIWW.c.
package siww

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nightframe/align/internal/pixel"
)

const (
	magic        = "SPICAIWW"
	version      = 1
	headerSize   = 20
	maxFormatTag = int(pixel.SeparateRGB) // accept up to and including SeparateRGB, per spec.md section 6
)

type header struct {
	Magic      [8]byte
	Version    uint32
	HeaderSize uint16
	Format     uint16
	Width      uint16
	Height     uint16
}

// Load decodes a SIWW image from r. Any structural problem (bad magic,
// undersized header, out-of-range format tag, short data) yields an
// Invalid image rather than an error, matching the original's
// SImage_loadSIWW_at contract of always returning an image whose Format
// field tells the caller whether the load succeeded.
func Load(r io.Reader) *pixel.Image {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return pixel.New(0, 0, pixel.Invalid)
	}
	if !bytes.Equal(h.Magic[:], []byte(magic)) {
		return pixel.New(0, 0, pixel.Invalid)
	}
	if int(h.HeaderSize) < headerSize {
		return pixel.New(0, 0, pixel.Invalid)
	}
	if int(h.Format) > maxFormatTag {
		return pixel.New(0, 0, pixel.Invalid)
	}

	if extra := int(h.HeaderSize) - headerSize; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return pixel.New(0, 0, pixel.Invalid)
		}
	}

	img := pixel.New(int(h.Width), int(h.Height), pixel.Format(h.Format))
	if img.Format == pixel.Invalid {
		return img
	}
	if err := binary.Read(r, binary.LittleEndian, img.Data); err != nil {
		return pixel.New(0, 0, pixel.Invalid)
	}
	return img
}

// Save encodes img as a SIWW stream. Writing an Invalid image is an error.
func Save(w io.Writer, img *pixel.Image) error {
	if img.Format == pixel.Invalid {
		return fmt.Errorf("siww: cannot save an invalid image")
	}
	h := header{
		Version:    version,
		HeaderSize: headerSize,
		Format:     uint16(img.Format),
		Width:      uint16(img.Width),
		Height:     uint16(img.Height),
	}
	copy(h.Magic[:], magic)
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, img.Data)
}
