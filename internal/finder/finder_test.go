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

package finder

import (
	"math"
	"testing"

	"github.com/valyala/fastrand"

	"github.com/nightframe/align/internal/pixel"
	"github.com/nightframe/align/internal/vec"
)

// TestFindRecoversSyntheticGaussian is scenario E: a single Gaussian star
// of known position, brightness and bias, rendered onto a 21x21 frame
// with a little zero-mean noise, should be recovered close to its true
// parameters.
func TestFindRecoversSyntheticGaussian(t *testing.T) {
	const (
		w, h       = 21, 21
		sigma      = 3.0
		brightness = 0.5
		bias       = 0.1
		trueX      = 10.0
		trueY      = 10.0
		noiseAmp   = 0.01
	)

	img := pixel.New(w, h, pixel.Gray)
	rng := fastrand.RNG{}
	for y := 0; y < h; y++ {
		for x := 0; x < h; x++ {
			dx, dy := float64(x)-trueX, float64(y)-trueY
			g := brightness*math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma)) + bias
			noise := (float64(rng.Uint32n(20001))/20000 - 0.5) * 2 * noiseAmp
			img.SetPixelGray(x, y, vec.Vec2{X: float32(g + noise), Y: 1})
		}
	}

	cfg := DefaultConfig()
	cfg.Sigma = sigma
	cfg.FitSteps = 30
	set := Find(cfg, img)

	if set.Len() == 0 {
		t.Fatal("Find found no stars in synthetic frame")
	}
	best := set.Stars[0]

	if d := math.Hypot(float64(best.Pos.X)-trueX, float64(best.Pos.Y)-trueY); d > 0.5 {
		t.Fatalf("recovered position %v too far from true (%g,%g): dist=%g", best.Pos, trueX, trueY, d)
	}
	if math.Abs(float64(best.Brightness)-brightness) > 0.1*brightness {
		t.Fatalf("recovered brightness %g, want close to %g", best.Brightness, brightness)
	}
	if math.Abs(float64(best.Bias)-bias) > 0.1+0.1*bias {
		t.Fatalf("recovered bias %g, want close to %g", best.Bias, bias)
	}
}

func TestFindOnInvalidImageReturnsEmpty(t *testing.T) {
	img := pixel.New(0, 0, pixel.Invalid)
	set := Find(DefaultConfig(), img)
	if set.Len() != 0 {
		t.Fatalf("Find on invalid image returned %d stars, want 0", set.Len())
	}
}
