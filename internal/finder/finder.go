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

// Package finder locates star candidates on a scaled-down image and
// refines each by iterative Gaussian fit. Ported from
// original_source/src/SStarFinder.c; the teacher's own finder
// (internal/star/findstars.go) uses a center-of-mass/HFR approach instead
// of a Gaussian fit, so only its scan/candidate-gating structure carries
// over here, not its refinement algorithm. See SPEC_FULL.md section 4.3.
package finder

import (
	"math"

	"github.com/nightframe/align/internal/pixel"
	"github.com/nightframe/align/internal/starmodel"
	"github.com/nightframe/align/internal/vec"
)

// Config holds the finder's tunable parameters.
type Config struct {
	Sigma               float32
	BrightnessThreshold float32
	CandidateThreshold  float32
	MinDist             float32
	FitSteps            int
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		Sigma:               3.0,
		BrightnessThreshold: 0.1,
		CandidateThreshold:  0.5,
		MinDist:             2.0,
		FitSteps:            30,
	}
}

// Find locates star candidates on img and returns them sorted by
// descending brightness. img is converted to Gray internally if needed;
// converting from Invalid yields an empty set.
func Find(cfg Config, img *pixel.Image) starmodel.StarSet {
	var result starmodel.StarSet
	if img.Format == pixel.Invalid {
		return result
	}

	gray := img
	if img.Format != pixel.Gray {
		gray = img.ToFormat(pixel.Gray)
	}

	scale := int(cfg.Sigma)
	if scale < 1 {
		scale = 1
	}
	scaled := gray
	if scale != 1 {
		scaled = gray.ScaleDown(scale)
	}

	for y := 1; y < scaled.Height-1; y++ {
		for x := 1; x < scaled.Width-1; x++ {
			if !isCandidate(cfg, scaled, x, y) {
				continue
			}
			fx := float32(x*scale) + 0.5*float32(scale-1)
			fy := float32(y*scale) + 0.5*float32(scale-1)
			processCandidate(cfg, gray, &result, fx, fy)
		}
	}

	result.Sort()
	return result
}

// isCandidate checks whether (x,y) on the scaled image is a local maximum
// (over the upper-left 2x2 block, not a symmetric 3x3 -- this is a
// deliberately preserved anomaly of the original, see SPEC_FULL.md section
// 9) whose value exceeds the local background by the configured
// threshold.
func isCandidate(cfg Config, img *pixel.Image, x, y int) bool {
	pix := img.PixelGray(x, y)
	if pix.Y == 0 {
		return false
	}
	v := pix.X / pix.Y

	sum := vec.Vec2{}
	for y1 := y - 1; y1 < y+1; y1++ {
		for x1 := x - 1; x1 < x+1; x1++ {
			p := img.PixelGray(x1, y1)
			if p.Y > 0 && p.X > v*p.Y {
				return false // not a local maximum
			}
			sum = sum.Add(p)
		}
	}
	if sum.Y == 0 {
		return false
	}
	b := sum.X / sum.Y
	return v-b > cfg.BrightnessThreshold*cfg.CandidateThreshold
}

func processCandidate(cfg Config, gray *pixel.Image, sset *starmodel.StarSet, x, y float32) {
	star := starmodel.NewStar(vec.Vec2{X: x, Y: y}, cfg.Sigma)
	fit(&star, gray, cfg.FitSteps)

	if star.Brightness < cfg.BrightnessThreshold {
		return
	}
	minDistSq := cfg.Sigma * cfg.MinDist
	minDistSq *= minDistSq
	for _, s := range sset.Stars {
		if star.Pos.DistSq(s.Pos) < minDistSq {
			return
		}
	}
	sset.Add(star)
}

// gauss2 is the 2D Gaussian profile of peak amplitude a and width sigma
// evaluated at (x,y) relative to the star's center (unit amplitude for
// a=1).
func gauss2(a, sigma, x, y float32) float32 {
	return a * float32(math.Exp(-float64(x*x+y*y)/(2*float64(sigma)*float64(sigma))))
}

// fit runs steps iterations of the position/brightness+bias alternation.
func fit(star *starmodel.Star, gray *pixel.Image, steps int) {
	for i := 0; i < steps; i++ {
		fitPos(star, gray)
		fitBrightness(star, gray)
	}
}

func fitPos(star *starmodel.Star, gray *pixel.Image) {
	pos := vec.Vec2{}
	mass := float32(0)
	px, py := star.Pos.X, star.Pos.Y
	sigma := star.Sigma
	bias := star.Bias
	cx, cy := int(px), int(py)
	dist := int(sigma*3) + 1

	for y := cy - dist; y <= cy+dist; y++ {
		if y < 0 || y >= gray.Height {
			continue
		}
		for x := cx - dist; x <= cx+dist; x++ {
			if x < 0 || x >= gray.Width {
				continue
			}
			pix := gray.PixelGray(x, y)
			if pix.Y == 0 {
				continue
			}
			v := pix.X/pix.Y - bias
			v *= gauss2(1, sigma, float32(x)-px, float32(y)-py)
			pos = pos.Add(vec.Vec2{X: float32(x), Y: float32(y)}.Scale(v))
			mass += v
		}
	}
	if mass == 0 {
		return
	}
	star.Pos = pos.Scale(1 / mass)
}

func fitBrightness(star *starmodel.Star, gray *pixel.Image) {
	bght, bias := vec.Vec2{}, vec.Vec2{}
	px, py := star.Pos.X, star.Pos.Y
	sigma := star.Sigma
	cx, cy := int(px), int(py)
	dist := int(sigma*3) + 1
	bias0 := star.Bias
	bght0 := star.Brightness

	for y := cy - dist; y <= cy+dist; y++ {
		if y < 0 || y >= gray.Height {
			continue
		}
		for x := cx - dist; x <= cx+dist; x++ {
			if x < 0 || x >= gray.Width {
				continue
			}
			pix := gray.PixelGray(x, y)
			if pix.Y == 0 {
				continue
			}
			v := pix.X / pix.Y
			g := gauss2(1, sigma, float32(x)-px, float32(y)-py)

			bght.X += (v - bias0) * g
			bght.Y += g * g

			bias.X += (v - g*bght0) * (1 - g)
			bias.Y += 1 - g
		}
	}
	if bght.Y != 0 {
		star.Brightness = bght.X / bght.Y
	}
	if bias.Y != 0 {
		star.Bias = bias.X / bias.Y
	}
}
