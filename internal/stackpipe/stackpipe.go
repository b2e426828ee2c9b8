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

// Package stackpipe drives the two-pass registration and stacking
// pipeline: pass one finds stars and aligns each frame against a running
// reference set, accumulating the output canvas's bounding box; pass two
// reloads each frame and accumulates it into the output under its frame
// transform. Generalizes the teacher's two-pass batch pipeline
// (internal/batch.go, internal/ops/stack/stack.go, internal/stackbatch.go)
// to the weighted-pixel model and Drop-frame semantics of
// original_source's stacking driver.
package stackpipe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/nightframe/align/internal/aligncoarse"
	"github.com/nightframe/align/internal/bbox"
	"github.com/nightframe/align/internal/finder"
	"github.com/nightframe/align/internal/logx"
	"github.com/nightframe/align/internal/match"
	"github.com/nightframe/align/internal/pixel"
	"github.com/nightframe/align/internal/starmodel"
	"github.com/nightframe/align/internal/vec"
	"github.com/nightframe/align/internal/xform"
)

// Loader reloads a frame by index, so pass two can re-read it without
// keeping every frame's full-resolution pixels resident between passes.
// Implementations subtract any configured dark frame before returning.
type Loader func(index int) (*pixel.Image, error)

// Config bundles the tunable configuration of every stage the
// orchestrator drives.
type Config struct {
	Finder      finder.Config
	SmallChange aligncoarse.SmallChangeAligner
	Brut        aligncoarse.BrutAligner
	Matcher     *match.StarMatcher
	MinStars    int // minimum stars found before a frame is attempted, default 3
}

// DefaultConfig returns a configuration using every stage's documented
// defaults.
func DefaultConfig() Config {
	return Config{
		Finder:      finder.DefaultConfig(),
		SmallChange: aligncoarse.NewSmallChangeAligner(),
		Brut:        aligncoarse.NewBrutAligner(),
		Matcher:     match.New(),
		MinStars:    3,
	}
}

// FrameResult records a single frame's outcome from pass one.
type FrameResult struct {
	Transform xform.Transform
	Stars     starmodel.StarSet
	// ResidualRMS is the root-mean-square matched-star residual distance
	// after fine alignment, or NaN if the frame was dropped or no stars
	// matched.
	ResidualRMS    float32
	ResidualStdDev float32
}

// Result is the accumulated state of pass one.
type Result struct {
	Frames []FrameResult
	BBox   bbox.Box
	Format pixel.Format
}

// RunPassOne loads each of numFrames frames via load, finds stars, and
// aligns each frame against a running reference set held in cfg.Matcher.
// Dropped frames retain a Drop transform and an empty star set.
func RunPassOne(cfg Config, numFrames int, load Loader) (Result, error) {
	var res Result
	res.BBox = bbox.Empty()
	res.Frames = make([]FrameResult, numFrames)

	prevTr := xform.NewDrop()

	for i := 0; i < numFrames; i++ {
		res.Frames[i] = FrameResult{Transform: xform.NewDrop(), ResidualRMS: float32(math.NaN())}

		img, err := load(i)
		if err != nil {
			logx.Printf("frame %d: load failed: %s, skipping\n", i, err.Error())
			continue
		}
		if img.Format == pixel.Invalid {
			logx.Printf("frame %d: invalid image, skipping\n", i)
			continue
		}

		stars := finder.Find(cfg.Finder, img)
		if len(stars.Stars) < cfg.MinStars {
			logx.Printf("frame %d: found only %d stars (need %d), skipping\n", i, len(stars.Stars), cfg.MinStars)
			continue
		}

		var tr xform.Transform
		if len(cfg.Matcher.Set.Stars) == 0 {
			tr = xform.NewIdentity()
		} else {
			tr = cfg.SmallChange.Align(cfg.Matcher.Set, prevTr, stars)
			if tr.Tag == xform.Drop {
				logx.Printf("frame %d: SmallChange failed, trying Brut\n", i)
				tr = cfg.Brut.Align(cfg.Matcher.Set, stars)
			}
			if tr.Tag == xform.Drop {
				logx.Printf("frame %d: coarse alignment failed, skipping\n", i)
				continue
			}
			cfg.Matcher.MatchStars(tr, &stars)
			fineTr := cfg.Matcher.GetTransform(stars)
			if fineTr.Tag == xform.Drop {
				logx.Printf("frame %d: fine alignment degenerate, skipping\n", i)
				continue
			}
			tr = fineTr
		}

		res.Frames[i].ResidualRMS = matchResidualRMS(cfg.Matcher, tr, stars)
		res.Frames[i].ResidualStdDev = matchResidualStdDev(cfg.Matcher, tr, stars)

		prevTr = tr
		cfg.Matcher.Update(tr, &stars)
		res.Frames[i].Transform = tr
		res.Frames[i].Stars = stars

		frameBB := xform.BoundingBox(tr, bbox.Box{MinX: 0, MinY: 0, MaxX: float32(img.Width), MaxY: float32(img.Height)})
		res.BBox = bbox.Union(res.BBox, frameBB)
		res.Format = pixel.Promote(res.Format, img.Format)

		logx.Printf("frame %d: aligned with %d stars, residual RMS %.3f px (stddev %.3f)\n",
			i, len(stars.Stars), res.Frames[i].ResidualRMS, res.Frames[i].ResidualStdDev)
	}

	return res, nil
}

// matchResidualRMS computes the RMS of matched-star residual distances
// after applying tr, using gonum for the reduction over per-star squared
// residuals (the same general "numerical reduction over alignment data"
// role the teacher assigns gonum in its own aligner).
func matchResidualRMS(sm *match.StarMatcher, tr xform.Transform, sset starmodel.StarSet) float32 {
	var sq []float64
	for _, s := range sset.Stars {
		if s.Index < 0 || int(s.Index) >= len(sm.Set.Stars) {
			continue
		}
		p := tr.Apply(s.Pos)
		ref := sm.Set.Stars[s.Index].Pos
		d := p.Sub(ref)
		sq = append(sq, float64(d.LengthSq()))
	}
	if len(sq) == 0 {
		return float32(math.NaN())
	}
	meanSq := floats.Sum(sq) / float64(len(sq))
	return float32(math.Sqrt(meanSq))
}

// matchResidualStdDev is the companion statistic to matchResidualRMS,
// reported alongside it in per-frame log lines.
func matchResidualStdDev(sm *match.StarMatcher, tr xform.Transform, sset starmodel.StarSet) float32 {
	var dist []float64
	for _, s := range sset.Stars {
		if s.Index < 0 || int(s.Index) >= len(sm.Set.Stars) {
			continue
		}
		p := tr.Apply(s.Pos)
		ref := sm.Set.Stars[s.Index].Pos
		dist = append(dist, math.Sqrt(float64(p.Sub(ref).LengthSq())))
	}
	if len(dist) < 2 {
		return 0
	}
	return float32(stat.StdDev(dist, nil))
}

// RunPassTwo reloads every non-Drop frame via load, composes its transform
// with a shift to the canvas origin, and accumulates it into a freshly
// allocated output image of the size implied by pass1.BBox. Returns an
// error if the bounding box is empty or the format is Invalid (spec.md
// section 7's only pass-two fatal condition).
func RunPassTwo(pass1 Result, load Loader) (*pixel.Image, error) {
	if pass1.BBox.IsEmpty() || pass1.Format == pixel.Invalid {
		return nil, fmt.Errorf("stackpipe: empty accumulated bounding box or invalid format, nothing to stack")
	}

	shift := xform.NewShift(vec.Vec2{X: -pass1.BBox.MinX, Y: -pass1.BBox.MinY})
	w := int(math.Ceil(float64(pass1.BBox.MaxX-pass1.BBox.MinX))) + 1
	h := int(math.Ceil(float64(pass1.BBox.MaxY-pass1.BBox.MinY))) + 1

	out := pixel.New(w, h, pass1.Format)
	if out.Format == pixel.Invalid {
		return nil, fmt.Errorf("stackpipe: output canvas %dx%d in format %s is invalid", w, h, pass1.Format)
	}
	out.Clear()

	for i, fr := range pass1.Frames {
		if fr.Transform.Tag == xform.Drop {
			continue
		}
		img, err := load(i)
		if err != nil || img.Format == pixel.Invalid {
			logx.Printf("pass two, frame %d: reload failed, skipping\n", i)
			continue
		}
		composed := xform.Compose(shift, fr.Transform)
		out.StackTr(composed, img)
	}

	return out, nil
}
