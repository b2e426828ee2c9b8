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

// Package match accumulates a running reference star set across frames:
// matching a frame's stars against it, fine-aligning by complex linear
// regression, and folding newly-seen and re-observed stars back in as a
// weighted running mean. Ported from
// original_source/src/SStarMatcher/SStarMatcher_{matchStars,getTransform,
// update}.c. Grounded in role on the teacher's internal/stack.go, which
// plays the analogous part of accumulating state across the frames of a
// stacking run.
package match

import (
	"github.com/nightframe/align/internal/starmodel"
	"github.com/nightframe/align/internal/vec"
	"github.com/nightframe/align/internal/xform"
)

// StarMatcher holds the running reference set and the matching tolerance.
type StarMatcher struct {
	Set           starmodel.StarSet
	DistThreshold float32
}

// New returns a matcher with an empty reference set and the spec's default
// distance threshold.
func New() *StarMatcher {
	return &StarMatcher{DistThreshold: 1.4}
}

// MatchStars sets sset's Index fields to the closest reference star (after
// mapping sset's positions through tr), or -1 if no reference star is
// within DistThreshold geometric-mean sigmas. sset is matched in place;
// other fields are left untouched.
func (sm *StarMatcher) MatchStars(tr xform.Transform, sset *starmodel.StarSet) {
	for i := range sset.Stars {
		matchStar(sm, tr, &sset.Stars[i])
	}
}

func matchStar(sm *StarMatcher, tr xform.Transform, star *starmodel.Star) {
	star.Index = -1
	if len(sm.Set.Stars) == 0 {
		return
	}

	pos := tr.Apply(star.Pos)
	sigma := star.Sigma

	bestIdx := 0
	bestDist := pos.DistSq(sm.Set.Stars[0].Pos) / (sigma * sm.Set.Stars[0].Sigma)
	for i := 1; i < len(sm.Set.Stars); i++ {
		dist := pos.DistSq(sm.Set.Stars[i].Pos) / (sigma * sm.Set.Stars[i].Sigma)
		if dist < bestDist {
			bestIdx = i
			bestDist = dist
		}
	}

	if bestDist < sm.DistThreshold*sm.DistThreshold {
		star.Index = int32(bestIdx)
	}
}

// GetTransform computes the complex-linear-regression transform mapping
// sset's star positions onto their matched reference stars (sset.Stars[i]
// .Index must already be set, e.g. by MatchStars). Unmatched stars are
// ignored. Returns a Drop transform if the regression is degenerate.
func (sm *StarMatcher) GetTransform(sset starmodel.StarSet) xform.Transform {
	sx, sy, sxy := vec.Vec2{}, vec.Vec2{}, vec.Vec2{}
	var sx2 float32
	var tot float32

	for _, star := range sset.Stars {
		idx := star.Index
		if idx < 0 || int(idx) >= len(sm.Set.Stars) {
			continue
		}
		x := star.Pos
		y := sm.Set.Stars[idx].Pos

		sx = sx.Add(x)
		sy = sy.Add(y)
		sxy = sxy.Add(x.Conj().ComplexMul(y))
		sx2 += x.LengthSq()
		tot++
	}

	sxy = sxy.Scale(tot)
	sx2 *= tot
	s2x := sx.LengthSq()
	if sx2 == s2x {
		return xform.NewDrop()
	}
	rot := sxy.Sub(sx.Conj().ComplexMul(sy)).ComplexDiv(vec.Vec2{X: sx2 - s2x, Y: 0})
	shift := sy.Sub(rot.ComplexMul(sx)).Scale(1 / tot)
	return xform.NewLinear(rot, shift)
}

// Update folds sset's stars into the reference set: stars transformed by
// tr and matched to an existing reference star are merged into it as a
// weighted running mean (position, brightness, bias and sigma); unmatched
// stars are appended as new reference stars. sset's Index fields are
// updated in place to point at the (possibly newly created) reference
// entries.
func (sm *StarMatcher) Update(tr xform.Transform, sset *starmodel.StarSet) {
	for i := range sset.Stars {
		star := &sset.Stars[i]
		pos := tr.Apply(star.Pos)
		idx := int(star.Index)

		if idx < 0 || idx >= len(sm.Set.Stars) {
			idx = len(sm.Set.Stars)
			sm.Set.Add(*star)
			sm.Set.Stars[idx].Pos = pos
			sm.Set.Stars[idx].Index = -1
			sm.Set.Stars[idx].Weight = 1
			star.Index = int32(idx)
			continue
		}

		ref := &sm.Set.Stars[idx]
		w := ref.Weight
		ref.Pos = pos.Add(ref.Pos.Scale(w)).Scale(1 / (w + 1))
		ref.Weight = w + 1
		ref.Brightness = (ref.Brightness*w + star.Brightness) / (w + 1)
		ref.Bias = (ref.Bias*w + star.Bias) / (w + 1)
		ref.Sigma = (ref.Sigma*w + star.Sigma) / (w + 1)
	}
}
