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

// Package aligncoarse provides the two coarse-alignment strategies used to
// bootstrap or recover a transform between a frame's star set and the
// running reference set: SmallChangeAligner (fast, assumes the previous
// transform is still roughly right) and BrutAligner (exhaustive
// pair-matching search, used when there is no good prior transform). Both
// are ported from original_source/src/SCoarseAlign/*.c. Grounded in style
// on the teacher's internal/star/align.go, which plays the analogous role
// of proposing a transform from two star sets, albeit via a different
// (RANSAC-like) search.
package aligncoarse

import (
	"math"

	"github.com/nightframe/align/internal/starmodel"
	"github.com/nightframe/align/internal/vec"
	"github.com/nightframe/align/internal/xform"
)

// SmallChangeAligner refines a known-good prior transform using nearest-
// neighbor star matching and closed-form complex linear regression.
type SmallChangeAligner struct {
	DistThreshold float32
	MinStarN      int
}

// NewSmallChangeAligner returns an aligner with the spec's defaults.
func NewSmallChangeAligner() SmallChangeAligner {
	return SmallChangeAligner{DistThreshold: 5.0, MinStarN: 4}
}

func closestStarIndex(a SmallChangeAligner, ref starmodel.StarSet, pos vec.Vec2, sigma float32) int {
	if len(ref.Stars) == 0 {
		return -1
	}
	bestIdx := 0
	bestDist := pos.DistSq(ref.Stars[0].Pos) / (sigma * ref.Stars[0].Sigma)
	for i, s := range ref.Stars {
		dist := pos.DistSq(s.Pos) / (sigma * s.Sigma)
		if dist < bestDist {
			bestIdx = i
			bestDist = dist
		}
	}
	if bestDist > a.DistThreshold*a.DistThreshold {
		return -1
	}
	return bestIdx
}

// Align proposes a transform mapping sset's stars onto ref's, seeded by
// prevTr. Returns a Drop transform when too few stars correspond or the
// regression is degenerate.
func (a SmallChangeAligner) Align(ref starmodel.StarSet, prevTr xform.Transform, sset starmodel.StarSet) xform.Transform {
	sx, sy, sxy := vec.Vec2{}, vec.Vec2{}, vec.Vec2{}
	var sx2 float32
	var tot int

	for _, star := range sset.Stars {
		x := star.Pos
		idx := closestStarIndex(a, ref, prevTr.Apply(x), star.Sigma)
		if idx == -1 {
			continue
		}
		y := ref.Stars[idx].Pos

		sx = sx.Add(x)
		sy = sy.Add(y)
		sxy = sxy.Add(x.Conj().ComplexMul(y))
		sx2 += x.LengthSq()
		tot++
	}

	sxy = sxy.Scale(float32(tot))
	sx2 *= float32(tot)
	s2x := sx.LengthSq()

	if tot < a.MinStarN || sx2 == s2x {
		return xform.NewDrop()
	}
	rot := sxy.Sub(sx.Conj().ComplexMul(sy)).ComplexDiv(vec.Vec2{X: sx2 - s2x, Y: 0})
	shift := sy.Sub(rot.ComplexMul(sx)).Scale(1 / float32(tot))
	return xform.NewLinear(rot, shift)
}

// BrutAligner finds a transform by exhaustively testing pairs of stars
// from the frame against pairs of stars from the reference set, scoring
// each candidate transform by how well it maps the frame's brightest stars
// onto the reference set.
type BrutAligner struct {
	StarN     int
	RefStarN  int
	RankStarN int
	DistTol   float32
	ScaleTol  float32
	RotTol    float32
}

// NewBrutAligner returns an aligner with the spec's defaults.
func NewBrutAligner() BrutAligner {
	return BrutAligner{
		StarN:     30,
		RefStarN:  -1,
		RankStarN: -1,
		DistTol:   1.5,
		ScaleTol:  0.1,
		RotTol:    3.0,
	}
}

func minIntOpt(a, b int) int {
	if a < 0 || b < a {
		return b
	}
	return a
}

func rankTransform(rankStarN int, distTol float32, ref starmodel.StarSet, tr xform.Transform, sset starmodel.StarSet) float32 {
	distTolSq := distTol * distTol
	var result float32
	for i := 0; i < rankStarN; i++ {
		pos := tr.Apply(sset.Stars[i].Pos)
		sigma := sset.Stars[i].Sigma * distTolSq

		bestRank := float32(1.0)
		for _, rs := range ref.Stars {
			rank := pos.DistSq(rs.Pos) / (sigma * rs.Sigma)
			if rank < bestRank {
				bestRank = rank
			}
		}
		result += bestRank
	}
	return result
}

func respectScaleRotTol(a BrutAligner, rot vec.Vec2) bool {
	lsq := rot.LengthSq()
	tol := a.ScaleTol + 1.0
	tol *= tol
	if lsq > tol || 1.0/lsq > tol {
		return false
	}

	if a.RotTol > 2.0 {
		return true
	}

	n := rot.Scale(1 / float32(math.Sqrt(float64(lsq))))
	n.X = 1.0
	lsq = n.LengthSq()
	tol = a.RotTol
	return lsq <= tol*tol
}

// Align exhaustively searches for the best-scoring linear transform
// mapping sset onto ref. Returns a Drop transform if nothing scores better
// than the worst possible rank, the number of ranked stars (each ranked
// star contributes at most 1.0).
func (a BrutAligner) Align(ref starmodel.StarSet, sset starmodel.StarSet) xform.Transform {
	starN := minIntOpt(a.StarN, len(sset.Stars))
	refStarN := minIntOpt(a.RefStarN, len(ref.Stars))
	rankStarN := minIntOpt(a.RankStarN, len(sset.Stars))

	result := xform.NewDrop()
	rank := float32(rankStarN)

	for a1 := 0; a1 < starN; a1++ {
		for b1 := a1 + 1; b1 < starN; b1++ {
			pos1 := sset.Stars[a1].Pos
			dir1 := sset.Stars[b1].Pos.Sub(pos1)
			if dir1.X == 0 && dir1.Y == 0 {
				continue
			}

			for a2 := 0; a2 < refStarN; a2++ {
				for b2 := 0; b2 < refStarN; b2++ {
					if b2 == a2 {
						continue
					}
					pos2 := ref.Stars[a2].Pos
					dir2 := ref.Stars[b2].Pos.Sub(pos2)
					if dir2.X == 0 && dir2.Y == 0 {
						continue
					}

					rot := dir2.ComplexDiv(dir1)
					if !respectScaleRotTol(a, rot) {
						continue
					}

					tr := xform.NewLinear(rot, pos2.Sub(pos1.ComplexMul(rot)))

					newRank := rankTransform(rankStarN, a.DistTol, ref, tr, sset)
					if newRank < rank {
						rank = newRank
						result = tr
					}
				}
			}
		}
	}
	return result
}
