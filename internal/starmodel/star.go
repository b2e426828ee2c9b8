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

// Package starmodel holds the Star record and StarSet collection shared by
// the finder, aligners and matcher. Ported from original_source's
// SStar.h/SStarSet, in the spirit of the teacher's own Star type
// (internal/star/findstars.go) but carrying the spec's Gaussian fit
// fields (brightness, bias, sigma) instead of the teacher's mass/HFR
// fields.
package starmodel

import "github.com/nightframe/align/internal/vec"

// Star is a fit star record, as produced by the finder or merged into the
// matcher's running reference set.
type Star struct {
	Pos        vec.Vec2
	Brightness float32
	Bias       float32
	Sigma      float32
	Index      int32 // cross-set link, -1 if unlinked
	Weight     float32
}

// NewStar returns a star seeded at pos with the spec's documented
// defaults (sigma=3.0, brightness=1.0, bias=0.0, index=-1, weight=1).
func NewStar(pos vec.Vec2, sigma float32) Star {
	return Star{
		Pos:        pos,
		Brightness: 1.0,
		Bias:       0.0,
		Sigma:      sigma,
		Index:      -1,
		Weight:     1,
	}
}

// StarSet is an ordered, growable collection of stars. Insertion does not
// preserve order; callers sort explicitly with Sort.
type StarSet struct {
	Stars []Star
}

// Add appends s to the set.
func (s *StarSet) Add(star Star) { s.Stars = append(s.Stars, star) }

// Len returns the number of stars in the set.
func (s *StarSet) Len() int { return len(s.Stars) }

// Sort orders the set in place by non-increasing Brightness (stars of
// equal brightness end up adjacent, in no defined order), using
// the teacher's hand-rolled quicksort (internal/qsort/qsort.go) rather
// than sort.Slice, matching the codebase's texture for this specific
// collection type.
func (s *StarSet) Sort() {
	qSortStarsDesc(s.Stars)
}

func qSortStarsDesc(a []Star) {
	if len(a) > 1 {
		idx := qPartitionStarsDesc(a)
		qSortStarsDesc(a[:idx+1])
		qSortStarsDesc(a[idx+1:])
	}
}

func qPartitionStarsDesc(a []Star) int {
	left, right := 0, len(a)-1
	mid := (left + right) >> 1
	pivot := a[mid].Brightness
	l, r := left-1, right+1
	for {
		for {
			l++
			if a[l].Brightness <= pivot {
				break
			}
		}
		for {
			r--
			if a[r].Brightness >= pivot {
				break
			}
		}
		if l >= r {
			return r
		}
		a[l], a[r] = a[r], a[l]
	}
}
