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

package starmodel

import (
	"testing"

	"github.com/valyala/fastrand"

	"github.com/nightframe/align/internal/vec"
)

// TestSortDescendingBrightness is testable property #5: after Sort, a
// StarSet is ordered by non-increasing Brightness (ties allowed).
func TestSortDescendingBrightness(t *testing.T) {
	var set StarSet
	brightnesses := []float32{0.3, 0.9, 0.1, 0.9, 0.5}
	for _, b := range brightnesses {
		s := NewStar(vec.Vec2{}, 3.0)
		s.Brightness = b
		set.Add(s)
	}
	set.Sort()
	for i := 1; i < len(set.Stars); i++ {
		if set.Stars[i-1].Brightness < set.Stars[i].Brightness {
			t.Fatalf("stars not sorted descending at %d: %v", i, set.Stars)
		}
	}
}

// TestSortRandomPermutations exercises the hand-rolled quicksort in Sort
// against random permutations, the same way the teacher's qsort package
// validates its own quicksort (internal/qsort/qsort_test.go) with
// fastrand-driven shuffles rather than a handful of fixed cases.
func TestSortRandomPermutations(t *testing.T) {
	rng := fastrand.RNG{}
	for n := 1; n < 200; n++ {
		var set StarSet
		for j := 0; j < n; j++ {
			s := NewStar(vec.Vec2{}, 3.0)
			s.Brightness = float32(j + 1)
			set.Add(s)
		}
		for j := 0; j < n; j++ {
			k := rng.Uint32n(uint32(n))
			set.Stars[j], set.Stars[k] = set.Stars[k], set.Stars[j]
		}
		set.Sort()
		for i := 1; i < n; i++ {
			if set.Stars[i-1].Brightness < set.Stars[i].Brightness {
				t.Fatalf("n=%d: stars not sorted descending at %d: %v", n, i, set.Stars)
			}
		}
		if n > 0 && set.Stars[0].Brightness != float32(n) {
			t.Fatalf("n=%d: expected max brightness %d at front, got %v", n, n, set.Stars[0].Brightness)
		}
	}
}

func TestNewStarDefaults(t *testing.T) {
	s := NewStar(vec.Vec2{X: 1, Y: 2}, 2.5)
	if s.Brightness != 1.0 || s.Bias != 0.0 || s.Sigma != 2.5 || s.Index != -1 || s.Weight != 1 {
		t.Fatalf("NewStar defaults = %+v, want brightness=1 bias=0 sigma=2.5 index=-1 weight=1", s)
	}
}
