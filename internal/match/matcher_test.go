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

package match

import (
	"testing"

	"github.com/nightframe/align/internal/starmodel"
	"github.com/nightframe/align/internal/vec"
	"github.com/nightframe/align/internal/xform"
)

// TestUpdateFromEmptySeedsReferenceSet is testable property #6: updating
// an empty matcher with a star set under the identity transform makes the
// reference set a copy of it, with every reference star's weight at 1.
func TestUpdateFromEmptySeedsReferenceSet(t *testing.T) {
	sm := New()
	var sset starmodel.StarSet
	sset.Add(starmodel.NewStar(vec.Vec2{X: 1, Y: 2}, 3))
	sset.Add(starmodel.NewStar(vec.Vec2{X: 4, Y: 5}, 3))
	sset.Add(starmodel.NewStar(vec.Vec2{X: 7, Y: 8}, 3))

	sm.Update(xform.NewIdentity(), &sset)

	if sm.Set.Len() != sset.Len() {
		t.Fatalf("reference set length = %d, want %d", sm.Set.Len(), sset.Len())
	}
	for i, s := range sm.Set.Stars {
		if s.Weight != 1 {
			t.Fatalf("reference star %d weight = %f, want 1", i, s.Weight)
		}
		if s.Pos != sset.Stars[i].Pos {
			t.Fatalf("reference star %d pos = %v, want %v", i, s.Pos, sset.Stars[i].Pos)
		}
	}
}

func TestMatchStarsAndGetTransformIdentity(t *testing.T) {
	sm := New()
	var ref starmodel.StarSet
	ref.Add(starmodel.NewStar(vec.Vec2{X: 0, Y: 0}, 3))
	ref.Add(starmodel.NewStar(vec.Vec2{X: 10, Y: 0}, 3))
	ref.Add(starmodel.NewStar(vec.Vec2{X: 0, Y: 10}, 3))
	ref.Add(starmodel.NewStar(vec.Vec2{X: 10, Y: 10}, 3))
	sm.Update(xform.NewIdentity(), &ref)

	var cur starmodel.StarSet
	cur.Add(starmodel.NewStar(vec.Vec2{X: 0, Y: 0}, 3))
	cur.Add(starmodel.NewStar(vec.Vec2{X: 10, Y: 0}, 3))
	cur.Add(starmodel.NewStar(vec.Vec2{X: 0, Y: 10}, 3))
	cur.Add(starmodel.NewStar(vec.Vec2{X: 10, Y: 10}, 3))

	sm.MatchStars(xform.NewIdentity(), &cur)
	for i, s := range cur.Stars {
		if s.Index != int32(i) {
			t.Fatalf("star %d matched index = %d, want %d", i, s.Index, i)
		}
	}

	tr := sm.GetTransform(cur)
	if tr.Tag != xform.Linear {
		t.Fatalf("GetTransform = %v, want Linear", tr)
	}
	if tr.Rot.X < 0.999 || tr.Rot.X > 1.001 || tr.Rot.Y < -0.001 || tr.Rot.Y > 0.001 {
		t.Fatalf("rot = %v, want close to (1,0)", tr.Rot)
	}
}
