// Copyright 2018 Fabian Wenzelmann
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gofractal

import (
	"fmt"
	"image"
)

// Match is the result of the search for a single source tile.
// X and Y are the top left corner of the best matching tile in the reduced
// image and Orientation is the rotation applied to that tile before it was
// compared with the source tile.
//
// Candidate (the index of the matching tile) and Score (the metric value) are
// informational, only X, Y and Orientation are part of the encoding.
type Match struct {
	X, Y        int
	Orientation Orientation
	Candidate   int
	Score       float64
}

// Point returns (X, Y).
func (m Match) Point() image.Point {
	return image.Pt(m.X, m.Y)
}

func (m Match) String() string {
	return fmt.Sprintf("%d %d %d", m.X, m.Y, m.Orientation)
}

// EncodeMatch creates the match for candidate tile j and orientation k.
// The position of the candidate is computed from its index and clamped s.t.
// the tile lies inside the reduced image, see TileCollection.Point and
// TileCollection.Clamp.
func EncodeMatch(candidates *TileCollection, j int, k Orientation, score float64) Match {
	p := candidates.Clamp(candidates.Point(j))
	return Match{
		X:           p.X,
		Y:           p.Y,
		Orientation: k,
		Candidate:   j,
		Score:       score,
	}
}
