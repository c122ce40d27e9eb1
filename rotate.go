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
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// DefaultAngleStep is the default difference in degrees between two
	// orientations, it yields the eight orientations 0°, 45°, ..., 315°.
	DefaultAngleStep = 45
)

// Orientation is the index of a rotation angle. Given an angle step (in
// degrees) the angle of orientation i is i * step.
type Orientation int

// Angle returns the angle in degrees of the orientation given the angle step.
func (o Orientation) Angle(step int) float64 {
	return float64(int(o) * step)
}

// ValidAngleStep returns an error if step is not a positive divisor of 360.
func ValidAngleStep(step int) error {
	if step <= 0 || step > 360 || 360%step != 0 {
		return fmt.Errorf("Invalid angle step %d, must be a positive divisor of 360", step)
	}
	return nil
}

// NumOrientations returns the number of orientations for a given angle step,
// the step must be valid.
func NumOrientations(step int) int {
	return 360 / step
}

// Orientations returns all orientations for a given angle step in ascending
// order, that is 0, 1, ..., 360 / step - 1.
func Orientations(step int) []Orientation {
	res := make([]Orientation, NumOrientations(step))
	for i := range res {
		res[i] = Orientation(i)
	}
	return res
}

// Rotate returns a new tile that contains the content of t rotated by angle
// degrees around the center of the tile. Positive angles rotate counter
// clockwise, as the image is displayed.
//
// Each pixel of the result is mapped back into t and bilinearly interpolated
// from the four surrounding pixels of t. Pixels outside of t are black. The
// interpolated value is rounded to the nearest integer in [0, 255].
//
// The center of the rotation is the point ((Size - 1) / 2, (Size - 1) / 2),
// that is the center of the pixel grid. A rotation by a multiple of 90° thus
// permutes the pixels of t, a rotation by 0° returns an exact copy.
func Rotate(t *Tile, angle float64) *Tile {
	res := NewTile(t.Size)
	c := float64(t.Size-1) / 2
	// the inverse mapping from destination to source pixels is the rotation
	// by angle with the y axis pointing down
	rot := r2.NewRotation(angle*math.Pi/180, r2.Vec{X: c, Y: c})
	for y := 0; y < t.Size; y++ {
		for x := 0; x < t.Size; x++ {
			src := rot.Rotate(r2.Vec{X: float64(x), Y: float64(y)})
			pos := res.offset(x, y)
			for ch := 0; ch < Channels; ch++ {
				res.Pix[pos+ch] = saturate(bilinear(t, src.X, src.Y, ch))
			}
		}
	}
	return res
}

func bilinear(t *Tile, x, y float64, ch int) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	top := (1-fx)*t.Sample(ix, iy, ch) + fx*t.Sample(ix+1, iy, ch)
	bottom := (1-fx)*t.Sample(ix, iy+1, ch) + fx*t.Sample(ix+1, iy+1, ch)
	return (1-fy)*top + fy*bottom
}

func saturate(val float64) float64 {
	return math.Max(0, math.Min(255, math.Round(val)))
}

// RotationTable stores all rotations of a collection of candidate tiles.
// The entry [j][k] is candidate j rotated by orientation k.
// A table is never modified after creation and can be shared among goroutines.
type RotationTable [][]*Tile

// NewRotationTable computes all rotations of the candidates given an angle
// step. Candidates are rotated concurrently by at most numRoutines goroutines.
func NewRotationTable(candidates *TileCollection, step, numRoutines int) (RotationTable, error) {
	if stepErr := ValidAngleStep(step); stepErr != nil {
		return nil, stepErr
	}
	if numRoutines <= 0 {
		numRoutines = 1
	}
	orientations := Orientations(step)
	res := make(RotationTable, candidates.Len())
	var g errgroup.Group
	g.SetLimit(numRoutines)
	for j, candidate := range candidates.Tiles {
		j, candidate := j, candidate
		g.Go(func() error {
			rotated := make([]*Tile, len(orientations))
			for k, o := range orientations {
				rotated[k] = Rotate(candidate, o.Angle(step))
			}
			res[j] = rotated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// Get returns candidate j rotated by orientation k.
func (table RotationTable) Get(j int, k Orientation) *Tile {
	return table[j][k]
}
