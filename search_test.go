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
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectionOf(size int, width, height int, tiles ...*Tile) *TileCollection {
	return &TileCollection{
		Tiles:    tiles,
		TileSize: size,
		Rows:     1,
		Columns:  len(tiles),
		Width:    width,
		Height:   height,
	}
}

// bruteForce is the plain nested loop the search must agree with.
func bruteForce(source *Tile, candidates *TileCollection, step int) (int, Orientation, float64) {
	best := math.Inf(1)
	bestJ, bestK := 0, Orientation(0)
	for j, candidate := range candidates.Tiles {
		for k := 0; k < 360/step; k++ {
			dist := Manhattan(source, Rotate(candidate, float64(k*step)))
			if dist < best {
				best, bestJ, bestK = dist, j, Orientation(k)
			}
		}
	}
	return bestJ, bestK, best
}

func TestSearchBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for run := 0; run < 20; run++ {
		source := randomTile(rng, 4)
		candidates := collectionOf(4, 8, 4, randomTile(rng, 4), randomTile(rng, 4))
		sources := collectionOf(4, 4, 4, source)

		search := NewClosestMatchSearch(Manhattan, DefaultAngleStep, 2)
		matches, err := search.Search(sources, candidates, nil)
		require.NoError(t, err)
		require.Len(t, matches, 1)

		j, k, score := bruteForce(source, candidates, DefaultAngleStep)
		assert.Equal(t, j, matches[0].Candidate)
		assert.Equal(t, k, matches[0].Orientation)
		assert.Equal(t, score, matches[0].Score)
		assert.Equal(t, image.Pt(4*j, 0), matches[0].Point())
	}
}

func TestSearchFindsRotatedCandidate(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	first, second := randomTile(rng, 4), randomTile(rng, 4)
	candidates := collectionOf(4, 8, 4, first, second)
	sources := collectionOf(4, 4, 4, Rotate(second, 90))

	matches, err := NewClosestMatchSearch(nil, DefaultAngleStep, 1).Search(sources, candidates, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, Match{X: 4, Y: 0, Orientation: 2, Candidate: 1, Score: 0}, matches[0])
}

func TestSearchTieBreak(t *testing.T) {
	// both candidates have the same distance for every orientation
	candidates := collectionOf(4, 8, 4,
		NewUniformTile(4, RGB{R: 10, G: 10, B: 10}),
		NewUniformTile(4, RGB{R: 30, G: 30, B: 30}))
	sources := collectionOf(4, 4, 4, NewUniformTile(4, RGB{R: 20, G: 20, B: 20}))

	for _, precompute := range []bool{true, false} {
		search := NewClosestMatchSearch(Manhattan, 90, 2)
		search.Precompute = precompute
		matches, err := search.Search(sources, candidates, nil)
		require.NoError(t, err)
		assert.Equal(t, Match{X: 0, Y: 0, Orientation: 0, Candidate: 0, Score: 480}, matches[0])
	}

	// identical candidates: the first candidate with orientation 0 wins
	same := NewUniformTile(4, RGB{R: 50, G: 60, B: 70})
	candidates = collectionOf(4, 12, 4, same.Clone(), same.Clone(), same.Clone())
	sources = collectionOf(4, 4, 4, same.Clone())
	matches, err := NewClosestMatchSearch(Manhattan, 90, 3).Search(sources, candidates, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, matches[0].Candidate)
	assert.Equal(t, Orientation(0), matches[0].Orientation)
}

func TestSearchOrderAndConcurrency(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	sources, err := Partition(randomImage(rng, 32, 16), 4, DivideCrop, 2)
	require.NoError(t, err)
	candidates, err := Partition(randomImage(rng, 16, 8), 4, DivideCrop, 2)
	require.NoError(t, err)

	sequential := NewClosestMatchSearch(Manhattan, DefaultAngleStep, 1)
	sequential.Precompute = false
	expected, err := sequential.Search(sources, candidates, nil)
	require.NoError(t, err)
	require.Len(t, expected, sources.Len())

	for i, m := range expected {
		j, k, score := bruteForce(sources.Get(i), candidates, DefaultAngleStep)
		assert.Equal(t, EncodeMatch(candidates, j, k, score), m, "source tile %d", i)
	}

	parallel := NewClosestMatchSearch(Manhattan, DefaultAngleStep, 7)
	got, err := parallel.Search(sources, candidates, nil)
	require.NoError(t, err)
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("parallel search differs (-want +got):\n%s", diff)
	}
}

func TestSearchClampsPaddedCandidate(t *testing.T) {
	// only the padded tile in the bottom right corner contains white pixels
	reduced := uniformImage(10, 10, black)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 8; y < 10; y++ {
		for x := 8; x < 10; x++ {
			reduced.SetRGBA(x, y, white)
		}
	}
	candidates, err := Partition(reduced, 4, DividePad, 2)
	require.NoError(t, err)
	require.Equal(t, 9, candidates.Len())

	source := NewTile(4)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			source.SetRGB(x, y, RGB{R: 255, G: 255, B: 255})
		}
	}
	matches, err := NewClosestMatchSearch(Manhattan, DefaultAngleStep, 2).
		Search(collectionOf(4, 4, 4, source), candidates, nil)
	require.NoError(t, err)
	m := matches[0]
	assert.Equal(t, 8, m.Candidate)
	assert.Equal(t, 0.0, m.Score)
	assert.Equal(t, image.Pt(6, 6), m.Point())
	assert.LessOrEqual(t, m.X+4, candidates.Width)
	assert.LessOrEqual(t, m.Y+4, candidates.Height)
}

func TestSearchProgress(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	sources, err := Partition(randomImage(rng, 16, 16), 4, DivideCrop, 1)
	require.NoError(t, err)
	candidates, err := Partition(randomImage(rng, 8, 8), 4, DivideCrop, 1)
	require.NoError(t, err)

	var calls []int
	_, err = NewClosestMatchSearch(Manhattan, DefaultAngleStep, 4).
		Search(sources, candidates, func(num int) { calls = append(calls, num) })
	require.NoError(t, err)
	require.Len(t, calls, sources.Len())
	for i, num := range calls {
		assert.Equal(t, i+1, num)
	}
}

func TestSearchErrors(t *testing.T) {
	sources := collectionOf(4, 4, 4, NewTile(4))
	search := NewClosestMatchSearch(Manhattan, DefaultAngleStep, 2)

	_, err := search.Search(sources, collectionOf(4, 0, 0), nil)
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = search.Search(sources, collectionOf(2, 2, 2, NewTile(2)), nil)
	assert.ErrorIs(t, err, ErrTileShape)

	invalid := NewClosestMatchSearch(Manhattan, 100, 2)
	_, err = invalid.Search(sources, collectionOf(4, 4, 4, NewTile(4)), nil)
	assert.Error(t, err)

	// no sources, no matches
	matches, err := search.Search(collectionOf(4, 0, 0), collectionOf(4, 0, 0), nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
