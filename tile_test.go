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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileFromImageCopies(t *testing.T) {
	img := patternImage(8, 8)
	tile := TileFromImage(img, image.Pt(4, 0), 4)
	require.Equal(t, 4, tile.Size)
	require.Len(t, tile.Pix, 4*4*Channels)

	before := tile.Clone()
	// changing the image must not change the tile
	img.SetRGBA(4, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	assert.True(t, tile.Equals(before))

	c := ConvertRGB(patternImage(8, 8).At(5, 2))
	assert.Equal(t, c, tile.RGBAt(1, 2))
}

func TestTileFromImageOutside(t *testing.T) {
	img := uniformImage(6, 6, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	tile := TileFromImage(img, image.Pt(4, 4), 4)
	assert.Equal(t, RGB{R: 200, G: 100, B: 50}, tile.RGBAt(1, 1))
	assert.Equal(t, RGB{}, tile.RGBAt(2, 1))
	assert.Equal(t, RGB{}, tile.RGBAt(1, 2))
	assert.Equal(t, RGB{}, tile.RGBAt(3, 3))

	empty := TileFromImage(img, image.Pt(10, 10), 4)
	assert.True(t, empty.Equals(NewTile(4)))
}

func TestTileFromGenericImage(t *testing.T) {
	rgba := patternImage(8, 8)
	nrgba := image.NewNRGBA(rgba.Bounds())
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			nrgba.Set(x, y, rgba.At(x, y))
		}
	}
	for _, p := range []image.Point{{0, 0}, {4, 4}, {2, 6}} {
		assert.True(t, TileFromImage(rgba, p, 4).Equals(TileFromImage(nrgba, p, 4)), "tile at %v", p)
	}
}

func TestTileSample(t *testing.T) {
	tile := NewUniformTile(2, RGB{R: 10, G: 20, B: 30})
	assert.Equal(t, 20.0, tile.Sample(1, 1, 1))
	assert.Equal(t, 0.0, tile.Sample(-1, 0, 0))
	assert.Equal(t, 0.0, tile.Sample(0, 2, 2))
	assert.False(t, tile.Equals(NewTile(3)))
	assert.False(t, tile.SameShape(NewTile(3)))
}
