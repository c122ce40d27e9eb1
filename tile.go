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
	"errors"
	"fmt"
	"image"
	"image/color"
)

const (
	// Channels is the number of color samples stored for each pixel of a tile
	// (red, green and blue). Alpha is discarded when a tile is created.
	Channels = 3
)

var (
	// ErrTileShape is returned if tiles that should be compared don't have the
	// same dimensions.
	ErrTileShape = errors.New("Tiles don't have the same shape")
)

// RGB is a color containing r, g and b components.
type RGB struct {
	R, G, B uint8
}

// ConvertRGB converts a generic color into the internal RGB representation.
func ConvertRGB(c color.Color) RGB {
	// convert to rgba model
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	// convert to internal rgb representation
	return RGB{R: rgba.R, G: rgba.G, B: rgba.B}
}

// Tile is a square area of an image of size Size x Size.
// A tile owns its pixel data, it is never backed by the buffer of the image it
// was extracted from. Thus transformations on tiles never change the image.
//
// Pix holds the samples in row-major order, each pixel consisting of Channels
// consecutive values between 0 and 255. The sample of channel c for pixel
// (x, y) is stored at Pix[(y * Size + x) * Channels + c].
//
// Tiles are not modified once they were created by a partition or a
// transformation, so they can be shared among goroutines.
type Tile struct {
	Size int
	Pix  []float64
}

// NewTile returns a new black tile of the given size.
func NewTile(size int) *Tile {
	if size < 0 {
		size = 0
	}
	return &Tile{
		Size: size,
		Pix:  make([]float64, size*size*Channels),
	}
}

// NewUniformTile returns a tile of the given size in which each pixel has the
// color c.
func NewUniformTile(size int, c RGB) *Tile {
	t := NewTile(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			t.SetRGB(x, y, c)
		}
	}
	return t
}

// TileFromImage copies the size x size area of img with its top left corner in
// min into a new tile.
// Pixels of the area outside of the image bounds are black.
func TileFromImage(img image.Image, min image.Point, size int) *Tile {
	t := NewTile(size)
	bounds := img.Bounds()
	area := image.Rect(min.X, min.Y, min.X+size, min.Y+size).Intersect(bounds)
	if area.Empty() {
		return t
	}
	// fast path for the type we create when loading images
	if rgba, ok := img.(*image.RGBA); ok {
		for y := area.Min.Y; y < area.Max.Y; y++ {
			for x := area.Min.X; x < area.Max.X; x++ {
				offset := rgba.PixOffset(x, y)
				pos := t.offset(x-min.X, y-min.Y)
				t.Pix[pos] = float64(rgba.Pix[offset])
				t.Pix[pos+1] = float64(rgba.Pix[offset+1])
				t.Pix[pos+2] = float64(rgba.Pix[offset+2])
			}
		}
		return t
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			t.SetRGB(x-min.X, y-min.Y, ConvertRGB(img.At(x, y)))
		}
	}
	return t
}

func (t *Tile) offset(x, y int) int {
	return (y*t.Size + x) * Channels
}

// Contains returns true if (x, y) is a pixel of the tile.
func (t *Tile) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < t.Size && y < t.Size
}

// Sample returns the value of channel c at pixel (x, y). Pixels outside of the
// tile have the value 0.
func (t *Tile) Sample(x, y, c int) float64 {
	if !t.Contains(x, y) {
		return 0
	}
	return t.Pix[t.offset(x, y)+c]
}

// RGBAt returns the color of pixel (x, y).
func (t *Tile) RGBAt(x, y int) RGB {
	pos := t.offset(x, y)
	return RGB{
		R: uint8(t.Pix[pos]),
		G: uint8(t.Pix[pos+1]),
		B: uint8(t.Pix[pos+2]),
	}
}

// SetRGB sets the color of pixel (x, y). It must only be called while the tile
// is constructed.
func (t *Tile) SetRGB(x, y int, c RGB) {
	pos := t.offset(x, y)
	t.Pix[pos] = float64(c.R)
	t.Pix[pos+1] = float64(c.G)
	t.Pix[pos+2] = float64(c.B)
}

// Clone returns a deep copy of the tile.
func (t *Tile) Clone() *Tile {
	res := &Tile{Size: t.Size, Pix: make([]float64, len(t.Pix))}
	copy(res.Pix, t.Pix)
	return res
}

// SameShape returns true if both tiles have the same dimensions.
func (t *Tile) SameShape(other *Tile) bool {
	return t.Size == other.Size && len(t.Pix) == len(other.Pix)
}

// Equals returns true if both tiles have the same shape and identical pixels.
func (t *Tile) Equals(other *Tile) bool {
	if !t.SameShape(other) {
		return false
	}
	for i, v := range t.Pix {
		if other.Pix[i] != v {
			return false
		}
	}
	return true
}

// Draw writes the tile into img with its top left corner at min.
func (t *Tile) Draw(img *image.RGBA, min image.Point) {
	for y := 0; y < t.Size; y++ {
		for x := 0; x < t.Size; x++ {
			c := t.RGBAt(x, y)
			img.SetRGBA(min.X+x, min.Y+y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
}

func (t *Tile) String() string {
	return fmt.Sprintf("Tile(%dx%d)", t.Size, t.Size)
}
