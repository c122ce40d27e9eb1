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
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrGeometry is returned by a strict division if the image dimensions are
	// not a multiple of the tile size.
	ErrGeometry = errors.New("Image dimensions are not a multiple of the tile size")
)

// DivideMode is used to describe in which way to handle remaining pixels
// in image division.
// As an example consider an image with 99 pixels width. If we want to divide
// the image into tiles with 10 pixels this leads to 9 tiles with 10 pixels,
// but 9 pixels are left. DivideMode now describes what to do with the
// remaining 9 pixels:
// Crop means to discard the remaining pixels.
// Pad means to add an additional tile with width 10 (and thus describing a
// tile that does not intersect with the image everywhere), the missing pixels
// are black.
// Strict means that such an image is rejected.
//
// Tiles are always squares, a tile that is adjusted to the remaining pixels is
// not supported.
type DivideMode int

const (
	// DivideCrop is the mode in which remaining pixels are discarded.
	DivideCrop DivideMode = iota
	// DividePad is the mode in which a tile of a certain size is created even
	// if not enough pixels are remaining.
	DividePad
	// DivideStrict is the mode in which the image dimensions must be multiples
	// of the tile size.
	DivideStrict
)

func (mode DivideMode) String() string {
	switch mode {
	case DivideCrop:
		return "DivideCrop"
	case DividePad:
		return "DividePad"
	case DivideStrict:
		return "DivideStrict"
	default:
		return fmt.Sprintf("DivideMode(%d)", mode)
	}
}

// ParseDivideMode parses the name of a divide mode, "crop", "pad" or "strict".
func ParseDivideMode(s string) (DivideMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crop", "":
		return DivideCrop, nil
	case "pad":
		return DividePad, nil
	case "strict":
		return DivideStrict, nil
	default:
		return DivideCrop, fmt.Errorf("Unknown divide mode \"%s\", expected crop, pad or strict", s)
	}
}

// TileDivision represents the divison of an image into rectangles.
//
// Tiles are not stored in the fashion (x, y) but (y, x). That means each entry
// in the division describes one row of the image.
// The get method does this correctly.
type TileDivision [][]image.Rectangle

// Get returns the rectangle at position div[y][x], that is the rectangle
// in row y and column x.
func (div TileDivision) Get(x, y int) image.Rectangle {
	return div[y][x]
}

// Size returns the number of rectangles in the division.
func (div TileDivision) Size() int {
	res := 0
	for _, row := range div {
		res += len(row)
	}
	return res
}

// FixedSizeDivider divides an image into square tiles with the given side
// length. Tile corners are placed at multiples of Size, starting in the top
// left corner of the image.
// The DivideMode describes how to deal with "remaining" pixels.
type FixedSizeDivider struct {
	Size int
	Mode DivideMode
}

// NewFixedSizeDivider returns a new FixedSizeDivider.
func NewFixedSizeDivider(size int, mode DivideMode) FixedSizeDivider {
	return FixedSizeDivider{Size: size, Mode: mode}
}

func (divider FixedSizeDivider) getSize(originalDimension int) (int, error) {
	tileDimension := divider.Size
	switch {
	case originalDimension%tileDimension == 0:
		return originalDimension / tileDimension, nil
	case divider.Mode == DivideCrop:
		return originalDimension / tileDimension, nil
	case divider.Mode == DividePad:
		return (originalDimension / tileDimension) + 1, nil
	default:
		if Debug && divider.Mode != DivideStrict {
			log.Warn("Got divide mode ", divider.Mode, " expected ", DivideStrict)
		}
		return -1, fmt.Errorf("%w: %d is not a multiple of %d", ErrGeometry,
			originalDimension, tileDimension)
	}
}

// Divide returns the tile rectangles for an image with the given bounds.
// The division is empty if the bounds are empty or (crop mode) smaller than a
// single tile.
func (divider FixedSizeDivider) Divide(bounds image.Rectangle) (TileDivision, error) {
	if divider.Size <= 0 {
		return nil, fmt.Errorf("Invalid tile size %d, must be positive", divider.Size)
	}
	// no division possible if bounds are empty
	if bounds.Empty() {
		return nil, nil
	}
	numRows, rowsErr := divider.getSize(bounds.Dy())
	if rowsErr != nil {
		return nil, rowsErr
	}
	numCols, colsErr := divider.getSize(bounds.Dx())
	if colsErr != nil {
		return nil, colsErr
	}
	res := make(TileDivision, numRows)
	for i := 0; i < numRows; i++ {
		res[i] = make([]image.Rectangle, numCols)
		for j := 0; j < numCols; j++ {
			x0 := bounds.Min.X + j*divider.Size
			y0 := bounds.Min.Y + i*divider.Size
			res[i][j] = image.Rect(x0, y0, x0+divider.Size, y0+divider.Size)
		}
	}
	return res, nil
}

// TileCollection is the result of dividing an image into square tiles.
// Tiles are stored in row-major order: left to right, top to bottom.
// The index of a tile is the only handle to recover its position in the image,
// see Point.
type TileCollection struct {
	Tiles []*Tile

	// TileSize is the side length of each tile.
	TileSize int

	// Rows and Columns describe the grid of tiles.
	Rows, Columns int

	// Width and Height are the dimensions of the divided image.
	Width, Height int
}

// Len returns the number of tiles.
func (c *TileCollection) Len() int {
	return len(c.Tiles)
}

// Get returns the tile with the given index.
func (c *TileCollection) Get(index int) *Tile {
	return c.Tiles[index]
}

// Point returns the top left corner of the tile with the given index, that is
// ((index % Columns) * TileSize, (index / Columns) * TileSize).
//
// Note that this point is not necessarily inside the image, see Clamp.
func (c *TileCollection) Point(index int) image.Point {
	if c.Columns == 0 {
		return image.Point{}
	}
	return image.Pt((index%c.Columns)*c.TileSize, (index/c.Columns)*c.TileSize)
}

// Clamp moves p s.t. a tile with its top left corner in p lies within the
// image: x + TileSize ≤ Width and y + TileSize ≤ Height. Coordinates never
// become negative, even if the image is smaller than a single tile.
func (c *TileCollection) Clamp(p image.Point) image.Point {
	maxX := IntMax(0, c.Width-c.TileSize)
	maxY := IntMax(0, c.Height-c.TileSize)
	return image.Pt(IntClamp(p.X, 0, maxX), IntClamp(p.Y, 0, maxY))
}

// DivideImage computes the actual tiles from an image and the distribution
// into tile rectangles. Each tile is a copy of the image area, parts of the
// area outside the image are black.
// Tiles are copied concurrently by numRoutines goroutines.
func DivideImage(img image.Image, distribution TileDivision, size, numRoutines int) *TileCollection {
	if numRoutines <= 0 {
		numRoutines = 1
	}
	bounds := img.Bounds()
	res := &TileCollection{
		TileSize: size,
		Rows:     len(distribution),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}
	if res.Rows > 0 {
		res.Columns = len(distribution[0])
	}
	numTiles := distribution.Size()
	res.Tiles = make([]*Tile, numTiles)

	// struct that we use for the channel
	type job struct {
		pos int
		r   image.Rectangle
	}

	jobs := make(chan job, BufferSize)
	done := make(chan bool, BufferSize)

	for w := 0; w < numRoutines; w++ {
		go func() {
			for next := range jobs {
				res.Tiles[next.pos] = TileFromImage(img, next.r.Min, size)
				done <- true
			}
		}()
	}
	go func() {
		pos := 0
		for y, row := range distribution {
			for x := range row {
				jobs <- job{pos, distribution.Get(x, y)}
				pos++
			}
		}
		close(jobs)
	}()
	for i := 0; i < numTiles; i++ {
		<-done
	}
	return res
}

// Partition divides img into square tiles of the given size, see
// FixedSizeDivider and DivideImage.
func Partition(img image.Image, size int, mode DivideMode, numRoutines int) (*TileCollection, error) {
	divider := NewFixedSizeDivider(size, mode)
	dist, divErr := divider.Divide(img.Bounds())
	if divErr != nil {
		return nil, divErr
	}
	return DivideImage(img, dist, size, numRoutines), nil
}
