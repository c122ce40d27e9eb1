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
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	// register additional decoders for image.Decode
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// SupportedImageFunc is a function that takes a file extension and decides if
// this file extension is supported.
//
// The extension passed to this function could be for example ".txt" or ".jpg".
type SupportedImageFunc func(ext string) bool

// JPGAndPNG is an implementation of SupportedImageFunc accepting jpg and png
// file extensions. These are the formats we can write.
func JPGAndPNG(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png":
		return true
	default:
		return false
	}
}

// DecodableImage is an implementation of SupportedImageFunc accepting all
// file extensions that can be read.
func DecodableImage(ext string) bool {
	switch strings.ToLower(ext) {
	case ".bmp", ".tif", ".tiff", ".webp":
		return true
	default:
		return JPGAndPNG(ext)
	}
}

// ImageResizer resizes an image to the given width and height.
type ImageResizer interface {
	Resize(width, height uint, img image.Image) image.Image
}

// NfntResizer uses the nfnt/resize package to resize an image.
type NfntResizer struct {
	// InterP is the interpolation function to use.
	InterP resize.InterpolationFunction
}

// NewNfntResizer returns a new resizer given the interpolation function.
func NewNfntResizer(interP resize.InterpolationFunction) NfntResizer {
	return NfntResizer{interP}
}

// GetInterP returns an interpolation function given a desired quality.
// The higher the quality the better the interpolation should be, but execution
// time is higher. Currently supported are values between 0 and 4, each
// selecting a different interpolation function. Values greater than 4 are
// treated as 5 (Lanczos3).
func GetInterP(quality uint) resize.InterpolationFunction {
	switch quality {
	case 0:
		return resize.NearestNeighbor
	case 1:
		return resize.Bilinear
	case 2:
		return resize.Bicubic
	case 3:
		return resize.MitchellNetravali
	case 4:
		return resize.Lanczos2
	default:
		return resize.Lanczos3
	}
}

var interPNames = map[string]uint{
	"nearest":  0,
	"bilinear": 1,
	"bicubic":  2,
	"mitchell": 3,
	"lanczos2": 4,
	"lanczos3": 5,
}

// ParseInterP returns the interpolation function with the given name, one of
// nearest, bilinear, bicubic, mitchell, lanczos2 or lanczos3.
func ParseInterP(name string) (resize.InterpolationFunction, error) {
	quality, has := interPNames[strings.ToLower(strings.TrimSpace(name))]
	if !has {
		return resize.Bilinear, fmt.Errorf("Unknown interpolation function \"%s\"", name)
	}
	return GetInterP(quality), nil
}

var (
	// DefaultResizer is the resizer that is used by default. It uses bilinear
	// interpolation.
	DefaultResizer = NewNfntResizer(resize.Bilinear)
)

// Resize calls nfnt/resize methods.
func (resizer NfntResizer) Resize(width, height uint, img image.Image) image.Image {
	return resize.Resize(width, height, img, resizer.InterP)
}

// ToRGBA converts an image to *image.RGBA with bounds starting in (0, 0).
// If img already is such an image it is returned unchanged.
func ToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) {
		return rgba
	}
	res := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(res, res.Bounds(), img, bounds.Min, draw.Src)
	return res
}

// ResizeRGBA resizes img to exactly width x height and converts the result
// to *image.RGBA.
func ResizeRGBA(resizer ImageResizer, width, height int, img image.Image) *image.RGBA {
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return ToRGBA(img)
	}
	return ToRGBA(resizer.Resize(uint(width), uint(height), img))
}

// LoadImage opens and decodes the image file, the result is an *image.RGBA.
// All errors are of type *InputError.
func LoadImage(path string) (*image.RGBA, error) {
	r, openErr := os.Open(path)
	if openErr != nil {
		return nil, &InputError{Path: path, Err: openErr}
	}
	defer r.Close()
	img, _, decodeErr := image.Decode(r)
	if decodeErr != nil {
		return nil, &InputError{Path: path, Err: decodeErr}
	}
	if img.Bounds().Empty() {
		return nil, &InputError{Path: path, Err: fmt.Errorf("Image is empty")}
	}
	return ToRGBA(img), nil
}

// SaveImage writes the image to file, the format (jpg or png) is determined by
// the file extension. Like SaveMatches the file is replaced atomically.
// All errors are of type *OutputError.
func SaveImage(file string, img image.Image, jpgQuality int) error {
	ext := filepath.Ext(file)
	if !JPGAndPNG(ext) {
		return &OutputError{Path: file,
			Err: fmt.Errorf("Unsupported file type: %s, expected .jpg or .png", ext)}
	}
	return writeAtomic(file, func(w io.Writer) error {
		switch strings.ToLower(ext) {
		case ".jpg", ".jpeg":
			return jpeg.Encode(w, img, &jpeg.Options{Quality: jpgQuality})
		default:
			return png.Encode(w, img)
		}
	})
}
