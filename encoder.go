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
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ProgressFactory creates a ProgressFunc once the total number of items is
// known.
type ProgressFactory func(total int) ProgressFunc

// Encoder runs the complete encoding of an image: The image is scaled to the
// canonical size and a reduced copy of the canonical image is created. Both
// are divided into tiles of BlockSize and for each tile of the canonical image
// the closest match in the reduced image is searched.
type Encoder struct {
	// Width and Height are the canonical size.
	Width, Height int

	// ReducedWidth and ReducedHeight are the size of the reduced image.
	ReducedWidth, ReducedHeight int

	// BlockSize is the side length of the tiles.
	BlockSize int

	// Mode describes how to divide images which dimensions are not a multiple
	// of BlockSize.
	Mode DivideMode

	Resizer ImageResizer
	Search  *ClosestMatchSearch

	// NewProgress is used to create the progress function for the search, it
	// may be nil.
	NewProgress ProgressFactory
}

// NewEncoder returns a new encoder for the configuration.
func NewEncoder(cfg *Config) (*Encoder, error) {
	if validErr := cfg.Validate(); validErr != nil {
		return nil, validErr
	}
	metric, metricErr := cfg.TileMetric()
	if metricErr != nil {
		return nil, metricErr
	}
	mode, modeErr := ParseDivideMode(cfg.Search.DivideMode)
	if modeErr != nil {
		return nil, modeErr
	}
	interP, interPErr := ParseInterP(cfg.Image.Interpolation)
	if interPErr != nil {
		return nil, interPErr
	}
	search := NewClosestMatchSearch(metric, cfg.Search.AngleStep, cfg.Search.NumRoutines)
	search.Precompute = cfg.Search.Precompute
	return &Encoder{
		Width:         cfg.Image.Width,
		Height:        cfg.Image.Height,
		ReducedWidth:  cfg.Image.ReducedWidth,
		ReducedHeight: cfg.Image.ReducedHeight,
		BlockSize:     cfg.Search.BlockSize,
		Mode:          mode,
		Resizer:       NewNfntResizer(interP),
		Search:        search,
	}, nil
}

// Result is the result of encoding an image.
type Result struct {
	// RunID identifies the encoding in log messages.
	RunID uuid.UUID

	// Matches contains one match for each tile in Sources.
	Matches []Match

	// Source is the image scaled to the canonical size, Reduced the scaled
	// down version of Source.
	Source, Reduced *image.RGBA

	// Sources are the tiles of Source, Candidates the tiles of Reduced.
	Sources, Candidates *TileCollection

	// Duration is the time the search took.
	Duration time.Duration
}

// Prepare scales img to the canonical size and creates the reduced image from
// the canonical image.
func (e *Encoder) Prepare(img image.Image) (source, reduced *image.RGBA) {
	resizer := e.Resizer
	if resizer == nil {
		resizer = DefaultResizer
	}
	source = ResizeRGBA(resizer, e.Width, e.Height, img)
	reduced = ResizeRGBA(resizer, e.ReducedWidth, e.ReducedHeight, source)
	return
}

// Partition divides both images concurrently.
func (e *Encoder) Partition(source, reduced image.Image) (sources, candidates *TileCollection, err error) {
	numRoutines := 1
	if e.Search != nil && e.Search.NumRoutines > 0 {
		numRoutines = e.Search.NumRoutines
	}
	var g errgroup.Group
	g.Go(func() error {
		var divErr error
		sources, divErr = Partition(source, e.BlockSize, e.Mode, numRoutines)
		if divErr != nil {
			return fmt.Errorf("Can't divide source image: %w", divErr)
		}
		return nil
	})
	g.Go(func() error {
		var divErr error
		candidates, divErr = Partition(reduced, e.BlockSize, e.Mode, numRoutines)
		if divErr != nil {
			return fmt.Errorf("Can't divide reduced image: %w", divErr)
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, nil, err
	}
	return sources, candidates, nil
}

// EncodeImages divides source and reduced and searches the matches. The images
// are not scaled, see Encode.
func (e *Encoder) EncodeImages(source, reduced *image.RGBA) (*Result, error) {
	res := &Result{
		RunID:   uuid.New(),
		Source:  source,
		Reduced: reduced,
	}
	logger := log.WithField("run", res.RunID)
	sources, candidates, partErr := e.Partition(source, reduced)
	if partErr != nil {
		return nil, partErr
	}
	res.Sources, res.Candidates = sources, candidates
	logger.WithFields(log.Fields{
		"sources":    sources.Len(),
		"candidates": candidates.Len(),
		"blockSize":  e.BlockSize,
		"mode":       e.Mode,
	}).Info("Divided images into tiles")

	search := e.Search
	if search == nil {
		search = NewClosestMatchSearch(Manhattan, DefaultAngleStep, DefaultNumRoutines())
	}
	var progress ProgressFunc
	if e.NewProgress != nil {
		progress = e.NewProgress(sources.Len())
	}
	start := time.Now()
	matches, searchErr := search.Search(sources, candidates, progress)
	if searchErr != nil {
		return nil, searchErr
	}
	res.Matches = matches
	res.Duration = time.Since(start)
	logger.WithFields(log.Fields{
		"matches":  len(matches),
		"duration": res.Duration,
	}).Info("Search done")
	return res, nil
}

// Encode scales the image (see Prepare) and encodes it.
func (e *Encoder) Encode(img image.Image) (*Result, error) {
	source, reduced := e.Prepare(img)
	return e.EncodeImages(source, reduced)
}

// Run encodes the input image of the configuration and writes the match
// table and (if configured) the resized image.
//
// If the input can't be read an *InputError is returned before any
// computation starts. Outputs are written after all matches are computed, the
// match table first and then the resized image. Both are replaced atomically,
// if one can't be written an *OutputError is returned.
func Run(cfg *Config, newProgress ProgressFactory) (*Result, error) {
	encoder, encErr := NewEncoder(cfg)
	if encErr != nil {
		return nil, encErr
	}
	encoder.NewProgress = newProgress
	log.WithField("input", cfg.Paths.Input).Debug("Reading image")
	img, imgErr := LoadImage(cfg.Paths.Input)
	if imgErr != nil {
		return nil, imgErr
	}
	res, resErr := encoder.Encode(img)
	if resErr != nil {
		return nil, resErr
	}
	logger := log.WithField("run", res.RunID)
	// the table is the actual result, the resized image is only written if
	// the table was saved
	if saveErr := SaveMatches(cfg.Paths.Output, res.Matches); saveErr != nil {
		return nil, saveErr
	}
	logger.WithField("file", cfg.Paths.Output).Info("Saved match table")
	if cfg.Paths.Resized != "" {
		if saveErr := SaveImage(cfg.Paths.Resized, res.Source, cfg.Image.JPGQuality); saveErr != nil {
			return nil, saveErr
		}
		logger.WithField("file", cfg.Paths.Resized).Debug("Saved resized image")
	}
	return res, nil
}
