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
	"math"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrNoCandidates is returned if a search should be performed without any
	// candidate tiles.
	ErrNoCandidates = errors.New("No candidate tiles to search in")
)

// ClosestMatchSearch finds for each source tile the candidate tile and the
// orientation that minimize the metric.
//
// The search is exhaustive: Each source tile is compared with each candidate
// rotated by each orientation. If several pairs have the same metric value the
// first one wins, candidates are iterated in ascending order and for each
// candidate the orientations are iterated in ascending order.
//
// NumRoutines source tiles are processed concurrently, the search for a single
// source tile happens in one goroutine.
// If Precompute is true all rotations of the candidates are computed once
// before the search starts (see RotationTable), otherwise the candidates are
// rotated each time they're compared.
type ClosestMatchSearch struct {
	Metric      TileMetric
	AngleStep   int
	NumRoutines int
	Precompute  bool
}

// NewClosestMatchSearch returns a new search given the metric, the angle step
// and the number of go routines to run.
// If metric is nil Manhattan is used.
func NewClosestMatchSearch(metric TileMetric, angleStep, numRoutines int) *ClosestMatchSearch {
	if metric == nil {
		metric = Manhattan
	}
	if numRoutines <= 0 {
		numRoutines = 1
	}
	return &ClosestMatchSearch{
		Metric:      metric,
		AngleStep:   angleStep,
		NumRoutines: numRoutines,
		Precompute:  true,
	}
}

// candidateSource returns candidate j rotated by orientation k.
type candidateSource func(j int, k Orientation) *Tile

func (s *ClosestMatchSearch) candidateSource(candidates *TileCollection) (candidateSource, error) {
	if !s.Precompute {
		step := s.AngleStep
		return func(j int, k Orientation) *Tile {
			return Rotate(candidates.Tiles[j], k.Angle(step))
		}, nil
	}
	table, tableErr := NewRotationTable(candidates, s.AngleStep, s.NumRoutines)
	if tableErr != nil {
		return nil, tableErr
	}
	return table.Get, nil
}

// bestMatch searches the best candidate for a single source tile. It returns
// the index of the candidate, the orientation and the metric value.
func (s *ClosestMatchSearch) bestMatch(tile *Tile, numCandidates int,
	orientations []Orientation, get candidateSource) (int, Orientation, float64) {
	best := math.Inf(1)
	var bestCandidate int
	var bestOrientation Orientation
	for j := 0; j < numCandidates; j++ {
		for _, k := range orientations {
			dist := s.Metric(tile, get(j, k))
			// strictly smaller, the first minimum wins
			if dist < best {
				best = dist
				bestCandidate = j
				bestOrientation = k
			}
		}
	}
	return bestCandidate, bestOrientation, best
}

func (s *ClosestMatchSearch) validate(sources, candidates *TileCollection) error {
	if s.Metric == nil {
		return errors.New("No metric given for the search")
	}
	if stepErr := ValidAngleStep(s.AngleStep); stepErr != nil {
		return stepErr
	}
	if sources.TileSize != candidates.TileSize {
		return fmt.Errorf("%w: source tile size %d, candidate tile size %d",
			ErrTileShape, sources.TileSize, candidates.TileSize)
	}
	if sources.Len() > 0 && candidates.Len() == 0 {
		return ErrNoCandidates
	}
	return nil
}

// Search computes the match for each source tile, the result contains one
// match for each source tile in the same order.
// progress is called (in the calling goroutine) each time a source tile is
// done, it may be nil.
func (s *ClosestMatchSearch) Search(sources, candidates *TileCollection, progress ProgressFunc) ([]Match, error) {
	if validErr := s.validate(sources, candidates); validErr != nil {
		return nil, validErr
	}
	numTiles := sources.Len()
	result := make([]Match, numTiles)
	if numTiles == 0 {
		return result, nil
	}
	get, getErr := s.candidateSource(candidates)
	if getErr != nil {
		return nil, getErr
	}
	orientations := Orientations(s.AngleStep)
	numCandidates := candidates.Len()
	numRoutines := s.NumRoutines
	if numRoutines <= 0 {
		numRoutines = 1
	}

	log.WithFields(log.Fields{
		"sources":      numTiles,
		"candidates":   numCandidates,
		"orientations": len(orientations),
		"routines":     numRoutines,
		"precompute":   s.Precompute,
	}).Debug("Searching closest matches")

	// each worker writes only the entries of the tiles it received, the result
	// is not read before all workers are done
	jobs := make(chan int, BufferSize)
	done := make(chan bool, BufferSize)
	var wg sync.WaitGroup
	wg.Add(numRoutines)
	for w := 0; w < numRoutines; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				j, k, dist := s.bestMatch(sources.Tiles[i], numCandidates, orientations, get)
				result[i] = EncodeMatch(candidates, j, k, dist)
				done <- true
			}
		}()
	}

	// add jobs
	go func() {
		for i := 0; i < numTiles; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	for i := 0; i < numTiles; i++ {
		<-done
		if progress != nil {
			progress(i + 1)
		}
	}
	wg.Wait()
	return result, nil
}
