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
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
)

// TileMetric is a function that compares two tiles of the same shape.
// The smaller the metric value is the more equal the tiles are considered,
// identical tiles have the value 0. Metric values are ≥ 0.
//
// Metrics must be pure functions: they are called concurrently and the result
// must only depend on the pixels of the tiles. Metrics may assume that both
// tiles have the same shape, use Score to compare tiles of unknown shapes.
type TileMetric func(a, b *Tile) float64

// Score applies the metric to both tiles and returns ErrTileShape if the tiles
// can't be compared.
func Score(metric TileMetric, a, b *Tile) (float64, error) {
	if !a.SameShape(b) {
		return -1.0, fmt.Errorf("%w: %v and %v", ErrTileShape, a, b)
	}
	return metric(a, b), nil
}

// Manhattan returns the sum of the absolute differences of all samples in
// both tiles, that is |p1 - q1| + ... + |pn - qn|. This is the default metric.
func Manhattan(a, b *Tile) float64 {
	return floats.Distance(a.Pix, b.Pix, 1)
}

// Euclidean returns the euclidean distance of the samples of both tiles, that
// is sqrt( (p1 - q1)² + ... + (pn - qn)² ).
func Euclidean(a, b *Tile) float64 {
	return floats.Distance(a.Pix, b.Pix, 2)
}

func tileColor(t *Tile, pos int) colorful.Color {
	return colorful.Color{
		R: t.Pix[pos] / 255.0,
		G: t.Pix[pos+1] / 255.0,
		B: t.Pix[pos+2] / 255.0,
	}
}

// CIEDE2000 returns the sum of the CIEDE2000 color differences of all pixels
// in both tiles. It is much slower than Manhattan but closer to the perceived
// difference.
func CIEDE2000(a, b *Tile) float64 {
	var res float64
	for pos := 0; pos < len(a.Pix); pos += Channels {
		res += tileColor(a, pos).DistanceCIEDE2000(tileColor(b, pos))
	}
	return res
}

// The following variables are used for registering named
// metrics.

var (
	tileMetrics map[string]TileMetric
)

// DefaultMetricName is the name of the metric used if no metric is configured.
const DefaultMetricName = "l1"

// RegisterTileMetric is used to register a named tile metric. It will only add
// the metric if the name does not exist yet. The result is true if the metric
// was successfully registered and false otherwise.
// Some metrics are registered by default.
// All names must be lowercase strings, the register and get
// methods will always transform a string to lowercase.
//
// All metrics should be registered by an init method.
func RegisterTileMetric(name string, metric TileMetric) bool {
	name = strings.ToLower(name)
	if _, has := tileMetrics[name]; has {
		return false
	}
	tileMetrics[name] = metric
	return true
}

// GetTileMetricNames returns a sorted list of all registered named tile
// metrics.
func GetTileMetricNames() []string {
	res := make([]string, 0, len(tileMetrics))
	for key := range tileMetrics {
		res = append(res, key)
	}
	sort.Strings(res)
	return res
}

// GetTileMetric returns a registered tile metric.
// Returns the metric and true on success and nil and false
// otherwise.
func GetTileMetric(name string) (TileMetric, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if metric, has := tileMetrics[name]; has {
		return metric, true
	}
	return nil, false
}

func init() {
	tileMetrics = make(map[string]TileMetric)
	RegisterTileMetric("l1", Manhattan)
	RegisterTileMetric("manhattan", Manhattan)
	RegisterTileMetric("euclid", Euclidean)
	RegisterTileMetric("ciede2000", CIEDE2000)
}
