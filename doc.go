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

// Package gofractal implements the encoding phase of a fractal style image
// compressor. A query image is scaled to a canonical size, divided into small
// square tiles and for each of these tiles the most similar tile of a reduced
// copy of the image is searched, trying a discrete set of rotations.
//
// The result of an encoding is a table of match records, one for each source
// tile: the position of the matching tile in the reduced image and the index
// of the rotation applied to it.
//
// It ships with an executable (cmd/fractal) that encodes a single image with
// the settings from an optional YAML configuration file.
package gofractal
