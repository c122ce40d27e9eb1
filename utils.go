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
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	// Debug is true if code should be compiled in debug mode, printing
	// more stuff and performing checks.
	Debug = false
)

var (
	// BufferSize is the (default) size of buffers. Some methods create buffered
	// channels, this parameter controls how big such buffers might be.
	// Usually such buffers store no big data (ints, bools etc.).
	BufferSize = 1000
)

// ProgressFunc is a function that is used to inform a caller about the progress
// of a called function.
// For example if we search matches for thousands of tiles we might wish to know
// how far the call is and give feedback to the user.
// The called method calls the progress function after each finished item, num
// is the number of items finished so far.
type ProgressFunc func(num int)

func progressPercent(num, max int) float64 {
	percent := (float64(num) / float64(max)) * 100.0
	if percent > 100.0 {
		percent = 100.0
	}
	return percent
}

// reportProgress decides if a progress message should be printed for num.
// step describes how often to report (for example step = 100 every 100 items),
// a negative step reports each item.
func reportProgress(num, max, step int) bool {
	if step == 0 || max == 0 {
		return false
	}
	return step < 0 || num%step == 0 || num == max
}

// LoggerProgressFunc is a parameterized ProgressFunc that logs to log.
// The output describes the progress (how many of how many objects processed).
// Log messages may have an addition prefix. max is the total number of elements
// to process and step describes how often to print to the log (for example
// step = 100 every 100 items).
func LoggerProgressFunc(prefix string, max, step int) ProgressFunc {
	return func(num int) {
		if !reportProgress(num, max, step) {
			return
		}
		percent := progressPercent(num, max)
		if prefix == "" {
			log.Infof("Progress: %d of %d (%.1f%%)", num, max, percent)
		} else {
			log.Infof("%s: %d of %d (%.1f%%)", prefix, num, max, percent)
		}
	}
}

// StdProgressFunc is a parameterized ProgressFunc that writes to the
// specified writer.
// See LoggerProgressFunc for the meaning of the arguments.
func StdProgressFunc(w io.Writer, prefix string, max, step int) ProgressFunc {
	return func(num int) {
		if !reportProgress(num, max, step) {
			return
		}
		percent := progressPercent(num, max)
		if prefix == "" {
			fmt.Fprintf(w, "Progress: %d of %d (%.1f%%)\n", num, max, percent)
		} else {
			fmt.Fprintf(w, "%s: %d of %d (%.1f%%)\n", prefix, num, max, percent)
		}
	}
}

// ParseDimensions parses a string of the form "AxB" where A and B are positive
// integers.
func ParseDimensions(s string) (int, int, error) {
	split := strings.Split(strings.ToLower(s), "x")
	if len(split) != 2 {
		return -1, -1, fmt.Errorf("Invalid dimension format: %s. Expect \"AxB\"", s)
	}
	first, second := strings.TrimSpace(split[0]), strings.TrimSpace(split[1])
	firstInt, firstErr := strconv.Atoi(first)
	if firstErr != nil {
		return -1, -1, firstErr
	}
	secondInt, secondErr := strconv.Atoi(second)
	if secondErr != nil {
		return -1, -1, secondErr
	}
	if firstInt <= 0 || secondInt <= 0 {
		return -1, -1, fmt.Errorf("Dimensions must be positive, got %d and %d",
			firstInt, secondInt)
	}
	return firstInt, secondInt, nil
}

// FormatDimensions is the inverse of ParseDimensions.
func FormatDimensions(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}
