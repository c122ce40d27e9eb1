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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// This file contains functions to store and retrieve match tables.
// A match table is a plain text file with one line per source tile. Each line
// contains the x and y coordinate and the orientation of the match, separated
// by a single space. The line number defines the index of the source tile.
// There is no header and no other content.

// WriteMatches writes the match table to w.
func WriteMatches(w io.Writer, matches []Match) error {
	buf := bufio.NewWriter(w)
	for _, m := range matches {
		if _, err := fmt.Fprintf(buf, "%d %d %d\n", m.X, m.Y, m.Orientation); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// ReadMatches parses a match table as written by WriteMatches. Only X, Y and
// Orientation are set in the result, empty lines are not allowed.
func ReadMatches(r io.Reader) ([]Match, error) {
	res := make([]Match, 0)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			return nil, fmt.Errorf("Invalid match in line %d: expected 3 values, got %d", lineNum, len(fields))
		}
		var values [3]int
		for i, field := range fields {
			val, parseErr := strconv.Atoi(field)
			if parseErr != nil {
				return nil, fmt.Errorf("Invalid match in line %d: %w", lineNum, parseErr)
			}
			if val < 0 {
				return nil, fmt.Errorf("Invalid match in line %d: negative value %d", lineNum, val)
			}
			values[i] = val
		}
		res = append(res, Match{X: values[0], Y: values[1], Orientation: Orientation(values[2])})
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return nil, scanErr
	}
	return res, nil
}

// writeAtomic calls write with a temporary file in the directory of path and
// renames it to path if write succeeds, so path is either completely written
// or not touched at all. All errors are of type *OutputError.
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, tmpErr := os.CreateTemp(dir, "."+base+".*")
	if tmpErr != nil {
		return &OutputError{Path: path, Err: tmpErr}
	}
	tmpName := tmp.Name()
	writeErr := write(tmp)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		// CreateTemp uses 0600
		writeErr = os.Chmod(tmpName, 0644)
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpName, path)
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return &OutputError{Path: path, Err: writeErr}
	}
	return nil
}

// SaveMatches writes the match table to the given file, see writeAtomic.
// All errors are of type *OutputError.
func SaveMatches(path string, matches []Match) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteMatches(w, matches)
	})
}

// LoadMatches reads the match table from the given file.
func LoadMatches(path string) ([]Match, error) {
	r, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer r.Close()
	return ReadMatches(r)
}
