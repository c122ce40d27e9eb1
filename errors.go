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
)

var (
	// ErrReadInput is the error all input errors unwrap to.
	ErrReadInput = errors.New("Can't read input image")

	// ErrWriteOutput is the error all output errors unwrap to.
	ErrWriteOutput = errors.New("Can't write output")
)

// InputError is returned if the input image can't be opened or decoded.
// errors.Is(err, ErrReadInput) is true for each InputError.
type InputError struct {
	Path string
	Err  error
}

func (err *InputError) Error() string {
	return fmt.Sprintf("%v \"%s\": %v", ErrReadInput, err.Path, err.Err)
}

// Unwrap returns ErrReadInput and the cause.
func (err *InputError) Unwrap() []error {
	return []error{ErrReadInput, err.Err}
}

// OutputError is returned if an output file can't be written.
// errors.Is(err, ErrWriteOutput) is true for each OutputError.
type OutputError struct {
	Path string
	Err  error
}

func (err *OutputError) Error() string {
	return fmt.Sprintf("%v \"%s\": %v", ErrWriteOutput, err.Path, err.Err)
}

// Unwrap returns ErrWriteOutput and the cause.
func (err *OutputError) Unwrap() []error {
	return []error{ErrWriteOutput, err.Err}
}
