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
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimensions(t *testing.T) {
	for input, expected := range map[string][2]int{
		"128x128":  {128, 128},
		"64X32":    {64, 32},
		" 12 x 3 ": {12, 3},
	} {
		w, h, err := ParseDimensions(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, [2]int{w, h}, input)
	}
	for _, input := range []string{"", "128", "axb", "0x5", "5x-1", "1x2x3"} {
		_, _, err := ParseDimensions(input)
		assert.Error(t, err, input)
	}
	assert.Equal(t, "128x64", FormatDimensions(128, 64))
}

func TestStdProgressFunc(t *testing.T) {
	var buf bytes.Buffer
	progress := StdProgressFunc(&buf, "Search", 7, 5)
	for i := 1; i <= 7; i++ {
		progress(i)
	}
	assert.Equal(t, "Search: 5 of 7 (71.4%)\nSearch: 7 of 7 (100.0%)\n", buf.String())

	buf.Reset()
	progress = StdProgressFunc(&buf, "", 2, -1)
	progress(1)
	progress(2)
	assert.Equal(t, "Progress: 1 of 2 (50.0%)\nProgress: 2 of 2 (100.0%)\n", buf.String())

	buf.Reset()
	progress = StdProgressFunc(&buf, "", 10, 0)
	progress(10)
	assert.Empty(t, buf.String())
}

func TestLoggerProgressFunc(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	progress := LoggerProgressFunc("Matching tiles", 7, 5)
	for i := 1; i <= 7; i++ {
		progress(i)
	}
	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, log.InfoLevel, entries[0].Level)
	assert.Equal(t, "Matching tiles: 5 of 7 (71.4%)", entries[0].Message)
	// the last item is always reported
	assert.Equal(t, "Matching tiles: 7 of 7 (100.0%)", hook.LastEntry().Message)

	hook.Reset()
	progress = LoggerProgressFunc("", 3, -1)
	progress(1)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "Progress: 1 of 3 (33.3%)", hook.LastEntry().Message)
}
