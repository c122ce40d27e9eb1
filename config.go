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
	"io"
	"os"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Default values of the configuration.
const (
	DefaultInput         = "input.jpeg"
	DefaultOutput        = "ffractal.txt"
	DefaultResized       = "resized_original_image.jpg"
	DefaultConfigFile    = "fractal.yml"
	DefaultWidth         = 128
	DefaultHeight        = 128
	DefaultReducedWidth  = 64
	DefaultReducedHeight = 64
	DefaultBlockSize     = 4
	DefaultJPGQuality    = 95
	DefaultInterpolation = "bilinear"
)

// Config describes an encoding run, it can be read from a YAML file.
type Config struct {
	Paths struct {
		// Input is the image to encode.
		Input string `yaml:"input"`

		// Output is the file the match table is written to.
		Output string `yaml:"output"`

		// Resized is the file the image scaled to the canonical size is written
		// to. If it is empty the image is not written.
		Resized string `yaml:"resized"`
	} `yaml:"paths"`

	Image struct {
		// Width and Height are the canonical size, the input is scaled to this
		// size before it is divided.
		Width  int `yaml:"width"`
		Height int `yaml:"height"`

		// ReducedWidth and ReducedHeight are the size of the reduced image the
		// candidate tiles are taken from.
		ReducedWidth  int `yaml:"reducedWidth"`
		ReducedHeight int `yaml:"reducedHeight"`

		// Interpolation is the name of the interpolation function used for
		// scaling, see ParseInterP.
		Interpolation string `yaml:"interpolation"`

		// JPGQuality is the quality between 1 and 100 used when storing the
		// resized image as jpg.
		JPGQuality int `yaml:"jpgQuality"`
	} `yaml:"image"`

	Search struct {
		// BlockSize is the side length of all tiles.
		BlockSize int `yaml:"blockSize"`

		// AngleStep is the difference in degrees between two orientations.
		AngleStep int `yaml:"angleStep"`

		// Metric is the name of a registered tile metric.
		Metric string `yaml:"metric"`

		// DivideMode is crop, pad or strict, see DivideMode.
		DivideMode string `yaml:"divideMode"`

		// NumRoutines is the number of goroutines used for searching.
		NumRoutines int `yaml:"numRoutines"`

		// Precompute enables the rotation table.
		Precompute bool `yaml:"precompute"`
	} `yaml:"search"`

	Output struct {
		// Verbose enables debug logging and progress output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultNumRoutines returns the default number of goroutines, twice the
// number of CPUs.
func DefaultNumRoutines() int {
	res := runtime.NumCPU() * 2
	if res <= 0 {
		res = 4
	}
	return res
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Paths.Input = DefaultInput
	cfg.Paths.Output = DefaultOutput
	cfg.Paths.Resized = DefaultResized

	cfg.Image.Width = DefaultWidth
	cfg.Image.Height = DefaultHeight
	cfg.Image.ReducedWidth = DefaultReducedWidth
	cfg.Image.ReducedHeight = DefaultReducedHeight
	cfg.Image.Interpolation = DefaultInterpolation
	cfg.Image.JPGQuality = DefaultJPGQuality

	cfg.Search.BlockSize = DefaultBlockSize
	cfg.Search.AngleStep = DefaultAngleStep
	cfg.Search.Metric = DefaultMetricName
	cfg.Search.DivideMode = "crop"
	cfg.Search.NumRoutines = DefaultNumRoutines()
	cfg.Search.Precompute = true

	cfg.Output.Verbose = false
	return cfg
}

// LoadConfig loads the configuration from a YAML file. Values missing in the
// file keep their default value.
// If the file doesn't exist the default configuration is returned.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file, missing directories are
// created. Errors writing the file are of type *OutputError.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return &OutputError{Path: configPath, Err: err}
	}
	return writeAtomic(configPath, func(w io.Writer) error {
		_, writeErr := w.Write(data)
		return writeErr
	})
}

// Validate checks the configuration and returns the first invalid value.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Paths.Input == "":
		return errors.New("No input image given")
	case cfg.Paths.Output == "":
		return errors.New("No output file given")
	case cfg.Paths.Resized != "" && !JPGAndPNG(filepath.Ext(cfg.Paths.Resized)):
		return fmt.Errorf("Resized image must be a .jpg or .png file, got %s", cfg.Paths.Resized)
	case cfg.Image.Width <= 0 || cfg.Image.Height <= 0:
		return fmt.Errorf("Invalid canonical size %dx%d", cfg.Image.Width, cfg.Image.Height)
	case cfg.Image.ReducedWidth <= 0 || cfg.Image.ReducedHeight <= 0:
		return fmt.Errorf("Invalid reduced size %dx%d", cfg.Image.ReducedWidth, cfg.Image.ReducedHeight)
	case cfg.Image.JPGQuality < 1 || cfg.Image.JPGQuality > 100:
		return fmt.Errorf("JPG quality must be between 1 and 100, got %d", cfg.Image.JPGQuality)
	case cfg.Search.BlockSize <= 0:
		return fmt.Errorf("Block size must be positive, got %d", cfg.Search.BlockSize)
	case cfg.Search.BlockSize > cfg.Image.ReducedWidth || cfg.Search.BlockSize > cfg.Image.ReducedHeight:
		return fmt.Errorf("Block size %d is larger than the reduced image", cfg.Search.BlockSize)
	case cfg.Search.NumRoutines <= 0:
		return fmt.Errorf("Number of routines must be positive, got %d", cfg.Search.NumRoutines)
	}
	if stepErr := ValidAngleStep(cfg.Search.AngleStep); stepErr != nil {
		return stepErr
	}
	if _, metricErr := cfg.TileMetric(); metricErr != nil {
		return metricErr
	}
	if _, modeErr := ParseDivideMode(cfg.Search.DivideMode); modeErr != nil {
		return modeErr
	}
	if _, interPErr := ParseInterP(cfg.Image.Interpolation); interPErr != nil {
		return interPErr
	}
	return nil
}

// TileMetric returns the registered metric named in the configuration.
func (cfg *Config) TileMetric() (TileMetric, error) {
	metric, ok := GetTileMetric(cfg.Search.Metric)
	if !ok {
		return nil, fmt.Errorf("Unknown metric \"%s\", registered metrics: %v",
			cfg.Search.Metric, GetTileMetricNames())
	}
	return metric, nil
}

// ResolvePath returns the absolute path given some other path.
// If path is absolute it is returned unchanged, a relative path is joined
// with base.
//
// The home directory can be used like on Unix: ~/Pictures is the Pictures
// directory in the home directory of the user.
func ResolvePath(base, path string) (string, error) {
	// first extend with homedir
	res, pathErr := homedir.Expand(path)
	if pathErr != nil {
		return "", pathErr
	}
	if !filepath.IsAbs(res) {
		res = filepath.Join(base, res)
	}
	return filepath.Abs(res)
}

// ResolvePaths replaces all paths in the configuration by absolute paths,
// relative paths are interpreted relative to base.
func (cfg *Config) ResolvePaths(base string) error {
	for _, path := range []*string{&cfg.Paths.Input, &cfg.Paths.Output, &cfg.Paths.Resized} {
		if *path == "" {
			continue
		}
		resolved, err := ResolvePath(base, *path)
		if err != nil {
			return err
		}
		*path = resolved
	}
	return nil
}
