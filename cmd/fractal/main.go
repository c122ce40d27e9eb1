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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/FabianWe/gofractal"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// exit codes, input and output errors can be distinguished by the caller
const (
	exitFailure = 1
	exitInput   = 2
	exitOutput  = 3
)

type options struct {
	configPath  string
	writeConfig string
	input       string
	output      string
	resized     string
	size        string
	reduced     string
	metric      string
	mode        string
	blockSize   int
	routines    int
	verbose     bool
	quiet       bool
}

// parseFlags defines and parses command-line flags. Without any flags the
// settings from fractal.yml (if present) or the defaults are used.
func parseFlags() *options {
	opts := &options{}

	pflag.StringVarP(&opts.configPath, "config", "c", gofractal.DefaultConfigFile, "YAML configuration file, defaults are used if it does not exist.")
	pflag.StringVar(&opts.writeConfig, "write-config", "", "Write the effective configuration to this file and exit.")
	pflag.StringVarP(&opts.input, "input", "i", gofractal.DefaultInput, "Image to encode.")
	pflag.StringVarP(&opts.output, "output", "o", gofractal.DefaultOutput, "File to write the match table to.")
	pflag.StringVar(&opts.resized, "resized", gofractal.DefaultResized, "File to write the resized image to, empty to disable.")
	pflag.StringVar(&opts.size, "size", gofractal.FormatDimensions(gofractal.DefaultWidth, gofractal.DefaultHeight), "Canonical image size.")
	pflag.StringVar(&opts.reduced, "reduced", gofractal.FormatDimensions(gofractal.DefaultReducedWidth, gofractal.DefaultReducedHeight), "Size of the reduced image.")
	pflag.StringVarP(&opts.metric, "metric", "m", gofractal.DefaultMetricName, "Tile metric to use.")
	pflag.StringVar(&opts.mode, "divide", "crop", "How to divide images that are not a multiple of the block size (crop, pad, strict).")
	pflag.IntVarP(&opts.blockSize, "block-size", "b", gofractal.DefaultBlockSize, "Side length of the tiles.")
	pflag.IntVarP(&opts.routines, "routines", "r", gofractal.DefaultNumRoutines(), "Number of goroutines used for the search.")
	pflag.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug output.")
	pflag.BoolVarP(&opts.quiet, "quiet", "q", false, "Don't show progress.")

	pflag.Parse()
	return opts
}

// applyFlags overwrites the configuration with all flags set explicitly.
func applyFlags(cfg *gofractal.Config, opts *options) error {
	changed := pflag.CommandLine.Changed
	if changed("input") {
		cfg.Paths.Input = opts.input
	}
	if changed("output") {
		cfg.Paths.Output = opts.output
	}
	if changed("resized") {
		cfg.Paths.Resized = opts.resized
	}
	if changed("size") {
		w, h, err := gofractal.ParseDimensions(opts.size)
		if err != nil {
			return err
		}
		cfg.Image.Width, cfg.Image.Height = w, h
	}
	if changed("reduced") {
		w, h, err := gofractal.ParseDimensions(opts.reduced)
		if err != nil {
			return err
		}
		cfg.Image.ReducedWidth, cfg.Image.ReducedHeight = w, h
	}
	if changed("metric") {
		cfg.Search.Metric = opts.metric
	}
	if changed("divide") {
		cfg.Search.DivideMode = opts.mode
	}
	if changed("block-size") {
		cfg.Search.BlockSize = opts.blockSize
	}
	if changed("routines") {
		cfg.Search.NumRoutines = opts.routines
	}
	if changed("verbose") {
		cfg.Output.Verbose = opts.verbose
	}
	return cfg.Validate()
}

// progressDisplay shows a spinner together with the number of tiles done.
type progressDisplay struct {
	processed int64
	total     int64
	done      chan struct{}
	wg        sync.WaitGroup
	started   bool
}

func (d *progressDisplay) factory(total int) gofractal.ProgressFunc {
	d.total = int64(total)
	d.done = make(chan struct{})
	d.started = true
	d.wg.Add(1)
	go d.run()
	return func(num int) {
		atomic.StoreInt64(&d.processed, int64(num))
	}
}

func (d *progressDisplay) run() {
	defer d.wg.Done()
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	startTime := time.Now()
	for {
		select {
		case <-d.done:
			processed := atomic.LoadInt64(&d.processed)
			fmt.Printf("\r%s Search complete. %d/%d tiles matched.\n", "✓", processed, d.total)
			return
		case <-ticker.C:
			s, _ = s.Update(spinner.TickMsg{})
			processed := atomic.LoadInt64(&d.processed)
			elapsed := time.Since(startTime).Seconds()
			var tps float64
			if elapsed > 0 {
				tps = float64(processed) / elapsed
			}
			fmt.Printf("\r%s Matching tiles %d/%d... (%.2f tiles/s)", s.View(), processed, d.total, tps)
		}
	}
}

func (d *progressDisplay) stop() {
	if !d.started {
		return
	}
	close(d.done)
	d.wg.Wait()
}

// progressFactory returns how the search progress is reported: not at all
// with --quiet, as log messages in verbose mode (the spinner would garble the
// log output) and with the spinner otherwise.
func progressFactory(cfg *gofractal.Config, opts *options, display *progressDisplay) gofractal.ProgressFactory {
	switch {
	case opts.quiet:
		return nil
	case cfg.Output.Verbose:
		return func(total int) gofractal.ProgressFunc {
			return gofractal.LoggerProgressFunc("Matching tiles", total, gofractal.IntMax(1, total/10))
		}
	default:
		return display.factory
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, gofractal.ErrReadInput):
		return exitInput
	case errors.Is(err, gofractal.ErrWriteOutput):
		return exitOutput
	default:
		return exitFailure
	}
}

func printSummary(cfg *gofractal.Config, res *gofractal.Result) {
	labelStyle := lipgloss.NewStyle().Bold(true)
	durationStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("202"))
	pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	fmt.Println(labelStyle.Render("Run:"), res.RunID)
	fmt.Println(labelStyle.Render("Tiles:"), len(res.Matches), "source,", res.Candidates.Len(), "candidate")
	fmt.Println(labelStyle.Render("Search time:"), durationStyle.Render(fmt.Sprintf("%.4fs", res.Duration.Seconds())))
	fmt.Println(labelStyle.Render("Matches saved to"), pathStyle.Render(cfg.Paths.Output))
}

func main() {
	opts := parseFlags()
	dir, err := filepath.Abs(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: Unable to retrieve path:", err)
		os.Exit(exitFailure)
	}
	configPath, err := gofractal.ResolvePath(dir, opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: Invalid config path:", err)
		os.Exit(exitFailure)
	}
	cfg, err := gofractal.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFailure)
	}
	if err = applyFlags(cfg, opts); err != nil {
		fmt.Fprintln(os.Stderr, "Configuration error:", err)
		os.Exit(exitFailure)
	}
	if opts.writeConfig != "" {
		if err = gofractal.SaveConfig(cfg, opts.writeConfig); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(exitCode(err))
		}
		fmt.Println("Configuration written to", opts.writeConfig)
		return
	}
	if err = cfg.ResolvePaths(dir); err != nil {
		fmt.Fprintln(os.Stderr, "Error: Invalid path:", err)
		os.Exit(exitFailure)
	}
	if cfg.Output.Verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	display := &progressDisplay{}
	res, err := gofractal.Run(cfg, progressFactory(cfg, opts, display))
	display.stop()
	if err != nil {
		log.WithError(err).Error("Encoding failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
	if !opts.quiet {
		printSummary(cfg, res)
	}
}
