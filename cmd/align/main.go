// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command align registers and stacks a sequence of astronomical frames.
// Flag layout follows the teacher's cmd/nightlight/main.go: one
// package-level flag.* var per tunable, parsed with the standard library
// flag package, no subcommand framework.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nightframe/align/internal/aligncoarse"
	"github.com/nightframe/align/internal/finder"
	"github.com/nightframe/align/internal/logx"
	"github.com/nightframe/align/internal/match"
	"github.com/nightframe/align/internal/pixel"
	"github.com/nightframe/align/internal/pngio"
	"github.com/nightframe/align/internal/restapi"
	"github.com/nightframe/align/internal/siww"
	"github.com/nightframe/align/internal/stackpipe"
	"github.com/nightframe/align/internal/sysinfo"
)

var darkFile = flag.String("d", "", "apply dark frame from `file` (SIWW format)")
var outFile = flag.String("o", "output.png", "save stacked output to `file`")
var verbose = flag.Int("v", 0, "verbosity level as an integer value (e.g. -v 2), higher for more detail; repeating the flag keeps only the last value")

var sigma = flag.Float64("s", 3.0, "star finder Gaussian sigma")
var brightnessThreshold = flag.Float64("b", 0.1, "star finder brightness threshold")
var candidateThreshold = flag.Float64("c", 0.5, "star finder candidate threshold")
var minDist = flag.Float64("m", 2.0, "star finder minimum star separation, in multiples of sigma")
var fitSteps = flag.Int("F", 30, "star finder Gaussian fit iterations")

var smallChangeDistThreshold = flag.Float64("t", 5.0, "SmallChange aligner match distance threshold")
var smallChangeMinStarN = flag.Int("M", 4, "SmallChange aligner minimum matched star count")

var brutStarN = flag.Int("n", 30, "Brut aligner stars considered from current frame")
var brutRefStarN = flag.Int("R", -1, "Brut aligner stars considered from reference set, -1=all")
var brutRankStarN = flag.Int("r", -1, "Brut aligner stars used for scoring, -1=all")
var brutDistTol = flag.Float64("T", 1.5, "Brut aligner match distance tolerance")
var brutScaleTol = flag.Float64("O", 0.1, "Brut aligner scale tolerance")
var brutRotTol = flag.Float64("S", 3.0, "Brut aligner rotation tolerance, >2 disables the rotation gate")

var matcherDistThreshold = flag.Float64("D", 1.4, "star matcher match distance threshold")

var serveAddr = flag.String("serve", "", "if set, serve job status over HTTP on this address while stacking")
var dumpSIWW = flag.String("dump-siww", "", "decode the dark frame given by -d and re-encode it to `file`, for inspection")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `align - frame registration and stacking core
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] img0.png img1.png ... imgn.png

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	logx.SetVerbosity(*verbose)

	logx.Printf("%s\n", sysinfo.Collect().String())
	logx.Verbosef(1, "verbosity level %d\n", *verbose)

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	var dark *pixel.Image
	if *darkFile != "" {
		f, err := os.Open(*darkFile)
		if err != nil {
			logx.Fatalf("cannot open dark frame %s: %s\n", *darkFile, err.Error())
		}
		dark = siww.Load(f)
		f.Close()
		if dark.Format == pixel.Invalid {
			logx.Fatalf("dark frame %s is not a valid SIWW file\n", *darkFile)
		}
		if *dumpSIWW != "" {
			out, err := os.Create(*dumpSIWW)
			if err != nil {
				logx.Fatalf("cannot create %s: %s\n", *dumpSIWW, err.Error())
			}
			if err := siww.Save(out, dark); err != nil {
				logx.Fatalf("cannot write %s: %s\n", *dumpSIWW, err.Error())
			}
			out.Close()
		}
	}

	cfg := stackpipe.DefaultConfig()
	cfg.Finder = finder.Config{
		Sigma:               float32(*sigma),
		BrightnessThreshold: float32(*brightnessThreshold),
		CandidateThreshold:  float32(*candidateThreshold),
		MinDist:             float32(*minDist),
		FitSteps:            *fitSteps,
	}
	cfg.SmallChange = aligncoarse.SmallChangeAligner{
		DistThreshold: float32(*smallChangeDistThreshold),
		MinStarN:      *smallChangeMinStarN,
	}
	cfg.Brut = aligncoarse.BrutAligner{
		StarN:     *brutStarN,
		RefStarN:  *brutRefStarN,
		RankStarN: *brutRankStarN,
		DistTol:   float32(*brutDistTol),
		ScaleTol:  float32(*brutScaleTol),
		RotTol:    float32(*brutRotTol),
	}
	cfg.Matcher = match.New()
	cfg.Matcher.DistThreshold = float32(*matcherDistThreshold)

	load := func(i int) (*pixel.Image, error) {
		f, err := os.Open(args[i])
		if err != nil {
			return pixel.New(0, 0, pixel.Invalid), err
		}
		defer f.Close()
		img, err := pngio.Load(f)
		if err != nil {
			return img, err
		}
		if dark != nil {
			img.Sub(0, 0, dark)
		}
		return img, nil
	}

	var tracker *restapi.Tracker
	if *serveAddr != "" {
		tracker = restapi.NewTracker(len(args))
		go func() {
			if err := restapi.Serve(*serveAddr, tracker); err != nil {
				logx.Printf("status server stopped: %s\n", err.Error())
			}
		}()
	}

	logx.Printf("Aligning %d frames...\n", len(args))
	logx.Verbosef(2, "pass one config: %+v\n", cfg)
	pass1, err := stackpipe.RunPassOne(cfg, len(args), load)
	if err != nil {
		logx.Fatalf("pass one failed: %s\n", err.Error())
	}
	if tracker != nil {
		tracker.Publish(publishStatus(pass1, len(args)))
	}

	logx.Printf("Stacking into output canvas, format %s...\n", pass1.Format.String())
	out, err := stackpipe.RunPassTwo(pass1, load)
	if err != nil {
		logx.Fatalf("pass two failed: %s\n", err.Error())
	}

	f, err := os.Create(*outFile)
	if err != nil {
		logx.Fatalf("cannot create %s: %s\n", *outFile, err.Error())
	}
	defer f.Close()
	if strings.HasSuffix(*outFile, ".siww") {
		err = siww.Save(f, out)
	} else {
		err = pngio.Save16(f, out)
	}
	if err != nil {
		logx.Fatalf("cannot write %s: %s\n", *outFile, err.Error())
	}
	logx.Printf("Wrote %s\n", *outFile)
}

func publishStatus(pass1 stackpipe.Result, total int) restapi.Status {
	processed, dropped := 0, 0
	for _, fr := range pass1.Frames {
		if fr.Stars.Len() > 0 {
			processed++
		} else {
			dropped++
		}
	}
	return restapi.Status{
		TotalFrames:     total,
		FramesProcessed: processed,
		FramesDropped:   dropped,
		BoundingBox:     pass1.BBox,
		Done:            true,
	}
}
