/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main is a command-line program that prints samples from a
// named generator in a definitions file.
//
// Usage:
//
//   randodo [-n N] [-seed S] [-depth D] FILE NAME
//
// The file is in the line format unless its extension is .yaml, .yml,
// or .json.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/defs"
	"github.com/Comcast/randodo/interpreters"
	"github.com/Comcast/randodo/sio"
	"github.com/Comcast/randodo/util"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("randodo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		n          = fs.Int("n", 1, "number of samples")
		seed       = fs.Int64("seed", 0, "seed for a deterministic source (0 for the clock)")
		depth      = fs.Int("depth", core.DefaultMaxDepth, "maximum reference depth")
		tags       = fs.Bool("tags", false, "prefix each sample with the generator name")
		timestamps = fs.Bool("timestamps", false, "prefix each sample with a timestamp")
		jsonOut    = fs.Bool("json", false, "write each sample as JSON")
		verbose    = fs.Bool("v", false, "verbose logging")
	)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: randodo [flags] FILE NAME\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	filename, name := fs.Arg(0), fs.Arg(1)

	util.Logging = *verbose
	defs.Debug = *verbose

	var sm core.SourceMaker
	if *seed != 0 {
		sm = core.Shared(core.NewLCG(uint64(*seed)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, table, err := defs.Load(ctx, filename, sm, interpreters.Standard())
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}

	out := &sio.Stdio{
		Out:        stdout,
		Tags:       *tags,
		Timestamps: *timestamps,
		JSON:       *jsonOut,
	}

	for i := 0; i < *n; i++ {
		s, err := sio.Generate(table, name, *depth)
		if err != nil {
			var ug *core.UnknownGenerator
			if errors.As(err, &ug) {
				fmt.Fprintf(stderr, "no generator named %q in %s\n", name, filename)
				return 2
			}
			fmt.Fprintf(stderr, "%s\n", err)
			return 1
		}
		if s.Truncated {
			util.Logf("sample %d of %q was truncated at depth %d", i, name, *depth)
		}
		if err = out.Emit(ctx, s); err != nil {
			log.Printf("write error: %v", err)
			return 1
		}
	}

	return 0
}
