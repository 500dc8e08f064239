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
// Package main is a command-line tool for working with definitions.
//
// Definitions are read from stdin, with any '%inline("FILE")' expanded.
// See Usage for the subcommands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/defs"
	"github.com/Comcast/randodo/interpreters"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Env is what a Mod gets to work with.
type Env struct {
	Defs         *defs.Definitions
	SourceMaker  core.SourceMaker
	Interpreters core.InterpretersMap
	Out          io.Writer
}

// Table compiles the definitions.
func (e *Env) Table(ctx context.Context) (*core.Table, error) {
	return e.Defs.Table(ctx, e.SourceMaker, e.Interpreters)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("deftool", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		yamlish = fs.Bool("y", false, "input is YAML (or JSON) rather than lines")
		seed    = fs.Int64("seed", 0, "seed for a deterministic source (0 for the clock)")
		dir     = fs.String("d", ".", "directory for %inline files")
	)

	fs.Usage = func() {
		Usage(stderr, fs)
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}

	mod, have := Mods[fs.Arg(0)]
	if !have {
		fmt.Fprintf(stderr, "Unknown subcommand \"%s\"\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	flags := mod.Flags()
	flags.SetOutput(stderr)
	if err := flags.Parse(fs.Args()[1:]); err != nil {
		return 2
	}

	bs, err := defs.ReadAllWithInlines(stdin, *dir)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	ds, err := defs.Parse(bs, *yamlish)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	env := &Env{
		Defs:         ds,
		Interpreters: interpreters.Standard(),
		Out:          stdout,
	}
	if *seed != 0 {
		env.SourceMaker = core.Shared(core.NewLCG(uint64(*seed)))
	}

	if err = mod.F(context.Background(), env); err != nil {
		if !errors.Is(err, Problems) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}

	return 0
}

func Usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "Usage: deftool [flags] SUBCOMMAND [subflags] < DEFS\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nSubcommands:\n\n")

	names := make([]string, 0, len(Mods))
	for name := range Mods {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mod := Mods[name]
		flags := mod.Flags()
		flags.SetOutput(w)
		fmt.Fprintf(w, "%s: %s\n", name, mod.Doc())
		flags.PrintDefaults()
		fmt.Fprintln(w)
	}
}
