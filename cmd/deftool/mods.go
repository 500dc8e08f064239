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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/tools"

	"github.com/jsccast/yaml"
)

var Mods = map[string]Mod{
	"analyze":  &Analyzer{},
	"check":    &Checker{},
	"describe": &Describer{},
	"tree":     &Treer{},
	"dot":      &Grapher{},
	"mermaid":  &Mermaider{},
	"html":     &Renderer{},
	"yaml":     &YAMLer{},
	"lines":    &Liner{},
}

var (
	// Problems means the Mod found problems and already said so.
	Problems = errors.New("problems")

	NoName = errors.New("no generator name given (-n)")
)

type Mod interface {
	F(context.Context, *Env) error
	Doc() string
	Flags() *flag.FlagSet
}

// lookup compiles the definitions and finds the named generator.
func lookup(ctx context.Context, e *Env, name string) (core.Generator, error) {
	if name == "" {
		return nil, NoName
	}
	table, err := e.Table(ctx)
	if err != nil {
		return nil, err
	}
	gen, have := table.Lookup(name)
	if !have {
		return nil, &core.UnknownGenerator{Name: name}
	}
	return gen, nil
}

type nopCloser struct {
	io.Writer
}

func (c nopCloser) Close() error {
	return nil
}

type Analyzer struct {
}

func (m *Analyzer) Doc() string {
	return "Reports on the definitions as YAML.  Fails if any don't compile."
}

func (m *Analyzer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("analyze", flag.ContinueOnError)
}

func (m *Analyzer) F(ctx context.Context, e *Env) error {
	a, err := tools.Analyze(e.Defs)
	if err != nil {
		return err
	}
	bs, err := yaml.Marshal(a)
	if err != nil {
		return err
	}
	if _, err = e.Out.Write(bs); err != nil {
		return err
	}
	if 0 < len(a.Errors) {
		return Problems
	}
	return nil
}

type Checker struct {
	ExpectationsFilename string
}

func (m *Checker) Doc() string {
	return "Checks samples against expectations.  Fails if any are unmet."
}

func (m *Checker) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("check", flag.ContinueOnError)
	flags.StringVar(&m.ExpectationsFilename, "e", "", "expectations filename (YAML)")
	return flags
}

func (m *Checker) F(ctx context.Context, e *Env) error {
	if m.ExpectationsFilename == "" {
		return errors.New("no expectations filename given (-e)")
	}
	bs, err := ioutil.ReadFile(m.ExpectationsFilename)
	if err != nil {
		return err
	}
	es, err := tools.ParseExpectations(bs)
	if err != nil {
		return err
	}
	table, err := e.Table(ctx)
	if err != nil {
		return err
	}
	failures := es.Check(table)
	for _, f := range failures {
		fmt.Fprintf(e.Out, "FAIL %s\n", f.Error())
	}
	if 0 < len(failures) {
		return Problems
	}
	fmt.Fprintf(e.Out, "ok %d\n", len(es.Expectations))
	return nil
}

type Describer struct {
	Name string
}

func (m *Describer) Doc() string {
	return "Writes the compiled definitions back out as lines."
}

func (m *Describer) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("describe", flag.ContinueOnError)
	flags.StringVar(&m.Name, "n", "", "optional generator name (default is all)")
	return flags
}

func (m *Describer) F(ctx context.Context, e *Env) error {
	table, err := e.Table(ctx)
	if err != nil {
		return err
	}
	names := table.Names()
	if m.Name != "" {
		if _, have := table.Lookup(m.Name); !have {
			return &core.UnknownGenerator{Name: m.Name}
		}
		names = []string{m.Name}
	}
	for _, name := range names {
		gen, _ := table.Lookup(name)
		fmt.Fprintf(e.Out, "%s = %s\n", name, tools.Describe(gen))
	}
	return nil
}

type Treer struct {
	Name string
}

func (m *Treer) Doc() string {
	return "Writes a generator's tree as YAML."
}

func (m *Treer) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("tree", flag.ContinueOnError)
	flags.StringVar(&m.Name, "n", "", "generator name")
	return flags
}

func (m *Treer) F(ctx context.Context, e *Env) error {
	gen, err := lookup(ctx, e, m.Name)
	if err != nil {
		return err
	}
	bs, err := tools.TreeYAML(gen)
	if err != nil {
		return err
	}
	_, err = e.Out.Write(bs)
	return err
}

type Grapher struct {
	Name     string
	Basename string
}

func (m *Grapher) Doc() string {
	return "Writes a Graphviz dot file for a generator, or renders a PNG with -o (requires 'dot')."
}

func (m *Grapher) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("dot", flag.ContinueOnError)
	flags.StringVar(&m.Name, "n", "", "generator name")
	flags.StringVar(&m.Basename, "o", "", "optional basename for .dot and .png output files")
	return flags
}

func (m *Grapher) F(ctx context.Context, e *Env) error {
	gen, err := lookup(ctx, e, m.Name)
	if err != nil {
		return err
	}
	if m.Basename == "" {
		return tools.Dot(gen, nopCloser{e.Out}, m.Name)
	}
	filename, err := tools.PNG(gen, m.Basename, m.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.Out, "%s\n", filename)
	return nil
}

type Mermaider struct {
	HideTemplates bool
}

func (m *Mermaider) Doc() string {
	return "Writes a Mermaid graph of the references among generators."
}

func (m *Mermaider) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("mermaid", flag.ContinueOnError)
	flags.BoolVar(&m.HideTemplates, "q", false, "don't show templates")
	return flags
}

func (m *Mermaider) F(ctx context.Context, e *Env) error {
	table, err := e.Table(ctx)
	if err != nil {
		return err
	}
	opts := &tools.MermaidOpts{
		ShowTemplates: !m.HideTemplates,
		FilteredFill:  "#bcf2db",
		MissingFill:   "#f98b8b",
	}
	return tools.Mermaid(table, nopCloser{e.Out}, opts)
}

type Renderer struct {
	CSSFiles string
	Samples  int
}

func (m *Renderer) Doc() string {
	return "Renders the definitions, with samples, as an HTML page."
}

func (m *Renderer) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("html", flag.ContinueOnError)
	flags.StringVar(&m.CSSFiles, "c", "", "comma-separated CSS files to link")
	flags.IntVar(&m.Samples, "s", 3, "samples per generator")
	return flags
}

func (m *Renderer) F(ctx context.Context, e *Env) error {
	table, err := e.Table(ctx)
	if err != nil {
		return err
	}
	var css []string
	if m.CSSFiles != "" {
		css = strings.Split(m.CSSFiles, ",")
	}
	return tools.RenderDefsPage(e.Defs, table, e.Out, css, m.Samples)
}

type YAMLer struct {
}

func (m *YAMLer) Doc() string {
	return "Writes the definitions as YAML."
}

func (m *YAMLer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("yaml", flag.ContinueOnError)
}

func (m *YAMLer) F(ctx context.Context, e *Env) error {
	bs, err := e.Defs.YAML()
	if err != nil {
		return err
	}
	_, err = e.Out.Write(bs)
	return err
}

type Liner struct {
}

func (m *Liner) Doc() string {
	return "Writes the definitions as lines.  Filters and docs are lost."
}

func (m *Liner) Flags() *flag.FlagSet {
	return flag.NewFlagSet("lines", flag.ContinueOnError)
}

func (m *Liner) F(ctx context.Context, e *Env) error {
	return e.Defs.WriteLines(e.Out)
}
