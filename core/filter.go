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

package core

import (
	"context"
	"time"

	"github.com/Comcast/randodo/util"
)

var (
	// DefaultInterpreters will be used in FilterSource.Compile if
	// given nil interpreters.
	DefaultInterpreters = make(InterpretersMap)

	// DefaultFilterTimeout bounds each execution of a Filtered
	// generator's filter when its Timeout is zero.
	DefaultFilterTimeout = time.Second
)

// Interpreter can compile and execute code for filters.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code with the given text and props.  The
	// result of a previous Compile() might be provided.
	Exec(ctx context.Context, text string, props map[string]interface{}, code interface{}, compiled interface{}) (string, error)
}

// InterpretersMap maps interpreter names to Interpreters.
type InterpretersMap map[string]Interpreter

func NewInterpretersMap() InterpretersMap {
	return make(InterpretersMap, 4)
}

// Filter transforms the text that a generator produced.
type Filter interface {
	Filter(ctx context.Context, name, text string) (string, error)
}

// FuncFilter wraps a Go function as a Filter.
type FuncFilter struct {
	F func(ctx context.Context, name, text string) (string, error)
}

func (f *FuncFilter) Filter(ctx context.Context, name, text string) (string, error) {
	if f == nil || f.F == nil {
		return text, nil
	}
	return f.F(ctx, name, text)
}

// FilterSource can be compiled to a Filter.
type FilterSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source" yaml:"source"`
}

// Compile attempts to compile the FilterSource into a Filter using
// the given interpreters, which defaults to DefaultInterpreters.
func (s *FilterSource) Compile(ctx context.Context, interpreters InterpretersMap) (Filter, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[s.Interpreter]
	if !have {
		return nil, InterpreterNotFound
	}

	x, err := interpreter.Compile(ctx, s.Source)
	if err != nil {
		return nil, err
	}

	return &FuncFilter{
		F: func(ctx context.Context, name, text string) (string, error) {
			props := map[string]interface{}{
				"name": name,
			}
			return interpreter.Exec(ctx, text, props, s.Source, x)
		},
	}, nil
}

// Filtered generates Gen's text passed through Filter.
//
// If the filter fails, the unfiltered text is used.
type Filtered struct {
	Gen    Generator
	Name   string
	Filter Filter

	// Timeout bounds each filter execution.  Zero means
	// DefaultFilterTimeout.
	Timeout time.Duration
}

func (g *Filtered) Generate(out *Output) {
	scratch := &Output{
		MaxDepth:      out.MaxDepth,
		MaxExpansions: out.MaxExpansions,
		depth:         out.depth,
		expansions:    out.expansions,
	}
	g.Gen.Generate(scratch)
	out.expansions = scratch.expansions
	if scratch.Truncated {
		out.Truncated = true
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultFilterTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	s, err := g.Filter.Filter(ctx, g.Name, scratch.String())
	cancel()
	if err != nil {
		util.Logf("warning: filter for %q failed: %v", g.Name, err)
		s = scratch.String()
	}
	out.WriteString(s)
}

// IsEmpty is false since a filter can make something from nothing.
func (g *Filtered) IsEmpty() bool {
	return false
}

func (g *Filtered) Optimize() {
	g.Gen.Optimize()
}
