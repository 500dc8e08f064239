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

package tools

import (
	"context"

	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/defs"
	"github.com/Comcast/randodo/interpreters/noop"
)

// DefsAnalysis reports on a collection of definitions.
type DefsAnalysis struct {
	// Errors are compilation errors.  The other fields only
	// consider the definitions that compiled.
	Errors []string

	DefCount   int
	Filters    int
	References int

	// Redefined names are defined more than once.  The last
	// definition wins.
	Redefined []string

	// Roots are defined but never referenced.
	Roots []string

	// Undefined names are referenced but never defined.  Those
	// references generate nothing.
	Undefined []string

	// Recursive names can reach themselves through references.
	// Their output is bounded by the depth limit.
	Recursive []string

	// Empty names can only generate the empty string.
	Empty []string

	Interpreters []string
}

// Analyze compiles and then inspects the definitions.
//
// Filters are compiled with silent no-op interpreters, so only the
// interpreter names matter here.
func Analyze(ds *defs.Definitions) (*DefsAnalysis, error) {
	var (
		ctx          = context.Background()
		a            = &DefsAnalysis{}
		table        = core.NewTable()
		interpreters = core.NewInterpretersMap()
		defined      = make(map[string]int)
		used         = make(map[string]bool)
		names        = make(map[string]bool)
	)

	for _, d := range ds.Defs {
		if d == nil {
			continue
		}
		a.DefCount++
		defined[d.Name]++
		if d.Filter != nil {
			a.Filters++
			names[d.Filter.Interpreter] = true
			interpreters[d.Filter.Interpreter] = &noop.Interpreter{Silent: true}
		}
		if err := d.Compile(ctx, table, interpreters); err != nil {
			a.Errors = append(a.Errors, err.Error())
		}
	}
	a.Interpreters = keysToStringSlice(names)

	redefined := make(map[string]bool)
	for name, n := range defined {
		if 1 < n {
			redefined[name] = true
		}
	}
	a.Redefined = keysToStringSlice(redefined)

	graph := make(map[string][]string, table.Len())
	undefined := make(map[string]bool)
	empty := make(map[string]bool)
	for _, name := range table.Names() {
		gen, _ := table.Lookup(name)
		refs := References(gen)
		graph[name] = refs
		Walk(gen, func(g core.Generator, depth int) bool {
			if _, is := g.(*core.Reference); is {
				a.References++
			}
			return true
		})
		for _, ref := range refs {
			used[ref] = true
			if _, have := table.Lookup(ref); !have {
				undefined[ref] = true
			}
		}
		if generatesNothing(gen) {
			empty[name] = true
		}
	}
	a.Undefined = keysToStringSlice(undefined)
	a.Empty = keysToStringSlice(empty)

	roots := make(map[string]bool)
	recursive := make(map[string]bool)
	for name := range graph {
		if !used[name] {
			roots[name] = true
		}
		if reaches(graph, name, name) {
			recursive[name] = true
		}
	}
	a.Roots = keysToStringSlice(roots)
	a.Recursive = keysToStringSlice(recursive)

	return a, nil
}

// generatesNothing reports whether an optimized top-level generator
// has nothing left.
func generatesNothing(gen core.Generator) bool {
	if f, is := gen.(*core.Filtered); is {
		gen = f.Gen
	}
	alt, is := gen.(*core.Alternation)
	if !is || len(alt.Branches) != 1 {
		return gen.IsEmpty()
	}
	return alt.Branches[0].IsEmpty()
}

// reaches reports whether there's a path of at least one reference
// from one name to another.
func reaches(graph map[string][]string, from, to string) bool {
	seen := make(map[string]bool)
	var visit func(string) bool
	visit = func(name string) bool {
		for _, next := range graph[name] {
			if next == to {
				return true
			}
			if seen[next] {
				continue
			}
			seen[next] = true
			if visit(next) {
				return true
			}
		}
		return false
	}
	return visit(from)
}
