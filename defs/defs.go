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

// Package defs reads definitions of named templates and compiles them
// into a core.Table.
//
// Two formats are supported.  The line format has one definition per
// line:
//
//   # Comments start with '#'.
//   gnome = (dwarf|lilliput)
//   hobbit = $gnome [goblin]
//
// The YAML (or JSON) format is a collection with optional
// documentation and filters:
//
//   name: fantasy
//   doc: Some *Markdown*.
//   defs:
//   - name: gnome
//     template: (dwarf|lilliput)
//   - name: shout
//     template: $gnome
//     filter:
//       interpreter: goja
//       source: return _.text.toUpperCase();
package defs

import (
	"context"
	"fmt"

	"github.com/Comcast/randodo/core"
)

// Definition is a named template.
type Definition struct {
	Name     string `json:"name" yaml:"name"`
	Template string `json:"template" yaml:"template"`

	// Doc is optional documentation in Markdown.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Filter, if given, post-processes the generated text.
	Filter *core.FilterSource `json:"filter,omitempty" yaml:",omitempty"`

	// Line is the line number where this definition appeared in a
	// line-format file.
	Line int `json:"-" yaml:"-"`
}

// Definitions is an ordered collection of Definitions.
//
// Order matters only when a name is defined more than once: the last
// one wins.
type Definitions struct {
	Name string        `json:"name,omitempty" yaml:",omitempty"`
	Doc  string        `json:"doc,omitempty" yaml:",omitempty"`
	Defs []*Definition `json:"defs" yaml:"defs"`
}

// Add appends a definition.
func (ds *Definitions) Add(name, template string) *Definition {
	d := &Definition{
		Name:     name,
		Template: template,
	}
	ds.Defs = append(ds.Defs, d)
	return d
}

// Find returns the last definition with the given name.
func (ds *Definitions) Find(name string) (*Definition, bool) {
	for i := len(ds.Defs) - 1; 0 <= i; i-- {
		if d := ds.Defs[i]; d != nil && d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Compile compiles every definition, in order, into the table.
//
// Filters are compiled with the given interpreters (which default to
// core.DefaultInterpreters).  Compilation stops at the first error.
func (ds *Definitions) Compile(ctx context.Context, table *core.Table, interpreters core.InterpretersMap) error {
	for _, d := range ds.Defs {
		if d == nil {
			continue
		}
		if err := d.Compile(ctx, table, interpreters); err != nil {
			return err
		}
	}
	return nil
}

// Compile compiles the definition into the table.
func (d *Definition) Compile(ctx context.Context, table *core.Table, interpreters core.InterpretersMap) error {
	if d.Name == "" {
		return &DefinitionError{Def: d, Reason: "no name"}
	}

	if err := table.Compile(d.Name, d.Template); err != nil {
		if d.Line == 0 {
			return err
		}
		return &LineError{Line: d.Line, Reason: err.Error(), Err: err}
	}

	if d.Filter == nil {
		return nil
	}

	f, err := d.Filter.Compile(ctx, interpreters)
	if err != nil {
		return &DefinitionError{Def: d, Reason: "filter: " + err.Error(), Err: err}
	}
	gen, _ := table.Lookup(d.Name)
	table.Set(d.Name, &core.Filtered{
		Gen:    gen,
		Name:   d.Name,
		Filter: f,
	})
	return nil
}

// DefinitionError reports a problem with a definition that isn't a
// template syntax error.
type DefinitionError struct {
	Def    *Definition
	Reason string
	Err    error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("definition %q: %s", e.Def.Name, e.Reason)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}
