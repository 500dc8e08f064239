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

// Table maps names to compiled templates.
//
// References in compiled templates point back into the Table that
// compiled them, so a Table should be built once (via Compile) and
// then only read.  To change definitions in a running system, build a
// new Table and swap it in with an UpdatableTable.
type Table struct {
	// SourceMaker gives each new node that makes random choices
	// its Source.  NewTable sets DefaultSourceMaker().
	SourceMaker SourceMaker

	names []string
	gens  map[string]Generator
}

// NewTable makes an empty Table that uses DefaultSourceMaker.
func NewTable() *Table {
	return &Table{
		SourceMaker: DefaultSourceMaker(),
		gens:        make(map[string]Generator),
	}
}

// NewTableWith makes an empty Table that uses the given SourceMaker.
func NewTableWith(sm SourceMaker) *Table {
	t := NewTable()
	t.SourceMaker = sm
	return t
}

func (t *Table) source() Source {
	if t.SourceMaker == nil {
		t.SourceMaker = DefaultSourceMaker()
	}
	return t.SourceMaker()
}

// Lookup finds the Generator for the given name.
func (t *Table) Lookup(name string) (Generator, bool) {
	gen, have := t.gens[name]
	return gen, have
}

// Set adds or replaces the Generator for the given name.
//
// A replaced name keeps its original position in Names().
func (t *Table) Set(name string, gen Generator) {
	if t.gens == nil {
		t.gens = make(map[string]Generator)
	}
	if _, have := t.gens[name]; !have {
		t.names = append(t.names, name)
	}
	t.gens[name] = gen
}

// Names returns the defined names in the order they were first
// defined.
func (t *Table) Names() []string {
	acc := make([]string, len(t.names))
	copy(acc, t.names)
	return acc
}

// Len returns the number of names defined.
func (t *Table) Len() int {
	return len(t.names)
}

// Compile compiles the template, stores the result under the given
// name, and optimizes it.
//
// The last definition of a name wins.
func (t *Table) Compile(name, template string) error {
	gen, err := Compile(template, t)
	if err != nil {
		if ce, is := err.(*CompileError); is {
			ce.Name = name
		}
		return err
	}
	t.Set(name, gen)
	gen.Optimize()
	return nil
}

// Generate is a convenience function that evaluates the named
// Generator once into a fresh Output.
func (t *Table) Generate(name string) (*Output, error) {
	gen, have := t.Lookup(name)
	if !have {
		return nil, &UnknownGenerator{Name: name}
	}
	out := NewOutput()
	gen.Generate(out)
	return out, nil
}
