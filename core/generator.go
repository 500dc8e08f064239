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
	"strings"
)

// DefaultMaxDepth is the default limit on nested Reference
// resolution during a single evaluation.
//
// A template that refers to itself (directly or through others)
// would otherwise recurse until the stack runs out.
var DefaultMaxDepth = 64

// DefaultMaxExpansions is the default limit on the total number of
// Reference resolutions during a single evaluation.
//
// MaxDepth alone doesn't bound work: "x = a$x$x" resolves about
// 2^MaxDepth references.
var DefaultMaxExpansions = 1 << 16

// Output accumulates generated text.
//
// Use a fresh Output (or Reset one) for each sample.
type Output struct {
	strings.Builder

	// MaxDepth limits how deeply References can nest.  Zero means
	// DefaultMaxDepth.
	MaxDepth int

	// MaxExpansions limits how many References are resolved in
	// total.  Zero means DefaultMaxExpansions.
	MaxExpansions int

	// Truncated reports that some Reference was not followed
	// because MaxDepth or MaxExpansions was reached.
	Truncated bool

	depth      int
	expansions int
}

// NewOutput makes an Output with the default limits.
func NewOutput() *Output {
	return &Output{
		MaxDepth:      DefaultMaxDepth,
		MaxExpansions: DefaultMaxExpansions,
	}
}

// Reset clears the text and the Truncated flag.
func (o *Output) Reset() {
	o.Builder.Reset()
	o.Truncated = false
	o.depth = 0
	o.expansions = 0
}

func (o *Output) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o *Output) maxExpansions() int {
	if o.MaxExpansions <= 0 {
		return DefaultMaxExpansions
	}
	return o.MaxExpansions
}

// Generator is a node in a compiled template.
type Generator interface {
	// Generate appends text to the Output.
	//
	// A Generator can be used any number of times.
	Generate(out *Output)

	// IsEmpty reports that this node can never produce any
	// output.  Used by Optimize.
	IsEmpty() bool

	// Optimize prunes empty children from this subtree in place.
	Optimize()
}

// Literal generates a fixed string.
type Literal struct {
	Value string
}

func NewLiteral(s string) *Literal {
	return &Literal{
		Value: s,
	}
}

func (g *Literal) Generate(out *Output) {
	out.WriteString(g.Value)
}

func (g *Literal) IsEmpty() bool {
	return len(g.Value) == 0
}

func (g *Literal) Optimize() {}

// CharClass generates one character from Chars.
//
// Chars is a list, not a set: a character that appears twice is
// twice as likely.
type CharClass struct {
	Chars []rune

	src Source
}

func NewCharClass(chars []rune, src Source) *CharClass {
	return &CharClass{
		Chars: chars,
		src:   src,
	}
}

func (g *CharClass) Generate(out *Output) {
	if len(g.Chars) == 0 {
		return
	}
	out.WriteRune(g.Chars[pick(g.src, len(g.Chars))])
}

func (g *CharClass) IsEmpty() bool {
	return len(g.Chars) == 0
}

func (g *CharClass) Optimize() {}

// Sequence generates each of its children in order.
type Sequence struct {
	Gens []Generator
}

func NewSequence(gens []Generator) *Sequence {
	return &Sequence{
		Gens: gens,
	}
}

func (g *Sequence) Generate(out *Output) {
	for _, gen := range g.Gens {
		gen.Generate(out)
	}
}

func (g *Sequence) IsEmpty() bool {
	return len(g.Gens) == 0
}

// Optimize optimizes each child and then drops the ones that are
// empty.  The survivors keep their order.
func (g *Sequence) Optimize() {
	for _, gen := range g.Gens {
		gen.Optimize()
	}

	keep := g.Gens[:0]
	for _, gen := range g.Gens {
		if !gen.IsEmpty() {
			keep = append(keep, gen)
		}
	}
	for i := len(keep); i < len(g.Gens); i++ {
		g.Gens[i] = nil
	}
	g.Gens = keep
}

// Alternation generates exactly one of its Branches.
//
// A choice is drawn even when there's only one branch.
type Alternation struct {
	Branches []Generator

	src Source
}

func NewAlternation(branches []Generator, src Source) *Alternation {
	return &Alternation{
		Branches: branches,
		src:      src,
	}
}

func (g *Alternation) Generate(out *Output) {
	if len(g.Branches) == 0 {
		return
	}
	g.Branches[pick(g.src, len(g.Branches))].Generate(out)
}

// IsEmpty doesn't look at the branches.  An Alternation whose
// branches are all empty is not considered empty.
func (g *Alternation) IsEmpty() bool {
	return len(g.Branches) == 0
}

// Optimize optimizes each branch but never removes one, since that
// would change the odds of the others.
func (g *Alternation) Optimize() {
	for _, gen := range g.Branches {
		gen.Optimize()
	}
}

// Repetition generates Gen between Min and Max times (inclusive).
type Repetition struct {
	Gen      Generator
	Min, Max int

	src Source
}

func NewRepetition(gen Generator, min, max int, src Source) *Repetition {
	return &Repetition{
		Gen: gen,
		Min: min,
		Max: max,
		src: src,
	}
}

func (g *Repetition) Generate(out *Output) {
	n := g.Min + pick(g.src, g.Max-g.Min+1)
	for i := 0; i < n; i++ {
		g.Gen.Generate(out)
	}
}

// IsEmpty only considers the bounds.
func (g *Repetition) IsEmpty() bool {
	return g.Min == 0 && g.Max == 0
}

func (g *Repetition) Optimize() {
	g.Gen.Optimize()
}

// Reference generates whatever the Table has for Name at the time of
// generation.
//
// A name that isn't in the Table generates nothing.
type Reference struct {
	Name string

	table *Table
}

func NewReference(name string, table *Table) *Reference {
	return &Reference{
		Name:  name,
		table: table,
	}
}

// Table returns the Table this Reference resolves against.
func (g *Reference) Table() *Table {
	return g.table
}

func (g *Reference) Generate(out *Output) {
	if g.table == nil {
		return
	}
	gen, have := g.table.Lookup(g.Name)
	if !have {
		return
	}
	if out.maxDepth() <= out.depth || out.maxExpansions() <= out.expansions {
		out.Truncated = true
		return
	}
	out.expansions++
	out.depth++
	gen.Generate(out)
	out.depth--
}

// IsEmpty is always false.  We don't know what the name will refer
// to.
func (g *Reference) IsEmpty() bool {
	return false
}

func (g *Reference) Optimize() {}
