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
	"errors"
	"strings"
	"testing"

	. "github.com/Comcast/randodo/util/testutil"
)

func TestOptimizeSequence(t *testing.T) {
	a, b := NewLiteral("a"), NewLiteral("b")
	seq := NewSequence([]Generator{
		NewLiteral(""),
		a,
		NewRepetition(NewLiteral("never"), 0, 0, &Counter{}),
		NewCharClass(nil, &Counter{}),
		b,
		NewSequence(nil),
	})
	seq.Optimize()

	if len(seq.Gens) != 2 || seq.Gens[0] != a || seq.Gens[1] != b {
		t.Fatalf("optimized to %s", JS(seq.Gens))
	}

	out := NewOutput()
	seq.Generate(out)
	if out.String() != "ab" {
		t.Fatalf("got %q", out.String())
	}
}

func TestOptimizeBottomUp(t *testing.T) {
	// The inner sequence only becomes empty after its own
	// optimization.
	inner := NewSequence([]Generator{
		NewRepetition(NewLiteral("x"), 0, 0, &Counter{}),
	})
	outer := NewSequence([]Generator{NewLiteral("a"), inner, NewLiteral("b")})
	outer.Optimize()
	if len(outer.Gens) != 2 {
		t.Fatalf("optimized to %s", JS(outer.Gens))
	}
}

func TestOptimizeCompiled(t *testing.T) {
	table := NewTableWith(counters)
	if err := table.Compile("t", "ab(c){0,0}de"); err != nil {
		t.Fatal(err)
	}
	gen, _ := table.Lookup("t")
	nodes := branch(t, gen)
	if len(nodes) != 2 {
		t.Fatalf("optimized to %s", JS(nodes))
	}
	for i, want := range []string{"ab", "de"} {
		lit, is := nodes[i].(*Literal)
		if !is || lit.Value != want {
			t.Fatalf("node %d is %#v", i, nodes[i])
		}
	}
	if got := mustGenerate(t, table, "t"); got != "abde" {
		t.Fatalf("got %q", got)
	}
}

func TestOptimizeKeepsBranches(t *testing.T) {
	table := NewTableWith(counters)
	if err := table.Compile("t", "(|a{0,0}|b)"); err != nil {
		t.Fatal(err)
	}
	gen, _ := table.Lookup("t")
	alt, is := branch(t, gen)[0].(*Alternation)
	if !is {
		t.Fatal("no alternation")
	}
	if len(alt.Branches) != 3 {
		t.Fatalf("%d branches", len(alt.Branches))
	}
	if !alt.Branches[1].IsEmpty() {
		t.Fatal("second branch not emptied")
	}
}

func TestIsEmpty(t *testing.T) {
	table := NewTable()
	tests := []struct {
		description string
		gen         Generator
		empty       bool
	}{
		{"Empty literal", NewLiteral(""), true},
		{"Literal", NewLiteral("x"), false},
		{"Empty class", NewCharClass(nil, &Counter{}), true},
		{"Class", NewCharClass([]rune("ab"), &Counter{}), false},
		{"Empty sequence", NewSequence(nil), true},
		{"Sequence of empties", NewSequence([]Generator{NewLiteral("")}), false},
		{"Zero repetition", NewRepetition(NewLiteral("x"), 0, 0, &Counter{}), true},
		{"Optional repetition", NewRepetition(NewLiteral("x"), 0, 1, &Counter{}), false},
		{"Repetition of nothing", NewRepetition(NewLiteral(""), 1, 2, &Counter{}), false},
		{"Alternation of empties", NewAlternation([]Generator{NewSequence(nil)}, &Counter{}), false},
		{"Reference", NewReference("nothing", table), false},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			if got := tc.gen.IsEmpty(); got != tc.empty {
				t.Fatalf("IsEmpty() = %v", got)
			}
		})
	}
}

func TestSources(t *testing.T) {
	a, b := NewLCG(42), NewLCG(42)
	for i := 0; i < 100; i++ {
		x, y := a.Next(), b.Next()
		if x != y {
			t.Fatalf("LCGs diverged at %d: %d != %d", i, x, y)
		}
		if x < 0 {
			t.Fatalf("negative %d", x)
		}
	}

	r := NewLockedSource(NewRandSource(1))
	for i := 0; i < 100; i++ {
		if n := r.Next(); n < 0 {
			t.Fatalf("negative %d", n)
		}
	}

	src := &Counter{}
	maker := Shared(src)
	if maker() != maker() {
		t.Fatal("Shared gave different sources")
	}
}

func TestFiltered(t *testing.T) {
	upper := &FuncFilter{
		F: func(ctx context.Context, name, text string) (string, error) {
			return strings.ToUpper(text) + "/" + name, nil
		},
	}
	broken := &FuncFilter{
		F: func(ctx context.Context, name, text string) (string, error) {
			return "", errors.New("broken")
		},
	}

	table := NewTableWith(counters)
	if err := table.Compile("raw", "[ab]c"); err != nil {
		t.Fatal(err)
	}
	raw, _ := table.Lookup("raw")

	table.Set("loud", &Filtered{Gen: raw, Name: "loud", Filter: upper})
	table.Set("broken", &Filtered{Gen: raw, Name: "broken", Filter: broken})

	if got := mustGenerate(t, table, "loud"); got != "AC/loud" {
		t.Fatalf("got %q", got)
	}
	if got := mustGenerate(t, table, "broken"); got != "bc" {
		t.Fatalf("got %q", got)
	}
}

type upperInterpreter struct {
	compiled int
}

func (i *upperInterpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	i.compiled++
	return code, nil
}

func (i *upperInterpreter) Exec(ctx context.Context, text string, props map[string]interface{}, code interface{}, compiled interface{}) (string, error) {
	return strings.ToUpper(text) + compiled.(string) + props["name"].(string), nil
}

func TestFilterSource(t *testing.T) {
	ctx := context.Background()
	i := &upperInterpreter{}
	interpreters := NewInterpretersMap()
	interpreters["upper"] = i

	fs := &FilterSource{
		Interpreter: "upper",
		Source:      "!",
	}
	f, err := fs.Compile(ctx, interpreters)
	if err != nil {
		t.Fatal(err)
	}
	if i.compiled != 1 {
		t.Fatalf("compiled %d times", i.compiled)
	}
	s, err := f.Filter(ctx, "n", "abc")
	if err != nil {
		t.Fatal(err)
	}
	if s != "ABC!n" {
		t.Fatalf("got %q", s)
	}

	fs.Interpreter = "nope"
	if _, err = fs.Compile(ctx, interpreters); err != InterpreterNotFound {
		t.Fatalf("got error %v", err)
	}
}
