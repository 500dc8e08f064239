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
	"reflect"
	"testing"
)

func mustGenerate(t *testing.T, table *Table, name string) string {
	t.Helper()
	out, err := table.Generate(name)
	if err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func TestVariable(t *testing.T) {
	table := NewTableWith(counters)
	if err := table.Compile("gnome", "(dwarf|lilliput)"); err != nil {
		t.Fatal(err)
	}
	if err := table.Compile("hobbit", "$gnome [goblin]"); err != nil {
		t.Fatal(err)
	}

	if got := mustGenerate(t, table, "hobbit"); got != "dwarf g" {
		t.Fatalf("got %q", got)
	}
	if got := mustGenerate(t, table, "hobbit"); got != "lilliput o" {
		t.Fatalf("got %q", got)
	}
}

func TestForwardReference(t *testing.T) {
	table := NewTableWith(counters)
	if err := table.Compile("hobbit", "$gnome [goblin]"); err != nil {
		t.Fatal(err)
	}

	// Nothing to refer to yet.
	if got := mustGenerate(t, table, "hobbit"); got != " g" {
		t.Fatalf("got %q", got)
	}

	if err := table.Compile("gnome", "(dwarf|lilliput)"); err != nil {
		t.Fatal(err)
	}
	if got := mustGenerate(t, table, "hobbit"); got != "dwarf o" {
		t.Fatalf("got %q", got)
	}
}

func TestUndefinedReference(t *testing.T) {
	table := NewTableWith(counters)
	if err := table.Compile("orc", "$nobody"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		out, err := table.Generate("orc")
		if err != nil {
			t.Fatal(err)
		}
		if out.String() != "" || out.Truncated {
			t.Fatalf("got %q (truncated %v)", out.String(), out.Truncated)
		}
	}
}

func TestSelfReference(t *testing.T) {
	table := NewTableWith(counters)
	if err := table.Compile("forever", "x$forever"); err != nil {
		t.Fatal(err)
	}
	gen, have := table.Lookup("forever")
	if !have {
		t.Fatal("forever not found")
	}

	out := &Output{MaxDepth: 3}
	gen.Generate(out)
	if out.String() != "xxxx" {
		t.Fatalf("got %q", out.String())
	}
	if !out.Truncated {
		t.Fatal("not truncated")
	}

	out.Reset()
	if out.Truncated || out.Len() != 0 {
		t.Fatal("Reset didn't")
	}
}

func TestBranchingSelfReference(t *testing.T) {
	table := NewTableWith(counters)
	if err := table.Compile("x", "a$x$x"); err != nil {
		t.Fatal(err)
	}

	out, err := table.Generate("x")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Truncated {
		t.Fatal("not truncated")
	}
	if n := out.Len(); n != DefaultMaxExpansions+1 {
		t.Fatalf("generated %d characters", n)
	}

	gen, _ := table.Lookup("x")
	small := &Output{MaxExpansions: 3}
	for i := 0; i < 2; i++ {
		gen.Generate(small)
		if small.String() != "aaaa" || !small.Truncated {
			t.Fatalf("got %q (truncated %v)", small.String(), small.Truncated)
		}
		small.Reset()
	}
}

func TestMutualReference(t *testing.T) {
	table := NewTableWith(counters)
	if err := table.Compile("ping", "i$pong"); err != nil {
		t.Fatal(err)
	}
	if err := table.Compile("pong", "o$ping"); err != nil {
		t.Fatal(err)
	}
	out, err := table.Generate("ping")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Truncated {
		t.Fatal("not truncated")
	}
	if n := out.Len(); n != DefaultMaxDepth+1 {
		t.Fatalf("generated %d characters", n)
	}
}

func TestLastDefinitionWins(t *testing.T) {
	table := NewTableWith(counters)
	for _, def := range [][]string{
		{"a", "first"},
		{"b", "bee"},
		{"a", "second"},
	} {
		if err := table.Compile(def[0], def[1]); err != nil {
			t.Fatal(err)
		}
	}
	if got := mustGenerate(t, table, "a"); got != "second" {
		t.Fatalf("got %q", got)
	}
	if names := table.Names(); !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Fatalf("names %v", names)
	}
	if table.Len() != 2 {
		t.Fatalf("len %d", table.Len())
	}
}

func TestTableErrors(t *testing.T) {
	table := NewTableWith(counters)

	err := table.Compile("broken", "(abc")
	ce, is := err.(*CompileError)
	if !is {
		t.Fatalf("%T isn't a %T", err, ce)
	}
	if ce.Name != "broken" {
		t.Fatalf("name %q", ce.Name)
	}
	if _, have := table.Lookup("broken"); have {
		t.Fatal("broken definition stored")
	}
	if want := `"broken": template error at column 1: unclosed '('`; err.Error() != want {
		t.Fatalf("error %q", err)
	}

	_, err = table.Generate("missing")
	if _, is := err.(*UnknownGenerator); !is {
		t.Fatalf("%T isn't an UnknownGenerator", err)
	}
}

func TestUpdatableTable(t *testing.T) {
	old := NewTableWith(counters)
	if err := old.Compile("a", "old"); err != nil {
		t.Fatal(err)
	}
	u := NewUpdatableTable(old)

	replacement := NewTableWith(counters)
	if err := replacement.Compile("a", "new"); err != nil {
		t.Fatal(err)
	}
	u.SetTable(replacement)

	if got := mustGenerate(t, u.Table(), "a"); got != "new" {
		t.Fatalf("got %q", got)
	}
	if got := mustGenerate(t, old, "a"); got != "old" {
		t.Fatalf("old table changed: %q", got)
	}
}
