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

package defs

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/randodo/core"
	. "github.com/Comcast/randodo/util/testutil"
)

func counters() core.Source {
	return &Counter{}
}

type upper struct{}

func (i *upper) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	return nil, nil
}

func (i *upper) Exec(ctx context.Context, text string, props map[string]interface{}, code, compiled interface{}) (string, error) {
	return strings.ToUpper(text), nil
}

func TestParseLine(t *testing.T) {
	type test struct {
		description string
		line        string
		name        string
		template    string
		reason      string
	}

	tests := []test{
		{"simple", "gnome=(dwarf|lilliput)", "gnome", "(dwarf|lilliput)", ""},
		{"spaces", "  hobbit  =   $gnome [goblin]", "hobbit", "$gnome [goblin]", ""},
		{"tabs", "\thobbit\t=\tx", "hobbit", "x", ""},
		{"trailing spaces kept", "a = b  ", "a", "b  ", ""},
		{"equals in template", "a = b=c", "a", "b=c", ""},
		{"hash in template", "a = #b", "a", "#b", ""},
		{"crlf", "a = b\r", "a", "b", ""},
		{"blank", "", "", "", ""},
		{"spaces only", "    ", "", "", ""},
		{"comment", "# gnome = x", "", "", ""},
		{"indented comment", "   # gnome = x", "", "", ""},
		{"junk after name", "gno me = x", "", "", "unexpected chars after variable name"},
		{"no equals", "gnome", "", "", "finished parsing line in an unexpected state"},
		{"no value", "gnome =   ", "", "", "finished parsing line in an unexpected state"},
		{"no name", "= x", "", "", "missing variable name"},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			name, template, err := ParseLine(tc.line)
			if tc.reason != "" {
				if err == nil {
					t.Fatalf("expected an error; got %q %q", name, template)
				}
				var le *LineError
				if !errors.As(err, &le) {
					t.Fatalf("%T isn't a %T", err, le)
				}
				if le.Reason != tc.reason {
					t.Fatalf("got reason %q", le.Reason)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if name != tc.name {
				t.Fatalf("got name %q", name)
			}
			if template != tc.template {
				t.Fatalf("got template %q", template)
			}
		})
	}
}

const fantasy = `# Some creatures.

gnome = (dwarf|lilliput)
  hobbit=$gnome [goblin]
`

func TestParseLines(t *testing.T) {
	ds, err := ParseLines(strings.NewReader(fantasy))
	if err != nil {
		t.Fatal(err)
	}
	if n := len(ds.Defs); n != 2 {
		t.Fatalf("got %d definitions", n)
	}
	d, have := ds.Find("hobbit")
	if !have {
		t.Fatal("no hobbit")
	}
	if d.Template != "$gnome [goblin]" {
		t.Fatalf("got %q", d.Template)
	}
	if d.Line != 4 {
		t.Fatalf("got line %d", d.Line)
	}
}

func TestParseLinesError(t *testing.T) {
	_, err := ParseLines(strings.NewReader("a = b\n\nc d = e\n"))
	if err == nil {
		t.Fatal("should have complained")
	}
	var le *LineError
	if !errors.As(err, &le) {
		t.Fatalf("%T isn't a %T", err, le)
	}
	if le.Line != 3 {
		t.Fatalf("got line %d", le.Line)
	}
	if err.Error() != "line 3: unexpected chars after variable name" {
		t.Fatalf("got %q", err)
	}
}

func TestCompileDefinitions(t *testing.T) {
	ds, err := ParseLines(strings.NewReader(fantasy))
	if err != nil {
		t.Fatal(err)
	}

	table := core.NewTableWith(counters)
	if err = ds.Compile(context.Background(), table, nil); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"dwarf g", "lilliput o"} {
		out, err := table.Generate("hobbit")
		if err != nil {
			t.Fatal(err)
		}
		if got := out.String(); got != want {
			t.Fatalf("wanted %q; got %q", want, got)
		}
	}
}

func TestCompileDefinitionsLastWins(t *testing.T) {
	ds, err := ParseLines(strings.NewReader("a = x\na = y\n"))
	if err != nil {
		t.Fatal(err)
	}
	table := core.NewTableWith(counters)
	if err = ds.Compile(context.Background(), table, nil); err != nil {
		t.Fatal(err)
	}
	out, err := table.Generate("a")
	if err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "y" {
		t.Fatalf("got %q", got)
	}
	if d, _ := ds.Find("a"); d.Template != "y" {
		t.Fatalf("found %q", d.Template)
	}
}

func TestCompileDefinitionsBadTemplate(t *testing.T) {
	ds, err := ParseLines(strings.NewReader("a = x\n\nb = (x\n"))
	if err != nil {
		t.Fatal(err)
	}
	err = ds.Compile(context.Background(), core.NewTable(), nil)
	if err == nil {
		t.Fatal("should have complained")
	}
	var le *LineError
	if !errors.As(err, &le) {
		t.Fatalf("%T isn't a %T", err, le)
	}
	if le.Line != 3 {
		t.Fatalf("got line %d", le.Line)
	}
	var ce *core.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("%T doesn't wrap a %T", err, ce)
	}
	if ce.Name != "b" {
		t.Fatalf("got name %q", ce.Name)
	}
}

const fantasyYAML = `
name: fantasy
doc: Some *creatures*.
defs:
- name: gnome
  template: (dwarf|lilliput)
  doc: Small.
- name: shout
  template: $gnome!
  filter:
    interpreter: upper
    source: whatever
`

func TestParseYAML(t *testing.T) {
	ds, err := ParseYAML([]byte(fantasyYAML))
	if err != nil {
		t.Fatal(err)
	}
	if ds.Name != "fantasy" {
		t.Fatalf("got name %q", ds.Name)
	}
	d, have := ds.Find("shout")
	if !have {
		t.Fatal("no shout")
	}
	if d.Filter == nil || d.Filter.Interpreter != "upper" {
		t.Fatalf("bad filter %s", JS(d.Filter))
	}

	interpreters := core.InterpretersMap{
		"upper": &upper{},
	}
	table := core.NewTableWith(counters)
	if err = ds.Compile(context.Background(), table, interpreters); err != nil {
		t.Fatal(err)
	}
	out, err := table.Generate("shout")
	if err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "DWARF!" {
		t.Fatalf("got %q", got)
	}
}

func TestParseYAMLNoName(t *testing.T) {
	if _, err := ParseYAML([]byte("defs:\n- template: x\n")); err == nil {
		t.Fatal("should have complained")
	}
}

func TestCompileMissingInterpreter(t *testing.T) {
	ds, err := ParseYAML([]byte(fantasyYAML))
	if err != nil {
		t.Fatal(err)
	}
	err = ds.Compile(context.Background(), core.NewTable(), core.NewInterpretersMap())
	if !errors.Is(err, core.InterpreterNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestJSON(t *testing.T) {
	js := `{"defs":[{"name":"a","template":"[xy]{2}"}]}`
	ds, err := ParseYAML([]byte(js))
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := ds.Find("a"); d == nil || d.Template != "[xy]{2}" {
		t.Fatalf("got %s", JS(ds))
	}
}

func TestWriteLines(t *testing.T) {
	ds, err := ParseLines(strings.NewReader(fantasy))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err = ds.WriteLines(&buf); err != nil {
		t.Fatal(err)
	}
	again, err := ParseLines(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if JS(again.Defs[1].Template) != JS(ds.Defs[1].Template) {
		t.Fatalf("got %s", JS(again))
	}

	ds.Add("bad", "x\ny")
	if err = ds.WriteLines(&buf); err == nil {
		t.Fatal("should have complained")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	ds, err := ParseYAML([]byte(fantasyYAML))
	if err != nil {
		t.Fatal(err)
	}
	bs, err := ds.YAML()
	if err != nil {
		t.Fatal(err)
	}
	again, err := ParseYAML(bs)
	if err != nil {
		t.Fatal(err)
	}
	if JS(again) != JS(ds) {
		t.Fatalf("%s != %s", JS(again), JS(ds))
	}
}

func TestInline(t *testing.T) {
	input := `
I like %inline("tacos"), and
I also like %inline("queso").
`
	want := `
I like TACOS, and
I also like QUESO.
`
	find := func(name string) ([]byte, error) {
		return []byte(strings.ToUpper(name)), nil
	}

	got, err := Inline([]byte(input), find)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		filename := filepath.Join(dir, name)
		if err := ioutil.WriteFile(filename, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return filename
	}

	write("colors.txt", "(red|green)")
	lines := write("things.defs", "color = %inline(\"colors.txt\")\nthing = $color [xy]\n")
	yml := write("things.yaml", fantasyYAML)

	t.Run("lines", func(t *testing.T) {
		ds, table, err := Load(context.Background(), lines, counters, nil)
		if err != nil {
			t.Fatal(err)
		}
		if ds.Name != "things" {
			t.Fatalf("got name %q", ds.Name)
		}
		out, err := table.Generate("thing")
		if err != nil {
			t.Fatal(err)
		}
		if got := out.String(); got != "red x" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		ds, err := ReadFile(yml)
		if err != nil {
			t.Fatal(err)
		}
		if ds.Name != "fantasy" {
			t.Fatalf("got name %q", ds.Name)
		}
		if len(ds.Defs) != 2 {
			t.Fatalf("got %s", JS(ds))
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := ReadFile(filepath.Join(dir, "nope.defs")); err == nil {
			t.Fatal("should have complained")
		}
	})
}
