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

package goja

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Comcast/randodo/core"
	. "github.com/Comcast/randodo/util/testutil"
)

func run(t *testing.T, i *Interpreter, code interface{}, text string, props map[string]interface{}) (string, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	return i.Exec(ctx, text, props, code, compiled)
}

func TestFilters(t *testing.T) {
	type test struct {
		description string
		code        string
		want        string
	}

	tests := []test{
		{"upper", `return _.text.toUpperCase();`, "TACOS"},
		{"name", `return _.name + ":" + _.text;`, "food:tacos"},
		{"props", `return _.props.name;`, "food"},
		{"null", `return null;`, ""},
		{"undefined", `var x = 1;`, ""},
		{"esc", `return _.esc("a b&c");`, "a+b%26c"},
		{"reverse", `return _.text.split("").reverse().join("");`, "socat"},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			props := map[string]interface{}{
				"name": "food",
			}
			got, err := run(t, NewInterpreter(), tc.code, "tacos", props)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("wanted %q; got %q", tc.want, got)
			}
		})
	}
}

func TestFilterNotString(t *testing.T) {
	if _, err := run(t, NewInterpreter(), `return {likes:"chips"};`, "", nil); err == nil {
		t.Fatal("should have complained")
	}
}

func TestFilterPropsCopied(t *testing.T) {
	props := map[string]interface{}{
		"name": "food",
	}
	if _, err := run(t, NewInterpreter(), `_.props.name = "x"; return "";`, "", props); err != nil {
		t.Fatal(err)
	}
	if props["name"] != "food" {
		t.Fatalf("props changed: %s", JS(props))
	}
}

func TestFilterTimeout(t *testing.T) {
	code := `for (;;) { sleep(10); } return "";`

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Testing = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, "", nil, code, compiled); err == nil {
		t.Fatal("didn't timeout")
	}
	if msg := err.Error(); msg != InterruptedMessage {
		t.Fatalf("surprised by \"%s\"", msg)
	}
}

func TestFilterError(t *testing.T) {
	if _, err := run(t, NewInterpreter(), `return likes + tacos;`, "", nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestFilterCompileError(t *testing.T) {
	if _, err := NewInterpreter().Compile(context.Background(), `return (;`); err == nil {
		t.Fatal("didn't protest")
	}
	if _, err := NewInterpreter().Compile(context.Background(), 42); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestFilterNoPrecompile(t *testing.T) {
	got, err := NewInterpreter().Exec(context.Background(), "a", nil, `return _.text + _.text;`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "aa" {
		t.Fatalf("got %q", got)
	}
}

func TestCronNextGood(t *testing.T) {
	got, err := run(t, NewInterpreter(), `return _.cronNext("* 0 * * *");`, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = time.Parse(time.RFC3339Nano, got); err != nil {
		t.Fatalf("bad time %q: %s", got, err)
	}
}

func TestCronNextBad(t *testing.T) {
	if _, err := run(t, NewInterpreter(), `return _.cronNext("bad");`, "", nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestRequireSimple(t *testing.T) {
	code := map[string]interface{}{
		"requires": []interface{}{"foo", "bar"},
		"code":     `return foo() + " and " + bar();`,
	}

	i := NewInterpreter()
	i.Libraries = MapLibraries(map[string]string{
		"foo": `
function foo() {
  var acc = [];
  for (var i = 0; i < 10; i++) {
      acc.push(i);
  }
  return "chips";
}
`,
		"bar": `
function bar() { return "queso"}
`,
	})

	got, err := run(t, i, code, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "chips and queso" {
		t.Fatalf("didn't want \"%s\"", got)
	}
}

func TestRequireMissing(t *testing.T) {
	code := map[string]interface{}{
		"requires": "nope",
		"code":     `return "";`,
	}
	i := NewInterpreter()
	i.Libraries = MapLibraries(map[string]string{})
	if _, err := i.Compile(context.Background(), code); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestRequireFile(t *testing.T) {
	dir := t.TempDir()
	lib := `function shout(s) { return s.toUpperCase() + "!"; }`
	if err := ioutil.WriteFile(filepath.Join(dir, "shout.js"), []byte(lib), 0644); err != nil {
		t.Fatal(err)
	}

	code := map[interface{}]interface{}{
		"requires": []string{"file://shout.js"},
		"code":     `return shout(_.text);`,
	}

	i := NewInterpreter()
	i.Libraries = FileLibraries(dir)

	got, err := run(t, i, code, "hey", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "HEY!" {
		t.Fatalf("got %q", got)
	}
}

func TestRequireHTTP(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `
function foo() { return "queso"; }
`)
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	code := map[string]interface{}{
		"requires": []interface{}{server.URL},
		"code":     `return foo();`,
	}

	got, err := run(t, NewInterpreter(), code, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "queso" {
		t.Fatalf("wanted something wrong: '%s'", got)
	}
}

func TestFilteredGenerator(t *testing.T) {
	fs := &core.FilterSource{
		Interpreter: "goja",
		Source:      `return _.name + "=" + _.text.toUpperCase();`,
	}

	f, err := fs.Compile(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	table := core.NewTableWith(func() core.Source { return &Counter{} })
	if err = table.Compile("raw", "(tacos|queso)"); err != nil {
		t.Fatal(err)
	}
	raw, _ := table.Lookup("raw")
	table.Set("loud", &core.Filtered{
		Gen:    raw,
		Name:   "loud",
		Filter: f,
	})

	for _, want := range []string{"loud=TACOS", "loud=QUESO"} {
		out, err := table.Generate("loud")
		if err != nil {
			t.Fatal(err)
		}
		if got := out.String(); got != want {
			t.Fatalf("wanted %q; got %q", want, got)
		}
	}
}

func benchmarkCompiling(b *testing.B, compiling bool) {
	code := `
function radians (num) {
  return num * Math.PI / 180;
}

function haversine (lon1,lat1,lon2,lat2) {
  var R = 6371;
  var dLat = radians(lat2-lat1);
  var dLon = radians(lon2-lon1);
  var lat1 = radians(lat1);
  var lat2 = radians(lat2);
  var a = Math.sin(dLat/2) * Math.sin(dLat/2) + Math.sin(dLon/2) * Math.sin(dLon/2) * Math.cos(lat1) * Math.cos(lat2);
  var c = 2 * Math.atan2(Math.sqrt(a), Math.sqrt(1-a));
  return R * c;
}

return _.text + haversine(0, 0, 1, 1).toFixed(0);
`

	i := NewInterpreter()

	var compiled interface{}
	if compiling {
		var err error
		if compiled, err = i.Compile(context.Background(), code); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		s, err := i.Exec(context.Background(), "km ", nil, code, compiled)
		if err != nil {
			b.Fatal(err)
		}
		if !strings.HasPrefix(s, "km ") {
			b.Fatal(s)
		}
	}
}

func BenchmarkPrecompile(b *testing.B) {
	benchmarkCompiling(b, true)
}

func BenchmarkNoPrecompile(b *testing.B) {
	benchmarkCompiling(b, false)
}

func TestParseSource(t *testing.T) {
	type test struct {
		description string
		src         interface{}
		code        string
		requires    []string
		err         bool
	}

	for _, tc := range []test{
		{"string", `return "";`, `return "";`, nil, false},
		{"map", map[string]interface{}{"code": "x", "requires": "a"}, "x", []string{"a"}, false},
		{"yaml map", map[interface{}]interface{}{"code": "x", "requires": []interface{}{"a", "b"}}, "x", []string{"a", "b"}, false},
		{"no code", map[string]interface{}{"requires": "a"}, "", nil, true},
		{"bad requires", map[string]interface{}{"code": "x", "requires": 1}, "", nil, true},
		{"bad key", map[interface{}]interface{}{1: "x"}, "", nil, true},
		{"number", 42, "", nil, true},
	} {
		t.Run(tc.description, func(t *testing.T) {
			s, err := ParseSource(tc.src)
			if tc.err {
				if err == nil {
					t.Fatal("didn't protest")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if s.Code != tc.code || JS(s.Requires) != JS(tc.requires) {
				t.Fatalf("got %s", JS(s))
			}
		})
	}
}
