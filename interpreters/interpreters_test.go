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

package interpreters

import (
	"context"
	"testing"

	"github.com/Comcast/randodo/defs"
)

func TestStandard(t *testing.T) {
	is := Standard()
	for _, name := range []string{"goja", "ecmascript", "noop"} {
		if _, have := is[name]; !have {
			t.Fatalf("no %s", name)
		}
	}
}

func TestStandardFilters(t *testing.T) {
	src := `
defs:
- name: a
  template: tacos
  filter:
    interpreter: ecmascript
    source: return _.text.toUpperCase();
- name: b
  template: queso
  filter:
    interpreter: noop
    source: ""
`
	ds, err := defs.ParseYAML([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	table, err := ds.Table(context.Background(), nil, Standard())
	if err != nil {
		t.Fatal(err)
	}

	for name, want := range map[string]string{"a": "TACOS", "b": "queso"} {
		out, err := table.Generate(name)
		if err != nil {
			t.Fatal(err)
		}
		if got := out.String(); got != want {
			t.Fatalf("%s: wanted %q; got %q", name, want, got)
		}
	}
}
