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

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Comcast/randodo/core"
)

// Dot makes a Graphviz dot file for the given generator tree.
//
// References are drawn as leaves.  The name, if given, labels the
// root.
func Dot(gen core.Generator, w io.WriteCloser, name string) error {

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	ids := make(map[core.Generator]string)
	parents := make([]string, 0, 16)

	Walk(gen, func(g core.Generator, depth int) bool {
		id := fmt.Sprintf("n%d", len(ids))
		ids[g] = id

		var (
			label     string
			fillcolor = "#99ddc8"
			shape     = "record"
		)

		switch vv := g.(type) {
		case *core.Literal:
			label = `"` + vv.Value + `"`
			fillcolor = "#bcf2db"
		case *core.CharClass:
			label = Describe(vv)
			fillcolor = "#bcf2db"
		case *core.Sequence:
			label = "sequence"
		case *core.Alternation:
			label = fmt.Sprintf("alternation (%d)", len(vv.Branches))
			fillcolor = "#2d93ad"
		case *core.Repetition:
			label = fmt.Sprintf("repeat %d to %d", vv.Min, vv.Max)
			fillcolor = "#52aa5e"
		case *core.Reference:
			label = "$" + vv.Name
			shape = "note"
			fillcolor = "#f98b8b"
		case *core.Filtered:
			label = "filter"
			shape = "note"
		default:
			label = fmt.Sprintf("%T", g)
		}
		if depth == 0 && name != "" {
			label = name + ": " + label
		}

		fmt.Fprintf(w, "  %s [shape=\"%s\", fillcolor=\"%s\", label=\"%s\" ]\n",
			id, shape, fillcolor, escbraces(escape(label)))

		parents = append(parents[:depth], id)
		if 0 < depth {
			fmt.Fprintf(w, "  %s -> %s\n", parents[depth-1], id)
		}

		return true
	})

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(gen core.Generator, basename, name string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(gen, dotfile, name); err != nil {
		return pngname, err
	}
	cmd := "dot -Tpng -Gstart=1 " + dotname + " > " + pngname
	if err := exec.Command("bash", "-c", cmd).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func escape(s string) string {
	s = strings.Replace(s, `\`, `\\`, -1)
	return strings.Replace(s, `"`, `\"`, -1)
}

func escbraces(s string) string {
	s = strings.Replace(s, "{", "\\{", -1)
	s = strings.Replace(s, "}", "\\}", -1)
	s = strings.Replace(s, "|", "\\|", -1)
	s = strings.Replace(s, "<", "\\<", -1)
	s = strings.Replace(s, ">", "\\>", -1)
	return s
}
