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
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/randodo/core"
)

type MermaidOpts struct {
	// ShowTemplates will label each generator with its
	// description.
	ShowTemplates bool `json:"showTemplates"`

	// FilteredFill is the fill color for filtered generators.
	FilteredFill string `json:"filteredFill,omitempty"`

	// MissingFill is the fill color for references to names that
	// aren't defined.
	MissingFill string `json:"missingFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the references among the generators in the table.
func Mermaid(table *core.Table, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowTemplates: true,
			FilteredFill:  "#bcf2db",
			MissingFill:   "#f98b8b",
		}
	}

	fmt.Fprintf(w, "graph TB\n")

	nids := make(map[string]string)

	node := func(name string) string {
		if nid, already := nids[name]; already {
			return nid
		}
		nid := fmt.Sprintf("n%d", len(nids)+1)
		nids[name] = nid

		gen, have := table.Lookup(name)
		label := name
		if have && opts.ShowTemplates {
			label += "<br/><code>" + strings.Replace(Describe(gen), `"`, `'`, -1) + "</code>"
		}
		fmt.Fprintf(w, "  %s[\"%s\"]\n", nid, label)

		fill := ""
		switch gen.(type) {
		case *core.Filtered:
			fill = opts.FilteredFill
		case nil:
			fill = opts.MissingFill
		}
		if fill != "" {
			fmt.Fprintf(w, "  style %s fill:%s\n", nid, fill)
		}

		return nid
	}

	for _, name := range table.Names() {
		from := node(name)
		gen, _ := table.Lookup(name)
		for _, ref := range References(gen) {
			fmt.Fprintf(w, "  %s --> %s\n", from, node(ref))
		}
	}

	fmt.Fprintf(w, "\n")

	return w.Close()
}
