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
	"context"
	"fmt"
	"io"

	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/defs"
	"github.com/Comcast/randodo/interpreters"
	"github.com/Comcast/randodo/util"

	md "github.com/russross/blackfriday/v2"
	"golang.org/x/net/html"
)

// RenderDefsHTML writes an HTML fragment documenting the definitions
// along with some samples from each generator in the table.
func RenderDefsHTML(ds *defs.Definitions, table *core.Table, out io.Writer, samples int) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if ds.Doc != "" {
		f(`<div class="defsDoc doc">%s</div>`, md.Run([]byte(ds.Doc)))
	}

	f(`<div class="defs"><table>`)
	for _, d := range ds.Defs {
		if d == nil {
			continue
		}
		name := html.EscapeString(d.Name)
		f(`<tr class="def"><td><span id="%s" class="defName">%s</span></td><td>`, name, name)

		if d.Doc != "" {
			f(`<div class="defDoc doc">%s</div>`, md.Run([]byte(d.Doc)))
		}
		f(`<div class="template"><code>%s</code></div>`, html.EscapeString(d.Template))

		if d.Filter != nil {
			f(`<div class="filter">filter: <span class="interpreter">%s</span>`,
				html.EscapeString(d.Filter.Interpreter))
			src, is := d.Filter.Source.(string)
			if !is {
				src = util.JS(d.Filter.Source)
			}
			f(`<div class="code"><pre>%s</pre></div></div>`, html.EscapeString(src))
		}

		gen, have := table.Lookup(d.Name)
		if have {
			if refs := References(gen); 0 < len(refs) {
				f(`<div class="refs">uses`)
				for _, ref := range refs {
					ref = html.EscapeString(ref)
					f(` <a href="#%s"><code>%s</code></a>`, ref, ref)
				}
				f(`</div>`)
			}
			if 0 < samples {
				f(`<ul class="samples">`)
				for i := 0; i < samples; i++ {
					o := core.NewOutput()
					gen.Generate(o)
					f(`<li class="sample">%s</li>`, html.EscapeString(o.String()))
				}
				f(`</ul>`)
			}
		}
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderDefsPage writes a complete HTML page.
func RenderDefsPage(ds *defs.Definitions, table *core.Table, out io.Writer, cssFiles []string, samples int) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/defs-html.css"}
	}

	title := html.EscapeString(ds.Name)

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, title)

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", html.EscapeString(cssFile))
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, title)

	if err := RenderDefsHTML(ds, table, out, samples); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderDefsPage loads the definitions in the file and writes
// a page for them.
func ReadAndRenderDefsPage(filename string, cssFiles []string, out io.Writer, samples int) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ds, table, err := defs.Load(ctx, filename, nil, interpreters.Standard())
	if err != nil {
		return err
	}

	return RenderDefsPage(ds, table, out, cssFiles, samples)
}
