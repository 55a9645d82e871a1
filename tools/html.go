package tools

import (
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/phasic/phasic/core"

	md "github.com/russross/blackfriday/v2"
)

// RenderConfigHTML writes an HTML description of the configuration
// document: phases, their nodes and edges, and the phase edges.  The
// optional 'doc' strings are rendered as Markdown.
func RenderConfigHTML(d *core.Document, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if d.Doc != "" {
		f(`<div class="graphDoc doc">%s</div>`, md.Run([]byte(d.Doc)))
	}

	for _, p := range d.Phases {
		f(`<div class="phase"><h2 id="%s">%s</h2>`, html.EscapeString(p.Id), html.EscapeString(p.Id))
		if p.Doc != "" {
			f(`<div class="phaseDoc doc">%s</div>`, md.Run([]byte(p.Doc)))
		}
		if p.InitialState != "" {
			f(`<div>initial state: <code>%s</code></div>`, html.EscapeString(p.InitialState))
		}

		f(`<div class="nodes"><table>`)
		for _, n := range p.Nodes {
			f(`<tr class="node"><td><span class="nodeName">%s</span></td><td>`, html.EscapeString(n.Id))
			if n.Doc != "" {
				f(`<div class="nodeDoc doc">%s</div>`, md.Run([]byte(n.Doc)))
			}
			for _, bag := range []struct {
				name string
				m    map[string]core.Value
			}{
				{"params", n.Params},
				{"vars", n.Vars},
				{"properties", n.Properties},
			} {
				if len(bag.m) == 0 {
					continue
				}
				f(`<div class="bag">%s: <code>%s</code></div>`, bag.name, html.EscapeString(js(bag.m)))
			}
			f(`</td></tr>`)
		}
		f(`</table></div>`)

		if 0 < len(p.Edges) {
			f(`<div class="edges"><table>`)
			for _, e := range p.Edges {
				f(`<tr class="edge"><td><code>%s</code> &rarr; <code>%s</code></td>`,
					html.EscapeString(e.From), html.EscapeString(e.To))
				f(`<td><code>%s</code></td>`, html.EscapeString(e.Condition))
				if 0 < len(e.Actions) {
					f(`<td><code>%s</code></td>`, html.EscapeString(js(e.Actions)))
				}
				f(`</tr>`)
			}
			f(`</table></div>`)
		}
		f(`</div>`)
	}

	if 0 < len(d.PhaseEdges) {
		f(`<div class="phaseEdges"><h2>Phase edges</h2><table>`)
		for _, e := range d.PhaseEdges {
			f(`<tr><td><a href="#%s"><code>%s</code></a> &rarr; <a href="#%s"><code>%s</code></a></td><td><code>%s</code></td></tr>`,
				html.EscapeString(e.From), html.EscapeString(e.From),
				html.EscapeString(e.To), html.EscapeString(e.To),
				html.EscapeString(e.Condition))
		}
		f(`</table></div>`)
	}

	return nil
}

// RenderConfigPage writes a complete HTML page for the document.
func RenderConfigPage(d *core.Document, out io.Writer, cssFiles []string) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/config-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
`)
	for _, css := range cssFiles {
		fmt.Fprintf(out, `    <link rel="stylesheet" href="%s">
`, css)
	}
	fmt.Fprintf(out, `  </head>
  <body>
`)
	if err := RenderConfigHTML(d, out); err != nil {
		return err
	}
	fmt.Fprintf(out, `  </body>
</html>
`)
	return nil
}

func js(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		return err.Error()
	}
	return string(bs)
}
