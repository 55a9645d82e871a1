package tools

import (
	"fmt"
	"io"
	"strings"

	"github.com/phasic/phasic/core"
)

// Mermaid writes a Mermaid flowchart rendering of the multi-phase
// graph.  Phases map to subgraphs, which Mermaid supports directly.
func Mermaid(g *core.MultiPhaseGraph, w io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	f("flowchart TD")

	qualify := func(phase, node string) string {
		return mermaidId(phase) + "_" + mermaidId(node)
	}

	for _, p := range g.Phases() {
		f("  subgraph %s[%q]", mermaidId(p.Id), p.Id)
		for _, n := range p.Graph.Nodes() {
			f("    %s[%q]", qualify(p.Id, n.Id), n.Id)
		}
		for _, e := range p.Graph.Edges() {
			f("    %s -->|%q| %s",
				qualify(p.Id, e.From), edgeLabel(e), qualify(p.Id, e.To))
		}
		f("  end")
	}

	for _, e := range g.PhaseEdges() {
		f("  %s -.->|%q| %s", mermaidId(e.From), e.Condition, mermaidId(e.To))
	}

	return nil
}

// mermaidId strips characters that confuse Mermaid identifiers.
func mermaidId(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9', r == '_':
			return r
		}
		return '_'
	}, s)
}
