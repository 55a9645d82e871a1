package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"strings"

	"github.com/phasic/phasic/core"

	"gopkg.in/yaml.v2"
)

// Dot writes a Graphviz dot rendering of the multi-phase graph.
//
// Each phase becomes a cluster; node edges are labeled with their
// conditions and actions; phase edges are dashed and drawn between
// clusters.  The current node (if any) of the current phase is
// highlighted.
func Dot(g *core.MultiPhaseGraph, w io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	f("digraph G {")
	f(`  graph [compound=true,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled" fillcolor="#99ddc8"]
  edge [fontsize="10"]`)

	currentPhase, _ := g.CurrentPhaseId()
	currentState, _ := g.CurrentStateId()

	// Graphviz node names must be unique across clusters, so nodes
	// are qualified by phase.
	qualify := func(phase, node string) string {
		return `"` + phase + `.` + node + `"`
	}

	for _, p := range g.Phases() {
		f("  subgraph \"cluster_%s\" {", p.Id)
		f(`    label="%s"`, p.Id)
		if p.Id == currentPhase {
			f(`    style="bold"`)
		}
		for _, n := range p.Graph.Nodes() {
			label := n.Id
			if bags := bagLabel(n); bags != "" {
				label += `<BR/><FONT POINT-SIZE="8">` + bags + `</FONT>`
			}
			style := "rounded,filled"
			fillcolor := "#99ddc8"
			if p.Id == currentPhase && n.Id == currentState {
				fillcolor = "#f98b8b"
			}
			if n.Id == p.InitialState {
				style += ",bold"
			}
			f(`    %s [style="%s", fillcolor="%s", label=<%s>]`,
				qualify(p.Id, n.Id), style, fillcolor, label)
		}
		for _, e := range p.Graph.Edges() {
			f(`    %s -> %s [label="%s"]`,
				qualify(p.Id, e.From), qualify(p.Id, e.To),
				escape(edgeLabel(e)))
		}
		f("  }")
	}

	// Phase edges run between cluster anchors.
	for _, e := range g.PhaseEdges() {
		from, have := g.Phase(e.From)
		if !have || len(from.Graph.Nodes()) == 0 {
			continue
		}
		to, have := g.Phase(e.To)
		if !have || len(to.Graph.Nodes()) == 0 {
			continue
		}
		f(`  %s -> %s [style="dashed", ltail="cluster_%s", lhead="cluster_%s", label="%s"]`,
			qualify(from.Id, from.Graph.Nodes()[0].Id),
			qualify(to.Id, to.Graph.Nodes()[0].Id),
			e.From, e.To, escape(e.Condition))
	}

	f("}")
	return nil
}

// bagLabel renders a node's bags as YAML for a compact label.
func bagLabel(n *core.Node) string {
	bags := make(map[string]map[string]interface{})
	add := func(name string, bag map[string]core.Value) {
		if len(bag) == 0 {
			return
		}
		m := make(map[string]interface{}, len(bag))
		for k, v := range bag {
			m[k] = v.Interface()
		}
		bags[name] = m
	}
	add("params", n.Params)
	add("vars", n.Vars)
	add("properties", n.Properties)
	if len(bags) == 0 {
		return ""
	}
	js, err := yaml.Marshal(bags)
	if err != nil {
		return err.Error()
	}
	return strings.Replace(strings.TrimSpace(string(js)), "\n", `<BR ALIGN="LEFT"/>`, -1)
}

func edgeLabel(e *core.Edge) string {
	label := e.Condition
	if 0 < len(e.Actions) {
		parts := make([]string, 0, len(e.Actions))
		for _, a := range e.Actions {
			parts = append(parts, a.Var+"="+a.Value.String())
		}
		label += " / " + strings.Join(parts, ", ")
	}
	return label
}

func escape(s string) string {
	s = strings.Replace(s, `\`, `\\`, -1)
	return strings.Replace(s, `"`, `\"`, -1)
}
