package tools

import (
	"bytes"
	"strings"
	"testing"

	"github.com/phasic/phasic/core"
)

var testDocument = []byte(`{
  "doc": "A **two-phase** machine.",
  "phases": [
    {
      "id": "Main",
      "doc": "The main phase.",
      "initial_state": "Idle",
      "nodes": [
        {"id": "Idle", "doc": "Waiting.", "vars": {"enabled": true, "count": 0}},
        {"id": "Active", "vars": {"enabled": true}}
      ],
      "edges": [
        {"from": "Idle", "to": "Active", "condition": "enabled",
         "actions": {"count": 1}}
      ]
    },
    {
      "id": "Recovery",
      "initial_state": "Start",
      "nodes": [{"id": "Start"}]
    }
  ],
  "phase_edges": [
    {"from": "Main", "to": "Recovery", "condition": "count >= 2"}
  ]
}`)

func testGraph(t *testing.T) *core.MultiPhaseGraph {
	t.Helper()
	g := core.NewMultiPhaseGraph()
	if err := g.LoadBytes(testDocument); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestDot(t *testing.T) {
	var buf bytes.Buffer
	if err := Dot(testGraph(t), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"digraph G {",
		`subgraph "cluster_Main"`,
		`subgraph "cluster_Recovery"`,
		`"Main.Idle" -> "Main.Active"`,
		"count=1",
		`ltail="cluster_Main"`,
		"count >= 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}
}

func TestMermaid(t *testing.T) {
	var buf bytes.Buffer
	if err := Mermaid(testGraph(t), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"flowchart TD",
		`subgraph Main["Main"]`,
		"Main_Idle",
		"-.->",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("mermaid output missing %q:\n%s", want, out)
		}
	}
}
