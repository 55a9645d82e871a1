package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFull(t *testing.T) {
	g := loadGraph(t, s3Document)
	if len(g.Phases()) != 2 {
		t.Fatalf("%d phases", len(g.Phases()))
	}
	if len(g.PhaseEdges()) != 1 {
		t.Fatalf("%d phase edges", len(g.PhaseEdges()))
	}
	// The first declared phase is current with its initial state.
	if id, err := g.CurrentPhaseId(); err != nil || id != "Main" {
		t.Fatalf("phase = %q, %v", id, err)
	}
	if id, err := g.CurrentStateId(); err != nil || id != "Idle" {
		t.Fatalf("state = %q, %v", id, err)
	}
	// Bags arrive with their tags.
	n, err := g.CurrentNode()
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := n.Var("count"); v.Kind() != IntKind {
		t.Fatalf("count has kind %s", v.Kind())
	}
	if v, _ := n.Var("enabled"); v.Kind() != BoolKind {
		t.Fatalf("enabled has kind %s", v.Kind())
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	// The editor attaches auxiliary keys; the core ignores them.
	g := loadGraph(t, []byte(`{
	  "version": 3,
	  "phases": [
	    {
	      "id": "P",
	      "initial_state": "A",
	      "color": "red",
	      "nodes": [{"id": "A", "position": {"x": 10, "y": 20}}]
	    }
	  ]
	}`))
	if id, _ := g.CurrentStateId(); id != "A" {
		t.Fatalf("state = %q", id)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		js   string
	}{
		{"phase missing id", `{"phases": [{"nodes": [{"id": "A"}]}]}`},
		{"node missing id", `{"phases": [{"id": "P", "nodes": [{}]}]}`},
		{"duplicate phase", `{"phases": [{"id": "P"}, {"id": "P"}]}`},
		{"duplicate node", `{"phases": [{"id": "P", "nodes": [{"id": "A"}, {"id": "A"}]}]}`},
		{"unknown endpoint", `{"phases": [{"id": "P", "nodes": [{"id": "A"}],
			"edges": [{"from": "A", "to": "B", "condition": "true"}]}]}`},
		{"missing condition", `{"phases": [{"id": "P", "nodes": [{"id": "A"}],
			"edges": [{"from": "A", "to": "A"}]}]}`},
		{"bad condition", `{"phases": [{"id": "P", "nodes": [{"id": "A"}],
			"edges": [{"from": "A", "to": "A", "condition": "(("}]}]}`},
		{"unknown phase endpoint", `{"phases": [{"id": "Main"}],
			"phase_edges": [{"from": "Main", "to": "Nowhere", "condition": "true"}]}`},
		{"non-scalar var", `{"phases": [{"id": "P",
			"nodes": [{"id": "A", "vars": {"x": [1, 2]}}]}]}`},
		{"bad json", `{"phases": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewMultiPhaseGraph()
			if err := g.LoadBytes([]byte(tt.js)); err == nil {
				t.Fatal("expected an error")
			}
			// A failed load leaves the graph cleared.
			if len(g.Phases()) != 0 {
				t.Fatalf("%d phases after failed load", len(g.Phases()))
			}
			if _, err := g.CurrentPhaseId(); err != NoCurrentPhase {
				t.Fatalf("got %v", err)
			}
		})
	}
}

func TestLoadFailureClearsPrevious(t *testing.T) {
	g := loadGraph(t, s3Document)
	if err := g.LoadBytes([]byte(`{"phases": [{"id": "P"}, {"id": "P"}]}`)); err == nil {
		t.Fatal("expected an error")
	}
	if len(g.Phases()) != 0 {
		t.Fatal("previous graph survived a failed load")
	}
}

func TestLoadFile(t *testing.T) {
	g := NewMultiPhaseGraph()

	loaded, err := g.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if loaded || err != nil {
		t.Fatalf("got %v, %v", loaded, err)
	}

	filename := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(filename, s3Document, 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err = g.LoadFile(filename)
	if !loaded || err != nil {
		t.Fatalf("got %v, %v", loaded, err)
	}
	if id, _ := g.CurrentPhaseId(); id != "Main" {
		t.Fatalf("phase = %q", id)
	}
}

func TestActionsOrder(t *testing.T) {
	// A repeated key in an actions object applies in declaration
	// order: the later assignment wins.
	g := loadGraph(t, []byte(`{
	  "phases": [
	    {
	      "id": "P",
	      "initial_state": "A",
	      "nodes": [{"id": "A"}, {"id": "B"}],
	      "edges": [{"from": "A", "to": "B", "condition": "true",
	                 "actions": {"x": 1, "x": 2}}]
	    }
	  ]
	}`))
	if _, err := g.Step(); err != nil {
		t.Fatal(err)
	}
	n, err := g.CurrentNode()
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := n.Var("x"); !v.Equal(Int(2)) {
		t.Fatalf("x = %v", v)
	}
}

func TestActionsJSONRoundTrip(t *testing.T) {
	as := Actions{
		{"count", Int(3)},
		{"label", String("on")},
	}
	js, err := as.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(js) != `{"count":3,"label":"on"}` {
		t.Fatalf("marshaled %s", js)
	}
	var back Actions
	if err := back.UnmarshalJSON(js); err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[0].Var != "count" || !back[1].Value.Equal(String("on")) {
		t.Fatalf("round trip: %#v", back)
	}
}

func TestParseDocumentDocs(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
	  "doc": "top",
	  "phases": [{"id": "P", "doc": "phase doc",
	    "nodes": [{"id": "A", "doc": "node doc"}]}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Doc != "top" || doc.Phases[0].Doc != "phase doc" || doc.Phases[0].Nodes[0].Doc != "node doc" {
		t.Fatalf("docs: %#v", doc)
	}
}
