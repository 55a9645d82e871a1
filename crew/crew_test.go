package crew

import (
	"testing"

	"github.com/phasic/phasic/core"
)

var pingDocument = []byte(`{
  "phases": [
    {
      "id": "Main",
      "initial_state": "A",
      "nodes": [{"id": "A"}, {"id": "B"}],
      "edges": [{"from": "A", "to": "B", "condition": "true"}]
    }
  ]
}`)

func newMachine(t *testing.T, id string) *Machine {
	t.Helper()
	g := core.NewMultiPhaseGraph()
	if err := g.LoadBytes(pingDocument); err != nil {
		t.Fatal(err)
	}
	return NewMachine(id, g)
}

func TestCrewAdd(t *testing.T) {
	c := NewCrew("c")
	if err := c.Add(newMachine(t, "m1")); err != nil {
		t.Fatal(err)
	}
	if err := c.Add(newMachine(t, "m1")); err != Exists {
		t.Fatalf("got %v", err)
	}
	if _, have := c.Machine("m1"); !have {
		t.Fatal("m1 missing")
	}
	if !c.Rem("m1") {
		t.Fatal("Rem failed")
	}
	if c.Rem("m1") {
		t.Fatal("Rem of a removed machine")
	}
}

func TestCrewStep(t *testing.T) {
	c := NewCrew("c")
	for _, id := range []string{"m1", "m2"} {
		if err := c.Add(newMachine(t, id)); err != nil {
			t.Fatal(err)
		}
	}
	steps, errs := c.Step()
	if errs != nil {
		t.Fatalf("errors: %v", errs)
	}
	for id, r := range steps {
		if !r.StateChanged || r.StateId != "B" {
			t.Fatalf("%s: %s", id, r)
		}
	}

	// Machines are independent: stepping again is quiescent for both.
	steps, _ = c.Step()
	for id, r := range steps {
		if r.StateChanged || r.PhaseChanged {
			t.Fatalf("%s not quiescent: %s", id, r)
		}
	}
}

func TestCrewCopy(t *testing.T) {
	c := NewCrew("c")
	if err := c.Add(newMachine(t, "m1")); err != nil {
		t.Fatal(err)
	}
	cp, err := c.Copy()
	if err != nil {
		t.Fatal(err)
	}
	if _, errs := cp.Step(); errs != nil {
		t.Fatalf("errors: %v", errs)
	}

	m, _ := cp.Machine("m1")
	if id, _ := m.Graph.CurrentStateId(); id != "B" {
		t.Fatalf("copy at %q", id)
	}
	orig, _ := c.Machine("m1")
	if id, _ := orig.Graph.CurrentStateId(); id != "A" {
		t.Fatalf("original at %q", id)
	}
}
