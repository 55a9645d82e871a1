package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testConfig = `{
  "phases": [
    {
      "id": "Main",
      "initial_state": "Idle",
      "nodes": [
        {"id": "Idle", "vars": {"enabled": false, "count": 0}},
        {"id": "Active"}
      ],
      "edges": [
        {"from": "Idle", "to": "Active", "condition": "enabled",
         "actions": {"count": 1}}
      ]
    }
  ]
}`

func testService(t *testing.T) (*Service, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	svc := NewService(&buf, nil, 100)
	if err := svc.LoadJSON([]byte(testConfig)); err != nil {
		t.Fatal(err)
	}
	return svc, &buf
}

func TestServiceCommands(t *testing.T) {
	svc, buf := testService(t)
	ctx := context.Background()

	svc.Process(ctx, "status")
	if !strings.Contains(buf.String(), "phase Main state Idle") {
		t.Fatalf("status: %s", buf.String())
	}

	// Nothing fires while enabled is false.
	buf.Reset()
	svc.Process(ctx, "step")
	if !strings.Contains(buf.String(), `"stateChanged":false`) {
		t.Fatalf("step: %s", buf.String())
	}

	// Inject stimulus, then step.
	buf.Reset()
	svc.Process(ctx, "set enabled true")
	svc.Process(ctx, "step")
	out := buf.String()
	if !strings.Contains(out, `"stateChanged":true`) || !strings.Contains(out, `"state":"Active"`) {
		t.Fatalf("step after set: %s", out)
	}

	buf.Reset()
	svc.Process(ctx, "print")
	if !strings.Contains(buf.String(), "count=1") {
		t.Fatalf("print: %s", buf.String())
	}

	buf.Reset()
	svc.Process(ctx, "bogus")
	if !strings.Contains(buf.String(), "error") {
		t.Fatalf("bogus: %s", buf.String())
	}
}

func TestServiceRun(t *testing.T) {
	svc, buf := testService(t)
	ctx := context.Background()

	svc.Process(ctx, "set enabled true")
	buf.Reset()
	svc.Process(ctx, "run")
	out := buf.String()
	if !strings.Contains(out, "stopped: done") {
		t.Fatalf("run: %s", out)
	}
}

func TestServiceDot(t *testing.T) {
	svc, buf := testService(t)
	svc.Process(context.Background(), "dot")
	if !strings.Contains(buf.String(), "digraph G {") {
		t.Fatalf("dot: %s", buf.String())
	}
}

func TestProcessMessage(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	resp := svc.ProcessMessage(ctx, []byte(`{"set": {"enabled": true}, "step": 1}`))
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if len(resp.Stepped) != 1 || !resp.Stepped[0].StateChanged {
		t.Fatalf("stepped: %#v", resp.Stepped)
	}
	if resp.Phase != "Main" || resp.State != "Active" {
		t.Fatalf("ended at %s/%s", resp.Phase, resp.State)
	}

	resp = svc.ProcessMessage(ctx, []byte(`not json`))
	if resp.Error == "" {
		t.Fatal("expected an error")
	}
}

func TestLoadYAML(t *testing.T) {
	yml := `
phases:
  - id: Main
    initial_state: A
    nodes:
      - id: A
        vars:
          go: true
      - id: B
    edges:
      - from: A
        to: B
        condition: go
`
	var buf bytes.Buffer
	svc := NewService(&buf, nil, 100)
	if err := svc.LoadYAML([]byte(yml)); err != nil {
		t.Fatal(err)
	}
	resp := svc.ProcessMessage(context.Background(), []byte(`{"step": 1}`))
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.State != "B" {
		t.Fatalf("ended at %q", resp.State)
	}
}

func TestStore(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "configs.db"))
	if err := store.Open(); err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.Get("missing"); err != ConfigNotFound {
		t.Fatalf("got %v", err)
	}
	if err := store.Put("demo", []byte(testConfig)); err != nil {
		t.Fatal(err)
	}
	bs, err := store.Get("demo")
	if err != nil {
		t.Fatal(err)
	}
	if string(bs) != testConfig {
		t.Fatal("stored config differs")
	}
	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "demo" {
		t.Fatalf("names: %v", names)
	}
	if err := store.Rem("demo"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("demo"); err != ConfigNotFound {
		t.Fatalf("got %v", err)
	}
}

func TestServiceLoadFilename(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(filename, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	svc := NewService(&buf, nil, 100)
	if err := svc.LoadFilename(filename); err != nil {
		t.Fatal(err)
	}
	if phase, _ := svc.graph.CurrentPhaseId(); phase != "Main" {
		t.Fatalf("phase = %q", phase)
	}
}
