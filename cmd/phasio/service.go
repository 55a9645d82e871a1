/* Copyright 2025-2026 Phasic Authors
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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/phasic/phasic/core"
	"github.com/phasic/phasic/tools"
	. "github.com/phasic/phasic/util/testutil"

	"github.com/jsccast/yaml"
)

// Service hosts one machine and executes commands against it.
//
// Commands arrive either as shell lines (the stdin REPL) or as JSON
// protocol messages (the MQTT and WebSocket couplings, and timers).
type Service struct {
	sync.Mutex

	graph  *core.MultiPhaseGraph
	doc    *core.Document
	store  *Store
	timers *Timers
	limit  int

	// Timestamps prepends a timestamp to each output line.
	Timestamps bool

	out io.Writer
}

// NewService makes a Service around an empty machine.
func NewService(out io.Writer, store *Store, limit int) *Service {
	s := &Service{
		graph: core.NewMultiPhaseGraph(),
		store: store,
		limit: limit,
		out:   out,
	}
	return s
}

func (s *Service) say(format string, args ...interface{}) {
	if s.Timestamps {
		format = fmt.Sprintf("%-31s", core.Timestamp()) + " " + format
	}
	fmt.Fprintf(s.out, "# "+format+"\n", args...)
}

func (s *Service) protest(format string, args ...interface{}) {
	s.say("error: "+format, args...)
}

// LoadFilename loads a JSON or YAML configuration file.
func (s *Service) LoadFilename(filename string) error {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return s.LoadYAML(bs)
	}
	return s.LoadJSON(bs)
}

// LoadJSON loads a JSON configuration document.
func (s *Service) LoadJSON(bs []byte) error {
	doc, err := core.ParseDocument(bs)
	if err != nil {
		return err
	}
	if err := s.graph.Load(doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// LoadYAML loads a YAML configuration document by canonicalizing it to
// JSON shapes first.
func (s *Service) LoadYAML(bs []byte) error {
	var x interface{}
	if err := yaml.Unmarshal(bs, &x); err != nil {
		return err
	}
	js, err := json.Marshal(stringMaps(x))
	if err != nil {
		return err
	}
	return s.LoadJSON(js)
}

// stringMaps recursively converts map[interface{}]interface{} to
// map[string]interface{}, which the YAML deserializer likes to make
// and the JSON serializer refuses to take.
func stringMaps(x interface{}) interface{} {
	switch vv := x.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			m[fmt.Sprintf("%v", k)] = stringMaps(v)
		}
		return m
	case map[string]interface{}:
		for k, v := range vv {
			vv[k] = stringMaps(v)
		}
		return vv
	case []interface{}:
		for i, y := range vv {
			vv[i] = stringMaps(y)
		}
		return vv
	default:
		return x
	}
}

var (
	loadPat     = regexp.MustCompile(`^load +(.+)`)
	savePat     = regexp.MustCompile(`^save +([-a-zA-Z0-9_]+)`)
	fetchPat    = regexp.MustCompile(`^fetch +([-a-zA-Z0-9_]+)`)
	listPat     = regexp.MustCompile(`^list$`)
	stepPat     = regexp.MustCompile(`^step( +([0-9]+))?$`)
	runPat      = regexp.MustCompile(`^run( +([0-9]+))?$`)
	setPat      = regexp.MustCompile(`^set +([-a-zA-Z0-9_.]+) +(.+)`)
	phasePat    = regexp.MustCompile(`^phase +([-a-zA-Z0-9_]+)`)
	statePat    = regexp.MustCompile(`^state +([-a-zA-Z0-9_]+)`)
	printPat    = regexp.MustCompile(`^print$`)
	statusPat   = regexp.MustCompile(`^status$`)
	dotPat      = regexp.MustCompile(`^dot$`)
	mermaidPat  = regexp.MustCompile(`^mermaid$`)
	timerPat    = regexp.MustCompile(`^timer +add +([-a-zA-Z0-9_]+) +("[^"]*"|\S+) +(.+)`)
	timerRemPat = regexp.MustCompile(`^timer +rem +([-a-zA-Z0-9_]+)`)
	helpPat     = regexp.MustCompile(`^(help|h|\?)$`)
)

// Process executes one REPL line.
func (s *Service) Process(ctx context.Context, line string) {
	s.Lock()
	defer s.Unlock()

	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	switch {
	case loadPat.MatchString(line):
		filename := loadPat.FindStringSubmatch(line)[1]
		if err := s.LoadFilename(filename); err != nil {
			s.protest("%s", err)
			return
		}
		s.sayStatus()

	case savePat.MatchString(line):
		name := savePat.FindStringSubmatch(line)[1]
		if s.store == nil {
			s.protest("no store (use -db)")
			return
		}
		if s.doc == nil {
			s.protest("nothing loaded")
			return
		}
		js, err := json.Marshal(s.doc)
		if err != nil {
			s.protest("%s", err)
			return
		}
		if err := s.store.Put(name, js); err != nil {
			s.protest("%s", err)
			return
		}
		s.say("saved %s", name)

	case fetchPat.MatchString(line):
		name := fetchPat.FindStringSubmatch(line)[1]
		if s.store == nil {
			s.protest("no store (use -db)")
			return
		}
		js, err := s.store.Get(name)
		if err != nil {
			s.protest("%s", err)
			return
		}
		if err := s.LoadJSON(js); err != nil {
			s.protest("%s", err)
			return
		}
		s.sayStatus()

	case listPat.MatchString(line):
		if s.store == nil {
			s.protest("no store (use -db)")
			return
		}
		names, err := s.store.List()
		if err != nil {
			s.protest("%s", err)
			return
		}
		for _, name := range names {
			s.say("%s", name)
		}

	case stepPat.MatchString(line):
		n := 1
		if ns := stepPat.FindStringSubmatch(line)[2]; ns != "" {
			n, _ = strconv.Atoi(ns)
		}
		for i := 0; i < n; i++ {
			r, err := s.graph.Step()
			if err != nil {
				s.protest("%s", err)
				return
			}
			if r == nil {
				s.protest("no current phase")
				return
			}
			s.say("%s", r)
		}

	case runPat.MatchString(line):
		limit := s.limit
		if ns := runPat.FindStringSubmatch(line)[2]; ns != "" {
			limit, _ = strconv.Atoi(ns)
		}
		w, err := s.graph.Walk(limit)
		if err != nil {
			s.protest("%s", err)
			return
		}
		for _, r := range w.Stepped {
			s.say("%s", r)
		}
		s.say("stopped: %s after %d ticks", w.StoppedBecause, len(w.Stepped))

	case setPat.MatchString(line):
		m := setPat.FindStringSubmatch(line)
		name, js := m[1], m[2]
		x, err := decodeScalar([]byte(js))
		if err != nil {
			s.protest("bad value: %s", err)
			return
		}
		v, err := core.ValueOf(x)
		if err != nil {
			s.protest("%s", err)
			return
		}
		n, err := s.graph.CurrentNode()
		if err != nil {
			s.protest("%s", err)
			return
		}
		n.SetVar(name, v)
		s.say("%s", n)

	case phasePat.MatchString(line):
		id := phasePat.FindStringSubmatch(line)[1]
		if !s.graph.SetInitialPhase(id) {
			s.protest("unknown phase %q", id)
			return
		}
		s.sayStatus()

	case statePat.MatchString(line):
		id := statePat.FindStringSubmatch(line)[1]
		phaseId, err := s.graph.CurrentPhaseId()
		if err != nil {
			s.protest("%s", err)
			return
		}
		p, _ := s.graph.Phase(phaseId)
		if !p.Graph.SetInitialState(id) {
			s.protest("unknown state %q in phase %q", id, phaseId)
			return
		}
		s.sayStatus()

	case printPat.MatchString(line):
		n, err := s.graph.CurrentNode()
		if err != nil {
			s.protest("%s", err)
			return
		}
		s.say("%s", n)

	case statusPat.MatchString(line):
		s.sayStatus()

	case dotPat.MatchString(line):
		if err := tools.Dot(s.graph, s.out); err != nil {
			s.protest("%s", err)
		}

	case mermaidPat.MatchString(line):
		if err := tools.Mermaid(s.graph, s.out); err != nil {
			s.protest("%s", err)
		}

	case timerPat.MatchString(line):
		if s.timers == nil {
			s.protest("no timers")
			return
		}
		m := timerPat.FindStringSubmatch(line)
		id, spec, js := m[1], strings.Trim(m[2], `"`), m[3]
		var msg interface{}
		if err := json.Unmarshal([]byte(js), &msg); err != nil {
			s.protest("bad message: %s", err)
			return
		}
		if err := s.timers.Add(ctx, id, msg, spec); err != nil {
			s.protest("%s", err)
			return
		}
		s.say("timer %s added", id)

	case timerRemPat.MatchString(line):
		if s.timers == nil {
			s.protest("no timers")
			return
		}
		id := timerRemPat.FindStringSubmatch(line)[1]
		if err := s.timers.Rem(ctx, id); err != nil {
			s.protest("%s", err)
			return
		}
		s.say("timer %s removed", id)

	case helpPat.MatchString(line):
		s.help()

	default:
		s.protest("unknown command (try 'help')")
	}
}

func (s *Service) sayStatus() {
	phase, err := s.graph.CurrentPhaseId()
	if err != nil {
		s.say("no current phase")
		return
	}
	state, err := s.graph.CurrentStateId()
	if err != nil {
		s.say("phase %s (no current state)", phase)
		return
	}
	s.say("phase %s state %s", phase, state)
}

func (s *Service) help() {
	for _, line := range []string{
		"load FILENAME        load a JSON or YAML configuration",
		"save NAME            save the loaded configuration in the store",
		"fetch NAME           load a configuration from the store",
		"list                 list stored configurations",
		"step [N]             take N hierarchical steps (default 1)",
		"run [N]              step until quiescent (at most N ticks)",
		"set VAR JSON         write a var on the current node",
		"phase ID             set the current phase (forces its initial state)",
		"state ID             set the current phase's current state",
		"print                show the current node",
		"status               show the current phase and state",
		"dot                  emit Graphviz dot",
		"mermaid              emit a Mermaid flowchart",
		"timer add ID SPEC JSON   schedule a message (cron or duration SPEC)",
		"timer rem ID         cancel a timer",
		"quit                 exit",
	} {
		s.say("%s", line)
	}
}

// Message is a JSON protocol message from a coupling or a timer.
//
// Fields execute in order: Phase, Set, Step, then Run.
type Message struct {
	// Phase forces the current phase.
	Phase string `json:"phase,omitempty"`

	// Set writes vars on the current node before stepping.
	Set map[string]interface{} `json:"set,omitempty"`

	// Step takes that many hierarchical steps.
	Step int `json:"step,omitempty"`

	// Run walks until quiescent (at most Run ticks).
	Run int `json:"run,omitempty"`
}

// Response reports what a Message did.
type Response struct {
	Stepped []*core.Stepped `json:"stepped,omitempty"`
	Phase   string          `json:"phase,omitempty"`
	State   string          `json:"state,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ProcessMessage executes one protocol message and reports the result.
func (s *Service) ProcessMessage(ctx context.Context, bs []byte) *Response {
	s.Lock()
	defer s.Unlock()

	// UseNumber keeps integer stimulus values tagged as integers.
	d := json.NewDecoder(bytes.NewReader(bs))
	d.UseNumber()
	var msg Message
	if err := d.Decode(&msg); err != nil {
		return &Response{Error: err.Error()}
	}
	resp, err := s.obey(&msg)
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

func (s *Service) obey(msg *Message) (*Response, error) {
	resp := &Response{}

	finish := func() {
		if phase, err := s.graph.CurrentPhaseId(); err == nil {
			resp.Phase = phase
		}
		if state, err := s.graph.CurrentStateId(); err == nil {
			resp.State = state
		}
	}
	defer finish()

	if msg.Phase != "" {
		if !s.graph.SetInitialPhase(msg.Phase) {
			return resp, errors.New("unknown phase " + strconv.Quote(msg.Phase))
		}
	}

	if 0 < len(msg.Set) {
		n, err := s.graph.CurrentNode()
		if err != nil {
			return resp, err
		}
		for k, x := range msg.Set {
			v, err := core.ValueOf(x)
			if err != nil {
				return resp, err
			}
			n.SetVar(k, v)
		}
	}

	for i := 0; i < msg.Step; i++ {
		r, err := s.graph.Step()
		if err != nil {
			return resp, err
		}
		if r == nil {
			return resp, core.NoCurrentPhase
		}
		resp.Stepped = append(resp.Stepped, r)
	}

	if 0 < msg.Run {
		w, err := s.graph.Walk(msg.Run)
		resp.Stepped = append(resp.Stepped, w.Stepped...)
		if err != nil {
			return resp, err
		}
	}

	return resp, nil
}

// decodeScalar parses one JSON scalar, keeping integers integers.
func decodeScalar(bs []byte) (interface{}, error) {
	d := json.NewDecoder(bytes.NewReader(bs))
	d.UseNumber()
	var x interface{}
	if err := d.Decode(&x); err != nil {
		return nil, err
	}
	return x, nil
}

// emitter adapts the Service for Timers: a fired timer's message runs
// through the protocol, and the response is printed.
func (s *Service) emitter(ctx context.Context, message interface{}) error {
	js, err := json.Marshal(message)
	if err != nil {
		return err
	}
	resp := s.ProcessMessage(ctx, js)
	s.Lock()
	s.say("timer %s", JS(resp))
	s.Unlock()
	return nil
}
