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

package core

import "encoding/json"

// DefaultWalkLimit is used by Walk when given a non-positive limit.
var DefaultWalkLimit = 100

// Phase is a named finite state machine inside a multi-phase graph.
//
// InitialState, when non-empty, names the node the phase starts at.  A
// phase keeps its current node when the machine leaves it; re-entering
// resumes there.
type Phase struct {
	Id           string
	Doc          string
	InitialState string
	Graph        *StateGraph
}

// NewPhase makes a Phase with an empty graph.
func NewPhase(id string) *Phase {
	return &Phase{
		Id:    id,
		Graph: NewStateGraph(),
	}
}

// Copy makes a deep copy of the Phase.
func (p *Phase) Copy() (*Phase, error) {
	g, err := p.Graph.Copy()
	if err != nil {
		return nil, err
	}
	return &Phase{
		Id:           p.Id,
		Doc:          p.Doc,
		InitialState: p.InitialState,
		Graph:        g,
	}, nil
}

// Stepped reports what one hierarchical Step did.  Both flags may be
// false (a quiescent tick); both may be true.
//
// StateId is empty in the unusual case that the tick ends in a phase
// with no current node.
type Stepped struct {
	PhaseChanged bool   `json:"phaseChanged"`
	StateChanged bool   `json:"stateChanged"`
	PhaseId      string `json:"phase"`
	StateId      string `json:"state,omitempty"`
}

func (s *Stepped) String() string {
	js, err := json.Marshal(s)
	if err != nil {
		return s.PhaseId + "/" + s.StateId
	}
	return string(js)
}

// StopReason represents the possible reasons for a Walk to terminate.
type StopReason int

const (
	Done    StopReason = iota // Reached a quiescent tick.
	Limited                   // Too many steps.
)

func (r StopReason) String() string {
	switch r {
	case Done:
		return "done"
	case Limited:
		return "limited"
	}
	return "unknown"
}

// Walked represents a sequence of ticks taken by a Walk.
type Walked struct {
	// Stepped contains the result of each tick, including the final
	// quiescent one.
	Stepped []*Stepped `json:"stepped"`

	// StoppedBecause reports the reason why the Walk stopped.
	StoppedBecause StopReason `json:"stoppedBecause"`
}

// MultiPhaseGraph owns an ordered set of phases and the guarded phase
// edges that switch among them.
//
// All phases, nodes, and edges are created at load time and never
// removed; the only mutable state is nodes' vars and the two "current"
// pointers (the current phase, and each phase's current node).  A
// MultiPhaseGraph is not safe to step concurrently; callers wanting
// parallelism give each machine its own instance (see package crew).
type MultiPhaseGraph struct {
	phases     []*Phase
	phaseIndex map[string]int
	phaseEdges []*PhaseEdge
	phaseAdj   [][]int
	current    int
}

// NewMultiPhaseGraph makes an empty MultiPhaseGraph.
func NewMultiPhaseGraph() *MultiPhaseGraph {
	return &MultiPhaseGraph{
		phaseIndex: make(map[string]int),
		current:    -1,
	}
}

// Clear removes all phases and phase edges and unsets the current
// phase.
func (g *MultiPhaseGraph) Clear() {
	g.phases = nil
	g.phaseIndex = make(map[string]int)
	g.phaseEdges = nil
	g.phaseAdj = nil
	g.current = -1
}

// AddPhase appends a phase.  A duplicate id is an error.
func (g *MultiPhaseGraph) AddPhase(p *Phase) error {
	if p.Id == "" {
		return EmptyId
	}
	if _, have := g.phaseIndex[p.Id]; have {
		return &DuplicatePhase{p.Id}
	}
	g.phaseIndex[p.Id] = len(g.phases)
	g.phases = append(g.phases, p)
	g.phaseAdj = append(g.phaseAdj, nil)
	return nil
}

// AddPhaseEdge appends a phase edge.  Both endpoints must be known
// phase ids.  The edge joins the adjacency of its source phase in
// declaration order.
func (g *MultiPhaseGraph) AddPhaseEdge(e *PhaseEdge) error {
	fi, haveFrom := g.phaseIndex[e.From]
	if !haveFrom {
		return &UnknownPhaseEndpoint{e.From, e.To, e.From}
	}
	if _, haveTo := g.phaseIndex[e.To]; !haveTo {
		return &UnknownPhaseEndpoint{e.From, e.To, e.To}
	}
	g.phaseAdj[fi] = append(g.phaseAdj[fi], len(g.phaseEdges))
	g.phaseEdges = append(g.phaseEdges, e)
	return nil
}

// Phases returns the phases in declaration order.  Callers must not
// modify the slice.
func (g *MultiPhaseGraph) Phases() []*Phase {
	return g.phases
}

// PhaseEdges returns the phase edges in declaration order.  Callers
// must not modify the slice.
func (g *MultiPhaseGraph) PhaseEdges() []*PhaseEdge {
	return g.phaseEdges
}

// Phase finds a phase by id.
func (g *MultiPhaseGraph) Phase(id string) (*Phase, bool) {
	i, have := g.phaseIndex[id]
	if !have {
		return nil, false
	}
	return g.phases[i], true
}

// CurrentPhaseId returns the current phase's id, or NoCurrentPhase.
func (g *MultiPhaseGraph) CurrentPhaseId() (string, error) {
	if g.current < 0 {
		return "", NoCurrentPhase
	}
	return g.phases[g.current].Id, nil
}

// CurrentStateId returns the current phase's current node id.
func (g *MultiPhaseGraph) CurrentStateId() (string, error) {
	if g.current < 0 {
		return "", NoCurrentPhase
	}
	return g.phases[g.current].Graph.CurrentStateId()
}

// CurrentNode returns the current phase's current node.
//
// Drivers may write the node's vars between ticks to inject stimulus;
// params and properties must be left alone.
func (g *MultiPhaseGraph) CurrentNode() (*Node, error) {
	if g.current < 0 {
		return nil, NoCurrentPhase
	}
	return g.phases[g.current].Graph.CurrentNode()
}

// SetInitialPhase sets the current phase by id, reporting success.
//
// Unlike a phase transition during Step, this forces the phase's
// declared initial state even when the phase already had a current
// node.
func (g *MultiPhaseGraph) SetInitialPhase(id string) bool {
	i, have := g.phaseIndex[id]
	if !have {
		return false
	}
	g.current = i
	p := g.phases[i]
	if p.InitialState != "" {
		p.Graph.SetInitialState(p.InitialState)
	}
	return true
}

// Step performs one hierarchical advancement:
//
//  1. The current phase takes a node-level step (at most one node
//     transition, with the fired edge's actions applied).
//  2. The current phase's outgoing phase edges are tried in
//     declaration order against the (possibly new) current node; the
//     first whose condition is true switches the current phase.  The
//     entered phase keeps its previous current node if it has one
//     (phases are resumable); otherwise its declared initial state is
//     applied.
//
// Phase-edge conditions therefore see variable writes performed by
// this tick's node transition.  Returns nil when no phase is current.
//
// An evaluation error during either pass leaves the graph exactly as
// it was before the Step began: a node transition already taken is
// rolled back, including its var writes.
func (g *MultiPhaseGraph) Step() (*Stepped, error) {
	if g.current < 0 {
		return nil, nil
	}
	p := g.phases[g.current]
	r := &Stepped{}

	t, err := p.Graph.step()
	if err != nil {
		return nil, err
	}
	r.StateChanged = t != nil

	cur, err := p.Graph.CurrentNode()
	if err != nil {
		return nil, err
	}
	for _, pi := range g.phaseAdj[g.current] {
		pe := g.phaseEdges[pi]
		fired, err := pe.Fires(cur)
		if err != nil {
			if t != nil {
				p.Graph.undo(t)
			}
			return nil, err
		}
		if !fired {
			continue
		}
		g.current = g.phaseIndex[pe.To]
		entered := g.phases[g.current]
		if !entered.Graph.HasCurrentState() && entered.InitialState != "" {
			entered.Graph.SetInitialState(entered.InitialState)
		}
		r.PhaseChanged = true
		break
	}

	r.PhaseId = g.phases[g.current].Id
	if id, err := g.phases[g.current].Graph.CurrentStateId(); err == nil {
		r.StateId = id
	}
	return r, nil
}

// Walk takes ticks until one is quiescent or the limit is hit.  A
// non-positive limit means DefaultWalkLimit.
func (g *MultiPhaseGraph) Walk(limit int) (*Walked, error) {
	if limit <= 0 {
		limit = DefaultWalkLimit
	}
	w := &Walked{
		Stepped: make([]*Stepped, 0, limit),
	}
	for i := 0; i < limit; i++ {
		r, err := g.Step()
		if err != nil {
			return w, err
		}
		if r == nil {
			w.StoppedBecause = Done
			return w, nil
		}
		w.Stepped = append(w.Stepped, r)
		if !r.PhaseChanged && !r.StateChanged {
			w.StoppedBecause = Done
			return w, nil
		}
	}
	w.StoppedBecause = Limited
	return w, nil
}

// Copy makes a deep copy of the graph, recompiling all conditions.
func (g *MultiPhaseGraph) Copy() (*MultiPhaseGraph, error) {
	cp := NewMultiPhaseGraph()
	for _, p := range g.phases {
		pc, err := p.Copy()
		if err != nil {
			return nil, err
		}
		if err := cp.AddPhase(pc); err != nil {
			return nil, err
		}
	}
	for _, e := range g.phaseEdges {
		ec, err := e.Copy()
		if err != nil {
			return nil, err
		}
		if err := cp.AddPhaseEdge(ec); err != nil {
			return nil, err
		}
	}
	cp.current = g.current
	return cp, nil
}
