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

// StateGraph is a single-phase finite state machine: nodes, guarded
// edges, and an optional current node.
//
// Nodes and edges are appended at load time and never removed, so the
// numeric indices used internally stay valid for the life of the graph.
// Adjacency preserves edge declaration order; Step takes the
// first-declared outgoing edge whose condition is true.
type StateGraph struct {
	nodes     []*Node
	edges     []*Edge
	nodeIndex map[string]int
	adjacency [][]int
	current   int
}

// NewStateGraph makes an empty StateGraph with no current node.
func NewStateGraph() *StateGraph {
	return &StateGraph{
		nodeIndex: make(map[string]int),
		current:   -1,
	}
}

// Clear removes all nodes and edges and unsets the current node.
func (g *StateGraph) Clear() {
	g.nodes = nil
	g.edges = nil
	g.nodeIndex = make(map[string]int)
	g.adjacency = nil
	g.current = -1
}

// AddNode appends a node.  A duplicate id is an error.
func (g *StateGraph) AddNode(n *Node) error {
	if n.Id == "" {
		return EmptyId
	}
	if _, have := g.nodeIndex[n.Id]; have {
		return &DuplicateNode{n.Id}
	}
	g.nodeIndex[n.Id] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.adjacency = append(g.adjacency, nil)
	return nil
}

// AddEdge appends an edge.  Both endpoints must be known node ids.
func (g *StateGraph) AddEdge(e *Edge) error {
	fi, haveFrom := g.nodeIndex[e.From]
	if !haveFrom {
		return &UnknownEdgeEndpoint{e.From, e.To, e.From}
	}
	if _, haveTo := g.nodeIndex[e.To]; !haveTo {
		return &UnknownEdgeEndpoint{e.From, e.To, e.To}
	}
	g.adjacency[fi] = append(g.adjacency[fi], len(g.edges))
	g.edges = append(g.edges, e)
	return nil
}

// Nodes returns the nodes in declaration order.  Callers must not
// modify the slice.
func (g *StateGraph) Nodes() []*Node {
	return g.nodes
}

// Edges returns the edges in declaration order.  Callers must not
// modify the slice.
func (g *StateGraph) Edges() []*Edge {
	return g.edges
}

// Node finds a node by id.
func (g *StateGraph) Node(id string) (*Node, bool) {
	i, have := g.nodeIndex[id]
	if !have {
		return nil, false
	}
	return g.nodes[i], true
}

// SetInitialState sets the current node by id, reporting success.
func (g *StateGraph) SetInitialState(id string) bool {
	i, have := g.nodeIndex[id]
	if !have {
		return false
	}
	g.current = i
	return true
}

// HasCurrentState reports whether a current node is set.
func (g *StateGraph) HasCurrentState() bool {
	return 0 <= g.current
}

// CurrentStateId returns the current node's id, or NoCurrentState.
func (g *StateGraph) CurrentStateId() (string, error) {
	if g.current < 0 {
		return "", NoCurrentState
	}
	return g.nodes[g.current].Id, nil
}

// CurrentNode returns the current node, or NoCurrentState.
//
// The node is the graph's own: drivers may write its vars between
// ticks, but must not touch params or properties.
func (g *StateGraph) CurrentNode() (*Node, error) {
	if g.current < 0 {
		return nil, NoCurrentState
	}
	return g.nodes[g.current], nil
}

// Step advances the graph by at most one transition.
//
// The current node's outgoing edges are tried in declaration order; the
// first whose condition is true is taken: the current node moves to the
// edge's target and the edge's actions are written to the target's
// vars.  Self-loops fire like any other edge.
//
// Returns the new current id and true when an edge fired, "" and false
// on a quiescent tick (including when no current node is set).  An
// evaluation error leaves the graph untouched.
func (g *StateGraph) Step() (string, bool, error) {
	t, err := g.step()
	if err != nil {
		return "", false, err
	}
	if t == nil {
		return "", false, nil
	}
	return g.nodes[g.current].Id, true, nil
}

// savedVar remembers a destination var before an action overwrote it.
type savedVar struct {
	key     string
	val     Value
	present bool
}

// transition records one fired edge so the caller can undo it.
type transition struct {
	from  int
	to    int
	saved []savedVar
}

// step is Step with an undo record, used by the multi-phase graph to
// keep a whole hierarchical tick atomic with respect to errors.
func (g *StateGraph) step() (*transition, error) {
	if g.current < 0 {
		return nil, nil
	}
	cur := g.nodes[g.current]
	for _, ei := range g.adjacency[g.current] {
		e := g.edges[ei]
		fired, err := e.Fires(cur)
		if err != nil {
			return nil, err
		}
		if !fired {
			continue
		}
		t := &transition{from: g.current, to: g.nodeIndex[e.To]}
		g.current = t.to
		dest := g.nodes[t.to]
		for _, a := range e.Actions {
			old, present := dest.Var(a.Var)
			t.saved = append(t.saved, savedVar{a.Var, old, present})
			dest.SetVar(a.Var, a.Value)
		}
		return t, nil
	}
	return nil, nil
}

// undo reverses a transition returned by step.  Saved vars are restored
// in reverse order so repeated keys come back right.
func (g *StateGraph) undo(t *transition) {
	dest := g.nodes[t.to]
	for i := len(t.saved) - 1; 0 <= i; i-- {
		sv := t.saved[i]
		if sv.present {
			dest.Vars[sv.key] = sv.val
		} else {
			delete(dest.Vars, sv.key)
		}
	}
	g.current = t.from
}

// Copy makes a deep copy of the graph, recompiling edge conditions.
func (g *StateGraph) Copy() (*StateGraph, error) {
	cp := NewStateGraph()
	for _, n := range g.nodes {
		if err := cp.AddNode(n.Copy()); err != nil {
			return nil, err
		}
	}
	for _, e := range g.edges {
		ce, err := e.Copy()
		if err != nil {
			return nil, err
		}
		if err := cp.AddEdge(ce); err != nil {
			return nil, err
		}
	}
	cp.current = g.current
	return cp, nil
}
