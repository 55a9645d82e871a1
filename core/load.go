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

import (
	"encoding/json"
	"os"
)

// Document is a parsed configuration document.
//
// Unknown keys are ignored for forward compatibility: an editor may
// attach auxiliary keys (say 'position') that the runtime never sees.
// The optional 'doc' strings are likewise ignored by the runtime and
// consumed by the rendering tools.
type Document struct {
	Doc        string               `json:"doc,omitempty"`
	Phases     []*PhaseDocument     `json:"phases"`
	PhaseEdges []*PhaseEdgeDocument `json:"phase_edges,omitempty"`
}

// PhaseDocument describes one phase.
type PhaseDocument struct {
	Id           string          `json:"id"`
	Doc          string          `json:"doc,omitempty"`
	InitialState string          `json:"initial_state,omitempty"`
	Nodes        []*NodeDocument `json:"nodes,omitempty"`
	Edges        []*EdgeDocument `json:"edges,omitempty"`
}

// NodeDocument describes one node and its three bags.
type NodeDocument struct {
	Id         string           `json:"id"`
	Doc        string           `json:"doc,omitempty"`
	Params     map[string]Value `json:"params,omitempty"`
	Vars       map[string]Value `json:"vars,omitempty"`
	Properties map[string]Value `json:"properties,omitempty"`
}

// EdgeDocument describes one node edge.
type EdgeDocument struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Condition string  `json:"condition"`
	Doc       string  `json:"doc,omitempty"`
	Actions   Actions `json:"actions,omitempty"`
}

// PhaseEdgeDocument describes one phase edge.
type PhaseEdgeDocument struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Condition string `json:"condition"`
	Doc       string `json:"doc,omitempty"`
}

// ParseDocument parses a JSON configuration document.
func ParseDocument(bs []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(bs, &doc); err != nil {
		return nil, &LoadError{err.Error()}
	}
	return &doc, nil
}

// Load clears the graph and rebuilds it from the document.
//
// Phases load in declaration order: nodes (duplicates detected), then
// edges (unknown endpoints detected), then the optional initial state.
// Phase ids must be unique.  Phase edges load after all phases and
// join the adjacency of their source phase.  If any phases exist, the
// first declared becomes current, and its declared initial state is
// applied when it has no current node.
//
// On any error the graph is left cleared.
func (g *MultiPhaseGraph) Load(doc *Document) error {
	g.Clear()
	err := g.load(doc)
	if err != nil {
		g.Clear()
	}
	return err
}

func (g *MultiPhaseGraph) load(doc *Document) error {
	for _, pd := range doc.Phases {
		if pd == nil || pd.Id == "" {
			return &LoadError{"phase missing id"}
		}
		p := NewPhase(pd.Id)
		p.Doc = pd.Doc
		p.InitialState = pd.InitialState
		for _, nd := range pd.Nodes {
			if nd == nil || nd.Id == "" {
				return &LoadError{`node missing id in phase "` + pd.Id + `"`}
			}
			n := NewNode(nd.Id)
			n.Doc = nd.Doc
			for k, v := range nd.Params {
				n.Params[k] = v
			}
			for k, v := range nd.Vars {
				n.Vars[k] = v
			}
			for k, v := range nd.Properties {
				n.Properties[k] = v
			}
			if err := p.Graph.AddNode(n); err != nil {
				return err
			}
		}
		for _, ed := range pd.Edges {
			if ed == nil || ed.From == "" || ed.To == "" {
				return &LoadError{`edge missing endpoint in phase "` + pd.Id + `"`}
			}
			if ed.Condition == "" {
				return &LoadError{`edge "` + ed.From + `"->"` + ed.To + `" missing condition`}
			}
			e, err := NewEdge(ed.From, ed.To, ed.Condition, ed.Actions)
			if err != nil {
				return err
			}
			e.Doc = ed.Doc
			if err := p.Graph.AddEdge(e); err != nil {
				return err
			}
		}
		if p.InitialState != "" {
			p.Graph.SetInitialState(p.InitialState)
		}
		if err := g.AddPhase(p); err != nil {
			return err
		}
	}

	for _, ed := range doc.PhaseEdges {
		if ed == nil || ed.From == "" || ed.To == "" {
			return &LoadError{"phase edge missing endpoint"}
		}
		if ed.Condition == "" {
			return &LoadError{`phase edge "` + ed.From + `"->"` + ed.To + `" missing condition`}
		}
		e, err := NewPhaseEdge(ed.From, ed.To, ed.Condition)
		if err != nil {
			return err
		}
		e.Doc = ed.Doc
		if err := g.AddPhaseEdge(e); err != nil {
			return err
		}
	}

	if 0 < len(g.phases) {
		g.current = 0
		p := g.phases[0]
		if !p.Graph.HasCurrentState() && p.InitialState != "" {
			p.Graph.SetInitialState(p.InitialState)
		}
	}

	return nil
}

// LoadBytes parses JSON and Loads it.
func (g *MultiPhaseGraph) LoadBytes(bs []byte) error {
	doc, err := ParseDocument(bs)
	if err != nil {
		g.Clear()
		return err
	}
	return g.Load(doc)
}

// LoadFile reads and loads a JSON configuration file.
//
// A file that cannot be read reports (false, nil) without touching the
// graph.  A file that reads but does not load reports the load error
// (and the graph is cleared).
func (g *MultiPhaseGraph) LoadFile(filename string) (bool, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return false, nil
	}
	if err := g.LoadBytes(bs); err != nil {
		return false, err
	}
	return true, nil
}
