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

package crew

import (
	"github.com/phasic/phasic/core"
)

// Machine is a pair: id and a multi-phase graph, plus an optional
// record of where its configuration came from.
type Machine struct {
	Id    string                `json:"id"`
	Graph *core.MultiPhaseGraph `json:"-"`

	// Source is here only to facilitate reloads and serialization.
	// This field is not used anywhere in this package.
	Source *ConfigSource `json:"config,omitempty"`
}

// NewMachine makes a Machine around the given graph.
func NewMachine(id string, g *core.MultiPhaseGraph) *Machine {
	return &Machine{
		Id:    id,
		Graph: g,
	}
}

// Copy returns a new Machine with the same id and a deep copy of the
// graph (conditions recompiled, vars and current pointers preserved).
func (m *Machine) Copy() (*Machine, error) {
	g, err := m.Graph.Copy()
	if err != nil {
		return nil, err
	}
	return &Machine{
		Id:     m.Id,
		Graph:  g,
		Source: m.Source,
	}, nil
}

// ConfigSource records the origin of a machine's configuration.
//
// A source can be a filename, a name in a configuration store, or an
// inline document.  Just how a ConfigSource is used is up to the
// application.
type ConfigSource struct {
	// Name is an optional key into a configuration store.
	Name string `json:"name,omitempty"`

	// File is an optional filename.
	File string `json:"file,omitempty"`

	// Inline is an optional actual document right here.
	Inline *core.Document `json:"inline,omitempty"`
}
