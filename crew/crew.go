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

// Package crew hosts collections of machines.
//
// The core graph is single-threaded by design; running several
// machines in parallel means giving each its own MultiPhaseGraph.  A
// Crew is a mutex-guarded map of such machines.
package crew

import (
	"errors"
	"sort"
	"sync"

	"github.com/phasic/phasic/core"
)

var Exists = errors.New("machine id exists")

// Crew is a set of independent machines.
//
// The Crew's lock guards the map and serializes ticks; an individual
// machine is still never stepped concurrently.
type Crew struct {
	sync.RWMutex

	Id       string              `json:"id"`
	Machines map[string]*Machine `json:"machines"`
}

// NewCrew makes an empty Crew.
func NewCrew(id string) *Crew {
	return &Crew{
		Id:       id,
		Machines: make(map[string]*Machine),
	}
}

// Add installs a machine.  A duplicate id is an error.
func (c *Crew) Add(m *Machine) error {
	c.Lock()
	defer c.Unlock()
	if _, have := c.Machines[m.Id]; have {
		return Exists
	}
	c.Machines[m.Id] = m
	return nil
}

// Rem removes a machine, reporting whether it was present.
func (c *Crew) Rem(id string) bool {
	c.Lock()
	defer c.Unlock()
	_, have := c.Machines[id]
	delete(c.Machines, id)
	return have
}

// Machine finds a machine by id.
func (c *Crew) Machine(id string) (*Machine, bool) {
	c.RLock()
	m, have := c.Machines[id]
	c.RUnlock()
	return m, have
}

// Step ticks every machine once, in machine-id order for determinism.
//
// Machines are independent: one machine's evaluation error doesn't
// stop the others.  Results and errors are keyed by machine id.
func (c *Crew) Step() (map[string]*core.Stepped, map[string]error) {
	c.Lock()
	defer c.Unlock()

	ids := make([]string, 0, len(c.Machines))
	for id := range c.Machines {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	steps := make(map[string]*core.Stepped, len(ids))
	errs := make(map[string]error)
	for _, id := range ids {
		r, err := c.Machines[id].Graph.Step()
		if err != nil {
			errs[id] = err
			continue
		}
		steps[id] = r
	}
	if len(errs) == 0 {
		errs = nil
	}
	return steps, errs
}

// Copy gets a read lock and returns a deep copy of the crew.
func (c *Crew) Copy() (*Crew, error) {
	c.RLock()
	defer c.RUnlock()
	ms := make(map[string]*Machine, len(c.Machines))
	for id, m := range c.Machines {
		cp, err := m.Copy()
		if err != nil {
			return nil, err
		}
		ms[id] = cp
	}
	return &Crew{
		Id:       c.Id,
		Machines: ms,
	}, nil
}
