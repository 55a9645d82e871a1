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

// Package core provides the execution core of a hierarchical
// state-machine runtime.
//
// A configuration document defines a set of phases; each phase is a
// finite state machine whose nodes are states and whose edges are
// guarded transitions that may also assign variables.  Above the
// phases sit phase edges: guarded transitions that switch the active
// phase based on conditions evaluated against the current node of the
// active phase.
//
// Conditions are written in a small boolean expression language with
// numeric and string comparisons, short-circuit '&&' and '||', '!',
// and variable and property lookup (the "properties." prefix routes a
// name to a node's properties bag).  Conditions are compiled once at
// load time; see CompileExpression.
//
// The primary type is MultiPhaseGraph, and the primary method is
// Step(): one hierarchical advancement performs at most one node
// transition followed by at most one phase transition, in that order,
// each chosen by first-match over declaration-ordered edges.  Phases
// are resumable: a phase keeps its current node while the machine is
// elsewhere, and a later phase transition back picks up there.
//
// The core is single-threaded and synchronous.  A MultiPhaseGraph is
// not safe to step concurrently; give each machine its own instance
// (package crew does this).
//
// To use this package, Load a Document (or LoadFile / LoadBytes), then
// call Step() — or Walk() to run until quiescent.  Drivers can inject
// stimulus between ticks by writing vars on CurrentNode().
package core
