package core

// These errors are user errors, not internal errors.

import (
	"errors"
	"strconv"
)

var (
	// NotNumeric occurs when a boolean or string Value is asked for
	// its number.
	NotNumeric = errors.New("value is not numeric")

	// NotBool occurs when a non-boolean Value is asked for its
	// boolean.
	NotBool = errors.New("value is not a boolean")

	// NotString occurs when a non-string Value is asked for its
	// string.
	NotString = errors.New("value is not a string")

	// NoCurrentState occurs when a state accessor is used on a graph
	// that has no current node.
	NoCurrentState = errors.New("no current state")

	// NoCurrentPhase occurs when a phase accessor is used on a
	// multi-phase graph that has no current phase.
	NoCurrentPhase = errors.New("no current phase")

	// EmptyId occurs when a node or phase is added with an empty id.
	EmptyId = errors.New("empty id")
)

// UnsupportedValue occurs when a configuration scalar isn't an integer,
// float, boolean, or string.
type UnsupportedValue struct {
	X interface{}
}

func (e *UnsupportedValue) Error() string {
	return "unsupported value type"
}

// LexError occurs when expression source cannot be tokenized.
type LexError struct {
	Pos  int
	What string
}

func (e *LexError) Error() string {
	return "lex error at " + strconv.Itoa(e.Pos) + ": " + e.What
}

// ParseError occurs when a token stream cannot be parsed as an
// expression.
type ParseError struct {
	Pos  int
	What string
}

func (e *ParseError) Error() string {
	return "parse error at " + strconv.Itoa(e.Pos) + ": " + e.What
}

// DuplicateNode occurs when a node is added to a graph that already has
// a node with that id.
type DuplicateNode struct {
	Id string
}

func (e *DuplicateNode) Error() string {
	return `duplicate node id "` + e.Id + `"`
}

// DuplicatePhase occurs when a phase is added to a multi-phase graph
// that already has a phase with that id.
type DuplicatePhase struct {
	Id string
}

func (e *DuplicatePhase) Error() string {
	return `duplicate phase id "` + e.Id + `"`
}

// UnknownEdgeEndpoint occurs when an edge refers to a node id that
// isn't in the graph.
type UnknownEdgeEndpoint struct {
	From    string
	To      string
	Missing string
}

func (e *UnknownEdgeEndpoint) Error() string {
	return `edge "` + e.From + `"->"` + e.To + `" references unknown node "` + e.Missing + `"`
}

// UnknownPhaseEndpoint occurs when a phase edge refers to a phase id
// that isn't in the multi-phase graph.
type UnknownPhaseEndpoint struct {
	From    string
	To      string
	Missing string
}

func (e *UnknownPhaseEndpoint) Error() string {
	return `phase edge "` + e.From + `"->"` + e.To + `" references unknown phase "` + e.Missing + `"`
}

// UnknownName occurs when an absent variable or property is used as a
// comparison operand.
//
// An absent name in boolean position is just false.  That asymmetry is
// deliberate: guards like 'enabled && count > 0' should be writable
// against nodes that haven't been given 'enabled' yet.
type UnknownName struct {
	Name     string
	Property bool
}

func (e *UnknownName) Error() string {
	if e.Property {
		return `unknown property "` + e.Name + `"`
	}
	return `unknown variable "` + e.Name + `"`
}

// NonNumericComparison occurs when an operand of an ordering comparison
// cannot be coerced to a number.
type NonNumericComparison struct {
	Op string
}

func (e *NonNumericComparison) Error() string {
	return `non-numeric operand in "` + e.Op + `" comparison`
}

// LoadError occurs when a configuration document is structurally or
// semantically bad.  The graph is left cleared.
type LoadError struct {
	Reason string
}

func (e *LoadError) Error() string {
	return "load error: " + e.Reason
}
