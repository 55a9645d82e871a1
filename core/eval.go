package core

import "strings"

// propertiesPrefix routes an identifier to the node's properties bag.
const propertiesPrefix = "properties."

// Eval evaluates the expression against the given node.
//
// Eval is pure: it never writes to the node.  An absent variable or
// property in boolean position is false; the same name used as a
// comparison operand is an UnknownName error.
func (e *Expr) Eval(n *Node) (bool, error) {
	switch e.Kind {
	case ExprLeaf:
		if e.Leaf.Kind == LeafLiteral {
			return e.Leaf.Lit.Truthy(), nil
		}
		v, have := lookup(e.Leaf.Name, n)
		if !have {
			return false, nil
		}
		return v.Truthy(), nil
	case ExprNot:
		b, err := e.Left.Eval(n)
		if err != nil {
			return false, err
		}
		return !b, nil
	case ExprAnd:
		b, err := e.Left.Eval(n)
		if err != nil || !b {
			return false, err
		}
		return e.Right.Eval(n)
	case ExprOr:
		b, err := e.Left.Eval(n)
		if err != nil || b {
			return b, err
		}
		return e.Right.Eval(n)
	case ExprCmp:
		lv, err := e.Left.operand(n)
		if err != nil {
			return false, err
		}
		rv, err := e.Right.operand(n)
		if err != nil {
			return false, err
		}
		switch e.Op {
		case "==":
			return lv.Equal(rv), nil
		case "!=":
			return !lv.Equal(rv), nil
		}
		ln, err := lv.Num()
		if err != nil {
			return false, &NonNumericComparison{e.Op}
		}
		rn, err := rv.Num()
		if err != nil {
			return false, &NonNumericComparison{e.Op}
		}
		switch e.Op {
		case "<":
			return ln < rn, nil
		case "<=":
			return ln <= rn, nil
		case ">":
			return ln > rn, nil
		case ">=":
			return ln >= rn, nil
		}
	}
	return false, nil
}

// operand extracts a comparison operand: a leaf gives its Value, and
// anything else evaluates to a boolean Value.
func (e *Expr) operand(n *Node) (Value, error) {
	if e.Kind != ExprLeaf {
		b, err := e.Eval(n)
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	}
	if e.Leaf.Kind == LeafLiteral {
		return e.Leaf.Lit, nil
	}
	v, have := lookup(e.Leaf.Name, n)
	if !have {
		if name, ok := strings.CutPrefix(e.Leaf.Name, propertiesPrefix); ok {
			return Value{}, &UnknownName{name, true}
		}
		return Value{}, &UnknownName{e.Leaf.Name, false}
	}
	return v, nil
}

// lookup resolves an identifier against a node: the "properties."
// prefix routes to the properties bag, everything else to vars.
func lookup(name string, n *Node) (Value, bool) {
	if prop, ok := strings.CutPrefix(name, propertiesPrefix); ok {
		return n.Property(prop)
	}
	return n.Var(name)
}
