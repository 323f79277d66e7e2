package sphinxql

import (
	"slices"
	"strings"
)

// Node is a boolean combination of expressions with a single connector.
//
// Nodes are immutable: Combine and the And/Or helpers always allocate a new
// child slice, so a Node held by one query is never changed by another.
type Node struct {
	children  []Expr
	connector Connector
}

// NewNode creates a Node joining children with connector.
func NewNode(connector Connector, children ...Expr) Node {
	return Node{children: slices.Clone(children), connector: connector}
}

func (Node) matchExpr() {}

// Children returns a copy of the child expressions.
func (n Node) Children() []Expr {
	return slices.Clone(n.children)
}

// Connector returns the connector joining the children.
func (n Node) Connector() Connector {
	return n.connector
}

// Len returns the number of children.
func (n Node) Len() int {
	return len(n.children)
}

// Render implements Expr. Multi-child nodes are wrapped in parentheses; a
// single child renders on its own.
func (n Node) Render() (string, []string) {
	inner, params := n.join()
	if len(n.children) > 1 {
		return "(" + inner + ")", params
	}
	return inner, params
}

// join renders the children separated by the connector.
func (n Node) join() (string, []string) {
	parts := make([]string, 0, len(n.children))
	var params []string
	for _, child := range n.children {
		s, p := child.Render()
		parts = append(parts, s)
		params = append(params, p...)
	}
	return strings.Join(parts, " "+string(n.connector)+" "), params
}

// renderBare renders e for a context that already supplies grouping (the
// MATCH root and the body of a field term). A Node renders its children
// without the outer parentheses, descending through single-child nodes.
func renderBare(e Expr) (string, []string) {
	switch v := e.(type) {
	case Node:
		if len(v.children) == 1 {
			return renderBare(v.children[0])
		}
		return v.join()
	case *Node:
		return renderBare(*v)
	default:
		return e.Render()
	}
}

// Combine joins left and right with connector.
//
// A side that is a Node with the same connector contributes its children
// directly, so (a & b) & c == a & b & c. Any other side becomes a single
// child, which keeps (a | b) & c grouped. Combining two leaves yields a
// two-child Node.
func Combine(left, right Expr, connector Connector) Node {
	l := spliceable(left, connector)
	r := spliceable(right, connector)
	children := make([]Expr, 0, len(l)+len(r))
	children = append(children, l...)
	children = append(children, r...)
	return Node{children: children, connector: connector}
}

// spliceable returns the children e contributes to a node with connector.
func spliceable(e Expr, connector Connector) []Expr {
	switch v := e.(type) {
	case nil:
		return nil
	case Node:
		if v.connector == connector || len(v.children) == 0 {
			return v.children
		}
	case *Node:
		return spliceable(*v, connector)
	}
	return []Expr{e}
}

// And combines exprs with AND. A single expression is returned unchanged.
func And(exprs ...Expr) Expr {
	return fold(AND, exprs)
}

// Or combines exprs with OR. A single expression is returned unchanged.
func Or(exprs ...Expr) Expr {
	return fold(OR, exprs)
}

// Maybe combines exprs with the lazy MAYBE operator.
func Maybe(exprs ...Expr) Expr {
	return fold(MAYBE, exprs)
}

func fold(connector Connector, exprs []Expr) Expr {
	switch len(exprs) {
	case 0:
		return Node{connector: connector}
	case 1:
		return exprs[0]
	}
	acc := Combine(exprs[0], exprs[1], connector)
	for _, e := range exprs[2:] {
		acc = Combine(acc, e, connector)
	}
	return acc
}

// Walk visits e and its descendants depth-first. Returning false from fn
// stops the descent below the current expression.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch v := e.(type) {
	case Node:
		for _, child := range v.children {
			Walk(child, fn)
		}
	case *Node:
		for _, child := range v.children {
			Walk(child, fn)
		}
	case Group:
		Walk(v.Node, fn)
	case *Group:
		Walk(v.Node, fn)
	case Field:
		Walk(v.expr, fn)
	case *Field:
		Walk(v.expr, fn)
	}
}
