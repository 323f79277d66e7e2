// Package sphinxql implements the full-text match mini-language of
// Manticore/Sphinx search engines.
//
// The package models the text-match expression as a closed algebra of
// immutable values:
//
//	[Term | Phrase | Field | Group] --Combine--> [Node] --Match--> MATCH(?)
//
// LEAVES:
//   - Term: plain search text, "(%s)" or "!(%s)" when negated
//   - Phrase: quoted phrase with optional exact form, proximity or quorum
//   - Field: a sub-expression limited to one or more indexed fields
//   - Group: a negated Node (the engine's "!" applies to one operand)
//
// NODES:
// A Node joins children with one connector (&, |, MAYBE). Combining two
// expressions with the connector a side already uses splices that side's
// children instead of nesting it, so (a & b) & c renders as (a) & (b) & (c).
// Nodes are never mutated after construction; Combine always builds a new
// child slice, so sub-trees may be shared freely between queries and
// goroutines.
//
// RENDERING:
// Every Expr renders to a template with %s slots plus the raw text params.
// Match.Compile escapes each param exactly once with Escape, interpolates
// them into the template and binds the result as the single MATCH
// parameter:
//
//	m := sphinxql.NewMatch(sphinxql.Or(sphinxql.T("hello"), sphinxql.T("world")))
//	sql, params, err := m.Compile()
//	// sql:    MATCH(?)
//	// params: ["(hello) | (world)"]
package sphinxql
