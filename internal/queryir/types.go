package queryir

import (
	"github.com/roach88/sphinxql/internal/schema"
	"github.com/roach88/sphinxql/internal/sphinxql"
)

// Query represents a statement in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// Query types: Select, Insert, Update, Delete, Truncate, CreateTable.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// Predicate types: Compare, In, Where, MatchPredicate, Everything.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Expression is a computed value usable as an option value or an order
// key.
//
// This is a sealed interface - only types in this package implement it.
// Expression types: Func, FieldWeights, Ident.
type Expression interface {
	expressionNode() // Marker method - seals interface to this package
}

// Select represents a search query.
//
// Semantics:
//
//	SELECT <columns> FROM <table> WHERE <filter> AND MATCH(<match>)
//	ORDER BY <order> LIMIT <offset>, <limit> OPTION <options>
//
// Filter may embed MatchPredicate values at its top level; Match is merged
// with them. A zero Limit means unbounded.
type Select struct {
	Table   string
	Columns []string // nil = all columns
	Count   bool     // SELECT COUNT(*) instead of columns
	Filter  Predicate
	Match   sphinxql.Match
	OrderBy []Order
	Offset  int
	Limit   int
	Options Options

	// Schema enables field-term and column validation when set.
	Schema *schema.Table
}

func (Select) queryNode() {}

// Order is one ORDER BY key: either a column or an expression.
type Order struct {
	Column string
	Expr   Expression
	Desc   bool
}

// Insert represents a multi-row insert.
//
// Semantics:
//
//	INSERT INTO <table> (<columns>) VALUES (<row1>), (<row2>), ...
//
// Replace switches the statement to REPLACE INTO. Every row has one value
// per column. With Schema set, values are encoded per column wire type.
type Insert struct {
	Table   string
	Columns []string
	Rows    [][]any
	Replace bool

	Schema *schema.Table
}

func (Insert) queryNode() {}

// Assignment is one SET column = value pair of an Update.
type Assignment struct {
	Column string
	Value  any
}

// Update represents an in-place update.
//
// Semantics:
//
//	UPDATE <table> SET <col> = <value>, ... WHERE <filter>
//
// When Schema marks any assigned column as indexed text or JSON the
// compiler rewrites the update into a full-row REPLACE. With Schema set,
// values are encoded per column wire type.
type Update struct {
	Table  string
	Set    []Assignment
	Filter Predicate

	Schema *schema.Table
}

func (Update) queryNode() {}

// Delete represents a filtered delete. The engine requires a filter.
type Delete struct {
	Table  string
	Filter Predicate

	Schema *schema.Table
}

func (Delete) queryNode() {}

// Truncate empties a real-time table.
type Truncate struct {
	Table string
}

func (Truncate) queryNode() {}

// CreateTable creates a real-time table from its definition.
type CreateTable struct {
	Table schema.Table
}

func (CreateTable) queryNode() {}

// Op is a comparison operator.
type Op string

const (
	Exact Op = "="
	GT    Op = ">"
	GTE   Op = ">="
	LT    Op = "<"
	LTE   Op = "<="
)

// ValidOps lists the supported comparison operators.
var ValidOps = map[Op]bool{
	Exact: true,
	GT:    true,
	GTE:   true,
	LT:    true,
	LTE:   true,
}

// Compare represents a column-versus-literal comparison.
//
// Semantics:
//
//	<column> <op> <value>
//
// Exact comparisons on multi-value columns compile to IN(<column>, <value>).
type Compare struct {
	Column string
	Op     Op
	Value  any
}

func (Compare) predicateNode() {}

// In represents membership in a literal value list.
//
// Semantics:
//
//	IN(<column>, <v1>, <v2>, ...)
//
// Duplicate values are dropped keeping first-seen order. An empty list
// matches nothing. Query holds a subquery right-hand side, which the
// engine does not support.
type In struct {
	Column string
	Values []any
	Query  Query
}

func (In) predicateNode() {}

// Connector joins the children of a Where.
type Connector string

const (
	AND Connector = "AND"
	OR  Connector = "OR"
)

// Where represents a boolean combination of predicates.
//
// An empty AND is always true; an empty OR is always false. Negated wraps
// the whole combination in NOT.
type Where struct {
	Connector Connector
	Negated   bool
	Children  []Predicate
}

func (Where) predicateNode() {}

// MatchPredicate embeds a full-text match in a filter. It may only appear
// at the top level of a non-negated AND.
type MatchPredicate struct {
	Match sphinxql.Match
}

func (MatchPredicate) predicateNode() {}

// Everything is the always-true predicate.
type Everything struct{}

func (Everything) predicateNode() {}

// And combines preds with AND.
func And(preds ...Predicate) Where {
	return Where{Connector: AND, Children: preds}
}

// Or combines preds with OR.
func Or(preds ...Predicate) Where {
	return Where{Connector: OR, Children: preds}
}

// Not negates p. A Where flips its Negated flag; any other predicate is
// wrapped in a negated single-child AND.
func Not(p Predicate) Predicate {
	switch w := p.(type) {
	case Where:
		w.Negated = !w.Negated
		return w
	case *Where:
		return Not(*w)
	default:
		return Where{Connector: AND, Negated: true, Children: []Predicate{p}}
	}
}

// Func is an engine function call such as weight() or expr('...').
// Arguments are bound as parameters.
type Func struct {
	Name string
	Args []any
}

func (Func) expressionNode() {}

// Weight is the ranking weight function, used in ORDER BY.
func Weight() Func {
	return Func{Name: "weight"}
}

// Expr is the expression ranker: ranker = expr('<formula>').
func Expr(formula string) Func {
	return Func{Name: "expr", Args: []any{formula}}
}

// Export is the export ranker: ranker = export('<formula>').
func Export(formula string) Func {
	return Func{Name: "export", Args: []any{formula}}
}

// FieldWeight is one entry of the field_weights option.
type FieldWeight struct {
	Field  string
	Weight int
}

// FieldWeights renders as (field1 = w1, field2 = w2) for the field_weights
// option.
type FieldWeights []FieldWeight

func (FieldWeights) expressionNode() {}

// Ident is an identifier option value rendered without quoting, such as
// ranker = bm25.
type Ident string

func (Ident) expressionNode() {}
