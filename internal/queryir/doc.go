// Package queryir provides the structured query intermediate representation
// (IR) compiled into the engine's SQL dialect.
//
// QueryIR is the boundary between the query builder and the statement
// compiler. Builders produce immutable IR values; the querysql package turns
// them into (text, params) pairs.
//
// ARCHITECTURE:
//
//	[query.QuerySet] → [Query IR] → [querysql.Compiler] → (sql, params)
//
// QUERIES:
//   - Select: filtered, ordered, paged access with optional full-text match
//   - Insert: multi-row INSERT INTO / REPLACE INTO
//   - Update: attribute update, rewritten to REPLACE for indexed/JSON columns
//   - Delete: filtered delete (a filter is required)
//   - Truncate: TRUNCATE RTINDEX
//   - CreateTable: table definition with index options
//
// PREDICATES:
//   - Compare: column <op> literal
//   - In: column IN literal list (rendered as the IN() function)
//   - Where: AND/OR of children, optionally negated
//   - MatchPredicate: full-text match, ANDed at top level only
//   - Everything: always true
//
// SEALED INTERFACES:
//
// Query, Predicate and Expression are sealed interfaces using the marker
// method pattern. Only types in this package can implement them, which
// keeps the type switches in the compiler exhaustive.
//
//	switch q := query.(type) {
//	case Select:
//	    // Handle select
//	case Update:
//	    // Handle update
//	}
//
// IMMUTABILITY:
//
// IR values are plain data. Options is copy-on-write and sphinxql.Match is
// immutable, so a Select may be copied by value and modified without
// affecting the original. Slices held by predicates must not be mutated
// after construction.
package queryir
