// Package querydoc reads search queries written as YAML documents.
//
// A document names a table, an operation and the parts of the query:
//
//	table: post
//	op: select
//	match:
//	  - hello
//	  - phrase: quick brown fox
//	    near: 3
//	  - field: title
//	    match: [release]
//	filter:
//	  views__gte: 10
//	  pk__in: [1, 2, 3]
//	order_by: [-weight, pk]
//	limit: 20
//	options:
//	  ranker: {func: expr, args: ["sum(lcs)"]}
//	  field_weights: {title: 10, body: 3}
//
// Mappings keep their document order, so filters, assignments and options
// compile in the order they were written. Match text is normalized to
// Unicode NFC before it reaches the match compiler.
package querydoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sphinxql/internal/errs"
	"github.com/roach88/sphinxql/internal/query"
	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/schema"
)

// Operations a document can request.
const (
	OpSelect = "select"
	OpCount  = "count"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Document is one query document.
type Document struct {
	// Table is the search table the query runs against.
	Table string `yaml:"table"`

	// Op is select (the default), count, update or delete.
	Op string `yaml:"op,omitempty"`

	// Match terms are ANDed together.
	Match []Term `yaml:"match,omitempty"`

	// Filter and Exclude are lookups such as views__gte: 10.
	Filter  Lookups `yaml:"filter,omitempty"`
	Exclude Lookups `yaml:"exclude,omitempty"`

	OrderBy []string `yaml:"order_by,omitempty"`
	Values  []string `yaml:"values,omitempty"`
	Offset  int      `yaml:"offset,omitempty"`
	Limit   int      `yaml:"limit,omitempty"`

	Options OptionList `yaml:"options,omitempty"`

	// Set holds the assignments of an update.
	Set Lookups `yaml:"set,omitempty"`
}

// Load reads every document of a YAML stream file.
func Load(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML stream of documents. Unknown fields are rejected.
func Parse(data []byte) ([]Document, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var docs []Document
	for {
		var doc Document
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if err := doc.validate(); err != nil {
			return nil, fmt.Errorf("invalid document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, errors.New("no query documents")
	}
	return docs, nil
}

func (d Document) validate() error {
	const op = "querydoc.validate"

	if d.Table == "" {
		return errs.InvalidArgument(op, "table is required")
	}
	switch d.Op {
	case "", OpSelect, OpCount, OpDelete:
		if len(d.Set) > 0 {
			return errs.InvalidArgument(op, "set is only valid for %s", OpUpdate)
		}
	case OpUpdate:
		if len(d.Set) == 0 {
			return errs.InvalidArgument(op, "%s requires set", OpUpdate)
		}
	default:
		return errs.InvalidArgument(op, "unknown op %q", d.Op)
	}
	if d.Offset < 0 || d.Limit < 0 {
		return errs.InvalidArgument(op, "offset and limit must not be negative")
	}
	return nil
}

// QuerySet builds the query set described by d. The table schema is taken
// from catalog when it declares d.Table; catalog may be nil.
func (d Document) QuerySet(catalog *schema.Catalog) query.QuerySet {
	qs := query.New(d.Table)
	if catalog != nil {
		if t, ok := catalog.Table(d.Table); ok {
			qs = query.For(t)
		}
	}

	for _, l := range d.Filter {
		qs = qs.Filter(l.Key, l.Value)
	}
	for _, l := range d.Exclude {
		qs = qs.Exclude(l.Key, l.Value)
	}
	if len(d.Match) > 0 {
		exprs := make([]any, len(d.Match))
		for i, t := range d.Match {
			exprs[i] = t.Expr
		}
		qs = qs.Match(exprs...)
	}
	if len(d.OrderBy) > 0 {
		qs = qs.OrderBy(d.OrderBy...)
	}
	if len(d.Values) > 0 {
		qs = qs.Values(d.Values...)
	}
	if d.Offset > 0 || d.Limit > 0 {
		stop := 0
		if d.Limit > 0 {
			stop = d.Offset + d.Limit
		}
		qs = qs.Slice(d.Offset, stop)
	}
	if len(d.Options) > 0 {
		qs = qs.Options(d.Options...)
	}
	return qs
}

// Build returns the statement IR for the document's operation.
func (d Document) Build(catalog *schema.Catalog) (queryir.Query, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	qs := d.QuerySet(catalog)

	switch d.Op {
	case OpCount:
		return qs.Count()
	case OpUpdate:
		set := make([]queryir.Assignment, len(d.Set))
		for i, l := range d.Set {
			set[i] = queryir.Assignment{Column: l.Key, Value: l.Value}
		}
		return qs.Update(set...)
	case OpDelete:
		return qs.Delete()
	default:
		return qs.Query()
	}
}
