// Package schema describes search tables: their columns, wire types and
// engine index options.
//
// A Table is the only contact point between the query compiler and the
// application's model layer. The compiler uses it to decide which columns
// accept field-scoped match terms, which updates must become REPLACE
// statements and how values are encoded on the wire.
package schema

import (
	"fmt"
	"slices"
)

// WireType is the engine storage class of a column.
type WireType string

const (
	// Text is a full-text indexed field. Only Text columns are valid
	// targets of field-scoped match terms.
	Text WireType = "text"
	// StoredText is an indexed field whose contents are also stored.
	StoredText WireType = "stored_text"
	// String is a string attribute.
	String WireType = "string"
	// Uint is an unsigned 32-bit integer attribute.
	Uint WireType = "uint"
	// Int is a 32-bit integer attribute.
	Int WireType = "int"
	// Bigint is a signed 64-bit integer attribute.
	Bigint WireType = "bigint"
	// Float is a 32-bit float attribute.
	Float WireType = "float"
	// Bool is a boolean attribute.
	Bool WireType = "bool"
	// Timestamp is a unix timestamp attribute.
	Timestamp WireType = "timestamp"
	// JSON is a JSON attribute.
	JSON WireType = "json"
	// Multi is an ordered list of uint32 values.
	Multi WireType = "multi"
	// Multi64 is an ordered list of int64 values.
	Multi64 WireType = "multi64"
)

// ValidWireTypes lists every supported wire type.
var ValidWireTypes = map[WireType]bool{
	Text:       true,
	StoredText: true,
	String:     true,
	Uint:       true,
	Int:        true,
	Bigint:     true,
	Float:      true,
	Bool:       true,
	Timestamp:  true,
	JSON:       true,
	Multi:      true,
	Multi64:    true,
}

// DDL returns the column type used in CREATE TABLE.
func (t WireType) DDL() string {
	switch t {
	case Text:
		return "text indexed"
	case StoredText:
		return "text indexed stored"
	default:
		return string(t)
	}
}

// Indexed reports whether columns of this type are tokenized for MATCH.
func (t WireType) Indexed() bool {
	return t == Text || t == StoredText
}

// MultiValued reports whether the type stores a list of integers.
func (t WireType) MultiValued() bool {
	return t == Multi || t == Multi64
}

// RequiresReplace reports whether the engine forbids in-place UPDATE of
// columns of this type.
func (t WireType) RequiresReplace() bool {
	return t.Indexed() || t == JSON
}

// Column describes one table column.
type Column struct {
	Name       string   `json:"name"`
	Type       WireType `json:"type"`
	PrimaryKey bool     `json:"primary_key,omitempty"`
}

// Indexed reports whether the column is a full-text field.
func (c Column) Indexed() bool {
	return c.Type.Indexed()
}

// IndexOptions are the engine table options recognized in CREATE TABLE.
// Zero values are omitted from the statement.
type IndexOptions struct {
	MinPrefixLen int    `json:"min_prefix_len,omitempty"`
	RegexpFilter string `json:"regexp_filter,omitempty"`
	BlendChars   string `json:"blend_chars,omitempty"`
	CharsetTable string `json:"charset_table,omitempty"`
}

// Option is a single rendered table option.
type Option struct {
	Name  string
	Value any
}

// List returns the set options in a stable order.
func (o IndexOptions) List() []Option {
	var opts []Option
	if o.MinPrefixLen > 0 {
		opts = append(opts, Option{Name: "min_prefix_len", Value: o.MinPrefixLen})
	}
	if o.RegexpFilter != "" {
		opts = append(opts, Option{Name: "regexp_filter", Value: o.RegexpFilter})
	}
	if o.BlendChars != "" {
		opts = append(opts, Option{Name: "blend_chars", Value: o.BlendChars})
	}
	if o.CharsetTable != "" {
		opts = append(opts, Option{Name: "charset_table", Value: o.CharsetTable})
	}
	return opts
}

// Table describes a search table. Columns are kept in declaration order.
type Table struct {
	Name    string       `json:"name"`
	Columns []Column     `json:"columns"`
	Options IndexOptions `json:"options"`
}

// DefaultPrimaryKey is the implicit document id column.
const DefaultPrimaryKey = "id"

// PrimaryKey returns the primary key column. Tables without an explicit
// primary key use the engine's implicit bigint id.
func (t Table) PrimaryKey() Column {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c
		}
	}
	return Column{Name: DefaultPrimaryKey, Type: Bigint, PrimaryKey: true}
}

// Column returns the column named name.
func (t Table) Column(name string) (Column, bool) {
	if name == t.PrimaryKey().Name {
		return t.PrimaryKey(), true
	}
	i := slices.IndexFunc(t.Columns, func(c Column) bool { return c.Name == name })
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}

// Attributes returns the declared columns except the primary key.
func (t Table) Attributes() []Column {
	pk := t.PrimaryKey().Name
	out := make([]Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name != pk {
			out = append(out, c)
		}
	}
	return out
}

// AllColumns returns the primary key followed by the other columns in
// declaration order.
func (t Table) AllColumns() []Column {
	return append([]Column{t.PrimaryKey()}, t.Attributes()...)
}

// IndexedFields returns the names of the full-text columns.
func (t Table) IndexedFields() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Indexed() {
			names = append(names, c.Name)
		}
	}
	return names
}

// Validate checks the table definition.
func (t Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	seen := make(map[string]bool, len(t.Columns))
	primaryKeys := 0
	for i, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %s: column %d has no name", t.Name, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("table %s: duplicate column %q", t.Name, c.Name)
		}
		seen[c.Name] = true
		if !ValidWireTypes[c.Type] {
			return fmt.Errorf("table %s: column %q has unknown type %q", t.Name, c.Name, c.Type)
		}
		if c.PrimaryKey {
			primaryKeys++
			if c.Type != Bigint && c.Type != Uint && c.Type != Int {
				return fmt.Errorf("table %s: primary key %q must be an integer, got %s", t.Name, c.Name, c.Type)
			}
		}
	}
	if primaryKeys > 1 {
		return fmt.Errorf("table %s: %d primary keys declared, want at most 1", t.Name, primaryKeys)
	}
	if t.Options.MinPrefixLen < 0 {
		return fmt.Errorf("table %s: min_prefix_len must not be negative", t.Name)
	}
	return nil
}

// Catalog is a set of tables keyed by name.
type Catalog struct {
	tables map[string]Table
	order  []string
}

// NewCatalog builds a catalog, validating every table.
func NewCatalog(tables ...Table) (*Catalog, error) {
	c := &Catalog{tables: make(map[string]Table, len(tables))}
	for _, t := range tables {
		if err := c.Add(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers t.
func (c *Catalog) Add(t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, ok := c.tables[t.Name]; ok {
		return fmt.Errorf("table %s already registered", t.Name)
	}
	c.tables[t.Name] = t
	c.order = append(c.order, t.Name)
	return nil
}

// Table returns the table named name.
func (c *Catalog) Table(name string) (Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Tables returns all tables in registration order.
func (c *Catalog) Tables() []Table {
	out := make([]Table, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tables[name])
	}
	return out
}
