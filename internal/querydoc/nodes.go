package querydoc

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sphinxql/internal/queryir"
	"github.com/roach88/sphinxql/internal/sphinxql"
)

// Term is one match expression of a document.
//
// A plain string is a term. A mapping holds exactly one of term, phrase,
// field/fields, and, or, maybe, plus the modifiers valid for it:
//
//	- phrase: quick brown fox
//	  exact: true        # or near: 3, quorum: 2, fraction: 0.5
//	- fields: [title, body]
//	  exclude: true
//	  match: [draft]
//	- or: [go, golang]
//	  not: true
type Term struct {
	Expr sphinxql.Expr
}

type termSpec struct {
	Term     *string  `yaml:"term"`
	Phrase   *string  `yaml:"phrase"`
	Exact    bool     `yaml:"exact"`
	Near     uint     `yaml:"near"`
	Quorum   int      `yaml:"quorum"`
	Fraction float64  `yaml:"fraction"`
	Field    string   `yaml:"field"`
	Fields   []string `yaml:"fields"`
	Exclude  bool     `yaml:"exclude"`
	Match    []Term   `yaml:"match"`
	And      []Term   `yaml:"and"`
	Or       []Term   `yaml:"or"`
	Maybe    []Term   `yaml:"maybe"`
	Not      bool     `yaml:"not"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Term) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		t.Expr = sphinxql.T(norm.NFC.String(n.Value))
		return nil
	case yaml.MappingNode:
	default:
		return fmt.Errorf("line %d: match term must be a string or a mapping", n.Line)
	}

	var spec termSpec
	if err := n.Decode(&spec); err != nil {
		return err
	}
	expr, err := spec.build(n.Line)
	if err != nil {
		return err
	}
	if spec.Not {
		expr = sphinxql.Not(expr)
	}
	t.Expr = expr
	return nil
}

func (s termSpec) build(line int) (sphinxql.Expr, error) {
	kinds := 0
	for _, set := range []bool{
		s.Term != nil, s.Phrase != nil, s.Field != "" || len(s.Fields) > 0,
		s.And != nil, s.Or != nil, s.Maybe != nil,
	} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, fmt.Errorf("line %d: match term needs exactly one of term, phrase, field, fields, and, or, maybe", line)
	}

	switch {
	case s.Term != nil:
		return sphinxql.T(norm.NFC.String(*s.Term)), nil
	case s.Phrase != nil:
		return s.phrase(line)
	case s.Field != "" || len(s.Fields) > 0:
		return s.field(line)
	case s.And != nil:
		return group(line, "and", s.And, sphinxql.And)
	case s.Or != nil:
		return group(line, "or", s.Or, sphinxql.Or)
	default:
		return group(line, "maybe", s.Maybe, sphinxql.Maybe)
	}
}

func (s termSpec) phrase(line int) (sphinxql.Expr, error) {
	p := sphinxql.P(norm.NFC.String(*s.Phrase))
	if s.Exact {
		p = p.AsExact()
	}
	if s.Near > 0 {
		p = p.Near(s.Near)
	}
	switch {
	case s.Quorum > 0 && s.Fraction > 0:
		return nil, fmt.Errorf("line %d: quorum and fraction are mutually exclusive", line)
	case s.Quorum > 0:
		p = p.WithQuorum(sphinxql.MinMatch(s.Quorum))
	case s.Fraction > 0:
		p = p.WithQuorum(sphinxql.Fraction(s.Fraction))
	}
	return p, nil
}

func (s termSpec) field(line int) (sphinxql.Expr, error) {
	if s.Field != "" && len(s.Fields) > 0 {
		return nil, fmt.Errorf("line %d: use field or fields, not both", line)
	}
	if len(s.Match) == 0 {
		return nil, fmt.Errorf("line %d: field term needs a match list", line)
	}
	names := s.Fields
	if s.Field != "" {
		names = []string{s.Field}
	}
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		args = append(args, name)
	}
	args = append(args, sphinxql.And(exprs(s.Match)...))
	return sphinxql.NewField(args, nil, s.Exclude)
}

func group(line int, name string, terms []Term, combine func(...sphinxql.Expr) sphinxql.Expr) (sphinxql.Expr, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("line %d: %s needs at least one term", line, name)
	}
	return combine(exprs(terms)...), nil
}

func exprs(terms []Term) []sphinxql.Expr {
	out := make([]sphinxql.Expr, len(terms))
	for i, t := range terms {
		out[i] = t.Expr
	}
	return out
}

// Lookup is one key/value entry of an ordered mapping.
type Lookup struct {
	Key   string
	Value any
}

// Lookups is a YAML mapping decoded in document order.
type Lookups []Lookup

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Lookups) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	out := make(Lookups, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var value any
		if err := n.Content[i+1].Decode(&value); err != nil {
			return err
		}
		out = append(out, Lookup{Key: n.Content[i].Value, Value: value})
	}
	*l = out
	return nil
}

// OptionList is the options mapping decoded in document order.
//
// Scalars are bound as literal values. A mapping with func (and optional
// args) is a function call, a mapping with ident is a bare identifier and the
// field_weights option takes a mapping of field names to integer weights.
type OptionList []queryir.Option

type optionSpec struct {
	Func  string `yaml:"func"`
	Args  []any  `yaml:"args"`
	Ident string `yaml:"ident"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *OptionList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: options must be a mapping", n.Line)
	}
	out := make(OptionList, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, valueNode := n.Content[i].Value, n.Content[i+1]
		value, err := optionValue(name, valueNode)
		if err != nil {
			return err
		}
		out = append(out, queryir.Option{Name: name, Value: value})
	}
	*o = out
	return nil
}

func optionValue(name string, n *yaml.Node) (any, error) {
	if n.Kind != yaml.MappingNode {
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}

	if name == "field_weights" {
		weights := make(queryir.FieldWeights, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			var w int
			if err := n.Content[i+1].Decode(&w); err != nil {
				return nil, fmt.Errorf("line %d: field weight must be an integer", n.Content[i+1].Line)
			}
			weights = append(weights, queryir.FieldWeight{Field: n.Content[i].Value, Weight: w})
		}
		return weights, nil
	}

	var spec optionSpec
	if err := n.Decode(&spec); err != nil {
		return nil, err
	}
	switch {
	case spec.Func != "" && spec.Ident != "":
		return nil, fmt.Errorf("line %d: option %s: use func or ident, not both", n.Line, name)
	case spec.Func != "":
		return queryir.Func{Name: spec.Func, Args: spec.Args}, nil
	case spec.Ident != "":
		return queryir.Ident(spec.Ident), nil
	default:
		return nil, fmt.Errorf("line %d: option %s: mapping needs func or ident", n.Line, name)
	}
}
