package sphinxql

import (
	"strings"

	"github.com/roach88/sphinxql/internal/errs"
)

// Match is the root of a full-text match expression.
//
// The root is always an AND node. Match values are immutable; And returns a
// new Match and leaves the receiver untouched, so a query builder can hand
// out the same Match to several derived queries.
type Match struct {
	root Node
}

// NewMatch creates a Match ANDing exprs together.
func NewMatch(exprs ...Expr) Match {
	return Match{}.And(exprs...)
}

// And returns a copy of m with exprs ANDed into the root.
func (m Match) And(exprs ...Expr) Match {
	root := Node{children: m.root.children, connector: AND}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		root = Combine(root, e, AND)
	}
	return Match{root: root}
}

// Merge returns a Match ANDing the roots of m and other.
func (m Match) Merge(other Match) Match {
	return m.And(other.root.children...)
}

// IsEmpty reports whether the match has no expressions.
func (m Match) IsEmpty() bool {
	return len(m.root.children) == 0
}

// Root returns the root AND node.
func (m Match) Root() Node {
	return m.root
}

// Render returns the unescaped template and params of the root.
func (m Match) Render() (string, []string) {
	return renderBare(m.root)
}

// Literal returns the final match-language text: every param escaped once
// and interpolated into the template.
func (m Match) Literal() (string, error) {
	if err := Validate(m.root); err != nil {
		return "", err
	}
	template, params := m.Render()
	return interpolate(template, params)
}

// Compile returns the MATCH clause and its single bound parameter.
func (m Match) Compile() (string, []any, error) {
	if m.IsEmpty() {
		return "", nil, errs.InvalidArgument("sphinxql.Match.Compile", "empty match expression")
	}
	literal, err := m.Literal()
	if err != nil {
		return "", nil, err
	}
	return "MATCH(?)", []any{literal}, nil
}

// Format renders e with escaped params. Used for diagnostics.
func Format(e Expr) string {
	template, params := renderBare(e)
	s, err := interpolate(template, params)
	if err != nil {
		return template
	}
	return s
}

// interpolate replaces each %s slot in template with the next escaped param.
func interpolate(template string, params []string) (string, error) {
	const op = "sphinxql.interpolate"

	var b strings.Builder
	b.Grow(len(template))
	next := 0
	for {
		i := strings.Index(template, "%s")
		if i < 0 {
			break
		}
		if next >= len(params) {
			return "", errs.InvalidArgument(op, "template has more slots than params")
		}
		b.WriteString(template[:i])
		b.WriteString(Escape(params[next]))
		next++
		template = template[i+2:]
	}
	if next != len(params) {
		return "", errs.InvalidArgument(op, "%d params for %d slots", len(params), next)
	}
	b.WriteString(template)
	return b.String(), nil
}
