package sphinxql

import (
	"strconv"
	"strings"
)

// Expr is a node of the match-expression algebra.
//
// This is a sealed interface - only types in this package implement it.
// Implementations: Term, Phrase, Field, Group, Node.
type Expr interface {
	// Render returns a template with one %s slot per param and the raw,
	// unescaped params in slot order.
	Render() (string, []string)

	matchExpr() // Marker method - seals interface to this package
}

// Connector joins the children of a Node.
type Connector string

const (
	// AND requires every child to match.
	AND Connector = "&"
	// OR requires any child to match.
	OR Connector = "|"
	// MAYBE is the engine's lazy OR: children affect ranking only.
	MAYBE Connector = "MAYBE"
)

// Term is a plain search text.
//
// Space-separated words inside one Term are not split: T("hello world")
// renders as (hello world).
type Term struct {
	Text   string
	Negate bool
}

// T creates a plain Term.
func T(text string) Term {
	return Term{Text: text}
}

func (Term) matchExpr() {}

// Render implements Expr.
func (t Term) Render() (string, []string) {
	if t.Negate {
		return "!(%s)", []string{t.Text}
	}
	return "(%s)", []string{t.Text}
}

// Quorum is the phrase min-match modifier: either a word count or a
// fraction of the phrase words.
type Quorum struct {
	set      bool
	fraction bool
	count    int
	ratio    float64
}

// MinMatch creates a quorum requiring at least n phrase words.
func MinMatch(n int) Quorum {
	return Quorum{set: true, count: n}
}

// Fraction creates a quorum requiring the fraction f in (0, 1] of the
// phrase words.
func Fraction(f float64) Quorum {
	return Quorum{set: true, fraction: true, ratio: f}
}

// IsSet reports whether the quorum modifier is present.
func (q Quorum) IsSet() bool {
	return q.set
}

// IsFraction reports whether the quorum is a fraction.
func (q Quorum) IsFraction() bool {
	return q.set && q.fraction
}

// String renders the quorum value without the leading slash.
// Fractions use 7 decimal places with trailing zeros stripped, keeping at
// least one fractional digit.
func (q Quorum) String() string {
	if !q.set {
		return ""
	}
	if !q.fraction {
		return strconv.Itoa(q.count)
	}
	s := strconv.FormatFloat(q.ratio, 'f', 7, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

// Phrase is a quoted phrase search.
//
// Modifiers are mutually exclusive; when both are set, Quorum wins over
// Proximity.
type Phrase struct {
	Text   string
	Negate bool

	// Exact requests the exact form operator (=).
	Exact bool

	// Proximity is the maximum word distance (~N). Zero means unset.
	Proximity uint

	// Quorum is the min-match modifier (/N or /F).
	Quorum Quorum
}

// P creates a Phrase.
func P(text string) Phrase {
	return Phrase{Text: text}
}

func (Phrase) matchExpr() {}

// AsExact returns a copy of p using the exact form operator.
func (p Phrase) AsExact() Phrase {
	p.Exact = true
	return p
}

// Near returns a copy of p with a proximity modifier.
func (p Phrase) Near(distance uint) Phrase {
	p.Proximity = distance
	return p
}

// WithQuorum returns a copy of p with a quorum modifier.
func (p Phrase) WithQuorum(q Quorum) Phrase {
	p.Quorum = q
	return p
}

// Render implements Expr.
func (p Phrase) Render() (string, []string) {
	var modifier string
	switch {
	case p.Quorum.IsSet():
		modifier = "/" + p.Quorum.String()
	case p.Proximity > 0:
		modifier = "~" + strconv.FormatUint(uint64(p.Proximity), 10)
	}

	var b strings.Builder
	if p.Negate {
		b.WriteByte('!')
	}
	b.WriteByte('(')
	if p.Exact {
		b.WriteByte('=')
	}
	b.WriteString(`"%s"`)
	b.WriteString(modifier)
	b.WriteByte(')')
	return b.String(), []string{p.Text}
}

// Group is a negated Node. It renders as !(<children>).
type Group struct {
	Node Node
}

func (Group) matchExpr() {}

// Render implements Expr.
func (g Group) Render() (string, []string) {
	inner, params := renderBare(g.Node)
	return "!(" + inner + ")", params
}

// Not returns the negation of e.
//
// Terms and phrases flip Negate, fields flip exclusion, a Group unwraps to its
// Node and a multi-child Node is wrapped in a Group. A single-child Node is
// negated through its child.
func Not(e Expr) Expr {
	switch v := e.(type) {
	case Term:
		v.Negate = !v.Negate
		return v
	case Phrase:
		v.Negate = !v.Negate
		return v
	case Field:
		v.exclude = !v.exclude
		return v
	case *Term:
		return Not(*v)
	case *Phrase:
		return Not(*v)
	case *Field:
		return Not(*v)
	case Group:
		return v.Node
	case *Group:
		return v.Node
	case Node:
		return negateNode(v)
	case *Node:
		return negateNode(*v)
	default:
		return e
	}
}

func negateNode(n Node) Expr {
	switch len(n.children) {
	case 0:
		return n
	case 1:
		return Not(n.children[0])
	default:
		return Group{Node: n}
	}
}
