package sphinxql

import "strings"

// SpecialChars lists the characters with syntactic meaning inside a match
// expression. Escape prefixes each of them with a backslash.
const SpecialChars = `!"$'()-/<@^|~`

// escaper doubles backslashes and escapes SpecialChars in a single pass.
// A single pass never re-escapes a backslash it inserted itself.
var escaper = func() *strings.Replacer {
	pairs := []string{`\`, `\\`}
	for _, c := range SpecialChars {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}()

// Escape makes s safe for embedding in a match expression.
//
// Backslashes are doubled and each of ! " $ ' ( ) - / < @ ^ | ~ is prefixed
// with a backslash. Escape is total and injective: the engine's unescaping
// reproduces s.
func Escape(s string) string {
	return escaper.Replace(s)
}
