package polish

// Rule is one substitution: a regular expression pattern and its
// replacement, which may reference capture groups with $1, $2, and so on.
type Rule struct {
	Pattern     string
	Replacement string
}

// DefaultRules returns the standard post-generation cleanup list: dash and
// ellipsis normalization, doubled-punctuation collapse, stray-quote
// removal, number-grouping fixes, and paragraph-markup cleanup. The order
// matters and is part of the contract; the one-dot leaders restored to
// periods by the third rule are collapsed by the fourth when a masked
// acronym ended its sentence.
//
// Each call returns a fresh copy, so a caller can edit its list without
// affecting anyone else.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: `--`, Replacement: `—`},
		{Pattern: `\.\.\.`, Replacement: `…`},
		{Pattern: `․`, Replacement: `.`}, // one-dot leader back to period
		{Pattern: `\.\.`, Replacement: `.`},
		{Pattern: ` ' `, Replacement: ``},
		{Pattern: `――`, Replacement: `―`}, // two horizontal bars to one
		{Pattern: `―-`, Replacement: `―`},
		{Pattern: `:—`, Replacement: `: `},
		{Pattern: "\n' ", Replacement: "\n"},
		{Pattern: `<p>'`, Replacement: `<p>`},
		{Pattern: `<p> `, Replacement: `<p>`},
		{Pattern: `<p></p>`, Replacement: ``},
		{Pattern: `- `, Replacement: `-`}, // rejoin hyphenated words split by token spacing
		{Pattern: `—-`, Replacement: `—`},
		{Pattern: `——`, Replacement: `—`},
		{Pattern: `([0-9]),\s([0-9])`, Replacement: `$1,$2`}, // no space inside number groupings
		{Pattern: `([0-9]):\s([0-9])`, Replacement: `$1:$2`},
		{Pattern: `…—`, Replacement: `… —`},
	}
}
