package markov

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// WordTokenizer is the default Tokenizer implementation for prose. It uses
// a regular expression built from configurable punctuation classes to split
// text into word tokens and standalone punctuation tokens, and joins
// generated tokens back together with conventional prose spacing.
type WordTokenizer struct {
	wordPunct     string
	tokenPunct    string
	noSpaceBefore string
	noSpaceAfter  string
	tokenRe       *regexp.Regexp
}

// WordOption Is a function that configures a WordTokenizer.
type WordOption func(*WordTokenizer)

// WithWordPunct sets the punctuation characters allowed inside word tokens.
// Default: WordPunct
func WithWordPunct(chars string) WordOption {
	return func(t *WordTokenizer) {
		t.wordPunct = chars
	}
}

// WithTokenPunct sets the punctuation characters emitted as standalone
// tokens.
// Default: TokenPunct
func WithTokenPunct(chars string) WordOption {
	return func(t *WordTokenizer) {
		t.tokenPunct = chars
	}
}

// WithNoSpaceBefore sets the tokens that attach directly to the preceding
// token during detokenization.
// Default: NoSpaceBefore
func WithNoSpaceBefore(chars string) WordOption {
	return func(t *WordTokenizer) {
		t.noSpaceBefore = chars
	}
}

// WithNoSpaceAfter sets the tokens that the following token attaches to
// during detokenization.
// Default: NoSpaceAfter
func WithNoSpaceAfter(chars string) WordOption {
	return func(t *WordTokenizer) {
		t.noSpaceAfter = chars
	}
}

// NewWordTokenizer creates a tokenizer with default punctuation classes,
// which can be overridden with one or more WordOption functions.
func NewWordTokenizer(opts ...WordOption) *WordTokenizer {
	t := &WordTokenizer{
		wordPunct:     WordPunct,
		tokenPunct:    TokenPunct,
		noSpaceBefore: NoSpaceBefore,
		noSpaceAfter:  NoSpaceAfter,
	}

	for _, opt := range opts {
		opt(t)
	}

	// Word tokens are runs of word characters plus any in-word punctuation;
	// anything in tokenPunct stands alone. QuoteMeta does not escape "-",
	// which inside a character class would form a range, so escape it here.
	wordClass := strings.ReplaceAll(regexp.QuoteMeta(t.wordPunct), `-`, `\-`)
	tokenClass := strings.ReplaceAll(regexp.QuoteMeta(t.tokenPunct), `-`, `\-`)
	t.tokenRe = regexp.MustCompile(`[\w` + wordClass + `]+|[` + tokenClass + `]`)

	return t
}

// Tokenize splits text into word and punctuation tokens. Whitespace is
// discarded; it is reintroduced by Separator during detokenization.
func (t *WordTokenizer) Tokenize(text string) []string {
	return t.tokenRe.FindAllString(text, -1)
}

// Separator returns "" when next attaches to the preceding token (closing
// punctuation) or prev pulls the following token onto itself (dashes,
// slashes), and a single space otherwise.
func (t *WordTokenizer) Separator(prev, next string) string {
	if isSingleRuneIn(next, t.noSpaceBefore) || isSingleRuneIn(prev, t.noSpaceAfter) {
		return ""
	}
	return " "
}

// CharTokenizer treats every rune, including whitespace, as its own token.
// Character chains learn spelling and spacing from the corpus itself, so
// generated tokens are joined with no separator at all.
type CharTokenizer struct{}

// Tokenize splits text into single-rune tokens.
func (CharTokenizer) Tokenize(text string) []string {
	tokens := make([]string, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		tokens = append(tokens, string(r))
	}
	return tokens
}

// Separator Returns the empty string; character chains carry their own
// spacing.
func (CharTokenizer) Separator(_, _ string) string {
	return ""
}
