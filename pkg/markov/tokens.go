package markov

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Punctuation classes shared by the word tokenizer and the detokenization
// rules. Each is a plain string of runes, checked by membership.
const (
	// WordPunct characters are allowed inside word tokens, so contractions
	// ("don't"), percentages, and masked acronyms survive as single tokens.
	WordPunct = `'’❲❳%°#․$`

	// TokenPunct characters are emitted as standalone tokens.
	TokenPunct = `.,:-!?;—/&…⸻`

	// NoSpaceBefore lists tokens that attach directly to the preceding
	// token when reassembling text.
	NoSpaceBefore = `.,!?;—․-:/`

	// NoSpaceAfter lists tokens that the following token attaches to.
	NoSpaceAfter = `—-/․`

	// SentenceEnders is the default terminal punctuation set used by the
	// Generator's stop condition.
	SentenceEnders = `.!?…`
)

// Tokenizer is the contract for splitting raw text into tokens and for
// reassembling generated tokens into a string. This keeps the model and
// generator independent of the tokenization strategy: word chains and
// character chains differ only in which Tokenizer they are given.
type Tokenizer interface {
	// Tokenize splits text into an ordered token sequence. It must be
	// deterministic and side-effect free: tokenizing the same text twice
	// yields identical sequences.
	Tokenize(text string) []string
	// Separator returns the string used to join prev and next when
	// building a final generated string.
	Separator(prev, next string) string
}

// Detokenize reassembles a token sequence into a string using the
// tokenizer's separator rules.
func Detokenize(tk Tokenizer, tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteString(tk.Separator(tokens[i-1], tok))
		}
		b.WriteString(tok)
	}
	return b.String()
}

// Capitalize uppercases the first letter of s, skipping over any leading
// punctuation or whitespace. Strings with no letters or digits come back
// unchanged.
func Capitalize(s string) string {
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			u := unicode.ToUpper(r)
			if u == r {
				return s
			}
			return s[:i] + string(u) + s[i+utf8.RuneLen(r):]
		}
	}
	return s
}

var (
	// Matches an acronym run at a sentence boundary: capital-period pairs
	// followed by whitespace and another capital.
	sentenceAcronymRe = regexp.MustCompile(`([A-Z]\.){2,}\s[A-Z]`)

	// Matches any remaining acronym run preceded by a period, whitespace,
	// or the start of the text.
	innerAcronymRe = regexp.MustCompile(`(^|[.\s])((?:[A-Z]\.)+)`)
)

// MaskAcronyms rewrites the periods inside detected acronyms as one-dot
// leaders (U+2024) so the word tokenizer keeps each acronym as a single
// token instead of splitting out its periods as sentence enders. An acronym
// followed by whitespace and a capital gets a real period appended after
// the masked run, since such an acronym may well have ended its sentence;
// any other acronym run is masked in place. The default finisher rules turn
// the leaders back into ordinary periods and collapse any doubled period
// that results.
//
// This is a preprocessing convenience for callers; nothing in the training
// path applies it automatically.
func MaskAcronyms(text string) string {
	var b strings.Builder
	rest := text
	for rest != "" {
		loc := sentenceAcronymRe.FindStringIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			break
		}
		match := rest[loc[0]:loc[1]]
		last := strings.LastIndexByte(match, '.')
		b.WriteString(rest[:loc[0]])
		b.WriteString(strings.ReplaceAll(match[:last+1], ".", "․"))
		b.WriteByte('.')
		b.WriteString(match[last+1:])
		rest = rest[loc[1]:]
	}

	return innerAcronymRe.ReplaceAllStringFunc(b.String(), func(match string) string {
		i := strings.IndexFunc(match, func(r rune) bool { return r >= 'A' && r <= 'Z' })
		return match[:i] + strings.ReplaceAll(match[i:], ".", "․")
	})
}

// isSingleRuneIn reports whether tok is exactly one rune and that rune is
// in set.
func isSingleRuneIn(tok, set string) bool {
	r, size := utf8.DecodeRuneInString(tok)
	return size > 0 && size == len(tok) && strings.ContainsRune(set, r)
}
