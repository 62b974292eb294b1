package polish

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNonConvergent indicates that a capped Finish call ran out of passes
// while the text was still changing. Only rule sets that keep rewriting
// their own output can trigger it; the default rules always converge.
var ErrNonConvergent = errors.New("polish: rule set did not converge")

// Finisher applies an ordered substitution rule list to text until the
// text reaches a fixed point. Repeating the full pass is what lets rules
// feed one another: a dash pair produced by an earlier rule is collapsed
// by a later one, possibly on a later pass.
//
// A Finisher is not safe for concurrent mutation; share it only after the
// rule list has settled.
type Finisher struct {
	rules     []Rule
	compiled  []*regexp.Regexp
	maxPasses int
}

// Option is a function that configures a Finisher.
type Option func(*Finisher)

// WithRules replaces the default rule list. The slice is copied.
func WithRules(rules []Rule) Option {
	return func(f *Finisher) { f.rules = append([]Rule(nil), rules...) }
}

// WithMaxPasses caps the number of full passes Finish may take before
// giving up with ErrNonConvergent. 0, the default, means no cap: the
// loop runs until the text stops changing, however long that takes.
func WithMaxPasses(n int) Option {
	return func(f *Finisher) { f.maxPasses = n }
}

// NewFinisher creates a Finisher with the default cleanup rules, which can
// be overridden with one or more Option functions. It fails if any rule
// pattern is not a valid regular expression.
func NewFinisher(opts ...Option) (*Finisher, error) {
	f := &Finisher{rules: DefaultRules()}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.setRules(f.rules); err != nil {
		return nil, err
	}
	return f, nil
}

// setRules compiles the candidate list and swaps it in, leaving the
// finisher untouched when any pattern fails to compile.
func (f *Finisher) setRules(rules []Rule) error {
	compiled := make([]*regexp.Regexp, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("could not compile rule %q: %w", r.Pattern, err)
		}
		compiled[i] = re
	}
	f.rules = rules
	f.compiled = compiled
	return nil
}

// Finish applies every rule, in order, across the whole text, and repeats
// that full pass until one pass produces no change. Running Finish on its
// own output changes nothing, which is what makes it safe to apply per
// paragraph and then again over an assembled document.
func (f *Finisher) Finish(text string) (string, error) {
	for pass := 0; ; pass++ {
		if f.maxPasses > 0 && pass >= f.maxPasses {
			return "", fmt.Errorf("%w: text still changing after %d passes", ErrNonConvergent, f.maxPasses)
		}

		out := text
		for i, re := range f.compiled {
			out = re.ReplaceAllString(out, f.rules[i].Replacement)
		}
		if out == text {
			return out, nil
		}
		text = out
	}
}

// Rules returns a copy of the current rule list in application order.
func (f *Finisher) Rules() []Rule {
	return append([]Rule(nil), f.rules...)
}

// SetRules replaces the whole rule list.
func (f *Finisher) SetRules(rules []Rule) error {
	return f.setRules(append([]Rule(nil), rules...))
}

// Add appends a rule to the end of the list.
func (f *Finisher) Add(r Rule) error {
	rules := append(append([]Rule(nil), f.rules...), r)
	return f.setRules(rules)
}

// Insert places a rule at the given position, shifting later rules down.
// Position len(Rules()) appends.
func (f *Finisher) Insert(position int, r Rule) error {
	if position < 0 || position > len(f.rules) {
		return fmt.Errorf("rule position %d out of range [0, %d]", position, len(f.rules))
	}
	rules := make([]Rule, 0, len(f.rules)+1)
	rules = append(rules, f.rules[:position]...)
	rules = append(rules, r)
	rules = append(rules, f.rules[position:]...)
	return f.setRules(rules)
}

// Remove deletes the first rule exactly equal to r, pattern and
// replacement both. Removing a rule that is not in the list is an error.
func (f *Finisher) Remove(r Rule) error {
	for i, have := range f.rules {
		if have == r {
			rules := make([]Rule, 0, len(f.rules)-1)
			rules = append(rules, f.rules[:i]...)
			rules = append(rules, f.rules[i+1:]...)
			return f.setRules(rules)
		}
	}
	return fmt.Errorf("no such rule: %q -> %q", r.Pattern, r.Replacement)
}

// WrapHTML wraps each paragraph in <p></p> tags and joins them with blank
// lines into an HTML fragment. Feeding the fragment through Finish cleans
// up markup artifacts such as empty paragraphs; the default rules know
// about them.
func WrapHTML(paragraphs []string) string {
	wrapped := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		wrapped[i] = "<p>" + strings.TrimSpace(p) + "</p>"
	}
	return strings.Join(wrapped, "\n\n")
}
