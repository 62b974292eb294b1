package markov

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Sentence is an ordered token sequence representing one generated sentence.
type Sentence []string

// Paragraph is a group of consecutive sentences.
type Paragraph []Sentence

// StopFunc decides whether a drawn token ends the current sentence. The
// stopping token is emitted before the sentence ends.
type StopFunc func(token string) bool

// defaultStop stops on any token in the SentenceEnders set.
func defaultStop(token string) bool {
	return isSingleRuneIn(token, SentenceEnders)
}

// GenerateSentence performs one weighted random walk: it draws a start key,
// emits its tokens, then repeatedly draws a successor for the trailing
// window until a drawn token satisfies the stop condition (that token is
// included) or the window has no recorded successors. The dead-end case
// ends the sentence without terminal punctuation, which is degenerate but
// valid output, not an error.
//
// Sentences rejected by the single-character check are regenerated; like
// the walk itself, that retry is unbounded, so a corpus that can only
// produce single-character sentences should allow them via
// WithSingleCharSentences.
//
// It returns ErrEmptyModel if the model has no start states.
func (g *Generator) GenerateSentence() (Sentence, error) {
	for {
		sent, err := g.walk()
		if err != nil {
			return nil, err
		}
		if g.acceptable(sent) {
			return sent, nil
		}
		g.logger.Debug("rejected single-character sentence, retrying",
			slog.String("sentence", strings.Join(sent, " ")),
		)
	}
}

// walk builds one raw sentence.
func (g *Generator) walk() (Sentence, error) {
	start, err := g.model.RandomStart(g.rng)
	if err != nil {
		return nil, err
	}

	sent := make(Sentence, 0, len(start)+8)
	sent = append(sent, start...)
	window := append([]string(nil), start...)

	for {
		if g.maxTokens > 0 && len(sent) >= g.maxTokens {
			g.logger.Debug("sentence reached token cap",
				slog.Int("max_tokens", g.maxTokens),
			)
			return sent, nil
		}

		next, err := g.model.RandomSuccessor(window, g.rng)
		if errors.Is(err, ErrDeadEnd) {
			g.logger.Debug("dead end in chain",
				slog.String("window", strings.Join(window, " ")),
				slog.Int("sentence_length", len(sent)),
			)
			return sent, nil
		}
		if err != nil {
			return nil, err
		}

		sent = append(sent, next)
		window = append(window[1:], next)

		if g.stop(next) {
			return sent, nil
		}
	}
}

// acceptable rejects sentences whose whole content, terminal punctuation
// aside, is a single character other than "I".
func (g *Generator) acceptable(sent Sentence) bool {
	if g.singleChar {
		return true
	}
	content := strings.TrimSpace(Detokenize(g.tokenizer, sent))
	content = strings.TrimSpace(strings.TrimRight(content, SentenceEnders))
	if utf8.RuneCountInString(content) != 1 {
		return true
	}
	return strings.EqualFold(content, "I")
}

// GenerateParagraphs produces the requested number of sentences and groups
// them into paragraphs. After each sentence except the last, a new
// paragraph begins with probability breakProb; the final sentence always
// closes the current paragraph. A probability of 0 yields one paragraph,
// 1 puts every sentence in a paragraph of its own.
func (g *Generator) GenerateParagraphs(sentences int, breakProb float64) ([]Paragraph, error) {
	if sentences < 1 {
		return nil, fmt.Errorf("%w: sentence count must be at least 1, got %d", ErrInvalidConfig, sentences)
	}
	if breakProb < 0 || breakProb > 1 {
		return nil, fmt.Errorf("%w: paragraph break probability must be in [0, 1], got %v", ErrInvalidConfig, breakProb)
	}

	var paragraphs []Paragraph
	var current Paragraph
	for i := 0; i < sentences; i++ {
		sent, err := g.GenerateSentence()
		if err != nil {
			return nil, err
		}
		current = append(current, sent)

		if i == sentences-1 || (breakProb > 0 && g.rng.Float64() <= breakProb) {
			paragraphs = append(paragraphs, current)
			current = nil
		}
	}

	g.logger.Debug("generation complete",
		slog.Int("sentences", sentences),
		slog.Int("paragraphs", len(paragraphs)),
	)
	return paragraphs, nil
}

// RenderSentence reassembles a sentence with the generator's tokenizer and
// capitalizes its first alphanumeric character.
func (g *Generator) RenderSentence(sent Sentence) string {
	return Capitalize(Detokenize(g.tokenizer, sent))
}

// RenderParagraph renders each sentence and joins them with single spaces.
func (g *Generator) RenderParagraph(p Paragraph) string {
	rendered := make([]string, len(p))
	for i, sent := range p {
		rendered[i] = g.RenderSentence(sent)
	}
	return strings.Join(rendered, " ")
}
