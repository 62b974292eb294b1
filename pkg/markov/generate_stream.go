package markov

import (
	"context"
	"fmt"
	"log/slog"
)

// StreamParagraphs runs the paragraph generation of GenerateParagraphs
// incrementally and returns a read-only channel of paragraphs. Each
// paragraph is sent as soon as its closing sentence is generated, which is
// useful when the sentence count is large or the consumer renders output as
// it arrives. The channel is closed once generation is complete or the
// context is cancelled.
//
// Parameter validation and the empty-model check happen up front, so those
// errors are returned synchronously and the channel is nil. Cancellation is
// noticed between sentences; a single walk that never reaches a stop token
// still blocks, see WithMaxTokens.
//
// With the same randomness source and arguments, the streamed paragraphs
// match the slice returned by GenerateParagraphs.
func (g *Generator) StreamParagraphs(ctx context.Context, sentences int, breakProb float64) (<-chan Paragraph, error) {
	if sentences < 1 {
		return nil, fmt.Errorf("%w: sentence count must be at least 1, got %d", ErrInvalidConfig, sentences)
	}
	if breakProb < 0 || breakProb > 1 {
		return nil, fmt.Errorf("%w: paragraph break probability must be in [0, 1], got %v", ErrInvalidConfig, breakProb)
	}
	if len(g.model.starts) == 0 {
		return nil, ErrEmptyModel
	}

	out := make(chan Paragraph)

	go func() {
		defer close(out)

		var current Paragraph
		for i := 0; i < sentences; i++ {
			select {
			case <-ctx.Done():
				g.logger.DebugContext(ctx, "paragraph stream cancelled by context",
					slog.Int("sentences_done", i),
				)
				return
			default:
			}

			sent, err := g.GenerateSentence()
			if err != nil {
				g.logger.ErrorContext(ctx, "paragraph stream aborted",
					slog.Any("error", err),
				)
				return
			}
			current = append(current, sent)

			if i == sentences-1 || (breakProb > 0 && g.rng.Float64() <= breakProb) {
				select {
				case <-ctx.Done():
					g.logger.DebugContext(ctx, "paragraph stream cancelled by context",
						slog.Int("sentences_done", i+1),
					)
					return
				case out <- current:
				}
				current = nil
			}
		}
	}()

	return out, nil
}
