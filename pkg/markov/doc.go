/*
Package markov provides a toolkit for building, training, and sampling
Markov chain models of text in Go.

A Model maps fixed-length token windows to weighted successor multisets and
keeps a weighted set of sentence-start keys; training is incremental, so a
model can accumulate any number of corpora, each with its own weight. A
Generator walks a model with frequency-weighted random selection to produce
sentences and paragraphs, and the codec persists models as versioned JSON
that reloads without loss.

Tokenization is pluggable: the provided WordTokenizer splits prose into
words and punctuation and knows how to stitch them back together, while
CharTokenizer treats every rune as a token for letter-level chains.

For a complete usage example, see the README.md file.
*/
package markov
