/*
Package polish cleans up machine-generated text.

Prose assembled from generated tokens carries small surface blemishes:
doubled dashes, spaced-out number groupings, stray quotes, leftover
acronym masking. A Finisher repairs them by applying an ordered
substitution rule list over and over until the text stops changing, so
rules can safely feed one another. The default rule list handles the
blemishes above plus paragraph-markup cleanup; callers can edit the list
freely, and WrapHTML turns finished paragraphs into an HTML fragment.
*/
package polish
