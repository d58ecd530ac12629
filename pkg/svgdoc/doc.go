/*
Package svgdoc provides the structured document model used by the emote
generator. Documents are github.com/beevik/etree element trees: an element
carries a tag, an ordered list of attributes and an ordered list of child
tokens (elements, character data, comments).

The package offers the handful of operations the rendering engine needs:
parsing and deterministic serialization, id-based sub-tree selection,
recursive fill/stroke overrides driven by CSS color expressions, the
"bolden" stroke-width transform used by compositing, and label-to-id
promotion for files exported from vector editors.

Every function that returns an element returns an independent copy. Callers
may mutate results freely without affecting the tree they were taken from.
*/
package svgdoc
