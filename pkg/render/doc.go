/*
Package render turns loaded declarations into documents.

A Context wraps one species.Declaration and, when the declaration has a
parent, a Context for that parent, mirroring the declaration chain. Variants
are compiled through a templating.Engine, executed against data built for the
variant being rendered, and parsed back into etree elements. Rendered
variants and loaded assets are cached per Context for its whole lifetime;
every read hands out an independent copy so callers may mutate the result.

Variant templates see the following:

	{{.vars.mood}}                      the declaration's variables
	{{if .tags.winter}}...{{end}}       tags of the variant being rendered
	{{variant "idle" "#body"}}          another variant, optionally narrowed by a selector
	{{asset "hat"}}                     a static asset, same selector rules
	{{setFill "#ff0000" (asset "hat")}} repaint a fragment ("color|xml" also works)
	{{setStroke "red|<path stroke='blue'/>"}}
	{{var "mood" "calm"}}               a variable with a fallback
	{{.base.Variant "idle" ""}}         the same lookups scoped to an ancestor named base
	{{template "eyes" .}}               a partial from templates/
	{{template "base.eyes" .}}          a partial qualified by species name

Failed lookups inside a template render as an empty string and failed
repaints as an XML comment, so one broken part does not take down the whole
drawing. A variant that ends up referencing itself, directly or through other
variants, is an error for every render involved.
*/
package render
