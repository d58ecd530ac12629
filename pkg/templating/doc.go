/*
Package templating compiles the text templates emote variants are written in.

Templates use text/template syntax. The Engine interface hides the concrete
template library from callers: they hand it a source, a function map and a
Resolver, and get back a Template that can be executed any number of times.

Partials are ordinary named templates. A {{template "eyes" .}} action whose
name is not defined by the source itself is loaded through the Resolver while
compiling, so a missing partial is reported up front rather than halfway
through a render. The "include" function does the same at render time and
returns the partial's output as a string, which makes it usable as a function
argument:

	{{setFill "#ff0000" (include "eyes" .)}}

Every template also gets the small set of arithmetic and list helpers returned
by BaseFuncs, which work on the string values variables usually hold:

	<circle r="{{num (mult .vars.size 0.5)}}"/>
*/
package templating
