/*
Package species loads emote declarations.

A declaration lives in a directory containing a descriptor file
(species.toml, species.yaml, species.yml, species.jsonc or species.json)
and up to three subdirectories:

	templates/   partial templates, included by name
	variants/    one template per renderable variant
	assets/      static documents reused by variants

The descriptor names the declaration, optionally points at a parent
declaration through "base" (a path relative to the descriptor's directory),
attaches tags to variants, and defines literal variables:

	name = "blobfox"
	base = "../base"

	[variants]
	snow = ["winter"]

	[vars]
	mood = "happy"

Loading resolves the whole parent chain eagerly; the resulting Declaration is
immutable and safe to share between goroutines.
*/
package species
