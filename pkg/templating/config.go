package templating

// TemplateConfig holds all configuration options for the templating engine.
type TemplateConfig struct {
	// LeftDelim and RightDelim replace the default "{{" and "}}" action
	// delimiters. Drawings that contain literal braces can switch to
	// something like "[[" and "]]".
	LeftDelim  string
	RightDelim string

	// MissingKey controls what happens when a template indexes a map with a
	// key that is not present: "zero" yields the zero value, "default"
	// prints "<no value>", and "error" aborts the render.
	MissingKey string

	// MaxIncludeDepth sets a hard upper limit on nested partial resolution,
	// both for {{template}} chains resolved at compile time and for nested
	// include calls at render time. This turns a partial that includes
	// itself into an error instead of a stack overflow.
	MaxIncludeDepth int
}

// DefaultConfig returns a TemplateConfig with safe default values.
func DefaultConfig() *TemplateConfig {
	return &TemplateConfig{
		LeftDelim:       "{{",
		RightDelim:      "}}",
		MissingKey:      "zero",
		MaxIncludeDepth: 32,
	}
}

// normalized returns a copy of c with empty fields replaced by defaults.
func (c *TemplateConfig) normalized() TemplateConfig {
	def := DefaultConfig()
	if c == nil {
		return *def
	}
	out := *c
	if out.LeftDelim == "" || out.RightDelim == "" {
		out.LeftDelim, out.RightDelim = def.LeftDelim, def.RightDelim
	}
	switch out.MissingKey {
	case "zero", "default", "error", "invalid":
	default:
		out.MissingKey = def.MissingKey
	}
	if out.MaxIncludeDepth <= 0 {
		out.MaxIncludeDepth = def.MaxIncludeDepth
	}
	return out
}
