package render

// Scope exposes the lookups of one context in the chain to templates, under
// the context's species name: {{.base.Variant "idle" "#body"}}.
type Scope struct {
	ctx     *Context
	pass    *pass
	variant string
}

// Name returns the species name of the scoped context.
func (s *Scope) Name() string {
	return s.ctx.decl.Name
}

// Variant renders a variant of the scoped context. The optional selector
// narrows the result as in QuerySelector.
func (s *Scope) Variant(name string, selector ...string) (string, error) {
	return s.ctx.lookupVariant(s.pass, name, selector)
}

// Asset loads an asset of the scoped context.
func (s *Scope) Asset(name string, selector ...string) (string, error) {
	return s.ctx.lookupAsset(name, selector)
}

// Vars returns the scoped declaration's variables, including inherited ones.
func (s *Scope) Vars() map[string]string {
	return s.ctx.decl.Vars
}

// Tags returns the scoped declaration's tags for the variant being rendered.
func (s *Scope) Tags() map[string]bool {
	return tagSet(s.ctx.decl.Tags(s.variant))
}
