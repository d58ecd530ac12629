package templating

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync/atomic"
	"text/template"
	"text/template/parse"
)

var (
	// ErrUnresolvedPartial is returned when a partial name cannot be loaded.
	ErrUnresolvedPartial = errors.New("templating: unresolved partial")
	// ErrIncludeDepth is returned when partials nest deeper than MaxIncludeDepth.
	ErrIncludeDepth = errors.New("templating: partials nested too deeply")
)

// FuncMap is the map of functions exposed to templates.
type FuncMap = template.FuncMap

// Resolver loads the source text of a partial template by name.
type Resolver interface {
	Load(name string) (string, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(name string) (string, error)

// Load calls f(name).
func (f ResolverFunc) Load(name string) (string, error) {
	return f(name)
}

// Template is a compiled template ready to be executed.
type Template interface {
	Name() string
	Execute(w io.Writer, data any) error
}

// Engine compiles template sources. funcs is merged over BaseFuncs and
// must be complete at compile time; every partial referenced by the source
// is loaded through resolver before Compile returns.
type Engine interface {
	Compile(name, source string, funcs FuncMap, resolver Resolver) (Template, error)
}

// TextEngine is the Engine backed by text/template. It is stateless apart
// from its configuration and safe for concurrent use.
type TextEngine struct {
	config TemplateConfig
}

// NewEngine creates a TextEngine. A nil config uses DefaultConfig.
func NewEngine(config *TemplateConfig) *TextEngine {
	return &TextEngine{config: config.normalized()}
}

// Config returns a copy of the engine's configuration.
func (e *TextEngine) Config() TemplateConfig {
	return e.config
}

// Compile parses source and resolves the partials it references.
//
// Partials are the names used by {{template "name" .}} actions that the
// source does not define itself. They are loaded transitively: a partial
// may reference further partials, up to MaxIncludeDepth levels. The
// "include" function is added to funcs; it renders a partial to a string so
// the result can be passed to other functions.
func (e *TextEngine) Compile(name, source string, funcs FuncMap, resolver Resolver) (Template, error) {
	return e.compile(name, source, funcs, resolver, 0)
}

func (e *TextEngine) compile(name, source string, funcs FuncMap, resolver Resolver, depth int) (*compiled, error) {
	if depth > e.config.MaxIncludeDepth {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepth, name)
	}
	c := &compiled{
		engine:   e,
		funcs:    funcs,
		resolver: resolver,
		depth:    depth,
	}
	t := template.New(name).
		Delims(e.config.LeftDelim, e.config.RightDelim).
		Option("missingkey=" + e.config.MissingKey).
		Funcs(BaseFuncs()).
		Funcs(funcs).
		Funcs(FuncMap{"include": c.include})

	if _, err := t.Parse(source); err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	if err := e.resolvePartials(t, resolver); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	c.tmpl = t
	return c, nil
}

// resolvePartials loads every referenced but undefined template into t's set.
func (e *TextEngine) resolvePartials(t *template.Template, resolver Resolver) error {
	for round := 0; ; round++ {
		missing := missingPartials(t)
		if len(missing) == 0 {
			return nil
		}
		if round >= e.config.MaxIncludeDepth {
			return fmt.Errorf("%w: %s", ErrIncludeDepth, strings.Join(missing, ", "))
		}
		for _, name := range missing {
			if resolver == nil {
				return fmt.Errorf("%w %q: no resolver", ErrUnresolvedPartial, name)
			}
			source, err := resolver.Load(name)
			if err != nil {
				return fmt.Errorf("%w %q: %w", ErrUnresolvedPartial, name, err)
			}
			if _, err = t.New(name).Parse(source); err != nil {
				return fmt.Errorf("parsing partial %s: %w", name, err)
			}
		}
	}
}

// missingPartials lists, sorted, the names invoked by {{template}} actions
// anywhere in t's set that have no definition yet.
func missingPartials(t *template.Template) []string {
	referenced := make(map[string]struct{})
	for _, tmpl := range t.Templates() {
		if tmpl.Tree != nil {
			collectTemplateNodes(tmpl.Tree.Root, referenced)
		}
	}
	var missing []string
	for name := range referenced {
		if t.Lookup(name) == nil {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

func collectTemplateNodes(node parse.Node, out map[string]struct{}) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			collectTemplateNodes(child, out)
		}
	case *parse.TemplateNode:
		out[n.Name] = struct{}{}
	case *parse.IfNode:
		collectTemplateNodes(n.List, out)
		collectTemplateNodes(n.ElseList, out)
	case *parse.RangeNode:
		collectTemplateNodes(n.List, out)
		collectTemplateNodes(n.ElseList, out)
	case *parse.WithNode:
		collectTemplateNodes(n.List, out)
		collectTemplateNodes(n.ElseList, out)
	}
}

// compiled is the Template produced by TextEngine.
type compiled struct {
	tmpl     *template.Template
	engine   *TextEngine
	funcs    FuncMap
	resolver Resolver
	depth    int
	active   atomic.Int32
}

func (c *compiled) Name() string {
	return c.tmpl.Name()
}

func (c *compiled) Execute(w io.Writer, data any) error {
	return c.tmpl.Execute(w, data)
}

// include renders the partial called name with the optional data argument
// and returns the output as a string.
func (c *compiled) include(name string, data ...any) (string, error) {
	if int(c.active.Add(1)) > c.engine.config.MaxIncludeDepth {
		c.active.Add(-1)
		return "", fmt.Errorf("%w: include %q", ErrIncludeDepth, name)
	}
	defer c.active.Add(-1)

	var arg any
	if len(data) > 0 {
		arg = data[0]
	}

	if target := c.tmpl.Lookup(name); target != nil {
		var sb strings.Builder
		if err := target.Execute(&sb, arg); err != nil {
			return "", err
		}
		return sb.String(), nil
	}

	if c.resolver == nil {
		return "", fmt.Errorf("%w %q: no resolver", ErrUnresolvedPartial, name)
	}
	source, err := c.resolver.Load(name)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrUnresolvedPartial, name, err)
	}
	nested, err := c.engine.compile(name, source, c.funcs, c.resolver, c.depth+1)
	if err != nil {
		return "", err
	}
	return Render(nested, arg)
}

// Render executes t with data and returns the output as a string.
func Render(t Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
