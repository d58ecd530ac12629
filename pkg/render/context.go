package render

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/CTAG07/emotegen/pkg/species"
	"github.com/CTAG07/emotegen/pkg/svgdoc"
	"github.com/CTAG07/emotegen/pkg/templating"
	"github.com/beevik/etree"
)

var (
	// ErrUnknownVariant is returned when a variant name is not indexed.
	ErrUnknownVariant = errors.New("render: unknown variant")
	// ErrUnknownAsset is returned when an asset name is not indexed.
	ErrUnknownAsset = errors.New("render: unknown asset")
	// ErrCyclicReference is returned when a variant depends on itself.
	ErrCyclicReference = errors.New("render: cyclic variant reference")
	// ErrUnknownPartial is returned by Load for names no context can serve.
	ErrUnknownPartial = errors.New("render: unknown partial")
)

// Context renders the variants of one declaration level. It is safe for
// concurrent use; renders of different variants may run in parallel.
type Context struct {
	logger *slog.Logger
	engine templating.Engine
	decl   *species.Declaration
	parent *Context

	mu       sync.Mutex
	variants map[string]*etree.Element
	assets   map[string]*etree.Element
}

// NewContext creates a Context for decl and, recursively, for its parents.
// A nil engine uses templating.NewEngine with default settings; a nil logger
// falls back to slog.Default.
func NewContext(logger *slog.Logger, engine templating.Engine, decl *species.Declaration) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = templating.NewEngine(nil)
	}
	c := &Context{
		logger:   logger.With("species", decl.Name),
		engine:   engine,
		decl:     decl,
		variants: make(map[string]*etree.Element),
		assets:   make(map[string]*etree.Element),
	}
	if decl.Parent != nil {
		c.parent = NewContext(logger, engine, decl.Parent)
	}
	return c
}

// Species returns the declaration this context renders.
func (c *Context) Species() *species.Declaration {
	return c.decl
}

// Parent returns the context of the parent declaration, or nil.
func (c *Context) Parent() *Context {
	return c.parent
}

// GetVariant renders the named variant, or returns it from the cache, and
// returns a copy the caller owns. Unknown variants and failed renders both
// report false; use Render to get the error.
func (c *Context) GetVariant(name string) (*etree.Element, bool) {
	el, err := c.variant(newPass(), name)
	if err != nil {
		c.logMiss("variant", name, err, ErrUnknownVariant)
		return nil, false
	}
	return el.Copy(), true
}

// GetAsset loads the named asset, or returns it from the cache, and returns
// a copy the caller owns.
func (c *Context) GetAsset(name string) (*etree.Element, bool) {
	el, err := c.asset(name)
	if err != nil {
		c.logMiss("asset", name, err, ErrUnknownAsset)
		return nil, false
	}
	return el.Copy(), true
}

// Render renders the named variant and serializes it.
func (c *Context) Render(name string) (string, error) {
	el, err := c.variant(newPass(), name)
	if err != nil {
		return "", err
	}
	return svgdoc.Serialize(el)
}

// Compile reads the template at path and compiles it with this context's
// bindings, using c as the partial resolver. Execute the result against Data.
// The returned template must not be executed from several goroutines at once.
func (c *Context) Compile(path string) (templating.Template, error) {
	return c.compile(newPass(), path)
}

// Data returns the data a template for variant is executed against.
func (c *Context) Data(variant string) map[string]any {
	return c.data(newPass(), variant)
}

// Load resolves a partial name to its template source.
//
// A bare name is looked up in the declaration's templates. A name of the form
// "species.name" is resolved as "name" when species is this declaration's
// name and is otherwise handed to the parent context, so ancestors' partials
// are only reachable when qualified. Template files whose own name contains
// a dot are matched before the qualified form is considered. The qualifier
// is matched as a prefix, so declaration names may contain dots; the part
// after it must name a template exactly.
func (c *Context) Load(name string) (string, error) {
	if source, ok, err := c.readPartial(name); ok {
		return source, err
	}
	if rest, ok := strings.CutPrefix(name, c.decl.Name+"."); ok {
		if source, ok, err := c.readPartial(rest); ok {
			return source, err
		}
		return "", fmt.Errorf("%w: %q in %s", ErrUnknownPartial, name, c.decl.Name)
	}
	switch {
	case !strings.Contains(name, "."):
		return "", fmt.Errorf("%w: %q in %s", ErrUnknownPartial, name, c.decl.Name)
	case c.parent != nil:
		return c.parent.Load(name)
	}
	return "", fmt.Errorf("%w: %q (no species qualifies it)", ErrUnknownPartial, name)
}

// readPartial reads the template file indexed under name. ok reports
// whether name is indexed at all.
func (c *Context) readPartial(name string) (source string, ok bool, err error) {
	path, ok := c.decl.TemplatePaths[name]
	if !ok {
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", true, fmt.Errorf("reading partial %s: %w", name, err)
	}
	return string(data), true, nil
}

// variant returns the cached document for name, rendering it on a miss. The
// returned element is shared with the cache and must not be modified.
func (c *Context) variant(p *pass, name string) (*etree.Element, error) {
	if el, ok := c.cached(c.variants, name); ok {
		return el, nil
	}
	path, ok := c.decl.VariantPaths[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnknownVariant, name, c.decl.Name)
	}
	if p.active(c, name) {
		return nil, fmt.Errorf("%w: %s", ErrCyclicReference, p.trace(c, name))
	}
	p.push(c, name)
	defer p.pop()

	tmpl, err := c.compile(p, path)
	if err != nil {
		return nil, fmt.Errorf("variant %s: %w", name, err)
	}
	text, err := templating.Render(tmpl, c.data(p, name))
	if err != nil {
		return nil, fmt.Errorf("rendering variant %s: %w", name, err)
	}
	el, err := svgdoc.ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("variant %s produced invalid xml: %w", name, err)
	}
	c.logger.Debug("Rendered variant", "variant", name, "path", path)
	return c.store(c.variants, name, el), nil
}

// asset returns the cached document for name, loading it on a miss. The
// returned element is shared with the cache and must not be modified.
func (c *Context) asset(name string) (*etree.Element, error) {
	if el, ok := c.cached(c.assets, name); ok {
		return el, nil
	}
	path, ok := c.decl.AssetPaths[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrUnknownAsset, name, c.decl.Name)
	}
	el, err := svgdoc.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", name, err)
	}
	return c.store(c.assets, name, el), nil
}

func (c *Context) compile(p *pass, path string) (templating.Template, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return c.engine.Compile(path, string(source), c.funcs(p), c)
}

func (c *Context) cached(cache map[string]*etree.Element, name string) (*etree.Element, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := cache[name]
	return el, ok
}

// store inserts el unless another render got there first, and returns the
// element that ended up in the cache.
func (c *Context) store(cache map[string]*etree.Element, name string, el *etree.Element) *etree.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := cache[name]; ok {
		return existing
	}
	cache[name] = el
	return el
}

func (c *Context) logMiss(kind, name string, err, unknown error) {
	if errors.Is(err, unknown) {
		c.logger.Debug("Lookup missed", kind, name)
		return
	}
	c.logger.Warn("Lookup failed", kind, name, "error", err)
}

// pass tracks the variants being rendered by one top-level request, so a
// variant that reaches itself again is reported instead of recursing.
// A pass belongs to a single goroutine.
type pass struct {
	stack []frame
}

type frame struct {
	ctx  *Context
	name string
}

func newPass() *pass {
	return &pass{}
}

func (p *pass) active(c *Context, name string) bool {
	for _, f := range p.stack {
		if f.ctx == c && f.name == name {
			return true
		}
	}
	return false
}

func (p *pass) push(c *Context, name string) {
	p.stack = append(p.stack, frame{ctx: c, name: name})
}

func (p *pass) pop() {
	p.stack = p.stack[:len(p.stack)-1]
}

// trace formats the chain of renders that leads back to (c, name).
func (p *pass) trace(c *Context, name string) string {
	parts := make([]string, 0, len(p.stack)+1)
	for _, f := range p.stack {
		parts = append(parts, f.ctx.decl.Name+"/"+f.name)
	}
	parts = append(parts, c.decl.Name+"/"+name)
	return strings.Join(parts, " -> ")
}
