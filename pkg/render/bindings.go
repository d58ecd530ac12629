package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CTAG07/emotegen/pkg/svgdoc"
	"github.com/CTAG07/emotegen/pkg/templating"
	"github.com/beevik/etree"
)

// capability is the kind of work a template binding performs. The set is
// closed: every name a template can call maps to one of these.
type capability int

const (
	capRenderVariant capability = iota
	capLoadAsset
	capSetColor
	capVarsLookup
)

func (c capability) String() string {
	switch c {
	case capRenderVariant:
		return "render-variant"
	case capLoadAsset:
		return "load-asset"
	case capSetColor:
		return "set-color"
	case capVarsLookup:
		return "vars-lookup"
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

type binding struct {
	name       string
	capability capability
	// property is the paint property rewritten by capSetColor bindings.
	property string
}

var bindings = []binding{
	{name: "variant", capability: capRenderVariant},
	{name: "asset", capability: capLoadAsset},
	{name: "setFill", capability: capSetColor, property: "fill"},
	{name: "setStroke", capability: capSetColor, property: "stroke"},
	{name: "var", capability: capVarsLookup},
}

// funcs builds the template functions for one render pass.
func (c *Context) funcs(p *pass) templating.FuncMap {
	funcs := make(templating.FuncMap, len(bindings))
	for _, b := range bindings {
		switch b.capability {
		case capRenderVariant:
			funcs[b.name] = func(name string, selector ...string) (string, error) {
				return c.lookupVariant(p, name, selector)
			}
		case capLoadAsset:
			funcs[b.name] = func(name string, selector ...string) (string, error) {
				return c.lookupAsset(name, selector)
			}
		case capSetColor:
			funcs[b.name] = c.paintFunc(b.name, b.property)
		case capVarsLookup:
			funcs[b.name] = c.lookupVar
		}
	}
	return funcs
}

// data builds the value a template for variant is executed against.
func (c *Context) data(p *pass, variant string) map[string]any {
	data := map[string]any{
		"vars": c.decl.Vars,
		"tags": tagSet(c.decl.Tags(variant)),
	}
	for ctx := c; ctx != nil; ctx = ctx.parent {
		name := ctx.decl.Name
		if _, taken := data[name]; taken {
			c.logger.Debug("Species name shadowed in template data", "name", name)
			continue
		}
		data[name] = &Scope{ctx: ctx, pass: p, variant: variant}
	}
	return data
}

func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}
	return set
}

// lookupVariant renders a variant for inline use. Misses and failures render
// as an empty string; only a cyclic reference aborts the enclosing template.
func (c *Context) lookupVariant(p *pass, name string, selector []string) (string, error) {
	el, err := c.variant(p, name)
	if err != nil {
		if errors.Is(err, ErrCyclicReference) {
			return "", err
		}
		c.logMiss("variant", name, err, ErrUnknownVariant)
		return "", nil
	}
	return c.extract("variant", name, el, selector), nil
}

func (c *Context) lookupAsset(name string, selector []string) (string, error) {
	el, err := c.asset(name)
	if err != nil {
		c.logMiss("asset", name, err, ErrUnknownAsset)
		return "", nil
	}
	return c.extract("asset", name, el, selector), nil
}

// extract applies the optional selector to el and serializes the match.
func (c *Context) extract(kind, name string, el *etree.Element, selector []string) string {
	var pattern string
	if len(selector) > 0 {
		pattern = selector[0]
	}
	part, ok := svgdoc.QuerySelector(el, pattern)
	if !ok {
		c.logger.Debug("Selector matched nothing", kind, name, "selector", pattern)
		return ""
	}
	out, err := svgdoc.Serialize(part)
	if err != nil {
		c.logger.Warn("Failed to serialize selection", kind, name, "error", err)
		return ""
	}
	return out
}

func (c *Context) lookupVar(key string, fallback ...string) string {
	if value, ok := c.decl.Vars[key]; ok {
		return value
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return ""
}

// paintFunc returns the template function that repaints property on a
// fragment. It accepts either one "color|xml" argument or the color and the
// fragment as two arguments. Bad input renders as an XML comment.
func (c *Context) paintFunc(name, property string) func(args ...string) string {
	apply := svgdoc.SetFill
	if property == "stroke" {
		apply = svgdoc.SetStroke
	}
	return func(args ...string) string {
		var expr, fragment string
		switch len(args) {
		case 1:
			var ok bool
			if expr, fragment, ok = strings.Cut(args[0], "|"); !ok {
				return c.diagnostic(name, fmt.Errorf("expected color|xml, got %q", args[0]))
			}
		case 2:
			expr, fragment = args[0], args[1]
		default:
			return c.diagnostic(name, fmt.Errorf("expected 1 or 2 arguments, got %d", len(args)))
		}
		color, err := svgdoc.ParseColor(expr)
		if err != nil {
			return c.diagnostic(name, err)
		}
		out, err := repaint(fragment, color, apply)
		if err != nil {
			return c.diagnostic(name, err)
		}
		return out
	}
}

// repaint applies paint to every top-level element of fragment.
func repaint(fragment string, color svgdoc.Color, apply func(svgdoc.Color, *etree.Element)) (string, error) {
	wrapper, err := svgdoc.ParseString("<g>" + fragment + "</g>")
	if err != nil {
		return "", err
	}
	children := wrapper.ChildElements()
	parts := make([]string, 0, len(children))
	for _, child := range children {
		apply(color, child)
		s, err := svgdoc.Serialize(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n"), nil
}

func (c *Context) diagnostic(name string, err error) string {
	c.logger.Warn("Template function failed", "func", name, "error", err)
	msg := strings.ReplaceAll(err.Error(), "--", "- -")
	return fmt.Sprintf("<!-- %s: %s -->", name, msg)
}
