package svgdoc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/mazznoer/csscolorparser"
)

// ErrInvalidColor is returned by ParseColor for empty expressions and for
// tokens that cannot be written into an attribute or a style string.
var ErrInvalidColor = errors.New("svgdoc: invalid color")

// Color is a paint value ready to be written into a document.
type Color struct {
	// Value is a "#rrggbb" triplet for CSS color expressions, or the raw
	// token (for example "url(#gradient)" or "none") otherwise.
	Value string
	// Opacity is the alpha channel of the expression, 1 for raw tokens.
	Opacity float64
}

// ParseColor normalizes a CSS color expression (hex, named colors, rgb(),
// rgba(), hsl(), ...) into a hex triplet plus opacity. Expressions the CSS
// parser does not understand are kept verbatim with full opacity, so paint
// servers such as "url(#grad)" pass through.
func ParseColor(expr string) (Color, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Color{}, fmt.Errorf("%w: empty expression", ErrInvalidColor)
	}
	if strings.ContainsAny(expr, "<>\";") {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, expr)
	}
	parsed, err := csscolorparser.Parse(expr)
	if err != nil {
		return Color{Value: expr, Opacity: 1}, nil
	}
	r, g, b, _ := parsed.RGBA255()
	return Color{
		Value:   fmt.Sprintf("#%02x%02x%02x", r, g, b),
		Opacity: parsed.A,
	}, nil
}

// OpacityString formats the opacity the way it is written into documents.
func (c Color) OpacityString() string {
	return formatNumber(c.Opacity)
}

// SetFill overrides the fill of el and all its descendants. Only elements
// that already declare fill or fill-opacity, as an attribute or inside their
// inline style, are changed.
func SetFill(color Color, el *etree.Element) {
	setPaint(el, "fill", "fill-opacity", color)
}

// SetStroke is SetFill for stroke and stroke-opacity.
func SetStroke(color Color, el *etree.Element) {
	setPaint(el, "stroke", "stroke-opacity", color)
}

func setPaint(el *etree.Element, prop, opacityProp string, color Color) {
	opacity := color.OpacityString()

	if style, ok := AttrValue(el, "style"); ok {
		props := ParseStyle(style)
		_, hasProp := lookupStyle(props, prop)
		_, hasOpacity := lookupStyle(props, opacityProp)
		if hasProp || hasOpacity {
			props = setStyle(props, prop, color.Value)
			props = setStyle(props, opacityProp, opacity)
			SetAttr(el, "style", FormatStyle(props))
		}
	}
	if _, ok := AttrValue(el, prop); ok {
		SetAttr(el, prop, color.Value)
	}
	if _, ok := AttrValue(el, opacityProp); ok {
		SetAttr(el, opacityProp, opacity)
	}

	for _, child := range el.ChildElements() {
		setPaint(child, prop, opacityProp, color)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
