package svgdoc

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Bolden thickens every shape under el (el included) by amount.
//
// Elements with a stroke-width, in an attribute or in their inline style,
// have it increased by amount. Painted elements without one start from zero,
// so their stroke ends up exactly amount wide; filled elements without a
// stroke get one painted with their fill. Elements with neither fill nor
// stroke are left untouched.
func Bolden(el *etree.Element, amount float64) {
	boldenElement(el, amount)
	for _, child := range el.ChildElements() {
		Bolden(child, amount)
	}
}

func boldenElement(el *etree.Element, amount float64) {
	style, hasStyle := AttrValue(el, "style")
	props := ParseStyle(style)

	if width, ok := lookupStyle(props, "stroke-width"); ok {
		SetAttr(el, "style", FormatStyle(setStyle(props, "stroke-width", addToLength(width, amount))))
		return
	}
	if width, ok := AttrValue(el, "stroke-width"); ok {
		SetAttr(el, "stroke-width", addToLength(width, amount))
		return
	}

	stroke, strokeInStyle := paintOf(el, props, "stroke")
	if stroke != "" {
		width := formatNumber(amount)
		if strokeInStyle {
			SetAttr(el, "style", FormatStyle(setStyle(props, "stroke-width", width)))
		} else {
			SetAttr(el, "stroke-width", width)
		}
		return
	}

	fill, fillInStyle := paintOf(el, props, "fill")
	if fill == "" {
		return
	}
	width := formatNumber(amount)
	if hasStyle && (fillInStyle || strokeInStyle) {
		props = setStyle(props, "stroke", fill)
		if opacity, ok := lookupStyle(props, "fill-opacity"); ok {
			props = setStyle(props, "stroke-opacity", opacity)
		}
		props = setStyle(props, "stroke-width", width)
		SetAttr(el, "style", FormatStyle(props))
		return
	}
	SetAttr(el, "stroke", fill)
	if opacity, ok := AttrValue(el, "fill-opacity"); ok {
		SetAttr(el, "stroke-opacity", opacity)
	}
	SetAttr(el, "stroke-width", width)
}

// paintOf returns the effective paint called prop, preferring the inline
// style over the presentation attribute. "none" counts as no paint.
func paintOf(el *etree.Element, props []StyleProperty, prop string) (string, bool) {
	if value, ok := lookupStyle(props, prop); ok {
		if value == "none" {
			return "", true
		}
		return value, true
	}
	if value, ok := AttrValue(el, prop); ok && value != "none" {
		return value, false
	}
	return "", false
}

// addToLength adds amount to a length such as "2", "1.5px" or "3e-1em". The
// unit suffix is preserved. Values that do not start with a number are
// treated as zero.
func addToLength(length string, amount float64) string {
	length = strings.TrimSpace(length)
	for split := len(length); split > 0; split-- {
		value, err := strconv.ParseFloat(length[:split], 64)
		if err == nil {
			return formatNumber(value+amount) + length[split:]
		}
	}
	return formatNumber(amount)
}
