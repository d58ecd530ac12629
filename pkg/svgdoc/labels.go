package svgdoc

import "github.com/beevik/etree"

// PromoteLabels copies the label of every element whose label is unique in
// the tree into its id attribute, so editor layer names become addressable
// with "#name" selectors. Both "label" and namespaced forms such as
// "inkscape:label" are recognized. It returns the number of elements changed.
func PromoteLabels(root *etree.Element) int {
	counts := make(map[string]int)
	walk(root, func(el *etree.Element) {
		if label, ok := labelOf(el); ok {
			counts[label]++
		}
	})

	promoted := 0
	walk(root, func(el *etree.Element) {
		label, ok := labelOf(el)
		if !ok || counts[label] != 1 {
			return
		}
		if id, ok := AttrValue(el, "id"); ok && id == label {
			return
		}
		SetAttr(el, "id", label)
		promoted++
	})
	return promoted
}

func labelOf(el *etree.Element) (string, bool) {
	for _, a := range el.Attr {
		if a.Key == "label" && a.Value != "" {
			return a.Value, true
		}
	}
	return "", false
}

// walk visits el and its descendants in pre-order.
func walk(el *etree.Element, visit func(*etree.Element)) {
	visit(el)
	for _, child := range el.ChildElements() {
		walk(child, visit)
	}
}
