package svgdoc

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// ErrNoRoot is returned when a parsed document contains no root element.
var ErrNoRoot = errors.New("svgdoc: document has no root element")

// indentSpaces is the indentation used by Serialize.
const indentSpaces = 2

// Parse reads an XML document and returns a detached copy of its root element.
// Processing instructions, doctype declarations and top-level comments are
// dropped; only the root element tree is kept.
func Parse(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrNoRoot
	}
	return root.Copy(), nil
}

// ParseString is Parse for string input.
func ParseString(s string) (*etree.Element, error) {
	return Parse([]byte(s))
}

// LoadFile reads the file at path and parses it as a document.
func LoadFile(path string) (*etree.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	el, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return el, nil
}

// Serialize writes el as an indented XML string without a document
// declaration. The output is deterministic for a given tree; el itself is
// not modified.
func Serialize(el *etree.Element) (string, error) {
	if el == nil {
		return "", ErrNoRoot
	}
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	doc.Indent(indentSpaces)
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serializing xml: %w", err)
	}
	return strings.TrimRight(s, "\n"), nil
}

// QuerySelector extracts a sub-tree from el.
//
// An empty pattern flattens the root: the result is a <g> element holding
// copies of el's top-level children, with none of the root's attributes.
// Nesting a full <svg> root inside another document is rejected by several
// renderers, so this is the usual way to embed one drawing in another.
//
// A pattern of the form "#id" returns a copy of the first descendant, in
// depth-first pre-order, whose id attribute equals id. The root itself is not
// considered. Any other pattern, or an id that is not found, yields false.
func QuerySelector(el *etree.Element, pattern string) (*etree.Element, bool) {
	if el == nil {
		return nil, false
	}
	if pattern == "" {
		group := el.Copy()
		group.Space = ""
		group.Tag = "g"
		group.Attr = nil
		return group, true
	}
	id, ok := strings.CutPrefix(pattern, "#")
	if !ok || id == "" {
		return nil, false
	}
	found := findByID(el, id)
	if found == nil {
		return nil, false
	}
	return found.Copy(), true
}

func findByID(el *etree.Element, id string) *etree.Element {
	for _, child := range el.ChildElements() {
		if value, ok := AttrValue(child, "id"); ok && value == id {
			return child
		}
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// AttrValue returns the value of the attribute whose full key (including any
// namespace prefix) equals key.
func AttrValue(el *etree.Element, key string) (string, bool) {
	if a := attr(el, key); a != nil {
		return a.Value, true
	}
	return "", false
}

// SetAttr sets the attribute whose full key equals key, appending it if it is
// not present yet.
func SetAttr(el *etree.Element, key, value string) {
	if a := attr(el, key); a != nil {
		a.Value = value
		return
	}
	el.CreateAttr(key, value)
}

func attr(el *etree.Element, key string) *etree.Attr {
	for i := range el.Attr {
		if el.Attr[i].FullKey() == key {
			return &el.Attr[i]
		}
	}
	return nil
}
