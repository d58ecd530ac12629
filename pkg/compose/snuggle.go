// Package compose builds composite emotes out of already rendered documents.
package compose

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/CTAG07/emotegen/pkg/species"
	"github.com/CTAG07/emotegen/pkg/svgdoc"
	"github.com/beevik/etree"
)

// MaskID is the id of the mask element Snuggle emits.
const MaskID = "snuggle-mask"

// Box is a viewBox rectangle.
type Box struct {
	X, Y, Width, Height float64
}

// DefaultBox is used for documents that declare neither a viewBox nor a size.
var DefaultBox = Box{Width: 128, Height: 128}

// Desc positions the two halves of a snuggle.
type Desc struct {
	// DX and DY translate the left drawing.
	DX float64 `toml:"dx" yaml:"dx" json:"dx"`
	DY float64 `toml:"dy" yaml:"dy" json:"dy"`
	// Transform is applied to the right drawing inside the mask, so the cut
	// can follow a right drawing that is itself transformed.
	Transform string `toml:"transform" yaml:"transform" json:"transform"`
	// Gap widens the cut by boldening the mask's strokes.
	Gap float64 `toml:"gap" yaml:"gap" json:"gap"`
}

// LoadDesc reads a Desc from a TOML, YAML or JSON file.
func LoadDesc(path string) (Desc, error) {
	var desc Desc
	if err := species.DecodeFile(path, &desc); err != nil {
		return Desc{}, err
	}
	return desc, nil
}

// Snuggle draws right in front of left, with left cut away wherever right
// covers it. The inputs are not modified.
//
// The result holds a mask that is white over left's viewBox (moved by DX, DY)
// and black wherever right paints, then right itself, then left translated
// by (DX, DY) with the mask applied.
func Snuggle(left, right *etree.Element, desc Desc) *etree.Element {
	box := ViewBox(left)

	res := etree.NewElement("svg")
	res.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	res.CreateAttr("version", "1.1")
	res.CreateAttr("width", "128")
	res.CreateAttr("height", "128")

	mask := res.CreateElement("mask")
	mask.CreateAttr("id", MaskID)
	rect := mask.CreateElement("rect")
	rect.CreateAttr("fill", "white")
	rect.CreateAttr("x", formatFloat(desc.DX+box.X))
	rect.CreateAttr("y", formatFloat(desc.DY+box.Y))
	rect.CreateAttr("width", formatFloat(box.Width))
	rect.CreateAttr("height", formatFloat(box.Height))

	cut := mask.CreateElement("g")
	if desc.Transform != "" {
		cut.CreateAttr("transform", desc.Transform)
	}
	black := svgdoc.Color{Value: "#000000", Opacity: 1}
	for _, child := range right.ChildElements() {
		shape := child.Copy()
		svgdoc.SetFill(black, shape)
		svgdoc.SetStroke(black, shape)
		if desc.Gap > 0 {
			svgdoc.Bolden(shape, desc.Gap)
		}
		cut.AddChild(shape)
	}

	appendChildren(res, right)

	masked := res.CreateElement("g")
	masked.CreateAttr("mask", "url(#"+MaskID+")")
	moved := masked.CreateElement("g")
	moved.CreateAttr("transform", fmt.Sprintf("translate(%s %s)", formatFloat(desc.DX), formatFloat(desc.DY)))
	appendChildren(moved, left)
	return res
}

// appendChildren appends copies of src's child tokens to dst. AddChild
// detaches a token from its parent, so the copied list is cloned before the
// loop.
func appendChildren(dst, src *etree.Element) {
	for _, tok := range slices.Clone(src.Copy().Child) {
		dst.AddChild(tok)
	}
}

// ViewBox returns the viewBox of el, falling back to its width and height
// attributes and then to DefaultBox.
func ViewBox(el *etree.Element) Box {
	if vb, ok := svgdoc.AttrValue(el, "viewBox"); ok {
		fields := strings.FieldsFunc(vb, func(r rune) bool { return r == ' ' || r == ',' })
		if len(fields) == 4 {
			var nums [4]float64
			valid := true
			for i, f := range fields {
				n, err := strconv.ParseFloat(f, 64)
				if err != nil {
					valid = false
					break
				}
				nums[i] = n
			}
			if valid {
				return Box{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}
			}
		}
	}
	w, werr := strconv.ParseFloat(strings.TrimSuffix(el.SelectAttrValue("width", ""), "px"), 64)
	h, herr := strconv.ParseFloat(strings.TrimSuffix(el.SelectAttrValue("height", ""), "px"), 64)
	if werr == nil && herr == nil {
		return Box{Width: w, Height: h}
	}
	return DefaultBox
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
