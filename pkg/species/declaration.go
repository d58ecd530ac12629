package species

import (
	"maps"
	"slices"
)

// Declaration describes one inheritable collection ("species") of emotes:
// its variants and their tags, its substitution variables, and the files
// that make up its templates, variants and assets.
//
// The path indices already include everything inherited from the parent
// chain; an entry defined at this level shadows the inherited one. A
// Declaration is read-only once Load returns.
type Declaration struct {
	// Name identifies the declaration in qualified template lookups.
	Name string
	// Base is the parent reference as written in the descriptor, relative to Dir.
	Base string
	// Dir is the directory holding the descriptor and its subdirectories.
	Dir string
	// Variants maps a variant name to its tags.
	Variants map[string][]string
	// Vars holds literal substitution values.
	Vars map[string]string

	TemplatePaths map[string]string
	VariantPaths  map[string]string
	AssetPaths    map[string]string

	// Parent is the fully loaded parent declaration, or nil.
	Parent *Declaration
}

// Tags returns the tags attached to variant.
func (d *Declaration) Tags(variant string) []string {
	return d.Variants[variant]
}

// VariantNames returns the sorted names of all renderable variants.
func (d *Declaration) VariantNames() []string {
	return slices.Sorted(maps.Keys(d.VariantPaths))
}

// AssetNames returns the sorted names of all assets.
func (d *Declaration) AssetNames() []string {
	return slices.Sorted(maps.Keys(d.AssetPaths))
}

// TemplateNames returns the sorted names of all partial templates.
func (d *Declaration) TemplateNames() []string {
	return slices.Sorted(maps.Keys(d.TemplatePaths))
}

// Ancestors returns the parent chain, nearest first.
func (d *Declaration) Ancestors() []*Declaration {
	var chain []*Declaration
	for p := d.Parent; p != nil; p = p.Parent {
		chain = append(chain, p)
	}
	return chain
}

// Dirs returns the directories of d and all its ancestors, d first.
func (d *Declaration) Dirs() []string {
	dirs := []string{d.Dir}
	for _, a := range d.Ancestors() {
		dirs = append(dirs, a.Dir)
	}
	return dirs
}
