package species

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrNoDescriptor is returned when no descriptor file can be found.
	ErrNoDescriptor = errors.New("species: no descriptor found")
	// ErrInheritanceCycle is returned when a base chain loops back on itself.
	ErrInheritanceCycle = errors.New("species: inheritance cycle")
	// ErrMissingName is returned for descriptors without a name.
	ErrMissingName = errors.New("species: descriptor has no name")
)

const (
	// TemplatesDir holds partial templates, included by name.
	TemplatesDir = "templates"
	// VariantsDir holds one template per renderable variant.
	VariantsDir = "variants"
	// AssetsDir holds static documents that are never templated.
	AssetsDir = "assets"
)

// DefaultExtensions are the file extensions indexed by the directory scan.
var DefaultExtensions = []string{".svg", ".xml", ".tmpl"}

// Loader reads declarations and their parent chains from disk.
type Loader struct {
	logger     *slog.Logger
	extensions []string
}

// NewLoader creates a Loader that indexes DefaultExtensions. A nil logger
// falls back to slog.Default.
func NewLoader(logger *slog.Logger, extensions ...string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Loader{logger: logger, extensions: extensions}
}

// Load reads the declaration at path with a default Loader.
func Load(path string) (*Declaration, error) {
	return NewLoader(nil).Load(path)
}

// Load reads the declaration at path, which is either a directory holding
// a descriptor or a descriptor file, together with its whole parent chain.
//
// The parent named by the descriptor's base is loaded first, relative to the
// declaration's directory. Its template, variant and asset indices, and its
// variables, become the defaults of the child. The parent's variant tags are
// adopted only when the child declares none. The child's own templates,
// variants and assets directories are then scanned and override inherited
// entries of the same name.
//
// A missing or malformed descriptor anywhere in the chain fails the whole
// load. Missing or unreadable subdirectories are not errors.
func (l *Loader) Load(path string) (*Declaration, error) {
	return l.load(path, nil)
}

func (l *Loader) load(path string, chain []string) (*Declaration, error) {
	descPath, err := findDescriptor(path)
	if err != nil {
		return nil, err
	}
	key, err := filepath.Abs(descPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", descPath, err)
	}
	if slices.Contains(chain, key) {
		return nil, fmt.Errorf("%w: %s", ErrInheritanceCycle, strings.Join(append(chain, key), " -> "))
	}
	chain = append(chain, key)

	var desc descriptor
	if err = DecodeFile(descPath, &desc); err != nil {
		return nil, err
	}
	if desc.Name == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingName, descPath)
	}

	decl := &Declaration{
		Name:          desc.Name,
		Base:          desc.Base,
		Dir:           filepath.Dir(descPath),
		Variants:      desc.Variants,
		Vars:          desc.Vars,
		TemplatePaths: map[string]string{},
		VariantPaths:  map[string]string{},
		AssetPaths:    map[string]string{},
	}
	if decl.Variants == nil {
		decl.Variants = map[string][]string{}
	}
	if decl.Vars == nil {
		decl.Vars = map[string]string{}
	}

	if desc.Base != "" {
		parent, err := l.load(filepath.Join(decl.Dir, desc.Base), chain)
		if err != nil {
			return nil, fmt.Errorf("loading base of %s: %w", desc.Name, err)
		}
		inherit(decl, parent)
	}

	l.scan(decl.TemplatePaths, filepath.Join(decl.Dir, TemplatesDir))
	l.scan(decl.VariantPaths, filepath.Join(decl.Dir, VariantsDir))
	l.scan(decl.AssetPaths, filepath.Join(decl.Dir, AssetsDir))

	l.logger.Debug("Loaded declaration",
		"name", decl.Name,
		"dir", decl.Dir,
		"variants", len(decl.VariantPaths),
		"assets", len(decl.AssetPaths),
		"templates", len(decl.TemplatePaths))
	return decl, nil
}

// inherit merges parent into decl before decl's own files are scanned.
func inherit(decl, parent *Declaration) {
	maps.Copy(decl.TemplatePaths, parent.TemplatePaths)
	maps.Copy(decl.VariantPaths, parent.VariantPaths)
	maps.Copy(decl.AssetPaths, parent.AssetPaths)
	if len(decl.Variants) == 0 {
		decl.Variants = maps.Clone(parent.Variants)
	}
	for key, value := range parent.Vars {
		if _, ok := decl.Vars[key]; !ok {
			decl.Vars[key] = value
		}
	}
	decl.Parent = parent
}

// scan adds a name -> path entry to index for every file in dir with a
// recognized extension. An unreadable directory adds nothing.
func (l *Loader) scan(index map[string]string, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.logger.Debug("Skipping unreadable directory", "dir", dir, "error", err)
		}
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !slices.Contains(l.extensions, strings.ToLower(ext)) {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		if stem == "" {
			continue
		}
		index[stem] = filepath.Join(dir, name)
	}
}
