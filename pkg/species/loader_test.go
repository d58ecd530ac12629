package species

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// writeFiles creates every file in files (path relative to root -> content).
func writeFiles(tb testing.TB, root string, files map[string]string) {
	tb.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			tb.Fatalf("failed to create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			tb.Fatalf("failed to write %s: %v", rel, err)
		}
	}
}

func testLoader() *Loader {
	return NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// setupChain writes a base declaration and a child inheriting from it.
func setupChain(tb testing.TB) string {
	tb.Helper()
	root := tb.TempDir()
	writeFiles(tb, root, map[string]string{
		"base/species.toml": `
name = "base"

[variants]
idle = ["calm"]
snow = ["winter", "cold"]

[vars]
mood = "neutral"
color = "gray"
`,
		"base/variants/idle.svg":   `<svg><rect id="body" fill="gray"/></svg>`,
		"base/variants/snow.svg":   `<svg/>`,
		"base/variants/notes.txt":  `ignored`,
		"base/assets/hat.svg":      `<svg><path id="brim"/></svg>`,
		"base/templates/eyes.tmpl": `<circle/>`,
		"fox/species.yaml": `
name: fox
base: ../base
vars:
  mood: happy
`,
		"fox/variants/snow.svg":  `<svg><g/></svg>`,
		"fox/variants/wave.tmpl": `<svg/>`,
		"fox/assets/hat.xml":     `<svg/>`,
	})
	return root
}

func TestLoad_Inheritance(t *testing.T) {
	root := setupChain(t)
	decl, err := testLoader().Load(filepath.Join(root, "fox"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if decl.Name != "fox" || decl.Parent == nil || decl.Parent.Name != "base" {
		t.Fatalf("unexpected chain: %s -> %+v", decl.Name, decl.Parent)
	}

	t.Run("ChildShadowsParent", func(t *testing.T) {
		if got := decl.VariantPaths["snow"]; got != filepath.Join(root, "fox", "variants", "snow.svg") {
			t.Errorf("snow should resolve to the child's file, got %s", got)
		}
		if got := decl.AssetPaths["hat"]; got != filepath.Join(root, "fox", "assets", "hat.xml") {
			t.Errorf("hat should resolve to the child's file, got %s", got)
		}
	})

	t.Run("ParentOnlyReachable", func(t *testing.T) {
		if got := decl.VariantPaths["idle"]; got != filepath.Join(root, "base", "variants", "idle.svg") {
			t.Errorf("idle should resolve to the parent's file, got %s", got)
		}
		if _, ok := decl.TemplatePaths["eyes"]; !ok {
			t.Error("inherited template eyes is missing")
		}
	})

	t.Run("Vars", func(t *testing.T) {
		if decl.Vars["mood"] != "happy" {
			t.Errorf("child var should win, got %q", decl.Vars["mood"])
		}
		if decl.Vars["color"] != "gray" {
			t.Errorf("parent var should fill in, got %q", decl.Vars["color"])
		}
	})

	t.Run("TagsAdoptedWhenEmpty", func(t *testing.T) {
		if !slices.Equal(decl.Tags("snow"), []string{"winter", "cold"}) {
			t.Errorf("expected parent tags, got %v", decl.Tags("snow"))
		}
	})

	t.Run("Names", func(t *testing.T) {
		if got := decl.VariantNames(); !slices.Equal(got, []string{"idle", "snow", "wave"}) {
			t.Errorf("VariantNames = %v", got)
		}
		if got := decl.AssetNames(); !slices.Equal(got, []string{"hat"}) {
			t.Errorf("AssetNames = %v", got)
		}
		if got := decl.TemplateNames(); !slices.Equal(got, []string{"eyes"}) {
			t.Errorf("TemplateNames = %v", got)
		}
		if got := len(decl.Ancestors()); got != 1 {
			t.Errorf("expected 1 ancestor, got %d", got)
		}
		if got := decl.Dirs(); len(got) != 2 || got[1] != filepath.Join(root, "base") {
			t.Errorf("Dirs = %v", got)
		}
	})

	t.Run("ParentUntouched", func(t *testing.T) {
		if decl.Parent.Vars["mood"] != "neutral" {
			t.Error("merging must not modify the parent's vars")
		}
		if _, ok := decl.Parent.VariantPaths["wave"]; ok {
			t.Error("merging must not leak child entries into the parent")
		}
	})
}

func TestLoad_TagsReplaceNotMerge(t *testing.T) {
	root := setupChain(t)
	writeFiles(t, root, map[string]string{
		"owl/species.json": `{
	// comments and trailing commas are allowed
	"name": "owl",
	"base": "../base",
	"variants": {"idle": ["sleepy"],},
}`,
	})
	decl, err := testLoader().Load(filepath.Join(root, "owl", "species.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !slices.Equal(decl.Tags("idle"), []string{"sleepy"}) {
		t.Errorf("child tags should be kept, got %v", decl.Tags("idle"))
	}
	if tags := decl.Tags("snow"); len(tags) != 0 {
		t.Errorf("a non-empty child map must not fall back per entry, got %v", tags)
	}
}

func TestLoad_Errors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"broken/species.toml":    `name = "broken`,
		"nameless/species.toml":  `base = ""`,
		"orphan/species.toml":    "name = \"orphan\"\nbase = \"../nowhere\"",
		"a/species.toml":         "name = \"a\"\nbase = \"../b\"",
		"b/species.toml":         "name = \"b\"\nbase = \"../a\"",
		"self/species.yml":       "name: self\nbase: .",
		"bare/species.toml":      `name = "bare"`,
		"unknown/descriptor.ini": `name=x`,
	})

	tests := []struct {
		path string
		want error
	}{
		{"missing", ErrNoDescriptor},
		{"unknown", ErrNoDescriptor},
		{"nameless", ErrMissingName},
		{"orphan", ErrNoDescriptor},
		{"a", ErrInheritanceCycle},
		{"self", ErrInheritanceCycle},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := testLoader().Load(filepath.Join(root, tt.path))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := testLoader().Load(filepath.Join(root, "broken")); err == nil {
		t.Error("expected a parse error for a malformed descriptor")
	}
	if _, err := testLoader().Load(filepath.Join(root, "unknown", "descriptor.ini")); err == nil {
		t.Error("expected an error for an unsupported descriptor format")
	}

	decl, err := testLoader().Load(filepath.Join(root, "bare"))
	if err != nil {
		t.Fatalf("a declaration without subdirectories should load: %v", err)
	}
	if len(decl.VariantPaths)+len(decl.AssetPaths)+len(decl.TemplatePaths) != 0 {
		t.Error("absent directories should yield empty indices")
	}
}

func TestDecode(t *testing.T) {
	type snuggle struct {
		DX float64 `toml:"dx" yaml:"dx" json:"dx"`
	}
	inputs := map[string]string{
		".toml":  "dx = 1.5",
		".yaml":  "dx: 1.5",
		".jsonc": `{"dx": 1.5, /* c */}`,
	}
	for ext, data := range inputs {
		var s snuggle
		if err := Decode(ext, []byte(data), &s); err != nil {
			t.Errorf("Decode(%s) failed: %v", ext, err)
			continue
		}
		if s.DX != 1.5 {
			t.Errorf("Decode(%s) got dx=%v", ext, s.DX)
		}
	}
	if err := Decode(".ini", nil, &snuggle{}); err == nil {
		t.Error("expected an error for an unknown extension")
	}
}
