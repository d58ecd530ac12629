package svgdoc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
)

const testDrawing = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 128 128">
  <g id="head" data-ref="foo">
    <circle id="eye" r="4"/>
    <g id="mouth"><path id="foo" d="M0 0"/></g>
  </g>
  <rect id="foo" width="10"/>
</svg>`

// mustParse is a test helper that fails the test on parse errors.
func mustParse(tb testing.TB, s string) *etree.Element {
	tb.Helper()
	el, err := ParseString(s)
	if err != nil {
		tb.Fatalf("ParseString(%q) failed: %v", s, err)
	}
	return el
}

func childTags(el *etree.Element) []string {
	var tags []string
	for _, child := range el.ChildElements() {
		tags = append(tags, child.Tag)
	}
	return tags
}

func TestParse(t *testing.T) {
	root := mustParse(t, testDrawing)
	if root.Tag != "svg" {
		t.Fatalf("expected root tag svg, got %q", root.Tag)
	}
	if got := strings.Join(childTags(root), ","); got != "g,rect" {
		t.Errorf("unexpected children: %s", got)
	}

	if _, err := ParseString("<!-- only a comment -->"); !errors.Is(err, ErrNoRoot) {
		t.Errorf("expected ErrNoRoot, got %v", err)
	}
	if _, err := ParseString("<svg><g></svg>"); err == nil {
		t.Error("expected an error for malformed xml")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawing.svg")
	if err := os.WriteFile(path, []byte(testDrawing), 0644); err != nil {
		t.Fatalf("failed to write drawing: %v", err)
	}
	root, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if root.Tag != "svg" {
		t.Errorf("expected svg root, got %q", root.Tag)
	}

	if _, err = LoadFile(filepath.Join(t.TempDir(), "missing.svg")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSerialize(t *testing.T) {
	root := mustParse(t, testDrawing)
	first, err := Serialize(root)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if strings.Contains(first, "<?xml") {
		t.Error("serialized output must not carry a document declaration")
	}
	if !strings.Contains(first, "\n  <g id=\"head\"") {
		t.Errorf("expected indented output, got:\n%s", first)
	}

	second, err := Serialize(mustParse(t, first))
	if err != nil {
		t.Fatalf("Serialize failed on round trip: %v", err)
	}
	if first != second {
		t.Errorf("serialization is not deterministic:\n%s\n---\n%s", first, second)
	}

	if _, err = Serialize(nil); !errors.Is(err, ErrNoRoot) {
		t.Errorf("expected ErrNoRoot for nil element, got %v", err)
	}
}

func TestQuerySelector(t *testing.T) {
	root := mustParse(t, testDrawing)

	t.Run("FlattenRoot", func(t *testing.T) {
		group, ok := QuerySelector(root, "")
		if !ok {
			t.Fatal("empty selector should always match")
		}
		if group.Tag != "g" || len(group.Attr) != 0 {
			t.Errorf("expected a bare <g> wrapper, got <%s> with %d attributes", group.Tag, len(group.Attr))
		}
		if got := strings.Join(childTags(group), ","); got != "g,rect" {
			t.Errorf("wrapper should hold the root's children in order, got %s", got)
		}
	})

	t.Run("PreOrderFirstMatch", func(t *testing.T) {
		found, ok := QuerySelector(root, "#foo")
		if !ok {
			t.Fatal("expected #foo to be found")
		}
		if found.Tag != "path" {
			t.Errorf("expected the nested path to win in pre-order, got <%s>", found.Tag)
		}
	})

	t.Run("IdOnly", func(t *testing.T) {
		doc := mustParse(t, `<svg><g data-id="bar" class="bar"/></svg>`)
		if _, ok := QuerySelector(doc, "#bar"); ok {
			t.Error("only id attributes should match")
		}
	})

	t.Run("Missing", func(t *testing.T) {
		for _, pattern := range []string{"#nope", "#", "eye", ".eye"} {
			if _, ok := QuerySelector(root, pattern); ok {
				t.Errorf("pattern %q should not match", pattern)
			}
		}
	})

	t.Run("ResultIsACopy", func(t *testing.T) {
		eye, ok := QuerySelector(root, "#eye")
		if !ok {
			t.Fatal("expected #eye to be found")
		}
		SetAttr(eye, "r", "100")
		again, _ := QuerySelector(root, "#eye")
		if r, _ := AttrValue(again, "r"); r != "4" {
			t.Errorf("mutating a query result changed the source tree: r=%s", r)
		}
	})
}

func TestAttrHelpers(t *testing.T) {
	el := mustParse(t, `<g xmlns:inkscape="x" inkscape:label="Layer" id="a"/>`)
	if _, ok := AttrValue(el, "label"); ok {
		t.Error("AttrValue should match full keys only")
	}
	if v, ok := AttrValue(el, "inkscape:label"); !ok || v != "Layer" {
		t.Errorf("expected inkscape:label=Layer, got %q (%v)", v, ok)
	}
	SetAttr(el, "id", "b")
	SetAttr(el, "fill", "red")
	if v, _ := AttrValue(el, "id"); v != "b" {
		t.Errorf("SetAttr should overwrite existing attributes, got %q", v)
	}
	if v, _ := AttrValue(el, "fill"); v != "red" {
		t.Errorf("SetAttr should append missing attributes, got %q", v)
	}
}

func BenchmarkSerialize(b *testing.B) {
	root := mustParse(b, testDrawing)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Serialize(root)
	}
}
